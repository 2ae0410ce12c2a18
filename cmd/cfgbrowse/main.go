// Copyright © 2019 mg
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// cfgbrowse is a read-only pager over the CFGs a cfgconv run already loaded
// and checked: same readers, same Check() pass, browsed interactively
// instead of dumped to stdout.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/master-g/cfgconv/pkg/addr"
	"github.com/master-g/cfgconv/pkg/cfg"
	"github.com/master-g/cfgconv/pkg/reader/bftrace"
	"github.com/master-g/cfgconv/pkg/reader/cfggrind"
	"github.com/master-g/cfgconv/pkg/reader/dcfg"
	"github.com/master-g/cfgconv/pkg/render"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
)

var (
	procedures []*cfg.CFG
	current    int

	listWidget   *widgets.List
	detailWidget *widgets.Paragraph
	tipsWidget   *widgets.Paragraph
)

func loadTable(readerType, inputFile string) (*cfg.Table, error) {
	f, err := os.Open(inputFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tbl := cfg.NewTable()
	reg := addr.NewRegistry()
	switch readerType {
	case "bftrace":
		err = bftrace.Load(f, tbl)
	case "cfggrind":
		err = cfggrind.Load(f, tbl, reg)
	case "dcfg":
		err = dcfg.Load(f, tbl)
	default:
		return nil, fmt.Errorf("unknown reader type %q, want bftrace|cfggrind|dcfg", readerType)
	}
	if err != nil {
		return nil, err
	}
	return tbl, nil
}

func initLayout() {
	listWidget = widgets.NewList()
	listWidget.Title = "CFGs"
	listWidget.SetRect(0, 0, 40, 30)

	detailWidget = widgets.NewParagraph()
	detailWidget.Title = "Detail"
	detailWidget.SetRect(40, 0, 110, 27)

	tipsWidget = widgets.NewParagraph()
	tipsWidget.Title = "Tips"
	tipsWidget.SetRect(0, 30, 110, 33)
	tipsWidget.Text = "N = Next   P = Previous   Q = Quit"
}

func listLabel(c *cfg.CFG) string {
	return fmt.Sprintf("%s %s [%s]", c.Addr(), c.FunctionName(), c.Status())
}

func draw() {
	rows := make([]string, len(procedures))
	for i, c := range procedures {
		rows[i] = listLabel(c)
	}
	listWidget.Rows = rows
	listWidget.SelectedRow = current

	var sb strings.Builder
	if len(procedures) > 0 {
		if err := render.Text(&sb, procedures[current]); err != nil {
			sb.WriteString(fmt.Sprintf("render error: %v", err))
		}
	} else {
		sb.WriteString("(no CFGs)")
	}
	detailWidget.Text = sb.String()

	ui.Render(listWidget, detailWidget, tipsWidget)
}

func main() {
	readerType := flag.String("t", "", "reader type: bftrace, cfggrind, or dcfg")
	flag.Parse()

	if *readerType == "" || flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: cfgbrowse -t {bftrace|cfggrind|dcfg} input-file")
		os.Exit(1)
	}

	tbl, err := loadTable(*readerType, flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	procedures = tbl.All()

	if err := ui.Init(); err != nil {
		log.Fatalf("failed to initialize termui: %v", err)
	}
	defer ui.Close()

	initLayout()
	draw()

	for e := range ui.PollEvents() {
		if e.Type != ui.KeyboardEvent {
			continue
		}
		switch e.ID {
		case "q", "Q", "<C-c>":
			return
		case "n", "N", "<Down>":
			if len(procedures) > 0 {
				current = (current + 1) % len(procedures)
			}
		case "p", "P", "<Up>":
			if len(procedures) > 0 {
				current = (current - 1 + len(procedures)) % len(procedures)
			}
		}
		draw()
	}
}
