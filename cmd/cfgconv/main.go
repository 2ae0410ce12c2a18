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

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/master-g/cfgconv/pkg/addr"
	"github.com/master-g/cfgconv/pkg/cfg"
	"github.com/master-g/cfgconv/pkg/cfglog"
	"github.com/master-g/cfgconv/pkg/rangeset"
	"github.com/master-g/cfgconv/pkg/reader/bftrace"
	"github.com/master-g/cfgconv/pkg/reader/cfggrind"
	"github.com/master-g/cfgconv/pkg/reader/dcfg"
	"github.com/master-g/cfgconv/pkg/render"

	"gopkg.in/urfave/cli.v2"
)

func main() {
	app := &cli.App{
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "reader type: bftrace, cfggrind, or dcfg",
			},
			&cli.StringFlag{
				Name:    "status",
				Aliases: []string{"s"},
				Usage:   "emit only CFGs with this status: all, valid, invalid",
				Value:   "all",
			},
			&cli.StringSliceFlag{
				Name:    "range",
				Aliases: []string{"r"},
				Usage:   "restrict emission to entry addresses in start:end (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "restrict emission to this entry address (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:    "addr-file",
				Aliases: []string{"A"},
				Usage:   "restrict emission to entry addresses listed one-per-line in this file (repeatable)",
			},
			&cli.StringFlag{
				Name:    "instrs",
				Aliases: []string{"i"},
				Usage:   "instruction metadata file (address:size:text per line)",
			},
			&cli.StringFlag{
				Name:    "dump-dir",
				Aliases: []string{"d"},
				Usage:   "write a cfg-0xADDR.dot graph-description file per emitted CFG into this directory",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable diagnostic logging to standard error",
			},
		},
		Name:      "cfgconv",
		Usage:     "reconstruct and dump control-flow graphs from heterogeneous traces",
		Version:   "v0.1.0",
		ArgsUsage: "input-file",
		Action:    run,
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("verbose") {
		cfglog.SetLogger(cfglog.WriterLogger{Write: func(msg string) {
			fmt.Fprintln(os.Stderr, msg)
		}})
		cfglog.SetLogEnable(true)
	}

	readerType := c.String("type")
	inputFile := c.Args().First()
	if readerType == "" || inputFile == "" {
		cli.ShowAppHelp(c)
		return cli.Exit("", 1)
	}

	filter, err := buildFilter(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("cfgconv: %v", err), 1)
	}

	statusFilter := c.String("status")
	switch statusFilter {
	case "all", "valid", "invalid":
	default:
		return cli.Exit(fmt.Sprintf("cfgconv: invalid -s value %q, want all|valid|invalid", statusFilter), 1)
	}

	reg := addr.NewRegistry()
	if instrsFile := c.String("instrs"); instrsFile != "" {
		if err := reg.Load(instrsFile); err != nil {
			return cli.Exit(fmt.Sprintf("cfgconv: %v", err), 1)
		}
	}

	tbl, err := load(readerType, inputFile, reg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return cli.Exit("", 1)
	}

	dumpDir := c.String("dump-dir")
	for _, procedure := range tbl.All() {
		if !filter.Contains(procedure.Addr()) {
			continue
		}
		if !statusMatches(statusFilter, procedure.Status()) {
			continue
		}
		if err := render.Text(os.Stdout, procedure); err != nil {
			return cli.Exit(fmt.Sprintf("cfgconv: %v", err), 1)
		}
		if dumpDir != "" {
			if err := dumpDot(dumpDir, procedure); err != nil {
				return cli.Exit(fmt.Sprintf("cfgconv: %v", err), 1)
			}
		}
	}
	return nil
}

func load(readerType, inputFile string, reg *addr.Registry) (*cfg.Table, error) {
	f, err := os.Open(inputFile)
	if err != nil {
		return nil, fmt.Errorf("cfgconv: opening input file: %w", err)
	}
	defer f.Close()

	tbl := cfg.NewTable()
	switch readerType {
	case "bftrace":
		err = bftrace.Load(f, tbl)
	case "cfggrind":
		err = cfggrind.Load(f, tbl, reg)
	case "dcfg":
		err = dcfg.Load(f, tbl)
	default:
		return nil, fmt.Errorf("cfgconv: unknown reader type %q, want bftrace|cfggrind|dcfg", readerType)
	}
	if err != nil {
		return nil, err
	}
	return tbl, nil
}

func buildFilter(c *cli.Context) (*rangeset.Set, error) {
	filter := rangeset.New()
	for _, r := range c.StringSlice("range") {
		if err := filter.AddRangeString(r); err != nil {
			return nil, err
		}
	}
	for _, a := range c.StringSlice("addr") {
		if err := filter.AddPointString(a); err != nil {
			return nil, err
		}
	}
	for _, path := range c.StringSlice("addr-file") {
		if err := filter.LoadPoints(path); err != nil {
			return nil, err
		}
	}
	return filter, nil
}

func statusMatches(filter string, s cfg.Status) bool {
	switch filter {
	case "valid":
		return s == cfg.Valid
	case "invalid":
		return s == cfg.Invalid
	default:
		return true
	}
}

func dumpDot(dir string, c *cfg.CFG) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating dump directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("cfg-%s.dot", c.Addr()))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating dump file: %w", err)
	}
	defer f.Close()
	return render.Dot(f, c)
}
