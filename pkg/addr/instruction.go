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

package addr

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Instruction is a single interned (address, size, disassembly text) record.
type Instruction struct {
	Address Address
	Size    int
	Text    string
}

// Registry is a process-wide interning table of address to instruction.
// Readers are sequential, so no locking is required (see the concurrency
// model).
type Registry struct {
	entries map[Address]*Instruction
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Address]*Instruction)}
}

// Get returns the instruction interned at a, creating it with the given
// size if absent. If an entry already exists with size 0 and size is
// positive, the existing entry adopts the new size; an already-sized entry
// is never contradicted.
func (r *Registry) Get(a Address, size int) *Instruction {
	if inst, ok := r.entries[a]; ok {
		if inst.Size == 0 && size > 0 {
			inst.Size = size
		}
		return inst
	}
	inst := &Instruction{Address: a, Size: size}
	r.entries[a] = inst
	return inst
}

// Lookup returns the instruction at a without creating one.
func (r *Registry) Lookup(a Address) (*Instruction, bool) {
	inst, ok := r.entries[a]
	return inst, ok
}

// Clear drops every interned instruction.
func (r *Registry) Clear() {
	r.entries = make(map[Address]*Instruction)
}

// Len reports how many instructions are currently interned.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Load populates the registry from an "address:size:text" side-table file,
// one record per line. Blank lines are skipped. Each line is either fully
// valid or the whole load aborts with the offending line number attached.
func (r *Registry) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("addr: opening instruction file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := r.loadLine(line); err != nil {
			return fmt.Errorf("addr: %s:%d: %w", path, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return fmt.Errorf("addr: reading instruction file: %w", err)
	}
	return nil
}

func (r *Registry) loadLine(line string) error {
	parts := strings.SplitN(line, ":", 3)
	if len(parts) < 2 {
		return fmt.Errorf("malformed record %q, want address:size[:text]", line)
	}

	a, err := Parse(parts[0])
	if err != nil {
		return err
	}

	size, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return fmt.Errorf("invalid size in %q: %w", line, err)
	}

	text := ""
	if len(parts) == 3 {
		text = parts[2]
	}

	inst := r.Get(a, size)
	if text != "" {
		inst.Text = text
	}
	return nil
}
