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

// Package rangeset is the CLI's entry-address filter: a set of closed
// [start,end] ranges and single points, matched against a CFG's entry
// address before it is emitted.
package rangeset

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/master-g/cfgconv/pkg/addr"
)

type span struct {
	start, end addr.Address
}

// Set is a collection of address ranges and points. A zero Set matches
// every address (no -r/-a/-A flags given means no filtering).
type Set struct {
	spans []span
}

// New returns an empty Set.
func New() *Set {
	return &Set{}
}

// AddRange adds the closed interval [start,end] to the set.
func (s *Set) AddRange(start, end addr.Address) error {
	if end < start {
		return fmt.Errorf("rangeset: invalid range %s:%s, end before start", start, end)
	}
	s.spans = append(s.spans, span{start: start, end: end})
	return nil
}

// AddPoint adds a single address to the set.
func (s *Set) AddPoint(a addr.Address) {
	s.spans = append(s.spans, span{start: a, end: a})
}

// AddRangeString parses "start:end" (each side hex, with or without 0x) and
// adds it.
func (s *Set) AddRangeString(text string) error {
	start, end, ok := strings.Cut(text, ":")
	if !ok {
		return fmt.Errorf("rangeset: malformed range %q, want start:end", text)
	}
	a, err := addr.Parse(start)
	if err != nil {
		return fmt.Errorf("rangeset: %w", err)
	}
	b, err := addr.Parse(end)
	if err != nil {
		return fmt.Errorf("rangeset: %w", err)
	}
	return s.AddRange(a, b)
}

// AddPointString parses a single hex address and adds it.
func (s *Set) AddPointString(text string) error {
	a, err := addr.Parse(text)
	if err != nil {
		return fmt.Errorf("rangeset: %w", err)
	}
	s.AddPoint(a)
	return nil
}

// LoadPoints reads one address per line from path and adds each as a point.
// Blank lines are skipped.
func (s *Set) LoadPoints(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("rangeset: opening address file: %w", err)
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
		if err := s.AddPointString(line); err != nil {
			return fmt.Errorf("rangeset: %s:%d: %w", path, lineNo, err)
		}
	}
	return scanner.Err()
}

// Empty reports whether no ranges or points have been added.
func (s *Set) Empty() bool {
	return len(s.spans) == 0
}

// Contains reports whether a falls within any range or point in the set. An
// empty Set contains every address (no filtering requested).
func (s *Set) Contains(a addr.Address) bool {
	if s.Empty() {
		return true
	}
	for _, sp := range s.spans {
		if a >= sp.start && a <= sp.end {
			return true
		}
	}
	return false
}
