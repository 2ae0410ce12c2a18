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

package cfg

// Edge connects two nodes within the same CFG. Edges are unique by
// (Src, Dst); re-adding one aggregates Count rather than creating a
// duplicate.
type Edge struct {
	Src, Dst *Node
	Count    uint64
}

// Call attaches a called procedure and its dynamic count to a block.
// Unique by callee address within the owning block.
type Call struct {
	Callee *CFG
	Count  uint64
}

// SignalHandler attaches a signal id and its handler procedure to a block.
// Unique by signal id within the owning block.
type SignalHandler struct {
	Signal  int
	Handler *CFG
	Count   uint64
}
