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

// Package token lexes the line-oriented textual CFG input formats (bftrace
// and cfggrind) into a stream of typed lexemes.
package token

// Kind identifies the lexical class of a Lexeme.
type Kind int

const (
	BracketOpen Kind = iota
	BracketClose
	Colon
	Addr
	Number
	Bool
	String
	Keyword
	EOF
	Invalid
	UnexpectedEOF
)

func (k Kind) String() string {
	switch k {
	case BracketOpen:
		return "BRACKET_OPEN"
	case BracketClose:
		return "BRACKET_CLOSE"
	case Colon:
		return "COLON"
	case Addr:
		return "ADDR"
	case Number:
		return "NUMBER"
	case Bool:
		return "BOOL"
	case String:
		return "STRING"
	case Keyword:
		return "KEYWORD"
	case EOF:
		return "EOF"
	case Invalid:
		return "INVALID"
	case UnexpectedEOF:
		return "UNEXPECTED_EOF"
	default:
		return "UNKNOWN"
	}
}

// Lexeme is one token produced by the Scanner.
type Lexeme struct {
	Kind Kind
	Text string // raw source text
	Line int    // 1-based line of the first character
}
