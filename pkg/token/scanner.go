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

package token

import (
	"bufio"
	"io"
)

// Scanner lexes a text stream into a lazy sequence of Lexemes via Next.
// It is sequential and holds no goroutines; the caller pulls one Lexeme at
// a time.
type Scanner struct {
	r       *bufio.Reader
	line    int
	peeked  rune
	hasPeek bool
	atEOF   bool
}

// NewScanner wraps r for lexing, starting at line 1.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r), line: 1}
}

func (s *Scanner) readRune() (rune, bool) {
	if s.hasPeek {
		s.hasPeek = false
		return s.peeked, true
	}
	ch, _, err := s.r.ReadRune()
	if err != nil {
		return 0, false
	}
	return ch, true
}

func (s *Scanner) unread(ch rune) {
	s.peeked = ch
	s.hasPeek = true
}

func (s *Scanner) peek() (rune, bool) {
	ch, ok := s.readRune()
	if ok {
		s.unread(ch)
	}
	return ch, ok
}

func isDigit(ch rune) bool       { return ch >= '0' && ch <= '9' }
func isHexDigit(ch rune) bool    { return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F') }
func isAlpha(ch rune) bool       { return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') }
func isKeywordRune(ch rune) bool { return isAlpha(ch) || ch == '-' }

// Next returns the next Lexeme in the stream. Once EOF has been returned it
// continues to return EOF.
func (s *Scanner) Next() Lexeme {
	s.skipWhitespaceAndComments()
	line := s.line

	ch, ok := s.readRune()
	if !ok {
		s.atEOF = true
		return Lexeme{Kind: EOF, Line: line}
	}

	switch {
	case ch == '[':
		return Lexeme{Kind: BracketOpen, Text: "[", Line: line}
	case ch == ']':
		return Lexeme{Kind: BracketClose, Text: "]", Line: line}
	case ch == ':':
		return Lexeme{Kind: Colon, Text: ":", Line: line}
	case ch == '"' || ch == '\'':
		return s.scanString(ch, line)
	case ch == '0':
		return s.scanZeroLed(line)
	case isDigit(ch):
		return s.scanNumber(ch, line)
	case isAlpha(ch):
		return s.scanKeyword(ch, line)
	default:
		return Lexeme{Kind: Invalid, Text: string(ch), Line: line}
	}
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		ch, ok := s.readRune()
		if !ok {
			return
		}
		switch {
		case ch == '\n':
			s.line++
		case ch == ' ' || ch == '\t' || ch == '\r':
			// skip
		case ch == '#':
			for {
				c, ok := s.readRune()
				if !ok || c == '\n' {
					if c == '\n' {
						s.line++
					}
					break
				}
			}
		default:
			s.unread(ch)
			return
		}
	}
}

// scanZeroLed disambiguates a leading '0': "0x"/"0X" starts a hex ADDR,
// anything else is a (possibly multi-digit) decimal NUMBER.
func (s *Scanner) scanZeroLed(line int) Lexeme {
	if next, ok := s.peek(); ok && (next == 'x' || next == 'X') {
		s.readRune() // consume x/X
		digits := []rune{'0', next}
		any := false
		for {
			c, ok := s.readRune()
			if !ok {
				break
			}
			if !isHexDigit(c) {
				s.unread(c)
				break
			}
			digits = append(digits, c)
			any = true
		}
		if !any {
			return Lexeme{Kind: Invalid, Text: string(digits), Line: line}
		}
		return Lexeme{Kind: Addr, Text: string(digits), Line: line}
	}
	return s.scanNumber('0', line)
}

func (s *Scanner) scanNumber(first rune, line int) Lexeme {
	digits := []rune{first}
	for {
		c, ok := s.readRune()
		if !ok {
			break
		}
		if !isDigit(c) {
			s.unread(c)
			break
		}
		digits = append(digits, c)
	}
	return Lexeme{Kind: Number, Text: string(digits), Line: line}
}

func (s *Scanner) scanKeyword(first rune, line int) Lexeme {
	letters := []rune{first}
	for {
		c, ok := s.readRune()
		if !ok {
			break
		}
		if !isKeywordRune(c) {
			s.unread(c)
			break
		}
		letters = append(letters, c)
	}
	text := string(letters)
	if text == "true" || text == "false" {
		return Lexeme{Kind: Bool, Text: text, Line: line}
	}
	return Lexeme{Kind: Keyword, Text: text, Line: line}
}

func (s *Scanner) scanString(quote rune, line int) Lexeme {
	var sb []rune
	for {
		c, ok := s.readRune()
		if !ok {
			return Lexeme{Kind: UnexpectedEOF, Text: string(sb), Line: line}
		}
		if c == '\n' {
			s.line++
		}
		if c == quote {
			return Lexeme{Kind: String, Text: string(sb), Line: line}
		}
		sb = append(sb, c)
	}
}
