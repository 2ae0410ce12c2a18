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

// Package addr defines the opaque code address type and the instruction
// registry. The cfggrind reader interns instructions into it and the CLI's
// -i flag loads it; the bftrace and dcfg readers do not use it.
package addr

import (
	"fmt"
	"strconv"
	"strings"
)

// Address identifies a code byte. Zero means "no address".
type Address uint64

// None is the reserved "no address" value.
const None Address = 0

// String renders the address as lowercase hex, e.g. "0x400".
func (a Address) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}

// Valid reports whether the address is non-zero.
func (a Address) Valid() bool {
	return a != None
}

// Parse accepts both "0x"-prefixed and bare hexadecimal text, matching the
// -a/-A/-r command-line forms accepted by cmd/cfgconv.
func Parse(s string) (Address, error) {
	s = strings.TrimSpace(s)
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if trimmed == "" {
		return 0, fmt.Errorf("addr: empty address %q", s)
	}
	v, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("addr: invalid address %q: %w", s, err)
	}
	return Address(v), nil
}
