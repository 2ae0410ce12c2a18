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

// Package cfglog is the ambient logging facade shared by the readers and
// the CLI driver: a Logger/SetLogger/SetLogEnable trio, off by default and
// enabled explicitly via -verbose.
package cfglog

import "fmt"

// Logger receives formatted diagnostic lines.
type Logger interface {
	Log(msg string)
}

type defaultLogger struct{}

func (defaultLogger) Log(msg string) {}

var (
	impl    Logger = defaultLogger{}
	enabled        = false
)

// SetLogger installs impl as the active logger. A nil impl restores the
// no-op default.
func SetLogger(l Logger) {
	if l == nil {
		impl = defaultLogger{}
		return
	}
	impl = l
}

// SetLogEnable toggles whether Logf actually reaches the installed logger.
func SetLogEnable(enable bool) {
	enabled = enable
}

// Logf formats and logs a message if logging is enabled.
func Logf(format string, args ...any) {
	if !enabled {
		return
	}
	impl.Log(fmt.Sprintf(format, args...))
}

// WriterLogger adapts a func(string) into a Logger; a nil Write drops
// every message.
type WriterLogger struct {
	Write func(string)
}

// Log implements Logger.
func (w WriterLogger) Log(msg string) {
	if w.Write != nil {
		w.Write(msg)
	}
}
