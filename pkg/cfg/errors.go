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

import (
	goerrors "github.com/btcsuite/goleveldb/leveldb/errors"
)

// Semantic-error sentinels: these represent assertion failures in
// the source input, not ordinary lexical/syntactic mistakes, so they are
// fixed sentinels rather than per-occurrence formatted errors. Wrapped with
// fmt.Errorf at the call site to attach the offending address.
var (
	ErrDuplicateAddress  = goerrors.New("cfg: duplicate block/phantom address")
	ErrBackwardPromotion = goerrors.New("cfg: cannot demote a block back to a phantom")
	ErrDuplicateSignal   = goerrors.New("cfg: signal id already attached to this block")
)
