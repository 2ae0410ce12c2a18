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

package dcfg

import (
	"fmt"

	"github.com/master-g/cfgconv/pkg/addr"
)

// The DCFG document is a dense, header-led tabular JSON format: every
// homogeneous array's first row is a column-name header and is skipped.
// These helpers walk the generic interface{} tree encoding/json produces
// rather than a fixed struct, since the row shapes vary by section.

func asArray(v interface{}, field string) ([]interface{}, error) {
	arr, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("dcfg: %s is not an array", field)
	}
	return arr, nil
}

// dataRows returns every row after the header row of a homogeneous array.
func dataRows(v interface{}, field string) ([]interface{}, error) {
	arr, err := asArray(v, field)
	if err != nil {
		return nil, err
	}
	if len(arr) == 0 {
		return nil, nil
	}
	return arr[1:], nil
}

func asObject(v interface{}, field string) (map[string]interface{}, error) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("dcfg: %s is not an object", field)
	}
	return obj, nil
}

func row(v interface{}, field string) ([]interface{}, error) {
	return asArray(v, field)
}

func cell(r []interface{}, i int, field string) (interface{}, error) {
	if i < 0 || i >= len(r) {
		return nil, fmt.Errorf("dcfg: %s: row has no column %d", field, i)
	}
	return r[i], nil
}

func cellInt(r []interface{}, i int, field string) (int, error) {
	v, err := cell(r, i, field)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("dcfg: %s[%d] is not a number", field, i)
	}
	return int(f), nil
}

func cellUint(r []interface{}, i int, field string) (uint64, error) {
	n, err := cellInt(r, i, field)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("dcfg: %s[%d] is negative", field, i)
	}
	return uint64(n), nil
}

func cellString(r []interface{}, i int, field string) (string, error) {
	v, err := cell(r, i, field)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("dcfg: %s[%d] is not a string", field, i)
	}
	return s, nil
}

func cellAddr(r []interface{}, i int, field string) (addr.Address, error) {
	s, err := cellString(r, i, field)
	if err != nil {
		return 0, err
	}
	return addr.Parse(s)
}
