// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package mumcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testWindow(seed byte) []byte {
	w := make([]byte, prngBufferSize)
	for i := range w {
		w[i] = byte(int(seed) + i)
	}
	return w
}

func TestNewPRNGPanicsOnBadWindowSize(t *testing.T) {
	require.Panics(t, func() { newPRNG(make([]byte, 10)) })
}

func TestPRNGDeterministic(t *testing.T) {
	w := testWindow(1)
	a := newPRNG(append([]byte(nil), w...))
	b := newPRNG(append([]byte(nil), w...))

	bufA := make([]byte, 128)
	bufB := make([]byte, 128)
	a.fetch(bufA)
	b.fetch(bufB)
	require.Equal(t, bufA, bufB)
}

func TestPRNGVariesWithWindow(t *testing.T) {
	a := newPRNG(testWindow(1))
	b := newPRNG(testWindow(2))

	bufA := make([]byte, 64)
	bufB := make([]byte, 64)
	a.fetch(bufA)
	b.fetch(bufB)
	require.NotEqual(t, bufA, bufB)
}

func TestPRNGFetchAcrossRegenerateBoundary(t *testing.T) {
	p := newPRNG(testWindow(3))

	// Drain all but a few bytes, then fetch past the remainder: this must
	// trigger regenerate() rather than return a short read.
	first := make([]byte, prngBufferSize-10)
	p.fetch(first)

	second := make([]byte, 64)
	require.NotPanics(t, func() { p.fetch(second) })
	require.Len(t, second, 64)
}

func TestPRNGFetchIsNotConstant(t *testing.T) {
	p := newPRNG(testWindow(4))
	a := make([]byte, 32)
	b := make([]byte, 32)
	p.fetch(a)
	p.fetch(b)
	require.NotEqual(t, a, b)
}
