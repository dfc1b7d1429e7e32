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

package main

import (
	"io"

	"github.com/golang/snappy"
)

// compReader wraps src with snappy decompression, undoing compWriter.
type compReader struct {
	r *snappy.Reader
}

func newCompReader(src io.Reader) *compReader {
	return &compReader{r: snappy.NewReader(src)}
}

func (c *compReader) Read(p []byte) (int, error) { return c.r.Read(p) }

// compWriter wraps dst with buffered snappy compression, run over plaintext
// before it reaches the cipher. Ciphertext itself is never compressed: it is
// already indistinguishable from random data.
type compWriter struct {
	w *snappy.Writer
}

func newCompWriter(dst io.Writer) *compWriter {
	return &compWriter{w: snappy.NewBufferedWriter(dst)}
}

func (c *compWriter) Write(p []byte) (int, error) { return c.w.Write(p) }

func (c *compWriter) Close() error { return c.w.Close() }
