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

import "encoding/binary"

// prngBufferSize is the size of both the "ready" output buffer and the
// subkey window a prng is bound to: 64 KiB.
const prngBufferSize = 65536

// prngKeyOffset is where the 256-byte initialization key sits inside the
// 64 KiB window: 65536 - 256 - 89.
const prngKeyOffset = prngBufferSize - 256 - 89

// prng is a deterministic byte-stream generator: an RC4-style 256-byte
// state driven by a whitening step, regenerated 64 KiB at a time and
// XORed against a bound subkey window so the stream also depends on the
// window's content, not only its initial permutation of S.
type prng struct {
	state [256]byte
	a, b  byte

	window []byte // 64 KiB, owned by the caller; read-only here
	ready  [prngBufferSize]byte
	pos    int
}

// newPRNG binds a prng to a 64 KiB window and runs Init over it.
func newPRNG(window []byte) *prng {
	if len(window) != prngBufferSize {
		panic("mumcore: prng window must be exactly 64 KiB")
	}
	p := &prng{window: window}
	p.init()
	return p
}

func (p *prng) init() {
	for i := 0; i < 256; i++ {
		p.state[i] = byte(i)
	}
	key := p.window[prngKeyOffset : prngKeyOffset+256]
	var j byte
	for i := 0; i < 256; i++ {
		j = j + p.state[i] + key[i]
		p.state[i], p.state[j] = p.state[j], p.state[i]
	}
	p.a, p.b = 0, 0
	p.pos = prngBufferSize // force a regenerate on the first fetch
}

// step advances the RC4-style state by one byte.
func (p *prng) step() byte {
	p.a++
	p.b += p.state[p.a]
	p.state[p.a], p.state[p.b] = p.state[p.b], p.state[p.a]
	c := p.state[p.a] + p.state[p.b]
	return p.state[c]
}

// regenerate refills the ready buffer and whitens it against the window.
func (p *prng) regenerate() {
	for i := 0; i < prngBufferSize; i++ {
		p.ready[i] = p.step()
	}
	for i := 0; i < prngBufferSize; i += 4 {
		w := binary.LittleEndian.Uint32(p.ready[i:]) ^ binary.LittleEndian.Uint32(p.window[i:])
		binary.LittleEndian.PutUint32(p.ready[i:], w)
	}
	p.pos = 0
}

// fetch copies len(dst) bytes of keystream into dst, regenerating the
// ready buffer first if it does not hold enough unread bytes. len(dst)
// must not exceed prngBufferSize.
func (p *prng) fetch(dst []byte) {
	if len(dst) > prngBufferSize-p.pos {
		p.regenerate()
	}
	copy(dst, p.ready[p.pos:p.pos+len(dst)])
	p.pos += len(dst)
}
