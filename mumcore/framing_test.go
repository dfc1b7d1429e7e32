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

func TestFrameLayoutSumsToBlockSize(t *testing.T) {
	for _, bt := range allBlockTypes {
		d := blockDims[bt]
		l := layoutFor(bt)
		total := d.padA + d.dataA + d.padB + 4 + 2 + 2 + d.padC + d.dataB + d.padD
		require.Equal(t, d.encrypted, total, bt.String())
		require.Equal(t, d.encrypted, l.padD+d.padD, bt.String())
	}
}

func TestFrameLayout4096MatchesWorkedExample(t *testing.T) {
	l := layoutFor(BlockType4096)
	require.Equal(t, 0, l.padA)
	require.Equal(t, 32, l.dataA)
	require.Equal(t, 2504, l.padB)
	require.Equal(t, 2516, l.checksum)
	require.Equal(t, 2520, l.length)
	require.Equal(t, 2522, l.seqnum)
	require.Equal(t, 2524, l.padC)
	require.Equal(t, 2536, l.dataB)
	require.Equal(t, 4064, l.padD)
	require.Equal(t, 4096, l.padD+32)
}

func TestPackUnpackRoundTrip(t *testing.T) {
	bt := BlockType512
	rng := newPRNG(testWindow(21))
	dst := make([]byte, bt.EncryptedBlockSize())
	plain := []byte("the quick brown fox jumps over the lazy dog")

	require.NoError(t, pack(dst, plain, len(plain), 7, bt, rng))

	out, length, seq, err := unpack(dst, bt, 0)
	require.NoError(t, err)
	require.Equal(t, len(plain), length)
	require.EqualValues(t, 7, seq)
	require.Equal(t, plain, out)
}

func TestPackRejectsOversizedPlaintext(t *testing.T) {
	bt := BlockType128
	rng := newPRNG(testWindow(22))
	dst := make([]byte, bt.EncryptedBlockSize())
	plain := make([]byte, bt.PlaintextBlockSize(true)+1)

	err := pack(dst, plain, len(plain), 0, bt, rng)
	require.ErrorIs(t, err, ErrInvalidEncrypt)
}

func TestUnpackDetectsChecksumCorruption(t *testing.T) {
	bt := BlockType256
	rng := newPRNG(testWindow(23))
	dst := make([]byte, bt.EncryptedBlockSize())
	require.NoError(t, pack(dst, []byte("hello"), 5, 1, bt, rng))

	dst[layoutFor(bt).dataA] ^= 0xFF

	_, _, _, err := unpack(dst, bt, 3)
	var ferr *FrameError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, 3, ferr.BlockNum)
	require.ErrorIs(t, ferr, ErrChecksum)
}

func TestUnpackDetectsBlockTypeMismatch(t *testing.T) {
	bt := BlockType256
	rng := newPRNG(testWindow(24))
	dst := make([]byte, bt.EncryptedBlockSize())
	require.NoError(t, pack(dst, []byte("hello"), 5, 1, bt, rng))

	// Forge the length field's high 3 bits to claim a different block type,
	// without touching the buffer's actual (fixed) size.
	l := layoutFor(bt)
	forged := uint16(5) | uint16(BlockType512.Code())<<13
	dst[l.length] = byte(forged)
	dst[l.length+1] = byte(forged >> 8)

	_, _, _, err := unpack(dst, bt, 0)

	var ferr *FrameError
	require.ErrorAs(t, err, &ferr)
	require.ErrorIs(t, ferr, ErrBlockType)
}

func TestUnpackDetectsLengthOverflow(t *testing.T) {
	bt := BlockType128
	rng := newPRNG(testWindow(25))
	dst := make([]byte, bt.EncryptedBlockSize())
	require.NoError(t, pack(dst, []byte("ok"), 2, 1, bt, rng))

	l := layoutFor(bt)
	// Forge an over-large length while keeping this block type's code bits.
	forged := uint16(bt.PlaintextBlockSize(true)+1) | uint16(bt.Code())<<13
	dst[l.length] = byte(forged)
	dst[l.length+1] = byte(forged >> 8)

	_, _, _, err := unpack(dst, bt, 0)
	var ferr *FrameError
	require.ErrorAs(t, err, &ferr)
	require.ErrorIs(t, ferr, ErrBlockLength)
}
