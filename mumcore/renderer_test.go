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

func TestRendererEncryptDecryptBlockRoundTripPadded(t *testing.T) {
	key, err := InitKey(testUserKey(50), BlockType1024)
	require.NoError(t, err)
	enc := newRenderer(key, BlockType1024, true, 0)
	dec := newRenderer(key, BlockType1024, true, 0)

	plain := []byte("a short message")
	encBuf := make([]byte, BlockType1024.EncryptedBlockSize())
	require.NoError(t, enc.EncryptBlock(encBuf, plain, len(plain), 9))

	plainBuf := make([]byte, BlockType1024.PlaintextBlockSize(true))
	length, seq, err := dec.DecryptBlock(plainBuf, encBuf)
	require.NoError(t, err)
	require.EqualValues(t, 9, seq)
	require.Equal(t, plain, plainBuf[:length])
}

func TestRendererEncryptDecryptBlockRoundTripUnpadded(t *testing.T) {
	key, err := InitKey(testUserKey(51), BlockType256)
	require.NoError(t, err)
	enc := newRenderer(key, BlockType256, false, 0)
	dec := newRenderer(key, BlockType256, false, 0)

	plain := make([]byte, BlockType256.EncryptedBlockSize())
	copy(plain, []byte("exact block size payload, no framing"))

	encBuf := make([]byte, BlockType256.EncryptedBlockSize())
	require.NoError(t, enc.EncryptBlock(encBuf, plain, len(plain), 0))

	plainBuf := make([]byte, BlockType256.PlaintextBlockSize(false))
	length, _, err := dec.DecryptBlock(plainBuf, encBuf)
	require.NoError(t, err)
	require.Equal(t, plain, plainBuf[:length])
}

func TestRendererStreamRoundTripShortAndExact(t *testing.T) {
	bt := BlockType512
	key, err := InitKey(testUserKey(52), bt)
	require.NoError(t, err)
	enc := newRenderer(key, bt, true, 0)
	dec := newRenderer(key, bt, true, 0)

	plainBlock := bt.PlaintextBlockSize(true)
	cases := [][]byte{
		[]byte("short"),
		make([]byte, plainBlock),          // exact one block
		make([]byte, plainBlock*3+17),     // several blocks plus a short tail
	}
	for i := range cases[1] {
		cases[1][i] = byte(i)
	}
	for i := range cases[2] {
		cases[2][i] = byte(i * 5)
	}

	for _, plain := range cases {
		encBuf := make([]byte, bt.EncryptedSizeFor(len(plain), true))
		n, err := enc.Encrypt(encBuf, plain, 1)
		require.NoError(t, err)
		require.Equal(t, len(encBuf), n)

		plainBuf := make([]byte, bt.PlaintextBlockSize(true)*((len(plain)+plainBlock-1)/plainBlock))
		outLen, err := dec.Decrypt(plainBuf, encBuf[:n])
		require.NoError(t, err)
		require.Equal(t, plain, plainBuf[:outLen])
	}
}

func TestRendererDecryptContinuesPastFrameError(t *testing.T) {
	bt := BlockType128
	key, err := InitKey(testUserKey(53), bt)
	require.NoError(t, err)
	enc := newRenderer(key, bt, true, 0)
	dec := newRenderer(key, bt, true, 0)

	plain := []byte("two-block message padded out to exercise a corrupted middle block 0123456789")
	plainBlock := bt.PlaintextBlockSize(true)
	encBuf := make([]byte, bt.EncryptedSizeFor(len(plain), true))
	n, err := enc.Encrypt(encBuf, plain, 0)
	require.NoError(t, err)
	require.True(t, n >= bt.EncryptedBlockSize()*2)

	// Corrupt the ciphertext of the first block only.
	encBuf[0] ^= 0xFF

	plainBuf := make([]byte, plainBlock*(n/bt.EncryptedBlockSize()))
	_, err = dec.Decrypt(plainBuf, encBuf[:n])
	require.Error(t, err)
}

func TestRendererRejectsUndersizedDst(t *testing.T) {
	key, err := InitKey(testUserKey(54), BlockType128)
	require.NoError(t, err)
	r := newRenderer(key, BlockType128, true, 0)
	err = r.EncryptBlock(make([]byte, 4), []byte("hi"), 2, 0)
	require.Error(t, err)
}
