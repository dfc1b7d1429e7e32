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

func testUserKey(seed byte) []byte {
	key := make([]byte, keySize)
	for i := range key {
		key[i] = byte(int(seed) + i)
	}
	return key
}

func TestInitKeyRejectsBadInput(t *testing.T) {
	_, err := InitKey(make([]byte, 100), BlockType4096)
	require.Error(t, err)

	_, err = InitKey(testUserKey(1), BlockType(99))
	require.ErrorIs(t, err, ErrInvalidBlock)
}

func TestInitKeyDeterministic(t *testing.T) {
	key := testUserKey(5)
	a, err := InitKey(key, BlockType1024)
	require.NoError(t, err)
	b, err := InitKey(key, BlockType1024)
	require.NoError(t, err)

	require.Equal(t, a.subkeys, b.subkeys)
	require.Equal(t, a.permute3, b.permute3)
	require.Equal(t, a.bitmask, b.bitmask)
	require.Equal(t, a.posX, b.posX)
}

func TestInitKeyDiffersAcrossKeys(t *testing.T) {
	a, err := InitKey(testUserKey(1), BlockType512)
	require.NoError(t, err)
	b, err := InitKey(testUserKey(2), BlockType512)
	require.NoError(t, err)
	require.NotEqual(t, a.subkeys, b.subkeys)
}

func TestBitmaskPartition(t *testing.T) {
	k, err := InitKey(testUserKey(9), BlockType4096)
	require.NoError(t, err)
	for r := 0; r < numRounds; r++ {
		m := k.bitmask[r]
		require.EqualValues(t, 0xFF, m[0]|m[1]|m[2]|m[3])
		require.Zero(t, m[0]&m[1])
		require.Zero(t, m[0]&m[2])
		require.Zero(t, m[0]&m[3])
		require.Zero(t, m[1]&m[2])
		require.Zero(t, m[1]&m[3])
		require.Zero(t, m[2]&m[3])
	}
}

func TestPermute8Invertible(t *testing.T) {
	k, err := InitKey(testUserKey(3), BlockType256)
	require.NoError(t, err)
	for r := 0; r < numRounds; r++ {
		for y := 0; y < k.numRows; y++ {
			for v := 0; v < 256; v++ {
				require.Equal(t, v, k.permute8Inv[r][y][k.permute8[r][y][v]])
			}
		}
	}
}

func TestPosTablesInvertible(t *testing.T) {
	k, err := InitKey(testUserKey(4), BlockType512)
	require.NoError(t, err)
	for r := 0; r < numRounds; r++ {
		for y := 0; y < k.numRows; y++ {
			for x := 0; x < cellsPerRow; x++ {
				for pos := 0; pos < numPositions; pos++ {
					sx := int(k.posX[r][y][x][pos])
					sy := int(k.posY[r][y][x][pos])
					require.Equal(t, byte(x), k.posXInv[r][sy][sx][pos])
					require.Equal(t, byte(y), k.posYInv[r][sy][sx][pos])
				}
			}
		}
	}
}

func TestSubkeyRange(t *testing.T) {
	k, err := InitKey(testUserKey(6), BlockType128)
	require.NoError(t, err)

	_, err = k.Subkey(-1)
	require.ErrorIs(t, err, ErrSubkeyRange)

	_, err = k.Subkey(numSubkeys)
	require.ErrorIs(t, err, ErrSubkeyRange)

	s, err := k.Subkey(0)
	require.NoError(t, err)
	require.Len(t, s, subkeySize)
}

func TestPRNGWindowWraps(t *testing.T) {
	k, err := InitKey(testUserKey(7), BlockType128)
	require.NoError(t, err)
	w0 := k.PRNGWindow(0)
	w16 := k.PRNGWindow(16) // wraps to slot 0 via id & 15
	require.Equal(t, w0, w16)
	require.Len(t, w0, prngBufferSize)
}
