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

func bijective(t *testing.T, perm []int) {
	t.Helper()
	seen := make([]bool, len(perm))
	for _, v := range perm {
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, len(perm))
		require.False(t, seen[v], "value %d repeated", v)
		seen[v] = true
	}
}

func TestCreatePermuteTableBijective(t *testing.T) {
	material := make([]byte, 4096)
	for i := range material {
		material[i] = byte(i * 7)
	}
	for _, n := range []int{8, 256, 32, 1024} {
		perm := createPermuteTable(n, material)
		require.Len(t, perm, n)
		bijective(t, perm)
	}
}

func TestCreatePermuteTableDeterministic(t *testing.T) {
	material := make([]byte, 4096)
	for i := range material {
		material[i] = byte(i * 13)
	}
	a := createPermuteTable(256, material)
	b := createPermuteTable(256, material)
	require.Equal(t, a, b)
}

func TestCreatePermuteTableVariesWithMaterial(t *testing.T) {
	m1 := make([]byte, 4096)
	m2 := make([]byte, 4096)
	for i := range m1 {
		m1[i] = byte(i)
		m2[i] = byte(i + 1)
	}
	a := createPermuteTable(256, m1)
	b := createPermuteTable(256, m2)
	require.NotEqual(t, a, b)
}

func TestInvertPermutation(t *testing.T) {
	material := make([]byte, 4096)
	for i := range material {
		material[i] = byte(i * 31)
	}
	perm := createPermuteTable(256, material)
	inv := invertPermutation(perm)
	for i, v := range perm {
		require.Equal(t, i, inv[v])
	}
}
