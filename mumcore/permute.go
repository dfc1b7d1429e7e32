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

// Cycle constants for createPermuteTable, fixed by the design (see O3 in
// DESIGN.md): seven passes over the domain, with an index and an offset
// that both advance between passes.
const (
	numCycles       = 7
	indexIncrement  = 3
	offsetIncrement = 5
)

// createPermuteTable deterministically derives a permutation of {0..n-1}
// from subkey material, by repeated transposition: every step of every
// cycle swaps two positions in an otherwise-identity table, so the result
// is a bijection on {0..n-1} by construction regardless of the material.
// The partner of each step is drawn from four rolling bytes of material,
// little-endian, folded into the domain with the cycle's offset.
func createPermuteTable(n int, material []byte) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	if n <= 1 || len(material) == 0 {
		return perm
	}

	cursor := 0
	idx, offset := 0, 0
	for cycle := 0; cycle < numCycles; cycle++ {
		idx = (idx + indexIncrement) % n
		offset = (offset + offsetIncrement) % n
		for step := 0; step < n; step++ {
			i := (idx + step) % n
			v := uint32(material[cursor%len(material)]) |
				uint32(material[(cursor+1)%len(material)])<<8 |
				uint32(material[(cursor+2)%len(material)])<<16 |
				uint32(material[(cursor+3)%len(material)])<<24
			cursor += 4
			partner := int((v + uint32(offset)) % uint32(n))
			perm[i], perm[partner] = perm[partner], perm[i]
		}
	}
	return perm
}

// invertPermutation returns inv such that inv[perm[i]] == i for all i.
func invertPermutation(perm []int) []int {
	inv := make([]int, len(perm))
	for i, v := range perm {
		inv[v] = i
	}
	return inv
}
