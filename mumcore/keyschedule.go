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

import "github.com/pkg/errors"

// KeyMaterial holds everything InitKey derives from a 4096-byte user key:
// the 560 subkeys and, for one configured block type, the per-round
// permutation and position tables. Two engines initialized with the same
// user key and block type hold byte-identical KeyMaterial.
type KeyMaterial struct {
	subkeys []byte // numSubkeys * subkeySize, flat

	numRows int

	permute8    [numRounds][maxRows][256]int
	permute8Inv [numRounds][maxRows][256]int
	permute3    [numRounds][8]int
	bitmask     [numRounds][4]byte

	posX, posY       [numRounds][maxRows][cellsPerRow][numPositions]byte
	posXInv, posYInv [numRounds][maxRows][cellsPerRow][numPositions]byte
}

// Subkey returns the 4096-byte slice for the given subkey index.
func (k *KeyMaterial) Subkey(index int) ([]byte, error) {
	if index < 0 || index >= numSubkeys {
		return nil, errors.Wrapf(ErrSubkeyRange, "index %d", index)
	}
	return k.subkeys[index*subkeySize : (index+1)*subkeySize], nil
}

// PRNGWindow returns the 64 KiB subkey window reserved for worker slot id
// (id & 15), as described in §3 of SPEC_FULL.md.
func (k *KeyMaterial) PRNGWindow(id int) []byte {
	slot := id & (MaxWorkers - 1)
	base := (prngSubkeyBase + slot*prngWindowLen) * subkeySize
	return k.subkeys[base : base+prngBufferSize]
}

// InitKey derives subkeys and round tables for blockType from a 4096-byte
// user key. It is the Go counterpart of CMumEngine::InitKey.
func InitKey(userKey []byte, blockType BlockType) (*KeyMaterial, error) {
	if len(userKey) != keySize {
		return nil, errors.Errorf("mumcore: user key must be %d bytes, got %d", keySize, len(userKey))
	}
	if !blockType.Valid() {
		return nil, errors.Wrapf(ErrInvalidBlock, "block type %d", blockType)
	}

	k := &KeyMaterial{
		subkeys: expandSubkeys(userKey),
		numRows: blockType.NumRows(),
	}
	k.buildTables()
	return k, nil
}

// expandSubkeys derives the 560*4096-byte subkey table from the user key
// (open question O1): a bootstrap prng is seeded from a window built by
// tiling the user key 16 times (4096*16 = 65536 bytes exactly), and its
// keystream is drawn off in 560 successive 4096-byte slices.
func expandSubkeys(userKey []byte) []byte {
	window := make([]byte, prngBufferSize)
	for i := 0; i < prngWindowLen; i++ {
		copy(window[i*subkeySize:(i+1)*subkeySize], userKey)
	}
	boot := newPRNG(window)

	subkeys := make([]byte, numSubkeys*subkeySize)
	for i := 0; i < numSubkeys; i++ {
		boot.fetch(subkeys[i*subkeySize : (i+1)*subkeySize])
	}
	return subkeys
}

func (k *KeyMaterial) buildTables() {
	for r := 0; r < numRounds; r++ {
		perm3 := createPermuteTable(8, k.mustSubkey(permute3Base+r))
		copy(k.permute3[r][:], perm3)
		k.bitmask[r] = deriveBitmask(perm3)

		for y := 0; y < k.numRows; y++ {
			perm8 := createPermuteTable(256, k.mustSubkey(permute8Base+r*maxRows+y))
			copy(k.permute8[r][y][:], perm8)
			copy(k.permute8Inv[r][y][:], invertPermutation(perm8))
		}

		domain := k.numRows * cellsPerRow
		for pos := 0; pos < numPositions; pos++ {
			perm10 := createPermuteTable(domain, k.mustSubkey(permute10Base+r*numPositions+pos))
			for i, v := range perm10 {
				destY, destX := i/cellsPerRow, i%cellsPerRow
				srcX, srcY := v&0x1F, (v>>5)&0x1F
				k.posX[r][destY][destX][pos] = byte(srcX)
				k.posY[r][destY][destX][pos] = byte(srcY)
				k.posXInv[r][srcY][srcX][pos] = byte(destX)
				k.posYInv[r][srcY][srcX][pos] = byte(destY)
			}
		}
	}
}

func (k *KeyMaterial) mustSubkey(index int) []byte {
	s, err := k.Subkey(index)
	if err != nil {
		// Indices here are all compile-time constants within [0, prngSubkeyBase);
		// a failure means const.go's layout was changed inconsistently.
		panic(err)
	}
	return s
}

// deriveBitmask resolves O2: each of the 8 bit positions is assigned to one
// of the 4 mask bytes by perm3[bit] % 4. Since perm3 is a permutation of
// {0..7}, each residue class mod 4 receives exactly two bit positions, so
// the four bytes are pairwise bit-disjoint and their OR is always 0xFF.
func deriveBitmask(perm3 []int) [4]byte {
	var mask [4]byte
	for bit := 0; bit < 8; bit++ {
		group := perm3[bit] % 4
		mask[group] |= 1 << uint(bit)
	}
	return mask
}

// confuseClav returns the 4096-byte subkey used as the confusion pass's
// keystream for round r.
func (k *KeyMaterial) confuseClav(r int) []byte {
	return k.mustSubkey(clavBase + r)
}
