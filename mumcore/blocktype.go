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

import "strconv"

// BlockType identifies one of the six fixed encrypted-block sizes.
type BlockType int

const (
	BlockTypeInvalid BlockType = 0
	BlockType128     BlockType = 1
	BlockType256     BlockType = 2
	BlockType512     BlockType = 3
	BlockType1024    BlockType = 4
	BlockType2048    BlockType = 5
	BlockType4096    BlockType = 6
)

// dims holds the fixed layout constants for one block type, taken verbatim
// from the block-size table: encrypted size, data region sizes and the four
// padding region sizes (A/B/C/D order).
type dims struct {
	encrypted          int
	numRows            int
	dataA, dataB       int
	padA, padB, padC, padD int
}

var blockDims = map[BlockType]dims{
	BlockType128:  {128, 1, 72, 40, 2, 2, 2, 2},
	BlockType256:  {256, 2, 148, 92, 2, 2, 2, 2},
	BlockType512:  {512, 4, 304, 188, 2, 4, 4, 2},
	BlockType1024: {1024, 8, 618, 382, 4, 4, 4, 4},
	BlockType2048: {2048, 16, 1236, 764, 16, 4, 4, 16},
	BlockType4096: {4096, 32, 2472, 1528, 32, 12, 12, 32},
}

// Valid reports whether b names one of the six supported block sizes.
func (b BlockType) Valid() bool {
	_, ok := blockDims[b]
	return ok
}

// Code returns the 3-bit block-type code embedded in the framing envelope.
func (b BlockType) Code() int { return int(b) }

// EncryptedBlockSize returns the on-wire size of one encrypted block.
func (b BlockType) EncryptedBlockSize() int { return blockDims[b].encrypted }

// PlaintextBlockSize returns the maximum plaintext carried by one block:
// the combined size of the dataA and dataB regions when padding is on, or
// the full encrypted size when padding is off (there is no envelope).
func (b BlockType) PlaintextBlockSize(paddingOn bool) int {
	d := blockDims[b]
	if paddingOn {
		return d.dataA + d.dataB
	}
	return d.encrypted
}

// NumRows returns the number of 32-cell rows in this block type's grid.
func (b BlockType) NumRows() int { return blockDims[b].numRows }

// EncryptedSizeFor returns the number of bytes Encrypt will produce for a
// plaintext of plaintextSize bytes, i.e. the buffer size a caller must
// allocate before calling Encrypt. Ports MumEncryptedSize.
func (b BlockType) EncryptedSizeFor(plaintextSize int, paddingOn bool) int {
	if plaintextSize == 0 {
		return 0
	}
	plainBlock := b.PlaintextBlockSize(paddingOn)
	numBlocks := (plaintextSize + plainBlock - 1) / plainBlock
	return numBlocks * b.EncryptedBlockSize()
}

// ParseBlockType maps a .muN file extension's trailing digit to a BlockType.
func ParseBlockType(code int) BlockType {
	bt := BlockType(code)
	if !bt.Valid() {
		return BlockTypeInvalid
	}
	return bt
}

// String implements fmt.Stringer for diagnostics and CLI output.
func (b BlockType) String() string {
	if d, ok := blockDims[b]; ok {
		return strconv.Itoa(d.encrypted)
	}
	return "invalid"
}
