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
	"encoding/binary"

	"github.com/pkg/errors"
)

// frameLayout holds the byte offsets of every envelope field for one block
// type, in the fixed padA/dataA/padB/checksum/length/seqnum/padC/dataB/padD
// order.
type frameLayout struct {
	padA, dataA, padB, checksum, length, seqnum, padC, dataB, padD int
}

func layoutFor(bt BlockType) frameLayout {
	d := blockDims[bt]
	var l frameLayout
	off := 0
	l.padA, off = off, off+d.padA
	l.dataA, off = off, off+d.dataA
	l.padB, off = off, off+d.padB
	l.checksum, off = off, off+4
	l.length, off = off, off+2
	l.seqnum, off = off, off+2
	l.padC, off = off, off+d.padC
	l.dataB, off = off, off+d.dataB
	l.padD, off = off, off+d.padD
	return l
}

// computeChecksum sums the payload as little-endian uint32 words, wrapping.
// payload's length is always a multiple of 4 for every supported block type.
func computeChecksum(payload []byte) uint32 {
	var sum uint32
	for i := 0; i < len(payload); i += 4 {
		sum += binary.LittleEndian.Uint32(payload[i:])
	}
	return sum
}

// pack writes plaintext[:length], random padding, checksum, length/blocktype
// field and seqnum into dst, which must be exactly bt.EncryptedBlockSize()
// bytes. Random bytes (padding, and any unused plaintext tail) come from rng.
func pack(dst, plaintext []byte, length int, seqnum uint16, bt BlockType, rng *prng) error {
	d := blockDims[bt]
	payloadMax := bt.PlaintextBlockSize(true)
	if length > payloadMax {
		return errors.Wrapf(ErrInvalidEncrypt, "length %d exceeds max payload %d", length, payloadMax)
	}

	l := layoutFor(bt)
	rng.fetch(dst[l.padA : l.padA+d.padA])
	rng.fetch(dst[l.padB : l.padB+d.padB])
	rng.fetch(dst[l.padC : l.padC+d.padC])
	rng.fetch(dst[l.padD : l.padD+d.padD])

	payload := make([]byte, payloadMax)
	copy(payload, plaintext[:length])
	if length < payloadMax {
		rng.fetch(payload[length:])
	}
	copy(dst[l.dataA:l.dataA+d.dataA], payload[:d.dataA])
	copy(dst[l.dataB:l.dataB+d.dataB], payload[d.dataA:])

	binary.LittleEndian.PutUint32(dst[l.checksum:], computeChecksum(payload))
	lengthField := uint16(length) | uint16(bt.Code())<<13
	binary.LittleEndian.PutUint16(dst[l.length:], lengthField)
	binary.LittleEndian.PutUint16(dst[l.seqnum:], seqnum)
	return nil
}

// unpack validates and extracts the plaintext, length and sequence number
// from an encrypted block. On a framing error it returns a *FrameError
// wrapping the specific cause, with length reset to 0, matching §7's rule
// that per-block validation failures do not abort the surrounding stream.
func unpack(src []byte, bt BlockType, blockNum int) (plaintext []byte, length int, seqnum uint16, err error) {
	d := blockDims[bt]
	l := layoutFor(bt)

	lengthField := binary.LittleEndian.Uint16(src[l.length:])
	if code := int(lengthField >> 13); code != bt.Code() {
		return nil, 0, 0, &FrameError{Err: ErrBlockType, BlockNum: blockNum}
	}

	length = int(lengthField & 0x1FFF)
	payloadMax := bt.PlaintextBlockSize(true)
	if length > payloadMax {
		return nil, 0, 0, &FrameError{Err: ErrBlockLength, BlockNum: blockNum}
	}

	payload := make([]byte, payloadMax)
	copy(payload[:d.dataA], src[l.dataA:l.dataA+d.dataA])
	copy(payload[d.dataA:], src[l.dataB:l.dataB+d.dataB])

	stored := binary.LittleEndian.Uint32(src[l.checksum:])
	if computeChecksum(payload) != stored {
		return nil, 0, 0, &FrameError{Err: ErrChecksum, BlockNum: blockNum}
	}

	seqnum = binary.LittleEndian.Uint16(src[l.seqnum:])
	return payload[:length], length, seqnum, nil
}
