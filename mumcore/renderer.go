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

// renderer drives one block type's pack -> upload -> rounds -> download ->
// unpack pipeline. It owns a private round engine and PRNG window, so it is
// never shared between goroutines; the thread-pool dispatcher gives each
// worker its own renderer (see dispatcher.go).
type renderer struct {
	blockType BlockType
	padding   bool
	key       *KeyMaterial
	engine    *roundEngine
	rng       *prng

	numEncrypted uint64
	numDecrypted uint64
}

// newRenderer builds a renderer bound to workerID's PRNG window. Scalar
// (single-threaded) use passes workerID 0.
func newRenderer(key *KeyMaterial, blockType BlockType, padding bool, workerID int) *renderer {
	return &renderer{
		blockType: blockType,
		padding:   padding,
		key:       key,
		engine:    newRoundEngine(key, blockType),
		rng:       newPRNG(key.PRNGWindow(workerID)),
	}
}

// EncryptBlock encrypts one plaintext block of length bytes (length <=
// PlaintextBlockSize) into dst, which must be at least EncryptedBlockSize
// bytes.
func (r *renderer) EncryptBlock(dst, src []byte, length int, seqnum uint16) error {
	blockSize := r.blockType.EncryptedBlockSize()
	if len(dst) < blockSize {
		return errors.Errorf("mumcore: dst too small: need %d, have %d", blockSize, len(dst))
	}
	if r.padding {
		if err := pack(r.engine.p0, src, length, seqnum, r.blockType, r.rng); err != nil {
			return err
		}
	} else {
		copy(r.engine.p0, src)
	}
	r.engine.encryptBlock()
	r.engine.store(dst[:blockSize])
	r.numEncrypted++
	return nil
}

// DecryptBlock decrypts one encrypted block from src into dst, returning
// the original length and sequence number. dst must be at least
// PlaintextBlockSize(padding) bytes; on a *FrameError, dst is left
// untouched and length is 0, per §7's frame-validation error class.
func (r *renderer) DecryptBlock(dst, src []byte) (length int, seqnum uint16, err error) {
	blockSize := r.blockType.EncryptedBlockSize()
	r.engine.load(src[:blockSize])
	r.engine.decryptBlock()

	if r.padding {
		scratch := make([]byte, blockSize)
		r.engine.store(scratch)
		plaintext, plen, pseq, perr := unpack(scratch, r.blockType, int(r.numDecrypted))
		r.numDecrypted++
		if perr != nil {
			return 0, 0, perr
		}
		copy(dst, plaintext)
		return plen, pseq, nil
	}

	r.engine.store(dst[:blockSize])
	r.numDecrypted++
	return blockSize, 0, nil
}

// Encrypt encrypts an arbitrary-length stream, block by block, starting at
// seqnum. The final short block is zero-extended before encryption; its
// real length is carried in the framing envelope (or is simply the whole
// block, when padding is off). dst must be at least
// EncryptedSizeFor(len(src)) bytes.
func (r *renderer) Encrypt(dst, src []byte, seqnum uint16) (outlen int, err error) {
	plainSize := r.blockType.PlaintextBlockSize(r.padding)
	encSize := r.blockType.EncryptedBlockSize()

	pos, dpos := 0, 0
	seq := seqnum
	for pos < len(src) {
		remaining := len(src) - pos
		length := plainSize
		var block []byte
		if remaining >= plainSize {
			block = src[pos : pos+plainSize]
		} else {
			length = remaining
			block = make([]byte, plainSize)
			copy(block, src[pos:])
		}
		if err := r.EncryptBlock(dst[dpos:dpos+encSize], block, length, seq); err != nil {
			return outlen, err
		}
		pos += length
		dpos += encSize
		outlen += encSize
		seq++
	}
	return outlen, nil
}

// Decrypt decrypts an encrypted stream whose length must be a multiple of
// EncryptedBlockSize. Frame-validation errors on individual blocks do not
// abort the stream: a failing block contributes no output, later blocks
// are still attempted, and the first error encountered is returned
// together with the total length of all blocks that did decrypt.
func (r *renderer) Decrypt(dst, src []byte) (outlen int, err error) {
	encSize := r.blockType.EncryptedBlockSize()
	if len(src)%encSize != 0 {
		return 0, errors.Wrapf(ErrInvalidDecrypt, "length %d is not a multiple of %d", len(src), encSize)
	}
	plainSize := r.blockType.PlaintextBlockSize(r.padding)

	var firstErr error
	pos, dpos := 0, 0
	for pos < len(src) {
		length, _, ferr := r.DecryptBlock(dst[dpos:dpos+plainSize], src[pos:pos+encSize])
		if ferr != nil {
			if firstErr == nil {
				firstErr = ferr
			}
		} else {
			dpos += length
		}
		pos += encSize
	}
	return dpos, firstErr
}
