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

// Sentinel errors returned by the engine and its components. Callers add
// file/operation context with errors.Wrap at the boundary; these values are
// what should be compared against with errors.Is.
var (
	ErrFileIOInput    = errors.New("mumcore: file input error")
	ErrFileIOOutput   = errors.New("mumcore: file output error")
	ErrInvalidBlock   = errors.New("mumcore: invalid block type")
	ErrInvalidEncrypt = errors.New("mumcore: plaintext longer than block payload")
	ErrInvalidDecrypt = errors.New("mumcore: ciphertext is not a multiple of the encrypted block size")

	// ErrBlockType is returned when a decoded block's embedded block-type
	// code does not match the block type the renderer was configured for.
	ErrBlockType = errors.New("mumcore: encrypted block carries the wrong block-type code")

	// ErrBlockLength is returned when a decoded block's length field
	// exceeds the maximum payload size for its block type.
	ErrBlockLength = errors.New("mumcore: encrypted block length field out of range")

	// ErrChecksum is returned when a decoded block's checksum does not
	// match the recomputed checksum over its payload.
	ErrChecksum = errors.New("mumcore: encrypted block checksum mismatch")

	ErrKeyfileRead  = errors.New("mumcore: key file could not be read")
	ErrKeyfileSmall = errors.New("mumcore: key file is smaller than the 4096-byte key size")

	ErrKeyNotInitialized = errors.New("mumcore: engine key has not been initialized")
	ErrFileExtension     = errors.New("mumcore: file name does not carry a recognized .muN extension")
	ErrSubkeyRange       = errors.New("mumcore: subkey index out of range")
	ErrNoWorkerThreads   = errors.New("mumcore: thread-pool renderer worker count is outside 1..16")
)

// FrameError reports that a decoded block failed envelope validation.
// Unlike the fatal engine errors, it does not abort a stream: the caller
// receives it alongside a zeroed length for the offending block and may
// choose to keep decoding subsequent blocks.
type FrameError struct {
	Err      error
	BlockNum int
}

func (e *FrameError) Error() string {
	return errors.Wrapf(e.Err, "block %d", e.BlockNum).Error()
}

func (e *FrameError) Unwrap() error { return e.Err }
