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

// Package mumcore implements the Mumblepad block cipher: key schedule,
// round engine, block framing and a thread-pool dispatcher. It has no
// dependency on any CLI, logging or file-I/O package; those live in
// cmd/mpad.
package mumcore

import "github.com/pkg/errors"

// EngineType selects the execution backend. GPU backends from the
// reference implementation are out of scope (see SPEC_FULL.md §1).
type EngineType int

const (
	EngineCPU   EngineType = iota // scalar, single goroutine
	EngineCPUMT                   // thread-pool dispatcher
)

// Engine binds an engine type, block type, padding mode and thread count to
// derived key material and a renderer (or dispatcher). Construct with
// NewEngine, then call InitKey before any Encrypt/Decrypt operation.
type Engine struct {
	engineType EngineType
	blockType  BlockType
	padding    bool
	numThreads int

	key        *KeyMaterial
	scalar     *renderer
	dispatcher *Dispatcher
}

// NewEngine validates its configuration and returns an uninitialized
// Engine. numThreads is only meaningful for EngineCPUMT (1..MaxWorkers; a
// value <= 0 defaults to 1).
func NewEngine(engineType EngineType, blockType BlockType, padding bool, numThreads int) (*Engine, error) {
	if !blockType.Valid() {
		return nil, errors.Wrapf(ErrInvalidBlock, "block type %d", blockType)
	}
	if numThreads <= 0 {
		numThreads = 1
	}
	return &Engine{
		engineType: engineType,
		blockType:  blockType,
		padding:    padding,
		numThreads: numThreads,
	}, nil
}

// InitKey derives subkeys and tables from a 4096-byte user key and starts
// the worker pool for EngineCPUMT. It is the Go counterpart of
// CMumEngine::InitKey / MumInitKey.
func (e *Engine) InitKey(userKey []byte) error {
	key, err := InitKey(userKey, e.blockType)
	if err != nil {
		return err
	}
	e.key = key

	switch e.engineType {
	case EngineCPU:
		e.scalar = newRenderer(key, e.blockType, e.padding, 0)
	case EngineCPUMT:
		d, err := NewDispatcher(key, e.blockType, e.padding, e.numThreads)
		if err != nil {
			return err
		}
		e.dispatcher = d
	default:
		return errors.Errorf("mumcore: unknown engine type %d", e.engineType)
	}
	return nil
}

// Close releases worker goroutines started by InitKey. Safe to call on an
// Engine that was never initialized or uses EngineCPU.
func (e *Engine) Close() {
	if e.dispatcher != nil {
		e.dispatcher.Close()
	}
}

func (e *Engine) ready() error {
	if e.key == nil {
		return ErrKeyNotInitialized
	}
	return nil
}

// BlockType returns the configured block type.
func (e *Engine) BlockType() BlockType { return e.blockType }

// PlaintextBlockSize returns the maximum plaintext bytes per block.
func (e *Engine) PlaintextBlockSize() int { return e.blockType.PlaintextBlockSize(e.padding) }

// EncryptedBlockSize returns the on-wire size of one encrypted block.
func (e *Engine) EncryptedBlockSize() int { return e.blockType.EncryptedBlockSize() }

// EncryptedSize returns the buffer size Encrypt needs for a plaintext of
// plaintextSize bytes. Ports MumEncryptedSize.
func (e *Engine) EncryptedSize(plaintextSize int) int {
	return e.blockType.EncryptedSizeFor(plaintextSize, e.padding)
}

// GetSubkey returns a copy of subkey index (0..559). Ports MumGetSubkey.
func (e *Engine) GetSubkey(index int) ([]byte, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	s, err := e.key.Subkey(index)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(s))
	copy(out, s)
	return out, nil
}

// EncryptBlock encrypts one block. For EngineCPUMT it always uses worker
// slot 0's renderer, mirroring CMumblepadMt::EncryptBlock in the reference.
func (e *Engine) EncryptBlock(dst, src []byte, length int, seqnum uint16) error {
	if err := e.ready(); err != nil {
		return err
	}
	switch e.engineType {
	case EngineCPU:
		return e.scalar.EncryptBlock(dst, src, length, seqnum)
	case EngineCPUMT:
		if len(e.dispatcher.workers) == 0 {
			return ErrNoWorkerThreads
		}
		return e.dispatcher.workers[0].renderer.EncryptBlock(dst, src, length, seqnum)
	}
	return errors.Errorf("mumcore: unknown engine type %d", e.engineType)
}

// DecryptBlock decrypts one block. See EncryptBlock for the EngineCPUMT
// single-worker forwarding rule.
func (e *Engine) DecryptBlock(dst, src []byte) (length int, seqnum uint16, err error) {
	if err := e.ready(); err != nil {
		return 0, 0, err
	}
	switch e.engineType {
	case EngineCPU:
		return e.scalar.DecryptBlock(dst, src)
	case EngineCPUMT:
		if len(e.dispatcher.workers) == 0 {
			return 0, 0, ErrNoWorkerThreads
		}
		return e.dispatcher.workers[0].renderer.DecryptBlock(dst, src)
	}
	return 0, 0, errors.Errorf("mumcore: unknown engine type %d", e.engineType)
}

// Encrypt encrypts an arbitrary-length stream starting at seqnum, using the
// thread-pool dispatcher when configured for EngineCPUMT.
func (e *Engine) Encrypt(dst, src []byte, seqnum uint16) (int, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	switch e.engineType {
	case EngineCPU:
		return e.scalar.Encrypt(dst, src, seqnum)
	case EngineCPUMT:
		return e.dispatcher.Encrypt(dst, src, seqnum)
	}
	return 0, errors.Errorf("mumcore: unknown engine type %d", e.engineType)
}

// Decrypt decrypts a stream whose length must be a multiple of
// EncryptedBlockSize.
func (e *Engine) Decrypt(dst, src []byte) (int, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	switch e.engineType {
	case EngineCPU:
		return e.scalar.Decrypt(dst, src)
	case EngineCPUMT:
		return e.dispatcher.Decrypt(dst, src)
	}
	return 0, errors.Errorf("mumcore: unknown engine type %d", e.engineType)
}
