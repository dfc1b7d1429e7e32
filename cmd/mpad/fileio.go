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

package main

import (
	"io"

	"github.com/kgranger/mumblepad/mumcore"
	"github.com/pkg/errors"
)

// chunkBlocks bounds how many plaintext/encrypted blocks are staged in
// memory per Encrypt/Decrypt call when streaming a file, independent of the
// dispatcher's own MaxBytesPerJob slicing.
const chunkBlocks = 256

// EncryptFile streams plaintext from in to out through eng, compressing
// first when comp is true. Ports MumEncryptFile.
func EncryptFile(eng *mumcore.Engine, in io.Reader, out io.Writer, comp bool) (written int64, err error) {
	if comp {
		sink := &encryptSink{eng: eng, dst: out}
		cw := newCompWriter(sink)
		n, err := io.Copy(cw, in)
		if err != nil {
			return n, errors.Wrap(err, "compress+encrypt")
		}
		if err := cw.Close(); err != nil {
			return n, errors.Wrap(err, "flush compressor")
		}
		if err := sink.flush(); err != nil {
			return n, err
		}
		return n, nil
	}

	sink := &encryptSink{eng: eng, dst: out}
	n, err := io.Copy(sink, in)
	if err != nil {
		return n, errors.Wrap(err, "encrypt")
	}
	if err := sink.flush(); err != nil {
		return n, err
	}
	return n, nil
}

// encryptSink buffers up to chunkBlocks plaintext blocks, encrypting and
// flushing to dst whenever the buffer fills; Write satisfies io.Writer so it
// composes with io.Copy and the optional compWriter.
type encryptSink struct {
	eng  *mumcore.Engine
	dst  io.Writer
	buf  []byte
	seq  uint16
}

func (s *encryptSink) Write(p []byte) (int, error) {
	total := len(p)
	plainBlock := s.eng.PlaintextBlockSize()
	for len(p) > 0 {
		room := plainBlock*chunkBlocks - len(s.buf)
		n := len(p)
		if n > room {
			n = room
		}
		s.buf = append(s.buf, p[:n]...)
		p = p[n:]
		if len(s.buf) == plainBlock*chunkBlocks {
			if err := s.flush(); err != nil {
				return total - len(p), err
			}
		}
	}
	return total, nil
}

func (s *encryptSink) flush() error {
	if len(s.buf) == 0 {
		return nil
	}
	out := make([]byte, s.eng.EncryptedSize(len(s.buf)))
	n, err := s.eng.Encrypt(out, s.buf, s.seq)
	if err != nil {
		return errors.Wrap(err, "engine encrypt")
	}
	s.seq += uint16((len(s.buf) + s.eng.PlaintextBlockSize() - 1) / s.eng.PlaintextBlockSize())
	if _, err := s.dst.Write(out[:n]); err != nil {
		return errors.Wrap(err, "write ciphertext")
	}
	s.buf = s.buf[:0]
	return nil
}

// DecryptFile streams ciphertext from in to out through eng, decompressing
// afterward when comp is true. Per-block frame errors are passed to
// onFrameError (when non-nil) and the stream continues, per §7's
// frame-validation error class; they are not part of the returned error.
func DecryptFile(eng *mumcore.Engine, in io.Reader, out io.Writer, comp bool, onFrameError func(error)) (written int64, err error) {
	dst := out
	var cw *compReader
	if comp {
		pr, pw := io.Pipe()
		cw = newCompReader(pr)
		go func() {
			_, werr := decryptInto(eng, in, pw, onFrameError)
			pw.CloseWithError(werr)
		}()
		n, err := io.Copy(out, cw)
		return n, err
	}
	return decryptInto(eng, in, dst, onFrameError)
}

func decryptInto(eng *mumcore.Engine, in io.Reader, out io.Writer, onFrameError func(error)) (int64, error) {
	encBlock := eng.EncryptedBlockSize()
	buf := make([]byte, encBlock*chunkBlocks)
	var total int64
	for {
		n, rerr := io.ReadFull(in, buf)
		if n > 0 {
			if n%encBlock != 0 {
				return total, errors.Wrapf(mumcore.ErrInvalidDecrypt, "truncated input: %d bytes", n)
			}
			plainBuf := make([]byte, eng.PlaintextBlockSize()*(n/encBlock))
			outN, derr := eng.Decrypt(plainBuf, buf[:n])
			if derr != nil && onFrameError != nil {
				onFrameError(derr)
			}
			if outN > 0 {
				if _, werr := out.Write(plainBuf[:outN]); werr != nil {
					return total, errors.Wrap(werr, "write plaintext")
				}
				total += int64(outN)
			}
		}
		// A short final chunk (ErrUnexpectedEOF) has already been checked to
		// hold whole encrypted blocks above, so it ends the stream normally.
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			return total, nil
		}
		if rerr != nil {
			return total, errors.Wrap(rerr, "read ciphertext")
		}
	}
}
