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
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type jobKind int

const (
	jobEncrypt jobKind = iota
	jobDecrypt
)

const (
	jobStateDone = iota
	jobStateAssigned
	jobStateWorking
)

// dispatchJob is one unit of work handed to a worker. id is a per-job uuid
// (see SPEC_FULL.md §B.7); nothing in this package reads or logs it, and it
// never affects ciphertext.
type dispatchJob struct {
	id     string
	kind   jobKind
	src    []byte
	dst    []byte
	seqNum uint16
	outLen *int // written by the worker that executes this job, read after wg.Wait()

	wg      *sync.WaitGroup
	errOnce *sync.Mutex
	errOut  *error
}

// dispatchWorker owns a private renderer and runs its job loop in its own
// goroutine for the lifetime of the Dispatcher. The dispatcher writes
// w.job/w.state only while state == jobStateDone; the worker writes them
// while ASSIGNED/WORKING. w.mu enforces that single-writer discipline.
type dispatchWorker struct {
	id       int
	renderer *renderer
	sig      signal

	mu    sync.Mutex
	state int
	job   dispatchJob
}

func newDispatchWorker(id int, key *KeyMaterial, blockType BlockType, padding bool) *dispatchWorker {
	return &dispatchWorker{
		id:       id,
		renderer: newRenderer(key, blockType, padding, id),
		sig:      newSignal(),
		state:    jobStateDone,
	}
}

func (w *dispatchWorker) run(server signal, quit <-chan struct{}) {
	for {
		select {
		case <-quit:
			return
		case <-w.sig:
		}

		w.mu.Lock()
		if w.state != jobStateAssigned {
			w.mu.Unlock()
			continue
		}
		w.state = jobStateWorking
		j := w.job
		w.mu.Unlock()

		var outLen int
		var err error
		switch j.kind {
		case jobEncrypt:
			outLen, err = w.renderer.Encrypt(j.dst, j.src, j.seqNum)
		case jobDecrypt:
			outLen, err = w.renderer.Decrypt(j.dst, j.src)
		}
		*j.outLen = outLen

		w.mu.Lock()
		w.state = jobStateDone
		w.mu.Unlock()

		if err != nil {
			j.errOnce.Lock()
			if *j.errOut == nil {
				*j.errOut = err
			}
			j.errOnce.Unlock()
		}
		j.wg.Done()
		server.post()
	}
}

// Dispatcher slices a stream into bounded jobs and hands them to a fixed
// pool of worker goroutines, each with its own renderer and PRNG window, as
// described in §4.6. Job-to-worker assignment is scan based: the dispatcher
// posts the first idle worker's signal, or waits on the shared server
// signal if none is idle. Draining a batch uses a sync.WaitGroup rather
// than the reference's busy-wait loop (open question O4).
type Dispatcher struct {
	blockType BlockType
	padding   bool

	workers []*dispatchWorker
	server  signal
	quit    chan struct{}
	closed  bool
	mu      sync.Mutex
}

// NewDispatcher starts numWorkers worker goroutines (1..MaxWorkers), each
// bound to its own PRNG window derived from key.
func NewDispatcher(key *KeyMaterial, blockType BlockType, padding bool, numWorkers int) (*Dispatcher, error) {
	if numWorkers <= 0 || numWorkers > MaxWorkers {
		return nil, errors.Wrapf(ErrNoWorkerThreads, "numWorkers=%d (want 1..%d)", numWorkers, MaxWorkers)
	}
	d := &Dispatcher{
		blockType: blockType,
		padding:   padding,
		server:    newSignal(),
		quit:      make(chan struct{}),
	}
	for i := 0; i < numWorkers; i++ {
		w := newDispatchWorker(i, key, blockType, padding)
		d.workers = append(d.workers, w)
		go w.run(d.server, d.quit)
	}
	return d, nil
}

// Close stops all worker goroutines. The Dispatcher must not be used
// afterwards.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.quit)
}

// assign hands job to the first idle worker, blocking on the server signal
// when every worker is currently busy.
func (d *Dispatcher) assign(j dispatchJob) {
	for {
		for _, w := range d.workers {
			w.mu.Lock()
			if w.state == jobStateDone {
				w.job = j
				w.state = jobStateAssigned
				w.mu.Unlock()
				w.sig.post()
				return
			}
			w.mu.Unlock()
		}
		d.server.wait()
	}
}

// Encrypt splits src into MaxBytesPerJob-sized chunks, encrypts them across
// the worker pool and returns the total number of ciphertext bytes written
// to dst, which must be at least blockType.EncryptedSizeFor(len(src)).
func (d *Dispatcher) Encrypt(dst, src []byte, seqnum uint16) (int, error) {
	plainBlock := d.blockType.PlaintextBlockSize(d.padding)
	encBlock := d.blockType.EncryptedBlockSize()
	return d.run(jobEncrypt, dst, src, seqnum, plainBlock, encBlock)
}

// Decrypt is the symmetric counterpart of Encrypt, operating in
// EncryptedBlockSize-sized input chunks.
func (d *Dispatcher) Decrypt(dst, src []byte) (int, error) {
	encBlock := d.blockType.EncryptedBlockSize()
	plainBlock := d.blockType.PlaintextBlockSize(d.padding)
	return d.run(jobDecrypt, dst, src, 0, encBlock, plainBlock)
}

func (d *Dispatcher) run(kind jobKind, dst, src []byte, seqnum uint16, inBlock, outBlock int) (int, error) {
	blocksPerJob := MaxBytesPerJob / inBlock
	if blocksPerJob == 0 {
		blocksPerJob = 1
	}

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error
	var jobs []*dispatchJob

	pos, dpos := 0, 0
	seq := seqnum
	for pos < len(src) {
		remaining := len(src) - pos
		inBytes := blocksPerJob * inBlock
		if inBytes > remaining {
			inBytes = remaining
		}
		// Ceiling division: the tail job may carry a partial final block,
		// which still consumes one full inBlock/outBlock slot.
		numBlocks := (inBytes + inBlock - 1) / inBlock
		outBytes := numBlocks * outBlock

		wg.Add(1)
		j := &dispatchJob{
			id:      uuid.NewString(),
			kind:    kind,
			src:     src[pos : pos+inBytes],
			dst:     dst[dpos : dpos+outBytes],
			seqNum:  seq,
			outLen:  new(int),
			wg:      &wg,
			errOnce: &errMu,
			errOut:  &firstErr,
		}
		jobs = append(jobs, j)
		d.assign(*j)

		pos += inBytes
		dpos += outBytes
		seq += uint16(numBlocks)
	}

	wg.Wait()

	// The batch's total output length is the sum of each worker's actual
	// renderer.Encrypt/Decrypt return value, not a recomputation from block
	// counts: when decrypting, the final block of the stream may unpack to
	// less than a full plaintext block, and a block that fails frame
	// validation contributes no bytes.
	total := 0
	for _, j := range jobs {
		total += *j.outLen
	}
	return total, firstErr
}
