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

// Fixed cipher-wide constants, taken from the block-size table and the
// round/key-schedule design.
const (
	numRounds    = 8  // rounds per block, fixed
	cellsPerRow  = 32 // cells per grid row, fixed
	cellSize     = 4  // bytes per cell (R,G,B,A)
	numPositions = 4  // diffusion sources per destination cell (k in 0..3)
	maxRows      = 32 // largest grid row count, used by BlockType4096

	keySize        = 4096 // user key size in bytes
	subkeySize     = 4096 // bytes per subkey
	numSubkeys     = 560  // total subkeys derived from the user key
	prngSubkeyBase = 304  // first subkey index reserved for PRNG windows
	prngWindowLen  = 16   // subkeys per PRNG window (16*4096 = 65536)

	frameOverhead = 16 // checksum[4] + length[2] + seqnum[2] + padB + padC sizing baseline

	// MaxBytesPerJob bounds how many bytes the dispatcher hands a single
	// worker in one job, matching the reference's MUM_MAX_BYTES_PER_JOB.
	MaxBytesPerJob = 256 * 1024

	// MaxWorkers is the largest thread count InitKey's PRNG window scheme
	// supports: worker i uses window (i & 15), so there are 16 distinct
	// windows available.
	MaxWorkers = 16
)

// Fixed subkey index ranges. The 304 subkeys below prngSubkeyBase are
// partitioned among confusion clavs and table-derivation material; the 256
// subkeys at/after prngSubkeyBase are exclusively PRNG seed windows, one
// 16-subkey window per possible worker slot (16 slots * 16 = 256).
const (
	clavBase     = 0                              // numRounds entries (8)
	permute8Base = clavBase + numRounds            // numRounds*maxRows entries (256)
	permute3Base = permute8Base + numRounds*maxRows // numRounds entries (8)
	permute10Base = permute3Base + numRounds         // numRounds*numPositions entries (32)
)
