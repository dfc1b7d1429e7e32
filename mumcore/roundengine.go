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

// roundEngine runs the 8-round diffuse/confuse pipeline over a pair of
// ping-pong buffers for one configured block type. It holds no per-call
// state beyond the two buffers, so a single instance is reused across
// every block a renderer processes.
type roundEngine struct {
	key     *KeyMaterial
	numRows int
	p0, p1  []byte // ping-pong buffers, len == blockType.EncryptedBlockSize()
}

func newRoundEngine(key *KeyMaterial, blockType BlockType) *roundEngine {
	size := blockType.EncryptedBlockSize()
	return &roundEngine{
		key:     key,
		numRows: blockType.NumRows(),
		p0:      make([]byte, size),
		p1:      make([]byte, size),
	}
}

func cellOffset(y, x int) int { return (y*cellsPerRow + x) * cellSize }

// load copies src into the live buffer (p0) before a round pass begins.
func (e *roundEngine) load(src []byte) { copy(e.p0, src) }

// store copies the live buffer (p0) out after a round pass completes.
func (e *roundEngine) store(dst []byte) { copy(dst, e.p0) }

// encryptBlock runs the 8 forward rounds in place, leaving the result in
// e.p0, and returns it.
func (e *roundEngine) encryptBlock() []byte {
	for r := 0; r < numRounds; r++ {
		e.diffuseEncrypt(r)
		e.confuseEncrypt(r)
	}
	return e.p0
}

// decryptBlock runs the 8 inverse rounds (descending) in place, leaving
// the result in e.p0, and returns it.
func (e *roundEngine) decryptBlock() []byte {
	for r := numRounds - 1; r >= 0; r-- {
		e.confuseDecrypt(r)
		e.diffuseDecrypt(r)
	}
	return e.p0
}

func (e *roundEngine) diffuseEncrypt(r int) {
	k := e.key
	for y := 0; y < e.numRows; y++ {
		for x := 0; x < cellsPerRow; x++ {
			var s [numPositions][cellSize]byte
			for kk := 0; kk < numPositions; kk++ {
				sx := int(k.posX[r][y][x][kk])
				sy := int(k.posY[r][y][x][kk])
				off := cellOffset(sy, sx)
				copy(s[kk][:], e.p0[off:off+cellSize])
			}
			m := k.bitmask[r]
			off := cellOffset(y, x)
			e.p1[off+0] = (s[0][0] & m[0]) + (s[1][2] & m[1]) + (s[2][3] & m[2]) + (s[3][1] & m[3])
			e.p1[off+1] = (s[0][2] & m[0]) + (s[1][3] & m[1]) + (s[2][1] & m[2]) + (s[3][0] & m[3])
			e.p1[off+2] = (s[0][3] & m[0]) + (s[1][1] & m[1]) + (s[2][0] & m[2]) + (s[3][2] & m[3])
			e.p1[off+3] = (s[0][1] & m[0]) + (s[1][0] & m[1]) + (s[2][2] & m[2]) + (s[3][3] & m[3])
		}
	}
	e.p0, e.p1 = e.p1, e.p0
}

func (e *roundEngine) diffuseDecrypt(r int) {
	k := e.key
	for y := 0; y < e.numRows; y++ {
		for x := 0; x < cellsPerRow; x++ {
			var s [numPositions][cellSize]byte
			for kk := 0; kk < numPositions; kk++ {
				sx := int(k.posXInv[r][y][x][kk])
				sy := int(k.posYInv[r][y][x][kk])
				off := cellOffset(sy, sx)
				copy(s[kk][:], e.p0[off:off+cellSize])
			}
			m := k.bitmask[r]
			off := cellOffset(y, x)
			e.p1[off+0] = (s[0][0] & m[0]) + (s[1][3] & m[1]) + (s[2][2] & m[2]) + (s[3][1] & m[3])
			e.p1[off+1] = (s[0][3] & m[0]) + (s[1][2] & m[1]) + (s[2][1] & m[2]) + (s[3][0] & m[3])
			e.p1[off+2] = (s[0][1] & m[0]) + (s[1][0] & m[1]) + (s[2][3] & m[2]) + (s[3][2] & m[3])
			e.p1[off+3] = (s[0][2] & m[0]) + (s[1][1] & m[1]) + (s[2][0] & m[2]) + (s[3][3] & m[3])
		}
	}
	e.p0, e.p1 = e.p1, e.p0
}

func (e *roundEngine) confuseEncrypt(r int) {
	k := e.key
	clav := k.confuseClav(r)
	rowBytes := cellsPerRow * cellSize
	for y := 0; y < e.numRows; y++ {
		prm := &k.permute8[r][y]
		base := y * rowBytes
		for i := 0; i < rowBytes; i++ {
			e.p1[base+i] = byte(prm[e.p0[base+i]^clav[base+i]])
		}
	}
	e.p0, e.p1 = e.p1, e.p0
}

func (e *roundEngine) confuseDecrypt(r int) {
	k := e.key
	clav := k.confuseClav(r)
	rowBytes := cellsPerRow * cellSize
	for y := 0; y < e.numRows; y++ {
		prm := &k.permute8Inv[r][y]
		base := y * rowBytes
		for i := 0; i < rowBytes; i++ {
			e.p1[base+i] = byte(prm[e.p0[base+i]]) ^ clav[base+i]
		}
	}
	e.p0, e.p1 = e.p1, e.p0
}
