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
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dchest/siphash"
	"github.com/kgranger/mumblepad/mumcore"
	"github.com/pkg/errors"
	drbg "github.com/sixafter/aes-ctr-drbg"
	"golang.org/x/crypto/pbkdf2"
)

// keySize is the fixed user-key length the cipher expects.
const keySize = 4096

// pbkdf2Salt mirrors the teacher's own pbkdf2 usage in client/server main.go,
// which derives a transport key from a passphrase with a fixed salt.
const pbkdf2Salt = "mumblepad"

// fingerprintK0 and fingerprintK1 domain-separate KeyFingerprint from any
// other siphash use in this program; they are not secret.
var fingerprintK0, fingerprintK1 = func() (uint64, uint64) {
	raw := []byte("mumblepad-fprint")
	return binary.LittleEndian.Uint64(raw[:8]), binary.LittleEndian.Uint64(raw[8:])
}()

// LoadKeyFile reads a raw 4096-byte user key from path.
func LoadKeyFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(mumcore.ErrKeyfileRead, "open %s: %v", path, err)
	}
	defer f.Close()

	key := make([]byte, keySize)
	if _, err := io.ReadFull(f, key); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, errors.Wrapf(mumcore.ErrKeyfileSmall, "%s", path)
		}
		return nil, errors.Wrapf(mumcore.ErrKeyfileRead, "read %s: %v", path, err)
	}
	return key, nil
}

// GenerateKeyFile writes a fresh 4096-byte key to path using a CSPRNG. It
// never uses the cipher's own PRNG, which is a deterministic function of an
// existing key and unsuitable for minting new secret material.
func GenerateKeyFile(path string) error {
	key := make([]byte, keySize)
	if _, err := io.ReadFull(drbg.Reader, key); err != nil {
		return errors.Wrap(err, "generate key")
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return errors.Wrapf(mumcore.ErrFileIOOutput, "create %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.Write(key); err != nil {
		return errors.Wrapf(mumcore.ErrFileIOOutput, "write %s: %v", path, err)
	}
	return nil
}

// DeriveKeyFromPassphrase stretches a human passphrase into a 4096-byte key
// using pbkdf2, the same construction the teacher uses to turn its `-key`
// flag into a transport cipher key in client/server main.go.
func DeriveKeyFromPassphrase(passphrase string) []byte {
	return pbkdf2.Key([]byte(passphrase), []byte(pbkdf2Salt), 4096, keySize, sha1.New)
}

// EncryptedFileName appends the .mu<code> extension identifying blockType.
func EncryptedFileName(bt mumcore.BlockType, plainName string) string {
	return fmt.Sprintf("%s.mu%d", plainName, bt.Code())
}

// InfoFromEncryptedFileName recovers the block type and original name from a
// name produced by EncryptedFileName.
func InfoFromEncryptedFileName(name string) (mumcore.BlockType, string, error) {
	idx := strings.LastIndex(name, ".mu")
	if idx < 0 {
		return mumcore.BlockTypeInvalid, "", errors.Wrapf(mumcore.ErrFileExtension, "%s", name)
	}
	code, err := strconv.Atoi(name[idx+3:])
	if err != nil {
		return mumcore.BlockTypeInvalid, "", errors.Wrapf(mumcore.ErrFileExtension, "%s", name)
	}
	bt := mumcore.ParseBlockType(code)
	if !bt.Valid() {
		return mumcore.BlockTypeInvalid, "", errors.Wrapf(mumcore.ErrFileExtension, "%s", name)
	}
	return bt, name[:idx], nil
}

// KeyFingerprint returns an 8-byte non-secret tag of key, for --verbose logs
// that let two operators confirm they loaded "the same key" without ever
// printing key material.
func KeyFingerprint(key []byte) string {
	sum := siphash.Hash(fingerprintK0, fingerprintK1, key)
	return fmt.Sprintf("%016x", sum)
}
