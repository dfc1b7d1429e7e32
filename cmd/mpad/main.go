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
	"log"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/kgranger/mumblepad/mumcore"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// VERSION is injected by buildflags.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	app := cli.NewApp()
	app.Name = "mpad"
	app.Usage = "Mumblepad block cipher, file mode"
	app.Version = VERSION
	app.Commands = []cli.Command{
		encryptCommand,
		decryptCommand,
		genkeyCommand,
		infoCommand,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("%+v", err)
	}
}

var sharedFlags = []cli.Flag{
	cli.StringFlag{Name: "input,i", Usage: "input file"},
	cli.StringFlag{Name: "output,o", Usage: "output file (default: derived from input)"},
	cli.StringFlag{Name: "keyfile,k", Usage: "4096-byte key file"},
	cli.StringFlag{Name: "passphrase", Usage: "derive the key from a passphrase instead of -k"},
	cli.StringFlag{Name: "engine,e", Value: "cpu", Usage: "cpu or mt"},
	cli.IntFlag{Name: "threads,t", Value: 0, Usage: "worker count for -e mt (default: NumCPU, capped at 16)"},
	cli.StringFlag{Name: "config,c", Usage: "JSON config file, overrides flags"},
	cli.BoolFlag{Name: "quiet,q", Usage: "suppress progress logging"},
	cli.BoolFlag{Name: "verbose", Usage: "log key fingerprint and block parameters"},
	cli.BoolFlag{Name: "comp", Usage: "compress plaintext before encrypting / after decrypting"},
}

var encryptCommand = cli.Command{
	Name:  "encrypt",
	Usage: "encrypt a file",
	Flags: append(append([]cli.Flag{}, sharedFlags...),
		cli.IntFlag{Name: "blocktype,b", Value: 6, Usage: "1=128 2=256 3=512 4=1024 5=2048 6=4096 bytes"},
		cli.BoolFlag{Name: "no-pad", Usage: "disable framing: no length/checksum/seqnum/padding"},
	),
	Action: func(c *cli.Context) error {
		cfg := configFromContext(c)
		cfg.BlockType = c.Int("blocktype")
		cfg.NoPad = c.Bool("no-pad")
		return runEncrypt(cfg)
	},
}

var decryptCommand = cli.Command{
	Name:   "decrypt",
	Usage:  "decrypt a file",
	Flags:  sharedFlags,
	Action: func(c *cli.Context) error { return runDecrypt(configFromContext(c)) },
}

var genkeyCommand = cli.Command{
	Name:  "genkey",
	Usage: "write a fresh random 4096-byte key file",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "output,o", Usage: "key file path"},
	},
	Action: func(c *cli.Context) error {
		path := c.String("output")
		if path == "" {
			return errors.New("mpad genkey: -o is required")
		}
		if err := GenerateKeyFile(path); err != nil {
			return err
		}
		color.Green("wrote key: %s", path)
		return nil
	},
}

var infoCommand = cli.Command{
	Name:      "info",
	Usage:     "print the block type and plaintext size of an encrypted file",
	ArgsUsage: "<encrypted-file>",
	Action: func(c *cli.Context) error {
		name := c.Args().First()
		if name == "" {
			return errors.New("mpad info: missing <encrypted-file>")
		}
		bt, plainName, err := InfoFromEncryptedFileName(name)
		if err != nil {
			return err
		}
		stat, err := os.Stat(name)
		if err != nil {
			return errors.Wrap(err, "stat")
		}
		numBlocks := stat.Size() / int64(bt.EncryptedBlockSize())
		color.Cyan("block type:   %s (code %d)", bt.String(), bt.Code())
		color.Cyan("plain name:   %s", plainName)
		color.Cyan("blocks:       %d", numBlocks)
		color.Cyan("plaintext sz: %d bytes (padding on, upper bound)", numBlocks*int64(bt.PlaintextBlockSize(true)))
		return nil
	},
}

func configFromContext(c *cli.Context) Config {
	cfg := Config{
		Input:      c.String("input"),
		Output:     c.String("output"),
		KeyFile:    c.String("keyfile"),
		Passphrase: c.String("passphrase"),
		Engine:     c.String("engine"),
		Threads:    c.Int("threads"),
		BlockType:  c.Int("blocktype"),
		NoPad:      c.Bool("no-pad"),
		Comp:       c.Bool("comp"),
		Quiet:      c.Bool("quiet"),
		Verbose:    c.Bool("verbose"),
	}
	if path := c.String("config"); path != "" {
		if err := parseJSONConfig(&cfg, path); err != nil {
			log.Fatalf("config: %+v", err)
		}
	}
	return cfg
}

func loadKey(cfg Config) ([]byte, error) {
	if cfg.Passphrase != "" {
		return DeriveKeyFromPassphrase(cfg.Passphrase), nil
	}
	if cfg.KeyFile == "" {
		return nil, errors.New("mpad: one of -k or --passphrase is required")
	}
	return LoadKeyFile(cfg.KeyFile)
}

func buildEngine(cfg Config, blockType mumcore.BlockType, padding bool) (*mumcore.Engine, error) {
	key, err := loadKey(cfg)
	if err != nil {
		return nil, err
	}

	engineType := mumcore.EngineCPU
	threads := 1
	if cfg.Engine == "mt" {
		engineType = mumcore.EngineCPUMT
		threads = cfg.Threads
		if threads <= 0 {
			threads = runtime.NumCPU()
		}
		if threads > mumcore.MaxWorkers {
			threads = mumcore.MaxWorkers
		}
	}

	eng, err := mumcore.NewEngine(engineType, blockType, padding, threads)
	if err != nil {
		return nil, err
	}
	if err := eng.InitKey(key); err != nil {
		return nil, err
	}
	if cfg.Verbose {
		log.Println("key fingerprint:", KeyFingerprint(key))
		log.Println("engine:", cfg.Engine, "threads:", threads, "blocktype:", blockType, "padding:", padding)
	}
	return eng, nil
}

func logln(quiet bool, v ...any) {
	if !quiet {
		log.Println(v...)
	}
}

func runEncrypt(cfg Config) error {
	if cfg.Input == "" {
		return errors.New("mpad encrypt: -i is required")
	}
	blockType := mumcore.ParseBlockType(cfg.BlockType)
	if !blockType.Valid() {
		return errors.Errorf("mpad encrypt: invalid -b %d", cfg.BlockType)
	}
	eng, err := buildEngine(cfg, blockType, !cfg.NoPad)
	if err != nil {
		return err
	}
	defer eng.Close()

	in, err := os.Open(cfg.Input)
	if err != nil {
		return errors.Wrap(mumcore.ErrFileIOInput, err.Error())
	}
	defer in.Close()

	outPath := cfg.Output
	if outPath == "" {
		outPath = EncryptedFileName(blockType, cfg.Input)
	}
	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(mumcore.ErrFileIOOutput, err.Error())
	}
	defer out.Close()

	logln(cfg.Quiet, "encrypting", cfg.Input, "->", outPath)
	n, err := EncryptFile(eng, in, out, cfg.Comp)
	if err != nil {
		return err
	}
	logln(cfg.Quiet, "wrote", n, "plaintext bytes worth of blocks")
	return nil
}

func runDecrypt(cfg Config) error {
	if cfg.Input == "" {
		return errors.New("mpad decrypt: -i is required")
	}
	blockType, plainName, err := InfoFromEncryptedFileName(cfg.Input)
	if err != nil {
		return err
	}
	eng, err := buildEngine(cfg, blockType, true)
	if err != nil {
		return err
	}
	defer eng.Close()

	in, err := os.Open(cfg.Input)
	if err != nil {
		return errors.Wrap(mumcore.ErrFileIOInput, err.Error())
	}
	defer in.Close()

	outPath := cfg.Output
	if outPath == "" {
		outPath = plainName
	}
	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(mumcore.ErrFileIOOutput, err.Error())
	}
	defer out.Close()

	logln(cfg.Quiet, "decrypting", cfg.Input, "->", outPath)
	frameErrs := 0
	n, err := DecryptFile(eng, in, out, cfg.Comp, func(ferr error) {
		frameErrs++
		logln(cfg.Quiet, "frame error:", ferr)
	})
	if err != nil {
		return err
	}
	logln(cfg.Quiet, "wrote", n, "plaintext bytes,", frameErrs, "frame errors")
	return nil
}
