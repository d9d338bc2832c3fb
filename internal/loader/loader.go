// Package loader reads whole programs into memory before they are run.
//
// Programs may be stored zstd-compressed; a buffer starting with the zstd
// frame magic is decompressed transparently by Load. Programs have no header,
// so a raw program that happens to start with those four bytes (reserved
// opcodes, so no-ops) must be read with LoadRaw instead.
package loader

import (
	"bytes"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
)

// Stdin is the path naming standard input.
const Stdin = "-"

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Load reads the program at path, or standard input for Stdin, decompressing
// it if needed.
func Load(path string) ([]byte, error) { return load(path, Read) }

// LoadRaw is like Load, but never decompresses.
func LoadRaw(path string) ([]byte, error) { return load(path, io.ReadAll) }

func load(path string, read func(io.Reader) ([]byte, error)) ([]byte, error) {
	if path == Stdin {
		prog, err := read(os.Stdin)
		return prog, errors.Wrap(err, "cannot read program from stdin")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open program")
	}
	defer f.Close()
	prog, err := read(f)
	return prog, errors.Wrapf(err, "cannot read program %s", path)
}

// Read reads all of r, decompressing it if needed.
func Read(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decompress(data)
}

// IsCompressed returns true if data starts with a zstd frame.
func IsCompressed(data []byte) bool { return bytes.HasPrefix(data, zstdMagic) }

// Decompress returns data decompressed if it is zstd compressed, and
// unchanged otherwise.
func Decompress(data []byte) ([]byte, error) {
	if !IsCompressed(data) {
		return data, nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	prog, err := dec.DecodeAll(data, nil)
	return prog, errors.Wrap(err, "zstd")
}

// Compress returns prog zstd compressed.
func Compress(prog []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(prog, nil), nil
}
