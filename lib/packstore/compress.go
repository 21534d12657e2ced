// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package packstore

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag identifies the compression algorithm applied to a
// pack entry's payload before it is framed by lib/pack. Tags are
// stored as the payload's first byte, followed by a 4-byte
// little-endian uncompressed size, so decompression never needs
// bookkeeping beyond the entry itself.
type CompressionTag byte

const (
	// CompressionNone stores the payload unmodified. Used whenever
	// compression would not shrink the payload, or when a store is
	// opened without compression enabled.
	CompressionNone CompressionTag = iota

	// CompressionLZ4 compresses with LZ4 block compression: fast,
	// modest ratio.
	CompressionLZ4

	// CompressionZstd compresses with zstd at the default speed
	// level: slower, better ratio, best for text-like Compress
	// payloads (dictionary names, step strings).
	CompressionZstd
)

func (t CompressionTag) String() string {
	switch t {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("CompressionTag(%d)", byte(t))
	}
}

var errIncompressible = fmt.Errorf("packstore: payload is incompressible")

// zstdEncoder and zstdDecoder are reused across calls; both are safe
// for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("packstore: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("packstore: zstd decoder initialization failed: " + err.Error())
	}
}

const compressionHeaderSize = 1 + 4 // tag byte + uncompressed size

// compressPayload compresses data with tag and returns the on-disk
// form: [tag][uncompressed size][body]. If tag would not shrink data,
// it silently falls back to CompressionNone so a caller never has to
// special-case incompressible input.
func compressPayload(data []byte, tag CompressionTag) ([]byte, error) {
	var body []byte
	switch tag {
	case CompressionNone:
		body, tag = data, CompressionNone

	case CompressionLZ4:
		compressed, err := compressLZ4(data)
		if err != nil {
			if err == errIncompressible {
				body, tag = data, CompressionNone
				break
			}
			return nil, err
		}
		body = compressed

	case CompressionZstd:
		compressed, err := compressZstd(data)
		if err != nil {
			if err == errIncompressible {
				body, tag = data, CompressionNone
				break
			}
			return nil, err
		}
		body = compressed

	default:
		return nil, fmt.Errorf("packstore: unsupported compression tag %d", byte(tag))
	}

	out := make([]byte, 0, compressionHeaderSize+len(body))
	out = append(out, byte(tag))
	var sizeField [4]byte
	binary.LittleEndian.PutUint32(sizeField[:], uint32(len(data)))
	out = append(out, sizeField[:]...)
	out = append(out, body...)
	return out, nil
}

// decompressPayload reverses compressPayload.
func decompressPayload(framed []byte) ([]byte, error) {
	if len(framed) < compressionHeaderSize {
		return nil, fmt.Errorf("packstore: compressed payload shorter than its header")
	}
	tag := CompressionTag(framed[0])
	uncompressedSize := int(binary.LittleEndian.Uint32(framed[1:5]))
	body := framed[5:]

	switch tag {
	case CompressionNone:
		if len(body) != uncompressedSize {
			return nil, fmt.Errorf("packstore: uncompressed payload size %d does not match header %d", len(body), uncompressedSize)
		}
		return body, nil
	case CompressionLZ4:
		return decompressLZ4(body, uncompressedSize)
	case CompressionZstd:
		return decompressZstd(body, uncompressedSize)
	default:
		return nil, fmt.Errorf("packstore: unknown compression tag %d", byte(tag))
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(data))
	dst := make([]byte, bound)
	written, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, fmt.Errorf("packstore: lz4 compress: %w", err)
	}
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return dst[:written], nil
}

func decompressLZ4(compressed []byte, uncompressedSize int) ([]byte, error) {
	dst := make([]byte, uncompressedSize)
	read, err := lz4.UncompressBlock(compressed, dst)
	if err != nil {
		return nil, fmt.Errorf("packstore: lz4 decompress: %w", err)
	}
	if read != uncompressedSize {
		return nil, fmt.Errorf("packstore: lz4 decompress: got %d bytes, want %d", read, uncompressedSize)
	}
	return dst, nil
}

func compressZstd(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

func decompressZstd(compressed []byte, uncompressedSize int) ([]byte, error) {
	result, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, uncompressedSize))
	if err != nil {
		return nil, fmt.Errorf("packstore: zstd decompress: %w", err)
	}
	if len(result) != uncompressedSize {
		return nil, fmt.Errorf("packstore: zstd decompress: got %d bytes, want %d", len(result), uncompressedSize)
	}
	return result, nil
}
