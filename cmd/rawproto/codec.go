package main

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Supported --decompress / --compress codecs.
const (
	codecNone   = "none"
	codecGzip   = "gzip"
	codecZstd   = "zstd"
	codecSnappy = "snappy"
)

var codecs = []string{codecNone, codecGzip, codecZstd, codecSnappy}

var getZstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
})

var getZstdEncoder = sync.OnceValues(func() (*zstd.Encoder, error) {
	return zstd.NewWriter(nil)
})

func decompress(codec string, data []byte) ([]byte, error) {
	switch codec {
	case codecNone, "":
		return data, nil
	case codecGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return out, nil
	case codecZstd:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return out, nil
	case codecSnappy:
		out, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("snappy: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown codec %q (want one of %v)", codec, codecs)
	}
}

func compress(codec string, data []byte) ([]byte, error) {
	switch codec {
	case codecNone, "":
		return data, nil
	case codecGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return buf.Bytes(), nil
	case codecZstd:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, err
		}
		return enc.EncodeAll(data, nil), nil
	case codecSnappy:
		return snappy.Encode(nil, data), nil
	default:
		return nil, fmt.Errorf("unknown codec %q (want one of %v)", codec, codecs)
	}
}
