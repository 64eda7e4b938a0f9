package messages

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// CompressJSON encodes v as JSON and compresses it with zstd.
func CompressJSON(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %v", err)
	}

	compressed := bytes.NewBuffer(nil)
	compWriter, err := zstd.NewWriter(compressed, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %v", err)
	}
	if _, err := compWriter.Write(b); err != nil {
		return nil, fmt.Errorf("failed to compress value: %v", err)
	}
	if err := compWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zstd writer: %v", err)
	}

	return compressed.Bytes(), nil
}

// DecompressJSON reverses CompressJSON into v.
func DecompressJSON(data []byte, v interface{}) error {
	compReader, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create zstd reader: %v", err)
	}
	defer compReader.Close()

	b, err := io.ReadAll(compReader)
	if err != nil {
		return fmt.Errorf("failed to read decompressed value: %v", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to unmarshal value: %v", err)
	}

	return nil
}
