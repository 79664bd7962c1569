// Package checksum computes streaming SHA-256 digests for transfer
// manifests and post-transfer verification.
package checksum

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// DefaultBufferSize is the read buffer used for streaming hashes
const DefaultBufferSize = 32 * 1024

// Sum computes the hex-encoded SHA-256 of the reader contents
// The context is checked between reads so large files can be abandoned
func Sum(ctx context.Context, reader io.Reader) (string, error) {
	h := sha256.New()
	buffer := make([]byte, DefaultBufferSize)

	for {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := reader.Read(buffer)
		if n > 0 {
			if _, hashErr := h.Write(buffer[:n]); hashErr != nil {
				return "", fmt.Errorf("hash write error: %w", hashErr)
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read error: %w", err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// File computes the hex-encoded SHA-256 of a file's contents
func File(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Sum(ctx, f)
}
