// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash computes BLAKE3 digests of binaries on disk. The
// supervisor records the hashes of the node and companion binaries in
// its state file; a changed hash (binary upgraded underneath a cached
// state) invalidates the fast-path restart skip.
package binhash

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// HashFile computes the BLAKE3 digest of the file at path. The file is
// streamed through the hasher via io.Copy, so memory use is constant
// regardless of binary size.
func HashFile(path string) ([32]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return [32]byte{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return [32]byte{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// FormatDigest returns the hex encoding of a digest. This is the
// canonical format used in the state file and log output.
func FormatDigest(digest [32]byte) string {
	return hex.EncodeToString(digest[:])
}
