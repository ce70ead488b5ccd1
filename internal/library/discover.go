// Package library walks a media directory and analyses the aspect ratio of
// every video it finds, skipping files that have not changed since the last
// scan.
package library

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/minio/highwayhash"
)

const DefaultPattern = "**/*.{mp4,mkv,mov,m4v,avi,webm}"

// fingerprintBytes is how much of each file is hashed. Together with the
// size it is enough to notice a replaced file without reading whole movies.
const fingerprintBytes = 4 << 20

// DefaultHashKey keeps fingerprints stable between runs.
var DefaultHashKey = []byte("tubely-aspect-ratio-fingerprint!")

// Discover returns the regular files under root matching pattern, minus any
// whose base name matches one of excludes, sorted by path.
func Discover(root, pattern string, excludes []string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	if info, err := os.Stat(absRoot); err != nil {
		return nil, err
	} else if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", absRoot)
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(absRoot, pattern))
	if err != nil {
		return nil, fmt.Errorf("pattern matching failed: %w", err)
	}

	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		excluded := false
		for _, ex := range excludes {
			if ok, _ := doublestar.Match(ex, filepath.Base(match)); ok {
				excluded = true
				break
			}
		}
		if !excluded {
			files = append(files, match)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Fingerprint hashes the file size and its first few megabytes with
// HighwayHash-256.
func Fingerprint(path string, key []byte) (fingerprint string, size int64, err error) {
	if len(key) != 32 {
		return "", 0, fmt.Errorf("hash key must be exactly 32 bytes, got %d", len(key))
	}
	file, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", 0, err
	}

	hash, err := highwayhash.New(key)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create hash: %w", err)
	}
	var sizeBuf [8]byte
	binary.LittleEndian.PutUint64(sizeBuf[:], uint64(info.Size()))
	hash.Write(sizeBuf[:])
	if _, err := io.Copy(hash, io.LimitReader(file, fingerprintBytes)); err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(hash.Sum(nil)), info.Size(), nil
}
