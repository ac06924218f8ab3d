// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sheet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoMatch is returned by Latest when no file matches.
var ErrNoMatch = errors.New("no matching file")

// Latest returns the most recently modified regular file in dir whose name
// starts with prefix and ends with ext.
func Latest(dir, prefix, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", dir, err)
	}

	var best string
	var bestInfo os.FileInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if bestInfo == nil || info.ModTime().After(bestInfo.ModTime()) {
			best, bestInfo = name, info
		}
	}
	if bestInfo == nil {
		return "", fmt.Errorf("%w: %s*%s in %s", ErrNoMatch, prefix, ext, dir)
	}
	return filepath.Join(dir, best), nil
}
