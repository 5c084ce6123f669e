package labindex

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// Path locates an object file in a registry directory.  Objects live
// directly under the directory, named by their full hex hash.
type Path struct {
	Dir  string // registry directory
	Raw  string
	Abs  string // absolute
	Rel  string // relative to Dir
	Hash string
}

// New parses raw, which may be a bare hash or a path ending in one.
func (path Path) New(dir, raw string) (res *Path, err error) {
	path.Dir = dir
	path.Raw = raw

	clean := filepath.Clean(raw)
	if strings.HasPrefix(clean, dir+string(filepath.Separator)) {
		clean = strings.TrimPrefix(clean, dir+string(filepath.Separator))
	}
	// the last part of the path is always the full hash
	path.Hash = filepath.Base(clean)
	if !isHash(path.Hash) {
		return nil, fmt.Errorf("malformed object path: %s", raw)
	}
	path.Rel = path.Hash
	path.Abs = filepath.Join(dir, path.Rel)
	return &path, nil
}

// isHash reports whether s looks like a hex digest produced by
// DefaultAlgo.  Anything else in the directory (the index, renameio
// temp files) is not an object.
func isHash(s string) bool {
	if len(s) != 2*32 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil && strings.ToLower(s) == s
}
