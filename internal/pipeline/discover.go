package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extension is the file extension flacr picks up (compared case-insensitively).
const Extension = ".flac"

// CandidateFile is one discovered file. Immutable once discovered.
type CandidateFile struct {
	Path string // Absolute.
	Size int64  // Bytes at discovery time.
}

// DiscoverOptions controls traversal. Callbacks may be nil.
type DiscoverOptions struct {
	SingleLevel bool                         // Only list root itself.
	OnVisit     func()                       // Called for every file inspected.
	OnSkip      func(path string, err error) // Called for every unreadable entry.
}

// Discover returns the readable regular .flac files under root, sorted by
// absolute path. Unreadable subdirectories and files are skipped (reported
// through OnSkip) rather than failing the run; only an unreadable root is an
// error. No matches yields an empty slice.
func Discover(root string, opts DiscoverOptions) ([]CandidateFile, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []CandidateFile
	if opts.SingleLevel {
		files, err = discoverFlat(abs, opts)
	} else {
		files, err = discoverTree(abs, opts)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func discoverTree(root string, opts DiscoverOptions) ([]CandidateFile, error) {
	var files []CandidateFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			opts.skip(path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if f, ok := candidate(path, d, opts); ok {
			files = append(files, f)
		}
		return nil
	})
	return files, err
}

func discoverFlat(root string, opts DiscoverOptions) ([]CandidateFile, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var files []CandidateFile
	for _, d := range entries {
		if d.IsDir() {
			continue
		}
		if f, ok := candidate(filepath.Join(root, d.Name()), d, opts); ok {
			files = append(files, f)
		}
	}
	return files, nil
}

// candidate applies the extension, regular-file and readability filters.
func candidate(path string, d fs.DirEntry, opts DiscoverOptions) (CandidateFile, bool) {
	if opts.OnVisit != nil {
		opts.OnVisit()
	}
	if !strings.EqualFold(filepath.Ext(path), Extension) || !d.Type().IsRegular() {
		return CandidateFile{}, false
	}
	info, err := d.Info()
	if err != nil {
		opts.skip(path, err)
		return CandidateFile{}, false
	}
	f, err := os.Open(path)
	if err != nil {
		opts.skip(path, err)
		return CandidateFile{}, false
	}
	_ = f.Close()
	return CandidateFile{Path: path, Size: info.Size()}, true
}

func (o DiscoverOptions) skip(path string, err error) {
	if o.OnSkip != nil {
		o.OnSkip(path, err)
	}
}
