package pipeline

import (
	"errors"
	"os"
)

// ErrFileLocked marks a replacement blocked because another process holds
// the original open. Platform lock errors are recognized by [IsLocked] too.
var ErrFileLocked = errors.New("file is locked by another process")

// FileSystem is the narrow set of filesystem calls the re-encode job makes.
// Tests substitute it to simulate locked files.
type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
}

// OSFileSystem is the real filesystem.
type OSFileSystem struct{}

func (OSFileSystem) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }
func (OSFileSystem) Remove(name string) error              { return os.Remove(name) }
func (OSFileSystem) Rename(oldpath, newpath string) error  { return os.Rename(oldpath, newpath) }

// replaceFile moves tmp over dst in a single rename. On POSIX systems the
// rename is atomic, so a crash leaves either the old or the new file at dst,
// never neither. On Windows os.Rename uses MoveFileEx with
// MOVEFILE_REPLACE_EXISTING, which fails with a sharing violation while dst
// is open elsewhere; that failure leaves both files untouched.
func replaceFile(fsys FileSystem, tmp, dst string) error {
	return fsys.Rename(tmp, dst)
}

// IsLocked reports whether err means the target is held open by another
// process, as opposed to a permission or I/O problem.
func IsLocked(err error) bool {
	return err != nil && (errors.Is(err, ErrFileLocked) || isPlatformLock(err))
}
