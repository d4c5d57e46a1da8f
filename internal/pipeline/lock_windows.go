//go:build windows

package pipeline

import (
	"errors"

	"golang.org/x/sys/windows"
)

// MoveFileEx onto a file another process holds open reports a sharing
// violation or, just as often, access denied.
func isPlatformLock(err error) bool {
	return errors.Is(err, windows.ERROR_SHARING_VIOLATION) ||
		errors.Is(err, windows.ERROR_LOCK_VIOLATION) ||
		errors.Is(err, windows.ERROR_ACCESS_DENIED)
}
