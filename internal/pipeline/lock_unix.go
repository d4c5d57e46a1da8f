//go:build unix

package pipeline

import (
	"errors"

	"golang.org/x/sys/unix"
)

func isPlatformLock(err error) bool {
	return errors.Is(err, unix.EBUSY) || errors.Is(err, unix.ETXTBSY)
}
