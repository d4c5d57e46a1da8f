//go:build !unix && !windows

package pipeline

func isPlatformLock(error) bool { return false }
