// SPDX-License-Identifier: Apache-2.0

// Package plock guards a target directory against concurrent installer
// invocations. Two processes racing on the reset-then-repopulate sequence can
// interleave and corrupt the directory, so callers acquire the lock for the
// duration of an install run.
//
// It only exposes blocking APIs, which means a process needs to wait for the
// response before proceeding with the next Acquire and/or Release commands.
package plock

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/joomcode/errorx"
)

const lockFileSuffix = ".plock"

var (
	ErrorsNamespace  = errorx.NewNamespace("plock")
	LockError        = ErrorsNamespace.NewType("lock_error")
	LockTimeoutError = ErrorsNamespace.NewType("lock_timeout_error", errorx.Timeout())
)

// Lock serializes access to a shared filesystem resource across processes.
type Lock interface {
	// Acquire attempts to set the lock, blocking until it is available.
	Acquire() error

	// TryAcquire attempts to set the lock before the timeout expires.
	TryAcquire(timeout time.Duration) error

	// Release releases the acquired lock.
	//
	// Note: It returns an error if a lock has not been acquired yet, so
	// IsAcquired() should be consulted before calling Release().
	Release() error

	// IsAcquired returns whether the lock is currently held by this process.
	IsAcquired() bool

	// Info returns information about the lock.
	Info() *Info
}

// Info describes a lock file.
type Info struct {
	Path string
	PID  int
}

type fileLock struct {
	fl  *flock.Flock
	pid int
}

// New creates a lock guarding the given directory. The lock file lives next to
// the directory rather than inside it, because the guarded directory is wiped
// on re-install.
func New(dir string) Lock {
	lockPath := filepath.Clean(dir) + lockFileSuffix
	return &fileLock{
		fl:  flock.New(lockPath),
		pid: os.Getpid(),
	}
}

func (l *fileLock) Acquire() error {
	if err := l.fl.Lock(); err != nil {
		return LockError.Wrap(err, "failed to acquire lock at %q", l.fl.Path())
	}

	return nil
}

func (l *fileLock) TryAcquire(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		acquired, err := l.fl.TryLock()
		if err != nil {
			return LockError.Wrap(err, "failed to acquire lock at %q", l.fl.Path())
		}

		if acquired {
			return nil
		}

		if time.Now().After(deadline) {
			return LockTimeoutError.New("timed out acquiring lock at %q after %s", l.fl.Path(), timeout)
		}

		time.Sleep(50 * time.Millisecond)
	}
}

func (l *fileLock) Release() error {
	if !l.fl.Locked() {
		return LockError.New("lock at %q is not acquired", l.fl.Path())
	}

	if err := l.fl.Unlock(); err != nil {
		return LockError.Wrap(err, "failed to release lock at %q", l.fl.Path())
	}

	return nil
}

func (l *fileLock) IsAcquired() bool {
	return l.fl.Locked()
}

func (l *fileLock) Info() *Info {
	return &Info{
		Path: l.fl.Path(),
		PID:  l.pid,
	}
}
