package storage

import (
	"os"
	"sync"
	"syscall"

	"github.com/spf13/afero"
)

// FileLock serializes writers of one storage file. On the OS filesystem it
// also holds an flock so separate processes (CLI and server) do not
// interleave writes; on other filesystems it is an in-process mutex only.
type FileLock struct {
	path string
	fs   afero.Fs
	file *os.File
	mu   sync.Mutex
}

// NewFileLock creates a new file lock.
func NewFileLock(fs afero.Fs, path string) *FileLock {
	return &FileLock{path: path, fs: fs}
}

func (l *FileLock) osBacked() bool {
	_, ok := l.fs.(*afero.OsFs)
	return ok
}

// Lock acquires an exclusive lock on the file.
func (l *FileLock) Lock() error {
	l.mu.Lock()

	if !l.osBacked() {
		return nil
	}

	f, err := os.OpenFile(l.path+".lock", os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		l.mu.Unlock()
		return err
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		l.mu.Unlock()
		return err
	}

	l.file = f
	return nil
}

// Unlock releases the lock.
func (l *FileLock) Unlock() error {
	if l.file != nil {
		syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
		l.file.Close()
		os.Remove(l.path + ".lock")
		l.file = nil
	}

	l.mu.Unlock()
	return nil
}
