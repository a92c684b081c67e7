// Package lockfile implements doclocal.lock — a run lock in the book root
// that keeps two builds from overwriting each other's translation cache.
// The cache is persisted as a full rewrite, so the last writer wins; the
// lock turns that race into an upfront error instead.
//
// A lock left behind by a dead process is taken over silently.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"
)

// LockFileName is the lock file name inside the book root.
const LockFileName = "doclocal.lock"

// Lock is a held run lock. Release it when the build finishes.
type Lock struct {
	path string
}

// contents is the on-disk shape of doclocal.lock.
type contents struct {
	PID     int       `yaml:"pid"`
	Started time.Time `yaml:"started"`
}

// Acquire takes the run lock for the given book root. It fails when another
// live process holds it; a stale lock from a dead process is replaced.
func Acquire(dir string) (*Lock, error) {
	path := filepath.Join(dir, LockFileName)

	if holder, ok := currentHolder(path); ok {
		if processAlive(holder.PID) {
			return nil, fmt.Errorf("another build is running (pid %d, since %s); remove %s if that is wrong",
				holder.PID, holder.Started.Format(time.RFC3339), path)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing stale lock: %w", err)
		}
	}

	data, err := yaml.Marshal(contents{PID: os.Getpid(), Started: time.Now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("marshaling lock file: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("another build is running; remove %s if that is wrong", path)
		}
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	return &Lock{path: path}, nil
}

// Release removes the lock file. Releasing twice is harmless.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("releasing lock: %w", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// currentHolder reads an existing lock file. An unreadable or malformed
// lock counts as absent.
func currentHolder(path string) (contents, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return contents{}, false
	}
	var c contents
	if err := yaml.Unmarshal(data, &c); err != nil || c.PID == 0 {
		// Malformed lock: treat as stale so Acquire replaces it.
		return contents{PID: -1}, true
	}
	return c, true
}

// processAlive reports whether a process with the given pid exists.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
