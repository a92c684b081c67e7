package lockfile

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestAcquireRelease(t *testing.T) {
	dir := t.TempDir()

	lock, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := os.Stat(lock.Path()); err != nil {
		t.Fatalf("lock file missing while held: %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(lock.Path()); !os.IsNotExist(err) {
		t.Fatal("lock file still present after release")
	}

	// Releasing twice is harmless.
	if err := lock.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
}

func TestAcquireWhileHeld(t *testing.T) {
	dir := t.TempDir()

	lock, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lock.Release()

	// The holder is this very process, which is certainly alive.
	if _, err := Acquire(dir); err == nil {
		t.Fatal("second Acquire should fail while the lock is held")
	}
}

func TestAcquireReplacesStaleLock(t *testing.T) {
	dir := t.TempDir()

	// A short-lived child gives us a pid that is guaranteed dead.
	cmd := exec.Command("true")
	if err := cmd.Run(); err != nil {
		t.Skipf("cannot spawn helper process: %v", err)
	}
	path := filepath.Join(dir, LockFileName)
	body := fmt.Sprintf("pid: %d\nstarted: 2024-01-01T00:00:00Z\n", cmd.Process.Pid)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	lock, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire should replace a dead holder's lock: %v", err)
	}
	lock.Release()
}

func TestAcquireReplacesMalformedLock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LockFileName)
	if err := os.WriteFile(path, []byte("{not yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	lock, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire should replace a malformed lock: %v", err)
	}
	lock.Release()
}
