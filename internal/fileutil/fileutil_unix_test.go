//go:build unix

package fileutil

import (
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// crossDeviceFs fails every rename with EXDEV.
type crossDeviceFs struct {
	afero.Fs
	renames int
}

func (f *crossDeviceFs) Rename(oldname, newname string) error {
	f.renames++
	return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: unix.EXDEV}
}

func TestIsCrossDevice(t *testing.T) {
	if !IsCrossDevice(&os.LinkError{Op: "rename", Err: unix.EXDEV}) {
		t.Fatal("expected LinkError(EXDEV) detected")
	}
	if !IsCrossDevice(unix.EXDEV) {
		t.Fatal("expected bare EXDEV detected")
	}
	if IsCrossDevice(&os.LinkError{Op: "rename", Err: unix.ENOENT}) {
		t.Fatal("ENOENT is not cross-device")
	}
	if IsCrossDevice(nil) {
		t.Fatal("nil is not cross-device")
	}
}

func TestMoveFallsBackToCopyAcrossDevices(t *testing.T) {
	fs := &crossDeviceFs{Fs: afero.NewMemMapFs()}
	writeFile(t, fs, "/mnt/a/report.rtf", "english text")
	if err := fs.MkdirAll("/mnt/b/english", 0o755); err != nil {
		t.Fatal(err)
	}

	if err := Move(fs, "/mnt/a/report.rtf", "/mnt/b/english/report.rtf"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if fs.renames != 1 {
		t.Fatalf("expected one rename attempt, got %d", fs.renames)
	}
	if _, err := fs.Stat("/mnt/a/report.rtf"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected source removed after copy, stat err = %v", err)
	}
	got, err := afero.ReadFile(fs, "/mnt/b/english/report.rtf")
	if err != nil || string(got) != "english text" {
		t.Fatalf("destination content = %q, %v", got, err)
	}
}
