package scan

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/afero"

	"lingosort/internal/services"
)

var docExts = []string{".pdf", ".doc", ".docx", ".rtf"}

func touch(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := afero.WriteFile(fsys, path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func paths(tasks []FileTask) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Path)
	}
	return out
}

func TestEnumerateFiltersExtensions(t *testing.T) {
	fsys := afero.NewMemMapFs()
	touch(t, fsys, "/in/a.pdf")
	touch(t, fsys, "/in/b.DOCX")
	touch(t, fsys, "/in/nested/c.Rtf")
	touch(t, fsys, "/in/nested/deeper/d.doc")
	touch(t, fsys, "/in/notes.txt")
	touch(t, fsys, "/in/pdf")

	got, err := Enumerate(fsys, "/in", Options{Extensions: docExts})
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	want := []string{"/in/a.pdf", "/in/b.DOCX", "/in/nested/c.Rtf", "/in/nested/deeper/d.doc"}
	if !reflect.DeepEqual(paths(got), want) {
		t.Fatalf("got %v, want %v", paths(got), want)
	}
	if got[1].Ext() != ".docx" {
		t.Fatalf("Ext() = %q, want .docx", got[1].Ext())
	}
}

func TestEnumerateExcludesDirsAndOutput(t *testing.T) {
	fsys := afero.NewMemMapFs()
	touch(t, fsys, "/in/keep/a.pdf")
	touch(t, fsys, "/in/tmp/b.pdf")
	touch(t, fsys, "/in/sorted/hebrew/c.pdf")
	touch(t, fsys, "/in/archive/d.pdf")

	got, err := Enumerate(fsys, "/in", Options{
		Extensions:  docExts,
		ExcludeDirs: []string{"tmp", "/in/archive"},
		OutputDir:   "/in/sorted",
	})
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if want := []string{"/in/keep/a.pdf"}; !reflect.DeepEqual(paths(got), want) {
		t.Fatalf("got %v, want %v", paths(got), want)
	}
}

func TestEnumerateMissingRootIsConfigurationError(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_, err := Enumerate(fsys, "/nope", Options{Extensions: docExts})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	touch(t, fsys, "/file.pdf")
	_, err = Enumerate(fsys, "/file.pdf", Options{Extensions: docExts})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for file root, got %v", err)
	}
}

func TestEnumerateEmptyRoot(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/empty", 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := Enumerate(fsys, "/empty", Options{Extensions: docExts})
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no tasks, got %v", paths(got))
	}
}

// lockedFs refuses to open one directory.
type lockedFs struct {
	afero.Fs
	locked string
}

func (f lockedFs) Open(name string) (afero.File, error) {
	if filepath.Clean(name) == f.locked {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.Open(name)
}

func TestEnumerateSkipsUnreadableSubdirectory(t *testing.T) {
	base := afero.NewMemMapFs()
	touch(t, base, "/in/open/a.pdf")
	touch(t, base, "/in/locked/b.pdf")
	touch(t, base, "/in/z.pdf")

	got, err := Enumerate(lockedFs{Fs: base, locked: "/in/locked"}, "/in", Options{Extensions: docExts})
	if err != nil {
		t.Fatalf("unreadable subdirectory must not fail the scan: %v", err)
	}
	if want := []string{"/in/open/a.pdf", "/in/z.pdf"}; !reflect.DeepEqual(paths(got), want) {
		t.Fatalf("got %v, want %v", paths(got), want)
	}
}

func TestEnumerateUnreadableRootIsConfigurationError(t *testing.T) {
	base := afero.NewMemMapFs()
	touch(t, base, "/in/a.pdf")
	_, err := Enumerate(lockedFs{Fs: base, locked: "/in"}, "/in", Options{Extensions: docExts})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestEnumerateSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	fsys := afero.NewOsFs()
	touch(t, fsys, filepath.Join(root, "real.pdf"))
	outside := t.TempDir()
	touch(t, fsys, filepath.Join(outside, "elsewhere.pdf"))
	if err := os.Symlink(filepath.Join(root, "real.pdf"), filepath.Join(root, "link.pdf")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "linkdir")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := Enumerate(fsys, root, Options{Extensions: docExts})
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if want := []string{filepath.Join(root, "real.pdf")}; !reflect.DeepEqual(paths(got), want) {
		t.Fatalf("got %v, want %v", paths(got), want)
	}
}

func TestEnumerateAllDeduplicatesOverlappingRoots(t *testing.T) {
	fsys := afero.NewMemMapFs()
	touch(t, fsys, "/in/a.pdf")
	touch(t, fsys, "/in/sub/b.pdf")

	got, err := EnumerateAll(fsys, []string{"/in", "/in/sub"}, Options{Extensions: docExts})
	if err != nil {
		t.Fatalf("EnumerateAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 unique tasks, got %v", paths(got))
	}

	if _, err := EnumerateAll(fsys, nil, Options{Extensions: docExts}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for no roots, got %v", err)
	}
	if _, err := EnumerateAll(fsys, []string{"/in", "/missing"}, Options{Extensions: docExts}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing root, got %v", err)
	}
}
