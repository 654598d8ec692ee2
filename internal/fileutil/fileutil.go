package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// ErrDestinationExists is returned when a move or copy would replace an
// existing file.
var ErrDestinationExists = errors.New("destination already exists")

// CopyFileVerified streams src to dst, then re-reads dst and compares size
// and SHA-256 with what was read from src. dst must not exist and is removed
// when verification fails.
func CopyFileVerified(fs afero.Fs, src, dst string) error {
	srcInfo, err := fs.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, srcInfo.Mode().Perm())
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
		}
		return err
	}

	srcHash := sha256.New()
	written, copyErr := io.Copy(out, io.TeeReader(in, srcHash))
	closeErr := out.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = fs.Remove(dst)
		return err
	}
	if written != srcInfo.Size() {
		_ = fs.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}

	dstSum, err := fileSHA256(fs, dst)
	if err != nil {
		_ = fs.Remove(dst)
		return fmt.Errorf("verify copy: %w", err)
	}
	if !bytes.Equal(srcHash.Sum(nil), dstSum) {
		_ = fs.Remove(dst)
		return errors.New("copy hash mismatch: file corrupted during copy")
	}
	_ = fs.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime())
	return nil
}

func fileSHA256(fs afero.Fs, path string) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// Move relocates src to dst without replacing an existing file. A rename is
// tried first; when src and dst live on different filesystems the file is
// copied with verification and the source removed afterwards.
func Move(fs afero.Fs, src, dst string) error {
	if _, err := lstat(fs, dst); err == nil {
		return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat destination: %w", err)
	}

	err := fs.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !IsCrossDevice(err) {
		return err
	}

	if err := CopyFileVerified(fs, src, dst); err != nil {
		return fmt.Errorf("cross-device copy: %w", err)
	}
	if err := fs.Remove(src); err != nil {
		return fmt.Errorf("remove source after cross-device copy: %w", err)
	}
	return nil
}

// IsCrossDevice reports whether err is a rename failure caused by src and dst
// living on different filesystems.
func IsCrossDevice(err error) bool {
	return err != nil && isEXDEV(err)
}

func lstat(fs afero.Fs, path string) (os.FileInfo, error) {
	if lstater, ok := fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(path)
		return info, err
	}
	return fs.Stat(path)
}
