package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"lingosort/internal/logging"
	"lingosort/internal/services"
)

// FileTask is one document to classify. Path is absolute.
type FileTask struct {
	Path string
}

// Ext returns the lower-cased extension including the dot.
func (t FileTask) Ext() string {
	return strings.ToLower(filepath.Ext(t.Path))
}

// Options controls enumeration.
type Options struct {
	// Extensions is the case-insensitive allow-list, e.g. ".pdf".
	Extensions []string
	// ExcludeDirs are pruned. Relative entries are resolved against each root.
	ExcludeDirs []string
	// OutputDir is always pruned so sorted files are never rescanned.
	OutputDir string
	Logger    *slog.Logger
}

// ValidateRoot reports a configuration error when root is missing or not a
// directory.
func ValidateRoot(fsys afero.Fs, root string) error {
	info, err := fsys.Stat(root)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "scan", "stat root", fmt.Sprintf("root %q is not accessible", root), err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrConfiguration, "scan", "stat root", fmt.Sprintf("root %q is not a directory", root), nil)
	}
	return nil
}

// Enumerate walks root and returns matching documents sorted by path.
func Enumerate(fsys afero.Fs, root string, opts Options) ([]FileTask, error) {
	root = filepath.Clean(root)
	if err := ValidateRoot(fsys, root); err != nil {
		return nil, err
	}
	logger := logging.NewComponentLogger(opts.Logger, "scan")
	allowed := extensionSet(opts.Extensions)
	excluded := buildExcluded(root, opts.ExcludeDirs, opts.OutputDir)

	var (
		tasks   []FileTask
		skipped int
		rootErr error
	)
	err := afero.Walk(fsys, root, func(path string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			if path == root {
				rootErr = walkErr
				return walkErr
			}
			logging.WarnWithContext(logger, "directory skipped", "scan_dir_unreadable",
				logging.String("path", path),
				logging.Error(walkErr),
				logging.String(logging.FieldErrorHint, "check permissions on the directory"),
				logging.String(logging.FieldImpact, "documents inside were not enumerated"),
			)
			skipped++
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info == nil {
			return nil
		}
		if path != root && isExcluded(path, excluded) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		tasks = append(tasks, FileTask{Path: path})
		return nil
	})
	if err != nil {
		if rootErr != nil {
			return nil, services.Wrap(services.ErrConfiguration, "scan", "read root", fmt.Sprintf("root %q is not readable", root), rootErr)
		}
		return nil, err
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Path < tasks[j].Path })
	logger.Debug("root enumerated",
		logging.String("root", root),
		logging.Int("documents", len(tasks)),
		logging.Int("skipped_dirs", skipped),
	)
	return tasks, nil
}

// EnumerateAll enumerates every root and drops paths seen more than once,
// which happens when roots overlap.
func EnumerateAll(fsys afero.Fs, roots []string, opts Options) ([]FileTask, error) {
	if len(roots) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "scan", "roots", "no root directory given", nil)
	}
	seen := make(map[string]struct{})
	var all []FileTask
	var errs []error
	for _, root := range roots {
		tasks, err := Enumerate(fsys, root, opts)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, task := range tasks {
			if _, ok := seen[task.Path]; ok {
				continue
			}
			seen[task.Path] = struct{}{}
			all = append(all, task)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return all, nil
}

func extensionSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}

func buildExcluded(root string, excludeDirs []string, outputDir string) []string {
	excluded := make([]string, 0, len(excludeDirs)+1)
	if outputDir = strings.TrimSpace(outputDir); outputDir != "" {
		excluded = append(excluded, filepath.Clean(outputDir))
	}
	for _, dir := range excludeDirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		if filepath.IsAbs(dir) {
			excluded = append(excluded, filepath.Clean(dir))
			continue
		}
		excluded = append(excluded, filepath.Join(root, dir))
	}
	sort.Strings(excluded)
	return excluded
}

func isExcluded(path string, excluded []string) bool {
	path = filepath.Clean(path)
	for _, base := range excluded {
		if path == base || strings.HasPrefix(path, base+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
