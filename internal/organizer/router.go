package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"lingosort/internal/fileutil"
	"lingosort/internal/logging"
	"lingosort/internal/services"
)

const stageRoute = "route"

// Options configures a Router.
type Options struct {
	// OutputDir is the root under which per-language directories are created.
	OutputDir string
	// Languages maps language codes to directory names.
	Languages map[string]string
	// DryRun computes placements and logs them without touching the filesystem.
	DryRun bool
	Logger *slog.Logger
}

// Placement describes where a document belongs.
type Placement struct {
	Language  string
	Directory string
	Path      string
}

// Router moves documents into their language directory. It is safe for
// concurrent use by multiple workers.
type Router struct {
	fs     afero.Fs
	base   string
	table  Table
	dryRun bool
	logger *slog.Logger

	mu       sync.Mutex
	reserved map[string]struct{}
}

// New validates the routing table and returns a Router rooted at
// opts.OutputDir. No directories are created until a document is routed.
func New(fs afero.Fs, opts Options) (*Router, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	base := strings.TrimSpace(opts.OutputDir)
	if base == "" {
		return nil, services.Wrap(services.ErrConfiguration, stageRoute, "init", "paths.output_dir is required", nil)
	}
	table, err := NewTable(opts.Languages)
	if err != nil {
		return nil, err
	}
	return &Router{
		fs:       fs,
		base:     filepath.Clean(base),
		table:    table,
		dryRun:   opts.DryRun,
		logger:   logging.NewComponentLogger(opts.Logger, "organizer"),
		reserved: make(map[string]struct{}),
	}, nil
}

// Table returns the normalized routing table.
func (r *Router) Table() Table {
	return r.table
}

// DryRun reports whether the router only logs placements.
func (r *Router) DryRun() bool {
	return r.dryRun
}

// SourceExists reports whether src is still present as a regular file.
func (r *Router) SourceExists(src string) bool {
	info, err := r.fs.Stat(src)
	return err == nil && info.Mode().IsRegular()
}

// Placement computes the destination for src without side effects.
func (r *Router) Placement(src, code string) (Placement, bool) {
	iso, dir, ok := r.table.Lookup(code)
	if !ok {
		return Placement{}, false
	}
	directory := filepath.Join(r.base, dir)
	return Placement{
		Language:  iso,
		Directory: directory,
		Path:      filepath.Join(directory, filepath.Base(src)),
	}, true
}

// Route moves src into the directory for code. The returned error is always
// tagged with one of the services sentinels; callers treat it as a per-file
// outcome, never as a reason to stop the batch.
func (r *Router) Route(ctx context.Context, src, code string) (Placement, error) {
	if _, ok := services.FileFromContext(ctx); !ok {
		ctx = services.WithFile(ctx, src)
	}
	logger := logging.WithContext(ctx, r.logger)

	placement, ok := r.Placement(src, code)
	if !ok {
		return Placement{}, services.Wrap(
			services.ErrUnrecognizedLanguage,
			stageRoute,
			"lookup",
			fmt.Sprintf("no directory configured for language %q", code),
			nil,
		)
	}
	logger = logger.With(
		logging.String(logging.FieldLanguage, placement.Language),
		logging.String(logging.FieldDestination, placement.Path),
	)

	if filepath.Clean(src) == placement.Path {
		logger.Debug("document already in place")
		return placement, nil
	}

	if !r.SourceExists(src) {
		logging.WarnWithContext(logger, "source vanished before routing", "source_missing",
			logging.String(logging.FieldErrorHint, "another process moved or deleted the file"),
			logging.String(logging.FieldImpact, "document skipped"),
		)
		return placement, services.Wrap(services.ErrMissingSource, stageRoute, "stat", src, nil)
	}

	if r.dryRun {
		logger.Info("dry run: document would be moved")
		return placement, nil
	}

	if err := r.ensureDir(placement.Directory); err != nil {
		logging.ErrorWithContext(logger, "destination directory unavailable", "route_mkdir_failed",
			logging.String(logging.FieldErrorHint, "check permissions on the output directory"),
			logging.Error(err),
		)
		return placement, services.Wrap(services.ErrRoute, stageRoute, "mkdir", placement.Directory, err)
	}

	if !r.reserve(placement.Path) {
		logging.WarnWithContext(logger, "destination claimed by another document", "route_collision",
			logging.String(logging.FieldErrorHint, "rename one of the documents and run again"),
		)
		return placement, services.Wrap(services.ErrRoute, stageRoute, "reserve", "destination in use: "+placement.Path, nil)
	}
	defer r.release(placement.Path)

	if err := fileutil.Move(r.fs, src, placement.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !r.SourceExists(src) {
			logging.WarnWithContext(logger, "source vanished during move", "source_missing",
					logging.String(logging.FieldImpact, "document skipped"),
			)
			return placement, services.Wrap(services.ErrMissingSource, stageRoute, "move", src, err)
		}
		hint := "check permissions and free space on the output directory"
		if errors.Is(err, fileutil.ErrDestinationExists) {
			hint = "a file with the same name already exists in the language directory"
		}
		logging.ErrorWithContext(logger, "move failed", "route_move_failed",
			logging.String(logging.FieldErrorHint, hint),
			logging.Error(err),
		)
		return placement, services.Wrap(services.ErrRoute, stageRoute, "move", src, err)
	}

	logger.Info("document routed")
	return placement, nil
}

// ensureDir creates dir if needed. A concurrent creator winning the race is
// not an error.
func (r *Router) ensureDir(dir string) error {
	mkErr := r.fs.MkdirAll(dir, 0o755)
	info, err := r.fs.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}
	if mkErr != nil {
		return mkErr
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%s exists and is not a directory", dir)
}

func (r *Router) reserve(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.reserved[path]; taken {
		return false
	}
	r.reserved[path] = struct{}{}
	return true
}

func (r *Router) release(path string) {
	r.mu.Lock()
	delete(r.reserved, path)
	r.mu.Unlock()
}
