// Copyright © 2024 The Fuus Army Knife authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ion-fusion/fuus-army-knife/check"
	"github.com/ion-fusion/fuus-army-knife/config"
	"github.com/ion-fusion/fuus-army-knife/diagnostic"
	"github.com/ion-fusion/fuus-army-knife/index"
	"github.com/ion-fusion/fuus-army-knife/logging"
)

func (a *app) newCheckCommand() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "check [flags] [DIR]",
		Short: "Report unbound identifiers in a Fusion package",
		Long: `Load every module and test script of the package in DIR (default the
working directory) and report identifiers that are used without being
bound.

With --watch, keep running and re-check each module or test file when it
is written.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			idx, err := index.LoadIndex(ctx, a.cfg, packageDir(args))
			if err != nil {
				a.renderLoadError(cmd.ErrOrStderr(), err, packageDir(args))
				return &exitError{code: 2}
			}
			problems := check.New(idx).CheckAll()
			if err := a.renderProblems(cmd.OutOrStdout(), problems); err != nil {
				return err
			}
			a.log.Info("checked package",
				logging.FieldPath, idx.PackagePath(),
				logging.FieldProblems, len(problems))
			if watch {
				return a.watch(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), idx)
			}
			if len(problems) > 0 {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false,
		"Re-check files as they change.")
	return cmd
}

// renderLoadError renders an index loading error.  File names in loader
// errors are relative to pkgDir.
func (a *app) renderLoadError(w io.Writer, err error, pkgDir string) {
	r := a.renderer()
	r.SourceReader = func(name string) ([]byte, error) {
		if !filepath.IsAbs(name) {
			name = filepath.Join(pkgDir, filepath.FromSlash(name))
		}
		return os.ReadFile(name)
	}
	_ = r.Render(w, diagnostic.FromError(err, nil))
}

// checkWatcher re-checks the module or script a changed file belongs to.
type checkWatcher struct {
	cfg     *config.Config
	idx     *index.Index
	loader  *index.Loader
	checker *check.Checker
	log     *log.Logger
}

func newCheckWatcher(ctx context.Context, cfg *config.Config, idx *index.Index) *checkWatcher {
	return &checkWatcher{
		cfg:     cfg,
		idx:     idx,
		loader:  index.NewLoader(ctx, cfg, idx),
		checker: check.New(idx),
		log:     logging.FromContext(ctx),
	}
}

// recheck reloads the file at path and checks what it defines.  Files
// outside the configured paths are ignored and reported as not handled.
func (w *checkWatcher) recheck(path string) ([]check.Problem, bool, error) {
	if !strings.HasSuffix(path, fusionExt) {
		return nil, false, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false, err
	}
	rel, err := filepath.Rel(w.idx.PackagePath(), abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, false, nil
	}
	rel = filepath.ToSlash(rel)
	p, ok := w.cfg.ResolvePath(rel)
	if !ok {
		return nil, false, nil
	}
	switch p.Mode {
	case config.PathModules:
		name, err := w.loader.DetermineModuleName(abs)
		if err != nil {
			return nil, true, err
		}
		id, err := w.loader.ReloadModuleFile(name, abs)
		if err != nil {
			return nil, true, err
		}
		return w.checker.CheckModule(id), true, nil
	default:
		id, err := w.loader.LoadScript(rel, p.TopLevelModules, p.GlobalBindings, []string{rel})
		if err != nil {
			return nil, true, err
		}
		return w.checker.CheckScript(id), true, nil
	}
}

// watch re-checks files under the configured paths as they are written
// until ctx is done.
func (a *app) watch(ctx context.Context, stdout, stderr io.Writer, idx *index.Index) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	for _, p := range a.cfg.Paths {
		dir := filepath.Join(idx.PackagePath(), filepath.FromSlash(p.Path))
		if err := watchDirRecursive(fsw, dir); err != nil {
			a.log.Warn("cannot watch path", logging.FieldPath, p.Path, logging.FieldError, err)
			continue
		}
		a.log.Info("watching", logging.FieldPath, p.Path)
	}

	w := newCheckWatcher(ctx, a.cfg, idx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if err := a.handleWatchEvent(fsw, w, event, stdout, stderr); err != nil {
				return err
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			a.log.Error("watcher error", logging.FieldError, err)
		}
	}
}

// handleWatchEvent rechecks the file named by event.  Editors that save by
// renaming a temporary file over the original produce a Create for the new
// name in the watched directory, followed at most by a Chmod.  A Rename or
// Remove names the old path, which no longer holds the file, so it only
// triggers a recheck when something exists there again.  New directories are
// added to the watch list.
func (a *app) handleWatchEvent(fsw *fsnotify.Watcher, w *checkWatcher, event fsnotify.Event, stdout, stderr io.Writer) error {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return nil
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		return nil
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := watchDirRecursive(fsw, event.Name); err != nil {
				a.log.Warn("cannot watch path", logging.FieldPath, event.Name, logging.FieldError, err)
			}
		}
		return nil
	}
	problems, handled, err := w.recheck(event.Name)
	if !handled {
		return nil
	}
	if err != nil {
		a.renderLoadError(stderr, err, w.idx.PackagePath())
		return nil
	}
	if err := a.renderProblems(stdout, problems); err != nil {
		return err
	}
	if len(problems) == 0 {
		fmt.Fprintf(stdout, "%s: ok\n", event.Name)
	}
	return nil
}

// watchDirRecursive adds root and its subdirectories to the watch list.
func watchDirRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}
