package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/conduit-lang/typestate/internal/tooling/build"
	"github.com/conduit-lang/typestate/internal/utils"
)

// ReportFunc receives the outcome of every generation
type ReportFunc func(result *build.BuildResult, err error)

// Session runs the generator once, then again after every batch of input
// changes, until its context is cancelled.
type Session struct {
	system *build.System
	report ReportFunc
	logger *zap.Logger

	mu      sync.Mutex
	outputs map[string]bool // files written by the last run
}

// NewSession creates a watch session around a build system
func NewSession(system *build.System, report ReportFunc, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if report == nil {
		report = func(*build.BuildResult, error) {}
	}
	return &Session{
		system:  system,
		report:  report,
		logger:  logger,
		outputs: make(map[string]bool),
	}
}

// Run generates, then watches the input directories until ctx is done.
// Packages created after Run starts are not watched.
func (s *Session) Run(ctx context.Context) error {
	s.regenerate(ctx)

	dirs, err := s.dirs()
	if err != nil {
		return fmt.Errorf("failed to find directories: %w", err)
	}

	opts := s.system.Options()
	fw, err := NewFileWatcher(
		[]string{"*.go", opts.SchemaGlob},
		[]string{"*_test.go", opts.Output},
		func(files []string) error {
			return s.handle(ctx, files)
		},
		s.logger,
	)
	if err != nil {
		return err
	}

	if err := fw.Start(dirs); err != nil {
		fw.Stop()
		return err
	}
	s.logger.Info("watching for changes", zap.Strings("dirs", dirs))

	<-ctx.Done()
	return fw.Stop()
}

// dirs lists the directories to watch
func (s *Session) dirs() ([]string, error) {
	opts := s.system.Options()
	root, recursive := utils.SplitRecursive(opts.Dir)
	if !recursive {
		return []string{root}, nil
	}
	return utils.FindPackageDirs(root, opts.SchemaGlob)
}

// handle regenerates unless the batch only holds files the generator
// wrote itself
func (s *Session) handle(ctx context.Context, files []string) error {
	if ctx.Err() != nil {
		return nil
	}

	changed := s.inputs(files)
	if len(changed) == 0 {
		return nil
	}

	s.logger.Debug("inputs changed", zap.Strings("files", changed))
	s.regenerate(ctx)
	return nil
}

// inputs filters out outputs of the previous run
func (s *Session) inputs(files []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err == nil && s.outputs[abs] {
			continue
		}
		out = append(out, f)
	}
	return out
}

func (s *Session) regenerate(ctx context.Context) {
	result, err := s.system.Run(ctx)
	if ctx.Err() != nil {
		return
	}

	if result != nil {
		s.mu.Lock()
		s.outputs = make(map[string]bool)
		for _, f := range result.Files {
			if abs, err := filepath.Abs(f.Path); err == nil {
				s.outputs[abs] = true
			}
		}
		s.mu.Unlock()
	}

	s.report(result, err)
}
