// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/invowk/medkit/internal/config"
	"github.com/invowk/medkit/internal/inventory"
	"github.com/invowk/medkit/internal/issue"
	"github.com/invowk/medkit/internal/persist"
	"github.com/invowk/medkit/internal/store"
	"github.com/invowk/medkit/pkg/medicine"
	"github.com/invowk/medkit/pkg/snapshot"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives an App and reaches
	// configuration, persistence and the inventory through it.
	App struct {
		Config    config.Provider
		Clock     medicine.Clock
		configDir string
		stdout    io.Writer
		stderr    io.Writer
		flags     globalFlags
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Clock  medicine.Clock
		// ConfigDir overrides the platform configuration directory.
		ConfigDir string
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// globalFlags holds the persistent root flags.
	globalFlags struct {
		configFile string
		envFile    string
		dataPath   string
		backend    string
		verbose    bool
	}

	// session is one command's view of the inventory: the merged
	// configuration, the open backend and a manager seeded from it.
	session struct {
		cfg        *config.Config
		configPath string
		logger     *log.Logger
		backend    persist.Backend
		manager    *inventory.Manager
		// dirty marks the inventory as changed; it is saved on success.
		dirty bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Clock == nil {
		deps.Clock = medicine.RealClock{}
	}
	return &App{
		Config:    deps.Config,
		Clock:     deps.Clock,
		configDir: deps.ConfigDir,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}
}

// loadConfig loads configuration and applies the --backend and --data
// overrides on top of it.
func (a *App) loadConfig(ctx context.Context) (*config.Config, string, error) {
	cfg, path, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: a.flags.configFile,
		ConfigDirPath:  a.configDir,
		EnvFile:        a.flags.envFile,
	})
	if err != nil {
		return nil, "", withIssue(err, issue.ConfigLoadFailedId)
	}

	if a.flags.backend != "" {
		backend := config.StorageBackend(a.flags.backend)
		if valid, errs := backend.IsValid(); !valid {
			return nil, "", issue.NewErrorContext().
				WithOperation("select storage backend").
				WithSuggestion("Use --backend json or --backend sqlite").
				Wrap(errs[0]).
				BuildError()
		}
		cfg.Storage.Backend = backend
	}
	if a.flags.dataPath != "" {
		cfg.Storage.Path = a.flags.dataPath
	}
	return cfg, path, nil
}

// newLogger builds the command logger: debug level when verbose, warnings
// only otherwise.
func (a *App) newLogger(cfg *config.Config) *log.Logger {
	level := log.WarnLevel
	if a.flags.verbose || cfg.UI.Verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}

// verbose reports whether verbose output was requested by flag.
func (a *App) verbose() bool { return a.flags.verbose }

// openSession loads configuration, opens the storage backend and restores
// the stored inventory. Restoring is all-or-nothing: one bad record fails
// the whole load and nothing is seeded.
func (a *App) openSession(ctx context.Context) (*session, error) {
	cfg, cfgPath, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	logger := a.newLogger(cfg)

	dataPath, err := cfg.StoragePath()
	if err != nil {
		return nil, fmt.Errorf("resolve data path: %w", err)
	}
	backend, err := persist.Open(ctx, cfg.Storage.Backend.String(), dataPath, logger)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("open inventory").
			WithResource(dataPath).
			WithIssue(issue.DataFileUnwritableId).
			Wrap(err).
			BuildError()
	}

	manager, err := restore(ctx, backend, medicine.NewFactory(a.Clock), logger)
	if err != nil {
		_ = backend.Close()
		return nil, issue.NewErrorContext().
			WithOperation("load inventory").
			WithResource(backend.Location()).
			WithIssue(issue.DataFileCorruptId).
			Wrap(err).
			BuildError()
	}
	logger.Debug("session opened", "config", cfgPath, "backend", cfg.Storage.Backend, "packages", manager.Count())

	return &session{
		cfg:        cfg,
		configPath: cfgPath,
		logger:     logger,
		backend:    backend,
		manager:    manager,
	}, nil
}

// restore decodes the stored document and seeds a fresh manager with it.
func restore(ctx context.Context, backend persist.Backend, factory medicine.Factory, logger *log.Logger) (*inventory.Manager, error) {
	doc, err := backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	packages, err := snapshot.Decode(doc, factory)
	if err != nil {
		return nil, err
	}
	manager := inventory.New(store.New(), factory, logger)
	if failures := manager.Seed(packages); len(failures) > 0 {
		return nil, fmt.Errorf("record for package %d: %w", failures[0].Package.ID(), failures[0].Err)
	}
	manager.RestoreLastID(doc.LastID)
	return manager, nil
}

// save writes the whole inventory back to the backend.
func (s *session) save(ctx context.Context) error {
	doc := snapshot.Encode(s.manager.Packages(), s.manager.LastID())
	if err := s.backend.Save(ctx, doc); err != nil {
		return issue.NewErrorContext().
			WithOperation("save inventory").
			WithResource(s.backend.Location()).
			WithIssue(issue.DataFileUnwritableId).
			Wrap(err).
			BuildError()
	}
	return nil
}

// withSession opens a session, runs fn and saves the inventory when fn
// marked it dirty. A failing fn discards every in-memory change.
func (a *App) withSession(ctx context.Context, fn func(*session) error) (retErr error) {
	s, err := a.openSession(ctx)
	if err != nil {
		return a.fail(err)
	}
	defer func() {
		if cerr := s.backend.Close(); cerr != nil && retErr == nil {
			retErr = a.fail(issue.WrapWithContext(cerr, "close inventory", s.backend.Location()))
		}
	}()

	if err := fn(s); err != nil {
		return a.fail(err)
	}
	if s.dirty {
		if err := s.save(ctx); err != nil {
			return a.fail(err)
		}
	}
	return nil
}

// fail renders the guidance for err to stderr and returns it as an
// ExitError carrying the matching exit code. The error message itself is
// printed by the caller of Execute.
func (a *App) fail(err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	var ae *issue.ActionableError
	switch {
	case errors.As(err, &ae) && a.verbose():
		fmt.Fprintln(a.stderr, SubtitleStyle.Render(formatErrorForDisplay(err, true)))
	case ae != nil:
		for _, suggestion := range ae.Suggestions {
			fmt.Fprintln(a.stderr, SubtitleStyle.Render("  • "+suggestion))
		}
	}
	if id := issueFor(err); id != 0 {
		if entry := issue.Get(id); entry != nil {
			rendered, renderErr := entry.Render(a.issueStyle())
			if renderErr != nil {
				log.Warn("failed to render issue catalog entry", "issue", id, "error", renderErr)
			} else {
				fmt.Fprint(a.stderr, rendered)
			}
		}
	}
	return &ExitError{Code: exitCodeFor(err), Err: err}
}

// issueStyle returns the glamour style for catalogued guidance: colors only
// when stderr is the terminal.
func (a *App) issueStyle() string {
	if f, ok := a.stderr.(*os.File); ok && f == os.Stderr {
		return "dark"
	}
	return "notty"
}

// withIssue attaches catalogued guidance to an ActionableError, or wraps any
// other error in one.
func withIssue(err error, id issue.Id) error {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		cp := *ae
		cp.Issue = id
		return &cp
	}
	return issue.NewErrorContext().WithOperation("load configuration").WithIssue(id).Wrap(err).BuildError()
}
