package ui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/text/language"

	"github.com/common-creation/tokencounter/internal/styles"
	"github.com/common-creation/tokencounter/internal/widget"
)

// App is the terminal host of one token counter widget
type App struct {
	bridge *HostBridge
	ctrl   *widget.Controller
	model  Model
	logger *log.Logger

	programOpts []tea.ProgramOption
}

// AppOptions contains options for creating a new App
type AppOptions struct {
	Input  *widget.ToolInput
	Store  StateStore
	Slot   string
	Caller widget.ToolCaller
	Locale language.Tag
	Theme  string
	Logger *log.Logger

	// In and Out replace the terminal, mainly for tests
	In  io.Reader
	Out io.Writer
}

// NewApp mounts the widget against a HostBridge built from opts
func NewApp(ctx context.Context, opts AppOptions) (*App, error) {
	if opts.Caller == nil {
		return nil, fmt.Errorf("a tool caller is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Locale == language.Und {
		opts.Locale = language.English
	}
	logger := opts.Logger.WithPrefix("tui")

	bridge := NewHostBridge(ctx, BridgeOptions{
		Input:  opts.Input,
		Store:  opts.Store,
		Slot:   opts.Slot,
		Caller: opts.Caller,
		Logger: logger,
	})
	ctrl := widget.New(bridge, widget.WithLogger(logger), widget.WithLocale(opts.Locale))

	model := NewModel(ModelOptions{
		Context:    ctx,
		Controller: ctrl,
		Heights:    bridge.Heights(),
		Styles:     styles.ForTerminal(opts.Theme),
	})

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.In != nil {
		programOpts = append(programOpts, tea.WithInput(opts.In))
	}
	if opts.Out != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Out))
	} else {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	return &App{
		bridge:      bridge,
		ctrl:        ctrl,
		model:       model,
		logger:      logger,
		programOpts: programOpts,
	}, nil
}

// Run starts the program and blocks until the user quits or the context
// passed to NewApp is cancelled
func (a *App) Run() error {
	a.logger.Info("Starting token counter TUI", "widget", a.ctrl.ID())

	if _, err := tea.NewProgram(a.model, a.programOpts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			a.logger.Info("TUI stopped")
			return nil
		}
		return fmt.Errorf("failed to run program: %w", err)
	}
	return nil
}

// Controller returns the mounted widget controller
func (a *App) Controller() *widget.Controller {
	return a.ctrl
}
