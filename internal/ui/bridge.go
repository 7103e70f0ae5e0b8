package ui

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/common-creation/tokencounter/internal/tokens"
	"github.com/common-creation/tokencounter/internal/widget"
)

// ErrNoToolServer is returned by CallTool when the host has no server to
// send the request to.
var ErrNoToolServer = errors.New("no token_counter server configured")

// StateStore keeps widget state between runs
type StateStore interface {
	Load(ctx context.Context, slot string) (*widget.PersistedState, bool, error)
	Save(ctx context.Context, slot string, state widget.FormState) error
}

// BridgeOptions contains options for creating a HostBridge
type BridgeOptions struct {
	// Input is the tool input the widget is mounted with, if any
	Input *widget.ToolInput
	// Store and Slot back the persisted-state slot. A nil store disables
	// persistence.
	Store  StateStore
	Slot   string
	Caller widget.ToolCaller
	Logger *log.Logger
}

// HostBridge is the terminal rendition of the widget host. It offers every
// optional capability: state is written to the store, height hints are
// delivered on Heights and tool calls go to the configured caller.
type HostBridge struct {
	input  *widget.ToolInput
	state  *widget.PersistedState
	store  StateStore
	slot   string
	caller widget.ToolCaller
	logger *log.Logger

	heights chan struct{}
}

const storeTimeout = 2 * time.Second

// NewHostBridge loads the persisted slot, if any, and returns the bridge.
// A failing store is logged and treated as empty.
func NewHostBridge(ctx context.Context, opts BridgeOptions) *HostBridge {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	b := &HostBridge{
		input:   opts.Input,
		store:   opts.Store,
		slot:    opts.Slot,
		caller:  opts.Caller,
		logger:  opts.Logger,
		heights: make(chan struct{}, 1),
	}

	if b.store != nil {
		loadCtx, cancel := context.WithTimeout(ctx, storeTimeout)
		defer cancel()
		state, ok, err := b.store.Load(loadCtx, b.slot)
		switch {
		case err != nil:
			b.logger.Warn("Failed to load widget state", "slot", b.slot, "error", err)
		case ok:
			b.state = state
		}
	}
	return b
}

func (b *HostBridge) ToolInput() (*widget.ToolInput, bool) {
	return b.input, b.input != nil
}

// ToolOutput is never available; the terminal host starts without a report.
func (b *HostBridge) ToolOutput() (*tokens.CostReport, bool) {
	return nil, false
}

func (b *HostBridge) WidgetState() (*widget.PersistedState, bool) {
	return b.state, b.state != nil
}

// SetWidgetState writes state to the store. Failures are logged only.
func (b *HostBridge) SetWidgetState(state widget.FormState) {
	if b.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := b.store.Save(ctx, b.slot, state); err != nil {
		b.logger.Warn("Failed to save widget state", "slot", b.slot, "error", err)
	}
}

// NotifyIntrinsicHeight queues a relayout. Hints coalesce while one is
// pending.
func (b *HostBridge) NotifyIntrinsicHeight() {
	select {
	case b.heights <- struct{}{}:
	default:
	}
}

// Heights delivers relayout hints
func (b *HostBridge) Heights() <-chan struct{} {
	return b.heights
}

func (b *HostBridge) CallTool(ctx context.Context, name string, args widget.ToolArgs) (*widget.ToolResult, error) {
	if b.caller == nil {
		return nil, ErrNoToolServer
	}
	return b.caller.CallTool(ctx, name, args)
}
