// Package widget keeps the token counter's form fields, the host's persisted
// state slot and the displayed cost report consistent across mount, user
// edits and recompute requests.
package widget

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/common-creation/tokencounter/internal/models"
	"github.com/common-creation/tokencounter/internal/tokens"
)

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the logger used for recompute diagnostics
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLocale sets the locale used to group digits of token counts
func WithLocale(tag language.Tag) Option {
	return func(c *Controller) {
		c.printer = message.NewPrinter(tag)
	}
}

// Controller owns the form state of one widget instance.
//
// Edits and recompute calls may come from different goroutines. Host bridge
// calls are always made without holding the state lock, so a host may call
// back into the controller from SetWidgetState or NotifyIntrinsicHeight.
type Controller struct {
	id      string
	bridge  Bridge
	logger  *log.Logger
	printer *message.Printer

	// persistMu orders persistence writes the same way the edits were applied
	persistMu sync.Mutex

	mu      sync.Mutex
	form    FormState
	initial *tokens.CostReport
	fetched *tokens.CostReport
	issued  uint64
	applied uint64
	pending int
	lastErr error
}

// New mounts a widget against bridge. A nil bridge behaves as a host that
// offers nothing.
//
// Mounting seeds the form from the host's tool input (the model falls back
// to the tool output's default model, then to models.Fallback), seeds the
// displayed report from the tool output, restores any persisted fields once,
// and writes the settled state back to the host.
func New(bridge Bridge, opts ...Option) *Controller {
	c := &Controller{
		id:      uuid.NewString(),
		bridge:  bridge,
		logger:  log.New(io.Discard),
		printer: message.NewPrinter(language.English),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("widget", c.id)

	c.mount()
	c.persist()
	return c
}

func (c *Controller) mount() {
	var input *ToolInput
	var output *tokens.CostReport
	if c.bridge != nil {
		if in, ok := c.bridge.ToolInput(); ok {
			input = in
		}
		if out, ok := c.bridge.ToolOutput(); ok {
			output = out
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.form.Model = models.Fallback
	if output != nil && output.DefaultModel.Known() {
		c.form.Model = output.DefaultModel
	}
	if input != nil {
		if input.PromptText != nil {
			c.form.Prompt = *input.PromptText
		}
		if input.ResponseText != nil {
			c.form.Response = *input.ResponseText
		}
		if input.Model != nil && input.Model.Known() {
			c.form.Model = *input.Model
		}
	}
	c.initial = output.Clone()

	if c.bridge == nil {
		return
	}
	state, ok := c.bridge.WidgetState()
	if !ok || state == nil {
		return
	}
	if state.Prompt != nil {
		c.form.Prompt = *state.Prompt
	}
	if state.Response != nil {
		c.form.Response = *state.Response
	}
	if state.Model != nil {
		if state.Model.Known() {
			c.form.Model = *state.Model
		} else {
			c.logger.Debug("Ignoring persisted model outside the supported set", "model", *state.Model)
		}
	}
}

// ID returns the instance identifier used in log output
func (c *Controller) ID() string {
	return c.id
}

// Form returns a snapshot of the current form state
func (c *Controller) Form() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// SetPrompt replaces the prompt text.
func (c *Controller) SetPrompt(prompt string) {
	c.update(func(f *FormState) { f.Prompt = prompt })
}

// SetResponse replaces the response text.
func (c *Controller) SetResponse(response string) {
	c.update(func(f *FormState) { f.Response = response })
}

// SetModel selects a model. Identifiers outside the supported set are rejected
// and leave the form untouched.
func (c *Controller) SetModel(model models.ID) error {
	if !model.Known() {
		return fmt.Errorf("unsupported model %q", model)
	}
	c.update(func(f *FormState) { f.Model = model })
	return nil
}

// update applies fn and, when the form actually changed, persists the full
// form and sends the height hint.
func (c *Controller) update(fn func(*FormState)) {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	before := c.form
	fn(&c.form)
	changed := c.form != before
	c.mu.Unlock()

	if changed {
		c.persistLocked()
	}
}

func (c *Controller) persist() {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	c.persistLocked()
}

// persistLocked requires persistMu.
func (c *Controller) persistLocked() {
	state := c.Form()
	if setter, ok := c.bridge.(StateSetter); ok {
		setter.SetWidgetState(state)
	}
	if notifier, ok := c.bridge.(HeightNotifier); ok {
		notifier.NotifyIntrinsicHeight()
	}
}

// Recompute asks the host to run the token_counter tool on the current form
// and, on success, replaces the displayed report with the tool output.
//
// Without a ToolCaller capability this is a no-op. A failed call leaves the
// displayed report as it was; the error is logged and kept for LastError.
// When several calls overlap, a response is dropped if a call issued later
// has already been applied.
func (c *Controller) Recompute(ctx context.Context) {
	caller, ok := c.bridge.(ToolCaller)
	if !ok {
		return
	}

	c.mu.Lock()
	c.issued++
	seq := c.issued
	args := ToolArgs{
		PromptText:   c.form.Prompt,
		ResponseText: c.form.Response,
		Model:        c.form.Model,
	}
	c.pending++
	c.mu.Unlock()

	c.logger.Debug("Recompute started", "seq", seq, "model", args.Model)
	result, err := caller.CallTool(ctx, ToolName, args)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending--

	if err != nil {
		if seq < c.applied {
			c.logger.Debug("Dropping stale recompute error", "seq", seq, "applied", c.applied, "error", err)
			return
		}
		c.lastErr = err
		c.logger.Warn("Recompute failed, keeping previous report", "seq", seq, "error", err)
		return
	}
	if result == nil || result.ToolOutput == nil {
		c.logger.Debug("Recompute returned no tool output", "seq", seq)
		return
	}
	if seq < c.applied {
		c.logger.Debug("Dropping stale recompute result", "seq", seq, "applied", c.applied)
		return
	}

	c.applied = seq
	c.fetched = result.ToolOutput.Clone()
	c.lastErr = nil
	c.logger.Debug("Recompute applied", "seq", seq, "total_tokens", c.fetched.TotalTokens)
}

// Report returns the report to display: the last fetched report if any,
// otherwise the one supplied at mount. Nil when neither exists.
func (c *Controller) Report() *tokens.CostReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetched != nil {
		return c.fetched.Clone()
	}
	return c.initial.Clone()
}

// View derives the summary and comparison rows for the displayed report.
func (c *Controller) View() View {
	return BuildView(c.Report(), c.printer)
}

// Pending returns the number of recompute calls in flight.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Recomputing reports whether any recompute call is in flight.
func (c *Controller) Recomputing() bool {
	return c.Pending() > 0
}

// LastError returns the error of the most recent failed recompute, cleared
// by the next applied result. Failures of calls older than the applied
// result are not recorded.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
