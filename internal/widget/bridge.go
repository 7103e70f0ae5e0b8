package widget

import (
	"context"

	"github.com/common-creation/tokencounter/internal/models"
	"github.com/common-creation/tokencounter/internal/tokens"
)

// ToolName is the remote tool the widget asks to recompute its report.
const ToolName = "token_counter"

// FormState holds the three user editable fields.
type FormState struct {
	Prompt   string    `json:"prompt"`
	Response string    `json:"response"`
	Model    models.ID `json:"model"`
}

// PersistedState is what the host kept from a previous mount. Every field is
// optional; a nil field leaves the corresponding form field untouched.
type PersistedState struct {
	Prompt   *string    `json:"prompt,omitempty"`
	Response *string    `json:"response,omitempty"`
	Model    *models.ID `json:"model,omitempty"`
}

// ToolInput is the argument set the host invoked the tool with, if any.
type ToolInput struct {
	PromptText   *string    `json:"prompt_text,omitempty"`
	ResponseText *string    `json:"response_text,omitempty"`
	Model        *models.ID `json:"model,omitempty"`
}

// ToolArgs is the argument shape sent with a recompute call.
type ToolArgs struct {
	PromptText   string    `json:"prompt_text"`
	ResponseText string    `json:"response_text"`
	Model        models.ID `json:"model"`
}

// ToolResult is what a host returns from CallTool. ToolOutput is nil when the
// call produced no structured output.
type ToolResult struct {
	ToolOutput *tokens.CostReport `json:"toolOutput,omitempty"`
}

// Bridge exposes the values a host injects at mount time. Each accessor
// reports false when the host has nothing to offer.
type Bridge interface {
	ToolInput() (*ToolInput, bool)
	ToolOutput() (*tokens.CostReport, bool)
	WidgetState() (*PersistedState, bool)
}

// StateSetter is implemented by hosts that persist widget state across mounts.
// The call is best-effort; its outcome is never observed.
type StateSetter interface {
	SetWidgetState(state FormState)
}

// HeightNotifier is implemented by hosts that want a hint whenever the
// widget's rendered height may have changed. Best-effort.
type HeightNotifier interface {
	NotifyIntrinsicHeight()
}

// ToolCaller is implemented by hosts able to invoke remote tools.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, args ToolArgs) (*ToolResult, error)
}

// StaticBridge is a Bridge built from fixed values. Nil fields are absent.
type StaticBridge struct {
	Input  *ToolInput
	Output *tokens.CostReport
	State  *PersistedState
}

func (b StaticBridge) ToolInput() (*ToolInput, bool)          { return b.Input, b.Input != nil }
func (b StaticBridge) ToolOutput() (*tokens.CostReport, bool) { return b.Output, b.Output != nil }
func (b StaticBridge) WidgetState() (*PersistedState, bool)   { return b.State, b.State != nil }

// StringPtr returns a pointer to s, for building optional fields.
func StringPtr(s string) *string { return &s }

// ModelPtr returns a pointer to id, for building optional fields.
func ModelPtr(id models.ID) *models.ID { return &id }
