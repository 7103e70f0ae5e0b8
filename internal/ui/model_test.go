package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/common-creation/tokencounter/internal/models"
	"github.com/common-creation/tokencounter/internal/styles"
	"github.com/common-creation/tokencounter/internal/tokens"
	"github.com/common-creation/tokencounter/internal/widget"
)

func newTestModel(t *testing.T, caller widget.ToolCaller) Model {
	t.Helper()
	b := NewHostBridge(context.Background(), BridgeOptions{Caller: caller})
	ctrl := widget.New(b)
	return NewModel(ModelOptions{
		Controller: ctrl,
		Heights:    b.Heights(),
		Styles:     styles.GetTheme("default").GetStyles(),
	})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestTypingUpdatesFocusedField(t *testing.T) {
	m := newTestModel(t, nil)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hello")})
	assert.Equal(t, "hello", m.Form().Prompt)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, int(fieldResponse), m.Focused())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("world")})
	assert.Equal(t, "hello", m.Form().Prompt)
	assert.Equal(t, "world", m.Form().Response)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, int(fieldPrompt), m.Focused())
}

func TestNextModelCycles(t *testing.T) {
	m := newTestModel(t, nil)
	require.Equal(t, models.Fallback, m.Form().Model)

	ctrlN := tea.KeyMsg{Type: tea.KeyCtrlN}
	for _, want := range []models.ID{models.GPT4o, models.GPT4Dot1Mini, models.GPT4oMini} {
		m, _ = update(t, m, ctrlN)
		assert.Equal(t, want, m.Form().Model)
	}
}

func TestRecomputeFillsTable(t *testing.T) {
	caller := new(MockCaller)
	report := &tokens.CostReport{
		PromptTokens: 1234,
		TotalTokens:  1234,
		DefaultModel: models.GPT4oMini,
		Costs: map[models.ID]tokens.PerModelCost{
			models.GPT4o:     {TotalTokens: 1234, EstimatedCostUSD: 0.00617},
			models.GPT4oMini: {TotalTokens: 1234, EstimatedCostUSD: 0.000185},
		},
	}
	caller.On("CallTool", widget.ToolName, mock.Anything).Return(&widget.ToolResult{ToolOutput: report}, nil)

	m := newTestModel(t, caller)
	assert.NotContains(t, m.View(), "Total tokens")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Counting tokens")

	m, _ = update(t, m, m.recompute()())

	view := m.View()
	assert.NotContains(t, view, "Counting tokens")
	assert.Contains(t, view, "Total tokens: 1,234")
	assert.Contains(t, view, "GPT-4o Mini")
	assert.Contains(t, view, "0.00017")
	assert.Contains(t, view, "0.00568")

	rows := m.table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "GPT-4o Mini", rows[0][0])
	assert.Equal(t, "GPT-4o", rows[1][0])
}

func TestRecomputeErrorIsShown(t *testing.T) {
	caller := new(MockCaller)
	caller.On("CallTool", widget.ToolName, mock.Anything).Return(nil, errors.New("server down"))

	m := newTestModel(t, caller)
	m, _ = update(t, m, m.recompute()())

	assert.Contains(t, m.View(), "server down")
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t, nil)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestWindowResize(t *testing.T) {
	m := newTestModel(t, nil)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 82, m.table.Columns()[0].Width)
	assert.Equal(t, 120, m.help.Width)
}

func TestHeightHintRelayouts(t *testing.T) {
	m := newTestModel(t, nil)

	cmd := waitForHeight(m.heights)
	require.NotNil(t, cmd)
	assert.Equal(t, heightMsg{}, cmd())

	_, next := update(t, m, heightMsg{})
	assert.NotNil(t, next)
	assert.Nil(t, waitForHeight(nil))
}
