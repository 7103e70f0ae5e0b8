package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/common-creation/tokencounter/internal/models"
	"github.com/common-creation/tokencounter/internal/styles"
	"github.com/common-creation/tokencounter/internal/widget"
)

type field int

const (
	fieldPrompt field = iota
	fieldResponse
	fieldCount
)

type (
	// recomputedMsg is sent when a recompute call returns
	recomputedMsg struct{}

	// heightMsg is sent when the controller hints that the layout may have
	// changed
	heightMsg struct{}
)

// Model is the bubbletea model of the terminal widget host
type Model struct {
	ctx     context.Context
	ctrl    *widget.Controller
	heights <-chan struct{}

	keys    KeyMap
	base    styles.Styles
	styles  styles.Styles
	help    help.Model
	spinner spinner.Model

	prompt   textarea.Model
	response textarea.Model
	focus    field
	table    table.Model
	inflight int

	width  int
	height int
}

// ModelOptions contains options for creating a new Model
type ModelOptions struct {
	Context    context.Context
	Controller *widget.Controller
	// Heights delivers relayout hints from the host bridge. Optional.
	Heights <-chan struct{}
	Styles  styles.Styles
}

// NewModel creates a model showing the controller's current form and report
func NewModel(opts ModelOptions) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	prompt := newTextarea("Paste a prompt…", 5)
	response := newTextarea("Optional model response…", 3)

	form := opts.Controller.Form()
	prompt.SetValue(form.Prompt)
	response.SetValue(form.Response)
	prompt.Focus()

	h := help.New()
	h.Styles.ShortKey = opts.Styles.HelpKey
	h.Styles.ShortDesc = opts.Styles.HelpDesc
	h.Styles.FullKey = opts.Styles.HelpKey
	h.Styles.FullDesc = opts.Styles.HelpDesc

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = opts.Styles.StatusLoading

	tbl := table.New(
		table.WithColumns(tableColumns(80)),
		table.WithFocused(false),
		table.WithHeight(len(models.Supported)+1),
	)
	tblStyles := table.DefaultStyles()
	tblStyles.Header = opts.Styles.TableHeader
	tblStyles.Cell = opts.Styles.TableCell
	tblStyles.Selected = opts.Styles.TableCell
	tbl.SetStyles(tblStyles)

	m := Model{
		ctx:      opts.Context,
		ctrl:     opts.Controller,
		heights:  opts.Heights,
		keys:     DefaultKeyMap(),
		base:     opts.Styles,
		styles:   opts.Styles,
		help:     h,
		spinner:  sp,
		prompt:   prompt,
		response: response,
		table:    tbl,
		width:    80,
	}
	m.refreshTable()
	return m
}

func newTextarea(placeholder string, height int) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(height)
	return ta
}

func tableColumns(width int) []table.Column {
	labelWidth := width - 34
	if labelWidth < 14 {
		labelWidth = 14
	}
	return []table.Column{
		{Title: "Model", Width: labelWidth},
		{Title: "Tokens", Width: 12},
		{Title: "Cost (" + widget.CurrencySymbol + ")", Width: 14},
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForHeight(m.heights))
}

func waitForHeight(heights <-chan struct{}) tea.Cmd {
	if heights == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-heights; !ok {
			return nil
		}
		return heightMsg{}
	}
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case heightMsg:
		m.layout()
		return m, waitForHeight(m.heights)

	case recomputedMsg:
		if m.inflight > 0 {
			m.inflight--
		}
		m.refreshTable()
		return m, nil

	case spinner.TickMsg:
		if m.inflight == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.NextField):
			return m, m.setFocus((m.focus + 1) % fieldCount)
		case key.Matches(msg, m.keys.PrevField):
			return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		case key.Matches(msg, m.keys.NextModel):
			_ = m.ctrl.SetModel(models.Next(m.ctrl.Form().Model))
			return m, nil
		case key.Matches(msg, m.keys.Recompute):
			m.inflight++
			return m, tea.Batch(m.recompute(), m.spinner.Tick)
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldPrompt:
		m.prompt, cmd = m.prompt.Update(msg)
		m.ctrl.SetPrompt(m.prompt.Value())
	case fieldResponse:
		m.response, cmd = m.response.Update(msg)
		m.ctrl.SetResponse(m.response.Value())
	}
	return m, cmd
}

func (m *Model) setFocus(f field) tea.Cmd {
	m.focus = f
	if f == fieldPrompt {
		m.response.Blur()
		return m.prompt.Focus()
	}
	m.prompt.Blur()
	return m.response.Focus()
}

func (m Model) recompute() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		ctrl.Recompute(ctx)
		return recomputedMsg{}
	}
}

func (m *Model) layout() {
	inner := m.width - 4
	if inner < 20 {
		inner = 20
	}
	m.prompt.SetWidth(inner)
	m.response.SetWidth(inner)
	m.table.SetColumns(tableColumns(inner))
	m.help.Width = m.width
	m.styles = styles.GetResponsiveStyles(m.base, m.width)
}

func (m *Model) refreshTable() {
	view := m.ctrl.View()
	rows := make([]table.Row, 0, len(view.Rows))
	for _, r := range view.Rows {
		rows = append(rows, table.Row{r.Label, r.Tokens, r.Cost})
	}
	m.table.SetRows(rows)
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Header.Render("Token Counter"))
	b.WriteString("\n")

	b.WriteString(m.styles.Label.Render("Prompt"))
	b.WriteString("\n")
	b.WriteString(m.fieldStyle(fieldPrompt).Render(m.prompt.View()))
	b.WriteString("\n")
	b.WriteString(m.styles.Label.Render("Response"))
	b.WriteString("\n")
	b.WriteString(m.fieldStyle(fieldResponse).Render(m.response.View()))
	b.WriteString("\n")

	b.WriteString(m.renderModels())
	b.WriteString("\n")

	if status := m.renderStatus(); status != "" {
		b.WriteString(status)
		b.WriteString("\n")
	}

	if view := m.ctrl.View(); view.HasReport() {
		b.WriteString(m.styles.Summary.Render("Total tokens: " + view.Total))
		b.WriteString("\n")
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Footer.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) fieldStyle(f field) lipgloss.Style {
	if m.focus == f {
		return m.styles.FieldFocused
	}
	return m.styles.Field
}

func (m Model) renderModels() string {
	current := m.ctrl.Form().Model
	parts := make([]string, 0, len(models.Supported))
	for _, id := range models.Supported {
		style := m.styles.Model
		if id == current {
			style = m.styles.ModelActive
		}
		parts = append(parts, style.Render(id.Label()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderStatus() string {
	if m.inflight > 0 {
		return m.styles.StatusLoading.Render(m.spinner.View() + " Counting tokens…")
	}
	if err := m.ctrl.LastError(); err != nil {
		return m.styles.StatusError.Render("Error: " + err.Error())
	}
	return ""
}

// Form returns the controller's form state
func (m Model) Form() widget.FormState {
	return m.ctrl.Form()
}

// Focused returns the index of the focused text field
func (m Model) Focused() int {
	return int(m.focus)
}
