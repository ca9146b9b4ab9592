// Package wizard hosts a wizard run in a BubbleTea program.
package wizard

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/stepwise/internal/logger"
	"github.com/mark3labs/stepwise/internal/page"
	engine "github.com/mark3labs/stepwise/internal/wizard"
)

var log = logger.Named("tui")

// Model is the BubbleTea model driving one wizard run. All navigation goes
// through the engine; the model only renders and forwards input.
type Model struct {
	wiz     *engine.Wizard
	profile colorprofile.Profile

	dialog     *page.Root // Cancel confirmation, nil to cancel immediately
	confirming bool

	pageID     page.ID
	root       page.Root
	body       viewport.Model
	form       *form
	summary    string
	message    string   // Failure message of the last rejected forward move
	advisories []string // Non-blocking hints of the current page
	err        error    // Last hook error

	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithCancelDialog asks for confirmation, showing root, before cancelling
// from the first page.
func WithCancelDialog(root page.Root) Option {
	return func(m *Model) {
		m.dialog = &root
	}
}

// WithProfile sets the color profile used for syntax highlighting.
func WithProfile(p colorprofile.Profile) Option {
	return func(m *Model) {
		m.profile = p
	}
}

// New creates a model for a started wizard.
func New(w *engine.Wizard, opts ...Option) *Model {
	m := &Model{
		wiz:     w,
		profile: colorprofile.Detect(os.Stdout, os.Environ()),
		width:   100,
		height:  30,
		body: viewport.New(
			viewport.WithWidth(60),
			viewport.WithHeight(8),
		),
	}
	for _, opt := range opts {
		opt(m)
	}
	w.Subscribe(m.onEvent)
	m.syncPage()
	return m
}

// Run runs the model in a terminal program until the wizard reaches a
// terminal state. The returned error is the last hook error, if any.
func Run(w *engine.Wizard, opts ...Option) error {
	m := New(w, opts...)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}
	fm, ok := final.(*Model)
	if !ok {
		return errors.New("unexpected model type")
	}
	return fm.err
}

func (m *Model) onEvent(ev engine.Event) {
	log.Debug("event %s on %s", ev.Type, ev.Page)
	switch ev.Type {
	case engine.EventValidationFailed:
		m.message = ev.Message
	case engine.EventAdvanced, engine.EventRetreated, engine.EventStarted:
		m.message = ""
	}
}

// syncPage rebuilds the page view when the current page changed.
func (m *Model) syncPage() {
	id, ctrl, ok := m.wiz.Current()
	if !ok || id == m.pageID {
		return
	}
	m.pageID = id
	m.root, _ = m.wiz.Loader().Root(id)
	m.body.SetContent(m.root.Body)
	m.body.GotoTop()
	m.advisories = nil

	m.form = nil
	if ed, ok := ctrl.(page.FieldEditor); ok {
		m.form = newForm(ed, m.contentWidth())
	}
	m.summary = ""
	if s, ok := ctrl.(page.Summarizer); ok {
		m.summary = highlightYAML(s.Summary(), m.profile)
	}
	m.updateSize()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.form != nil {
		return m.form.Focus()
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSize()
		return m, nil

	case tea.KeyPressMsg:
		if m.confirming {
			return m, m.updateDialog(msg)
		}

		switch msg.String() {
		case "ctrl+c":
			return m, m.cancel()
		case "esc":
			if m.wiz.Actions().Previous {
				return m, m.previous()
			}
			if m.dialog != nil {
				m.confirming = true
				return m, nil
			}
			return m, m.cancel()
		case "enter":
			return m, m.forward()
		case "tab":
			return m, m.form.Move(1)
		case "shift+tab":
			return m, m.form.Move(-1)
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.body, cmd = m.body.Update(msg)
			return m, cmd
		}
	}

	if m.form != nil {
		cmd := m.form.Update(msg)
		m.advisories = m.currentAdvisories()
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateDialog(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "y", "enter", "ctrl+c":
		m.confirming = false
		return m.cancel()
	case "n", "esc":
		m.confirming = false
	}
	return nil
}

func (m *Model) forward() tea.Cmd {
	var (
		res engine.Result
		err error
	)
	if m.wiz.Actions().Forward() == engine.ActionFinish {
		res, err = m.wiz.Finish()
	} else {
		res, err = m.wiz.Next()
	}
	m.err = err
	if err != nil {
		log.Warn("forward: %v", err)
	}
	m.advisories = res.Advisories
	if m.wiz.State().Terminal() {
		return tea.Quit
	}
	if res.Advanced {
		m.syncPage()
		return m.Init()
	}
	return nil
}

func (m *Model) previous() tea.Cmd {
	m.err = m.wiz.Previous()
	if m.err != nil {
		log.Warn("previous: %v", m.err)
	}
	m.syncPage()
	return m.Init()
}

func (m *Model) cancel() tea.Cmd {
	if err := m.wiz.Cancel(); err != nil {
		m.err = err
		log.Warn("cancel: %v", err)
	}
	return tea.Quit
}

func (m *Model) currentAdvisories() []string {
	_, ctrl, ok := m.wiz.Current()
	if !ok {
		return nil
	}
	if a, ok := ctrl.(page.Advisor); ok {
		return a.Advisories()
	}
	return nil
}

func (m *Model) contentWidth() int {
	w := m.width - 10
	if w < 40 {
		w = 40
	}
	if w > 96 {
		w = 96
	}
	return w
}

func (m *Model) updateSize() {
	w := m.contentWidth()
	m.body.SetWidth(w - 4)
	h := m.height - 20
	if m.form != nil {
		h -= 2 * len(m.form.fields)
	}
	if h < 3 {
		h = 3
	}
	m.body.SetHeight(min(h, lipgloss.Height(m.root.Body)))
	if m.form != nil {
		m.form.SetWidth(w - 4)
	}
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(m.Render()).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// Render returns the screen as a string, centered in the window.
func (m *Model) Render() string {
	content := m.renderModal()
	if m.confirming {
		content = m.renderDialog()
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderModal() string {
	width := m.contentWidth()
	title := fmt.Sprintf("Step %d of %d: %s", m.wiz.Index()+1, m.wiz.Len(), m.root.Title)

	sections := []string{styleModalTitle.Width(width - 4).Render(title), "", m.body.View()}

	if m.form != nil {
		sections = append(sections, "", m.form.View())
	}
	if m.summary != "" {
		sections = append(sections, "", m.summary)
	}
	if m.message != "" {
		sections = append(sections, "", styleFailure.Render(m.message))
	}
	for _, a := range m.advisories {
		sections = append(sections, styleAdvisory.Render("! "+a))
	}
	if m.err != nil {
		sections = append(sections, "", styleFailure.Render("Error: "+m.err.Error()))
	}

	bar := NewButtonBar(ButtonsFor(m.wiz.Actions()))
	bar.SetWidth(width - 4)
	sections = append(sections, "", bar.Render(), "", m.hints())

	return styleModalContainer.Width(width).Render(strings.Join(sections, "\n"))
}

func (m *Model) hints() string {
	actions := m.wiz.Actions()
	pairs := []string{"enter", strings.ToLower(string(actions.Forward()))}
	if actions.Previous {
		pairs = append(pairs, "esc", "back")
	} else {
		pairs = append(pairs, "esc", "cancel")
	}
	if m.form != nil && len(m.form.fields) > 1 {
		pairs = append(pairs, "tab", "next field")
	}
	pairs = append(pairs, "ctrl+c", "quit")
	return renderHintBar(pairs...)
}

// State returns the wizard's run state.
func (m *Model) State() engine.State {
	return m.wiz.State()
}

// Confirming reports whether the cancel dialog is open.
func (m *Model) Confirming() bool {
	return m.confirming
}
