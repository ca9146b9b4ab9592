package wizard

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/mark3labs/stepwise/internal/pages"
	"github.com/mark3labs/stepwise/internal/tui/testfixtures"
	engine "github.com/mark3labs/stepwise/internal/wizard"
	"github.com/stretchr/testify/require"
)

func newModel(t *testing.T, withDialog bool) *Model {
	t.Helper()
	r := testfixtures.NewResolver(t)
	opts := []Option{WithProfile(colorprofile.Ascii)}
	if withDialog {
		opts = append(opts, WithCancelDialog(testfixtures.CancelDialog(t, r)))
	}
	m := New(testfixtures.StartedRun(t, r), opts...)
	m.Init()
	send(m, testfixtures.Size())
	return m
}

// send feeds messages in order and returns the command of the last one.
func send(m *Model, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func keys(names ...string) []tea.Msg {
	out := make([]tea.Msg, len(names))
	for i, n := range names {
		out[i] = testfixtures.Key(n)
	}
	return out
}

func screen(m *Model) string {
	return testfixtures.Plain(m.Render())
}

func requireQuit(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	require.True(t, ok, "expected quit command")
}

func fillLogin(m *Model, password string) {
	send(m, testfixtures.Type("alice")...)
	send(m, testfixtures.Key("tab"))
	send(m, testfixtures.Type(password)...)
	send(m, keys("tab", "right", "tab", "space")...)
}

func TestModel_FirstPage(t *testing.T) {
	m := newModel(t, true)
	out := screen(m)

	require.Contains(t, out, "Step 1 of 3: Welcome")
	require.Contains(t, out, "Welcome to stepwise")
	require.Contains(t, out, "← Back")
	require.Contains(t, out, "Next")
	require.Contains(t, out, "Cancel")
	require.Contains(t, out, "esc cancel")
}

func TestModel_ValidationMessage(t *testing.T) {
	m := newModel(t, true)
	send(m, testfixtures.Key("enter"))
	require.Contains(t, screen(m), "Step 2 of 3: Sign in")

	cmd := send(m, testfixtures.Key("enter"))
	require.Nil(t, cmd)
	out := screen(m)
	require.Contains(t, out, pages.MsgCredentialsRequired)
	require.Contains(t, out, "Step 2 of 3", "a rejected move stays on the page")
}

func TestModel_CompleteRun(t *testing.T) {
	m := newModel(t, true)
	send(m, testfixtures.Key("enter"))
	fillLogin(m, "hunter2hunter2")

	out := screen(m)
	require.Contains(t, out, "[x] I accept the terms and conditions")
	require.Contains(t, out, "‹ admin ›")
	require.NotContains(t, out, "hunter2hunter2", "passwords are masked")

	send(m, testfixtures.Key("enter"))
	out = screen(m)
	require.Contains(t, out, "Step 3 of 3: All done")
	require.Contains(t, out, "Finish")
	require.Contains(t, out, "username: alice")
	require.Contains(t, out, "role: admin")
	require.Contains(t, out, "enter finish")

	requireQuit(t, send(m, testfixtures.Key("enter")))
	require.Equal(t, engine.StateFinished, m.State())
}

func TestModel_AdvisoryShown(t *testing.T) {
	m := newModel(t, true)
	send(m, testfixtures.Key("enter"))
	fillLogin(m, "short")

	require.Contains(t, screen(m), pages.MsgShortPassword)

	send(m, testfixtures.Key("enter"))
	require.Contains(t, screen(m), "Step 3 of 3", "advisories never block")
}

func TestModel_EscGoesBack(t *testing.T) {
	m := newModel(t, true)
	send(m, testfixtures.Key("enter"))
	send(m, testfixtures.Type("bob")...)

	send(m, testfixtures.Key("esc"))
	require.Contains(t, screen(m), "Step 1 of 3")
	require.False(t, m.Confirming())

	send(m, testfixtures.Key("enter"))
	require.Contains(t, screen(m), "bob", "answers survive going back")
}

func TestModel_CancelDialog(t *testing.T) {
	m := newModel(t, true)

	send(m, testfixtures.Key("esc"))
	require.True(t, m.Confirming())
	require.Contains(t, screen(m), "Cancel setup?")

	send(m, testfixtures.Key("n"))
	require.False(t, m.Confirming())
	require.Equal(t, engine.StateActive, m.State())

	send(m, testfixtures.Key("esc"))
	requireQuit(t, send(m, testfixtures.Key("y")))
	require.Equal(t, engine.StateCancelled, m.State())
}

func TestModel_EscWithoutDialogCancels(t *testing.T) {
	m := newModel(t, false)
	requireQuit(t, send(m, testfixtures.Key("esc")))
	require.Equal(t, engine.StateCancelled, m.State())
}

func TestModel_CtrlCCancels(t *testing.T) {
	m := newModel(t, true)
	send(m, testfixtures.Key("enter"))
	requireQuit(t, send(m, testfixtures.Key("ctrl+c")))
	require.Equal(t, engine.StateCancelled, m.State())
}

func TestModel_View(t *testing.T) {
	m := newModel(t, true)
	v := m.View()
	require.True(t, v.AltScreen)
	require.NotNil(t, v.Content)
}

func TestButtonsFor(t *testing.T) {
	tests := []struct {
		name    string
		actions engine.ActionSet
		want    []Button
	}{
		{
			name:    "first page",
			actions: engine.DeriveActions(0, 3, engine.StateActive),
			want: []Button{
				{Label: "← Back", State: ButtonDisabled},
				{Label: "Next", State: ButtonFocused},
				{Label: "Cancel", State: ButtonNormal},
			},
		},
		{
			name:    "last page",
			actions: engine.DeriveActions(2, 3, engine.StateActive),
			want: []Button{
				{Label: "← Back", State: ButtonNormal},
				{Label: "Finish", State: ButtonFocused},
				{Label: "Cancel", State: ButtonNormal},
			},
		},
		{
			name:    "finished",
			actions: engine.DeriveActions(2, 3, engine.StateFinished),
			want: []Button{
				{Label: "← Back", State: ButtonDisabled},
				{Label: "Next", State: ButtonDisabled},
				{Label: "Cancel", State: ButtonDisabled},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ButtonsFor(tt.actions))
		})
	}
}

func TestHighlightYAML(t *testing.T) {
	src := "username: alice\nterms_accepted: true\n"

	require.Equal(t, "username: alice\nterms_accepted: true", highlightYAML(src, colorprofile.Ascii))
	require.Contains(t, highlightYAML(src, colorprofile.TrueColor), "\x1b[")
}

func TestRenderHintBar(t *testing.T) {
	require.Equal(t, "enter next • esc back", testfixtures.Plain(renderHintBar("enter", "next", "esc", "back")))
	require.Empty(t, renderHintBar("odd"))
}
