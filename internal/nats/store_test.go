package nats

import (
	"context"
	"testing"

	"github.com/mark3labs/stepwise/internal/wizard"
	"github.com/stretchr/testify/require"
)

func startEmbedded(t *testing.T) *Embedded {
	t.Helper()
	e, err := Start(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestSubjects(t *testing.T) {
	require.Equal(t, "stepwise.r1.>", SubjectForRun("r1"))
	require.Equal(t, "stepwise.r1.advanced", SubjectForEvent("r1", wizard.EventAdvanced))
}

func TestContentBucket_Reopen(t *testing.T) {
	ctx := context.Background()
	e := startEmbedded(t)

	kv, err := ContentBucket(ctx, e.JS)
	require.NoError(t, err)
	_, err = kv.Put(ctx, "welcome", []byte("{}"))
	require.NoError(t, err)

	again, err := ContentBucket(ctx, e.JS)
	require.NoError(t, err)
	entry, err := again.Get(ctx, "welcome")
	require.NoError(t, err)
	require.Equal(t, "{}", string(entry.Value()))
}

func TestJournal_History(t *testing.T) {
	ctx := context.Background()
	e := startEmbedded(t)

	j, err := NewJournal(ctx, e.JS)
	require.NoError(t, err)

	j.Record(wizard.Event{Type: wizard.EventStarted, RunID: "r1", Page: "welcome", Length: 2, State: wizard.StateActive})
	j.Record(wizard.Event{Type: wizard.EventStarted, RunID: "r2", Page: "welcome", Length: 2, State: wizard.StateActive})
	j.Record(wizard.Event{Type: wizard.EventAdvanced, RunID: "r1", From: 0, To: 1, Page: "login", Length: 2, State: wizard.StateActive})
	j.Record(wizard.Event{Type: wizard.EventCancelled, RunID: "r1", From: 1, To: 1, Page: "login", Length: 2, State: wizard.StateCancelled})

	events, err := j.History(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, wizard.EventStarted, events[0].Type)
	require.Equal(t, wizard.EventAdvanced, events[1].Type)
	require.Equal(t, wizard.StateCancelled, events[2].State)
	require.EqualValues(t, "login", events[2].Page)

	other, err := j.History(ctx, "r2")
	require.NoError(t, err)
	require.Len(t, other, 1)
}
