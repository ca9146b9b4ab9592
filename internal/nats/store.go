package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/stepwise/internal/wizard"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// ContentBucketName holds rendered page content keyed by page ID.
	ContentBucketName = "stepwise_pages"

	streamName = "stepwise_events"
)

// ContentBucket creates or opens the page content bucket.
func ContentBucket(ctx context.Context, js jetstream.JetStream) (jetstream.KeyValue, error) {
	kv, err := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      ContentBucketName,
		Description: "rendered wizard page content",
		Storage:     jetstream.FileStorage,
	})
	if errors.Is(err, jetstream.ErrBucketExists) {
		return js.KeyValue(ctx, ContentBucketName)
	}
	return kv, err
}

// SubjectForRun returns the wildcard subject for every event of a run.
// Example: "stepwise.4f1c....>"
func SubjectForRun(runID string) string {
	return fmt.Sprintf("stepwise.%s.>", runID)
}

// SubjectForEvent returns the subject of one event type in a run.
// Example: "stepwise.4f1c....advanced"
func SubjectForEvent(runID string, t wizard.EventType) string {
	return fmt.Sprintf("stepwise.%s.%s", runID, t)
}

// SetupStream creates or updates the event journal stream with 30-day
// retention.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"stepwise.>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   30 * 24 * time.Hour,
	})
}

// Journal records wizard events to the event stream.
type Journal struct {
	js     jetstream.JetStream
	stream jetstream.Stream
}

// NewJournal sets up the stream and returns a journal over it.
func NewJournal(ctx context.Context, js jetstream.JetStream) (*Journal, error) {
	stream, err := SetupStream(ctx, js)
	if err != nil {
		return nil, fmt.Errorf("setting up event stream: %w", err)
	}
	return &Journal{js: js, stream: stream}, nil
}

// Record publishes one event. Publish failures are logged; a run never
// fails because its journal is unavailable.
func (j *Journal) Record(ev wizard.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Warn("encoding event: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := j.js.Publish(ctx, SubjectForEvent(ev.RunID, ev.Type), data); err != nil {
		log.Warn("publishing %s event: %v", ev.Type, err)
	}
}

// History returns every recorded event of a run, oldest first. Malformed
// records are skipped.
func (j *Journal) History(ctx context.Context, runID string) ([]wizard.Event, error) {
	consumer, err := j.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: SubjectForRun(runID),
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("creating consumer: %w", err)
	}

	const batchSize = 1000
	var events []wizard.Event
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		n := 0
		for msg := range msgs.Messages() {
			n++
			var ev wizard.Event
			if err := json.Unmarshal(msg.Data(), &ev); err != nil {
				meta, _ := msg.Metadata()
				log.Warn("skipping malformed event (seq=%d): %v", meta.Sequence.Stream, err)
				_ = msg.Ack()
				continue
			}
			events = append(events, ev)
			_ = msg.Ack()
		}
		if n == 0 {
			break
		}
	}
	return events, nil
}
