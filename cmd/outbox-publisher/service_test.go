package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/raedalotaibi/mashary-backend/pkg/config"
	"github.com/raedalotaibi/mashary-backend/pkg/db/models"
	"github.com/raedalotaibi/mashary-backend/pkg/enums"
	"github.com/raedalotaibi/mashary-backend/pkg/logger"
	"github.com/raedalotaibi/mashary-backend/pkg/outbox"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(context.Context) error { return f.err }

type fakePubSub struct {
	err error
}

func (f *fakePubSub) Ping(context.Context) error            { return f.err }
func (f *fakePubSub) DomainPublisher() *gcppubsub.Publisher { return nil }

type fakeRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	fetchErr  error
	markErr   error
}

func (f *fakeRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []models.OutboxEvent
	for _, event := range f.events {
		if event.PublishedAt != nil || event.AttemptCount >= maxAttempts {
			continue
		}
		out = append(out, event)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkPublished(id uuid.UUID) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.published = append(f.published, id)
	now := time.Now()
	for i := range f.events {
		if f.events[i].ID == id {
			f.events[i].PublishedAt = &now
		}
	}
	return nil
}

func (f *fakeRepo) MarkFailed(id uuid.UUID, err error) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.failed = append(f.failed, id)
	for i := range f.events {
		if f.events[i].ID == id {
			f.events[i].AttemptCount++
			msg := err.Error()
			f.events[i].LastError = &msg
		}
	}
	return nil
}

type fakeResult struct {
	err error
}

func (r *fakeResult) Get(context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "server-id", nil
}

type fakePublisher struct {
	err  error
	msgs []*gcppubsub.Message
}

func (p *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	p.msgs = append(p.msgs, msg)
	return &fakeResult{err: p.err}
}

func testOutboxEvent(t *testing.T, envelopeEventID string) models.OutboxEvent {
	t.Helper()
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    envelopeEventID,
		OccurredAt: time.Now(),
		Data:       json.RawMessage(`{"projectId":"` + uuid.NewString() + `"}`),
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventProjectUpdated,
		AggregateType: enums.AggregateProject,
		AggregateID:   uuid.New(),
		Payload:       payload,
		CreatedAt:     time.Now(),
	}
}

func testService(t *testing.T, repo *fakeRepo, pub *fakePublisher) *Service {
	t.Helper()
	cfg := &config.Config{}
	cfg.Outbox.BatchSize = 10
	cfg.Outbox.PollIntervalMS = 10
	cfg.Outbox.MaxAttempts = 3

	svc, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logger.New(logger.Options{ServiceName: "outbox-test", Output: io.Discard}),
		DB:         &fakePinger{},
		PubSub:     &fakePubSub{},
		Repository: repo,
		Publisher:  pub,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	first := testOutboxEvent(t, "evt-1")
	second := testOutboxEvent(t, "evt-2")
	repo := &fakeRepo{events: []models.OutboxEvent{first, second}}
	pub := &fakePublisher{}

	processed, err := testService(t, repo, pub).processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to be processed")
	}
	if len(repo.published) != 2 {
		t.Fatalf("published = %d, want 2", len(repo.published))
	}
	if len(pub.msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(pub.msgs))
	}

	attrs := pub.msgs[0].Attributes
	if attrs["event_id"] != "evt-1" {
		t.Fatalf("event_id attribute = %q", attrs["event_id"])
	}
	if attrs["event_type"] != string(enums.EventProjectUpdated) {
		t.Fatalf("event_type attribute = %q", attrs["event_type"])
	}
	if attrs["aggregate_id"] != first.AggregateID.String() {
		t.Fatalf("aggregate_id attribute = %q", attrs["aggregate_id"])
	}
}

func TestProcessBatchMarksFailedOnPublishError(t *testing.T) {
	event := testOutboxEvent(t, "evt-bad")
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{err: errors.New("topic unavailable")}

	processed, err := testService(t, repo, pub).processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to be processed")
	}
	if len(repo.published) != 0 {
		t.Fatalf("published = %d, want 0", len(repo.published))
	}
	if len(repo.failed) != 1 || repo.failed[0] != event.ID {
		t.Fatalf("failed = %v", repo.failed)
	}
}

func TestProcessBatchStopsRetryingAfterMaxAttempts(t *testing.T) {
	event := testOutboxEvent(t, "evt-stuck")
	event.AttemptCount = 3
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{}

	processed, err := testService(t, repo, pub).processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if processed {
		t.Fatal("exhausted event should not be fetched")
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("messages = %d, want 0", len(pub.msgs))
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo := &fakeRepo{}
	svc := testService(t, repo, &fakePublisher{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := svc.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run err = %v, want context.Canceled", err)
	}
}

func TestNextBackoffDoublesAndCaps(t *testing.T) {
	base := 500 * time.Millisecond
	backoff := nextBackoff(base, base, maxBackoff)
	if backoff != time.Second {
		t.Fatalf("backoff = %v, want 1s", backoff)
	}
	for i := 0; i < 10; i++ {
		backoff = nextBackoff(backoff, base, maxBackoff)
	}
	if backoff != maxBackoff {
		t.Fatalf("backoff = %v, want cap %v", backoff, maxBackoff)
	}
}
