package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"critiq/internal/services/reviews/dedup"
	"critiq/internal/services/reviews/domain"
)

func TestTopic(t *testing.T) {
	t.Parallel()

	if got := Topic("abc"); got != "submission:abc:status" {
		t.Fatalf("Topic = %q", got)
	}
}

func TestCompletePersistsCachesAndPublishes(t *testing.T) {
	t.Parallel()

	fr := newFakeRepo()
	sub := pendingSubmission(testID)
	fr.subs[testID] = sub
	kv := newFakeKV()
	bus := &fakeBus{}
	lc := NewLifecycle(fakeTx{}, fr.binder(), dedup.New(kv, 0, ""), bus)

	rev := domain.Review{ID: workerRevID, SubmissionID: testID, Score: 9}
	if err := lc.Complete(context.Background(), sub, rev, time.Now()); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if fr.submission(testID).Status != domain.StatusCompleted {
		t.Fatalf("status = %s", fr.submission(testID).Status)
	}
	if !kv.has("codehash:public:deadbeef") {
		t.Fatalf("fingerprint not cached")
	}
	evs := bus.published()
	if len(evs) != 1 || evs[0].Status != domain.StatusCompleted || evs[0].ReviewID != workerRevID {
		t.Fatalf("published = %+v", evs)
	}
	if len(bus.topics) != 1 || bus.topics[0] != Topic(testID) {
		t.Fatalf("topic = %v", bus.topics)
	}
}

func TestFailPublishesError(t *testing.T) {
	t.Parallel()

	fr := newFakeRepo()
	fr.subs[testID] = pendingSubmission(testID)
	bus := &fakeBus{}
	lc := NewLifecycle(fakeTx{}, fr.binder(), nil, bus)

	if err := lc.Fail(context.Background(), testID, "boom", time.Now()); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	sub := fr.submission(testID)
	if sub.Status != domain.StatusFailed || sub.Error == nil || *sub.Error != "boom" {
		t.Fatalf("submission = %+v", sub)
	}
	evs := bus.published()
	if len(evs) != 1 || evs[0].Status != domain.StatusFailed || evs[0].Error != "boom" {
		t.Fatalf("published = %+v", evs)
	}
}

func TestPublishFailureDoesNotFailTransition(t *testing.T) {
	t.Parallel()

	fr := newFakeRepo()
	sub := pendingSubmission(testID)
	fr.subs[testID] = sub
	bus := &fakeBus{pubErr: errors.New("bus down")}
	lc := NewLifecycle(fakeTx{}, fr.binder(), nil, bus)

	rev := domain.Review{ID: workerRevID, SubmissionID: testID, Score: 4}
	if err := lc.Complete(context.Background(), sub, rev, time.Now()); err != nil {
		t.Fatalf("publish failure must not fail the transition: %v", err)
	}
	if fr.submission(testID).Status != domain.StatusCompleted {
		t.Fatalf("row must still transition, status = %s", fr.submission(testID).Status)
	}
}

func TestNilBusSkipsPublish(t *testing.T) {
	t.Parallel()

	fr := newFakeRepo()
	fr.subs[testID] = pendingSubmission(testID)
	lc := NewLifecycle(fakeTx{}, fr.binder(), nil, nil)

	if err := lc.MarkInProgress(context.Background(), testID); err != nil {
		t.Fatalf("MarkInProgress: %v", err)
	}
	if fr.submission(testID).Status != domain.StatusInProgress {
		t.Fatalf("status = %s", fr.submission(testID).Status)
	}
}

func TestCacheStoreFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	fr := newFakeRepo()
	sub := pendingSubmission(testID)
	fr.subs[testID] = sub
	kv := newFakeKV()
	kv.failing = true
	lc := NewLifecycle(fakeTx{}, fr.binder(), dedup.New(kv, 0, ""), &fakeBus{})

	rev := domain.Review{ID: workerRevID, SubmissionID: testID, Score: 2}
	if err := lc.Complete(context.Background(), sub, rev, time.Now()); err != nil {
		t.Fatalf("cache store failure must not fail the transition: %v", err)
	}
}
