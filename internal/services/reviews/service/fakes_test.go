package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"critiq/internal/adapters/analyze"
	"critiq/internal/modkit/repokit"
	perr "critiq/internal/platform/errors"
	"critiq/internal/platform/store"
	"critiq/internal/services/reviews/domain"
	"critiq/internal/services/reviews/repo"
)

// fakeTx satisfies repokit.TxRunner; Tx runs fn against itself so
// transactional paths exercise the same in-memory repo
type fakeTx struct{}

func (fakeTx) Exec(context.Context, string, ...any) (repokit.CommandTag, error) { return nil, nil }
func (fakeTx) Query(context.Context, string, ...any) (repokit.Rows, error)     { return nil, nil }
func (fakeTx) QueryRow(context.Context, string, ...any) repokit.Row            { return nil }
func (t fakeTx) Tx(ctx context.Context, fn func(q repokit.Queryer) error) error {
	return fn(t)
}

// fakeRepo is an in-memory Repo with error injection per method
type fakeRepo struct {
	mu    sync.Mutex
	subs  map[string]domain.Submission
	revs  map[string]domain.Review
	calls []string

	getErr     error
	insertErr  error
	listSubs   []domain.Submission
	listRevs   map[string]domain.Review
	listTotal  int
	listErr    error
	lastListIn domain.ListInput
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		subs: map[string]domain.Submission{},
		revs: map[string]domain.Review{},
	}
}

func (f *fakeRepo) binder() repokit.Binder[repo.Repo] {
	return repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return f })
}

func (f *fakeRepo) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeRepo) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeRepo) InsertSubmission(_ context.Context, sub domain.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("insert_submission")
	if f.insertErr != nil {
		return f.insertErr
	}
	f.subs[sub.ID] = sub
	return nil
}

func (f *fakeRepo) GetSubmission(_ context.Context, id string) (domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.Submission{}, f.getErr
	}
	sub, ok := f.subs[id]
	if !ok {
		return domain.Submission{}, perr.NotFoundf("submission %s", id)
	}
	return sub, nil
}

func (f *fakeRepo) SetInProgress(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("set_in_progress")
	sub := f.subs[id]
	sub.Status = domain.StatusInProgress
	f.subs[id] = sub
	return nil
}

func (f *fakeRepo) SetCompleted(_ context.Context, id, reviewID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("set_completed")
	sub := f.subs[id]
	sub.Status = domain.StatusCompleted
	sub.ReviewID = &reviewID
	f.subs[id] = sub
	return nil
}

func (f *fakeRepo) SetFailed(_ context.Context, id, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("set_failed")
	sub := f.subs[id]
	sub.Status = domain.StatusFailed
	sub.Error = &errMsg
	f.subs[id] = sub
	return nil
}

func (f *fakeRepo) InsertReview(_ context.Context, rev domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("insert_review")
	f.revs[rev.ID] = rev
	return nil
}

func (f *fakeRepo) GetReview(_ context.Context, id string) (domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rev, ok := f.revs[id]
	if !ok {
		return domain.Review{}, perr.NotFoundf("review %s", id)
	}
	return rev, nil
}

func (f *fakeRepo) List(
	_ context.Context, in domain.ListInput,
) ([]domain.Submission, map[string]domain.Review, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastListIn = in
	if f.listErr != nil {
		return nil, nil, 0, f.listErr
	}
	return f.listSubs, f.listRevs, f.listTotal, nil
}

func (f *fakeRepo) submission(id string) domain.Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[id]
}

func (f *fakeRepo) reviewCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.revs)
}

// fakeKV backs the gate and dedup cache in pipeline tests
type fakeKV struct {
	mu      sync.Mutex
	vals    map[string]string
	counts  map[string]int64
	failing bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{vals: map[string]string{}, counts: map[string]int64{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return "", false, errors.New("kv down")
	}
	v, ok := f.vals[key]
	return v, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key, val string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("kv down")
	}
	f.vals[key] = val
	return nil
}

func (f *fakeKV) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return 0, errors.New("kv down")
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeKV) Expire(context.Context, string, time.Duration) error { return nil }

func (f *fakeKV) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.vals[key]
	return ok
}

// fakeQueue is an in-memory job list
type fakeQueue struct {
	mu         sync.Mutex
	jobs       [][]byte
	enqueueErr error
}

func (f *fakeQueue) Enqueue(_ context.Context, _ string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.jobs = append(f.jobs, payload)
	return nil
}

func (f *fakeQueue) Dequeue(
	ctx context.Context, _ string, wait time.Duration,
) ([]byte, bool, error) {
	f.mu.Lock()
	if len(f.jobs) > 0 {
		job := f.jobs[0]
		f.jobs = f.jobs[1:]
		f.mu.Unlock()
		return job, true, nil
	}
	f.mu.Unlock()
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
	return nil, false, nil
}

func (f *fakeQueue) depth() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

// fakeBus records publishes and hands out manually fed subscriptions
type fakeBus struct {
	mu      sync.Mutex
	events  []domain.StatusEvent
	topics  []string
	pubErr  error
	subErr  error
	lastSub *fakeSub
}

func (f *fakeBus) Publish(_ context.Context, topic string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pubErr != nil {
		return f.pubErr
	}
	var ev domain.StatusEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return err
	}
	f.events = append(f.events, ev)
	f.topics = append(f.topics, topic)
	return nil
}

func (f *fakeBus) Subscribe(_ context.Context, _ string) (store.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subErr != nil {
		return nil, f.subErr
	}
	f.lastSub = &fakeSub{ch: make(chan []byte, 8)}
	return f.lastSub, nil
}

// waitSub blocks until the streamer's subscription is open
func (f *fakeBus) waitSub(t *testing.T) *fakeSub {
	t.Helper()
	for i := 0; i < 400; i++ {
		f.mu.Lock()
		s := f.lastSub
		f.mu.Unlock()
		if s != nil {
			return s
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("subscription never opened")
	return nil
}

func (f *fakeBus) published() []domain.StatusEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.StatusEvent, len(f.events))
	copy(out, f.events)
	return out
}

type fakeSub struct {
	ch     chan []byte
	closed bool
	mu     sync.Mutex
}

func (f *fakeSub) C() <-chan []byte { return f.ch }

func (f *fakeSub) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSub) emit(ev domain.StatusEvent) {
	raw, _ := json.Marshal(ev)
	f.ch <- raw
}

// fakeAnalyzer returns a canned result or error
type fakeAnalyzer struct {
	result analyze.Result
	err    error
	mu     sync.Mutex
	calls  int
}

func (f *fakeAnalyzer) Review(context.Context, string, string) (analyze.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return analyze.Result{}, f.err
	}
	return f.result, nil
}
