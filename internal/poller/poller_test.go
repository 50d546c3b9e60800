package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hwbot/internal/fault"
	"hwbot/internal/homework"
	logx "hwbot/pkg/logx"
)

// scriptSource replays one step per Fetch call.
type scriptSource struct {
	steps   []func(cursor int64) (any, error)
	cursors []int64
}

func (s *scriptSource) Fetch(ctx context.Context, cursor int64) (any, error) {
	s.cursors = append(s.cursors, cursor)
	i := len(s.cursors) - 1
	if i >= len(s.steps) {
		return nil, errors.New("script exhausted")
	}
	return s.steps[i](cursor)
}

func body(raw string) func(int64) (any, error) {
	return func(int64) (any, error) {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			panic(err)
		}
		return v, nil
	}
}

func fail(err error) func(int64) (any, error) {
	return func(int64) (any, error) { return nil, err }
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Notify(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}

func acceptAll() *mockSink {
	s := &mockSink{}
	s.On("Notify", mock.Anything, mock.Anything).Return(nil)
	return s
}

func newPoller(src Source, sink Sink, cfg Config) (*Poller, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(cfg, src, sink, logx.NewTo(&buf, "debug")), &buf
}

func TestApprovedSubmissionIsRelayedAndCursorAdvances(t *testing.T) {
	src := &scriptSource{steps: []func(int64) (any, error){
		body(`{"homeworks": [{"homework_name": "hw1", "status": "approved"}], "current_date": 1000}`),
	}}
	sink := &mockSink{}
	sink.On("Notify", mock.Anything, mock.MatchedBy(func(s string) bool {
		return strings.Contains(s, "hw1") && strings.Contains(s, homework.Verdicts["approved"])
	})).Return(nil).Once()

	p, _ := newPoller(src, sink, Config{})
	out := p.Cycle(context.Background())

	require.Nil(t, out.Err)
	assert.True(t, out.Notified)
	assert.Equal(t, []int64{0}, src.cursors)
	assert.Equal(t, int64(1000), p.Cursor())
	sink.AssertExpectations(t)
}

func TestOnlyFirstSubmissionIsConsidered(t *testing.T) {
	src := &scriptSource{steps: []func(int64) (any, error){
		body(`{"homeworks": [
			{"homework_name": "latest", "status": "reviewing"},
			{"homework_name": "older", "status": "bogus"}
		], "current_date": 10}`),
	}}
	sink := acceptAll()

	p, _ := newPoller(src, sink, Config{})
	out := p.Cycle(context.Background())

	require.Nil(t, out.Err)
	sink.AssertNumberOfCalls(t, "Notify", 1)
	assert.Contains(t, out.Message, "latest")
}

func TestEmptySubmissionsOnlyLogs(t *testing.T) {
	src := &scriptSource{steps: []func(int64) (any, error){
		body(`{"homeworks": [], "current_date": 2000}`),
	}}
	sink := &mockSink{}

	p, logs := newPoller(src, sink, Config{})
	out := p.Cycle(context.Background())

	require.Nil(t, out.Err)
	assert.False(t, out.Notified)
	assert.Equal(t, int64(2000), p.Cursor())
	assert.Contains(t, logs.String(), "no new homework statuses")
	sink.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestTransportFailureKeepsCursor(t *testing.T) {
	src := &scriptSource{steps: []func(int64) (any, error){
		body(`{"homeworks": [], "current_date": 1500}`),
		fail(fault.NewRequestFailed(errors.New("dial tcp: connection refused"))),
	}}
	sink := &mockSink{}

	p, _ := newPoller(src, sink, Config{})
	p.Cycle(context.Background())
	out := p.Cycle(context.Background())

	require.NotNil(t, out.Err)
	assert.Equal(t, fault.RequestFailed, out.Err.Kind)
	assert.Equal(t, int64(1500), p.Cursor())
	assert.Equal(t, []int64{0, 1500}, src.cursors)
	sink.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestSilentErrorsNeverNotify(t *testing.T) {
	src := &scriptSource{steps: []func(int64) (any, error){
		fail(fault.NewRequestFailed(errors.New("timeout"))),
		fail(fault.NewBadStatus(500)),
		fail(fault.NewBadStatus(500)),
		fail(fault.NewParseFailed("oops", errors.New("invalid character"))),
		body(`{"homeworks": []}`),
		body(`{"current_date": 1}`),
		fail(fault.NewDeliveryFailed(errors.New("blocked"))),
	}}
	sink := &mockSink{}

	p, _ := newPoller(src, sink, Config{})
	for range src.steps {
		out := p.Cycle(context.Background())
		require.NotNil(t, out.Err)
		assert.True(t, out.Err.Silent(), "kind %s", out.Err.Kind)
		assert.False(t, out.Notified)
	}
	sink.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	_, ok := p.LastNotified()
	assert.False(t, ok)
}

func TestDeliveryFailureOfStatusIsNotReported(t *testing.T) {
	src := &scriptSource{steps: []func(int64) (any, error){
		body(`{"homeworks": [{"homework_name": "hw1", "status": "approved"}], "current_date": 1}`),
	}}
	sink := &mockSink{}
	sink.On("Notify", mock.Anything, mock.Anything).Return(fault.NewDeliveryFailed(errors.New("chat not found"))).Once()

	p, _ := newPoller(src, sink, Config{})
	out := p.Cycle(context.Background())

	require.NotNil(t, out.Err)
	assert.Equal(t, fault.DeliveryFailed, out.Err.Kind)
	sink.AssertNumberOfCalls(t, "Notify", 1)
}

func TestRepeatedEscalateKindNotifiesOnce(t *testing.T) {
	src := &scriptSource{steps: []func(int64) (any, error){
		body(`[]`),
		body(`"text"`),
		body(`{"homeworks": [{"homework_name": "hw1", "status": "lost"}], "current_date": 1}`),
		body(`[]`),
	}}
	sink := acceptAll()

	p, _ := newPoller(src, sink, Config{})
	kinds := []fault.Kind{fault.TypeMismatch, fault.TypeMismatch, fault.KeyError, fault.TypeMismatch}
	notified := []bool{true, false, true, true}
	for i := range kinds {
		out := p.Cycle(context.Background())
		require.NotNil(t, out.Err, "cycle %d", i)
		assert.Equal(t, kinds[i], out.Err.Kind, "cycle %d", i)
		assert.Equal(t, notified[i], out.Notified, "cycle %d", i)
	}
	sink.AssertNumberOfCalls(t, "Notify", 3)

	k, ok := p.LastNotified()
	require.True(t, ok)
	assert.Equal(t, fault.TypeMismatch, k)
}

func TestErrorNotificationText(t *testing.T) {
	src := &scriptSource{steps: []func(int64) (any, error){body(`[]`)}}
	sink := &mockSink{}
	sink.On("Notify", mock.Anything, mock.MatchedBy(func(s string) bool {
		return strings.HasPrefix(s, "Homework bot has encountered an error: ")
	})).Return(nil).Once()

	p, _ := newPoller(src, sink, Config{})
	p.Cycle(context.Background())
	sink.AssertExpectations(t)
}

func TestLastNotifiedSurvivesSuccessByDefault(t *testing.T) {
	steps := []func(int64) (any, error){
		body(`[]`),
		body(`{"homeworks": [], "current_date": 5}`),
		body(`[]`),
	}

	sink := acceptAll()
	p, _ := newPoller(&scriptSource{steps: steps}, sink, Config{})
	for range steps {
		p.Cycle(context.Background())
	}
	sink.AssertNumberOfCalls(t, "Notify", 1)

	sink = acceptAll()
	p, _ = newPoller(&scriptSource{steps: steps}, sink, Config{ResetErrorOnSuccess: true})
	for range steps {
		p.Cycle(context.Background())
	}
	sink.AssertNumberOfCalls(t, "Notify", 2)
}

func TestFailedErrorNotificationIsRetriedNextCycle(t *testing.T) {
	src := &scriptSource{steps: []func(int64) (any, error){body(`[]`), body(`[]`)}}
	sink := &mockSink{}
	sink.On("Notify", mock.Anything, mock.Anything).Return(fault.NewDeliveryFailed(errors.New("down"))).Once()
	sink.On("Notify", mock.Anything, mock.Anything).Return(nil).Once()

	p, _ := newPoller(src, sink, Config{})
	first := p.Cycle(context.Background())
	second := p.Cycle(context.Background())

	assert.False(t, first.Notified)
	assert.True(t, second.Notified)
	sink.AssertNumberOfCalls(t, "Notify", 2)
}

func TestPanicIsEscalatedAsUnknown(t *testing.T) {
	src := &scriptSource{steps: []func(int64) (any, error){
		func(int64) (any, error) { panic("nil map write") },
	}}
	sink := acceptAll()

	p, logs := newPoller(src, sink, Config{})
	out := p.Cycle(context.Background())

	require.NotNil(t, out.Err)
	assert.Equal(t, fault.Unknown, out.Err.Kind)
	assert.True(t, out.Notified)
	assert.Contains(t, logs.String(), "cycle panicked")
}

func TestUnclassifiedErrorEscalates(t *testing.T) {
	src := &scriptSource{steps: []func(int64) (any, error){fail(errors.New("weird"))}}
	sink := acceptAll()

	p, _ := newPoller(src, sink, Config{})
	out := p.Cycle(context.Background())

	require.NotNil(t, out.Err)
	assert.Equal(t, fault.Unknown, out.Err.Kind)
	sink.AssertNumberOfCalls(t, "Notify", 1)
}

func TestRunSleepsFixedIntervalAfterEveryOutcome(t *testing.T) {
	src := &scriptSource{steps: []func(int64) (any, error){
		body(`{"homeworks": [{"homework_name": "hw1", "status": "approved"}], "current_date": 1}`),
		fail(fault.NewBadStatus(502)),
		body(`[]`),
	}}
	sink := acceptAll()

	var outcomes []Outcome
	p := New(Config{Interval: 10 * time.Minute}, src, sink, logx.Nop(),
		WithCycleHook(func(o Outcome) { outcomes = append(outcomes, o) }))

	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var slept []time.Duration
	p.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		if len(slept) == len(src.steps) {
			cancel()
			return ctx.Err()
		}
		return nil
	}

	err := p.Run(ctx)
	require.True(t, IsStop(err))
	assert.Equal(t, []time.Duration{10 * time.Minute, 10 * time.Minute, 10 * time.Minute}, slept)
	require.Len(t, outcomes, 3)
	assert.Nil(t, outcomes[0].Err)
	assert.Equal(t, fault.BadStatus, outcomes[1].Err.Kind)
	assert.Equal(t, fault.TypeMismatch, outcomes[2].Err.Kind)
}

func TestRunReturnsWhenAlreadyCanceled(t *testing.T) {
	src := &scriptSource{}
	p := New(Config{}, src, acceptAll(), logx.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, src.cursors)
}
