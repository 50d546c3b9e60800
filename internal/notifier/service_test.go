package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hwbot/internal/fault"
	kit "hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

type mockAdapter struct {
	mock.Mock
}

func (m *mockAdapter) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	args := m.Called(ctx, to, text, opt)
	return args.Get(0).(kit.MessageRef), args.Error(1)
}

func (m *mockAdapter) Stop(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestNotifySendsToConfiguredChat(t *testing.T) {
	ad := &mockAdapter{}
	to := kit.ChatTarget{ChatID: "-100", ThreadID: 3}
	ad.On("SendText", mock.Anything, to, "hello", mock.Anything).
		Return(kit.MessageRef{ChatID: "-100", ThreadID: 3, MessageID: 9}, nil).Once()

	s := New(Config{ChatID: "-100", ThreadID: 3, RatePerSec: 100}, ad, logx.Nop())
	require.NoError(t, s.Notify(context.Background(), "hello"))

	ad.AssertExpectations(t)
	hist := s.History()
	require.Len(t, hist, 1)
	assert.Equal(t, 9, hist[0].MessageID)
}

func TestNotifyFailureIsSilentDeliveryError(t *testing.T) {
	ad := &mockAdapter{}
	ad.On("SendText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(kit.MessageRef{}, errors.New("Forbidden: bot was blocked by the user"))

	s := New(Config{ChatID: "1", RatePerSec: 100}, ad, logx.Nop())
	err := s.Notify(context.Background(), "hello")

	require.Error(t, err)
	fe := fault.As(err)
	assert.Equal(t, fault.DeliveryFailed, fe.Kind)
	assert.True(t, fe.Silent())
	assert.Empty(t, s.History())
}

func TestNotifyWithoutChatFails(t *testing.T) {
	ad := &mockAdapter{}
	s := New(Config{RatePerSec: 100}, ad, logx.Nop())

	err := s.Notify(context.Background(), "hello")
	assert.True(t, fault.Is(err, fault.DeliveryFailed))
	ad.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNotifyTruncatesLongText(t *testing.T) {
	ad := &mockAdapter{}
	ad.On("SendText", mock.Anything, mock.Anything, mock.MatchedBy(func(s string) bool {
		return utf8.RuneCountInString(s) == MaxMessageRunes && strings.HasSuffix(s, "…")
	}), mock.Anything).Return(kit.MessageRef{MessageID: 1}, nil).Once()

	s := New(Config{ChatID: "1", RatePerSec: 100}, ad, logx.Nop())
	require.NoError(t, s.Notify(context.Background(), strings.Repeat("я", MaxMessageRunes+10)))
	ad.AssertExpectations(t)
}

func TestHistoryIsBounded(t *testing.T) {
	ad := &mockAdapter{}
	ad.On("SendText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(kit.MessageRef{MessageID: 1}, nil)

	s := New(Config{ChatID: "1", RatePerSec: 1000, HistorySize: 2}, ad, logx.Nop())
	for _, txt := range []string{"a", "b", "c"} {
		require.NoError(t, s.Notify(context.Background(), txt))
	}
	hist := s.History()
	require.Len(t, hist, 2)
	assert.Equal(t, "b", hist[0].Text)
	assert.Equal(t, "c", hist[1].Text)
}

func TestTruncRunes(t *testing.T) {
	assert.Equal(t, "abc", truncRunes("abc", 3))
	assert.Equal(t, "ab…", truncRunes("abcd", 3))
	assert.Equal(t, "", truncRunes("abcd", 0))
}
