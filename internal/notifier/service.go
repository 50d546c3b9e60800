package notifier

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"hwbot/internal/fault"
	kit "hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

// MaxMessageRunes is Telegram's text length limit for sendMessage.
const MaxMessageRunes = 4096

var ErrNoTarget = errors.New("notifier chat id is empty")

// Service sends text to a fixed chat. It is safe for concurrent use.
type Service struct {
	log     logx.Logger
	adapter kit.Adapter

	cfg     Config
	limiter *rate.Limiter

	hmu     sync.Mutex
	history []HistoryItem
}

func New(cfg Config, adapter kit.Adapter, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 20
	}
	return &Service{
		log:     log,
		adapter: adapter,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
	}
}

// Notify delivers text to the configured chat.
// Any failure is returned as a silent fault.DeliveryFailed.
func (s *Service) Notify(ctx context.Context, text string) error {
	s.log.Info("trying to send a message", logx.String("text", text))

	if s.adapter == nil {
		return fault.NewDeliveryFailed(errors.New("no adapter"))
	}
	if s.cfg.ChatID == "" {
		return fault.NewDeliveryFailed(ErrNoTarget)
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fault.NewDeliveryFailed(err)
	}

	to := kit.ChatTarget{ChatID: s.cfg.ChatID, ThreadID: s.cfg.ThreadID}
	ref, err := s.adapter.SendText(ctx, to, truncRunes(text, MaxMessageRunes), &kit.SendOptions{DisablePreview: true})
	if err != nil {
		return fault.NewDeliveryFailed(err)
	}

	s.record(HistoryItem{At: time.Now(), Text: text, MessageID: ref.MessageID})
	s.log.Info("message successfully sent", logx.Int("message_id", ref.MessageID))
	return nil
}

func (s *Service) record(it HistoryItem) {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	s.history = append(s.history, it)
	if over := len(s.history) - s.cfg.HistorySize; over > 0 {
		s.history = append([]HistoryItem(nil), s.history[over:]...)
	}
}

// History returns delivered messages, oldest first.
func (s *Service) History() []HistoryItem {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	return append([]HistoryItem(nil), s.history...)
}

// truncRunes returns s truncated to at most n runes, ending with "…" when cut.
func truncRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n-1 {
			return s[:i] + "…"
		}
		count++
	}
	return s
}
