package adapter

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	kit "hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

type Config struct {
	Token string
	// APIURL overrides the Bot API base URL (tests, self-hosted bot API).
	APIURL string
	// SendTimeout bounds a single Bot API call.
	SendTimeout time.Duration
}

// Adapter is a send-only Telegram adapter. It never polls for updates.
type Adapter struct {
	cfg Config
	log logx.Logger

	bot *tele.Bot

	mu      sync.Mutex
	stopped bool
}

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	// Offline skips getMe, so building the adapter performs no network call.
	b, err := tele.NewBot(tele.Settings{
		URL:     strings.TrimSpace(cfg.APIURL),
		Token:   cfg.Token,
		Offline: true,
		Client:  &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	return &Adapter{cfg: cfg, log: log, bot: b}, nil
}

// chatRecipient lets telebot address a chat by its raw string id.
type chatRecipient string

func (r chatRecipient) Recipient() string { return string(r) }

func (a *Adapter) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return kit.MessageRef{}, err
	}
	a.mu.Lock()
	stopped := a.stopped
	a.mu.Unlock()
	if stopped {
		return kit.MessageRef{}, errors.New("telegram adapter stopped")
	}
	if strings.TrimSpace(to.ChatID) == "" {
		return kit.MessageRef{}, errors.New("telegram chat id is empty")
	}
	if opt == nil {
		opt = &kit.SendOptions{}
	}
	sendOpt := &tele.SendOptions{
		ParseMode:             opt.ParseMode,
		DisableWebPagePreview: opt.DisablePreview,
		ThreadID:              to.ThreadID,
	}

	msg, err := a.bot.Send(chatRecipient(to.ChatID), text, sendOpt)
	if err != nil {
		return kit.MessageRef{}, err
	}
	return kit.MessageRef{ChatID: to.ChatID, ThreadID: to.ThreadID, MessageID: msg.ID}, nil
}

// Stop makes later sends fail fast. There is no poll loop to tear down.
func (a *Adapter) Stop(ctx context.Context) error {
	_ = ctx
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.stopped {
		a.stopped = true
		a.log.Info("telegram adapter stopped")
	}
	return nil
}
