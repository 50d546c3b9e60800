package transport

import "context"

// ChatTarget addresses one chat. ChatID is either a numeric id or an
// "@channel" username, as accepted by the Bot API.
type ChatTarget struct {
	ChatID   string
	ThreadID int // telegram forum topic thread id (0 if none)
}

type MessageRef struct {
	ChatID    string
	ThreadID  int
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Adapter delivers text to a messaging platform.
type Adapter interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
	Stop(ctx context.Context) error
}
