package notifier

import "time"

type Config struct {
	ChatID   string
	ThreadID int

	// RatePerSec bounds outgoing sends; burst equals the rate.
	RatePerSec int
	// HistorySize caps the in-memory delivery history.
	HistorySize int
}

type HistoryItem struct {
	At        time.Time
	Text      string
	MessageID int
}
