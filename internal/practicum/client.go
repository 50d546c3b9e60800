// Package practicum is the HTTP client for the homework-status API.
package practicum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hwbot/internal/fault"
	logx "hwbot/pkg/logx"
)

const DefaultEndpoint = "https://practicum.yandex.ru/api/user_api/homework_statuses/"

// Cap on the body kept for ParseFailed diagnostics and read into memory.
const maxBodyBytes = 4 << 20

type Config struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	log  logx.Logger
}

func New(cfg Config, log logx.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("practicum token is empty")
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if _, err := url.Parse(cfg.Endpoint); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{cfg: cfg, log: log, http: &http.Client{Timeout: cfg.Timeout}}, nil
}

// Fetch requests statuses changed since cursor and returns the decoded body.
// It never retries.
func (c *Client) Fetch(ctx context.Context, cursor int64) (any, error) {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return nil, fault.NewRequestFailed(err)
	}
	q := u.Query()
	q.Set("from_date", strconv.FormatInt(cursor, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fault.NewRequestFailed(err)
	}
	req.Header.Set("Authorization", "OAuth "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")

	c.log.Debug("requesting API", logx.String("endpoint", c.cfg.Endpoint), logx.Int64("from_date", cursor))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fault.NewRequestFailed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fault.NewBadStatus(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fault.NewRequestFailed(err)
	}
	c.log.Debug("API response obtained", logx.Int("bytes", len(body)))

	var out any
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&out); err != nil {
		return nil, fault.NewParseFailed(string(body), err)
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			err = errors.New("trailing data after json value")
		}
		return nil, fault.NewParseFailed(string(body), err)
	}
	return out, nil
}
