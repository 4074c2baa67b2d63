// Package live subscribes to the backend's invalidation push channel and
// forwards events into the cache store, keeping messaging and banner views
// current without polling.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/cache"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	reconnectDelay    = 5 * time.Second
	maxReconnectDelay = time.Minute
)

// Event is a push message from the backend.
type Event struct {
	Type   string `json:"type"`
	Prefix string `json:"prefix,omitempty"`
}

// Listener maintains a websocket subscription and applies invalidation events
// to the store.
type Listener struct {
	wsURL  string
	token  string
	store  *cache.Store
	dialer *websocket.Dialer
}

// NewListener creates a listener for the backend at baseURL. The session
// token is passed as a query parameter, matching the backend's websocket
// auth.
func NewListener(baseURL, token string, store *cache.Store) (*Listener, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse backend URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}

	return &Listener{
		wsURL:  u.String(),
		token:  token,
		store:  store,
		dialer: websocket.DefaultDialer,
	}, nil
}

// Run connects and processes events until ctx ends, reconnecting with backoff
// on connection loss.
func (l *Listener) Run(ctx context.Context) {
	delay := reconnectDelay
	for {
		if ctx.Err() != nil {
			return
		}

		err := l.runConn(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", delay).Msg("Live subscription lost")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}

func (l *Listener) runConn(ctx context.Context) error {
	conn, _, err := l.dialer.DialContext(ctx, l.wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial live endpoint: %w", err)
	}
	defer conn.Close()

	log.Info().Msg("Live subscription established")

	// Close the connection when ctx ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("live read failed: %w", err)
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Warn().Err(err).Msg("Discarding malformed live event")
			continue
		}

		switch ev.Type {
		case "invalidate":
			if ev.Prefix == "" {
				continue
			}
			n := l.store.Invalidate(ev.Prefix)
			log.Debug().Str("prefix", ev.Prefix).Int("marked", n).Msg("Applied live invalidation")
		case "ping":
			// keepalive
		default:
			log.Debug().Str("type", ev.Type).Msg("Ignoring unknown live event")
		}
	}
}
