package connectors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"
)

// Feed reads signal messages from a websocket relay, one text frame per message.
type Feed struct {
	url        string
	name       string
	intake     messageHandler
	log        *logger.Entry
	dialer     *websocket.Dialer
	maxBackoff time.Duration
	staleAfter time.Duration
	notifier   Notifier
}

func NewFeed(url, name string, h messageHandler, log *logger.Entry) *Feed {
	if log == nil {
		log = logger.WithField("component", "Feed")
	}
	return &Feed{
		url:    url,
		name:   name,
		intake: h,
		log:    log.WithField("feed", name),
		dialer: &websocket.Dialer{
			HandshakeTimeout: 15 * time.Second,
			Proxy:            http.ProxyFromEnvironment,
		},
		maxBackoff: 30 * time.Second,
	}
}

// WithMaxBackoff caps the reconnect delay.
func (f *Feed) WithMaxBackoff(d time.Duration) *Feed {
	if d > 0 {
		f.maxBackoff = d
	}
	return f
}

// WithStaleAlert reconnects and notifies n when no frame arrives for d.
func (f *Feed) WithStaleAlert(d time.Duration, n Notifier) *Feed {
	f.staleAfter = d
	f.notifier = n
	return f
}

// Run keeps a connection open until ctx is done.
func (f *Feed) Run(ctx context.Context) error {
	f.log.WithField("url", f.url).Info("Starting websocket feed")

	backoff := 500 * time.Millisecond
	for ctx.Err() == nil {
		conn, _, err := f.dialer.DialContext(ctx, f.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			f.log.WithError(err).WithField("retry_in", backoff.String()).Warn("ws dial failed")
			if !sleep(ctx, backoff) {
				break
			}
			backoff = nextBackoff(backoff, f.maxBackoff)
			continue
		}

		backoff = 500 * time.Millisecond
		f.log.Info("ws connected")

		err = f.consume(ctx, conn)
		if ctx.Err() != nil {
			break
		}
		f.log.WithError(err).Warn("ws connection lost, reconnecting")
	}

	f.log.Info("Websocket feed stopped")
	return nil
}

func (f *Feed) consume(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
			_ = conn.Close()
		}
	}()

	for {
		if f.staleAfter > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(f.staleAfter))
		}

		msgType, data, err := conn.ReadMessage()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				f.alertStale(ctx)
			}
			return fmt.Errorf("ws read failed: %w", err)
		}
		if msgType != websocket.TextMessage {
			continue
		}

		out, err := f.intake.Handle(ctx, string(data), f.name)
		if err != nil {
			f.log.WithError(err).Error("Error processing feed message")
		}
		if out.Reply != "" {
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(out.Reply)); err != nil {
				return fmt.Errorf("ws write failed: %w", err)
			}
		}
	}
}

func (f *Feed) alertStale(ctx context.Context) {
	msg := fmt.Sprintf("⚠️ Feed %s: no data for %s, reconnecting", f.name, f.staleAfter)
	f.log.Warn(msg)
	if f.notifier == nil {
		return
	}
	if err := f.notifier.Notify(ctx, msg); err != nil {
		f.log.WithError(err).Error("Failed to send stale feed alert")
	}
}
