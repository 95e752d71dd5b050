package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/lib/pq"
)

// notificationListener is the subset of *pq.Listener used by Subscribe.
type notificationListener interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Close() error
}

type listenerFactory func(dsn string, logger *slog.Logger) notificationListener

func newPQListener(dsn string, logger *slog.Logger) notificationListener {
	return pq.NewListener(dsn, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
			logger.Warn("Change feed connection problem", "event", ev, "error", err)
		case pq.ListenerEventReconnected:
			logger.Info("Change feed reconnected")
		}
	})
}

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *subscription) stop() {
	s.cancel()
	<-s.done
}

// Subscribe listens on the notify channel. onChange runs on the listener
// goroutine for every notification about this row and after every reconnect,
// since notifications sent while disconnected are lost.
func (r *DocumentPostgreSQL) Subscribe(ctx context.Context, onChange func()) (func(), error) {
	if onChange == nil {
		return nil, fmt.Errorf("subscribe: nil callback")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		r.active.stop()
		r.active = nil
	}

	l := r.newListener(r.dsn, r.logger)
	if err := l.Listen(r.notifyChannel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", r.notifyChannel, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{cancel: cancel, done: make(chan struct{})}
	go r.runSubscription(subCtx, l, sub, onChange)
	r.active = sub

	r.logger.Info("Subscribed to dataset changes", "channel", r.notifyChannel, "document_id", r.documentID)

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.active == sub {
			sub.stop()
			r.active = nil
		}
	}, nil
}

func (r *DocumentPostgreSQL) runSubscription(ctx context.Context, l notificationListener, sub *subscription, onChange func()) {
	defer close(sub.done)
	defer func() {
		if err := l.Close(); err != nil {
			r.logger.Debug("Closing change listener", "error", err)
		}
	}()

	want := strconv.Itoa(r.documentID)
	notifications := l.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notifications:
			if !ok {
				return
			}
			// nil marks a re-established connection
			if n != nil && n.Extra != "" && n.Extra != want {
				continue
			}
			onChange()
		}
	}
}
