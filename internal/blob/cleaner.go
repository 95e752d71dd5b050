package blob

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/SAP-F-2025/skill-tracker/internal/events"
)

const (
	CleanupTopic     = "blob.cleanup"
	CleanupEventType = "blob.cleanup.requested"

	cleanupTimeout = 30 * time.Second
)

type CleanupRequest struct {
	Paths []string `json:"paths"`
}

// Deleter removes stored paths; *Storage implements it.
type Deleter interface {
	Delete(ctx context.Context, paths []string) error
}

// Cleaner deletes orphaned blobs in the background. Requests travel over the
// event bus so the caller never waits on blob storage.
type Cleaner struct {
	publisher  events.EventPublisher
	subscriber message.Subscriber
	deleter    Deleter
	logger     *slog.Logger

	mu      sync.Mutex
	pending map[string]chan struct{}
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewCleaner(publisher events.EventPublisher, subscriber message.Subscriber, deleter Deleter, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{
		publisher:  publisher,
		subscriber: subscriber,
		deleter:    deleter,
		logger:     logger,
		pending:    make(map[string]chan struct{}),
	}
}

// Start subscribes to the cleanup topic and consumes it until Close.
func (c *Cleaner) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	msgs, err := c.subscriber.Subscribe(runCtx, CleanupTopic)
	if err != nil {
		cancel()
		return err
	}

	c.mu.Lock()
	c.started = true
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go func() {
		defer close(done)
		for msg := range msgs {
			c.handle(runCtx, msg)
			msg.Ack()
		}
	}()
	c.logger.Info("Blob cleanup worker started", "topic", CleanupTopic)
	return nil
}

// Schedule queues paths for deletion and returns immediately. Failures are
// logged only.
func (c *Cleaner) Schedule(ctx context.Context, paths []string) {
	keys := storedKeys(paths)
	if len(keys) == 0 {
		return
	}

	ev, err := events.NewEvent(CleanupEventType, CleanupRequest{Paths: keys})
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to build cleanup request", "error", err)
		return
	}

	c.mu.Lock()
	c.pending[ev.ID] = make(chan struct{})
	started := c.started
	c.mu.Unlock()

	bg := context.WithoutCancel(ctx)
	go func() {
		if !started {
			c.deleteNow(bg, ev.ID, keys)
			return
		}
		if err := c.publisher.Publish(bg, CleanupTopic, ev); err != nil {
			c.logger.WarnContext(bg, "Cleanup request not queued, deleting inline", "error", err)
			c.deleteNow(bg, ev.ID, keys)
		}
	}()
}

func (c *Cleaner) handle(ctx context.Context, msg *message.Message) {
	ev, err := events.FromMessage(msg)
	if err != nil {
		c.logger.ErrorContext(ctx, "Dropping malformed cleanup message", "message_id", msg.UUID, "error", err)
		// message ids are event ids
		c.finish(msg.UUID)
		return
	}
	var req CleanupRequest
	if err := ev.DecodeData(&req); err != nil {
		c.logger.ErrorContext(ctx, "Dropping malformed cleanup request", "event_id", ev.ID, "error", err)
		c.finish(ev.ID)
		return
	}
	c.deleteNow(ctx, ev.ID, req.Paths)
}

func (c *Cleaner) deleteNow(ctx context.Context, id string, paths []string) {
	defer c.finish(id)

	ctx, cancel := context.WithTimeout(ctx, cleanupTimeout)
	defer cancel()
	if err := c.deleter.Delete(ctx, paths); err != nil {
		c.logger.ErrorContext(ctx, "Orphan blob cleanup failed",
			"paths", paths,
			"error", err)
		return
	}
	c.logger.DebugContext(ctx, "Orphan blobs removed", "count", len(paths))
}

// finish is a no-op for requests scheduled by another process.
func (c *Cleaner) finish(id string) {
	c.mu.Lock()
	ch, ok := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Wait blocks until every request scheduled so far has been processed or ctx
// is done.
func (c *Cleaner) Wait(ctx context.Context) error {
	c.mu.Lock()
	waiting := make([]chan struct{}, 0, len(c.pending))
	for _, ch := range c.pending {
		waiting = append(waiting, ch)
	}
	c.mu.Unlock()

	for _, ch := range waiting {
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (c *Cleaner) Close() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.started = false
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}
