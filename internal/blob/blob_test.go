package blob

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/skill-tracker/internal/cache"
	"github.com/SAP-F-2025/skill-tracker/internal/config"
	"github.com/SAP-F-2025/skill-tracker/internal/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStorage(t *testing.T) (*Storage, string, cache.LocalStore) {
	root := t.TempDir()
	backend, err := NewFSBackend(root, "https://files.example.test/")
	require.NoError(t, err)

	local, err := cache.NewLevelDBStore(t.TempDir(), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = local.Close() })
	require.NoError(t, local.InitBlobs(context.Background()))

	s := NewStorage(backend, local, "uploads", testLogger())
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s, root, local
}

func TestSanitizeName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"report.pdf", "report.pdf"},
		{"گزارش ماهانه.pdf", "____________.pdf"},
		{"a b/c\\d?.png", "a_b_c_d_.png"},
		{"ok-name_1.txt", "ok-name_1.txt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeName(tt.in), tt.in)
	}
}

func TestStorage_Upload(t *testing.T) {
	ctx := context.Background()
	s, root, local := newTestStorage(t)

	res, err := s.Upload(ctx, []byte("hello"), "text/plain", "my file.txt")
	require.NoError(t, err)
	assert.Equal(t, "uploads/1700000000000_my_file.txt", res.Path)

	onDisk, err := os.ReadFile(filepath.Join(root, "uploads", "1700000000000_my_file.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), onDisk)

	cached, ok, err := local.GetBlob(ctx, res.Path)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("hello"), cached)

	// same millisecond and name: the existing object is never overwritten
	res, err = s.Upload(ctx, []byte("other"), "text/plain", "my file.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrObjectExists)
	assert.Empty(t, res.Path)
}

func TestStorage_UploadDataURLAndResolve(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStorage(t)

	dataURL := EncodeDataURL("image/png", []byte{0x89, 'P', 'N', 'G'})
	path, err := s.ResolveReference(ctx, dataURL, "banner.png")
	require.NoError(t, err)
	assert.Equal(t, "uploads/1700000000000_banner.png", path)

	same, err := s.ResolveReference(ctx, path, "ignored")
	require.NoError(t, err)
	assert.Equal(t, path, same)

	_, err = s.UploadDataURL(ctx, "data:text/plain;base64,@@@", "bad.txt")
	assert.ErrorIs(t, err, ErrInvalidDataURL)
}

func TestStorage_PublicURL(t *testing.T) {
	s, _, _ := newTestStorage(t)

	assert.Equal(t, "", s.PublicURL(""))
	assert.Equal(t, "https://files.example.test/uploads/1_a.pdf", s.PublicURL("uploads/1_a.pdf"))
	assert.Equal(t, "https://cdn.test/x.png", s.PublicURL("https://cdn.test/x.png"))
}

func TestStorage_DeleteAndDownload(t *testing.T) {
	ctx := context.Background()
	s, root, local := newTestStorage(t)

	res, err := s.Upload(ctx, []byte("body"), "", "doc.pdf")
	require.NoError(t, err)

	// local copy gone: download falls back to the backend and re-caches
	require.NoError(t, local.DeleteBlob(ctx, res.Path))
	data, err := s.Download(ctx, res.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("body"), data)
	_, ok, _ := local.GetBlob(ctx, res.Path)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, []string{res.Path, "", res.Path, "uploads/missing.pdf"}))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(res.Path)))
	assert.True(t, os.IsNotExist(err))
	_, ok, _ = local.GetBlob(ctx, res.Path)
	assert.False(t, ok)

	_, err = s.Download(ctx, res.Path)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestFSBackend_RejectsEscapingKeys(t *testing.T) {
	b, err := NewFSBackend(t.TempDir(), "")
	require.NoError(t, err)
	assert.ErrorIs(t, b.Put(context.Background(), "../evil", "", nil), ErrInvalidKey)
	assert.ErrorIs(t, b.Put(context.Background(), "/abs", "", nil), ErrInvalidKey)
}

func TestParseDataURL(t *testing.T) {
	ct, data, err := ParseDataURL("data:text/plain;base64,aGk=")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", ct)
	assert.Equal(t, []byte("hi"), data)

	ct, data, err = ParseDataURL("data:,a%20b")
	require.NoError(t, err)
	assert.Equal(t, defaultContentType, ct)
	assert.Equal(t, []byte("a b"), data)

	_, _, err = ParseDataURL("uploads/x.png")
	assert.ErrorIs(t, err, ErrInvalidDataURL)
}

type recordingDeleter struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (d *recordingDeleter) Delete(ctx context.Context, paths []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paths = append(d.paths, paths...)
	return d.err
}

func (d *recordingDeleter) deleted() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.paths...)
}

func TestCleaner_ThroughEventBus(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	transport, err := events.NewTransport(config.EventsConfig{Driver: "memory"}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = transport.Close() })

	deleter := &recordingDeleter{}
	c := NewCleaner(events.NewWatermillPublisher(transport.Publisher, testLogger()), transport.Subscriber, deleter, testLogger())
	require.NoError(t, c.Start(ctx))
	t.Cleanup(func() { _ = c.Close() })

	c.Schedule(ctx, []string{"uploads/1_a.pdf", "", "uploads/2_b.png"})
	c.Schedule(ctx, nil)
	require.NoError(t, c.Wait(ctx))

	assert.ElementsMatch(t, []string{"uploads/1_a.pdf", "uploads/2_b.png"}, deleter.deleted())
}

func TestCleaner_FailuresAreOnlyLogged(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	deleter := &recordingDeleter{err: errors.New("bucket unavailable")}
	// not started: requests are processed inline on a detached goroutine
	c := NewCleaner(events.NewMockEventPublisher(testLogger()), nil, deleter, testLogger())

	c.Schedule(ctx, []string{"uploads/1_a.pdf"})
	require.NoError(t, c.Wait(ctx))
	assert.Equal(t, []string{"uploads/1_a.pdf"}, deleter.deleted())
}

func TestCleaner_PublishFailureFallsBackInline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	transport, err := events.NewTransport(config.EventsConfig{Driver: "memory"}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = transport.Close() })

	pub := events.NewMockEventPublisher(testLogger())
	pub.FailWith(errors.New("broker down"))
	deleter := &recordingDeleter{}
	c := NewCleaner(pub, transport.Subscriber, deleter, testLogger())
	require.NoError(t, c.Start(ctx))
	t.Cleanup(func() { _ = c.Close() })

	c.Schedule(ctx, []string{"uploads/x.pdf"})
	require.NoError(t, c.Wait(ctx))
	assert.Equal(t, []string{"uploads/x.pdf"}, deleter.deleted())
}

func TestCleaner_MalformedMessageDoesNotBlockWait(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	transport, err := events.NewTransport(config.EventsConfig{Driver: "memory"}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = transport.Close() })

	deleter := &recordingDeleter{}
	c := NewCleaner(events.NewWatermillPublisher(transport.Publisher, testLogger()), transport.Subscriber, deleter, testLogger())
	require.NoError(t, c.Start(ctx))
	t.Cleanup(func() { _ = c.Close() })

	// a request this process scheduled whose payload arrives corrupted
	id := watermill.NewUUID()
	c.mu.Lock()
	c.pending[id] = make(chan struct{})
	c.mu.Unlock()
	require.NoError(t, transport.Publisher.Publish(CleanupTopic, message.NewMessage(id, []byte("{not json"))))
	require.NoError(t, c.Wait(ctx))

	// the worker keeps consuming
	c.Schedule(ctx, []string{"uploads/after.pdf"})
	require.NoError(t, c.Wait(ctx))
	assert.Equal(t, []string{"uploads/after.pdf"}, deleter.deleted())
}
