package logger

import (
	"context"
	"sync"
	"time"
)

// Entry is one mirrored log line destined for the log center.
type Entry struct {
	Timestamp time.Time
	Level     string
	Logger    string
	Message   string
}

// EntryWriter persists batches of entries. Implemented by the SQLite log
// store; kept as an interface so the logger package stays storage-agnostic.
type EntryWriter interface {
	WriteLogs(ctx context.Context, entries []Entry) error
	PruneLogs(ctx context.Context, keep int) error
}

// SinkConfig controls batching and retention.
type SinkConfig struct {
	BufferSize    int           // flush when this many entries are buffered
	FlushInterval time.Duration // flush at least this often
	MaxEntries    int           // retention cap enforced after each flush
	Writer        EntryWriter
}

// BufferedSink batches log entries and flushes them to the writer on a
// size threshold or timer, pruning old rows to the retention cap.
type BufferedSink struct {
	cfg    SinkConfig
	mu     sync.Mutex
	buf    []Entry
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewBufferedSink(cfg SinkConfig) *BufferedSink {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 50
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10000
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &BufferedSink{
		cfg:    cfg,
		buf:    make([]Entry, 0, cfg.BufferSize),
		ctx:    ctx,
		cancel: cancel,
	}

	s.wg.Add(1)
	go s.loop()
	return s
}

// Add buffers an entry, flushing synchronously once the buffer is full.
func (s *BufferedSink) Add(e Entry) {
	s.mu.Lock()
	s.buf = append(s.buf, e)
	var batch []Entry
	if len(s.buf) >= s.cfg.BufferSize {
		batch = s.take()
	}
	s.mu.Unlock()

	if batch != nil {
		s.write(batch)
	}
}

// take swaps out the buffer; caller must hold the lock.
func (s *BufferedSink) take() []Entry {
	if len(s.buf) == 0 {
		return nil
	}
	batch := s.buf
	s.buf = make([]Entry, 0, s.cfg.BufferSize)
	return batch
}

func (s *BufferedSink) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Flush()
		case <-s.ctx.Done():
			s.Flush()
			return
		}
	}
}

// Flush writes any buffered entries immediately.
func (s *BufferedSink) Flush() {
	s.mu.Lock()
	batch := s.take()
	s.mu.Unlock()

	if batch != nil {
		s.write(batch)
	}
}

func (s *BufferedSink) write(batch []Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Persistence failures are swallowed: logging must never recurse into
	// error logging.
	if err := s.cfg.Writer.WriteLogs(ctx, batch); err != nil {
		return
	}
	_ = s.cfg.Writer.PruneLogs(ctx, s.cfg.MaxEntries)
}

// Close flushes remaining entries and stops the timer goroutine.
func (s *BufferedSink) Close() {
	s.cancel()
	s.wg.Wait()
}
