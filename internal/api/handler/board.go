package handler

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/giljurha/Airvisual/internal/presenter"
	"github.com/giljurha/Airvisual/internal/refresh"
)

// DefaultNoticeCapacity is the number of notices a Board keeps.
const DefaultNoticeCapacity = 50

// Board is the screen as seen over HTTP. It satisfies the refresh
// controller's Renderer, Notifier and Screen and keeps the most recent
// notices for polling clients.
type Board struct {
	mu       sync.RWMutex
	view     presenter.ViewState
	notices  []refresh.Notice
	capacity int
	closed   bool
	logger   zerolog.Logger
}

var (
	_ refresh.Renderer = (*Board)(nil)
	_ refresh.Notifier = (*Board)(nil)
	_ refresh.Screen   = (*Board)(nil)
)

// NewBoard creates a board holding up to capacity notices. A capacity of
// zero or less uses DefaultNoticeCapacity.
func NewBoard(capacity int, logger zerolog.Logger) *Board {
	if capacity <= 0 {
		capacity = DefaultNoticeCapacity
	}
	return &Board{
		capacity: capacity,
		notices:  make([]refresh.Notice, 0, capacity),
		logger:   logger,
	}
}

// Render stores the latest view.
func (b *Board) Render(view presenter.ViewState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.view = view
}

// Notify appends a notice, evicting the oldest when full.
func (b *Board) Notify(notice refresh.Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.notices) == b.capacity {
		copy(b.notices, b.notices[1:])
		b.notices = b.notices[:len(b.notices)-1]
	}
	b.notices = append(b.notices, notice)

	b.logger.Debug().
		Uint64("generation", notice.Generation).
		Str("level", notice.Level.String()).
		Str("text", notice.Text).
		Msg("notice posted")
}

// Close marks the screen closed.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.logger.Info().Msg("screen closed")
}

// Closed reports whether Close was called.
func (b *Board) Closed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}

// View returns the last rendered view.
func (b *Board) View() presenter.ViewState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.view
}

// Notices returns up to limit of the newest notices, oldest first.
func (b *Board) Notices(limit int) []refresh.Notice {
	b.mu.RLock()
	defer b.mu.RUnlock()
	start := 0
	if limit > 0 && limit < len(b.notices) {
		start = len(b.notices) - limit
	}
	out := make([]refresh.Notice, len(b.notices)-start)
	copy(out, b.notices[start:])
	return out
}
