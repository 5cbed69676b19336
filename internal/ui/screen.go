package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/giljurha/Airvisual/internal/presenter"
	"github.com/giljurha/Airvisual/internal/refresh"
)

// Screen writes views and notices to a terminal.
type Screen struct {
	mu     sync.Mutex
	out    io.Writer
	locale string
	closed chan struct{}
	once   sync.Once
}

var (
	_ refresh.Renderer = (*Screen)(nil)
	_ refresh.Notifier = (*Screen)(nil)
	_ refresh.Screen   = (*Screen)(nil)
)

// NewScreen creates a terminal screen labelling categories in locale.
func NewScreen(out io.Writer, locale string) *Screen {
	return &Screen{out: out, locale: locale, closed: make(chan struct{})}
}

// Render implements refresh.Renderer.
func (s *Screen) Render(v presenter.ViewState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\n%s", FormatView(v, s.locale))
}

// Notify implements refresh.Notifier.
func (s *Screen) Notify(n refresh.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, FormatNotice(n))
}

// Close implements refresh.Screen.
func (s *Screen) Close() {
	s.once.Do(func() { close(s.closed) })
}

// Closed is closed after Close.
func (s *Screen) Closed() <-chan struct{} {
	return s.closed
}
