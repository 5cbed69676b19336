package platform

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/giljurha/Airvisual/internal/permission"
	"github.com/giljurha/Airvisual/internal/refresh"
)

const commandBuffer = 8

// TerminalConfig holds configuration for a Terminal.
type TerminalConfig struct {
	In  io.Reader
	Out io.Writer

	// Services reports whether location is switched on.
	Services ServicesChecker

	// Switches are offered in the settings screen, in order.
	Switches []Switch

	// Scopes are granted before the first request.
	Scopes []string

	Messages refresh.Messages
	Logger   zerolog.Logger
}

// Terminal is an interactive host reading answers line by line. Lines that
// arrive while no prompt is waiting are delivered on Commands.
type Terminal struct {
	in       io.Reader
	out      io.Writer
	outMu    sync.Mutex
	services ServicesChecker
	switches []Switch
	grants   *grantSet
	messages refresh.Messages
	logger   zerolog.Logger

	mu       sync.Mutex
	waiting  []chan string
	commands chan string
	eof      chan struct{}
	start    sync.Once
}

var (
	_ permission.Platform = (*Terminal)(nil)
	_ permission.Prompter = (*Terminal)(nil)
)

// NewTerminal creates a terminal host. Call Start before prompting.
func NewTerminal(cfg TerminalConfig) *Terminal {
	return &Terminal{
		in:       cfg.In,
		out:      cfg.Out,
		services: cfg.Services,
		switches: cfg.Switches,
		grants:   newGrantSet(cfg.Scopes),
		messages: cfg.Messages,
		logger:   cfg.Logger,
		commands: make(chan string, commandBuffer),
		eof:      make(chan struct{}),
	}
}

// Start begins reading input. It is safe to call more than once.
func (t *Terminal) Start() {
	t.start.Do(func() { go t.read() })
}

// Commands delivers input lines not consumed by a prompt. It is closed at
// end of input.
func (t *Terminal) Commands() <-chan string {
	return t.commands
}

func (t *Terminal) read() {
	scanner := bufio.NewScanner(t.in)
	for scanner.Scan() {
		t.dispatch(strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		t.logger.Warn().Err(err).Msg("terminal input failed")
	}

	t.mu.Lock()
	close(t.eof)
	t.mu.Unlock()
	close(t.commands)
}

func (t *Terminal) dispatch(line string) {
	t.mu.Lock()
	if len(t.waiting) > 0 {
		answer := t.waiting[0]
		t.waiting = t.waiting[1:]
		t.mu.Unlock()
		answer <- line
		return
	}
	t.mu.Unlock()

	select {
	case t.commands <- line:
	default:
		t.logger.Debug().Str("line", line).Msg("command dropped")
	}
}

// ask prints prompt and waits for the next line. It returns false at end of
// input or when ctx is done.
func (t *Terminal) ask(ctx context.Context, prompt string) (string, bool) {
	answer := make(chan string, 1)

	t.mu.Lock()
	select {
	case <-t.eof:
		t.mu.Unlock()
		return "", false
	default:
	}
	t.waiting = append(t.waiting, answer)
	t.mu.Unlock()

	t.print(color.New(color.FgYellow, color.Bold).Sprint(prompt) + " ")

	select {
	case line := <-answer:
		return line, true
	case <-t.eof:
		return "", false
	case <-ctx.Done():
		t.forget(answer)
		return "", false
	}
}

func (t *Terminal) forget(answer chan string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, ch := range t.waiting {
		if ch == answer {
			t.waiting = append(t.waiting[:i], t.waiting[i+1:]...)
			return
		}
	}
}

func (t *Terminal) print(s string) {
	t.outMu.Lock()
	defer t.outMu.Unlock()
	fmt.Fprint(t.out, s)
}

// ServicesEnabled implements permission.Platform.
func (t *Terminal) ServicesEnabled() bool {
	return t.services.ServicesEnabled()
}

// Granted implements permission.Platform.
func (t *Terminal) Granted(scope permission.Scope) bool {
	return t.grants.has(scope)
}

// Request implements permission.Platform by asking once per scope. Input
// ending early yields a shorter answer slice.
func (t *Terminal) Request(ctx context.Context, scopes []permission.Scope) <-chan []permission.Grant {
	out := make(chan []permission.Grant, 1)

	go func() {
		grants := make([]permission.Grant, 0, len(scopes))
		for _, scope := range scopes {
			line, ok := t.ask(ctx, fmt.Sprintf(t.messages.PermissionPrompt, scope)+" [y/N]")
			if !ok {
				break
			}
			grants = append(grants, permission.Grant{Scope: scope, Granted: yes(line)})
		}
		t.grants.apply(grants)
		out <- grants
	}()

	return out
}

// ConfirmLocationSettings implements permission.Prompter.
func (t *Terminal) ConfirmLocationSettings(ctx context.Context) bool {
	t.print(fmt.Sprintf("\n%s\n%s\n",
		color.New(color.Bold).Sprint(t.messages.SettingsTitle),
		t.messages.SettingsMessage))

	line, ok := t.ask(ctx, fmt.Sprintf("[s] %s  [c] %s", t.messages.SettingsConfirm, t.messages.SettingsCancel))
	if !ok {
		return false
	}
	line = strings.ToLower(line)
	return line == "s" || strings.EqualFold(line, t.messages.SettingsConfirm)
}

// OpenSettings implements permission.Platform. Each switched-off source is
// offered in turn; the result is false if input ends or ctx is done first.
func (t *Terminal) OpenSettings(ctx context.Context) <-chan bool {
	out := make(chan bool, 1)

	go func() {
		for _, sw := range t.switches {
			if sw.Enabled() {
				continue
			}
			line, ok := t.ask(ctx, fmt.Sprintf(t.messages.SwitchPrompt, sw.Name())+" [y/N]")
			if !ok {
				out <- false
				return
			}
			if yes(line) {
				sw.SetEnabled(true)
				t.logger.Info().Str("source", sw.Name()).Msg("location source enabled")
			}
		}
		out <- true
	}()

	return out
}

func yes(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
