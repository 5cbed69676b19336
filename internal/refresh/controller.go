package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/giljurha/Airvisual/internal/airquality"
	"github.com/giljurha/Airvisual/internal/geocode"
	"github.com/giljurha/Airvisual/internal/location"
	"github.com/giljurha/Airvisual/internal/permission"
	"github.com/giljurha/Airvisual/internal/presenter"
	"github.com/giljurha/Airvisual/internal/telemetry"
)

// Refresh triggers.
const (
	TriggerLaunch            = "launch"
	TriggerManual            = "manual"
	TriggerPermissionGranted = "permission_granted"
	TriggerServicesEnabled   = "services_enabled"
)

const eventBuffer = 16

// Config holds configuration for a Controller.
type Config struct {
	Gate       PermissionGate
	Locator    Locator
	Resolver   AddressResolver
	AirQuality AirQualityFetcher
	APIKey     string

	Renderer Renderer
	Notifier Notifier
	Screen   Screen

	// Messages is the notice catalog (default: English).
	Messages *Messages

	// Zone is the display timezone (default: UTC+9).
	Zone *time.Location

	Logger  zerolog.Logger
	Tracer  trace.Tracer
	Metrics *telemetry.RefreshMetrics

	// OnTransition is called on the loop goroutine after every state change.
	OnTransition func(Transition)

	// Now returns the current time (default: time.Now).
	Now func() time.Time
}

// Controller runs screen refreshes on a single loop goroutine. All state
// and ViewState changes happen inside Run; other goroutines only post
// events to it.
type Controller struct {
	gate       PermissionGate
	locator    Locator
	resolver   AddressResolver
	airQuality AirQualityFetcher
	apiKey     string

	renderer Renderer
	notifier Notifier
	screen   Screen

	messages     Messages
	zone         *time.Location
	logger       zerolog.Logger
	tracer       trace.Tracer
	metrics      *telemetry.RefreshMetrics
	onTransition func(Transition)
	now          func() time.Time

	events chan event
	done   chan struct{}

	// Owned by the loop goroutine.
	state       State
	generation  uint64
	view        presenter.ViewState
	refreshCtx  context.Context
	refreshID   string
	span        trace.Span
	started     time.Time
	lastOutcome State
	lastErr     error

	// prompt identifies the permission or settings dialog awaiting an
	// answer, zero when none is shown. A refresh started while it is
	// outstanding adopts it instead of prompting again.
	prompt  uint64
	prompts uint64

	mu       sync.RWMutex
	snapshot Snapshot
}

type event any

type refreshRequested struct {
	trigger string
}

type permissionAnswered struct {
	prompt  uint64
	outcome permission.Outcome
}

type servicesResolved struct {
	prompt     uint64
	resolution permission.ServicesResolution
}

type located struct {
	gen    uint64
	coords location.Coordinates
	ok     bool
}

type addressResolved struct {
	gen  uint64
	addr *geocode.Address
	err  error
}

type airQualityFetched struct {
	gen    uint64
	result airquality.Result
}

// NewController creates a controller in StateIdle.
func NewController(cfg Config) (*Controller, error) {
	switch {
	case cfg.Gate == nil:
		return nil, errors.New("refresh: permission gate is required")
	case cfg.Locator == nil:
		return nil, errors.New("refresh: locator is required")
	case cfg.Resolver == nil:
		return nil, errors.New("refresh: address resolver is required")
	case cfg.AirQuality == nil:
		return nil, errors.New("refresh: air quality fetcher is required")
	}

	metrics := cfg.Metrics
	if metrics == nil {
		var err error
		if metrics, err = telemetry.NewRefreshMetrics(nil); err != nil {
			return nil, err
		}
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = telemetry.Tracer(telemetry.RefreshMeterName)
	}

	messages := MessagesFor("en")
	if cfg.Messages != nil {
		messages = *cfg.Messages
	}

	zone := cfg.Zone
	if zone == nil {
		zone = presenter.DisplayZone(9)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	c := &Controller{
		gate:         cfg.Gate,
		locator:      cfg.Locator,
		resolver:     cfg.Resolver,
		airQuality:   cfg.AirQuality,
		apiKey:       cfg.APIKey,
		renderer:     cfg.Renderer,
		notifier:     cfg.Notifier,
		screen:       cfg.Screen,
		messages:     messages,
		zone:         zone,
		logger:       cfg.Logger,
		tracer:       tracer,
		metrics:      metrics,
		onTransition: cfg.OnTransition,
		now:          now,
		events:       make(chan event, eventBuffer),
		done:         make(chan struct{}),
	}
	c.publish()
	return c, nil
}

// Launch posts the refresh that runs when the screen opens.
func (c *Controller) Launch() bool {
	return c.send(refreshRequested{trigger: TriggerLaunch})
}

// Refresh posts a manual refresh. It supersedes any refresh in flight. It
// returns false once the loop has stopped.
func (c *Controller) Refresh() bool {
	return c.send(refreshRequested{trigger: TriggerManual})
}

// Snapshot returns the latest published state. Safe for concurrent use.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Done is closed when Run returns.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Run processes events until ctx is cancelled or a terminal outcome closes
// the screen, in which case it returns ErrClosed. Run must be called once.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			if c.span != nil {
				c.endRefresh("cancelled", ctx.Err())
			}
			return ctx.Err()
		case ev := <-c.events:
			c.handle(ctx, ev)
			c.publish()
			if c.state == StateClosed {
				return ErrClosed
			}
		}
	}
}

func (c *Controller) send(ev event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

// deliver posts an async completion back to the loop.
func (c *Controller) deliver(ctx context.Context, ev event) {
	select {
	case c.events <- ev:
	case <-ctx.Done():
	case <-c.done:
	}
}

func (c *Controller) handle(ctx context.Context, ev event) {
	switch ev := ev.(type) {
	case refreshRequested:
		c.startRefresh(ctx, ev.trigger)
	case permissionAnswered:
		if c.answered(ctx, ev.prompt, "permission") {
			c.onPermission(ctx, ev.outcome)
		}
	case servicesResolved:
		if c.answered(ctx, ev.prompt, "services") {
			c.onServices(ctx, ev.resolution)
		}
	case located:
		if !c.stale(ctx, ev.gen, "location") {
			c.onLocated(ev.coords, ev.ok)
		}
	case addressResolved:
		if !c.stale(ctx, ev.gen, "address") {
			c.onAddress(ev.addr, ev.err)
		}
	case airQualityFetched:
		if !c.stale(ctx, ev.gen, "air_quality") {
			c.onAirQuality(ev.result)
		}
	}
}

// stale reports whether a completion belongs to a superseded refresh.
func (c *Controller) stale(ctx context.Context, gen uint64, name string) bool {
	if gen == c.generation && c.state != StateClosed {
		return false
	}
	c.logger.Debug().
		Uint64("generation", gen).
		Uint64("current", c.generation).
		Str("event", name).
		Msg("dropping stale result")
	c.metrics.RecordStaleDrop(ctx, name)
	return true
}

// answered reports whether a dialog answer belongs to the outstanding prompt
// and clears it when it does.
func (c *Controller) answered(ctx context.Context, prompt uint64, name string) bool {
	if prompt == c.prompt && c.state != StateClosed {
		c.prompt = 0
		return true
	}
	c.logger.Debug().
		Uint64("prompt", prompt).
		Uint64("outstanding", c.prompt).
		Str("event", name).
		Msg("dropping stale result")
	c.metrics.RecordStaleDrop(ctx, name)
	return false
}

func (c *Controller) startRefresh(ctx context.Context, trigger string) {
	if c.state == StateClosed {
		c.logger.Debug().Str("trigger", trigger).Msg("refresh ignored, screen closed")
		return
	}
	if c.span != nil {
		c.endRefresh("superseded", nil)
	}

	c.generation++
	c.started = c.now()
	c.refreshID = uuid.NewString()
	c.refreshCtx, c.span = c.tracer.Start(ctx, "screen.refresh", trace.WithAttributes(
		attribute.String("refresh.id", c.refreshID),
		attribute.Int64("refresh.generation", int64(c.generation)),
		attribute.String("refresh.trigger", trigger),
	))
	c.metrics.RecordStart(ctx, trigger)

	c.logger.Info().
		Str("refresh_id", c.refreshID).
		Uint64("generation", c.generation).
		Str("trigger", trigger).
		Msg("refresh started")

	if c.prompt != 0 {
		c.logger.Debug().
			Uint64("generation", c.generation).
			Uint64("prompt", c.prompt).
			Msg("awaiting outstanding prompt")
		return
	}

	c.transition(StateCheckingPermissions)

	rctx := c.refreshCtx
	decision := c.gate.CheckAndRequest(rctx)

	switch decision.Outcome {
	case permission.OutcomeGranted:
		c.locate()
	case permission.OutcomeServicesDisabled:
		c.transition(StateServicesPrompt)
		prompt := c.openPrompt()
		resolution := c.gate.ResolveServices(rctx)
		go func() {
			select {
			case r := <-resolution:
				c.deliver(rctx, servicesResolved{prompt: prompt, resolution: r})
			case <-rctx.Done():
			}
		}()
	case permission.OutcomePendingUserAction:
		c.transition(StateRequestingPermission)
		prompt := c.openPrompt()
		go func() {
			select {
			case o := <-decision.Pending:
				c.deliver(rctx, permissionAnswered{prompt: prompt, outcome: o})
			case <-rctx.Done():
			}
		}()
	default:
		c.onPermission(ctx, decision.Outcome)
	}
}

func (c *Controller) openPrompt() uint64 {
	c.prompts++
	c.prompt = c.prompts
	return c.prompt
}

func (c *Controller) onPermission(ctx context.Context, outcome permission.Outcome) {
	c.logger.Debug().
		Uint64("generation", c.generation).
		Str("outcome", outcome.String()).
		Msg("permission answered")

	switch outcome {
	case permission.OutcomeGranted:
		c.endRefresh("restarted", nil)
		c.transition(StateIdle)
		c.startRefresh(ctx, TriggerPermissionGranted)
	case permission.OutcomeDenied:
		c.terminate(permission.ErrPermissionDenied)
	default:
		// The dialog went away without answers; wait for the next refresh.
		c.abort(outcome.String())
	}
}

func (c *Controller) onServices(ctx context.Context, resolution permission.ServicesResolution) {
	c.logger.Debug().
		Uint64("generation", c.generation).
		Str("resolution", resolution.String()).
		Msg("location settings resolved")

	switch resolution {
	case permission.ResolutionEnabled:
		c.endRefresh("restarted", nil)
		c.transition(StateIdle)
		c.startRefresh(ctx, TriggerServicesEnabled)
	case permission.ResolutionStillDisabled:
		c.terminate(permission.ErrLocationServicesDisabled)
	case permission.ResolutionDeclined:
		c.fail(permission.ErrLocationServicesDisabled, NoticeWarning, "services_declined")
	default:
		c.abort(resolution.String())
	}
}

func (c *Controller) locate() {
	c.transition(StateLocatingAndResolving)

	rctx := c.refreshCtx
	gen := c.generation
	go func() {
		coords, ok := c.locator.Current(rctx)
		c.deliver(rctx, located{gen: gen, coords: coords, ok: ok})
	}()
}

func (c *Controller) onLocated(coords location.Coordinates, ok bool) {
	if !ok {
		c.fail(location.ErrCoordinatesUnavailable, NoticeError, "coordinates_unavailable")
		return
	}

	rctx := c.refreshCtx
	gen := c.generation

	go func() {
		addr, err := c.resolver.Resolve(rctx, coords.Lat, coords.Lon)
		c.deliver(rctx, addressResolved{gen: gen, addr: addr, err: err})
	}()

	result := c.airQuality.Fetch(rctx, coords, c.apiKey)
	go func() {
		select {
		case r := <-result:
			c.deliver(rctx, airQualityFetched{gen: gen, result: r})
		case <-rctx.Done():
		}
	}()

	c.transition(StateFetchingAirQuality)
}

// onAddress applies the address lines. Failures are reported but never end
// the refresh.
func (c *Controller) onAddress(addr *geocode.Address, err error) {
	if err != nil {
		c.logger.Warn().Err(err).Uint64("generation", c.generation).Msg("address resolution failed")
		c.metrics.RecordFailure(c.refreshCtx, "address")
		c.notify(NoticeWarning, c.messages.ForError(err), err)
		return
	}
	if addr == nil {
		return
	}

	c.view = c.view.WithAddress(*addr)
	c.render()
}

func (c *Controller) onAirQuality(result airquality.Result) {
	if result.Err != nil {
		reason := "air_quality"
		var fetchErr *airquality.FetchError
		if errors.As(result.Err, &fetchErr) {
			reason = "air_quality_" + fetchErr.Kind.String()
		}
		// Pollution fields keep their previous values.
		c.fail(result.Err, NoticeError, reason)
		return
	}

	c.view = c.view.WithReading(result.Reading, c.zone)
	c.render()
	c.notify(NoticeInfo, c.messages.Updated, nil)

	c.transition(StateDone)
	c.lastOutcome = StateDone
	c.lastErr = nil
	c.endRefresh("done", nil)
	c.transition(StateIdle)
}

// fail reports err and returns to Idle.
func (c *Controller) fail(err error, level NoticeLevel, reason string) {
	c.logger.Warn().
		Err(err).
		Uint64("generation", c.generation).
		Str("reason", reason).
		Msg("refresh failed")

	c.transition(StateFailed)
	c.lastOutcome = StateFailed
	c.lastErr = err
	c.metrics.RecordFailure(c.refreshCtx, reason)
	c.notify(level, c.messages.ForError(err), err)
	c.endRefresh("failed", err)
	c.transition(StateIdle)
}

// abort returns to Idle without a notice.
func (c *Controller) abort(reason string) {
	c.logger.Info().
		Uint64("generation", c.generation).
		Str("reason", reason).
		Msg("refresh abandoned")

	c.endRefresh(reason, nil)
	c.transition(StateIdle)
}

// terminate reports err and closes the screen. No refresh runs afterwards.
func (c *Controller) terminate(err error) {
	c.logger.Error().
		Err(err).
		Uint64("generation", c.generation).
		Msg("terminal failure, closing screen")

	c.transition(StateFailed)
	c.lastOutcome = StateFailed
	c.lastErr = err
	c.metrics.RecordFailure(c.refreshCtx, "terminal")
	c.notify(NoticeError, c.messages.ForError(err), err)
	c.endRefresh("closed", err)

	if c.screen != nil {
		c.screen.Close()
	}
	c.transition(StateClosed)
}

func (c *Controller) endRefresh(outcome string, err error) {
	if c.span == nil {
		return
	}
	elapsed := c.now().Sub(c.started)
	c.metrics.RecordFinished(c.refreshCtx, outcome, elapsed)
	c.logger.Debug().
		Str("refresh_id", c.refreshID).
		Uint64("generation", c.generation).
		Str("outcome", outcome).
		Dur("elapsed", elapsed).
		Msg("refresh finished")

	c.span.SetAttributes(attribute.String("refresh.outcome", outcome))
	if err != nil {
		c.span.RecordError(err)
		c.span.SetStatus(codes.Error, outcome)
	}
	c.span.End()
	c.span = nil
}

func (c *Controller) transition(to State) {
	from := c.state
	if from == to {
		return
	}
	c.state = to

	c.logger.Debug().
		Uint64("generation", c.generation).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("state transition")

	if c.onTransition != nil {
		c.onTransition(Transition{Generation: c.generation, From: from, To: to})
	}
}

func (c *Controller) render() {
	if c.renderer != nil {
		c.renderer.Render(c.view)
	}
}

func (c *Controller) notify(level NoticeLevel, text string, err error) {
	if c.span != nil {
		c.span.AddEvent("notice", trace.WithAttributes(
			attribute.String("notice.level", level.String()),
			attribute.String("notice.text", text),
		))
	}
	if c.notifier != nil {
		c.notifier.Notify(Notice{
			Generation: c.generation,
			Level:      level,
			Text:       text,
			Err:        err,
			At:         c.now(),
		})
	}
}

func (c *Controller) publish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = Snapshot{
		State:       c.state,
		Generation:  c.generation,
		View:        c.view,
		LastOutcome: c.lastOutcome,
		LastError:   c.lastErr,
	}
}
