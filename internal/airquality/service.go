package airquality

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/giljurha/Airvisual/internal/location"
)

// Source is an air quality provider answering for the nearest city.
// Implementations return *FetchError on failure.
type Source interface {
	NearestCity(ctx context.Context, coords location.Coordinates, apiKey string) (PollutionReading, error)
}

// ServiceConfig holds configuration for the air quality service.
type ServiceConfig struct {
	// Source is the air quality data provider.
	Source Source

	// Logger for service operations.
	Logger zerolog.Logger

	// RateLimit is the sustained requests per second allowed against the
	// provider. Fetches over the limit wait for a token. Zero disables
	// client-side limiting.
	RateLimit float64

	// Burst is the number of requests allowed at once (default: 1).
	Burst int
}

// Service runs single-attempt fetches in the background.
type Service struct {
	source  Source
	logger  zerolog.Logger
	limiter *rate.Limiter
}

// NewService creates a new air quality service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		source: cfg.Source,
		logger: cfg.Logger,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return s
}

// Fetch starts one request for coords on a background goroutine. The
// returned channel delivers exactly one Result and is never closed early.
func (s *Service) Fetch(ctx context.Context, coords location.Coordinates, apiKey string) <-chan Result {
	out := make(chan Result, 1)

	go func() {
		start := time.Now()
		reading, err := s.fetch(ctx, coords, apiKey)
		if err != nil {
			s.logFailure(err, coords, time.Since(start))
			out <- Result{Err: err}
			return
		}

		s.logger.Info().
			Int("aqius", reading.AQIUS()).
			Time("ts", reading.Timestamp()).
			Dur("duration", time.Since(start)).
			Msg("air quality fetched")
		out <- Result{Reading: reading}
	}()

	return out
}

func (s *Service) fetch(ctx context.Context, coords location.Coordinates, apiKey string) (PollutionReading, error) {
	if s.limiter != nil {
		// The request is delayed, never dropped, unless ctx ends first.
		if err := s.limiter.Wait(ctx); err != nil {
			return PollutionReading{}, &FetchError{Kind: KindTransport, Err: fmt.Errorf("%w: %w", ErrRateLimited, err)}
		}
	}

	reading, err := s.source.NearestCity(ctx, coords, apiKey)
	if err == nil {
		return reading, nil
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return PollutionReading{}, fetchErr
	}
	return PollutionReading{}, &FetchError{Kind: KindTransport, Err: err}
}

func (s *Service) logFailure(err error, coords location.Coordinates, d time.Duration) {
	var fetchErr *FetchError
	kind := KindTransport
	if errors.As(err, &fetchErr) {
		kind = fetchErr.Kind
	}

	event := s.logger.Warn()
	if kind == KindTransport && !errors.Is(err, ErrRateLimited) {
		// Unexpected transport failures are logged at error level.
		event = s.logger.Error()
	}
	event.Err(err).
		Str("kind", kind.String()).
		Str("coords", coords.String()).
		Dur("duration", d).
		Msg("air quality fetch failed")
}
