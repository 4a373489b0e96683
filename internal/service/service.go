package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/team-dashboard-api/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

// Latency emulates network round trips of a remote store. Zero disables it.
type Latency struct {
	Mutation time.Duration
	List     time.Duration
	Read     time.Duration
}

// DefaultLatency is the timing of the mock backend the dashboard was built against.
var DefaultLatency = Latency{
	Mutation: 300 * time.Millisecond,
	List:     300 * time.Millisecond,
	Read:     200 * time.Millisecond,
}

// Options configure both services.
type Options struct {
	Latency Latency
	// StrictDelete turns deletes of unknown ids into ErrorNotFound.
	StrictDelete bool
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// pause is the single suspension point of an operation. It ignores ctx:
// once started, an operation applies.
func pause(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

var zeroTime time.Time

type clock struct {
	now func() time.Time
}

func newClock(now func() time.Time) clock {
	if now == nil {
		now = time.Now
	}
	return clock{now: now}
}

// stamp returns the current time, strictly after prev.
func (c clock) stamp(prev time.Time) time.Time {
	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(prev) {
		t = prev.Add(time.Microsecond)
	}
	return t
}

// guard runs fn and turns a panic into an error, so nothing escapes the
// service boundary.
func guard[T any](op string, fn func() (T, error)) (T, error) {
	var (
		catcher panics.Catcher
		v       T
		err     error
	)
	catcher.Try(func() {
		v, err = fn()
	})
	if r := catcher.Recovered(); r != nil {
		var zero T
		return zero, fmt.Errorf("%s: %w", op, r.AsError())
	}
	return v, err
}

func logFailure(logger *zap.Logger, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	switch {
	case errors.Is(err, repo.ErrorNotFound), errors.Is(err, ErrValidation):
		logger.Warn(msg, fields...)
	default:
		logger.Error(msg, fields...)
	}
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
