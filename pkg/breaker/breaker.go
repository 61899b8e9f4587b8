package breaker

import (
	"errors"
	"time"

	"RiskReturn/pkg/logger"

	cb "github.com/sony/gobreaker"
)

// ErrOpen is returned while the breaker rejects calls.
var ErrOpen = errors.New("circuit breaker open")

type Settings struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
	// IsSuccessful classifies errors that should not count against the
	// upstream, e.g. "symbol not found".
	IsSuccessful func(err error) bool
}

type Breaker struct {
	cb *cb.CircuitBreaker
}

func New(s Settings, log *logger.Logger) *Breaker {
	if log == nil {
		log = logger.Nop()
	}
	st := cb.Settings{
		Name:         s.Name,
		MaxRequests:  s.MaxRequests,
		Interval:     s.Interval,
		Timeout:      s.Timeout,
		IsSuccessful: s.IsSuccessful,
	}
	minReq, ratio := s.MinRequests, s.FailureRatio
	st.ReadyToTrip = func(counts cb.Counts) bool {
		if counts.ConsecutiveFailures >= 3 {
			return true
		}
		if counts.Requests < minReq || ratio <= 0 {
			return false
		}
		return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
	}
	st.OnStateChange = func(name string, from, to cb.State) {
		log.Warn("circuit breaker state change",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	}
	return &Breaker{cb: cb.NewCircuitBreaker(st)}
}

// Do runs fn through the breaker. Open and half-open rejections map to ErrOpen.
func (b *Breaker) Do(fn func() error) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	if errors.Is(err, cb.ErrOpenState) || errors.Is(err, cb.ErrTooManyRequests) {
		return ErrOpen
	}
	return err
}

// State reports the current state name: closed, half-open or open.
func (b *Breaker) State() string {
	return b.cb.State().String()
}
