package loadgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

// Soak holds a constant request rate against Target for Duration.
type Soak struct {
	Target   string
	Rate     vegeta.Rate
	Duration time.Duration
	Workers  uint64
	Timeout  time.Duration
}

// Run attacks until Duration elapses or ctx is done. Each result is passed to
// sink when it is not nil; a sink error stops the attack.
func (s *Soak) Run(ctx context.Context, sink func(*vegeta.Result) error) (*vegeta.Metrics, error) {
	if s.Target == "" {
		return nil, errors.New("loadgen: Target is required")
	}
	if s.Rate.Freq <= 0 || s.Rate.Per <= 0 {
		return nil, fmt.Errorf("loadgen: invalid rate %s", s.Rate)
	}

	workers := s.Workers
	if workers == 0 {
		workers = vegeta.DefaultWorkers
	}
	timeout := s.Timeout
	if timeout == 0 {
		timeout = vegeta.DefaultTimeout
	}

	atk := vegeta.NewAttacker(vegeta.Workers(workers), vegeta.Timeout(timeout))
	tr := vegeta.NewStaticTargeter(vegeta.Target{Method: http.MethodGet, URL: s.Target})
	res := atk.Attack(tr, s.Rate, s.Duration, "escrever")

	var m vegeta.Metrics
	var sinkErr error
	done := ctx.Done()
	for {
		select {
		case <-done:
			atk.Stop()
			// keep loop until 'res' is closed.
			done = nil
		case r, ok := <-res:
			if !ok {
				m.Close()
				return &m, sinkErr
			}
			m.Add(r)
			if sink != nil && sinkErr == nil {
				if err := sink(r); err != nil {
					sinkErr = fmt.Errorf("sink: %w", err)
					atk.Stop()
				}
			}
		}
	}
}
