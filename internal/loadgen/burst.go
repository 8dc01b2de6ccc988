// Package loadgen drives concurrent traffic at the counter endpoint.
package loadgen

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tckz/go-vuln-defense/internal/log"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// HeaderCounterValue carries the value returned by the counter endpoint.
const HeaderCounterValue = "X-Counter-Value"

// Burst fires Concurrency plain GET requests at Target, all released at the
// same instant, and waits for every one of them. Requests are not retried
// and a failure does not cancel the others.
type Burst struct {
	Target      string
	Concurrency int
	Client      *http.Client
	Logger      *zap.Logger
}

type Hit struct {
	Status   int
	Value    int64
	HasValue bool
	Latency  time.Duration
	Err      error
}

func (b *Burst) Run(ctx context.Context) (*Report, error) {
	if b.Target == "" {
		return nil, errors.New("loadgen: Target is required")
	}
	if b.Concurrency <= 0 {
		return nil, errors.New("loadgen: Concurrency must be positive")
	}
	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}
	logger := log.OrNop(b.Logger)

	hits := make([]Hit, b.Concurrency)
	gate := make(chan struct{})

	var eg errgroup.Group
	for i := 0; i < b.Concurrency; i++ {
		i := i
		eg.Go(func() error {
			<-gate
			hits[i] = hit(ctx, client, b.Target)
			if hits[i].Err != nil {
				logger.Debug("hit failed", zap.Int("index", i), zap.Error(hits[i].Err))
			}
			return nil
		})
	}

	logger.Info("firing", zap.String("target", b.Target), zap.Int("concurrency", b.Concurrency))
	start := time.Now()
	close(gate)
	eg.Wait()

	return newReport(b.Target, hits, time.Since(start)), nil
}

func hit(ctx context.Context, client *http.Client, target string) Hit {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Hit{Err: err}
	}
	req.Header.Set("X-Request-Id", uuid.New().String())

	resp, err := client.Do(req)
	if err != nil {
		return Hit{Err: err, Latency: time.Since(start)}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	h := Hit{Status: resp.StatusCode, Latency: time.Since(start)}
	if s := resp.Header.Get(HeaderCounterValue); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			h.Value, h.HasValue = v, true
		}
	}
	return h
}
