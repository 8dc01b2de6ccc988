// Package attack replays the four demonstration attacks against a running
// server and reports whether each one was defended.
package attack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tckz/go-vuln-defense/internal/loadgen"
	"github.com/tckz/go-vuln-defense/internal/log"
	"go.uber.org/zap"
)

const (
	XSSPayload       = "<script>alert('XSS');</script>"
	TraversalPayload = "../../etc/passwd"

	maxBodyBytes = 1 << 20
)

type Outcome struct {
	Name     string
	Defended bool
	Detail   string
}

type Attacker struct {
	// BaseURL is the server root, e.g. http://localhost:5000.
	BaseURL string
	// SourceDir is scanned by HardcodedSecret.
	SourceDir string
	// RaceRequests is the fan-out of the race attack.
	RaceRequests int

	Client *http.Client
	Logger *zap.Logger
}

type step struct {
	name string
	run  func(ctx context.Context) (Outcome, error)
}

func (a *Attacker) steps() []step {
	return []step{
		{"xss", a.XSS},
		{"traversal", a.PathTraversal},
		{"secret", a.HardcodedSecret},
		{"race", a.Race},
	}
}

// Names lists the attacks in the order RunAll runs them.
func (a *Attacker) Names() []string {
	var r []string
	for _, s := range a.steps() {
		r = append(r, s.name)
	}
	return r
}

// Run executes the named attacks, all of them when names is empty.
// A failing attack is reported and the remaining ones still run.
func (a *Attacker) Run(ctx context.Context, names ...string) ([]Outcome, error) {
	want := map[string]bool{}
	for _, n := range names {
		want[n] = true
	}

	logger := log.OrNop(a.Logger)
	var outcomes []Outcome
	var errs []error
	for _, s := range a.steps() {
		if len(want) > 0 && !want[s.name] {
			continue
		}
		delete(want, s.name)

		o, err := s.run(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		logger.Info("attack finished",
			zap.String("attack", o.Name),
			zap.Bool("defended", o.Defended),
			zap.String("detail", o.Detail))
		outcomes = append(outcomes, o)
	}
	for n := range want {
		errs = append(errs, fmt.Errorf("unknown attack: %s", n))
	}
	return outcomes, errors.Join(errs...)
}

func (a *Attacker) client() *http.Client {
	if a.Client != nil {
		return a.Client
	}
	return http.DefaultClient
}

func (a *Attacker) endpoint(path string) string {
	return strings.TrimRight(a.BaseURL, "/") + path
}

func (a *Attacker) do(req *http.Request) (int, string, error) {
	resp, err := a.client().Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, "", fmt.Errorf("io.ReadAll: %w", err)
	}
	return resp.StatusCode, string(b), nil
}

// XSS posts a script tag as a comment. Defended when no script tag survives.
func (a *Attacker) XSS(ctx context.Context) (Outcome, error) {
	form := url.Values{"texto": {XSSPayload}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint("/comentario"), strings.NewReader(form.Encode()))
	if err != nil {
		return Outcome{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, body, err := a.do(req)
	if err != nil {
		return Outcome{}, err
	}
	reflected := strings.Contains(strings.ToLower(body), "<script")
	return Outcome{
		Name:     "xss",
		Defended: !reflected,
		Detail:   fmt.Sprintf("status=%d reflected=%t body=%q", status, reflected, truncate(body, 120)),
	}, nil
}

// PathTraversal asks for a file above the base directory.
// Defended when the server answers 400 without file content.
func (a *Attacker) PathTraversal(ctx context.Context) (Outcome, error) {
	u := a.endpoint("/abrir") + "?" + url.Values{"arquivo": {TraversalPayload}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Outcome{}, err
	}

	status, body, err := a.do(req)
	if err != nil {
		return Outcome{}, err
	}
	leaked := strings.Contains(body, "root:")
	return Outcome{
		Name:     "traversal",
		Defended: status == http.StatusBadRequest && !leaked,
		Detail:   fmt.Sprintf("status=%d leaked=%t body=%q", status, leaked, truncate(body, 120)),
	}, nil
}

// Race fires RaceRequests concurrent increments.
// Defended when the returned values are distinct and contiguous.
func (a *Attacker) Race(ctx context.Context) (Outcome, error) {
	n := a.RaceRequests
	if n <= 0 {
		n = 20
	}
	b := &loadgen.Burst{
		Target:      a.endpoint("/escrever"),
		Concurrency: n,
		Client:      a.client(),
		Logger:      a.Logger,
	}
	r, err := b.Run(ctx)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Name:     "race",
		Defended: r.Serialized(),
		Detail:   r.String(),
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
