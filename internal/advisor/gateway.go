// Package advisor turns ledger metrics plus a user question into a
// bounded-latency call against the generation provider, tolerating model
// deprecation, rate limiting and transient failures.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/portfolio-tracker/internal/domain"
	"github.com/dvloznov/portfolio-tracker/internal/genlang"
)

// Caller-facing advisory failures. The HTTP layer translates these into
// human-readable messages; provider status codes never leak past here.
var (
	ErrAdvisoryTimeout  = errors.New("advisory request timed out")
	ErrProviderRejected = errors.New("provider rejected the request")
	ErrNoReachableModel = errors.New("no reachable model")
)

// Generator is the provider call the gateway needs; satisfied by
// *genlang.Client and by fakes in tests.
type Generator interface {
	Generate(ctx context.Context, model string, contents []genlang.Content) (string, error)
}

// ModelResolver yields the priority-ordered model pool.
type ModelResolver interface {
	Pool(ctx context.Context) []string
}

// ReportSource produces the current derived metrics.
type ReportSource interface {
	Report(ctx context.Context) (domain.Report, error)
}

// RenderFunc flattens a report into the prompt's metrics block.
type RenderFunc func(domain.Report) string

// Options bound the retry/backoff loop and the whole-request deadline.
type Options struct {
	Timeout       time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
	QueueSize     int
}

type askRequest struct {
	id       string
	ctx      context.Context
	question string
	reply    chan askResult
}

type askResult struct {
	answer string
	err    error
}

// Gateway serializes advisory calls on a single background worker so slow
// or rate-limited provider traffic never blocks ledger operations, and
// enforces a hard wall-clock deadline per request.
type Gateway struct {
	client  Generator
	models  ModelResolver
	reports ReportSource
	render  RenderFunc
	window  *Window
	log     zerolog.Logger

	timeout       time.Duration
	retryAttempts int
	retryBackoff  time.Duration

	queue  chan askRequest
	cancel context.CancelFunc
	done   chan struct{}
}

func NewGateway(client Generator, models ModelResolver, reports ReportSource, render RenderFunc, window *Window, opts Options, log zerolog.Logger) *Gateway {
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}
	if opts.RetryAttempts < 1 {
		opts.RetryAttempts = 3
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 16
	}
	return &Gateway{
		client:        client,
		models:        models,
		reports:       reports,
		render:        render,
		window:        window,
		log:           log,
		timeout:       opts.Timeout,
		retryAttempts: opts.RetryAttempts,
		retryBackoff:  opts.RetryBackoff,
		queue:         make(chan askRequest, opts.QueueSize),
		done:          make(chan struct{}),
	}
}

// Start launches the background worker. Must be called once before Ask.
func (g *Gateway) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	go g.worker(ctx)
}

// Close stops the worker. In-flight requests finish via their own deadlines.
func (g *Gateway) Close() {
	if g.cancel != nil {
		g.cancel()
		<-g.done
	}
}

func (g *Gateway) worker(ctx context.Context) {
	defer close(g.done)
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-g.queue:
			if req.ctx.Err() != nil {
				// Caller already gave up while queued.
				continue
			}
			answer, err := g.process(req.ctx, req.question)
			req.reply <- askResult{answer: answer, err: err}
		}
	}
}

// Ask answers a free-text question about the portfolio. It never blocks
// past the configured timeout: on deadline expiry the in-flight provider
// call is abandoned and ErrAdvisoryTimeout is returned immediately.
func (g *Gateway) Ask(ctx context.Context, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := askRequest{
		id:       uuid.New().String(),
		ctx:      ctx,
		question: question,
		reply:    make(chan askResult, 1),
	}

	select {
	case g.queue <- req:
	case <-ctx.Done():
		return "", fmt.Errorf("%w: worker queue full", ErrAdvisoryTimeout)
	}

	select {
	case res := <-req.reply:
		if res.err != nil {
			return "", res.err
		}
		return res.answer, nil
	case <-ctx.Done():
		g.log.Warn().Str("request_id", req.id).Msg("Advisory request hit hard deadline")
		return "", ErrAdvisoryTimeout
	}
}

// ResetConversation clears the advisor's short-term memory.
func (g *Gateway) ResetConversation() {
	g.window.Reset()
}

// process runs the full request machine. The window is updated only on
// success; a failed attempt leaves prior context untouched.
func (g *Gateway) process(ctx context.Context, question string) (string, error) {
	report, err := g.reports.Report(ctx)
	if err != nil {
		return "", fmt.Errorf("reading metrics for prompt: %w", err)
	}

	contents := buildContents(g.render(report), g.window.Turns(), question)

	st := requestState{kind: stateResolving}
	for !st.terminal() {
		if ctx.Err() != nil {
			return "", ErrAdvisoryTimeout
		}
		st = g.advance(ctx, st, contents)
	}

	if st.kind == stateFailed {
		return "", g.classify(st.lastErr)
	}

	g.window.Append(Turn{Role: RoleUser, Text: question})
	g.window.Append(Turn{Role: RoleAssistant, Text: st.answer})
	return st.answer, nil
}

// classify normalizes terminal failures into the small caller-facing set.
func (g *Gateway) classify(err error) error {
	switch {
	case err == nil:
		return ErrNoReachableModel
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return ErrAdvisoryTimeout
	case errors.Is(err, genlang.ErrRateLimited):
		// Retries exhausted on every model in the pool.
		return fmt.Errorf("%w: rate limited after retries", ErrProviderRejected)
	default:
		var statusErr *genlang.StatusError
		if errors.As(err, &statusErr) {
			return fmt.Errorf("%w: status %d", ErrProviderRejected, statusErr.Code)
		}
		return fmt.Errorf("%w: %v", ErrNoReachableModel, err)
	}
}

// FailureMessage renders an advisory error as the text shown to the user.
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrAdvisoryTimeout):
		return "The advisor took too long to answer. Please try again."
	case errors.Is(err, ErrProviderRejected):
		return "The advice provider rejected the request. Please try again later."
	case errors.Is(err, ErrNoReachableModel):
		return "No advice model is reachable right now. Please try again later."
	default:
		return "The advisor is unavailable right now."
	}
}
