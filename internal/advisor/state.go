package advisor

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/portfolio-tracker/internal/genlang"
)

// The request lifecycle is an explicit state machine:
//
//	resolving -> requesting -> succeeded
//	                        -> retrying     (rate limit, same model)
//	                        -> fallingBack  (other failure, next model)
//	retrying -> requesting
//	fallingBack -> requesting | failed (pool exhausted)
//
// advance performs exactly one transition, which keeps every edge
// unit-testable with a scripted fake client.
type stateKind int

const (
	stateResolving stateKind = iota
	stateRequesting
	stateRetrying
	stateFallingBack
	stateSucceeded
	stateFailed
)

type requestState struct {
	kind     stateKind
	pool     []string
	modelIdx int
	attempt  int // calls issued to the current model
	answer   string
	lastErr  error
}

func (s requestState) terminal() bool {
	return s.kind == stateSucceeded || s.kind == stateFailed
}

func (s requestState) model() string {
	return s.pool[s.modelIdx]
}

// advance executes one transition of the machine.
func (g *Gateway) advance(ctx context.Context, st requestState, contents []genlang.Content) requestState {
	switch st.kind {
	case stateResolving:
		st.pool = g.models.Pool(ctx)
		if len(st.pool) == 0 {
			st.kind = stateFailed
			st.lastErr = ErrNoReachableModel
			return st
		}
		st.kind = stateRequesting

	case stateRequesting:
		st.attempt++
		answer, err := g.client.Generate(ctx, st.model(), contents)
		if err == nil {
			st.kind = stateSucceeded
			st.answer = answer
			return st
		}
		st.lastErr = err
		if ctx.Err() != nil {
			st.kind = stateFailed
			st.lastErr = ctx.Err()
			return st
		}
		if errors.Is(err, genlang.ErrRateLimited) && st.attempt < g.retryAttempts {
			st.kind = stateRetrying
		} else {
			st.kind = stateFallingBack
		}

	case stateRetrying:
		g.log.Warn().Str("model", st.model()).Int("attempt", st.attempt).
			Msg("Rate limited, backing off before retry")
		select {
		case <-ctx.Done():
			st.kind = stateFailed
			st.lastErr = ctx.Err()
		case <-time.After(g.retryBackoff):
			st.kind = stateRequesting
		}

	case stateFallingBack:
		g.log.Warn().Err(st.lastErr).Str("model", st.model()).
			Msg("Model failed, advancing to next in pool")
		st.modelIdx++
		st.attempt = 0
		if st.modelIdx >= len(st.pool) {
			st.kind = stateFailed
		} else {
			st.kind = stateRequesting
		}
	}
	return st
}
