package storage

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sbilibin2017/netflox-api/internal/logger"
)

// State names the store currently answering queries.
type State int32

const (
	StatePrimary State = iota
	StateFallback
)

func (s State) String() string {
	if s == StateFallback {
		return "fallback"
	}
	return "primary"
}

// Router sends queries to the primary store until the first connectivity failure,
// then to the fallback store for the rest of the process lifetime.
// Only Restore moves it back.
type Router struct {
	primary  Backend
	fallback Backend
	state    atomic.Int32
}

// NewRouter creates a router. A nil primary starts the router in StateFallback.
func NewRouter(primary, fallback Backend) *Router {
	r := &Router{
		primary:  primary,
		fallback: fallback,
	}
	if primary == nil {
		r.state.Store(int32(StateFallback))
	}
	return r
}

// State returns the current routing state.
func (r *Router) State() State {
	return State(r.state.Load())
}

// Probe checks the primary at startup: it must answer a ping and accept the schema.
// Any failure switches to the fallback, unless ctx itself ended first.
func (r *Router) Probe(ctx context.Context) State {
	if r.State() == StateFallback {
		return StateFallback
	}

	err := r.primary.Ping(ctx)
	if err == nil {
		_, err = r.primary.Execute(ctx, Query{Kind: KindCreateSchema})
	}
	if err != nil {
		if ctx.Err() == nil {
			r.failover(err)
		}
		return r.State()
	}

	logger.Log.Infow("credential store ready", "backend", r.primary.Name())
	return StatePrimary
}

// Execute runs q on the active store. Connectivity failures on the primary switch
// the router to the fallback and retry q there; every other error is returned as is.
// A failure seen after ctx was cancelled or timed out says nothing about the store
// and never switches.
func (r *Router) Execute(ctx context.Context, q Query) (*Result, error) {
	if r.State() == StatePrimary {
		res, err := r.primary.Execute(ctx, q)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, ErrConnectivity) || ctx.Err() != nil {
			return nil, err
		}
		r.failover(err)
	}

	return r.fallback.Execute(ctx, q)
}

// failover is safe to call from many goroutines; only the first caller logs.
func (r *Router) failover(cause error) {
	if r.state.CompareAndSwap(int32(StatePrimary), int32(StateFallback)) {
		logger.Log.Warnw("primary credential store unavailable, switching to fallback",
			"primary", r.primary.Name(),
			"fallback", r.fallback.Name(),
			"error", cause,
		)
	}
}

// Restore pings the primary and, if it answers, routes queries back to it.
// Rows written to the fallback meanwhile are not copied.
func (r *Router) Restore(ctx context.Context) error {
	if r.primary == nil {
		return ErrNoPrimary
	}
	if r.State() == StatePrimary {
		return nil
	}
	if err := r.primary.Ping(ctx); err != nil {
		return err
	}

	if r.state.CompareAndSwap(int32(StateFallback), int32(StatePrimary)) {
		logger.Log.Infow("primary credential store restored", "primary", r.primary.Name())
	}
	return nil
}

// WatchPrimary calls Restore every interval while the router is in StateFallback.
// It blocks until ctx is done.
func (r *Router) WatchPrimary(ctx context.Context, interval time.Duration) {
	if r.primary == nil || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if r.State() != StateFallback {
				continue
			}
			if err := r.Restore(ctx); err != nil {
				logger.Log.Debugw("primary credential store still unavailable", "error", err)
			}
		}
	}
}

// Close closes both stores.
func (r *Router) Close() error {
	var errs []error
	if r.primary != nil {
		errs = append(errs, r.primary.Close())
	}
	if r.fallback != nil {
		errs = append(errs, r.fallback.Close())
	}
	return errors.Join(errs...)
}
