package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sanvivo/price-dashboard/internal/groups"
	"github.com/sanvivo/price-dashboard/internal/metrics"
	"github.com/sanvivo/price-dashboard/internal/types"
)

// Gateway is the remote data source the runtime fetches from.
type Gateway interface {
	FetchCurrentPrices(ctx context.Context) (types.Snapshot, error)
	FetchTimestamps(ctx context.Context) (types.TimestampIndex, error)
	FetchHistoricalPrices(ctx context.Context, ts string) (types.Snapshot, error)
}

// GroupStore persists the group collection.
type GroupStore interface {
	Load(ctx context.Context) groups.Collection
	Save(ctx context.Context, c groups.Collection) error
}

// Option customizes a Runtime.
type Option func(*Runtime)

// WithMetrics attaches a metrics recorder.
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(r *Runtime) { r.metrics = recorder }
}

// WithLogger attaches a logger. A nil logger keeps the default no-op one.
func WithLogger(logger *zerolog.Logger) Option {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runtime owns a State and serializes every transition through Dispatch.
// Fetches run in their own goroutines and report back by dispatching
// completion actions.
type Runtime struct {
	gateway Gateway
	store   GroupStore
	metrics *metrics.Recorder
	logger  *zerolog.Logger

	mu    sync.Mutex
	state State
	ctx   context.Context
	done  map[uint64]chan struct{}

	// inflight tracks every fetch goroutine for shutdown only.
	inflight sync.WaitGroup
}

// NewRuntime creates a runtime starting from initial.
func NewRuntime(initial State, gateway Gateway, store GroupStore, opts ...Option) *Runtime {
	nop := zerolog.Nop()
	r := &Runtime{
		gateway: gateway,
		store:   store,
		logger:  &nop,
		state:   initial,
		ctx:     context.Background(),
		done:    make(map[uint64]chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start loads the persisted groups and the snapshot index concurrently.
// A failed index load is reported in State.Error and returned.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	r.ctx = ctx
	r.mu.Unlock()

	var loaded groups.Collection
	var index types.TimestampIndex
	var indexErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loaded = r.store.Load(gctx)
		return nil
	})
	g.Go(func() error {
		index, indexErr = r.gateway.FetchTimestamps(gctx)
		return nil
	})
	_ = g.Wait()

	r.Dispatch(GroupsLoaded{Groups: loaded})
	if indexErr != nil {
		r.logger.Error().Err(indexErr).Msg("Failed to load timestamps")
		r.Dispatch(FetchFailed{Message: MsgLoadTimestampsFailed})
		return fmt.Errorf("failed to load timestamps: %w", indexErr)
	}
	r.Dispatch(TimestampsReceived{Index: index})
	return nil
}

// State returns the current state.
func (r *Runtime) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Visible returns the filtered rows of the current state.
func (r *Runtime) Visible() []types.PriceRow {
	rows := r.State().Visible()
	r.metrics.RecordVisibleRows(len(rows))
	return rows
}

// Dispatch reduces a into the state and performs the resulting effects. It
// returns the state and effects of this transition.
func (r *Runtime) Dispatch(a Action) (State, []Effect) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if Stale(r.state, a) {
		r.metrics.RecordStaleResponse(staleOp(a))
		r.logger.Debug().Str("action", fmt.Sprintf("%T", a)).Msg("Discarding stale fetch result")
	}

	next, effects := Reduce(r.state, a)
	r.state = next

	for _, eff := range effects {
		switch e := eff.(type) {
		case FetchCurrentEffect:
			r.track(e.Token)
			go r.fetchCurrent(r.ctx, e.Token)
		case FetchHistoricalEffect:
			r.track(e.Token)
			go r.fetchHistorical(r.ctx, e.Token, e.Timestamp)
		case SaveGroupsEffect:
			r.metrics.RecordGroupMutation(e.Op)
			// The in-memory collection stays authoritative when the write fails.
			if err := r.store.Save(r.ctx, e.Groups); err != nil {
				r.logger.Error().Err(err).Str("op", e.Op).Msg("Failed to persist groups")
			}
		case WarnEffect:
			r.logger.Warn().Msg(e.Message)
		}
	}

	return next, effects
}

// Wait blocks until every in-flight fetch has finished. It is meant for
// shutdown and one-shot callers; concurrent callers use Await.
func (r *Runtime) Wait() {
	r.inflight.Wait()
}

// Await blocks until the fetch started with token has finished or ctx is
// done. A token that is unknown or already finished returns immediately.
func (r *Runtime) Await(ctx context.Context, token uint64) error {
	r.mu.Lock()
	ch, ok := r.done[token]
	r.mu.Unlock()
	if !ok {
		return nil
	}

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// track registers a fetch goroutine. Callers hold r.mu.
func (r *Runtime) track(token uint64) {
	r.inflight.Add(1)
	r.done[token] = make(chan struct{})
}

// complete releases the waiters of token.
func (r *Runtime) complete(token uint64) {
	r.mu.Lock()
	ch, ok := r.done[token]
	delete(r.done, token)
	r.mu.Unlock()
	if ok {
		close(ch)
	}
	r.inflight.Done()
}

func (r *Runtime) fetchCurrent(ctx context.Context, token uint64) {
	defer r.complete(token)
	defer r.Dispatch(FetchFinished{Token: token})

	snapshot, err := r.gateway.FetchCurrentPrices(ctx)
	if err != nil {
		r.logger.Error().Err(err).Uint64("token", token).Msg("Failed to fetch current prices")
		r.Dispatch(FetchFailed{Token: token, Message: MsgFetchCurrentFailed})
		return
	}
	r.Dispatch(SnapshotReceived{Token: token, Snapshot: snapshot})

	index, err := r.gateway.FetchTimestamps(ctx)
	if err != nil {
		// The new rows stay; the failed refresh is reported like a failed fetch.
		r.logger.Error().Err(err).Uint64("token", token).Msg("Failed to refresh timestamps")
		r.Dispatch(FetchFailed{Token: token, Message: MsgFetchCurrentFailed})
		return
	}
	r.Dispatch(TimestampsReceived{Token: token, Index: index})
}

func (r *Runtime) fetchHistorical(ctx context.Context, token uint64, ts string) {
	defer r.complete(token)
	defer r.Dispatch(FetchFinished{Token: token})

	snapshot, err := r.gateway.FetchHistoricalPrices(ctx, ts)
	if err != nil {
		r.logger.Error().Err(err).Str("timestamp", ts).Msg("Failed to load historical prices")
		r.Dispatch(FetchFailed{Token: token, Message: fmt.Sprintf(MsgLoadHistoricalFailed, ts)})
		return
	}
	if snapshot.Timestamp == "" {
		snapshot.Timestamp = ts
	}
	r.Dispatch(SnapshotReceived{Token: token, Snapshot: snapshot})
}

func staleOp(a Action) string {
	switch a.(type) {
	case SnapshotReceived:
		return "snapshot"
	case TimestampsReceived:
		return "timestamps"
	case FetchFailed:
		return "failure"
	default:
		return "unknown"
	}
}

// IsRejected reports whether effects contain a warning, meaning the action
// was refused.
func IsRejected(effects []Effect) (string, bool) {
	for _, eff := range effects {
		if w, ok := eff.(WarnEffect); ok {
			return w.Message, true
		}
	}
	return "", false
}

// FetchToken returns the token of the fetch started by effects, if any.
func FetchToken(effects []Effect) (uint64, bool) {
	for _, eff := range effects {
		switch e := eff.(type) {
		case FetchCurrentEffect:
			return e.Token, true
		case FetchHistoricalEffect:
			return e.Token, true
		}
	}
	return 0, false
}

// Changed reports whether effects persist a group mutation.
func Changed(effects []Effect) bool {
	for _, eff := range effects {
		if _, ok := eff.(SaveGroupsEffect); ok {
			return true
		}
	}
	return false
}
