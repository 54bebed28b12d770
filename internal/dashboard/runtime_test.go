package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanvivo/price-dashboard/internal/groups"
	"github.com/sanvivo/price-dashboard/internal/types"
	"github.com/sanvivo/price-dashboard/internal/viewmode"
)

type fakeGateway struct {
	current       types.Snapshot
	currentErr    error
	timestamps    types.TimestampIndex
	timestampsErr error
	historical    map[string]types.Snapshot
	historicalErr error

	// gate, when set, blocks historical fetches for the given timestamp
	// until it is closed.
	gate map[string]chan struct{}
}

func (f *fakeGateway) FetchCurrentPrices(ctx context.Context) (types.Snapshot, error) {
	return f.current, f.currentErr
}

func (f *fakeGateway) FetchTimestamps(ctx context.Context) (types.TimestampIndex, error) {
	return f.timestamps, f.timestampsErr
}

func (f *fakeGateway) FetchHistoricalPrices(ctx context.Context, ts string) (types.Snapshot, error) {
	if ch, ok := f.gate[ts]; ok {
		<-ch
	}
	if f.historicalErr != nil {
		return types.Snapshot{}, f.historicalErr
	}
	return f.historical[ts], nil
}

type fakeStore struct {
	mu      sync.Mutex
	loaded  groups.Collection
	saved   []groups.Collection
	saveErr error
}

func (f *fakeStore) Load(ctx context.Context) groups.Collection {
	return f.loaded
}

func (f *fakeStore) Save(ctx context.Context, c groups.Collection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, c)
	return f.saveErr
}

func TestStartLoadsGroupsAndTimestamps(t *testing.T) {
	loaded, _ := groups.New().AddGroup("Watch")
	gw := &fakeGateway{timestamps: types.TimestampIndex{Timestamps: []string{"b", "a"}}}
	rt := NewRuntime(Initial(nil), gw, &fakeStore{loaded: loaded})

	require.NoError(t, rt.Start(context.Background()))

	s := rt.State()
	assert.True(t, s.Groups.Has("Watch"))
	assert.Equal(t, []string{"b", "a"}, s.Timestamps)
	assert.Empty(t, s.Error)
}

func TestStartReportsTimestampFailure(t *testing.T) {
	gw := &fakeGateway{timestampsErr: errors.New("down")}
	rt := NewRuntime(Initial(nil), gw, &fakeStore{loaded: groups.New()})

	err := rt.Start(context.Background())
	assert.Error(t, err)
	assert.Equal(t, MsgLoadTimestampsFailed, rt.State().Error)
}

func TestFetchCurrentRefreshesTimestamps(t *testing.T) {
	gw := &fakeGateway{
		current:    types.Snapshot{Timestamp: "2024-05-01 10:00:00", Data: []types.PriceRow{row("p1", "A", "")}},
		timestamps: types.TimestampIndex{Timestamps: []string{"2024-05-01 10:00:00"}},
	}
	rt := NewRuntime(Initial(nil), gw, &fakeStore{loaded: groups.New()})

	_, effects := rt.Dispatch(FetchCurrent{})
	require.Len(t, effects, 1)
	rt.Wait()

	s := rt.State()
	assert.False(t, s.Loading)
	assert.Equal(t, "2024-05-01 10:00:00", s.SnapshotTimestamp)
	assert.Len(t, s.Rows, 1)
	assert.Equal(t, []string{"2024-05-01 10:00:00"}, s.Timestamps)
}

func TestFetchCurrentFailureClearsLoading(t *testing.T) {
	gw := &fakeGateway{currentErr: errors.New("boom")}
	rt := NewRuntime(Initial(nil), gw, &fakeStore{loaded: groups.New()})

	rt.Dispatch(FetchCurrent{})
	rt.Wait()

	s := rt.State()
	assert.False(t, s.Loading)
	assert.Equal(t, MsgFetchCurrentFailed, s.Error)
}

func TestTimestampRefreshFailureIsReported(t *testing.T) {
	gw := &fakeGateway{
		current:       types.Snapshot{Timestamp: "2024-05-01 10:00:00", Data: []types.PriceRow{row("p1", "A", "")}},
		timestampsErr: errors.New("boom"),
	}
	rt := NewRuntime(Initial(nil), gw, &fakeStore{loaded: groups.New()})

	rt.Dispatch(FetchCurrent{})
	rt.Wait()

	s := rt.State()
	assert.False(t, s.Loading)
	assert.Equal(t, MsgFetchCurrentFailed, s.Error)
	assert.Equal(t, "2024-05-01 10:00:00", s.SnapshotTimestamp, "received rows are kept")
	assert.Len(t, s.Rows, 1)
}

func TestAwaitReturnsWhenFetchFinishes(t *testing.T) {
	release := make(chan struct{})
	gw := &fakeGateway{
		historical: map[string]types.Snapshot{"a": {Timestamp: "a"}},
		gate:       map[string]chan struct{}{"a": release},
	}
	rt := NewRuntime(Initial(nil), gw, &fakeStore{loaded: groups.New()})

	_, effects := rt.Dispatch(LoadHistorical{Timestamp: "a"})
	token, ok := FetchToken(effects)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, rt.Await(ctx, token), context.DeadlineExceeded)

	close(release)
	require.NoError(t, rt.Await(context.Background(), token))
	assert.False(t, rt.State().Loading)
	assert.NoError(t, rt.Await(context.Background(), token), "finished tokens return at once")
}

func TestConcurrentDispatchAndAwait(t *testing.T) {
	gw := &fakeGateway{historical: map[string]types.Snapshot{}}
	rt := NewRuntime(Initial(nil), gw, &fakeStore{loaded: groups.New()})

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, effects := rt.Dispatch(LoadHistorical{Timestamp: "ts"})
			token, ok := FetchToken(effects)
			if assert.True(t, ok) {
				assert.NoError(t, rt.Await(context.Background(), token))
			}
		}()
	}
	wg.Wait()
	rt.Wait()

	assert.False(t, rt.State().Loading)
}

func TestFetchTokenIgnoresOtherEffects(t *testing.T) {
	_, ok := FetchToken([]Effect{WarnEffect{Message: "x"}, SaveGroupsEffect{Op: "add_group"}})
	assert.False(t, ok)

	token, ok := FetchToken([]Effect{FetchCurrentEffect{Token: 7}})
	assert.True(t, ok)
	assert.Equal(t, uint64(7), token)
}

func TestNewestHistoricalSelectionWins(t *testing.T) {
	release := make(chan struct{})
	gw := &fakeGateway{
		historical: map[string]types.Snapshot{
			"old": {Timestamp: "old", Data: []types.PriceRow{row("o", "A", "")}},
			"new": {Timestamp: "new", Data: []types.PriceRow{row("n", "A", "")}},
		},
		gate: map[string]chan struct{}{"old": release},
	}
	rt := NewRuntime(Initial(nil), gw, &fakeStore{loaded: groups.New()})

	rt.Dispatch(LoadHistorical{Timestamp: "old"})
	rt.Dispatch(LoadHistorical{Timestamp: "new"})
	close(release)
	rt.Wait()

	s := rt.State()
	assert.Equal(t, "new", s.SnapshotTimestamp)
	require.Len(t, s.Rows, 1)
	assert.Equal(t, "n", s.Rows[0].ID)
	assert.False(t, s.Loading)
}

func TestGroupMutationsArePersisted(t *testing.T) {
	store := &fakeStore{loaded: groups.New(), saveErr: errors.New("disk full")}
	rt := NewRuntime(Initial(nil), &fakeGateway{}, store)

	rt.Dispatch(AddGroup{Name: "Watch"})
	rt.Dispatch(AddProduct{ID: "p1", Group: "Watch"})
	rt.Dispatch(AddProduct{ID: "p1", Group: "Watch"})

	require.Len(t, store.saved, 2)
	assert.True(t, store.saved[1].Contains("p1", "Watch"))
	assert.True(t, rt.State().Groups.Contains("p1", "Watch"), "failed save keeps memory state")
}

func TestGroupOnlyViewThroughRuntime(t *testing.T) {
	gw := &fakeGateway{current: types.Snapshot{Data: []types.PriceRow{row("p1", "A", ""), row("p2", "B", "")}}}
	rt := NewRuntime(Initial(nil), gw, &fakeStore{loaded: groups.New()})

	rt.Dispatch(FetchCurrent{})
	rt.Wait()
	rt.Dispatch(AddProduct{ID: "p2", Group: groups.DefaultGroup})
	rt.Dispatch(SelectGroup{Name: groups.DefaultGroup})
	_, effects := rt.Dispatch(SetViewMode{Mode: viewmode.GroupOnly})
	_, rejected := IsRejected(effects)
	require.False(t, rejected)

	visible := rt.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "p2", visible[0].ID)
}
