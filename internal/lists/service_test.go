// internal/lists/service_test.go
package lists

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homecare-admin/internal/common/database"
	commonerrors "homecare-admin/internal/common/errors"
	"homecare-admin/internal/common/logger"
	"homecare-admin/internal/models"
	"homecare-admin/internal/view"
)

// fakeSource is a scriptable Source for service tests.
type fakeSource struct {
	mu         sync.Mutex
	name       string
	rows       []view.Row
	fetchErr   error
	fetchGate  chan struct{} // when set, Fetch blocks until the gate closes
	fetches    int
	counts     models.Counts
	countsErr  error
	countCalls int
	approves   int
	approveErr error
	decided    models.Decision
	declineErr error
}

func (f *fakeSource) Name() string {
	if f.name == "" {
		return "applications"
	}
	return f.name
}

func (f *fakeSource) Fetch(ctx context.Context, status, q string) ([]view.Row, error) {
	f.mu.Lock()
	f.fetches++
	gate := f.fetchGate
	rows, err := f.rows, f.fetchErr
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return rows, err
}

func (f *fakeSource) Counts(ctx context.Context) (models.Counts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	return f.counts, f.countsErr
}

func (f *fakeSource) Approve(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approves++
	return f.approveErr
}

func (f *fakeSource) Decline(ctx context.Context, id string, d models.Decision) (models.Decision, error) {
	if f.declineErr != nil {
		return models.Decision{}, f.declineErr
	}
	return f.decided, nil
}

func (f *fakeSource) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func appRow(id string, status models.PersistedStatus) *models.ApplicationRow {
	return &models.ApplicationRow{ID: id, Status: status, FullName: "Row " + id, Search: "row " + id}
}

func reqRow(id string, status models.PersistedStatus, preferredDate string) *models.RequestRow {
	return &models.RequestRow{ID: id, Status: status, PreferredDate: preferredDate, FullName: "Req " + id, Search: "req " + id}
}

func newTestService(t *testing.T, src Source, opts ...Option) *Service {
	t.Helper()
	svc := NewService(context.Background(), src, nil, nil, logger.Nop(), opts...)
	t.Cleanup(svc.Close)
	return svc
}

func TestRefresh_ReplacesRowsWholesale(t *testing.T) {
	src := &fakeSource{rows: []view.Row{appRow("a", models.StatusPending), appRow("b", models.StatusPending)}}
	svc := newTestService(t, src)

	require.NoError(t, svc.Refresh(context.Background()))

	result := svc.View(view.Query{Status: "all"})
	assert.Equal(t, 2, result.Total)
	assert.Empty(t, svc.LastError())
}

func TestRefresh_FailureClearsRowsAndSetsError(t *testing.T) {
	src := &fakeSource{rows: []view.Row{appRow("a", models.StatusPending)}}
	svc := newTestService(t, src)
	require.NoError(t, svc.Refresh(context.Background()))

	src.mu.Lock()
	src.fetchErr = errors.New("backend down")
	src.mu.Unlock()

	assert.Error(t, svc.Refresh(context.Background()))
	assert.Zero(t, svc.View(view.Query{Status: "all"}).Total)
	assert.Equal(t, "Something went wrong. Please try again.", svc.LastError())
}

func TestRefresh_StaleResponseDiscarded(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{
		rows:      []view.Row{appRow("stale", models.StatusPending)},
		fetchGate: gate,
	}
	svc := newTestService(t, src)

	staleDone := make(chan error, 1)
	go func() {
		staleDone <- svc.Refresh(context.Background())
	}()

	// Wait for the slow fetch to be in flight.
	require.Eventually(t, func() bool { return src.fetchCount() == 1 }, time.Second, 5*time.Millisecond)

	// A newer fetch completes first with fresh rows.
	src.mu.Lock()
	src.fetchGate = nil
	src.rows = []view.Row{appRow("fresh-1", models.StatusPending), appRow("fresh-2", models.StatusPending)}
	src.mu.Unlock()
	require.NoError(t, svc.Refresh(context.Background()))

	// Now the slow response lands and must be dropped.
	close(gate)
	require.NoError(t, <-staleDone)

	result := svc.View(view.Query{Status: "all"})
	assert.Equal(t, 2, result.Total)
}

func TestEnsure_RefetchesOnlyOnChange(t *testing.T) {
	src := &fakeSource{rows: []view.Row{appRow("a", models.StatusPending)}}
	svc := newTestService(t, src)
	ctx := context.Background()

	require.NoError(t, svc.Ensure(ctx, "all", ""))
	assert.Equal(t, 1, src.fetchCount())

	// Same tab and term: no refetch.
	require.NoError(t, svc.Ensure(ctx, "all", ""))
	assert.Equal(t, 1, src.fetchCount())

	require.NoError(t, svc.Ensure(ctx, "pending", ""))
	assert.Equal(t, 2, src.fetchCount())

	require.NoError(t, svc.Ensure(ctx, "pending", "ana"))
	assert.Equal(t, 3, src.fetchCount())
}

func TestSearch_DebouncesToFinalTerm(t *testing.T) {
	src := &fakeSource{rows: []view.Row{appRow("a", models.StatusPending)}}
	svc := newTestService(t, src, WithDebounce(30*time.Millisecond))

	svc.Search("a")
	svc.Search("an")
	svc.Search("ana")

	assert.Eventually(t, func() bool { return src.fetchCount() == 1 }, time.Second, 5*time.Millisecond)

	// No second fetch fires after the window.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, src.fetchCount())
}

func TestApprove_PatchesOnlyAfterSuccess(t *testing.T) {
	src := &fakeSource{rows: []view.Row{appRow("a", models.StatusPending), appRow("b", models.StatusPending)}}
	svc := newTestService(t, src)
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	require.NoError(t, svc.Approve(ctx, "a"))

	pending := svc.View(view.Query{Status: "pending"})
	assert.Equal(t, 1, pending.Total)
	approved := svc.View(view.Query{Status: "approved"})
	require.Equal(t, 1, approved.Total)
	assert.Equal(t, "a", approved.Rows[0].(*models.ApplicationRow).ID)
}

func TestApprove_FailureLeavesRowsUntouched(t *testing.T) {
	src := &fakeSource{
		rows:       []view.Row{appRow("a", models.StatusPending)},
		approveErr: errors.New("rejected"),
	}
	svc := newTestService(t, src)
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	assert.Error(t, svc.Approve(ctx, "a"))
	assert.Equal(t, 1, svc.View(view.Query{Status: "pending"}).Total)
	assert.Zero(t, svc.View(view.Query{Status: "approved"}).Total)
}

func TestDecline_AppliesBackendDecision(t *testing.T) {
	decided := models.Decision{
		ReasonChoice: models.ReasonIncompleteDetails,
		DecidedAt:    "2026-08-30T10:00:00Z",
	}
	src := &fakeSource{
		rows:    []view.Row{appRow("a", models.StatusPending)},
		decided: decided,
	}
	svc := newTestService(t, src)
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	require.NoError(t, svc.Decline(ctx, "a", models.Decision{ReasonChoice: models.ReasonIncompleteDetails}))

	declined := svc.View(view.Query{Status: "declined"})
	require.Equal(t, 1, declined.Total)
	assert.Equal(t, decided, declined.Rows[0].(*models.ApplicationRow).Decision)
}

func TestDecline_FailureKeepsRow(t *testing.T) {
	src := &fakeSource{
		rows:       []view.Row{appRow("a", models.StatusPending)},
		declineErr: errors.New("validation failed"),
	}
	svc := newTestService(t, src)
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	assert.Error(t, svc.Decline(ctx, "a", models.Decision{}))
	assert.Equal(t, 1, svc.View(view.Query{Status: "pending"}).Total)
}

func TestApprove_ExpiredRequestRejectedLocally(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{
		name: "servicerequests",
		rows: []view.Row{
			reqRow("r1", models.StatusPending, "2026-08-01"),
			reqRow("r2", models.StatusPending, "2026-09-15"),
		},
	}
	svc := newTestService(t, src, WithClock(func() time.Time { return now }))
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	err := svc.Approve(ctx, "r1")
	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, commonerrors.ErrCodeActionRejected, stdErr.Code)

	// The backend was never asked and the row is untouched.
	assert.Zero(t, src.approves)
	expired := svc.View(view.Query{Status: "expired"})
	require.Equal(t, 1, expired.Total)
	assert.Equal(t, models.StatusPending, expired.Rows[0].(*models.RequestRow).Status)

	// A request still inside its preferred date approves normally.
	require.NoError(t, svc.Approve(ctx, "r2"))
	assert.Equal(t, 1, src.approves)
}

func TestDecline_ExpiredRequestRejectedLocally(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{
		name: "servicerequests",
		rows: []view.Row{reqRow("r1", models.StatusPending, "2026-08-01")},
	}
	svc := newTestService(t, src, WithClock(func() time.Time { return now }))
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	err := svc.Decline(ctx, "r1", models.Decision{ReasonChoice: models.ReasonIncompleteDetails})
	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, commonerrors.ErrCodeActionRejected, stdErr.Code)
	assert.Zero(t, svc.View(view.Query{Status: "declined"}).Total)
}

func TestCounts_ServesLocalShiftUntilReconciled(t *testing.T) {
	src := &fakeSource{
		rows:   []view.Row{appRow("a", models.StatusPending)},
		counts: models.Counts{Pending: 2, Approved: 1, Total: 3},
	}
	svc := newTestService(t, src)
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	primed, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, primed.Pending)

	// Reconciliation fails, so the optimistic shift keeps serving.
	src.mu.Lock()
	src.countsErr = errors.New("backend down")
	src.mu.Unlock()
	require.NoError(t, svc.Approve(ctx, "a"))

	calls := src.countCalls
	shifted, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, shifted.Pending)
	assert.Equal(t, 2, shifted.Approved)
	assert.Equal(t, calls, src.countCalls) // served locally, no backend trip

	// A successful reconciliation retires the local value.
	src.mu.Lock()
	src.countsErr = nil
	src.counts = models.Counts{Pending: 1, Approved: 2, Total: 3}
	src.rows = []view.Row{appRow("b", models.StatusPending)}
	src.mu.Unlock()
	require.NoError(t, svc.Refresh(ctx))
	require.NoError(t, svc.Approve(ctx, "b"))

	reconciled, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Counts{Pending: 1, Approved: 2, Total: 3}, reconciled)
}

func TestMutation_ReconcilesCounts(t *testing.T) {
	src := &fakeSource{
		rows:   []view.Row{appRow("a", models.StatusPending)},
		counts: models.Counts{Pending: 0, Approved: 1, Total: 1},
	}
	svc := newTestService(t, src)
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	before := src.countCalls
	require.NoError(t, svc.Approve(ctx, "a"))
	assert.Greater(t, src.countCalls, before)
}

func redisHarness(t *testing.T) (*miniredis.Miniredis, *database.RedisClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestCountCache_RoundTripAndInvalidate(t *testing.T) {
	mr, rdb := redisHarness(t)
	cache := NewCountCache(rdb, time.Minute)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "applications")
	assert.False(t, ok)

	want := models.Counts{Pending: 5, Approved: 2, Declined: 1, Total: 8}
	cache.Set(ctx, "applications", want)

	got, ok := cache.Get(ctx, "applications")
	require.True(t, ok)
	assert.Equal(t, want, got)

	// TTL expiry empties the cache.
	mr.FastForward(2 * time.Minute)
	_, ok = cache.Get(ctx, "applications")
	assert.False(t, ok)

	cache.Set(ctx, "applications", want)
	cache.Invalidate(ctx, "applications")
	_, ok = cache.Get(ctx, "applications")
	assert.False(t, ok)
}

func TestCounts_UsesCacheUntilInvalidated(t *testing.T) {
	_, rdb := redisHarness(t)
	cache := NewCountCache(rdb, time.Minute)

	src := &fakeSource{counts: models.Counts{Pending: 3, Total: 3}}
	svc := NewService(context.Background(), src, nil, cache, logger.Nop())
	t.Cleanup(svc.Close)
	ctx := context.Background()

	first, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Pending)
	assert.Equal(t, 1, src.countCalls)

	// Cache hit: no extra backend call.
	_, err = svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, src.countCalls)

	cache.Invalidate(ctx, src.Name())
	_, err = svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.countCalls)
}

func TestBus_CrossViewInvalidation(t *testing.T) {
	_, rdb := redisHarness(t)
	bus := NewBus(rdb.GetClient(), logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{name: "servicerequests", rows: []view.Row{}}
	svc := NewService(ctx, src, bus, nil, logger.Nop())
	t.Cleanup(svc.Close)
	svc.Start()

	// Give the subscriber a moment to attach.
	require.Eventually(t, func() bool {
		require.NoError(t, bus.Publish(ctx, TopicAll))
		return src.fetchCount() > 0
	}, 2*time.Second, 50*time.Millisecond)

	// A topic for another list does not trigger a refetch.
	time.Sleep(100 * time.Millisecond)
	fetched := src.fetchCount()
	require.NoError(t, bus.Publish(ctx, "applications"))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, fetched, src.fetchCount())
}

func TestCancellationsSource_ActionsUnsupported(t *testing.T) {
	src := &CancellationsSource{}
	err := src.Approve(context.Background(), "x")
	assert.ErrorIs(t, err, errActionUnsupported)

	_, err = src.Decline(context.Background(), "x", models.Decision{})
	assert.ErrorIs(t, err, errActionUnsupported)
}
