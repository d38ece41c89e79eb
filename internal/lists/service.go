// internal/lists/service.go
package lists

import (
	"context"
	"errors"
	"sync"
	"time"

	commonerrors "homecare-admin/internal/common/errors"
	"homecare-admin/internal/common/logger"
	"homecare-admin/internal/common/metrics"
	"homecare-admin/internal/common/observability"
	"homecare-admin/internal/mapper"
	"homecare-admin/internal/models"
	"homecare-admin/internal/view"
)

var errActionUnsupported = errors.New("action not supported on this list")

// Service owns the in-memory row state for one list view. The row array is
// only ever replaced wholesale (fetch) or patched on exactly one row
// (confirmed decision), both under the mutex.
type Service struct {
	src      Source
	bus      *Bus
	cache    *CountCache
	obs      *observability.Observability
	log      logger.Logger
	now      func() time.Time
	debounce time.Duration
	pageSize int

	ctx context.Context

	mu          sync.Mutex
	rows        []view.Row
	counts      models.Counts
	countsLocal bool // counts carries an optimistic shift not yet reconciled
	sortState   view.SortState
	status    string
	search    string
	lastError string
	gen       uint64
	timer     *time.Timer
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithDebounce(d time.Duration) Option {
	return func(s *Service) { s.debounce = d }
}

func WithPageSize(n int) Option {
	return func(s *Service) { s.pageSize = n }
}

func WithObservability(obs *observability.Observability) Option {
	return func(s *Service) { s.obs = obs }
}

func NewService(ctx context.Context, src Source, bus *Bus, cache *CountCache, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		src:      src,
		bus:      bus,
		cache:    cache,
		log:      log.WithFields(map[string]interface{}{"list": src.Name()}),
		now:      time.Now,
		debounce: 400 * time.Millisecond,
		pageSize: view.DefaultPageSize,
		ctx:      ctx,
		status:   "all",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start subscribes the service to cross-view invalidations.
func (s *Service) Start() {
	if s.bus == nil {
		return
	}
	s.bus.Subscribe(s.ctx, func(topic string) {
		if topic != s.src.Name() && topic != TopicAll {
			return
		}
		if err := s.Refresh(s.ctx); err != nil {
			s.log.Warn("invalidation refresh failed", map[string]interface{}{"error": err.Error()})
		}
	})
}

// Refresh refetches the list with the current status tab and search term.
// A generation token is taken before the call and compared after it, so a
// response superseded by a newer fetch is discarded instead of overwriting
// fresher rows.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	status := s.status
	search := s.search
	s.mu.Unlock()

	started := s.now()
	rows, err := s.src.Fetch(ctx, status, search)
	elapsed := time.Since(started)

	metrics.ListFetchDuration.WithLabelValues(s.src.Name()).Observe(elapsed.Seconds())
	if s.obs != nil {
		s.obs.RecordRefreshDuration(ctx, s.src.Name(), elapsed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		metrics.StaleResponsesDiscarded.WithLabelValues(s.src.Name()).Inc()
		s.log.Debug("stale response discarded", map[string]interface{}{"gen": gen})
		return nil
	}

	if err != nil {
		// Cleared, not left stale, so the view shows the error alone.
		s.rows = nil
		s.lastError = commonerrors.UserMessage(err)
		metrics.ListFetchesTotal.WithLabelValues(s.src.Name(), "error").Inc()
		if s.obs != nil {
			s.obs.RecordRefresh(ctx, s.src.Name(), "error")
		}
		return err
	}

	s.rows = rows
	s.lastError = ""
	metrics.ListFetchesTotal.WithLabelValues(s.src.Name(), "success").Inc()
	if s.obs != nil {
		s.obs.RecordRefresh(ctx, s.src.Name(), "success")
	}
	return nil
}

// Ensure aligns the fetched rows with the requested tab and search term,
// refetching only when either changed or nothing has loaded yet.
func (s *Service) Ensure(ctx context.Context, status, search string) error {
	if status == "" {
		status = "all"
	}
	s.mu.Lock()
	changed := s.status != status || s.search != search
	unloaded := s.rows == nil && s.lastError == ""
	s.status = status
	s.search = search
	s.mu.Unlock()

	if changed || unloaded {
		return s.Refresh(ctx)
	}
	return nil
}

// SetStatusTab switches the status filter and refetches immediately.
func (s *Service) SetStatusTab(ctx context.Context, status string) error {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// Search records the term and schedules a debounced refetch. Typing within
// the debounce window resets the timer; only the final term reaches the
// backend.
func (s *Service) Search(term string) {
	s.mu.Lock()
	s.search = term
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		ctx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			s.log.Warn("search refresh failed", map[string]interface{}{"error": err.Error()})
		}
	})
	s.mu.Unlock()
}

// View derives one page from the current rows. The pipeline recomputes from
// scratch; the virtual expired status is evaluated against the clock now.
func (s *Service) View(q view.Query) view.Result {
	s.mu.Lock()
	rows := append([]view.Row(nil), s.rows...)
	s.mu.Unlock()

	if q.PageSize <= 0 {
		q.PageSize = s.pageSize
	}
	return view.Apply(rows, q, s.now())
}

// ToggleSort flips or switches the sort key, returning the new state.
func (s *Service) ToggleSort(key string) view.SortState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortState.Toggle(key)
	return s.sortState
}

func (s *Service) SortState() view.SortState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortState
}

// LastError returns the user-visible message of the most recent failed
// fetch, or "".
func (s *Service) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Counts returns status counts. An optimistically shifted local value is
// served first, until a reconciliation fetch replaces it; otherwise the
// cache, then the backend.
func (s *Service) Counts(ctx context.Context) (models.Counts, error) {
	s.mu.Lock()
	if s.countsLocal {
		counts := s.counts
		s.mu.Unlock()
		return counts, nil
	}
	s.mu.Unlock()

	if s.cache != nil {
		if counts, ok := s.cache.Get(ctx, s.src.Name()); ok {
			return counts, nil
		}
	}

	counts, err := s.src.Counts(ctx)
	if err != nil {
		return models.Counts{}, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, s.src.Name(), counts)
	}

	s.mu.Lock()
	s.counts = counts
	s.mu.Unlock()
	return counts, nil
}

// Approve confirms with the backend first, then applies the optimistic
// single-row patch and count shift. Rows whose derived status suppresses
// actions are rejected before the backend is asked. On failure nothing
// local changes and the error goes back to the caller.
func (s *Service) Approve(ctx context.Context, id string) error {
	if err := s.actionable(id, "approve"); err != nil {
		metrics.DecisionActionsTotal.WithLabelValues(s.src.Name(), "approve", "rejected").Inc()
		return err
	}
	if err := s.src.Approve(ctx, id); err != nil {
		metrics.DecisionActionsTotal.WithLabelValues(s.src.Name(), "approve", "error").Inc()
		return err
	}

	metrics.DecisionActionsTotal.WithLabelValues(s.src.Name(), "approve", "success").Inc()
	s.patchRow(id, models.StatusApproved, models.Decision{})
	s.afterMutation(ctx)
	return nil
}

// Decline confirms with the backend first, then patches the row with the
// decision the backend echoed. Errors are returned so the confirmation
// dialog keeps its drafted reason.
func (s *Service) Decline(ctx context.Context, id string, d models.Decision) error {
	if err := s.actionable(id, "decline"); err != nil {
		metrics.DecisionActionsTotal.WithLabelValues(s.src.Name(), "decline", "rejected").Inc()
		return err
	}
	decided, err := s.src.Decline(ctx, id, d)
	if err != nil {
		metrics.DecisionActionsTotal.WithLabelValues(s.src.Name(), "decline", "error").Inc()
		return err
	}

	metrics.DecisionActionsTotal.WithLabelValues(s.src.Name(), "decline", "success").Inc()
	s.patchRow(id, models.StatusDeclined, decided)
	s.afterMutation(ctx)
	return nil
}

// patchable is the mutation surface both row types expose.
type patchable interface {
	RowID() string
	ApplyDecision(models.PersistedStatus, models.Decision)
}

// actionGated is implemented by rows whose derived status can suppress
// decisions, evaluated against the clock at action time.
type actionGated interface {
	RowID() string
	ActionsEnabled(time.Time) bool
}

// actionable rejects a decision on a loaded row the derived status has
// already taken out of play, such as an expired pending request. Rows not
// loaded locally pass through; the backend stays the final authority.
func (s *Service) actionable(id, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		g, ok := row.(actionGated)
		if !ok || g.RowID() != id {
			continue
		}
		if !g.ActionsEnabled(s.now()) {
			return commonerrors.NewActionRejectedError(action,
				"This request has expired and can no longer be "+action+"d")
		}
		return nil
	}
	return nil
}

func (s *Service) patchRow(id string, status models.PersistedStatus, d models.Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		p, ok := row.(patchable)
		if !ok || p.RowID() != id {
			continue
		}
		p.ApplyDecision(status, d)
		s.counts = s.counts.Shift(status)
		s.countsLocal = true
		return
	}
}

// afterMutation invalidates the cached counts, broadcasts the change to
// sibling views, and reconciles counts against the backend rather than
// trusting the optimistic shift alone. Until the reconciliation fetch
// succeeds, Counts keeps serving the shifted local value.
func (s *Service) afterMutation(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, s.src.Name())
	}
	if s.bus != nil {
		if err := s.bus.Publish(ctx, s.src.Name()); err != nil {
			s.log.Warn("invalidation publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if err := s.reconcileCounts(ctx); err != nil {
		s.log.Warn("count reconciliation failed", map[string]interface{}{"error": err.Error()})
	}
}

// reconcileCounts refetches authoritative counts and retires the optimistic
// local shift.
func (s *Service) reconcileCounts(ctx context.Context) error {
	counts, err := s.src.Counts(ctx)
	if err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Set(ctx, s.src.Name(), counts)
	}

	s.mu.Lock()
	s.counts = counts
	s.countsLocal = false
	s.mu.Unlock()
	return nil
}

// HydrateRequestDetail merges a lazily fetched group detail into the
// matching service request row and returns the enriched row. When the row
// is no longer loaded the detail is mapped standalone.
func (s *Service) HydrateRequestDetail(groupID string, detail map[string]interface{}) view.Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		r, ok := row.(*models.RequestRow)
		if !ok || r.RequestGroupID != groupID {
			continue
		}
		return mapper.MergeGroupDetail(r, detail)
	}
	return mapper.ServiceRequest(detail)
}

// Close stops any pending debounced refetch.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
}
