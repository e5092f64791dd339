package activitylog

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// NotificationLevel classifies transient operator notifications.
type NotificationLevel string

// Notification levels.
const (
	NotificationInfo  NotificationLevel = "info"
	NotificationError NotificationLevel = "error"
)

// Notification is a one-shot message for the presentation layer.
type Notification struct {
	Level   NotificationLevel
	Message string
	Err     error
}

// notificationBuffer bounds undelivered notifications; newer ones are dropped once it is full.
const notificationBuffer = 16

// Option configures an Engine.
type Option func(*Engine)

// WithPrivileged marks the caller as an administrator, enabling statistics.
func WithPrivileged(privileged bool) Option {
	return func(e *Engine) {
		e.privileged = privileged
	}
}

// WithPermissions sets the feature permissions the taxonomy is resolved against.
func WithPermissions(perms Permissions) Option {
	return func(e *Engine) {
		e.perms = copyPermissions(perms)
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine coordinates filters, pagination, fetches and bulk invalidation for one operator session.
// It is safe for concurrent use; network calls run outside the state lock and stale responses are
// discarded by sequence number.
type Engine struct {
	source     Source
	logger     zerolog.Logger
	privileged bool
	perms      Permissions

	mu       sync.Mutex
	state    State
	taxonomy Taxonomy
	draft    EditBuffer

	notifications chan Notification
}

// New constructs an engine over source with default filters.
func New(source Source, opts ...Option) *Engine {
	e := &Engine{
		source: source,
		logger: zerolog.Nop(),
		perms:  Permissions{},
		state:  InitialState(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With().Str("component", "activity_log_engine").Logger()
	e.taxonomy = NewTaxonomy(e.perms)
	e.draft = EditBufferFrom(e.state.Filters)
	e.notifications = make(chan Notification, notificationBuffer)
	return e
}

// Snapshot is a consistent copy of the engine read model.
type Snapshot struct {
	Filters      QueryFilters
	Logs         []Entry
	Pagination   Pagination
	PageInfo     PageInfo
	Status       Status
	Err          error
	Stats        *Stats
	StatsStatus  Status
	StatsErr     error
	Selected     *Entry
	DetailStatus Status
	DetailErr    error
	Taxonomy     Taxonomy
	Draft        EditBuffer
	Privileged   bool
}

// Snapshot returns the current read model.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state
	snap := Snapshot{
		Filters:      s.Filters,
		Logs:         append([]Entry(nil), s.Logs...),
		Pagination:   s.Pagination,
		PageInfo:     s.PageInfo(),
		Status:       s.Status,
		Err:          s.Err,
		StatsStatus:  s.StatsStatus,
		StatsErr:     s.StatsErr,
		DetailStatus: s.DetailStatus,
		DetailErr:    s.DetailErr,
		Taxonomy:     e.taxonomy,
		Draft:        e.draft,
		Privileged:   e.privileged,
	}
	if s.Stats != nil {
		stats := *s.Stats
		snap.Stats = &stats
	}
	if s.Selected != nil {
		selected := *s.Selected
		snap.Selected = &selected
	}
	return snap
}

// Notifications delivers transient messages about failures and completed purges.
func (e *Engine) Notifications() <-chan Notification {
	return e.notifications
}

// Load performs the initial fetch of logs and, for privileged callers, statistics.
func (e *Engine) Load(ctx context.Context) error {
	return e.refreshAll(ctx)
}

// Refresh re-fetches the committed filters even if they have not changed.
func (e *Engine) Refresh(ctx context.Context) error {
	return e.refreshAll(ctx)
}

// ApplyFilters merges facets into the committed filters, returns to the first page and fetches
// when the result differs from the last issued query. Categories and types the caller cannot see
// are dropped from the merged filters. An invalid merge returns a *ValidationError and commits
// nothing.
func (e *Engine) ApplyFilters(ctx context.Context, facets Facets) error {
	if err := facets.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	merged := SetFilters(e.state.Filters, facets)
	if err := merged.Validate(); err != nil {
		e.mu.Unlock()
		return err
	}
	hidden := e.taxonomy.Hidden(merged.Facets)
	if len(hidden) > 0 {
		e.logger.Debug().Strs("facets", hidden).Msg("cleared facets hidden by permissions")
	}
	e.state = Reduce(e.state, FiltersApplied{Facets: facets, Cleared: hidden})
	e.draft = EditBufferFrom(e.state.Filters)
	e.mu.Unlock()

	return e.syncLogs(ctx, false)
}

// ApplyEdits validates buf, drops facets no longer visible, and commits it as the new filters.
// Invalid input returns a *ValidationError and commits nothing.
func (e *Engine) ApplyEdits(ctx context.Context, buf EditBuffer) error {
	return e.applyEdits(ctx, buf, 1)
}

func (e *Engine) applyEdits(ctx context.Context, buf EditBuffer, page int) error {
	e.mu.Lock()
	if cleared := e.taxonomy.Prune(&buf); len(cleared) > 0 {
		e.logger.Debug().Strs("facets", cleared).Msg("cleared facets hidden by permissions")
	}
	filters, err := ApplyEdits(buf)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.state = Reduce(e.state, EditsCommitted{Filters: filters})
	if page > 1 {
		e.state = Reduce(e.state, PageChanged{Page: PageInfo{Page: page, PageSize: e.state.Filters.Limit}})
	}
	e.draft = EditBufferFrom(e.state.Filters)
	e.mu.Unlock()

	return e.syncLogs(ctx, false)
}

// Draft returns the engine-held edit buffer.
func (e *Engine) Draft() EditBuffer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// SetDraft replaces the edit buffer and returns the facets cleared because they are not visible.
func (e *Engine) SetDraft(buf EditBuffer) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	cleared := e.taxonomy.Prune(&buf)
	e.draft = buf
	return cleared
}

// ApplyDraft commits the engine-held edit buffer.
func (e *Engine) ApplyDraft(ctx context.Context) error {
	return e.ApplyEdits(ctx, e.Draft())
}

// ApplyDraftAt commits the engine-held edit buffer and opens the given 1-indexed page in a
// single fetch.
func (e *Engine) ApplyDraftAt(ctx context.Context, page int) error {
	return e.applyEdits(ctx, e.Draft(), page)
}

// SetPermissions re-resolves the taxonomy and clears draft facets that are no longer visible. The
// committed filters are left alone until the next apply.
func (e *Engine) SetPermissions(perms Permissions) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.perms = copyPermissions(perms)
	e.taxonomy = NewTaxonomy(e.perms)
	return e.taxonomy.Prune(&e.draft)
}

// Taxonomy returns the categories and types visible to the caller.
func (e *Engine) Taxonomy() Taxonomy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.taxonomy
}

// ResetFilters returns to the default filters.
func (e *Engine) ResetFilters(ctx context.Context) error {
	e.mu.Lock()
	e.state = Reduce(e.state, FiltersReset{})
	e.draft = EditBufferFrom(e.state.Filters)
	e.mu.Unlock()

	return e.syncLogs(ctx, false)
}

// ChangePage moves to another page, keeping every committed facet.
func (e *Engine) ChangePage(ctx context.Context, page PageInfo) error {
	e.mu.Lock()
	e.state = Reduce(e.state, PageChanged{Page: page})
	e.mu.Unlock()

	return e.syncLogs(ctx, false)
}

// ViewDetails loads one entry into the selected slot. Unknown ids return a *NotFoundError.
func (e *Engine) ViewDetails(ctx context.Context, id int64) (Entry, error) {
	seq := e.begin(DetailStarted{}, func(s State) uint64 { return s.DetailSeq })

	entry, err := e.source.FetchLogByID(ctx, id)
	if err != nil {
		err = normalizeError("load activity log", err)
		if e.finish(DetailFailed{Seq: seq, Err: err}, seq, func(s State) uint64 { return s.DetailSeq }) {
			e.notify(NotificationError, err)
		}
		return Entry{}, err
	}

	e.finish(DetailSucceeded{Seq: seq, Entry: entry}, seq, func(s State) uint64 { return s.DetailSeq })
	return entry, nil
}

// ClearDetails empties the selected slot.
func (e *Engine) ClearDetails() {
	e.mu.Lock()
	e.state = Reduce(e.state, DetailCleared{})
	e.mu.Unlock()
}

// DeleteAll removes every log and re-synchronises the derived views: logs are re-fetched with the
// default filters and, for privileged callers, statistics are re-fetched concurrently. On failure no
// state other than the last error changes. The returned error only reports the destructive call;
// refresh failures are recorded in state and notifications.
func (e *Engine) DeleteAll(ctx context.Context) error {
	message, err := e.source.DeleteAll(ctx)
	if err != nil {
		err = normalizeError("delete activity logs", err)
		e.mu.Lock()
		e.state = Reduce(e.state, PurgeFailed{Err: err})
		e.mu.Unlock()
		e.notify(NotificationError, err)
		return err
	}

	e.mu.Lock()
	e.state = Reduce(e.state, PurgeSucceeded{})
	e.draft = EditBufferFrom(e.state.Filters)
	e.mu.Unlock()

	if message == "" {
		message = "all activity logs deleted"
	}
	e.logger.Info().Str("message", message).Msg("activity logs purged")
	e.publish(Notification{Level: NotificationInfo, Message: message})

	if err := e.refreshAll(ctx); err != nil {
		e.logger.Warn().Err(err).Msg("refresh after purge failed")
	}
	return nil
}

func (e *Engine) refreshAll(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		return e.syncLogs(ctx, true)
	})
	if e.privileged {
		g.Go(func() error {
			return e.syncStats(ctx)
		})
	}
	return g.Wait()
}

func (e *Engine) syncLogs(ctx context.Context, force bool) error {
	e.mu.Lock()
	if !force && !e.state.NeedsFetch() {
		e.mu.Unlock()
		return nil
	}
	e.state = Reduce(e.state, FetchStarted{})
	seq := e.state.ListSeq
	filters := e.state.Filters
	e.mu.Unlock()

	e.logger.Debug().Uint64("seq", seq).Str("query", filters.Values().Encode()).Msg("fetching activity logs")

	page, err := e.source.FetchLogs(ctx, filters)
	if err != nil {
		err = normalizeError("load activity logs", err)
		if e.finish(FetchFailed{Seq: seq, Err: err}, seq, func(s State) uint64 { return s.ListSeq }) {
			e.logger.Warn().Err(err).Uint64("seq", seq).Msg("activity log fetch failed")
			e.notify(NotificationError, err)
		}
		return err
	}

	if !e.finish(FetchSucceeded{Seq: seq, Page: page}, seq, func(s State) uint64 { return s.ListSeq }) {
		e.logger.Debug().Uint64("seq", seq).Msg("discarded superseded activity log response")
	}
	return nil
}

func (e *Engine) syncStats(ctx context.Context) error {
	if !e.privileged {
		return nil
	}

	seq := e.begin(StatsStarted{}, func(s State) uint64 { return s.StatsSeq })

	stats, err := e.source.FetchStats(ctx)
	if err != nil {
		err = normalizeError("load activity statistics", err)
		if e.finish(StatsFailed{Seq: seq, Err: err}, seq, func(s State) uint64 { return s.StatsSeq }) {
			e.notify(NotificationError, err)
		}
		return err
	}

	e.finish(StatsSucceeded{Seq: seq, Stats: stats}, seq, func(s State) uint64 { return s.StatsSeq })
	return nil
}

// begin dispatches a start action and returns the sequence number it assigned.
func (e *Engine) begin(action Action, seqOf func(State) uint64) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Reduce(e.state, action)
	return seqOf(e.state)
}

// finish dispatches a completion action and reports whether it was still the latest request.
func (e *Engine) finish(action Action, seq uint64, seqOf func(State) uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	current := seqOf(e.state) == seq
	e.state = Reduce(e.state, action)
	return current
}

func (e *Engine) notify(level NotificationLevel, err error) {
	e.publish(Notification{Level: level, Message: err.Error(), Err: err})
}

func (e *Engine) publish(n Notification) {
	select {
	case e.notifications <- n:
	default:
		e.logger.Debug().Str("message", n.Message).Msg("notification dropped")
	}
}

func copyPermissions(perms Permissions) Permissions {
	copied := make(Permissions, len(perms))
	for key, value := range perms {
		copied[key] = value
	}
	return copied
}
