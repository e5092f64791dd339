package activitylog

// Status is the lifecycle of the list query.
type Status string

// List query states.
const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// State is the whole read model of the engine. It is only changed by Reduce.
type State struct {
	Filters    QueryFilters
	Logs       []Entry
	Pagination Pagination
	Status     Status
	Err        error

	// Issued is the last filter set a list fetch was started for.
	Issued    QueryFilters
	HasIssued bool
	ListSeq   uint64

	Stats        *Stats
	StatsStatus  Status
	StatsErr     error
	StatsSeq     uint64
	Selected     *Entry
	DetailStatus Status
	DetailErr    error
	DetailSeq    uint64
}

// InitialState returns the state of a freshly mounted engine.
func InitialState() State {
	return State{
		Filters:      DefaultFilters(),
		Pagination:   Pagination{Limit: DefaultLimit},
		Status:       StatusIdle,
		StatsStatus:  StatusIdle,
		DetailStatus: StatusIdle,
	}
}

// PageInfo projects the current pagination into the page view.
func (s State) PageInfo() PageInfo {
	return ToPageInfo(s.Pagination)
}

// NeedsFetch reports whether the committed filters differ by value from the last issued ones.
func (s State) NeedsFetch() bool {
	return !s.HasIssued || s.Filters != s.Issued
}

// Action is a tagged state transition.
type Action interface {
	isAction()
}

// FiltersApplied merges Facets into the committed filters and returns to the first page. Facets
// named in Cleared are emptied after the merge; the page size is kept.
type FiltersApplied struct {
	Facets  Facets
	Cleared []string
}

// EditsCommitted replaces the committed filters with a normalised edit buffer.
type EditsCommitted struct {
	Filters QueryFilters
}

// FiltersReset returns the committed filters to the defaults.
type FiltersReset struct{}

// PageChanged moves to another page while keeping every facet.
type PageChanged struct {
	Page PageInfo
}

// FetchStarted marks a list fetch for the committed filters as in flight.
type FetchStarted struct{}

// FetchSucceeded delivers a list response.
type FetchSucceeded struct {
	Seq  uint64
	Page Page
}

// FetchFailed delivers a list failure.
type FetchFailed struct {
	Seq uint64
	Err error
}

// StatsStarted marks a statistics fetch as in flight.
type StatsStarted struct{}

// StatsSucceeded delivers statistics.
type StatsSucceeded struct {
	Seq   uint64
	Stats Stats
}

// StatsFailed delivers a statistics failure.
type StatsFailed struct {
	Seq uint64
	Err error
}

// DetailStarted marks a detail lookup as in flight.
type DetailStarted struct{}

// DetailSucceeded fills the selected entry slot.
type DetailSucceeded struct {
	Seq   uint64
	Entry Entry
}

// DetailFailed delivers a detail failure.
type DetailFailed struct {
	Seq uint64
	Err error
}

// DetailCleared empties the selected entry slot.
type DetailCleared struct{}

// PurgeSucceeded records a completed delete-all and returns the filters to the defaults.
type PurgeSucceeded struct{}

// PurgeFailed records a failed delete-all. Nothing but the last error changes.
type PurgeFailed struct {
	Err error
}

func (FiltersApplied) isAction()  {}
func (EditsCommitted) isAction()  {}
func (FiltersReset) isAction()    {}
func (PageChanged) isAction()     {}
func (FetchStarted) isAction()    {}
func (FetchSucceeded) isAction()  {}
func (FetchFailed) isAction()     {}
func (StatsStarted) isAction()    {}
func (StatsSucceeded) isAction()  {}
func (StatsFailed) isAction()     {}
func (DetailStarted) isAction()   {}
func (DetailSucceeded) isAction() {}
func (DetailFailed) isAction()    {}
func (DetailCleared) isAction()   {}
func (PurgeSucceeded) isAction()  {}
func (PurgeFailed) isAction()     {}

// Reduce is the pure transition function of the engine. Responses carrying a sequence number older
// than the latest issued one are ignored.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case FiltersApplied:
		next := SetFilters(s.Filters, a.Facets)
		next.Facets = next.Facets.without(a.Cleared...)
		next.Offset = 0
		s.Filters = next.Normalize()

	case EditsCommitted:
		next := a.Filters
		next.Offset = 0
		s.Filters = next.Normalize()

	case FiltersReset:
		s.Filters = ClearFilters()

	case PageChanged:
		s.Filters = s.Filters.WithPaging(ToOffsetLimit(a.Page))

	case FetchStarted:
		s.ListSeq++
		s.Issued = s.Filters
		s.HasIssued = true
		s.Status = StatusLoading

	case FetchSucceeded:
		if a.Seq != s.ListSeq {
			return s
		}
		s.Logs = append([]Entry(nil), a.Page.Logs...)
		s.Pagination = a.Page.Pagination
		s.Status = StatusSucceeded
		s.Err = nil

	case FetchFailed:
		if a.Seq != s.ListSeq {
			return s
		}
		s.Status = StatusFailed
		s.Err = a.Err

	case StatsStarted:
		s.StatsSeq++
		s.StatsStatus = StatusLoading

	case StatsSucceeded:
		if a.Seq != s.StatsSeq {
			return s
		}
		stats := a.Stats
		s.Stats = &stats
		s.StatsStatus = StatusSucceeded
		s.StatsErr = nil

	case StatsFailed:
		if a.Seq != s.StatsSeq {
			return s
		}
		s.StatsStatus = StatusFailed
		s.StatsErr = a.Err

	case DetailStarted:
		s.DetailSeq++
		s.DetailStatus = StatusLoading

	case DetailSucceeded:
		if a.Seq != s.DetailSeq {
			return s
		}
		entry := a.Entry
		s.Selected = &entry
		s.DetailStatus = StatusSucceeded
		s.DetailErr = nil

	case DetailFailed:
		if a.Seq != s.DetailSeq {
			return s
		}
		s.DetailStatus = StatusFailed
		s.DetailErr = a.Err

	case DetailCleared:
		s.DetailSeq++
		s.Selected = nil
		s.DetailStatus = StatusIdle
		s.DetailErr = nil

	case PurgeSucceeded:
		s.Filters = ClearFilters()
		s.Selected = nil
		s.Err = nil

	case PurgeFailed:
		s.Err = a.Err
	}
	return s
}
