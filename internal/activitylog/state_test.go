package activitylog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReduceFetchLifecycle(t *testing.T) {
	state := InitialState()
	require.Equal(t, StatusIdle, state.Status)
	require.True(t, state.NeedsFetch())

	state = Reduce(state, FetchStarted{})
	require.Equal(t, StatusLoading, state.Status)
	require.Equal(t, uint64(1), state.ListSeq)
	require.False(t, state.NeedsFetch())

	state = Reduce(state, FetchSucceeded{Seq: 1, Page: pageOf(120, 1, 2)})
	require.Equal(t, StatusSucceeded, state.Status)
	require.Len(t, state.Logs, 2)

	state = Reduce(state, FetchStarted{})
	failure := errors.New("boom")
	state = Reduce(state, FetchFailed{Seq: 2, Err: failure})
	require.Equal(t, StatusFailed, state.Status)
	require.Equal(t, failure, state.Err)
	require.Len(t, state.Logs, 2)
}

func TestReduceIgnoresStaleSequences(t *testing.T) {
	state := Reduce(Reduce(InitialState(), FetchStarted{}), FetchStarted{})

	stale := Reduce(state, FetchSucceeded{Seq: 1, Page: pageOf(9, 9)})
	require.Equal(t, StatusLoading, stale.Status)
	require.Empty(t, stale.Logs)

	stale = Reduce(state, FetchFailed{Seq: 1, Err: errors.New("late")})
	require.Equal(t, StatusLoading, stale.Status)
	require.NoError(t, stale.Err)
}

func TestReduceNeedsFetchComparesByValue(t *testing.T) {
	state := Reduce(InitialState(), FiltersApplied{Facets: Facets{ActivityType: "login"}})
	state = Reduce(state, FetchStarted{})

	state = Reduce(state, EditsCommitted{Filters: QueryFilters{Facets: Facets{ActivityType: "login"}, Limit: 50}})
	require.False(t, state.NeedsFetch(), "a recreated but equal filter set is not a change")

	state = Reduce(state, PageChanged{Page: PageInfo{Page: 2, PageSize: 50}})
	require.True(t, state.NeedsFetch())
}

func TestReduceFiltersAppliedClearsNamedFacets(t *testing.T) {
	state := InitialState()
	state.Filters.ActivityCategory = "food"
	state.Filters.Offset = 100

	next := Reduce(state, FiltersApplied{Facets: Facets{ActivityType: "expense_create"}, Cleared: []string{FacetActivityCategory, FacetActivityType}})

	require.Equal(t, DefaultFilters(), next.Filters)
}

func TestReducePurgeResetsFiltersAndSelection(t *testing.T) {
	state := Reduce(InitialState(), FiltersApplied{Facets: Facets{UserType: UserTypeUser}})
	state = Reduce(state, DetailStarted{})
	state = Reduce(state, DetailSucceeded{Seq: 1, Entry: Entry{LogID: 3}})
	require.NotNil(t, state.Selected)

	failed := Reduce(state, PurgeFailed{Err: errors.New("denied")})
	require.Equal(t, state.Filters, failed.Filters)
	require.NotNil(t, failed.Selected)

	purged := Reduce(state, PurgeSucceeded{})
	require.Equal(t, DefaultFilters(), purged.Filters)
	require.Nil(t, purged.Selected)
}

func TestReduceStatsSlotIsIndependent(t *testing.T) {
	state := Reduce(InitialState(), FetchStarted{})
	state = Reduce(state, FetchSucceeded{Seq: 1, Page: pageOf(1, 1)})

	state = Reduce(state, StatsStarted{})
	state = Reduce(state, StatsFailed{Seq: 1, Err: errors.New("stats down")})

	require.Equal(t, StatusFailed, state.StatsStatus)
	require.Equal(t, StatusSucceeded, state.Status)
	require.NoError(t, state.Err)
	require.Len(t, state.Logs, 1)
}
