package activitylog

import (
	"context"
	"sync"
)

type fakeSource struct {
	mu sync.Mutex

	page     Page
	pageErr  error
	entries  map[int64]Entry
	stats    Stats
	statsErr error
	purgeErr error
	purgeMsg string

	// hooks let a test hold a fetch in flight.
	beforeFetch func(filters QueryFilters)

	fetched    []QueryFilters
	statsCalls int
	purgeCalls int
}

func (f *fakeSource) FetchLogs(ctx context.Context, filters QueryFilters) (Page, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, filters)
	hook := f.beforeFetch
	page, err := f.page, f.pageErr
	f.mu.Unlock()

	if hook != nil {
		hook(filters)
	}
	if err != nil {
		return Page{}, err
	}
	page.Pagination.Limit = filters.Limit
	page.Pagination.Offset = filters.Offset
	return page, nil
}

func (f *fakeSource) FetchLogByID(ctx context.Context, id int64) (Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return Entry{}, &NotFoundError{ID: id}
	}
	return entry, nil
}

func (f *fakeSource) FetchStats(ctx context.Context) (Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls++
	return f.stats, f.statsErr
}

func (f *fakeSource) DeleteAll(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purgeCalls++
	if f.purgeErr != nil {
		return "", f.purgeErr
	}
	f.page = Page{}
	f.stats = Stats{}
	return f.purgeMsg, nil
}

func (f *fakeSource) setPage(page Page, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.page = page
	f.pageErr = err
}

func (f *fakeSource) fetches() []QueryFilters {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]QueryFilters(nil), f.fetched...)
}

func (f *fakeSource) lastFetch() QueryFilters {
	fetched := f.fetches()
	if len(fetched) == 0 {
		return QueryFilters{}
	}
	return fetched[len(fetched)-1]
}

func (f *fakeSource) statsCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statsCalls
}

func pageOf(total int64, ids ...int64) Page {
	logs := make([]Entry, 0, len(ids))
	for _, id := range ids {
		logs = append(logs, Entry{LogID: id, UserType: UserTypeAdmin, AdminID: "adm-1", ActivityType: "login", ActivityCategory: "authentication"})
	}
	return Page{Logs: logs, Pagination: Pagination{Total: total}}
}
