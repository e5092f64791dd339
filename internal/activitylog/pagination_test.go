package activitylog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaginationRoundTrip(t *testing.T) {
	for page := 1; page <= 12; page++ {
		for _, size := range []int{1, 7, 25, 50, 200} {
			info := PageInfo{Page: page, PageSize: size, Total: 1234}
			ol := ToOffsetLimit(info)

			got := ToPageInfo(Pagination{Total: info.Total, Limit: ol.Limit, Offset: ol.Offset})
			require.Equal(t, info, got, "page %d size %d", page, size)
		}
	}
}

func TestToPageInfoFromServerPagination(t *testing.T) {
	info := ToPageInfo(Pagination{Total: 120, Limit: 50, Offset: 100, HasMore: false})

	require.Equal(t, 3, info.Page)
	require.Equal(t, 50, info.PageSize)
	require.Equal(t, int64(120), info.Total)
	require.Equal(t, 3, info.TotalPages())
}

func TestToOffsetLimitRaisesInvalidInput(t *testing.T) {
	require.Equal(t, OffsetLimit{Offset: 0, Limit: DefaultLimit}, ToOffsetLimit(PageInfo{}))
	require.Equal(t, OffsetLimit{Offset: 50, Limit: 25}, ToOffsetLimit(PageInfo{Page: 3, PageSize: 25}))
}

func TestPaginationFor(t *testing.T) {
	require.True(t, PaginationFor(OffsetLimit{Offset: 0, Limit: 50}, 50, 120).HasMore)
	require.False(t, PaginationFor(OffsetLimit{Offset: 100, Limit: 50}, 20, 120).HasMore)
}
