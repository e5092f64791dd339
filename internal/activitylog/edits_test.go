package activitylog

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApplyEditsForcesFirstPage(t *testing.T) {
	filters, err := ApplyEdits(EditBuffer{UserType: "ADMIN", ActivityCategory: " payment ", StartDate: "2024-05-01", EndDate: "2024-05-31"})
	require.NoError(t, err)

	require.Equal(t, QueryFilters{
		Facets: Facets{
			UserType:         UserTypeAdmin,
			ActivityCategory: "payment",
			StartDate:        Date{Year: 2024, Month: time.May, Day: 1},
			EndDate:          Date{Year: 2024, Month: time.May, Day: 31},
		},
		Limit:  DefaultLimit,
		Offset: 0,
	}, filters)
}

func TestApplyEditsKeepsBufferLimit(t *testing.T) {
	filters, err := ApplyEdits(EditBuffer{Limit: 25})
	require.NoError(t, err)
	require.Equal(t, 25, filters.Limit)
}

func TestApplyEditsRejectsMalformedFacets(t *testing.T) {
	cases := []struct {
		name  string
		buf   EditBuffer
		facet string
	}{
		{name: "user type", buf: EditBuffer{UserType: "tenant"}, facet: FacetUserType},
		{name: "user id", buf: EditBuffer{UserID: "abc"}, facet: FacetUserID},
		{name: "zero user id", buf: EditBuffer{UserID: "0"}, facet: FacetUserID},
		{name: "start date", buf: EditBuffer{StartDate: "01-05-2024"}, facet: FacetStartDate},
		{name: "limit", buf: EditBuffer{Limit: 500}, facet: FacetLimit},
		{name: "range", buf: EditBuffer{StartDate: "2024-05-10", EndDate: "2024-05-01"}, facet: FacetEndDate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ApplyEdits(tc.buf)
			require.Error(t, err)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			require.Equal(t, tc.facet, validationErr.Facet)
		})
	}
}

func TestEditBufferSetAndClear(t *testing.T) {
	var buf EditBuffer
	require.NoError(t, buf.Set(FacetActivityType, " login "))
	require.NoError(t, buf.Set(FacetLimit, "25"))
	require.Equal(t, "login", buf.ActivityType)
	require.Equal(t, 25, buf.Limit)

	require.NoError(t, buf.Clear(FacetActivityType))
	require.Empty(t, buf.ActivityType)

	require.Error(t, buf.Set("severity", "high"))
	require.Error(t, buf.Set(FacetLimit, "many"))
}

func TestEditBufferFromCommittedFilters(t *testing.T) {
	filters := QueryFilters{Facets: Facets{UserType: UserTypeUser, UserID: 7, StartDate: Date{Year: 2024, Month: time.June, Day: 3}}, Limit: 25, Offset: 100}

	buf := EditBufferFrom(filters)
	require.Equal(t, EditBuffer{UserType: "user", UserID: "7", StartDate: "2024-06-03", Limit: 25}, buf)

	roundTrip, err := ApplyEdits(buf)
	require.NoError(t, err)
	filters.Offset = 0
	require.Equal(t, filters, roundTrip)
}
