package activitylog

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Paging defaults and bounds for list queries.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// DateLayout is the wire format of date facets.
const DateLayout = "2006-01-02"

// Facet names as transmitted on the wire.
const (
	FacetUserType         = "user_type"
	FacetUserID           = "user_id"
	FacetActivityType     = "activity_type"
	FacetActivityCategory = "activity_category"
	FacetStartDate        = "start_date"
	FacetEndDate          = "end_date"
	FacetLimit            = "limit"
	FacetOffset           = "offset"
)

// UserType distinguishes entries produced by tenants from those produced by administrators.
type UserType string

// Known user types. The empty value means the facet is absent.
const (
	UserTypeUser  UserType = "user"
	UserTypeAdmin UserType = "admin"
)

// ParseUserType validates raw and returns the matching UserType.
func ParseUserType(raw string) (UserType, error) {
	switch UserType(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return "", nil
	case UserTypeUser:
		return UserTypeUser, nil
	case UserTypeAdmin:
		return UserTypeAdmin, nil
	default:
		return "", fmt.Errorf("unknown user type %q", raw)
	}
}

// Date is a calendar date without time of day or zone. The zero Date means "absent".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields the zero Date.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected %s", raw, DateLayout)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsZero reports whether d is the absent date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// In returns the start of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON encodes d as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a YYYY-MM-DD string or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Facets holds the content dimensions of a query. Zero fields are absent.
type Facets struct {
	UserType         UserType `json:"user_type,omitempty"`
	UserID           int64    `json:"user_id,omitempty"`
	ActivityType     string   `json:"activity_type,omitempty"`
	ActivityCategory string   `json:"activity_category,omitempty"`
	StartDate        Date     `json:"start_date,omitzero"`
	EndDate          Date     `json:"end_date,omitzero"`
}

// IsEmpty reports whether no facet is set.
func (f Facets) IsEmpty() bool {
	return f == Facets{}
}

// Validate rejects facet values that cannot form a query.
func (f Facets) Validate() error {
	if f.UserType != "" {
		if _, err := ParseUserType(string(f.UserType)); err != nil {
			return &ValidationError{Facet: FacetUserType, Message: err.Error()}
		}
	}
	if f.UserID < 0 {
		return &ValidationError{Facet: FacetUserID, Message: "must be a positive integer"}
	}
	if !f.StartDate.IsZero() && !f.EndDate.IsZero() && f.EndDate.Before(f.StartDate) {
		return &ValidationError{Facet: FacetEndDate, Message: "must not be before start_date"}
	}
	return nil
}

// without returns f with the named facets emptied. Unknown names are ignored.
func (f Facets) without(names ...string) Facets {
	for _, name := range names {
		switch name {
		case FacetUserType:
			f.UserType = ""
		case FacetUserID:
			f.UserID = 0
		case FacetActivityType:
			f.ActivityType = ""
		case FacetActivityCategory:
			f.ActivityCategory = ""
		case FacetStartDate:
			f.StartDate = Date{}
		case FacetEndDate:
			f.EndDate = Date{}
		}
	}
	return f
}

// QueryFilters is the canonical committed query. Values are comparable with ==.
type QueryFilters struct {
	Facets
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// DefaultFilters returns the filters every session starts from.
func DefaultFilters() QueryFilters {
	return QueryFilters{Limit: DefaultLimit, Offset: 0}
}

// ClearFilters drops every facet and returns to the default paging.
func ClearFilters() QueryFilters {
	return DefaultFilters()
}

// SetFilters shallow-merges patch into current. Facets set in patch overwrite those in current;
// paging is left untouched.
func SetFilters(current QueryFilters, patch Facets) QueryFilters {
	next := current
	if patch.UserType != "" {
		next.UserType = patch.UserType
	}
	if patch.UserID != 0 {
		next.UserID = patch.UserID
	}
	if patch.ActivityType != "" {
		next.ActivityType = patch.ActivityType
	}
	if patch.ActivityCategory != "" {
		next.ActivityCategory = patch.ActivityCategory
	}
	if !patch.StartDate.IsZero() {
		next.StartDate = patch.StartDate
	}
	if !patch.EndDate.IsZero() {
		next.EndDate = patch.EndDate
	}
	return next.Normalize()
}

// Normalize trims string facets, drops invalid identifiers and clamps paging into bounds.
func (f QueryFilters) Normalize() QueryFilters {
	f.ActivityType = strings.TrimSpace(f.ActivityType)
	f.ActivityCategory = strings.TrimSpace(f.ActivityCategory)
	if f.UserID < 0 {
		f.UserID = 0
	}
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultLimit
	case f.Limit > MaxLimit:
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// WithPaging returns f with the given offset and limit.
func (f QueryFilters) WithPaging(ol OffsetLimit) QueryFilters {
	f.Offset = ol.Offset
	f.Limit = ol.Limit
	return f.Normalize()
}

// Values encodes f as query parameters. Absent facets and a zero offset are omitted; limit is
// always present.
func (f QueryFilters) Values() url.Values {
	f = f.Normalize()
	values := url.Values{}
	if f.UserType != "" {
		values.Set(FacetUserType, string(f.UserType))
	}
	if f.UserID > 0 {
		values.Set(FacetUserID, strconv.FormatInt(f.UserID, 10))
	}
	if f.ActivityType != "" {
		values.Set(FacetActivityType, f.ActivityType)
	}
	if f.ActivityCategory != "" {
		values.Set(FacetActivityCategory, f.ActivityCategory)
	}
	if !f.StartDate.IsZero() {
		values.Set(FacetStartDate, f.StartDate.String())
	}
	if !f.EndDate.IsZero() {
		values.Set(FacetEndDate, f.EndDate.String())
	}
	values.Set(FacetLimit, strconv.Itoa(f.Limit))
	if f.Offset > 0 {
		values.Set(FacetOffset, strconv.Itoa(f.Offset))
	}
	return values
}
