package activitylog

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Entry is one immutable audit record.
type Entry struct {
	LogID                int64     `json:"log_id"`
	UserType             UserType  `json:"user_type"`
	UserID               *int64    `json:"user_id,omitempty"`
	AdminID              OpaqueID  `json:"admin_id,omitempty"`
	ActivityType         string    `json:"activity_type"`
	ActivityCategory     string    `json:"activity_category"`
	Description          string    `json:"description"`
	Endpoint             string    `json:"endpoint"`
	Method               string    `json:"method"`
	ResponseStatus       int       `json:"response_status"`
	IPAddress            string    `json:"ip_address"`
	UserAgent            string    `json:"user_agent"`
	CreatedAt            time.Time `json:"created_at"`
	AffectedResourceType string    `json:"affected_resource_type,omitempty"`
	AffectedResourceID   OpaqueID  `json:"affected_resource_id,omitempty"`
	RequestBody          Payload   `json:"request_body,omitempty"`
	Metadata             Payload   `json:"metadata,omitempty"`
}

// Actor returns the identifier that is meaningful for the entry's user type.
func (e Entry) Actor() string {
	switch e.UserType {
	case UserTypeAdmin:
		return string(e.AdminID)
	case UserTypeUser:
		if e.UserID != nil {
			return strconv.FormatInt(*e.UserID, 10)
		}
	}
	return ""
}

// OpaqueID is an identifier the server may encode as either a JSON string or number.
type OpaqueID string

// UnmarshalJSON accepts strings, numbers and null.
func (id *OpaqueID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*id = OpaqueID(raw)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}
	*id = OpaqueID(number.String())
	return nil
}

// Payload is structured JSON attached to an entry. Payloads serialized twice (a JSON string holding
// JSON) are unwrapped on decode.
type Payload json.RawMessage

// UnmarshalJSON stores the structured form of data.
func (p *Payload) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*p = nil
		return nil
	}
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return err
		}
		trimmed := strings.TrimSpace(inner)
		if trimmed == "" {
			*p = nil
			return nil
		}
		if json.Valid([]byte(trimmed)) {
			*p = Payload(trimmed)
			return nil
		}
	}
	*p = append(Payload(nil), data...)
	return nil
}

// MarshalJSON emits the stored JSON, or null when empty.
func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return []byte(p), nil
}

// IsEmpty reports whether the payload carries no data.
func (p Payload) IsEmpty() bool {
	return len(p) == 0
}

// Indent renders the payload for display.
func (p Payload) Indent() string {
	if p.IsEmpty() {
		return ""
	}
	var out bytes.Buffer
	if err := json.Indent(&out, p, "", "  "); err != nil {
		return string(p)
	}
	return out.String()
}

// Pagination is the server-reported position of a list page.
type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// Page is one list response.
type Page struct {
	Logs       []Entry    `json:"logs"`
	Pagination Pagination `json:"pagination"`
}

// Stats holds the aggregate counts shown next to the list.
type Stats struct {
	TotalLogs int64 `json:"total_logs"`
	LogsToday int64 `json:"logs_today"`
	UserLogs  int64 `json:"user_logs"`
	AdminLogs int64 `json:"admin_logs"`
}

// Source is the external log service the engine queries.
type Source interface {
	FetchLogs(ctx context.Context, filters QueryFilters) (Page, error)
	FetchLogByID(ctx context.Context, id int64) (Entry, error)
	FetchStats(ctx context.Context) (Stats, error)
	DeleteAll(ctx context.Context) (string, error)
}
