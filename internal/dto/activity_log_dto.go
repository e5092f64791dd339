package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/residence-admin-api/internal/models"
)

// ActivityLogListRequest carries the validated query facets for listing logs.
type ActivityLogListRequest struct {
	UserType         string
	UserID           *uint
	ActivityType     string
	ActivityCategory string
	StartDate        *time.Time
	// EndDate is the last calendar day included in the range.
	EndDate *time.Time
	Limit   int
	Offset  int
}

// ActivityLogResponse serializes a single audit entry.
type ActivityLogResponse struct {
	LogID                uint            `json:"log_id"`
	UserType             string          `json:"user_type"`
	UserID               *uint           `json:"user_id"`
	AdminID              *string         `json:"admin_id"`
	ActivityType         string          `json:"activity_type"`
	ActivityCategory     string          `json:"activity_category"`
	Description          string          `json:"description"`
	Endpoint             string          `json:"endpoint"`
	Method               string          `json:"method"`
	ResponseStatus       int             `json:"response_status"`
	IPAddress            string          `json:"ip_address"`
	UserAgent            string          `json:"user_agent"`
	AffectedResourceType *string         `json:"affected_resource_type"`
	AffectedResourceID   *string         `json:"affected_resource_id"`
	RequestBody          json.RawMessage `json:"request_body"`
	Metadata             json.RawMessage `json:"metadata"`
	CreatedAt            time.Time       `json:"created_at"`
}

// ActivityLogPagination describes the offset window of a list response.
type ActivityLogPagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// ActivityLogListResponse is the payload of the list endpoints.
type ActivityLogListResponse struct {
	Logs       []ActivityLogResponse `json:"logs"`
	Pagination ActivityLogPagination `json:"pagination"`
}

// ActivityLogStatsResponse aggregates log counts for the dashboard header.
type ActivityLogStatsResponse struct {
	TotalLogs int64 `json:"total_logs"`
	LogsToday int64 `json:"logs_today"`
	UserLogs  int64 `json:"user_logs"`
	AdminLogs int64 `json:"admin_logs"`
	CacheHit  bool  `json:"cache_hit"`
}

// ActivityLogPurgeResponse reports the outcome of a bulk delete.
type ActivityLogPurgeResponse struct {
	Deleted  int64     `json:"deleted"`
	PurgedAt time.Time `json:"purged_at"`
}

// NewActivityLogResponse maps the persistence model to its API representation.
func NewActivityLogResponse(entry models.ActivityLog) ActivityLogResponse {
	return ActivityLogResponse{
		LogID:                entry.ID,
		UserType:             entry.UserType,
		UserID:               entry.UserID,
		AdminID:              entry.AdminID,
		ActivityType:         entry.ActivityType,
		ActivityCategory:     entry.ActivityCategory,
		Description:          entry.Description,
		Endpoint:             entry.Endpoint,
		Method:               entry.Method,
		ResponseStatus:       entry.ResponseStatus,
		IPAddress:            entry.IPAddress,
		UserAgent:            entry.UserAgent,
		AffectedResourceType: entry.AffectedResourceType,
		AffectedResourceID:   entry.AffectedResourceID,
		RequestBody:          rawJSON(entry.RequestBody),
		Metadata:             rawJSON(entry.Metadata),
		CreatedAt:            entry.CreatedAt,
	}
}

// NewActivityLogResponses maps a slice of models, never returning nil.
func NewActivityLogResponses(entries []models.ActivityLog) []ActivityLogResponse {
	responses := make([]ActivityLogResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, NewActivityLogResponse(entry))
	}
	return responses
}

func rawJSON(value []byte) json.RawMessage {
	if len(value) == 0 || !json.Valid(value) {
		return json.RawMessage("null")
	}
	return json.RawMessage(value)
}
