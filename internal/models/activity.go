package models

import (
	"time"

	"gorm.io/datatypes"
)

// Actor kinds recorded on activity logs.
const (
	ActivityUserTypeUser  = "user"
	ActivityUserTypeAdmin = "admin"
)

// ActivityLog captures one auditable action performed by a tenant or an administrator.
type ActivityLog struct {
	ID                   uint           `gorm:"primaryKey" json:"log_id"`
	UserType             string         `gorm:"size:16;not null;index" json:"user_type"`
	UserID               *uint          `gorm:"index" json:"user_id"`
	AdminID              *string        `gorm:"size:64;index" json:"admin_id"`
	ActivityType         string         `gorm:"size:64;not null;index" json:"activity_type"`
	ActivityCategory     string         `gorm:"size:64;not null;index" json:"activity_category"`
	Description          string         `gorm:"type:text" json:"description"`
	Endpoint             string         `gorm:"size:255" json:"endpoint"`
	Method               string         `gorm:"size:16" json:"method"`
	ResponseStatus       int            `json:"response_status"`
	IPAddress            string         `gorm:"size:45" json:"ip_address"`
	UserAgent            string         `gorm:"size:512" json:"user_agent"`
	AffectedResourceType *string        `gorm:"size:64" json:"affected_resource_type"`
	AffectedResourceID   *string        `gorm:"size:64" json:"affected_resource_id"`
	RequestBody          datatypes.JSON `gorm:"type:json" json:"request_body"`
	Metadata             datatypes.JSON `gorm:"type:json" json:"metadata"`
	CreatedAt            time.Time      `gorm:"index" json:"created_at"`
}

// TableName pins the table name shared with the rest of the platform.
func (ActivityLog) TableName() string {
	return "activity_logs"
}
