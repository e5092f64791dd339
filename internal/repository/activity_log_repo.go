package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/residence-admin-api/internal/models"
)

// ErrActivityLogNotFound is returned when a log id does not exist.
var ErrActivityLogNotFound = errors.New("activity log not found")

// ActivityLogFilter narrows activity log queries. Zero fields are ignored.
type ActivityLogFilter struct {
	UserType         string
	UserID           *uint
	ActivityType     string
	ActivityCategory string
	// From and To bound created_at as [From, To).
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// ActivityLogCounts holds the aggregates behind the statistics endpoint.
type ActivityLogCounts struct {
	Total int64
	Today int64
	User  int64
	Admin int64
}

// ActivityLogRepository persists and queries the audit trail.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error)
	FindByID(ctx context.Context, id uint) (*models.ActivityLog, error)
	Counts(ctx context.Context, todayStart time.Time) (ActivityLogCounts, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})

	if filter.UserType != "" {
		query = query.Where("user_type = ?", filter.UserType)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.ActivityType != "" {
		query = query.Where("activity_type = ?", filter.ActivityType)
	}
	if filter.ActivityCategory != "" {
		query = query.Where("activity_category = ?", filter.ActivityCategory)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var entries []models.ActivityLog
	if err := query.Order("created_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *activityLogRepository) FindByID(ctx context.Context, id uint) (*models.ActivityLog, error) {
	var entry models.ActivityLog
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityLogNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *activityLogRepository) Counts(ctx context.Context, todayStart time.Time) (ActivityLogCounts, error) {
	var counts ActivityLogCounts
	base := r.db.WithContext(ctx).Model(&models.ActivityLog{})

	if err := base.Session(&gorm.Session{}).Count(&counts.Total).Error; err != nil {
		return ActivityLogCounts{}, err
	}
	if err := base.Session(&gorm.Session{}).Where("created_at >= ?", todayStart).Count(&counts.Today).Error; err != nil {
		return ActivityLogCounts{}, err
	}
	if err := base.Session(&gorm.Session{}).Where("user_type = ?", models.ActivityUserTypeUser).Count(&counts.User).Error; err != nil {
		return ActivityLogCounts{}, err
	}
	if err := base.Session(&gorm.Session{}).Where("user_type = ?", models.ActivityUserTypeAdmin).Count(&counts.Admin).Error; err != nil {
		return ActivityLogCounts{}, err
	}
	return counts, nil
}

func (r *activityLogRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ActivityLog{})
	return result.RowsAffected, result.Error
}
