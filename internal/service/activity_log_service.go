package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/residence-admin-api/internal/activitylog"
	"github.com/noah-isme/residence-admin-api/internal/dto"
	"github.com/noah-isme/residence-admin-api/internal/observability"
	"github.com/noah-isme/residence-admin-api/internal/repository"
)

const activityStatsCacheKey = "activity_logs:stats"

// DefaultPurgeSubject is the NATS subject announcing a bulk delete.
const DefaultPurgeSubject = "activity_logs.purged"

// ErrActivityLogNotFound is returned when a requested log does not exist.
var ErrActivityLogNotFound = errors.New("activity log not found")

// EventPublisher broadcasts domain events. *nats.Conn satisfies it.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// ActivityLogService exposes the audit trail to administrators.
type ActivityLogService interface {
	List(ctx context.Context, req dto.ActivityLogListRequest) (dto.ActivityLogListResponse, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) (dto.ActivityLogListResponse, error)
	Get(ctx context.Context, id uint) (dto.ActivityLogResponse, error)
	Stats(ctx context.Context) (dto.ActivityLogStatsResponse, error)
	DeleteAll(ctx context.Context) (dto.ActivityLogPurgeResponse, error)
}

// ActivityLogServiceConfig carries the optional collaborators of the service.
type ActivityLogServiceConfig struct {
	Cache        *redis.Client
	CacheTTL     time.Duration
	Publisher    EventPublisher
	PurgeSubject string
	Location     *time.Location
}

type activityLogService struct {
	repo         repository.ActivityLogRepository
	cache        *redis.Client
	cacheTTL     time.Duration
	publisher    EventPublisher
	purgeSubject string
	location     *time.Location
	logger       zerolog.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

type purgeEvent struct {
	Deleted  int64     `json:"deleted"`
	PurgedAt time.Time `json:"purged_at"`
}

// NewActivityLogService constructs the activity log service.
func NewActivityLogService(repo repository.ActivityLogRepository, cfg ActivityLogServiceConfig, logger zerolog.Logger) ActivityLogService {
	subject := cfg.PurgeSubject
	if subject == "" {
		subject = DefaultPurgeSubject
	}
	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &activityLogService{
		repo:         repo,
		cache:        cfg.Cache,
		cacheTTL:     ttl,
		publisher:    cfg.Publisher,
		purgeSubject: subject,
		location:     location,
		logger:       logger.With().Str("component", "activity_log_service").Logger(),
		tracer:       otel.Tracer("github.com/noah-isme/residence-admin-api/internal/service/activity_log"),
		now:          time.Now,
	}
}

func (s *activityLogService) List(ctx context.Context, req dto.ActivityLogListRequest) (dto.ActivityLogListResponse, error) {
	ctx, span := s.tracer.Start(ctx, "activity_logs.list")
	defer span.End()

	filter := repository.ActivityLogFilter{
		UserType:         req.UserType,
		UserID:           req.UserID,
		ActivityType:     req.ActivityType,
		ActivityCategory: req.ActivityCategory,
		Limit:            clampLimit(req.Limit),
		Offset:           max(req.Offset, 0),
	}
	if req.StartDate != nil {
		from := s.startOfDay(*req.StartDate)
		filter.From = &from
	}
	if req.EndDate != nil {
		to := s.startOfDay(*req.EndDate).AddDate(0, 0, 1)
		filter.To = &to
	}

	return s.list(ctx, span, filter)
}

func (s *activityLogService) ListByUser(ctx context.Context, userID uint, limit, offset int) (dto.ActivityLogListResponse, error) {
	ctx, span := s.tracer.Start(ctx, "activity_logs.list_by_user")
	defer span.End()
	span.SetAttributes(attribute.Int64("activity_logs.user_id", int64(userID)))

	return s.list(ctx, span, repository.ActivityLogFilter{
		UserID: &userID,
		Limit:  clampLimit(limit),
		Offset: max(offset, 0),
	})
}

func (s *activityLogService) list(ctx context.Context, span trace.Span, filter repository.ActivityLogFilter) (dto.ActivityLogListResponse, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_failed")
		return dto.ActivityLogListResponse{}, err
	}
	span.SetAttributes(
		attribute.Int64("activity_logs.total", total),
		attribute.Int("activity_logs.returned", len(entries)),
	)

	page := activitylog.PaginationFor(activitylog.OffsetLimit{Offset: filter.Offset, Limit: filter.Limit}, len(entries), total)
	return dto.ActivityLogListResponse{
		Logs: dto.NewActivityLogResponses(entries),
		Pagination: dto.ActivityLogPagination{
			Total:   page.Total,
			Limit:   page.Limit,
			Offset:  page.Offset,
			HasMore: page.HasMore,
		},
	}, nil
}

func (s *activityLogService) Get(ctx context.Context, id uint) (dto.ActivityLogResponse, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrActivityLogNotFound) {
			return dto.ActivityLogResponse{}, ErrActivityLogNotFound
		}
		return dto.ActivityLogResponse{}, err
	}
	return dto.NewActivityLogResponse(*entry), nil
}

func (s *activityLogService) Stats(ctx context.Context) (dto.ActivityLogStatsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "activity_logs.stats")
	span.SetAttributes(attribute.String("activity_logs.cache_key", activityStatsCacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, activityStatsCacheKey).Result()
		if err == nil {
			var response dto.ActivityLogStatsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("activity_logs.cache_hit", true))
				observability.ActivityStatsCacheLookups().WithLabelValues("hit").Inc()
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read activity stats cache")
			span.RecordError(err)
		}
	}

	if s.cache != nil {
		observability.ActivityStatsCacheLookups().WithLabelValues("miss").Inc()
	}

	counts, err := s.repo.Counts(ctx, s.startOfDay(s.now().In(s.location)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_failed")
		return dto.ActivityLogStatsResponse{}, err
	}

	response := dto.ActivityLogStatsResponse{
		TotalLogs: counts.Total,
		LogsToday: counts.Today,
		UserLogs:  counts.User,
		AdminLogs: counts.Admin,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, activityStatsCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store activity stats cache")
				span.RecordError(err)
			}
		}
	}

	return response, nil
}

func (s *activityLogService) DeleteAll(ctx context.Context) (dto.ActivityLogPurgeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "activity_logs.delete_all")
	defer span.End()

	deleted, err := s.repo.DeleteAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete_failed")
		return dto.ActivityLogPurgeResponse{}, err
	}
	span.SetAttributes(attribute.Int64("activity_logs.deleted", deleted))
	observability.ActivityLogsPurged().Add(float64(deleted))

	if s.cache != nil {
		if err := s.cache.Del(ctx, activityStatsCacheKey).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate activity stats cache")
		}
	}

	response := dto.ActivityLogPurgeResponse{Deleted: deleted, PurgedAt: s.now().UTC()}
	if s.publisher != nil {
		payload, err := json.Marshal(purgeEvent(response))
		if err == nil {
			err = s.publisher.Publish(s.purgeSubject, payload)
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("subject", s.purgeSubject).Msg("failed to publish purge event")
		}
	}

	s.logger.Info().Int64("deleted", deleted).Msg("activity logs purged")
	return response, nil
}

// startOfDay returns midnight of t's calendar date in the service location.
func (s *activityLogService) startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.location)
}

func clampLimit(limit int) int {
	switch {
	case limit < 1:
		return activitylog.DefaultLimit
	case limit > activitylog.MaxLimit:
		return activitylog.MaxLimit
	default:
		return limit
	}
}
