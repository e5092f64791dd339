package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/residence-admin-api/internal/activitylog"
	"github.com/noah-isme/residence-admin-api/internal/dto"
	"github.com/noah-isme/residence-admin-api/internal/service"
	"github.com/noah-isme/residence-admin-api/internal/utils"
)

// ActivityLogGuards holds the extra middleware applied to privileged routes. Nil entries are skipped.
//
// Permissions, when set, returns the caller's feature flags. A non-nil result hides
// the categories and types those flags disable, so filtering on them is rejected.
type ActivityLogGuards struct {
	Privileged  fiber.Handler
	Purge       fiber.Handler
	Permissions func(c *fiber.Ctx) map[string]bool
}

// ActivityLogHandler exposes the activity log query endpoints.
type ActivityLogHandler struct {
	service service.ActivityLogService
	guards  ActivityLogGuards
	logger  zerolog.Logger
}

// NewActivityLogHandler constructs the handler.
func NewActivityLogHandler(svc service.ActivityLogService, guards ActivityLogGuards, logger zerolog.Logger) *ActivityLogHandler {
	return &ActivityLogHandler{
		service: svc,
		guards:  guards,
		logger:  logger.With().Str("component", "activity_log_handler").Logger(),
	}
}

// Register attaches activity log routes to the router group.
func (h *ActivityLogHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/stats", h.chain(h.stats, h.guards.Privileged)...)
	router.Get("/users/:userId", h.listByUser)
	router.Get("/:id", h.get)
	router.Delete("", h.chain(h.deleteAll, h.guards.Privileged, h.guards.Purge)...)
}

func (h *ActivityLogHandler) chain(final fiber.Handler, guards ...fiber.Handler) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(guards)+1)
	for _, guard := range guards {
		if guard != nil {
			handlers = append(handlers, guard)
		}
	}
	return append(handlers, final)
}

func (h *ActivityLogHandler) list(c *fiber.Ctx) error {
	req, err := parseListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if facet := h.hiddenFacet(c, req); facet != "" {
		return utils.SendError(c, fiber.StatusForbidden, facet+" not enabled for this account")
	}

	response, err := h.service.List(c.UserContext(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activity logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity logs")
	}

	return utils.SendSuccess(c, "activity logs", response)
}

func (h *ActivityLogHandler) listByUser(c *fiber.Ctx) error {
	userID, ok := parsePositiveID(c.Params("userId"))
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}
	limit, offset, err := parsePaging(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.ListByUser(c.UserContext(), userID, limit, offset)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", userID).Msg("failed to list user activity logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list user activity logs")
	}

	return utils.SendSuccess(c, "user activity logs", response)
}

func (h *ActivityLogHandler) get(c *fiber.Ctx) error {
	id, ok := parsePositiveID(c.Params("id"))
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity log id")
	}

	response, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrActivityLogNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "activity log not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("log_id", id).Msg("failed to load activity log")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load activity log")
	}

	return utils.SendSuccess(c, "activity log", response)
}

func (h *ActivityLogHandler) stats(c *fiber.Ctx) error {
	response, err := h.service.Stats(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute activity log stats")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute activity log stats")
	}

	return utils.SendSuccess(c, "activity log stats", response)
}

func (h *ActivityLogHandler) deleteAll(c *fiber.Ctx) error {
	response, err := h.service.DeleteAll(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete activity logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete activity logs")
	}

	requestLogger(h.logger, c).Info().Int64("deleted", response.Deleted).Msg("activity logs deleted")
	return utils.SendSuccess(c, fmt.Sprintf("deleted %d activity logs", response.Deleted), response)
}

// hiddenFacet names the first requested catalog category or type that the caller's permissions
// hide. Values outside the catalog are not gated.
func (h *ActivityLogHandler) hiddenFacet(c *fiber.Ctx, req dto.ActivityLogListRequest) string {
	if h.guards.Permissions == nil {
		return ""
	}
	perms := h.guards.Permissions(c)
	if perms == nil {
		return ""
	}

	taxonomy := activitylog.NewTaxonomy(activitylog.Permissions(perms))
	if activitylog.KnownCategory(req.ActivityCategory) && !taxonomy.HasCategory(req.ActivityCategory) {
		return activitylog.FacetActivityCategory
	}
	if activitylog.KnownType(req.ActivityType) && !taxonomy.HasType(req.ActivityType) {
		return activitylog.FacetActivityType
	}
	return ""
}

func parseListRequest(c *fiber.Ctx) (dto.ActivityLogListRequest, error) {
	var req dto.ActivityLogListRequest

	userType, err := activitylog.ParseUserType(c.Query(activitylog.FacetUserType))
	if err != nil {
		return req, fmt.Errorf("invalid %s", activitylog.FacetUserType)
	}
	req.UserType = string(userType)

	if raw := strings.TrimSpace(c.Query(activitylog.FacetUserID)); raw != "" {
		userID, ok := parsePositiveID(raw)
		if !ok {
			return req, fmt.Errorf("invalid %s", activitylog.FacetUserID)
		}
		req.UserID = &userID
	}

	req.ActivityType = strings.TrimSpace(c.Query(activitylog.FacetActivityType))
	req.ActivityCategory = strings.TrimSpace(c.Query(activitylog.FacetActivityCategory))

	start, err := parseDateQuery(c, activitylog.FacetStartDate)
	if err != nil {
		return req, err
	}
	end, err := parseDateQuery(c, activitylog.FacetEndDate)
	if err != nil {
		return req, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return req, fmt.Errorf("%s must not be before %s", activitylog.FacetEndDate, activitylog.FacetStartDate)
	}
	req.StartDate = start
	req.EndDate = end

	req.Limit, req.Offset, err = parsePaging(c)
	return req, err
}

func parseDateQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	date, err := activitylog.ParseDate(c.Query(key))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: expected %s", key, activitylog.DateLayout)
	}
	if date.IsZero() {
		return nil, nil
	}
	value := date.In(time.UTC)
	return &value, nil
}

func parsePaging(c *fiber.Ctx) (int, int, error) {
	limit, err := parseQueryInt(c, activitylog.FacetLimit)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid %s", activitylog.FacetLimit)
	}
	offset, err := parseQueryInt(c, activitylog.FacetOffset)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid %s", activitylog.FacetOffset)
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset, nil
}
