package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"VolunteerHub/internal/middleware"
	"VolunteerHub/internal/model"
	"VolunteerHub/internal/model/dto"
	"VolunteerHub/internal/schedule"
	"VolunteerHub/internal/service"
	pkgerrors "VolunteerHub/pkg/errors"
	"VolunteerHub/pkg/response"
)

type SignupHandler struct {
	signups *service.SignupService
	sweeper *schedule.AutoCheckoutSweeper
}

func NewSignupHandler(signups *service.SignupService, sweeper *schedule.AutoCheckoutSweeper) *SignupHandler {
	return &SignupHandler{signups: signups, sweeper: sweeper}
}

// CreateSignup signs the authenticated volunteer up for a shift.
// POST /v1/signups
func (h *SignupHandler) CreateSignup(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	var req dto.CreateSignupRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	shiftID, err := strconv.ParseInt(req.ShiftID, 10, 64)
	if err != nil {
		response.Error(ctx, c, pkgerrors.InvalidRequest)
		return
	}

	signup, err := h.signups.Create(ctx, userID, shiftID, req.Notes)
	if err != nil {
		respondServiceError(ctx, c, err)
		return
	}

	response.Created(ctx, c, toSignupItem(signup))
}

// ListMySignups returns the volunteer's signups with shift data.
// GET /v1/signups
func (h *SignupHandler) ListMySignups(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	signups, err := h.signups.ListUserSignups(ctx, userID)
	if err != nil {
		respondServiceError(ctx, c, err)
		return
	}

	items := make([]dto.SignupItem, 0, len(signups))
	for _, signup := range signups {
		items = append(items, toSignupItem(signup))
	}

	response.Success(ctx, c, items)
}

// CheckIn records the check-in instant for a signup.
// POST /v1/signups/:signup_id/check-in
func (h *SignupHandler) CheckIn(ctx context.Context, c *app.RequestContext) {
	h.transition(ctx, c, h.signups.CheckIn)
}

// CheckOut records the check-out instant for a signup.
// POST /v1/signups/:signup_id/check-out
func (h *SignupHandler) CheckOut(ctx context.Context, c *app.RequestContext) {
	h.transition(ctx, c, h.signups.CheckOut)
}

func (h *SignupHandler) transition(
	ctx context.Context,
	c *app.RequestContext,
	apply func(context.Context, int64, int64, time.Time) (*model.Signup, error),
) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	signupID, err := strconv.ParseInt(c.Param("signup_id"), 10, 64)
	if err != nil {
		response.Error(ctx, c, pkgerrors.InvalidRequest)
		return
	}

	ts := time.Now()
	var req dto.CheckRequest
	if err := c.BindAndValidate(&req); err == nil && req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			response.Error(ctx, c, pkgerrors.InvalidRequest)
			return
		}
		ts = parsed
	}

	signup, err := apply(ctx, userID, signupID, ts)
	if err != nil {
		respondServiceError(ctx, c, err)
		return
	}

	response.Success(ctx, c, toSignupItem(signup))
}

// GetMyHours returns the volunteer's total hours worked.
// GET /v1/users/me/hours
func (h *SignupHandler) GetMyHours(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	hours, err := h.signups.TotalHoursWorked(ctx, userID)
	if err != nil {
		respondServiceError(ctx, c, err)
		return
	}

	response.Success(ctx, c, dto.HoursReport{
		UserID: strconv.FormatInt(userID, 10),
		Hours:  hours,
	})
}

// GetAllHours returns per-user hour totals.
// GET /v1/hours
func (h *SignupHandler) GetAllHours(ctx context.Context, c *app.RequestContext) {
	totals, err := h.signups.TotalHoursForAllUsers(ctx)
	if err != nil {
		respondServiceError(ctx, c, err)
		return
	}

	rows := make([]dto.UserHours, 0, len(totals))
	for _, total := range totals {
		rows = append(rows, dto.UserHours{
			UserID: strconv.FormatInt(total.UserPublicID, 10),
			Hours:  total.Hours,
		})
	}

	response.Success(ctx, c, rows)
}

// TriggerAutoCheckout runs one sweep on demand.
// POST /v1/admin/sweeps/auto-checkout
func (h *SignupHandler) TriggerAutoCheckout(ctx context.Context, c *app.RequestContext) {
	result, err := h.sweeper.RunOnce(ctx)
	if err != nil {
		respondServiceError(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"scanned": result.Scanned,
		"closed":  result.Closed,
		"failed":  result.Failed,
	})
}

// respondServiceError surfaces conflict details when present.
func respondServiceError(ctx context.Context, c *app.RequestContext, err error) {
	var conflict service.ConflictDetailsError
	if errors.As(err, &conflict) {
		response.ErrorWithDetails(ctx, c, err, map[string]interface{}{
			"conflicting_shift_id": strconv.FormatInt(conflict.ConflictingShiftID, 10),
			"conflict_starts_at":   conflict.ConflictStartsAt.Format(time.RFC3339),
			"conflict_ends_at":     conflict.ConflictEndsAt.Format(time.RFC3339),
		})
		return
	}

	response.Error(ctx, c, err)
}

func toSignupItem(signup *model.Signup) dto.SignupItem {
	item := dto.SignupItem{
		ID:         strconv.FormatInt(signup.PublicID, 10),
		Status:     string(signup.Status()),
		CheckInAt:  signup.CheckInAt,
		CheckOutAt: signup.CheckOutAt,
		Notes:      signup.Notes,
		CreatedAt:  signup.CreatedAt,
	}

	if signup.Shift != nil {
		item.ShiftID = strconv.FormatInt(signup.Shift.PublicID, 10)
		shiftItem := toShiftItem(signup.Shift)
		item.Shift = &shiftItem
	}

	return item
}
