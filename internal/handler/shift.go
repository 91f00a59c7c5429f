package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"gorm.io/gorm"

	"VolunteerHub/internal/model"
	"VolunteerHub/internal/model/dto"
	"VolunteerHub/internal/repository"
	pkgerrors "VolunteerHub/pkg/errors"
	"VolunteerHub/pkg/response"
)

const defaultShiftListLimit = 50

// ShiftHandler serves read-only shift lookups for the signup UI. Shift
// management itself lives in the event-management system.
type ShiftHandler struct {
	shifts repository.ShiftRepository
}

func NewShiftHandler(shifts repository.ShiftRepository) *ShiftHandler {
	return &ShiftHandler{shifts: shifts}
}

// ListShifts returns upcoming shifts.
// GET /v1/shifts
func (h *ShiftHandler) ListShifts(ctx context.Context, c *app.RequestContext) {
	limit := defaultShiftListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 200 {
			response.Error(ctx, c, pkgerrors.InvalidRequest)
			return
		}
		limit = parsed
	}

	shifts, err := h.shifts.ListUpcoming(ctx, time.Now(), limit)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	items := make([]dto.ShiftItem, 0, len(shifts))
	for _, shift := range shifts {
		items = append(items, toShiftItem(shift))
	}

	response.Success(ctx, c, items)
}

// GetShift returns one shift by its public ID.
// GET /v1/shifts/:shift_id
func (h *ShiftHandler) GetShift(ctx context.Context, c *app.RequestContext) {
	shiftID, err := strconv.ParseInt(c.Param("shift_id"), 10, 64)
	if err != nil {
		response.Error(ctx, c, pkgerrors.InvalidRequest)
		return
	}

	shift, err := h.shifts.GetByPublicID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(ctx, c, pkgerrors.ShiftNotFound)
			return
		}
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, toShiftItem(shift))
}

func toShiftItem(shift *model.Shift) dto.ShiftItem {
	item := dto.ShiftItem{
		ID:       strconv.FormatInt(shift.PublicID, 10),
		StartsAt: shift.StartsAt,
		EndsAt:   shift.EndsAt,
	}

	if shift.Role != nil {
		item.RoleName = shift.Role.Name
	}

	return item
}
