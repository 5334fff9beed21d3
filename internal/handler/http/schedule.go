package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/response"
)

type ScheduleHandler interface {
	GetEffectiveShift(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleService schedule.ScheduleService
}

func NewScheduleHandler(scheduleService schedule.ScheduleService) ScheduleHandler {
	return &scheduleHandlerImpl{
		scheduleService: scheduleService,
	}
}

// GetEffectiveShift implements ScheduleHandler.
func (h *scheduleHandlerImpl) GetEffectiveShift(w http.ResponseWriter, r *http.Request) {
	req := schedule.EffectiveShiftRequest{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Date:       r.URL.Query().Get("date"),
	}

	result, err := h.scheduleService.GetEffectiveShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
