package schedule

import (
	"context"
)

type ScheduleService interface {
	// GetEffectiveShift resolves the shift that applies to an employee on a date
	GetEffectiveShift(ctx context.Context, req EffectiveShiftRequest) (EffectiveShift, error)
}
