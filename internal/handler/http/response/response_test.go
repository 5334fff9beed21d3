package response

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var body Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestSuccessWithMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	SuccessWithMeta(rec, []string{"run-1"}, &Meta{Page: 1, Limit: 20, TotalItems: 1, TotalPages: 1})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.True(t, body.Success)
	require.NotNil(t, body.Meta)
	assert.Equal(t, int64(1), body.Meta.TotalItems)
	assert.Nil(t, body.Error)
}

func TestHandleError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", validator.ValidationErrors{{Field: "branch_id", Message: "branch_id is required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"empty batch", fmt.Errorf("parse: %w", attendance.ErrEmptyBatch), http.StatusBadRequest, "BAD_REQUEST"},
		{"rules missing", payroll.ErrRuleConfigMissing, http.StatusConflict, "CONFLICT"},
		{"run not found", payroll.ErrPayrollRunNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"deadline", fmt.Errorf("engine: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "TIMEOUT"},
		{"unknown", fmt.Errorf("connection reset"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, c.err)

			assert.Equal(t, c.status, rec.Code)
			body := decode(t, rec)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, c.code, body.Error.Code)
		})
	}
}
