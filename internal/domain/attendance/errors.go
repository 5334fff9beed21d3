package attendance

import (
	"errors"
	"fmt"
)

// Batch-level (structural) errors
var (
	ErrEmptyBatch         = errors.New("attendance batch contains no records")
	ErrUnparseableBatch   = errors.New("attendance batch could not be parsed")
	ErrUnsupportedFormat  = errors.New("unsupported attendance batch format")
	ErrMissingColumn      = errors.New("required column missing from attendance batch")
	ErrUploadNotFound     = errors.New("attendance upload not found")
	ErrUploadAlreadyFinal = errors.New("attendance upload has already been processed")
)

type NormalizationReason string

const (
	ReasonMissingIdentifier    NormalizationReason = "MissingIdentifier"
	ReasonMissingTimestamp     NormalizationReason = "MissingTimestamp"
	ReasonInvalidTimestamp     NormalizationReason = "InvalidTimestamp"
	ReasonMissingDirection     NormalizationReason = "MissingDirection"
	ReasonUnresolvedIdentifier NormalizationReason = "UnresolvedIdentifier"
)

// NormalizationError describes a raw record that was skipped.
type NormalizationError struct {
	Reason    NormalizationReason `json:"reason"`
	Detail    string              `json:"detail,omitempty"`
	RawRecord RawRecord           `json:"raw_record"`
}

func (e NormalizationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("line %d: %s", e.RawRecord.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: %s: %s", e.RawRecord.Line, e.Reason, e.Detail)
}

type WarningKind string

const (
	WarningMissingPunch      WarningKind = "MissingPunch"
	WarningDirectionMismatch WarningKind = "DirectionMismatch"
	WarningOutOfPeriod       WarningKind = "OutOfPeriod"
)

// PairingWarning flags an anomaly found while pairing punches into sessions.
type PairingWarning struct {
	Kind       WarningKind `json:"kind"`
	EmployeeID string      `json:"employee_id"`
	Date       string      `json:"date"`
	Message    string      `json:"message"`
}
