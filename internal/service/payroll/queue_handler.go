package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/validator"
)

// defaultRetryDelay is the visibility timeout, in seconds, applied before a
// failed message becomes visible again.
const defaultRetryDelay int32 = 60

// BatchMessage is the queue representation of a batch. Payload carries a raw
// file (base64 in JSON); Events carries structured punches.
type BatchMessage struct {
	CompanyID   string                       `json:"company_id"`
	BranchID    string                       `json:"branch_id"`
	PeriodStart string                       `json:"period_start"`
	PeriodEnd   string                       `json:"period_end"`
	Format      string                       `json:"format,omitempty"`
	Payload     []byte                       `json:"payload,omitempty"`
	Events      []attendance.StructuredEvent `json:"events,omitempty"`
}

// BatchMessageProcessor runs queued batches through the payroll service.
type BatchMessageProcessor struct {
	service    payroll.PayrollService
	retryDelay int32
}

func NewBatchMessageProcessor(service payroll.PayrollService) *BatchMessageProcessor {
	return &BatchMessageProcessor{service: service, retryDelay: defaultRetryDelay}
}

// Process decodes one message and processes the batch it carries. Malformed
// messages and structural batch errors are not retried.
func (p *BatchMessageProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	messageID := aws.ToString(msg.MessageId)

	var body BatchMessage
	if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &body); err != nil {
		return false, 0, fmt.Errorf("invalid batch message %s: %w", messageID, err)
	}
	if body.CompanyID == "" {
		return false, 0, fmt.Errorf("batch message %s has no company_id", messageID)
	}

	run, err := p.service.ProcessBatch(ctx, payroll.ProcessBatchRequest{
		CompanyID:   body.CompanyID,
		BranchID:    body.BranchID,
		PeriodStart: body.PeriodStart,
		PeriodEnd:   body.PeriodEnd,
		Format:      body.Format,
		Payload:     body.Payload,
		Events:      body.Events,
		Source:      payroll.RunSourceQueue,
	})
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) || IsPermanent(err) {
			return false, 0, err
		}
		return true, p.retryDelay, err
	}

	slog.Info("Queued payroll batch processed",
		"message_id", messageID,
		"run_id", run.ID,
		"employees", len(run.Result.Summaries),
	)
	return false, 0, nil
}
