package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// receiveErrorBackoff is how long the poller waits after a failed receive.
const receiveErrorBackoff = 2 * time.Second

type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	ChangeMessageVisibility(ctx context.Context, params *sqs.ChangeMessageVisibilityInput, optFns ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error)
}

// Processor handles one message. A message is deleted on success, made
// visible again after retryDelay seconds when shouldRetry is set, and left to
// the queue's redrive policy otherwise.
type Processor interface {
	Process(ctx context.Context, msg types.Message) (shouldRetry bool, retryDelay int32, err error)
}

// Worker polls an SQS queue and hands messages to a pool of processors.
type Worker struct {
	client      SQSClient
	queueURL    string
	processor   Processor
	concurrency int
	waitSeconds int32
}

func NewWorker(client SQSClient, queueURL string, processor Processor, concurrency int) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		client:      client,
		queueURL:    queueURL,
		processor:   processor,
		concurrency: concurrency,
		waitSeconds: 20,
	}
}

// Start polls until ctx is cancelled, then waits for in-flight messages.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("SQS worker started", "queue_url", w.queueURL, "concurrency", w.concurrency)

	messagesCh := make(chan types.Message, w.concurrency)

	var wg sync.WaitGroup
	for range w.concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range messagesCh {
				w.handleMessage(ctx, msg)
			}
		}()
	}

	w.poll(ctx, messagesCh)
	wg.Wait()
	slog.Info("SQS worker stopped")
}

func (w *Worker) poll(ctx context.Context, messagesCh chan<- types.Message) {
	defer close(messagesCh)

	for {
		if ctx.Err() != nil {
			return
		}

		output, err := w.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(w.queueURL),
			MaxNumberOfMessages: int32(min(w.concurrency, 10)),
			WaitTimeSeconds:     w.waitSeconds,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("Error receiving messages", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(receiveErrorBackoff):
			}
			continue
		}

		if len(output.Messages) > 0 {
			slog.Debug("Received messages", "count", len(output.Messages))
		}
		for _, msg := range output.Messages {
			select {
			case messagesCh <- msg:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg types.Message) {
	logger := slog.With("message_id", aws.ToString(msg.MessageId))

	shouldRetry, retryDelay, err := w.processor.Process(ctx, msg)
	switch {
	case err == nil:
		if _, delErr := w.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      aws.String(w.queueURL),
			ReceiptHandle: msg.ReceiptHandle,
		}); delErr != nil {
			logger.Error("Failed to delete processed message", "error", delErr)
		}
	case shouldRetry:
		logger.Warn("Processing failed, will retry", "error", err, "retry_delay", retryDelay)
		if _, visErr := w.client.ChangeMessageVisibility(ctx, &sqs.ChangeMessageVisibilityInput{
			QueueUrl:          aws.String(w.queueURL),
			ReceiptHandle:     msg.ReceiptHandle,
			VisibilityTimeout: retryDelay,
		}); visErr != nil {
			logger.Error("Failed to change message visibility", "error", visErr)
		}
	default:
		logger.Error("Unrecoverable error processing message, will not retry", "error", err)
	}
}
