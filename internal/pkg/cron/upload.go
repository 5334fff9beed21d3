package cron

import (
	"context"
	"time"
)

// UploadProcessor drains pending terminal uploads.
type UploadProcessor interface {
	ProcessPending(ctx context.Context) error
}

type UploadJobs struct {
	processor UploadProcessor
	interval  time.Duration
}

func NewUploadJobs(processor UploadProcessor, interval time.Duration) *UploadJobs {
	if interval <= 0 {
		interval = time.Minute
	}
	return &UploadJobs{processor: processor, interval: interval}
}

func (j *UploadJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(Job{
		Name:     "process_attendance_uploads",
		Interval: j.interval,
		// One tick must finish before the next one is due.
		Timeout: j.interval,
		Fn:      j.processor.ProcessPending,
	})
}
