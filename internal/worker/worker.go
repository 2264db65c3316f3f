package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stagepass/backend/internal/emaillogs"
	"github.com/stagepass/backend/internal/mailer"
	"github.com/stagepass/backend/pkg/queue"
)

// EmailProcessor drains the email queue: deliver via SMTP, record the
// outcome, retry transient failures until the DLQ threshold.
type EmailProcessor struct {
	mailer *mailer.Mailer
	logs   *emaillogs.Repository
	queue  *queue.Queue
	logger *zap.Logger
}

// NewEmailProcessor creates an email delivery processor.
func NewEmailProcessor(m *mailer.Mailer, logs *emaillogs.Repository, q *queue.Queue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{mailer: m, logs: logs, queue: q, logger: logger}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	sendErr := p.mailer.Send(payload.RecipientEmail, payload.Subject, payload.BodyHTML, payload.BodyText)
	status := "sent"
	if sendErr != nil {
		status = "failed"
	}
	if logErr := p.logs.Record(ctx, payload.EmailType, payload.RecipientEmail, payload.Subject, status, sendErr); logErr != nil {
		p.logger.Error("record email log", zap.Error(logErr), zap.String("job_id", job.ID))
	}
	if sendErr != nil {
		return sendErr
	}

	p.logger.Info("email sent",
		zap.String("job_id", job.ID),
		zap.String("email_type", payload.EmailType),
		zap.String("recipient", payload.RecipientEmail),
	)
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
