package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/inboxinvader/inboxinvader/internal/logger"
	"github.com/inboxinvader/inboxinvader/internal/mailer"
	"github.com/inboxinvader/inboxinvader/internal/model"
	"github.com/inboxinvader/inboxinvader/internal/render"
)

// DispatchRequest is one immutable batch: a rendered-per-recipient
// message plus the SMTP account to relay it through.
type DispatchRequest struct {
	Account      mailer.Account
	Recipients   []string
	Subject      string
	Body         string
	DelaySeconds float64
	Variables    map[string]string
	Attachments  []model.Attachment
}

// DispatchService turns one batch request into a sequence of paced
// delivery attempts, one per recipient, in order.
type DispatchService struct {
	sender mailer.Sender
	log    *logger.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration)
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(sender mailer.Sender, log *logger.Logger) *DispatchService {
	return &DispatchService{
		sender: sender,
		log:    log.WithComponent("dispatch_service"),
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// Dispatch attempts delivery to every recipient in order and returns one
// result per attempt. A failed recipient never aborts the batch; the
// outcome is recorded and the loop moves on. The configured delay is
// applied between attempts but not after the last one. Context
// cancellation stops pacing early but the results gathered so far are
// still returned.
func (s *DispatchService) Dispatch(ctx context.Context, req DispatchRequest) []model.SendResult {
	batchID := uuid.New().String()
	delay := time.Duration(req.DelaySeconds * float64(time.Second))

	log := s.log.With().Str("batch_id", batchID).Logger()
	log.Info().Int("recipients", len(req.Recipients)).Float64("delay_seconds", req.DelaySeconds).Msg("dispatch started")

	results := make([]model.SendResult, 0, len(req.Recipients))
	for i, rcpt := range req.Recipients {
		// Per-recipient variable map: shared values plus the implicit
		// email variable pointing at this recipient.
		vars := make(map[string]string, len(req.Variables)+1)
		for k, v := range req.Variables {
			vars[k] = v
		}
		vars["email"] = rcpt

		msg := mailer.Message{
			To:          rcpt,
			Subject:     render.Substitute(req.Subject, vars),
			Body:        render.Substitute(req.Body, vars),
			Attachments: req.Attachments,
		}

		start := s.now()
		err := s.sender.Send(ctx, req.Account, msg)
		ts := s.now().UTC()

		result := model.SendResult{Email: rcpt, Success: err == nil, Timestamp: &ts}
		if err != nil {
			result.Message = err.Error()
		} else {
			result.Message = "Sent"
		}
		results = append(results, result)

		s.log.Dispatch(batchID, rcpt, result.Success, ts.Sub(start.UTC()))

		if delay > 0 && i < len(req.Recipients)-1 {
			s.sleep(ctx, delay)
		}
		if ctx.Err() != nil {
			break
		}
	}

	successful := 0
	for _, r := range results {
		if r.Success {
			successful++
		}
	}
	log.Info().Int("total", len(results)).Int("successful", successful).Msg("dispatch finished")

	return results
}

// sleepCtx waits for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
