package service

import (
	"context"
	"encoding/json"
	"fmt"

	"clubops/core/errors"
	"clubops/core/logger"

	"github.com/hibiken/asynq"
)

type GeneratePayload struct {
	EventID string `json:"eventId"`
}

// NewGenerateTaskHandler adapts the generation orchestrator to the
// asynq worker. Missing events and unmet preconditions will not heal
// on retry, so those outcomes skip the retry loop.
func NewGenerateTaskHandler(svc CertificateServiceInterface) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload GeneratePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode generation payload: %v: %w", err, asynq.SkipRetry)
		}

		result, appErr := svc.ProcessGeneration(ctx, payload.EventID)
		if appErr != nil {
			logger.Error("CertificateWorker:Generate", appErr)
			switch appErr.Code {
			case errors.ErrNotFound, errors.ErrPreconditionFailed:
				return fmt.Errorf("%s: %w", appErr.Message, asynq.SkipRetry)
			}
			return appErr
		}

		logger.Info("CertificateWorker:Generate", "eventId", payload.EventID, "count", result.Count)
		return nil
	}
}
