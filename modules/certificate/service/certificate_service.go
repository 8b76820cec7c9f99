package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clubops/core/constants"
	"clubops/core/errors"
	"clubops/core/logger"
	"clubops/core/mailer"
	"clubops/core/storage"
	"clubops/modules/certificate/dto"
	"clubops/modules/certificate/entity"
	"clubops/modules/certificate/renderer"
	"clubops/modules/certificate/repository"
	evententity "clubops/modules/event/entity"

	"github.com/hibiken/asynq"
)

const templateURLTTL = 15 * time.Minute

type CertificateService struct {
	repo     repository.CertificateRepositoryInterface
	blobs    storage.BlobStore
	mail     mailer.Mailer
	renderer renderer.Renderer
	queue    *asynq.Client
}

type CertificateServiceInterface interface {
	UploadTemplate(ctx context.Context, userID, eventID string, data []byte, contentType string) *errors.AppError
	GetTemplate(ctx context.Context, userID, eventID string) (*dto.TemplateResponse, *errors.AppError)
	SaveLayout(ctx context.Context, userID, eventID string, req *dto.SaveLayoutRequest) *errors.AppError
	Generate(ctx context.Context, userID, eventID string) (*dto.GenerateResponse, *errors.AppError)
	EnqueueGeneration(ctx context.Context, userID, eventID string) *errors.AppError
	ProcessGeneration(ctx context.Context, eventID string) (*dto.GenerateResponse, *errors.AppError)
	EmailCertificates(ctx context.Context, userID, eventID string) (*dto.EmailResponse, *errors.AppError)
	DownloadCertificate(ctx context.Context, userID, participantID string) (string, []byte, *errors.AppError)
}

func NewCertificateService(
	repo repository.CertificateRepositoryInterface,
	blobs storage.BlobStore,
	mail mailer.Mailer,
	r renderer.Renderer,
	queue *asynq.Client,
) CertificateServiceInterface {
	return &CertificateService{
		repo:     repo,
		blobs:    blobs,
		mail:     mail,
		renderer: r,
		queue:    queue,
	}
}

// scopedEvent verifies the event belongs to the caller's club. Foreign
// events read as not found so IDs do not leak across clubs.
func (s *CertificateService) scopedEvent(ctx context.Context, userID, eventID string) (*evententity.Event, *errors.AppError) {
	scope, err := s.repo.GetScopeByUserID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to resolve membership", err)
	}
	if scope == nil {
		return nil, errors.NewAppError(errors.ErrForbidden, "No active club membership", nil)
	}

	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load event", err)
	}
	if event == nil || event.ClubID != scope.ClubID {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}
	return event, nil
}

func (s *CertificateService) UploadTemplate(ctx context.Context, userID, eventID string, data []byte, contentType string) *errors.AppError {
	event, appErr := s.scopedEvent(ctx, userID, eventID)
	if appErr != nil {
		return appErr
	}

	if contentType != constants.TemplateContentType {
		return errors.NewAppError(errors.ErrInvalidInput, "Template must be a PDF", nil)
	}
	if len(data) == 0 || len(data) > constants.TemplateMaxSizeBytes {
		return errors.NewAppError(errors.ErrInvalidInput, "Template must be between 1 byte and 5 MiB", nil)
	}

	key := TemplateKey(event.ID)
	if err := s.blobs.Put(ctx, key, data, contentType); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to store template", err)
	}
	if err := s.repo.UpdateTemplateKey(ctx, event.ID, key); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to record template", err)
	}

	logger.Info("CertificateService:UploadTemplate", "eventId", event.ID, "bytes", len(data))
	return nil
}

func (s *CertificateService) GetTemplate(ctx context.Context, userID, eventID string) (*dto.TemplateResponse, *errors.AppError) {
	event, appErr := s.scopedEvent(ctx, userID, eventID)
	if appErr != nil {
		return nil, appErr
	}

	resp := &dto.TemplateResponse{
		Layout: entity.ResolveLayout(event.CertificateLayout),
	}
	if event.CertificateTemplateKey != nil {
		url, err := s.blobs.PresignGet(ctx, *event.CertificateTemplateKey, templateURLTTL)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to sign template URL", err)
		}
		resp.TemplateURL = &url
	}
	return resp, nil
}

func (s *CertificateService) SaveLayout(ctx context.Context, userID, eventID string, req *dto.SaveLayoutRequest) *errors.AppError {
	event, appErr := s.scopedEvent(ctx, userID, eventID)
	if appErr != nil {
		return appErr
	}

	layout := entity.Layout{Name: req.Name, Event: req.Event}
	if err := layout.Validate(); err != nil {
		return errors.NewAppError(errors.ErrInvalidInput, err.Error(), nil)
	}

	raw, err := json.Marshal(layout)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to encode layout", err)
	}
	if err := s.repo.UpdateLayout(ctx, event.ID, raw); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to save layout", err)
	}
	return nil
}

func (s *CertificateService) Generate(ctx context.Context, userID, eventID string) (*dto.GenerateResponse, *errors.AppError) {
	if _, appErr := s.scopedEvent(ctx, userID, eventID); appErr != nil {
		return nil, appErr
	}
	return s.ProcessGeneration(ctx, eventID)
}

// EnqueueGeneration hands the batch to the background worker instead
// of rendering inside the request.
func (s *CertificateService) EnqueueGeneration(ctx context.Context, userID, eventID string) *errors.AppError {
	if _, appErr := s.scopedEvent(ctx, userID, eventID); appErr != nil {
		return appErr
	}
	if s.queue == nil {
		return errors.NewAppError(errors.ErrPreconditionFailed, "Background worker is not configured", nil)
	}

	payload, err := json.Marshal(GeneratePayload{EventID: eventID})
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to encode task", err)
	}
	task := asynq.NewTask(constants.TaskGenerateCertificates, payload)
	if _, err := s.queue.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to enqueue generation", err)
	}

	logger.Info("CertificateService:EnqueueGeneration", "eventId", eventID)
	return nil
}

// ProcessGeneration runs the full generation batch for one event:
// load template, render every present-but-ungenerated participant,
// store the artifacts, then flip the generated flags for exactly that
// set in the same transaction the eligible rows were locked in.
func (s *CertificateService) ProcessGeneration(ctx context.Context, eventID string) (*dto.GenerateResponse, *errors.AppError) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load event", err)
	}
	if event == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}
	if event.CertificateTemplateKey == nil {
		return nil, errors.NewAppError(errors.ErrPreconditionFailed, "No certificate template uploaded", nil)
	}

	template, err := s.blobs.Get(ctx, *event.CertificateTemplateKey)
	if err != nil {
		if err == storage.ErrBlobNotFound {
			return nil, errors.NewAppError(errors.ErrPreconditionFailed, "Certificate template is missing from storage", nil)
		}
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load template", err)
	}

	layout := entity.ResolveLayout(event.CertificateLayout)

	count, err := s.repo.GenerateInTx(ctx, event.ID, func(eligible []evententity.Participant) error {
		for _, p := range eligible {
			pdf, rerr := s.renderer.Render(template, layout, p.Name, event.Name)
			if rerr != nil {
				return fmt.Errorf("render certificate for %s: %w", p.ID, rerr)
			}
			if perr := s.blobs.Put(ctx, ArtifactKey(event.ID, p.ID), pdf, constants.TemplateContentType); perr != nil {
				return fmt.Errorf("store certificate for %s: %w", p.ID, perr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Certificate generation failed", err)
	}

	logger.Info("CertificateService:ProcessGeneration", "eventId", event.ID, "count", count)
	return &dto.GenerateResponse{
		Message: fmt.Sprintf("Generated %d certificate(s)", count),
		Count:   count,
	}, nil
}

func emailSubject(eventName string) string {
	return fmt.Sprintf("Your Certificate – %s", eventName)
}

func emailBody(participantName, eventName string) string {
	return fmt.Sprintf(
		"<p>Hi %s,</p><p>Thanks for attending <strong>%s</strong>! Your participation certificate is attached.</p>",
		participantName, eventName,
	)
}

// EmailCertificates sends every generated-but-unemailed certificate
// for the event. One participant's failure never blocks the rest; the
// response carries the success count and a per-participant failure
// list.
func (s *CertificateService) EmailCertificates(ctx context.Context, userID, eventID string) (*dto.EmailResponse, *errors.AppError) {
	event, appErr := s.scopedEvent(ctx, userID, eventID)
	if appErr != nil {
		return nil, appErr
	}

	eligible, err := s.repo.EligibleForEmail(ctx, event.ID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list participants", err)
	}

	sent := 0
	failures := []dto.EmailFailure{}
	fail := func(p evententity.Participant, reason string) {
		failures = append(failures, dto.EmailFailure{ParticipantID: p.ID, Email: p.Email, Reason: reason})
	}

	for _, p := range eligible {
		// Re-fetch per participant: state may have moved since the list
		// was taken.
		current, _, err := s.repo.GetParticipantWithEvent(ctx, p.ID)
		if err != nil {
			fail(p, "failed to load participant")
			continue
		}
		if current == nil {
			fail(p, "participant no longer exists")
			continue
		}
		if current.CertificateEmailed {
			continue
		}
		if !current.CertificateGenerated {
			fail(p, "certificate not generated")
			continue
		}

		pdf, err := s.blobs.Get(ctx, ArtifactKey(event.ID, p.ID))
		if err != nil {
			if err == storage.ErrBlobNotFound {
				fail(p, "certificate artifact missing")
			} else {
				fail(p, "failed to load certificate")
			}
			continue
		}

		attachment := &mailer.Attachment{
			Filename: fmt.Sprintf("%s-certificate.pdf", event.Slug),
			Content:  pdf,
		}
		if err := s.mail.Send(p.Email, emailSubject(event.Name), emailBody(p.Name, event.Name), attachment); err != nil {
			logger.Error("CertificateService:EmailCertificates:Send", err)
			fail(p, "email delivery failed")
			continue
		}

		if err := s.repo.MarkEmailed(ctx, p.ID); err != nil {
			fail(p, "failed to record delivery")
			continue
		}
		sent++
	}

	logger.Info("CertificateService:EmailCertificates", "eventId", event.ID,
		"sent", sent, "failed", len(failures))
	return &dto.EmailResponse{
		Message:  fmt.Sprintf("Emailed %d certificate(s)", sent),
		Count:    sent,
		Failures: failures,
	}, nil
}

// DownloadCertificate renders a single participant's certificate on
// demand. Flags are never touched here.
func (s *CertificateService) DownloadCertificate(ctx context.Context, userID, participantID string) (string, []byte, *errors.AppError) {
	scope, err := s.repo.GetScopeByUserID(ctx, userID)
	if err != nil {
		return "", nil, errors.NewAppError(errors.ErrInternalServer, "Failed to resolve membership", err)
	}
	if scope == nil {
		return "", nil, errors.NewAppError(errors.ErrForbidden, "No active club membership", nil)
	}

	participant, event, err := s.repo.GetParticipantWithEvent(ctx, participantID)
	if err != nil {
		return "", nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load participant", err)
	}
	if participant == nil || event == nil || event.ClubID != scope.ClubID {
		return "", nil, errors.NewAppError(errors.ErrNotFound, "Participant not found", nil)
	}
	if !participant.IsPresent {
		return "", nil, errors.NewAppError(errors.ErrPreconditionFailed, "Participant was not marked present", nil)
	}
	if event.CertificateTemplateKey == nil {
		return "", nil, errors.NewAppError(errors.ErrPreconditionFailed, "No certificate template uploaded", nil)
	}

	template, err := s.blobs.Get(ctx, *event.CertificateTemplateKey)
	if err != nil {
		if err == storage.ErrBlobNotFound {
			return "", nil, errors.NewAppError(errors.ErrPreconditionFailed, "Certificate template is missing from storage", nil)
		}
		return "", nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load template", err)
	}

	pdf, err := s.renderer.Render(template, entity.ResolveLayout(event.CertificateLayout), participant.Name, event.Name)
	if err != nil {
		return "", nil, errors.NewAppError(errors.ErrInternalServer, "Failed to render certificate", err)
	}

	filename := fmt.Sprintf("%s-certificate.pdf", event.Slug)
	return filename, pdf, nil
}
