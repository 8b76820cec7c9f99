package service

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"clubops/core/errors"
	"clubops/core/mailer"
	"clubops/core/storage"
	"clubops/modules/certificate/dto"
	"clubops/modules/certificate/entity"
	"clubops/modules/certificate/repository"
	evententity "clubops/modules/event/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCertRepo struct {
	scopes       map[string]*repository.Scope
	events       map[string]*evententity.Event
	participants []*evententity.Participant
}

func newFakeCertRepo() *fakeCertRepo {
	return &fakeCertRepo{
		scopes: map[string]*repository.Scope{},
		events: map[string]*evententity.Event{},
	}
}

func (f *fakeCertRepo) GetScopeByUserID(_ context.Context, userID string) (*repository.Scope, error) {
	return f.scopes[userID], nil
}

func (f *fakeCertRepo) GetEventByID(_ context.Context, id string) (*evententity.Event, error) {
	return f.events[id], nil
}

func (f *fakeCertRepo) UpdateTemplateKey(_ context.Context, eventID, key string) error {
	f.events[eventID].CertificateTemplateKey = &key
	return nil
}

func (f *fakeCertRepo) UpdateLayout(_ context.Context, eventID string, layout []byte) error {
	f.events[eventID].CertificateLayout = layout
	return nil
}

func (f *fakeCertRepo) GenerateInTx(_ context.Context, eventID string, render func([]evententity.Participant) error) (int, error) {
	eligible := []evententity.Participant{}
	for _, p := range f.participants {
		if p.EventID == eventID && p.IsPresent && !p.CertificateGenerated {
			eligible = append(eligible, *p)
		}
	}
	if len(eligible) == 0 {
		return 0, nil
	}
	if err := render(eligible); err != nil {
		return 0, err
	}
	for _, e := range eligible {
		for _, p := range f.participants {
			if p.ID == e.ID {
				p.CertificateGenerated = true
			}
		}
	}
	return len(eligible), nil
}

func (f *fakeCertRepo) EligibleForEmail(_ context.Context, eventID string) ([]evententity.Participant, error) {
	out := []evententity.Participant{}
	for _, p := range f.participants {
		if p.EventID == eventID && p.IsPresent && p.CertificateGenerated && !p.CertificateEmailed {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeCertRepo) GetParticipantWithEvent(_ context.Context, participantID string) (*evententity.Participant, *evententity.Event, error) {
	for _, p := range f.participants {
		if p.ID == participantID {
			return p, f.events[p.EventID], nil
		}
	}
	return nil, nil, nil
}

func (f *fakeCertRepo) MarkEmailed(_ context.Context, participantID string) error {
	for _, p := range f.participants {
		if p.ID == participantID {
			p.CertificateEmailed = true
		}
	}
	return nil
}

type fakeBlobStore struct {
	objects map[string][]byte
	putErr  error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (f *fakeBlobStore) Put(_ context.Context, key string, data []byte, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = data
	return nil
}

func (f *fakeBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrBlobNotFound
	}
	return data, nil
}

func (f *fakeBlobStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeBlobStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func (f *fakeBlobStore) keys() []string {
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type sentMail struct {
	To       string
	Subject  string
	Body     string
	Filename string
}

type fakeMailer struct {
	sent    []sentMail
	failFor map[string]error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{failFor: map[string]error{}}
}

func (f *fakeMailer) Send(to, subject, htmlBody string, attachment *mailer.Attachment) error {
	if err := f.failFor[to]; err != nil {
		return err
	}
	mail := sentMail{To: to, Subject: subject, Body: htmlBody}
	if attachment != nil {
		mail.Filename = attachment.Filename
	}
	f.sent = append(f.sent, mail)
	return nil
}

type recordingRenderer struct {
	failFor map[string]error
	calls   int
}

func (r *recordingRenderer) Render(_ []byte, _ entity.Layout, participantName, eventName string) ([]byte, error) {
	r.calls++
	if err := r.failFor[participantName]; err != nil {
		return nil, err
	}
	return []byte("rendered:" + participantName + ":" + eventName), nil
}

func entityAnchor(x, y float64) entity.Anchor {
	return entity.Anchor{X: x, Y: y}
}

func seedCertEvent(repo *fakeCertRepo, blobs *fakeBlobStore) *evententity.Event {
	repo.scopes["admin-1"] = &repository.Scope{ClubID: "club-1", AcademicYearID: "year-1"}
	key := TemplateKey("event-1")
	event := &evententity.Event{
		ID:                     "event-1",
		ClubID:                 "club-1",
		Name:                   "Tech Summit",
		Slug:                   "tech-summit",
		CertificateTemplateKey: &key,
	}
	repo.events[event.ID] = event
	blobs.objects[key] = []byte("%PDF template")
	return event
}

func addParticipant(repo *fakeCertRepo, id, email string, present, generated, emailed bool) {
	repo.participants = append(repo.participants, &evententity.Participant{
		ID: id, EventID: "event-1", Name: "P " + id, Email: email,
		IsPresent: present, CertificateGenerated: generated, CertificateEmailed: emailed,
	})
}

func TestProcessGenerationEventNotFound(t *testing.T) {
	svc := NewCertificateService(newFakeCertRepo(), newFakeBlobStore(), newFakeMailer(), &recordingRenderer{}, nil)

	_, appErr := svc.ProcessGeneration(context.Background(), "missing")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestProcessGenerationRequiresTemplate(t *testing.T) {
	repo := newFakeCertRepo()
	blobs := newFakeBlobStore()
	event := seedCertEvent(repo, blobs)

	t.Run("no template key", func(t *testing.T) {
		event.CertificateTemplateKey = nil
		svc := NewCertificateService(repo, blobs, newFakeMailer(), &recordingRenderer{}, nil)
		_, appErr := svc.ProcessGeneration(context.Background(), event.ID)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrPreconditionFailed, appErr.Code)
	})

	t.Run("template missing from storage", func(t *testing.T) {
		key := "certificates/templates/gone.pdf"
		event.CertificateTemplateKey = &key
		svc := NewCertificateService(repo, blobs, newFakeMailer(), &recordingRenderer{}, nil)
		_, appErr := svc.ProcessGeneration(context.Background(), event.ID)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrPreconditionFailed, appErr.Code)
	})
}

func TestProcessGenerationZeroEligibleIsNoOp(t *testing.T) {
	repo := newFakeCertRepo()
	blobs := newFakeBlobStore()
	seedCertEvent(repo, blobs)
	addParticipant(repo, "p-1", "a@x.com", false, false, false)
	addParticipant(repo, "p-2", "b@x.com", true, true, false)

	r := &recordingRenderer{}
	svc := NewCertificateService(repo, blobs, newFakeMailer(), r, nil)

	resp, appErr := svc.ProcessGeneration(context.Background(), "event-1")
	require.Nil(t, appErr)
	assert.Equal(t, 0, resp.Count)
	assert.Zero(t, r.calls)
}

func TestProcessGenerationStoresArtifactsAndFlipsFlags(t *testing.T) {
	repo := newFakeCertRepo()
	blobs := newFakeBlobStore()
	seedCertEvent(repo, blobs)
	addParticipant(repo, "p-1", "a@x.com", true, false, false)
	addParticipant(repo, "p-2", "b@x.com", true, false, false)
	addParticipant(repo, "p-3", "c@x.com", false, false, false)

	svc := NewCertificateService(repo, blobs, newFakeMailer(), &recordingRenderer{}, nil)

	resp, appErr := svc.ProcessGeneration(context.Background(), "event-1")
	require.Nil(t, appErr)
	assert.Equal(t, 2, resp.Count)
	assert.Contains(t, blobs.keys(), ArtifactKey("event-1", "p-1"))
	assert.Contains(t, blobs.keys(), ArtifactKey("event-1", "p-2"))
	assert.True(t, repo.participants[0].CertificateGenerated)
	assert.True(t, repo.participants[1].CertificateGenerated)
	assert.False(t, repo.participants[2].CertificateGenerated)

	// Second run finds nothing eligible.
	resp, appErr = svc.ProcessGeneration(context.Background(), "event-1")
	require.Nil(t, appErr)
	assert.Equal(t, 0, resp.Count)
}

func TestProcessGenerationRenderFailureFlipsNothing(t *testing.T) {
	repo := newFakeCertRepo()
	blobs := newFakeBlobStore()
	seedCertEvent(repo, blobs)
	addParticipant(repo, "p-1", "a@x.com", true, false, false)
	addParticipant(repo, "p-2", "b@x.com", true, false, false)

	r := &recordingRenderer{failFor: map[string]error{"P p-2": fmt.Errorf("corrupt glyph")}}
	svc := NewCertificateService(repo, blobs, newFakeMailer(), r, nil)

	_, appErr := svc.ProcessGeneration(context.Background(), "event-1")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInternalServer, appErr.Code)
	assert.False(t, repo.participants[0].CertificateGenerated)
	assert.False(t, repo.participants[1].CertificateGenerated)
}

func TestEmailCertificates(t *testing.T) {
	repo := newFakeCertRepo()
	blobs := newFakeBlobStore()
	seedCertEvent(repo, blobs)
	addParticipant(repo, "p-1", "a@x.com", true, true, false)
	addParticipant(repo, "p-2", "b@x.com", true, true, false)
	blobs.objects[ArtifactKey("event-1", "p-1")] = []byte("pdf-1")
	blobs.objects[ArtifactKey("event-1", "p-2")] = []byte("pdf-2")

	mail := newFakeMailer()
	svc := NewCertificateService(repo, blobs, mail, &recordingRenderer{}, nil)

	resp, appErr := svc.EmailCertificates(context.Background(), "admin-1", "event-1")
	require.Nil(t, appErr)
	assert.Equal(t, 2, resp.Count)
	assert.Empty(t, resp.Failures)
	require.Len(t, mail.sent, 2)
	assert.Equal(t, "Your Certificate – Tech Summit", mail.sent[0].Subject)
	assert.Contains(t, mail.sent[0].Body, "<strong>Tech Summit</strong>")
	assert.Equal(t, "tech-summit-certificate.pdf", mail.sent[0].Filename)
	assert.True(t, repo.participants[0].CertificateEmailed)
	assert.True(t, repo.participants[1].CertificateEmailed)
}

func TestEmailCertificatesZeroEligible(t *testing.T) {
	repo := newFakeCertRepo()
	blobs := newFakeBlobStore()
	seedCertEvent(repo, blobs)
	addParticipant(repo, "p-1", "a@x.com", true, true, true)

	mail := newFakeMailer()
	svc := NewCertificateService(repo, blobs, mail, &recordingRenderer{}, nil)

	resp, appErr := svc.EmailCertificates(context.Background(), "admin-1", "event-1")
	require.Nil(t, appErr)
	assert.Equal(t, 0, resp.Count)
	assert.Empty(t, mail.sent)
}

func TestEmailCertificatesMissingArtifact(t *testing.T) {
	repo := newFakeCertRepo()
	blobs := newFakeBlobStore()
	seedCertEvent(repo, blobs)
	addParticipant(repo, "p-1", "a@x.com", true, true, false)

	svc := NewCertificateService(repo, blobs, newFakeMailer(), &recordingRenderer{}, nil)

	resp, appErr := svc.EmailCertificates(context.Background(), "admin-1", "event-1")
	require.Nil(t, appErr)
	assert.Equal(t, 0, resp.Count)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, "p-1", resp.Failures[0].ParticipantID)
	assert.Equal(t, "certificate artifact missing", resp.Failures[0].Reason)
	assert.False(t, repo.participants[0].CertificateEmailed)
}

func TestEmailCertificatesFailureIsolation(t *testing.T) {
	repo := newFakeCertRepo()
	blobs := newFakeBlobStore()
	seedCertEvent(repo, blobs)
	addParticipant(repo, "p-1", "a@x.com", true, true, false)
	addParticipant(repo, "p-2", "b@x.com", true, true, false)
	addParticipant(repo, "p-3", "c@x.com", true, true, false)
	for _, id := range []string{"p-1", "p-2", "p-3"} {
		blobs.objects[ArtifactKey("event-1", id)] = []byte("pdf")
	}

	mail := newFakeMailer()
	mail.failFor["b@x.com"] = fmt.Errorf("smtp 451")
	svc := NewCertificateService(repo, blobs, mail, &recordingRenderer{}, nil)

	resp, appErr := svc.EmailCertificates(context.Background(), "admin-1", "event-1")
	require.Nil(t, appErr)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, "b@x.com", resp.Failures[0].Email)
	assert.Equal(t, "email delivery failed", resp.Failures[0].Reason)
	assert.True(t, repo.participants[0].CertificateEmailed)
	assert.False(t, repo.participants[1].CertificateEmailed)
	assert.True(t, repo.participants[2].CertificateEmailed)
}

func TestUploadTemplateValidation(t *testing.T) {
	repo := newFakeCertRepo()
	blobs := newFakeBlobStore()
	event := seedCertEvent(repo, blobs)
	event.CertificateTemplateKey = nil
	svc := NewCertificateService(repo, blobs, newFakeMailer(), &recordingRenderer{}, nil)
	ctx := context.Background()

	t.Run("rejects non-pdf", func(t *testing.T) {
		appErr := svc.UploadTemplate(ctx, "admin-1", event.ID, []byte("data"), "image/png")
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
	})

	t.Run("rejects empty file", func(t *testing.T) {
		appErr := svc.UploadTemplate(ctx, "admin-1", event.ID, nil, "application/pdf")
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
	})

	t.Run("stores and records the key", func(t *testing.T) {
		appErr := svc.UploadTemplate(ctx, "admin-1", event.ID, []byte("%PDF new"), "application/pdf")
		require.Nil(t, appErr)
		require.NotNil(t, event.CertificateTemplateKey)
		assert.Equal(t, TemplateKey(event.ID), *event.CertificateTemplateKey)
		assert.Equal(t, []byte("%PDF new"), blobs.objects[TemplateKey(event.ID)])
	})
}

func TestSaveLayoutRejectsOutOfRange(t *testing.T) {
	repo := newFakeCertRepo()
	blobs := newFakeBlobStore()
	event := seedCertEvent(repo, blobs)
	svc := NewCertificateService(repo, blobs, newFakeMailer(), &recordingRenderer{}, nil)

	appErr := svc.SaveLayout(context.Background(), "admin-1", event.ID, &dto.SaveLayoutRequest{
		Name:  entityAnchor(1.5, 0.5),
		Event: entityAnchor(0.4, 0.55),
	})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
	assert.Nil(t, event.CertificateLayout)
}

func TestDownloadCertificateRequiresPresence(t *testing.T) {
	repo := newFakeCertRepo()
	blobs := newFakeBlobStore()
	seedCertEvent(repo, blobs)
	addParticipant(repo, "p-1", "a@x.com", false, false, false)

	svc := NewCertificateService(repo, blobs, newFakeMailer(), &recordingRenderer{}, nil)

	_, _, appErr := svc.DownloadCertificate(context.Background(), "admin-1", "p-1")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrPreconditionFailed, appErr.Code)
}

func TestDownloadCertificateRendersOnDemand(t *testing.T) {
	repo := newFakeCertRepo()
	blobs := newFakeBlobStore()
	seedCertEvent(repo, blobs)
	addParticipant(repo, "p-1", "a@x.com", true, false, false)

	svc := NewCertificateService(repo, blobs, newFakeMailer(), &recordingRenderer{}, nil)

	filename, pdf, appErr := svc.DownloadCertificate(context.Background(), "admin-1", "p-1")
	require.Nil(t, appErr)
	assert.Equal(t, "tech-summit-certificate.pdf", filename)
	assert.NotEmpty(t, pdf)
	// On-demand download never flips generation state.
	assert.False(t, repo.participants[0].CertificateGenerated)
}
