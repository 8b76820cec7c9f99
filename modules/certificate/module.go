package certificate

import (
	"clubops/core/database"
	"clubops/core/mailer"
	"clubops/core/middleware"
	"clubops/core/storage"
	"clubops/modules/certificate/controller"
	"clubops/modules/certificate/renderer"
	"clubops/modules/certificate/repository"
	"clubops/modules/certificate/router"
	"clubops/modules/certificate/service"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware, blobs storage.BlobStore, mail mailer.Mailer, queue *asynq.Client) {
	repo := repository.NewCertificateRepository(db)
	certService := service.NewCertificateService(repo, blobs, mail, renderer.NewPDFRenderer(), queue)
	ctrl := controller.NewCertificateController(certService)

	router.NewCertificateRouter(ctrl).Setup(e, mw)
}

// NewWorkerService builds the service used by the background worker,
// which has no HTTP surface and never enqueues further work.
func NewWorkerService(db database.IDatabase, blobs storage.BlobStore, mail mailer.Mailer) service.CertificateServiceInterface {
	repo := repository.NewCertificateRepository(db)
	return service.NewCertificateService(repo, blobs, mail, renderer.NewPDFRenderer(), nil)
}
