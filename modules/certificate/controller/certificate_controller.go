package controller

import (
	"fmt"
	"io"
	"net/http"

	"clubops/core/constants"
	"clubops/core/controller"
	"clubops/core/errors"
	"clubops/core/utils"
	"clubops/modules/certificate/dto"
	"clubops/modules/certificate/service"

	"github.com/labstack/echo/v4"
)

type CertificateController struct {
	controller.BaseController
	CertificateService service.CertificateServiceInterface
}

func NewCertificateController(svc service.CertificateServiceInterface) *CertificateController {
	return &CertificateController{
		BaseController:     controller.NewBaseController(),
		CertificateService: svc,
	}
}

func (cc *CertificateController) claims(c echo.Context) (*utils.TokenClaims, bool) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	return claims, ok && claims != nil
}

// UploadTemplate handles POST /events/:eventID/certificate-template.
func (cc *CertificateController) UploadTemplate(c echo.Context) error {
	claims, ok := cc.claims(c)
	if !ok {
		return cc.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	fileHeader, err := c.FormFile("template")
	if err != nil {
		return cc.BadRequest(errors.ErrInvalidRequestData, "Template file is required")
	}
	if fileHeader.Size > constants.TemplateMaxSizeBytes {
		return cc.BadRequest(errors.ErrInvalidInput, "Template must be 5 MiB or smaller")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return cc.InternalServerError(errors.ErrInternalServer, "Failed to read upload")
	}
	defer file.Close()

	// Cap the read even when the declared size lies.
	data, err := io.ReadAll(io.LimitReader(file, constants.TemplateMaxSizeBytes+1))
	if err != nil {
		return cc.InternalServerError(errors.ErrInternalServer, "Failed to read upload")
	}
	if len(data) > constants.TemplateMaxSizeBytes {
		return cc.BadRequest(errors.ErrInvalidInput, "Template must be 5 MiB or smaller")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if appErr := cc.CertificateService.UploadTemplate(c.Request().Context(), claims.UserID, c.Param("eventID"), data, contentType); appErr != nil {
		return cc.ErrorResponse(c, appErr)
	}
	return cc.SuccessResponse(c, nil, "Template uploaded")
}

// GetTemplate handles GET /events/:eventID/certificate-template.
func (cc *CertificateController) GetTemplate(c echo.Context) error {
	claims, ok := cc.claims(c)
	if !ok {
		return cc.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	resp, appErr := cc.CertificateService.GetTemplate(c.Request().Context(), claims.UserID, c.Param("eventID"))
	if appErr != nil {
		return cc.ErrorResponse(c, appErr)
	}
	return cc.SuccessResponse(c, resp, "Success")
}

// SaveLayout handles PUT /events/:eventID/certificate-layout.
func (cc *CertificateController) SaveLayout(c echo.Context) error {
	claims, ok := cc.claims(c)
	if !ok {
		return cc.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	var req dto.SaveLayoutRequest
	if err := c.Bind(&req); err != nil {
		return cc.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	if appErr := cc.CertificateService.SaveLayout(c.Request().Context(), claims.UserID, c.Param("eventID"), &req); appErr != nil {
		return cc.ErrorResponse(c, appErr)
	}
	return cc.SuccessResponse(c, nil, "Layout saved")
}

// Generate handles POST /events/:eventID/certificates/generate.
// ?async=true enqueues the batch for the background worker.
func (cc *CertificateController) Generate(c echo.Context) error {
	claims, ok := cc.claims(c)
	if !ok {
		return cc.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	eventID := c.Param("eventID")
	if c.QueryParam("async") == "true" {
		if appErr := cc.CertificateService.EnqueueGeneration(c.Request().Context(), claims.UserID, eventID); appErr != nil {
			return cc.ErrorResponse(c, appErr)
		}
		return c.JSON(http.StatusAccepted, controller.NewSuccessResponse(http.StatusAccepted, nil, "Generation queued"))
	}

	resp, appErr := cc.CertificateService.Generate(c.Request().Context(), claims.UserID, eventID)
	if appErr != nil {
		return cc.ErrorResponse(c, appErr)
	}
	return cc.SuccessResponse(c, resp, resp.Message)
}

// Email handles POST /events/:eventID/certificates/email.
func (cc *CertificateController) Email(c echo.Context) error {
	claims, ok := cc.claims(c)
	if !ok {
		return cc.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	resp, appErr := cc.CertificateService.EmailCertificates(c.Request().Context(), claims.UserID, c.Param("eventID"))
	if appErr != nil {
		return cc.ErrorResponse(c, appErr)
	}
	return cc.SuccessResponse(c, resp, resp.Message)
}

// Download handles GET /certificates/:participantID.
func (cc *CertificateController) Download(c echo.Context) error {
	claims, ok := cc.claims(c)
	if !ok {
		return cc.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	filename, pdf, appErr := cc.CertificateService.DownloadCertificate(c.Request().Context(), claims.UserID, c.Param("participantID"))
	if appErr != nil {
		return cc.ErrorResponse(c, appErr)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, constants.TemplateContentType, pdf)
}
