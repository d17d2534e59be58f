package provisioning

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Provisioner onboards patients.
type Provisioner interface {
	Provision(ctx context.Context, req Request) (Result, error)
}

// Handler exposes the onboarding endpoint.
type Handler struct {
	provisioner Provisioner
	logger      *slog.Logger
}

// NewHandler builds the onboarding HTTP handler.
func NewHandler(provisioner Provisioner, logger *slog.Logger) *Handler {
	return &Handler{provisioner: provisioner, logger: logger}
}

type onboardResponse struct {
	Success            bool   `json:"success"`
	IdentityKey        string `json:"identityKey"`
	LoginID            string `json:"loginId"`
	Resumed            bool   `json:"resumed"`
	AlreadyProvisioned bool   `json:"alreadyProvisioned"`
}

type compensationDetail struct {
	Resource    string `json:"resource"`
	IdentityKey string `json:"identityKey"`
	Error       string `json:"error"`
}

type errorResponse struct {
	Success      bool                 `json:"success"`
	Code         string               `json:"code"`
	Error        string               `json:"error"`
	Field        string               `json:"field,omitempty"`
	FailedStep   string               `json:"failedStep,omitempty"`
	RolledBack   *bool                `json:"rolledBack,omitempty"`
	Compensation []compensationDetail `json:"compensation,omitempty"`
}

// Onboard provisions a patient from a JSON body of clinicId, name, mobile and optional pin.
func (h *Handler) Onboard(c *fiber.Ctx) error {
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(errorResponse{
			Code:  "invalid_body",
			Error: "request body must be a JSON object",
		})
	}

	res, err := h.provisioner.Provision(c.UserContext(), req)
	if err != nil {
		status, body := h.renderError(err)
		return c.Status(status).JSON(body)
	}

	return c.Status(http.StatusOK).JSON(onboardResponse{
		Success:            true,
		IdentityKey:        res.IdentityKey,
		LoginID:            res.LoginID,
		Resumed:            res.Resumed,
		AlreadyProvisioned: res.AlreadyProvisioned,
	})
}

func (h *Handler) renderError(err error) (int, errorResponse) {
	var (
		validation *ValidationError
		conflict   *ConflictError
		partial    *PartialFailureError
		timeout    *UpstreamTimeoutError
		failure    *UpstreamFailureError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, errorResponse{Code: "validation_error", Error: err.Error(), Field: validation.Field}
	case errors.As(err, &conflict):
		return http.StatusConflict, errorResponse{Code: "conflict", Error: err.Error()}
	case errors.As(err, &partial):
		status := http.StatusBadGateway
		if partial.Timeout() {
			status = http.StatusGatewayTimeout
		}
		rolledBack := partial.RolledBack()
		body := errorResponse{
			Code:       "partial_failure",
			Error:      err.Error(),
			FailedStep: string(partial.Step),
			RolledBack: &rolledBack,
		}
		for _, f := range partial.Compensation {
			body.Compensation = append(body.Compensation, compensationDetail{
				Resource:    string(f.Resource),
				IdentityKey: f.IdentityKey,
				Error:       f.Err.Error(),
			})
		}
		return status, body
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout, errorResponse{Code: "upstream_timeout", Error: err.Error(), FailedStep: string(timeout.Step)}
	case errors.As(err, &failure):
		return http.StatusBadGateway, errorResponse{Code: "upstream_failure", Error: err.Error(), FailedStep: string(failure.Step)}
	default:
		h.logger.Error("unexpected onboarding error", "error", err)
		return http.StatusInternalServerError, errorResponse{Code: "internal_error", Error: "internal server error"}
	}
}
