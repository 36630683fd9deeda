// internal/handlers/certificate/certificate_handler.go
package certificate

import (
	"net/http"

	"salora-service/internal/domain/certificate"
	"salora-service/internal/middleware"
	"salora-service/internal/pkg/ratelimit"
	"salora-service/internal/pkg/response"
	service "salora-service/internal/service/certificate"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CertificateHandler struct {
	ledger  *service.LedgerService
	limiter *ratelimit.CertificateLimiter
	logger  *zap.Logger
}

func NewCertificateHandler(ledger *service.LedgerService, limiter *ratelimit.CertificateLimiter, logger *zap.Logger) *CertificateHandler {
	return &CertificateHandler{
		ledger:  ledger,
		limiter: limiter,
		logger:  logger,
	}
}

// Issue creates new stored value for the authenticated salon
func (h *CertificateHandler) Issue(c *gin.Context) {
	salonID := middleware.MustGetSalonID(c)

	var req certificate.IssueCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	cert, err := h.ledger.Issue(c.Request.Context(), salonID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "certificate issued", cert)
}

// Validate checks a certificate code against the salon. An invalid code is a
// 200 with success=false and a reason; the UI renders it inline. Lookups are
// rate limited per client IP to keep code guessing impractical.
func (h *CertificateHandler) Validate(c *gin.Context) {
	salonID := middleware.MustGetSalonID(c)

	var req certificate.ValidateCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}
	if req.SalonID == 0 {
		req.SalonID = salonID
	}

	if h.limiter != nil {
		allowed, remaining, err := h.limiter.CheckValidationAttempt(c.Request.Context(), c.ClientIP(), salonID)
		if err != nil {
			h.logger.Warn("certificate rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			response.Error(c, http.StatusTooManyRequests, "too many validation attempts", nil, gin.H{
				"remaining": remaining,
			})
			return
		}
	}

	cert, reason := h.ledger.Validate(c.Request.Context(), req.Code, req.SalonID)
	if reason != nil && cert == nil {
		// a nil certificate means the lookup itself failed, not that the
		// code was classified invalid
		response.FromError(c, reason)
		return
	}
	resp := certificate.ValidateCertificateResponse{
		Success:     reason == nil,
		Certificate: cert,
	}
	if reason != nil {
		resp.Error = reason.Error()
	}

	response.Success(c, http.StatusOK, "certificate validated", resp)
}
