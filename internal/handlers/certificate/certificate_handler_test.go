package certificate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"salora-service/internal/domain/certificate"
	xerrors "salora-service/internal/pkg/errors"
	"salora-service/internal/pkg/response"
	service "salora-service/internal/service/certificate"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCertRepo struct {
	cert    *certificate.GiftCertificate
	findErr error
}

func (r *stubCertRepo) Create(_ context.Context, cert *certificate.GiftCertificate) error {
	r.cert = cert
	return nil
}

func (r *stubCertRepo) FindByCode(_ context.Context, _ string) (*certificate.GiftCertificate, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	found := *r.cert
	return &found, nil
}

func (r *stubCertRepo) DecrementBalance(_ context.Context, _ string, amountUsed, _ decimal.Decimal) (decimal.Decimal, error) {
	r.cert.CurrentBalance = r.cert.CurrentBalance.Sub(amountUsed)
	return r.cert.CurrentBalance, nil
}

func validateRequest(t *testing.T, repo *stubCertRepo, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ledger := service.NewLedgerService(repo, zap.NewNop())
	handler := NewCertificateHandler(ledger, nil, zap.NewNop())

	r := gin.New()
	r.POST("/certificates/validate", func(c *gin.Context) {
		c.Set("salon_id", int64(1))
		handler.Validate(c)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/certificates/validate", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestValidateStoreFailureIsServerError(t *testing.T) {
	repo := &stubCertRepo{findErr: errors.New("connection refused")}

	w := validateRequest(t, repo, `{"code":"GC-X","salon_id":1}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotContains(t, w.Body.String(), "connection refused", "store internals must not leak")
}

func TestValidateUnknownCodeStaysInline(t *testing.T) {
	repo := &stubCertRepo{findErr: xerrors.ErrNotFound}

	w := validateRequest(t, repo, `{"code":"GC-MISSING","salon_id":1}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success, "envelope is a 200")
	assert.False(t, resp.Data.Success, "certificate itself is invalid")
	assert.Equal(t, xerrors.ErrCertificateNotFound.Error(), resp.Data.Error)
}

func TestValidateGoodCode(t *testing.T) {
	repo := &stubCertRepo{cert: &certificate.GiftCertificate{
		Code:           "GC-OK",
		SalonID:        1,
		OriginalAmount: decimal.NewFromInt(100),
		CurrentBalance: decimal.NewFromInt(60),
	}}

	w := validateRequest(t, repo, `{"code":"GC-OK","salon_id":1}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Success     bool `json:"success"`
			Certificate struct {
				Code    string `json:"code"`
				IsValid bool   `json:"is_valid"`
			} `json:"certificate"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Success)
	assert.True(t, resp.Data.Certificate.IsValid)
	assert.Equal(t, "GC-OK", resp.Data.Certificate.Code)
}
