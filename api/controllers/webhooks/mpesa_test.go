package webhooks

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kaanagas/kaanagas-backend/internal/payments"
	"github.com/kaanagas/kaanagas-backend/pkg/config"
	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	pkgerrors "github.com/kaanagas/kaanagas-backend/pkg/errors"
	"github.com/kaanagas/kaanagas-backend/pkg/logger"
	"github.com/kaanagas/kaanagas-backend/pkg/mpesa"
)

type stubPaymentService struct {
	outcome string
	err     error
	seen    *mpesa.CallbackEnvelope
}

func (s *stubPaymentService) Initiate(ctx context.Context, input payments.InitiateInput) (*models.Payment, error) {
	panic("unimplemented")
}

func (s *stubPaymentService) HandleCallback(ctx context.Context, envelope mpesa.CallbackEnvelope) (string, error) {
	s.seen = &envelope
	return s.outcome, s.err
}

func (s *stubPaymentService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	panic("unimplemented")
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func callbackBody(checkoutID string, resultCode int) string {
	return `{"Body":{"stkCallback":{"MerchantRequestID":"mr-1","CheckoutRequestID":"` + checkoutID + `","ResultCode":` + strconv.Itoa(resultCode) + `,"ResultDesc":"ok"}}}`
}

func TestMpesaWebhookCompleted(t *testing.T) {
	svc := &stubPaymentService{outcome: models.CallbackOutcomeCompleted}
	handler := Mpesa(svc, config.MpesaConfig{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mpesa", strings.NewReader(callbackBody("ws_co_1", 0)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), models.CallbackOutcomeCompleted)
	require.NotNil(t, svc.seen)
	require.Equal(t, "ws_co_1", svc.seen.Body.STKCallback.CheckoutRequestID)
}

func TestMpesaWebhookReplayAcknowledged(t *testing.T) {
	svc := &stubPaymentService{outcome: models.CallbackOutcomeReplay}
	handler := Mpesa(svc, config.MpesaConfig{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mpesa", strings.NewReader(callbackBody("ws_co_2", 1)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), models.CallbackOutcomeReplay)
}

func TestMpesaWebhookUnmatchedIsNotFound(t *testing.T) {
	svc := &stubPaymentService{outcome: models.CallbackOutcomeUnmatched}
	handler := Mpesa(svc, config.MpesaConfig{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mpesa", strings.NewReader(callbackBody("ws_co_3", 0)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestMpesaWebhookMalformedBody(t *testing.T) {
	svc := &stubPaymentService{}
	handler := Mpesa(svc, config.MpesaConfig{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mpesa", strings.NewReader("{not json"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Nil(t, svc.seen)
}

func TestMpesaWebhookMissingCheckoutID(t *testing.T) {
	svc := &stubPaymentService{err: pkgerrors.New(pkgerrors.CodeValidation, "callback missing checkout request id")}
	handler := Mpesa(svc, config.MpesaConfig{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mpesa", strings.NewReader(callbackBody("", 0)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestMpesaWebhookRejectsBadSecret(t *testing.T) {
	svc := &stubPaymentService{outcome: models.CallbackOutcomeCompleted}
	handler := Mpesa(svc, config.MpesaConfig{CallbackSecret: "hunter2"}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mpesa?secret=wrong", strings.NewReader(callbackBody("ws_co_4", 0)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusForbidden, resp.Code)
	require.Nil(t, svc.seen)

	ok := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mpesa?secret=hunter2", strings.NewReader(callbackBody("ws_co_4", 0)))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, ok)

	require.Equal(t, http.StatusOK, resp.Code)
}
