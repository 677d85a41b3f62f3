package gateway_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lazarofl/payment-gateway/gateway"
	"github.com/lazarofl/payment-gateway/gateway/models"
	"github.com/lazarofl/payment-gateway/internal/acquirer"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

// newTestRouter wires the full pipeline against a fake bank handler.
func newTestRouter(t *testing.T, bankHandler http.HandlerFunc) (chi.Router, func()) {
	t.Helper()

	bankSrv := httptest.NewServer(bankHandler)
	bank := acquirer.New(bankSrv.URL, nil, acquirer.SingleAttempt())

	svc := gateway.NewService(gateway.NewRepository(), bank, slog.New(slog.NewTextHandler(io.Discard)))
	svc.Now = func() time.Time { return validationNow }

	router := chi.NewRouter()
	gateway.NewAPI(svc).AppendRoutes(router)

	return router, bankSrv.Close
}

func approvingBank(authorized bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"authorized":         authorized,
			"authorization_code": "bank-auth-code",
		})
	}
}

func submit(t *testing.T, router chi.Router, payload models.PaymentRequest) *httptest.ResponseRecorder {
	t.Helper()

	jsonReq, err := json.Marshal(payload)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/payments", bytes.NewBuffer(jsonReq))
	router.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	router, closeBank := newTestRouter(t, approvingBank(true))
	defer closeBank()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"app":"payment-gateway-api"}`, w.Body.String())
}

func TestSubmitPayment_Authorized(t *testing.T) {
	router, closeBank := newTestRouter(t, approvingBank(true))
	defer closeBank()

	w := submit(t, router, validRequest())
	require.Equal(t, http.StatusOK, w.Code)

	record := models.PaymentRecord{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))

	require.NotEmpty(t, record.ID)
	require.Equal(t, models.PaymentStatusAuthorized, record.Status)
	require.Equal(t, "8877", record.LastFourCardDigits)
	require.Equal(t, 4, record.ExpiryMonth)
	require.Equal(t, 2025, record.ExpiryYear)
	require.Equal(t, "USD", record.Currency)
	require.Equal(t, int64(100), record.Amount)
}

func TestSubmitPayment_RoundTrip(t *testing.T) {
	router, closeBank := newTestRouter(t, approvingBank(true))
	defer closeBank()

	w := submit(t, router, validRequest())
	require.Equal(t, http.StatusOK, w.Code)

	submitted := models.PaymentRecord{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))

	// retrieval returns a record identical to the one returned at
	// submission, and does so on every call
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/payments/"+submitted.ID, nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		retrieved := models.PaymentRecord{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &retrieved))
		require.Equal(t, submitted, retrieved)
	}
}

func TestSubmitPayment_Declined(t *testing.T) {
	router, closeBank := newTestRouter(t, approvingBank(false))
	defer closeBank()

	w := submit(t, router, validRequest())
	require.Equal(t, http.StatusPaymentRequired, w.Code)

	record := models.PaymentRecord{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	require.Equal(t, models.PaymentStatusDeclined, record.Status)
	require.NotEmpty(t, record.ID)

	// the declined payment is still retrievable by the embedded id
	w2 := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/payments/"+record.ID, nil)
	router.ServeHTTP(w2, req)

	require.Equal(t, http.StatusOK, w2.Code)

	retrieved := models.PaymentRecord{}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &retrieved))
	require.Equal(t, models.PaymentStatusDeclined, retrieved.Status)
}

func TestSubmitPayment_BankFailureStatus(t *testing.T) {
	router, closeBank := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer closeBank()

	w := submit(t, router, validRequest())
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "Bank service is unavailable")
}

func TestSubmitPayment_BankUnreachable(t *testing.T) {
	router, closeBank := newTestRouter(t, approvingBank(true))
	closeBank() // bank is gone before the submission arrives

	w := submit(t, router, validRequest())
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "Internal server error")
}

func TestSubmitPayment_ValidationErrors(t *testing.T) {
	router, closeBank := newTestRouter(t, approvingBank(true))
	defer closeBank()

	payload := models.PaymentRequest{
		CardNumber: "123abc",
		ExpiryDate: "2025-04",
		Currency:   "eur",
		Amount:     100,
		CVV:        "12",
	}

	w := submit(t, router, payload)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Errors []gateway.Violation `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Errors, 4)
}

func TestSubmitPayment_MalformedJSON(t *testing.T) {
	router, closeBank := newTestRouter(t, approvingBank(true))
	defer closeBank()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/payments", bytes.NewBufferString("{not json"))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPayment_NotFound(t *testing.T) {
	router, closeBank := newTestRouter(t, approvingBank(true))
	defer closeBank()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/payments/11111111-2222-3333-4444-555555555555", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Payment not found")
}
