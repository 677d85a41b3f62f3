package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lazarofl/payment-gateway/gateway/models"
)

// API is the HTTP API for the payment gateway.
type API struct {
	gateway *Service
}

func NewAPI(gateway *Service) *API {
	return &API{
		gateway: gateway,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Get("/", a.ping)
	r.Route("/payments", func(r chi.Router) {
		r.Post("/", a.submitPayment)
		r.Get("/{paymentID}", a.getPayment)
	})
}

func (a *API) ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"app": "payment-gateway-api"})
}

func (a *API) submitPayment(w http.ResponseWriter, r *http.Request) {
	req := models.PaymentRequest{}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	record, err := a.gateway.ProcessPayment(r.Context(), req)
	if err != nil {
		var violations Violations
		switch {
		case errors.As(err, &violations):
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]Violations{"errors": violations})
		case errors.Is(err, ErrBankUnavailable):
			http.Error(w, "Bank service is unavailable", http.StatusServiceUnavailable)
		default:
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	// A declined payment is persisted and retrievable; the response
	// body carries the record (and its id) under a client-error status
	// so callers can tell a decline from success.
	status := http.StatusOK
	if record.Status == models.PaymentStatusDeclined {
		status = http.StatusPaymentRequired
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(record)
}

func (a *API) getPayment(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentID")

	record, err := a.gateway.GetPayment(r.Context(), paymentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Payment not found", http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(record)
}
