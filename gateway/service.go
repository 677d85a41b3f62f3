package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lazarofl/payment-gateway/gateway/models"
	"github.com/lazarofl/payment-gateway/internal/acquirer"
	"golang.org/x/exp/slog"
)

var (
	// ErrBankUnavailable means the bank answered with a failure status.
	ErrBankUnavailable = fmt.Errorf("bank service is unavailable")
	// ErrInternal covers transport-level and other processing faults.
	ErrInternal = fmt.Errorf("internal error")
)

// Authorizer obtains an authorization decision from the acquiring bank.
type Authorizer interface {
	Authorize(ctx context.Context, req acquirer.AuthorizationRequest) (acquirer.AuthorizationDecision, error)
}

// Service orchestrates a payment submission end to end: validate,
// authorize against the bank, persist the outcome, return the record.
type Service struct {
	ledger Ledger
	bank   Authorizer
	logger *slog.Logger

	// Now is the reference time for the expiry rule; tests pin it.
	Now func() time.Time
}

func NewService(ledger Ledger, bank Authorizer, logger *slog.Logger) *Service {
	return &Service{
		ledger: ledger,
		bank:   bank,
		logger: logger,
		Now:    time.Now,
	}
}

// ProcessPayment runs one submission through the pipeline. A declined
// payment is not an error: the returned record carries the declined
// status and is persisted and retrievable like an authorized one.
// Validation failures are returned as Violations before any bank call.
func (s *Service) ProcessPayment(ctx context.Context, req models.PaymentRequest) (*models.PaymentRecord, error) {
	validated, violations := ValidatePayment(req, s.Now())
	if violations != nil {
		return nil, violations
	}

	decision, err := s.bank.Authorize(ctx, acquirer.AuthorizationRequest{
		CardNumber:  validated.CardNumber,
		ExpiryMonth: validated.ExpiryMonth,
		ExpiryYear:  validated.ExpiryYear,
		Currency:    validated.Currency,
		Amount:      validated.Amount,
		CVV:         validated.CVV,
	})
	if err != nil {
		// Distinguish a bank failure status from a transport fault for
		// observability; callers see 503 vs 500.
		s.logger.Error("bank authorization failed", "err", err)
		if errors.Is(err, acquirer.ErrUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrBankUnavailable, err)
		}
		return nil, fmt.Errorf("%w: authorizing payment: %v", ErrInternal, err)
	}

	status := models.PaymentStatusDeclined
	if decision.Authorized {
		status = models.PaymentStatusAuthorized
	}

	record := models.PaymentRecord{
		ID:                 uuid.New().String(),
		Status:             status,
		LastFourCardDigits: validated.CardNumber[len(validated.CardNumber)-4:],
		ExpiryMonth:        validated.ExpiryMonth,
		ExpiryYear:         validated.ExpiryYear,
		Currency:           validated.Currency,
		Amount:             validated.Amount,
	}

	entry := models.LedgerEntry{
		AuthorizationCode: decision.AuthorizationCode,
		Record:            record,
	}

	if err := s.ledger.Put(ctx, record.ID, entry); err != nil {
		return nil, fmt.Errorf("%w: persisting payment: %v", ErrInternal, err)
	}

	s.logger.Info("payment processed",
		slog.String("payment_id", record.ID),
		slog.String("status", string(record.Status)),
		slog.String("last_four", record.LastFourCardDigits),
	)

	return &record, nil
}

// GetPayment returns the persisted record for id, or ErrNotFound.
func (s *Service) GetPayment(ctx context.Context, id string) (*models.PaymentRecord, error) {
	entry, err := s.ledger.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding payment: %w", err)
	}

	return &entry.Record, nil
}
