package gateway

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lazarofl/payment-gateway/gateway/models"
	"github.com/lazarofl/payment-gateway/internal/expiry"
)

var allowedCurrencies = map[string]struct{}{
	"USD": {},
	"BRL": {},
	"GBP": {},
}

// Violation is a single field-level validation failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations aggregates all field-level failures of one submission.
type Violations []Violation

func (v Violations) Error() string {
	msgs := make([]string, len(v))
	for i, violation := range v {
		msgs[i] = fmt.Sprintf("%s: %s", violation.Field, violation.Message)
	}
	return strings.Join(msgs, "; ")
}

// ValidatedPayment is a payment request that passed all field rules,
// with the expiry normalized into month and year.
type ValidatedPayment struct {
	CardNumber  string
	ExpiryMonth int
	ExpiryYear  int
	Currency    string
	Amount      int64
	CVV         string
}

// ValidatePayment checks every field of req against its rule and
// returns the normalized request, or the full list of violations.
// Fields are checked independently; a failure on one never skips
// another. The expiry rule compares against 'now'.
func ValidatePayment(req models.PaymentRequest, now time.Time) (*ValidatedPayment, Violations) {
	var violations Violations

	if !isDigits(req.CardNumber) {
		violations = append(violations, Violation{
			Field:   "card_number",
			Message: "Card number must contain only numeric characters",
		})
	} else if len(req.CardNumber) < 14 || len(req.CardNumber) > 19 {
		violations = append(violations, Violation{
			Field:   "card_number",
			Message: "Card number must be between 14 and 19 characters long",
		})
	}

	month, year, err := expiry.ParseCardFace(req.ExpiryDate)
	switch {
	case errors.Is(err, expiry.ErrMonth):
		violations = append(violations, Violation{
			Field:   "expiry_date",
			Message: "Expiry month must be between 1 and 12",
		})
	case err != nil:
		violations = append(violations, Violation{
			Field:   "expiry_date",
			Message: "Expiry date must be in the format MM/YY",
		})
	case expiry.Expired(month, year, now):
		violations = append(violations, Violation{
			Field:   "expiry_date",
			Message: "Expiry month and year must be in the future",
		})
	}

	switch {
	case len(req.Currency) != 3:
		violations = append(violations, Violation{
			Field:   "currency",
			Message: "Currency must be exactly 3 characters long",
		})
	case req.Currency != strings.ToUpper(req.Currency):
		violations = append(violations, Violation{
			Field:   "currency",
			Message: "Currency must be in uppercase",
		})
	default:
		if _, ok := allowedCurrencies[req.Currency]; !ok {
			violations = append(violations, Violation{
				Field:   "currency",
				Message: "Currency must be one of: USD, BRL, GBP",
			})
		}
	}

	if !isDigits(req.CVV) {
		violations = append(violations, Violation{
			Field:   "cvv",
			Message: "CVV must contain only numeric characters",
		})
	} else if len(req.CVV) < 3 || len(req.CVV) > 4 {
		violations = append(violations, Violation{
			Field:   "cvv",
			Message: "CVV must be 3-4 characters long",
		})
	}

	if len(violations) > 0 {
		return nil, violations
	}

	return &ValidatedPayment{
		CardNumber:  req.CardNumber,
		ExpiryMonth: month,
		ExpiryYear:  year,
		Currency:    req.Currency,
		Amount:      req.Amount,
		CVV:         req.CVV,
	}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
