package models

// PaymentStatus is the outcome of a payment authorization.
type PaymentStatus string

const (
	PaymentStatusAuthorized PaymentStatus = "Authorized"
	PaymentStatusDeclined   PaymentStatus = "Declined"
)

// PaymentRequest is a payment submission as received from the caller.
// The raw card number and CVV never outlive the authorization call.
type PaymentRequest struct {
	CardNumber string `json:"card_number"`
	ExpiryDate string `json:"expiry_date"`
	Currency   string `json:"currency"`
	Amount     int64  `json:"amount"`
	CVV        string `json:"cvv"`
}

// PaymentRecord is the externally visible, persisted outcome of a
// payment. It is created once and never mutated.
type PaymentRecord struct {
	ID                 string        `json:"id"`
	Status             PaymentStatus `json:"status"`
	LastFourCardDigits string        `json:"last_four_card_digits"`
	ExpiryMonth        int           `json:"expiry_month"`
	ExpiryYear         int           `json:"expiry_year"`
	Currency           string        `json:"currency"`
	Amount             int64         `json:"amount"`
}

// LedgerEntry is what the ledger stores per payment id. The
// authorization code is kept for dispute handling and is never
// returned to callers.
type LedgerEntry struct {
	AuthorizationCode string        `json:"authorization_code"`
	Record            PaymentRecord `json:"payment_record"`
}
