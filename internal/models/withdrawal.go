package models

import "time"

// RequestStatus is the settlement state shared by withdrawal and upgrade
// requests. Approved and declined are terminal.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusDeclined RequestStatus = "declined"
)

// Terminal reports whether the status allows no further transition.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusDeclined
}

// Withdrawal is a single payout request. The point cost is computed and
// debited when the request is created and frozen thereafter; a decline
// refunds exactly that frozen amount.
type Withdrawal struct {
	ID            int64         `json:"id"`
	UserUID       string        `json:"user_uid"`
	UserName      string        `json:"user_name"` // snapshot at request time
	AmountPKR     int           `json:"amount_pkr"`
	Points        int           `json:"points"` // frozen point cost
	Method        PaymentMethod `json:"method"`
	Status        RequestStatus `json:"status"`
	Date          time.Time     `json:"date"`
	ReceiptURL    string        `json:"receipt_url,omitempty"`    // set on approval
	DeclineReason string        `json:"decline_reason,omitempty"` // set on decline
}

// DummyWithdrawal receives a payout request from a JSON body.
type DummyWithdrawal struct {
	AmountPKR int    `json:"amount_pkr" validate:"required,gt=0"`
	Method    string `json:"method" validate:"required,oneof=PayPal Easypaisa JazzCash"`
}
