package models

import "time"

// UpgradeRequest is a premium-upgrade attempt. Payment happens off-platform;
// the receipt URL is the evidence. No points move in this flow, the premium
// flag flips only when staff approve.
type UpgradeRequest struct {
	ID         int64         `json:"id"`
	UserUID    string        `json:"user_uid"`
	UserName   string        `json:"user_name"`
	PlanID     string        `json:"plan_id"`
	PlanName   string        `json:"plan_name"`
	PricePKR   int           `json:"price_pkr"`
	Date       time.Time     `json:"date"`
	Status     RequestStatus `json:"status"`
	ReceiptURL string        `json:"receipt_url"`
}

// DummyUpgrade receives an upgrade request from a JSON body.
type DummyUpgrade struct {
	PlanID     string `json:"plan_id" validate:"required"`
	ReceiptURL string `json:"receipt_url" validate:"required,url"`
}
