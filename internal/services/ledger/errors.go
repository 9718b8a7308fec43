package ledger

import "errors"

// Expected, recoverable conditions reported to the caller. The handlers map
// each of these to an HTTP status; none of them is fatal to the process.
var (
	// ErrQuotaExceeded means the daily task cap was hit.
	ErrQuotaExceeded = errors.New("daily task limit reached")
	// ErrTaskAlreadyCompleted means the task id is already in today's
	// completed set.
	ErrTaskAlreadyCompleted = errors.New("task already completed today")
	// ErrInsufficientBalance means the operation would drive points negative.
	ErrInsufficientBalance = errors.New("insufficient point balance")
	// ErrAmountOutOfRange means the withdrawal amount is outside the
	// configured bounds.
	ErrAmountOutOfRange = errors.New("amount outside withdrawal limits")
	// ErrProfileIncomplete means the payout identity is missing.
	ErrProfileIncomplete = errors.New("payment profile incomplete")
	// ErrMissingReceipt means an approval came without a receipt URL.
	ErrMissingReceipt = errors.New("approval requires a receipt url")
	// ErrMissingReason means a decline came without a reason.
	ErrMissingReason = errors.New("decline requires a reason")
	// ErrAlreadySettled means the request is already terminal.
	ErrAlreadySettled = errors.New("request already settled")
	// ErrInvalidPlan means the plan is unknown or not upgradeable.
	ErrInvalidPlan = errors.New("invalid subscription plan")
	// ErrReceiptRequired means an upgrade request came without a receipt.
	ErrReceiptRequired = errors.New("receipt url required")
	// ErrCooldownActive means the spin cooldown has not elapsed.
	ErrCooldownActive = errors.New("spin cooldown active")
	// ErrNotFound means a referenced user, task or request does not exist.
	ErrNotFound = errors.New("record not found")
)
