package models

// ResetEmail is the message published to the password_resets queue and
// consumed by the notification sender.
type ResetEmail struct {
	Email string `json:"email"`
	Token string `json:"token"`
}
