package models

// Settings are the admin-tunable economy parameters. A single current value
// of each exists process-wide; updates are last-write-wins behind a single
// writer.
type Settings struct {
	PKRPer1000Points  int    `json:"pkr_per_1000_points"`
	MinWithdrawalPKR  int    `json:"min_withdrawal_pkr"`
	MaxWithdrawalPKR  int    `json:"max_withdrawal_pkr"`
	DailyTaskLimit    int    `json:"daily_task_limit"`
	PointsPerReferral int    `json:"points_per_referral"`
	ReferralsNeeded   int    `json:"referrals_needed"` // same-day referrals required for the bonus
	BonusPoints       int    `json:"bonus_points"`
	EasypaisaAccount  string `json:"easypaisa_account"`
	JazzCashAccount   string `json:"jazzcash_account"`
}

// DefaultSettings are the launch values of the economy.
func DefaultSettings() Settings {
	return Settings{
		PKRPer1000Points:  278,
		MinWithdrawalPKR:  1390,
		MaxWithdrawalPKR:  10000,
		DailyTaskLimit:    5,
		PointsPerReferral: 100,
		ReferralsNeeded:   5,
		BonusPoints:       500,
	}
}

// DummySettings receives an economy update from a JSON body.
type DummySettings struct {
	PKRPer1000Points  int    `json:"pkr_per_1000_points" validate:"required,gt=0"`
	MinWithdrawalPKR  int    `json:"min_withdrawal_pkr" validate:"required,gt=0"`
	MaxWithdrawalPKR  int    `json:"max_withdrawal_pkr" validate:"required,gt=0"`
	DailyTaskLimit    int    `json:"daily_task_limit" validate:"required,gt=0"`
	PointsPerReferral int    `json:"points_per_referral" validate:"required,gt=0"`
	ReferralsNeeded   int    `json:"referrals_needed" validate:"required,gt=0"`
	BonusPoints       int    `json:"bonus_points" validate:"required,gt=0"`
	EasypaisaAccount  string `json:"easypaisa_account"`
	JazzCashAccount   string `json:"jazzcash_account"`
}
