package models

// SubscriptionPlan is static reference data describing an account tier.
type SubscriptionPlan struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	PricePKR          int      `json:"price_pkr"`
	Features          []string `json:"features"`
	EarningMultiplier int      `json:"earning_multiplier"`
}

// Plans is the fixed tier catalog.
var Plans = []SubscriptionPlan{
	{
		ID:                "free",
		Name:              "Free User",
		PricePKR:          0,
		Features:          []string{"Standard Earning Rate", "Access to all tasks", "Standard Support"},
		EarningMultiplier: 1,
	},
	{
		ID:                "premium",
		Name:              "Premium Member",
		PricePKR:          1500,
		Features:          []string{"2x Earning Rate", "Priority Task Access", "Premium Support", "Premium Badge"},
		EarningMultiplier: 2,
	},
}

// PlanByID returns the plan with the given id, or nil when unknown.
func PlanByID(id string) *SubscriptionPlan {
	for i := range Plans {
		if Plans[i].ID == id {
			return &Plans[i]
		}
	}
	return nil
}
