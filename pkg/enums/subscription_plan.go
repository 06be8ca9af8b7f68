package enums

import "fmt"

// SubscriptionPlan is the commercial tier attached to a producer account.
type SubscriptionPlan string

const (
	SubscriptionPlanFree  SubscriptionPlan = "free"
	SubscriptionPlanPro   SubscriptionPlan = "pro"
	SubscriptionPlanElite SubscriptionPlan = "elite"
)

var validSubscriptionPlans = []SubscriptionPlan{
	SubscriptionPlanFree,
	SubscriptionPlanPro,
	SubscriptionPlanElite,
}

// MaxActiveLots returns how many active lots the plan allows. A negative
// value means unlimited.
func (p SubscriptionPlan) MaxActiveLots() int {
	switch p {
	case SubscriptionPlanFree:
		return 1
	case SubscriptionPlanPro:
		return 10
	case SubscriptionPlanElite:
		return -1
	}
	return 0
}

// String implements fmt.Stringer.
func (p SubscriptionPlan) String() string {
	return string(p)
}

// IsValid reports whether the value is a known SubscriptionPlan.
func (p SubscriptionPlan) IsValid() bool {
	for _, candidate := range validSubscriptionPlans {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseSubscriptionPlan converts raw input into a SubscriptionPlan.
func ParseSubscriptionPlan(value string) (SubscriptionPlan, error) {
	for _, candidate := range validSubscriptionPlans {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid subscription plan %q", value)
}
