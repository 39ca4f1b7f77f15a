package types

// Plan is a subscription tier. Entitlement checks treat every non-free plan
// as unmetered.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanBasic      Plan = "basic"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanBasic, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// Metered reports whether the plan is subject to the monthly free quota.
func (p Plan) Metered() bool {
	return p == PlanFree || p == ""
}

// AllowsCustomTemplate reports whether the plan may submit a free-form
// report template instead of one of the built-in formats.
func (p Plan) AllowsCustomTemplate() bool {
	return p == PlanPro || p == PlanEnterprise
}

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusCancelled AccountStatus = "cancelled"
)

type ReferralStatus string

const (
	// ReferralStatusRegistered is set when a referred user signs up with a code.
	ReferralStatusRegistered ReferralStatus = "registered"
	// ReferralStatusConverted is set once, at the referred user's first paid
	// purchase, when the reward is granted.
	ReferralStatusConverted ReferralStatus = "converted"
)

// ArtifactType tags history rows by the kind of generated artifact.
type ArtifactType string

const (
	ArtifactTypeReport   ArtifactType = "report"
	ArtifactTypeCoaching ArtifactType = "coaching"
	ArtifactTypeWeekly   ArtifactType = "weekly"
)
