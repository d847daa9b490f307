package recommend

import "slices"

var fallback = []Recommendation{
	{
		Course:   catalog[0],
		AIReason: "Essential ethics training for maintaining professional standards",
	},
	{
		Course:   catalog[2],
		AIReason: "Learn practical technology tools for modern legal practice",
	},
	{
		Course:   catalog[1],
		AIReason: "Build strong foundation in contract drafting skills",
	},
	{
		Course:   catalog[8],
		AIReason: "Comprehensive overview of key business law concepts",
	},
}

// Fallback returns the fixed, non-personalized recommendation set.
func Fallback() []Recommendation {
	return slices.Clone(fallback)
}
