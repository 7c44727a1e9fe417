package report

import "github.com/shopspring/decimal"

// ImpactRatios are the currency amounts that buy one unit of each outcome
type ImpactRatios struct {
	PeopleHelped   decimal.Decimal
	TreesPlanted   decimal.Decimal
	MealsProvided  decimal.Decimal
	EducationHours decimal.Decimal
}

// DefaultImpactRatios: $100 helps a person, $10 plants a tree, $5 buys a meal,
// $20 funds an hour of education.
func DefaultImpactRatios() ImpactRatios {
	return ImpactRatios{
		PeopleHelped:   decimal.NewFromInt(100),
		TreesPlanted:   decimal.NewFromInt(10),
		MealsProvided:  decimal.NewFromInt(5),
		EducationHours: decimal.NewFromInt(20),
	}
}

// EstimatedImpact is the real-world outcome a donated total stands for
type EstimatedImpact struct {
	PeopleHelped   int64 `json:"peopleHelped"`
	TreesPlanted   int64 `json:"treesPlanted"`
	MealsProvided  int64 `json:"mealsProvided"`
	EducationHours int64 `json:"educationHours"`
}

// Estimate converts a donated total into impact units, floor(total / ratio)
// each. Negative totals count as zero and a non-positive ratio yields zero.
func (r ImpactRatios) Estimate(total decimal.Decimal) EstimatedImpact {
	if total.IsNegative() {
		total = decimal.Zero
	}
	return EstimatedImpact{
		PeopleHelped:   units(total, r.PeopleHelped),
		TreesPlanted:   units(total, r.TreesPlanted),
		MealsProvided:  units(total, r.MealsProvided),
		EducationHours: units(total, r.EducationHours),
	}
}

func units(total, ratio decimal.Decimal) int64 {
	if !ratio.IsPositive() {
		return 0
	}
	q, _ := total.QuoRem(ratio, 0)
	return q.IntPart()
}
