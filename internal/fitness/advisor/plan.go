package advisor

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidTargetBMI = errors.New("target BMI must be between 18.5 and 24.9")

// max healthy weight change pace
const maxKgPerMonth = 2.0

// kcal equivalent of one kilogram of body weight
const kcalPerKg = 7700.0

// MonthStep is one month of the improvement plan.
type MonthStep struct {
	Month                  int      `json:"month"`
	TargetWeightKg         float64  `json:"targetWeightKg"`
	DailyCalorieAdjustment int      `json:"dailyCalorieAdjustment"`
	ExerciseGoal           string   `json:"exerciseGoal"`
	FocusAreas             []string `json:"focusAreas"`
}

// MonthlyPlan is the full month-by-month path from the current to the
// target weight.
type MonthlyPlan struct {
	TargetWeightKg float64     `json:"targetWeightKg"`
	Timeline       string      `json:"timeline"`
	Plan           []MonthStep `json:"plan"`
}

// MonthlySuggestions builds a month-by-month plan towards the target
// BMI, pacing the weight change at no more than two kilograms per
// month. Monthly targets move monotonically from the current weight to
// the target weight.
func MonthlySuggestions(bmi, targetBMI, weightKg, heightCm float64) (*MonthlyPlan, error) {
	if targetBMI < 18.5 || targetBMI > 24.9 {
		return nil, ErrInvalidTargetBMI
	}
	if weightKg <= 0 || heightCm <= 0 {
		return nil, errors.New("weight and height must be positive")
	}

	heightM := heightCm / 100
	targetWeight := targetBMI * heightM * heightM
	diff := targetWeight - weightKg

	months := int(math.Ceil(math.Abs(diff) / maxKgPerMonth))
	if months < 1 {
		months = 1
	}

	losing := diff < 0
	stepKg := diff / float64(months)
	dailyCalorieAdjustment := int(math.Round(stepKg * kcalPerKg / 30))

	plan := &MonthlyPlan{
		TargetWeightKg: round1(targetWeight),
		Timeline:       timeline(months),
	}
	for m := 1; m <= months; m++ {
		monthTarget := weightKg + stepKg*float64(m)
		if m == months {
			monthTarget = targetWeight
		}
		plan.Plan = append(plan.Plan, MonthStep{
			Month:                  m,
			TargetWeightKg:         round1(monthTarget),
			DailyCalorieAdjustment: dailyCalorieAdjustment,
			ExerciseGoal:           exerciseGoal(m, months, losing),
			FocusAreas:             focusAreas(m, months, losing),
		})
	}

	return plan, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func timeline(months int) string {
	if months == 1 {
		return "1 month"
	}
	return fmt.Sprintf("%d months", months)
}

// plan phases: build the habit first, push in the middle, consolidate
// at the end
func exerciseGoal(month, months int, losing bool) string {
	switch phase(month, months) {
	case 0:
		if losing {
			return "3-4 cardio sessions per week, 30+ minutes each"
		}
		return "3 strength sessions per week, focus on form"
	case 1:
		if losing {
			return "4-5 sessions per week, mix cardio and strength"
		}
		return "4 strength sessions per week with progressive overload"
	default:
		if losing {
			return "5 sessions per week, add HIIT for the final push"
		}
		return "4-5 strength sessions per week, increase weights steadily"
	}
}

func focusAreas(month, months int, losing bool) []string {
	switch phase(month, months) {
	case 0:
		if losing {
			return []string{
				"Establish a consistent workout routine",
				"Track daily calorie intake",
				"Cut out sugary drinks",
			}
		}
		return []string{
			"Establish a consistent strength routine",
			"Increase daily calorie intake with whole foods",
			"Prioritize sleep for recovery",
		}
	case 1:
		if losing {
			return []string{
				"Increase workout intensity",
				"Meal prep to stay on target",
				"Monitor weekly progress",
			}
		}
		return []string{
			"Progressive overload on main lifts",
			"Protein at every meal",
			"Monitor weekly progress",
		}
	default:
		if losing {
			return []string{
				"Maintain the calorie deficit",
				"Plan how to keep the weight off",
				"Celebrate consistency over perfection",
			}
		}
		return []string{
			"Consolidate strength gains",
			"Transition to a maintenance calorie intake",
			"Set the next training goal",
		}
	}
}

func phase(month, months int) int {
	if months <= 1 {
		return 2
	}
	switch {
	case float64(month) <= float64(months)/3:
		return 0
	case float64(month) <= 2*float64(months)/3:
		return 1
	default:
		return 2
	}
}
