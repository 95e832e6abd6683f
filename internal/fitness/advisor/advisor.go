package advisor

import (
	"github.com/burnmeter/burnmeter/internal/fitness/profile"
)

// BMICategory can be one of:
//   - underweight
//   - normal
//   - overweight
//   - obese
type BMICategory string

const (
	BMICategoryUnderweight BMICategory = "underweight"
	BMICategoryNormal      BMICategory = "normal"
	BMICategoryOverweight  BMICategory = "overweight"
	BMICategoryObese       BMICategory = "obese"
)

func BMICategoryFor(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return BMICategoryUnderweight
	case bmi < 25:
		return BMICategoryNormal
	case bmi < 30:
		return BMICategoryOverweight
	default:
		return BMICategoryObese
	}
}

// FitnessLevel can be one of:
//   - beginner
//   - intermediate
//   - advanced
type FitnessLevel string

const (
	FitnessLevelBeginner     FitnessLevel = "beginner"
	FitnessLevelIntermediate FitnessLevel = "intermediate"
	FitnessLevelAdvanced     FitnessLevel = "advanced"
)

func (fl FitnessLevel) IsValid() bool {
	switch fl {
	case FitnessLevelBeginner, FitnessLevelIntermediate, FitnessLevelAdvanced:
		return true
	default:
		return false
	}
}

// NutritionTips returns canned nutrition advice for the BMI band.
func NutritionTips(bmi float64) []string {
	switch BMICategoryFor(bmi) {
	case BMICategoryUnderweight:
		return []string{
			"Increase your calorie intake with nutrient-dense foods like nuts, avocados and whole grains",
			"Eat more frequently, aim for 5-6 smaller meals throughout the day",
			"Add protein-rich foods to every meal to support healthy weight gain",
			"Include healthy fats like olive oil and fatty fish in your diet",
			"Consider protein shakes or smoothies between meals",
		}
	case BMICategoryNormal:
		return []string{
			"Maintain your balanced diet with plenty of vegetables and lean protein",
			"Stay hydrated, aim for at least 2 liters of water per day",
			"Keep portion sizes consistent and avoid late-night snacking",
			"Include a variety of colorful fruits and vegetables for micronutrients",
			"Limit processed foods and added sugars",
		}
	case BMICategoryOverweight:
		return []string{
			"Create a moderate calorie deficit of around 500 kcal per day",
			"Fill half your plate with vegetables before adding protein and carbs",
			"Swap sugary drinks for water or unsweetened tea",
			"Choose whole grains over refined carbohydrates",
			"Plan your meals ahead to avoid impulsive food choices",
		}
	default:
		return []string{
			"Work with a moderate, sustainable calorie deficit rather than crash dieting",
			"Prioritize protein and fiber to stay full on fewer calories",
			"Cut out sugary drinks and minimize alcohol",
			"Keep a food diary to build awareness of your eating patterns",
			"Consider consulting a registered dietitian for a personalized plan",
		}
	}
}

// ExercisePlan holds the recommended exercises for a BMI band and
// fitness level.
type ExercisePlan struct {
	Strength []string `json:"strength"`
	Cardio   []string `json:"cardio"`
	Duration string   `json:"duration"`
}

// RecommendedExercises returns strength and cardio suggestions plus a
// session duration for the given BMI band and fitness level.
func RecommendedExercises(bmi float64, level FitnessLevel) ExercisePlan {
	category := BMICategoryFor(bmi)

	plan := ExercisePlan{}
	switch level {
	case FitnessLevelBeginner:
		plan.Strength = []string{
			"Bodyweight squats",
			"Wall push-ups",
			"Assisted lunges",
			"Plank holds (20-30 sec)",
			"Resistance band rows",
		}
		plan.Cardio = []string{
			"Brisk walking",
			"Stationary cycling (low resistance)",
			"Water aerobics",
			"Light swimming",
		}
		plan.Duration = "20-30 minutes, 3-4 times per week"
	case FitnessLevelAdvanced:
		plan.Strength = []string{
			"Barbell squats and deadlifts",
			"Weighted pull-ups",
			"Bench press",
			"Olympic lifts",
			"Weighted core circuits",
		}
		plan.Cardio = []string{
			"Interval running",
			"HIIT circuits",
			"Competitive swimming",
			"Hill sprints",
		}
		plan.Duration = "45-60 minutes, 5-6 times per week"
	default:
		plan.Strength = []string{
			"Dumbbell squats and lunges",
			"Push-ups",
			"Bent-over rows",
			"Shoulder press",
			"Plank variations",
		}
		plan.Cardio = []string{
			"Jogging",
			"Cycling",
			"Swimming laps",
			"Rowing machine",
		}
		plan.Duration = "30-45 minutes, 4-5 times per week"
	}

	// joint-friendly cardio for the higher BMI bands
	if category == BMICategoryObese {
		plan.Cardio = []string{
			"Brisk walking",
			"Swimming",
			"Stationary cycling",
			"Elliptical trainer",
		}
	}

	return plan
}

// DayPlan is one day of the sample weekly workout plan.
type DayPlan struct {
	Day      string `json:"day"`
	Activity string `json:"activity"`
}

// WeeklyPlan returns the static sample workout week.
func WeeklyPlan() []DayPlan {
	return []DayPlan{
		{Day: "Monday", Activity: "Strength Training (Upper Body) - 45 min"},
		{Day: "Tuesday", Activity: "Cardio (Running/Cycling) - 30 min"},
		{Day: "Wednesday", Activity: "Strength Training (Lower Body) - 45 min"},
		{Day: "Thursday", Activity: "Active Recovery (Yoga/Walking) - 30 min"},
		{Day: "Friday", Activity: "HIIT/Circuit Training - 30 min"},
		{Day: "Saturday", Activity: "Cardio (Swimming/Sports) - 45 min"},
		{Day: "Sunday", Activity: "Rest or Light Stretching - 20 min"},
	}
}

// CalorieGuidelines are the daily calorie targets derived from the
// profile's basal metabolic rate.
type CalorieGuidelines struct {
	BMR         float64 `json:"bmr"`
	Maintenance float64 `json:"maintenance"`
	Goal        float64 `json:"goal"`
	GoalType    string  `json:"goalType"`
}

// DailyCalorieGuidelines computes the BMR-derived daily targets: the
// maintenance level at a 1.55 activity factor and a 500 kcal deficit
// (BMI above 25) or surplus goal.
func DailyCalorieGuidelines(p profile.Profile) CalorieGuidelines {
	bmr := p.BMR()
	maintenance := bmr * 1.55
	guidelines := CalorieGuidelines{
		BMR:         bmr,
		Maintenance: maintenance,
	}
	if p.BMI() > 25 {
		guidelines.Goal = maintenance - 500
		guidelines.GoalType = "weight loss"
	} else {
		guidelines.Goal = maintenance + 500
		guidelines.GoalType = "weight gain"
	}
	return guidelines
}
