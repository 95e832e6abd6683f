package logbook

import "time"

// ExerciseType can be one of:
//   - running
//   - walking
//   - cycling
//   - swimming
//   - gym
type ExerciseType string

const (
	ExerciseTypeRunning  ExerciseType = "running"
	ExerciseTypeWalking  ExerciseType = "walking"
	ExerciseTypeCycling  ExerciseType = "cycling"
	ExerciseTypeSwimming ExerciseType = "swimming"
	ExerciseTypeGym      ExerciseType = "gym"
)

func (et ExerciseType) String() string {
	return string(et)
}

func (et ExerciseType) IsValid() bool {
	switch et {
	case ExerciseTypeRunning,
		ExerciseTypeWalking,
		ExerciseTypeCycling,
		ExerciseTypeSwimming,
		ExerciseTypeGym:
		return true
	default:
		return false
	}
}

// AllExerciseTypes returns the supported exercise types in display order.
func AllExerciseTypes() []ExerciseType {
	return []ExerciseType{
		ExerciseTypeRunning,
		ExerciseTypeWalking,
		ExerciseTypeCycling,
		ExerciseTypeSwimming,
		ExerciseTypeGym,
	}
}

// Entry is a single logged workout session with the calories estimated
// for it. Entries are immutable once created, the logbook is append-only.
type Entry struct {
	ID              int          `json:"id"`
	ExerciseType    ExerciseType `json:"exerciseType"`
	DurationMinutes int          `json:"durationMinutes"`
	HeartRate       int          `json:"heartRate"`
	BodyTempC       float64      `json:"bodyTempC"`
	Calories        float64      `json:"calories"`
	WeightKg        float64      `json:"weightKg"`
	BMI             float64      `json:"bmi"`
	CreatedAt       time.Time    `json:"createdAt"`
}
