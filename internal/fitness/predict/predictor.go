package predict

import (
	"errors"
	"fmt"

	"github.com/burnmeter/burnmeter/internal/fitness/logbook"
	"github.com/burnmeter/burnmeter/internal/fitness/profile"
)

// Session is a single workout to estimate the calorie burn for.
type Session struct {
	ExerciseType    logbook.ExerciseType `json:"exerciseType"`
	DurationMinutes int                  `json:"durationMinutes"`
	HeartRate       int                  `json:"heartRate"`
	BodyTempC       float64              `json:"bodyTempC"`
}

var ErrInvalidSession = errors.New("invalid session")

// Validate checks the session fields against the accepted ranges.
// A zero body temperature means the reading was not taken.
func (s Session) Validate() error {
	if !s.ExerciseType.IsValid() {
		return fmt.Errorf("%w: unknown exercise type %q", ErrInvalidSession, s.ExerciseType)
	}
	if s.DurationMinutes < 5 || s.DurationMinutes > 180 {
		return fmt.Errorf("%w: duration %d out of range [5, 180]", ErrInvalidSession, s.DurationMinutes)
	}
	if s.HeartRate < 60 || s.HeartRate > 200 {
		return fmt.Errorf("%w: heart rate %d out of range [60, 200]", ErrInvalidSession, s.HeartRate)
	}
	if s.BodyTempC != 0 && (s.BodyTempC < 35 || s.BodyTempC > 42) {
		return fmt.Errorf("%w: body temp %.1f out of range [35, 42]", ErrInvalidSession, s.BodyTempC)
	}
	return nil
}

// Estimator estimates the calories burned in a session.
type Estimator interface {
	Predict(p profile.Profile, s Session) float64
}

// exercise type factors relative to the heart-rate regression baseline
var exerciseTypeFactor = map[logbook.ExerciseType]float64{
	logbook.ExerciseTypeRunning:  1.15,
	logbook.ExerciseTypeWalking:  0.75,
	logbook.ExerciseTypeCycling:  1.0,
	logbook.ExerciseTypeSwimming: 1.1,
	logbook.ExerciseTypeGym:      0.95,
}

const normalBodyTempC = 37.0

// Predictor estimates the calorie burn via the Keytel et al. heart-rate
// regression, scaled by exercise type and body temperature.
type Predictor struct{}

func NewPredictor() *Predictor {
	return &Predictor{}
}

func (pr *Predictor) Predict(p profile.Profile, s Session) float64 {
	hr := float64(s.HeartRate)
	weight := p.WeightKg
	age := float64(p.Age)

	var kcalPerMin float64
	if p.Gender == profile.GenderMale {
		kcalPerMin = (0.6309*hr + 0.1988*weight + 0.2017*age - 55.0969) / 4.184
	} else {
		kcalPerMin = (0.4472*hr - 0.1263*weight + 0.074*age - 20.4022) / 4.184
	}

	factor, ok := exerciseTypeFactor[s.ExerciseType]
	if !ok {
		factor = 1.0
	}

	// elevated body temperature slightly raises the metabolic rate
	tempFactor := 1.0
	if s.BodyTempC > 0 {
		tempFactor = 1.0 + 0.01*(s.BodyTempC-normalBodyTempC)
	}

	calories := kcalPerMin * float64(s.DurationMinutes) * factor * tempFactor
	if calories < 0 {
		return 0
	}
	return calories
}
