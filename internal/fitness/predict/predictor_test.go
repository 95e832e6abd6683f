package predict_test

import (
	"testing"

	"github.com/burnmeter/burnmeter/internal/fitness/logbook"
	"github.com/burnmeter/burnmeter/internal/fitness/predict"
	"github.com/burnmeter/burnmeter/internal/fitness/profile"

	"github.com/stretchr/testify/assert"
)

func TestPredictor_Predict(t *testing.T) {
	predictor := predict.NewPredictor()

	maleProfile := profile.Profile{
		Gender:   profile.GenderMale,
		Age:      30,
		HeightCm: 180,
		WeightKg: 70,
	}
	femaleProfile := profile.Profile{
		Gender:   profile.GenderFemale,
		Age:      30,
		HeightCm: 165,
		WeightKg: 60,
	}

	maleRun := predictor.Predict(maleProfile, predict.Session{
		ExerciseType:    logbook.ExerciseTypeRunning,
		DurationMinutes: 30,
		HeartRate:       150,
	})
	assert.InDelta(t, 490.66, maleRun, 0.05)

	femaleWalk := predictor.Predict(femaleProfile, predict.Session{
		ExerciseType:    logbook.ExerciseTypeWalking,
		DurationMinutes: 60,
		HeartRate:       140,
	})
	assert.InDelta(t, 396.31, femaleWalk, 0.05)
}

func TestSession_Validate(t *testing.T) {
	validSession := predict.Session{
		ExerciseType:    logbook.ExerciseTypeRunning,
		DurationMinutes: 30,
		HeartRate:       150,
	}
	assert.NoError(t, validSession.Validate())

	// zero body temp means no reading was taken
	withTemp := validSession
	withTemp.BodyTempC = 38.5
	assert.NoError(t, withTemp.Validate())

	for name, mutate := range map[string]func(s *predict.Session){
		"unknown exercise type": func(s *predict.Session) { s.ExerciseType = "parkour" },
		"duration too short":    func(s *predict.Session) { s.DurationMinutes = 3 },
		"duration too long":     func(s *predict.Session) { s.DurationMinutes = 240 },
		"heart rate too low":    func(s *predict.Session) { s.HeartRate = 40 },
		"heart rate too high":   func(s *predict.Session) { s.HeartRate = 220 },
		"body temp too low":     func(s *predict.Session) { s.BodyTempC = 30 },
		"body temp too high":    func(s *predict.Session) { s.BodyTempC = 45 },
	} {
		t.Run(name, func(t *testing.T) {
			s := validSession
			mutate(&s)
			assert.ErrorIs(t, s.Validate(), predict.ErrInvalidSession)
		})
	}
}

func TestPredictor_Predict_Deterministic(t *testing.T) {
	predictor := predict.NewPredictor()
	p := profile.Profile{Gender: profile.GenderMale, Age: 40, HeightCm: 175, WeightKg: 80}
	s := predict.Session{
		ExerciseType:    logbook.ExerciseTypeCycling,
		DurationMinutes: 45,
		HeartRate:       135,
		BodyTempC:       36.8,
	}

	first := predictor.Predict(p, s)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, predictor.Predict(p, s))
	}
}

func TestPredictor_Predict_ExerciseTypeOrdering(t *testing.T) {
	predictor := predict.NewPredictor()
	p := profile.Profile{Gender: profile.GenderMale, Age: 30, HeightCm: 180, WeightKg: 75}
	s := predict.Session{DurationMinutes: 30, HeartRate: 150}

	burned := func(exType logbook.ExerciseType) float64 {
		s.ExerciseType = exType
		return predictor.Predict(p, s)
	}

	// same session burns the most when running, the least when walking
	assert.Greater(t, burned(logbook.ExerciseTypeRunning), burned(logbook.ExerciseTypeSwimming))
	assert.Greater(t, burned(logbook.ExerciseTypeSwimming), burned(logbook.ExerciseTypeCycling))
	assert.Greater(t, burned(logbook.ExerciseTypeCycling), burned(logbook.ExerciseTypeGym))
	assert.Greater(t, burned(logbook.ExerciseTypeGym), burned(logbook.ExerciseTypeWalking))
}

func TestPredictor_Predict_BodyTempCorrection(t *testing.T) {
	predictor := predict.NewPredictor()
	p := profile.Profile{Gender: profile.GenderFemale, Age: 25, HeightCm: 170, WeightKg: 62}

	baseline := predictor.Predict(p, predict.Session{
		ExerciseType:    logbook.ExerciseTypeRunning,
		DurationMinutes: 30,
		HeartRate:       160,
		BodyTempC:       37,
	})
	elevated := predictor.Predict(p, predict.Session{
		ExerciseType:    logbook.ExerciseTypeRunning,
		DurationMinutes: 30,
		HeartRate:       160,
		BodyTempC:       39,
	})

	assert.Greater(t, elevated, baseline)
	assert.InDelta(t, baseline*1.02, elevated, 0.001)
}

func TestPredictor_Predict_NeverNegative(t *testing.T) {
	predictor := predict.NewPredictor()

	// a heart rate this low pushes the regression below zero
	calories := predictor.Predict(
		profile.Profile{Gender: profile.GenderFemale, Age: 20, HeightCm: 170, WeightKg: 80},
		predict.Session{
			ExerciseType:    logbook.ExerciseTypeWalking,
			DurationMinutes: 30,
			HeartRate:       40,
		},
	)
	assert.Zero(t, calories)
}
