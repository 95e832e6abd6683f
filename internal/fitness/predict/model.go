package predict

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/burnmeter/burnmeter/internal/fitness/profile"

	log "github.com/sirupsen/logrus"
)

// ModelCoefficients are the weights of a pre-trained linear regression
// over the session and profile features.
type ModelCoefficients struct {
	DurationMinutes float64 `json:"durationMinutes"`
	HeartRate       float64 `json:"heartRate"`
	BodyTempC       float64 `json:"bodyTempC"`
	WeightKg        float64 `json:"weightKg"`
	HeightCm        float64 `json:"heightCm"`
	Age             float64 `json:"age"`
	GenderMale      float64 `json:"genderMale"`
}

// Model is a calorie estimator backed by a pre-trained regression
// artifact instead of the closed-form formula.
type Model struct {
	Intercept    float64           `json:"intercept"`
	Coefficients ModelCoefficients `json:"coefficients"`
}

// LoadModel reads a regression artifact from a JSON file.
func LoadModel(path string) (*Model, error) {
	modelBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	var model Model
	if err := json.Unmarshal(modelBytes, &model); err != nil {
		return nil, fmt.Errorf("unmarshal model file: %w", err)
	}
	return &model, nil
}

func (m *Model) Predict(p profile.Profile, s Session) float64 {
	genderMale := 0.0
	if p.Gender == profile.GenderMale {
		genderMale = 1.0
	}

	calories := m.Intercept +
		m.Coefficients.DurationMinutes*float64(s.DurationMinutes) +
		m.Coefficients.HeartRate*float64(s.HeartRate) +
		m.Coefficients.BodyTempC*s.BodyTempC +
		m.Coefficients.WeightKg*p.WeightKg +
		m.Coefficients.HeightCm*p.HeightCm +
		m.Coefficients.Age*float64(p.Age) +
		m.Coefficients.GenderMale*genderMale

	if calories < 0 {
		return 0
	}
	return calories
}

// NewEstimator returns the model estimator when a readable model artifact
// is configured, and falls back to the built-in formula otherwise.
func NewEstimator(modelPath string) Estimator {
	if modelPath == "" {
		return NewPredictor()
	}
	model, err := LoadModel(modelPath)
	if err != nil {
		log.Warnf("load predictor model [%s]: %s, falling back to the built-in formula", modelPath, err)
		return NewPredictor()
	}
	log.Debugf("predictor model loaded from: %s", modelPath)
	return model
}
