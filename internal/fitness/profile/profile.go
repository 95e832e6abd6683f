package profile

import (
	"errors"
	"fmt"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale:
		return true
	default:
		return false
	}
}

var ErrInvalidProfile = errors.New("invalid profile")

// Profile holds the body metrics entered in the dashboard sidebar.
// It is recomputed per request and never persisted.
type Profile struct {
	Gender   Gender  `json:"gender"`
	Age      int     `json:"age"`
	HeightCm float64 `json:"heightCm"`
	WeightKg float64 `json:"weightKg"`
}

func (p Profile) Validate() error {
	if !p.Gender.IsValid() {
		return fmt.Errorf("%w: unknown gender %q", ErrInvalidProfile, p.Gender)
	}
	if p.Age < 10 || p.Age > 100 {
		return fmt.Errorf("%w: age %d out of range [10, 100]", ErrInvalidProfile, p.Age)
	}
	if p.HeightCm < 100 || p.HeightCm > 250 {
		return fmt.Errorf("%w: height %.1f out of range [100, 250]", ErrInvalidProfile, p.HeightCm)
	}
	if p.WeightKg < 30 || p.WeightKg > 200 {
		return fmt.Errorf("%w: weight %.1f out of range [30, 200]", ErrInvalidProfile, p.WeightKg)
	}
	return nil
}

// BMI is weight over squared height in meters.
func (p Profile) BMI() float64 {
	heightM := p.HeightCm / 100
	return p.WeightKg / (heightM * heightM)
}

// BMR estimates the basal metabolic rate with the Mifflin-St Jeor equation.
func (p Profile) BMR() float64 {
	bmr := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	if p.Gender == GenderMale {
		return bmr + 5
	}
	return bmr - 161
}

// MaxHeartRate is the age-predicted maximum heart rate.
func (p Profile) MaxHeartRate() int {
	return 220 - p.Age
}

// IdealWeightRangeKg returns the weight band spanning BMI 18.5 to 24.9
// for the profile height.
func (p Profile) IdealWeightRangeKg() (min, max float64) {
	heightM := p.HeightCm / 100
	return 18.5 * heightM * heightM, 24.9 * heightM * heightM
}

// HeartRateZone is a named band of the age-predicted maximum heart rate.
type HeartRateZone struct {
	Name    string `json:"name"`
	FromBpm int    `json:"fromBpm"`
	ToBpm   int    `json:"toBpm"`
}

// HeartRateZones returns the five training zones at 50-60-70-80-90-100 %
// of the age-predicted maximum.
func (p Profile) HeartRateZones() []HeartRateZone {
	maxHr := float64(p.MaxHeartRate())
	bounds := []struct {
		name      string
		low, high float64
	}{
		{"Warm-up", 0.5, 0.6},
		{"Fat Burn", 0.6, 0.7},
		{"Cardio", 0.7, 0.8},
		{"Peak", 0.8, 0.9},
		{"Max", 0.9, 1.0},
	}

	zones := make([]HeartRateZone, 0, len(bounds))
	for _, b := range bounds {
		zones = append(zones, HeartRateZone{
			Name:    b.name,
			FromBpm: int(maxHr * b.low),
			ToBpm:   int(maxHr * b.high),
		})
	}
	return zones
}
