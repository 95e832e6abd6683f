package profile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burnmeter/burnmeter/internal/fitness/profile"
)

func TestProfile_Validate(t *testing.T) {
	validProfile := profile.Profile{
		Gender:   profile.GenderMale,
		Age:      30,
		HeightCm: 170,
		WeightKg: 70,
	}
	require.NoError(t, validProfile.Validate())

	cases := []struct {
		name   string
		modify func(p *profile.Profile)
	}{
		{name: "unknown gender", modify: func(p *profile.Profile) { p.Gender = "other" }},
		{name: "age too low", modify: func(p *profile.Profile) { p.Age = 9 }},
		{name: "age too high", modify: func(p *profile.Profile) { p.Age = 101 }},
		{name: "height too low", modify: func(p *profile.Profile) { p.HeightCm = 99 }},
		{name: "height too high", modify: func(p *profile.Profile) { p.HeightCm = 251 }},
		{name: "weight too low", modify: func(p *profile.Profile) { p.WeightKg = 29 }},
		{name: "weight too high", modify: func(p *profile.Profile) { p.WeightKg = 201 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validProfile
			tc.modify(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, profile.ErrInvalidProfile)
		})
	}
}

func TestProfile_BMI(t *testing.T) {
	p := profile.Profile{
		Gender:   profile.GenderFemale,
		Age:      30,
		HeightCm: 170,
		WeightKg: 70,
	}
	// 70 / 1.7^2 = 24.22...
	assert.InDelta(t, 24.22, p.BMI(), 0.01)
}

func TestProfile_BMR_MifflinStJeor(t *testing.T) {
	male := profile.Profile{
		Gender:   profile.GenderMale,
		Age:      30,
		HeightCm: 170,
		WeightKg: 70,
	}
	// 10*70 + 6.25*170 - 5*30 + 5 = 1617.5
	assert.InDelta(t, 1617.5, male.BMR(), 0.001)

	female := male
	female.Gender = profile.GenderFemale
	// 10*70 + 6.25*170 - 5*30 - 161 = 1451.5
	assert.InDelta(t, 1451.5, female.BMR(), 0.001)
}

func TestProfile_MaxHeartRateAndZones(t *testing.T) {
	p := profile.Profile{
		Gender:   profile.GenderMale,
		Age:      40,
		HeightCm: 180,
		WeightKg: 80,
	}
	require.Equal(t, 180, p.MaxHeartRate())

	zones := p.HeartRateZones()
	require.Len(t, zones, 5)

	assert.Equal(t, "Warm-up", zones[0].Name)
	assert.Equal(t, 90, zones[0].FromBpm)
	assert.Equal(t, 108, zones[0].ToBpm)

	assert.Equal(t, "Max", zones[4].Name)
	assert.Equal(t, 162, zones[4].FromBpm)
	assert.Equal(t, 180, zones[4].ToBpm)

	// zones tile the range without gaps
	for i := 1; i < len(zones); i++ {
		assert.Equal(t, zones[i-1].ToBpm, zones[i].FromBpm)
	}
}

func TestProfile_IdealWeightRange(t *testing.T) {
	p := profile.Profile{
		Gender:   profile.GenderFemale,
		Age:      25,
		HeightCm: 170,
		WeightKg: 60,
	}
	min, max := p.IdealWeightRangeKg()
	assert.InDelta(t, 53.465, min, 0.001)
	assert.InDelta(t, 71.961, max, 0.001)
	assert.Less(t, min, max)
}
