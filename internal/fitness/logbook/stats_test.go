package logbook_test

import (
	"context"
	"testing"
	"time"

	"github.com/burnmeter/burnmeter/internal/fitness/logbook"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-redis/redismock/v8"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

func TestAnalyzer_StatsForDays_NoEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockentriesRepo(ctrl)
	analyzer := logbook.NewAnalyzer(repoMock, nil)

	repoMock.EXPECT().
		ListAll(gomock.Any(), gomock.Any()).
		Return([]logbook.Entry{}, nil)

	stats, err := analyzer.StatsForDays(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Zero(t, stats.TotalSessions)
	assert.Zero(t, stats.TotalCalories)
	assert.Zero(t, stats.AvgCalories)
	assert.Zero(t, stats.TotalDurationMinutes)
}

func TestAnalyzer_StatsForDays(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockentriesRepo(ctrl)
	analyzer := logbook.NewAnalyzer(repoMock, nil)

	now := time.Now()
	repoMock.EXPECT().
		ListAll(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params logbook.EntryParams) ([]logbook.Entry, error) {
			require.NotNil(t, params.From)
			require.NotNil(t, params.To)
			assert.WithinDuration(t, now.AddDate(0, 0, -30), *params.From, time.Minute)
			return []logbook.Entry{
				{ExerciseType: logbook.ExerciseTypeRunning, Calories: 300, DurationMinutes: 30},
				{ExerciseType: logbook.ExerciseTypeGym, Calories: 200, DurationMinutes: 45},
				{ExerciseType: logbook.ExerciseTypeRunning, Calories: 400, DurationMinutes: 40},
			}, nil
		})

	stats, err := analyzer.StatsForDays(context.Background(), 30)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 3, stats.TotalSessions)
	assert.InDelta(t, 900, stats.TotalCalories, 0.001)
	assert.InDelta(t, 300, stats.AvgCalories, 0.001)
	assert.Equal(t, 115, stats.TotalDurationMinutes)
}

func TestAnalyzer_StatsForDays_RandomEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockentriesRepo(ctrl)
	analyzer := logbook.NewAnalyzer(repoMock, nil)

	types := logbook.AllExerciseTypes()
	var (
		entries       []logbook.Entry
		totalCalories float64
		totalDuration int
	)
	for i := 0; i < 50; i++ {
		e := logbook.Entry{
			ExerciseType:    types[gofakeit.Number(0, len(types)-1)],
			Calories:        gofakeit.Float64Range(50, 900),
			DurationMinutes: gofakeit.Number(10, 120),
			CreatedAt:       time.Now().Add(-time.Duration(gofakeit.Number(0, 6*24)) * time.Hour),
		}
		totalCalories += e.Calories
		totalDuration += e.DurationMinutes
		entries = append(entries, e)
	}

	repoMock.EXPECT().
		ListAll(gomock.Any(), gomock.Any()).
		Return(entries, nil)

	stats, err := analyzer.StatsForDays(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 50, stats.TotalSessions)
	assert.InDelta(t, totalCalories, stats.TotalCalories, 0.001)
	assert.InDelta(t, totalCalories/50, stats.AvgCalories, 0.001)
	assert.Equal(t, totalDuration, stats.TotalDurationMinutes)
}

func TestAnalyzer_StatsForDays_CacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockentriesRepo(ctrl)

	redisClient, redisMock := redismock.NewClientMock()
	analyzer := logbook.NewAnalyzer(repoMock, redisClient)

	redisMock.
		ExpectGet("burnmeter-logbook-stats||7").
		SetVal(`{"totalCalories":500,"avgCalories":250,"totalSessions":2,"totalDurationMinutes":60}`)

	// repo must not be hit on a cache hit
	stats, err := analyzer.StatsForDays(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.TotalSessions)
	assert.InDelta(t, 500, stats.TotalCalories, 0.001)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestAnalyzer_DailyAggregates(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockentriesRepo(ctrl)
	analyzer := logbook.NewAnalyzer(repoMock, nil)

	dayNow := time.Now().Truncate(24 * time.Hour).Add(12 * time.Hour)
	dayBefore := dayNow.AddDate(0, 0, -2)

	repoMock.EXPECT().
		ListAll(gomock.Any(), gomock.Any()).
		Return([]logbook.Entry{
			{ExerciseType: logbook.ExerciseTypeRunning, Calories: 300, DurationMinutes: 30, CreatedAt: dayNow},
			{ExerciseType: logbook.ExerciseTypeGym, Calories: 150, DurationMinutes: 50, CreatedAt: dayNow},
			{ExerciseType: logbook.ExerciseTypeCycling, Calories: 500, DurationMinutes: 60, CreatedAt: dayBefore},
		}, nil)

	aggregates, err := analyzer.DailyAggregates(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, aggregates, 2)

	// oldest day first
	assert.Equal(t, dayBefore.Truncate(24*time.Hour), aggregates[0].Date)
	assert.InDelta(t, 500, aggregates[0].Calories, 0.001)
	assert.Equal(t, 1, aggregates[0].Sessions)

	assert.Equal(t, dayNow.Truncate(24*time.Hour), aggregates[1].Date)
	assert.InDelta(t, 450, aggregates[1].Calories, 0.001)
	assert.Equal(t, 80, aggregates[1].DurationMinutes)
	assert.Equal(t, 2, aggregates[1].Sessions)
}

func TestAnalyzer_TypeDistribution(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockentriesRepo(ctrl)
	analyzer := logbook.NewAnalyzer(repoMock, nil)

	repoMock.EXPECT().
		ListAll(gomock.Any(), gomock.Any()).
		Return([]logbook.Entry{
			{ExerciseType: logbook.ExerciseTypeRunning},
			{ExerciseType: logbook.ExerciseTypeRunning},
			{ExerciseType: logbook.ExerciseTypeRunning},
			{ExerciseType: logbook.ExerciseTypeSwimming},
		}, nil)

	distribution, err := analyzer.TypeDistribution(context.Background(), 14)
	require.NoError(t, err)
	require.Len(t, distribution, 2)

	assert.Equal(t, 3, distribution[logbook.ExerciseTypeRunning].Count)
	assert.InDelta(t, 75, distribution[logbook.ExerciseTypeRunning].Percentage, 0.001)
	assert.Equal(t, 1, distribution[logbook.ExerciseTypeSwimming].Count)
	assert.InDelta(t, 25, distribution[logbook.ExerciseTypeSwimming].Percentage, 0.001)
}
