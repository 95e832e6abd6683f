package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/burnmeter/burnmeter/internal/fitness/logbook"
	"github.com/burnmeter/burnmeter/internal/fitness/profile"
	"github.com/burnmeter/burnmeter/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	analysisCacheExpireSeconds = 60
	cacheSizeMegabytes         = 10
)

//go:generate mockgen -source=$GOFILE -destination=analysis_mocks_test.go -package=analysis_test

type entriesRepo interface {
	ListAll(ctx context.Context, params logbook.EntryParams) (_ []logbook.Entry, err error)
}

// PerformanceAnalysis is the rule-based readout of a training window.
type PerformanceAnalysis struct {
	Trends          []string `json:"trends"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}

type Analyzer struct {
	repo  entriesRepo
	cache *freecache.Cache
}

func NewAnalyzer(repo entriesRepo) *Analyzer {
	megabyte := 1024 * 1024
	return &Analyzer{
		repo:  repo,
		cache: freecache.NewCache(cacheSizeMegabytes * megabyte),
	}
}

func analysisCacheKey(days int, p profile.Profile) string {
	return fmt.Sprintf("analysis||%d||%s|%d|%.1f|%.1f", days, p.Gender, p.Age, p.HeightCm, p.WeightKg)
}

// AnalyzeForDays analyzes the last N days of logbook entries against the
// profile. The analysis is pure over the window, so the result is cached
// for a minute.
func (a *Analyzer) AnalyzeForDays(ctx context.Context, days int, p profile.Profile) (_ *PerformanceAnalysis, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.performance")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("days", days))

	cacheKey := analysisCacheKey(days, p)
	if cachedBytes, err := a.cache.Get([]byte(cacheKey)); err == nil {
		var analysis PerformanceAnalysis
		if err := json.Unmarshal(cachedBytes, &analysis); err == nil {
			log.Tracef("found performance analysis in cache: %s", cacheKey)
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &analysis, nil
		}
	}

	now := time.Now()
	from := now.AddDate(0, 0, -days)
	entries, err := a.repo.ListAll(ctx, logbook.EntryParams{
		From: &from,
		To:   &now,
	})
	if err != nil {
		return nil, err
	}

	analysis := a.analyze(entries, p, days, now)

	if analysisBytes, err := json.Marshal(analysis); err == nil {
		if err := a.cache.Set([]byte(cacheKey), analysisBytes, analysisCacheExpireSeconds); err != nil {
			log.Errorf("failed to cache performance analysis: %s", err)
		}
	}

	return analysis, nil
}

// AnalyzePerformance is the pure rule set over a window of entries.
func AnalyzePerformance(entries []logbook.Entry, p profile.Profile) *PerformanceAnalysis {
	a := &Analyzer{}
	return a.analyze(entries, p, 30, time.Now())
}

func (a *Analyzer) analyze(
	entries []logbook.Entry,
	p profile.Profile,
	days int,
	now time.Time,
) *PerformanceAnalysis {
	analysis := &PerformanceAnalysis{}

	if len(entries) == 0 {
		analysis.Insights = append(analysis.Insights,
			"No workouts logged in this period yet",
		)
		analysis.Recommendations = append(analysis.Recommendations,
			"Start with 2-3 sessions per week and build the habit first",
		)
		return analysis
	}

	analysis.Trends = append(analysis.Trends, calorieTrend(entries, now))
	analysis.Insights = append(analysis.Insights,
		consistencyInsight(entries, days),
		dominantTypeInsight(entries),
	)
	if heartRateInsight := heartRateVsCardioZone(entries, p); heartRateInsight != "" {
		analysis.Insights = append(analysis.Insights, heartRateInsight)
	}
	analysis.Recommendations = bmiRecommendations(p)

	return analysis
}

// calorieTrend compares the average burn of the last 7 days to the 7
// days before that.
func calorieTrend(entries []logbook.Entry, now time.Time) string {
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	var lastWeekSum, prevWeekSum float64
	var lastWeekCount, prevWeekCount int
	for _, e := range entries {
		switch {
		case e.CreatedAt.After(weekAgo):
			lastWeekSum += e.Calories
			lastWeekCount++
		case e.CreatedAt.After(twoWeeksAgo):
			prevWeekSum += e.Calories
			prevWeekCount++
		}
	}

	if lastWeekCount == 0 || prevWeekCount == 0 {
		return "Not enough data for a week-over-week burn comparison yet"
	}

	lastWeekAvg := lastWeekSum / float64(lastWeekCount)
	prevWeekAvg := prevWeekSum / float64(prevWeekCount)
	delta := (lastWeekAvg - prevWeekAvg) / prevWeekAvg * 100

	switch {
	case delta > 10:
		return fmt.Sprintf("Your average burn is up %.0f%% versus the previous week, great momentum", delta)
	case delta < -10:
		return fmt.Sprintf("Your average burn dropped %.0f%% versus the previous week", -delta)
	default:
		return "Your average burn is steady week over week"
	}
}

func consistencyInsight(entries []logbook.Entry, days int) string {
	weeks := float64(days) / 7
	if weeks < 1 {
		weeks = 1
	}
	sessionsPerWeek := float64(len(entries)) / weeks

	switch {
	case sessionsPerWeek >= 5:
		return fmt.Sprintf("Excellent consistency: %.1f sessions per week", sessionsPerWeek)
	case sessionsPerWeek >= 3:
		return fmt.Sprintf("Good consistency: %.1f sessions per week", sessionsPerWeek)
	default:
		return fmt.Sprintf("Low training frequency: %.1f sessions per week, aim for at least 3", sessionsPerWeek)
	}
}

func dominantTypeInsight(entries []logbook.Entry) string {
	type2count := make(map[logbook.ExerciseType]int)
	for _, e := range entries {
		type2count[e.ExerciseType]++
	}

	var dominant logbook.ExerciseType
	var dominantCount int
	for exType, count := range type2count {
		if count > dominantCount || (count == dominantCount && exType < dominant) {
			dominant = exType
			dominantCount = count
		}
	}

	share := float64(dominantCount) / float64(len(entries)) * 100
	if share > 60 && len(type2count) > 1 {
		return fmt.Sprintf("Most of your training is %s (%.0f%%), consider mixing in other activities", dominant, share)
	}
	return fmt.Sprintf("Your most frequent activity is %s (%.0f%% of sessions)", dominant, share)
}

// heartRateVsCardioZone compares the average session heart rate to the
// profile's cardio zone (70-80% of max).
func heartRateVsCardioZone(entries []logbook.Entry, p profile.Profile) string {
	var hrSum, hrCount int
	for _, e := range entries {
		if e.HeartRate > 0 {
			hrSum += e.HeartRate
			hrCount++
		}
	}
	if hrCount == 0 {
		return ""
	}

	avgHr := hrSum / hrCount
	maxHr := p.MaxHeartRate()
	cardioLow := int(float64(maxHr) * 0.7)
	cardioHigh := int(float64(maxHr) * 0.8)

	switch {
	case avgHr < cardioLow:
		return fmt.Sprintf("Average heart rate %d bpm is below your cardio zone (%d-%d bpm), push a bit harder", avgHr, cardioLow, cardioHigh)
	case avgHr > cardioHigh:
		return fmt.Sprintf("Average heart rate %d bpm is above your cardio zone (%d-%d bpm), watch your recovery", avgHr, cardioLow, cardioHigh)
	default:
		return fmt.Sprintf("Average heart rate %d bpm sits nicely in your cardio zone (%d-%d bpm)", avgHr, cardioLow, cardioHigh)
	}
}

func bmiRecommendations(p profile.Profile) []string {
	bmi := p.BMI()
	switch {
	case bmi < 18.5:
		return []string{
			"Focus on strength training over long cardio sessions",
			"Pair your training with a calorie surplus to gain weight healthily",
		}
	case bmi < 25:
		return []string{
			"Keep your current mix of training to maintain a healthy weight",
			"Consider setting a performance goal to stay motivated",
		}
	case bmi < 30:
		return []string{
			"Add one extra cardio session per week to work towards a healthy BMI",
			"Pair your training with a moderate calorie deficit",
		}
	default:
		return []string{
			"Favor low-impact cardio like swimming or cycling to protect your joints",
			"Combine regular training with a sustainable calorie deficit",
			"Consider discussing your plan with a healthcare professional",
		}
	}
}
