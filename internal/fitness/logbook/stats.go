package logbook

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/burnmeter/burnmeter/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	statsCacheKeyPrefix = "burnmeter-logbook-stats||"
	statsCacheTTL       = time.Minute
)

// Stats summarizes the logbook over a trailing day window.
type Stats struct {
	TotalCalories        float64 `json:"totalCalories"`
	AvgCalories          float64 `json:"avgCalories"`
	TotalSessions        int     `json:"totalSessions"`
	TotalDurationMinutes int     `json:"totalDurationMinutes"`
}

// DailyAggregate is a single day of the calorie burn chart.
type DailyAggregate struct {
	Date            time.Time `json:"date"`
	Calories        float64   `json:"calories"`
	DurationMinutes int       `json:"durationMinutes"`
	Sessions        int       `json:"sessions"`
}

// TypeShare is the share of sessions spent on one exercise type.
type TypeShare struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type Analyzer struct {
	repo        entriesRepo
	redisClient *redis.Client // optional stats cache, may be nil
}

func NewAnalyzer(repo entriesRepo, redisClient *redis.Client) *Analyzer {
	return &Analyzer{
		repo:        repo,
		redisClient: redisClient,
	}
}

func windowParams(days int, now time.Time) EntryParams {
	from := now.AddDate(0, 0, -days)
	return EntryParams{
		From: &from,
		To:   &now,
	}
}

// StatsForDays returns summary statistics for the last N days. The result
// is cached briefly in redis, a stale-by-a-minute summary is fine for the
// dashboard.
func (a *Analyzer) StatsForDays(ctx context.Context, days int) (_ *Stats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.logbook.stats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("days", days))

	cacheKey := fmt.Sprintf("%s%d", statsCacheKeyPrefix, days)
	if a.redisClient != nil {
		cmd := a.redisClient.Get(ctx, cacheKey)
		if cachedStats := cmd.Val(); cachedStats != "" {
			var stats Stats
			if err := json.Unmarshal([]byte(cachedStats), &stats); err == nil {
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return &stats, nil
			}
			log.Tracef("logbook stats cache, unmarshal [%s]: garbage cached value", cacheKey)
		}
	}

	entries, err := a.repo.ListAll(ctx, windowParams(days, time.Now()))
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalSessions: len(entries),
	}
	for _, e := range entries {
		stats.TotalCalories += e.Calories
		stats.TotalDurationMinutes += e.DurationMinutes
	}
	if stats.TotalSessions > 0 {
		stats.AvgCalories = stats.TotalCalories / float64(stats.TotalSessions)
	}

	if a.redisClient != nil {
		if statsJson, err := json.Marshal(stats); err == nil {
			if err := a.redisClient.Set(ctx, cacheKey, statsJson, statsCacheTTL).Err(); err != nil {
				log.Tracef("logbook stats cache, set [%s]: %s", cacheKey, err)
			}
		}
	}

	return stats, nil
}

// DailyAggregates groups the last N days of entries per UTC calendar day,
// oldest day first. Days with no entries are absent.
func (a *Analyzer) DailyAggregates(ctx context.Context, days int) (_ []DailyAggregate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.logbook.daily")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("days", days))

	entries, err := a.repo.ListAll(ctx, windowParams(days, time.Now()))
	if err != nil {
		return nil, err
	}

	day2aggregate := make(map[time.Time]DailyAggregate)
	for _, e := range entries {
		// days bucket on UTC midnight
		day := e.CreatedAt.Truncate(24 * time.Hour)
		agg := day2aggregate[day]
		agg.Date = day
		agg.Calories += e.Calories
		agg.DurationMinutes += e.DurationMinutes
		agg.Sessions++
		day2aggregate[day] = agg
	}

	aggregates := make([]DailyAggregate, 0, len(day2aggregate))
	for _, agg := range day2aggregate {
		aggregates = append(aggregates, agg)
	}
	sort.Slice(aggregates, func(i, j int) bool {
		return aggregates[i].Date.Before(aggregates[j].Date)
	})

	return aggregates, nil
}

// TypeDistribution returns, per exercise type, the number of sessions in
// the last N days and its percentage of all sessions in that window.
func (a *Analyzer) TypeDistribution(ctx context.Context, days int) (_ map[ExerciseType]TypeShare, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.logbook.typedistribution")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("days", days))

	entries, err := a.repo.ListAll(ctx, windowParams(days, time.Now()))
	if err != nil {
		return nil, err
	}

	type2count := make(map[ExerciseType]int)
	for _, e := range entries {
		type2count[e.ExerciseType]++
	}

	type2share := make(map[ExerciseType]TypeShare)
	for exType, count := range type2count {
		p := float64(count) / float64(len(entries)) * 100
		// leave only 2 decimals
		p = float64(int(p*100)) / 100
		type2share[exType] = TypeShare{
			Count:      count,
			Percentage: p,
		}
	}

	return type2share, nil
}
