package analysis

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/burnmeter/burnmeter/internal/fitness/profile"
	"github.com/burnmeter/burnmeter/internal/telemetry/tracing"
	"github.com/burnmeter/burnmeter/pkg"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	analyzer *Analyzer
}

func NewHandler(analyzer *Analyzer) *Handler {
	return &Handler{
		analyzer: analyzer,
	}
}

func daysWindow(r *http.Request) (int, error) {
	daysStr := r.URL.Query().Get("days")
	if daysStr == "" {
		return 30, nil
	}
	days, err := strconv.Atoi(daysStr)
	if err != nil {
		return 0, fmt.Errorf("parameter <days> NaN: %w", err)
	}
	switch days {
	case 7, 14, 30, 60, 90:
		return days, nil
	default:
		return 0, fmt.Errorf("unsupported days window: %d", days)
	}
}

func profileFromQuery(r *http.Request) (profile.Profile, error) {
	q := r.URL.Query()

	age, err := strconv.Atoi(q.Get("age"))
	if err != nil {
		return profile.Profile{}, fmt.Errorf("parameter <age>: %w", err)
	}
	heightCm, err := strconv.ParseFloat(q.Get("heightCm"), 64)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("parameter <heightCm>: %w", err)
	}
	weightKg, err := strconv.ParseFloat(q.Get("weightKg"), 64)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("parameter <weightKg>: %w", err)
	}

	p := profile.Profile{
		Gender:   profile.Gender(q.Get("gender")),
		Age:      age,
		HeightCm: heightCm,
		WeightKg: weightKg,
	}
	if err := p.Validate(); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}

// HandleAnalysis runs the rule-based performance analysis over the last
// N days for the profile given in the query params.
func (handler *Handler) HandleAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analysis")
	defer span.End()

	days, err := daysWindow(r)
	if err != nil {
		http.Error(w, "parse form error, parameter <days>", http.StatusBadRequest)
		return
	}

	p, err := profileFromQuery(r)
	if err != nil {
		http.Error(w, "error, invalid profile", http.StatusBadRequest)
		return
	}

	analysis, err := handler.analyzer.AnalyzeForDays(ctx, days, p)
	if err != nil {
		log.Errorf("performance analysis for %d days: %s", days, err)
		http.Error(w, "failed to analyze performance", http.StatusInternalServerError)
		return
	}

	analysisJson, err := json.Marshal(analysis)
	if err != nil {
		log.Errorf("failed to marshal performance analysis: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, analysisJson, http.StatusOK)
}
