package predict

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/burnmeter/burnmeter/internal/fitness/logbook"
	"github.com/burnmeter/burnmeter/internal/fitness/profile"
	"github.com/burnmeter/burnmeter/internal/telemetry/metrics"
	"github.com/burnmeter/burnmeter/internal/telemetry/tracing"
	"github.com/burnmeter/burnmeter/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=predict_mocks_test.go -package=predict_test

type entriesRepo interface {
	Add(ctx context.Context, entry logbook.Entry) (*logbook.Entry, error)
	Count(ctx context.Context, params logbook.EntryParams) (int, error)
}

type PredictRequest struct {
	Profile profile.Profile `json:"profile"`
	Session Session         `json:"session"`
}

type PredictResponse struct {
	Calories          float64 `json:"calories"`
	CaloriesPerMinute float64 `json:"caloriesPerMinute"`
	CountToday        int     `json:"countToday"`
}

type Handler struct {
	estimator      Estimator
	repo           entriesRepo
	metricsManager *metrics.Manager
}

func NewHandler(estimator Estimator, repo entriesRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		estimator:      estimator,
		repo:           repo,
		metricsManager: metricsManager,
	}
}

// HandlePredict estimates the calorie burn for the posted session and
// appends the prediction to the logbook.
func (handler *Handler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.predict")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("predict, unmarshal json params: %s", err)
		http.Error(w, "predict failed", http.StatusBadRequest)
		return
	}

	if err := req.Profile.Validate(); err != nil {
		http.Error(w, "error, invalid profile", http.StatusBadRequest)
		return
	}
	if err := req.Session.Validate(); err != nil {
		http.Error(w, "error, invalid session", http.StatusBadRequest)
		return
	}

	calories := handler.estimator.Predict(req.Profile, req.Session)
	handler.metricsManager.CounterPredictions.Inc()

	addedEntry, err := handler.repo.Add(ctx, logbook.Entry{
		ExerciseType:    req.Session.ExerciseType,
		DurationMinutes: req.Session.DurationMinutes,
		HeartRate:       req.Session.HeartRate,
		BodyTempC:       req.Session.BodyTempC,
		Calories:        calories,
		WeightKg:        req.Profile.WeightKg,
		BMI:             req.Profile.BMI(),
		CreatedAt:       time.Now(),
	})
	if err != nil {
		log.Errorf("predict, failed to save logbook entry: %s", err)
		http.Error(w, "error, failed to save prediction", http.StatusInternalServerError)
		return
	}
	handler.metricsManager.CounterLogbookEntries.Inc()

	// days roll over at UTC midnight
	todayMidnight := time.Now().Truncate(24 * time.Hour)
	tomorrowMidnight := todayMidnight.Add(24 * time.Hour)
	countToday, err := handler.repo.Count(ctx, logbook.EntryParams{
		From: &todayMidnight,
		To:   &tomorrowMidnight,
	})
	if err != nil {
		log.Errorf("predict, failed to count today's entries: %s", err)
		// the prediction itself succeeded
		countToday = 0
	}

	log.Debugf(
		"prediction saved: [%s] %d min, %.1f kcal: %d",
		req.Session.ExerciseType, req.Session.DurationMinutes, calories, addedEntry.ID,
	)

	respJson, err := json.Marshal(PredictResponse{
		Calories:          calories,
		CaloriesPerMinute: calories / float64(req.Session.DurationMinutes),
		CountToday:        countToday,
	})
	if err != nil {
		log.Errorf("failed to marshal predict response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
