package advisor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/burnmeter/burnmeter/internal/fitness/profile"
	"github.com/burnmeter/burnmeter/internal/telemetry/tracing"
	"github.com/burnmeter/burnmeter/pkg"

	log "github.com/sirupsen/logrus"
)

type NutritionResponse struct {
	BMI               float64           `json:"bmi"`
	Category          BMICategory       `json:"category"`
	IdealWeightMinKg  float64           `json:"idealWeightMinKg"`
	IdealWeightMaxKg  float64           `json:"idealWeightMaxKg"`
	Tips              []string          `json:"tips"`
	CalorieGuidelines CalorieGuidelines `json:"calorieGuidelines"`
}

type ExercisesResponse struct {
	BMI        float64      `json:"bmi"`
	Category   BMICategory  `json:"category"`
	Level      FitnessLevel `json:"level"`
	Exercises  ExercisePlan `json:"exercises"`
	WeeklyPlan []DayPlan    `json:"weeklyPlan"`
}

type ZonesResponse struct {
	MaxHeartRate int                     `json:"maxHeartRate"`
	Zones        []profile.HeartRateZone `json:"zones"`
}

type MonthlyPlanRequest struct {
	Profile   profile.Profile `json:"profile"`
	TargetBMI float64         `json:"targetBMI"`
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
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

func (handler *Handler) HandleNutrition(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.advisor.nutrition")
	defer span.End()

	p, err := profileFromQuery(r)
	if err != nil {
		http.Error(w, "error, invalid profile", http.StatusBadRequest)
		return
	}

	bmi := p.BMI()
	idealMin, idealMax := p.IdealWeightRangeKg()

	respJson, err := json.Marshal(NutritionResponse{
		BMI:               bmi,
		Category:          BMICategoryFor(bmi),
		IdealWeightMinKg:  idealMin,
		IdealWeightMaxKg:  idealMax,
		Tips:              NutritionTips(bmi),
		CalorieGuidelines: DailyCalorieGuidelines(p),
	})
	if err != nil {
		log.Errorf("failed to marshal nutrition response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleExercises(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.advisor.exercises")
	defer span.End()

	p, err := profileFromQuery(r)
	if err != nil {
		http.Error(w, "error, invalid profile", http.StatusBadRequest)
		return
	}

	level := FitnessLevel(r.URL.Query().Get("level"))
	if level == "" {
		level = FitnessLevelIntermediate
	}
	if !level.IsValid() {
		http.Error(w, "error, invalid fitness level", http.StatusBadRequest)
		return
	}

	bmi := p.BMI()
	respJson, err := json.Marshal(ExercisesResponse{
		BMI:        bmi,
		Category:   BMICategoryFor(bmi),
		Level:      level,
		Exercises:  RecommendedExercises(bmi, level),
		WeeklyPlan: WeeklyPlan(),
	})
	if err != nil {
		log.Errorf("failed to marshal exercises response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleZones(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.advisor.zones")
	defer span.End()

	p, err := profileFromQuery(r)
	if err != nil {
		http.Error(w, "error, invalid profile", http.StatusBadRequest)
		return
	}

	respJson, err := json.Marshal(ZonesResponse{
		MaxHeartRate: p.MaxHeartRate(),
		Zones:        p.HeartRateZones(),
	})
	if err != nil {
		log.Errorf("failed to marshal zones response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleMonthlyPlan(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.advisor.monthlyplan")
	defer span.End()

	var req MonthlyPlanRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Errorf("monthly plan, unmarshal json params: %s", err)
			http.Error(w, "monthly plan failed", http.StatusBadRequest)
			return
		}
	} else {
		p, err := profileFromQuery(r)
		if err != nil {
			http.Error(w, "error, invalid profile", http.StatusBadRequest)
			return
		}
		targetBMI, err := strconv.ParseFloat(r.URL.Query().Get("targetBMI"), 64)
		if err != nil {
			http.Error(w, "error, parameter <targetBMI>", http.StatusBadRequest)
			return
		}
		req = MonthlyPlanRequest{Profile: p, TargetBMI: targetBMI}
	}

	if err := req.Profile.Validate(); err != nil {
		http.Error(w, "error, invalid profile", http.StatusBadRequest)
		return
	}

	plan, err := MonthlySuggestions(
		req.Profile.BMI(), req.TargetBMI,
		req.Profile.WeightKg, req.Profile.HeightCm,
	)
	if err != nil {
		if errors.Is(err, ErrInvalidTargetBMI) {
			http.Error(w, "error, target BMI must be between 18.5 and 24.9", http.StatusBadRequest)
			return
		}
		log.Errorf("monthly plan error: %s", err)
		http.Error(w, "monthly plan failed", http.StatusBadRequest)
		return
	}

	respJson, err := json.Marshal(plan)
	if err != nil {
		log.Errorf("failed to marshal monthly plan: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
