package logbook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/burnmeter/burnmeter/internal/telemetry/metrics"
	"github.com/burnmeter/burnmeter/internal/telemetry/tracing"
	"github.com/burnmeter/burnmeter/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=logbook_mocks_test.go -package=logbook_test

type entriesRepo interface {
	Add(ctx context.Context, entry Entry) (*Entry, error)
	Get(ctx context.Context, id int) (*Entry, error)
	List(ctx context.Context, params ListParams) (_ []Entry, total int, err error)
	ListAll(ctx context.Context, params EntryParams) (_ []Entry, err error)
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context, params EntryParams) (int, error)
}

// allowedDayWindows are the day filters the dashboard offers.
var allowedDayWindows = map[int]bool{
	7:  true,
	14: true,
	30: true,
	60: true,
	90: true,
}

const defaultDayWindow = 30

type DeleteEntryResponse struct {
	DeletedID int `json:"deletedId"`
}

type EntriesListResponse struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

type TypeDistributionResponse struct {
	Distribution map[ExerciseType]TypeShare `json:"distribution"`
	Types        []ExerciseType             `json:"types"`
}

type Handler struct {
	repo           entriesRepo
	analyzer       *Analyzer
	metricsManager *metrics.Manager
}

func NewHandler(repo entriesRepo, analyzer *Analyzer, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		analyzer:       analyzer,
		metricsManager: metricsManager,
	}
}

// daysWindow reads the "days" query param, falling back to the default
// window when absent.
func daysWindow(r *http.Request) (int, error) {
	daysStr := r.URL.Query().Get("days")
	if daysStr == "" {
		return defaultDayWindow, nil
	}
	days, err := strconv.Atoi(daysStr)
	if err != nil {
		return 0, fmt.Errorf("parameter <days> NaN: %w", err)
	}
	if !allowedDayWindows[days] {
		return 0, fmt.Errorf("unsupported days window: %d", days)
	}
	return days, nil
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.logbook.new")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var entry Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		log.Errorf("new logbook entry, unmarshal json params: %s", err)
		http.Error(w, "add logbook entry failed", http.StatusBadRequest)
		return
	}

	if !entry.ExerciseType.IsValid() {
		http.Error(w, "error, invalid exercise type", http.StatusBadRequest)
		return
	}
	if entry.DurationMinutes <= 0 {
		http.Error(w, "error, duration must be positive", http.StatusBadRequest)
		return
	}
	if entry.Calories < 0 {
		http.Error(w, "error, calories must not be negative", http.StatusBadRequest)
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	addedEntry, err := handler.repo.Add(ctx, entry)
	if err != nil {
		log.Errorf("failed to add new logbook entry [%s]: %s", entry.ExerciseType, err)
		http.Error(w, "error, failed to add new logbook entry", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterLogbookEntries.Inc()
	log.Debugf("new logbook entry added: [%s] %.1f kcal: %d", addedEntry.ExerciseType, addedEntry.Calories, addedEntry.ID)

	addedEntryJson, err := json.Marshal(addedEntry)
	if err != nil {
		log.Errorf("failed to marshal new logbook entry: %s", err)
		http.Error(w, "error, failed to add new logbook entry", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedEntryJson, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.logbook.get")
	defer span.End()

	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	entry, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			http.Error(w, "logbook entry not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get logbook entry %d: %s", id, err)
		http.Error(w, "failed to get logbook entry", http.StatusInternalServerError)
		return
	}

	entryJson, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("failed to marshal logbook entry: %s", err)
		http.Error(w, "failed to marshal logbook entry", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entryJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.logbook.delete")
	defer span.End()

	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			http.Error(w, "logbook entry not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete logbook entry %d: %s", id, err)
		http.Error(w, "logbook entry not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(DeleteEntryResponse{
		DeletedID: id,
	})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.logbook.list")
	defer span.End()

	vars := mux.Vars(r)

	pageStr := vars["page"]
	page, err := strconv.Atoi(pageStr)
	if err != nil {
		log.Errorf("handle list logbook entries, from <page> param: %s", err)
		http.Error(w, "parse form error, parameter <page>", http.StatusBadRequest)
		return
	}
	sizeStr := vars["size"]
	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		log.Errorf("handle list logbook entries, from <size> param: %s", err)
		http.Error(w, "parse form error, parameter <size>", http.StatusBadRequest)
		return
	}

	if page < 1 {
		http.Error(w, "invalid page (has to be non-zero value)", http.StatusBadRequest)
		return
	}
	if size < 1 {
		http.Error(w, "invalid size (has to be non-zero value)", http.StatusBadRequest)
		return
	}

	listParams := ListParams{
		Page: page,
		Size: size,
	}
	if typeParam := r.URL.Query().Get("type"); typeParam != "" {
		exType := ExerciseType(typeParam)
		if !exType.IsValid() {
			http.Error(w, "error, invalid exercise type", http.StatusBadRequest)
			return
		}
		listParams.ExerciseType = exType
	}
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		days, err := daysWindow(r)
		if err != nil {
			http.Error(w, "parse form error, parameter <days>", http.StatusBadRequest)
			return
		}
		from := time.Now().AddDate(0, 0, -days)
		listParams.From = &from
	}

	log.Tracef(
		"list logbook entries - page %s size %s, type [%s]",
		pageStr, sizeStr, listParams.ExerciseType,
	)

	entries, total, err := handler.repo.List(ctx, listParams)
	if err != nil {
		log.Errorf("list logbook entries error: %s", err)
		http.Error(w, "failed to get logbook entries", http.StatusInternalServerError)
		return
	}

	listRespJson, err := json.Marshal(EntriesListResponse{
		Entries: entries,
		Total:   total,
	})
	if err != nil {
		log.Errorf("marshal logbook entries error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, listRespJson, http.StatusOK)
}

func (handler *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.logbook.stats")
	defer span.End()

	days, err := daysWindow(r)
	if err != nil {
		http.Error(w, "parse form error, parameter <days>", http.StatusBadRequest)
		return
	}

	stats, err := handler.analyzer.StatsForDays(r.Context(), days)
	if err != nil {
		log.Errorf("logbook stats for %d days: %s", days, err)
		http.Error(w, "failed to get logbook stats", http.StatusInternalServerError)
		return
	}

	statsJson, err := json.Marshal(stats)
	if err != nil {
		log.Errorf("failed to marshal logbook stats: %s", err)
		http.Error(w, "failed to marshal logbook stats", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, statsJson, http.StatusOK)
}

func (handler *Handler) HandleDailyAggregates(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.logbook.daily")
	defer span.End()

	days, err := daysWindow(r)
	if err != nil {
		http.Error(w, "parse form error, parameter <days>", http.StatusBadRequest)
		return
	}

	aggregates, err := handler.analyzer.DailyAggregates(r.Context(), days)
	if err != nil {
		log.Errorf("logbook daily aggregates for %d days: %s", days, err)
		http.Error(w, "failed to get daily aggregates", http.StatusInternalServerError)
		return
	}

	aggregatesJson, err := json.Marshal(aggregates)
	if err != nil {
		log.Errorf("failed to marshal daily aggregates: %s", err)
		http.Error(w, "failed to marshal daily aggregates", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, aggregatesJson, http.StatusOK)
}

func (handler *Handler) HandleTypeDistribution(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.logbook.types")
	defer span.End()

	days, err := daysWindow(r)
	if err != nil {
		http.Error(w, "parse form error, parameter <days>", http.StatusBadRequest)
		return
	}

	distribution, err := handler.analyzer.TypeDistribution(r.Context(), days)
	if err != nil {
		log.Errorf("logbook type distribution for %d days: %s", days, err)
		http.Error(w, "failed to get type distribution", http.StatusInternalServerError)
		return
	}

	distRespJson, err := json.Marshal(TypeDistributionResponse{
		Distribution: distribution,
		Types:        AllExerciseTypes(),
	})
	if err != nil {
		log.Errorf("failed to marshal type distribution: %s", err)
		http.Error(w, "failed to marshal type distribution", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, distRespJson, http.StatusOK)
}
