package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/khanakhazana/foodlog/internal/application"
	"github.com/khanakhazana/foodlog/internal/domain"
	"go.uber.org/zap"
)

const sessionCookieName = "foodlog_session"

const sessionTTL = 12 * time.Hour

type Handler struct {
	service *application.FoodLogService
	logger  *zap.Logger
}

func NewRouter(service *application.FoodLogService, logger *zap.Logger) http.Handler {
	h := &Handler{service: service, logger: logger}
	r := chi.NewRouter()

	r.Post("/unlock", h.handleUnlock)
	r.Post("/lock", h.handleLock)

	r.Route("/api", func(api chi.Router) {
		api.Use(h.requireUnlocked)
		api.Get("/foods", h.handleListFoods)
		api.Get("/foods/search", h.handleSearchFoods)
		api.Post("/preview", h.handlePreview)
		api.Post("/log", h.handleAppendLog)
		api.Post("/log/creatine", h.handleAppendCreatine)
		api.Get("/log/today", h.handleToday)
		api.Get("/log/last", h.handleLastDays)
		api.Get("/log/month", h.handleMonth)
		api.Delete("/log/{id}", h.handleDeleteEntry)
		api.Delete("/log/date/{date}", h.handleClearDay)
		api.Get("/overrides/{dish}", h.handleGetOverride)
		api.Put("/overrides/{dish}", h.handleSaveOverride)
	})

	return r
}

type unlockRequest struct {
	Secret string `json:"secret"`
}

func (h *Handler) handleUnlock(w http.ResponseWriter, r *http.Request) {
	var req unlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	token, err := h.service.Unlock(r.Context(), req.Secret, sessionTTL)
	if err != nil {
		h.logger.Warn("unlock rejected", zap.Error(err))
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid secret"})
		return
	}
	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{"token": token})
}

func (h *Handler) handleLock(w http.ResponseWriter, r *http.Request) {
	if token, ok := requestToken(r); ok {
		_ = h.service.Lock(r.Context(), token)
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) requireUnlocked(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := requestToken(r)
		if !ok || h.service.Authenticate(r.Context(), token) != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "locked"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleListFoods(w http.ResponseWriter, r *http.Request) {
	basis, err := application.ParseBasis(r.URL.Query().Get("basis"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.service.ListFoods(basis))
}

func (h *Handler) handleSearchFoods(w http.ResponseWriter, r *http.Request) {
	basis, err := application.ParseBasis(r.URL.Query().Get("basis"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.service.SearchFoods(r.URL.Query().Get("q"), basis))
}

type scaleRequest struct {
	Dish     string  `json:"dish"`
	Basis    string  `json:"basis"`
	Quantity float64 `json:"quantity"`
	Date     string  `json:"date"`
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req scaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	basis, err := application.ParseBasis(req.Basis)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	vec, err := h.service.Scale(r.Context(), req.Dish, basis, req.Quantity)
	if err != nil {
		writeJSON(w, statusForError(err), map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, vec.Rounded())
}

func (h *Handler) handleAppendLog(w http.ResponseWriter, r *http.Request) {
	var req scaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	basis, err := application.ParseBasis(req.Basis)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	entry, err := h.service.Commit(r.Context(), req.Date, req.Dish, basis, req.Quantity)
	if err != nil {
		writeJSON(w, statusForError(err), map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type creatineRequest struct {
	Grams float64 `json:"grams"`
	Date  string  `json:"date"`
}

func (h *Handler) handleAppendCreatine(w http.ResponseWriter, r *http.Request) {
	var req creatineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	entry, err := h.service.CommitCreatine(r.Context(), req.Date, req.Grams)
	if err != nil {
		writeJSON(w, statusForError(err), map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type dayLogResponse struct {
	Date    string            `json:"date"`
	Entries []domain.LogEntry     `json:"entries"`
	Totals  domain.NutrientVector `json:"totals"`
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	entries, totals, err := h.service.TodayLog(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, dayLogResponse{
		Date:    domain.Today(),
		Entries: entries,
		Totals:  totals.Rounded(),
	})
}

type lastDaysResponse struct {
	Entries []domain.LogEntry  `json:"entries"`
	Days    []domain.DayTotals `json:"days"`
}

func (h *Handler) handleLastDays(w http.ResponseWriter, r *http.Request) {
	days := 3
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "days must be an integer"})
			return
		}
		days = parsed
	}
	entries, totals, err := h.service.LastDaysLog(r.Context(), days)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	for i := range totals {
		totals[i].Totals = totals[i].Totals.Rounded()
	}
	writeJSON(w, http.StatusOK, lastDaysResponse{Entries: entries, Days: totals})
}

func (h *Handler) handleMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid year"})
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid month"})
		return
	}
	cells, err := h.service.MonthReport(r.Context(), year, time.Month(month))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	for i := range cells {
		cells[i].Totals = cells[i].Totals.Rounded()
	}
	writeJSON(w, http.StatusOK, cells)
}

func (h *Handler) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid id"})
		return
	}
	if err := h.service.DeleteEntry(r.Context(), uint(id)); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleClearDay(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearDay(r.Context(), chi.URLParam(r, "date")); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleGetOverride(w http.ResponseWriter, r *http.Request) {
	dish := chi.URLParam(r, "dish")
	override, found, err := h.service.GetOverride(r.Context(), dish)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "no override for dish"})
		return
	}
	writeJSON(w, http.StatusOK, override)
}

func (h *Handler) handleSaveOverride(w http.ResponseWriter, r *http.Request) {
	var values domain.OverrideVector
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	override, err := h.service.SaveOverride(r.Context(), chi.URLParam(r, "dish"), values)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, override)
}

// requestToken prefers a bearer header, falling back to the session cookie.
func requestToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		if token := strings.TrimSpace(authHeader[7:]); token != "" {
			return token, true
		}
	}
	c, err := r.Cookie(sessionCookieName)
	if err == nil && strings.TrimSpace(c.Value) != "" {
		return c.Value, true
	}
	return "", false
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrDishNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
