// Package api exposes HTTP handlers for the fitness service.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"example.com/fitness/internal/auth"
	"example.com/fitness/internal/domain"
	"example.com/fitness/internal/identity"
)

const activitiesPath = "/api/fitness/activities"

// Handler coordinates HTTP requests with the activity and identity services.
type Handler struct {
	activities *domain.Service
	identities *identity.Service
	logger     logrus.FieldLogger
}

// NewHandler builds a Handler.
func NewHandler(activities *domain.Service, identities *identity.Service, logger logrus.FieldLogger) *Handler {
	return &Handler{activities: activities, identities: identities, logger: logger}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/fitness/status", h.status)
	mux.HandleFunc(activitiesPath, h.activityCollection)
	mux.HandleFunc(activitiesPath+"/", h.activityByID)
	mux.HandleFunc("/api/fitness/stats", h.stats)
	mux.HandleFunc("/api/fitness/activity-types", h.activityTypes)
	mux.HandleFunc("/auth/register", h.register)
	mux.HandleFunc("/auth/login", h.login)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(h.activities.Status()))
}

func (h *Handler) activityCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) activityByID(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, activitiesPath+"/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || strings.Contains(raw, "/") {
		writeError(w, http.StatusBadRequest, "invalid_request", "activity id must be an integer")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getActivity(w, r, id)
	case http.MethodPut:
		h.updateActivity(w, r, id)
	case http.MethodDelete:
		h.deleteActivity(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	input, ok := decodeActivity(w, r)
	if !ok {
		return
	}

	created, err := h.activities.AddActivity(r.Context(), owner, input)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%d", activitiesPath, created.ID))
	writeJSON(w, http.StatusCreated, toActivityView(*created))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	from, err := parseOptionalTimestamp(query.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "from must be an ISO-8601 date or timestamp")
		return
	}
	to, err := parseOptionalTimestamp(query.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "to must be an ISO-8601 date or timestamp")
		return
	}

	activities, err := h.activities.ListActivities(r.Context(), owner, domain.ActivityFilter{
		Type: query.Get("type"),
		From: from,
		To:   to,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	items := make([]ActivityView, 0, len(activities))
	for _, a := range activities {
		items = append(items, toActivityView(a))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request, id int64) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	activity, err := h.activities.GetActivity(r.Context(), owner, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(*activity))
}

func (h *Handler) updateActivity(w http.ResponseWriter, r *http.Request, id int64) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	input, ok := decodeActivity(w, r)
	if !ok {
		return
	}

	updated, err := h.activities.UpdateActivity(r.Context(), owner, id, input)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if !updated {
		h.writeServiceError(w, r, domain.ErrActivityNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteActivity(w http.ResponseWriter, r *http.Request, id int64) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	deleted, err := h.activities.DeleteActivity(r.Context(), owner, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if !deleted {
		h.writeServiceError(w, r, domain.ErrActivityNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	start, err := parseOptionalTimestamp(query.Get("startDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "startDate must be an ISO-8601 date or timestamp")
		return
	}
	end, err := parseOptionalTimestamp(query.Get("endDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "endDate must be an ISO-8601 date or timestamp")
		return
	}

	summary, err := h.activities.GetStats(r.Context(), owner, domain.StatsQuery{StartDate: start, EndDate: end})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		TotalMinutes:           summary.TotalMinutes,
		ActivityCount:          summary.ActivityCount,
		AverageDurationMinutes: summary.AverageDurationMinutes,
		MinutesByType:          summary.MinutesByType,
		StartDate:              summary.StartDate,
		EndDate:                summary.EndDate,
	})
}

func (h *Handler) activityTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	types, err := h.activities.DistinctTypes(r.Context(), owner)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	if _, err := h.identities.Register(r.Context(), identity.Credentials{Email: req.Email, Password: req.Password}); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Registered successfully."})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	token, err := h.identities.Login(r.Context(), identity.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token.AccessToken, ExpiresAt: token.ExpiresAt})
}

// owner resolves the authenticated owner id, writing a 401 when it cannot.
func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (int64, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		h.writeServiceError(w, r, domain.ErrNotAuthenticated)
		return 0, false
	}
	id, ok := claims.OwnerID()
	if !ok {
		h.writeServiceError(w, r, domain.ErrNotAuthenticated)
		return 0, false
	}
	withOwner(r.Context(), id)
	return id, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, "validation_failed", validation.Message)
	case errors.Is(err, domain.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "unauthorized", auth.UnauthorizedDetail)
	case errors.Is(err, domain.ErrActivityNotFound):
		writeError(w, http.StatusNotFound, "not_found", "activity not found")
	case errors.Is(err, identity.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "email_taken", "Email is already registered.")
	case errors.Is(err, identity.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials.")
	default:
		LoggerFrom(r.Context(), h.logger).WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "server_error", "internal server error")
	}
}

func decodeActivity(w http.ResponseWriter, r *http.Request) (domain.ActivityInput, bool) {
	var req ActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return domain.ActivityInput{}, false
	}

	var date time.Time
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := parseTimestamp(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "date must be an ISO-8601 date or timestamp")
			return domain.ActivityInput{}, false
		}
		date = parsed
	}

	return domain.ActivityInput{
		Type:            req.Type,
		DurationMinutes: req.DurationMinutes,
		Date:            date,
	}, true
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTimestamp accepts RFC3339 or a zone-less ISO-8601 value, the latter read as UTC.
func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}

func parseOptionalTimestamp(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parsed, err := parseTimestamp(raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// ActivityRequest is the payload for POST and PUT on activities.
type ActivityRequest struct {
	Type            string `json:"type"`
	DurationMinutes int    `json:"durationMinutes"`
	Date            string `json:"date"`
}

// ActivityView is the public shape of an activity. The owner is implied by the token.
type ActivityView struct {
	ID              int64     `json:"id"`
	Type            string    `json:"type"`
	DurationMinutes int       `json:"durationMinutes"`
	Date            time.Time `json:"date"`
}

// StatsResponse mirrors domain.StatsSummary.
type StatsResponse struct {
	TotalMinutes           int            `json:"totalMinutes"`
	ActivityCount          int            `json:"activityCount"`
	AverageDurationMinutes float64        `json:"averageDurationMinutes"`
	MinutesByType          map[string]int `json:"minutesByType"`
	StartDate              *time.Time     `json:"startDate,omitempty"`
	EndDate                *time.Time     `json:"endDate,omitempty"`
}

// CredentialsRequest is the register/login body.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// MessageResponse carries a human-readable acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toActivityView(a domain.Activity) ActivityView {
	return ActivityView{
		ID:              a.ID,
		Type:            a.Type,
		DurationMinutes: a.DurationMinutes,
		Date:            a.Date,
	}
}
