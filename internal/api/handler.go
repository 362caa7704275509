// Package api provides the HTTP handlers for the Eva conversation API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/antaresinnovate/eva/internal/config"
	"github.com/antaresinnovate/eva/internal/conversation"
	"github.com/antaresinnovate/eva/internal/domain"
	"github.com/antaresinnovate/eva/internal/scheduling"
	"github.com/antaresinnovate/eva/internal/store"
	"github.com/antaresinnovate/eva/internal/tts"
	"github.com/go-chi/chi/v5"
)

const apiVersion = "1.0.0"

// VoiceLister fetches the synthesis voice catalog.
type VoiceLister interface {
	ListVoices(ctx context.Context) ([]tts.Voice, error)
}

// Handler serves the conversation API.
type Handler struct {
	svc     *conversation.Service
	runtime *config.Runtime
	voices  VoiceLister
}

// NewHandler creates a new Handler. voices may be nil when speech is disabled.
func NewHandler(svc *conversation.Service, runtime *config.Runtime, voices VoiceLister) *Handler {
	return &Handler{
		svc:     svc,
		runtime: runtime,
		voices:  voices,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes mounts all API routes. Lead and speech endpoints are only
// registered when their feature is enabled.
func (h *Handler) RegisterRoutes(r chi.Router) {
	features := h.svc.Features()

	r.Post("/api/chat", h.handleChat)
	r.Post("/api/initialize", h.handleInitialize)
	r.Post("/api/reset", h.handleReset)
	r.Get("/api/context", h.handleContext)
	r.Get("/api/config", h.handleGetConfig)
	r.Post("/api/config", h.handleUpdateConfig)
	r.Get("/api/health", h.handleHealth)
	r.Get("/", h.handleIndex)

	if features.Leads {
		r.Post("/api/meeting", h.handleMeeting)
		r.Get("/api/available_slots", h.handleAvailableSlots)
		r.Get("/api/leads", h.handleLeads)
	}
	if features.Speech && h.voices != nil {
		r.Get("/api/voices", h.handleVoices)
	}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	SessionID string        `json:"session_id"`
	Message   string        `json:"message"`
	Context   *domain.Facts `json:"context"`
	Audio     []byte        `json:"audio"`
}

func toChatResponse(res *conversation.Result) chatResponse {
	return chatResponse{
		SessionID: res.SessionID,
		Message:   res.Message,
		Context:   res.Session.Facts,
		Audio:     res.Audio,
	}
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		Error(w, http.StatusBadRequest, "no message provided")
		return
	}

	res, err := h.svc.Chat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		slog.Error("Chat turn failed", "session_id", req.SessionID, "error", err)
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	JSON(w, http.StatusOK, toChatResponse(res))
}

func (h *Handler) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.Initialize(r.Context(), req.SessionID)
	if err != nil {
		slog.Error("Session initialization failed", "session_id", req.SessionID, "error", err)
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	JSON(w, http.StatusOK, toChatResponse(res))
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		Error(w, http.StatusBadRequest, "no session_id provided")
		return
	}

	res, err := h.svc.Initialize(r.Context(), req.SessionID)
	if err != nil {
		slog.Error("Session reset failed", "session_id", req.SessionID, "error", err)
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	JSON(w, http.StatusOK, toChatResponse(res))
}

func (h *Handler) handleContext(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		Error(w, http.StatusNotFound, "session not found")
		return
	}

	session, err := h.svc.Context(r.Context(), sessionID)
	if errors.Is(err, store.ErrNotFound) {
		Error(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	JSON(w, http.StatusOK, session)
}

func (h *Handler) handleMeeting(w http.ResponseWriter, r *http.Request) {
	var req conversation.MeetingRequest
	if err := decodeBody(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.BookMeeting(r.Context(), req)
	if err != nil {
		slog.Error("Meeting booking failed", "session_id", req.SessionID, "error", err)
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	JSON(w, http.StatusOK, toChatResponse(res))
}

func (h *Handler) handleAvailableSlots(w http.ResponseWriter, r *http.Request) {
	slots := scheduling.AvailableSlots(time.Now())
	JSON(w, http.StatusOK, map[string]interface{}{
		"slots": slots,
		"count": len(slots),
	})
}

func (h *Handler) handleLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.svc.Leads(r.Context())
	if err != nil {
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"leads": leads,
		"count": len(leads),
	})
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.runtime.Snapshot())
}

func (h *Handler) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var settings config.Settings
	if err := decodeBody(r, &settings); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated := h.runtime.Update(settings)
	slog.Info("Runtime configuration updated", "model_url", updated.ModelURL, "model_name", updated.ModelName)
	JSON(w, http.StatusOK, map[string]interface{}{
		"model_url":  updated.ModelURL,
		"model_name": updated.ModelName,
		"persona":    updated.Persona,
		"voice":      updated.Voice,
		"status":     "updated",
	})
}

func (h *Handler) handleVoices(w http.ResponseWriter, r *http.Request) {
	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = "es-"
	}

	voices, err := h.voices.ListVoices(r.Context())
	if err != nil {
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"all_voices":      voices,
		"filtered_voices": tts.FilterByLocale(voices, locale),
		"locale":          locale,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"api_version": apiVersion,
		"service":     "Eva Conversation API",
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"name":    "Eva Conversation API",
		"version": apiVersion,
		"status":  "running",
	})
}

// decodeBody decodes a JSON request body. An empty body decodes to the zero
// value so endpoints with fully optional fields accept bare POSTs.
func decodeBody(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
