package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/antaresinnovate/eva/internal/config"
	"github.com/antaresinnovate/eva/internal/domain"
	"github.com/antaresinnovate/eva/internal/llm"
	"github.com/antaresinnovate/eva/internal/store"
	"github.com/google/uuid"
)

// Completer is the boundary to the remote chat-completion model.
type Completer interface {
	Complete(ctx context.Context, req llm.ChatRequest) (string, error)
}

// Synthesizer is the boundary to speech synthesis.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, rate, volume string) ([]byte, error)
}

// Result is the outcome of one conversation operation.
type Result struct {
	SessionID string
	Message   string
	Audio     []byte
	Session   *domain.Session
}

// MeetingRequest carries externally supplied meeting details merged into a
// session's facts.
type MeetingRequest struct {
	SessionID     string   `json:"session_id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	Business      string   `json:"business"`
	Needs         []string `json:"needs"`
	PreferredDate string   `json:"preferred_date"`
	PreferredTime string   `json:"preferred_time"`
	MeetingType   string   `json:"meeting_type"`
}

// Service orchestrates a conversation turn: load session, extract facts,
// compose the prompt, call the model, shape the reply, persist both turns.
// Turns for the same session are serialized with a per-session lock; distinct
// sessions proceed concurrently.
type Service struct {
	store    store.SessionStore
	model    Completer
	tts      Synthesizer
	runtime  *config.Runtime
	features config.Features

	locks sync.Map // session id -> *sync.Mutex
}

// NewService wires the orchestrator. tts may be nil when speech is disabled.
func NewService(s store.SessionStore, model Completer, tts Synthesizer, runtime *config.Runtime, features config.Features) *Service {
	return &Service{
		store:    s,
		model:    model,
		tts:      tts,
		runtime:  runtime,
		features: features,
	}
}

// Features returns the pipeline's feature flags.
func (s *Service) Features() config.Features { return s.features }

func (s *Service) lockFor(sessionID string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Chat processes one inbound user turn. A missing session identifier creates
// a new session. Model failure never propagates: the reply degrades to a
// stage-specific canned message.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (*Result, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.loadOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	UpdateFacts(session.Facts, message, s.features)

	settings := s.runtime.Snapshot()
	system := ComposePrompt(settings.Persona, session.Facts, session.Exchanges(), message, s.features)

	reply, err := s.model.Complete(ctx, llm.ChatRequest{
		URL:         settings.ModelURL,
		Model:       settings.ModelName,
		System:      system,
		History:     session.Messages,
		UserMessage: message,
	})
	switch {
	case err != nil:
		slog.Warn("Model unavailable, using fallback reply", "session_id", sessionID, "error", err)
		reply = FallbackReply(session.Facts.Stage)
	case strings.TrimSpace(reply) == "":
		slog.Warn("Model returned empty reply, using fallback", "session_id", sessionID)
		reply = FallbackReply(session.Facts.Stage)
	default:
		// Fallback texts are curated; only model output is shaped.
		if s.features.Leads {
			reply = ShapeReply(reply, session.Facts.Stage)
		}
	}

	session.Append(domain.RoleUser, message)
	session.Append(domain.RoleAssistant, reply)

	if err := s.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &Result{
		SessionID: sessionID,
		Message:   reply,
		Audio:     s.synthesize(ctx, reply, settings),
		Session:   session,
	}, nil
}

// Initialize creates (or recreates) a session and returns the fixed opening
// line as the first assistant turn.
func (s *Service) Initialize(ctx context.Context, sessionID string) (*Result, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session := domain.NewSession(sessionID)
	session.Append(domain.RoleAssistant, Greeting)

	if err := s.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &Result{
		SessionID: sessionID,
		Message:   Greeting,
		Audio:     s.synthesize(ctx, Greeting, s.runtime.Snapshot()),
		Session:   session,
	}, nil
}

// Context returns the full session record.
func (s *Service) Context(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.store.Get(ctx, sessionID)
}

// BookMeeting merges externally supplied details into the session's facts and
// forces the ready_for_meeting stage. The session is created when unknown so
// a meeting form can be submitted without a prior chat.
func (s *Service) BookMeeting(ctx context.Context, req MeetingRequest) (*Result, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.loadOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	f := session.Facts
	if req.Name != "" {
		f.Name = req.Name
	}
	if req.Email != "" {
		f.Email = req.Email
	}
	if req.Phone != "" {
		f.Phone = req.Phone
	}
	if req.Business != "" {
		f.Business = req.Business
	}
	for _, need := range req.Needs {
		f.AddNeed(need)
	}
	if req.PreferredDate != "" {
		f.PreferredDay = req.PreferredDate
	}
	if req.PreferredTime != "" {
		f.PreferredTime = req.PreferredTime
	}
	if req.MeetingType != "" {
		f.MeetingPreference = req.MeetingType
	}
	f.MeetingInterest = true
	f.Stage = domain.StageReadyForMeeting
	session.UpdatedAt = time.Now().UTC()

	if err := s.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &Result{
		SessionID: sessionID,
		Message:   meetingConfirmation(f),
		Session:   session,
	}, nil
}

// Leads returns one record per qualified session, most recent first.
func (s *Service) Leads(ctx context.Context) ([]domain.Lead, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	leads := make([]domain.Lead, 0)
	for _, session := range sessions {
		if session.Facts.Qualified() {
			leads = append(leads, domain.LeadFromSession(session))
		}
	}
	sort.Slice(leads, func(i, j int) bool {
		if leads[i].LastActivity.Equal(leads[j].LastActivity) {
			return leads[i].SessionID < leads[j].SessionID
		}
		return leads[i].LastActivity.After(leads[j].LastActivity)
	})
	return leads, nil
}

func (s *Service) loadOrCreate(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.NewSession(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return session, nil
}

// synthesize converts the reply to speech. Synthesis failure is logged and
// yields nil audio; it never fails the chat response.
func (s *Service) synthesize(ctx context.Context, text string, settings config.Settings) []byte {
	if !s.features.Speech || s.tts == nil {
		return nil
	}
	audio, err := s.tts.Synthesize(ctx, text, settings.Voice, settings.VoiceRate, settings.VoiceVolume)
	if err != nil {
		slog.Warn("Speech synthesis failed", "error", err)
		return nil
	}
	return audio
}

func meetingConfirmation(f *domain.Facts) string {
	var b strings.Builder
	b.WriteString("¡Perfecto")
	if f.Name != "" {
		b.WriteString(", " + f.Name)
	}
	b.WriteString("! Tu solicitud de reunión quedó registrada")
	if f.MeetingPreference != "" {
		b.WriteString(" (" + f.MeetingPreference + ")")
	}
	if f.PreferredDay != "" {
		b.WriteString(" para el " + f.PreferredDay)
	}
	if f.PreferredTime != "" {
		b.WriteString(" a las " + f.PreferredTime)
	}
	b.WriteString(". Muy pronto nos pondremos en contacto contigo para confirmar los detalles.")
	return b.String()
}
