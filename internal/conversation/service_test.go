package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/antaresinnovate/eva/internal/config"
	"github.com/antaresinnovate/eva/internal/domain"
	"github.com/antaresinnovate/eva/internal/llm"
	"github.com/antaresinnovate/eva/internal/store"
)

type fakeCompleter struct {
	reply   string
	err     error
	lastReq llm.ChatRequest
	calls   int
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.ChatRequest) (string, error) {
	f.calls++
	f.lastReq = req
	return f.reply, f.err
}

type fakeSynth struct {
	audio []byte
	err   error
	calls int
}

func (f *fakeSynth) Synthesize(_ context.Context, _, _, _, _ string) ([]byte, error) {
	f.calls++
	return f.audio, f.err
}

func newTestService(t *testing.T, model Completer, tts Synthesizer, features config.Features) *Service {
	t.Helper()
	cfg := &config.Config{
		ModelURL:    "http://localhost:11434/api/chat",
		ModelName:   "llama3:8b",
		Voice:       "es-MX-DaliaNeural",
		VoiceRate:   "+0%",
		VoiceVolume: "+0%",
	}
	return NewService(store.NewMemory(), model, tts, config.NewRuntime(cfg), features)
}

func TestChatCreatesSessionAndPersistsTurns(t *testing.T) {
	model := &fakeCompleter{reply: "¡Hola Ana! Cuéntame de tu tienda. ¿Qué vendes?"}
	svc := newTestService(t, model, nil, leadsOn)

	res, err := svc.Chat(context.Background(), "", "Soy Ana, tengo una tienda de ropa")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.SessionID == "" {
		t.Fatal("Chat did not assign a session id")
	}
	if res.Message != model.reply {
		t.Errorf("reply = %q, want model output unchanged", res.Message)
	}

	session, err := svc.Context(context.Background(), res.SessionID)
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if len(session.Messages) != 2 {
		t.Fatalf("stored %d messages, want 2", len(session.Messages))
	}
	if session.Messages[0].Role != domain.RoleUser || session.Messages[1].Role != domain.RoleAssistant {
		t.Errorf("stored roles = %q, %q", session.Messages[0].Role, session.Messages[1].Role)
	}
	if session.Facts.Name != "Ana" {
		t.Errorf("Facts.Name = %q, want %q", session.Facts.Name, "Ana")
	}
	if session.Facts.Industry != "retail" {
		t.Errorf("Facts.Industry = %q, want %q", session.Facts.Industry, "retail")
	}
}

func TestChatPromptSeesCurrentTurnFacts(t *testing.T) {
	model := &fakeCompleter{reply: "Claro. ¿Qué necesitas?"}
	svc := newTestService(t, model, nil, leadsOn)

	if _, err := svc.Chat(context.Background(), "s1", "me llamo Carlos"); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !strings.Contains(model.lastReq.System, "- Nombre: Carlos") {
		t.Error("system prompt is missing the fact extracted from the same turn")
	}
	// History holds turns before this one; the current message travels
	// separately.
	if len(model.lastReq.History) != 0 {
		t.Errorf("first turn sent %d history messages, want 0", len(model.lastReq.History))
	}
	if model.lastReq.UserMessage != "me llamo Carlos" {
		t.Errorf("UserMessage = %q", model.lastReq.UserMessage)
	}

	if _, err := svc.Chat(context.Background(), "s1", "necesito una página web"); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if len(model.lastReq.History) != 2 {
		t.Errorf("second turn sent %d history messages, want 2", len(model.lastReq.History))
	}
}

func TestChatFallbackOnModelError(t *testing.T) {
	model := &fakeCompleter{err: errors.New("connection refused")}
	svc := newTestService(t, model, nil, leadsOn)

	res, err := svc.Chat(context.Background(), "", "necesito un logo")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	want := FallbackReply(domain.StageExploring)
	if res.Message != want {
		t.Errorf("reply = %q, want exploring fallback %q", res.Message, want)
	}

	session, err := svc.Context(context.Background(), res.SessionID)
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if len(session.Messages) != 2 {
		t.Errorf("fallback turn stored %d messages, want 2", len(session.Messages))
	}
	if session.Messages[1].Content != want {
		t.Errorf("stored assistant turn = %q, want the fallback", session.Messages[1].Content)
	}
}

func TestChatFallbackOnEmptyReply(t *testing.T) {
	model := &fakeCompleter{reply: "   \n"}
	svc := newTestService(t, model, nil, leadsOn)

	res, err := svc.Chat(context.Background(), "", "hola")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Message != FallbackReply(domain.StageInitial) {
		t.Errorf("reply = %q, want initial fallback", res.Message)
	}
}

func TestChatShapesReplyWithLeads(t *testing.T) {
	model := &fakeCompleter{reply: "Con gusto te ayudo con eso."}
	svc := newTestService(t, model, nil, leadsOn)

	res, err := svc.Chat(context.Background(), "", "hola")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !strings.Contains(res.Message, "?") {
		t.Errorf("shaped reply %q carries no question", res.Message)
	}
}

func TestChatNoShapingWithoutLeads(t *testing.T) {
	model := &fakeCompleter{reply: "Con gusto te ayudo con eso."}
	svc := newTestService(t, model, nil, config.Features{})

	res, err := svc.Chat(context.Background(), "", "hola")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Message != model.reply {
		t.Errorf("reply = %q, want model output untouched", res.Message)
	}
}

func TestInitializeReturnsGreeting(t *testing.T) {
	svc := newTestService(t, &fakeCompleter{}, nil, leadsOn)

	res, err := svc.Initialize(context.Background(), "")
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if res.Message != Greeting {
		t.Errorf("Message = %q, want %q", res.Message, Greeting)
	}
	if len(res.Session.Messages) != 1 || res.Session.Messages[0].Role != domain.RoleAssistant {
		t.Error("greeting was not stored as a single assistant turn")
	}
	if res.Session.Facts.Stage != domain.StageInitial {
		t.Errorf("fresh session stage = %q", res.Session.Facts.Stage)
	}
}

func TestInitializeResetsExistingSession(t *testing.T) {
	model := &fakeCompleter{reply: "¿Qué tal?"}
	svc := newTestService(t, model, nil, leadsOn)

	if _, err := svc.Chat(context.Background(), "s1", "me llamo Carlos"); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if _, err := svc.Initialize(context.Background(), "s1"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	session, err := svc.Context(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if session.Facts.Name != "" {
		t.Errorf("reset kept Facts.Name = %q", session.Facts.Name)
	}
	if len(session.Messages) != 1 {
		t.Errorf("reset session has %d messages, want 1", len(session.Messages))
	}
}

func TestChatSynthesizesWhenSpeechEnabled(t *testing.T) {
	model := &fakeCompleter{reply: "Hola. ¿Cómo estás?"}
	tts := &fakeSynth{audio: []byte{0xff, 0xf3}}
	svc := newTestService(t, model, tts, config.Features{Speech: true, Leads: true})

	res, err := svc.Chat(context.Background(), "", "hola")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if tts.calls != 1 {
		t.Errorf("synthesizer called %d times, want 1", tts.calls)
	}
	if len(res.Audio) == 0 {
		t.Error("result carries no audio despite speech being enabled")
	}
}

func TestChatSynthesisFailureDoesNotFailTurn(t *testing.T) {
	model := &fakeCompleter{reply: "Hola. ¿Cómo estás?"}
	tts := &fakeSynth{err: errors.New("websocket closed")}
	svc := newTestService(t, model, tts, config.Features{Speech: true, Leads: true})

	res, err := svc.Chat(context.Background(), "", "hola")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Audio != nil {
		t.Error("failed synthesis should yield nil audio")
	}
}

func TestChatNoSynthesisWhenSpeechDisabled(t *testing.T) {
	tts := &fakeSynth{audio: []byte{0x01}}
	svc := newTestService(t, &fakeCompleter{reply: "Hola. ¿Qué tal?"}, tts, leadsOn)

	if _, err := svc.Chat(context.Background(), "", "hola"); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if tts.calls != 0 {
		t.Errorf("synthesizer called %d times with speech disabled", tts.calls)
	}
}

func TestBookMeetingMergesAndQualifies(t *testing.T) {
	model := &fakeCompleter{reply: "Claro. ¿Algo más?"}
	svc := newTestService(t, model, nil, leadsOn)

	if _, err := svc.Chat(context.Background(), "s1", "soy Pedro y necesito branding"); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	res, err := svc.BookMeeting(context.Background(), MeetingRequest{
		SessionID:     "s1",
		Email:         "pedro@example.com",
		Needs:         []string{"branding", "web"},
		PreferredDate: "2026-09-03",
		PreferredTime: "10:00",
		MeetingType:   domain.MeetingVirtual,
	})
	if err != nil {
		t.Fatalf("BookMeeting: %v", err)
	}

	f := res.Session.Facts
	if f.Name != "Pedro" {
		t.Errorf("merge dropped prior name, got %q", f.Name)
	}
	if f.Email != "pedro@example.com" {
		t.Errorf("Email = %q", f.Email)
	}
	if len(f.Needs) != 2 {
		t.Errorf("Needs = %v, want deduplicated [branding web]", f.Needs)
	}
	if f.Stage != domain.StageReadyForMeeting || !f.MeetingInterest {
		t.Errorf("booking left stage %q, interest %v", f.Stage, f.MeetingInterest)
	}
	if !strings.Contains(res.Message, "Pedro") || !strings.Contains(res.Message, "2026-09-03") {
		t.Errorf("confirmation %q is missing the booked details", res.Message)
	}
}

func TestBookMeetingUnknownSessionCreates(t *testing.T) {
	svc := newTestService(t, &fakeCompleter{}, nil, leadsOn)

	res, err := svc.BookMeeting(context.Background(), MeetingRequest{Name: "Marta", Email: "marta@example.com"})
	if err != nil {
		t.Fatalf("BookMeeting: %v", err)
	}
	if res.SessionID == "" {
		t.Fatal("booking without a session id did not create one")
	}
	if !res.Session.Facts.Qualified() {
		t.Error("booked session is not qualified")
	}
}

func TestLeadsFiltersAndOrders(t *testing.T) {
	model := &fakeCompleter{reply: "Claro. ¿Seguimos?"}
	svc := newTestService(t, model, nil, leadsOn)
	ctx := context.Background()

	if _, err := svc.Chat(ctx, "cold", "hola, solo miro"); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if _, err := svc.Chat(ctx, "hot-a", "quiero agendar una reunión"); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if _, err := svc.Chat(ctx, "hot-b", "me gustaría agendar una llamada"); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	leads, err := svc.Leads(ctx)
	if err != nil {
		t.Fatalf("Leads: %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("got %d leads, want 2", len(leads))
	}
	for _, l := range leads {
		if l.SessionID == "cold" {
			t.Error("unqualified session surfaced as a lead")
		}
	}
	if leads[0].LastActivity.Before(leads[1].LastActivity) {
		t.Error("leads are not in most-recent-first order")
	}
}
