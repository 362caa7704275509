package conversation

import (
	"reflect"
	"testing"

	"github.com/antaresinnovate/eva/internal/config"
	"github.com/antaresinnovate/eva/internal/domain"
)

var leadsOn = config.Features{Leads: true}

func TestExtractName(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		wantName string
	}{
		{"soy pattern", "Hola, soy Carlos", "Carlos"},
		{"me llamo pattern", "me llamo Valentina y quiero información", "Valentina"},
		{"mi nombre es pattern", "mi nombre es Andrés", "Andrés"},
		{"inverted pattern", "Patricia es mi nombre", "Patricia"},
		{"stoplisted bot name", "soy eva", ""},
		{"stoplisted greeting word", "soy gracias", ""},
		{"no pattern", "quiero información sobre sus servicios", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := domain.NewFacts()
			UpdateFacts(f, tt.message, leadsOn)
			if f.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", f.Name, tt.wantName)
			}
		})
	}
}

func TestNameFirstWriteWins(t *testing.T) {
	f := domain.NewFacts()
	UpdateFacts(f, "soy Carlos", leadsOn)
	UpdateFacts(f, "me llamo Pedro", leadsOn)

	if f.Name != "Carlos" {
		t.Errorf("Name = %q, want first-written %q", f.Name, "Carlos")
	}
}

func TestStoplistDoesNotBlockLaterTurns(t *testing.T) {
	f := domain.NewFacts()
	UpdateFacts(f, "soy eva", leadsOn)
	if f.Name != "" {
		t.Fatalf("stoplisted name was stored: %q", f.Name)
	}

	UpdateFacts(f, "perdón, soy Lucía", leadsOn)
	if f.Name != "Lucía" {
		t.Errorf("Name = %q, want %q after retry", f.Name, "Lucía")
	}
}

func TestExtractBusiness(t *testing.T) {
	f := domain.NewFacts()
	UpdateFacts(f, "mi empresa se llama Yogures del Valle", leadsOn)

	if f.Business != "yogures del valle" {
		t.Errorf("Business = %q, want %q", f.Business, "yogures del valle")
	}
}

func TestExtractIndustry(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"tengo una tienda de ropa", "retail"},
		{"manejo un restaurante en Cali", "alimentos"},
		{"trabajo en una clínica dental", "salud"},
		{"dirijo una constructora pequeña", "inmobiliaria"},
		{"hola, buenos días", ""},
	}

	for _, tt := range tests {
		f := domain.NewFacts()
		UpdateFacts(f, tt.message, leadsOn)
		if f.Industry != tt.want {
			t.Errorf("UpdateFacts(%q): Industry = %q, want %q", tt.message, f.Industry, tt.want)
		}
	}
}

func TestIndustryFirstMatchWins(t *testing.T) {
	// Both "restaurante" (alimentos) and "tienda" (retail) appear; the
	// table order picks alimentos and stops.
	f := domain.NewFacts()
	UpdateFacts(f, "tengo un restaurante y también una tienda", leadsOn)

	if f.Industry != "alimentos" {
		t.Errorf("Industry = %q, want %q", f.Industry, "alimentos")
	}
}

func TestIndustrySetAtMostOnce(t *testing.T) {
	f := domain.NewFacts()
	UpdateFacts(f, "tengo una tienda", leadsOn)
	UpdateFacts(f, "también manejo un restaurante", leadsOn)

	if f.Industry != "retail" {
		t.Errorf("Industry = %q, want first-written %q", f.Industry, "retail")
	}
}

func TestNeedsAccumulateWithoutDuplicates(t *testing.T) {
	f := domain.NewFacts()
	UpdateFacts(f, "necesito un logo nuevo", leadsOn)
	UpdateFacts(f, "quiero renovar mi marca", leadsOn)

	if !reflect.DeepEqual(f.Needs, []string{"branding"}) {
		t.Errorf("Needs = %v, want [branding]", f.Needs)
	}

	UpdateFacts(f, "también quiero una página web con tienda online", leadsOn)
	if !reflect.DeepEqual(f.Needs, []string{"branding", "web"}) {
		t.Errorf("Needs = %v, want [branding web]", f.Needs)
	}
}

func TestMultipleNeedsInOneTurn(t *testing.T) {
	f := domain.NewFacts()
	UpdateFacts(f, "necesito un logo, una página web y un chatbot", leadsOn)

	want := []string{"branding", "web", "automatización"}
	if !reflect.DeepEqual(f.Needs, want) {
		t.Errorf("Needs = %v, want %v", f.Needs, want)
	}
}

func TestPriceQuestionSetsInterested(t *testing.T) {
	f := domain.NewFacts()
	UpdateFacts(f, "¿cuánto cuesta una página web?", leadsOn)

	if f.Stage != domain.StageInterested {
		t.Errorf("Stage = %q, want %q", f.Stage, domain.StageInterested)
	}
	if !f.PriceAsked {
		t.Error("PriceAsked = false, want true")
	}
}

func TestPriceQuestionRegressesLaterStage(t *testing.T) {
	// The stage machine deliberately re-evaluates each turn: a price
	// question without a meeting word pulls ready_for_meeting back to
	// interested.
	f := domain.NewFacts()
	f.Stage = domain.StageReadyForMeeting
	UpdateFacts(f, "antes de seguir, cuánto cuesta", leadsOn)

	if f.Stage != domain.StageInterested {
		t.Errorf("Stage = %q, want %q", f.Stage, domain.StageInterested)
	}
}

func TestMeetingKeywordPreemptsPrice(t *testing.T) {
	f := domain.NewFacts()
	UpdateFacts(f, "quiero saber el precio y agendar una reunión", leadsOn)

	if f.Stage != domain.StageReadyForMeeting {
		t.Errorf("Stage = %q, want %q", f.Stage, domain.StageReadyForMeeting)
	}
	if !f.MeetingInterest {
		t.Error("MeetingInterest = false, want true")
	}
	if f.PriceAsked {
		t.Error("PriceAsked = true, want false (meeting branch skips the price check)")
	}
}

func TestNeedsSetExploring(t *testing.T) {
	f := domain.NewFacts()
	UpdateFacts(f, "me interesa el diseño de marca", leadsOn)

	if f.Stage != domain.StageExploring {
		t.Errorf("Stage = %q, want %q", f.Stage, domain.StageExploring)
	}
}

func TestStageUnchangedWithoutSignals(t *testing.T) {
	f := domain.NewFacts()
	UpdateFacts(f, "hola, buenos días", leadsOn)

	if f.Stage != domain.StageInitial {
		t.Errorf("Stage = %q, want %q", f.Stage, domain.StageInitial)
	}
}

func TestContactCapture(t *testing.T) {
	f := domain.NewFacts()
	UpdateFacts(f, "escríbeme a Ana.Lopez@Tienda.co o al +57 305 345 6611", leadsOn)

	if f.Email != "Ana.Lopez@Tienda.co" {
		t.Errorf("Email = %q, want verbatim %q", f.Email, "Ana.Lopez@Tienda.co")
	}
	if f.Phone != "+57 305 345 6611" {
		t.Errorf("Phone = %q, want %q", f.Phone, "+57 305 345 6611")
	}
}

func TestContactCaptureDisabledWithoutLeads(t *testing.T) {
	f := domain.NewFacts()
	UpdateFacts(f, "mi correo es ana@example.com", config.Features{})

	if f.Email != "" {
		t.Errorf("Email = %q, want empty when leads feature is off", f.Email)
	}
}

func TestMeetingDetails(t *testing.T) {
	f := domain.NewFacts()
	UpdateFacts(f, "quiero agendar una reunión virtual el martes a las 3", leadsOn)

	if f.MeetingPreference != domain.MeetingVirtual {
		t.Errorf("MeetingPreference = %q, want %q", f.MeetingPreference, domain.MeetingVirtual)
	}
	if f.PreferredDay != "martes" {
		t.Errorf("PreferredDay = %q, want %q", f.PreferredDay, "martes")
	}
	if f.PreferredTime != "3" {
		t.Errorf("PreferredTime = %q, want %q", f.PreferredTime, "3")
	}
}

func TestMeetingDetailsHourSuffix(t *testing.T) {
	f := domain.NewFacts()
	UpdateFacts(f, "podemos reunirnos el jueves, 10:30 am me sirve", leadsOn)

	if f.PreferredDay != "jueves" {
		t.Errorf("PreferredDay = %q, want %q", f.PreferredDay, "jueves")
	}
	if f.PreferredTime != "10:30" {
		t.Errorf("PreferredTime = %q, want %q", f.PreferredTime, "10:30")
	}
}

func TestMalformedInputDoesNotPanic(t *testing.T) {
	f := domain.NewFacts()
	for _, msg := range []string{"", "   ", "soy", "@@@@", "a las", "me llamo "} {
		UpdateFacts(f, msg, leadsOn)
	}
	if f.Stage != domain.StageInitial {
		t.Errorf("Stage = %q, want %q", f.Stage, domain.StageInitial)
	}
}
