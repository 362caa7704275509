package domain

// Stage is the coarse funnel position of a conversation. It selects the
// guidance paragraph in the composed prompt.
type Stage string

const (
	StageInitial         Stage = "initial"
	StageExploring       Stage = "exploring"
	StageInterested      Stage = "interested"
	StageReadyForMeeting Stage = "ready_for_meeting"
)

// Meeting type preferences.
const (
	MeetingVirtual    = "virtual"
	MeetingPresencial = "presencial"
)

// Facts is the user-info record inferred turn by turn from free text.
// Scalar fields are first-write-wins; Needs accumulates without duplicates;
// the boolean flags are monotonic once set.
type Facts struct {
	Name              string   `json:"name,omitempty"`
	Business          string   `json:"business,omitempty"`
	Industry          string   `json:"industry,omitempty"`
	Email             string   `json:"email,omitempty"`
	Phone             string   `json:"phone,omitempty"`
	Needs             []string `json:"needs"`
	MeetingInterest   bool     `json:"meeting_interest"`
	MeetingPreference string   `json:"meeting_preference,omitempty"`
	PreferredDay      string   `json:"preferred_day,omitempty"`
	PreferredTime     string   `json:"preferred_time,omitempty"`
	PriceAsked        bool     `json:"price_asked"`
	Stage             Stage    `json:"stage"`
}

// NewFacts returns an empty facts record in the initial stage.
func NewFacts() *Facts {
	return &Facts{
		Needs: []string{},
		Stage: StageInitial,
	}
}

// AddNeed appends a need unless it is already recorded.
func (f *Facts) AddNeed(need string) {
	for _, n := range f.Needs {
		if n == need {
			return
		}
	}
	f.Needs = append(f.Needs, need)
}

// HasContact reports whether any contact channel is known.
func (f *Facts) HasContact() bool {
	return f.Email != "" || f.Phone != ""
}

// Qualified reports whether the session should surface as a lead.
func (f *Facts) Qualified() bool {
	return f.Stage == StageReadyForMeeting || f.MeetingInterest
}
