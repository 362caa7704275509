package domain

import "time"

// Lead is the follow-up projection of a qualified session: one record per
// session whose stage reached ready_for_meeting or that showed meeting
// interest.
type Lead struct {
	SessionID         string    `json:"session_id"`
	Name              string    `json:"name,omitempty"`
	Business          string    `json:"business,omitempty"`
	Industry          string    `json:"industry,omitempty"`
	Email             string    `json:"email,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	Needs             []string  `json:"needs"`
	MeetingPreference string    `json:"meeting_preference,omitempty"`
	PreferredDay      string    `json:"preferred_day,omitempty"`
	PreferredTime     string    `json:"preferred_time,omitempty"`
	Stage             Stage     `json:"stage"`
	LastActivity      time.Time `json:"last_activity"`
}

// LeadFromSession projects a session's facts into a lead record.
func LeadFromSession(s *Session) Lead {
	f := s.Facts
	return Lead{
		SessionID:         s.ID,
		Name:              f.Name,
		Business:          f.Business,
		Industry:          f.Industry,
		Email:             f.Email,
		Phone:             f.Phone,
		Needs:             f.Needs,
		MeetingPreference: f.MeetingPreference,
		PreferredDay:      f.PreferredDay,
		PreferredTime:     f.PreferredTime,
		Stage:             f.Stage,
		LastActivity:      s.UpdatedAt,
	}
}
