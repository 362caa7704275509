// Package conversation implements the context-extraction and prompt-assembly
// pipeline: per-session facts inferred from free text, the staged funnel they
// drive, prompt construction for the remote model, and response shaping.
package conversation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/antaresinnovate/eva/internal/config"
	"github.com/antaresinnovate/eva/internal/domain"
)

// UpdateFacts enriches facts in place from one user utterance. Rules run in a
// fixed order; a rule that finds no match leaves its field untouched, so
// malformed input can never fail extraction. Contact capture and meeting
// signals only run when the leads feature is on.
func UpdateFacts(f *domain.Facts, message string, features config.Features) {
	lower := strings.ToLower(message)

	if f.Name == "" {
		if name, ok := firstCapture(namePatterns, lower, nameStoplist); ok {
			f.Name = capitalize(name)
		}
	}

	if f.Business == "" {
		if business, ok := firstCapture(businessPatterns, lower, nil); ok {
			f.Business = strings.TrimSpace(business)
		}
	}

	if f.Industry == "" {
		if industry, ok := matchFirst(industryRules, lower); ok {
			f.Industry = industry
		}
	}

	for _, need := range matchAll(needRules, lower) {
		f.AddNeed(need)
	}

	if features.Leads {
		// Contact patterns run over the original text: lower-casing would
		// mangle emails stored verbatim.
		if f.Email == "" {
			if email := emailPattern.FindString(message); email != "" {
				f.Email = email
			}
		}
		if f.Phone == "" {
			if phone := phonePattern.FindString(message); phone != "" {
				f.Phone = strings.TrimSpace(phone)
			}
		}
	}

	if features.Leads && containsAny(lower, meetingKeywords) {
		// A meeting signal pre-empts the price/needs stage transition.
		f.MeetingInterest = true
		f.Stage = domain.StageReadyForMeeting
		updateMeetingDetails(f, lower)
		return
	}

	switch {
	case containsAny(lower, priceKeywords):
		f.Stage = domain.StageInterested
		f.PriceAsked = true
	case len(f.Needs) > 0:
		f.Stage = domain.StageExploring
	}
}

// updateMeetingDetails captures preference, day and time. Each check is
// independent, best-effort, first-write-wins.
func updateMeetingDetails(f *domain.Facts, lower string) {
	if f.MeetingPreference == "" {
		switch {
		case containsAny(lower, virtualKeywords):
			f.MeetingPreference = domain.MeetingVirtual
		case containsAny(lower, presencialKeywords):
			f.MeetingPreference = domain.MeetingPresencial
		}
	}

	if f.PreferredDay == "" {
		for _, day := range weekdays {
			if strings.Contains(lower, day) {
				f.PreferredDay = day
				break
			}
		}
	}

	if f.PreferredTime == "" {
		for _, p := range timePatterns {
			if m := p.FindStringSubmatch(lower); m != nil {
				f.PreferredTime = m[1]
				break
			}
		}
	}
}

// firstCapture returns the first submatch of the first matching pattern whose
// capture is not stoplisted. A stoplisted capture falls through to the next
// pattern rather than aborting.
func firstCapture(patterns []*regexp.Regexp, text string, stoplist map[string]bool) (string, bool) {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		capture := strings.TrimSpace(m[1])
		if capture == "" || stoplist[strings.ToLower(capture)] {
			continue
		}
		return capture, true
	}
	return "", false
}

// matchFirst returns the tag of the first rule with any keyword present.
func matchFirst(rules []keywordRule, text string) (string, bool) {
	for _, rule := range rules {
		if containsAny(text, rule.keywords) {
			return rule.tag, true
		}
	}
	return "", false
}

// matchAll returns the tags of every rule with any keyword present, in table
// order.
func matchAll(rules []keywordRule, text string) []string {
	var tags []string
	for _, rule := range rules {
		if containsAny(text, rule.keywords) {
			tags = append(tags, rule.tag)
		}
	}
	return tags
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func capitalize(word string) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return ""
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
