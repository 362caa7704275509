package conversation

import (
	"strings"

	"github.com/antaresinnovate/eva/internal/domain"
)

// maxReplyLength is the character budget for a shaped reply.
const maxReplyLength = 160

var stageQuestions = map[domain.Stage]string{
	domain.StageInitial:         "¿A qué te dedicas actualmente?",
	domain.StageExploring:       "¿Qué te gustaría mejorar primero en tu negocio?",
	domain.StageInterested:      "¿Te gustaría agendar una asesoría gratuita?",
	domain.StageReadyForMeeting: "¿Qué día te vendría mejor?",
}

// ShapeReply post-processes raw model output: if the text carries no question
// at all, a stage-specific question is appended; then the result is capped at
// maxReplyLength runes. The cap runs last, so an appended question can itself
// be truncated away. Both transforms are idempotent on compliant text.
func ShapeReply(text string, stage domain.Stage) string {
	text = strings.TrimSpace(text)

	if !strings.HasSuffix(text, "?") && !strings.Contains(text, "?") {
		question, ok := stageQuestions[stage]
		if !ok {
			question = stageQuestions[domain.StageInitial]
		}
		if text == "" {
			text = question
		} else {
			text = text + " " + question
		}
	}

	runes := []rune(text)
	if len(runes) > maxReplyLength {
		text = string(runes[:maxReplyLength-3]) + "..."
	}
	return text
}
