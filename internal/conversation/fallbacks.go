package conversation

import "github.com/antaresinnovate/eva/internal/domain"

// Greeting is the fixed opening line for a new or reset session.
const Greeting = "Hola, soy Eva. ¿Cómo te llamas?"

// FallbackReply returns the canned in-band reply for a stage, used when the
// model is unreachable after retries or returns an empty payload. The chat
// flow never surfaces a model failure to the caller.
func FallbackReply(stage domain.Stage) string {
	switch stage {
	case domain.StageInitial:
		return "¡Hola! Soy Eva de Antares Innovate. Me encantaría conocer más sobre ti y tu proyecto. ¿A qué te dedicas actualmente?"
	case domain.StageExploring:
		return "Me gustaría entender mejor tus necesidades específicas. ¿Qué aspectos de tu negocio te gustaría mejorar o potenciar en este momento?"
	case domain.StageInterested, domain.StageReadyForMeeting:
		return "Para ofrecerte la mejor solución, me encantaría agendar una llamada de asesoría personalizada. ¿Te parece bien? Puedes contactarnos en contacto@antaresinnovate.com o al +57 305 345 6611."
	default:
		return "¿Te gustaría conocer más sobre algún aspecto específico de nuestros servicios? Estoy aquí para ayudarte."
	}
}
