package conversation

import (
	"fmt"
	"strings"

	"github.com/antaresinnovate/eva/internal/config"
	"github.com/antaresinnovate/eva/internal/domain"
)

var stageLabels = map[domain.Stage]string{
	domain.StageInitial:         "Etapa inicial - Conociendo a la persona",
	domain.StageExploring:       "Explorando necesidades",
	domain.StageInterested:      "Interesado en servicios específicos",
	domain.StageReadyForMeeting: "Listo para una reunión",
}

var stageGuidance = map[domain.Stage]string{
	domain.StageInitial:         "\nObjetivo actual: Conocer a la PERSONA (no al cliente). Haz preguntas sobre quién es, qué hace, etc. Aún NO hables de servicios ni ventas.\n",
	domain.StageExploring:       "\nObjetivo actual: Entender sus necesidades específicas desde la empatía. Sigue conociendo a la persona y comienza a explorar sutilmente cómo podríamos ayudar.\n",
	domain.StageInterested:      "\nObjetivo actual: Mostrar soluciones relevantes de forma natural. Sigue siendo conversacional, no un pitch de ventas.\n",
	domain.StageReadyForMeeting: "\nObjetivo actual: Facilitar la reunión ofreciendo opciones de contacto, pero mantén el tono conversacional y amigable.\n",
}

const (
	pricedGuidance = "\nObjetivo actual: NUNCA menciones un precio ni una cifra concreta. Explica que cada proyecto se cotiza a la medida y ofrece una reunión de asesoría GRATUITA para preparar una propuesta.\n"

	contactGuidance = "\nObjetivo actual: Mostrar soluciones relevantes de forma natural y pedir un correo o teléfono para hacerle llegar más información.\n"

	confirmGuidance = "Ya tienes sus datos de contacto: confirma el día y la hora de la reunión y resume lo acordado.\n"

	toneReminder = "\nIMPORTANTE: Mantén tus respuestas naturales y conversacionales. No seas robótica ni uses lenguaje de marketing. Habla como una persona real.\n"

	brevityMandate = "Responde en máximo 2-3 líneas y termina SIEMPRE con UNA pregunta sencilla.\n"

	meetingNudge = "El cliente lleva varias interacciones sin agendar: orienta la conversación hacia proponer una reunión de asesoría gratuita.\n"
)

// industryQuestions suggests an opening question per industry when the
// industry is known but no need has surfaced yet.
var industryQuestions = map[string]string{
	"alimentos":    "¿Cómo llegan hoy tus clientes a tu negocio de alimentos, más por recomendación o por redes?",
	"retail":       "¿Vendes solo en tienda física o también has probado la venta online?",
	"servicios":    "¿Cómo consiguen tus clientes enterarse de tus servicios actualmente?",
	"tecnología":   "¿Qué parte de tu producto digital sientes que más se podría potenciar?",
	"educación":    "¿Cómo se inscriben hoy tus estudiantes, tienen algún proceso en línea?",
	"salud":        "¿Tus pacientes pueden agendar citas contigo por internet actualmente?",
	"manufactura":  "¿Cómo manejan hoy los pedidos y la comunicación con sus distribuidores?",
	"finanzas":     "¿Qué tan digitalizada está hoy la relación con tus clientes?",
	"inmobiliaria": "¿Cómo muestran hoy sus propiedades, tienen catálogo en línea?",
}

// maxExchangesBeforeNudge is the number of completed exchanges after which,
// without meeting interest, the prompt pushes toward scheduling.
const maxExchangesBeforeNudge = 3

// ComposePrompt builds the single system-instruction string for the model
// call. It is a pure function of its inputs: identical arguments produce
// byte-identical output. Section order is fixed for prompt compatibility.
func ComposePrompt(persona string, f *domain.Facts, exchanges int, message string, features config.Features) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\n## INFORMACIÓN DEL CLIENTE\n")

	writeCustomerInfo(&b, f, features)
	writeStageGuidance(&b, f, features)

	if features.Leads {
		if f.Industry != "" && len(f.Needs) == 0 {
			if q, ok := industryQuestions[f.Industry]; ok {
				b.WriteString("\nPregunta sugerida para este sector: " + q + "\n")
			}
		}
	} else {
		writeLengthGuidance(&b, message)
	}

	b.WriteString(toneReminder)
	if features.Leads {
		b.WriteString(brevityMandate)
		if exchanges > maxExchangesBeforeNudge && !f.MeetingInterest {
			b.WriteString(meetingNudge)
		}
	}

	return b.String()
}

// writeCustomerInfo prints one labeled line per known fact; unset fields are
// omitted entirely.
func writeCustomerInfo(b *strings.Builder, f *domain.Facts, features config.Features) {
	if f.Name != "" {
		fmt.Fprintf(b, "- Nombre: %s\n", f.Name)
	}
	if f.Business != "" {
		fmt.Fprintf(b, "- Empresa/Negocio: %s\n", f.Business)
	}
	if f.Industry != "" {
		fmt.Fprintf(b, "- Industria: %s\n", f.Industry)
	}
	if features.Leads {
		if f.Email != "" {
			fmt.Fprintf(b, "- Email: %s\n", f.Email)
		}
		if f.Phone != "" {
			fmt.Fprintf(b, "- Teléfono: %s\n", f.Phone)
		}
	}
	if len(f.Needs) > 0 {
		fmt.Fprintf(b, "- Necesidades detectadas: %s\n", strings.Join(f.Needs, ", "))
	}
	if features.Leads {
		if f.MeetingInterest {
			b.WriteString("- Interés en reunión: sí\n")
		}
		if f.MeetingPreference != "" {
			fmt.Fprintf(b, "- Tipo de reunión preferido: %s\n", f.MeetingPreference)
		}
		if f.PreferredDay != "" {
			fmt.Fprintf(b, "- Día preferido: %s\n", f.PreferredDay)
		}
		if f.PreferredTime != "" {
			fmt.Fprintf(b, "- Hora preferida: %s\n", f.PreferredTime)
		}
	}
	label, ok := stageLabels[f.Stage]
	if !ok {
		label = stageLabels[domain.StageInitial]
	}
	fmt.Fprintf(b, "- Etapa de conversación: %s\n", label)
}

func writeStageGuidance(b *strings.Builder, f *domain.Facts, features config.Features) {
	if features.Leads {
		switch f.Stage {
		case domain.StageInterested:
			if f.PriceAsked {
				b.WriteString(pricedGuidance)
			} else {
				b.WriteString(contactGuidance)
			}
			return
		case domain.StageReadyForMeeting:
			b.WriteString(stageGuidance[f.Stage])
			if f.HasContact() {
				b.WriteString(confirmGuidance)
			}
			return
		}
	}
	if g, ok := stageGuidance[f.Stage]; ok {
		b.WriteString(g)
	}
}

// writeLengthGuidance adapts response-length instructions to the incoming
// message: very short questions get brief answers, technical questions get a
// non-technical register, long messages get acknowledgment.
func writeLengthGuidance(b *strings.Builder, message string) {
	words := len(strings.Fields(message))
	lower := strings.ToLower(message)
	switch {
	case words <= 5:
		b.WriteString("\nEsta es una pregunta/mensaje corto. Responde de manera breve y natural (1-2 frases máximo).\n")
	case containsAny(lower, technicalKeywords):
		b.WriteString("\nEsta parece ser una pregunta técnica. Proporciona información útil pero mantén un tono conversacional. No uses lenguaje técnico excesivo.\n")
	case words >= 30:
		b.WriteString("\nEl usuario ha compartido bastante información. Reconoce lo que ha dicho y responde de manera personal, pero sin escribir párrafos excesivamente largos.\n")
	default:
		b.WriteString("\nMantén una respuesta conversacional y natural. Imagina que estás chateando con un amigo o compañero de trabajo.\n")
	}
}
