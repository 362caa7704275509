package conversation

import "regexp"

// Extraction policy lives in these tables: namePatterns and businessPatterns
// are first-match-wins, industryRules is first-match-wins across rules,
// needRules accumulates every matching rule. Table order is fixed and
// meaningful.

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:me llamo|soy|mi nombre es) ([A-Za-záéíóúÁÉÍÓÚñÑ]+)`),
	regexp.MustCompile(`(?:^|\s)([A-Za-záéíóúÁÉÍÓÚñÑ]+) (?:me llamo|es mi nombre)`),
}

// nameStoplist rejects captures that are greetings or the bot's own name.
var nameStoplist = map[string]bool{
	"eva":     true,
	"hola":    true,
	"bien":    true,
	"gracias": true,
	"ok":      true,
	"si":      true,
	"no":      true,
}

var businessPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:mi|nuestra) (?:empresa|negocio|compañía|tienda|marca) (?:de|es|se llama) ([^.,;]+)`),
	regexp.MustCompile(`(?:tengo|tenemos) (?:un |una )?(?:empresa|negocio|compañía|tienda|marca) (?:de|llamada|que se llama) ([^.,;]+)`),
}

// keywordRule maps a tag to the keywords that select it. Keywords match as
// substrings of the lower-cased utterance.
type keywordRule struct {
	tag      string
	keywords []string
}

var industryRules = []keywordRule{
	{"alimentos", []string{"yogur", "yogurt", "alimento", "comida", "restaurante", "café", "panadería"}},
	{"retail", []string{"tienda", "comercio", "venta", "producto", "retail", "minorista"}},
	{"servicios", []string{"servicio", "consultoría", "asesoría", "profesional"}},
	{"tecnología", []string{"tech", "tecnología", "software", "aplicación", "digital"}},
	{"educación", []string{"educación", "escuela", "academia", "universidad", "colegio", "enseñanza"}},
	{"salud", []string{"salud", "clínica", "hospital", "médico", "medicina", "bienestar"}},
	{"manufactura", []string{"fábrica", "manufactura", "producción", "planta", "taller"}},
	{"finanzas", []string{"banco", "finanzas", "financiera", "seguros", "contabilidad", "inversiones"}},
	{"inmobiliaria", []string{"inmobiliaria", "bienes raíces", "propiedades", "arriendo", "constructora"}},
}

var needRules = []keywordRule{
	{"branding", []string{"logo", "marca", "diseño", "identidad", "imagen"}},
	{"web", []string{"página", "web", "sitio", "online", "tienda online", "e-commerce", "ecommerce", "landing"}},
	{"marketing", []string{"marketing", "publicidad", "redes sociales", "campaña", "seo", "pauta"}},
	{"app", []string{"app", "aplicación", "móvil", "celular"}},
	{"automatización", []string{"automatización", "procesos", "flujo", "chatbot", "bot"}},
}

var priceKeywords = []string{"precio", "costo", "tarifa", "cuánto", "cuanto", "inversión"}

var meetingKeywords = []string{
	"reunión", "reunir", "asesoría", "contactar", "llamada", "conocer", "agendar", "cita",
}

var virtualKeywords = []string{"virtual", "videollamada", "zoom", "meet", "en línea"}

var presencialKeywords = []string{"presencial", "en persona", "oficina"}

var weekdays = []string{"lunes", "martes", "miércoles", "miercoles", "jueves", "viernes", "sábado", "sabado", "domingo"}

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().-]{6,}\d`)

	// "a las 3", "3 pm", "15:30 hrs". First match wins, in this order.
	timePatterns = []*regexp.Regexp{
		regexp.MustCompile(`a las (\d{1,2}(?::\d{2})?)`),
		regexp.MustCompile(`\b(\d{1,2}(?::\d{2})?)\s*(?:am|pm|hrs|horas|h)\b`),
	}
)

var technicalKeywords = []string{
	"técnico", "técnica", "desarrollo", "programación", "proceso", "implementación", "detalle",
}
