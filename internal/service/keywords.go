package service

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/intent"
)

// keywordCategory is one fallback intent with its keywords and fixed confidence.
type keywordCategory struct {
	intent     intent.Type
	confidence float64
	keywords   []string
}

// keywordCategories are evaluated in priority order; the first match wins.
var keywordCategories = []keywordCategory{
	{
		intent:     intent.ContentCreation,
		confidence: 0.8,
		keywords: []string{
			"contenido", "blog", "artículo", "articulo", "redactar", "escribir",
			"publicación", "publicacion", "copy", "newsletter", "guion", "guión",
			"content", "article", "write",
		},
	},
	{
		intent:     intent.Advertising,
		confidence: 0.8,
		keywords: []string{
			"anuncio", "publicidad", "publicitaria", "campaña de pago", "facebook ads",
			"google ads", "segmentación", "segmentacion", "presupuesto de anuncios",
			"advertising", "ppc", "cpc", "ads",
		},
	},
	{
		intent:     intent.BusinessStrategy,
		confidence: 0.75,
		keywords: []string{
			"estrategia", "negocio", "empresa", "plan de negocio", "crecimiento",
			"competencia", "mercado", "modelo de negocio", "strategy", "business",
		},
	},
	{
		intent:     intent.FunnelOptimization,
		confidence: 0.7,
		keywords: []string{
			"embudo", "funnel", "conversión", "conversion", "landing", "leads",
			"lead magnet", "tasa de cierre", "ventas",
		},
	},
}

const generalConfidence = 0.5

// shortKeyword is the rune length up to which a keyword must match a whole
// word, so "ads" does not fire inside "leads" or "downloads".
const shortKeyword = 4

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if containsKeyword(text, k) {
			return true
		}
	}
	return false
}

// containsKeyword matches long keywords as substrings, which lets stems such
// as "anuncio" cover "anuncios". Short keywords must start a word and end it,
// optionally followed by a plural "s".
func containsKeyword(text, k string) bool {
	if utf8.RuneCountInString(k) > shortKeyword {
		return strings.Contains(text, k)
	}
	for from := 0; ; {
		i := strings.Index(text[from:], k)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(k)
		if wordBoundaryBefore(text, start) && wordBoundaryAfter(text, end) {
			return true
		}
		from = start + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func wordBoundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func wordBoundaryAfter(text string, i int) bool {
	if i < len(text) && text[i] == 's' {
		i++
	}
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

// firstMatch returns the value paired with the first keyword list found in
// text, or def.
func firstMatch(text string, table []keywordValue, def string) string {
	for _, kv := range table {
		if containsAny(text, kv.keywords) {
			return kv.value
		}
	}
	return def
}

type keywordValue struct {
	value    string
	keywords []string
}

var contentTypeKeywords = []keywordValue{
	{intent.ContentBlog, []string{"blog", "artículo", "articulo", "article", "seo"}},
	{intent.ContentSocialMedia, []string{
		"redes sociales", "red social", "instagram", "facebook", "twitter", "linkedin",
		"tiktok", "reel", "historia", "story", "post", "social",
	}},
	{intent.ContentEmail, []string{"email", "e-mail", "correo", "newsletter", "boletín", "boletin", "mailing"}},
}

// DetectContentType classifies the kind of content a message asks for.
func DetectContentType(text string) string {
	return firstMatch(strings.ToLower(text), contentTypeKeywords, intent.ContentGeneral)
}

var adPlatformKeywords = []keywordValue{
	{intent.PlatformFacebook, []string{"facebook", "fb ads"}},
	{intent.PlatformGoogle, []string{"google", "adwords", "youtube"}},
	{intent.PlatformInstagram, []string{"instagram"}},
	{intent.PlatformLinkedIn, []string{"linkedin"}},
}

// DetectAdPlatform returns the advertising platform named in text.
func DetectAdPlatform(text string) string {
	return firstMatch(strings.ToLower(text), adPlatformKeywords, intent.PlatformGeneral)
}

var sectorKeywords = []keywordValue{
	{"restauración", []string{"restaurante", "cafetería", "cafeteria", "bar de", "gastronom"}},
	{"ecommerce", []string{"tienda online", "ecommerce", "e-commerce", "comercio electrónico", "shopify"}},
	{"inmobiliario", []string{"inmobiliaria", "inmobiliario", "bienes raíces", "real estate"}},
	{"salud", []string{"clínica", "clinica", "salud", "dental", "médico", "medico"}},
	{"educación", []string{"academia", "educación", "educacion", "curso online", "formación"}},
	{"tecnología", []string{"software", "saas", "startup", "tecnología", "tecnologia", "app móvil"}},
	{"moda", []string{"ropa", "moda ", "boutique", "fashion"}},
	{"turismo", []string{"hotel", "turismo", "viajes", "agencia de viajes"}},
	{"fitness", []string{"gimnasio", "fitness", "entrenador personal", "yoga"}},
}

var timeframeKeywords = []keywordValue{
	{"short_term", []string{"corto plazo", "short term", "esta semana", "hoy", "urgente"}},
	{"medium_term", []string{"mediano plazo", "medio plazo", "este trimestre", "próximos meses", "proximos meses"}},
	{"long_term", []string{"largo plazo", "long term", "este año", "próximo año", "proximo año", "5 años"}},
}

// detectBusinessSector returns the sector named in text, or "".
func detectBusinessSector(text string) string {
	return firstMatch(strings.ToLower(text), sectorKeywords, "")
}

// detectTimeframe returns short_term, medium_term, long_term or "".
func detectTimeframe(text string) string {
	return firstMatch(strings.ToLower(text), timeframeKeywords, "")
}
