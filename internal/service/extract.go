package service

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/task"
)

// Platform names recognised in free text.
var (
	socialPlatforms = []string{"facebook", "instagram", "linkedin", "twitter", "tiktok", "slack"}
	emailProviders  = []string{"mailchimp", "smtp"}
)

var (
	socialWords    = append([]string{"redes sociales", "red social"}, socialPlatforms...)
	emailWords     = append([]string{"email", "e-mail", "correo", "newsletter", "boletín", "boletin", "mailing"}, emailProviders...)
	analyticsWords = []string{
		"estadística", "estadistica", "métricas", "metricas", "analítica", "analitica",
		"analytics", "rendimiento", "informe", "reporte", "insights",
	}
	campaignWords = []string{"campaña", "campana", "newsletter", "boletín", "boletin"}
)

var (
	publishRe  = regexp.MustCompile(`(?i)\b(?:publica|publicar|publique|postea|postear|comparte|compartir|sube|subir)\b`)
	scheduleRe = regexp.MustCompile(`(?i)\b(?:programa|programar|programe|agenda|agendar|schedule)\b`)
	campaignRe = regexp.MustCompile(`(?i)\b(?:crea|crear|cree|envía|envia|enviar|manda|mandar|lanza|lanzar|prepara|preparar)\b`)
	listRe     = regexp.MustCompile(`(?i)(?:listas? de correo|mis listas|nueva lista|\bcrea(?:r)? (?:una )?lista|suscrib|suscript|audiencia|(?:añade|agrega|añadir|agregar)\b.*@)`)
	sendRe     = regexp.MustCompile(`(?i)\b(?:envía|envia|enviar|envíala|enviala|manda|mandar|send)\b`)
	draftRe    = regexp.MustCompile(`(?i)(?:borrador|sin enviar|no la env|draft)`)
	timeRe     = regexp.MustCompile(`(?i)(?:para el \d{4}-\d{2}-\d{2}|mañana a las \d)`)
)

var (
	questionRe  = regexp.MustCompile(`(?i)^\s*(?:¿|(?:cómo|como|qué|que|cuáles|cuales|cuál|cual|debo|debería|deberia)(?:[\s,]|$))|\?\s*$`)
	directiveRe = regexp.MustCompile(`:\s+\S|["“«][^"”»]+["”»]`)
)

// isQuestion reports whether text asks for advice rather than giving an
// order. A colon payload or quoted content still counts as an order.
func isQuestion(text string) bool {
	return questionRe.MatchString(text) && !directiveRe.MatchString(text)
}

// DetectExecutableIntent returns the executable intent expressed by text,
// or "" when the message should be answered conversationally. Questions
// only reach the read-only analytics intents.
func DetectExecutableIntent(text string) task.ExecutableIntent {
	lower := strings.ToLower(text)
	social := containsAny(lower, socialWords)
	email := containsAny(lower, emailWords)
	analytics := containsAny(lower, analyticsWords)

	switch {
	case analytics && email:
		return task.IntentEmailCampaignAnalytics
	case analytics && social:
		return task.IntentSocialMediaAnalytics
	case isQuestion(text):
		return ""
	case email && campaignRe.MatchString(text) && containsAny(lower, campaignWords):
		return task.IntentEmailCampaignCreate
	case listRe.MatchString(text):
		return task.IntentEmailListManage
	case social && (scheduleRe.MatchString(text) || (publishRe.MatchString(text) && timeRe.MatchString(text))):
		return task.IntentSocialMediaSchedule
	case social && publishRe.MatchString(text):
		return task.IntentSocialMediaPost
	}
	return ""
}

// Extractor builds the typed parameters of one task type from free text.
// Extraction is best effort; missing values fall back to defaults.
type Extractor interface {
	Extract(text string, now time.Time) task.Params
}

// ExtractorSet holds one Extractor per task type.
type ExtractorSet struct {
	extractors map[task.Type]Extractor
}

// NewExtractorSet returns an empty set.
func NewExtractorSet() *ExtractorSet {
	return &ExtractorSet{extractors: make(map[task.Type]Extractor)}
}

// DefaultExtractors returns the built-in extractors for every task type.
func DefaultExtractors(defaultSocial, defaultEmail string) *ExtractorSet {
	s := NewExtractorSet()
	post := SocialPostExtractor{DefaultPlatform: defaultSocial}
	s.Register(task.TypeSocialPost, post)
	s.Register(task.TypeSocialSchedule, SocialScheduleExtractor{Post: post})
	s.Register(task.TypeSocialAnalytics, SocialAnalyticsExtractor{DefaultPlatform: defaultSocial})
	s.Register(task.TypeEmailCampaign, EmailCampaignExtractor{DefaultProvider: defaultEmail})
	s.Register(task.TypeEmailList, EmailListExtractor{DefaultProvider: defaultEmail})
	s.Register(task.TypeEmailAnalytics, EmailAnalyticsExtractor{DefaultProvider: defaultEmail})
	return s
}

// Register installs e for typ, replacing any previous extractor.
func (s *ExtractorSet) Register(typ task.Type, e Extractor) {
	s.extractors[typ] = e
}

// Extract runs the extractor registered for typ.
func (s *ExtractorSet) Extract(typ task.Type, text string, now time.Time) (task.Params, error) {
	e, ok := s.extractors[typ]
	if !ok {
		return nil, fmt.Errorf("no extractor for task type %s: %w", typ, domain.ErrValidation)
	}
	return e.Extract(text, now), nil
}

var (
	quotedContentRe  = regexp.MustCompile(`(?i)\b(?:publicar|publica|post)\s*:\s*["“«]([^"”»]+)["”»]`)
	mediaDirectiveRe = regexp.MustCompile(`(?i)\b(imagen|image|foto|vídeo|video|enlace|link)\s*:\s*["“«]?(https?://[^\s"”»]+)["”»]?`)
	bareURLRe        = regexp.MustCompile(`https?://[^\s"”»]+`)
	triggerRe        = regexp.MustCompile(`(?i)\b(?:publica|publicar|publique|postea|postear|comparte|compartir|sube|subir|programa|programar|programe|agenda|agendar)\b`)
	platformPhraseRe = regexp.MustCompile(`(?i)\b(?:en|a|on|para|to)\s+(?:mi\s+(?:página\s+de\s+|pagina\s+de\s+|cuenta\s+de\s+|canal\s+de\s+)?)?(?:facebook|instagram|linkedin|twitter|tiktok|slack)\b`)
	scheduleAtRe     = regexp.MustCompile(`(?i)para el (\d{4}-\d{2}-\d{2})(?:\s+a\s+las)?\s+(\d{1,2}:\d{2})`)
	tomorrowRe       = regexp.MustCompile(`(?i)mañana a las (\d{1,2})(?::(\d{2}))?`)
)

var (
	imageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	videoExts = []string{".mp4", ".mov", ".avi", ".webm", ".mkv"}
)

// detectPlatform returns the name in names that appears earliest in text,
// or def when none does.
func detectPlatform(text string, names []string, def string) string {
	lower := strings.ToLower(text)
	best, bestIdx := def, -1
	for _, n := range names {
		if i := strings.Index(lower, n); i >= 0 && (bestIdx < 0 || i < bestIdx) {
			best, bestIdx = n, i
		}
	}
	return best
}

type mediaKind int

const (
	mediaNone mediaKind = iota
	mediaImage
	mediaVideo
	mediaLink
)

func kindOfDirective(word string) mediaKind {
	switch strings.ToLower(word) {
	case "imagen", "image", "foto":
		return mediaImage
	case "video", "vídeo":
		return mediaVideo
	default:
		return mediaLink
	}
}

func kindOfURL(u string) mediaKind {
	p := u
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	ext := strings.ToLower(path.Ext(p))
	for _, e := range imageExts {
		if ext == e {
			return mediaImage
		}
	}
	for _, e := range videoExts {
		if ext == e {
			return mediaVideo
		}
	}
	return mediaLink
}

// extractMedia returns the first media URL with its kind and the first link
// URL. Directives win over bare URLs.
func extractMedia(text string) (media string, kind mediaKind, link string) {
	for _, m := range mediaDirectiveRe.FindAllStringSubmatch(text, -1) {
		switch k := kindOfDirective(m[1]); k {
		case mediaLink:
			if link == "" {
				link = m[2]
			}
		default:
			if media == "" {
				media, kind = m[2], k
			}
		}
	}
	if media != "" || link != "" {
		return media, kind, link
	}
	for _, u := range bareURLRe.FindAllString(text, -1) {
		switch k := kindOfURL(u); k {
		case mediaLink:
			if link == "" {
				link = u
			}
		default:
			if media == "" {
				media, kind = u, k
			}
		}
	}
	return media, kind, link
}

// afterColon returns the text after the first colon that does not start a
// URL scheme separator.
func afterColon(s string) (string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' && !strings.HasPrefix(s[i+1:], "//") {
			return s[i+1:], true
		}
	}
	return "", false
}

func cleanText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, ":;,- \t\n")
	for _, q := range [][2]string{{`"`, `"`}, {"“", "”"}, {"«", "»"}} {
		if strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) && len(s) > len(q[0])+len(q[1]) {
			s = s[len(q[0]) : len(s)-len(q[1])]
		}
	}
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}

var spacesRe = regexp.MustCompile(`[ \t]+`)

// SocialPostExtractor extracts SocialPostParams.
type SocialPostExtractor struct {
	DefaultPlatform string
}

func (e SocialPostExtractor) Extract(text string, _ time.Time) task.Params {
	return e.post(text)
}

func (e SocialPostExtractor) post(text string) task.SocialPostParams {
	media, kind, link := extractMedia(text)
	p := task.SocialPostParams{
		Platform: detectPlatform(text, socialPlatforms, e.DefaultPlatform),
		Content:  postContent(text),
		MediaURL: media,
		LinkURL:  link,
	}
	switch {
	case kind == mediaImage:
		p.ContentType = task.ContentImage
	case kind == mediaVideo:
		p.ContentType = task.ContentVideo
	case link != "":
		p.ContentType = task.ContentLink
	default:
		p.ContentType = task.ContentText
	}
	return p
}

func postContent(text string) string {
	if m := quotedContentRe.FindStringSubmatch(text); m != nil {
		return cleanText(m[1])
	}

	rest := mediaDirectiveRe.ReplaceAllString(text, "")
	rest = scheduleAtRe.ReplaceAllString(rest, "")
	rest = tomorrowRe.ReplaceAllString(rest, "")

	var content string
	if after, ok := afterColon(rest); ok {
		content = after
	} else if loc := triggerRe.FindStringIndex(rest); loc != nil {
		content = platformPhraseRe.ReplaceAllString(rest[loc[1]:], "")
	} else {
		content = rest
	}
	return cleanText(bareURLRe.ReplaceAllString(content, ""))
}

// SocialScheduleExtractor extracts SocialScheduleParams. Without a
// recognised time expression the post is scheduled for the next full hour.
type SocialScheduleExtractor struct {
	Post SocialPostExtractor
}

func (e SocialScheduleExtractor) Extract(text string, now time.Time) task.Params {
	return task.SocialScheduleParams{
		SocialPostParams: e.Post.post(text),
		ScheduledAt:      scheduleTime(text, now),
	}
}

func scheduleTime(text string, now time.Time) time.Time {
	loc := now.Location()
	if m := scheduleAtRe.FindStringSubmatch(text); m != nil {
		if at, err := time.ParseInLocation("2006-01-02 15:04", m[1]+" "+m[2], loc); err == nil {
			return at
		}
	}
	if m := tomorrowRe.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour < 24 && minute < 60 {
			d := now.AddDate(0, 0, 1)
			return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc)
		}
	}
	return now.Truncate(time.Hour).Add(time.Hour)
}

var (
	periodDayRe   = regexp.MustCompile(`(?i)\b(?:hoy|día|dia|diario|diarias|today|day)\b`)
	periodWeekRe  = regexp.MustCompile(`(?i)\b(?:semana|semanal|semanales|week|weekly)\b`)
	periodMonthRe = regexp.MustCompile(`(?i)\b(?:mes|mensual|mensuales|month|monthly)\b`)
)

// SocialAnalyticsExtractor extracts SocialAnalyticsParams. Period is day,
// week or month, defaulting to week.
type SocialAnalyticsExtractor struct {
	DefaultPlatform string
}

func (e SocialAnalyticsExtractor) Extract(text string, _ time.Time) task.Params {
	period := "week"
	switch {
	case periodDayRe.MatchString(text):
		period = "day"
	case periodWeekRe.MatchString(text):
		period = "week"
	case periodMonthRe.MatchString(text):
		period = "month"
	}
	return task.SocialAnalyticsParams{
		Platform: detectPlatform(text, socialPlatforms, e.DefaultPlatform),
		Period:   period,
	}
}

var (
	subjectRe    = regexp.MustCompile(`(?i)\b(?:asunto|subject|título|titulo)\s*:\s*(?:["“«]([^"”»]+)["”»]|([^\n,;]+))`)
	bodyRe       = regexp.MustCompile(`(?i)\b(?:contenido|mensaje|texto|cuerpo|content)\s*:\s*(?:["“«]([^"”»]+)["”»]|([\s\S]+))`)
	listColonRe  = regexp.MustCompile(`(?i)\blistas?\s*:\s*["“«]?([^"”»,;\n]+)`)
	listNamedRe  = regexp.MustCompile(`(?i)\b(?:llamada|con el nombre|named)\s+["“«]?([^"”»,;\n]+)`)
	listQuotedRe = regexp.MustCompile(`(?i)\blistas?\s+(?:de\s+correo\s+)?["“«]([^"”»]+)["”»]`)
	listWordRe   = regexp.MustCompile(`(?i)\blistas?\s+(?:de\s+correo\s+|de\s+)?([\p{L}\p{N}_.\-]+)`)
	emailAddrRe  = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	createRe     = regexp.MustCompile(`(?i)\b(?:crea|crear|cree|nueva|new|create)\b`)
	campaignIDRe = regexp.MustCompile(`(?i)\b(?:campaña|campaign)\s*(?:id)?\s*[:#]\s*["“«]?([\w-]+)`)
)

var listStopWords = map[string]bool{
	"correo": true, "correos": true, "email": true, "emails": true, "de": true,
	"la": true, "el": true, "mis": true, "llamada": true, "nueva": true, "y": true,
	"para": true, "con": true,
}

func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

func listName(text string) string {
	for _, re := range []*regexp.Regexp{listColonRe, listNamedRe, listQuotedRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			return cleanText(m[1])
		}
	}
	if m := listWordRe.FindStringSubmatch(text); m != nil && !listStopWords[strings.ToLower(m[1])] {
		return m[1]
	}
	return ""
}

// EmailCampaignExtractor extracts EmailCampaignParams. Subject defaults to
// the start of the content.
type EmailCampaignExtractor struct {
	DefaultProvider string
}

func (e EmailCampaignExtractor) Extract(text string, _ time.Time) task.Params {
	p := task.EmailCampaignParams{
		Provider: detectPlatform(text, emailProviders, e.DefaultProvider),
		ListName: listName(text),
		SendNow:  sendRe.MatchString(text) && !draftRe.MatchString(text),
	}

	rest := text
	if m := subjectRe.FindStringSubmatch(text); m != nil {
		p.Subject = cleanText(firstGroup(m))
		rest = strings.Replace(rest, m[0], "", 1)
	}
	if m := listColonRe.FindStringSubmatch(rest); m != nil {
		rest = strings.Replace(rest, m[0], "", 1)
	}

	if m := bodyRe.FindStringSubmatch(rest); m != nil {
		p.Content = cleanText(firstGroup(m))
	} else if after, ok := afterColon(rest); ok {
		p.Content = cleanText(after)
	}

	if p.Subject == "" {
		p.Subject = defaultSubject(p.Content)
	}
	return p
}

const maxSubjectRunes = 60

func defaultSubject(content string) string {
	if content == "" {
		return "Novedades"
	}
	line, _, _ := strings.Cut(content, ".")
	r := []rune(strings.TrimSpace(line))
	if len(r) > maxSubjectRunes {
		return strings.TrimSpace(string(r[:maxSubjectRunes])) + "…"
	}
	return string(r)
}

// EmailListExtractor extracts EmailListParams. An email address means
// subscribe, a creation verb means create, anything else lists.
type EmailListExtractor struct {
	DefaultProvider string
}

func (e EmailListExtractor) Extract(text string, _ time.Time) task.Params {
	p := task.EmailListParams{
		Provider: detectPlatform(text, emailProviders, e.DefaultProvider),
		Action:   task.ListActionList,
		ListName: listName(text),
	}
	switch {
	case emailAddrRe.MatchString(text):
		p.Action = task.ListActionSubscribe
		p.Email = emailAddrRe.FindString(text)
	case createRe.MatchString(text):
		p.Action = task.ListActionCreate
	}
	return p
}

// EmailAnalyticsExtractor extracts EmailAnalyticsParams. Without an explicit
// campaign ID the latest campaign is reported.
type EmailAnalyticsExtractor struct {
	DefaultProvider string
}

func (e EmailAnalyticsExtractor) Extract(text string, _ time.Time) task.Params {
	p := task.EmailAnalyticsParams{
		Provider: detectPlatform(text, emailProviders, e.DefaultProvider),
	}
	if m := campaignIDRe.FindStringSubmatch(text); m != nil {
		p.CampaignID = m[1]
	}
	return p
}
