package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	cfotel "github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/otel"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/intent"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/classifier"
)

// StrategyKeyword labels intents produced by the keyword fallback.
const StrategyKeyword = "keyword"

// classificationPrompt is the fixed instruction sent with every message.
var classificationPrompt = buildClassificationPrompt()

func buildClassificationPrompt() string {
	names := make([]string, len(intent.Types))
	for i, t := range intent.Types {
		names[i] = string(t)
	}
	var b strings.Builder
	b.WriteString("Eres el analizador de intenciones de GENIA, una plataforma de marketing.\n")
	b.WriteString("Clasifica el mensaje del usuario en exactamente una de estas intenciones: ")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(".\nSi encaja también una segunda intención, indícala como secondaryIntent.\n")
	b.WriteString("Extrae, cuando aparezcan, estas entidades: ")
	b.WriteString(strings.Join(intent.EntityKeys, ", "))
	b.WriteString(".\ncontentType es uno de blog, social_media, email, general. ")
	b.WriteString("adPlatform es uno de facebook, google, instagram, linkedin, general.\n")
	b.WriteString(`Responde solo con JSON: {"primaryIntent": "...", "secondaryIntent": "...", "confidence": 0.0, "entities": {}}`)
	return b.String()
}

// ClassificationPrompt returns the instruction prompt sent to classifiers.
func ClassificationPrompt() string { return classificationPrompt }

// KeywordAnalyzer classifies messages by case-insensitive substring matching.
// It never fails and is used alone when no classifier is configured.
type KeywordAnalyzer struct{}

// Analyze returns the first matching category in priority order, recording a
// second matching category as the secondary intent.
func (KeywordAnalyzer) Analyze(message string) intent.Intent {
	text := strings.ToLower(message)

	result := intent.Intent{
		PrimaryIntent: intent.GeneralQuery,
		Confidence:    generalConfidence,
		Entities:      map[string]string{},
	}

	matched := false
	for _, cat := range keywordCategories {
		if !containsAny(text, cat.keywords) {
			continue
		}
		if !matched {
			result.PrimaryIntent = cat.intent
			result.Confidence = cat.confidence
			matched = true
			continue
		}
		result.SecondaryIntent = cat.intent
		break
	}

	switch result.PrimaryIntent {
	case intent.ContentCreation:
		result.Entities[intent.EntityContentType] = DetectContentType(text)
	case intent.Advertising:
		result.Entities[intent.EntityAdPlatform] = DetectAdPlatform(text)
	}
	if sector := detectBusinessSector(text); sector != "" {
		result.Entities[intent.EntityBusinessSector] = sector
	}
	if tf := detectTimeframe(text); tf != "" {
		result.Entities[intent.EntityTimeframe] = tf
	}
	return result
}

// Analyzer classifies messages with an external classifier and falls back to
// keyword matching on any classification error. No retries.
type Analyzer struct {
	classifier classifier.Classifier
	fallback   KeywordAnalyzer
	metrics    *cfotel.Metrics
}

// NewAnalyzer creates an Analyzer. A nil classifier means keyword-only.
func NewAnalyzer(c classifier.Classifier) *Analyzer {
	return &Analyzer{classifier: c}
}

// SetMetrics configures the OTEL instruments used to count classifications.
func (a *Analyzer) SetMetrics(m *cfotel.Metrics) {
	a.metrics = m
}

// Strategy returns the name of the primary strategy.
func (a *Analyzer) Strategy() string {
	if a.classifier == nil {
		return StrategyKeyword
	}
	return a.classifier.Name()
}

// Analyze classifies message. It never fails: unclassifiable input resolves
// to general_query.
func (a *Analyzer) Analyze(ctx context.Context, message string) intent.Intent {
	i, _ := a.AnalyzeWithStrategy(ctx, message)
	return i
}

// AnalyzeWithStrategy is Analyze that also reports which strategy produced
// the intent.
func (a *Analyzer) AnalyzeWithStrategy(ctx context.Context, message string) (intent.Intent, string) {
	if a.classifier == nil {
		i := a.fallback.Analyze(message)
		a.metrics.RecordIntent(ctx, string(i.PrimaryIntent), StrategyKeyword)
		return i, StrategyKeyword
	}

	ctx, span := cfotel.StartAnalyzeSpan(ctx, a.classifier.Name())
	defer span.End()

	i, err := a.classifier.Classify(ctx, classificationPrompt, message)
	if err != nil {
		kind := errorKind(err)
		slog.WarnContext(ctx, "intent classification failed, using keyword fallback",
			"classifier", a.classifier.Name(), "kind", kind, "error", err)
		a.metrics.RecordFallback(ctx, string(kind))

		i = a.fallback.Analyze(message)
		a.metrics.RecordIntent(ctx, string(i.PrimaryIntent), StrategyKeyword)
		return i, StrategyKeyword
	}

	i = enrichEntities(i.Normalize(), message)
	a.metrics.RecordIntent(ctx, string(i.PrimaryIntent), a.classifier.Name())
	return i, a.classifier.Name()
}

func errorKind(err error) classifier.Kind {
	if ce, ok := classifier.AsError(err); ok {
		return ce.Kind
	}
	return classifier.KindUnavailable
}

// enrichEntities fills contentType and adPlatform from the message when the
// classifier left them out.
func enrichEntities(i intent.Intent, message string) intent.Intent {
	switch i.PrimaryIntent {
	case intent.ContentCreation:
		if i.Entity(intent.EntityContentType) == "" {
			i.Entities[intent.EntityContentType] = DetectContentType(message)
		}
	case intent.Advertising:
		if i.Entity(intent.EntityAdPlatform) == "" {
			i.Entities[intent.EntityAdPlatform] = DetectAdPlatform(message)
		}
	}
	return i
}

// describeIntent is used in log lines.
func describeIntent(i intent.Intent) string {
	if i.HasSecondary() {
		return fmt.Sprintf("%s+%s@%.2f", i.PrimaryIntent, i.SecondaryIntent, i.Confidence)
	}
	return fmt.Sprintf("%s@%.2f", i.PrimaryIntent, i.Confidence)
}
