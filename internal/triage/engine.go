// Package triage implements the rule-based bilingual symptom checker.
package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sehatnabha/telecare/pkg/logging"
)

var triageTracer = otel.Tracer("telecare.internal.triage")

// ErrInvalidInput indicates the caller supplied no usable symptoms.
var ErrInvalidInput = errors.New("triage: symptoms required")

// Language selects which rule table and localized strings are used.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguagePunjabi Language = "pa"
)

// ParseLanguage maps a request-supplied language code to a supported
// Language, defaulting to English for anything unrecognized.
func ParseLanguage(code string) Language {
	if strings.TrimSpace(strings.ToLower(code)) == string(LanguagePunjabi) {
		return LanguagePunjabi
	}
	return LanguageEnglish
}

// Urgency is the ordinal severity tag attached to rules and results.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

func (u Urgency) rank() int {
	switch u {
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 1
	default:
		return 0
	}
}

// Match is one per-symptom response: the matched rule plus the symptom key
// it resolved to (the table key, or the normalized input for fallbacks).
type Match struct {
	Symptom             string  `json:"symptom"`
	Message             string  `json:"message"`
	Advice              string  `json:"advice"`
	Urgency             Urgency `json:"urgency"`
	ShouldConsultDoctor bool    `json:"shouldConsultDoctor"`
}

// Result is the full symptom analysis returned to the caller. It is built
// in one pass and never mutated afterwards.
type Result struct {
	Language            Language `json:"language"`
	Symptoms            []string `json:"symptoms"`
	Responses           []Match  `json:"responses"`
	OverallUrgency      Urgency  `json:"overallUrgency"`
	ShouldConsultDoctor bool     `json:"shouldConsultDoctor"`
	Recommendations     []string `json:"recommendations"`
	Disclaimer          string   `json:"disclaimer"`
}

// Engine evaluates symptom lists against the static rule tables.
type Engine struct {
	logger *logging.Logger
}

// NewEngine creates a triage engine.
func NewEngine(logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{logger: logger}
}

// Analyze maps each reported symptom to a rule, aggregates urgency, and
// appends localized recommendations and a disclaimer. It has no side
// effects beyond tracing and returns ErrInvalidInput for empty input.
func (e *Engine) Analyze(ctx context.Context, symptoms []string, lang Language) (*Result, error) {
	_, span := triageTracer.Start(ctx, "triage.analyze")
	defer span.End()

	if len(symptoms) == 0 {
		span.RecordError(ErrInvalidInput)
		return nil, ErrInvalidInput
	}
	for _, s := range symptoms {
		if strings.TrimSpace(s) == "" {
			err := fmt.Errorf("%w: blank symptom entry", ErrInvalidInput)
			span.RecordError(err)
			return nil, err
		}
	}

	result := &Result{
		Language:       lang,
		Symptoms:       symptoms,
		Responses:      make([]Match, 0, len(symptoms)),
		OverallUrgency: UrgencyLow,
	}

	table := rulesFor(lang)
	for _, raw := range symptoms {
		normalized := strings.ToLower(strings.TrimSpace(raw))
		match := matchSymptom(table, normalized, lang)
		result.Responses = append(result.Responses, match)

		if match.Urgency.rank() > result.OverallUrgency.rank() {
			result.OverallUrgency = match.Urgency
		}
		if match.ShouldConsultDoctor {
			result.ShouldConsultDoctor = true
		}
	}

	if result.OverallUrgency == UrgencyHigh {
		result.Recommendations = append(result.Recommendations, recommendationUrgent[lang])
	} else if result.ShouldConsultDoctor {
		result.Recommendations = append(result.Recommendations, recommendationConsult[lang])
	}
	result.Recommendations = append(result.Recommendations, recommendationGeneral[lang])
	result.Disclaimer = disclaimers[lang]

	span.SetAttributes(
		attribute.String("triage.language", string(lang)),
		attribute.Int("triage.symptom_count", len(symptoms)),
		attribute.String("triage.overall_urgency", string(result.OverallUrgency)),
		attribute.Bool("triage.consult_doctor", result.ShouldConsultDoctor),
	)

	return result, nil
}

// matchSymptom scans the table in declared order and returns the first rule
// whose key contains the input or is contained by it. The bidirectional
// substring check tolerates partial phrasing ("bad headache" matches
// "headache"); the fixed iteration order makes ambiguous inputs
// deterministic.
func matchSymptom(table []ruleEntry, normalized string, lang Language) Match {
	for _, entry := range table {
		if strings.Contains(normalized, entry.Key) || strings.Contains(entry.Key, normalized) {
			return Match{
				Symptom:             entry.Key,
				Message:             entry.Rule.Message,
				Advice:              entry.Rule.Advice,
				Urgency:             entry.Rule.Urgency,
				ShouldConsultDoctor: entry.Rule.ShouldConsultDoctor,
			}
		}
	}
	fb := fallbackRule(lang)
	return Match{
		Symptom:             normalized,
		Message:             fb.Message,
		Advice:              fb.Advice,
		Urgency:             fb.Urgency,
		ShouldConsultDoctor: fb.ShouldConsultDoctor,
	}
}
