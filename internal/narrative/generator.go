package narrative

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/your-org/sentinel/internal/config"
	"github.com/your-org/sentinel/internal/forecast"
)

// Fallback texts returned whenever the language model is unavailable or
// misbehaves. The surrounding response still carries the structured data,
// so callers degrade to these strings rather than failing the request.
const (
	FallbackSummary        = "Activity summary unavailable."
	FallbackExplanation    = "Prediction explanation unavailable."
	FallbackRecommendation = "No recommendation available."
)

// Generator turns structured timeline and prediction data into short
// human-readable narratives via an OpenAI-compatible chat endpoint.
// A zero-configured generator is valid and always answers with fallbacks.
type Generator struct {
	llm     llms.Model
	timeout time.Duration
}

func NewGenerator(cfg config.NarrativeConfig) (*Generator, error) {
	g := &Generator{timeout: cfg.Timeout}
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		slog.Warn("narrative generator disabled, no endpoint configured")
		return g, nil
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("create narrative client: %w", err)
	}
	g.llm = llm
	return g, nil
}

func (g *Generator) Enabled() bool {
	return g.llm != nil
}

func (g *Generator) generate(ctx context.Context, fallback, prompt string) string {
	if g.llm == nil {
		return fallback
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	out, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt)
	if err != nil {
		slog.Warn("narrative generation failed", "error", err)
		return fallback
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return fallback
	}
	return out
}

// Summarize produces a short plain-language digest of an entity's day from
// the already-reconciled timeline text and any counselor notes.
func (g *Generator) Summarize(ctx context.Context, name, timelineText string, notes []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the following campus activity timeline for %s in 2-3 plain sentences. ", name)
	b.WriteString("Mention the main locations and any long gaps. Do not speculate beyond the data.\n\n")
	b.WriteString("Timeline: ")
	b.WriteString(timelineText)
	if len(notes) > 0 {
		b.WriteString("\n\nStaff notes:\n")
		for _, n := range notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return g.generate(ctx, FallbackSummary, b.String())
}

// ExplainPrediction phrases a next-location prediction with its evidence.
func (g *Generator) ExplainPrediction(ctx context.Context, name string, p forecast.LocationPrediction) string {
	if p.NoData {
		return "No location history is available for this person, so no prediction can be made."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "In one or two sentences, explain to campus security why %s is predicted to be at %s around %s. ",
		name, p.Location, p.TargetTime.Format("15:04"))
	fmt.Fprintf(&b, "The prediction comes from %d historical sightings", len(p.History))
	if !p.Trained {
		b.WriteString(", all at a single location")
	}
	b.WriteString(". Base the explanation only on habitual patterns in the history.")
	return g.generate(ctx, FallbackExplanation, b.String())
}

// RecommendAlerts produces one actionable recommendation for a category
// of alerts, given how many fired and a sample of their messages.
func (g *Generator) RecommendAlerts(ctx context.Context, category string, count int, samples []string) string {
	var b strings.Builder
	b.WriteString("You are a campus safety expert. Analyze these alerts and provide ONE specific, actionable recommendation.\n\n")
	fmt.Fprintf(&b, "Alert type: %s\nTotal alerts: %d\n", category, count)
	if len(samples) > 0 {
		b.WriteString("\nDetails:\n")
		for _, s := range samples {
			b.WriteString("- ")
			b.WriteString(s)
			b.WriteString("\n")
		}
	}
	b.WriteString("\nAnswer with one clear, actionable recommendation only.")
	return g.generate(ctx, FallbackRecommendation, b.String())
}

// ExplainOccupancy phrases an occupancy forecast against the location's
// historical averages.
func (g *Generator) ExplainOccupancy(ctx context.Context, fc *forecast.OccupancyForecast, an *forecast.OccupancyAnalysis) string {
	if an == nil {
		return "No occupancy history is available for this location."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "In one or two sentences, explain a crowd forecast of %d people at %s during the %s (hour %d). ",
		fc.Predicted, fc.Location, an.Period, an.TargetHour)
	fmt.Fprintf(&b, "Historical averages: %.1f overall, %.1f at this hour, %.1f on this weekday. ",
		an.AvgCount, an.SameHourAvg, an.SameDOWAvg)
	fmt.Fprintf(&b, "The location is classified as %s.", fc.Status)
	return g.generate(ctx, FallbackExplanation, b.String())
}
