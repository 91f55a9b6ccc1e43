// Package advisor answers planning questions with a hosted language model.
//
// Failures never surface as errors: callers always get text to show, and a
// rate limit reads differently from an unreachable service. There is no retry.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/mmynk/planboard/internal/metrics"
)

// ErrRateLimited is wrapped by providers when the service answers 429.
var ErrRateLimited = errors.New("rate limited")

// Texts shown in place of an answer.
const (
	AdviceDisabledText = "AI Service Disabled: API Key not found. Please ensure the key is loaded in the system."
	AdviceLimitText    = "Free tier usage limit reached (15 requests per minute). Please wait a minute and try again."
	AdviceFailedText   = "Sorry, I cannot connect right now. Please check if your API key is active."
	AdviceEmptyText    = "I couldn't generate advice at the moment, please try again."

	AnalysisDisabledText = "AI Service Not Ready."
	AnalysisLimitText    = "Analysis limit reached. Please wait a moment."
	AnalysisFailedText   = "Could not analyze idea."
	AnalysisEmptyText    = "Analysis cannot be performed for this idea at the moment."
)

// Request is one completion request.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	// TopP is ignored when zero.
	TopP float32
}

// Provider is a hosted model.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Options describe the event the advisor plans for.
type Options struct {
	EventDate time.Time
	Location  string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Advisor turns planning questions into provider requests.
type Advisor struct {
	provider Provider
	opts     Options
}

// New creates an Advisor. A nil provider yields the disabled texts.
func New(p Provider, opts Options) *Advisor {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == "" {
		opts.Location = "Bodrum, Turkey"
	}
	return &Advisor{provider: p, opts: opts}
}

// Enabled reports whether a provider is configured.
func (a *Advisor) Enabled() bool {
	return a.provider != nil
}

// Advice answers a free-text question. contextData describes where the
// planning stands; empty means the general planning stage.
func (a *Advisor) Advice(ctx context.Context, query, contextData string) string {
	if a.provider == nil {
		return AdviceDisabledText
	}
	if contextData == "" {
		contextData = "General planning stage"
	}

	text, err := a.provider.Generate(ctx, Request{
		System:      a.adviceSystem(),
		Prompt:      fmt.Sprintf("Current Context: %s. \n\n User Question: %s", contextData, query),
		Temperature: 0.7,
		TopP:        0.8,
	})
	return a.result("advice", text, err, AdviceLimitText, AdviceFailedText, AdviceEmptyText)
}

// AnalyzeIdea evaluates an inspiration idea in three short points.
func (a *Advisor) AnalyzeIdea(ctx context.Context, idea string) string {
	if a.provider == nil {
		return AnalysisDisabledText
	}

	prompt := fmt.Sprintf(`
Analyze the following wedding idea and evaluate it for a %s wedding on %s (Today's date: %s): %q.
Limit your response to these 3 points in English:
1. Recommended vendor type.
2. A specific challenge for %s (Logistics or Weather).
3. A budget-friendly tip.
`, a.shortLocation(), a.opts.EventDate.Format("Jan 2, 2006"), a.opts.Now().Format("Jan 2, 2006"), idea, a.shortLocation())

	text, err := a.provider.Generate(ctx, Request{
		System:      "You are an analysis expert. Your responses must be in English and professional.",
		Prompt:      prompt,
		Temperature: 0.4,
	})
	return a.result("analysis", text, err, AnalysisLimitText, AnalysisFailedText, AnalysisEmptyText)
}

func (a *Advisor) result(kind, text string, err error, limitText, failedText, emptyText string) string {
	provider := a.provider.Name()
	switch {
	case errors.Is(err, ErrRateLimited):
		metrics.AdvisorRequests.WithLabelValues(provider, "rate_limited").Inc()
		slog.Warn("Advisor rate limited", "kind", kind, "provider", provider)
		return limitText
	case err != nil:
		metrics.AdvisorRequests.WithLabelValues(provider, "error").Inc()
		slog.Error("Advisor request failed", "kind", kind, "provider", provider, "error", err)
		return failedText
	case strings.TrimSpace(text) == "":
		metrics.AdvisorRequests.WithLabelValues(provider, "empty").Inc()
		return emptyText
	}
	metrics.AdvisorRequests.WithLabelValues(provider, "ok").Inc()
	return text
}

func (a *Advisor) adviceSystem() string {
	now := a.opts.Now()
	return fmt.Sprintf(`You are a world-class wedding planning expert specializing in luxury weddings in %s.
Wedding Date: %s.
Character: Proactive, polite, knowledgeable about Turkish traditions and %s's geography (weather, venues, logistics).
Responses: Short, clear, actionable, and friendly.
Language: ALWAYS respond in English.
Important: If budget or cost is asked, remind them that %s is a premium location but always provide budget-friendly tips.
Current Date: %s. Provide planning advice based on this date (e.g., "There are approximately %s months until the wedding").`,
		a.opts.Location,
		a.opts.EventDate.Format("January 2, 2006"),
		a.shortLocation(),
		a.shortLocation(),
		now.Format("January 2, 2006"),
		MonthsUntil(now, a.opts.EventDate),
	)
}

func (a *Advisor) shortLocation() string {
	loc, _, _ := strings.Cut(a.opts.Location, ",")
	return loc
}

// MonthsUntil formats the time left as months rounded to the nearest half.
func MonthsUntil(now, event time.Time) string {
	days := event.Sub(now).Hours() / 24
	if days < 0 {
		days = 0
	}
	months := math.Round(days/30.44*2) / 2
	if months == math.Trunc(months) {
		return fmt.Sprintf("%.0f", months)
	}
	return fmt.Sprintf("%.1f", months)
}
