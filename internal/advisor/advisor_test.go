package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	text string
	err  error
	reqs []Request
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(ctx context.Context, req Request) (string, error) {
	f.reqs = append(f.reqs, req)
	return f.text, f.err
}

var (
	eventDate = time.Date(2026, time.October, 10, 0, 0, 0, 0, time.UTC)
	today     = time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC)
)

func newTestAdvisor(p Provider) *Advisor {
	return New(p, Options{
		EventDate: eventDate,
		Now:       func() time.Time { return today },
	})
}

func TestAdviceDisabled(t *testing.T) {
	a := newTestAdvisor(nil)
	assert.False(t, a.Enabled())
	assert.Equal(t, AdviceDisabledText, a.Advice(context.Background(), "hi", ""))
	assert.Equal(t, AnalysisDisabledText, a.AnalyzeIdea(context.Background(), "lanterns"))
}

func TestAdvice(t *testing.T) {
	p := &fakeProvider{text: "Book the venue early."}
	a := newTestAdvisor(p)

	got := a.Advice(context.Background(), "What first?", "")
	assert.Equal(t, "Book the venue early.", got)

	require.Len(t, p.reqs, 1)
	req := p.reqs[0]
	assert.Equal(t, float32(0.7), req.Temperature)
	assert.Equal(t, float32(0.8), req.TopP)
	assert.Contains(t, req.Prompt, "General planning stage")
	assert.Contains(t, req.Prompt, "What first?")
	assert.Contains(t, req.System, "October 10, 2026")
	assert.Contains(t, req.System, "April 10, 2026")
	assert.Contains(t, req.System, "approximately 6 months")
	assert.Contains(t, req.System, "Bodrum, Turkey")
}

func TestAdviceFailures(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
		want string
	}{
		{"rate limited", "", fmt.Errorf("%w: quota", ErrRateLimited), AdviceLimitText},
		{"other error", "", errors.New("dial tcp: refused"), AdviceFailedText},
		{"empty", "  \n", nil, AdviceEmptyText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdvisor(&fakeProvider{text: tt.text, err: tt.err})
			assert.Equal(t, tt.want, a.Advice(context.Background(), "q", "ctx"))
		})
	}
}

func TestAnalyzeIdea(t *testing.T) {
	p := &fakeProvider{text: "1. Florist"}
	a := newTestAdvisor(p)

	assert.Equal(t, "1. Florist", a.AnalyzeIdea(context.Background(), "Floating lanterns"))
	require.Len(t, p.reqs, 1)
	assert.Equal(t, float32(0.4), p.reqs[0].Temperature)
	assert.Contains(t, p.reqs[0].Prompt, `"Floating lanterns"`)
	assert.Contains(t, p.reqs[0].Prompt, "Bodrum wedding on Oct 10, 2026")
	assert.Contains(t, p.reqs[0].Prompt, "3 points")
}

func TestAnalyzeIdeaFailures(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
		want string
	}{
		{"rate limited", "", ErrRateLimited, AnalysisLimitText},
		{"other error", "", errors.New("boom"), AnalysisFailedText},
		{"empty", "", nil, AnalysisEmptyText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdvisor(&fakeProvider{text: tt.text, err: tt.err})
			assert.Equal(t, tt.want, a.AnalyzeIdea(context.Background(), "idea"))
		})
	}
}

func TestMonthsUntil(t *testing.T) {
	tests := []struct {
		now  time.Time
		want string
	}{
		{today, "6"},
		{eventDate, "0"},
		{eventDate.AddDate(0, 0, 5), "0"},
		{eventDate.AddDate(0, 0, -45), "1.5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MonthsUntil(tt.now, eventDate), tt.now.String())
	}
}

func TestChat(t *testing.T) {
	p := &fakeProvider{text: "Consider sunset timing."}
	c := NewChat(newTestAdvisor(p), "")
	c.ContextFunc = func() string { return "3 vendors booked" }

	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, Message{Role: RoleAssistant, Text: Greeting}, msgs[0])

	_, err := c.Send(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	reply, err := c.Send(context.Background(), " When is sunset? ")
	require.NoError(t, err)
	assert.Equal(t, "Consider sunset timing.", reply.Text)
	assert.True(t, strings.Contains(p.reqs[0].Prompt, "3 vendors booked"))

	msgs = c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, Message{Role: RoleUser, Text: "When is sunset?"}, msgs[1])
	assert.Equal(t, RoleAssistant, msgs[2].Role)

	c.Reset()
	assert.Len(t, c.Messages(), 1)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), ProviderConfig{})
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = NewProvider(context.Background(), ProviderConfig{Provider: "anthropic", AnthropicAPIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())

	p, err = NewProvider(context.Background(), ProviderConfig{AnthropicAPIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())

	_, err = NewProvider(context.Background(), ProviderConfig{Provider: "openai"})
	assert.Error(t, err)
}
