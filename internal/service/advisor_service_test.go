package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/planboard/internal/advisor"
	"github.com/mmynk/planboard/internal/rpc"
)

type stubProvider struct {
	err error
}

func (stubProvider) Name() string { return "stub" }

func (p stubProvider) Generate(ctx context.Context, req advisor.Request) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return "answer: " + req.Prompt[:1], nil
}

func setupAdvisorTestServer(t *testing.T, p advisor.Provider) *rpc.AdvisorClient {
	t.Helper()

	a := advisor.New(p, advisor.Options{EventDate: time.Date(2026, time.October, 10, 0, 0, 0, 0, time.UTC)})

	mux := http.NewServeMux()
	mux.Handle(rpc.NewAdvisorServiceHandler(NewAdvisorService(a)))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return rpc.NewAdvisorClient(http.DefaultClient, server.URL)
}

func TestAdvice(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		client := setupAdvisorTestServer(t, nil)
		resp, err := client.Advice.CallUnary(context.Background(), connect.NewRequest(&rpc.AdviceRequest{Query: "Venue?"}))
		if err != nil {
			t.Fatalf("Advice failed: %v", err)
		}
		if resp.Msg.Text != advisor.AdviceDisabledText {
			t.Errorf("expected disabled text, got %q", resp.Msg.Text)
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		client := setupAdvisorTestServer(t, stubProvider{err: advisor.ErrRateLimited})
		resp, err := client.Advice.CallUnary(context.Background(), connect.NewRequest(&rpc.AdviceRequest{Query: "Venue?"}))
		if err != nil {
			t.Fatalf("Advice failed: %v", err)
		}
		if resp.Msg.Text != advisor.AdviceLimitText {
			t.Errorf("expected limit text, got %q", resp.Msg.Text)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		client := setupAdvisorTestServer(t, stubProvider{err: errors.New("connection refused")})
		resp, err := client.AnalyzeIdea.CallUnary(context.Background(), connect.NewRequest(&rpc.AnalyzeIdeaRequest{Idea: "Lanterns"}))
		if err != nil {
			t.Fatalf("AnalyzeIdea failed: %v", err)
		}
		if resp.Msg.Text != advisor.AnalysisFailedText {
			t.Errorf("expected failure text, got %q", resp.Msg.Text)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		client := setupAdvisorTestServer(t, stubProvider{})
		_, err := client.Advice.CallUnary(context.Background(), connect.NewRequest(&rpc.AdviceRequest{Query: "  "}))
		if connect.CodeOf(err) != connect.CodeInvalidArgument {
			t.Errorf("expected InvalidArgument, got %v", err)
		}
		_, err = client.AnalyzeIdea.CallUnary(context.Background(), connect.NewRequest(&rpc.AnalyzeIdeaRequest{}))
		if connect.CodeOf(err) != connect.CodeInvalidArgument {
			t.Errorf("expected InvalidArgument, got %v", err)
		}
	})

	t.Run("answer", func(t *testing.T) {
		client := setupAdvisorTestServer(t, stubProvider{})
		resp, err := client.Advice.CallUnary(context.Background(), connect.NewRequest(&rpc.AdviceRequest{Query: "Venue?"}))
		if err != nil {
			t.Fatalf("Advice failed: %v", err)
		}
		if resp.Msg.Text != "answer: C" {
			t.Errorf("unexpected text %q", resp.Msg.Text)
		}
	})
}
