package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/planboard/internal/rpc"
)

// Advisor answers planning questions. *advisor.Advisor implements it.
type Advisor interface {
	Advice(ctx context.Context, query, contextData string) string
	AnalyzeIdea(ctx context.Context, idea string) string
}

var (
	errEmptyQuery = errors.New("query is required")
	errEmptyIdea  = errors.New("idea is required")
)

// AdvisorService implements the Connect AdvisorService. Provider failures are
// returned as text, so only invalid input produces an RPC error.
type AdvisorService struct {
	advisor Advisor
}

// NewAdvisorService creates a new AdvisorService.
func NewAdvisorService(a Advisor) *AdvisorService {
	return &AdvisorService{advisor: a}
}

// Advice answers a free-text question.
func (s *AdvisorService) Advice(ctx context.Context, req *connect.Request[rpc.AdviceRequest]) (*connect.Response[rpc.AdviceResponse], error) {
	query := strings.TrimSpace(req.Msg.Query)
	if query == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errEmptyQuery)
	}
	slog.Info("Advice request received", "query_len", len(query))

	text := s.advisor.Advice(ctx, query, req.Msg.Context)
	return connect.NewResponse(&rpc.AdviceResponse{Text: text}), nil
}

// AnalyzeIdea evaluates an inspiration idea.
func (s *AdvisorService) AnalyzeIdea(ctx context.Context, req *connect.Request[rpc.AnalyzeIdeaRequest]) (*connect.Response[rpc.AdviceResponse], error) {
	idea := strings.TrimSpace(req.Msg.Idea)
	if idea == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errEmptyIdea)
	}
	slog.Info("AnalyzeIdea request received", "idea_len", len(idea))

	text := s.advisor.AnalyzeIdea(ctx, idea)
	return connect.NewResponse(&rpc.AdviceResponse{Text: text}), nil
}
