package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/planboard/internal/auth"
	"github.com/mmynk/planboard/internal/rpc"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	gate       *auth.PasswordGate
	jwtManager *auth.JWTManager
	logger     *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(gate *auth.PasswordGate, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		gate:       gate,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// Login checks the shared password and returns a session token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[rpc.LoginRequest]) (*connect.Response[rpc.LoginResponse], error) {
	peer := req.Peer().Addr
	s.logger.Info("Login request", "peer", peer)

	if err := s.gate.Check(req.Msg.Password); err != nil {
		s.logger.Warn("Login failed", "peer", peer)
		if errors.Is(err, auth.ErrInvalidPassword) {
			return nil, connect.NewError(connect.CodeUnauthenticated, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	subject := req.Header().Get("User-Agent")
	if subject == "" {
		subject = peer
	}

	token, expiresAt, err := s.jwtManager.Generate(subject)
	if err != nil {
		s.logger.Error("Failed to generate token", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User logged in successfully", "subject", subject)
	return connect.NewResponse(&rpc.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	}), nil
}
