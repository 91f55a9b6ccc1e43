package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/coder/websocket"

	"github.com/mmynk/planboard/internal/models"
	"github.com/mmynk/planboard/internal/rpc"
)

// maxFrameSize bounds one websocket frame. Documents with a few hundred
// guests and vendors stay well below it.
const maxFrameSize = 8 << 20

// Config holds client configuration.
type Config struct {
	// BaseURL of the document server (e.g., http://localhost:8080).
	BaseURL string

	// Path is the document key (default: models.DefaultDocumentPath).
	Path string

	// Token is the session token sent as a bearer credential. Optional.
	Token string

	// RedialDelay is the pause between reconnection attempts (default: 2s).
	RedialDelay time.Duration

	// HTTPClient is used for RPCs and the websocket handshake.
	HTTPClient *http.Client
}

// Client is a Remote backed by the document server: snapshots arrive over the
// hub websocket and writes go through DocumentService.Set.
type Client struct {
	cfg          Config
	docs         *rpc.DocumentClient
	snapshots    chan models.Snapshot
	connectivity chan bool
	logger       *slog.Logger
}

var _ Remote = (*Client)(nil)

// NewClient creates a Client. Call Run to start receiving snapshots.
func NewClient(cfg Config) *Client {
	if cfg.Path == "" {
		cfg.Path = models.DefaultDocumentPath
	}
	if cfg.RedialDelay <= 0 {
		cfg.RedialDelay = 2 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}

	var opts []connect.ClientOption
	if cfg.Token != "" {
		opts = append(opts, connect.WithInterceptors(BearerToken(cfg.Token)))
	}

	return &Client{
		cfg:          cfg,
		docs:         rpc.NewDocumentClient(cfg.HTTPClient, cfg.BaseURL, opts...),
		snapshots:    make(chan models.Snapshot, 16),
		connectivity: make(chan bool, 1),
		logger:       slog.Default().With("component", "remote", "path", cfg.Path),
	}
}

// BearerToken returns an interceptor that attaches token to every request.
func BearerToken(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Bearer "+token)
			return next(ctx, req)
		}
	}
}

func (c *Client) Snapshots() <-chan models.Snapshot { return c.snapshots }

func (c *Client) Connectivity() <-chan bool { return c.connectivity }

// Set overwrites the document through DocumentService.Set.
func (c *Client) Set(ctx context.Context, doc models.Document, writer string) (int64, error) {
	resp, err := c.docs.Set.CallUnary(ctx, connect.NewRequest(&rpc.SetDocumentRequest{
		Path:     c.cfg.Path,
		Document: doc,
		Writer:   writer,
	}))
	if err != nil {
		return 0, fmt.Errorf("failed to write document: %w", err)
	}
	return resp.Msg.Revision, nil
}

// Run keeps a websocket subscription open until ctx is done, redialing after
// every failure. Both channels are closed when Run returns.
func (c *Client) Run(ctx context.Context) error {
	defer close(c.snapshots)
	defer close(c.connectivity)

	wsURL, err := c.subscribeURL()
	if err != nil {
		return err
	}

	for {
		err := c.session(ctx, wsURL)
		c.setConnected(false)
		if ctx.Err() != nil {
			return nil
		}
		c.logger.Warn("Subscription lost", "error", err, "retry_in", c.cfg.RedialDelay)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.cfg.RedialDelay):
		}
	}
}

func (c *Client) session(ctx context.Context, wsURL string) error {
	opts := &websocket.DialOptions{HTTPClient: c.cfg.HTTPClient}
	if c.cfg.Token != "" {
		opts.HTTPHeader = http.Header{"Authorization": []string{"Bearer " + c.cfg.Token}}
	}

	conn, _, err := websocket.Dial(ctx, wsURL, opts)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", wsURL, err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(maxFrameSize)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("failed to read frame: %w", err)
		}

		var frame rpc.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.logger.Warn("Ignoring malformed frame", "error", err)
			continue
		}

		switch frame.Type {
		case rpc.FrameHello:
			c.logger.Info("Subscribed", "revision", frame.Revision)
			c.setConnected(true)
		case rpc.FrameSnapshot:
			snap, err := frame.Snapshot()
			if err != nil {
				c.logger.Warn("Ignoring undecodable snapshot", "revision", frame.Revision, "error", err)
				continue
			}
			select {
			case c.snapshots <- snap:
			case <-ctx.Done():
				return ctx.Err()
			}
		default:
			c.logger.Debug("Ignoring frame", "type", frame.Type)
		}
	}
}

// setConnected publishes up, replacing any unread value.
func (c *Client) setConnected(up bool) {
	select {
	case <-c.connectivity:
	default:
	}
	c.connectivity <- up
}

func (c *Client) subscribeURL() (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"path": []string{c.cfg.Path}}.Encode()
	return u.String(), nil
}
