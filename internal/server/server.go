package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ironsheep/pixel-ledger/internal/canvas"
	"github.com/ironsheep/pixel-ledger/internal/config"
	"github.com/ironsheep/pixel-ledger/internal/imaging"
	"github.com/ironsheep/pixel-ledger/internal/journal"
	"github.com/ironsheep/pixel-ledger/internal/ledger"
)

// Name is the implementation name reported to MCP clients.
const Name = "pixel-ledger"

// ErrJournal wraps failures to persist a command that was already applied.
var ErrJournal = errors.New("command applied but not journaled")

// Options configures a Server. Zero values are usable.
type Options struct {
	// Version is reported to clients during initialization.
	Version string
	Logger  *slog.Logger
	// Journal receives every command that changes the canvas. Nil keeps
	// history in memory only.
	Journal *journal.Writer
	Render  config.RenderConfig
}

// Server exposes one versioned canvas as MCP tools. Tool calls are
// serialised; the canvas itself is single-writer.
type Server struct {
	mu      sync.Mutex
	canvas  *ledger.VersionedImage
	journal *journal.Writer
	cache   *imaging.ImageCache
	render  config.RenderConfig
	logger  *slog.Logger
	mcp     *mcp.Server
}

// New wraps v in an MCP server with every canvas tool registered.
func New(v *ledger.VersionedImage, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	defaults := config.Defaults().Render
	if opts.Render.Scale <= 0 {
		opts.Render.Scale = defaults.Scale
	}
	if opts.Render.MaxDimension <= 0 {
		opts.Render.MaxDimension = defaults.MaxDimension
	}

	s := &Server{
		canvas:  v,
		journal: opts.Journal,
		cache:   imaging.NewImageCache(),
		render:  opts.Render,
		logger:  opts.Logger,
	}
	s.mcp = mcp.NewServer(
		&mcp.Implementation{Name: Name, Version: opts.Version},
		&mcp.ServerOptions{Instructions: instructions},
	)
	for _, tool := range ToolDefinitions() {
		s.mcp.AddTool(tool, s.callTool)
	}
	return s
}

const instructions = "pixel-ledger holds one sparse RGBA canvas with a full edit history. " +
	"Every edit is a command; commands that change nothing do not advance the version. " +
	"Use canvas_render to look at the canvas and canvas_diff to see what changed since a version."

// MCP returns the underlying MCP server, for running it on other transports.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Run serves MCP over stdin/stdout until ctx is done or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio", "version", s.canvas.Version())
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// callTool is the single entry point for every tool. Tool failures are
// reported to the client as error results, not protocol errors.
func (s *Server) callTool(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.Params.Name

	s.mu.Lock()
	result, err := s.executeTool(ctx, name, req.Params.Arguments)
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("tool failed", "tool", name, "error", err)
		var res mcp.CallToolResult
		res.SetError(err)
		return &res, nil
	}
	s.logger.Debug("tool called", "tool", name)

	if img, ok := result.(*imageResult); ok {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.ImageContent{Data: img.png, MIMEType: "image/png"},
				&mcp.TextContent{Text: mustMarshalJSON(img.info)},
			},
		}, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: mustMarshalJSON(result)}},
	}, nil
}

// apply runs cmd through the ledger and journals it when it changed the
// canvas.
func (s *Server) apply(cmd canvas.Command) (bool, error) {
	if !s.canvas.Apply(cmd) {
		return false, nil
	}
	if s.journal != nil {
		if err := s.journal.Append(cmd); err != nil {
			return true, fmt.Errorf("%w: %w", ErrJournal, err)
		}
	}
	return true, nil
}

// imageResult is returned by tools that produce a picture. info is sent
// alongside as JSON text.
type imageResult struct {
	png  []byte
	info any
}

// mustMarshalJSON converts a value to a pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
