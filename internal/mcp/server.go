package mcp

import (
	"context"
	"io"
	"log/slog"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskctl/internal/desktop"
	"github.com/1broseidon/deskctl/internal/oem"
)

const (
	ServerName    = "deskctl"
	ServerVersion = "0.1.0"
)

// Server exposes a desktop controller as MCP tools.
type Server struct {
	mcpServer *mcpsdk.Server
	ctrl      *desktop.Controller
	codec     *oem.Codec
	logger    *slog.Logger

	// mu keeps tool calls from overlapping on the session; the SDK may
	// dispatch requests concurrently.
	mu sync.Mutex
}

// NewServer wraps ctrl. A nil codec means oem.Default.
func NewServer(ctrl *desktop.Controller, codec *oem.Codec, logger *slog.Logger) *Server {
	if codec == nil {
		codec = oem.Default
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		ctrl:   ctrl,
		codec:  codec,
		logger: logger,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_icons",
		Description: "List desktop icons in the desktop's own order with their positions. Each call enumerates the live desktop, so the result reflects moves made by anyone.",
	}, s.handleListIcons)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "desktop_info",
		Description: "Report the desktop resolution, icon grid spacing, folder flags (snap to grid, auto arrange), cursor position and the desktop directory.",
	}, s.handleDesktopInfo)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_icon",
		Description: "Move one icon, found by display name, to a pixel position. When snap to grid is on the position is rounded to the nearest grid cell; the position actually sent is returned.",
	}, s.handleMoveIcon)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_icons",
		Description: "Move several icons in one batch. Nothing moves if a name is unknown or a position is off the desktop. Icons the desktop refuses are listed in failed; the rest still move.",
	}, s.handleMoveIcons)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_folder_flags",
		Description: "Turn snap to grid and auto arrange on or off. Both flags are applied in a single update; omitted flags are left unchanged.",
	}, s.handleSetFolderFlags)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "arrange_icons",
		Description: "Place every icon on the spacing grid, filling columns top to bottom, or rows of the given number of columns.",
	}, s.handleArrangeIcons)
}
