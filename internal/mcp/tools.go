package mcp

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskctl/internal/desktop"
	"github.com/1broseidon/deskctl/internal/platform"
)

// toolError prefixes err with its engine code so clients can branch on it.
func toolError(tool string, err error) error {
	return fmt.Errorf("%s: %s: %w", tool, desktop.CodeOf(err), err)
}

func (s *Server) handleListIcons(_ context.Context, _ *mcpsdk.CallToolRequest, args ListIconsInput) (*mcpsdk.CallToolResult, ListIconsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	icons, err := s.ctrl.Refresh()
	if err != nil {
		return nil, ListIconsOutput{}, toolError("list_icons", err)
	}

	out := ListIconsOutput{
		Generation: s.ctrl.Session().Registry().Current(),
		Icons:      make([]IconInfo, 0, len(icons)),
	}
	if args.OEM {
		out.CodePage = s.codec.Name()
	}
	for _, icon := range icons {
		info := IconInfo{Index: icon.Index, Name: icon.Name, Position: icon.Position}
		if args.OEM {
			info.OEMHex = hex.EncodeToString(s.codec.Encode(icon.Name))
		}
		out.Icons = append(out.Icons, info)
	}
	s.logger.Debug("mcp: list_icons", "icons", len(out.Icons), "generation", out.Generation)
	return nil, out, nil
}

func (s *Server) handleDesktopInfo(_ context.Context, _ *mcpsdk.CallToolRequest, _ DesktopInfoInput) (*mcpsdk.CallToolResult, DesktopInfoOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		out DesktopInfoOutput
		err error
	)
	if out.Resolution, err = s.ctrl.DesktopResolution(); err != nil {
		return nil, DesktopInfoOutput{}, toolError("desktop_info", err)
	}
	if out.Spacing, err = s.ctrl.IconSpacing(); err != nil {
		return nil, DesktopInfoOutput{}, toolError("desktop_info", err)
	}
	if out.Flags, err = s.ctrl.FolderFlags(); err != nil {
		return nil, DesktopInfoOutput{}, toolError("desktop_info", err)
	}
	if out.Cursor, err = s.ctrl.CursorPosition(); err != nil {
		return nil, DesktopInfoOutput{}, toolError("desktop_info", err)
	}
	// Not every desktop is backed by a directory.
	if dir, err := s.ctrl.DesktopDirectory(); err == nil {
		out.Directory = dir
	} else {
		s.logger.Debug("mcp: desktop directory unavailable", "error", err)
	}
	return nil, out, nil
}

func (s *Server) handleMoveIcon(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveIconInput) (*mcpsdk.CallToolResult, MoveIconOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handles, err := s.ctrl.Resolve([]string{args.Name})
	if err != nil {
		return nil, MoveIconOutput{}, toolError("move_icon", err)
	}
	target := platform.Point{X: args.X, Y: args.Y}
	res, err := s.ctrl.RepositionIcons(handles, []platform.Point{target})
	if err != nil {
		return nil, MoveIconOutput{}, toolError("move_icon", err)
	}

	applied := res.Applied[0]
	result := &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf("Moved %q to %s", args.Name, applied)},
		},
	}
	return result, MoveIconOutput{
		Name:     args.Name,
		Position: applied,
		Snapped:  applied != target,
	}, nil
}

func (s *Server) handleMoveIcons(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveIconsInput) (*mcpsdk.CallToolResult, BatchOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, len(args.Moves))
	points := make([]platform.Point, len(args.Moves))
	for i, m := range args.Moves {
		names[i] = m.Name
		points[i] = platform.Point{X: m.X, Y: m.Y}
	}

	handles, err := s.ctrl.Resolve(names)
	if err != nil {
		return nil, BatchOutput{}, toolError("move_icons", err)
	}
	res, err := s.ctrl.RepositionIcons(handles, points)
	return s.batchOutput("move_icons", res, err)
}

func (s *Server) handleSetFolderFlags(_ context.Context, _ *mcpsdk.CallToolRequest, args SetFolderFlagsInput) (*mcpsdk.CallToolResult, platform.FolderFlags, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flags, err := s.ctrl.FolderFlags()
	if err != nil {
		return nil, platform.FolderFlags{}, toolError("set_folder_flags", err)
	}
	if args.SnapToGrid != nil {
		flags.SnapToGrid = *args.SnapToGrid
	}
	if args.AutoArrange != nil {
		flags.AutoArrange = *args.AutoArrange
	}
	if err := s.ctrl.SetFolderFlags(flags); err != nil {
		return nil, platform.FolderFlags{}, toolError("set_folder_flags", err)
	}
	return nil, flags, nil
}

func (s *Server) handleArrangeIcons(_ context.Context, _ *mcpsdk.CallToolRequest, args ArrangeIconsInput) (*mcpsdk.CallToolResult, BatchOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if args.Columns < 0 {
		return nil, BatchOutput{}, fmt.Errorf("arrange_icons: columns must be >= 0")
	}
	res, err := s.ctrl.Arrange(args.Columns)
	return s.batchOutput("arrange_icons", res, err)
}

// batchOutput turns a batch result into tool output. A partial failure is
// reported in Failed rather than as a tool error.
func (s *Server) batchOutput(tool string, res *desktop.BatchResult, err error) (*mcpsdk.CallToolResult, BatchOutput, error) {
	var batchErr *desktop.BatchError
	if err != nil && !errors.As(err, &batchErr) {
		return nil, BatchOutput{}, toolError(tool, err)
	}
	if res == nil {
		return nil, BatchOutput{}, fmt.Errorf("%s: no result", tool)
	}
	if len(res.Names) != len(res.Applied) {
		return nil, BatchOutput{}, fmt.Errorf("%s: %d names for %d placements", tool, len(res.Names), len(res.Applied))
	}

	out := BatchOutput{Applied: make([]Placement, 0, len(res.Applied))}
	failed := make(map[int]bool, len(res.Failed))
	for _, f := range res.Failed {
		if f.Index < 0 || f.Index >= len(res.Names) {
			return nil, BatchOutput{}, fmt.Errorf("%s: failed index %d out of range", tool, f.Index)
		}
		failed[f.Index] = true
		out.Failed = append(out.Failed, res.Names[f.Index])
	}
	for i, p := range res.Applied {
		if failed[i] {
			continue
		}
		out.Applied = append(out.Applied, Placement{Name: res.Names[i], Position: p})
	}
	if len(out.Failed) > 0 {
		s.logger.Warn("mcp: batch partially applied", "tool", tool, "failed", out.Failed)
	}
	return nil, out, nil
}
