package mcp

import "github.com/1broseidon/deskctl/internal/platform"

// ListIconsInput is the input for the list_icons tool.
type ListIconsInput struct {
	OEM bool `json:"oem,omitempty" jsonschema:"When true, include each name encoded in the configured OEM code page as hex"`
}

// IconInfo describes one desktop icon.
type IconInfo struct {
	Index    int            `json:"index"`
	Name     string         `json:"name"`
	Position platform.Point `json:"position"`
	OEMHex   string         `json:"oem_hex,omitempty"`
}

// ListIconsOutput is the output for the list_icons tool.
type ListIconsOutput struct {
	Generation uint64     `json:"generation"`
	CodePage   string     `json:"codepage,omitempty"`
	Icons      []IconInfo `json:"icons"`
}

// DesktopInfoInput is the input for the desktop_info tool.
type DesktopInfoInput struct{}

// DesktopInfoOutput is the output for the desktop_info tool.
type DesktopInfoOutput struct {
	Resolution platform.Size        `json:"resolution"`
	Spacing    platform.Size        `json:"spacing"`
	Flags      platform.FolderFlags `json:"flags"`
	Cursor     platform.Point       `json:"cursor"`
	Directory  string               `json:"directory,omitempty"`
}

// MoveIconInput is the input for the move_icon tool.
type MoveIconInput struct {
	Name string `json:"name" jsonschema:"required,Display name of the icon to move"`
	X    int    `json:"x" jsonschema:"required,Target x in desktop pixels"`
	Y    int    `json:"y" jsonschema:"required,Target y in desktop pixels"`
}

// Placement is where one icon was sent.
type Placement struct {
	Name     string         `json:"name"`
	Position platform.Point `json:"position"`
}

// MoveIconOutput is the output for the move_icon tool.
type MoveIconOutput struct {
	Name     string         `json:"name"`
	Position platform.Point `json:"position"`
	Snapped  bool           `json:"snapped"`
}

// IconMove is one entry of a move_icons batch.
type IconMove struct {
	Name string `json:"name" jsonschema:"required,Display name of the icon"`
	X    int    `json:"x" jsonschema:"required,Target x in desktop pixels"`
	Y    int    `json:"y" jsonschema:"required,Target y in desktop pixels"`
}

// MoveIconsInput is the input for the move_icons tool.
type MoveIconsInput struct {
	Moves []IconMove `json:"moves" jsonschema:"required,Icons to move in one batch"`
}

// BatchOutput reports a batch reposition. Failed names the icons the
// desktop refused; every other entry of Applied landed.
type BatchOutput struct {
	Applied []Placement `json:"applied"`
	Failed  []string    `json:"failed,omitempty"`
}

// SetFolderFlagsInput is the input for the set_folder_flags tool. Omitted
// flags keep their current value.
type SetFolderFlagsInput struct {
	SnapToGrid  *bool `json:"snap_to_grid,omitempty" jsonschema:"Align icons to the desktop grid"`
	AutoArrange *bool `json:"auto_arrange,omitempty" jsonschema:"Let the desktop arrange icons automatically"`
}

// ArrangeIconsInput is the input for the arrange_icons tool.
type ArrangeIconsInput struct {
	Columns int `json:"columns,omitempty" jsonschema:"Icons per row; 0 fills columns top to bottom"`
}
