package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/1broseidon/deskctl/internal/config"
	"github.com/1broseidon/deskctl/internal/desktop"
	"github.com/1broseidon/deskctl/internal/oem"
	"github.com/1broseidon/deskctl/internal/platform"
)

type iconJSON struct {
	Index    int            `json:"index"`
	Name     string         `json:"name"`
	Position platform.Point `json:"position"`
	OEMHex   string         `json:"oem_hex,omitempty"`
}

func writeJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// interactive reports whether stdout is a terminal; piped output drops the
// header so it can be consumed line by line.
func interactive() bool {
	f, ok := stdout.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	sf := addSurfaceFlags(fs)
	asJSON := fs.Bool("json", false, "Output JSON")
	withOEM := fs.Bool("oem", false, "Include names encoded in the configured OEM code page (hex)")
	codePage := fs.String("codepage", "", "Code page for --oem (default: config codepage)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskctl list [--json] [--oem] [--codepage NAME]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	return withController(sf, func(ctrl *desktop.Controller, cfg *config.Config) error {
		codec, err := listCodec(cfg, *codePage)
		if err != nil {
			return err
		}

		var icons []iconJSON
		err = ctrl.EnumerateIcons(func(index int, h *desktop.IconHandle) error {
			name, err := h.DisplayName()
			if err != nil {
				return err
			}
			pos, err := h.Position()
			if err != nil {
				return err
			}
			icon := iconJSON{Index: index, Name: name, Position: pos}
			if *withOEM {
				icon.OEMHex = hex.EncodeToString(codec.Encode(name))
			}
			icons = append(icons, icon)
			return nil
		})
		if err != nil {
			return err
		}

		if *asJSON {
			if icons == nil {
				icons = []iconJSON{}
			}
			return writeJSON(icons)
		}
		if interactive() {
			fmt.Fprintf(stdout, "%-4s %-10s %s\n", "#", "POSITION", "NAME")
		}
		for _, icon := range icons {
			line := fmt.Sprintf("%-4d %-10s %s", icon.Index, icon.Position, icon.Name)
			if *withOEM {
				line += "\t" + icon.OEMHex
			}
			fmt.Fprintln(stdout, line)
		}
		return nil
	})
}

func listCodec(cfg *config.Config, override string) (*oem.Codec, error) {
	if override != "" {
		return oem.New(override)
	}
	return cfg.Codec()
}

type infoJSON struct {
	Resolution platform.Size        `json:"resolution"`
	Spacing    platform.Size        `json:"spacing"`
	Flags      platform.FolderFlags `json:"flags"`
	Cursor     platform.Point       `json:"cursor"`
	Directory  string               `json:"directory,omitempty"`
}

func runInfo(args []string) int {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	sf := addSurfaceFlags(fs)
	asJSON := fs.Bool("json", false, "Output JSON")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	return withController(sf, func(ctrl *desktop.Controller, _ *config.Config) error {
		var (
			info infoJSON
			err  error
		)
		if info.Resolution, err = ctrl.DesktopResolution(); err != nil {
			return err
		}
		if info.Spacing, err = ctrl.IconSpacing(); err != nil {
			return err
		}
		if info.Flags, err = ctrl.FolderFlags(); err != nil {
			return err
		}
		if info.Cursor, err = ctrl.CursorPosition(); err != nil {
			return err
		}
		if dir, err := ctrl.DesktopDirectory(); err == nil {
			info.Directory = dir
		}

		if *asJSON {
			return writeJSON(info)
		}
		fmt.Fprintf(stdout, "resolution:   %dx%d\n", info.Resolution.Width, info.Resolution.Height)
		fmt.Fprintf(stdout, "spacing:      %dx%d\n", info.Spacing.Width, info.Spacing.Height)
		fmt.Fprintf(stdout, "snap_to_grid: %s\n", onOff(info.Flags.SnapToGrid))
		fmt.Fprintf(stdout, "auto_arrange: %s\n", onOff(info.Flags.AutoArrange))
		fmt.Fprintf(stdout, "cursor:       %s\n", info.Cursor)
		if info.Directory != "" {
			fmt.Fprintf(stdout, "directory:    %s\n", info.Directory)
		}
		return nil
	})
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}

func runFlags(args []string) int {
	fs := flag.NewFlagSet("flags", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	sf := addSurfaceFlags(fs)
	snap := fs.String("snap", "", "Set snap-to-grid: on|off")
	arrange := fs.String("arrange", "", "Set auto-arrange: on|off")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskctl flags [--snap on|off] [--arrange on|off]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	var snapVal, arrangeVal *bool
	for _, opt := range []struct {
		raw string
		dst **bool
	}{{*snap, &snapVal}, {*arrange, &arrangeVal}} {
		if opt.raw == "" {
			continue
		}
		v, err := parseOnOff(opt.raw)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitUsage
		}
		*opt.dst = &v
	}

	return withController(sf, func(ctrl *desktop.Controller, _ *config.Config) error {
		flags, err := ctrl.FolderFlags()
		if err != nil {
			return err
		}
		if snapVal != nil || arrangeVal != nil {
			if snapVal != nil {
				flags.SnapToGrid = *snapVal
			}
			if arrangeVal != nil {
				flags.AutoArrange = *arrangeVal
			}
			if err := ctrl.SetFolderFlags(flags); err != nil {
				return err
			}
		}
		fmt.Fprintf(stdout, "snap_to_grid: %s\nauto_arrange: %s\n", onOff(flags.SnapToGrid), onOff(flags.AutoArrange))
		return nil
	})
}

func runMove(args []string) int {
	fs := flag.NewFlagSet("move", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	sf := addSurfaceFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskctl move [options] <name> <x> <y>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 3 {
		fs.Usage()
		return exitUsage
	}
	name := fs.Arg(0)
	x, errX := strconv.Atoi(fs.Arg(1))
	y, errY := strconv.Atoi(fs.Arg(2))
	if errX != nil || errY != nil {
		fmt.Fprintf(os.Stderr, "invalid position %s,%s\n", fs.Arg(1), fs.Arg(2))
		return exitUsage
	}

	return withController(sf, func(ctrl *desktop.Controller, _ *config.Config) error {
		handles, err := ctrl.Resolve([]string{name})
		if err != nil {
			return err
		}
		res, err := ctrl.RepositionIcons(handles, []platform.Point{{X: x, Y: y}})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s -> %s\n", name, res.Applied[0])
		return nil
	})
}

func runArrange(args []string) int {
	fs := flag.NewFlagSet("arrange", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	sf := addSurfaceFlags(fs)
	cols := fs.Int("cols", 0, "Icons per row (0 fills columns top to bottom)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *cols < 0 {
		fmt.Fprintln(os.Stderr, "--cols must be >= 0")
		return exitUsage
	}

	return withController(sf, func(ctrl *desktop.Controller, _ *config.Config) error {
		res, err := ctrl.Arrange(*cols)
		if res != nil {
			fmt.Fprintf(stdout, "arranged %d icons\n", len(res.Applied)-len(res.Failed))
		}
		return err
	})
}

func runRefresh(args []string) int {
	fs := flag.NewFlagSet("refresh", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	sf := addSurfaceFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	return withController(sf, func(ctrl *desktop.Controller, _ *config.Config) error {
		if err := ctrl.NotifyChanged(); err != nil {
			return err
		}
		icons, err := ctrl.Refresh()
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%d icons\n", len(icons))
		return nil
	})
}
