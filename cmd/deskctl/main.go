package main

import (
	"fmt"
	"io"
	"os"
)

// stdout is where command results go; tests swap it.
var stdout io.Writer = os.Stdout

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "info":
		os.Exit(runInfo(os.Args[2:]))
	case "flags":
		os.Exit(runFlags(os.Args[2:]))
	case "move":
		os.Exit(runMove(os.Args[2:]))
	case "apply":
		os.Exit(runApply(os.Args[2:]))
	case "arrange":
		os.Exit(runArrange(os.Args[2:]))
	case "refresh":
		os.Exit(runRefresh(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(exitUsage)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: deskctl <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  list                List desktop icons in desktop order")
	fmt.Fprintln(w, "  info                Show resolution, spacing, flags and cursor")
	fmt.Fprintln(w, "  flags               Show or change snap-to-grid / auto-arrange")
	fmt.Fprintln(w, "  move                Move one icon by name")
	fmt.Fprintln(w, "  apply               Move many icons from a YAML batch file")
	fmt.Fprintln(w, "  arrange             Place every icon on the spacing grid")
	fmt.Fprintln(w, "  refresh             Tell the desktop shell its contents changed")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Desktop commands accept --config PATH, --backend NAME and --fixture PATH.")
	fmt.Fprintln(w, "Run 'deskctl <command> --help' for command-specific options.")
}
