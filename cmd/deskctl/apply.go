package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/deskctl/internal/config"
	"github.com/1broseidon/deskctl/internal/desktop"
	"github.com/1broseidon/deskctl/internal/platform"
)

// batchFile is the document read by `deskctl apply`:
//
//	flags:
//	  snap_to_grid: true
//	moves:
//	  - {name: "Recycle Bin", x: 0, y: 0}
//	  - {name: "Notes.txt", x: 96, y: 0}
type batchFile struct {
	Flags *batchFlags `yaml:"flags"`
	Moves []batchMove `yaml:"moves"`
}

type batchFlags struct {
	SnapToGrid  *bool `yaml:"snap_to_grid"`
	AutoArrange *bool `yaml:"auto_arrange"`
}

type batchMove struct {
	Name string `yaml:"name"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

func parseBatchFile(data []byte) (*batchFile, error) {
	var f batchFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("batch file is empty")
		}
		return nil, err
	}
	for i, m := range f.Moves {
		if strings.TrimSpace(m.Name) == "" {
			return nil, fmt.Errorf("moves[%d]: name is required", i)
		}
	}
	if len(f.Moves) == 0 && f.Flags == nil {
		return nil, fmt.Errorf("batch file has no flags or moves")
	}
	return &f, nil
}

func readBatchFile(path string) (*batchFile, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	f, err := parseBatchFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func runApply(args []string) int {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	sf := addSurfaceFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskctl apply [options] <file.yaml|->")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}
	batch, err := readBatchFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	return withController(sf, func(ctrl *desktop.Controller, _ *config.Config) error {
		return applyBatch(ctrl, batch)
	})
}

// applyBatch sets flags first so snap-to-grid applies to the moves.
func applyBatch(ctrl *desktop.Controller, batch *batchFile) error {
	if batch.Flags != nil {
		flags, err := ctrl.FolderFlags()
		if err != nil {
			return err
		}
		if batch.Flags.SnapToGrid != nil {
			flags.SnapToGrid = *batch.Flags.SnapToGrid
		}
		if batch.Flags.AutoArrange != nil {
			flags.AutoArrange = *batch.Flags.AutoArrange
		}
		if err := ctrl.SetFolderFlags(flags); err != nil {
			return err
		}
	}
	if len(batch.Moves) == 0 {
		return nil
	}

	names := make([]string, len(batch.Moves))
	points := make([]platform.Point, len(batch.Moves))
	for i, m := range batch.Moves {
		names[i] = m.Name
		points[i] = platform.Point{X: m.X, Y: m.Y}
	}
	handles, err := ctrl.Resolve(names)
	if err != nil {
		return err
	}
	res, err := ctrl.RepositionIcons(handles, points)
	if res != nil {
		failed := make(map[int]bool, len(res.Failed))
		for _, f := range res.Failed {
			failed[f.Index] = true
		}
		for i, p := range res.Applied {
			status := p.String()
			if failed[i] {
				status = "FAILED"
			}
			fmt.Fprintf(stdout, "%s -> %s\n", names[i], status)
		}
	}
	var pe *desktop.PointError
	if errors.As(err, &pe) {
		return fmt.Errorf("%s: %w", names[pe.Index], err)
	}
	return err
}
