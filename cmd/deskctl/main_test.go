package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/deskctl/internal/desktop"
	"github.com/1broseidon/deskctl/internal/platform"
)

// setupDesk writes a fixture and a config that saves moves back to it.
func setupDesk(t *testing.T) (configPath, fixturePath string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_RUNTIME_DIR", filepath.Join(dir, "run"))
	for _, name := range []string{"DESKCTL_BACKEND", "DESKCTL_FIXTURE", "DESKCTL_HOST_TIMEOUT", "DESKCTL_CODEPAGE", "DESKCTL_LOG_LEVEL"} {
		t.Setenv(name, "")
	}

	fixturePath = filepath.Join(dir, "desk.yaml")
	mem := platform.NewMemorySurface(platform.MemoryFixture{
		Resolution: platform.Size{Width: 400, Height: 300},
		Spacing:    platform.Size{Width: 40, Height: 40},
		Icons: []platform.MemoryIcon{
			{Name: "a", X: 10, Y: 10},
			{Name: "b", X: 50, Y: 10},
			{Name: "c", X: 90, Y: 10},
		},
	})
	if err := mem.Save(fixturePath); err != nil {
		t.Fatalf("save fixture: %v", err)
	}

	configPath = filepath.Join(dir, "config.yaml")
	data := fmt.Sprintf("fixture: %s\nsave_fixture: true\nlog_level: error\n", fixturePath)
	if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath, fixturePath
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func fixturePositions(t *testing.T, path string) map[string]platform.Point {
	t.Helper()
	mem, err := platform.LoadMemorySurface(path)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	out := map[string]platform.Point{}
	for _, icon := range mem.Fixture().Icons {
		out[icon.Name] = platform.Point{X: icon.X, Y: icon.Y}
	}
	return out
}

func TestRunList_JSON(t *testing.T) {
	cfgPath, _ := setupDesk(t)
	out := captureStdout(t)

	if rc := runList([]string{"--config", cfgPath, "--json", "--oem"}); rc != exitOK {
		t.Fatalf("runList rc=%d, want 0", rc)
	}
	var icons []iconJSON
	if err := json.Unmarshal(out.Bytes(), &icons); err != nil {
		t.Fatalf("decode output %q: %v", out.String(), err)
	}
	if len(icons) != 3 {
		t.Fatalf("got %d icons, want 3", len(icons))
	}
	for i, name := range []string{"a", "b", "c"} {
		if icons[i].Index != i+1 || icons[i].Name != name {
			t.Fatalf("icons[%d] = %+v", i, icons[i])
		}
	}
	if icons[1].OEMHex != "62" {
		t.Fatalf("oem hex = %q, want 62", icons[1].OEMHex)
	}
}

func TestRunList_PlainOutputHasNoHeaderWhenPiped(t *testing.T) {
	cfgPath, _ := setupDesk(t)
	out := captureStdout(t)

	if rc := runList([]string{"--config", cfgPath}); rc != exitOK {
		t.Fatalf("runList rc=%d, want 0", rc)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "1") || !strings.HasSuffix(lines[0], " a") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
}

func TestRunMove_SnapsAndPersists(t *testing.T) {
	cfgPath, fixturePath := setupDesk(t)
	out := captureStdout(t)

	if rc := runFlags([]string{"--config", cfgPath, "--snap", "on"}); rc != exitOK {
		t.Fatalf("runFlags rc=%d, want 0", rc)
	}
	out.Reset()
	if rc := runMove([]string{"--config", cfgPath, "b", "123", "45"}); rc != exitOK {
		t.Fatalf("runMove rc=%d, want 0", rc)
	}
	if got := strings.TrimSpace(out.String()); got != "b -> 120,40" {
		t.Fatalf("output = %q", got)
	}
	if got := fixturePositions(t, fixturePath)["b"]; got != (platform.Point{X: 120, Y: 40}) {
		t.Fatalf("b persisted at %v, want 120,40", got)
	}
}

func TestRunMove_ExitCodes(t *testing.T) {
	cfgPath, fixturePath := setupDesk(t)
	captureStdout(t)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "unknown icon", args: []string{"ghost", "1", "1"}, want: exitNotFound},
		{name: "off desktop", args: []string{"a", "400", "1"}, want: exitRejected},
		{name: "bad number", args: []string{"a", "x", "1"}, want: exitUsage},
		{name: "missing args", args: []string{"a"}, want: exitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", cfgPath}, tt.args...)
			if rc := runMove(args); rc != tt.want {
				t.Fatalf("runMove rc=%d, want %d", rc, tt.want)
			}
		})
	}
	if got := fixturePositions(t, fixturePath)["a"]; got != (platform.Point{X: 10, Y: 10}) {
		t.Fatalf("a moved to %v by a rejected command", got)
	}
}

func TestRunApply_MovesBatch(t *testing.T) {
	cfgPath, fixturePath := setupDesk(t)
	captureStdout(t)

	batchPath := filepath.Join(t.TempDir(), "batch.yaml")
	batch := strings.Join([]string{
		"moves:",
		"  - {name: c, x: 0, y: 0}",
		"  - {name: a, x: 200, y: 120}",
		"",
	}, "\n")
	if err := os.WriteFile(batchPath, []byte(batch), 0644); err != nil {
		t.Fatalf("write batch: %v", err)
	}

	if rc := runApply([]string{"--config", cfgPath, batchPath}); rc != exitOK {
		t.Fatalf("runApply rc=%d, want 0", rc)
	}
	got := fixturePositions(t, fixturePath)
	if got["c"] != (platform.Point{X: 0, Y: 0}) || got["a"] != (platform.Point{X: 200, Y: 120}) {
		t.Fatalf("unexpected positions %v", got)
	}
}

func TestParseBatchFile(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "moves", data: "moves:\n  - {name: a, x: 1, y: 2}\n"},
		{name: "flags only", data: "flags:\n  snap_to_grid: true\n"},
		{name: "empty", data: "", wantErr: "empty"},
		{name: "nothing to do", data: "moves: []\n", wantErr: "no flags or moves"},
		{name: "unknown key", data: "moves: []\nspeed: 3\n", wantErr: "speed"},
		{name: "missing name", data: "moves:\n  - {x: 1, y: 2}\n", wantErr: "moves[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseBatchFile([]byte(tt.data))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("parseBatchFile() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("parseBatchFile() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestRunArrange(t *testing.T) {
	cfgPath, fixturePath := setupDesk(t)
	out := captureStdout(t)

	if rc := runArrange([]string{"--config", cfgPath, "--cols", "2"}); rc != exitOK {
		t.Fatalf("runArrange rc=%d, want 0", rc)
	}
	if !strings.Contains(out.String(), "arranged 3 icons") {
		t.Fatalf("output = %q", out.String())
	}
	got := fixturePositions(t, fixturePath)
	if got["c"] != (platform.Point{X: 0, Y: 40}) {
		t.Fatalf("c at %v, want 0,40", got["c"])
	}
}

func TestMemoryBackendKeepsStateInRuntimeDir(t *testing.T) {
	setupDesk(t)
	captureStdout(t)
	cfgPath := filepath.Join(t.TempDir(), "none.yaml")

	if rc := runMove([]string{"--config", cfgPath, "--backend", "memory", "Notes.txt", "300", "300"}); rc != exitOK {
		t.Fatalf("runMove rc=%d, want 0", rc)
	}
	state := filepath.Join(os.Getenv("XDG_RUNTIME_DIR"), "deskctl-desktop.yaml")
	if got := fixturePositions(t, state)["Notes.txt"]; got != (platform.Point{X: 300, Y: 300}) {
		t.Fatalf("Notes.txt at %v, want 300,300", got)
	}
}

func TestRunConfigExplain_EnvSource(t *testing.T) {
	cfgPath, _ := setupDesk(t)
	out := captureStdout(t)
	t.Setenv("DESKCTL_CODEPAGE", "cp850")

	if rc := runConfig([]string{"explain", "--path", cfgPath, "codepage"}); rc != exitOK {
		t.Fatalf("runConfig rc=%d, want 0", rc)
	}
	if !strings.Contains(out.String(), "source: env:DESKCTL_CODEPAGE") {
		t.Fatalf("output = %q", out.String())
	}
	if !strings.Contains(out.String(), "cp850") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitOK},
		{errors.New("boom"), exitError},
		{desktop.ErrNotFound, exitNotFound},
		{&desktop.BatchError{Failed: []desktop.IndexError{{Index: 0, Err: errors.New("x")}}}, exitPartial},
		{&desktop.PointError{Index: 1, Err: desktop.ErrOutOfBounds}, exitRejected},
		{fmt.Errorf("wrapped: %w", desktop.ErrStaleHandle), exitRejected},
		{desktop.ErrHostTimeout, exitUnavailable},
		{desktop.ErrCrossContextAccess, exitUnavailable},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Fatalf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
