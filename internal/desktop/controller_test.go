package desktop

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/deskctl/internal/actionlog"
	"github.com/1broseidon/deskctl/internal/platform"
)

func threeIconFixture() platform.MemoryFixture {
	return platform.MemoryFixture{
		Resolution: platform.Size{Width: 400, Height: 300},
		Spacing:    platform.Size{Width: 40, Height: 40},
		Icons: []platform.MemoryIcon{
			{Name: "a", X: 10, Y: 10},
			{Name: "b", X: 50, Y: 10},
			{Name: "c", X: 90, Y: 10},
		},
	}
}

func newTestController(t *testing.T, f platform.MemoryFixture, timeout time.Duration) (*Controller, *platform.MemorySurface) {
	t.Helper()
	mem := platform.NewMemorySurface(f)
	c, err := NewController(Options{
		Open:        func() (platform.Surface, error) { return mem, nil },
		HostTimeout: timeout,
	})
	if err != nil {
		t.Fatalf("NewController() error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mem
}

func positions(t *testing.T, c *Controller) map[string]platform.Point {
	t.Helper()
	icons, err := c.Refresh()
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	out := make(map[string]platform.Point, len(icons))
	for _, icon := range icons {
		out[icon.Name] = icon.Position
	}
	return out
}

var scenarioTargets = []platform.Point{{X: 12, Y: 12}, {X: 55, Y: 13}, {X: 91, Y: 14}}

func TestRepositionIcons_SnapDisabledAppliesExactPoints(t *testing.T) {
	c, mem := newTestController(t, threeIconFixture(), time.Second)

	handles, err := c.AllIcons()
	if err != nil {
		t.Fatalf("AllIcons() error: %v", err)
	}
	result, err := c.RepositionIcons(handles, scenarioTargets)
	if err != nil {
		t.Fatalf("RepositionIcons() error: %v", err)
	}
	if len(result.Failed) != 0 {
		t.Fatalf("unexpected failures: %+v", result.Failed)
	}
	if got := mem.BatchCalls(); got != 1 {
		t.Fatalf("BatchCalls() = %d, want 1", got)
	}

	got := positions(t, c)
	for i, name := range []string{"a", "b", "c"} {
		if got[name] != scenarioTargets[i] {
			t.Fatalf("%s at %v, want %v", name, got[name], scenarioTargets[i])
		}
	}
}

func TestRepositionIcons_SnapEnabledRoundsToGrid(t *testing.T) {
	f := threeIconFixture()
	f.Flags.SnapToGrid = true
	c, _ := newTestController(t, f, time.Second)

	handles, err := c.AllIcons()
	if err != nil {
		t.Fatalf("AllIcons() error: %v", err)
	}
	result, err := c.RepositionIcons(handles, scenarioTargets)
	if err != nil {
		t.Fatalf("RepositionIcons() error: %v", err)
	}

	want := []platform.Point{{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 80, Y: 0}}
	got := positions(t, c)
	for i, name := range []string{"a", "b", "c"} {
		if got[name] != want[i] {
			t.Fatalf("%s at %v, want %v", name, got[name], want[i])
		}
		if result.Applied[i] != want[i] {
			t.Fatalf("Applied[%d] = %v, want %v", i, result.Applied[i], want[i])
		}
	}
}

func TestRepositionIcons_SnapClampsIntoDesktop(t *testing.T) {
	f := threeIconFixture()
	f.Resolution = platform.Size{Width: 100, Height: 100}
	f.Flags.SnapToGrid = true
	c, _ := newTestController(t, f, time.Second)

	h, ok, err := c.IconByName("a")
	if err != nil || !ok {
		t.Fatalf("IconByName(a) = %v, %v", ok, err)
	}
	if _, err := c.RepositionIcons([]*IconHandle{h}, []platform.Point{{X: 99, Y: 99}}); err != nil {
		t.Fatalf("RepositionIcons() error: %v", err)
	}
	if got := positions(t, c)["a"]; got != (platform.Point{X: 80, Y: 80}) {
		t.Fatalf("a at %v, want 80,80", got)
	}
}

func TestRepositionIcons_LengthMismatchMutatesNothing(t *testing.T) {
	c, mem := newTestController(t, threeIconFixture(), time.Second)

	handles, _ := c.AllIcons()
	_, err := c.RepositionIcons(handles, scenarioTargets[:2])
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("error = %v, want ErrLengthMismatch", err)
	}
	if got := mem.BatchCalls(); got != 0 {
		t.Fatalf("BatchCalls() = %d, want 0", got)
	}
	if _, err := handles[0].Position(); err != nil {
		t.Fatalf("handle went stale after rejected batch: %v", err)
	}
}

func TestRepositionIcons_OutOfBoundsReportsIndexBeforeMutation(t *testing.T) {
	c, mem := newTestController(t, threeIconFixture(), time.Second)

	handles, _ := c.AllIcons()
	points := []platform.Point{{X: 1, Y: 1}, {X: 400, Y: 1}, {X: 2, Y: 2}}
	_, err := c.RepositionIcons(handles, points)
	if !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("error = %v, want ErrOutOfBounds", err)
	}
	var pe *PointError
	if !errors.As(err, &pe) || pe.Index != 1 {
		t.Fatalf("error = %#v, want *PointError at index 1", err)
	}
	if got := mem.BatchCalls(); got != 0 {
		t.Fatalf("BatchCalls() = %d, want 0", got)
	}
}

func TestRepositionIcons_StaleHandleRejected(t *testing.T) {
	c, mem := newTestController(t, threeIconFixture(), time.Second)

	old, _ := c.AllIcons()
	if _, err := c.Refresh(); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	_, err := c.RepositionIcons(old, scenarioTargets)
	if !errors.Is(err, ErrStaleHandle) {
		t.Fatalf("error = %v, want ErrStaleHandle", err)
	}
	if got := mem.BatchCalls(); got != 0 {
		t.Fatalf("BatchCalls() = %d, want 0", got)
	}

	_, err = c.RepositionIcons([]*IconHandle{nil}, scenarioTargets[:1])
	if !errors.Is(err, ErrStaleHandle) {
		t.Fatalf("nil handle error = %v, want ErrStaleHandle", err)
	}
}

func TestRepositionIcons_PartialFailureKeepsSurvivors(t *testing.T) {
	c, mem := newTestController(t, threeIconFixture(), time.Second)

	handles, _ := c.AllIcons()
	if !mem.RemoveIcon("b") {
		t.Fatal("RemoveIcon(b) failed")
	}

	result, err := c.RepositionIcons(handles, scenarioTargets)
	if !errors.Is(err, ErrPartialFailure) {
		t.Fatalf("error = %v, want ErrPartialFailure", err)
	}
	var be *BatchError
	if !errors.As(err, &be) {
		t.Fatalf("error %T is not *BatchError", err)
	}
	if idx := be.Indices(); len(idx) != 1 || idx[0] != 1 {
		t.Fatalf("failed indices = %v, want [1]", idx)
	}
	if len(result.Failed) != 1 || !errors.Is(result.Failed[0].Err, platform.ErrItemNotFound) {
		t.Fatalf("result.Failed = %+v", result.Failed)
	}
	if CodeOf(err) != CodePartialFailure {
		t.Fatalf("CodeOf() = %q", CodeOf(err))
	}

	got := positions(t, c)
	if got["a"] != scenarioTargets[0] || got["c"] != scenarioTargets[2] {
		t.Fatalf("survivors not applied: %v", got)
	}
}

func TestRepositionIcons_TransientBatchFailureFallsBackPerIcon(t *testing.T) {
	c, mem := newTestController(t, threeIconFixture(), time.Second)

	handles, _ := c.AllIcons()
	mem.FailNextBatch(errors.New("host busy"))

	if _, err := c.RepositionIcons(handles, scenarioTargets); err != nil {
		t.Fatalf("RepositionIcons() error: %v", err)
	}
	if got := mem.BatchCalls(); got != 4 {
		t.Fatalf("BatchCalls() = %d, want 1 batch + 3 singles", got)
	}
	if got := positions(t, c)["b"]; got != scenarioTargets[1] {
		t.Fatalf("b at %v, want %v", got, scenarioTargets[1])
	}
}

func TestRepositionIcons_InvalidatesGeneration(t *testing.T) {
	c, _ := newTestController(t, threeIconFixture(), time.Second)

	handles, _ := c.AllIcons()
	before := c.Session().Registry().Current()
	if _, err := c.RepositionIcons(handles, scenarioTargets); err != nil {
		t.Fatalf("RepositionIcons() error: %v", err)
	}
	if after := c.Session().Registry().Current(); after <= before {
		t.Fatalf("generation %d did not advance past %d", after, before)
	}
	if _, err := handles[0].Position(); !errors.Is(err, ErrStaleHandle) {
		t.Fatalf("Position() error = %v, want ErrStaleHandle", err)
	}
	if _, err := handles[0].DisplayName(); !errors.Is(err, ErrStaleHandle) {
		t.Fatalf("DisplayName() error = %v, want ErrStaleHandle", err)
	}
}

func TestRepositionIcons_EmptyBatch(t *testing.T) {
	c, mem := newTestController(t, threeIconFixture(), time.Second)

	result, err := c.RepositionIcons(nil, nil)
	if err != nil {
		t.Fatalf("RepositionIcons() error: %v", err)
	}
	if len(result.Applied) != 0 || mem.BatchCalls() != 0 {
		t.Fatalf("empty batch touched the host: %+v", result)
	}
}

func TestIconHandle_RepositionExactAndInvalidates(t *testing.T) {
	c, _ := newTestController(t, threeIconFixture(), time.Second)

	h, ok, err := c.IconByName("c")
	if err != nil || !ok {
		t.Fatalf("IconByName(c) = %v, %v", ok, err)
	}
	target := platform.Point{X: 123, Y: 77}
	if err := h.Reposition(target); err != nil {
		t.Fatalf("Reposition() error: %v", err)
	}
	if _, err := h.Position(); !errors.Is(err, ErrStaleHandle) {
		t.Fatalf("Position() after Reposition error = %v, want ErrStaleHandle", err)
	}
	if got := positions(t, c)["c"]; got != target {
		t.Fatalf("c at %v, want %v", got, target)
	}
}

func TestIconHandle_RepositionOutOfBounds(t *testing.T) {
	c, _ := newTestController(t, threeIconFixture(), time.Second)

	h, _, _ := c.IconByName("a")
	for _, p := range []platform.Point{{X: -1, Y: 0}, {X: 0, Y: 300}, {X: 400, Y: 0}} {
		if err := h.Reposition(p); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("Reposition(%v) error = %v, want ErrOutOfBounds", p, err)
		}
	}
	if got, err := h.Position(); err != nil || got != (platform.Point{X: 10, Y: 10}) {
		t.Fatalf("Position() = %v, %v", got, err)
	}
}

func TestEnumerateIcons_OrderAndCallbacks(t *testing.T) {
	c, _ := newTestController(t, threeIconFixture(), time.Second)

	var names []string
	var indices []int
	err := c.EnumerateIcons(func(index int, h *IconHandle) error {
		name, err := h.DisplayName()
		if err != nil {
			return err
		}
		names = append(names, name)
		indices = append(indices, index)
		return nil
	})
	if err != nil {
		t.Fatalf("EnumerateIcons() error: %v", err)
	}
	if strings.Join(names, ",") != "a,b,c" {
		t.Fatalf("names = %v", names)
	}
	if indices[0] != 1 || indices[2] != 3 {
		t.Fatalf("indices = %v, want 1..3", indices)
	}

	stop := errors.New("stop")
	calls := 0
	err = c.EnumerateIcons(func(int, *IconHandle) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Fatalf("EnumerateIcons() = %v after %d calls", err, calls)
	}
}

func TestRegistry_GenerationsAndUniqueIDs(t *testing.T) {
	c, mem := newTestController(t, threeIconFixture(), time.Second)
	reg := c.Session().Registry()

	if got := reg.Current(); got != 0 {
		t.Fatalf("Current() before enumeration = %d, want 0", got)
	}
	handles, err := reg.Handles()
	if err != nil {
		t.Fatalf("Handles() error: %v", err)
	}
	if reg.Current() != 1 {
		t.Fatalf("Current() = %d, want 1", reg.Current())
	}

	seen := map[platform.ItemID]bool{}
	for _, h := range handles {
		if seen[h.ID()] {
			t.Fatalf("duplicate id %s", h.ID())
		}
		seen[h.ID()] = true
	}

	// Handles() reuses a live generation.
	again, _ := reg.Handles()
	if again[0].Generation() != handles[0].Generation() {
		t.Fatal("Handles() re-enumerated a live generation")
	}

	mem.AddIcon("d", platform.Point{X: 200, Y: 200})
	if err := reg.Invalidate(); err != nil {
		t.Fatalf("Invalidate() error: %v", err)
	}
	if _, err := handles[0].Position(); !errors.Is(err, ErrStaleHandle) {
		t.Fatalf("Position() after Invalidate error = %v", err)
	}
	fresh, _ := reg.Handles()
	if len(fresh) != 4 || fresh[3].Index() != 4 {
		t.Fatalf("fresh generation has %d handles", len(fresh))
	}
	if fresh[0].Generation() <= handles[0].Generation() {
		t.Fatal("generation did not increase")
	}

	if _, ok, err := reg.ByName("missing"); ok || err != nil {
		t.Fatalf("ByName(missing) = %v, %v", ok, err)
	}
}

func TestLayout_FolderFlagsSetBothAtOnce(t *testing.T) {
	c, _ := newTestController(t, threeIconFixture(), time.Second)

	handles, _ := c.AllIcons()
	want := platform.FolderFlags{SnapToGrid: true, AutoArrange: true}
	if err := c.SetFolderFlags(want); err != nil {
		t.Fatalf("SetFolderFlags() error: %v", err)
	}
	got, err := c.FolderFlags()
	if err != nil || got != want {
		t.Fatalf("FolderFlags() = %+v, %v", got, err)
	}
	if _, err := handles[0].Position(); !errors.Is(err, ErrStaleHandle) {
		t.Fatalf("auto-arrange did not retire the generation: %v", err)
	}
}

func TestLayout_Metrics(t *testing.T) {
	f := threeIconFixture()
	f.Cursor = platform.Point{X: 5, Y: 6}
	f.Directory = "/home/user/Desktop"
	c, mem := newTestController(t, f, time.Second)

	if res, err := c.DesktopResolution(); err != nil || res != f.Resolution {
		t.Fatalf("DesktopResolution() = %v, %v", res, err)
	}
	if sp, err := c.IconSpacing(); err != nil || sp != f.Spacing {
		t.Fatalf("IconSpacing() = %v, %v", sp, err)
	}
	if p, err := c.CursorPosition(); err != nil || p != f.Cursor {
		t.Fatalf("CursorPosition() = %v, %v", p, err)
	}
	if dir, err := c.DesktopDirectory(); err != nil || dir != f.Directory {
		t.Fatalf("DesktopDirectory() = %q, %v", dir, err)
	}
	if err := c.NotifyChanged(); err != nil {
		t.Fatalf("NotifyChanged() error: %v", err)
	}
	if mem.Notifications() != 1 {
		t.Fatalf("Notifications() = %d", mem.Notifications())
	}
}

func TestArrange_PlacesIconsOnGrid(t *testing.T) {
	c, _ := newTestController(t, threeIconFixture(), time.Second)

	if _, err := c.Arrange(2); err != nil {
		t.Fatalf("Arrange() error: %v", err)
	}
	got := positions(t, c)
	want := map[string]platform.Point{"a": {X: 0, Y: 0}, "b": {X: 40, Y: 0}, "c": {X: 0, Y: 40}}
	for name, p := range want {
		if got[name] != p {
			t.Fatalf("%s at %v, want %v", name, got[name], p)
		}
	}
}

func TestResolve_NamesToHandles(t *testing.T) {
	c, _ := newTestController(t, threeIconFixture(), time.Second)

	handles, err := c.Resolve([]string{"c", "a"})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if handles[0].Index() != 3 || handles[1].Index() != 1 {
		t.Fatalf("indices = %d,%d, want 3,1", handles[0].Index(), handles[1].Index())
	}

	_, err = c.Resolve([]string{"a", "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Resolve() error = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Fatalf("error %q does not name the icon", err)
	}
}

func TestSession_CrossContextAccess(t *testing.T) {
	c, mem := newTestController(t, threeIconFixture(), 5*time.Second)

	release := mem.Block()
	defer release()

	done := make(chan error, 1)
	go func() {
		_, err := c.DesktopResolution()
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for mem.Blocked() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("background call never reached the host")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := c.IconSpacing(); !errors.Is(err, ErrCrossContextAccess) {
		t.Fatalf("overlapping call error = %v, want ErrCrossContextAccess", err)
	}
	if _, err := c.RepositionIcons(nil, nil); !errors.Is(err, ErrCrossContextAccess) {
		t.Fatalf("overlapping batch error = %v, want ErrCrossContextAccess", err)
	}

	release()
	if err := <-done; err != nil {
		t.Fatalf("background call error: %v", err)
	}
	if _, err := c.IconSpacing(); err != nil {
		t.Fatalf("call after release error: %v", err)
	}
}

func TestSession_HostTimeoutWedgesSession(t *testing.T) {
	c, mem := newTestController(t, threeIconFixture(), 50*time.Millisecond)

	release := mem.Block()
	_, err := c.DesktopResolution()
	if !errors.Is(err, ErrHostTimeout) {
		t.Fatalf("error = %v, want ErrHostTimeout", err)
	}

	start := time.Now()
	if _, err := c.FolderFlags(); !errors.Is(err, ErrHostTimeout) {
		t.Fatalf("wedged call error = %v, want ErrHostTimeout", err)
	}
	if time.Since(start) > 40*time.Millisecond {
		t.Fatal("wedged session did not fail fast")
	}

	release()
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
}

func TestSession_ClosedRejectsEverything(t *testing.T) {
	c, _ := newTestController(t, threeIconFixture(), time.Second)

	handles, _ := c.AllIcons()
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}

	if _, err := c.Refresh(); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("Refresh() error = %v, want ErrSessionClosed", err)
	}
	if _, err := c.FolderFlags(); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("FolderFlags() error = %v, want ErrSessionClosed", err)
	}
	if _, err := handles[0].Position(); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("Position() error = %v, want ErrSessionClosed", err)
	}
	if _, err := c.RepositionIcons(handles, scenarioTargets); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("RepositionIcons() error = %v, want ErrSessionClosed", err)
	}
	if !c.Session().Closed() {
		t.Fatal("Closed() = false")
	}
}

func TestOpen_Unavailable(t *testing.T) {
	cause := errors.New("no desktop")
	_, err := NewController(Options{Open: func() (platform.Surface, error) { return nil, cause }})
	if !errors.Is(err, ErrSessionUnavailable) || !errors.Is(err, cause) {
		t.Fatalf("error = %v, want ErrSessionUnavailable wrapping cause", err)
	}
	if CodeOf(err) != CodeSessionUnavailable {
		t.Fatalf("CodeOf() = %q", CodeOf(err))
	}

	if _, err := Open(Options{}); !errors.Is(err, ErrSessionUnavailable) {
		t.Fatalf("Open(nil opener) error = %v", err)
	}

	_, err = Open(Options{Open: func() (platform.Surface, error) { panic("boom") }})
	if !errors.Is(err, ErrSessionUnavailable) {
		t.Fatalf("panicking opener error = %v", err)
	}
}

func TestSession_ActionLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.log")
	actions, err := actionlog.New(actionlog.Config{Enabled: true, Level: actionlog.LevelDebug, FilePath: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("actionlog.New() error: %v", err)
	}
	defer actions.Close()

	mem := platform.NewMemorySurface(threeIconFixture())
	c, err := NewController(Options{Open: func() (platform.Surface, error) { return mem, nil }, Actions: actions})
	if err != nil {
		t.Fatalf("NewController() error: %v", err)
	}
	handles, _ := c.AllIcons()
	if _, err := c.RepositionIcons(handles, scenarioTargets); err != nil {
		t.Fatalf("RepositionIcons() error: %v", err)
	}
	c.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read action log: %v", err)
	}
	log := string(data)
	for _, want := range []string{"[SESSION-OPEN]", "[ENUMERATE]", "[BATCH]", "[SESSION-CLOSE]", "session=" + c.Session().ID()} {
		if !strings.Contains(log, want) {
			t.Fatalf("action log missing %q:\n%s", want, log)
		}
	}
}

func TestAllIcons_MatchesEnumerateIcons(t *testing.T) {
	c, _ := newTestController(t, threeIconFixture(), time.Second)

	handles, err := c.AllIcons()
	if err != nil {
		t.Fatalf("AllIcons() error: %v", err)
	}
	var enumerated []*IconHandle
	err = c.EnumerateIcons(func(index int, h *IconHandle) error {
		if index != len(enumerated)+1 {
			t.Fatalf("callback index = %d, want %d", index, len(enumerated)+1)
		}
		enumerated = append(enumerated, h)
		return nil
	})
	if err != nil {
		t.Fatalf("EnumerateIcons() error: %v", err)
	}

	if len(enumerated) != len(handles) {
		t.Fatalf("EnumerateIcons gave %d icons, AllIcons gave %d", len(enumerated), len(handles))
	}
	for i := range handles {
		if handles[i].ID() != enumerated[i].ID() {
			t.Fatalf("index %d: AllIcons id %s, EnumerateIcons id %s", i+1, handles[i].ID(), enumerated[i].ID())
		}
		if handles[i].Index() != enumerated[i].Index() {
			t.Fatalf("index %d: AllIcons index %d, EnumerateIcons index %d", i+1, handles[i].Index(), enumerated[i].Index())
		}
	}
}

func TestIconByName_FirstMatchInOrder(t *testing.T) {
	f := threeIconFixture()
	f.Icons = []platform.MemoryIcon{
		{Name: "dup", X: 10, Y: 10},
		{Name: "other", X: 50, Y: 10},
		{Name: "dup", X: 90, Y: 10},
	}
	c, _ := newTestController(t, f, time.Second)

	h, ok, err := c.IconByName("dup")
	if err != nil || !ok {
		t.Fatalf("IconByName(dup) = %v, %v", ok, err)
	}
	if h.Index() != 1 {
		t.Fatalf("IconByName(dup) index = %d, want 1", h.Index())
	}
	if p, err := h.Position(); err != nil || p != (platform.Point{X: 10, Y: 10}) {
		t.Fatalf("Position() = %v, %v, want 10,10", p, err)
	}

	h, ok, err = c.Session().Registry().ByName("dup")
	if err != nil || !ok || h.Index() != 1 {
		t.Fatalf("Registry.ByName(dup) = %v, %v, %v, want index 1", h, ok, err)
	}

	resolved, err := c.Resolve([]string{"dup"})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if resolved[0].Index() != 1 {
		t.Fatalf("Resolve(dup) index = %d, want 1", resolved[0].Index())
	}

	if _, ok, err := c.IconByName("missing"); ok || err != nil {
		t.Fatalf("IconByName(missing) = %v, %v, want absent", ok, err)
	}
}

func TestIconByName_KeepsEarlierHandlesCurrent(t *testing.T) {
	c, mem := newTestController(t, threeIconFixture(), time.Second)

	handles, err := c.AllIcons()
	if err != nil {
		t.Fatalf("AllIcons() error: %v", err)
	}
	if _, ok, err := c.IconByName("b"); err != nil || !ok {
		t.Fatalf("IconByName(b) = %v, %v", ok, err)
	}

	points := []platform.Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}
	result, err := c.RepositionIcons(handles, points)
	if err != nil {
		t.Fatalf("RepositionIcons() error: %v", err)
	}
	wantNames := []string{"a", "b", "c"}
	for i, name := range wantNames {
		if result.Names[i] != name {
			t.Fatalf("Names[%d] = %q, want %q", i, result.Names[i], name)
		}
	}
	if mem.BatchCalls() != 1 {
		t.Fatalf("batch calls = %d, want 1", mem.BatchCalls())
	}
}
