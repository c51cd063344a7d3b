package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMemorySurface_PositionItemsUnknownIDFailsWholeBatch(t *testing.T) {
	m := NewMemorySurface(DefaultMemoryFixture())
	items, err := m.Items()
	if err != nil {
		t.Fatalf("Items() error: %v", err)
	}

	err = m.PositionItems(
		[]ItemID{items[0].ID, "mem-999"},
		[]Point{{X: 300, Y: 300}, {X: 400, Y: 400}},
	)
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("PositionItems() error = %v, want ErrItemNotFound", err)
	}

	after, _ := m.Items()
	if after[0].Position != items[0].Position {
		t.Fatalf("first item moved to %v despite failed batch", after[0].Position)
	}
	if got := m.BatchCalls(); got != 1 {
		t.Fatalf("BatchCalls() = %d, want 1", got)
	}
}

func TestMemorySurface_AutoArrangeReflowsColumnMajor(t *testing.T) {
	m := NewMemorySurface(MemoryFixture{
		Resolution: Size{Width: 400, Height: 200},
		Spacing:    Size{Width: 50, Height: 100},
		Icons: []MemoryIcon{
			{Name: "a", X: 300, Y: 150},
			{Name: "b", X: 10, Y: 10},
			{Name: "c", X: 220, Y: 20},
		},
	})

	if err := m.SetFolderFlags(FolderFlags{AutoArrange: true}); err != nil {
		t.Fatalf("SetFolderFlags() error: %v", err)
	}

	items, _ := m.Items()
	want := []Point{{X: 0, Y: 0}, {X: 0, Y: 100}, {X: 50, Y: 0}}
	for i, it := range items {
		if it.Position != want[i] {
			t.Fatalf("item %d at %v, want %v", i, it.Position, want[i])
		}
	}
}

func TestMemorySurface_FailNextBatchIsConsumedOnce(t *testing.T) {
	m := NewMemorySurface(DefaultMemoryFixture())
	items, _ := m.Items()
	boom := errors.New("boom")
	m.FailNextBatch(boom)

	ids := []ItemID{items[0].ID}
	pts := []Point{{X: 150, Y: 150}}
	if err := m.PositionItems(ids, pts); !errors.Is(err, boom) {
		t.Fatalf("first PositionItems() error = %v, want boom", err)
	}
	if err := m.PositionItems(ids, pts); err != nil {
		t.Fatalf("second PositionItems() error: %v", err)
	}
}

func TestMemorySurface_ClosedRejectsCalls(t *testing.T) {
	m := NewMemorySurface(DefaultMemoryFixture())
	if err := m.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
	if _, err := m.Items(); err == nil {
		t.Fatal("Items() after Close succeeded")
	}
}

func TestLoadMemorySurface_RoundTripsThroughSaveOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desk.yaml")
	if err := writeFixture(path, DefaultMemoryFixture()); err != nil {
		t.Fatalf("writeFixture() error: %v", err)
	}

	m, err := LoadMemorySurface(path)
	if err != nil {
		t.Fatalf("LoadMemorySurface() error: %v", err)
	}
	m.SaveOnClose(path)
	if !m.MoveExternally("Notes.txt", Point{X: 600, Y: 300}) {
		t.Fatal("MoveExternally() did not find Notes.txt")
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	reloaded, err := LoadMemorySurface(path)
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	f := reloaded.Fixture()
	last := f.Icons[len(f.Icons)-1]
	if last.Name != "Notes.txt" || last.X != 600 || last.Y != 300 {
		t.Fatalf("reloaded last icon = %+v", last)
	}
}

func TestLoadMemorySurface_RejectsUnknownFieldsAndBadSizes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown field", body: "resolution: {width: 10, height: 10}\nspacing: {width: 1, height: 1}\nwallpaper: x\n"},
		{name: "zero resolution", body: "resolution: {width: 0, height: 10}\nspacing: {width: 1, height: 1}\n"},
		{name: "zero spacing", body: "resolution: {width: 10, height: 10}\nspacing: {width: 0, height: 1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "f.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadMemorySurface(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
