package tiling

import "testing"

func TestSnapAxis(t *testing.T) {
	tests := []struct {
		v, step, want int
	}{
		{v: 12, step: 40, want: 0},
		{v: 55, step: 40, want: 40},
		{v: 91, step: 40, want: 80},
		{v: 20, step: 40, want: 40}, // tie rounds up
		{v: 19, step: 40, want: 0},
		{v: 80, step: 40, want: 80},
		{v: -10, step: 40, want: 0},
		{v: -30, step: 40, want: -40},
		{v: 37, step: 75, want: 0},
		{v: 38, step: 75, want: 75},
		{v: 7, step: 0, want: 7},
	}
	for _, tt := range tests {
		if got := SnapAxis(tt.v, tt.step); got != tt.want {
			t.Fatalf("SnapAxis(%d, %d) = %d, want %d", tt.v, tt.step, got, tt.want)
		}
	}
}

func TestClampAxis(t *testing.T) {
	tests := []struct {
		v, step, limit, want int
	}{
		{v: 80, step: 40, limit: 100, want: 80},
		{v: 120, step: 40, limit: 100, want: 80},
		{v: 100, step: 40, limit: 100, want: 60},
		{v: 200, step: 40, limit: 100, want: 80},
		{v: 40, step: 75, limit: 30, want: 0},
	}
	for _, tt := range tests {
		if got := ClampAxis(tt.v, tt.step, tt.limit); got != tt.want {
			t.Fatalf("ClampAxis(%d, %d, %d) = %d, want %d", tt.v, tt.step, tt.limit, got, tt.want)
		}
	}
}

func TestGridSnap_StaysOnDesktop(t *testing.T) {
	g := Grid{CellWidth: 40, CellHeight: 40, Width: 100, Height: 100}

	x, y := g.Snap(99, 99)
	if x != 80 || y != 80 {
		t.Fatalf("Snap(99,99) = (%d,%d), want (80,80)", x, y)
	}
	x, y = g.Snap(55, 13)
	if x != 40 || y != 0 {
		t.Fatalf("Snap(55,13) = (%d,%d), want (40,0)", x, y)
	}
}

func TestGridArrange_ColumnMajor(t *testing.T) {
	g := Grid{CellWidth: 50, CellHeight: 100, Width: 400, Height: 250}

	positions, err := g.Arrange(5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][2]int{{0, 0}, {0, 100}, {50, 0}, {50, 100}, {100, 0}}
	for i, w := range want {
		if positions[i].X != w[0] || positions[i].Y != w[1] {
			t.Fatalf("position %d = (%d,%d), want (%d,%d)", i, positions[i].X, positions[i].Y, w[0], w[1])
		}
		if positions[i].Width != 50 || positions[i].Height != 100 {
			t.Fatalf("position %d size = %dx%d", i, positions[i].Width, positions[i].Height)
		}
	}
}

func TestGridArrange_RowMajorWithColumns(t *testing.T) {
	g := Grid{CellWidth: 50, CellHeight: 100, Width: 400, Height: 250}

	positions, err := g.Arrange(3, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][2]int{{0, 0}, {50, 0}, {0, 100}}
	for i, w := range want {
		if positions[i].X != w[0] || positions[i].Y != w[1] {
			t.Fatalf("position %d = (%d,%d), want (%d,%d)", i, positions[i].X, positions[i].Y, w[0], w[1])
		}
	}
}

func TestGridArrange_Errors(t *testing.T) {
	g := Grid{CellWidth: 50, CellHeight: 100, Width: 100, Height: 100}

	if _, err := g.Arrange(3, 0); err == nil {
		t.Fatal("expected capacity error")
	}
	if _, err := g.Arrange(1, 5); err == nil {
		t.Fatal("expected column error")
	}
	if _, err := (Grid{}).Arrange(1, 0); err == nil {
		t.Fatal("expected invalid grid error")
	}
	if got, err := g.Arrange(0, 0); err != nil || got != nil {
		t.Fatalf("Arrange(0) = %v, %v", got, err)
	}
}
