package platform

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

// MemoryIcon is one icon in a memory fixture.
type MemoryIcon struct {
	Name string `yaml:"name"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

// MemoryFixture describes a simulated desktop.
type MemoryFixture struct {
	Resolution Size         `yaml:"resolution"`
	Spacing    Size         `yaml:"spacing"`
	Flags      FolderFlags  `yaml:"flags"`
	Cursor     Point        `yaml:"cursor"`
	Directory  string       `yaml:"directory,omitempty"`
	Icons      []MemoryIcon `yaml:"icons"`
}

// DefaultMemoryFixture returns a small 1920x1080 desktop with a handful of icons.
func DefaultMemoryFixture() MemoryFixture {
	return MemoryFixture{
		Resolution: Size{Width: 1920, Height: 1080},
		Spacing:    Size{Width: 75, Height: 100},
		Icons: []MemoryIcon{
			{Name: "Recycle Bin", X: 0, Y: 0},
			{Name: "This PC", X: 0, Y: 100},
			{Name: "Documents", X: 0, Y: 200},
			{Name: "Notes.txt", X: 75, Y: 0},
		},
	}
}

type memItem struct {
	id   ItemID
	name string
	pos  Point
}

// MemorySurface is an in-process desktop surface. It behaves like a host
// shell: a batched move naming an unknown item fails as a whole, and
// auto-arrange re-flows icons onto the spacing grid after every mutation.
type MemorySurface struct {
	mu      sync.Mutex
	res     Size
	spacing Size
	flags   FolderFlags
	cursor  Point
	dir     string
	items   []memItem
	nextID  int
	closed  bool

	failNext      error
	gate          chan struct{}
	blocked       int
	batchCalls    int
	notifications int

	savePath string
}

var _ Surface = (*MemorySurface)(nil)

// NewMemorySurface builds a surface from a fixture.
func NewMemorySurface(f MemoryFixture) *MemorySurface {
	m := &MemorySurface{
		res:     f.Resolution,
		spacing: f.Spacing,
		flags:   f.Flags,
		cursor:  f.Cursor,
		dir:     f.Directory,
	}
	for _, icon := range f.Icons {
		m.addLocked(icon.Name, Point{X: icon.X, Y: icon.Y})
	}
	return m
}

// LoadMemorySurface reads a YAML fixture from path.
func LoadMemorySurface(path string) (*MemorySurface, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read fixture: %w", path, err)
	}
	var f MemoryFixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%s: failed to parse fixture: %w", path, err)
	}
	if f.Resolution.Width <= 0 || f.Resolution.Height <= 0 {
		return nil, fmt.Errorf("%s: fixture resolution must be positive", path)
	}
	if f.Spacing.Width <= 0 || f.Spacing.Height <= 0 {
		return nil, fmt.Errorf("%s: fixture spacing must be positive", path)
	}
	return NewMemorySurface(f), nil
}

// SaveOnClose makes Close write the current state back to path.
func (m *MemorySurface) SaveOnClose(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.savePath = path
}

// Fixture snapshots the current state.
func (m *MemorySurface) Fixture() MemoryFixture {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fixtureLocked()
}

func (m *MemorySurface) fixtureLocked() MemoryFixture {
	f := MemoryFixture{
		Resolution: m.res,
		Spacing:    m.spacing,
		Flags:      m.flags,
		Cursor:     m.cursor,
		Directory:  m.dir,
		Icons:      make([]MemoryIcon, 0, len(m.items)),
	}
	for _, it := range m.items {
		f.Icons = append(f.Icons, MemoryIcon{Name: it.name, X: it.pos.X, Y: it.pos.Y})
	}
	return f
}

// Save writes the current state as a YAML fixture.
func (m *MemorySurface) Save(path string) error {
	return writeFixture(path, m.Fixture())
}

func writeFixture(path string, f MemoryFixture) error {
	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("failed to marshal fixture: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create fixture directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write fixture: %w", err)
	}
	return nil
}

// AddIcon places a new icon on the surface, as if created externally.
func (m *MemorySurface) AddIcon(name string, pos Point) ItemID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addLocked(name, pos)
}

func (m *MemorySurface) addLocked(name string, pos Point) ItemID {
	m.nextID++
	id := ItemID("mem-" + strconv.Itoa(m.nextID))
	m.items = append(m.items, memItem{id: id, name: name, pos: pos})
	return id
}

// RemoveIcon deletes the first icon named name, as if removed externally.
func (m *MemorySurface) RemoveIcon(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.items {
		if it.name == name {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true
		}
	}
	return false
}

// MoveExternally repositions an icon without going through the engine.
func (m *MemorySurface) MoveExternally(name string, pos Point) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].name == name {
			m.items[i].pos = pos
			return true
		}
	}
	return false
}

// FailNextBatch makes the next PositionItems call fail with err.
func (m *MemorySurface) FailNextBatch(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

// Block stalls every host call until the returned release func is called.
func (m *MemorySurface) Block() (release func()) {
	gate := make(chan struct{})
	m.mu.Lock()
	m.gate = gate
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			if m.gate == gate {
				m.gate = nil
			}
			m.mu.Unlock()
			close(gate)
		})
	}
}

// Blocked reports how many host calls are waiting on Block.
func (m *MemorySurface) Blocked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blocked
}

// BatchCalls reports how many PositionItems calls reached the surface.
func (m *MemorySurface) BatchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batchCalls
}

// Notifications reports how many NotifyChanged calls were received.
func (m *MemorySurface) Notifications() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifications
}

// SetSpacing changes the grid cell size, as if the user changed icon size.
func (m *MemorySurface) SetSpacing(s Size) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spacing = s
}

// enter waits on the gate (if any) and locks. Callers must unlock.
func (m *MemorySurface) enter() error {
	m.mu.Lock()
	gate := m.gate
	if gate != nil {
		m.blocked++
	}
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	m.mu.Lock()
	if gate != nil {
		m.blocked--
	}
	if m.closed {
		m.mu.Unlock()
		return errors.New("memory surface is closed")
	}
	return nil
}

func (m *MemorySurface) Items() ([]Item, error) {
	if err := m.enter(); err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	out := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, Item{ID: it.id, Name: it.name, Position: it.pos})
	}
	return out, nil
}

func (m *MemorySurface) PositionItems(ids []ItemID, pts []Point) error {
	if err := m.enter(); err != nil {
		return err
	}
	defer m.mu.Unlock()

	m.batchCalls++
	if len(ids) != len(pts) {
		return fmt.Errorf("position items: %d ids but %d points", len(ids), len(pts))
	}
	if err := m.failNext; err != nil {
		m.failNext = nil
		return err
	}

	idx := make([]int, len(ids))
	for i, id := range ids {
		j := m.indexLocked(id)
		if j < 0 {
			return fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}
		idx[i] = j
	}
	for i, j := range idx {
		m.items[j].pos = pts[i]
	}
	if m.flags.AutoArrange {
		m.arrangeLocked()
	}
	return nil
}

func (m *MemorySurface) indexLocked(id ItemID) int {
	for i, it := range m.items {
		if it.id == id {
			return i
		}
	}
	return -1
}

// arrangeLocked flows icons top-to-bottom, left-to-right on the spacing grid.
func (m *MemorySurface) arrangeLocked() {
	if m.spacing.Width <= 0 || m.spacing.Height <= 0 {
		return
	}
	rows := m.res.Height / m.spacing.Height
	if rows < 1 {
		rows = 1
	}
	for i := range m.items {
		m.items[i].pos = Point{
			X: (i / rows) * m.spacing.Width,
			Y: (i % rows) * m.spacing.Height,
		}
	}
}

func (m *MemorySurface) Resolution() (Size, error) {
	if err := m.enter(); err != nil {
		return Size{}, err
	}
	defer m.mu.Unlock()
	return m.res, nil
}

func (m *MemorySurface) Spacing() (Size, error) {
	if err := m.enter(); err != nil {
		return Size{}, err
	}
	defer m.mu.Unlock()
	return m.spacing, nil
}

func (m *MemorySurface) FolderFlags() (FolderFlags, error) {
	if err := m.enter(); err != nil {
		return FolderFlags{}, err
	}
	defer m.mu.Unlock()
	return m.flags, nil
}

func (m *MemorySurface) SetFolderFlags(flags FolderFlags) error {
	if err := m.enter(); err != nil {
		return err
	}
	defer m.mu.Unlock()
	wasArranged := m.flags.AutoArrange
	m.flags = flags
	if flags.AutoArrange && !wasArranged {
		m.arrangeLocked()
	}
	return nil
}

func (m *MemorySurface) CursorPosition() (Point, error) {
	if err := m.enter(); err != nil {
		return Point{}, err
	}
	defer m.mu.Unlock()
	return m.cursor, nil
}

func (m *MemorySurface) NotifyChanged() error {
	if err := m.enter(); err != nil {
		return err
	}
	defer m.mu.Unlock()
	m.notifications++
	return nil
}

func (m *MemorySurface) DesktopDirectory() (string, error) {
	if err := m.enter(); err != nil {
		return "", err
	}
	defer m.mu.Unlock()
	if m.dir == "" {
		return "", errors.New("memory surface has no desktop directory")
	}
	return m.dir, nil
}

// Close marks the surface closed and writes the fixture back when configured.
func (m *MemorySurface) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	path := m.savePath
	f := m.fixtureLocked()
	m.mu.Unlock()

	if path == "" {
		return nil
	}
	return writeFixture(path, f)
}
