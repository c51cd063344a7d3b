//go:build windows

package platform

import (
	"encoding/hex"
	"errors"
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

const nativeBackend = BackendShell

var (
	ole32   = windows.NewLazySystemDLL("ole32.dll")
	shell32 = windows.NewLazySystemDLL("shell32.dll")
	shlwapi = windows.NewLazySystemDLL("shlwapi.dll")
	user32  = windows.NewLazySystemDLL("user32.dll")

	procCoCreateInstance = ole32.NewProc("CoCreateInstance")
	procSHChangeNotify   = shell32.NewProc("SHChangeNotify")
	procStrRetToStrW     = shlwapi.NewProc("StrRetToStrW")
	procGetDesktopWindow = user32.NewProc("GetDesktopWindow")
	procGetWindowRect    = user32.NewProc("GetWindowRect")
	procGetCursorPos     = user32.NewProc("GetCursorPos")
)

var (
	clsidShellWindows   = mustGUID("{9BA05972-F6A8-11CF-A442-00A0C90A8F39}")
	iidShellWindows     = mustGUID("{85CB6900-4D95-11CF-960C-0080C7F4EE85}")
	iidServiceProvider  = mustGUID("{6D5140C1-7436-11CE-8034-00AA006009FA}")
	sidSTopLevelBrowser = mustGUID("{4C96BE40-915C-11CF-99D3-00AA004AE837}")
	iidShellBrowser     = mustGUID("{000214E2-0000-0000-C000-000000000046}")
	iidFolderView2      = mustGUID("{1AF3A467-214F-4298-908E-06B03E0B39F9}")
	iidShellFolder      = mustGUID("{000214E6-0000-0000-C000-000000000046}")
	iidEnumIDList       = mustGUID("{000214F2-0000-0000-C000-000000000046}")
)

const (
	clsctxAll = 0x17

	csidlDesktop     = 0
	swcDesktop       = 8
	swfoNeedDispatch = 1

	svgioAllView     = 2
	svsiPositionItem = 0x80
	shgdnNormal      = 0

	fwfAutoArrange = 0x1
	fwfSnapToGrid  = 0x80000

	shcneUpdateDir   = 0x1000
	shcnfPathW       = 0x0005
	shcnfFlushNoWait = 0x3000

	vtEmpty = 0
	vtI4    = 3

	sOK = 0
)

// vtable slots
const (
	slotQueryInterface = 0
	slotRelease        = 2

	slotFindWindowSW           = 15 // IShellWindows
	slotQueryService           = 3  // IServiceProvider
	slotQueryActiveShellView   = 15 // IShellBrowser
	slotGetFolder              = 5  // IFolderView
	slotItems                  = 8
	slotGetItemPosition        = 11
	slotGetSpacing             = 12
	slotSelectAndPositionItems = 16
	slotSetCurrentFolderFlags  = 24 // IFolderView2
	slotGetCurrentFolderFlags  = 25
	slotEnumNext               = 3  // IEnumIDList
	slotGetDisplayNameOf       = 11 // IShellFolder
)

func mustGUID(s string) windows.GUID {
	g, err := windows.GUIDFromString(s)
	if err != nil {
		panic(err)
	}
	return g
}

// comObject is an interface pointer. Its address is passed as a COM out
// parameter, so p must stay the only field.
type comObject struct {
	p unsafe.Pointer
}

func (o comObject) call(slot int, args ...uintptr) uint32 {
	vtbl := *(*unsafe.Pointer)(o.p)
	fn := *(*uintptr)(unsafe.Add(vtbl, uintptr(slot)*unsafe.Sizeof(uintptr(0))))
	r, _, _ := syscall.SyscallN(fn, append([]uintptr{uintptr(o.p)}, args...)...)
	return uint32(r)
}

func (o comObject) release() {
	if o.p != nil {
		o.call(slotRelease)
	}
}

func (o comObject) query(iid *windows.GUID) (comObject, error) {
	var out comObject
	if hr := o.call(slotQueryInterface, uintptr(unsafe.Pointer(iid)), uintptr(unsafe.Pointer(&out))); failed(hr) {
		return comObject{}, hresultError("QueryInterface", hr)
	}
	return out, nil
}

func failed(hr uint32) bool {
	return int32(hr) < 0
}

func hresultError(op string, hr uint32) error {
	return fmt.Errorf("%s failed: %w", op, windows.Errno(hr))
}

type variant struct {
	vt  uint16
	_   [3]uint16
	val [2]uintptr
}

func int32Variant(n int32) variant {
	v := variant{vt: vtI4}
	*(*int32)(unsafe.Pointer(&v.val[0])) = n
	return v
}

type point32 struct {
	X, Y int32
}

type strret struct {
	uType uint32
	union [272 / unsafe.Sizeof(uintptr(0))]uintptr
}

// ShellSurface drives the Explorer desktop folder view over COM. It must be
// created and used on a single OS thread.
type ShellSurface struct {
	folderView  comObject // IFolderView2
	shellFolder comObject
	pidls       map[ItemID]unsafe.Pointer
}

var _ Surface = (*ShellSurface)(nil)

// NewShellSurface initializes COM on the calling thread and locates the
// desktop view.
func NewShellSurface() (*ShellSurface, error) {
	if err := windows.CoInitializeEx(0, windows.COINIT_APARTMENTTHREADED); err != nil && !errors.Is(err, windows.Errno(1)) {
		return nil, fmt.Errorf("CoInitializeEx failed: %w", err)
	}

	fv, err := findDesktopFolderView()
	if err != nil {
		windows.CoUninitialize()
		return nil, err
	}

	var sf comObject
	if hr := fv.call(slotGetFolder, uintptr(unsafe.Pointer(&iidShellFolder)), uintptr(unsafe.Pointer(&sf))); failed(hr) {
		fv.release()
		windows.CoUninitialize()
		return nil, hresultError("GetFolder", hr)
	}

	return &ShellSurface{folderView: fv, shellFolder: sf, pidls: make(map[ItemID]unsafe.Pointer)}, nil
}

func openNative(NativeOptions) (Surface, error) {
	return NewShellSurface()
}

func findDesktopFolderView() (comObject, error) {
	var sw comObject
	hr, _, _ := procCoCreateInstance.Call(
		uintptr(unsafe.Pointer(&clsidShellWindows)),
		0,
		clsctxAll,
		uintptr(unsafe.Pointer(&iidShellWindows)),
		uintptr(unsafe.Pointer(&sw)),
	)
	if failed(uint32(hr)) {
		return comObject{}, hresultError("CoCreateInstance(ShellWindows)", uint32(hr))
	}
	defer sw.release()

	loc := int32Variant(csidlDesktop)
	root := variant{vt: vtEmpty}
	var hwnd int32
	var dispatch comObject
	if hr := sw.call(slotFindWindowSW,
		uintptr(unsafe.Pointer(&loc)),
		uintptr(unsafe.Pointer(&root)),
		swcDesktop,
		uintptr(unsafe.Pointer(&hwnd)),
		swfoNeedDispatch,
		uintptr(unsafe.Pointer(&dispatch)),
	); hr != sOK || dispatch.p == nil {
		return comObject{}, hresultError("FindWindowSW", hr)
	}
	defer dispatch.release()

	sp, err := dispatch.query(&iidServiceProvider)
	if err != nil {
		return comObject{}, err
	}
	defer sp.release()

	var browser comObject
	if hr := sp.call(slotQueryService,
		uintptr(unsafe.Pointer(&sidSTopLevelBrowser)),
		uintptr(unsafe.Pointer(&iidShellBrowser)),
		uintptr(unsafe.Pointer(&browser)),
	); failed(hr) {
		return comObject{}, hresultError("QueryService", hr)
	}
	defer browser.release()

	var view comObject
	if hr := browser.call(slotQueryActiveShellView, uintptr(unsafe.Pointer(&view))); failed(hr) {
		return comObject{}, hresultError("QueryActiveShellView", hr)
	}
	defer view.release()

	return view.query(&iidFolderView2)
}

func (s *ShellSurface) Items() ([]Item, error) {
	s.freePIDLs()

	var enum comObject
	if hr := s.folderView.call(slotItems, svgioAllView, uintptr(unsafe.Pointer(&iidEnumIDList)), uintptr(unsafe.Pointer(&enum))); failed(hr) {
		return nil, hresultError("Items", hr)
	}
	defer enum.release()

	var items []Item
	for {
		var pidl unsafe.Pointer
		if hr := enum.call(slotEnumNext, 1, uintptr(unsafe.Pointer(&pidl)), 0); hr != sOK {
			break
		}
		name, err := s.displayName(pidl)
		if err != nil {
			windows.CoTaskMemFree(pidl)
			return nil, err
		}
		var pt point32
		if hr := s.folderView.call(slotGetItemPosition, uintptr(pidl), uintptr(unsafe.Pointer(&pt))); failed(hr) {
			windows.CoTaskMemFree(pidl)
			return nil, hresultError("GetItemPosition", hr)
		}

		id := pidlID(pidl)
		if prev, ok := s.pidls[id]; ok {
			windows.CoTaskMemFree(prev)
		}
		s.pidls[id] = pidl
		items = append(items, Item{ID: id, Name: name, Position: Point{X: int(pt.X), Y: int(pt.Y)}})
	}
	return items, nil
}

func (s *ShellSurface) displayName(pidl unsafe.Pointer) (string, error) {
	var sr strret
	if hr := s.shellFolder.call(slotGetDisplayNameOf, uintptr(pidl), shgdnNormal, uintptr(unsafe.Pointer(&sr))); failed(hr) {
		return "", hresultError("GetDisplayNameOf", hr)
	}
	var out *uint16
	hr, _, _ := procStrRetToStrW.Call(uintptr(unsafe.Pointer(&sr)), uintptr(pidl), uintptr(unsafe.Pointer(&out)))
	if failed(uint32(hr)) {
		return "", hresultError("StrRetToStrW", uint32(hr))
	}
	defer windows.CoTaskMemFree(unsafe.Pointer(out))
	return windows.UTF16PtrToString(out), nil
}

// pidlID hex-encodes the child item id bytes, which are stable across
// enumerations of the same item.
func pidlID(pidl unsafe.Pointer) ItemID {
	cb := *(*uint16)(pidl)
	raw := unsafe.Slice((*byte)(pidl), int(cb))
	return ItemID(hex.EncodeToString(raw))
}

func (s *ShellSurface) PositionItems(ids []ItemID, pts []Point) error {
	if len(ids) != len(pts) {
		return fmt.Errorf("position items: %d ids but %d points", len(ids), len(pts))
	}
	if len(ids) == 0 {
		return nil
	}
	apidl := make([]unsafe.Pointer, len(ids))
	apt := make([]point32, len(ids))
	for i, id := range ids {
		pidl, ok := s.pidls[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}
		apidl[i] = pidl
		apt[i] = point32{X: int32(pts[i].X), Y: int32(pts[i].Y)}
	}
	if hr := s.folderView.call(slotSelectAndPositionItems,
		uintptr(len(ids)),
		uintptr(unsafe.Pointer(&apidl[0])),
		uintptr(unsafe.Pointer(&apt[0])),
		svsiPositionItem,
	); failed(hr) {
		return hresultError("SelectAndPositionItems", hr)
	}
	return nil
}

func (s *ShellSurface) Resolution() (Size, error) {
	hwnd, _, _ := procGetDesktopWindow.Call()
	var rect windows.Rect
	if ok, _, err := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&rect))); ok == 0 {
		return Size{}, fmt.Errorf("GetWindowRect failed: %w", err)
	}
	return Size{Width: int(rect.Right), Height: int(rect.Bottom)}, nil
}

func (s *ShellSurface) Spacing() (Size, error) {
	var pt point32
	if hr := s.folderView.call(slotGetSpacing, uintptr(unsafe.Pointer(&pt))); failed(hr) {
		return Size{}, hresultError("GetSpacing", hr)
	}
	return Size{Width: int(pt.X), Height: int(pt.Y)}, nil
}

func (s *ShellSurface) FolderFlags() (FolderFlags, error) {
	var flags uint32
	if hr := s.folderView.call(slotGetCurrentFolderFlags, uintptr(unsafe.Pointer(&flags))); failed(hr) {
		return FolderFlags{}, hresultError("GetCurrentFolderFlags", hr)
	}
	return FolderFlags{
		SnapToGrid:  flags&fwfSnapToGrid != 0,
		AutoArrange: flags&fwfAutoArrange != 0,
	}, nil
}

func (s *ShellSurface) SetFolderFlags(flags FolderFlags) error {
	var value uintptr
	if flags.SnapToGrid {
		value |= fwfSnapToGrid
	}
	if flags.AutoArrange {
		value |= fwfAutoArrange
	}
	if hr := s.folderView.call(slotSetCurrentFolderFlags, fwfSnapToGrid|fwfAutoArrange, value); failed(hr) {
		return hresultError("SetCurrentFolderFlags", hr)
	}
	return nil
}

func (s *ShellSurface) CursorPosition() (Point, error) {
	var pt point32
	if ok, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt))); ok == 0 {
		return Point{}, fmt.Errorf("GetCursorPos failed: %w", err)
	}
	return Point{X: int(pt.X), Y: int(pt.Y)}, nil
}

func (s *ShellSurface) NotifyChanged() error {
	dir, err := s.DesktopDirectory()
	if err != nil {
		return err
	}
	p, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return err
	}
	procSHChangeNotify.Call(shcneUpdateDir, shcnfPathW|shcnfFlushNoWait, uintptr(unsafe.Pointer(p)), 0)
	return nil
}

func (s *ShellSurface) DesktopDirectory() (string, error) {
	dir, err := windows.KnownFolderPath(windows.FOLDERID_Desktop, 0)
	if err != nil {
		return "", fmt.Errorf("failed to resolve desktop folder: %w", err)
	}
	return dir, nil
}

func (s *ShellSurface) freePIDLs() {
	for id, pidl := range s.pidls {
		windows.CoTaskMemFree(pidl)
		delete(s.pidls, id)
	}
}

// Close releases every COM reference and uninitializes COM on this thread.
func (s *ShellSurface) Close() error {
	if s.folderView.p == nil {
		return nil
	}
	s.freePIDLs()
	s.shellFolder.release()
	s.folderView.release()
	s.shellFolder, s.folderView = comObject{}, comObject{}
	windows.CoUninitialize()
	return nil
}
