//go:build windows

package overlay

import (
	"syscall"

	"fyne.io/fyne/v2/driver"
)

const (
	gwlExStyle  int32 = -20
	wsExLayered       = 0x00080000
	lwaAlpha          = 0x2
)

var (
	user32DLL                      = syscall.NewLazyDLL("user32.dll")
	procGetWindowLongPtrW          = user32DLL.NewProc("GetWindowLongPtrW")
	procSetWindowLongPtrW          = user32DLL.NewProc("SetWindowLongPtrW")
	procSetLayeredWindowAttributes = user32DLL.NewProc("SetLayeredWindowAttributes")
)

// applyWindowAlpha makes the whole overlay translucent so the counter
// window behind it stays readable. It needs a realised native window, so
// it runs after Show.
func (overlay *Window) applyWindowAlpha() {
	native, ok := overlay.window.(driver.NativeWindow)
	if !ok {
		return
	}
	alpha := overlay.config.Opacity

	native.RunNative(func(context any) {
		var hwnd uintptr
		switch value := context.(type) {
		case driver.WindowsWindowContext:
			hwnd = value.HWND
		case *driver.WindowsWindowContext:
			hwnd = value.HWND
		}
		if hwnd == 0 {
			return
		}

		exStyle := uintptr(uint32(gwlExStyle))
		style, _, _ := procGetWindowLongPtrW.Call(hwnd, exStyle)
		if style&wsExLayered == 0 {
			procSetWindowLongPtrW.Call(hwnd, exStyle, style|wsExLayered)
		}
		procSetLayeredWindowAttributes.Call(hwnd, 0, uintptr(alpha), uintptr(lwaAlpha))
	})
}
