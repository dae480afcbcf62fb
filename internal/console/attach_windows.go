//go:build windows

package console

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

// ATTACH_PARENT_PROCESS
const attachParentProcess = ^uintptr(0)

var (
	modkernel32       = windows.NewLazySystemDLL("kernel32.dll")
	procAttachConsole = modkernel32.NewProc("AttachConsole")
)

// AttachParent attaches to the parent's console, if it has one, and points
// os.Stdout and os.Stderr at it. Binaries built for the GUI subsystem
// start without standard handles.
func AttachParent() error {
	r1, _, err := procAttachConsole.Call(attachParentProcess)
	if r1 == 0 {
		return fmt.Errorf("AttachConsole: %w", err)
	}

	conout, err := windows.UTF16PtrFromString("CONOUT$")
	if err != nil {
		return err
	}

	h, err := windows.CreateFile(conout,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil, windows.OPEN_EXISTING, 0, 0)
	if err != nil {
		return fmt.Errorf("open CONOUT$: %w", err)
	}

	if err := windows.SetStdHandle(windows.STD_OUTPUT_HANDLE, h); err != nil {
		return fmt.Errorf("set stdout: %w", err)
	}
	if err := windows.SetStdHandle(windows.STD_ERROR_HANDLE, h); err != nil {
		return fmt.Errorf("set stderr: %w", err)
	}

	os.Stdout = os.NewFile(uintptr(h), "CONOUT$")
	os.Stderr = os.Stdout
	return nil
}
