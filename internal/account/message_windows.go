//go:build windows

package account

import (
	"sync"

	"golang.org/x/sys/windows"
)

const (
	nerrBase = 2100
	maxNerr  = 2999

	// MAKELANGID(LANG_NEUTRAL, SUBLANG_DEFAULT)
	langNeutralDefault = 0x0400
)

var netmsg = sync.OnceValue(func() windows.Handle {
	h, err := windows.LoadLibraryEx("netmsg.dll", 0, windows.LOAD_LIBRARY_AS_DATAFILE)
	if err != nil {
		return 0
	}
	return h
})

func platformMessage(code uint32) string {
	buf := make([]uint16, 1024)
	flags := uint32(windows.FORMAT_MESSAGE_FROM_SYSTEM | windows.FORMAT_MESSAGE_IGNORE_INSERTS)

	n, err := windows.FormatMessage(flags, 0, code, langNeutralDefault, buf, nil)
	if (err != nil || n == 0) && code >= nerrBase && code <= maxNerr {
		if module := netmsg(); module != 0 {
			flags = windows.FORMAT_MESSAGE_FROM_HMODULE | windows.FORMAT_MESSAGE_IGNORE_INSERTS
			n, err = windows.FormatMessage(flags, uintptr(module), code, langNeutralDefault, buf, nil)
		}
	}
	if err != nil || n == 0 {
		return ""
	}

	return windows.UTF16ToString(buf[:n])
}
