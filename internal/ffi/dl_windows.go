//go:build windows

package ffi

import (
	"fmt"
	"syscall"
	"unsafe"
)

// RTLD flags - not used on Windows but defined for compatibility
const (
	RTLD_NOW    = 0
	RTLD_GLOBAL = 0
)

var (
	kernel32     = syscall.NewLazyDLL("kernel32.dll")
	loadLibraryW = kernel32.NewProc("LoadLibraryW")
	freeLibrary  = kernel32.NewProc("FreeLibrary")
)

func dlopenLibrary(path string, flags int) (uintptr, error) {
	pathPtr, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	handle, _, err := loadLibraryW.Call(uintptr(unsafe.Pointer(pathPtr)))
	if handle == 0 {
		return 0, fmt.Errorf("LoadLibrary failed: %w", err)
	}
	return handle, nil
}

func dlcloseLibrary(handle uintptr) error {
	ret, _, err := freeLibrary.Call(handle)
	if ret == 0 {
		return fmt.Errorf("FreeLibrary failed: %w", err)
	}
	return nil
}
