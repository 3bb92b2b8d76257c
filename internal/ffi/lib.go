// Package ffi provides FFI bindings to the librtc shim library, the flat
// C ABI over the native peer-connection engine.
package ffi

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"
)

var (
	// ErrLibraryNotLoaded is returned when the shim library hasn't been loaded.
	ErrLibraryNotLoaded = errors.New("librtc_shim library not loaded")

	// ErrLibraryNotFound is returned when the shim library cannot be found.
	ErrLibraryNotFound = errors.New("librtc_shim library not found")

	// FFI error sentinels - these match shim error codes and support errors.Is().
	ErrInvalidParam = errors.New("invalid parameter")
	ErrInitFailed   = errors.New("initialization failed")
	ErrParseFailed  = errors.New("parse failed")
	ErrOutOfMemory  = errors.New("out of memory")
	ErrNotSupported = errors.New("not supported")
	ErrNotFound     = errors.New("not found")
)

// Error codes from shim (int32 to match C int)
const (
	RTCOk              int32 = 0
	RTCErrInvalidParam int32 = -1
	RTCErrInitFailed   int32 = -2
	RTCErrParseFailed  int32 = -3
	RTCErrOutOfMemory  int32 = -4
	RTCErrNotSupported int32 = -5
	RTCErrNotFound     int32 = -6
)

// RTCError converts a shim error code to a Go error.
// Returns nil for RTCOk.
func RTCError(code int32) error {
	switch code {
	case RTCOk:
		return nil
	case RTCErrInvalidParam:
		return ErrInvalidParam
	case RTCErrInitFailed:
		return ErrInitFailed
	case RTCErrParseFailed:
		return ErrParseFailed
	case RTCErrOutOfMemory:
		return ErrOutOfMemory
	case RTCErrNotSupported:
		return ErrNotSupported
	case RTCErrNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("unknown shim error code %d", code)
	}
}

var (
	libHandle uintptr
	libLoaded atomic.Bool // Use atomic for lock-free reads
	libMu     sync.Mutex  // Still used for load/unload operations
)

// Function pointers are declared in func_vars.go and populated by
// registerFunctions() in func_bind.go.

// LoadLibrary loads the librtc_shim shared library.
// It searches in the following locations:
// 1. Path specified by LIBRTC_PATH environment variable
// 2. ./lib/{os}_{arch}/ (module-relative)
// 3. System library paths
func LoadLibrary() error {
	libMu.Lock()
	defer libMu.Unlock()

	if libLoaded.Load() {
		return nil
	}

	libPath, ok := findLocalLibrary()
	if !ok {
		// Fall back to the system loader's search path.
		libPath = getLibraryName()
	}

	handle, err := dlopenLibrary(libPath, RTLD_NOW|RTLD_GLOBAL)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", libPath, err)
	}

	libHandle = handle
	if err := registerFunctions(); err != nil {
		_ = dlcloseLibrary(handle)
		return err
	}

	libLoaded.Store(true)
	return nil
}

// MustLoadLibrary loads the library and panics on failure.
func MustLoadLibrary() {
	if err := LoadLibrary(); err != nil {
		panic(fmt.Sprintf("librtc: %v", err))
	}
}

// IsLoaded returns true if the shim library is loaded.
// Thread-safe due to atomic.Bool.
func IsLoaded() bool {
	return libLoaded.Load()
}

// Close unloads the shim library.
func Close() error {
	libMu.Lock()
	defer libMu.Unlock()

	if !libLoaded.Load() {
		return nil
	}

	if err := dlcloseLibrary(libHandle); err != nil {
		return err
	}

	libLoaded.Store(false)
	libHandle = 0
	return nil
}

// ExpectedShimVersion is the shim API version this Go code expects.
// Must match kShimVersion in shim/rtc_common.cc.
const ExpectedShimVersion = "0.1.0"

// ErrVersionMismatch is returned when the shim version doesn't match.
var ErrVersionMismatch = errors.New("shim version mismatch")

// ShimVersion returns the shim library version.
// Returns empty string if library is not loaded.
func ShimVersion() string {
	if !libLoaded.Load() || rtcVersion == nil {
		return ""
	}
	ptr := rtcVersion()
	if ptr == 0 {
		return ""
	}
	return GoString(unsafe.Pointer(ptr))
}

// CheckVersion verifies the shim version matches what this Go code expects.
// Returns nil if versions match, ErrVersionMismatch otherwise.
func CheckVersion() error {
	if !libLoaded.Load() {
		return ErrLibraryNotLoaded
	}
	if v := ShimVersion(); v != ExpectedShimVersion {
		return fmt.Errorf("%w: shim version %q, expected %q", ErrVersionMismatch, v, ExpectedShimVersion)
	}
	return nil
}

func findLocalLibrary() (string, bool) {
	// Check environment variable first
	if path := os.Getenv("LIBRTC_PATH"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}

	libName := getLibraryName()
	platformDir := fmt.Sprintf("%s_%s", runtime.GOOS, runtime.GOARCH)

	// Build search paths
	var searchPaths []string

	// Check relative to executable
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		searchPaths = append(searchPaths, filepath.Join(execDir, "lib", platformDir, libName))
	}

	// Check working directory
	if wd, err := os.Getwd(); err == nil {
		searchPaths = append(searchPaths,
			filepath.Join(wd, "lib", platformDir, libName),
			filepath.Join(wd, "..", "lib", platformDir, libName),
		)
	}

	// Check relative to this source file (for development/testing)
	_, thisFile, _, ok := runtime.Caller(0)
	if ok {
		// thisFile is .../internal/ffi/lib.go, go up to module root
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
		searchPaths = append(searchPaths, filepath.Join(moduleRoot, "lib", platformDir, libName))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			absPath, _ := filepath.Abs(path)
			return absPath, true
		}
	}

	return "", false
}

func getLibraryName() string {
	switch runtime.GOOS {
	case "darwin":
		return "librtc_shim.dylib"
	case "windows":
		return "rtc_shim.dll"
	default:
		return "librtc_shim.so"
	}
}
