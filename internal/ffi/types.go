package ffi

import (
	"unsafe"
)

// RawICEServer matches RTCIceServer in shim/rtc.h.
type RawICEServer struct {
	URLs       uintptr // Pointer to array of C strings
	URLCount   int32
	_          int32 // padding
	Username   *byte // C string
	Credential *byte // C string
}

// RawConfig matches RTCPeerConnectionConfigure in shim/rtc.h.
// Policy fields are 1-based enums; 0 leaves the engine default.
type RawConfig struct {
	BundlePolicy         int32
	IceTransportPolicy   int32
	RtcpMuxPolicy        int32
	IceCandidatePoolSize int32
	PeerIdentity         *byte // C string
	IceServers           uintptr
	IceServerCount       int32
	_                    int32 // padding
}

// Ptr returns a pointer to the config as uintptr for FFI calls.
func (c *RawConfig) Ptr() uintptr {
	return uintptr(unsafe.Pointer(c))
}

// ICEServer is the Go-side shape of one shim ICE server entry.
type ICEServer struct {
	URLs       []string
	Username   string
	Credential string
}

// Config is the Go-side shape of the shim connection configuration.
type Config struct {
	BundlePolicy         int
	IceTransportPolicy   int
	RtcpMuxPolicy        int
	PeerIdentity         string
	IceServers           []ICEServer
	IceCandidatePoolSize int
}

// configData holds the raw config and every allocation it points into, so
// a single reference keeps it all alive across the FFI call.
type configData struct {
	raw        RawConfig
	iceServers []RawICEServer
	urlArrays  [][]uintptr
	strings    [][]byte
}

func (d *configData) cstring(s string) *byte {
	b := CString(s)
	d.strings = append(d.strings, b)
	return &b[0]
}

// buildRawConfig converts a Config to the shim's raw layout. The returned
// configData must be referenced until the FFI call returns.
func buildRawConfig(cfg *Config) *configData {
	data := &configData{
		raw: RawConfig{
			BundlePolicy:         int32(cfg.BundlePolicy),
			IceTransportPolicy:   int32(cfg.IceTransportPolicy),
			RtcpMuxPolicy:        int32(cfg.RtcpMuxPolicy),
			IceCandidatePoolSize: int32(cfg.IceCandidatePoolSize),
		},
	}

	if cfg.PeerIdentity != "" {
		data.raw.PeerIdentity = data.cstring(cfg.PeerIdentity)
	}

	if len(cfg.IceServers) > 0 {
		data.iceServers = make([]RawICEServer, len(cfg.IceServers))
		data.urlArrays = make([][]uintptr, len(cfg.IceServers))

		for i, server := range cfg.IceServers {
			if len(server.URLs) > 0 {
				urlPtrs := make([]uintptr, len(server.URLs))
				for j, url := range server.URLs {
					urlPtrs[j] = uintptr(unsafe.Pointer(data.cstring(url)))
				}
				data.urlArrays[i] = urlPtrs
				data.iceServers[i].URLs = uintptr(unsafe.Pointer(&urlPtrs[0]))
				data.iceServers[i].URLCount = int32(len(server.URLs))
			}
			if server.Username != "" {
				data.iceServers[i].Username = data.cstring(server.Username)
			}
			if server.Credential != "" {
				data.iceServers[i].Credential = data.cstring(server.Credential)
			}
		}
		data.raw.IceServers = uintptr(unsafe.Pointer(&data.iceServers[0]))
		data.raw.IceServerCount = int32(len(data.iceServers))
	}

	return data
}

// CString converts a Go string to a NUL-terminated byte slice.
func CString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

// GoString converts a NUL-terminated C string to a Go string.
func GoString(ptr unsafe.Pointer) string {
	if ptr == nil {
		return ""
	}
	var n int
	for *(*byte)(unsafe.Add(ptr, n)) != 0 {
		n++
	}
	if n == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(ptr), n))
}

// ByteSlicePtr returns a uintptr to the first element of a byte slice.
// Returns 0 if the slice is empty.
func ByteSlicePtr(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}
