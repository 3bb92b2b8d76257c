package ffi

// Shim function pointers, populated by registerFunctions() after the
// library is loaded. Signatures use uintptr for C pointers and int32 for
// C int, matching the shim ABI in shim/rtc.h.
var (
	rtcVersion func() uintptr

	// rtc_run pumps the engine's message loop on the calling thread.
	// Blocks until the engine shuts the loop down (normally never).
	rtcRun func()

	// rtc_create_peer_connection builds the engine factory and a native
	// connection. Returns 0 when either construction fails.
	rtcCreatePeerConnection func(config uintptr) uintptr

	// rtc_close releases the native connection and its factory reference.
	rtcClose func(pc uintptr)

	// rtc_add_ice_candidate returns a shim error code; the engine's own
	// candidate parser is the authority on malformed input.
	rtcAddIceCandidate func(pc, candidate, sdpMid uintptr, sdpMLineIndex int32) int32

	// Description operations complete asynchronously through a one-shot
	// callback: cb(ctx, error_cstr, type, sdp_cstr) for create,
	// cb(ctx, error_cstr) for set. error_cstr is null on success.
	rtcCreateOffer          func(pc, cb, ctx uintptr)
	rtcCreateAnswer         func(pc, cb, ctx uintptr)
	rtcSetLocalDescription  func(pc uintptr, sdpType int32, sdp, cb, ctx uintptr)
	rtcSetRemoteDescription func(pc uintptr, sdpType int32, sdp, cb, ctx uintptr)

	// Observer event setters. Each registers cb(ctx, ...) for the lifetime
	// of the connection; the shim retains its own observer reference until
	// rtc_close returns.
	rtcSetOnSignalingChange     func(pc, cb, ctx uintptr)
	rtcSetOnIceGatheringChange  func(pc, cb, ctx uintptr)
	rtcSetOnIceConnectionChange func(pc, cb, ctx uintptr)
	rtcSetOnIceCandidate        func(pc, cb, ctx uintptr)
	rtcSetOnTrack               func(pc, cb, ctx uintptr)
	rtcSetOnDataChannel         func(pc, cb, ctx uintptr)
	rtcSetOnRenegotiationNeeded func(pc, cb, ctx uintptr)
)
