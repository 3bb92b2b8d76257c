package ffi

import (
	"log"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// safeCallback wraps a callback invocation with panic recovery.
// This prevents panics in user callbacks from unwinding through C stack
// frames, which would cause undefined behavior.
func safeCallback(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[librtc] panic recovered in callback: %v", r)
		}
	}()
	fn()
}

// CreateDescResult receives the outcome of one create-offer/answer call.
// errMsg is empty on success. Invoked exactly once, on whichever thread
// the engine signals completion from.
type CreateDescResult func(sdpType int, sdp string, errMsg string)

// SetDescResult receives the outcome of one set-description call.
// errMsg is empty on success. Invoked exactly once, on whichever thread
// the engine signals completion from.
type SetDescResult func(errMsg string)

// One-shot completion registries. The shim's completion observers
// self-destruct after firing, so entries are removed on first dispatch.
var (
	completionMu      sync.Mutex
	completionSeq     uintptr
	createDescPending = make(map[uintptr]CreateDescResult)
	setDescPending    = make(map[uintptr]SetDescResult)

	// purego trampoline pointers (must be kept alive)
	createDescTrampoline uintptr
	setDescTrampoline    uintptr
	completionReady      bool
	callbackInitMu       sync.Mutex
)

//go:nocheckptr
func initCompletionTrampolines() {
	callbackInitMu.Lock()
	defer callbackInitMu.Unlock()

	if completionReady {
		return
	}

	// Signature: void(ctx, const char* error, int type, const char* sdp)
	// NOTE: C uses 'int' (32-bit) for the type, so we must use int32 to match
	createDescTrampoline = purego.NewCallback(func(ctx, errPtr uintptr, sdpType int32, sdpPtr uintptr) {
		completionMu.Lock()
		done, ok := createDescPending[ctx]
		delete(createDescPending, ctx)
		completionMu.Unlock()

		if !ok || done == nil {
			return
		}

		// Copy strings out of C memory before the observer frees itself.
		errMsg := GoString(unsafe.Pointer(errPtr))
		sdp := GoString(unsafe.Pointer(sdpPtr))
		safeCallback(func() { done(int(sdpType), sdp, errMsg) })
	})

	// Signature: void(ctx, const char* error)
	setDescTrampoline = purego.NewCallback(func(ctx, errPtr uintptr) {
		completionMu.Lock()
		done, ok := setDescPending[ctx]
		delete(setDescPending, ctx)
		completionMu.Unlock()

		if !ok || done == nil {
			return
		}

		errMsg := GoString(unsafe.Pointer(errPtr))
		safeCallback(func() { done(errMsg) })
	})

	completionReady = true
}

func registerCreateDesc(done CreateDescResult) uintptr {
	completionMu.Lock()
	defer completionMu.Unlock()
	completionSeq++
	createDescPending[completionSeq] = done
	return completionSeq
}

func registerSetDesc(done SetDescResult) uintptr {
	completionMu.Lock()
	defer completionMu.Unlock()
	completionSeq++
	setDescPending[completionSeq] = done
	return completionSeq
}

// Run pumps the engine's message loop on the calling thread. Blocks
// indefinitely; meant to be called on a dedicated goroutine locked to an
// OS thread.
func Run() {
	if !libLoaded.Load() || rtcRun == nil {
		return
	}
	runtime.LockOSThread()
	rtcRun()
}

// CreatePeerConnection builds the engine factory and a native connection.
// Returns the connection handle, or an error when the shim reports
// construction failure (never a zero handle without an error).
func CreatePeerConnection(cfg *Config) (uintptr, error) {
	if !libLoaded.Load() || rtcCreatePeerConnection == nil {
		return 0, ErrLibraryNotLoaded
	}

	data := buildRawConfig(cfg)
	handle := rtcCreatePeerConnection(data.raw.Ptr())
	runtime.KeepAlive(data)
	if handle == 0 {
		return 0, ErrInitFailed
	}
	return handle, nil
}

// ClosePeerConnection releases the native connection and factory.
func ClosePeerConnection(pc uintptr) {
	if !libLoaded.Load() || rtcClose == nil {
		return
	}
	rtcClose(pc)
}

// AddICECandidate submits a remote candidate to the native connection.
// The engine's own parser rejects malformed input; its rejection comes
// back as a shim error code.
func AddICECandidate(pc uintptr, candidate, sdpMid string, sdpMLineIndex int) error {
	if !libLoaded.Load() || rtcAddIceCandidate == nil {
		return ErrLibraryNotLoaded
	}

	candidateCStr := CString(candidate)
	sdpMidCStr := CString(sdpMid)
	result := rtcAddIceCandidate(
		pc,
		ByteSlicePtr(candidateCStr),
		ByteSlicePtr(sdpMidCStr),
		int32(sdpMLineIndex),
	)
	runtime.KeepAlive(candidateCStr)
	runtime.KeepAlive(sdpMidCStr)
	return RTCError(result)
}

// CreateOffer asks the engine for an SDP offer. done fires exactly once
// unless an error is returned here, in which case it never fires.
func CreateOffer(pc uintptr, done CreateDescResult) error {
	if !libLoaded.Load() || rtcCreateOffer == nil {
		return ErrLibraryNotLoaded
	}
	initCompletionTrampolines()
	rtcCreateOffer(pc, createDescTrampoline, registerCreateDesc(done))
	return nil
}

// CreateAnswer asks the engine for an SDP answer. Same contract as
// CreateOffer.
func CreateAnswer(pc uintptr, done CreateDescResult) error {
	if !libLoaded.Load() || rtcCreateAnswer == nil {
		return ErrLibraryNotLoaded
	}
	initCompletionTrampolines()
	rtcCreateAnswer(pc, createDescTrampoline, registerCreateDesc(done))
	return nil
}

// SetLocalDescription applies a local description. The shim copies the
// SDP before returning, so the Go allocation only needs to survive the
// call itself.
func SetLocalDescription(pc uintptr, sdpType int, sdp string, done SetDescResult) error {
	if !libLoaded.Load() || rtcSetLocalDescription == nil {
		return ErrLibraryNotLoaded
	}
	initCompletionTrampolines()

	sdpCStr := CString(sdp)
	rtcSetLocalDescription(pc, int32(sdpType), ByteSlicePtr(sdpCStr), setDescTrampoline, registerSetDesc(done))
	runtime.KeepAlive(sdpCStr)
	return nil
}

// SetRemoteDescription applies a remote description. Same contract as
// SetLocalDescription.
func SetRemoteDescription(pc uintptr, sdpType int, sdp string, done SetDescResult) error {
	if !libLoaded.Load() || rtcSetRemoteDescription == nil {
		return ErrLibraryNotLoaded
	}
	initCompletionTrampolines()

	sdpCStr := CString(sdp)
	rtcSetRemoteDescription(pc, int32(sdpType), ByteSlicePtr(sdpCStr), setDescTrampoline, registerSetDesc(done))
	runtime.KeepAlive(sdpCStr)
	return nil
}

// ============================================================================
// Observer event callbacks
// ============================================================================

// StateCallback is called when a signaling/ICE state changes.
type StateCallback func(state int)

// CandidateCallback is called when the engine gathers a local candidate.
type CandidateCallback func(candidate, sdpMid string, sdpMLineIndex int)

// TrackCallback is called when a remote track is added.
type TrackCallback func(trackID, kind, streamID string)

// LabelCallback is called when a remote data channel opens.
type LabelCallback func(label string)

// VoidCallback is called for payload-less events.
type VoidCallback func()

var (
	observerMu sync.RWMutex

	signalingCallbacks     = make(map[uintptr]StateCallback)
	iceGatheringCallbacks  = make(map[uintptr]StateCallback)
	iceConnectionCallbacks = make(map[uintptr]StateCallback)
	candidateCallbacks     = make(map[uintptr]CandidateCallback)
	trackCallbacks         = make(map[uintptr]TrackCallback)
	dataChannelCallbacks   = make(map[uintptr]LabelCallback)
	renegotiationCallbacks = make(map[uintptr]VoidCallback)

	// purego trampoline pointers (must be kept alive)
	signalingTrampoline     uintptr
	iceGatheringTrampoline  uintptr
	iceConnectionTrampoline uintptr
	candidateTrampoline     uintptr
	trackTrampoline         uintptr
	dataChannelTrampoline   uintptr
	renegotiationTrampoline uintptr
	observerReady           bool
)

func stateTrampoline(registry map[uintptr]StateCallback) uintptr {
	// NOTE: C uses 'int' (32-bit) for state, so we must use int32 to match
	return purego.NewCallback(func(ctx uintptr, state int32) {
		observerMu.RLock()
		cb, ok := registry[ctx]
		observerMu.RUnlock()

		if ok && cb != nil {
			safeCallback(func() { cb(int(state)) })
		}
	})
}

//go:nocheckptr
func initObserverTrampolines() {
	callbackInitMu.Lock()
	defer callbackInitMu.Unlock()

	if observerReady {
		return
	}

	signalingTrampoline = stateTrampoline(signalingCallbacks)
	iceGatheringTrampoline = stateTrampoline(iceGatheringCallbacks)
	iceConnectionTrampoline = stateTrampoline(iceConnectionCallbacks)

	// Signature: void(ctx, const char* candidate, const char* sdp_mid, int sdp_mline_index)
	candidateTrampoline = purego.NewCallback(func(ctx, candidatePtr, sdpMidPtr uintptr, sdpMLineIndex int32) {
		observerMu.RLock()
		cb, ok := candidateCallbacks[ctx]
		observerMu.RUnlock()

		if ok && cb != nil {
			candidate := GoString(unsafe.Pointer(candidatePtr))
			sdpMid := GoString(unsafe.Pointer(sdpMidPtr))
			safeCallback(func() { cb(candidate, sdpMid, int(sdpMLineIndex)) })
		}
	})

	// Signature: void(ctx, const char* track_id, const char* kind, const char* stream_id)
	trackTrampoline = purego.NewCallback(func(ctx, trackIDPtr, kindPtr, streamIDPtr uintptr) {
		observerMu.RLock()
		cb, ok := trackCallbacks[ctx]
		observerMu.RUnlock()

		if ok && cb != nil {
			trackID := GoString(unsafe.Pointer(trackIDPtr))
			kind := GoString(unsafe.Pointer(kindPtr))
			streamID := GoString(unsafe.Pointer(streamIDPtr))
			safeCallback(func() { cb(trackID, kind, streamID) })
		}
	})

	// Signature: void(ctx, const char* label)
	dataChannelTrampoline = purego.NewCallback(func(ctx, labelPtr uintptr) {
		observerMu.RLock()
		cb, ok := dataChannelCallbacks[ctx]
		observerMu.RUnlock()

		if ok && cb != nil {
			label := GoString(unsafe.Pointer(labelPtr))
			safeCallback(func() { cb(label) })
		}
	})

	renegotiationTrampoline = purego.NewCallback(func(ctx uintptr) {
		observerMu.RLock()
		cb, ok := renegotiationCallbacks[ctx]
		observerMu.RUnlock()

		if ok && cb != nil {
			safeCallback(cb)
		}
	})

	observerReady = true
}

// SetOnSignalingChange sets the signaling-state-change callback.
func SetOnSignalingChange(pc uintptr, cb StateCallback) {
	if !libLoaded.Load() || rtcSetOnSignalingChange == nil {
		return
	}
	initObserverTrampolines()
	observerMu.Lock()
	signalingCallbacks[pc] = cb
	observerMu.Unlock()
	rtcSetOnSignalingChange(pc, signalingTrampoline, pc)
}

// SetOnICEGatheringChange sets the ICE-gathering-state-change callback.
func SetOnICEGatheringChange(pc uintptr, cb StateCallback) {
	if !libLoaded.Load() || rtcSetOnIceGatheringChange == nil {
		return
	}
	initObserverTrampolines()
	observerMu.Lock()
	iceGatheringCallbacks[pc] = cb
	observerMu.Unlock()
	rtcSetOnIceGatheringChange(pc, iceGatheringTrampoline, pc)
}

// SetOnICEConnectionChange sets the ICE-connection-state-change callback.
func SetOnICEConnectionChange(pc uintptr, cb StateCallback) {
	if !libLoaded.Load() || rtcSetOnIceConnectionChange == nil {
		return
	}
	initObserverTrampolines()
	observerMu.Lock()
	iceConnectionCallbacks[pc] = cb
	observerMu.Unlock()
	rtcSetOnIceConnectionChange(pc, iceConnectionTrampoline, pc)
}

// SetOnICECandidate sets the gathered-candidate callback.
func SetOnICECandidate(pc uintptr, cb CandidateCallback) {
	if !libLoaded.Load() || rtcSetOnIceCandidate == nil {
		return
	}
	initObserverTrampolines()
	observerMu.Lock()
	candidateCallbacks[pc] = cb
	observerMu.Unlock()
	rtcSetOnIceCandidate(pc, candidateTrampoline, pc)
}

// SetOnTrack sets the remote-track-added callback.
func SetOnTrack(pc uintptr, cb TrackCallback) {
	if !libLoaded.Load() || rtcSetOnTrack == nil {
		return
	}
	initObserverTrampolines()
	observerMu.Lock()
	trackCallbacks[pc] = cb
	observerMu.Unlock()
	rtcSetOnTrack(pc, trackTrampoline, pc)
}

// SetOnDataChannel sets the remote-data-channel callback.
func SetOnDataChannel(pc uintptr, cb LabelCallback) {
	if !libLoaded.Load() || rtcSetOnDataChannel == nil {
		return
	}
	initObserverTrampolines()
	observerMu.Lock()
	dataChannelCallbacks[pc] = cb
	observerMu.Unlock()
	rtcSetOnDataChannel(pc, dataChannelTrampoline, pc)
}

// SetOnRenegotiationNeeded sets the renegotiation-needed callback.
func SetOnRenegotiationNeeded(pc uintptr, cb VoidCallback) {
	if !libLoaded.Load() || rtcSetOnRenegotiationNeeded == nil {
		return
	}
	initObserverTrampolines()
	observerMu.Lock()
	renegotiationCallbacks[pc] = cb
	observerMu.Unlock()
	rtcSetOnRenegotiationNeeded(pc, renegotiationTrampoline, pc)
}

// UnregisterCallbacks removes all observer callbacks for a connection.
// Call before ClosePeerConnection so late events from the engine's worker
// threads dispatch to nothing instead of a dead connection.
func UnregisterCallbacks(pc uintptr) {
	observerMu.Lock()
	delete(signalingCallbacks, pc)
	delete(iceGatheringCallbacks, pc)
	delete(iceConnectionCallbacks, pc)
	delete(candidateCallbacks, pc)
	delete(trackCallbacks, pc)
	delete(dataChannelCallbacks, pc)
	delete(renegotiationCallbacks, pc)
	observerMu.Unlock()
}
