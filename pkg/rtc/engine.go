// Package rtc exposes a peer-connection engine's signaling and
// media-negotiation surface through a flat, callback-based API: plain
// data descriptors at the boundary, single-shot completion callbacks
// with opaque caller context, and a tagged event stream fanned out to an
// external sink.
//
// The engine itself - connection establishment, codec negotiation,
// DTLS/SRTP, transport - is an external capability behind the Engine
// interface. Two implementations ship: the native librtc shim bound via
// purego (NewNativeEngine) and a pure-Go engine over pion/webrtc
// (NewPionEngine).
package rtc

import (
	"fmt"

	"github.com/pion/rtp"

	"github.com/mycrl/librtc-go/internal/ffi"
)

// DescriptionDone receives the one-shot outcome of a create-offer or
// create-answer call. Exactly one of the two methods is invoked, exactly
// once, on whichever thread the engine signals completion from.
type DescriptionDone interface {
	OnSuccess(desc SessionDescription)
	OnFailure(err error)
}

// ApplyDone receives the one-shot outcome of a set-description call.
// Same contract as DescriptionDone.
type ApplyDone interface {
	OnSuccess()
	OnFailure(err error)
}

// EngineObserver receives every event the engine reports for one
// connection. The engine retains its reference to the observer until
// the connection is fully released, so implementations must tolerate
// calls after Close.
type EngineObserver interface {
	OnSignalingChange(s SignalingState)
	OnICEGatheringChange(s ICEGatheringState)
	OnICEConnectionChange(s ICEConnectionState)
	OnICECandidate(c ICECandidate)
	OnTrack(t TrackInfo)
	OnDataChannel(label string)
	OnRenegotiationNeeded()
}

// TrackWriter feeds RTP packets into an attached local track.
type TrackWriter interface {
	WriteRTP(p *rtp.Packet) error
}

// Conn is one native connection. All description operations are
// asynchronous: they return after submission and deliver their result
// through the completion interface, with no ordering guarantee across
// independently submitted operations.
type Conn interface {
	CreateOffer(done DescriptionDone)
	CreateAnswer(done DescriptionDone)
	SetLocalDescription(desc SessionDescription, done ApplyDone)
	SetRemoteDescription(desc SessionDescription, done ApplyDone)
	AddICECandidate(c ICECandidate) error
	AddTrack(t MediaTrack) (TrackWriter, error)
	Close()
}

// Engine is the fixed capability surface of the peer-connection engine.
type Engine interface {
	// NewConnection builds a native connection with the observer
	// registered for its full lifetime. A failed construction returns an
	// error and no connection.
	NewConnection(cfg Configuration, obs EngineObserver) (Conn, error)

	// Run pumps the engine's processing loop on the calling goroutine.
	// Blocks indefinitely; not cancellable from this layer.
	Run()
}

// nativeEngine is the librtc shim loaded as a shared library.
type nativeEngine struct{}

// NewNativeEngine loads the librtc shim library and returns an engine
// backed by it. See internal/ffi for the library search order.
func NewNativeEngine() (Engine, error) {
	if err := ffi.LoadLibrary(); err != nil {
		return nil, err
	}
	if err := ffi.CheckVersion(); err != nil {
		return nil, err
	}
	return nativeEngine{}, nil
}

func (nativeEngine) Run() {
	ffi.Run()
}

func (nativeEngine) NewConnection(cfg Configuration, obs EngineObserver) (Conn, error) {
	handle, err := ffi.CreatePeerConnection(toShimConfig(cfg))
	if err != nil {
		return nil, err
	}

	// The shim keeps its own observer reference and may dispatch from
	// engine worker threads until rtc_close returns; UnregisterCallbacks
	// in Close is what detaches these closures first.
	ffi.SetOnSignalingChange(handle, func(state int) {
		obs.OnSignalingChange(SignalingState(state))
	})
	ffi.SetOnICEGatheringChange(handle, func(state int) {
		obs.OnICEGatheringChange(ICEGatheringState(state))
	})
	ffi.SetOnICEConnectionChange(handle, func(state int) {
		obs.OnICEConnectionChange(ICEConnectionState(state))
	})
	ffi.SetOnICECandidate(handle, func(candidate, sdpMid string, sdpMLineIndex int) {
		obs.OnICECandidate(ICECandidate{
			Candidate:     candidate,
			SDPMid:        sdpMid,
			SDPMLineIndex: uint16(sdpMLineIndex),
		})
	})
	ffi.SetOnTrack(handle, func(trackID, kind, streamID string) {
		obs.OnTrack(TrackInfo{ID: trackID, Kind: kind, StreamID: streamID})
	})
	ffi.SetOnDataChannel(handle, func(label string) {
		obs.OnDataChannel(label)
	})
	ffi.SetOnRenegotiationNeeded(handle, func() {
		obs.OnRenegotiationNeeded()
	})

	return &nativeConn{handle: handle}, nil
}

type nativeConn struct {
	handle uintptr
}

func (c *nativeConn) CreateOffer(done DescriptionDone) {
	err := ffi.CreateOffer(c.handle, func(sdpType int, sdp, errMsg string) {
		if errMsg != "" {
			done.OnFailure(fmt.Errorf("%w: %s", ErrOperationFailed, errMsg))
			return
		}
		done.OnSuccess(SessionDescription{Type: SDPType(sdpType), SDP: sdp})
	})
	if err != nil {
		done.OnFailure(err)
	}
}

func (c *nativeConn) CreateAnswer(done DescriptionDone) {
	err := ffi.CreateAnswer(c.handle, func(sdpType int, sdp, errMsg string) {
		if errMsg != "" {
			done.OnFailure(fmt.Errorf("%w: %s", ErrOperationFailed, errMsg))
			return
		}
		done.OnSuccess(SessionDescription{Type: SDPType(sdpType), SDP: sdp})
	})
	if err != nil {
		done.OnFailure(err)
	}
}

func (c *nativeConn) SetLocalDescription(desc SessionDescription, done ApplyDone) {
	err := ffi.SetLocalDescription(c.handle, int(desc.Type), desc.SDP, func(errMsg string) {
		if errMsg != "" {
			done.OnFailure(fmt.Errorf("%w: %s", ErrOperationFailed, errMsg))
			return
		}
		done.OnSuccess()
	})
	if err != nil {
		done.OnFailure(err)
	}
}

func (c *nativeConn) SetRemoteDescription(desc SessionDescription, done ApplyDone) {
	err := ffi.SetRemoteDescription(c.handle, int(desc.Type), desc.SDP, func(errMsg string) {
		if errMsg != "" {
			done.OnFailure(fmt.Errorf("%w: %s", ErrOperationFailed, errMsg))
			return
		}
		done.OnSuccess()
	})
	if err != nil {
		done.OnFailure(err)
	}
}

func (c *nativeConn) AddICECandidate(cand ICECandidate) error {
	err := ffi.AddICECandidate(c.handle, cand.Candidate, cand.SDPMid, int(cand.SDPMLineIndex))
	if err != nil {
		// The engine's own candidate parser rejected the input.
		return fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return nil
}

func (c *nativeConn) AddTrack(t MediaTrack) (TrackWriter, error) {
	// The shim exposes no media-track path yet.
	return nil, fmt.Errorf("%w: media tracks require the pion engine", ErrNotSupported)
}

func (c *nativeConn) Close() {
	ffi.UnregisterCallbacks(c.handle)
	ffi.ClosePeerConnection(c.handle)
}
