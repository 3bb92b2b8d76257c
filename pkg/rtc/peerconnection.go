package rtc

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pion/rtp"
)

// State is the lifecycle phase of a PeerConnection handle. It tracks the
// handle, not the underlying transport: Negotiating means an offer has
// been requested, nothing more.
type State int32

const (
	StateCreated State = iota
	StateNegotiating
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateNegotiating:
		return "negotiating"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// PeerConnection owns one engine connection and exposes its signaling
// surface through flat operations and single-shot completion callbacks.
// All methods are safe for concurrent use. After Close every operation
// reports ErrPeerConnectionClosed; asynchronous ones report it through
// their callback, preserving the exactly-once contract.
type PeerConnection struct {
	conn     Conn
	observer *connectionObserver
	state    atomic.Int32

	mu     sync.Mutex
	tracks map[string]TrackWriter
}

// New creates a peer connection on the given engine. The sink receives
// every connection event until Close; a nil sink discards events.
// Construction failures wrap ErrConstruction.
func New(engine Engine, cfg Configuration, sink EventSink) (*PeerConnection, error) {
	obs := newConnectionObserver(sink)
	conn, err := engine.NewConnection(cfg, obs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConstruction, err)
	}
	return &PeerConnection{
		conn:     conn,
		observer: obs,
		tracks:   make(map[string]TrackWriter),
	}, nil
}

// State reports the handle's current lifecycle phase.
func (pc *PeerConnection) State() State {
	return State(pc.state.Load())
}

// Close releases the connection. The event sink is detached before the
// engine tears the connection down, so no events are delivered after
// Close returns. Safe to call more than once; later calls are no-ops.
func (pc *PeerConnection) Close() {
	if State(pc.state.Swap(int32(StateClosed))) == StateClosed {
		return
	}
	pc.observer.detach()
	pc.conn.Close()

	pc.mu.Lock()
	pc.tracks = nil
	pc.mu.Unlock()
}

func (pc *PeerConnection) closed() bool {
	return State(pc.state.Load()) == StateClosed
}

// CreateOffer asks the engine to generate an offer describing local
// capabilities. The result arrives through fn exactly once, possibly on
// an engine thread and possibly before CreateOffer returns. ctx is
// handed back to fn untouched.
func (pc *PeerConnection) CreateOffer(fn CreateDescriptionFunc, ctx uintptr) {
	bridge := newCreateDescBridge(fn, ctx)
	if pc.closed() {
		bridge.OnFailure(ErrPeerConnectionClosed)
		return
	}
	pc.state.CompareAndSwap(int32(StateCreated), int32(StateNegotiating))
	pc.conn.CreateOffer(bridge)
}

// CreateAnswer asks the engine to generate an answer to the remote
// offer applied earlier. Completion contract matches CreateOffer.
func (pc *PeerConnection) CreateAnswer(fn CreateDescriptionFunc, ctx uintptr) {
	bridge := newCreateDescBridge(fn, ctx)
	if pc.closed() {
		bridge.OnFailure(ErrPeerConnectionClosed)
		return
	}
	pc.state.CompareAndSwap(int32(StateCreated), int32(StateNegotiating))
	pc.conn.CreateAnswer(bridge)
}

// SetLocalDescription applies a description as the local side of the
// negotiation. fn fires exactly once with the outcome.
func (pc *PeerConnection) SetLocalDescription(desc SessionDescription, fn SetDescriptionFunc, ctx uintptr) {
	bridge := newApplyDescBridge(fn, ctx)
	if pc.closed() {
		bridge.OnFailure(ErrPeerConnectionClosed)
		return
	}
	if !desc.Type.valid() {
		bridge.OnFailure(fmt.Errorf("%w: invalid sdp type %d", ErrConversion, int(desc.Type)))
		return
	}
	pc.conn.SetLocalDescription(desc, bridge)
}

// SetRemoteDescription applies a description received from the remote
// peer. fn fires exactly once with the outcome.
func (pc *PeerConnection) SetRemoteDescription(desc SessionDescription, fn SetDescriptionFunc, ctx uintptr) {
	bridge := newApplyDescBridge(fn, ctx)
	if pc.closed() {
		bridge.OnFailure(ErrPeerConnectionClosed)
		return
	}
	if !desc.Type.valid() {
		bridge.OnFailure(fmt.Errorf("%w: invalid sdp type %d", ErrConversion, int(desc.Type)))
		return
	}
	pc.conn.SetRemoteDescription(desc, bridge)
}

// AddICECandidate hands a remote candidate to the engine's ICE agent.
// A candidate the engine cannot parse is reported as an error, not
// silently dropped.
func (pc *PeerConnection) AddICECandidate(c ICECandidate) error {
	if pc.closed() {
		return ErrPeerConnectionClosed
	}
	if c.Candidate == "" {
		return fmt.Errorf("%w: empty candidate", ErrConversion)
	}
	return pc.conn.AddICECandidate(c)
}

// AddTrack attaches a local media track. On engines without a media
// path this reports ErrNotSupported. The returned writer stays valid
// until Close.
func (pc *PeerConnection) AddTrack(t MediaTrack) (TrackWriter, error) {
	if pc.closed() {
		return nil, ErrPeerConnectionClosed
	}
	if t.ID == "" || t.Kind == "" {
		return nil, fmt.Errorf("%w: track id and kind are required", ErrConversion)
	}

	w, err := pc.conn.AddTrack(t)
	if err != nil {
		return nil, err
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.tracks == nil {
		return nil, ErrPeerConnectionClosed
	}
	pc.tracks[t.ID] = w
	return w, nil
}

// WriteRTP writes one RTP packet to a track previously attached with
// AddTrack, addressed by track id.
func (pc *PeerConnection) WriteRTP(trackID string, p *rtp.Packet) error {
	pc.mu.Lock()
	w := pc.tracks[trackID]
	pc.mu.Unlock()

	if pc.closed() {
		return ErrPeerConnectionClosed
	}
	if w == nil {
		return fmt.Errorf("%w: %q", ErrTrackNotFound, trackID)
	}
	return w.WriteRTP(p)
}
