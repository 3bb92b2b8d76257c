package rtc

// SignalingState represents the engine-tracked negotiation phase.
// Reported, not managed, by this layer.
type SignalingState int

const (
	SignalingStateStable SignalingState = iota
	SignalingStateHaveLocalOffer
	SignalingStateHaveRemoteOffer
	SignalingStateHaveLocalPranswer
	SignalingStateHaveRemotePranswer
	SignalingStateClosed
)

func (s SignalingState) String() string {
	switch s {
	case SignalingStateStable:
		return "stable"
	case SignalingStateHaveLocalOffer:
		return "have-local-offer"
	case SignalingStateHaveRemoteOffer:
		return "have-remote-offer"
	case SignalingStateHaveLocalPranswer:
		return "have-local-pranswer"
	case SignalingStateHaveRemotePranswer:
		return "have-remote-pranswer"
	case SignalingStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ICEGatheringState represents the ICE gathering state.
type ICEGatheringState int

const (
	ICEGatheringStateNew ICEGatheringState = iota
	ICEGatheringStateGathering
	ICEGatheringStateComplete
)

func (s ICEGatheringState) String() string {
	switch s {
	case ICEGatheringStateNew:
		return "new"
	case ICEGatheringStateGathering:
		return "gathering"
	case ICEGatheringStateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// ICEConnectionState represents the ICE connection state.
type ICEConnectionState int

const (
	ICEConnectionStateNew ICEConnectionState = iota
	ICEConnectionStateChecking
	ICEConnectionStateConnected
	ICEConnectionStateCompleted
	ICEConnectionStateDisconnected
	ICEConnectionStateFailed
	ICEConnectionStateClosed
)

func (s ICEConnectionState) String() string {
	switch s {
	case ICEConnectionStateNew:
		return "new"
	case ICEConnectionStateChecking:
		return "checking"
	case ICEConnectionStateConnected:
		return "connected"
	case ICEConnectionStateCompleted:
		return "completed"
	case ICEConnectionStateDisconnected:
		return "disconnected"
	case ICEConnectionStateFailed:
		return "failed"
	case ICEConnectionStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// EventKind tags a connection event.
type EventKind int

const (
	EventSignalingChange EventKind = iota
	EventICEGatheringChange
	EventICEConnectionChange
	EventICECandidate
	EventTrack
	EventDataChannel
	EventRenegotiationNeeded
)

func (k EventKind) String() string {
	switch k {
	case EventSignalingChange:
		return "signaling-change"
	case EventICEGatheringChange:
		return "ice-gathering-change"
	case EventICEConnectionChange:
		return "ice-connection-change"
	case EventICECandidate:
		return "ice-candidate"
	case EventTrack:
		return "track"
	case EventDataChannel:
		return "data-channel"
	case EventRenegotiationNeeded:
		return "renegotiation-needed"
	default:
		return "unknown"
	}
}

// TrackInfo carries remote track metadata in a track event.
type TrackInfo struct {
	ID       string
	Kind     string // "audio" or "video"
	StreamID string
}

// Event is one connection notification: a tag plus the payload for that
// tag. Only the field matching Kind is meaningful.
type Event struct {
	Kind EventKind

	SignalingState     SignalingState
	ICEGatheringState  ICEGatheringState
	ICEConnectionState ICEConnectionState
	Candidate          *ICECandidate
	Track              *TrackInfo
	DataChannelLabel   string
}

// EventSink receives one call per native connection event. Notify runs
// on an engine thread and must return quickly; long processing belongs
// to the sink's own dispatch.
type EventSink interface {
	Notify(Event)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(Event)

// Notify calls f(e).
func (f EventSinkFunc) Notify(e Event) { f(e) }
