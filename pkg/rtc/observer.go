package rtc

import "sync/atomic"

// connectionObserver fans every engine event for one connection into the
// handle's event sink as a tagged Event. The engine keeps dispatching
// until the connection is fully released, so Close detaches the sink
// first and late events are dropped rather than delivered.
type connectionObserver struct {
	sink     EventSink
	detached atomic.Bool
}

func newConnectionObserver(sink EventSink) *connectionObserver {
	return &connectionObserver{sink: sink}
}

func (o *connectionObserver) detach() {
	o.detached.Store(true)
}

func (o *connectionObserver) notify(e Event) {
	if o.detached.Load() || o.sink == nil {
		return
	}
	safeInvoke(func() { o.sink.Notify(e) })
}

func (o *connectionObserver) OnSignalingChange(s SignalingState) {
	o.notify(Event{Kind: EventSignalingChange, SignalingState: s})
}

func (o *connectionObserver) OnICEGatheringChange(s ICEGatheringState) {
	o.notify(Event{Kind: EventICEGatheringChange, ICEGatheringState: s})
}

func (o *connectionObserver) OnICEConnectionChange(s ICEConnectionState) {
	o.notify(Event{Kind: EventICEConnectionChange, ICEConnectionState: s})
}

func (o *connectionObserver) OnICECandidate(c ICECandidate) {
	o.notify(Event{Kind: EventICECandidate, Candidate: &c})
}

func (o *connectionObserver) OnTrack(t TrackInfo) {
	o.notify(Event{Kind: EventTrack, Track: &t})
}

func (o *connectionObserver) OnDataChannel(label string) {
	o.notify(Event{Kind: EventDataChannel, DataChannelLabel: label})
}

func (o *connectionObserver) OnRenegotiationNeeded() {
	o.notify(Event{Kind: EventRenegotiationNeeded})
}
