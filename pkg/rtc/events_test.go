package rtc

import "testing"

func TestEventKindString(t *testing.T) {
	tests := []struct {
		kind EventKind
		want string
	}{
		{EventSignalingChange, "signaling-change"},
		{EventICEGatheringChange, "ice-gathering-change"},
		{EventICEConnectionChange, "ice-connection-change"},
		{EventICECandidate, "ice-candidate"},
		{EventTrack, "track"},
		{EventDataChannel, "data-channel"},
		{EventRenegotiationNeeded, "renegotiation-needed"},
		{EventKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("EventKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestStateStrings(t *testing.T) {
	if got := SignalingStateHaveLocalOffer.String(); got != "have-local-offer" {
		t.Errorf("signaling = %q", got)
	}
	if got := ICEGatheringStateGathering.String(); got != "gathering" {
		t.Errorf("gathering = %q", got)
	}
	if got := ICEConnectionStateDisconnected.String(); got != "disconnected" {
		t.Errorf("connection = %q", got)
	}
	if got := SDPTypePranswer.String(); got != "pranswer" {
		t.Errorf("sdp type = %q", got)
	}
	if got := StateNegotiating.String(); got != "negotiating" {
		t.Errorf("handle state = %q", got)
	}
}

func TestObserverEventTagging(t *testing.T) {
	var events []Event
	obs := newConnectionObserver(EventSinkFunc(func(e Event) {
		events = append(events, e)
	}))

	obs.OnSignalingChange(SignalingStateHaveLocalOffer)
	obs.OnICECandidate(ICECandidate{Candidate: "candidate:1", SDPMid: "0"})
	obs.OnDataChannel("chat")
	obs.OnRenegotiationNeeded()

	if len(events) != 4 {
		t.Fatalf("events = %d, want 4", len(events))
	}
	if events[0].Kind != EventSignalingChange || events[0].SignalingState != SignalingStateHaveLocalOffer {
		t.Errorf("event 0 = %+v", events[0])
	}
	if events[1].Kind != EventICECandidate || events[1].Candidate == nil || events[1].Candidate.Candidate != "candidate:1" {
		t.Errorf("event 1 = %+v", events[1])
	}
	if events[2].Kind != EventDataChannel || events[2].DataChannelLabel != "chat" {
		t.Errorf("event 2 = %+v", events[2])
	}
	if events[3].Kind != EventRenegotiationNeeded {
		t.Errorf("event 3 = %+v", events[3])
	}
}

func TestObserverDetachDropsEvents(t *testing.T) {
	delivered := 0
	obs := newConnectionObserver(EventSinkFunc(func(Event) { delivered++ }))

	obs.OnSignalingChange(SignalingStateStable)
	obs.detach()
	obs.OnSignalingChange(SignalingStateClosed)
	obs.OnICEConnectionChange(ICEConnectionStateClosed)

	if delivered != 1 {
		t.Errorf("delivered = %d, want 1", delivered)
	}
}

func TestObserverNilSink(t *testing.T) {
	obs := newConnectionObserver(nil)
	// Must not panic.
	obs.OnSignalingChange(SignalingStateStable)
	obs.OnRenegotiationNeeded()
}

func TestObserverSinkPanicContained(t *testing.T) {
	obs := newConnectionObserver(EventSinkFunc(func(Event) {
		panic("sink exploded")
	}))
	obs.OnDataChannel("boom")
}
