package rtc

import (
	"errors"
	"sync"
	"testing"

	"github.com/pion/rtp"
)

// fakeEngine records connections and lets tests drive engine-side
// behavior directly.
type fakeEngine struct {
	failCreate error
	conns      []*fakeConn
}

func (e *fakeEngine) Run() {}

func (e *fakeEngine) NewConnection(cfg Configuration, obs EngineObserver) (Conn, error) {
	if e.failCreate != nil {
		return nil, e.failCreate
	}
	c := &fakeConn{obs: obs}
	e.conns = append(e.conns, c)
	return c, nil
}

type fakeConn struct {
	obs EngineObserver

	mu         sync.Mutex
	closed     bool
	candidates []ICECandidate
	offerDesc  SessionDescription
	offerErr   error
	applyErr   error
	candErr    error
	trackErr   error
}

func (c *fakeConn) CreateOffer(done DescriptionDone) {
	if c.offerErr != nil {
		done.OnFailure(c.offerErr)
		return
	}
	done.OnSuccess(c.offerDesc)
}

func (c *fakeConn) CreateAnswer(done DescriptionDone) {
	c.CreateOffer(done)
}

func (c *fakeConn) SetLocalDescription(desc SessionDescription, done ApplyDone) {
	if c.applyErr != nil {
		done.OnFailure(c.applyErr)
		return
	}
	done.OnSuccess()
}

func (c *fakeConn) SetRemoteDescription(desc SessionDescription, done ApplyDone) {
	c.SetLocalDescription(desc, done)
}

func (c *fakeConn) AddICECandidate(cand ICECandidate) error {
	if c.candErr != nil {
		return c.candErr
	}
	c.mu.Lock()
	c.candidates = append(c.candidates, cand)
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) AddTrack(t MediaTrack) (TrackWriter, error) {
	if c.trackErr != nil {
		return nil, c.trackErr
	}
	return &fakeTrackWriter{}, nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

type fakeTrackWriter struct {
	packets int
}

func (w *fakeTrackWriter) WriteRTP(*rtp.Packet) error {
	w.packets++
	return nil
}

func TestNewConstructionFailure(t *testing.T) {
	engine := &fakeEngine{failCreate: errors.New("engine down")}
	pc, err := New(engine, Configuration{}, nil)
	if pc != nil {
		t.Fatal("got a handle from a failed construction")
	}
	if !errors.Is(err, ErrConstruction) {
		t.Errorf("err = %v, want ErrConstruction", err)
	}
}

func TestCreateOfferDeliversDescription(t *testing.T) {
	engine := &fakeEngine{}
	pc, err := New(engine, Configuration{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer pc.Close()
	engine.conns[0].offerDesc = SessionDescription{Type: SDPTypeOffer, SDP: "v=0"}

	var got *SessionDescription
	pc.CreateOffer(func(_ uintptr, desc *SessionDescription, err error) {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		got = desc
	}, 0)

	if got == nil || got.SDP != "v=0" {
		t.Errorf("desc = %+v", got)
	}
	if pc.State() != StateNegotiating {
		t.Errorf("state = %v, want negotiating", pc.State())
	}
}

// Both description factories move a fresh handle into negotiation; an
// answerer must not stay in the created state.
func TestCreateAnswerTransitionsState(t *testing.T) {
	engine := &fakeEngine{}
	pc, err := New(engine, Configuration{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer pc.Close()
	engine.conns[0].offerDesc = SessionDescription{Type: SDPTypeAnswer, SDP: "v=0"}

	if pc.State() != StateCreated {
		t.Fatalf("state = %v, want created", pc.State())
	}
	pc.CreateAnswer(func(uintptr, *SessionDescription, error) {}, 0)
	if pc.State() != StateNegotiating {
		t.Errorf("state after CreateAnswer = %v, want negotiating", pc.State())
	}
}

func TestClosedHandleRejectsOperations(t *testing.T) {
	engine := &fakeEngine{}
	pc, err := New(engine, Configuration{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	pc.Close()

	if pc.State() != StateClosed {
		t.Fatalf("state = %v, want closed", pc.State())
	}

	t.Run("create offer", func(t *testing.T) {
		calls := 0
		pc.CreateOffer(func(_ uintptr, desc *SessionDescription, err error) {
			calls++
			if !errors.Is(err, ErrPeerConnectionClosed) {
				t.Errorf("err = %v, want ErrPeerConnectionClosed", err)
			}
			if desc != nil {
				t.Errorf("desc = %+v, want nil", desc)
			}
		}, 0)
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("set remote", func(t *testing.T) {
		calls := 0
		pc.SetRemoteDescription(SessionDescription{Type: SDPTypeOffer}, func(_ uintptr, err error) {
			calls++
			if !errors.Is(err, ErrPeerConnectionClosed) {
				t.Errorf("err = %v", err)
			}
		}, 0)
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("add candidate", func(t *testing.T) {
		err := pc.AddICECandidate(ICECandidate{Candidate: "candidate:1"})
		if !errors.Is(err, ErrPeerConnectionClosed) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("add track", func(t *testing.T) {
		_, err := pc.AddTrack(MediaTrack{ID: "a", Kind: "audio"})
		if !errors.Is(err, ErrPeerConnectionClosed) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestCloseIdempotent(t *testing.T) {
	engine := &fakeEngine{}
	pc, err := New(engine, Configuration{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	pc.Close()
	pc.Close()
	pc.Close()

	conn := engine.conns[0]
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if !conn.closed {
		t.Error("engine connection not closed")
	}
}

func TestNoEventsAfterClose(t *testing.T) {
	delivered := 0
	engine := &fakeEngine{}
	pc, err := New(engine, Configuration{}, EventSinkFunc(func(Event) { delivered++ }))
	if err != nil {
		t.Fatal(err)
	}
	conn := engine.conns[0]

	conn.obs.OnSignalingChange(SignalingStateStable)
	pc.Close()
	// The engine may keep dispatching after close; nothing may reach
	// the sink.
	conn.obs.OnSignalingChange(SignalingStateClosed)
	conn.obs.OnICECandidate(ICECandidate{Candidate: "candidate:1"})

	if delivered != 1 {
		t.Errorf("delivered = %d, want 1", delivered)
	}
}

// Two handles on one engine must not see each other's events.
func TestNoEventCrossTalk(t *testing.T) {
	engine := &fakeEngine{}

	var aEvents, bEvents []Event
	a, err := New(engine, Configuration{}, EventSinkFunc(func(e Event) { aEvents = append(aEvents, e) }))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := New(engine, Configuration{}, EventSinkFunc(func(e Event) { bEvents = append(bEvents, e) }))
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	engine.conns[0].obs.OnDataChannel("for-a")
	engine.conns[1].obs.OnDataChannel("for-b")
	engine.conns[1].obs.OnRenegotiationNeeded()

	if len(aEvents) != 1 || aEvents[0].DataChannelLabel != "for-a" {
		t.Errorf("a events = %+v", aEvents)
	}
	if len(bEvents) != 2 || bEvents[0].DataChannelLabel != "for-b" {
		t.Errorf("b events = %+v", bEvents)
	}
}

func TestSetDescriptionInvalidType(t *testing.T) {
	engine := &fakeEngine{}
	pc, err := New(engine, Configuration{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer pc.Close()

	for _, typ := range []SDPType{SDPType(-1), SDPType(3), SDPType(42)} {
		calls := 0
		pc.SetLocalDescription(SessionDescription{Type: typ, SDP: "v=0"}, func(_ uintptr, err error) {
			calls++
			if !errors.Is(err, ErrConversion) {
				t.Errorf("type %d: err = %v, want ErrConversion", typ, err)
			}
		}, 0)
		if calls != 1 {
			t.Errorf("type %d: calls = %d, want 1", typ, calls)
		}
	}
}

func TestAddICECandidateValidation(t *testing.T) {
	engine := &fakeEngine{}
	pc, err := New(engine, Configuration{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer pc.Close()

	if err := pc.AddICECandidate(ICECandidate{}); !errors.Is(err, ErrConversion) {
		t.Errorf("empty candidate err = %v, want ErrConversion", err)
	}

	engine.conns[0].candErr = errors.New("parse failed")
	err = pc.AddICECandidate(ICECandidate{Candidate: "garbage"})
	if err == nil {
		t.Error("engine rejection swallowed")
	}
}

func TestAddTrackAndWriteRTP(t *testing.T) {
	engine := &fakeEngine{}
	pc, err := New(engine, Configuration{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer pc.Close()

	if _, err := pc.AddTrack(MediaTrack{}); !errors.Is(err, ErrConversion) {
		t.Errorf("missing id/kind err = %v, want ErrConversion", err)
	}

	w, err := pc.AddTrack(MediaTrack{ID: "audio-0", Kind: "audio"})
	if err != nil {
		t.Fatal(err)
	}
	if err := pc.WriteRTP("audio-0", &rtp.Packet{}); err != nil {
		t.Errorf("write = %v", err)
	}
	if fw := w.(*fakeTrackWriter); fw.packets != 1 {
		t.Errorf("packets = %d, want 1", fw.packets)
	}

	if err := pc.WriteRTP("missing", &rtp.Packet{}); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("unknown track err = %v, want ErrTrackNotFound", err)
	}
}

func TestWriteRTPAfterClose(t *testing.T) {
	engine := &fakeEngine{}
	pc, err := New(engine, Configuration{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pc.AddTrack(MediaTrack{ID: "v", Kind: "video"}); err != nil {
		t.Fatal(err)
	}
	pc.Close()

	if err := pc.WriteRTP("v", &rtp.Packet{}); !errors.Is(err, ErrPeerConnectionClosed) {
		t.Errorf("err = %v, want ErrPeerConnectionClosed", err)
	}
}
