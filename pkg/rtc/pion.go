package rtc

import (
	"fmt"
	"strings"

	"github.com/pion/interceptor"
	"github.com/pion/logging"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

// PionEngine implements Engine on the pure-Go pion/webrtc stack. It
// needs no native library and is the engine used by the tests and the
// in-process examples; it is also the only engine with a media-track
// path.
type PionEngine struct {
	api *webrtc.API
}

// NewPionEngine builds an engine with default codecs and interceptors
// registered.
func NewPionEngine() (*PionEngine, error) {
	media := &webrtc.MediaEngine{}
	if err := media.RegisterDefaultCodecs(); err != nil {
		return nil, fmt.Errorf("register codecs: %w", err)
	}

	registry := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(media, registry); err != nil {
		return nil, fmt.Errorf("register interceptors: %w", err)
	}

	settings := webrtc.SettingEngine{}
	settings.LoggerFactory = logging.NewDefaultLoggerFactory()

	api := webrtc.NewAPI(
		webrtc.WithMediaEngine(media),
		webrtc.WithInterceptorRegistry(registry),
		webrtc.WithSettingEngine(settings),
	)
	return &PionEngine{api: api}, nil
}

// Run blocks forever. pion drives its own goroutines; this exists so
// both engines satisfy the same loop contract.
func (e *PionEngine) Run() {
	select {}
}

func (e *PionEngine) NewConnection(cfg Configuration, obs EngineObserver) (Conn, error) {
	pc, err := e.api.NewPeerConnection(toPionConfiguration(cfg))
	if err != nil {
		return nil, err
	}

	pc.OnSignalingStateChange(func(s webrtc.SignalingState) {
		obs.OnSignalingChange(fromPionSignalingState(s))
	})
	pc.OnICEGatheringStateChange(func(s webrtc.ICEGatheringState) {
		obs.OnICEGatheringChange(fromPionICEGatheringState(s))
	})
	pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		obs.OnICEConnectionChange(fromPionICEConnectionState(s))
	})
	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		obs.OnICECandidate(fromPionCandidate(c))
	})
	pc.OnTrack(func(t *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		streamID := t.StreamID()
		obs.OnTrack(TrackInfo{ID: t.ID(), Kind: t.Kind().String(), StreamID: streamID})
	})
	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		obs.OnDataChannel(dc.Label())
	})
	pc.OnNegotiationNeeded(func() {
		obs.OnRenegotiationNeeded()
	})

	return &pionConn{pc: pc}, nil
}

type pionConn struct {
	pc *webrtc.PeerConnection
}

// Completions run on their own goroutine so the submission call returns
// immediately, matching the native engine's observer dispatch.
func (c *pionConn) CreateOffer(done DescriptionDone) {
	go func() {
		desc, err := c.pc.CreateOffer(nil)
		if err != nil {
			done.OnFailure(fmt.Errorf("%w: %v", ErrOperationFailed, err))
			return
		}
		done.OnSuccess(fromPionDescription(desc))
	}()
}

func (c *pionConn) CreateAnswer(done DescriptionDone) {
	go func() {
		desc, err := c.pc.CreateAnswer(nil)
		if err != nil {
			done.OnFailure(fmt.Errorf("%w: %v", ErrOperationFailed, err))
			return
		}
		done.OnSuccess(fromPionDescription(desc))
	}()
}

func (c *pionConn) SetLocalDescription(desc SessionDescription, done ApplyDone) {
	go func() {
		if err := c.pc.SetLocalDescription(toPionDescription(desc)); err != nil {
			done.OnFailure(fmt.Errorf("%w: %v", ErrOperationFailed, err))
			return
		}
		done.OnSuccess()
	}()
}

func (c *pionConn) SetRemoteDescription(desc SessionDescription, done ApplyDone) {
	go func() {
		if err := c.pc.SetRemoteDescription(toPionDescription(desc)); err != nil {
			done.OnFailure(fmt.Errorf("%w: %v", ErrOperationFailed, err))
			return
		}
		done.OnSuccess()
	}()
}

func (c *pionConn) AddICECandidate(cand ICECandidate) error {
	if err := c.pc.AddICECandidate(toPionCandidateInit(cand)); err != nil {
		return fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return nil
}

func (c *pionConn) AddTrack(t MediaTrack) (TrackWriter, error) {
	capability := webrtc.RTPCodecCapability{
		MimeType:  t.MimeType,
		ClockRate: t.ClockRate,
		Channels:  t.Channels,
	}
	if capability.MimeType == "" {
		capability.MimeType = defaultMimeType(t.Kind)
	}

	track, err := webrtc.NewTrackLocalStaticRTP(capability, t.ID, t.StreamID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	if _, err := c.pc.AddTrack(track); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOperationFailed, err)
	}
	return &pionTrackWriter{track: track}, nil
}

func (c *pionConn) Close() {
	_ = c.pc.Close()
}

func defaultMimeType(kind string) string {
	if strings.EqualFold(kind, "audio") {
		return webrtc.MimeTypeOpus
	}
	return webrtc.MimeTypeVP8
}

type pionTrackWriter struct {
	track *webrtc.TrackLocalStaticRTP
}

func (w *pionTrackWriter) WriteRTP(p *rtp.Packet) error {
	return w.track.WriteRTP(p)
}
