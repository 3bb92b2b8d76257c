package rtc

import (
	"github.com/pion/webrtc/v4"

	"github.com/mycrl/librtc-go/internal/ffi"
)

// toShimConfig lowers a Configuration into the shim's raw layout.
// Policy values pass through unchanged: both sides use 0 for "engine
// default" and 1-based numbering for explicit policies.
func toShimConfig(cfg Configuration) *ffi.Config {
	out := &ffi.Config{
		BundlePolicy:         int(cfg.BundlePolicy),
		IceTransportPolicy:   int(cfg.ICETransportPolicy),
		RtcpMuxPolicy:        int(cfg.RTCPMuxPolicy),
		PeerIdentity:         cfg.PeerIdentity,
		IceCandidatePoolSize: int(clampPoolSize(cfg.ICECandidatePoolSize)),
	}
	for _, s := range cfg.ICEServers {
		out.IceServers = append(out.IceServers, ffi.ICEServer{
			URLs:       s.URLs,
			Username:   s.Username,
			Credential: s.Credential,
		})
	}
	return out
}

func toPionConfiguration(cfg Configuration) webrtc.Configuration {
	out := webrtc.Configuration{
		PeerIdentity: cfg.PeerIdentity,
	}
	out.ICECandidatePoolSize = clampPoolSize(cfg.ICECandidatePoolSize)

	switch cfg.BundlePolicy {
	case BundlePolicyBalanced:
		out.BundlePolicy = webrtc.BundlePolicyBalanced
	case BundlePolicyMaxCompat:
		out.BundlePolicy = webrtc.BundlePolicyMaxCompat
	case BundlePolicyMaxBundle:
		out.BundlePolicy = webrtc.BundlePolicyMaxBundle
	}

	// pion only distinguishes relay from all; the narrower policies fall
	// back to the permissive default.
	switch cfg.ICETransportPolicy {
	case ICETransportPolicyRelay:
		out.ICETransportPolicy = webrtc.ICETransportPolicyRelay
	case ICETransportPolicyNone, ICETransportPolicyPublic, ICETransportPolicyAll:
		out.ICETransportPolicy = webrtc.ICETransportPolicyAll
	}

	switch cfg.RTCPMuxPolicy {
	case RTCPMuxPolicyNegotiate:
		out.RTCPMuxPolicy = webrtc.RTCPMuxPolicyNegotiate
	case RTCPMuxPolicyRequire:
		out.RTCPMuxPolicy = webrtc.RTCPMuxPolicyRequire
	}

	for _, s := range cfg.ICEServers {
		srv := webrtc.ICEServer{URLs: s.URLs}
		if s.Username != "" {
			srv.Username = s.Username
			srv.Credential = s.Credential
			srv.CredentialType = webrtc.ICECredentialTypePassword
		}
		out.ICEServers = append(out.ICEServers, srv)
	}
	return out
}

// clampPoolSize bounds the candidate pool size to the wire range both
// engines share. Out-of-range values would otherwise wrap on the uint8
// side and diverge between engines.
func clampPoolSize(n int) uint8 {
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}

func toPionSDPType(t SDPType) webrtc.SDPType {
	switch t {
	case SDPTypePranswer:
		return webrtc.SDPTypePranswer
	case SDPTypeAnswer:
		return webrtc.SDPTypeAnswer
	default:
		return webrtc.SDPTypeOffer
	}
}

func fromPionSDPType(t webrtc.SDPType) SDPType {
	switch t {
	case webrtc.SDPTypePranswer:
		return SDPTypePranswer
	case webrtc.SDPTypeAnswer:
		return SDPTypeAnswer
	default:
		return SDPTypeOffer
	}
}

func toPionDescription(d SessionDescription) webrtc.SessionDescription {
	return webrtc.SessionDescription{Type: toPionSDPType(d.Type), SDP: d.SDP}
}

func fromPionDescription(d webrtc.SessionDescription) SessionDescription {
	return SessionDescription{Type: fromPionSDPType(d.Type), SDP: d.SDP}
}

func toPionCandidateInit(c ICECandidate) webrtc.ICECandidateInit {
	mid := c.SDPMid
	idx := c.SDPMLineIndex
	return webrtc.ICECandidateInit{
		Candidate:     c.Candidate,
		SDPMid:        &mid,
		SDPMLineIndex: &idx,
	}
}

func fromPionCandidate(c *webrtc.ICECandidate) ICECandidate {
	init := c.ToJSON()
	out := ICECandidate{Candidate: init.Candidate}
	if init.SDPMid != nil {
		out.SDPMid = *init.SDPMid
	}
	if init.SDPMLineIndex != nil {
		out.SDPMLineIndex = *init.SDPMLineIndex
	}
	return out
}

func fromPionSignalingState(s webrtc.SignalingState) SignalingState {
	switch s {
	case webrtc.SignalingStateHaveLocalOffer:
		return SignalingStateHaveLocalOffer
	case webrtc.SignalingStateHaveLocalPranswer:
		return SignalingStateHaveLocalPranswer
	case webrtc.SignalingStateHaveRemoteOffer:
		return SignalingStateHaveRemoteOffer
	case webrtc.SignalingStateHaveRemotePranswer:
		return SignalingStateHaveRemotePranswer
	case webrtc.SignalingStateClosed:
		return SignalingStateClosed
	default:
		return SignalingStateStable
	}
}

func fromPionICEGatheringState(s webrtc.ICEGatheringState) ICEGatheringState {
	switch s {
	case webrtc.ICEGatheringStateGathering:
		return ICEGatheringStateGathering
	case webrtc.ICEGatheringStateComplete:
		return ICEGatheringStateComplete
	default:
		return ICEGatheringStateNew
	}
}

func fromPionICEConnectionState(s webrtc.ICEConnectionState) ICEConnectionState {
	switch s {
	case webrtc.ICEConnectionStateChecking:
		return ICEConnectionStateChecking
	case webrtc.ICEConnectionStateConnected:
		return ICEConnectionStateConnected
	case webrtc.ICEConnectionStateCompleted:
		return ICEConnectionStateCompleted
	case webrtc.ICEConnectionStateFailed:
		return ICEConnectionStateFailed
	case webrtc.ICEConnectionStateDisconnected:
		return ICEConnectionStateDisconnected
	case webrtc.ICEConnectionStateClosed:
		return ICEConnectionStateClosed
	default:
		return ICEConnectionStateNew
	}
}
