package rtc

// SDPType represents the type of session description.
type SDPType int

const (
	SDPTypeOffer SDPType = iota
	SDPTypePranswer
	SDPTypeAnswer
)

func (t SDPType) String() string {
	switch t {
	case SDPTypeOffer:
		return "offer"
	case SDPTypePranswer:
		return "pranswer"
	case SDPTypeAnswer:
		return "answer"
	default:
		return "unknown"
	}
}

func (t SDPType) valid() bool {
	return t >= SDPTypeOffer && t <= SDPTypeAnswer
}

// SessionDescription represents an SDP session description. The SDP text
// is an opaque payload owned by the engine's grammar; this layer carries
// it verbatim.
type SessionDescription struct {
	Type SDPType
	SDP  string
}

// ICECandidate represents an ICE candidate in plain form.
type ICECandidate struct {
	Candidate     string
	SDPMid        string
	SDPMLineIndex uint16
}

// BundlePolicy specifies how media is bundled onto transports.
// The zero value leaves the engine default.
type BundlePolicy int

const (
	BundlePolicyDefault BundlePolicy = iota
	BundlePolicyBalanced
	BundlePolicyMaxCompat
	BundlePolicyMaxBundle
)

func (p BundlePolicy) String() string {
	switch p {
	case BundlePolicyDefault:
		return "default"
	case BundlePolicyBalanced:
		return "balanced"
	case BundlePolicyMaxCompat:
		return "max-compat"
	case BundlePolicyMaxBundle:
		return "max-bundle"
	default:
		return "unknown"
	}
}

// ICETransportPolicy restricts which candidates the ICE agent considers.
// The zero value leaves the engine default.
type ICETransportPolicy int

const (
	ICETransportPolicyDefault ICETransportPolicy = iota
	ICETransportPolicyNone
	ICETransportPolicyRelay
	ICETransportPolicyPublic
	ICETransportPolicyAll
)

func (p ICETransportPolicy) String() string {
	switch p {
	case ICETransportPolicyDefault:
		return "default"
	case ICETransportPolicyNone:
		return "none"
	case ICETransportPolicyRelay:
		return "relay"
	case ICETransportPolicyPublic:
		return "public"
	case ICETransportPolicyAll:
		return "all"
	default:
		return "unknown"
	}
}

// RTCPMuxPolicy controls non-multiplexed RTCP support during gathering.
// The zero value leaves the engine default.
type RTCPMuxPolicy int

const (
	RTCPMuxPolicyDefault RTCPMuxPolicy = iota
	RTCPMuxPolicyNegotiate
	RTCPMuxPolicyRequire
)

func (p RTCPMuxPolicy) String() string {
	switch p {
	case RTCPMuxPolicyDefault:
		return "default"
	case RTCPMuxPolicyNegotiate:
		return "negotiate"
	case RTCPMuxPolicyRequire:
		return "require"
	default:
		return "unknown"
	}
}

// ICEServer describes one STUN or TURN server available to the ICE agent.
type ICEServer struct {
	URLs       []string
	Username   string
	Credential string
}

// Configuration for a peer connection. Converted once at creation time;
// no ownership is retained afterwards. An empty configuration is valid
// and limits the connection to local peers.
type Configuration struct {
	ICEServers           []ICEServer
	BundlePolicy         BundlePolicy
	ICETransportPolicy   ICETransportPolicy
	RTCPMuxPolicy        RTCPMuxPolicy
	PeerIdentity         string
	ICECandidatePoolSize int
}

// MediaTrack describes a local media track to attach to a connection.
type MediaTrack struct {
	ID       string
	StreamID string
	Kind     string // "audio" or "video"

	// Codec capability for the RTP packets the caller will write.
	MimeType  string
	ClockRate uint32
	Channels  uint16
}
