// Package signal defines the JSON message envelope two peers exchange to
// negotiate a connection: session descriptions and ICE candidates, each
// addressed by sender and optional target. The transport is up to the
// caller; the examples use channels in-process and WebSocket across
// hosts.
package signal

import (
	"encoding/json"
	"fmt"

	"github.com/mycrl/librtc-go/pkg/rtc"
)

// Message types.
const (
	TypeOffer     = "offer"
	TypeAnswer    = "answer"
	TypeCandidate = "candidate"
	TypeLeave     = "leave"
)

// Message is one signaling exchange unit. Exactly one of Description or
// Candidate is set, matching Type.
type Message struct {
	Type     string `json:"type"`
	FromPeer string `json:"from"`
	ToPeer   string `json:"to,omitempty"`

	Description *Description  `json:"description,omitempty"`
	Candidate   *ICECandidate `json:"candidate,omitempty"`
}

// Description carries an SDP payload in wire form.
type Description struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

// ICECandidate carries one candidate in wire form.
type ICECandidate struct {
	Candidate     string `json:"candidate"`
	SDPMid        string `json:"sdpMid"`
	SDPMLineIndex uint16 `json:"sdpMLineIndex"`
}

// NewDescriptionMessage wraps a session description for the wire. The
// message type follows the description's role in the handshake: offers
// route as TypeOffer, answers and provisional answers as TypeAnswer.
// The exact SDP type survives in the Description payload.
func NewDescriptionMessage(from string, desc rtc.SessionDescription) *Message {
	var msgType string
	switch desc.Type {
	case rtc.SDPTypePranswer, rtc.SDPTypeAnswer:
		msgType = TypeAnswer
	default:
		msgType = TypeOffer
	}
	return &Message{
		Type:        msgType,
		FromPeer:    from,
		Description: &Description{Type: desc.Type.String(), SDP: desc.SDP},
	}
}

// NewCandidateMessage wraps an ICE candidate for the wire.
func NewCandidateMessage(from string, c rtc.ICECandidate) *Message {
	return &Message{
		Type:     TypeCandidate,
		FromPeer: from,
		Candidate: &ICECandidate{
			Candidate:     c.Candidate,
			SDPMid:        c.SDPMid,
			SDPMLineIndex: c.SDPMLineIndex,
		},
	}
}

// SessionDescription converts the message's description payload. Fails
// when the message carries no description or an unknown SDP type.
func (m *Message) SessionDescription() (rtc.SessionDescription, error) {
	if m.Description == nil {
		return rtc.SessionDescription{}, fmt.Errorf("message %q carries no description", m.Type)
	}
	var t rtc.SDPType
	switch m.Description.Type {
	case "offer":
		t = rtc.SDPTypeOffer
	case "pranswer":
		t = rtc.SDPTypePranswer
	case "answer":
		t = rtc.SDPTypeAnswer
	default:
		return rtc.SessionDescription{}, fmt.Errorf("unknown sdp type %q", m.Description.Type)
	}
	return rtc.SessionDescription{Type: t, SDP: m.Description.SDP}, nil
}

// ICECandidate converts the message's candidate payload.
func (m *Message) ICECandidate() (rtc.ICECandidate, error) {
	if m.Candidate == nil {
		return rtc.ICECandidate{}, fmt.Errorf("message %q carries no candidate", m.Type)
	}
	return rtc.ICECandidate{
		Candidate:     m.Candidate.Candidate,
		SDPMid:        m.Candidate.SDPMid,
		SDPMLineIndex: m.Candidate.SDPMLineIndex,
	}, nil
}

// Marshal serializes the message to JSON.
func (m *Message) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// Unmarshal parses a JSON message.
func Unmarshal(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
