package ffi

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// registerFunctions resolves every shim symbol. purego panics on symbols
// it cannot resolve; the recover turns that into a load error so callers
// never see a half-bound ABI.
func registerFunctions() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to bind shim symbol: %v", r)
		}
	}()

	purego.RegisterLibFunc(&rtcVersion, libHandle, "rtc_version")
	purego.RegisterLibFunc(&rtcRun, libHandle, "rtc_run")
	purego.RegisterLibFunc(&rtcCreatePeerConnection, libHandle, "rtc_create_peer_connection")
	purego.RegisterLibFunc(&rtcClose, libHandle, "rtc_close")
	purego.RegisterLibFunc(&rtcAddIceCandidate, libHandle, "rtc_add_ice_candidate")
	purego.RegisterLibFunc(&rtcCreateOffer, libHandle, "rtc_create_offer")
	purego.RegisterLibFunc(&rtcCreateAnswer, libHandle, "rtc_create_answer")
	purego.RegisterLibFunc(&rtcSetLocalDescription, libHandle, "rtc_set_local_description")
	purego.RegisterLibFunc(&rtcSetRemoteDescription, libHandle, "rtc_set_remote_description")
	purego.RegisterLibFunc(&rtcSetOnSignalingChange, libHandle, "rtc_set_on_signaling_change")
	purego.RegisterLibFunc(&rtcSetOnIceGatheringChange, libHandle, "rtc_set_on_ice_gathering_change")
	purego.RegisterLibFunc(&rtcSetOnIceConnectionChange, libHandle, "rtc_set_on_ice_connection_change")
	purego.RegisterLibFunc(&rtcSetOnIceCandidate, libHandle, "rtc_set_on_ice_candidate")
	purego.RegisterLibFunc(&rtcSetOnTrack, libHandle, "rtc_set_on_track")
	purego.RegisterLibFunc(&rtcSetOnDataChannel, libHandle, "rtc_set_on_data_channel")
	purego.RegisterLibFunc(&rtcSetOnRenegotiationNeeded, libHandle, "rtc_set_on_renegotiation_needed")

	return nil
}
