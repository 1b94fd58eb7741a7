package push

import (
	"encoding/json"
	"errors"
)

// apsDict is the Apple-defined "aps" dictionary.
// https://developer.apple.com/documentation/usernotifications/generating-a-remote-notification
type apsDict struct {
	Alert            string `json:"alert,omitempty"`
	Badge            *int   `json:"badge,omitempty"`
	ContentAvailable int    `json:"content-available,omitempty"`
}

// applePayload is the APNs payload shape. Production and sandbox share it;
// they differ only in the envelope key they are filed under.
type applePayload struct {
	APS apsDict `json:"aps"`
}

type googleData struct {
	Message string `json:"message,omitempty"`
	Badge   *int   `json:"badge,omitempty"`
}

// googlePayload is the GCM/FCM payload shape: message fields under "data".
type googlePayload struct {
	Data googleData `json:"data"`
}

// Encode returns the platform-specific structure for one target. It is pure
// and total over the supported target set; an unknown target is an
// EncodingError.
func Encode(n Notification, target Target) (any, error) {
	switch target {
	case TargetAPNS, TargetAPNSSandbox:
		return n.applePayload(), nil
	case TargetGCM:
		return n.googlePayload(), nil
	default:
		return nil, &EncodingError{Target: target, Err: errors.New("no encoder for target")}
	}
}

// BuildEnvelope validates the intent and serializes it into the relay's
// structured-message format:
//
//	{
//	  "default":      "<fallback text>",
//	  "APNS":         "<JSON string of the Apple structure>",
//	  "APNS_SANDBOX": "<JSON string of the Apple structure>",
//	  "GCM":          "<JSON string of the Google structure>"
//	}
//
// Every per-platform value is itself a string containing serialized JSON. The
// double encoding is the relay's structured-message contract, not a choice;
// a single-encoded message is rejected upstream as malformed.
func BuildEnvelope(n Notification) (string, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}

	outer := make(map[string]string, len(Targets())+1)
	outer["default"] = n.defaultMessage()

	for _, target := range Targets() {
		structure, err := Encode(n, target)
		if err != nil {
			return "", err
		}
		inner, err := json.Marshal(structure)
		if err != nil {
			return "", &EncodingError{Target: target, Err: err}
		}
		outer[string(target)] = string(inner)
	}

	raw, err := json.Marshal(outer)
	if err != nil {
		return "", &EncodingError{Err: err}
	}
	return string(raw), nil
}
