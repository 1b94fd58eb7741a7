// Package push defines the notification payload model and its encoding into
// the relay's structured-message wire format.
//
// A Notification is a closed tagged union: each variant supplies an encoding
// for every platform family the relay fans out to. Adding a variant without
// supplying every encoding, or adding a platform family without handling it
// in every variant, is a compile error rather than a silent gap.
package push

import "fmt"

// Target identifies a push platform recognised by the relay. The string value
// is the canonical relay key, used both as the platform-application
// discriminator during endpoint registration and as the field key inside the
// structured-message envelope.
type Target string

const (
	TargetAPNS        Target = "APNS"
	TargetAPNSSandbox Target = "APNS_SANDBOX"
	TargetGCM         Target = "GCM"
)

// Targets returns the supported platform set in canonical envelope order.
func Targets() []Target {
	return []Target{TargetAPNS, TargetAPNSSandbox, TargetGCM}
}

// Notification is a notification intent, decoupled from any platform
// encoding. Implementations are immutable values constructed per send.
//
// The unexported methods are the exhaustiveness mechanism: every variant must
// encode for every platform family, so the union is closed to this package.
type Notification interface {
	// Validate checks local field constraints. It runs before any encoding
	// or relay call; a failure here is always correctable by the caller.
	Validate() error

	// defaultMessage is the plain-text fallback placed under the envelope's
	// "default" key for platforms without a dedicated sub-payload.
	defaultMessage() string

	applePayload() applePayload
	googlePayload() googlePayload
}

// Alert is a normal visible push: text shown on screen plus an optional
// badge count.
type Alert struct {
	// Text is the human-readable body. Required.
	Text string

	// Badge sets the app icon badge where the platform supports it.
	// nil leaves the badge untouched.
	Badge *int
}

var _ Notification = Alert{}

func (a Alert) Validate() error {
	if a.Text == "" {
		return &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	if a.Badge != nil && *a.Badge < 0 {
		return &ValidationError{Field: "badge", Reason: "must not be negative"}
	}
	return nil
}

func (a Alert) defaultMessage() string { return a.Text }

func (a Alert) applePayload() applePayload {
	return applePayload{APS: apsDict{Alert: a.Text, Badge: a.Badge}}
}

func (a Alert) googlePayload() googlePayload {
	// FCM has no native badge; it rides along as a custom data field so the
	// app can apply it itself.
	return googlePayload{Data: googleData{Message: a.Text, Badge: a.Badge}}
}

// Silent is a background push with no visible alert, used to wake an app and
// let it do work. Its default fallback is the empty string.
type Silent struct {
	// Badge sets the app icon badge where the platform supports it.
	Badge *int
}

var _ Notification = Silent{}

func (s Silent) Validate() error {
	if s.Badge != nil && *s.Badge < 0 {
		return &ValidationError{Field: "badge", Reason: "must not be negative"}
	}
	return nil
}

func (s Silent) defaultMessage() string { return "" }

func (s Silent) applePayload() applePayload {
	return applePayload{APS: apsDict{ContentAvailable: 1, Badge: s.Badge}}
}

func (s Silent) googlePayload() googlePayload {
	// There is no relay-expressible background wake on GCM, so a silent push
	// carries an empty data object. The badge does not survive this
	// encoding; that drop is intentional, not a bug.
	return googlePayload{}
}

// Badge is a convenience for building the optional badge field inline.
func Badge(n int) *int { return &n }

// ValidationError reports an intent field that violates a local constraint.
// It is always returned before any relay call is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("push: invalid %s: %s", e.Field, e.Reason)
}

// EncodingError reports an envelope-construction invariant violation. For the
// shipped variants and targets it is unreachable; it exists so a future gap
// surfaces as a typed programming error instead of being swallowed.
type EncodingError struct {
	Target Target
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("push: encoding %s: %v", e.Target, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }
