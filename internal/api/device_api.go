// Package api exposes device registration and push dispatch over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lanternhq/go-push-relay/internal/metrics"
	"github.com/lanternhq/go-push-relay/internal/registry"
	"github.com/lanternhq/go-push-relay/pkg/push"
	"github.com/lanternhq/go-push-relay/pkg/relay"
	"github.com/lanternhq/go-push-relay/pushrelay/config"
)

// Pusher is the subset of the dispatch client the API needs.
type Pusher interface {
	RegisterDevice(ctx context.Context, token, platformApplicationARN string) (string, error)
	SendPush(ctx context.Context, n push.Notification, endpointARN string) (string, error)
}

type DeviceAPI struct {
	pusher Pusher
	store  registry.Store
	apps   config.PlatformApps
	logger *slog.Logger
}

func NewDeviceAPI(pusher Pusher, store registry.Store, apps config.PlatformApps, logger *slog.Logger) *DeviceAPI {
	return &DeviceAPI{
		pusher: pusher,
		store:  store,
		apps:   apps,
		logger: logger.With("component", "DeviceAPI"),
	}
}

type registerRequest struct {
	Platform string `json:"platform"`
	Token    string `json:"token"`
}

type registerResponse struct {
	EndpointARN string `json:"endpoint_arn"`
}

// RegisterDevice handles POST /v1/devices. The relay's returned ARN is
// authoritative every call, so re-registration is just another call; the
// registry write only exists for listing and cleanup.
func (a *DeviceAPI) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.logger.With("request_id", uuid.NewString())

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Token == "" {
		writeJSONError(w, http.StatusBadRequest, "missing token")
		return
	}

	appARN, ok := a.resolveApp(req.Platform)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("platform %q is not configured", req.Platform))
		return
	}

	endpointARN, err := a.pusher.RegisterDevice(ctx, req.Token, appARN)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		logger.Error("Registration failed", "platform", req.Platform, "err", err)
		writeDispatchError(w, err)
		return
	}
	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()

	reg := registry.Registration{
		PlatformApplicationARN: appARN,
		Token:                  req.Token,
		EndpointARN:            endpointARN,
		UpdatedAt:              time.Now(),
	}
	if err := a.store.Save(ctx, reg); err != nil {
		// The endpoint exists at the relay either way; bookkeeping failure
		// must not hide the ARN from the caller.
		logger.Warn("Failed to record registration", "err", err)
	}

	logger.Info("Device registered", "platform", req.Platform, "endpoint_arn", endpointARN)
	writeJSON(w, http.StatusOK, registerResponse{EndpointARN: endpointARN})
}

// UnregisterDevice handles DELETE /v1/devices. It only removes local
// bookkeeping; the relay-side endpoint stays until infrastructure cleans it up.
func (a *DeviceAPI) UnregisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.logger.With("request_id", uuid.NewString())

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	appARN, ok := a.resolveApp(req.Platform)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("platform %q is not configured", req.Platform))
		return
	}

	if err := a.store.Delete(ctx, appARN, req.Token); err != nil {
		// Idempotency is preferred for unregister.
		logger.Warn("Failed to unregister device", "err", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListDevices handles GET /v1/devices?platform=APNS.
func (a *DeviceAPI) ListDevices(w http.ResponseWriter, r *http.Request) {
	logger := a.logger.With("request_id", uuid.NewString())

	platform := r.URL.Query().Get("platform")
	appARN, ok := a.resolveApp(platform)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("platform %q is not configured", platform))
		return
	}

	regs, err := a.store.List(r.Context(), appARN)
	if err != nil {
		logger.Error("Failed to list registrations", "err", err)
		writeJSONError(w, http.StatusInternalServerError, "storage failed")
		return
	}
	if regs == nil {
		regs = []registry.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

type sendRequest struct {
	EndpointARN  string              `json:"endpoint_arn"`
	Notification notificationPayload `json:"notification"`
}

type sendResponse struct {
	MessageID string `json:"message_id"`
}

// notificationPayload is the wire form of the intent union.
type notificationPayload struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Badge *int   `json:"badge,omitempty"`
}

func (p notificationPayload) toIntent() (push.Notification, error) {
	switch p.Type {
	case "", "alert":
		return push.Alert{Text: p.Text, Badge: p.Badge}, nil
	case "silent":
		return push.Silent{Badge: p.Badge}, nil
	default:
		return nil, fmt.Errorf("unknown notification type %q", p.Type)
	}
}

// SendPush handles POST /v1/push.
func (a *DeviceAPI) SendPush(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.logger.With("request_id", uuid.NewString())

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	intent, err := req.Notification.toIntent()
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	messageID, err := a.pusher.SendPush(ctx, intent, req.EndpointARN)
	metrics.PublishDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		kind := relay.KindOf(err)
		metrics.PublishesTotal.WithLabelValues(kind.String()).Inc()
		logger.Error("Push failed", "endpoint_arn", req.EndpointARN, "kind", kind.String(), "err", err)
		writeDispatchError(w, err)
		return
	}
	metrics.PublishesTotal.WithLabelValues("ok").Inc()

	logger.Info("Push sent", "endpoint_arn", req.EndpointARN, "message_id", messageID)
	writeJSON(w, http.StatusOK, sendResponse{MessageID: messageID})
}

func (a *DeviceAPI) resolveApp(platform string) (string, bool) {
	arn := a.apps.ARNFor(push.Target(platform))
	return arn, arn != ""
}

// writeDispatchError maps dispatch failures onto status codes. Validation
// failures are the caller's to correct (400); relay kinds split the way API
// callers need them: 410/404 mean re-register the device, 429/503 mean
// try again later.
func writeDispatchError(w http.ResponseWriter, err error) {
	var verr *push.ValidationError
	if errors.As(err, &verr) {
		writeJSONError(w, http.StatusBadRequest, verr.Error())
		return
	}

	var relayErr *relay.Error
	if !errors.As(err, &relayErr) {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	switch relayErr.Kind {
	case relay.KindEndpointDisabled:
		writeJSONError(w, http.StatusGone, "endpoint disabled")
	case relay.KindNotFound:
		writeJSONError(w, http.StatusNotFound, "endpoint not found")
	case relay.KindThrottled:
		writeJSONError(w, http.StatusTooManyRequests, "relay throttled")
	case relay.KindTransient:
		writeJSONError(w, http.StatusServiceUnavailable, "relay unavailable")
	default:
		writeJSONError(w, http.StatusBadGateway, "relay error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
