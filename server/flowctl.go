package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// FlowctlController handles integration with an external control plane:
// it registers this service once at startup and posts a periodic heartbeat
// carrying the current metrics snapshot, the same shape the teacher's
// FlowctlController uses. The concrete flowctl client module isn't fetchable
// outside the example pack's local replace directives (DESIGN.md DD-3), so
// registration/heartbeat travel as plain JSON over net/http instead of a
// generated gRPC stub — the controller's behavior and call shape are
// unchanged, only the wire transport.
type FlowctlController struct {
	log       *zap.Logger
	endpoint  string
	serviceID string
	client    *http.Client
}

// ServiceInfo is the one-time registration payload.
type ServiceInfo struct {
	ServiceType      string            `json:"service_type"`
	ServiceID        string            `json:"service_id"`
	HealthEndpoint   string            `json:"health_endpoint"`
	InputEventTypes  []string          `json:"input_event_types"`
	OutputEventTypes []string          `json:"output_event_types"`
	Metadata         map[string]string `json:"metadata"`
}

// ServiceHeartbeat is the periodic liveness/metrics payload.
type ServiceHeartbeat struct {
	ServiceID string             `json:"service_id"`
	Timestamp time.Time          `json:"timestamp"`
	Metrics   map[string]float64 `json:"metrics"`
}

// NewFlowctlController constructs a controller that posts to endpoint.
func NewFlowctlController(log *zap.Logger, endpoint, serviceID string) *FlowctlController {
	return &FlowctlController{
		log:       log,
		endpoint:  endpoint,
		serviceID: serviceID,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Connect is a no-op placeholder for a real handshake; plain HTTP posts need
// no persistent connection, but the method is kept so callers don't have to
// special-case the transport.
func (fc *FlowctlController) Connect(_ context.Context) error {
	fc.log.Info("flowctl controller ready", zap.String("endpoint", fc.endpoint))
	return nil
}

// Register posts this service's ServiceInfo to the control plane's
// registration endpoint.
func (fc *FlowctlController) Register(ctx context.Context) error {
	info := ServiceInfo{
		ServiceType:      "solana-event-stream",
		ServiceID:        fc.serviceID,
		HealthEndpoint:   "/health",
		InputEventTypes:  []string{"transaction_update", "account_update"},
		OutputEventTypes: []string{"unified_event"},
		Metadata: map[string]string{
			"protocol_support": "pumpfun,pumpswap,bonk,raydium_cpmm,raydium_clmm,raydium_amm_v4",
			"implementation":   "go",
		},
	}
	return fc.post(ctx, "/register", info)
}

// SendHeartbeat posts a ServiceHeartbeat carrying the current metrics
// snapshot.
func (fc *FlowctlController) SendHeartbeat(ctx context.Context, snapshot map[string]float64) error {
	hb := ServiceHeartbeat{
		ServiceID: fc.serviceID,
		Timestamp: time.Now(),
		Metrics:   snapshot,
	}
	return fc.post(ctx, "/heartbeat", hb)
}

func (fc *FlowctlController) post(ctx context.Context, path string, body any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal flowctl payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+fc.endpoint+path, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("build flowctl request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := fc.client.Do(req)
	if err != nil {
		return fmt.Errorf("flowctl request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("flowctl %s returned status %d", path, resp.StatusCode)
	}
	return nil
}

// StartHeartbeatLoop launches a goroutine posting a heartbeat every 30s
// until ctx is cancelled, matching §4.10's auto-print cadence family.
func (fc *FlowctlController) StartHeartbeatLoop(ctx context.Context, metricsProvider func() map[string]float64) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := fc.SendHeartbeat(ctx, metricsProvider()); err != nil {
					fc.log.Debug("flowctl heartbeat failed", zap.Error(err))
				}
			}
		}
	}()
}

// Close releases resources held by the controller. Plain HTTP posts keep no
// persistent connection, so this is currently a no-op kept for symmetry with
// the Connect/Close lifecycle pairing used throughout the pack.
func (fc *FlowctlController) Close() error {
	return nil
}
