package server

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/withobsrvr/solana-event-stream/internal/events"
	"github.com/withobsrvr/solana-event-stream/internal/pipeline"
)

// Config bundles everything the lifecycle controller (C12) needs to build
// and run the pipeline: which protocols/event-types to decode, the
// backpressure preset, the bot wallet used for §4.11 tagging, and the
// ambient HTTP/flowctl surface. Scalar fields load from environment
// variables with defaults, mirroring NewContractInvocationServer's
// getEnvOrDefault pattern; the backpressure preset may instead be loaded
// from a YAML presets file (§4.8's high-throughput/low-latency names).
type Config struct {
	Protocols []events.Protocol

	Pipeline    pipeline.Config
	Workers     int
	BotWallet   events.Pubkey

	MetricsWindow  time.Duration
	PrintInterval  time.Duration
	EnableMetrics  bool

	HealthAddr  string
	MetricsAddr string

	FlowctlEnabled  bool
	FlowctlEndpoint string
}

// AllProtocols is every protocol tag the registry can assemble, used as the
// default when a caller doesn't narrow the set.
var AllProtocols = []events.Protocol{
	events.ProtocolPumpFun,
	events.ProtocolPumpSwap,
	events.ProtocolBonk,
	events.ProtocolRaydiumCpmm,
	events.ProtocolRaydiumClmm,
	events.ProtocolRaydiumAmmV4,
}

// DefaultConfig returns a Config populated from environment variables,
// falling back to the §4.8 Default backpressure preset (permits 3000,
// Block) when PIPELINE_PRESET names none of the known presets.
func DefaultConfig() Config {
	cfg := Config{
		Protocols:     AllProtocols,
		Pipeline:      presetFromEnv("PIPELINE_PRESET", pipeline.DefaultConfig),
		Workers:       envInt("PIPELINE_WORKERS", 0),
		MetricsWindow: envDuration("METRICS_WINDOW_SECONDS", 5*time.Second),
		PrintInterval: envDuration("METRICS_PRINT_INTERVAL_SECONDS", 30*time.Second),
		EnableMetrics: envBool("ENABLE_METRICS", true),
		HealthAddr:    envString("HEALTH_ADDR", ":8089"),
		MetricsAddr:   envString("METRICS_ADDR", ":9090"),
		FlowctlEnabled:  envBool("ENABLE_FLOWCTL", false),
		FlowctlEndpoint: envString("FLOWCTL_ENDPOINT", "localhost:8080"),
	}
	return cfg
}

func presetFromEnv(key string, fallback pipeline.Config) pipeline.Config {
	switch os.Getenv(key) {
	case "high-throughput":
		return pipeline.HighThroughputConfig
	case "low-latency":
		return pipeline.LowLatencyConfig
	default:
		return fallback
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return def
}

// presetsFile is the on-disk shape of a named backpressure-preset file, the
// YAML-configured alternative to PIPELINE_PRESET for deployments that keep
// service config in a checked-in file rather than environment variables,
// matching bronze-silver-transformer's/silver-transformer's LoadConfig
// pattern.
type presetsFile struct {
	Pipeline struct {
		Permits  int    `yaml:"permits"`
		Strategy string `yaml:"strategy"`
	} `yaml:"pipeline"`
}

// LoadPipelinePreset reads a YAML file naming a permits/strategy pair and
// returns the corresponding pipeline.Config, e.g.:
//
//	pipeline:
//	  permits: 20000
//	  strategy: drop
func LoadPipelinePreset(path string) (pipeline.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("read pipeline preset: %w", err)
	}

	var f presetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return pipeline.Config{}, fmt.Errorf("parse pipeline preset: %w", err)
	}
	if f.Pipeline.Permits <= 0 {
		return pipeline.Config{}, fmt.Errorf("pipeline preset %s: permits must be positive", path)
	}

	strategy := pipeline.Block
	switch f.Pipeline.Strategy {
	case "", "block":
		strategy = pipeline.Block
	case "drop":
		strategy = pipeline.Drop
	default:
		return pipeline.Config{}, fmt.Errorf("pipeline preset %s: unknown strategy %q", path, f.Pipeline.Strategy)
	}

	return pipeline.Config{Permits: f.Pipeline.Permits, Strategy: strategy}, nil
}
