// Package config is the composition boundary's settings surface: a flat
// Config struct populated from CLI flags and NETCORE_* environment
// variables, built once at startup and never mutated afterward.
package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds every startup-tunable value: tick rate, capacity, world
// dimensions, baseline cadence, AOI tier radii/cadences, interact
// distance, disconnect/handshake timeouts, and the PRNG seed.
type Config struct {
	Port string

	TickRate    int // Hz, default 30
	MaxPlayers  int
	WorldWidth  float64
	WorldHeight float64

	BaselineInterval uint64 // snapshots between forced baselines
	MaxBaselineTicks uint64 // ticks between forced baselines

	TierHighRadius float64
	TierMidRadius  float64
	TierLowRadius  float64

	MaxInteractDistance float64

	HandshakeTimeout  time.Duration
	DisconnectTimeout time.Duration

	InputsPerSecond float64
	InputBurst      int

	Seed uint64
}

// Default holds the stock tuning values for every knob above.
func Default() Config {
	return Config{
		Port:                "8080",
		TickRate:            30,
		MaxPlayers:          1024,
		WorldWidth:          20000,
		WorldHeight:         20000,
		BaselineInterval:    150,
		MaxBaselineTicks:    150,
		TierHighRadius:      150,
		TierMidRadius:       400,
		TierLowRadius:       900,
		MaxInteractDistance: 50.0,
		HandshakeTimeout:    5 * time.Second,
		DisconnectTimeout:   15 * time.Second,
		InputsPerSecond:     20,
		InputBurst:          10,
		Seed:                42,
	}
}

// Load parses CLI flags, then overlays NETCORE_* environment variables
// using the standard flag package plus a plain os.Getenv + manual parse
// overlay, rather than a config-parsing dependency.
func Load(args []string) Config {
	cfg := Default()

	fs := flag.NewFlagSet("brigantine-core", flag.ContinueOnError)
	port := fs.String("port", cfg.Port, "Server port")
	tickRate := fs.Int("tick-rate", cfg.TickRate, "Simulation tick rate in Hz")
	maxPlayers := fs.Int("max-players", cfg.MaxPlayers, "Maximum concurrent players")
	seed := fs.Uint64("seed", cfg.Seed, "PRNG seed")
	fs.Parse(args)

	cfg.Port = *port
	cfg.TickRate = *tickRate
	cfg.MaxPlayers = *maxPlayers
	cfg.Seed = *seed

	overlayString(&cfg.Port, "NETCORE_PORT")
	overlayInt(&cfg.TickRate, "NETCORE_TICK_RATE")
	overlayInt(&cfg.MaxPlayers, "NETCORE_MAX_PLAYERS")
	overlayFloat(&cfg.WorldWidth, "NETCORE_WORLD_WIDTH")
	overlayFloat(&cfg.WorldHeight, "NETCORE_WORLD_HEIGHT")
	overlayUint64(&cfg.BaselineInterval, "NETCORE_BASELINE_INTERVAL")
	overlayFloat(&cfg.TierHighRadius, "NETCORE_TIER_HIGH_RADIUS")
	overlayFloat(&cfg.TierMidRadius, "NETCORE_TIER_MID_RADIUS")
	overlayFloat(&cfg.TierLowRadius, "NETCORE_TIER_LOW_RADIUS")
	overlayFloat(&cfg.MaxInteractDistance, "NETCORE_MAX_INTERACT_DISTANCE")
	overlayDuration(&cfg.HandshakeTimeout, "NETCORE_HANDSHAKE_TIMEOUT_MS")
	overlayDuration(&cfg.DisconnectTimeout, "NETCORE_DISCONNECT_TIMEOUT_MS")
	overlayUint64(&cfg.Seed, "NETCORE_SEED")

	return cfg
}

func overlayString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func overlayInt(dst *int, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func overlayFloat(dst *float64, env string) {
	if v := os.Getenv(env); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func overlayUint64(dst *uint64, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func overlayDuration(dst *time.Duration, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = time.Duration(n) * time.Millisecond
		}
	}
}
