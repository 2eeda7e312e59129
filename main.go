package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kreid06/brigantine-core/aoi"
	"github.com/kreid06/brigantine-core/config"
	"github.com/kreid06/brigantine-core/fixedpoint"
	"github.com/kreid06/brigantine-core/session"
	"github.com/kreid06/brigantine-core/sim"
	"github.com/kreid06/brigantine-core/tick"
	"github.com/kreid06/brigantine-core/transport"
	"github.com/kreid06/brigantine-core/transport/udp"
	"github.com/kreid06/brigantine-core/transport/ws"
	"github.com/kreid06/brigantine-core/world"
)

func main() {
	cfg := config.Load(os.Args[1:])

	log.Printf("Starting brigantine-core on port %s (tick rate %dHz, seed %d)", cfg.Port, cfg.TickRate, cfg.Seed)

	sim.InteractRange = fixedpoint.FromFloat(cfg.MaxInteractDistance)
	sim.WorldExtent = fixedpoint.Vec2{
		X: fixedpoint.FromFloat(cfg.WorldWidth / 2),
		Y: fixedpoint.FromFloat(cfg.WorldHeight / 2),
	}
	aoi.RadiusHigh = fixedpoint.FromFloat(cfg.TierHighRadius)
	aoi.RadiusMid = fixedpoint.FromFloat(cfg.TierMidRadius)
	aoi.RadiusLow = fixedpoint.FromFloat(cfg.TierLowRadius)

	w := world.New()
	if _, err := world.SpawnBrigantine(w, fixedpoint.Vec2{}, 0); err != nil {
		log.Fatalf("spawning starter ship: %v", err)
	}

	sessionCfg := session.Config{
		HandshakeTimeout:    cfg.HandshakeTimeout,
		DisconnectTimeout:   cfg.DisconnectTimeout,
		MaxNameBytes:        31,
		InputsPerSecond:     cfg.InputsPerSecond,
		InputBurst:          cfg.InputBurst,
		MaxInteractDistance: fixedpoint.FromFloat(cfg.MaxInteractDistance),
	}
	sessions := session.NewManager(sessionCfg)
	registry := transport.NewRegistry()

	wsAdapter := ws.NewAdapter(sessions, registry)
	udpAdapter := udp.NewAdapter(sessions, registry)

	loop := tick.NewLoop(w, sessions, registry, cfg)
	loop.OnTeardown = udpAdapter.Forget
	stop := make(chan struct{})
	go loop.Run(stop)

	go func() {
		if err := udpAdapter.ListenAndServe(":" + cfg.Port); err != nil {
			log.Printf("udp listener stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsAdapter.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Server running at http://localhost:%s", cfg.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Printf("Shutting down server (signal: %v)...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	close(stop)

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
