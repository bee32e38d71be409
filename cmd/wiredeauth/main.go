// Command wiredeauth drives the wireless deauthentication orchestrator
// end to end: it parses flags, opens the raw packet channel on the
// named interface, optionally pre-seeds inventories from a record file,
// and then alternates probing and deauthenticating until a signal or a
// fatal channel error stops it. This is the only package that calls
// os.Exit; every other package returns errors for its caller to decide
// on (spec.md §6).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bssid-zero/wiredeauth/internal/adapters/recordfile"
	"github.com/bssid-zero/wiredeauth/internal/adapters/sniffer/codec"
	"github.com/bssid-zero/wiredeauth/internal/adapters/sniffer/driver"
	"github.com/bssid-zero/wiredeauth/internal/config"
	"github.com/bssid-zero/wiredeauth/internal/core/domain"
	"github.com/bssid-zero/wiredeauth/internal/orchestrator"
	"github.com/bssid-zero/wiredeauth/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	logger = logger.With("run_id", uuid.New().String())

	if path := os.Getenv("WIREDEAUTH_DUMP_FRAME_FILE"); path != "" {
		dumpFrame(path)
		return
	}

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		config.PrintUsage()
		os.Exit(2)
	}

	telemetry.InitMetrics()
	if addr := os.Getenv("WIREDEAUTH_METRICS_ADDR"); addr != "" {
		go serveMetrics(logger, addr)
	}

	dctx := orchestrator.New(logger, driver.NewWirelessDriver())
	if err := dctx.Config(orchestrator.Options{
		InterfaceName:    cfg.Interface,
		NDeauthRounds:    cfg.NDeauthRounds,
		AllowedChannels:  cfg.Channels,
		Blacklist:        toBlacklist(cfg.Blacklist),
		ProbesPerChannel: cfg.ProbeRate,
		ProbeAddrLimit:   cfg.MaxProbeAddrs,
		ProbeTimeLimitS:  cfg.MaxProbeTime,
	}); err != nil {
		logger.Error("configuration rejected", "error", err)
		os.Exit(2)
	}

	if path := os.Getenv("WIREDEAUTH_RECORD_FILE"); path != "" {
		loadRecordFile(logger, dctx, path)
	}

	if err := dctx.Init(); err != nil {
		logger.Error("failed to initialize raw packet channel", "interface", cfg.Interface, "error", err)
		os.Exit(1)
	}
	defer dctx.Exit()
	defer dctx.Destroy()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := make(chan error, 1)
	go func() { runErr <- dctx.Run() }()

	logger.Info("wiredeauth started",
		"interface", cfg.Interface, "channels", cfg.Channels, "n_deauth_rounds", cfg.NDeauthRounds)

	select {
	case <-sigCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-runErr:
		logger.Error("main loop stopped", "error", err)
		os.Exit(1)
	}
}

// dumpFrame is the WIREDEAUTH_DUMP_FRAME_FILE diagnostic path
// (SPEC_FULL.md §2): decode one
// captured frame with gopacket's layered decoder and print a
// human-readable summary, entirely separate from the bit-exact
// codec.ParseIncoming/ForgeBroadcastDeauth path the probe/deauth loop
// actually uses.
func dumpFrame(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(codec.Dump(data))
}

func toBlacklist(macs []domain.MAC) domain.Blacklist {
	out := make(domain.Blacklist, len(macs))
	for i, m := range macs {
		out[i] = domain.BlacklistEntry{MAC: m}
	}
	return out
}

func serveMetrics(logger *slog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("metrics endpoint listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics endpoint stopped", "error", err)
	}
}

// loadRecordFile pre-seeds every allowed channel's inventory from an
// optional pipe-separated record file (spec.md §9, SPEC_FULL.md §3). A
// missing or unreadable file is a warning, not a fatal error: gather_aps
// and deauth_aps are correct against an empty inventory.
func loadRecordFile(logger *slog.Logger, dctx *orchestrator.DeauthContext, path string) {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("record file not readable, skipping pre-seed", "path", path, "error", err)
		return
	}
	defer f.Close()

	var inventories [14]*domain.AccessPointInventory
	for c := 1; c <= 14; c++ {
		inventories[c-1] = dctx.Inventory(c)
	}

	n, err := recordfile.Load(f, inventories)
	if err != nil {
		logger.Warn("record file load stopped early", "path", path, "loaded", n, "error", err)
		return
	}
	logger.Info("record file loaded", "path", path, "records", n)
}
