// Command arbexec runs the off-chain Solana arbitrage executor. Grounded
// on original_source/src/main.rs's clap-based CLI, with the app
// structure (urfave/cli, flags, Before hook, subcommands) following the
// teacher's cmd/evm-node/main.go.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/luxfi/arbexec/config"
	"github.com/luxfi/arbexec/engine"
	"github.com/luxfi/arbexec/metrics"
	"github.com/luxfi/arbexec/xlog"
)

// version is set at build time via -ldflags.
var version = "dev"

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Value:   "config.toml",
	Usage:   "path to the TOML configuration file",
}

var metricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "",
	Usage: "address to serve Prometheus metrics on (disabled when empty)",
}

func main() {
	app := &cli.App{
		Name:    "arbexec",
		Usage:   "an off-chain arbitrage executor built on a swap aggregator",
		Version: version,
		Flags:   []cli.Flag{configFlag, metricsAddrFlag},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the arbitrage executor",
				Flags: []cli.Flag{configFlag, metricsAddrFlag},
				Action: runCommand,
			},
			{
				Name:  "init",
				Usage: "write a starter config.toml to the current directory",
				Action: initCommand,
			},
			{
				Name:  "version",
				Usage: "print the build version",
				Action: func(c *cli.Context) error {
					fmt.Println(version)
					return nil
				},
			},
		},
		Action: runCommand,
	}

	if err := app.Run(os.Args); err != nil {
		xlog.Crit("fatal error", "err", err)
		os.Exit(1)
	}
}

func runCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := xlog.SetLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("set log level: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	if addr := c.String("metrics-addr"); addr != "" {
		go serveMetrics(addr)
	}

	xlog.Info("starting arbexec", "version", version)
	bot, err := engine.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}

	ticker := time.NewTicker(cfg.Frequency())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			xlog.Info("shutdown signal received, exiting")
			return nil
		case <-ticker.C:
			if err := bot.RunOnce(ctx); err != nil {
				xlog.Error("cycle failed", "err", err)
			}
		}
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	xlog.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		xlog.Error("metrics server stopped", "err", err)
	}
}

const configTemplate = `log_level = "info"
private_key = "~/.config/solana/id.json"
frequency = 500
simulate_transaction = true
skip_preflight = false
rpc_endpoint = "https://api.mainnet-beta.solana.com"
jup_v6_api_base_url = "https://lite-api.jup.ag/swap/v1"
max_latency_ms = 0
http_request_timeout = 3000
min_profit_threshold_amount = 8000000
min_profit_amount = 8000000
prioritization_fee_lamports = 0
ips = ""

[swap]
wrap_and_unwrap_sol = true
input_mint = "So11111111111111111111111111111111111111112"
output_mint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
input_amount = "1sol"
slippage_bps = 50
dexes = []
exclude_dexes = []
only_direct_routes = false
platform_fee_bps = 0
dynamic_slippage = false

[jito]
bundle_submit = false
rpc_endpoint = "https://tokyo.mainnet.block-engine.jito.wtf"
fixed_tip_amount = 1000
tip_rate_enabled = false
tip_rate = 10
min_tip_amount = 1000
max_tip_amount = 5000
bundle_statuses_checking = true
`

func initCommand(c *cli.Context) error {
	path := "config.toml"
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("%s already exists, overwrite? (y/N): ", path)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("aborted")
			return nil
		}
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
