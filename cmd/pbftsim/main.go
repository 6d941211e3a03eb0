// Package main
//
// @author: xwc1125
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/chain5j/chain5j-pkg/codec/json"
	"github.com/chain5j/chain5j-pkg/util/dateutil"
	"github.com/chain5j/logger"
	"github.com/chain5j/logger/zap"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	pbft "github.com/xaviwho/poa-pow-sims"
	"github.com/xaviwho/poa-pow-sims/metrics"
	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
)

var txTypes = []string{"transfer", "contract", "storage"}

type cliConfig struct {
	configFile  string
	validators  int
	byzantine   int
	probability float64
	seed        int64
	rounds      int
	payloadSize int
	realtime    bool
	output      string
	metricsAddr string
	verbose     bool
}

func main() {
	// .env 不会覆盖已有的环境变量
	for _, path := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(path); err == nil {
			fmt.Fprintf(os.Stderr, "[INFO] Loaded environment from: %s\n", path)
			break
		}
	}

	cfg := parseFlags()
	console := logger.ConsoleLogConfig{
		Level:    3,
		Modules:  "*",
		ShowPath: false,
		UseColor: true,
		Console:  true,
	}
	if cfg.verbose {
		console.Level = 4
	}
	zap.InitWithConfig(&logger.LogConfig{
		Console: console,
		File:    logger.FileLogConfig{},
	})
	log := logger.New("pbftsim")

	if err := run(cfg, log); err != nil {
		log.Error("pbftsim failed", "err", err)
		os.Exit(1)
	}
}

func parseFlags() cliConfig {
	cfg := cliConfig{}
	flag.StringVar(&cfg.configFile, "config", envString("PBFT_CONFIG", ""), "JSON pbft config file")
	flag.IntVar(&cfg.validators, "n", envInt("PBFT_VALIDATORS", pbftProtocol.DefaultValidatorCount), "Number of validators")
	flag.IntVar(&cfg.byzantine, "byzantine", envInt("PBFT_BYZANTINE", pbftProtocol.DefaultByzantineCount), "Number of byzantine validators")
	flag.Float64Var(&cfg.probability, "p", envFloat("PBFT_FAILURE_PROBABILITY", pbftProtocol.DefaultFailureProbability), "Failure probability of byzantine validators")
	flag.Int64Var(&cfg.seed, "seed", int64(envInt("PBFT_SEED", int(pbftProtocol.DefaultSeed))), "Fault model seed")
	flag.IntVar(&cfg.rounds, "rounds", envInt("PBFT_ROUNDS", 100), "Number of synthetic work items")
	flag.IntVar(&cfg.payloadSize, "payload", envInt("PBFT_PAYLOAD_SIZE", 256), "Synthetic payload size in bytes")
	flag.BoolVar(&cfg.realtime, "realtime", envBool("PBFT_REALTIME", false), "Suspend for each phase duration")
	flag.StringVar(&cfg.output, "o", envString("PBFT_OUTPUT", ""), "Output report file (JSON), stdout if empty")
	flag.StringVar(&cfg.metricsAddr, "metrics", envString("PBFT_METRICS_ADDR", ""), "Serve prometheus /metrics on this address")
	flag.BoolVar(&cfg.verbose, "v", envBool("PBFT_VERBOSE", false), "Debug logging")
	flag.Parse()
	return cfg
}

func loadConfig(cfg cliConfig) (*pbftProtocol.PBFTConfig, error) {
	config := pbftProtocol.DefaultConfig()
	if cfg.configFile != "" {
		blob, err := os.ReadFile(cfg.configFile)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(blob, config); err != nil {
			return nil, fmt.Errorf("decode %s: %w", cfg.configFile, err)
		}
	}

	// 显式指定的命令行参数覆盖配置文件
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n":
			config.ValidatorCount = cfg.validators
		case "byzantine":
			config.ByzantineCount = cfg.byzantine
		case "p":
			config.FailureProbability = cfg.probability
		case "seed":
			config.Seed = cfg.seed
		case "realtime":
			config.Realtime = cfg.realtime
		}
	})
	if cfg.configFile == "" {
		config.ValidatorCount = cfg.validators
		config.ByzantineCount = cfg.byzantine
		config.FailureProbability = cfg.probability
		config.Seed = cfg.seed
		config.Realtime = cfg.realtime
	}
	return config, config.ValidateBasic()
}

func run(cfg cliConfig, log logger.Logger) error {
	config, err := loadConfig(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	sim, err := pbft.NewSimulator(ctx,
		pbft.WithConfig(config),
		pbft.WithRegisterer(reg),
		pbft.WithLogger(logger.New("pbft")),
	)
	if err != nil {
		return err
	}

	var server *http.Server
	if cfg.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		server = &http.Server{Addr: cfg.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server error", "addr", cfg.metricsAddr, "err", err)
			}
		}()
		log.Info("metrics server listening", "addr", cfg.metricsAddr)
	}

	if err := sim.Start(); err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		sim.Stop()
	}()

	if err := submitWorkload(sim, cfg); err != nil {
		return err
	}
	start := time.Now()
	if _, err := sim.Run(); err != nil && !errors.Is(err, pbftProtocol.ErrStoppedEngine) {
		return err
	}

	summary := sim.Summary()
	log.Info("simulation finished",
		"runId", sim.RunID(),
		"rounds", summary.Rounds,
		"committed", summary.Committed,
		"failed", summary.Failed,
		"viewChanges", summary.ViewChanges,
		"byzantineEvents", summary.ByzantineEvents,
		"messages", summary.TotalMessages,
		"bytes", summary.TotalBytes,
		"avgFinality", summary.AvgFinality,
		"elapsed", dateutil.PrettyDuration(time.Since(start)),
	)

	if err := writeReport(sim.Report(), cfg.output); err != nil {
		return err
	}

	if server != nil {
		log.Info("serving metrics until interrupted", "addr", cfg.metricsAddr)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
	return nil
}

// submitWorkload 生成不透明的工作项，并将交易与gas数据透传到报告
func submitWorkload(sim *pbft.Simulator, cfg cliConfig) error {
	r := rand.New(rand.NewSource(cfg.seed))
	for i := 0; i < cfg.rounds; i++ {
		id := fmt.Sprintf("tx-%06d", i)
		txType := txTypes[i%len(txTypes)]
		payload := make([]byte, cfg.payloadSize)
		r.Read(payload)

		if err := sim.Submit(&pbftProtocol.Request{ID: id, Type: txType, Payload: payload}); err != nil {
			return err
		}
		tx, err := json.Marshal(map[string]interface{}{"id": id, "type": txType, "size": len(payload)})
		if err != nil {
			return err
		}
		if err := sim.AddTransaction(tx); err != nil {
			return err
		}
		gas, err := json.Marshal(map[string]interface{}{"txHash": id, "gasUsed": 21000 + 16*len(payload)})
		if err != nil {
			return err
		}
		if err := sim.AddGasUsage(gas); err != nil {
			return err
		}
	}
	return nil
}

func writeReport(report *pbft.Report, output string) error {
	blob, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	blob = append(blob, '\n')
	if output == "" {
		_, err = os.Stdout.Write(blob)
		return err
	}
	return os.WriteFile(output, blob, 0o644)
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}
