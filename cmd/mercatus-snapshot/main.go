// mercatus-snapshot runs the market pipeline once and writes the
// resulting snapshot as JSON, for debugging and ad-hoc inspection
// without the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mercatus/internal/common"
	"github.com/ternarybob/mercatus/internal/isyatirim"
	"github.com/ternarybob/mercatus/internal/services/pipeline"
	"github.com/ternarybob/mercatus/internal/services/treemap"
)

var (
	configFile  = flag.String("config", "", "Configuration file path")
	outFile     = flag.String("out", "", "Write snapshot JSON to file instead of stdout")
	showVersion = flag.Bool("version", false, "Print version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("mercatus-snapshot version %s\n", common.GetVersion())
		os.Exit(0)
	}

	godotenv.Load()

	config, err := common.LoadFromFile(*configFile)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}
	if err := config.Validate(); err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("Configuration validation failed")
		os.Exit(1)
	}

	// Log to console only; snapshot JSON goes to stdout or -out
	logger := common.GetLogger().WithLevelFromString(config.Logging.Level)

	pageClient := isyatirim.NewClient(config.Fetch.URL,
		isyatirim.WithUserAgent(config.Fetch.UserAgent),
		isyatirim.WithTimeout(config.Fetch.TimeoutDuration()),
		isyatirim.WithRateLimit(config.Fetch.RateLimit),
		isyatirim.WithMaxBodySize(int64(config.Fetch.MaxBodySize)),
		isyatirim.WithLogger(logger),
	)

	pipelineService := pipeline.NewService(
		pageClient,
		treemap.NewBuilder(logger),
		config.Tables.SectorIndex,
		config.Tables.ReturnIndex,
		logger,
	)

	snapshot, err := pipelineService.Run(context.Background())
	if err != nil {
		logger.Fatal().Err(err).Msg("Pipeline run failed")
		os.Exit(1)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to marshal snapshot")
		os.Exit(1)
	}

	if *outFile != "" {
		if err := os.WriteFile(*outFile, data, 0644); err != nil {
			logger.Fatal().Err(err).Str("path", *outFile).Msg("Failed to write snapshot file")
			os.Exit(1)
		}
		logger.Info().
			Str("path", *outFile).
			Int("records", len(snapshot.Records)).
			Msg("Snapshot written")
		return
	}

	fmt.Println(string(data))
}
