// Command analyze runs a fixed-duration information-set search over a PBN
// deal and prints the root card scores under the adversarial-opponent,
// optimistic-partner backup models.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"bridgecard/backup"
	"bridgecard/config"
	"bridgecard/deal"
	"bridgecard/engine"
	"bridgecard/oracle"
	"bridgecard/state"
)

func main() {
	cfg := config.Defaults()
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("analyze: loading config")
	}

	switch cfg.LogLevel {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Info().Interface("config", cfg).Msg("analyze: loaded config")

	args := cfg.Args
	if len(args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: analyze [flags] <pbn> <declarer> <contract>")
		os.Exit(2)
	}
	hands, err := deal.ParsePBN(args[0])
	if err != nil {
		log.Fatal().Err(err).Msg("analyze: parsing deal")
	}
	declarer, ok := deal.ParseSeat(args[1])
	if !ok {
		log.Fatal().Str("declarer", args[1]).Msg("analyze: unrecognized seat")
	}
	contract, err := deal.ParseContract(args[2])
	if err != nil {
		log.Fatal().Err(err).Msg("analyze: parsing contract")
	}

	game := state.New(hands, declarer, contract)

	var o oracle.Oracle
	switch cfg.OracleCommand {
	case "table", "":
		o = oracle.New()
	default:
		log.Fatal().Str("oracle-command", cfg.OracleCommand).Msg("analyze: unsupported oracle backend")
	}

	e := engine.New(cfg.Engine.Threads, o)
	e.Attach(game)
	e.SetIterationCap(cfg.Engine.IterationCap)
	e.OnProgress(func(p engine.Progress) {
		log.Debug().Int64("iterations", p.Iterations).Dur("elapsed", p.Elapsed).Msg("analyze: progress")
	})

	e.Search(5000, 500, cfg.Engine.Depth)

	scores := e.Evaluate(backup.Adversarial{}, backup.Optimistic{})
	for c, v := range scores {
		fmt.Printf("%s\t%.4f\n", c, v)
	}
}
