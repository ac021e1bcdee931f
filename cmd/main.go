package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/internal/logger"
	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/pkg/util/scoresight"
)

const version = "1.0.0"

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, `ScoreSight %s, Premier League match predictions

Usage: scoresight [flags] [command] [args]

Commands:
  serve                    run the MCP server on stdin/stdout (default)
  predict HOME AWAY DATE   predict a fixture, DATE is YYYY-MM-DD
  teams                    list the teams in the data
  form TEAM DATE [VENUE]   recent form before DATE, VENUE is home or away
  h2h HOME AWAY DATE       recent meetings before DATE
  season [DATE]            the season DATE falls in
  discover                 list the seasons football-data.co.uk offers
  download                 fetch the configured seasons into the cache
  import [CSV...]          load CSVs (default: the cache) into the sqlite database
  backtest FROM TO         predict every stored match in the range and report accuracy

Flags:
`, version)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	data := flag.String("data", "", "comma separated football-data CSV files to load")
	db := flag.String("db", "", "sqlite database of imported matches")
	model := flag.String("model", "", "pre-trained model bundle (JSON)")
	logLevel := flag.String("log", "", "log level: DEBUG, INFO, WARN or ERROR")
	flag.Usage = usage
	flag.Parse()

	cfg, err := scoresight.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *data != "" {
		cfg.DataFiles = strings.Split(*data, ",")
	}
	if *db != "" {
		cfg.DbPath = *db
	}
	if *model != "" {
		cfg.ModelPath = *model
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	command := "serve"
	args := flag.Args()
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}
	configureLogging(cfg, command == "serve")
	logger.Info("Starting scoresight", version, command)

	if err := run(command, args, cfg); err != nil {
		if scoresight.IsUserError(err) || isUsageError(err) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		logger.Fatal("scoresight "+command+" failed", err)
	}
}

// configureLogging keeps stdout clear for JSON-RPC when serving
func configureLogging(cfg *scoresight.Config, serving bool) {
	logger.SetShowDateTime(true)
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	logger.SetLevel(level)
	logger.SetLogFile(cfg.LogFile)

	output := 'c'
	if cfg.LogOutput != "" {
		output = rune(cfg.LogOutput[0])
	}
	if serving {
		output = 'f'
		logger.SetColour(false)
	}
	if err := logger.SetLogOutput(output); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	// subcommands print their results on stdout
	if output == 'c' {
		logger.SetWriter(os.Stderr)
	}
}
