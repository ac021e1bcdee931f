package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/internal/logger"
	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/pkg/protocol"
	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/pkg/server"
	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/pkg/tools"
	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/pkg/transport"
	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/pkg/util/scoresight"
)

type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func isUsageError(err error) bool {
	var ue *usageError
	return errors.As(err, &ue)
}

func needArgs(command string, args []string, least, most int, names string) error {
	if len(args) < least || len(args) > most {
		return &usageError{fmt.Sprintf("usage: scoresight %s %s", command, names)}
	}
	return nil
}

func run(command string, args []string, cfg *scoresight.Config) error {
	switch command {
	case "serve":
		return serve(cfg)
	case "predict":
		if err := needArgs(command, args, 3, 3, "HOME AWAY DATE"); err != nil {
			return err
		}
		return predict(cfg, args[0], args[1], args[2])
	case "teams":
		engine, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(engine.AvailableTeams(), "\n"))
		return nil
	case "form":
		if err := needArgs(command, args, 2, 3, "TEAM DATE [home|away]"); err != nil {
			return err
		}
		return form(cfg, args)
	case "h2h":
		if err := needArgs(command, args, 3, 3, "HOME AWAY DATE"); err != nil {
			return err
		}
		return headToHead(cfg, args[0], args[1], args[2])
	case "season":
		if err := needArgs(command, args, 0, 1, "[DATE]"); err != nil {
			return err
		}
		return season(cfg, args)
	case "discover":
		return discover(cfg)
	case "download":
		return download(cfg)
	case "import":
		return importMatches(cfg, args)
	case "backtest":
		if err := needArgs(command, args, 2, 2, "FROM TO"); err != nil {
			return err
		}
		return backtest(cfg, args[0], args[1])
	}
	return &usageError{fmt.Sprintf("unknown command %q, run scoresight -h for help", command)}
}

// matchSource picks explicit CSVs, then the imported database, then the download cache.
// With none of them present the store falls back to the built-in sample.
func matchSource(cfg *scoresight.Config) scoresight.MatchSource {
	if len(cfg.DataFiles) > 0 {
		return scoresight.NewCSVSource(cfg.DataFiles...)
	}
	if _, err := os.Stat(cfg.DbPath); err == nil {
		return scoresight.NewSQLiteSource(cfg.DbPath)
	}
	if cached := scoresight.NewDownloader(cfg, nil).CachedFiles(); len(cached) > 0 {
		return scoresight.NewCSVSource(cached...)
	}
	return scoresight.NewSQLiteSource(cfg.DbPath)
}

func buildEngine(cfg *scoresight.Config) (*scoresight.Engine, error) {
	store, err := scoresight.LoadMatchStore(context.Background(), matchSource(cfg))
	if err != nil {
		return nil, err
	}
	models, err := scoresight.LoadModels(store, cfg)
	if err != nil {
		return nil, err
	}
	return scoresight.NewEngine(store, models, cfg)
}

func serve(cfg *scoresight.Config) error {
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	s := server.NewServer(transport.NewStdioTransport(), protocol.ServerInfo{Name: "scoresight", Version: version})
	for _, r := range tools.NewScoreSightTools(engine).Registrations() {
		s.RegisterTool(r.Tool, server.HandlerFunc(r.Handler))
	}
	err = s.Start()
	logger.Info("MCP server shutting down")
	return err
}

func predict(cfg *scoresight.Config, home, away, date string) error {
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	result, err := engine.Predict(home, away, date)
	if err != nil {
		return err
	}
	report, err := scoresight.RenderReportMarkdown(result)
	if err != nil {
		return err
	}
	fmt.Println(report)
	return nil
}

func form(cfg *scoresight.Config, args []string) error {
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	venue := scoresight.VenueAny
	if len(args) == 3 {
		venue = scoresight.ParseVenue(args[2])
	}
	f, err := engine.TeamVenueForm(args[0], args[1], venue)
	if err != nil {
		return err
	}
	fmt.Printf("%s before %s (%s, last %d)\n", f.Team, args[1], f.Venue, f.Window)
	if f.Fallback {
		fmt.Println("no matches, league averages used")
	} else {
		fmt.Printf("form:     %s (W%d D%d L%d)\n", f.Sequence, f.Wins, f.Draws, f.Losses)
	}
	fmt.Printf("scored:   %.2f per game\n", f.GoalsForAvg)
	fmt.Printf("conceded: %.2f per game\n", f.GoalsAgainstAvg)
	fmt.Printf("points:   %.2f per game\n", f.PointsAvg)
	return nil
}

func headToHead(cfg *scoresight.Config, home, away, date string) error {
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	h, err := engine.HeadToHead(home, away, date)
	if err != nil {
		return err
	}
	if h.Fallback {
		fmt.Printf("%s and %s have not met before %s\n", h.Team1, h.Team2, date)
		return nil
	}
	fmt.Printf("%s v %s, last %d meetings before %s\n", h.Team1, h.Team2, h.TotalMatches, date)
	fmt.Printf("%s wins: %d\n%s wins: %d\ndraws: %d\n", h.Team1, h.Team1Wins, h.Team2, h.Team2Wins, h.Draws)
	fmt.Printf("average score: %.2f-%.2f\n", h.Team1GoalsAvg, h.Team2GoalsAvg)
	return nil
}

func season(cfg *scoresight.Config, args []string) error {
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	now := time.Now()
	date := now.Format(scoresight.DateLayout)
	if len(args) == 1 {
		date = args[0]
	}
	info, err := engine.SeasonInfo(date, now)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s to %s), football-data directory %s\n", info.Season, info.Start, info.End, info.Native)
	fmt.Printf("%d matches stored", info.Matches)
	if info.LastDate != "" {
		fmt.Printf(", latest %s", info.LastDate)
	}
	if info.Current {
		fmt.Print(", in progress")
	}
	fmt.Println()
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func discover(cfg *scoresight.Config) error {
	ctx, cancel := signalContext()
	defer cancel()
	files, err := scoresight.NewDownloader(cfg, nil).Discover(ctx)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Printf("%s  %s\n", f.Season, f.URL)
	}
	return nil
}

func download(cfg *scoresight.Config) error {
	ctx, cancel := signalContext()
	defer cancel()
	paths, err := scoresight.NewDownloader(cfg, nil).Download(ctx)
	for _, p := range paths {
		fmt.Println(p)
	}
	return err
}

func importMatches(cfg *scoresight.Config, files []string) error {
	if len(files) == 0 {
		files = cfg.DataFiles
	}
	if len(files) == 0 {
		files = scoresight.NewDownloader(cfg, nil).CachedFiles()
	}
	if len(files) == 0 {
		return &usageError{"nothing to import, pass CSV files or run scoresight download first"}
	}
	matches, err := scoresight.NewCSVSource(files...).Load(context.Background())
	if err != nil {
		return err
	}
	db, err := scoresight.OpenDatabase(cfg.DbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	n, err := scoresight.ImportMatches(db, matches)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d matches into %s\n", n, cfg.DbPath)
	return nil
}

func backtest(cfg *scoresight.Config, from, to string) error {
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	agg, err := engine.Backtest(from, to)
	if err != nil {
		return err
	}
	fmt.Printf("%s to %s, model %s, %d matches (%d with limited history)\n",
		agg.From, agg.To, agg.Model, agg.TotalMatches, agg.FallbackMatches)
	fmt.Printf("result accuracy:      %.1f%%\n", agg.ResultAccuracy)
	fmt.Printf("exact score accuracy: %.1f%%\n", agg.ExactScoreAccuracy)
	fmt.Printf("mean goal difference error: %.2f\n", agg.AverageGoalDiffError)
	fmt.Printf("mean total goals error:     %.2f\n", agg.AverageTotalGoalsError)
	for _, predicted := range []string{scoresight.ResultHome, scoresight.ResultDraw, scoresight.ResultAway} {
		row := agg.Confusion[predicted]
		fmt.Printf("predicted %s: actual H %d, D %d, A %d\n", predicted, row[scoresight.ResultHome], row[scoresight.ResultDraw], row[scoresight.ResultAway])
	}
	return nil
}
