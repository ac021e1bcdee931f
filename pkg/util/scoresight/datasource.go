package scoresight

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/internal/logger"
)

// MatchSource supplies the raw historical matches for a MatchStore
type MatchSource interface {
	// Name identifies the source in errors and logs
	Name() string
	// Load returns every match. ErrSourceNotFound means the source does not exist at all.
	Load(ctx context.Context) ([]*Match, error)
}

// Columns every football-data style CSV must have
var RequiredColumns = []string{"Date", "HomeTeam", "AwayTeam", "FTHG", "FTAG", "FTR"}

// Accepted date layouts. Slash separated dates are always day first.
var csvDateLayouts = []string{
	"02/01/2006",
	"02/01/06",
	"2/1/2006",
	"2/1/06",
	DateLayout,
}

/////////////////////////////////////////////////////////////////////////
////// Football-Data.co.uk CSV
/////////////////////////////////////////////////////////////////////////

// CSVSource loads one or more football-data.co.uk CSV files
type CSVSource struct {
	Paths []string
}

func NewCSVSource(paths ...string) *CSVSource {
	return &CSVSource{Paths: paths}
}

func (s *CSVSource) Name() string {
	return "csv:" + strings.Join(s.Paths, ",")
}

// Load parses every file in order.
// Only when none of the files exist is ErrSourceNotFound returned, a partially missing set is an error.
func (s *CSVSource) Load(ctx context.Context) ([]*Match, error) {
	var present []string
	var missing []string
	for _, p := range s.Paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				missing = append(missing, p)
				continue
			}
			return nil, NewDataSourceError(p, 0, err)
		}
		present = append(present, p)
	}
	if len(present) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, s.Name())
	}
	if len(missing) > 0 {
		return nil, NewDataSourceError(strings.Join(missing, ","), 0, fmt.Errorf("file does not exist"))
	}

	var matches []*Match
	for _, p := range present {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := os.Open(p)
		if err != nil {
			return nil, NewDataSourceError(p, 0, err)
		}
		ms, err := ParseFootballDataCSV(f, p)
		f.Close()
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded matches from", p, len(ms))
		matches = append(matches, ms...)
	}
	return matches, nil
}

// ParseFootballDataCSV parses a football-data.co.uk CSV.
// Any malformed row fails the whole file with a *DataSourceError naming the row.
func ParseFootballDataCSV(r io.Reader, source string) ([]*Match, error) {
	reader := csv.NewReader(r)
	// football-data files are ragged, later seasons add betting columns
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, NewDataSourceError(source, 0, fmt.Errorf("failed to parse CSV: %w", err))
	}
	if len(records) == 0 {
		return nil, NewDataSourceError(source, 0, fmt.Errorf("file is empty"))
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff") // Remove BOM
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}
	if missing := missingColumns(headers); len(missing) > 0 {
		return nil, NewDataSourceError(source, 0, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	var matches []*Match
	for i, record := range records[1:] {
		rowNum := i + 1
		row := make(map[string]string, len(headers))
		for j, value := range record {
			if j < len(headers) {
				row[headers[j]] = strings.TrimSpace(value)
			}
		}
		// trailing ",,,," lines are common at the end of a season file
		if rowIsBlank(row) {
			continue
		}
		match, err := ParseFootballDataRow(row)
		if err != nil {
			return nil, NewDataSourceError(source, rowNum, err)
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func missingColumns(headers []string) []string {
	have := make(map[string]bool, len(headers))
	for _, h := range headers {
		have[h] = true
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

func rowIsBlank(row map[string]string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

// ParseFootballDataRow converts a CSV row from football-data.co.uk to a Match
func ParseFootballDataRow(row map[string]string) (*Match, error) {
	homeTeam := row["HomeTeam"]
	awayTeam := row["AwayTeam"]
	if homeTeam == "" || awayTeam == "" {
		return nil, fmt.Errorf("missing team names")
	}

	date, err := ParseFootballDataDate(row["Date"])
	if err != nil {
		return nil, err
	}

	homeGoals, err := requiredInt(row, "FTHG")
	if err != nil {
		return nil, err
	}
	awayGoals, err := requiredInt(row, "FTAG")
	if err != nil {
		return nil, err
	}

	match := NewMatch(date, homeTeam, awayTeam, homeGoals, awayGoals)

	result := strings.ToUpper(row["FTR"])
	if result == "" {
		return nil, fmt.Errorf("FTR is blank")
	}
	if result != match.Result {
		return nil, fmt.Errorf("FTR %q is inconsistent with score %d-%d", result, homeGoals, awayGoals)
	}

	optional := []struct {
		column string
		dest   *int
	}{
		{"HTHG", &match.HalfTimeHomeGoals},
		{"HTAG", &match.HalfTimeAwayGoals},
		{"HS", &match.HomeShots},
		{"AS", &match.AwayShots},
		{"HST", &match.HomeShotsOnTarget},
		{"AST", &match.AwayShotsOnTarget},
		{"HC", &match.HomeCorners},
		{"AC", &match.AwayCorners},
		{"HF", &match.HomeFouls},
		{"AF", &match.AwayFouls},
		{"HY", &match.HomeYellowCards},
		{"AY", &match.AwayYellowCards},
		{"HR", &match.HomeRedCards},
		{"AR", &match.AwayRedCards},
	}
	for _, o := range optional {
		v, err := optionalInt(row, o.column)
		if err != nil {
			return nil, err
		}
		*o.dest = v
	}
	return match, nil
}

// ParseFootballDataDate parses a football-data date, day first.
// Kick off times are ignored, a match belongs to its calendar date.
func ParseFootballDataDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("no Date value")
	}
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse date %q, expected DD/MM/YYYY, DD/MM/YY or YYYY-MM-DD", s)
}

func requiredInt(row map[string]string, column string) (int, error) {
	value := row[column]
	if value == "" {
		return 0, fmt.Errorf("%s is blank", column)
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s value %q is not an integer", column, value)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s value %d is negative", column, v)
	}
	return v, nil
}

// optionalInt returns -1 for a missing or blank column
func optionalInt(row map[string]string, column string) (int, error) {
	if FieldIsBlank(column, row) {
		return -1, nil
	}
	value := row[column]
	v, err := strconv.Atoi(value)
	if err != nil {
		// some seasons write counts as 3.0
		f, ferr := strconv.ParseFloat(value, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("%s value %q is not an integer", column, value)
		}
		v = int(f)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s value %d is negative", column, v)
	}
	return v, nil
}

// FieldIsBlank checks if a field in the row is blank/empty/missing
func FieldIsBlank(field string, row map[string]string) bool {
	if field == "" {
		return true
	}
	value, exists := row[field]
	if !exists {
		return true
	}
	return valueIsBlank(value)
}

// valueIsBlank treats "", "-1" and "-1.0" as not recorded
func valueIsBlank(value string) bool {
	if value == "" {
		return true
	}
	if floatVal, err := strconv.ParseFloat(value, 64); err == nil && floatVal == -1.0 {
		return true
	}
	return false
}

/////////////////////////////////////////////////////////////////////////
////// SQLite
/////////////////////////////////////////////////////////////////////////

// SQLiteSource loads the matches table written by ImportMatches
type SQLiteSource struct {
	Path string
	DB   *Database // optional, an already open database
}

func NewSQLiteSource(path string) *SQLiteSource {
	return &SQLiteSource{Path: path}
}

func (s *SQLiteSource) Name() string {
	if s.DB != nil {
		return "sqlite:" + s.DB.Path()
	}
	return "sqlite:" + s.Path
}

func (s *SQLiteSource) Load(ctx context.Context) ([]*Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d := s.DB
	if d == nil {
		if _, err := os.Stat(s.Path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, s.Name())
		}
		opened, err := OpenDatabase(s.Path)
		if err != nil {
			return nil, NewDataSourceError(s.Name(), 0, err)
		}
		defer opened.Close()
		d = opened
	}
	matches, err := LoadMatches(d)
	if err != nil {
		return nil, NewDataSourceError(s.Name(), 0, err)
	}
	return matches, nil
}
