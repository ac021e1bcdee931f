package scoresight

import (
	"fmt"
	"strings"
	"time"

	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/pkg/util"
)

// seasonStartMonth is the first month of an English football season
const seasonStartMonth = time.August

// ParseSeason normalises a season to the form YYYY/YYYY
// Accepts YYYY/YYYY, YYYY-YYYY, YYYY/YY, YYYY-YY and the football-data form YYZZ (2425)
func ParseSeason(season any) (string, error) {
	if season == nil {
		return "", fmt.Errorf("must pass a season")
	}
	ss, err := util.GetAsString(season)
	if err != nil {
		return "", err
	}
	ss = strings.TrimSpace(ss)

	var first, second string
	switch {
	case len(ss) == 9 && (ss[4] == '-' || ss[4] == '/'):
		first, second = ss[:4], ss[5:]
	case len(ss) == 7 && (ss[4] == '-' || ss[4] == '/'):
		// YYYY/YY as in 2023/24, the century comes from the first year
		first, second = ss[:4], ss[:2]+ss[5:]
	case len(ss) == 4:
		// football-data.co.uk short form 2324
		first, second = "20"+ss[:2], "20"+ss[2:]
	default:
		return "", fmt.Errorf("invalid season format: %s", ss)
	}

	y1, err := util.GetAsInteger(first)
	if err != nil {
		return "", fmt.Errorf("invalid season format: %s", ss)
	}
	y2, err := util.GetAsInteger(second)
	if err != nil {
		return "", fmt.Errorf("invalid season format: %s", ss)
	}
	if y2 != y1+1 {
		return "", fmt.Errorf("season years must be consecutive: %s", ss)
	}
	return fmt.Sprintf("%04d/%04d", y1, y2), nil
}

// SeasonForDate returns the season a date falls in.
// A season runs August to July, so 2024-03-01 belongs to 2023/2024.
func SeasonForDate(t time.Time) string {
	y := t.Year()
	if t.Month() < seasonStartMonth {
		y--
	}
	return fmt.Sprintf("%04d/%04d", y, y+1)
}

// Given a season of the form yyyy/yyyy+1 return the first year
func GetFirstYear(season any) (int, error) {
	s, err := ParseSeason(season)
	if err != nil {
		return 0, err
	}
	return util.GetAsInteger(s[:4])
}

// Given a season of the form yyyy/yyyy+1 return the second year
func GetSecondYear(season any) (int, error) {
	s, err := ParseSeason(season)
	if err != nil {
		return 0, err
	}
	return util.GetAsInteger(s[5:])
}

/**
* Returns true if the given two parameters represent the same season (year/year+1)
 */
func IsSameSeason(s1 any, s2 any) (bool, error) {
	season1, err := ParseSeason(s1)
	if err != nil {
		return false, err
	}
	season2, err := ParseSeason(s2)
	if err != nil {
		return false, err
	}
	return season1 == season2, nil
}

// IsCurrentSeason reports whether season contains now
func IsCurrentSeason(season any, now time.Time) bool {
	same, err := IsSameSeason(season, SeasonForDate(now))
	return err == nil && same
}

// SeasonToNative converts "2024/2025" to the football-data.co.uk directory name "2425"
func SeasonToNative(season any) (string, error) {
	s, err := ParseSeason(season)
	if err != nil {
		return "", err
	}
	return s[2:4] + s[7:9], nil
}

// SeasonBounds returns the first and last day of a season
func SeasonBounds(season any) (time.Time, time.Time, error) {
	first, err := GetFirstYear(season)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(first, seasonStartMonth, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, -1)
	return start, end, nil
}
