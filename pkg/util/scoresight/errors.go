package scoresight

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSourceNotFound is returned by a MatchSource when its backing file or database does not exist at all.
// LoadMatchStore treats it as the signal to fall back to the synthetic dataset.
var ErrSourceNotFound = errors.New("match source not found")

// DataSourceError means the historical data is present but cannot be used
type DataSourceError struct {
	Source string
	Row    int // 1-based data row, 0 when not row specific
	Err    error
}

func NewDataSourceError(source string, row int, err error) *DataSourceError {
	return &DataSourceError{Source: source, Row: row, Err: err}
}

func (e *DataSourceError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("data source %s: row %d: %v", e.Source, e.Row, e.Err)
	}
	return fmt.Sprintf("data source %s: %v", e.Source, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// UnknownTeamError means a requested team has no record in the match store
type UnknownTeamError struct {
	Team        string
	Reason      string
	Suggestions []string
}

func NewUnknownTeamError(team, reason string, suggestions []string) *UnknownTeamError {
	return &UnknownTeamError{Team: team, Reason: reason, Suggestions: suggestions}
}

func (e *UnknownTeamError) Error() string {
	msg := fmt.Sprintf("unknown team %q", e.Team)
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if len(e.Suggestions) > 0 {
		msg = fmt.Sprintf("%s (did you mean %s?)", msg, strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// InvalidDateError means a date argument could not be parsed
type InvalidDateError struct {
	Input string
}

func NewInvalidDateError(input string) *InvalidDateError {
	return &InvalidDateError{Input: input}
}

func (e *InvalidDateError) Error() string {
	if strings.TrimSpace(e.Input) == "" {
		return "invalid date: empty, expected YYYY-MM-DD"
	}
	return fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", e.Input)
}

// ModelContractError means a feature vector does not match what a model was fitted on.
// It is a programming error, never a user error.
type ModelContractError struct {
	Model    string
	Expected int
	Got      int
	Detail   string
}

func NewModelContractError(model string, expected, got int, detail string) *ModelContractError {
	return &ModelContractError{Model: model, Expected: expected, Got: got, Detail: detail}
}

func (e *ModelContractError) Error() string {
	msg := fmt.Sprintf("model contract violated for %s", e.Model)
	if e.Expected != e.Got {
		msg = fmt.Sprintf("%s: expected %d features, got %d", msg, e.Expected, e.Got)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return msg
}

// IsUserError reports whether err was caused by the caller's input rather than by the engine
func IsUserError(err error) bool {
	var ute *UnknownTeamError
	var ide *InvalidDateError
	return errors.As(err, &ute) || errors.As(err, &ide)
}
