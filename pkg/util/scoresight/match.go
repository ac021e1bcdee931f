package scoresight

import (
	"fmt"
	"strings"
	"time"
)

// Compile-time check to ensure Match implements Persistable interface
var _ Persistable = (*Match)(nil)

const (
	ResultHome = "H"
	ResultDraw = "D"
	ResultAway = "A"

	// DateLayout is the only layout accepted for request dates and the one used in the database
	DateLayout = "2006-01-02"
)

// Match represents one historical fixture with database persistence annotations
// Optional statistics hold -1 when the source did not record them
type Match struct {
	// Primary key
	ID string `json:"id" column:"id" dbtype:"TEXT" primary:"true"`

	// Info
	Date    time.Time `json:"date" persist:"false"`
	DateStr string    `json:"-" column:"date" dbtype:"TEXT NOT NULL" index:"true"`
	Season  string    `json:"season" column:"season" dbtype:"TEXT" index:"true"`

	HomeTeam string `json:"homeTeam" column:"homeTeam" dbtype:"TEXT NOT NULL" index:"true"`
	AwayTeam string `json:"awayTeam" column:"awayTeam" dbtype:"TEXT NOT NULL" index:"true"`

	// Core match data
	HomeGoals         int    `json:"homeGoals" column:"homeGoals" dbtype:"INTEGER NOT NULL"`
	AwayGoals         int    `json:"awayGoals" column:"awayGoals" dbtype:"INTEGER NOT NULL"`
	HalfTimeHomeGoals int    `json:"halfTimeHomeGoals" column:"halfTimeHomeGoals" dbtype:"INTEGER DEFAULT -1"`
	HalfTimeAwayGoals int    `json:"halfTimeAwayGoals" column:"halfTimeAwayGoals" dbtype:"INTEGER DEFAULT -1"`
	Result            string `json:"result" column:"result" dbtype:"TEXT NOT NULL"`

	// Action
	HomeShots         int `json:"homeShots" column:"homeShots" dbtype:"INTEGER DEFAULT -1"`
	AwayShots         int `json:"awayShots" column:"awayShots" dbtype:"INTEGER DEFAULT -1"`
	HomeShotsOnTarget int `json:"homeShotsOnTarget" column:"homeShotsOnTarget" dbtype:"INTEGER DEFAULT -1"`
	AwayShotsOnTarget int `json:"awayShotsOnTarget" column:"awayShotsOnTarget" dbtype:"INTEGER DEFAULT -1"`
	HomeCorners       int `json:"homeCorners" column:"homeCorners" dbtype:"INTEGER DEFAULT -1"`
	AwayCorners       int `json:"awayCorners" column:"awayCorners" dbtype:"INTEGER DEFAULT -1"`
	HomeFouls         int `json:"homeFouls" column:"homeFouls" dbtype:"INTEGER DEFAULT -1"`
	AwayFouls         int `json:"awayFouls" column:"awayFouls" dbtype:"INTEGER DEFAULT -1"`

	// Discipline
	HomeYellowCards int `json:"homeYellowCards" column:"homeYellowCards" dbtype:"INTEGER DEFAULT -1"`
	AwayYellowCards int `json:"awayYellowCards" column:"awayYellowCards" dbtype:"INTEGER DEFAULT -1"`
	HomeRedCards    int `json:"homeRedCards" column:"homeRedCards" dbtype:"INTEGER DEFAULT -1"`
	AwayRedCards    int `json:"awayRedCards" column:"awayRedCards" dbtype:"INTEGER DEFAULT -1"`
}

// NewMatch creates a match with every optional statistic marked as not recorded
func NewMatch(date time.Time, homeTeam, awayTeam string, homeGoals, awayGoals int) *Match {
	m := &Match{
		Date:              date,
		HomeTeam:          homeTeam,
		AwayTeam:          awayTeam,
		HomeGoals:         homeGoals,
		AwayGoals:         awayGoals,
		HalfTimeHomeGoals: -1,
		HalfTimeAwayGoals: -1,
		HomeShots:         -1,
		AwayShots:         -1,
		HomeShotsOnTarget: -1,
		AwayShotsOnTarget: -1,
		HomeCorners:       -1,
		AwayCorners:       -1,
		HomeFouls:         -1,
		AwayFouls:         -1,
		HomeYellowCards:   -1,
		AwayYellowCards:   -1,
		HomeRedCards:      -1,
		AwayRedCards:      -1,
	}
	m.syncDerived()
	return m
}

// ResultFromGoals returns H, D or A for a full time score
func ResultFromGoals(homeGoals, awayGoals int) string {
	switch {
	case homeGoals > awayGoals:
		return ResultHome
	case awayGoals > homeGoals:
		return ResultAway
	default:
		return ResultDraw
	}
}

// syncDerived fills the fields that are pure functions of the others
func (m *Match) syncDerived() {
	if !m.Date.IsZero() {
		m.DateStr = m.Date.Format(DateLayout)
		m.Season = SeasonForDate(m.Date)
	}
	if m.Result == "" {
		m.Result = ResultFromGoals(m.HomeGoals, m.AwayGoals)
	}
	if m.ID == "" && m.DateStr != "" {
		m.ID = GenerateMatchID(m.Date, m.HomeTeam, m.AwayTeam)
	}
}

// GenerateMatchID builds a stable identifier from the date and both teams
func GenerateMatchID(date time.Time, homeTeam, awayTeam string) string {
	return fmt.Sprintf("%s_%s_%s", date.Format("20060102"),
		strings.ReplaceAll(homeTeam, " ", ""), strings.ReplaceAll(awayTeam, " ", ""))
}

// Validate checks the invariants every stored match must hold
func (m *Match) Validate() error {
	if m.Date.IsZero() {
		return fmt.Errorf("match has no date")
	}
	if strings.TrimSpace(m.HomeTeam) == "" || strings.TrimSpace(m.AwayTeam) == "" {
		return fmt.Errorf("match on %s is missing a team name", m.Date.Format(DateLayout))
	}
	if m.HomeTeam == m.AwayTeam {
		return fmt.Errorf("match on %s has %s playing itself", m.Date.Format(DateLayout), m.HomeTeam)
	}
	if m.HomeGoals < 0 || m.AwayGoals < 0 {
		return fmt.Errorf("match %s has negative goals %d-%d", m, m.HomeGoals, m.AwayGoals)
	}
	if expected := ResultFromGoals(m.HomeGoals, m.AwayGoals); m.Result != expected {
		return fmt.Errorf("match %s has result %q but score implies %q", m, m.Result, expected)
	}
	return nil
}

func (m *Match) String() string {
	return fmt.Sprintf("%s %s %d-%d %s", m.Date.Format(DateLayout), m.HomeTeam, m.HomeGoals, m.AwayGoals, m.AwayTeam)
}

// ScoreStr returns the score in the "2 - 1" form
func (m *Match) ScoreStr() string {
	return fmt.Sprintf("%d - %d", m.HomeGoals, m.AwayGoals)
}

/////////////////////////////////////////////////////////////////////////
////// Team perspective helpers
/////////////////////////////////////////////////////////////////////////

// Involves reports whether team played in this match
func (m *Match) Involves(team string) bool {
	return m.HomeTeam == team || m.AwayTeam == team
}

// IsHome reports whether team was the home side
func (m *Match) IsHome(team string) bool {
	return m.HomeTeam == team
}

// Opponent returns the other side of the fixture
func (m *Match) Opponent(team string) string {
	if m.IsHome(team) {
		return m.AwayTeam
	}
	return m.HomeTeam
}

// GoalsFor returns the goals scored by team
func (m *Match) GoalsFor(team string) int {
	if m.IsHome(team) {
		return m.HomeGoals
	}
	return m.AwayGoals
}

// GoalsAgainst returns the goals conceded by team
func (m *Match) GoalsAgainst(team string) int {
	if m.IsHome(team) {
		return m.AwayGoals
	}
	return m.HomeGoals
}

// PointsFor returns 3, 1 or 0
func (m *Match) PointsFor(team string) int {
	gf, ga := m.GoalsFor(team), m.GoalsAgainst(team)
	switch {
	case gf > ga:
		return 3
	case gf == ga:
		return 1
	default:
		return 0
	}
}

// ShotsOnTargetFor returns team's shots on target or -1
func (m *Match) ShotsOnTargetFor(team string) int {
	if m.IsHome(team) {
		return m.HomeShotsOnTarget
	}
	return m.AwayShotsOnTarget
}

// CardsFor returns yellow plus red cards for team or -1 when neither was recorded
func (m *Match) CardsFor(team string) int {
	yellow, red := m.AwayYellowCards, m.AwayRedCards
	if m.IsHome(team) {
		yellow, red = m.HomeYellowCards, m.HomeRedCards
	}
	if yellow < 0 && red < 0 {
		return -1
	}
	return max(yellow, 0) + max(red, 0)
}

/////////////////////////////////////////////////////////////////////////
////// Persistable Interface Implementation
/////////////////////////////////////////////////////////////////////////

// GetTableName returns the table name for matches
func (m *Match) GetTableName() string {
	return "matches"
}

// GetPrimaryKey returns the primary key as a map
func (m *Match) GetPrimaryKey() map[string]any {
	return map[string]any{
		"id": m.ID,
	}
}

// SetPrimaryKey sets the primary key from a map
func (m *Match) SetPrimaryKey(pk map[string]any) error {
	if id, ok := pk["id"]; ok {
		if idStr, ok := id.(string); ok {
			m.ID = idStr
			return nil
		}
		return fmt.Errorf("primary key 'id' must be a string")
	}
	return fmt.Errorf("primary key 'id' not found")
}

// BeforeSave derives the stored columns and refuses inconsistent rows
func (m *Match) BeforeSave() error {
	m.syncDerived()
	return m.Validate()
}

func (m *Match) AfterSave() error {
	return nil
}

func (m *Match) BeforeDelete() error {
	return nil
}

func (m *Match) AfterDelete() error {
	return nil
}

// AfterLoad rebuilds the in-memory date from the stored column
func (m *Match) AfterLoad() error {
	d, err := time.Parse(DateLayout, m.DateStr)
	if err != nil {
		return fmt.Errorf("match %s has unparseable date %q: %w", m.ID, m.DateStr, err)
	}
	m.Date = d
	if m.Season == "" {
		m.Season = SeasonForDate(d)
	}
	return nil
}
