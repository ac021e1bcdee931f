package tools

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/internal/logger"
	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/pkg/protocol"
	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/pkg/util/scoresight"
)

// Handler runs one tool call with the decoded arguments
type Handler func(params any) (any, error)

// Registration pairs a tool definition with its handler
type Registration struct {
	Tool    protocol.Tool
	Handler Handler
}

// ScoreSightTools exposes an Engine as MCP tools
type ScoreSightTools struct {
	engine *scoresight.Engine
	now    func() time.Time
}

func NewScoreSightTools(engine *scoresight.Engine) *ScoreSightTools {
	return &ScoreSightTools{engine: engine, now: time.Now}
}

// Registrations lists every tool in the order tools/list reports them
func (st *ScoreSightTools) Registrations() []Registration {
	return []Registration{
		{PredictMatchTool(), st.HandlePredictMatch},
		{AvailableTeamsTool(), st.HandleAvailableTeams},
		{TeamFormTool(), st.HandleTeamForm},
		{HeadToHeadTool(), st.HandleHeadToHead},
		{SeasonInfoTool(), st.HandleSeasonInfo},
	}
}

func PredictMatchTool() protocol.Tool {
	return protocol.Tool{
		Name: "predict_match",
		Description: `
		Predicts the result and most likely score of an English Premier League fixture.
		Uses only matches played before the given date. Returns win/draw/loss probabilities,
		a predicted score, a confidence band and the key factors behind the prediction.
		Team names are forgiving: 'Man Utd', 'Manchester United FC' and 'man united' all work.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"home": {Type: "string", Description: "The home team"},
				"away": {Type: "string", Description: "The away team"},
				"date": {Type: "string", Description: "Match date as YYYY-MM-DD"},
			},
			Required: []string{"home", "away", "date"},
		},
	}
}

func AvailableTeamsTool() protocol.Tool {
	return protocol.Tool{
		Name:        "available_teams",
		Description: "Lists the canonical names of every team with historical match data",
		InputSchema: protocol.InputSchema{
			Type:     "object",
			Required: []string{},
		},
	}
}

func TeamFormTool() protocol.Tool {
	return protocol.Tool{
		Name:        "team_form",
		Description: "Recent form of a team before a date: goals for and against, points per game and the W/D/L sequence",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"team":  {Type: "string", Description: "The team"},
				"date":  {Type: "string", Description: "Only matches before this date (YYYY-MM-DD) are counted"},
				"venue": {Type: "string", Description: "Optional: 'home' or 'away' to count only those matches"},
			},
			Required: []string{"team", "date"},
		},
	}
}

func HeadToHeadTool() protocol.Tool {
	return protocol.Tool{
		Name:        "head_to_head",
		Description: "Summary of the most recent meetings of two teams before a date",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"home": {Type: "string", Description: "The first team, reported as the home side"},
				"away": {Type: "string", Description: "The second team"},
				"date": {Type: "string", Description: "Only meetings before this date (YYYY-MM-DD) are counted"},
			},
			Required: []string{"home", "away", "date"},
		},
	}
}

func SeasonInfoTool() protocol.Tool {
	return protocol.Tool{
		Name:        "season_info",
		Description: "Which Premier League season a date belongs to and how many of its matches are in the data",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"date": {Type: "string", Description: "Optional date as YYYY-MM-DD, defaults to today"},
			},
			Required: []string{},
		},
	}
}

func (st *ScoreSightTools) HandlePredictMatch(params any) (any, error) {
	args, err := stringArgs(params, "home", "away", "date")
	if err != nil {
		return protocol.NewToolErrorResult(err.Error()), nil
	}
	result, err := st.engine.Predict(args["home"], args["away"], args["date"])
	if err != nil {
		return toolError("predict_match", err)
	}
	report, err := scoresight.RenderReportMarkdown(result)
	if err != nil {
		return nil, err
	}
	return protocol.NewTextResult(report, result), nil
}

func (st *ScoreSightTools) HandleAvailableTeams(params any) (any, error) {
	teams := st.engine.AvailableTeams()
	text := fmt.Sprintf("%d teams:\n%s", len(teams), strings.Join(teams, "\n"))
	if st.engine.Store().IsSynthetic() {
		text += "\n(built-in sample data, no historical dataset was loaded)"
	}
	return protocol.NewTextResult(text, map[string]any{"teams": teams}), nil
}

func (st *ScoreSightTools) HandleTeamForm(params any) (any, error) {
	args, err := stringArgs(params, "team", "date")
	if err != nil {
		return protocol.NewToolErrorResult(err.Error()), nil
	}
	venue := scoresight.VenueAny
	if v, ok := optionalString(params, "venue"); ok {
		venue = scoresight.ParseVenue(v)
	}
	form, err := st.engine.TeamVenueForm(args["team"], args["date"], venue)
	if err != nil {
		return toolError("team_form", err)
	}
	matches := "matches"
	if venue != scoresight.VenueAny {
		matches = form.Venue + " matches"
	}
	var text string
	if form.Fallback {
		text = fmt.Sprintf("%s has no %s before %s, league averages: %.2f scored, %.2f conceded, %.2f points per game",
			form.Team, matches, args["date"], form.GoalsForAvg, form.GoalsAgainstAvg, form.PointsAvg)
	} else {
		text = fmt.Sprintf("%s, last %d %s before %s: %s, %.2f scored, %.2f conceded, %.2f points per game",
			form.Team, form.Matches, matches, args["date"], form.Sequence, form.GoalsForAvg, form.GoalsAgainstAvg, form.PointsAvg)
	}
	return protocol.NewTextResult(text, form), nil
}

func (st *ScoreSightTools) HandleHeadToHead(params any) (any, error) {
	args, err := stringArgs(params, "home", "away", "date")
	if err != nil {
		return protocol.NewToolErrorResult(err.Error()), nil
	}
	h2h, err := st.engine.HeadToHead(args["home"], args["away"], args["date"])
	if err != nil {
		return toolError("head_to_head", err)
	}
	text := fmt.Sprintf("%s v %s: no meetings before %s", h2h.Team1, h2h.Team2, args["date"])
	if !h2h.Fallback {
		text = fmt.Sprintf("%s v %s, last %d meetings: %s %d wins, %s %d wins, %d draws, average score %.1f-%.1f",
			h2h.Team1, h2h.Team2, h2h.TotalMatches, h2h.Team1, h2h.Team1Wins, h2h.Team2, h2h.Team2Wins,
			h2h.Draws, h2h.Team1GoalsAvg, h2h.Team2GoalsAvg)
	}
	return protocol.NewTextResult(text, h2h), nil
}

func (st *ScoreSightTools) HandleSeasonInfo(params any) (any, error) {
	now := st.now()
	date := now.Format(scoresight.DateLayout)
	if d, ok := optionalString(params, "date"); ok {
		date = d
	}
	info, err := st.engine.SeasonInfo(date, now)
	if err != nil {
		return toolError("season_info", err)
	}
	text := fmt.Sprintf("%s is in season %s (%s to %s), %d matches stored", date, info.Season, info.Start, info.End, info.Matches)
	if info.Current {
		text += ", in progress"
	}
	return protocol.NewTextResult(text, info), nil
}

// toolError turns caller mistakes into a readable tool result and everything else into a JSON-RPC error
func toolError(tool string, err error) (any, error) {
	if scoresight.IsUserError(err) {
		logger.Info("Rejected "+tool+" call", err)
		return protocol.NewToolErrorResult(err.Error()), nil
	}
	var mce *scoresight.ModelContractError
	if errors.As(err, &mce) {
		return nil, fmt.Errorf("internal error in %s: %w", tool, err)
	}
	return nil, err
}

// stringArgs returns the named arguments, all of which must be non-empty strings
func stringArgs(params any, names ...string) (map[string]string, error) {
	paramsMap, ok := params.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid parameters format, expected an object with %s", strings.Join(names, ", "))
	}
	args := make(map[string]string, len(names))
	for _, name := range names {
		v, ok := paramsMap[name].(string)
		if !ok || strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%s parameter is required and must be a string", name)
		}
		args[name] = v
	}
	return args, nil
}

func optionalString(params any, name string) (string, bool) {
	paramsMap, ok := params.(map[string]any)
	if !ok {
		return "", false
	}
	v, ok := paramsMap[name].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}
