package scoresight

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/internal/logger"
	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/pkg/util"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultAliases maps common spellings onto football-data.co.uk names.
// Keys are matched after club designators are removed and case and accents are folded.
var DefaultAliases = map[string]string{
	"Manchester City":          "Man City",
	"Manchester United":        "Man United",
	"Man Utd":                  "Man United",
	"Nottingham Forest":        "Nott'm Forest",
	"Forest":                   "Nott'm Forest",
	"Wolverhampton Wanderers":  "Wolves",
	"Wolverhampton":            "Wolves",
	"Tottenham Hotspur":        "Tottenham",
	"Spurs":                    "Tottenham",
	"Newcastle United":         "Newcastle",
	"West Ham United":          "West Ham",
	"Brighton & Hove Albion":   "Brighton",
	"Brighton and Hove Albion": "Brighton",
	"Sheff Utd":                "Sheffield United",
	"Leicester City":           "Leicester",
	"Luton Town":               "Luton",
	"AFC Bournemouth":          "Bournemouth",
	"West Bromwich Albion":     "West Brom",
	"Queens Park Rangers":      "QPR",
	"Ipswich Town":             "Ipswich",
	"Norwich City":             "Norwich",
	"Villa":                    "Aston Villa",
}

// club designators removed before alias lookup
var designatorPrefixes = []string{"afc ", "fc "}
var designatorSuffixes = []string{" afc", " fc", " f.c."}

// suffixes tried one at a time against the original input
var teamSuffixes = []string{" & Hove Albion", " Hotspur", " United", " City", " Town", " Wanderers", " Albion"}

// minSubstringRunes is the shortest string allowed to take part in a containment match
const minSubstringRunes = 4

// TeamNameNormalizer maps arbitrary team spellings onto a canonical set.
// It is immutable after construction and safe for concurrent use.
type TeamNameNormalizer struct {
	canonical []string
	exact     map[string]bool
	folded    map[string]string
	aliases   map[string]string
}

// NewTeamNameNormalizer builds a normalizer over canonical with DefaultAliases
func NewTeamNameNormalizer(canonical []string) *TeamNameNormalizer {
	return NewTeamNameNormalizerWithAliases(canonical, DefaultAliases)
}

// NewTeamNameNormalizerWithAliases builds a normalizer with a custom alias table
func NewTeamNameNormalizerWithAliases(canonical []string, aliases map[string]string) *TeamNameNormalizer {
	n := &TeamNameNormalizer{
		exact:   make(map[string]bool, len(canonical)),
		folded:  make(map[string]string, len(canonical)),
		aliases: make(map[string]string, len(aliases)),
	}
	for _, c := range canonical {
		if c == "" || n.exact[c] {
			continue
		}
		n.exact[c] = true
		n.canonical = append(n.canonical, c)
	}
	sort.Strings(n.canonical)

	// alphabetical order makes the first canonical win a folding collision
	for _, c := range n.canonical {
		f := foldName(c)
		if _, taken := n.folded[f]; !taken {
			n.folded[f] = c
		}
	}
	for alias, target := range aliases {
		n.aliases[foldName(stripDesignators(alias))] = target
	}
	return n
}

// Canonical returns the canonical name or the input unchanged
func (n *TeamNameNormalizer) Canonical(name string) string {
	c, _ := n.Normalize(name)
	return c
}

// Normalize returns the canonical identifier for name and true, or name unchanged and false.
// The first matching rule wins: exact, one transformation, case-insensitive, substring.
func (n *TeamNameNormalizer) Normalize(name string) (string, bool) {
	trimmed := strings.Join(strings.Fields(name), " ")
	if trimmed == "" {
		return name, false
	}

	if n.exact[trimmed] {
		return trimmed, true
	}

	if c, ok := n.oneTransformation(trimmed); ok {
		return c, true
	}

	folded := foldName(trimmed)
	if c, ok := n.folded[folded]; ok {
		return c, true
	}

	if c, ok := n.substringMatch(folded); ok {
		return c, true
	}

	logger.Warn("Unmapped team name", name)
	return name, false
}

// oneTransformation applies each transformation to the original input in turn, never chaining them
func (n *TeamNameNormalizer) oneTransformation(name string) (string, bool) {
	if target, ok := n.aliases[foldName(stripDesignators(name))]; ok && n.exact[target] {
		return target, true
	}
	if stripped := stripDesignators(name); stripped != name && n.exact[stripped] {
		return stripped, true
	}
	for _, suffix := range teamSuffixes {
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		if stripped := strings.TrimSuffix(name, suffix); n.exact[stripped] {
			return stripped, true
		}
	}
	return "", false
}

// substringMatch picks the canonical name with the longest overlap, then the alphabetically first
func (n *TeamNameNormalizer) substringMatch(folded string) (string, bool) {
	best, bestLen := "", 0
	for _, c := range n.canonical {
		fc := foldName(c)
		shorter := fc
		if utf8.RuneCountInString(folded) < utf8.RuneCountInString(fc) {
			shorter = folded
		}
		l := utf8.RuneCountInString(shorter)
		if l < minSubstringRunes {
			continue
		}
		if !strings.Contains(folded, fc) && !strings.Contains(fc, folded) {
			continue
		}
		if l > bestLen {
			best, bestLen = c, l
		}
	}
	return best, bestLen > 0
}

// Suggest returns up to limit canonical names that look like name, most similar first
func (n *TeamNameNormalizer) Suggest(name string, limit int) []string {
	type scored struct {
		name  string
		score float64
	}
	folded := foldName(name)
	var candidates []scored
	for _, c := range n.canonical {
		fc := foldName(c)
		score := util.SimilarityScore(folded, fc)
		if s := util.FuzzyMatchScore(folded, fc); s > score {
			score = s
		}
		if score >= 0.5 {
			candidates = append(candidates, scored{c, score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	out := []string{}
	for i := 0; i < len(candidates) && i < limit; i++ {
		out = append(out, candidates[i].name)
	}
	return out
}

// stripDesignators removes FC and AFC in any case from either end
func stripDesignators(name string) string {
	for _, p := range designatorPrefixes {
		if len(name) > len(p) && strings.EqualFold(name[:len(p)], p) {
			name = name[len(p):]
			break
		}
	}
	for _, s := range designatorSuffixes {
		if len(name) > len(s) && strings.EqualFold(name[len(name)-len(s):], s) {
			name = name[:len(name)-len(s)]
			break
		}
	}
	return strings.TrimSpace(name)
}

// foldName lower cases, removes accents and collapses whitespace.
// Casers and transformers keep state so a fresh chain is built per call.
func foldName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, name)
	if err != nil {
		s = name
	}
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}
