package scoresight

import (
	"sort"

	"github.com/segmentio/fasthash/fnv1a"
	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/internal/logger"
)

// Encoder turns a categorical value into the integer code a model was fitted with.
// Unknown values never fail, they get fnv1a(value) % Cardinality().
type Encoder interface {
	Encode(value string) (code int, known bool)
	Cardinality() int
}

// TableEncoder is a label encoder over a fixed class list.
// Known classes get their position in sorted order.
type TableEncoder struct {
	name        string
	classes     []string
	index       map[string]int
	cardinality int
}

// NewTableEncoder builds an encoder over classes.
// The hash fallback is taken modulo the class count, or modulo fallbackCardinality when there are no classes.
func NewTableEncoder(name string, classes []string, fallbackCardinality int) *TableEncoder {
	sorted := make([]string, 0, len(classes))
	index := make(map[string]int, len(classes))
	for _, c := range classes {
		if _, dup := index[c]; dup {
			continue
		}
		index[c] = -1
		sorted = append(sorted, c)
	}
	sort.Strings(sorted)
	for i, c := range sorted {
		index[c] = i
	}
	cardinality := len(sorted)
	if cardinality == 0 {
		cardinality = fallbackCardinality
	}
	if cardinality < 1 {
		cardinality = 1
	}
	return &TableEncoder{name: name, classes: sorted, index: index, cardinality: cardinality}
}

func (e *TableEncoder) Encode(value string) (int, bool) {
	if code, ok := e.index[value]; ok {
		return code, true
	}
	code := HashCode(value, e.cardinality)
	logger.Debug("Encoder fallback for unknown value", e.name, value, code)
	return code, false
}

func (e *TableEncoder) Cardinality() int {
	return e.cardinality
}

// Classes returns the known classes in code order
func (e *TableEncoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// HashCode is the deterministic fallback code for value
func HashCode(value string, cardinality int) int {
	if cardinality <= 0 {
		return 0
	}
	return int(fnv1a.HashString64(value) % uint64(cardinality))
}

// Encoders groups the categorical encoders the feature builder needs
type Encoders struct {
	Team   Encoder
	Season Encoder
}

// StoreEncoders derives encoders from the teams and seasons present in store
func StoreEncoders(store *MatchStore, cfg *Config) Encoders {
	seen := map[string]bool{}
	var seasons []string
	for _, m := range store.Matches() {
		if !seen[m.Season] {
			seen[m.Season] = true
			seasons = append(seasons, m.Season)
		}
	}
	return Encoders{
		Team:   NewTableEncoder("team", store.Teams(), cfg.EncoderCardinality),
		Season: NewTableEncoder("season", seasons, cfg.EncoderCardinality),
	}
}
