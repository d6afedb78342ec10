package classifier

import (
	"strings"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
)

// Vocabulary is the text a habit can be recognised by.
type Vocabulary struct {
	Name        string
	Domains     []string
	SmartGoal   string
	MinimalDose string
}

func VocabularyOf(h *domain.Habit) Vocabulary {
	return Vocabulary{
		Name:        h.Name,
		Domains:     h.Domains,
		SmartGoal:   h.SmartGoal,
		MinimalDose: h.MinimalDose,
	}
}

// Matcher scores how strongly a message correlates with a habit's
// vocabulary. Confidence must be in [0, 1] and deterministic.
type Matcher interface {
	Confidence(text string, vocab Vocabulary) float64
}

// Ranker is implemented by matchers whose confidence saturates. Strength is
// the unclamped correlation used to order candidates, so two habits that
// both reach full confidence are still told apart.
type Ranker interface {
	Strength(text string, vocab Vocabulary) float64
}

const (
	pointsNamePhrase = 10
	pointsNameWord   = 4
	pointsGoalWord   = 5
	pointsDomainTag  = 5
	pointsActivity   = 3
	pointsQuantity   = 7

	// DefaultSaturation is the raw score treated as full confidence.
	DefaultSaturation = 20
)

// KeywordMatcher is a point-based textual heuristic over names, goals,
// domain tags, activity families and quantities.
type KeywordMatcher struct {
	Saturation int
}

func NewKeywordMatcher() *KeywordMatcher {
	return &KeywordMatcher{Saturation: DefaultSaturation}
}

func (m *KeywordMatcher) Confidence(text string, vocab Vocabulary) float64 {
	saturation := m.Saturation
	if saturation <= 0 {
		saturation = DefaultSaturation
	}
	score := float64(m.Points(text, vocab)) / float64(saturation)
	if score > 1 {
		return 1
	}
	return score
}

func (m *KeywordMatcher) Strength(text string, vocab Vocabulary) float64 {
	return float64(m.Points(text, vocab))
}

// Points returns the raw, unnormalized score.
func (m *KeywordMatcher) Points(text string, vocab Vocabulary) int {
	msg := normalize(text)
	words := wordSet(tokenize(text))
	points := 0

	name := strings.TrimSpace(vocab.Name)
	if name != "" && containsPhrase(msg, name) {
		points += pointsNamePhrase
	} else {
		for _, w := range distinct(tokenize(name)) {
			if len(w) > 2 && words[w] {
				points += pointsNameWord
			}
		}
	}

	for _, w := range distinct(tokenize(vocab.SmartGoal)) {
		if len(w) > 3 && !goalStopwords[w] && words[w] {
			points += pointsGoalWord
		}
	}

	for _, tag := range vocab.Domains {
		if containsPhrase(msg, tag) {
			points += pointsDomainTag
		}
	}

	habitWords := wordSet(tokenize(vocab.Name + " " + vocab.SmartGoal + " " + strings.Join(vocab.Domains, " ")))
	for family, keywords := range activityFamilies {
		if !namesFamily(habitWords, family, keywords) {
			continue
		}
		for _, kw := range keywords {
			if words[kw] {
				points += pointsActivity
			}
		}
	}

	if q, ok := firstQuantity(text); ok {
		for _, hq := range append(ParseQuantities(vocab.SmartGoal), ParseQuantities(vocab.MinimalDose)...) {
			if hq.Unit == q.Unit {
				points += pointsQuantity
				break
			}
		}
	}

	return points
}

func namesFamily(habitWords map[string]bool, family string, keywords []string) bool {
	if habitWords[family] {
		return true
	}
	for _, kw := range keywords {
		if habitWords[kw] {
			return true
		}
	}
	return false
}

func wordSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func distinct(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := words[:0]
	for _, w := range words {
		if seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
