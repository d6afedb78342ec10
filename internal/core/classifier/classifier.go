// Package classifier turns a raw accountability message into at most one
// proof candidate for one of the sender's active habits.
package classifier

import (
	"sort"
	"strings"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
)

const DefaultMinConfidence = 0.25

type Reason string

const (
	ReasonUserNotEligible Reason = "user_not_eligible"
	ReasonNoActiveHabits  Reason = "no_active_habits"
	ReasonLowConfidence   Reason = "low_confidence"
)

// Result is either a matched candidate (Proof set, Reason empty) or a typed
// non-match. Non-matches are outcomes, not errors.
type Result struct {
	Proof      *domain.ClassifiedProof `json:"proof,omitempty"`
	Reason     Reason                  `json:"reason,omitempty"`
	Confidence float64                 `json:"confidence"`
}

func (r Result) Matched() bool {
	return r.Proof != nil
}

// Outcome is a short label used for logs and metrics.
func (r Result) Outcome() string {
	if r.Matched() {
		return "matched"
	}
	return string(r.Reason)
}

type Classifier struct {
	matcher       Matcher
	minConfidence float64
}

type Option func(*Classifier)

func WithMatcher(m Matcher) Option {
	return func(c *Classifier) {
		if m != nil {
			c.matcher = m
		}
	}
}

func WithMinConfidence(v float64) Option {
	return func(c *Classifier) {
		if v > 0 && v <= 1 {
			c.minConfidence = v
		}
	}
}

func New(opts ...Option) *Classifier {
	c := &Classifier{
		matcher:       NewKeywordMatcher(),
		minConfidence: DefaultMinConfidence,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type candidate struct {
	habit      *domain.Habit
	strength   float64
	confidence float64
}

// Classify is pure over its inputs: redelivering the same message yields the
// same Result. Deduplication before persistence is the caller's job.
func (c *Classifier) Classify(msg domain.Message, user domain.User, habits []*domain.Habit, cc domain.CycleContext) Result {
	if !user.IsActive() {
		return Result{Reason: ReasonUserNotEligible}
	}

	active := make([]*domain.Habit, 0, len(habits))
	for _, h := range habits {
		if h != nil && h.IsActive() && h.UserID == user.ID {
			active = append(active, h)
		}
	}
	if len(active) == 0 {
		return Result{Reason: ReasonNoActiveHabits}
	}

	ranker, _ := c.matcher.(Ranker)

	candidates := make([]candidate, 0, len(active))
	for _, h := range active {
		vocab := VocabularyOf(h)
		cand := candidate{habit: h, confidence: c.matcher.Confidence(msg.Text, vocab)}
		cand.strength = cand.confidence
		if ranker != nil {
			cand.strength = ranker.Strength(msg.Text, vocab)
		}
		candidates = append(candidates, cand)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.strength != b.strength {
			return a.strength > b.strength
		}
		if !a.habit.CreatedAt.Equal(b.habit.CreatedAt) {
			return a.habit.CreatedAt.After(b.habit.CreatedAt)
		}
		return a.habit.ID > b.habit.ID
	})

	best := candidates[0]
	if best.confidence < c.minConfidence {
		return Result{Reason: ReasonLowConfidence, Confidence: best.confidence}
	}

	minimal, cheat := detectFlags(msg.Text, best.habit.MinimalDose)

	unit := domain.DefaultProofUnit
	if q, ok := firstQuantity(msg.Text); ok {
		unit = q.String()
	}

	return Result{
		Confidence: best.confidence,
		Proof: &domain.ClassifiedProof{
			HabitID:       best.habit.ID,
			UserID:        user.ID,
			MessageID:     msg.ID,
			Date:          cc.Today,
			Unit:          unit,
			IsMinimalDose: minimal,
			IsCheatDay:    cheat,
			AttachmentURL: msg.AttachmentURL,
			RawText:       strings.TrimSpace(msg.Text),
			Confidence:    best.confidence,
		},
	}
}

// detectFlags checks cheat-day cues first so a message can never carry both
// reduced-effort flags.
func detectFlags(text, minimalDose string) (minimal, cheat bool) {
	msg := normalize(text)

	if containsAny(msg, cheatCues) {
		return false, true
	}
	if containsAny(msg, minimalCues) {
		return true, false
	}

	dose, ok := firstQuantity(minimalDose)
	if !ok {
		return false, false
	}
	for _, q := range ParseQuantities(text) {
		if q == dose {
			return true, false
		}
	}
	return false, false
}
