package classifier

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	cheatCues   = []string{"cheat day", "cheat meal", "rest day", "off day", "day off", "skip day"}
	minimalCues = []string{"minimal dose", "minimal", "quick", "small", "brief"}
)

// activityFamilies groups message keywords by the activity a habit is about.
// A family only contributes when the habit's own vocabulary names it.
var activityFamilies = map[string][]string{
	"sport":      {"sport", "exercise", "workout", "training", "fitness", "gym"},
	"meditation": {"meditation", "meditate", "mindfulness", "breathing", "calm", "zen"},
	"reading":    {"reading", "read", "book", "study", "learn", "pages"},
	"writing":    {"writing", "write", "wrote", "journal", "blog", "article"},
	"running":    {"running", "run", "ran", "jogging", "jog", "sprint", "marathon", "cardio"},
	"yoga":       {"yoga", "stretching", "flexibility", "pose", "mat"},
	"coding":     {"coding", "code", "programming", "development", "script"},
	"music":      {"music", "instrument", "practice", "song", "melody"},
	"art":        {"art", "drawing", "painting", "creative", "design"},
	"cooking":    {"cooking", "cook", "recipe", "kitchen", "meal", "food"},
}

var goalStopwords = map[string]bool{
	"with": true, "that": true, "this": true, "from": true, "every": true,
	"each": true, "week": true, "times": true, "days": true, "least": true,
	"before": true, "after": true, "will": true, "want": true,
}

var quantityPattern = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(minutes|minute|mins|min|hours|hour|hrs|hr|h|seconds|second|secs|sec|repetitions|reps|rep|sets|set|kilometers|kilometres|kilometer|km|miles|mile|mi|kilograms|kg|pounds|lbs|lb|pages|page)\b`)

var unitAliases = map[string]string{
	"minutes": "min", "minute": "min", "mins": "min", "min": "min",
	"hours": "hr", "hour": "hr", "hrs": "hr", "hr": "hr", "h": "hr",
	"seconds": "sec", "second": "sec", "secs": "sec", "sec": "sec",
	"repetitions": "rep", "reps": "rep", "rep": "rep",
	"sets": "set", "set": "set",
	"kilometers": "km", "kilometres": "km", "kilometer": "km", "km": "km",
	"miles": "mi", "mile": "mi", "mi": "mi",
	"kilograms": "kg", "kg": "kg",
	"pounds": "lb", "lbs": "lb", "lb": "lb",
	"pages": "page", "page": "page",
}

// Quantity is an amount with a normalized unit, as in "30 min" or "5 km".
type Quantity struct {
	Value float64
	Unit  string
}

func (q Quantity) String() string {
	return strconv.FormatFloat(q.Value, 'f', -1, 64) + " " + q.Unit
}

// ParseQuantities extracts every amount+unit pair from text in order.
func ParseQuantities(text string) []Quantity {
	matches := quantityPattern.FindAllStringSubmatch(text, -1)
	out := make([]Quantity, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		out = append(out, Quantity{Value: v, Unit: unitAliases[strings.ToLower(m[2])]})
	}
	return out
}

func firstQuantity(text string) (Quantity, bool) {
	qs := ParseQuantities(text)
	if len(qs) == 0 {
		return Quantity{}, false
	}
	return qs[0], true
}

// normalize lower-cases text and collapses everything that is not a letter or
// digit into single spaces, padded so phrases can be matched on word edges.
func normalize(text string) string {
	fields := tokenize(text)
	return " " + strings.Join(fields, " ") + " "
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsPhrase(normalized, phrase string) bool {
	p := normalize(phrase)
	if p == "  " {
		return false
	}
	return strings.Contains(normalized, p)
}

func containsAny(normalized string, phrases []string) bool {
	for _, p := range phrases {
		if containsPhrase(normalized, p) {
			return true
		}
	}
	return false
}
