package answer

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"daily-trivia-service/internal/domain"
	"github.com/sirupsen/logrus"
)

// Input is everything the matcher and the judge need to rule on one answer.
type Input struct {
	UserAnswer       string
	CorrectAnswer    string
	AlternateAnswers []string
	Question         string
	Category         string
}

// Judge is the remote semantic judge consulted by the last tier.
type Judge interface {
	Verdict(ctx context.Context, in Input) (bool, error)
}

// Tier is one step of the matching chain. Evaluate reports ok=false when the
// tier has no verdict and the next tier should run.
type Tier struct {
	Name     string
	Evaluate func(ctx context.Context, in Input) (domain.MatchResult, bool)
}

// DefaultTiers is the full chain, cheapest first.
var DefaultTiers = []string{"exact", "normalized", "keyword", "word-set", "ai"}

// Matcher runs tiers in order until one yields a verdict.
type Matcher struct {
	tiers []Tier
}

func NewMatcher(tiers ...Tier) *Matcher {
	return &Matcher{tiers: tiers}
}

// NewMatcherFromNames builds a matcher from tier names, e.g. the config's
// matcher.tiers list. judge may be nil; the ai tier then reports ai-error.
func NewMatcherFromNames(names []string, judge Judge) (*Matcher, error) {
	if len(names) == 0 {
		names = DefaultTiers
	}
	trimmed := make([]string, len(names))
	for i, name := range names {
		trimmed[i] = strings.TrimSpace(name)
	}
	deferMultiItem := slices.Contains(trimmed, "word-set")
	tiers := make([]Tier, 0, len(trimmed))
	for _, name := range trimmed {
		switch name {
		case "exact":
			tiers = append(tiers, ExactTier())
		case "normalized":
			tiers = append(tiers, NormalizedTier())
		case "keyword":
			tiers = append(tiers, KeywordTier(deferMultiItem))
		case "word-set":
			tiers = append(tiers, WordSetTier())
		case "ai":
			tiers = append(tiers, JudgeTier(judge))
		default:
			return nil, fmt.Errorf("unknown matcher tier %q", name)
		}
	}
	return NewMatcher(tiers...), nil
}

// Match returns the first verdict in the chain. When no tier rules, the
// answer is incorrect with no method.
func (m *Matcher) Match(ctx context.Context, in Input) domain.MatchResult {
	for _, tier := range m.tiers {
		if res, ok := tier.Evaluate(ctx, in); ok {
			return res
		}
	}
	return domain.MatchResult{Correct: false, Method: domain.MethodNone}
}

// Tiers returns the names of the configured tiers in evaluation order.
func (m *Matcher) Tiers() []string {
	names := make([]string, len(m.tiers))
	for i, t := range m.tiers {
		names[i] = t.Name
	}
	return names
}

// ExactTier compares case-insensitively against the answer and alternates.
func ExactTier() Tier {
	return Tier{Name: "exact", Evaluate: func(_ context.Context, in Input) (domain.MatchResult, bool) {
		u := strings.ToLower(in.UserAnswer)
		if u == strings.ToLower(in.CorrectAnswer) {
			return domain.MatchResult{Correct: true, Method: domain.MethodExact}, true
		}
		for _, alt := range in.AlternateAnswers {
			if u == strings.ToLower(alt) {
				return domain.MatchResult{Correct: true, Method: domain.MethodExact}, true
			}
		}
		return domain.MatchResult{}, false
	}}
}

// NormalizedTier compares after Normalize.
func NormalizedTier() Tier {
	return Tier{Name: "normalized", Evaluate: func(_ context.Context, in Input) (domain.MatchResult, bool) {
		u := Normalize(in.UserAnswer)
		if u == Normalize(in.CorrectAnswer) {
			return domain.MatchResult{Correct: true, Method: domain.MethodNormalized}, true
		}
		for _, alt := range in.AlternateAnswers {
			if u == Normalize(alt) {
				return domain.MatchResult{Correct: true, Method: domain.MethodNormalized}, true
			}
		}
		return domain.MatchResult{}, false
	}}
}

// KeywordTier accepts last-name-only answers and single significant words
// taken from the canonical answer. With deferMultiItem set, answers the
// word-set tier would accept are left to it.
func KeywordTier(deferMultiItem bool) Tier {
	return Tier{Name: "keyword", Evaluate: func(_ context.Context, in Input) (domain.MatchResult, bool) {
		if deferMultiItem && coversWordSet(in.UserAnswer, in.CorrectAnswer) {
			return domain.MatchResult{}, false
		}
		uw := words(in.UserAnswer)
		cw := words(in.CorrectAnswer)
		last := cw[len(cw)-1]
		if utf8.RuneCountInString(last) > 2 && slices.Contains(uw, last) {
			return domain.MatchResult{Correct: true, Method: domain.MethodKeyword}, true
		}
		if len(uw) == 1 && utf8.RuneCountInString(uw[0]) > 3 && slices.Contains(cw, uw[0]) {
			return domain.MatchResult{Correct: true, Method: domain.MethodKeyword}, true
		}
		return domain.MatchResult{}, false
	}}
}

// WordSetTier handles multi-item answers given in any order. It only applies
// when the canonical answer has at least three content words.
func WordSetTier() Tier {
	return Tier{Name: "word-set", Evaluate: func(_ context.Context, in Input) (domain.MatchResult, bool) {
		if !coversWordSet(in.UserAnswer, in.CorrectAnswer) {
			return domain.MatchResult{}, false
		}
		return domain.MatchResult{Correct: true, Method: domain.MethodWordSet}, true
	}}
}

// coversWordSet reports whether the canonical answer has at least three
// content words and every one of them appears in the user's answer.
func coversWordSet(user, correct string) bool {
	canonical := Tokenize(correct)
	if len(canonical) < 3 {
		return false
	}
	have := make(map[string]struct{})
	for _, t := range Tokenize(user) {
		have[t] = struct{}{}
	}
	for _, t := range canonical {
		if _, ok := have[t]; !ok {
			return false
		}
	}
	return true
}

// JudgeTier asks the remote judge. It always yields a verdict; judge failures
// become an incorrect ai-error result.
func JudgeTier(judge Judge) Tier {
	return Tier{Name: "ai", Evaluate: func(ctx context.Context, in Input) (domain.MatchResult, bool) {
		if judge == nil {
			return domain.MatchResult{Correct: false, Method: domain.MethodAIError}, true
		}
		ok, err := judge.Verdict(ctx, in)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"category": in.Category,
			}).Warnf("judge verdict failed: %v", err)
			return domain.MatchResult{Correct: false, Method: domain.MethodAIError}, true
		}
		return domain.MatchResult{Correct: ok, Method: domain.MethodAI}, true
	}}
}
