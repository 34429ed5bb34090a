// Package grading holds the score aggregation and chart shaping logic used to
// build peer-review grade reports. Everything here is a pure function of its
// inputs; persistence and policy lookups are reached through small interfaces.
package grading

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/Suvodeep90/expertiza-E1792/internal/models"
)

// Category is the logical kind of review a question set is used for.
type Category string

const (
	CategoryReview     Category = "review"
	CategoryMetareview Category = "metareview"
	CategoryFeedback   Category = "feedback"
	CategoryTeammate   Category = "teammate"
)

// Categories lists every category in report order.
var Categories = []Category{CategoryReview, CategoryMetareview, CategoryFeedback, CategoryTeammate}

func (c Category) order() int {
	for i, candidate := range Categories {
		if candidate == c {
			return i
		}
	}
	return len(Categories)
}

// MapType returns the response map type whose responses are scored in this category.
func (c Category) MapType() models.ResponseMapType {
	switch c {
	case CategoryMetareview:
		return models.ResponseMapMetareview
	case CategoryFeedback:
		return models.ResponseMapFeedback
	case CategoryTeammate:
		return models.ResponseMapTeammateReview
	default:
		return models.ResponseMapReview
	}
}

// CategoryFor maps a questionnaire type to its category.
func CategoryFor(t models.QuestionnaireType) (Category, bool) {
	switch t {
	case models.QuestionnaireTypeReview:
		return CategoryReview, true
	case models.QuestionnaireTypeMetareview:
		return CategoryMetareview, true
	case models.QuestionnaireTypeAuthorFeedback:
		return CategoryFeedback, true
	case models.QuestionnaireTypeTeammateReview:
		return CategoryTeammate, true
	default:
		return "", false
	}
}

// isRoundScoped reports whether questionnaires of this type may differ per round.
func isRoundScoped(t models.QuestionnaireType) bool {
	return t == models.QuestionnaireTypeReview
}

// CategoryKey identifies a question set. Round is zero when the set applies to every round.
type CategoryKey struct {
	Category Category
	Round    int
}

// Key builds a round-independent key.
func Key(category Category) CategoryKey {
	return CategoryKey{Category: category}
}

// RoundKey builds a key for a round-specific rubric.
func RoundKey(category Category, round int) CategoryKey {
	return CategoryKey{Category: category, Round: round}
}

// String renders the key as "review" or "review2".
func (k CategoryKey) String() string {
	if k.Round <= 0 {
		return string(k.Category)
	}
	return string(k.Category) + strconv.Itoa(k.Round)
}

// MarshalText lets keys be used as JSON object keys.
func (k CategoryKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the "review2" form back into a key.
func (k *CategoryKey) UnmarshalText(text []byte) error {
	value := string(text)
	split := len(value)
	for split > 0 && value[split-1] >= '0' && value[split-1] <= '9' {
		split--
	}
	if split == 0 {
		return fmt.Errorf("invalid category key %q", value)
	}
	k.Category = Category(value[:split])
	k.Round = 0
	if split < len(value) {
		round, err := strconv.Atoi(value[split:])
		if err != nil {
			return fmt.Errorf("invalid category key %q: %w", value, err)
		}
		k.Round = round
	}
	return nil
}

// QuestionSet is the ordered question list and scoring range of one category key.
type QuestionSet struct {
	Key             CategoryKey       `json:"key"`
	QuestionnaireID uint              `json:"questionnaire_id"`
	Questions       []models.Question `json:"questions"`
	Min             int               `json:"min"`
	Max             int               `json:"max"`
}

// QuestionSets is the resolved mapping from category key to question set.
type QuestionSets struct {
	sets map[CategoryKey]QuestionSet
	keys []CategoryKey
}

// Get returns the set registered under key.
func (q QuestionSets) Get(key CategoryKey) (QuestionSet, bool) {
	set, ok := q.sets[key]
	return set, ok
}

// Keys returns the registered keys ordered by category then round.
func (q QuestionSets) Keys() []CategoryKey {
	return append([]CategoryKey(nil), q.keys...)
}

// All returns the sets in key order.
func (q QuestionSets) All() []QuestionSet {
	all := make([]QuestionSet, 0, len(q.keys))
	for _, key := range q.keys {
		all = append(all, q.sets[key])
	}
	return all
}

// Len returns the number of resolved sets.
func (q QuestionSets) Len() int {
	return len(q.keys)
}

// Lookup finds the set used to score a response of the given category and round.
// Round-specific sets win over the shared one.
func (q QuestionSets) Lookup(category Category, round *int) (QuestionSet, bool) {
	if round != nil {
		if set, ok := q.sets[RoundKey(category, *round)]; ok {
			return set, true
		}
	}
	set, ok := q.sets[Key(category)]
	return set, ok
}

// RoundBindingLookup resolves the round a questionnaire is used in. A missing
// binding is reported with an error wrapping ErrNotFound; a binding without a
// round returns nil.
type RoundBindingLookup interface {
	RoundBinding(ctx context.Context, assignmentID, questionnaireID uint) (*int, error)
}

// ResolveQuestionSets builds the category-key to question-set mapping for an assignment.
func ResolveQuestionSets(ctx context.Context, assignment models.Assignment, questionnaires []models.Questionnaire, lookup RoundBindingLookup) (QuestionSets, error) {
	result := QuestionSets{sets: make(map[CategoryKey]QuestionSet, len(questionnaires))}

	for _, questionnaire := range questionnaires {
		category, ok := CategoryFor(questionnaire.Type)
		if !ok {
			continue
		}
		if questionnaire.MinQuestionScore > questionnaire.MaxQuestionScore {
			return QuestionSets{}, fmt.Errorf("%w: questionnaire %d has min score above max score", ErrConfiguration, questionnaire.ID)
		}

		key := Key(category)
		if assignment.VaryingRubricsByRound && isRoundScoped(questionnaire.Type) {
			if lookup == nil {
				return QuestionSets{}, fmt.Errorf("%w: no round binding source for questionnaire %d", ErrConfiguration, questionnaire.ID)
			}
			round, err := lookup.RoundBinding(ctx, assignment.ID, questionnaire.ID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return QuestionSets{}, fmt.Errorf("%w: questionnaire %d is not bound to assignment %d", ErrConfiguration, questionnaire.ID, assignment.ID)
				}
				return QuestionSets{}, fmt.Errorf("%w: round binding lookup: %v", ErrDependency, err)
			}
			if round != nil {
				if *round < 1 || *round > assignment.Rounds() {
					return QuestionSets{}, fmt.Errorf("%w: questionnaire %d is bound to round %d outside 1..%d", ErrConfiguration, questionnaire.ID, *round, assignment.Rounds())
				}
				key = RoundKey(category, *round)
			}
		}

		if _, exists := result.sets[key]; !exists {
			result.keys = append(result.keys, key)
		}
		result.sets[key] = QuestionSet{
			Key:             key,
			QuestionnaireID: questionnaire.ID,
			Questions:       orderedQuestions(questionnaire.Questions),
			Min:             questionnaire.MinQuestionScore,
			Max:             questionnaire.MaxQuestionScore,
		}
	}

	sort.Slice(result.keys, func(i, j int) bool {
		a, b := result.keys[i], result.keys[j]
		if a.Category != b.Category {
			return a.Category.order() < b.Category.order()
		}
		return a.Round < b.Round
	})

	return result, nil
}

func orderedQuestions(questions []models.Question) []models.Question {
	ordered := append([]models.Question(nil), questions...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Seq != ordered[j].Seq {
			return ordered[i].Seq < ordered[j].Seq
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}
