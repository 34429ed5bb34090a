package grading

import (
	"fmt"
	"math"
	"sort"

	"github.com/Suvodeep90/expertiza-E1792/internal/models"
)

const barChartMargin = 30

// BarChartOptions sets the geometry of a simple bar chart.
type BarChartOptions struct {
	Width   int
	Height  int
	Spacing int
}

var (
	// DefaultBarChart is used for per-participant score charts.
	DefaultBarChart = BarChartOptions{Width: 100, Height: 100, Spacing: 1}
	// SummaryBarChart is used for the assignment-wide average chart.
	SummaryBarChart = BarChartOptions{Width: 1000, Height: 150, Spacing: 5}
)

// BarChart is a renderer-independent description of a single-series bar chart.
type BarChart struct {
	Values       []float64 `json:"values"`
	Min          float64   `json:"min"`
	Max          float64   `json:"max"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	BarWidth     int       `json:"bar_width"`
	BarSpacing   int       `json:"bar_spacing"`
	GroupSpacing int       `json:"group_spacing"`
}

// NewBarChart describes values as a bar chart. It returns false for an empty series.
func NewBarChart(values []float64, opts BarChartOptions) (BarChart, bool) {
	if len(values) == 0 {
		return BarChart{}, false
	}

	minimum, maximum := values[0], values[0]
	for _, v := range values[1:] {
		minimum = math.Min(minimum, v)
		maximum = math.Max(maximum, v)
	}

	return BarChart{
		Values:       append([]float64(nil), values...),
		Min:          minimum,
		Max:          maximum,
		Width:        opts.Width,
		Height:       opts.Height,
		BarWidth:     (opts.Width - barChartMargin) / (len(values) + 1),
		BarSpacing:   1,
		GroupSpacing: opts.Spacing,
	}, true
}

// HistogramRange bounds the score values and question count a histogram is initialised with.
type HistogramRange struct {
	Min       int `json:"min"`
	Max       int `json:"max"`
	Questions int `json:"questions"`
}

// ReviewHistogramRange derives the histogram bounds from the first round-bound
// review questionnaire. Scores default to 0..5 and are only ever widened.
// Assignments whose rubrics do not vary by round get no questions.
func ReviewHistogramRange(assignment models.Assignment, questionnaires []models.Questionnaire) HistogramRange {
	rng := HistogramRange{Min: 0, Max: 5}
	if !assignment.VaryingRubricsByRound {
		return rng
	}
	for _, questionnaire := range questionnaires {
		if questionnaire.Type != models.QuestionnaireTypeReview {
			continue
		}
		rng.Questions = len(questionnaire.Questions)
		if questionnaire.MinQuestionScore < rng.Min {
			rng.Min = questionnaire.MinQuestionScore
		}
		if questionnaire.MaxQuestionScore > rng.Max {
			rng.Max = questionnaire.MaxQuestionScore
		}
		break
	}
	return rng
}

// RoundRubricScores is the score values observed for one team in one round,
// indexed by question position.
type RoundRubricScores struct {
	Round     int      `json:"round"`
	Questions [][]*int `json:"questions"`
}

// Histogram counts score occurrences per question (1-indexed), score value and round.
type Histogram struct {
	rounds int
	counts map[int]map[int][]int
}

// BuildHistogram counts every non-nil score value of every team. Rounds outside
// 1..rounds are ignored; questions and values outside rng are added on demand.
func BuildHistogram(rng HistogramRange, rounds int, teams [][]RoundRubricScores) Histogram {
	if rounds < 1 {
		rounds = 1
	}
	h := Histogram{rounds: rounds, counts: make(map[int]map[int][]int, rng.Questions)}
	for question := 1; question <= rng.Questions; question++ {
		h.counts[question] = make(map[int][]int, rng.Max-rng.Min+1)
		for score := rng.Min; score <= rng.Max; score++ {
			h.counts[question][score] = make([]int, rounds)
		}
	}

	for _, team := range teams {
		for _, view := range team {
			if view.Round < 1 || view.Round > rounds {
				continue
			}
			for index, values := range view.Questions {
				for _, value := range values {
					if value == nil {
						continue
					}
					h.bucket(index+1, *value)[view.Round-1]++
				}
			}
		}
	}
	return h
}

func (h Histogram) bucket(question, score int) []int {
	scores, ok := h.counts[question]
	if !ok {
		scores = make(map[int][]int)
		h.counts[question] = scores
	}
	counts, ok := scores[score]
	if !ok {
		counts = make([]int, h.rounds)
		scores[score] = counts
	}
	return counts
}

// Rounds returns the length of every round array.
func (h Histogram) Rounds() int {
	return h.rounds
}

// Questions returns the question indexes in ascending order.
func (h Histogram) Questions() []int {
	questions := make([]int, 0, len(h.counts))
	for question := range h.counts {
		questions = append(questions, question)
	}
	sort.Ints(questions)
	return questions
}

// ScoresDescending returns the score values tracked for question, highest first.
func (h Histogram) ScoresDescending(question int) []int {
	scores := make([]int, 0, len(h.counts[question]))
	for score := range h.counts[question] {
		scores = append(scores, score)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(scores)))
	return scores
}

// Distribution returns a copy of the per-round counts of score for question.
func (h Histogram) Distribution(question, score int) []int {
	counts, ok := h.counts[question][score]
	if !ok {
		return make([]int, h.rounds)
	}
	return append([]int(nil), counts...)
}

// Total returns the sum of all counts.
func (h Histogram) Total() int {
	total := 0
	for _, scores := range h.counts {
		for _, counts := range scores {
			for _, c := range counts {
				total += c
			}
		}
	}
	return total
}

// Series is one stacked-bar series.
type Series struct {
	Name     string `json:"name"`
	Data     []int  `json:"data"`
	Stack    string `json:"stack"`
	LinkedTo string `json:"linkedTo,omitempty"`
}

// HistogramColors is the fixed green-to-red palette. It assumes scores range over 0..5.
var HistogramColors = []string{"#2DE636", "#BCED91", "#FFEC8B", "#FD992D", "#ff8080", "#FD422D"}

// StackedChart is the chart-ready form of a histogram.
type StackedChart struct {
	Series     []Series `json:"series"`
	Categories []string `json:"categories"`
	Colors     []string `json:"colors"`
}

// StackedSeries flattens a histogram by question ascending then score descending.
// The first question's series carry the legend; later ones link to it.
func StackedSeries(h Histogram) []Series {
	series := make([]Series, 0)
	for position, question := range h.Questions() {
		stack := fmt.Sprintf("S%d", question)
		for _, score := range h.ScoresDescending(question) {
			entry := Series{Data: h.Distribution(question, score), Stack: stack}
			if position == 0 {
				entry.Name = fmt.Sprintf("Score %d", score)
			} else {
				entry.Name = fmt.Sprintf("Rubric %d - Score %d", question, score)
				entry.LinkedTo = "previous"
			}
			series = append(series, entry)
		}
	}
	return series
}

// SubmissionCategories labels the x axis "Submission 1".."Submission n".
func SubmissionCategories(rounds int) []string {
	categories := make([]string, 0, rounds)
	for i := 1; i <= rounds; i++ {
		categories = append(categories, fmt.Sprintf("Submission %d", i))
	}
	return categories
}

// NewStackedChart builds series, categories and colours for a histogram.
func NewStackedChart(h Histogram) StackedChart {
	return StackedChart{
		Series:     StackedSeries(h),
		Categories: SubmissionCategories(h.Rounds()),
		Colors:     append([]string(nil), HistogramColors...),
	}
}
