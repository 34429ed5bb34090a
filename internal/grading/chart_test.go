package grading

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Suvodeep90/expertiza-E1792/internal/models"
)

func TestNewBarChartGeometry(t *testing.T) {
	chart, ok := NewBarChart([]float64{80, 95, 60}, SummaryBarChart)
	require.True(t, ok)
	require.Equal(t, 60.0, chart.Min)
	require.Equal(t, 95.0, chart.Max)
	require.Equal(t, (1000-30)/4, chart.BarWidth)
	require.Equal(t, 1, chart.BarSpacing)
	require.Equal(t, 5, chart.GroupSpacing)
	require.Equal(t, 150, chart.Height)

	chart, ok = NewBarChart([]float64{4, 3}, DefaultBarChart)
	require.True(t, ok)
	require.Equal(t, 23, chart.BarWidth)
}

func TestNewBarChartEmptySeries(t *testing.T) {
	_, ok := NewBarChart(nil, DefaultBarChart)
	require.False(t, ok)
}

func TestReviewHistogramRange(t *testing.T) {
	questionnaires := []models.Questionnaire{
		{Type: models.QuestionnaireTypeTeammateReview, MinQuestionScore: -3, MaxQuestionScore: 20},
		{Type: models.QuestionnaireTypeReview, MinQuestionScore: 1, MaxQuestionScore: 10, Questions: make([]models.Question, 3)},
		{Type: models.QuestionnaireTypeReview, MinQuestionScore: -1, MaxQuestionScore: 4, Questions: make([]models.Question, 7)},
	}

	rng := ReviewHistogramRange(models.Assignment{VaryingRubricsByRound: true}, questionnaires)
	require.Equal(t, HistogramRange{Min: 0, Max: 10, Questions: 3}, rng)

	rng = ReviewHistogramRange(models.Assignment{}, questionnaires)
	require.Equal(t, HistogramRange{Min: 0, Max: 5}, rng)
}

func TestBuildHistogramTwoRoundsOneQuestion(t *testing.T) {
	teamA := []RoundRubricScores{
		{Round: 1, Questions: [][]*int{{intPtr(3)}}},
		{Round: 2, Questions: [][]*int{{intPtr(5)}}},
	}

	h := BuildHistogram(HistogramRange{Min: 0, Max: 5, Questions: 1}, 2, [][]RoundRubricScores{teamA})
	require.Equal(t, []int{1}, h.Questions())
	require.Equal(t, []int{1, 0}, h.Distribution(1, 3))
	require.Equal(t, []int{0, 1}, h.Distribution(1, 5))
	require.Equal(t, []int{0, 0}, h.Distribution(1, 4))
	require.Equal(t, 2, h.Total())
}

func TestBuildHistogramCountsEveryObservation(t *testing.T) {
	teams := [][]RoundRubricScores{
		{
			{Round: 1, Questions: [][]*int{{intPtr(1), nil, intPtr(4)}, {intPtr(2)}}},
			{Round: 3, Questions: [][]*int{{intPtr(9)}, {nil}, {intPtr(0)}}},
		},
		{
			{Round: 2, Questions: [][]*int{{intPtr(-2)}}},
		},
	}

	h := BuildHistogram(HistogramRange{Min: 0, Max: 5, Questions: 2}, 3, teams)
	require.Equal(t, 6, h.Total())
	require.Equal(t, []int{1, 2, 3}, h.Questions())
	require.Equal(t, []int{0, 0, 1}, h.Distribution(1, 9))
	require.Equal(t, []int{0, 1, 0}, h.Distribution(1, -2))
}

func TestBuildHistogramIgnoresRoundsOutOfRange(t *testing.T) {
	teams := [][]RoundRubricScores{{{Round: 4, Questions: [][]*int{{intPtr(1)}}}}}

	h := BuildHistogram(HistogramRange{Min: 0, Max: 5, Questions: 1}, 2, teams)
	require.Zero(t, h.Total())
}

func TestStackedSeriesOrderingAndLabels(t *testing.T) {
	teams := [][]RoundRubricScores{{{Round: 1, Questions: [][]*int{{intPtr(1)}, {intPtr(0)}}}}}
	h := BuildHistogram(HistogramRange{Min: 0, Max: 1, Questions: 2}, 2, teams)

	series := StackedSeries(h)
	require.Len(t, series, 4)
	require.Equal(t, Series{Name: "Score 1", Data: []int{1, 0}, Stack: "S1"}, series[0])
	require.Equal(t, Series{Name: "Score 0", Data: []int{0, 0}, Stack: "S1"}, series[1])
	require.Equal(t, Series{Name: "Rubric 2 - Score 1", Data: []int{0, 0}, Stack: "S2", LinkedTo: "previous"}, series[2])
	require.Equal(t, Series{Name: "Rubric 2 - Score 0", Data: []int{1, 0}, Stack: "S2", LinkedTo: "previous"}, series[3])
}

func TestNewStackedChart(t *testing.T) {
	h := BuildHistogram(HistogramRange{Min: 0, Max: 5}, 3, nil)

	chart := NewStackedChart(h)
	require.Empty(t, chart.Series)
	require.Equal(t, []string{"Submission 1", "Submission 2", "Submission 3"}, chart.Categories)
	require.Equal(t, HistogramColors, chart.Colors)
	require.Len(t, chart.Colors, 6)
}
