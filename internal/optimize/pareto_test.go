package optimize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testObjectives = []Objective{
	{Name: "pnl", Maximize: true},
	{Name: "risk", Maximize: false},
}

func point(param, pnl, risk float64) Point {
	return Point{Param: param, Values: map[string]float64{"pnl": pnl, "risk": risk}}
}

// TestFront_DominatedExcluded tests that a point worse on both objectives is
// dropped while the trade-off points survive
func TestFront_DominatedExcluded(t *testing.T) {
	points := []Point{
		point(0, 100, 10),
		point(15, 80, 5),
		point(30, 70, 8), // dominated by param 15
	}

	front := Front(points, testObjectives)
	require.Len(t, front, 2)
	params := []float64{front[0].Param, front[1].Param}
	assert.Contains(t, params, 0.0)
	assert.Contains(t, params, 15.0)
}

// TestFront_SelfConsistent tests that no front point dominates another
func TestFront_SelfConsistent(t *testing.T) {
	points := []Point{
		point(0, 100, 10),
		point(15, 90, 7),
		point(30, 80, 5),
		point(45, 60, 6),
		point(60, 95, 9),
	}

	front := Front(points, testObjectives)
	require.NotEmpty(t, front)
	for i, a := range front {
		for j, b := range front {
			if i == j {
				continue
			}
			assert.False(t, dominates(a, b, testObjectives),
				"param %.0f dominates param %.0f", a.Param, b.Param)
		}
	}
}

// TestFront_NonFiniteExcluded tests that NaN and missing values disqualify a
// point before dominance analysis
func TestFront_NonFiniteExcluded(t *testing.T) {
	points := []Point{
		point(0, 100, 10),
		point(15, math.NaN(), 1),
		{Param: 30, Values: map[string]float64{"pnl": 50}}, // risk missing
	}

	front := Front(points, testObjectives)
	require.Len(t, front, 1)
	assert.Equal(t, 0.0, front[0].Param)
}

// TestBestPerMetric_Directions tests per-objective optima respect direction
func TestBestPerMetric_Directions(t *testing.T) {
	points := []Point{point(0, 100, 10), point(15, 80, 5)}

	best := BestPerMetric(points, testObjectives)
	assert.Equal(t, 100.0, best["pnl"])
	assert.Equal(t, 5.0, best["risk"])
}

// TestBalanced_PicksCompromise tests that the balanced point minimizes the
// mean normalized distance to the optima
func TestBalanced_PicksCompromise(t *testing.T) {
	points := []Point{
		point(0, 100, 10), // best pnl, worst risk
		point(15, 90, 6),  // close to both optima
		point(30, 50, 5),  // best risk, worst pnl
	}

	front := Front(points, testObjectives)
	balanced, ok := Balanced(front, points, testObjectives)
	require.True(t, ok)
	assert.Equal(t, 15.0, balanced.Param)
}

// TestBalanced_ZeroRangeSkipped tests that an objective every point ties on
// does not poison the score
func TestBalanced_ZeroRangeSkipped(t *testing.T) {
	points := []Point{point(0, 100, 5), point(15, 80, 5)}

	front := Front(points, testObjectives)
	balanced, ok := Balanced(front, points, testObjectives)
	require.True(t, ok)
	assert.Equal(t, 0.0, balanced.Param)
}

// TestBalanced_EmptyFront tests the no-candidates case
func TestBalanced_EmptyFront(t *testing.T) {
	_, ok := Balanced(nil, nil, testObjectives)
	assert.False(t, ok)
}
