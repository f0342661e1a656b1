package optimize

import "math"

// Objective names one optimized metric and its direction.
type Objective struct {
	Name     string
	Maximize bool
}

// Point is one candidate parameter choice with one value per objective.
type Point struct {
	Param  float64
	Values map[string]float64
}

// value reads the point's value for an objective; missing values are treated
// as non-finite so the point is excluded from analysis.
func (p Point) value(name string) float64 {
	v, ok := p.Values[name]
	if !ok {
		return math.NaN()
	}
	return v
}

// valid reports whether the point carries a finite value for every objective.
func valid(p Point, objectives []Objective) bool {
	for _, o := range objectives {
		v := p.value(o.Name)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// dominates reports whether a is at least as good as b on every objective and
// strictly better on at least one.
func dominates(a, b Point, objectives []Objective) bool {
	strictlyBetter := false
	for _, o := range objectives {
		av, bv := a.value(o.Name), b.value(o.Name)
		if !o.Maximize {
			av, bv = -av, -bv
		}
		if av < bv {
			return false
		}
		if av > bv {
			strictlyBetter = true
		}
	}
	return strictlyBetter
}

// Front returns the non-dominated subset of points. Points with a NaN or
// infinite value on any objective are excluded before dominance analysis.
func Front(points []Point, objectives []Objective) []Point {
	candidates := make([]Point, 0, len(points))
	for _, p := range points {
		if valid(p, objectives) {
			candidates = append(candidates, p)
		}
	}

	var front []Point
	for i, p := range candidates {
		dominated := false
		for j, q := range candidates {
			if i == j {
				continue
			}
			if dominates(q, p, objectives) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, p)
		}
	}
	return front
}

// BestPerMetric returns, for each objective, the optimal value among valid
// points.
func BestPerMetric(points []Point, objectives []Objective) map[string]float64 {
	best := make(map[string]float64, len(objectives))
	for _, o := range objectives {
		found := false
		var optimum float64
		for _, p := range points {
			if !valid(p, objectives) {
				continue
			}
			v := p.value(o.Name)
			if !found || (o.Maximize && v > optimum) || (!o.Maximize && v < optimum) {
				optimum = v
				found = true
			}
		}
		if found {
			best[o.Name] = optimum
		}
	}
	return best
}

// Balanced picks the front point closest, on average, to every objective's
// global optimum. Distances are normalized by each objective's value range
// over all valid points; zero-range objectives are skipped since every point
// ties on them.
func Balanced(front, all []Point, objectives []Objective) (Point, bool) {
	if len(front) == 0 {
		return Point{}, false
	}

	optima := BestPerMetric(all, objectives)

	ranges := make(map[string]float64, len(objectives))
	for _, o := range objectives {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, p := range all {
			if !valid(p, objectives) {
				continue
			}
			v := p.value(o.Name)
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if !math.IsInf(lo, 1) {
			ranges[o.Name] = hi - lo
		}
	}

	bestIdx := 0
	bestScore := math.Inf(1)
	for i, p := range front {
		distSum := 0.0
		counted := 0
		for _, o := range objectives {
			r := ranges[o.Name]
			if r == 0 {
				continue
			}
			distSum += math.Abs(p.value(o.Name)-optima[o.Name]) / r
			counted++
		}
		score := 0.0
		if counted > 0 {
			score = distSum / float64(counted)
		}
		if score < bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return front[bestIdx], true
}
