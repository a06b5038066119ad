package stats

// fallbackCritical is the 95% z value, returned for any level the tables do not carry.
const fallbackCritical = 1.96

var zTable = map[ConfidenceLevel]float64{
	Level90: 1.645,
	Level95: 1.96,
	Level99: 2.576,
}

// dfBuckets must stay ascending: nearestBucket keeps the first minimum, so ties go to the lower bucket.
var dfBuckets = [...]int{10, 20, 30, 50, 100, 1000}

var tTable = map[ConfidenceLevel][len(dfBuckets)]float64{
	Level90: {1.812, 1.725, 1.697, 1.676, 1.660, 1.646},
	Level95: {2.228, 2.086, 2.042, 2.009, 1.984, 1.962},
	Level99: {3.169, 2.845, 2.750, 2.678, 2.626, 2.581},
}

// ZValue returns the two-sided standard normal critical value for the level.
func ZValue(level ConfidenceLevel) float64 {
	if z, ok := zTable[level]; ok {
		return z
	}
	return fallbackCritical
}

// TValue returns the approximate Student's t critical value for the level, using the
// tabulated degrees of freedom nearest to df.
func TValue(level ConfidenceLevel, df int) float64 {
	row, ok := tTable[level]
	if !ok {
		return fallbackCritical
	}
	return row[nearestBucket(df)]
}

// DFBucket reports which tabulated degrees of freedom TValue uses for df.
func DFBucket(df int) int {
	return dfBuckets[nearestBucket(df)]
}

// DFBuckets returns the tabulated degrees of freedom in ascending order.
func DFBuckets() []int {
	out := make([]int, len(dfBuckets))
	copy(out, dfBuckets[:])
	return out
}

func nearestBucket(df int) int {
	best := 0
	bestDist := absInt(dfBuckets[0] - df)
	for i := 1; i < len(dfBuckets); i++ {
		if d := absInt(dfBuckets[i] - df); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
