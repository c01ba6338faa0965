package matching

import (
	"sort"

	hungarian "github.com/arthurkushman/go-hungarian"
)

// gainTolerance is the smallest total gain improvement refineAssignment acts on
const gainTolerance = 1e-9

// solveAssignment returns cols[i] = column of row i maximising the total gain of a square matrix.
// go-hungarian's SolveMax provides the starting assignment, which may be partial and is not
// always optimal; it is completed and then refined by cycle cancelling.
func solveAssignment(gains [][]float64) []int {
	n := len(gains)
	if n == 0 {
		return nil
	}
	cols := make([]int, n)
	for i := range cols {
		cols[i] = -1
	}
	usedCols := make([]bool, n)

	initial := hungarian.SolveMax(gains)
	rows := make([]int, 0, len(initial))
	for i := range initial {
		rows = append(rows, i)
	}
	sort.Ints(rows)
	for _, i := range rows {
		if i < 0 || i >= n {
			continue
		}
		candidates := make([]int, 0, len(initial[i]))
		for j := range initial[i] {
			candidates = append(candidates, j)
		}
		sort.Ints(candidates)
		for _, j := range candidates {
			if j >= 0 && j < n && !usedCols[j] {
				cols[i] = j
				usedCols[j] = true
				break
			}
		}
	}

	// Rows the solver left out take the free columns in order
	free := 0
	for i := range cols {
		if cols[i] != -1 {
			continue
		}
		for usedCols[free] {
			free++
		}
		cols[i] = free
		usedCols[free] = true
	}

	refineAssignment(gains, cols)
	return cols
}

// refineAssignment rotates columns along gain-improving cycles until none is left. A complete
// assignment with no improving cycle is optimal.
func refineAssignment(gains [][]float64, cols []int) {
	// Each rotation raises the total by more than gainTolerance, so this terminates
	for {
		cycle := improvingCycle(gains, cols)
		if cycle == nil {
			return
		}
		first := cols[cycle[0]]
		for k := 0; k < len(cycle)-1; k++ {
			cols[cycle[k]] = cols[cycle[k+1]]
		}
		cols[cycle[len(cycle)-1]] = first
	}
}

// improvingCycle looks for rows r0 -> r1 -> ... -> r0 such that every row taking the next row's
// column raises the total gain. It runs Bellman-Ford over rows, where the edge a -> b costs
// gains[a][cols[a]] - gains[a][cols[b]]; an improving cycle is a negative one.
func improvingCycle(gains [][]float64, cols []int) []int {
	n := len(cols)
	weight := func(a, b int) float64 {
		return gains[a][cols[a]] - gains[a][cols[b]]
	}
	dist := make([]float64, n)
	pred := make([]int, n)
	for i := range pred {
		pred[i] = -1
	}
	last := -1
	for iter := 0; iter < n; iter++ {
		last = -1
		for a := 0; a < n; a++ {
			for b := 0; b < n; b++ {
				if a == b {
					continue
				}
				if d := dist[a] + weight(a, b); d < dist[b]-gainTolerance {
					dist[b] = d
					pred[b] = a
					last = b
				}
			}
		}
		if last == -1 {
			return nil
		}
	}

	// Step back n times to land on the cycle itself
	x := last
	for i := 0; i < n; i++ {
		if pred[x] == -1 {
			return nil
		}
		x = pred[x]
	}
	reversed := []int{x}
	for v := pred[x]; v != x; v = pred[v] {
		if v == -1 || len(reversed) > n {
			return nil
		}
		reversed = append(reversed, v)
	}
	cycle := make([]int, len(reversed))
	for k, v := range reversed {
		cycle[len(reversed)-1-k] = v
	}

	total := 0.0
	for k := range cycle {
		total += weight(cycle[k], cycle[(k+1)%len(cycle)])
	}
	if total >= -gainTolerance {
		return nil
	}
	return cycle
}
