package solver

import "testing"

func benchGrid() []float64 {
	return grid(0, 10, 0.01)
}

func benchSystem(t float64, y []float64) []float64 {
	return []float64{0.04*y[0] - 0.004*y[1], 0.001 * y[1], 0}
}

func BenchmarkDopri5(b *testing.B) {
	tEval := benchGrid()
	for i := 0; i < b.N; i++ {
		Solve(benchSystem, []float64{1000, 10, 0}, tEval, Config{})
	}
}

func BenchmarkRK4(b *testing.B) {
	tEval := benchGrid()
	for i := 0; i < b.N; i++ {
		Solve(benchSystem, []float64{1000, 10, 0}, tEval, Config{Method: "rk4"})
	}
}

func BenchmarkEuler(b *testing.B) {
	tEval := benchGrid()
	for i := 0; i < b.N; i++ {
		Solve(benchSystem, []float64{1000, 10, 0}, tEval, Config{Method: "euler"})
	}
}
