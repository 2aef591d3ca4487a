package convergence

import "github.com/neurorank/fxpagerank/trajectory"

// Round returns the index of the first row whose L1 distance from the row
// before it is below N*tol, where N is the trajectory width. If no such row
// exists it returns t.Len().
func Round(t *trajectory.Trajectory, tol float64) int {
	bound := float64(t.Width()) * tol
	for i := 1; i < t.Len(); i++ {
		if trajectory.Distance(t.Row(i-1), t.Row(i)) < bound {
			return i
		}
	}
	return t.Len()
}

// Freeze returns a copy of t in which every row after the convergence round
// is replaced by the row of that round, together with the round index as
// computed by Round. A trajectory that never converges is returned
// unchanged with a round equal to its length. The input is not modified.
func Freeze(t *trajectory.Trajectory, tol float64) (*trajectory.Trajectory, int) {
	frozen := t.Clone()
	round := Round(frozen, tol)
	if round == frozen.Len() {
		return frozen, round
	}

	converged := frozen.Row(round)
	for i := round + 1; i < frozen.Len(); i++ {
		// Width is preserved so Set cannot fail.
		_ = frozen.Set(i, append(trajectory.Row(nil), converged...))
	}
	return frozen, round
}
