package sim

// PairIndex maps an unordered pair of kinds to a dense index into the
// symmetric property table. The pairs are laid out row by row, where row r
// holds entries (r,0)..(r,r), so row r starts at offset r*(r+1)/2.
// PairIndex(a, b) == PairIndex(b, a) for all kinds.
//
// The same closed form is hard-coded in the compute shader (gpu/step.glsl);
// the two must never diverge.
func PairIndex(a, b int) int {
	if a < b {
		a, b = b, a
	}
	return a*(a+1)/2 + b
}

// PairCount returns the number of symmetric property slots for k kinds.
func PairCount(k int) int {
	return k * (k + 1) / 2
}
