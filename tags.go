package frontmesh

// engineTag translates a 0-based edge-source point index into the
// engine's 1-based point tag. Off-by-one slips in this mapping are the
// dominant bug class in adapters like this one, so it lives in one tested
// place instead of inline arithmetic.
func engineTag(pointIndex int) int {
	return pointIndex + 1
}
