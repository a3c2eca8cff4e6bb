package trace

// SplitParams controls cycle splitting.
type SplitParams struct {
	ReversalRun int `json:"reversal_run"` // Consecutive opposite-sign potential steps that confirm a turn
	MinSegment  int `json:"min_segment"`  // Segments shorter than this merge into a neighbor
}

// DefaultSplitParams returns splitting parameters suited to typical
// potentiostat exports, where a handful of jittery samples around each
// switching point is normal.
func DefaultSplitParams() SplitParams {
	return SplitParams{
		ReversalRun: 3,
		MinSegment:  5,
	}
}

// Segment is one monotonic-direction half-cycle cut from a raw trace.
// Samples aliases the input scan; StartIndex and EndIndex are inclusive
// positions in the original sample sequence.
type Segment struct {
	Direction  Direction `json:"direction"`
	Samples    Scan      `json:"-"`
	StartIndex int       `json:"start_index"`
	EndIndex   int       `json:"end_index"`
}

// Split partitions a raw trace into monotonic half-cycle segments using
// default parameters. See SplitWithParams.
func Split(samples Scan) []Segment {
	return SplitWithParams(samples, DefaultSplitParams())
}

// SplitWithParams partitions a raw trace into monotonic half-cycle
// segments. Direction is decided by the sign of consecutive potential
// differences; zero differences are neutral and inherit the surrounding
// run. A direction change only closes a segment once it persists for
// ReversalRun consecutive opposite-sign steps, so instrument jitter at a
// switching point does not fragment the trace. The turning sample ends the
// outgoing segment; segments are contiguous and non-overlapping.
func SplitWithParams(samples Scan, p SplitParams) []Segment {
	n := len(samples)
	if n == 0 {
		return nil
	}
	if p.ReversalRun < 1 {
		p.ReversalRun = 1
	}

	// Establish the initial sweep direction from the first nonzero step.
	dir := Forward
	found := false
	for i := 1; i < n; i++ {
		d := samples[i].Potential - samples[i-1].Potential
		if d > 0 {
			dir, found = Forward, true
			break
		}
		if d < 0 {
			dir, found = Reverse, true
			break
		}
	}
	if !found {
		// Flat potential column: one nominal forward segment.
		return []Segment{{Direction: Forward, Samples: samples, StartIndex: 0, EndIndex: n - 1}}
	}

	var raw []Segment
	start := 0
	opposite := 0 // consecutive steps against the current direction
	vertex := 0   // candidate turning sample index

	for i := 1; i < n; i++ {
		d := samples[i].Potential - samples[i-1].Potential
		if d == 0 {
			continue
		}
		against := (dir == Forward && d < 0) || (dir == Reverse && d > 0)
		if !against {
			opposite = 0
			continue
		}
		if opposite == 0 {
			vertex = i - 1
		}
		opposite++
		if opposite >= p.ReversalRun {
			raw = append(raw, Segment{Direction: dir, StartIndex: start, EndIndex: vertex})
			start = vertex + 1
			if dir == Forward {
				dir = Reverse
			} else {
				dir = Forward
			}
			opposite = 0
		}
	}
	raw = append(raw, Segment{Direction: dir, StartIndex: start, EndIndex: n - 1})

	// Fold undersized segments into their neighbor; absorbing can leave
	// two same-direction runs touching, which also collapse here. The
	// absorbing segment's direction wins.
	var out []Segment
	for _, seg := range raw {
		if len(out) > 0 {
			prev := &out[len(out)-1]
			if seg.EndIndex-seg.StartIndex+1 < p.MinSegment || prev.Direction == seg.Direction {
				prev.EndIndex = seg.EndIndex
				continue
			}
		}
		out = append(out, seg)
	}
	if len(out) > 1 && out[0].EndIndex-out[0].StartIndex+1 < p.MinSegment {
		out[1].StartIndex = out[0].StartIndex
		out = out[1:]
	}

	for i := range out {
		out[i].Samples = samples[out[i].StartIndex : out[i].EndIndex+1]
	}
	return out
}
