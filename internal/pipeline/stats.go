package pipeline

// RunStats is derived from the outcome list; every field is a commutative
// reduction, so completion order never changes it.
type RunStats struct {
	Total         int
	Errors        int
	ManualReplace int
	BytesBefore   int64
	BytesAfter    int64
}

// SpaceSaved returns the aggregate byte difference between originals and
// their replacements. Positive means files shrank.
func (s *RunStats) SpaceSaved() int64 {
	return s.BytesBefore - s.BytesAfter
}

// ErrorRate is Errors/Total, or 0 when nothing was processed.
func (s *RunStats) ErrorRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Total)
}

func computeStats(outcomes []JobOutcome) RunStats {
	var s RunStats
	for _, o := range outcomes {
		s.Total++
		s.BytesBefore += o.SizeBefore
		s.BytesAfter += o.SizeAfter
		if !o.OK() {
			s.Errors++
		}
		if o.ManualReplace {
			s.ManualReplace++
		}
	}
	return s
}
