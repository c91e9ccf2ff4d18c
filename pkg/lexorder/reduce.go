package lexorder

// Report pairs a LocalResult with the Range it was computed over
// and the worker slot that produced it.
type Report struct {
	Worker int
	Range  Range
	Result LocalResult
}

// Index returns the absolute index of the mismatch in the report, or -1 if there is none.
func (rp Report) Index() int {
	if !rp.Result.Found {
		return -1
	}
	return rp.Range.Start + rp.Result.Offset
}

// Merge combines two reports and returns the one holding the smaller absolute mismatch index.
// The zero Report is the identity. Merge is associative and commutative, so reports can be
// folded in any order or grouping (all at once, pairwise across peers, or as they arrive).
func Merge(x, y Report) Report {
	switch {
	case !x.Result.Found && !y.Result.Found:
		return Report{}
	case !x.Result.Found:
		return y
	case !y.Result.Found:
		return x
	}

	// ranges are disjoint so indices never coincide in practice;
	// fall back to worker then sign to keep the result independent of argument order.
	xi, yi := x.Index(), y.Index()
	switch {
	case xi != yi:
		if xi < yi {
			return x
		}
		return y
	case x.Worker != y.Worker:
		if x.Worker < y.Worker {
			return x
		}
		return y
	case x.Result.Sign <= y.Result.Sign:
		return x
	}
	return y
}

// Reduce folds the reports into the global verdict.
// It returns 0 if no report found a difference, otherwise the sign of the report
// with the smallest absolute mismatch index.
func Reduce(reports []Report) int {
	return Verdict(fold(reports))
}

// Verdict returns the -1/0/+1 outcome carried by a merged report.
func Verdict(rp Report) int {
	if !rp.Result.Found {
		return 0
	}
	return rp.Result.Sign
}

func fold(reports []Report) Report {
	var best Report
	for _, rp := range reports {
		best = Merge(best, rp)
	}
	return best
}

// collapse rebases a merged report from sub-ranges onto the unit range r owned by worker.
func collapse(worker int, r Range, merged Report) Report {
	rp := Report{Worker: worker, Range: r}
	if merged.Result.Found {
		rp.Result = LocalResult{
			Found:  true,
			Offset: merged.Index() - r.Start,
			Sign:   merged.Result.Sign,
		}
	}
	return rp
}
