package lexorder

import (
	"fmt"

	"github.com/dr0pdb/icecanelex/pkg/common"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// LocalComparator partitions the sequences across goroutines of a single process.
// Each worker scans its own range, optionally splitting it into sub-scans, and writes
// a single result slot. The verdict is reduced once every slot is written.
type LocalComparator struct {
	opts *Options
}

// NewLocalComparator creates a new LocalComparator. nil options use the defaults.
func NewLocalComparator(opts *Options) (*LocalComparator, error) {
	if _, err := opts.resolve(); err != nil {
		return nil, err
	}
	return &LocalComparator{opts: opts}, nil
}

// Name returns the name of the comparator
func (c *LocalComparator) Name() string {
	return "ParallelBytewiseComparator"
}

// Compare returns -1, 0, 1 if a is less than, equal to or greater than b respectively.
func (c *LocalComparator) Compare(a, b []byte, n int) (int, error) {
	if err := CheckSequences(a, b, n); err != nil {
		return 0, err
	}
	opts, err := c.opts.resolve()
	if err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{"n": n, "workers": opts.Workers, "subWorkers": opts.SubWorkers}).Debug("lexorder::local::Compare; started")

	ranges, err := Partition(n, opts.Workers)
	if err != nil {
		return 0, err
	}

	reports := make([]Report, len(ranges))
	if len(ranges) == 1 {
		reports[0] = scanUnit(a, b, 0, ranges[0], &opts)
	} else {
		eg := errgroup.Group{}
		for i, r := range ranges {
			eg.Go(func() error {
				reports[i] = scanUnit(a, b, i, r, &opts)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return 0, err
		}
	}

	verdict := Reduce(reports)
	log.WithFields(log.Fields{"n": n, "verdict": verdict}).Debug("lexorder::local::Compare; done")
	return verdict, nil
}

// ScanRange scans the range r owned by worker and returns its report.
// It subdivides r exactly like a worker of Compare does, so a peer owning
// one slice of a larger comparison can run the same scan over its slice.
func (c *LocalComparator) ScanRange(a, b []byte, worker int, r Range) (Report, error) {
	opts, err := c.opts.resolve()
	if err != nil {
		return Report{}, err
	}
	if r.Start < 0 || r.End < r.Start || r.End > len(a) || r.End > len(b) {
		return Report{}, common.NewInvalidArgumentError(fmt.Sprintf("range %s is outside sequences of length %d and %d", r, len(a), len(b)))
	}
	return scanUnit(a, b, worker, r, &opts), nil
}

// scanUnit runs one worker. Ranges shorter than twice the min chunk size are scanned serially.
func scanUnit(a, b []byte, worker int, r Range, opts *Options) Report {
	parts := opts.SubWorkers
	if limit := r.Len() / opts.MinChunkSize; parts > limit {
		parts = limit
	}
	if parts < 2 {
		return Report{Worker: worker, Range: r, Result: Scan(a, b, r)}
	}

	sub, _ := r.Split(parts)
	subReports := make([]Report, len(sub))
	eg := errgroup.Group{}
	for i, sr := range sub {
		eg.Go(func() error {
			subReports[i] = Report{Worker: i, Range: sr, Result: Scan(a, b, sr)}
			return nil
		})
	}
	// only a barrier, the scans never fail
	_ = eg.Wait()

	return collapse(worker, r, fold(subReports))
}
