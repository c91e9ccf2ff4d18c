package lexorder

import (
	"fmt"
	"runtime"

	"github.com/dr0pdb/icecanelex/pkg/common"
)

const (
	defaultMinChunkSize = 4096
	defaultMaxWorkers   = 1 << 16
)

// Options defines all of the configuration options available with the LocalComparator.
type Options struct {
	// The number of workers the sequences are partitioned across.
	// set to zero for runtime.NumCPU().
	Workers int

	// The number of sub-scans each worker splits its range into.
	// set to zero or one to scan every range serially.
	SubWorkers int

	// The smallest sub-range handed to a sub-scan. A worker only subdivides
	// ranges of at least twice this size.
	// set to zero for defaultMinChunkSize.
	MinChunkSize int

	// The upper bound on Workers*SubWorkers result slots.
	// set to zero for defaultMaxWorkers.
	MaxWorkers int
}

// OptionsFromConfig builds the local comparator options out of a run config.
func OptionsFromConfig(conf *common.Config) *Options {
	return &Options{
		Workers:      conf.Workers,
		SubWorkers:   conf.SubWorkers,
		MinChunkSize: conf.MinChunkSize,
	}
}

// resolve validates the options and fills in the defaults.
func (o *Options) resolve() (Options, error) {
	res := Options{}
	if o != nil {
		res = *o
	}

	if res.Workers < 0 {
		return res, common.NewInvalidArgumentError(fmt.Sprintf("negative worker count %d", res.Workers))
	}
	if res.SubWorkers < 0 {
		return res, common.NewInvalidArgumentError(fmt.Sprintf("negative sub-worker count %d", res.SubWorkers))
	}
	if res.MinChunkSize < 0 || res.MaxWorkers < 0 {
		return res, common.NewInvalidArgumentError("negative chunk size or worker limit")
	}

	if res.Workers == 0 {
		res.Workers = runtime.NumCPU()
	}
	if res.SubWorkers == 0 {
		res.SubWorkers = 1
	}
	if res.MinChunkSize == 0 {
		res.MinChunkSize = defaultMinChunkSize
	}
	if res.MaxWorkers == 0 {
		res.MaxWorkers = defaultMaxWorkers
	}

	if res.Workers > res.MaxWorkers || res.SubWorkers > res.MaxWorkers || res.Workers > res.MaxWorkers/res.SubWorkers {
		return res, common.NewResourceExhaustedError(fmt.Sprintf("%d workers with %d sub-workers exceed the limit of %d result slots",
			res.Workers, res.SubWorkers, res.MaxWorkers))
	}
	return res, nil
}
