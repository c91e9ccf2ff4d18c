package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net"
	"os"
	"time"

	"github.com/dr0pdb/icecanelex/pkg/cluster"
	"github.com/dr0pdb/icecanelex/pkg/common"
	"github.com/dr0pdb/icecanelex/pkg/lexorder"
	"github.com/dr0pdb/icecanelex/test"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

const usage = `usage: icecanelex <command> [flags]

commands:
  compare      compare two files (or two random sequences) in this process
  coordinator  collect the peer reports of a multi-process comparison
  peer         scan one range of a multi-process comparison
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%s", usage)
	}

	switch args[0] {
	case "compare":
		return runCompare(args[1:], out)
	case "coordinator":
		return runCoordinator(args[1:], out)
	case "peer":
		return runPeer(args[1:], out)
	}
	return fmt.Errorf("unknown command %q\n%s", args[0], usage)
}

// commonFlags registers the flags shared by every command and returns a loader
// that builds the config once the flags are parsed.
func commonFlags(fs *flag.FlagSet) func() (*common.Config, error) {
	configPath := fs.String("config", "", "path of the yaml config")
	logLevel := fs.String("loglevel", "", "the level of log")
	workers := fs.Int("workers", 0, "number of local workers, 0 for one per cpu")
	subWorkers := fs.Int("subworkers", 0, "number of sub-scans per worker")

	return func() (*common.Config, error) {
		conf := common.NewDefaultConfig()
		if *configPath != "" {
			if err := conf.LoadFromFile(*configPath); err != nil {
				return nil, err
			}
		}
		if fs.Changed("loglevel") {
			conf.LogLevel = *logLevel
		}
		if fs.Changed("workers") {
			conf.Workers = *workers
		}
		if fs.Changed("subworkers") {
			conf.SubWorkers = *subWorkers
		}
		if err := conf.Validate(); err != nil {
			return nil, err
		}

		level, _ := log.ParseLevel(conf.LogLevel)
		log.SetLevel(level)
		return conf, nil
	}
}

func runCompare(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	loadConfig := commonFlags(fs)
	pathA := fs.String("a", "", "file holding the first sequence")
	pathB := fs.String("b", "", "file holding the second sequence")
	random := fs.Int("random", 0, "compare two random sequences of this length instead of files")
	seed := fs.Int64("seed", 1, "seed of the random sequences")
	useCluster := fs.Bool("cluster", false, "run the configured peers and coordinator in this process")
	if err := fs.Parse(args); err != nil {
		return err
	}
	conf, err := loadConfig()
	if err != nil {
		return err
	}

	var a, b []byte
	if *random > 0 {
		rng := rand.New(rand.NewSource(*seed))
		a = test.RandomSequence(rng, *random)
		b = test.RandomSequence(rng, *random)
	} else {
		if a, b, err = readSequences(*pathA, *pathB); err != nil {
			return err
		}
	}

	var comparator lexorder.Comparator
	if *useCluster {
		comparator, err = cluster.NewComparator(conf)
	} else {
		comparator, err = lexorder.NewLocalComparator(lexorder.OptionsFromConfig(conf))
	}
	if err != nil {
		return err
	}

	start := time.Now()
	verdict, err := comparator.Compare(a, b, len(a))
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"comparator": comparator.Name(), "n": len(a), "elapsed": time.Since(start)}).Info("icecanelex::main::runCompare; done")
	fmt.Fprintln(out, verdict)
	return nil
}

func runCoordinator(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("coordinator", flag.ContinueOnError)
	loadConfig := commonFlags(fs)
	length := fs.Int("length", -1, "length of the compared sequences")
	timeout := fs.Duration("timeout", time.Minute, "how long to wait for the peers")
	if err := fs.Parse(args); err != nil {
		return err
	}
	conf, err := loadConfig()
	if err != nil {
		return err
	}

	coord, err := cluster.NewCoordinator(conf, *length)
	if err != nil {
		return err
	}
	defer coord.Close()

	lis, err := net.Listen("tcp", conf.CoordinatorTarget())
	if err != nil {
		return err
	}
	go func() {
		if err := coord.Serve(lis); err != nil {
			log.Error(fmt.Sprintf("icecanelex::main::runCoordinator; serve failed. err: %v", err))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	verdict, err := coord.Wait(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, verdict)
	return nil
}

func runPeer(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("peer", flag.ContinueOnError)
	loadConfig := commonFlags(fs)
	rank := fs.Int("rank", -1, "rank of this peer in [0, peers)")
	pathA := fs.String("a", "", "file holding the first sequence")
	pathB := fs.String("b", "", "file holding the second sequence")
	if err := fs.Parse(args); err != nil {
		return err
	}
	conf, err := loadConfig()
	if err != nil {
		return err
	}

	a, b, err := readSequences(*pathA, *pathB)
	if err != nil {
		return err
	}

	p, err := cluster.NewPeer(conf, *rank)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(conf.ReportRetries+1)*conf.DialTimeout)
	defer cancel()
	rp, err := p.Run(ctx, a, b, len(a))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "rank %d range %s found %t index %d\n", *rank, rp.Range, rp.Result.Found, rp.Index())
	return nil
}

// readSequences reads both files. Their lengths are checked by the comparator.
func readSequences(pathA, pathB string) ([]byte, []byte, error) {
	if pathA == "" || pathB == "" {
		return nil, nil, common.NewInvalidArgumentError("both --a and --b are required")
	}
	a, err := os.ReadFile(pathA)
	if err != nil {
		return nil, nil, err
	}
	b, err := os.ReadFile(pathB)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}
