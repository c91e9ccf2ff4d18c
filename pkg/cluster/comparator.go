package cluster

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/dr0pdb/icecanelex/pkg/common"
	"github.com/dr0pdb/icecanelex/pkg/lexorder"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// Comparator runs a coordinator and conf.Peers peers inside the current process.
// Peers exchange nothing but their reports, so the same comparison can run
// with every peer in its own process (see cmd/icecanelex).
type Comparator struct {
	conf *common.Config
}

var _ lexorder.Comparator = (*Comparator)(nil)

// NewComparator creates a new cluster Comparator.
// Set conf.Port to "0" to let the coordinator pick a free port.
func NewComparator(conf *common.Config) (*Comparator, error) {
	if err := conf.Validate(); err != nil {
		return nil, common.NewInvalidArgumentError(err.Error())
	}
	return &Comparator{conf: conf}, nil
}

// Name returns the name of the comparator
func (c *Comparator) Name() string {
	return "ClusterBytewiseComparator"
}

// Compare returns -1, 0, 1 if a is less than, equal to or greater than b respectively.
func (c *Comparator) Compare(a, b []byte, n int) (verdict int, err error) {
	if err := lexorder.CheckSequences(a, b, n); err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{"n": n, "peers": c.conf.Peers}).Debug("cluster::comparator::Compare; started")

	coord, err := NewCoordinator(c.conf, n)
	if err != nil {
		return 0, err
	}
	lis, err := net.Listen("tcp", c.conf.CoordinatorTarget())
	if err != nil {
		coord.Close()
		return 0, common.NewUnknownError(err.Error())
	}
	served := make(chan error, 1)
	go func() {
		served <- coord.Serve(lis)
	}()
	defer func() {
		coord.Close()
		if serr := <-served; serr != nil && serr != grpc.ErrServerStopped {
			err = multierr.Append(err, serr)
		}
	}()

	pconf := *c.conf
	pconf.Address, pconf.Port, err = net.SplitHostPort(lis.Addr().String())
	if err != nil {
		return 0, common.NewUnknownError(err.Error())
	}

	// the deadline bounds the transport, the scans always run to completion
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(pconf.ReportRetries+1)*pconf.DialTimeout)
	defer cancel()

	peers := make([]*Peer, pconf.Peers)
	for rank := range peers {
		if peers[rank], err = NewPeer(&pconf, rank); err != nil {
			return 0, err
		}
	}

	eg := errgroup.Group{}
	for _, p := range peers {
		eg.Go(func() error {
			_, err := p.Run(ctx, a, b, n)
			return err
		})
	}
	err = eg.Wait()
	for _, p := range peers {
		err = multierr.Append(err, p.Close())
	}
	if err != nil {
		log.WithFields(log.Fields{"n": n}).Error(fmt.Sprintf("cluster::comparator::Compare; peers failed. err: %v", err))
		return 0, err
	}

	verdict, err = coord.Wait(ctx)
	log.WithFields(log.Fields{"n": n, "verdict": verdict}).Debug("cluster::comparator::Compare; done")
	return verdict, err
}
