package cluster

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/dr0pdb/icecanelex/pkg/common"
	"github.com/dr0pdb/icecanelex/pkg/lexorder"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
)

// Coordinator collects one report per peer and reduces them into the verdict.
// Every peer owns one slot; a slot is written at most once and Wait
// blocks until every slot is written. Resending the stored report is
// acknowledged so peers can retry after a lost ack.
type Coordinator struct {
	n      int
	ranges []lexorder.Range

	mu       sync.Mutex
	reports  []lexorder.Report
	filled   []bool
	received atomic.Int64
	done     chan struct{}

	grpcServer *grpc.Server
}

// NewCoordinator creates a coordinator for sequences of length n split across conf.Peers peers.
func NewCoordinator(conf *common.Config, n int) (*Coordinator, error) {
	log.WithFields(log.Fields{"n": n, "peers": conf.Peers}).Info("cluster::coordinator::NewCoordinator; started")
	ranges, err := lexorder.Partition(n, conf.Peers)
	if err != nil {
		return nil, err
	}

	var alivePolicy = keepalive.EnforcementPolicy{
		MinTime:             2 * time.Second, // If a client pings more than once every 2 seconds, terminate the connection
		PermitWithoutStream: true,            // Allow pings even when there are no active streams
	}
	grpcServer := grpc.NewServer(
		grpc.KeepaliveEnforcementPolicy(alivePolicy),
		grpc.MaxRecvMsgSize(int(common.KB)),
	)

	c := &Coordinator{
		n:          n,
		ranges:     ranges,
		reports:    make([]lexorder.Report, len(ranges)),
		filled:     make([]bool, len(ranges)),
		done:       make(chan struct{}),
		grpcServer: grpcServer,
	}
	grpcServer.RegisterService(&coordinatorServiceDesc, c)

	log.Info("cluster::coordinator::NewCoordinator; done")
	return c, nil
}

// Serve accepts peer connections on the listener until Close is called.
func (c *Coordinator) Serve(lis net.Listener) error {
	log.WithFields(log.Fields{"address": lis.Addr().String()}).Info("cluster::coordinator::Serve; listening")
	return c.grpcServer.Serve(lis)
}

// Close stops the grpc server and closes the listener. Reports already
// being handled are answered before it returns.
func (c *Coordinator) Close() {
	c.grpcServer.GracefulStop()
	log.Info("cluster::coordinator::Close; done")
}

// Report stores the report of a single peer.
func (c *Coordinator) Report(ctx context.Context, rp *lexorder.Report) (*reportAck, error) {
	log.WithFields(log.Fields{"worker": rp.Worker, "range": rp.Range.String(), "found": rp.Result.Found}).Debug("cluster::coordinator::Report; received report")

	if err := c.validate(rp); err != nil {
		log.WithFields(log.Fields{"worker": rp.Worker}).Error(fmt.Sprintf("cluster::coordinator::Report; rejected report. err: %v", err))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.filled[rp.Worker] {
		if c.reports[rp.Worker] == *rp {
			log.WithFields(log.Fields{"worker": rp.Worker}).Info("cluster::coordinator::Report; report resent")
			return &reportAck{Received: uint64(c.received.Load())}, nil
		}
		log.WithFields(log.Fields{"worker": rp.Worker}).Error("cluster::coordinator::Report; conflicting duplicate report")
		return nil, status.Errorf(codes.InvalidArgument, "worker %d already reported a different result", rp.Worker)
	}

	c.reports[rp.Worker] = *rp
	c.filled[rp.Worker] = true
	received := c.received.Inc()
	if received == int64(len(c.reports)) {
		log.Info("cluster::coordinator::Report; all peers reported")
		close(c.done)
	}
	return &reportAck{Received: uint64(received)}, nil
}

// validate checks the report against the range the partition assigns to its worker.
func (c *Coordinator) validate(rp *lexorder.Report) error {
	if rp.Worker < 0 || rp.Worker >= len(c.ranges) {
		return common.NewInvalidArgumentError(fmt.Sprintf("worker %d outside [0, %d)", rp.Worker, len(c.ranges)))
	}
	if want := c.ranges[rp.Worker]; rp.Range != want {
		return common.NewInvalidArgumentError(fmt.Sprintf("worker %d reported range %s, assigned %s", rp.Worker, rp.Range, want))
	}
	if rp.Result.Found {
		if rp.Result.Offset < 0 || rp.Result.Offset >= rp.Range.Len() {
			return common.NewInvalidArgumentError(fmt.Sprintf("offset %d outside range %s", rp.Result.Offset, rp.Range))
		}
		if rp.Result.Sign != -1 && rp.Result.Sign != 1 {
			return common.NewInvalidArgumentError(fmt.Sprintf("invalid sign %d", rp.Result.Sign))
		}
	}
	return nil
}

// Received returns the number of peers that have reported so far.
func (c *Coordinator) Received() int {
	return int(c.received.Load())
}

// Wait blocks until every peer has reported and returns the verdict.
func (c *Coordinator) Wait(ctx context.Context) (int, error) {
	select {
	case <-c.done:
	case <-ctx.Done():
		log.WithFields(log.Fields{"received": c.Received(), "peers": len(c.reports)}).Error("cluster::coordinator::Wait; gave up waiting for peers")
		return 0, common.NewUnknownError(fmt.Sprintf("%d of %d peers reported: %v", c.Received(), len(c.reports), ctx.Err()))
	}

	verdict := lexorder.Reduce(c.reports)
	log.WithFields(log.Fields{"n": c.n, "verdict": verdict}).Info("cluster::coordinator::Wait; done")
	return verdict, nil
}
