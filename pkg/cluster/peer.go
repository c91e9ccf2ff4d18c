package cluster

import (
	"context"
	"fmt"
	"time"

	"github.com/dr0pdb/icecanelex/pkg/common"
	"github.com/dr0pdb/icecanelex/pkg/lexorder"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const retryBackoff = 50 * time.Millisecond

// Peer owns one contiguous range of the sequences. It scans its slice
// and sends the resulting LocalResult to the coordinator.
type Peer struct {
	rank       int
	conf       *common.Config
	comparator *lexorder.LocalComparator

	conn *grpc.ClientConn
}

// NewPeer creates the peer with the given rank in [0, conf.Peers).
func NewPeer(conf *common.Config, rank int) (*Peer, error) {
	if rank < 0 || rank >= conf.Peers {
		return nil, common.NewInvalidArgumentError(fmt.Sprintf("rank %d outside [0, %d)", rank, conf.Peers))
	}
	comparator, err := lexorder.NewLocalComparator(lexorder.OptionsFromConfig(conf))
	if err != nil {
		return nil, err
	}
	return &Peer{
		rank:       rank,
		conf:       conf,
		comparator: comparator,
	}, nil
}

// Assigned returns the range the peer owns for sequences of length n.
func (p *Peer) Assigned(n int) (lexorder.Range, error) {
	ranges, err := lexorder.Partition(n, p.conf.Peers)
	if err != nil {
		return lexorder.Range{}, err
	}
	return ranges[p.rank], nil
}

// Run scans the peer's range of a and b and reports the result to the coordinator.
// a and b are the full sequences of length n; only the assigned slice is read.
func (p *Peer) Run(ctx context.Context, a, b []byte, n int) (lexorder.Report, error) {
	if err := lexorder.CheckSequences(a, b, n); err != nil {
		return lexorder.Report{}, err
	}
	r, err := p.Assigned(n)
	if err != nil {
		return lexorder.Report{}, err
	}
	return p.RunSlice(ctx, r, a[r.Start:r.End], b[r.Start:r.End])
}

// RunSlice scans a slice that holds exactly the assigned range r and reports the result.
// It is used when the peer only holds its own part of the sequences.
func (p *Peer) RunSlice(ctx context.Context, r lexorder.Range, a, b []byte) (lexorder.Report, error) {
	log.WithFields(log.Fields{"rank": p.rank, "range": r.String()}).Info("cluster::peer::RunSlice; started")
	if err := lexorder.CheckSequences(a, b, r.Len()); err != nil {
		return lexorder.Report{}, err
	}

	local, err := p.comparator.ScanRange(a, b, p.rank, lexorder.Range{Start: 0, End: r.Len()})
	if err != nil {
		return lexorder.Report{}, err
	}
	// offsets are relative, only the range moves
	rp := lexorder.Report{Worker: p.rank, Range: r, Result: local.Result}

	if err := p.report(ctx, &rp); err != nil {
		return lexorder.Report{}, err
	}
	log.WithFields(log.Fields{"rank": p.rank, "found": rp.Result.Found}).Info("cluster::peer::RunSlice; done")
	return rp, nil
}

// report sends the report, retrying while the coordinator is unavailable.
func (p *Peer) report(ctx context.Context, rp *lexorder.Report) error {
	var err error
	for attempt := 0; attempt <= p.conf.ReportRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * retryBackoff):
			case <-ctx.Done():
				return common.NewUnknownError(fmt.Sprintf("report of rank %d: %v", p.rank, ctx.Err()))
			}
		}

		var conn *grpc.ClientConn
		conn, err = p.getConn(ctx)
		if err != nil {
			log.WithFields(log.Fields{"rank": p.rank, "attempt": attempt}).Error(fmt.Sprintf("cluster::peer::report; dial failed. err: %v", err))
			continue
		}

		var ack *reportAck
		ack, err = sendReport(ctx, conn, rp)
		if err == nil {
			log.WithFields(log.Fields{"rank": p.rank, "received": ack.Received}).Debug("cluster::peer::report; acknowledged")
			return nil
		}
		if status.Code(err) != codes.Unavailable {
			break
		}
		log.WithFields(log.Fields{"rank": p.rank, "attempt": attempt}).Info("cluster::peer::report; coordinator unavailable, retrying")
	}

	if st, ok := status.FromError(err); ok && st.Code() == codes.InvalidArgument {
		return common.NewInvalidArgumentError(st.Message())
	}
	return common.NewUnknownError(fmt.Sprintf("report of rank %d failed: %v", p.rank, err))
}

// getConn returns the cached connection to the coordinator or dials a new one.
func (p *Peer) getConn(ctx context.Context) (*grpc.ClientConn, error) {
	if p.conn != nil {
		return p.conn, nil
	}

	dctx, cancel := context.WithTimeout(ctx, p.conf.DialTimeout)
	defer cancel()

	var opts []grpc.DialOption
	opts = append(opts, grpc.WithInsecure())
	opts = append(opts, grpc.WithBlock())
	conn, err := grpc.DialContext(dctx, p.conf.CoordinatorTarget(), opts...)
	if err != nil {
		return nil, err
	}
	p.conn = conn
	return conn, nil
}

// Close closes the connection to the coordinator.
func (p *Peer) Close() error {
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}
