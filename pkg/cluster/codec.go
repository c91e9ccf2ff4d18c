package cluster

import (
	"fmt"

	"github.com/dr0pdb/icecanelex/pkg/lexorder"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protowire"
)

// codecName is the grpc content-subtype the report messages travel under.
const codecName = "icecanelex"

// field numbers of the report message. Every field is a fixed64 and always
// present so that the message has the same size for every peer.
const (
	fieldWorker protowire.Number = iota + 1
	fieldStart
	fieldEnd
	fieldOffset
	fieldFlags
)

// field numbers of the ack message.
const (
	fieldReceived protowire.Number = 1
)

const (
	flagFound uint64 = 1 << iota
	flagNegative
)

// ReportMessageSize is the encoded size of a single peer report.
const ReportMessageSize = 5 * (1 + 8)

// reportAck is the coordinator's reply to a report.
type reportAck struct {
	// Received is the number of reports the coordinator holds after this one.
	Received uint64
}

func init() {
	encoding.RegisterCodec(reportCodec{})
}

// reportCodec encodes the two messages exchanged between peers and the coordinator
// in protobuf wire format without generated code.
type reportCodec struct{}

func (reportCodec) Name() string {
	return codecName
}

func (reportCodec) Marshal(v interface{}) ([]byte, error) {
	switch m := v.(type) {
	case *lexorder.Report:
		return marshalReport(m), nil
	case *reportAck:
		b := protowire.AppendTag(nil, fieldReceived, protowire.Fixed64Type)
		return protowire.AppendFixed64(b, m.Received), nil
	}
	return nil, fmt.Errorf("icecanelex codec: can't marshal %T", v)
}

func (reportCodec) Unmarshal(data []byte, v interface{}) error {
	switch m := v.(type) {
	case *lexorder.Report:
		return unmarshalReport(data, m)
	case *reportAck:
		return consumeFixed64Fields(data, func(num protowire.Number, val uint64) {
			if num == fieldReceived {
				m.Received = val
			}
		})
	}
	return fmt.Errorf("icecanelex codec: can't unmarshal into %T", v)
}

func marshalReport(rp *lexorder.Report) []byte {
	var flags uint64
	if rp.Result.Found {
		flags |= flagFound
	}
	if rp.Result.Sign < 0 {
		flags |= flagNegative
	}

	b := make([]byte, 0, ReportMessageSize)
	for _, f := range []struct {
		num protowire.Number
		val uint64
	}{
		{fieldWorker, uint64(rp.Worker)},
		{fieldStart, uint64(rp.Range.Start)},
		{fieldEnd, uint64(rp.Range.End)},
		{fieldOffset, uint64(rp.Result.Offset)},
		{fieldFlags, flags},
	} {
		b = protowire.AppendTag(b, f.num, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, f.val)
	}
	return b
}

func unmarshalReport(data []byte, rp *lexorder.Report) error {
	*rp = lexorder.Report{}
	var flags uint64
	err := consumeFixed64Fields(data, func(num protowire.Number, val uint64) {
		switch num {
		case fieldWorker:
			rp.Worker = int(val)
		case fieldStart:
			rp.Range.Start = int(val)
		case fieldEnd:
			rp.Range.End = int(val)
		case fieldOffset:
			rp.Result.Offset = int(val)
		case fieldFlags:
			flags = val
		}
	})
	if err != nil {
		return err
	}

	if flags&flagFound != 0 {
		rp.Result.Found = true
		rp.Result.Sign = 1
		if flags&flagNegative != 0 {
			rp.Result.Sign = -1
		}
	}
	return nil
}

// consumeFixed64Fields walks the message and hands every fixed64 field to fn.
// Fields of other wire types are skipped.
func consumeFixed64Fields(data []byte, fn func(num protowire.Number, val uint64)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		if typ != protowire.Fixed64Type {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
			continue
		}

		val, n := protowire.ConsumeFixed64(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		fn(num, val)
	}
	return nil
}
