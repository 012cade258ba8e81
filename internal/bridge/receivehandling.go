package bridge

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/farouk15160/canbits/internal/bitstream"
	"github.com/farouk15160/canbits/internal/canframe"
)

// Run reads r line by line until EOF or until ctx is done. Blank lines and
// lines starting with '#' are skipped. Lines that fail to decode are counted
// and logged; only read errors and cancellation end the run early. If r is
// an io.Closer it is closed when ctx is done, which unblocks a pending read.
func (b *Bridge) Run(ctx context.Context, r io.Reader) error {
	if c, ok := r.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { c.Close() })
		defer stop()
	}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++
		if err := b.HandleLine(ctx, scanner.Text()); err != nil {
			b.log.Warnf("line %d: %v", lineNo, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "reading input")
	}
	s := b.stats.Snapshot()
	b.log.Infof("Input finished: %d lines, %d decoded, %d failed", s.Lines, s.Decoded, s.Failed)
	return nil
}

// HandleLine decodes one line and delivers it to every sink. The returned
// error describes the first failure; sinks after a failing sink still run.
func (b *Bridge) HandleLine(ctx context.Context, line string) error {
	b.stats.lines.Add(1)
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		b.stats.skipped.Add(1)
		return nil
	}

	bits, err := bitstream.Parse(line)
	if err != nil {
		b.stats.fail("SyntaxError")
		return err
	}
	frame, err := b.decoder.Decode(bits)
	if err != nil {
		b.stats.fail(failureReason(err))
		return err
	}
	b.stats.decoded.Add(1)
	b.stats.stuffBits.Add(uint64(frame.StuffedBitCount()))

	msg, err := b.message(frame)
	if err != nil {
		b.stats.fail("EncodeError")
		return err
	}
	b.log.Debugf("Decoded %s -> %s", msg.Record.ID, msg.Topic)
	return b.deliver(ctx, msg)
}

func (b *Bridge) message(frame canframe.Frame) (Message, error) {
	record := NewRecord(frame, b.now())
	topic, format := DefaultTopic(record), b.format
	if route, ok := b.routes.Route(frame.ID()); ok {
		topic = route.Topic
		if route.Format != "" {
			format = route.Format
		}
	}
	payload, err := EncodeRecord(record, format)
	if err != nil {
		return Message{}, err
	}
	return Message{Topic: topic, Payload: payload, Record: record, Frame: frame}, nil
}

func (b *Bridge) deliver(ctx context.Context, msg Message) error {
	var first error
	for _, s := range b.sinks {
		if err := s.Send(ctx, msg); err != nil {
			b.stats.sinkErrors.Add(1)
			b.log.Errorf("Sink %s: %v", s.Name(), err)
			if first == nil {
				first = errors.Wrapf(err, "sink %s", s.Name())
			}
			continue
		}
		b.stats.delivered.Add(1)
	}
	return first
}

func failureReason(err error) string {
	var kind canframe.ErrorKind
	if errors.As(err, &kind) {
		return kind.String()
	}
	return "DecodeError"
}
