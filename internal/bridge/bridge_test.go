package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brutella/can"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-redis/redis/v8"
	"github.com/pion/logging"

	"github.com/farouk15160/canbits/internal/bitstream"
	"github.com/farouk15160/canbits/internal/canframe"
	"github.com/farouk15160/canbits/internal/config"
)

const (
	baseStuffed     = "0,000010010100,0,0,01,0001,000001001,111011101010011,1,0,1,1111111,111"
	extendedStuffed = "0,000010010100,1,1,101010101010101010,0,0,0,01001,000001001,111011101010011,1,0,1,1111111,111"
)

var fixedNow = time.Unix(1700000000, 42)

type recordingPublisher struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

type fakeRedis struct {
	hashes   map[string][]interface{}
	channels map[string][][]byte
	err      error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{hashes: map[string][]interface{}{}, channels: map[string][][]byte{}}
}

func (f *fakeRedis) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.hashes[key] = values
	cmd.SetVal(int64(len(values) / 2))
	return cmd
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	f.channels[channel] = append(f.channels[channel], message.([]byte))
	cmd.SetVal(1)
	return cmd
}

func (f *fakeRedis) field(key, name string) (interface{}, bool) {
	values := f.hashes[key]
	for i := 0; i+1 < len(values); i += 2 {
		if values[i] == name {
			return values[i+1], true
		}
	}
	return nil, false
}

type fakeBus struct {
	frames []can.Frame
}

func (b *fakeBus) Publish(frame can.Frame) error {
	b.frames = append(b.frames, frame)
	return nil
}

func quietFactory() logging.LoggerFactory {
	f := logging.NewDefaultLoggerFactory()
	f.DefaultLogLevel = logging.LogLevelDisabled
	return f
}

func newTestBridge(routes *config.Config, sinks ...Sink) *Bridge {
	return New(Config{
		Decoder:       canframe.Decoder{StuffWidth: bitstream.StuffWidth},
		Routes:        routes,
		Sinks:         sinks,
		LoggerFactory: quietFactory(),
		Now:           func() time.Time { return fixedNow },
	})
}

func TestHandleLineBase(t *testing.T) {
	pub := &recordingPublisher{}
	b := newTestBridge(nil, NewMQTTSink(pub))
	if err := b.HandleLine(context.Background(), baseStuffed); err != nil {
		t.Fatalf("HandleLine: %v", err)
	}
	if len(pub.topics) != 1 || pub.topics[0] != "canbits/frames/base/14" {
		t.Fatalf("topics = %v", pub.topics)
	}
	var got Record
	if err := json.Unmarshal(pub.payloads[0], &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	want := Record{
		Kind:      KindBase,
		ID:        "0x014",
		DBID:      0x14,
		DLC:       1,
		Data:      "01",
		DataBits:  "00000001",
		CRC:       0b111011101010011,
		Length:    55,
		StuffBits: 3,
		UnixTime:  fixedNow.UnixNano(),
	}
	if got != want {
		t.Errorf("record\n got  %+v\n want %+v", got, want)
	}
}

func TestHandleLineExtended(t *testing.T) {
	pub := &recordingPublisher{}
	b := newTestBridge(nil, NewMQTTSink(pub))
	if err := b.HandleLine(context.Background(), extendedStuffed); err != nil {
		t.Fatalf("HandleLine: %v", err)
	}
	if pub.topics[0] != "canbits/frames/extended/52AAAA" {
		t.Fatalf("topic = %s", pub.topics[0])
	}
	var got Record
	if err := json.Unmarshal(pub.payloads[0], &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got.Kind != KindExtended || got.ID != "0x0052AAAA" || got.DBID != 0x8052AAAA {
		t.Errorf("identity = %s %s %X", got.Kind, got.ID, got.DBID)
	}
	if got.J1939 == nil {
		t.Fatalf("missing j1939 section")
	}
	j := got.J1939
	if j.Priority != 0 || j.PGN != "05200" || j.Source != 0xAA {
		t.Errorf("j1939 = %+v", j)
	}
	if j.Destination == nil || *j.Destination != 0xAA {
		t.Errorf("destination = %v", j.Destination)
	}
}

func TestRouting(t *testing.T) {
	routes, err := config.Parse(strings.NewReader(`{"routes":[{"topic":"vehicle/x","canid":"0x014","format":"cbor"}]}`))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	pub := &recordingPublisher{}
	b := newTestBridge(routes, NewMQTTSink(pub))
	ctx := context.Background()
	if err := b.HandleLine(ctx, baseStuffed); err != nil {
		t.Fatalf("HandleLine(base): %v", err)
	}
	if err := b.HandleLine(ctx, extendedStuffed); err != nil {
		t.Fatalf("HandleLine(extended): %v", err)
	}
	if pub.topics[0] != "vehicle/x" || pub.topics[1] != "canbits/frames/extended/52AAAA" {
		t.Fatalf("topics = %v", pub.topics)
	}
	var rec Record
	if err := cbor.Unmarshal(pub.payloads[0], &rec); err != nil {
		t.Fatalf("cbor payload: %v", err)
	}
	if rec.Kind != KindBase || rec.ID != "0x014" || rec.CRC != 0b111011101010011 {
		t.Errorf("cbor record = %+v", rec)
	}
	if !json.Valid(pub.payloads[1]) {
		t.Errorf("unrouted frame not encoded as JSON: %X", pub.payloads[1])
	}
}

func TestRunCountsLines(t *testing.T) {
	pub := &recordingPublisher{}
	b := newTestBridge(nil, NewMQTTSink(pub))
	input := strings.Join([]string{
		"# capture from bench",
		baseStuffed,
		"",
		"0102",
		"0",
		extendedStuffed,
	}, "\n")
	if err := b.Run(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	s := b.Stats()
	if s.Lines != 6 || s.Skipped != 2 || s.Decoded != 2 || s.Failed != 2 || s.Delivered != 2 {
		t.Errorf("stats = %+v", s)
	}
	if s.StuffBits != 6 {
		t.Errorf("StuffBits = %d", s.StuffBits)
	}
	if s.Errors["SyntaxError"] != 1 || s.Errors["IdentifierMissing"] != 1 {
		t.Errorf("errors = %v", s.Errors)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	b := newTestBridge(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Run(ctx, strings.NewReader(baseStuffed+"\n")); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v", err)
	}
}

func TestRunUnblocksOnCancel(t *testing.T) {
	pub := &recordingPublisher{}
	b := newTestBridge(nil, NewMQTTSink(pub))
	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result := make(chan error, 1)
	go func() { result <- b.Run(ctx, pr) }()
	if _, err := io.WriteString(pw, baseStuffed+"\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for b.Stats().Delivered == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("first line not delivered")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	select {
	case err := <-result:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run still blocked on input after cancel")
	}
}

func TestRedisSink(t *testing.T) {
	rdb := newFakeRedis()
	b := newTestBridge(nil, NewRedisSink(rdb))
	if err := b.HandleLine(context.Background(), extendedStuffed); err != nil {
		t.Fatalf("HandleLine: %v", err)
	}
	key := RedisKeyPrefix + "0x0052AAAA"
	if v, ok := rdb.field(key, "kind"); !ok || v != KindExtended {
		t.Errorf("kind = %v, %t", v, ok)
	}
	if v, ok := rdb.field(key, "pgn"); !ok || v != "05200" {
		t.Errorf("pgn = %v, %t", v, ok)
	}
	if v, ok := rdb.field(key, "topic"); !ok || v != "canbits/frames/extended/52AAAA" {
		t.Errorf("topic = %v, %t", v, ok)
	}
	if len(rdb.channels[RedisChannel]) != 1 {
		t.Errorf("published %d messages", len(rdb.channels[RedisChannel]))
	}
}

func TestSinkErrorDoesNotStopOtherSinks(t *testing.T) {
	rdb := newFakeRedis()
	rdb.err = errors.New("connection refused")
	pub := &recordingPublisher{}
	b := newTestBridge(nil, NewRedisSink(rdb), NewMQTTSink(pub))

	if err := b.HandleLine(context.Background(), baseStuffed); err == nil {
		t.Fatalf("expected sink error")
	}
	if len(pub.topics) != 1 {
		t.Errorf("mqtt sink skipped after redis failure")
	}
	if s := b.Stats(); s.SinkErrors != 1 || s.Delivered != 1 || s.Failed != 0 {
		t.Errorf("stats = %+v", s)
	}
}

func TestCANSink(t *testing.T) {
	bus := &fakeBus{}
	b := newTestBridge(nil, NewCANSink(bus, quietFactory()))
	ctx := context.Background()
	if err := b.HandleLine(ctx, baseStuffed); err != nil {
		t.Fatalf("HandleLine(base): %v", err)
	}
	if err := b.HandleLine(ctx, extendedStuffed); err != nil {
		t.Fatalf("HandleLine(extended): %v", err)
	}
	if len(bus.frames) != 2 {
		t.Fatalf("got %d frames", len(bus.frames))
	}
	if f := bus.frames[0]; f.ID != 0x014 || f.Length != 1 || f.Data[0] != 1 {
		t.Errorf("base frame = %+v", f)
	}
	if f := bus.frames[1]; f.ID != 0x8052AAAA || f.Length != 1 {
		t.Errorf("extended frame = %+v", f)
	}
	if err := NewCANSink(bus, quietFactory()).Send(ctx, Message{}); err == nil {
		t.Errorf("Send without frame succeeded")
	}
}

func TestToCANFrameTruncates(t *testing.T) {
	f := &canframe.BaseDataFrame{
		Identifier:                0x123,
		RemoteTransmissionRequest: 1,
		DataLengthCode:            15,
		DataField:                 []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	}
	frame := ToCANFrame(f)
	if frame.ID != 0x123|0x40000000 {
		t.Errorf("ID = %X", frame.ID)
	}
	if frame.Length != 8 || frame.Data != [8]uint8{1, 2, 3, 4, 5, 6, 7, 8} {
		t.Errorf("frame = %+v", frame)
	}
}

func TestEncodeRecordUnknownFormat(t *testing.T) {
	if _, err := EncodeRecord(Record{}, "xml"); err == nil {
		t.Fatalf("EncodeRecord(xml) succeeded")
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	factory := logging.NewDefaultLoggerFactory()
	factory.DefaultLogLevel = logging.LogLevelInfo
	factory.Writer = &buf
	b := newTestBridge(nil, NewLogSink(factory))
	if err := b.HandleLine(context.Background(), extendedStuffed); err != nil {
		t.Fatalf("HandleLine: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "extended id=0x0052AAAA dlc=1 data=01") || !strings.Contains(out, "pgn=05200 sa=AA") {
		t.Errorf("log output %q", out)
	}
}

func TestReporter(t *testing.T) {
	b := newTestBridge(nil)
	if err := b.HandleLine(context.Background(), baseStuffed); err != nil {
		t.Fatalf("HandleLine: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	reports := make(chan Snapshot, 16)
	done := make(chan struct{})
	go func() {
		b.RunReporter(ctx, 5*time.Millisecond, func(s Snapshot) {
			select {
			case reports <- s:
			default:
			}
		})
		close(done)
	}()

	select {
	case s := <-reports:
		if s.Decoded != 1 {
			t.Errorf("report = %+v", s)
		}
	case <-time.After(time.Second):
		t.Fatalf("no report")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("reporter did not stop")
	}
}

func TestTopErrors(t *testing.T) {
	s := Snapshot{Errors: map[string]uint64{"b": 2, "a": 2, "c": 5}}
	got := s.TopErrors()
	if strings.Join(got, ",") != "c,a,b" {
		t.Errorf("TopErrors() = %v", got)
	}
}
