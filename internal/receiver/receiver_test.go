package receiver

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/proto"
)

// testSink records the lifecycle calls delivered by the extractor.
type testSink struct {
	mu        sync.Mutex
	started   []string
	completed []completedCall
}

type completedCall struct {
	id        string
	fallback  string
	chars     int
	truncated bool
	isError   bool
}

func (s *testSink) CommandStarted(correlationID, command string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, correlationID+"|"+command)
}

func (s *testSink) CommandCompleted(correlationID, fallbackCommand string, outputChars int, truncated, isError bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = append(s.completed, completedCall{
		id:        correlationID,
		fallback:  fallbackCommand,
		chars:     outputChars,
		truncated: truncated,
		isError:   isError,
	})
}

func strAttr(key, value string) *commonpb.KeyValue {
	return &commonpb.KeyValue{
		Key:   key,
		Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: value}},
	}
}

// makeLogsRequest wraps log records in the usual OTLP resource/scope nesting.
func makeLogsRequest(records ...*logspb.LogRecord) *collogspb.ExportLogsServiceRequest {
	return &collogspb.ExportLogsServiceRequest{
		ResourceLogs: []*logspb.ResourceLogs{
			{
				Resource: &resourcepb.Resource{
					Attributes: []*commonpb.KeyValue{
						strAttr("service.name", "claude-code"),
						strAttr("session.id", "sess-001"),
					},
				},
				ScopeLogs: []*logspb.ScopeLogs{{LogRecords: records}},
			},
		},
	}
}

func decisionRecord(id, command string) *logspb.LogRecord {
	return &logspb.LogRecord{
		TimeUnixNano: uint64(time.Now().UnixNano()),
		Attributes: []*commonpb.KeyValue{
			strAttr("event.name", "claude_code.tool_decision"),
			strAttr("tool_name", "Bash"),
			strAttr("decision", "accept"),
			strAttr("tool_use_id", id),
			strAttr("tool_parameters", `{"command":"`+command+`"}`),
		},
	}
}

func resultRecord(id string, chars int, truncated, success bool) *logspb.LogRecord {
	boolStr := func(b bool) string {
		if b {
			return "true"
		}
		return "false"
	}
	return &logspb.LogRecord{
		TimeUnixNano: uint64(time.Now().UnixNano()),
		Attributes: []*commonpb.KeyValue{
			strAttr("event.name", "claude_code.tool_result"),
			strAttr("tool_name", "Bash"),
			strAttr("tool_use_id", id),
			strAttr("output_chars", strconv.Itoa(chars)),
			strAttr("truncated", boolStr(truncated)),
			strAttr("success", boolStr(success)),
		},
	}
}

func TestExtractor_DecisionAndResult(t *testing.T) {
	sink := &testSink{}
	ex := &extractor{sink: sink, logger: NopLogger{}}

	ex.consumeLogs(makeLogsRequest(
		decisionRecord("call-1", "git status"),
		resultRecord("call-1", 40, false, true),
	).GetResourceLogs())

	if len(sink.started) != 1 || sink.started[0] != "call-1|git status" {
		t.Errorf("started = %v", sink.started)
	}
	if len(sink.completed) != 1 {
		t.Fatalf("completed = %v", sink.completed)
	}
	c := sink.completed[0]
	if c.id != "call-1" || c.chars != 40 || c.truncated || c.isError {
		t.Errorf("completed call = %+v", c)
	}
}

func TestExtractor_IgnoresNonBashTools(t *testing.T) {
	sink := &testSink{}
	ex := &extractor{sink: sink, logger: NopLogger{}}

	rec := decisionRecord("call-1", "ignored")
	rec.Attributes[1] = strAttr("tool_name", "Read")
	ex.consumeLogs(makeLogsRequest(rec).GetResourceLogs())

	if len(sink.started) != 0 {
		t.Errorf("non-Bash tool produced events: %v", sink.started)
	}
}

func TestExtractor_IgnoresRejectedDecisions(t *testing.T) {
	sink := &testSink{}
	ex := &extractor{sink: sink, logger: NopLogger{}}

	rec := decisionRecord("call-1", "rm -rf /")
	rec.Attributes[2] = strAttr("decision", "reject")
	ex.consumeLogs(makeLogsRequest(rec).GetResourceLogs())

	if len(sink.started) != 0 {
		t.Errorf("rejected decision produced events: %v", sink.started)
	}
}

func TestExtractor_FailureAndTruncationFlags(t *testing.T) {
	sink := &testSink{}
	ex := &extractor{sink: sink, logger: NopLogger{}}

	ex.consumeLogs(makeLogsRequest(resultRecord("call-2", 2000, true, false)).GetResourceLogs())

	if len(sink.completed) != 1 {
		t.Fatalf("completed = %v", sink.completed)
	}
	c := sink.completed[0]
	if !c.truncated || !c.isError {
		t.Errorf("flags = %+v", c)
	}
}

func TestExtractor_BodyLengthFallback(t *testing.T) {
	sink := &testSink{}
	ex := &extractor{sink: sink, logger: NopLogger{}}

	rec := &logspb.LogRecord{
		Body: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: "twelve chars"}},
		Attributes: []*commonpb.KeyValue{
			strAttr("event.name", "claude_code.tool_result"),
			strAttr("tool_name", "Bash"),
			strAttr("tool_use_id", "call-3"),
		},
	}
	ex.consumeLogs(makeLogsRequest(rec).GetResourceLogs())

	if len(sink.completed) != 1 || sink.completed[0].chars != 12 {
		t.Errorf("completed = %+v", sink.completed)
	}
}

func TestExtractor_ResultCarriesFallbackCommand(t *testing.T) {
	sink := &testSink{}
	ex := &extractor{sink: sink, logger: NopLogger{}}

	rec := resultRecord("orphan", 8, false, true)
	rec.Attributes = append(rec.Attributes, strAttr("tool_parameters", `{"command":"echo hi"}`))
	ex.consumeLogs(makeLogsRequest(rec).GetResourceLogs())

	if len(sink.completed) != 1 || sink.completed[0].fallback != "echo hi" {
		t.Errorf("completed = %+v", sink.completed)
	}
}

func startTestReceiver(t *testing.T, sink Sink) *Receiver {
	t.Helper()

	r := New(Config{GRPCPort: 0, HTTPPort: 0, Bind: "127.0.0.1"}, sink)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(r.Stop)
	return r
}

func TestGRPCReceiver_EndToEnd(t *testing.T) {
	sink := &testSink{}
	r := startTestReceiver(t, sink)

	conn, err := grpc.NewClient(r.grpc.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dialing: %v", err)
	}
	defer func() { _ = conn.Close() }()

	client := collogspb.NewLogsServiceClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = client.Export(ctx, makeLogsRequest(
		decisionRecord("call-1", "pytest -v"),
		resultRecord("call-1", 2000, false, true),
	))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.started) != 1 || len(sink.completed) != 1 {
		t.Errorf("started=%v completed=%v", sink.started, sink.completed)
	}
}

func TestHTTPReceiver_EndToEnd(t *testing.T) {
	sink := &testSink{}
	r := startTestReceiver(t, sink)

	body, err := proto.Marshal(makeLogsRequest(decisionRecord("call-1", "make")))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	resp, err := http.Post("http://"+r.http.Addr()+"/v1/logs", "application/x-protobuf", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.started) != 1 {
		t.Errorf("started = %v", sink.started)
	}
}

func TestHTTPReceiver_RejectsBadPayload(t *testing.T) {
	sink := &testSink{}
	r := startTestReceiver(t, sink)

	resp, err := http.Post("http://"+r.http.Addr()+"/v1/logs", "application/x-protobuf", strings.NewReader("{json, not proto}"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestFileLogger_WritesJSONL(t *testing.T) {
	var buf bytes.Buffer
	l := NewFileLogger(&buf)

	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l.LogCommandEvent("started", "call-1", "git status", ts)

	line := buf.String()
	if !strings.Contains(line, `"kind":"started"`) || !strings.Contains(line, `"command":"git status"`) {
		t.Errorf("log line = %q", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Error("log line not newline-terminated")
	}
}
