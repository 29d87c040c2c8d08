package receiver

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
)

// Event names emitted by Claude Code's telemetry for tool lifecycle.
const (
	eventToolDecision = "claude_code.tool_decision"
	eventToolResult   = "claude_code.tool_result"
)

// bashToolName is the only tool whose invocations carry shell commands.
const bashToolName = "Bash"

// extractor walks OTLP log payloads and forwards Bash tool lifecycle events
// to the sink.
type extractor struct {
	sink   Sink
	logger Logger
}

// consumeLogs processes one export payload. Non-tool events, non-Bash tools,
// and malformed records are skipped; ingest never fails on content.
func (ex *extractor) consumeLogs(resourceLogs []*logspb.ResourceLogs) {
	for _, rl := range resourceLogs {
		for _, sl := range rl.GetScopeLogs() {
			for _, lr := range sl.GetLogRecords() {
				ex.consumeRecord(lr)
			}
		}
	}
}

func (ex *extractor) consumeRecord(lr *logspb.LogRecord) {
	attrs := attrMap(lr.GetAttributes())

	name := lr.GetEventName()
	if name == "" {
		name = attrs["event.name"]
	}

	switch name {
	case eventToolDecision:
		ex.handleDecision(lr, attrs)
	case eventToolResult:
		ex.handleResult(lr, attrs)
	}
}

// handleDecision treats an accepted Bash tool decision as "command started".
func (ex *extractor) handleDecision(lr *logspb.LogRecord, attrs map[string]string) {
	if attrs["tool_name"] != bashToolName {
		return
	}
	if decision := attrs["decision"]; decision != "" && !strings.EqualFold(decision, "accept") {
		return
	}

	id := attrs["tool_use_id"]
	command := commandFromParams(attrs["tool_parameters"])

	ex.logger.LogCommandEvent("started", id, command, recordTime(lr))
	ex.sink.CommandStarted(id, command)
}

// handleResult treats a Bash tool result as "command completed".
func (ex *extractor) handleResult(lr *logspb.LogRecord, attrs map[string]string) {
	if attrs["tool_name"] != bashToolName {
		return
	}

	id := attrs["tool_use_id"]
	fallback := commandFromParams(attrs["tool_parameters"])

	chars := outputChars(lr, attrs)
	truncated := strings.EqualFold(attrs["truncated"], "true")
	isError := attrs["success"] != "" && !strings.EqualFold(attrs["success"], "true")

	ex.logger.LogCommandEvent("completed", id, fallback, recordTime(lr))
	ex.sink.CommandCompleted(id, fallback, chars, truncated, isError)
}

// outputChars prefers the explicit output_chars attribute and falls back to
// the length of the record body, which carries the output text segments.
func outputChars(lr *logspb.LogRecord, attrs map[string]string) int {
	if v, ok := attrs["output_chars"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return len(lr.GetBody().GetStringValue())
}

// commandFromParams pulls the "command" field out of the tool_parameters
// JSON blob. Returns "" on any parse failure.
func commandFromParams(params string) string {
	if params == "" {
		return ""
	}
	var parsed struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal([]byte(params), &parsed); err != nil {
		return ""
	}
	return parsed.Command
}

func recordTime(lr *logspb.LogRecord) time.Time {
	if ns := lr.GetTimeUnixNano(); ns != 0 {
		return time.Unix(0, int64(ns))
	}
	return time.Now()
}

// attrMap flattens OTLP key/value attributes into a string map. Non-string
// values are rendered with their string representation.
func attrMap(kvs []*commonpb.KeyValue) map[string]string {
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		m[kv.GetKey()] = anyValueString(kv.GetValue())
	}
	return m
}

func anyValueString(v *commonpb.AnyValue) string {
	switch val := v.GetValue().(type) {
	case *commonpb.AnyValue_StringValue:
		return val.StringValue
	case *commonpb.AnyValue_IntValue:
		return strconv.FormatInt(val.IntValue, 10)
	case *commonpb.AnyValue_DoubleValue:
		return strconv.FormatFloat(val.DoubleValue, 'f', -1, 64)
	case *commonpb.AnyValue_BoolValue:
		return strconv.FormatBool(val.BoolValue)
	default:
		return ""
	}
}
