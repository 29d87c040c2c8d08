package receiver

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	"google.golang.org/protobuf/proto"
)

// maxBodySize caps OTLP/HTTP request bodies. Command events are small; the
// limit only guards against runaway payloads.
const maxBodySize = 8 << 20

// HTTPReceiver serves OTLP/HTTP protobuf on /v1/logs.
type HTTPReceiver struct {
	cfg       Config
	extractor *extractor

	listener net.Listener
	server   *http.Server
}

// NewHTTPReceiver creates an unstarted HTTP receiver.
func NewHTTPReceiver(cfg Config, ex *extractor) *HTTPReceiver {
	return &HTTPReceiver{cfg: cfg, extractor: ex}
}

// Start binds the listener and serves in a background goroutine.
func (r *HTTPReceiver) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", r.cfg.Bind, r.cfg.HTTPPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	r.listener = lis

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/logs", r.handleLogs)

	r.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		_ = r.server.Serve(lis)
	}()

	return nil
}

func (r *HTTPReceiver) handleLogs(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodySize))
	if err != nil {
		http.Error(w, "reading body", http.StatusBadRequest)
		return
	}

	var exportReq collogspb.ExportLogsServiceRequest
	if err := proto.Unmarshal(body, &exportReq); err != nil {
		http.Error(w, "decoding protobuf", http.StatusBadRequest)
		return
	}

	r.extractor.consumeLogs(exportReq.GetResourceLogs())

	resp, err := proto.Marshal(&collogspb.ExportLogsServiceResponse{})
	if err != nil {
		http.Error(w, "encoding response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/x-protobuf")
	_, _ = w.Write(resp)
}

// Stop shuts the server down.
func (r *HTTPReceiver) Stop() {
	if r.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = r.server.Shutdown(ctx)
	}
}

// Addr returns the bound listener address, for tests using ephemeral ports.
func (r *HTTPReceiver) Addr() string {
	if r.listener == nil {
		return ""
	}
	return r.listener.Addr().String()
}
