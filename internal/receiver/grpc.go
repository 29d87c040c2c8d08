package receiver

import (
	"context"
	"fmt"
	"net"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	"google.golang.org/grpc"
)

// GRPCReceiver serves the OTLP/gRPC LogsService.
type GRPCReceiver struct {
	collogspb.UnimplementedLogsServiceServer

	cfg       Config
	extractor *extractor

	listener net.Listener
	server   *grpc.Server
}

// NewGRPCReceiver creates an unstarted gRPC receiver.
func NewGRPCReceiver(cfg Config, ex *extractor) *GRPCReceiver {
	return &GRPCReceiver{cfg: cfg, extractor: ex}
}

// Start binds the listener and serves in a background goroutine.
func (r *GRPCReceiver) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", r.cfg.Bind, r.cfg.GRPCPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	r.listener = lis

	r.server = grpc.NewServer()
	collogspb.RegisterLogsServiceServer(r.server, r)

	go func() {
		_ = r.server.Serve(lis)
	}()

	return nil
}

// Export implements the LogsService endpoint. Ingest is best-effort: the
// response is always a full success so exporters never retry on content we
// chose to skip.
func (r *GRPCReceiver) Export(ctx context.Context, req *collogspb.ExportLogsServiceRequest) (*collogspb.ExportLogsServiceResponse, error) {
	r.extractor.consumeLogs(req.GetResourceLogs())
	return &collogspb.ExportLogsServiceResponse{}, nil
}

// Stop shuts the server down gracefully.
func (r *GRPCReceiver) Stop() {
	if r.server != nil {
		r.server.GracefulStop()
	}
}

// Addr returns the bound listener address, for tests using ephemeral ports.
func (r *GRPCReceiver) Addr() string {
	if r.listener == nil {
		return ""
	}
	return r.listener.Addr().String()
}
