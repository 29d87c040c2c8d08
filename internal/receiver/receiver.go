// Package receiver ingests OTLP log events from Claude Code instances and
// feeds Bash tool lifecycle events into the command tracker.
//
// Two transports are served, matching what Claude Code's exporter can be
// configured to use: OTLP/gRPC (LogsService) and OTLP/HTTP (protobuf on
// /v1/logs). Everything except tool lifecycle events is ignored.
package receiver

import (
	"context"
	"fmt"
)

// Sink receives the command lifecycle events extracted from OTLP payloads.
// It is implemented by the tracker.
type Sink interface {
	// CommandStarted registers a pending command under a correlation ID.
	CommandStarted(correlationID, command string)

	// CommandCompleted finishes a pending command. fallbackCommand is the
	// command text carried by the completion event itself, used when no
	// pending call matches.
	CommandCompleted(correlationID, fallbackCommand string, outputChars int, truncated, isError bool)
}

// Receiver runs the gRPC and HTTP listeners.
type Receiver struct {
	grpc *GRPCReceiver
	http *HTTPReceiver
}

// ReceiverOption configures optional receiver behaviour.
type ReceiverOption func(*options)

type options struct {
	logger Logger
}

// WithLogger enables debug logging of every extracted event.
func WithLogger(l Logger) ReceiverOption {
	return func(o *options) {
		o.logger = l
	}
}

// Config holds the listen addresses.
type Config struct {
	GRPCPort int
	HTTPPort int
	Bind     string
}

// New creates a Receiver delivering extracted events to sink.
func New(cfg Config, sink Sink, opts ...ReceiverOption) *Receiver {
	o := options{logger: NopLogger{}}
	for _, opt := range opts {
		opt(&o)
	}

	ex := &extractor{sink: sink, logger: o.logger}
	return &Receiver{
		grpc: NewGRPCReceiver(cfg, ex),
		http: NewHTTPReceiver(cfg, ex),
	}
}

// Start binds both listeners. On failure, anything already started is
// stopped before returning.
func (r *Receiver) Start(ctx context.Context) error {
	if err := r.grpc.Start(ctx); err != nil {
		return fmt.Errorf("starting gRPC receiver: %w", err)
	}
	if err := r.http.Start(ctx); err != nil {
		r.grpc.Stop()
		return fmt.Errorf("starting HTTP receiver: %w", err)
	}
	return nil
}

// Stop shuts both listeners down.
func (r *Receiver) Stop() {
	r.grpc.Stop()
	r.http.Stop()
}
