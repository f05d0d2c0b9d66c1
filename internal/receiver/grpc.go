package receiver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"syscall"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	"google.golang.org/grpc"

	"github.com/nixlim/tripwatch/internal/config"
)

// GRPCReceiver serves the OTLP LogsService over gRPC.
type GRPCReceiver struct {
	collogspb.UnimplementedLogsServiceServer

	cfg      config.ReceiverConfig
	ingester *Ingester
	server   *grpc.Server
	listener net.Listener
	stopOnce sync.Once
}

// NewGRPCReceiver creates a receiver that hands exports to ing.
func NewGRPCReceiver(cfg config.ReceiverConfig, ing *Ingester) *GRPCReceiver {
	return &GRPCReceiver{cfg: cfg, ingester: ing}
}

// Start binds the configured port and serves in the background. The
// receiver stops when ctx is cancelled or Stop is called.
func (r *GRPCReceiver) Start(ctx context.Context) error {
	lis, err := listen(r.cfg.Bind, r.cfg.GRPCPort)
	if err != nil {
		return err
	}
	r.listener = lis
	r.server = grpc.NewServer()
	collogspb.RegisterLogsServiceServer(r.server, r)

	go func() {
		if err := r.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			slog.Error("gRPC receiver stopped", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	slog.Info("gRPC receiver listening", "addr", lis.Addr().String())
	return nil
}

// Stop gracefully stops the server. Safe to call more than once.
func (r *GRPCReceiver) Stop() {
	r.stopOnce.Do(func() {
		if r.server != nil {
			r.server.GracefulStop()
		}
	})
}

// Addr returns the bound address, or nil before Start.
func (r *GRPCReceiver) Addr() net.Addr {
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Export implements collogspb.LogsServiceServer.
func (r *GRPCReceiver) Export(_ context.Context, req *collogspb.ExportLogsServiceRequest) (*collogspb.ExportLogsServiceResponse, error) {
	return exportResponse(r.ingester.Export(req)), nil
}

func exportResponse(rejected int64, msg string) *collogspb.ExportLogsServiceResponse {
	resp := &collogspb.ExportLogsServiceResponse{}
	if rejected > 0 {
		resp.PartialSuccess = &collogspb.ExportLogsPartialSuccess{
			RejectedLogRecords: rejected,
			ErrorMessage:       msg,
		}
	}
	return resp
}

// listen binds bind:port, reporting an occupied port with a clear message.
func listen(bind string, port int) (net.Listener, error) {
	addr := net.JoinHostPort(bind, fmt.Sprintf("%d", port))
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("port %d already in use", port)
		}
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	return lis, nil
}
