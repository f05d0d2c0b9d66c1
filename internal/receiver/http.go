package receiver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"sync"
	"time"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/nixlim/tripwatch/internal/config"
)

const (
	maxBodyBytes        = 4 << 20
	contentTypeProtobuf = "application/x-protobuf"
	contentTypeJSON     = "application/json"
)

// HTTPReceiver serves OTLP/HTTP log exports on /v1/logs.
type HTTPReceiver struct {
	cfg      config.ReceiverConfig
	ingester *Ingester
	server   *http.Server
	listener net.Listener
	stopOnce sync.Once
}

// NewHTTPReceiver creates a receiver that hands exports to ing.
func NewHTTPReceiver(cfg config.ReceiverConfig, ing *Ingester) *HTTPReceiver {
	return &HTTPReceiver{cfg: cfg, ingester: ing}
}

// Handler returns the receiver's routes.
func (r *HTTPReceiver) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/logs", r.handleLogs)
	return mux
}

// Start binds the configured port and serves in the background. The
// receiver stops when ctx is cancelled or Stop is called.
func (r *HTTPReceiver) Start(ctx context.Context) error {
	lis, err := listen(r.cfg.Bind, r.cfg.HTTPPort)
	if err != nil {
		return err
	}
	r.listener = lis
	r.server = &http.Server{
		Handler:      r.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := r.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP receiver stopped", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	slog.Info("HTTP receiver listening", "addr", lis.Addr().String())
	return nil
}

// Stop shuts the server down, waiting up to 5s for in-flight requests.
func (r *HTTPReceiver) Stop() {
	r.stopOnce.Do(func() {
		if r.server == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.server.Shutdown(ctx); err != nil {
			slog.Warn("HTTP receiver shutdown", "err", err)
		}
	})
}

// Addr returns the bound address, or nil before Start.
func (r *HTTPReceiver) Addr() net.Addr {
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

func (r *HTTPReceiver) handleLogs(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || (mediaType != contentTypeProtobuf && mediaType != contentTypeJSON) {
		http.Error(w, "unsupported content type", http.StatusUnsupportedMediaType)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var exportReq collogspb.ExportLogsServiceRequest
	if mediaType == contentTypeJSON {
		err = protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(body, &exportReq)
	} else {
		err = proto.Unmarshal(body, &exportReq)
	}
	if err != nil {
		http.Error(w, "invalid OTLP payload", http.StatusBadRequest)
		return
	}

	resp := exportResponse(r.ingester.Export(&exportReq))

	var out []byte
	if mediaType == contentTypeJSON {
		out, err = protojson.Marshal(resp)
	} else {
		out, err = proto.Marshal(resp)
	}
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", mediaType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
