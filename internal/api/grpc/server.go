package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"

	"mushroom-datastore/internal/domain"
	"mushroom-datastore/internal/logging"
	"mushroom-datastore/pkg/api"
)

const defaultShutdownTimeout = 10 * time.Second

// Options describes how the gRPC server is started.
type Options struct {
	// Address to listen on, e.g. ":50051". Ignored when Listener is set.
	Address string
	// Listener overrides Address, mainly for in-memory listeners in tests.
	Listener net.Listener
	// ShutdownTimeout bounds GracefulStop before the server is stopped forcibly.
	ShutdownTimeout time.Duration
	// Registerer receives the gRPC server metrics. prometheus.DefaultRegisterer when nil.
	Registerer prometheus.Registerer
}

// Server wraps the gRPC server of the datastore and manages its lifecycle.
type Server struct {
	logger          *logging.Logger
	grpcServer      *grpc.Server
	listener        net.Listener
	shutdownTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

// NewServer creates a gRPC server with logging and metrics interceptors. The listener is opened immediately
// so that address conflicts surface at startup.
func NewServer(logger *logging.Logger, service domain.DatastoreService, opts Options) (*Server, error) {
	if service == nil {
		return nil, errors.New("datastore service is required")
	}

	listener := opts.Listener
	if listener == nil {
		if opts.Address == "" {
			return nil, errors.New("address is required")
		}
		var err error
		listener, err = net.Listen("tcp", opts.Address)
		if err != nil {
			return nil, fmt.Errorf("listen %s: %w", opts.Address, err)
		}
	}

	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	metrics, err := registerMetrics(opts.Registerer)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	server := grpc.NewServer(
		grpc.ForceServerCodec(api.Codec{}),
		grpc.ChainUnaryInterceptor(
			loggingUnaryInterceptor(logger),
			metrics.UnaryServerInterceptor(),
		),
	)

	api.RegisterDatastoreServer(server, NewHandler(service))
	metrics.InitializeMetrics(server)

	return &Server{
		logger:          logger,
		grpcServer:      server,
		listener:        listener,
		shutdownTimeout: shutdownTimeout,
	}, nil
}

func registerMetrics(registerer prometheus.Registerer) (*grpc_prometheus.ServerMetrics, error) {
	metrics := grpc_prometheus.NewServerMetrics()
	metrics.EnableHandlingTimeHistogram()

	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if err := registerer.Register(metrics); err != nil {
		var alreadyRegistered prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			if existing, ok := alreadyRegistered.ExistingCollector.(*grpc_prometheus.ServerMetrics); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	return metrics, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve runs the gRPC server until ctx is done, then stops it gracefully.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is not initialized")
	}
	defer s.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.grpcServer.Serve(s.listener)
	}()

	s.logger.Info("gRPC server started", "address", s.listener.Addr().String())

	select {
	case <-ctx.Done():
		s.logger.Info("gRPC server shutdown initiated")
		shutdownErr := s.shutdown()
		serveErr := <-errCh
		if errors.Is(serveErr, grpc.ErrServerStopped) {
			serveErr = nil
		}
		return errors.Join(shutdownErr, serveErr)
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}

// Close releases the listener. Repeated calls return the first result.
func (s *Server) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.closeErr = fmt.Errorf("close listener: %w", err)
		}
	})
	return s.closeErr
}

func (s *Server) shutdown() error {
	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("gRPC server stopped gracefully")
		return nil
	case <-time.After(s.shutdownTimeout):
		s.logger.Warn("gRPC server graceful shutdown timed out, forcing stop", "timeout", s.shutdownTimeout.String())
		s.grpcServer.Stop()
		return fmt.Errorf("graceful shutdown exceeded %s", s.shutdownTimeout)
	}
}

func loggingUnaryInterceptor(logger *logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		log := logger.With("method", info.FullMethod)

		resp, err := handler(log.WithContext(ctx), req)

		fields := []any{"duration", time.Since(start).String()}
		if err != nil {
			log.Error("gRPC unary call completed", logging.AttachError(err, fields...)...)
		} else {
			log.Info("gRPC unary call completed", fields...)
		}

		return resp, err
	}
}
