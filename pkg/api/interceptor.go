package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cuemby/fenwick/pkg/log"
	"github.com/cuemby/fenwick/pkg/metrics"
)

// RecoveringInterceptor wraps every unary RPC so a panic never reaches the
// wire as a dropped connection: it is recovered, logged, and surfaced as an
// Internal error, matching the error handling design's "uncaught failures
// become a generic Internal error" rule. It also records per-method request
// counts and latency, generalizing the teacher's single-purpose
// ReadOnlyInterceptor into the recovering/logging interceptor this service
// needs instead.
func RecoveringInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		method := methodName(info.FullMethod)
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				log.WithComponent("api").Error().Msg(fmt.Sprintf("panic in %s: %v", method, r))
				metrics.RPCRequestsTotal.WithLabelValues(method, "panic").Inc()
				err = status.Error(codes.Internal, "internal error")
			}
			metrics.RPCRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
		}()

		resp, err = handler(ctx, req)
		outcome := "ok"
		if err != nil {
			outcome = "error"
			log.WithComponent("api").Warn().Err(err).Msg(fmt.Sprintf("%s failed", method))
		}
		metrics.RPCRequestsTotal.WithLabelValues(method, outcome).Inc()
		return resp, err
	}
}

// StreamRecoveringInterceptor is the server-streaming analogue of
// RecoveringInterceptor, used for StreamResults/StreamTasks.
func StreamRecoveringInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) (err error) {
		method := methodName(info.FullMethod)
		defer func() {
			if r := recover(); r != nil {
				log.WithComponent("api").Error().Msg(fmt.Sprintf("panic in stream %s: %v", method, r))
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(srv, ss)
	}
}

func methodName(fullMethod string) string {
	parts := strings.Split(fullMethod, "/")
	if len(parts) == 0 {
		return fullMethod
	}
	return parts[len(parts)-1]
}
