package grpc

import (
	"context"

	"github.com/Shishir-Kc/ThE-lIsT/internal/service"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName is the name clients may pass to Check besides "".
const ServiceName = "todo.TaskService"

type healthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	health service.HealthService
}

func NewHealthServer(healthService service.HealthService) grpc_health_v1.HealthServer {
	return &healthServer{health: healthService}
}

func (s *healthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	if name := req.GetService(); name != "" && name != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", name)
	}

	health, err := s.health.Health(ctx)
	if err != nil {
		return nil, status.Error(codes.Internal, "health check failed")
	}

	servingStatus := grpc_health_v1.HealthCheckResponse_SERVING
	if health.Status != service.StatusHealthy {
		servingStatus = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}

	return &grpc_health_v1.HealthCheckResponse{Status: servingStatus}, nil
}
