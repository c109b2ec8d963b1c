package main

import (
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// plannerService is the service name reported by the gRPC health server in
// addition to the overall ("") status.
const plannerService = "hexplanner.Planner"

// newHealthServer returns a gRPC server exposing the standard health service.
func newHealthServer() (*grpc.Server, *health.Server) {
	hs := health.NewServer()
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	return srv, hs
}

// setServing reports SERVING once a grid is loaded, NOT_SERVING before.
func setServing(hs *health.Server, ready bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		status = healthpb.HealthCheckResponse_SERVING
	}
	hs.SetServingStatus("", status)
	hs.SetServingStatus(plannerService, status)
}

// serveHealth runs srv on addr until it stops.
func serveHealth(srv *grpc.Server, addr string) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("⚠️  gRPC health disabled: %v\n", err)
		return
	}
	log.Printf("gRPC health server starting on %s\n", addr)
	if err := srv.Serve(lis); err != nil {
		log.Printf("⚠️  gRPC health server stopped: %v\n", err)
	}
}
