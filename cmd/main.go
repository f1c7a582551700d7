package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpcapi "operator-button-service/internal/api/grpc"
	"operator-button-service/internal/app"
	"operator-button-service/internal/config"
	"operator-button-service/internal/events"
	httpapi "operator-button-service/internal/http"
	"operator-button-service/internal/observability"
	"operator-button-service/internal/observability/metrics"
	"operator-button-service/internal/schema"
	"operator-button-service/internal/service/indicator"
	"operator-button-service/internal/service/ingress"
	"operator-button-service/internal/service/operator"
	"operator-button-service/internal/service/session"
)

func main() {
	cfg := config.Load()
	application := app.New(cfg)
	m := metrics.DefaultMetrics

	obsServer := observability.NewServer(cfg.Observability.MetricsAddr, prometheus.DefaultGatherer, application.Ready)
	obsServer.Start()

	// Session and release events go to separate topics
	publisher := events.New(&events.Config{
		Enabled:      cfg.Kafka.Enabled,
		Brokers:      cfg.Kafka.Brokers,
		TopicSession: cfg.Kafka.TopicSession,
		TopicRelease: cfg.Kafka.TopicRelease,
		Principal:    cfg.Kafka.Principal,
		Metrics:      m,
	})

	validator, err := schema.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build event schema")
	}

	var light indicator.Light
	if cfg.Hue.Enabled {
		light = indicator.NewHue(indicator.HueConfig{
			Bridge:     cfg.Hue.Bridge,
			User:       cfg.Hue.User,
			LightId:    cfg.Hue.LightId,
			Brightness: cfg.Hue.Brightness,
			Hue:        cfg.Hue.Hue,
			Saturation: cfg.Hue.Saturation,
		})
		log.Info().Str("bridge", cfg.Hue.Bridge).Int("lightId", cfg.Hue.LightId).Msg("Hue indicator enabled")
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	hub := httpapi.NewHub(m)
	go hub.Run(hubCtx)

	talkIndicator := indicator.New(light, m)
	registry := operator.NewRegistry(operator.Deps{
		Publisher:   publisher,
		Validator:   validator,
		Broadcaster: hub,
		Indicator:   talkIndicator,
		Sessions:    session.New(),
		Metrics:     m,
	}, cfg.Operators.InboxSize, cfg.Operators.Max)

	// gRPC
	lis, err := net.Listen("tcp", ":"+cfg.Service.GRPCPort)
	if err != nil {
		log.Fatal().Err(err).Str("port", cfg.Service.GRPCPort).Msg("Failed to listen")
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(observability.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(observability.StreamServerInterceptor(m)),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(grpcapi.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	grpcapi.Register(grpcServer, registry, cfg.Operators.DefaultId)

	// Enable gRPC reflection for debugging tools like grpcurl
	reflection.Register(grpcServer)

	go func() {
		log.Info().Str("port", cfg.Service.GRPCPort).Msg("gRPC server started")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("gRPC serve failed")
		}
	}()

	// HTTP
	httpServer := &http.Server{
		Addr:              ":" + cfg.Service.HTTPPort,
		Handler:           httpapi.NewRouter(application, registry, hub),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Service.HTTPPort).Msg("HTTP server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP serve failed")
		}
	}()

	// Device and Kafka ingress
	ingressCtx, stopIngress := context.WithCancel(context.Background())
	var ingressWg sync.WaitGroup

	if cfg.UDP.Enabled {
		udp, err := ingress.ListenUDP(cfg.UDP.Addr, registry, m)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.UDP.Addr).Msg("Failed to bind UDP listener")
		}
		ingressWg.Add(1)
		go func() {
			defer ingressWg.Done()
			if err := udp.Serve(ingressCtx); err != nil {
				log.Error().Err(err).Msg("UDP listener stopped")
			}
		}()
	}

	if cfg.Kafka.Enabled && cfg.Kafka.TopicIngress != "" {
		consumer := ingress.NewKafkaConsumer(ingress.KafkaConfig{
			Brokers:         cfg.Kafka.Brokers,
			Topic:           cfg.Kafka.TopicIngress,
			GroupID:         cfg.Kafka.Principal,
			DefaultOperator: cfg.Operators.DefaultId,
			Metrics:         m,
		}, registry)
		ingressWg.Add(1)
		go func() {
			defer ingressWg.Done()
			if err := consumer.Run(ingressCtx); err != nil {
				log.Error().Err(err).Msg("Kafka ingress stopped")
			}
		}()
	}

	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	application.Shutdown()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Observability.ShutdownTimeout)
	defer cancel()

	stopIngress()
	ingressWg.Wait()

	grpcServer.GracefulStop()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}

	registry.Close()
	talkIndicator.Off()
	stopHub()

	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close publisher")
	}
	if err := obsServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Observability shutdown failed")
	}
}
