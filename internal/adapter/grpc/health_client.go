package grpc

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var ErrBadCACert = errors.New("unable to parse CA cert")

type ClientConfig struct {
	Target     string
	Timeout    time.Duration
	UseTLS     bool
	CACertPath string
	ServerName string
}

// Dial builds a client connection with backoff and optional TLS.
func Dial(cfg ClientConfig) (*grpc.ClientConn, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	opts := []grpc.DialOption{
		grpc.WithConnectParams(grpc.ConnectParams{
			Backoff: backoff.Config{
				BaseDelay:  200 * time.Millisecond,
				Multiplier: 1.6,
				Jitter:     0.2,
				MaxDelay:   5 * time.Second,
			},
			MinConnectTimeout: cfg.Timeout,
		}),
	}

	// Credentials
	if cfg.UseTLS {
		var creds credentials.TransportCredentials
		if cfg.CACertPath != "" {
			pem, err := os.ReadFile(cfg.CACertPath)
			if err != nil {
				return nil, err
			}
			pool := x509.NewCertPool()
			if ok := pool.AppendCertsFromPEM(pem); !ok {
				return nil, ErrBadCACert
			}
			creds = credentials.NewTLS(&tls.Config{RootCAs: pool, ServerName: cfg.ServerName})
		} else {
			// System CA
			creds = credentials.NewClientTLSFromCert(nil, cfg.ServerName)
		}
		opts = append(opts, grpc.WithTransportCredentials(creds))
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	return grpc.NewClient(cfg.Target, opts...)
}

// Check asks a health server for the status of service ("" = overall).
func Check(ctx context.Context, cfg ClientConfig, service string) (string, error) {
	conn, err := Dial(cfg)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", cfg.Target, err)
	}
	defer conn.Close()

	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service}, grpc.WaitForReady(true))
	if err != nil {
		return "", fmt.Errorf("health check: %w", err)
	}
	return resp.GetStatus().String(), nil
}
