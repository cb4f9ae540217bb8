package service

import (
	"context"

	"EventSync/internal/interfaces"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// SourceHealth reachability of one configured source
type SourceHealth struct {
	Source  string `json:"source"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type HealthService struct {
	clients interfaces.ClientProvider
	logger  *logrus.Logger
}

func NewHealthService(clients interfaces.ClientProvider, logger *logrus.Logger) *HealthService {
	return &HealthService{clients: clients, logger: logger}
}

// CheckSources probes every configured source concurrently; results follow Sources() order
func (s *HealthService) CheckSources(ctx context.Context) []SourceHealth {
	sources := s.clients.Sources()
	out := make([]SourceHealth, len(sources))
	var g errgroup.Group
	for i, name := range sources {
		g.Go(func() error {
			h := SourceHealth{Source: name, Healthy: true}
			client, err := s.clients.Get(name)
			if err == nil {
				err = client.CheckHealth(ctx)
			}
			if err != nil {
				h.Healthy = false
				h.Error = err.Error()
				s.logger.WithError(err).WithField("source", name).Warn("source health check failed")
			}
			out[i] = h
			return nil
		})
	}
	_ = g.Wait()
	return out
}
