package adapter

import (
	"fmt"
	"sort"

	"EventSync/internal/config"
	"EventSync/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// ClientRegistry configured data client instances keyed by sync source id
type ClientRegistry struct {
	logger  *logrus.Logger
	clients map[string]interfaces.DataClient
}

// NewClientRegistry instantiates a client for every configured source that has a registered factory
func NewClientRegistry(sources map[string]config.SourceConfig, logger *logrus.Logger) *ClientRegistry {
	r := &ClientRegistry{
		logger:  logger,
		clients: make(map[string]interfaces.DataClient),
	}
	logger.WithField("factories", ListFactories()).Info("registered data client factories")

	for name, srcCfg := range sources {
		factory, ok := GetFactory(name)
		if !ok {
			logger.WithField("source", name).Error("no data client factory registered for configured source")
			continue
		}
		cfg := srcCfg
		client := factory(&cfg, logger)
		if client == nil {
			logger.WithField("source", name).Error("data client factory returned nil")
			continue
		}
		if client.Source() != name {
			logger.WithFields(logrus.Fields{
				"config_source": name,
				"client_source": client.Source(),
			}).Error("data client source does not match configuration key")
			continue
		}
		r.clients[name] = client
	}
	logger.WithField("sources", r.Sources()).Info("data clients initialized")
	return r
}

// NewStaticClientRegistry registry over prebuilt clients
func NewStaticClientRegistry(logger *logrus.Logger, clients ...interfaces.DataClient) *ClientRegistry {
	r := &ClientRegistry{logger: logger, clients: make(map[string]interfaces.DataClient)}
	for _, c := range clients {
		r.clients[c.Source()] = c
	}
	return r
}

// Get client for a sync source
func (r *ClientRegistry) Get(source string) (interfaces.DataClient, error) {
	client, ok := r.clients[source]
	if !ok {
		return nil, fmt.Errorf("no data client for source %q (configured: %v)", source, r.Sources())
	}
	return client, nil
}

// Sources configured source ids, sorted
func (r *ClientRegistry) Sources() []string {
	out := make([]string, 0, len(r.clients))
	for s := range r.clients {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
