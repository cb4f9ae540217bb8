// internal/adapter/registry.go
package adapter

import (
	"fmt"
	"sort"
	"sync"

	"EventSync/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// ========== global factory registry, filled by adapter init() ==========
var (
	factoryMu       sync.RWMutex
	factoryRegistry = make(map[string]interfaces.Factory)
)

// Register called from a source adapter's init to publish its factory
func Register(source string, factory interfaces.Factory) {
	if factory == nil {
		panic(fmt.Sprintf("data client factory for %s must not be nil", source))
	}
	factoryMu.Lock()
	defer factoryMu.Unlock()
	if _, exists := factoryRegistry[source]; exists {
		logrus.Warnf("data client factory for %s already registered, replacing", source)
	}
	factoryRegistry[source] = factory
}

// GetFactory factory for a source id
func GetFactory(source string) (interfaces.Factory, bool) {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	factory, ok := factoryRegistry[source]
	return factory, ok
}

// ListFactories registered source ids, sorted
func ListFactories() []string {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	sources := make([]string, 0, len(factoryRegistry))
	for s := range factoryRegistry {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	return sources
}
