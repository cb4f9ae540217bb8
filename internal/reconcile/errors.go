package reconcile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ErrAmbiguousFinalsWinner more than one alliance reached the finals win threshold
var ErrAmbiguousFinalsWinner = errors.New("ambiguous finals winner")

// AmbiguousFinalsError carries the alliances that all reached the threshold
type AmbiguousFinalsError struct {
	RequiredWins int
	Wins         map[uuid.UUID]int
	Names        map[uuid.UUID]string
}

func (e *AmbiguousFinalsError) Error() string {
	parts := make([]string, 0, len(e.Wins))
	for id, wins := range e.Wins {
		if wins < e.RequiredWins {
			continue
		}
		name := e.Names[id]
		if name == "" {
			name = id.String()
		}
		parts = append(parts, fmt.Sprintf("%s=%d", name, wins))
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s: %d alliances at %d wins (%s)",
		ErrAmbiguousFinalsWinner, len(parts), e.RequiredWins, strings.Join(parts, ", "))
}

func (e *AmbiguousFinalsError) Unwrap() error { return ErrAmbiguousFinalsWinner }
