package identify

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/herbwise/fangmatch/internal/domain/formula"
	"github.com/herbwise/fangmatch/internal/domain/herb"
)

// MockIdentifier serves canned answers keyed by the sorted herb-name set.
// Useful in tests and local development when no identification service is
// reachable.
type MockIdentifier struct {
	mu      sync.RWMutex
	answers map[string]*formula.StandardFormula
	calls   int
}

// NewMockIdentifier returns an empty mock; register answers with Respond.
func NewMockIdentifier() *MockIdentifier {
	return &MockIdentifier{answers: make(map[string]*formula.StandardFormula)}
}

// Respond registers the candidate returned for the given herb names.
func (m *MockIdentifier) Respond(names []string, f *formula.StandardFormula) {
	if f != nil {
		f.IsAIGenerated = true
	}
	m.mu.Lock()
	m.answers[mockKey(names)] = f
	m.mu.Unlock()
}

// Identify returns the registered candidate or (nil, nil).
func (m *MockIdentifier) Identify(_ context.Context, input []herb.Entry) (*formula.StandardFormula, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.answers[mockKey(herb.Names(input))]
	if !ok || f == nil {
		return nil, nil
	}
	return f.Clone(), nil
}

// Calls reports how many times Identify was invoked.
func (m *MockIdentifier) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

func mockKey(names []string) string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}
