package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herbwise/fangmatch/internal/domain/formula"
	"github.com/herbwise/fangmatch/internal/infrastructure/messaging/kafka"
	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/logging"
	"github.com/herbwise/fangmatch/pkg/errors"
)

type memoryRepo struct {
	mu       sync.Mutex
	formulas map[string]*formula.StandardFormula
	order    []string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{formulas: make(map[string]*formula.StandardFormula)}
}

func (m *memoryRepo) Create(_ context.Context, f *formula.StandardFormula) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.formulas[f.ID] = f.Clone()
	m.order = append(m.order, f.ID)
	return nil
}

func (m *memoryRepo) Update(_ context.Context, f *formula.StandardFormula) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.formulas[f.ID]; !ok {
		return errors.Newf(errors.ErrCodeFormulaNotFound, "formula %s not found", f.ID)
	}
	m.formulas[f.ID] = f.Clone()
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.formulas, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*formula.StandardFormula, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.formulas[id]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeFormulaNotFound, "formula %s not found", id)
	}
	return f.Clone(), nil
}

func (m *memoryRepo) List(_ context.Context) ([]*formula.StandardFormula, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*formula.StandardFormula, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.formulas[id].Clone())
	}
	return out, nil
}

func (m *memoryRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.formulas)), nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []kafka.FormulaChangedEvent
}

func (p *capturePublisher) PublishFormulaChanged(_ context.Context, event kafka.FormulaChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) captured() []kafka.FormulaChangedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]kafka.FormulaChangedEvent(nil), p.events...)
}

func newFormula(id, name string, composition ...string) *formula.StandardFormula {
	return &formula.StandardFormula{ID: id, Name: name, Composition: composition}
}

func TestServiceSeedOnly(t *testing.T) {
	t.Parallel()

	svc := NewService(logging.NewNopLogger())
	snap := svc.Snapshot()
	require.Len(t, snap, len(SeedFormulas()))

	got, err := svc.GetByName(context.Background(), "麻黄汤")
	require.NoError(t, err)
	assert.Equal(t, []string{"麻黄", "桂枝", "杏仁", "甘草"}, got.Composition)

	_, err = svc.GetByName(context.Background(), "不存在方")
	assert.True(t, errors.IsCode(err, errors.ErrCodeFormulaNotFound))
}

func TestSeedFormulasAreValid(t *testing.T) {
	t.Parallel()

	names := make(map[string]struct{})
	for _, f := range SeedFormulas() {
		require.NoError(t, f.Validate(), f.Name)
		_, dup := names[f.Name]
		require.False(t, dup, f.Name)
		names[f.Name] = struct{}{}
		// Seeds carry a full reference dosage for ratio checks.
		assert.Len(t, f.StandardDosage, len(f.Composition), f.Name)
	}
}

func TestServiceCreate(t *testing.T) {
	t.Parallel()

	pub := &capturePublisher{}
	svc := NewService(logging.NewNopLogger(), WithPublisher(pub))

	created, err := svc.Create(context.Background(), newFormula("", "二陈汤", "半夏", "橘红", "茯苓", "甘草"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Len(t, svc.Snapshot(), len(SeedFormulas())+1)

	events := pub.captured()
	require.Len(t, events, 1)
	assert.Equal(t, kafka.ChangeCreated, events[0].Type)
	assert.Equal(t, "二陈汤", events[0].Name)

	// Duplicate names are rejected.
	_, err = svc.Create(context.Background(), newFormula("", "二陈汤", "半夏"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeFormulaExists))

	// Invalid formulas never reach the snapshot.
	_, err = svc.Create(context.Background(), newFormula("", "空方"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeFormulaEmptyComposition))
	assert.Len(t, svc.Snapshot(), len(SeedFormulas())+1)
}

func TestServiceUpdate(t *testing.T) {
	t.Parallel()

	svc := NewService(logging.NewNopLogger())

	updated, err := svc.Update(context.Background(),
		newFormula("seed-sijunzi-tang", "四君子汤", "人参", "白术", "茯苓", "甘草", "生姜", "大枣"))
	require.NoError(t, err)
	assert.Len(t, updated.Composition, 6)

	got, err := svc.GetByName(context.Background(), "四君子汤")
	require.NoError(t, err)
	assert.Len(t, got.Composition, 6)

	_, err = svc.Update(context.Background(), newFormula("no-such-id", "新方", "人参"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeFormulaNotFound))

	// Renaming onto another formula's name is a conflict.
	_, err = svc.Update(context.Background(), newFormula("seed-sijunzi-tang", "麻黄汤", "人参"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeFormulaExists))
}

func TestServiceDelete(t *testing.T) {
	t.Parallel()

	pub := &capturePublisher{}
	svc := NewService(logging.NewNopLogger(), WithPublisher(pub))

	require.NoError(t, svc.Delete(context.Background(), "seed-yinqiao-san"))
	assert.Len(t, svc.Snapshot(), len(SeedFormulas())-1)

	err := svc.Delete(context.Background(), "seed-yinqiao-san")
	assert.True(t, errors.IsCode(err, errors.ErrCodeFormulaNotFound))

	events := pub.captured()
	require.Len(t, events, 1)
	assert.Equal(t, kafka.ChangeDeleted, events[0].Type)
	assert.Equal(t, "银翘散", events[0].Name)
}

func TestServiceBootstrapSeedsEmptyRepository(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo()
	svc := NewService(logging.NewNopLogger(), WithRepository(repo))
	require.NoError(t, svc.Bootstrap(context.Background()))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(len(SeedFormulas())), n)
	assert.Len(t, svc.Snapshot(), len(SeedFormulas()))

	// A second bootstrap must not double-seed.
	require.NoError(t, svc.Bootstrap(context.Background()))
	n, err = repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(len(SeedFormulas())), n)
}

func TestServiceReloadFromRepository(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo()
	require.NoError(t, repo.Create(context.Background(), newFormula("f1", "独参汤", "人参")))

	pub := &capturePublisher{}
	svc := NewService(logging.NewNopLogger(), WithRepository(repo), WithPublisher(pub))
	require.NoError(t, svc.Reload(context.Background()))

	snap := svc.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "独参汤", snap[0].Name)

	events := pub.captured()
	require.Len(t, events, 1)
	assert.Equal(t, kafka.ChangeReloaded, events[0].Type)
}

func TestServiceSnapshotIsolation(t *testing.T) {
	t.Parallel()

	svc := NewService(logging.NewNopLogger())
	before := svc.Snapshot()

	_, err := svc.Create(context.Background(), newFormula("", "二陈汤", "半夏", "橘红", "茯苓", "甘草"))
	require.NoError(t, err)

	// The snapshot taken before the write is untouched.
	assert.Len(t, before, len(SeedFormulas()))
	assert.Len(t, svc.Snapshot(), len(SeedFormulas())+1)
}

func TestServiceListSortedByName(t *testing.T) {
	t.Parallel()

	svc := NewService(logging.NewNopLogger())
	list := svc.List(context.Background())
	require.Len(t, list, len(SeedFormulas()))
	for i := 1; i < len(list); i++ {
		assert.LessOrEqual(t, list[i-1].Name, list[i].Name)
	}
}
