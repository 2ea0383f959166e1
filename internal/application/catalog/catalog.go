// Package catalog owns the formula database: seed data, optional postgres
// persistence, and the immutable snapshot the matching engine reads.
//
// Writes go through a mutex and swap in a freshly built slice, so readers
// holding an older snapshot are never invalidated mid-pass.
package catalog

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/herbwise/fangmatch/internal/domain/formula"
	"github.com/herbwise/fangmatch/internal/infrastructure/messaging/kafka"
	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/logging"
	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/prometheus"
	"github.com/herbwise/fangmatch/pkg/errors"
	"github.com/herbwise/fangmatch/pkg/types/common"
)

// Repository is the persistence port the postgres implementation satisfies.
// A nil repository leaves the service in seed-only mode.
type Repository interface {
	Create(ctx context.Context, f *formula.StandardFormula) error
	Update(ctx context.Context, f *formula.StandardFormula) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*formula.StandardFormula, error)
	List(ctx context.Context) ([]*formula.StandardFormula, error)
	Count(ctx context.Context) (int64, error)
}

// Publisher emits change events.  The kafka producer satisfies it; a nil
// publisher disables eventing.
type Publisher interface {
	PublishFormulaChanged(ctx context.Context, event kafka.FormulaChangedEvent) error
}

// Service manages the formula catalog and hands out read snapshots.
type Service struct {
	repo      Repository
	publisher Publisher
	logger    logging.Logger
	metrics   *prometheus.Metrics

	mu       sync.Mutex
	snapshot atomic.Pointer[[]*formula.StandardFormula]
}

// Option configures a Service.
type Option func(*Service)

// WithRepository attaches postgres persistence.
func WithRepository(repo Repository) Option {
	return func(s *Service) { s.repo = repo }
}

// WithPublisher attaches the change-event producer.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics attaches the snapshot-size gauge.
func WithMetrics(m *prometheus.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService builds the catalog.  With a repository, Bootstrap must run
// before first use; without one, the seed formulas are served immediately.
func NewService(log logging.Logger, opts ...Option) *Service {
	s := &Service{logger: log.Named("catalog")}
	for _, opt := range opts {
		opt(s)
	}
	s.store(SeedFormulas())
	return s
}

// Bootstrap loads the catalog from the repository, inserting the seeds on
// first run against an empty database.  No-op in seed-only mode.
func (s *Service) Bootstrap(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	n, err := s.repo.Count(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStoreQuery, "failed to count formulas")
	}
	if n == 0 {
		for _, f := range SeedFormulas() {
			if err := s.repo.Create(ctx, f); err != nil {
				return errors.Wrap(err, errors.ErrCodeStoreQuery, "failed to seed formulas")
			}
		}
		s.logger.Info("seeded formula database", logging.Int("formulas", len(SeedFormulas())))
	}
	return s.Reload(ctx)
}

// Reload re-reads the catalog from the repository and swaps the snapshot.
func (s *Service) Reload(ctx context.Context) error {
	if s.repo == nil {
		s.store(SeedFormulas())
		return nil
	}

	list, err := s.repo.List(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStoreQuery, "failed to load formulas")
	}

	s.mu.Lock()
	s.store(list)
	s.mu.Unlock()

	s.publish(ctx, kafka.FormulaChangedEvent{Type: kafka.ChangeReloaded})
	s.logger.Info("catalog reloaded", logging.Int("formulas", len(list)))
	return nil
}

// Snapshot returns the current formula list.  Callers must treat it as
// read-only; it is shared with every other concurrent reader.
func (s *Service) Snapshot() []*formula.StandardFormula {
	p := s.snapshot.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Get returns the formula with the given ID.
func (s *Service) Get(ctx context.Context, id string) (*formula.StandardFormula, error) {
	if s.repo != nil {
		return s.repo.GetByID(ctx, id)
	}
	for _, f := range s.Snapshot() {
		if f.ID == id {
			return f.Clone(), nil
		}
	}
	return nil, errors.Newf(errors.ErrCodeFormulaNotFound, "formula %s not found", id)
}

// GetByName returns the formula with the given display name.
func (s *Service) GetByName(_ context.Context, name string) (*formula.StandardFormula, error) {
	for _, f := range s.Snapshot() {
		if f.Name == name {
			return f.Clone(), nil
		}
	}
	return nil, errors.Newf(errors.ErrCodeFormulaNotFound, "formula %q not found", name)
}

// List returns the catalog sorted by name.
func (s *Service) List(_ context.Context) []*formula.StandardFormula {
	snap := s.Snapshot()
	out := make([]*formula.StandardFormula, len(snap))
	copy(out, snap)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Create validates and adds a formula, assigning an ID when absent.
func (s *Service) Create(ctx context.Context, f *formula.StandardFormula) (*formula.StandardFormula, error) {
	if f == nil {
		return nil, errors.InvalidParam("formula must not be nil")
	}
	created := f.Clone()
	if created.ID == "" {
		created.ID = string(common.NewID())
	}
	if err := created.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.Snapshot() {
		if existing.Name == created.Name {
			return nil, errors.Newf(errors.ErrCodeFormulaExists, "formula %q already exists", created.Name)
		}
	}
	if s.repo != nil {
		if err := s.repo.Create(ctx, created); err != nil {
			return nil, err
		}
	}
	s.store(append(s.copySnapshot(), created))

	s.publish(ctx, kafka.FormulaChangedEvent{
		Type: kafka.ChangeCreated, FormulaID: created.ID, Name: created.Name,
	})
	s.logger.Info("formula created",
		logging.String("id", created.ID), logging.String("name", created.Name))
	return created.Clone(), nil
}

// Update validates and replaces a formula by ID.
func (s *Service) Update(ctx context.Context, f *formula.StandardFormula) (*formula.StandardFormula, error) {
	if f == nil || f.ID == "" {
		return nil, errors.InvalidParam("formula ID is required")
	}
	updated := f.Clone()
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.copySnapshot()
	idx := -1
	for i, existing := range snap {
		if existing.ID == updated.ID {
			idx = i
			continue
		}
		if existing.Name == updated.Name {
			return nil, errors.Newf(errors.ErrCodeFormulaExists, "formula %q already exists", updated.Name)
		}
	}
	if idx < 0 {
		return nil, errors.Newf(errors.ErrCodeFormulaNotFound, "formula %s not found", updated.ID)
	}

	if s.repo != nil {
		if err := s.repo.Update(ctx, updated); err != nil {
			return nil, err
		}
	}
	snap[idx] = updated
	s.store(snap)

	s.publish(ctx, kafka.FormulaChangedEvent{
		Type: kafka.ChangeUpdated, FormulaID: updated.ID, Name: updated.Name,
	})
	s.logger.Info("formula updated",
		logging.String("id", updated.ID), logging.String("name", updated.Name))
	return updated.Clone(), nil
}

// Delete removes a formula by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.InvalidParam("formula ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.copySnapshot()
	idx := -1
	for i, existing := range snap {
		if existing.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.Newf(errors.ErrCodeFormulaNotFound, "formula %s not found", id)
	}
	name := snap[idx].Name

	if s.repo != nil {
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
	}
	s.store(append(snap[:idx], snap[idx+1:]...))

	s.publish(ctx, kafka.FormulaChangedEvent{
		Type: kafka.ChangeDeleted, FormulaID: id, Name: name,
	})
	s.logger.Info("formula deleted", logging.String("id", id), logging.String("name", name))
	return nil
}

func (s *Service) store(list []*formula.StandardFormula) {
	s.snapshot.Store(&list)
	s.metrics.SetSnapshotSize(len(list))
}

func (s *Service) copySnapshot() []*formula.StandardFormula {
	snap := s.Snapshot()
	out := make([]*formula.StandardFormula, len(snap))
	copy(out, snap)
	return out
}

func (s *Service) publish(ctx context.Context, event kafka.FormulaChangedEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishFormulaChanged(ctx, event); err != nil {
		s.logger.Warn("failed to publish formula change", logging.Err(err))
	}
}
