// Package repositories holds the PostgreSQL persistence for the formula
// catalog.
package repositories

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/herbwise/fangmatch/internal/domain/formula"
	"github.com/herbwise/fangmatch/pkg/errors"
	"github.com/herbwise/fangmatch/pkg/types/common"
)

// Logger is the minimal logging contract the repository needs.  It is
// satisfied by the monitoring/logging adapter in testutil and keeps this
// package decoupled from the zap wrapper.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// FormulaRepository persists standard formulas in PostgreSQL.  Composition
// and standard dosage are stored as JSONB.
type FormulaRepository struct {
	pool   *pgxpool.Pool
	logger Logger
}

// NewFormulaRepository constructs a ready-to-use repository.
func NewFormulaRepository(pool *pgxpool.Pool, logger Logger) *FormulaRepository {
	return &FormulaRepository{pool: pool, logger: logger}
}

const formulaColumns = `id, name, source, composition, standard_dosage,
	usage, effect, indications, analysis, is_ai_generated`

// Create inserts a formula.  A missing ID is generated; a duplicate name
// maps to ErrCodeFormulaExists.
func (r *FormulaRepository) Create(ctx context.Context, f *formula.StandardFormula) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.ID == "" {
		f.ID = string(common.NewID())
	}
	r.logger.Debug("FormulaRepository.Create", "id", f.ID, "name", f.Name)

	composition, dosage, err := marshalFormulaJSON(f)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO formulas (`+formulaColumns+`, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		f.ID, f.Name, f.Source, composition, dosage,
		f.Usage, f.Effect, f.Indications, f.Analysis, f.IsAIGenerated,
		time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Newf(errors.ErrCodeFormulaExists, "formula %q already exists", f.Name)
		}
		r.logger.Error("FormulaRepository.Create failed", "error", err)
		return errors.Wrap(err, errors.ErrCodeStoreQuery, "failed to insert formula")
	}
	return nil
}

// Update rewrites a formula row by ID.
func (r *FormulaRepository) Update(ctx context.Context, f *formula.StandardFormula) error {
	if err := f.Validate(); err != nil {
		return err
	}
	r.logger.Debug("FormulaRepository.Update", "id", f.ID)

	composition, dosage, err := marshalFormulaJSON(f)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE formulas
		SET name = $2, source = $3, composition = $4, standard_dosage = $5,
		    usage = $6, effect = $7, indications = $8, analysis = $9,
		    is_ai_generated = $10, updated_at = $11
		WHERE id = $1`,
		f.ID, f.Name, f.Source, composition, dosage,
		f.Usage, f.Effect, f.Indications, f.Analysis, f.IsAIGenerated,
		time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Newf(errors.ErrCodeFormulaExists, "formula %q already exists", f.Name)
		}
		r.logger.Error("FormulaRepository.Update failed", "error", err)
		return errors.Wrap(err, errors.ErrCodeStoreQuery, "failed to update formula")
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.ErrCodeFormulaNotFound, "formula %q not found", f.ID)
	}
	return nil
}

// Delete removes a formula by ID.
func (r *FormulaRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debug("FormulaRepository.Delete", "id", id)

	tag, err := r.pool.Exec(ctx, `DELETE FROM formulas WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("FormulaRepository.Delete failed", "error", err)
		return errors.Wrap(err, errors.ErrCodeStoreQuery, "failed to delete formula")
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.ErrCodeFormulaNotFound, "formula %q not found", id)
	}
	return nil
}

// GetByID fetches one formula.
func (r *FormulaRepository) GetByID(ctx context.Context, id string) (*formula.StandardFormula, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+formulaColumns+` FROM formulas WHERE id = $1`, id)
	f, err := scanFormula(row)
	if err != nil {
		if goerrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Newf(errors.ErrCodeFormulaNotFound, "formula %q not found", id)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStoreQuery, "failed to fetch formula")
	}
	return f, nil
}

// GetByName fetches one formula by its unique display name.
func (r *FormulaRepository) GetByName(ctx context.Context, name string) (*formula.StandardFormula, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+formulaColumns+` FROM formulas WHERE name = $1`, name)
	f, err := scanFormula(row)
	if err != nil {
		if goerrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Newf(errors.ErrCodeFormulaNotFound, "formula %q not found", name)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStoreQuery, "failed to fetch formula")
	}
	return f, nil
}

// List returns every stored formula in insertion order.  The catalog builds
// its snapshot from this.
func (r *FormulaRepository) List(ctx context.Context) ([]*formula.StandardFormula, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+formulaColumns+` FROM formulas ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStoreQuery, "failed to list formulas")
	}
	defer rows.Close()

	var out []*formula.StandardFormula
	for rows.Next() {
		f, err := scanFormula(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeStoreSerialization, "failed to scan formula row")
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStoreQuery, "failed to iterate formulas")
	}
	return out, nil
}

// Count returns the number of stored formulas.
func (r *FormulaRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM formulas`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeStoreQuery, "failed to count formulas")
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFormula(row rowScanner) (*formula.StandardFormula, error) {
	var (
		f               formula.StandardFormula
		compositionJSON []byte
		dosageJSON      []byte
	)
	err := row.Scan(
		&f.ID, &f.Name, &f.Source, &compositionJSON, &dosageJSON,
		&f.Usage, &f.Effect, &f.Indications, &f.Analysis, &f.IsAIGenerated,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(compositionJSON, &f.Composition); err != nil {
		return nil, err
	}
	if len(dosageJSON) > 0 {
		if err := json.Unmarshal(dosageJSON, &f.StandardDosage); err != nil {
			return nil, err
		}
	}
	return &f, nil
}

func marshalFormulaJSON(f *formula.StandardFormula) (composition, dosage []byte, err error) {
	composition, err = json.Marshal(f.Composition)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeStoreSerialization, "failed to marshal composition")
	}
	if len(f.StandardDosage) > 0 {
		dosage, err = json.Marshal(f.StandardDosage)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrCodeStoreSerialization, "failed to marshal standard dosage")
		}
	}
	return composition, dosage, nil
}

// isUniqueViolation reports a 23505 unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return goerrors.As(err, &pgErr) && pgErr.Code == "23505"
}
