package repositories

import (
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herbwise/fangmatch/internal/domain/formula"
	"github.com/herbwise/fangmatch/pkg/errors"
)

type fakeRow struct {
	values []interface{}
}

func (r fakeRow) Scan(dest ...interface{}) error {
	for i := range dest {
		switch d := dest[i].(type) {
		case *string:
			*d = r.values[i].(string)
		case *[]byte:
			if r.values[i] == nil {
				*d = nil
			} else {
				*d = r.values[i].([]byte)
			}
		case *bool:
			*d = r.values[i].(bool)
		}
	}
	return nil
}

func TestMarshalFormulaJSON_RoundTrip(t *testing.T) {
	t.Parallel()

	f := &formula.StandardFormula{
		ID:             "f-1",
		Name:           "麻黄汤",
		Source:         "伤寒论",
		Composition:    []string{"麻黄", "桂枝", "杏仁", "甘草"},
		StandardDosage: map[string]float64{"麻黄": 9, "桂枝": 6, "杏仁": 9, "甘草": 3},
	}

	composition, dosage, err := marshalFormulaJSON(f)
	require.NoError(t, err)

	row := fakeRow{values: []interface{}{
		f.ID, f.Name, f.Source, composition, dosage,
		"", "", "", "", false,
	}}
	got, err := scanFormula(row)
	require.NoError(t, err)
	assert.Equal(t, f.Composition, got.Composition)
	assert.Equal(t, f.StandardDosage, got.StandardDosage)
}

func TestMarshalFormulaJSON_NilDosageOmitted(t *testing.T) {
	t.Parallel()

	f := &formula.StandardFormula{
		Name:        "桂枝汤",
		Composition: []string{"桂枝", "白芍"},
	}
	composition, dosage, err := marshalFormulaJSON(f)
	require.NoError(t, err)
	assert.Nil(t, dosage)

	var comp []string
	require.NoError(t, json.Unmarshal(composition, &comp))
	assert.Equal(t, f.Composition, comp)
}

func TestScanFormula_NullDosage(t *testing.T) {
	t.Parallel()

	row := fakeRow{values: []interface{}{
		"f-2", "桂枝汤", "伤寒论", []byte(`["桂枝","白芍"]`), nil,
		"", "", "", "", false,
	}}
	got, err := scanFormula(row)
	require.NoError(t, err)
	assert.Nil(t, got.StandardDosage)
	assert.Equal(t, []string{"桂枝", "白芍"}, got.Composition)
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New(errors.ErrCodeStoreQuery, "boom")))
	assert.False(t, isUniqueViolation(nil))
}
