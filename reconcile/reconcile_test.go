package reconcile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/xlfsync/localefile"
)

func mapOf(pairs ...string) *localefile.Map {
	m := localefile.New()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

func TestClassifyChangedAndUnchanged(t *testing.T) {
	r := Classify(mapOf("A", "1", "B", "3"), mapOf("A", "1", "B", "2"))

	assert.Equal(t, map[string]string{"B": "3"}, r.NeedsUpdate.Values())
	assert.Equal(t, map[string]string{"A": "1"}, r.DoesntNeedUpdate.Values())
	assert.True(t, r.NeedsTranslation)
	assert.Empty(t, r.Removed)
	assert.Nil(t, r.Baseline)
}

func TestClassifyNewAndRemovedKeys(t *testing.T) {
	r := Classify(mapOf("A", "1", "NEW", "n"), mapOf("A", "1", "GONE", "g"))

	assert.Equal(t, []string{"NEW"}, r.NeedsUpdate.Keys())
	assert.Equal(t, []string{"A"}, r.DoesntNeedUpdate.Keys())
	assert.Equal(t, []string{"GONE"}, r.Removed)
}

func TestClassifyIdentical(t *testing.T) {
	m := mapOf("A", "1", "B", "2")
	r := Classify(m, mapOf("B", "2", "A", "1"))

	assert.Equal(t, 0, r.NeedsUpdate.Len())
	assert.True(t, r.DoesntNeedUpdate.Equal(m))
	assert.Equal(t, m.Keys(), r.DoesntNeedUpdate.Keys())
	assert.False(t, r.NeedsTranslation)
}

func TestClassifyWithoutBaseline(t *testing.T) {
	m := mapOf("A", "1", "B", "2")
	r := Classify(m, nil)

	assert.True(t, r.NeedsUpdate.Equal(m))
	assert.Equal(t, 0, r.DoesntNeedUpdate.Len())
	assert.True(t, r.NeedsTranslation)
}

func TestClassifyEmptyCurrentWithoutBaselineStillFlagsTranslation(t *testing.T) {
	r := Classify(localefile.New(), nil)
	assert.True(t, r.NeedsTranslation)
}

func TestReconcileMissingBackup(t *testing.T) {
	dir := t.TempDir()
	current := filepath.Join(dir, "en-US.json")
	require.NoError(t, mapOf("A", "1").WriteFile(current, "\t"))

	r, err := Reconcile(current, filepath.Join(dir, "en-US(old).json"))
	require.NoError(t, err)
	require.NotNil(t, r.Baseline)
	assert.ErrorIs(t, r.Baseline, os.ErrNotExist)
	assert.Equal(t, []string{"A"}, r.NeedsUpdate.Keys())
	assert.True(t, r.NeedsTranslation)
}

func TestReconcileCorruptBackupFallsBack(t *testing.T) {
	dir := t.TempDir()
	current := filepath.Join(dir, "en-US.json")
	backup := filepath.Join(dir, "en-US(old).json")
	require.NoError(t, mapOf("A", "1", "B", "2").WriteFile(current, "\t"))
	require.NoError(t, os.WriteFile(backup, []byte("{not json"), 0644))

	r, err := Reconcile(current, backup)
	require.NoError(t, err)
	require.NotNil(t, r.Baseline)
	assert.Equal(t, 2, r.NeedsUpdate.Len())
	assert.Equal(t, 0, r.DoesntNeedUpdate.Len())
}

func TestReconcileWithBackup(t *testing.T) {
	dir := t.TempDir()
	current := filepath.Join(dir, "en-US.json")
	backup := filepath.Join(dir, "en-US(old).json")
	require.NoError(t, mapOf("A", "1", "B", "3").WriteFile(current, "\t"))
	require.NoError(t, mapOf("A", "1", "B", "2").WriteFile(backup, "\t"))

	r, err := Reconcile(current, backup)
	require.NoError(t, err)
	assert.Nil(t, r.Baseline)
	assert.Equal(t, map[string]string{"B": "3"}, r.NeedsUpdate.Values())
	assert.Equal(t, map[string]string{"A": "1"}, r.DoesntNeedUpdate.Values())
}

func TestReconcileMissingCurrentIsError(t *testing.T) {
	dir := t.TempDir()
	_, err := Reconcile(filepath.Join(dir, "en-US.json"), filepath.Join(dir, "en-US(old).json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
