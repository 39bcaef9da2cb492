package testdb

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTB forwards to a real test but records Fatalf instead of
// stopping it.
type recordingTB struct {
	testing.TB
	t      *testing.T
	fatals []string
}

func (r *recordingTB) Helper() {}
func (r *recordingTB) Cleanup(f func()) { r.t.Cleanup(f) }
func (r *recordingTB) TempDir() string { return r.t.TempDir() }
func (r *recordingTB) Log(args ...any) { r.t.Log(args...) }
func (r *recordingTB) Logf(format string, args ...any) { r.t.Logf(format, args...) }
func (r *recordingTB) Fatalf(format string, args ...any) {
	r.fatals = append(r.fatals, fmt.Sprintf(format, args...))
}

func TestNewStorage_InMemoryRefusesSecondSession(t *testing.T) {
	rec := &recordingTB{t: t}
	tdb := New(rec)
	require.Empty(t, rec.fatals)

	tdb.NewStorage()
	require.Len(t, rec.fatals, 1)
	assert.Contains(t, rec.fatals[0], "NewFile")
}

func TestNewStorage_FileAllowsSecondSession(t *testing.T) {
	tdb := NewFile(t)
	second := tdb.NewStorage()
	require.NotNil(t, second)
	assert.NotSame(t, tdb.Storage, second)
}
