package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threatflux/datahub/internal/datahub/dherrors"
	"github.com/threatflux/datahub/internal/datahub/handler"
	"github.com/threatflux/datahub/internal/datahub/sample"
)

func newInput(path string, t sample.Type) *Resource {
	return New(Input, path, t, "", handler.NewTable())
}

func TestPushSetsCurrentValueAndDispatches(t *testing.T) {
	r := newInput("/app/p/t", sample.Numeric)

	var got sample.Sample
	r.AddHandler(sample.Numeric, func(path string, s sample.Sample) { got = s })

	require.NoError(t, r.Push(sample.Numeric, sample.New(sample.Numeric, 1.0, 21.5)))

	cur, ok := r.CurrentValue()
	require.True(t, ok)
	assert.Equal(t, 21.5, cur.AsNumeric())
	assert.Equal(t, 21.5, got.AsNumeric())
}

func TestPushTypeMismatchDrops(t *testing.T) {
	r := newInput("/app/p/t", sample.Numeric)
	err := r.Push(sample.JSON, sample.New(sample.JSON, 1.0, `{"a":1}`))
	assert.ErrorIs(t, err, dherrors.ErrTypeMismatch)
	_, ok := r.CurrentValue()
	assert.False(t, ok)
}

func TestPushCoercesStringToNumericForInput(t *testing.T) {
	r := newInput("/app/p/t", sample.Numeric)
	require.NoError(t, r.Push(sample.String, sample.New(sample.String, 1.0, "21.5")))
	cur, _ := r.CurrentValue()
	assert.Equal(t, 21.5, cur.AsNumeric())
}

func TestOverrideReplacesValueKeepingTimestamp(t *testing.T) {
	r := newInput("/app/p/t", sample.Numeric)
	r.SetOverride(sample.Numeric, sample.New(sample.Numeric, 0, 99.0))

	require.NoError(t, r.Push(sample.Numeric, sample.New(sample.Numeric, 5.0, 1.0)))
	cur, _ := r.CurrentValue()
	assert.Equal(t, 99.0, cur.AsNumeric())
	assert.Equal(t, 5.0, cur.Timestamp())
}

func TestSetDefaultPropagatesWhenNoCurrentValue(t *testing.T) {
	r := newInput("/app/p/t", sample.Numeric)
	var called bool
	r.AddHandler(sample.Numeric, func(string, sample.Sample) { called = true })

	require.NoError(t, r.SetDefault(sample.Numeric, sample.New(sample.Numeric, 1, 5.0)))
	assert.True(t, called)
}

func TestSetDefaultDoesNotPropagateWhenCurrentValueExists(t *testing.T) {
	r := newInput("/app/p/t", sample.Numeric)
	require.NoError(t, r.Push(sample.Numeric, sample.New(sample.Numeric, 1, 1.0)))

	var called bool
	r.AddHandler(sample.Numeric, func(string, sample.Sample) { called = true })

	require.NoError(t, r.SetDefault(sample.Numeric, sample.New(sample.Numeric, 1, 5.0)))
	assert.False(t, called)
}

func TestSetSourceRejectsSelfCycle(t *testing.T) {
	r := newInput("/app/p/t", sample.Numeric)
	err := r.SetSource(r)
	assert.ErrorIs(t, err, dherrors.ErrWouldCycle)
}

func TestSetSourceRejectsTransitiveCycle(t *testing.T) {
	a := newInput("/a", sample.Numeric)
	b := newInput("/b", sample.Numeric)
	c := newInput("/c", sample.Numeric)

	require.NoError(t, b.SetSource(a))
	require.NoError(t, c.SetSource(b))

	err := a.SetSource(c)
	assert.ErrorIs(t, err, dherrors.ErrWouldCycle)
}

func TestPushPropagatesToConsumersInOrder(t *testing.T) {
	src := newInput("/src", sample.Numeric)
	a := newInput("/a", sample.Numeric)
	b := newInput("/b", sample.Numeric)

	require.NoError(t, a.SetSource(src))
	require.NoError(t, b.SetSource(src))

	require.NoError(t, src.Push(sample.Numeric, sample.New(sample.Numeric, 1, 7.0)))

	av, _ := a.CurrentValue()
	bv, _ := b.CurrentValue()
	assert.Equal(t, 7.0, av.AsNumeric())
	assert.Equal(t, 7.0, bv.AsNumeric())
}

func TestRemoveSourceClearsEdge(t *testing.T) {
	a := newInput("/a", sample.Numeric)
	b := newInput("/b", sample.Numeric)
	require.NoError(t, a.SetSource(b))
	a.RemoveSource()
	assert.Nil(t, a.Source())
}

func TestDetachAsSourceClearsDownstreamWeakRefs(t *testing.T) {
	a := newInput("/a", sample.Numeric)
	b := newInput("/b", sample.Numeric)
	require.NoError(t, a.SetSource(b))

	b.DetachAsSource()
	assert.Nil(t, a.Source())
}

func TestMigrateOnReplaceMovesAdminSettings(t *testing.T) {
	old := New(Placeholder, "/p", sample.Numeric, "", handler.NewTable())
	require.NoError(t, old.SetDefault(sample.Numeric, sample.New(sample.Numeric, 1, 3.0)))
	src := newInput("/src", sample.Numeric)
	require.NoError(t, old.SetSource(src))

	neu := New(Input, "/p", sample.Numeric, "C", handler.NewTable())
	MigrateOnReplace(old, neu)

	assert.True(t, neu.AdminSettingsPresent())
	assert.Equal(t, src, neu.Source())
	assert.Nil(t, old.Source())
}

func TestAdminSettingsPresentFalseByDefault(t *testing.T) {
	r := newInput("/a", sample.Numeric)
	assert.False(t, r.AdminSettingsPresent())
}
