package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Table {
	t := New("Hostname", "Location")
	t.AppendStrings("srv01", "Madrid")
	t.AppendStrings("srv02", "")
	t.AppendStrings("srv03", "Madrid")
	t.AppendStrings("srv04", "Lima")
	return t
}

func TestAppendPadsShortRows(t *testing.T) {
	tb := New("a", "b", "c")
	tb.Append(Str("x"))
	require.Len(t, tb.Rows, 1)
	assert.Equal(t, Row{Str("x"), Null, Null}, tb.Rows[0])
}

func TestDistinctSkipsNullsAndKeepsOrder(t *testing.T) {
	got, err := sample().Distinct("Location")
	require.NoError(t, err)
	assert.Equal(t, []string{"Madrid", "Lima"}, got)

	_, err = sample().Distinct("nope")
	assert.Error(t, err)
}

func TestFilterDoesNotTouchReceiver(t *testing.T) {
	src := sample()
	out := src.Filter(func(r Row) bool { return r[1].Valid && r[1].String == "Madrid" })
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, 4, src.Len())
}

func TestSelect(t *testing.T) {
	out, err := sample().Select("Location", "Hostname")
	require.NoError(t, err)
	assert.Equal(t, []string{"Location", "Hostname"}, out.Columns)
	assert.Equal(t, "srv01", out.Rows[0][1].String)

	_, err = sample().Select("Missing")
	assert.Error(t, err)
}

func TestHashDistinguishesNullFromEmpty(t *testing.T) {
	a := New("x")
	a.Append(Null)
	b := New("x")
	b.Append(Str(""))
	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.Equal(t, sample().Hash(), sample().Hash())
}

func TestCloneIsDeep(t *testing.T) {
	src := sample()
	c := src.Clone()
	c.Rows[0][0] = Str("changed")
	assert.Equal(t, "srv01", src.Rows[0][0].String)
}

func TestMissingAndGet(t *testing.T) {
	tb := sample()
	assert.Equal(t, []string{"IP"}, tb.Missing("Hostname", "IP"))
	assert.Equal(t, Str("srv04"), tb.Get(3, "Hostname"))
	assert.Equal(t, Null, tb.Get(0, "IP"))
	assert.Equal(t, "n/a", tb.Get(1, "Location").Or("n/a"))
}
