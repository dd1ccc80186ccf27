package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormaliseID(t *testing.T) {
	assert.Equal(t, "en", NormaliseID("  EN "))
	assert.Equal(t, "pt-br", NormaliseID("pt-BR"))
	assert.Equal(t, "", NormaliseID("   "))
}

func TestNormaliseIDs(t *testing.T) {
	ids := NormaliseIDs([]string{"fr", " EN", "en", "", "de"})

	assert.Equal(t, []string{"de", "en", "fr"}, ids)
}

func TestNormaliseIDs_Empty(t *testing.T) {
	assert.Empty(t, NormaliseIDs(nil))
}

func TestMetricValue(t *testing.T) {
	var absent MetricValue
	assert.False(t, absent.Present)
	assert.Equal(t, "", absent.String())

	zero := IntValue(0)
	assert.True(t, zero.Present)
	assert.Equal(t, "0", zero.String())

	text := StringValue("n/a")
	assert.Equal(t, "n/a", text.String())
}

func TestSnapshot_Get(t *testing.T) {
	snap := Snapshot{
		MetricPages: IntValue(12),
		MetricEdits: {},
	}

	v, ok := snap.Get(MetricPages)
	assert.True(t, ok)
	assert.Equal(t, "12", v)

	_, ok = snap.Get(MetricEdits)
	assert.False(t, ok)

	_, ok = snap.Get(MetricAdmins)
	assert.False(t, ok)
}

func TestSnapshot_Missing(t *testing.T) {
	snap := Snapshot{MetricPages: IntValue(1), MetricUsers: IntValue(2)}

	missing := snap.Missing([]string{MetricPages, MetricEdits, MetricUsers, MetricAdmins})

	assert.Equal(t, []string{MetricEdits, MetricAdmins}, missing)
}
