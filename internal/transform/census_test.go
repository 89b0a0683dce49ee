package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionFor(t *testing.T) {
	tests := []struct {
		state, region, division string
	}{
		{"VA", RegionSouth, "South Atlantic"},
		{"dc", RegionSouth, "South Atlantic"},
		{"NY", RegionNortheast, "Middle Atlantic"},
		{"OH", RegionMidwest, "East North Central"},
		{"CA", RegionWest, "Pacific"},
		{"AE", RegionMilitary, RegionMilitary},
		{"ON", RegionOther, RegionOther},
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			assert.Equal(t, tt.region, RegionFor(tt.state))
			assert.Equal(t, tt.division, DivisionFor(tt.state))
		})
	}
}

func TestEveryStateMapped(t *testing.T) {
	// 50 states plus DC
	assert.Len(t, byState, 51)
	for st, area := range byState {
		assert.NotEmpty(t, area.region, st)
		assert.True(t, IsRegion(area.region), st)
	}
}

func TestIsLocal(t *testing.T) {
	assert.True(t, IsLocal("DC"))
	assert.True(t, IsLocal("md"))
	assert.True(t, IsLocal("VA"))
	assert.False(t, IsLocal("WV"))
	assert.False(t, IsLocal(""))
}

func TestIsMilitary(t *testing.T) {
	for _, s := range []string{"AA", "ae", "AP"} {
		assert.True(t, IsMilitary(s), s)
	}
	assert.False(t, IsMilitary("AL"))
}
