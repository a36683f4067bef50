package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterSet(t *testing.T) {
	t.Run("empty set activates every engine", func(tt *testing.T) {
		fs := NewFilterSet(nil)
		assert.True(tt, fs.Empty())
		for _, k := range AllFilters() {
			assert.True(tt, fs.Active(k))
		}
		assert.Equal(tt, AllFilters(), fs.Names())
	})

	t.Run("explicit set activates only its members", func(tt *testing.T) {
		fs := NewFilterSet([]string{FilterSecurity, FilterPerformance})
		assert.False(tt, fs.Empty())
		assert.True(tt, fs.Active(FilterSecurity))
		assert.True(tt, fs.Active(FilterPerformance))
		assert.False(tt, fs.Active(FilterAccessibility))
		assert.Equal(tt, []string{FilterPerformance, FilterSecurity}, fs.Names())
	})

	t.Run("unknown keys are dropped", func(tt *testing.T) {
		fs := NewFilterSet([]string{"bogus", FilterFunctional})
		assert.Equal(tt, []string{FilterFunctional}, fs.Names())
		assert.False(tt, fs.Active("bogus"))
	})

	t.Run("all unknown keys collapse to the empty set", func(tt *testing.T) {
		fs := NewFilterSet([]string{"bogus"})
		assert.True(tt, fs.Empty())
	})
}
