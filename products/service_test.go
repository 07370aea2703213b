package products

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/bazaar-go/apperror"
)

func TestBuildFilters(t *testing.T) {
	t.Parallel()

	t.Run("no filters", func(t *testing.T) {
		t.Parallel()
		clauses, args, err := buildFilters(map[string]string{})
		require.NoError(t, err)
		assert.Empty(t, clauses)
		assert.Empty(t, args)
	})

	t.Run("all recognized keys", func(t *testing.T) {
		t.Parallel()
		clauses, args, err := buildFilters(map[string]string{
			"shop_id": "3",
			"name":    "shirt",
			"status":  "publish",
		})
		require.NoError(t, err)
		assert.Len(t, clauses, 3)
		assert.Contains(t, args, 3)
		assert.Contains(t, args, "%shirt%")
		assert.Contains(t, args, "publish")
	})

	t.Run("unknown keys are ignored", func(t *testing.T) {
		t.Parallel()
		clauses, args, err := buildFilters(map[string]string{"color": "red"})
		require.NoError(t, err)
		assert.Empty(t, clauses)
		assert.Empty(t, args)
	})

	t.Run("non-numeric shop_id is rejected", func(t *testing.T) {
		t.Parallel()
		_, _, err := buildFilters(map[string]string{"shop_id": "abc"})
		require.Error(t, err)
		assert.True(t, apperror.IsValidationError(err))
	})

	t.Run("placeholders are sequential", func(t *testing.T) {
		t.Parallel()
		clauses, _, err := buildFilters(map[string]string{
			"shop_id": "1",
			"name":    "x",
			"status":  "draft",
		})
		require.NoError(t, err)
		joined := ""
		for _, c := range clauses {
			joined += c + " "
		}
		assert.Contains(t, joined, "$1")
		assert.Contains(t, joined, "$2")
		assert.Contains(t, joined, "$3")
	})
}
