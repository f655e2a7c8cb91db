package internet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclerk/casedesk/modules/core/domain/value_objects/internet"
)

func TestNewEmail(t *testing.T) {
	t.Parallel()

	t.Run("canonicalizes case and whitespace", func(t *testing.T) {
		e, err := internet.NewEmail("  Clerk@Example.COM ")
		require.NoError(t, err)
		assert.Equal(t, "clerk@example.com", e.Value())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		for _, raw := range []string{"", "not-an-email", "a@", "a b@example.com"} {
			_, err := internet.NewEmail(raw)
			assert.ErrorIs(t, err, internet.ErrInvalidEmail, "input %q", raw)
		}
	})
}
