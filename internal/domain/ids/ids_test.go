package ids

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewULID(t *testing.T) {
	id := NewULID()

	require.Len(t, id, 26)
	require.NoError(t, ValidateULID(id))
}

func TestNewULIDMintOrder(t *testing.T) {
	minted := make([]string, 100)
	for i := range minted {
		minted[i] = NewULID()
	}

	require.True(t, sort.StringsAreSorted(minted), "ids minted in sequence sort in mint order")

	seen := make(map[string]struct{}, len(minted))
	for _, id := range minted {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestValidateULID(t *testing.T) {
	valid := NewULID()

	require.NoError(t, ValidateULID(valid))
	require.NoError(t, ValidateULID("  "+valid+" "), "surrounding whitespace is tolerated")
	require.ErrorIs(t, ValidateULID("not-a-ulid"), ErrInvalidULID)
	require.ErrorIs(t, ValidateULID(""), ErrInvalidULID)
	require.ErrorIs(t, ValidateULID("01J0KXMQZ8RPXJPN8J9Q6TK0W"), ErrInvalidULID, "25 characters")
}

func TestIsULIDCaseInsensitive(t *testing.T) {
	require.True(t, IsULID(NewULID()))
	require.True(t, IsULID("01j0kxmqz8rpxjpn8j9q6tk0wp"))
}
