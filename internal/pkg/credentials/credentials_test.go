package credentials

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	doc := fmt.Sprintf(`credentials:
  users:
    Alice:
      name: "Alice Example"
      password: "%s"
    Broken:
      name: "No Hash"
      password: ""
`, hash)

	store, err := Parse([]byte(doc))
	require.NoError(t, err)
	return store
}

func TestVerify(t *testing.T) {
	store := testStore(t)
	require.Equal(t, 2, store.Len())

	user, ok := store.Verify("Alice", "s3cret")
	require.True(t, ok)
	assert.Equal(t, "Alice", user.Username)
	assert.Equal(t, "Alice Example", user.Name)

	_, ok = store.Verify("Alice", "wrong")
	assert.False(t, ok)

	_, ok = store.Verify("nobody", "s3cret")
	assert.False(t, ok)

	_, ok = store.Verify("Broken", "")
	assert.False(t, ok)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("credentials: [not a map"))
	assert.Error(t, err)
}

func TestLoadMissingFileYieldsEmptyStore(t *testing.T) {
	store, err := Load("/nonexistent/credentials.yaml")
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())

	_, ok := store.Verify("Alice", "s3cret")
	assert.False(t, ok)
}
