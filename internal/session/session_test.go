package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mebe/internal/domain"
	"mebe/internal/store"
)

func newTestManager(t *testing.T) (*Manager, store.Store) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.NewLocal(dir)
	require.NoError(t, err)
	return NewManager(st, "0000", dir), st
}

func TestSessionLifecycle(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, st.CreateUser(ctx, domain.User{Phone: "0911111111", Name: "Lan"}))

	// No session file yet
	user, err := m.ResolveSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, m.StartSession("0911111111"))
	user, err = m.ResolveSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Lan", user.Name)

	require.NoError(t, m.EndSession())
	user, err = m.ResolveSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	// Ending twice is fine
	assert.NoError(t, m.EndSession())
}

func TestStaleSessionClears(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	// Session points at a user that no longer exists server-side
	require.NoError(t, m.StartSession("0999999999"))
	user, err := m.ResolveSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	// The stale marker was removed
	_, err = os.Stat(filepath.Join(m.dir, sessionFile))
	assert.True(t, os.IsNotExist(err))
}

func TestMasterAdminOverride(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()

	// Stored record says not-admin; the override wins
	require.NoError(t, st.CreateUser(ctx, domain.User{Phone: "0000", Name: "Quản trị viên", IsAdmin: false}))

	user, err := m.Resolve(ctx, "0000")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)

	// Other users are untouched
	require.NoError(t, st.CreateUser(ctx, domain.User{Phone: "0911111111", Name: "Lan"}))
	user, err = m.Resolve(ctx, "0911111111")
	require.NoError(t, err)
	assert.False(t, user.IsAdmin)
}

func TestSeedMasterAdmin(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.SeedMasterAdmin(ctx, "https://avatars.test/", "hash"))

	admin, err := st.GetUser(ctx, "0000")
	require.NoError(t, err)
	assert.Equal(t, "Quản trị viên", admin.Name)
	assert.Equal(t, int64(999999999), admin.Balance)
	assert.True(t, admin.IsAdmin)

	// Seeding again keeps the existing record
	admin.Name = "renamed"
	require.NoError(t, st.UpdateUser(ctx, admin))
	require.NoError(t, m.SeedMasterAdmin(ctx, "https://avatars.test/", "other"))
	admin, err = st.GetUser(ctx, "0000")
	require.NoError(t, err)
	assert.Equal(t, "renamed", admin.Name)
}
