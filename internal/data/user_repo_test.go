package data_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchkit/invoker/internal/data"
	"github.com/benchkit/invoker/internal/domain/model"
	apperrors "github.com/benchkit/invoker/internal/errors"
	"github.com/benchkit/invoker/internal/testutil"
)

func TestUserRepo_CreateIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	repo := data.NewUserRepo(db)
	ctx := context.Background()

	user := &model.User{Username: "loaduser-0001", Password: "pw"}
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.FindByUsername(ctx, "loaduser-0001")
	require.NoError(t, err)
	assert.Equal(t, "loaduser-0001", got.Username)
	assert.Equal(t, "pw", got.Password)
}

func TestUserRepo_FindByUsername_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	repo := data.NewUserRepo(db)

	_, err := repo.FindByUsername(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUserRepo_RandomUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	repo := data.NewUserRepo(db)
	ctx := context.Background()

	// Empty directory is NotFound, not an empty struct.
	_, err := repo.RandomUser(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	usernames := map[string]bool{}
	for _, name := range []string{"loaduser-0001", "loaduser-0002", "loaduser-0003"} {
		require.NoError(t, repo.Create(ctx, &model.User{Username: name, Password: "pw"}))
		usernames[name] = true
	}

	for i := 0; i < 10; i++ {
		user, err := repo.RandomUser(ctx)
		require.NoError(t, err)
		assert.True(t, usernames[user.Username], "unexpected user %q", user.Username)
	}
}

func TestUserRepo_Create_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	repo := data.NewUserRepo(db)
	ctx := context.Background()

	err := repo.Create(ctx, &model.User{Password: "pw"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}
