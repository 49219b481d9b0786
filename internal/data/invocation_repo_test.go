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

func TestInvocationRepo_CreateAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	repo := data.NewInvocationRepo(db, nil)
	ctx := context.Background()

	inv := testutil.NewInvocation().WithName("run-1-create").Build()
	require.NoError(t, repo.Create(ctx, inv))

	got, err := repo.FindByName(ctx, "run-1-create")
	require.NoError(t, err)
	assert.Equal(t, inv.Name, got.Name)
	assert.Equal(t, inv.Username, got.Username)
	assert.Equal(t, inv.Message, got.Message)
	assert.Equal(t, model.StateScheduled, got.State)
}

func TestInvocationRepo_DuplicateNameIsConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	repo := data.NewInvocationRepo(db, nil)
	ctx := context.Background()

	inv := testutil.NewInvocation().WithName("run-1-dup").Build()
	require.NoError(t, repo.Create(ctx, inv))

	err := repo.Create(ctx, testutil.NewInvocation().WithName("run-1-dup").Build())
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestInvocationRepo_FindByName_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	repo := data.NewInvocationRepo(db, nil)

	_, err := repo.FindByName(context.Background(), "run-1-absent")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestInvocationRepo_UpdateState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	repo := data.NewInvocationRepo(db, nil)
	ctx := context.Background()

	inv := testutil.NewInvocation().WithName("run-1-update").Build()
	require.NoError(t, repo.Create(ctx, inv))

	applied, err := repo.UpdateState(ctx, "run-1-update", model.StateCreated)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := repo.FindByName(ctx, "run-1-update")
	require.NoError(t, err)
	assert.Equal(t, model.StateCreated, got.State)

	// Updating a name with no record reports not-applied without an error.
	applied, err = repo.UpdateState(ctx, "run-1-nope", model.StateFailed)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestInvocationRepo_UpdateState_RejectsInvalidState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	repo := data.NewInvocationRepo(db, nil)

	_, err := repo.UpdateState(context.Background(), "run-1-x", model.InvocationState("bogus"))
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestInvocationRepo_Create_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	repo := data.NewInvocationRepo(db, nil)
	ctx := context.Background()

	require.Error(t, repo.Create(ctx, nil))

	err := repo.Create(ctx, &model.Invocation{Username: "u", Message: "m"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}
