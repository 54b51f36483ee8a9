package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyReferral_EmptyAndSelfCodesAreNoOps(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.EnsureUser(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, svc.ApplyReferral(ctx, 1, ""))
	require.NoError(t, svc.ApplyReferral(ctx, 1, "1"))

	u, err := store.Users.FindByID(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, u.Balance)
	require.Nil(t, u.ReferredBy)

	total, err := store.Users.SumBalances(ctx)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestApplyReferral_UnknownCodeIgnored(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.EnsureUser(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, svc.ApplyReferral(ctx, 1, "nobody"))

	u, err := store.Users.FindByID(ctx, 1)
	require.NoError(t, err)
	require.Nil(t, u.ReferredBy)
}

func TestApplyReferral_SingleLevel(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.EnsureUser(ctx, 1) // referrer A
	require.NoError(t, err)
	_, err = svc.EnsureUser(ctx, 2) // new user B
	require.NoError(t, err)

	require.NoError(t, svc.ApplyReferral(ctx, 2, "1"))

	a, err := store.Users.FindByID(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 10, a.Balance)

	b, err := store.Users.FindByID(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, b.ReferredBy)
	require.EqualValues(t, 1, *b.ReferredBy)

	ids, err := store.Users.ReferralIDs(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []int64{2}, ids)

	// A has no ancestor, so the only credit in the system is A's.
	total, err := store.Users.SumBalances(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 10, total)
}

func TestApplyReferral_TwoLevels(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	// Chain C -> A -> B: A was referred by C, then B joins with A's code.
	_, err := svc.EnsureUser(ctx, 3) // C
	require.NoError(t, err)
	_, err = svc.EnsureUser(ctx, 1) // A
	require.NoError(t, err)
	require.NoError(t, svc.ApplyReferral(ctx, 1, "3"))

	_, err = svc.EnsureUser(ctx, 2) // B
	require.NoError(t, err)
	require.NoError(t, svc.ApplyReferral(ctx, 2, "1"))

	a, err := store.Users.FindByID(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 10, a.Balance)

	// C earned 10 for referring A directly, plus 5 for B at level 2.
	c, err := store.Users.FindByID(ctx, 3)
	require.NoError(t, err)
	require.EqualValues(t, 15, c.Balance)
}

func TestApplyReferral_Twice_NoDoubleCredit(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.EnsureUser(ctx, 1)
	require.NoError(t, err)
	_, err = svc.EnsureUser(ctx, 2)
	require.NoError(t, err)

	require.NoError(t, svc.ApplyReferral(ctx, 2, "1"))
	require.NoError(t, svc.ApplyReferral(ctx, 2, "1"))

	a, err := store.Users.FindByID(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 10, a.Balance)

	ids, err := store.Users.ReferralIDs(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []int64{2}, ids)
}

func TestApplyReferral_AlreadyReferred_OtherCodeIgnored(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.EnsureUser(ctx, 1)
	require.NoError(t, err)
	_, err = svc.EnsureUser(ctx, 5)
	require.NoError(t, err)
	_, err = svc.EnsureUser(ctx, 2)
	require.NoError(t, err)

	require.NoError(t, svc.ApplyReferral(ctx, 2, "1"))
	require.NoError(t, svc.ApplyReferral(ctx, 2, "5"))

	b, err := store.Users.FindByID(ctx, 2)
	require.NoError(t, err)
	require.EqualValues(t, 1, *b.ReferredBy)

	other, err := store.Users.FindByID(ctx, 5)
	require.NoError(t, err)
	require.Zero(t, other.Balance)
}
