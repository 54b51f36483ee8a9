package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/encrypted69-code/upirefer/internal/models"
)

func TestUsers_CreateDuplicate(t *testing.T) {
	s := New(newTestDB(t))
	ctx := context.Background()

	createUser(t, s, 1, 0)
	err := s.Users.Create(ctx, &models.User{UserID: 1, ReferralCode: "other", Level: 1})
	require.ErrorIs(t, err, ErrDuplicate)

	// Duplicate referral code hits the unique index too.
	err = s.Users.Create(ctx, &models.User{UserID: 2, ReferralCode: "1", Level: 1})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestUsers_FindNotFound(t *testing.T) {
	s := New(newTestDB(t))
	ctx := context.Background()

	_, err := s.Users.FindByID(ctx, 404)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.Users.FindByReferralCode(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUsers_FindByReferralCode(t *testing.T) {
	s := New(newTestDB(t))
	ctx := context.Background()
	createUser(t, s, 7, 0)

	u, err := s.Users.FindByReferralCode(ctx, "7")
	require.NoError(t, err)
	require.EqualValues(t, 7, u.UserID)
}

func TestUsers_SetUPIID(t *testing.T) {
	s := New(newTestDB(t))
	ctx := context.Background()
	createUser(t, s, 1, 0)

	require.NoError(t, s.Users.SetUPIID(ctx, 1, "alice@bank"))
	u, err := s.Users.FindByID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "alice@bank", u.UPIID)

	// Overwriting is allowed.
	require.NoError(t, s.Users.SetUPIID(ctx, 1, "alice@otherbank"))

	require.ErrorIs(t, s.Users.SetUPIID(ctx, 404, "x@bank"), ErrNotFound)
}

func TestUsers_AddBalance(t *testing.T) {
	s := New(newTestDB(t))
	ctx := context.Background()
	createUser(t, s, 1, 5)

	require.NoError(t, s.Users.AddBalance(ctx, 1, 10))
	u, err := s.Users.FindByID(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 15, u.Balance)

	require.ErrorIs(t, s.Users.AddBalance(ctx, 404, 10), ErrNotFound)
}

func TestUsers_ClaimReferredBy_Once(t *testing.T) {
	s := New(newTestDB(t))
	ctx := context.Background()
	createUser(t, s, 1, 0)
	createUser(t, s, 2, 0)
	createUser(t, s, 3, 0)

	claimed, err := s.Users.ClaimReferredBy(ctx, 1, 2)
	require.NoError(t, err)
	require.True(t, claimed)

	// Second claim loses, even with a different referrer.
	claimed, err = s.Users.ClaimReferredBy(ctx, 1, 3)
	require.NoError(t, err)
	require.False(t, claimed)

	u, err := s.Users.FindByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, u.ReferredBy)
	require.EqualValues(t, 2, *u.ReferredBy)
}

func TestUsers_DebitAll_CompareAndSet(t *testing.T) {
	s := New(newTestDB(t))
	ctx := context.Background()
	createUser(t, s, 1, 50)

	debited, err := s.Users.DebitAll(ctx, 1, 50)
	require.NoError(t, err)
	require.True(t, debited)

	u, err := s.Users.FindByID(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, u.Balance)
	require.EqualValues(t, 50, u.WithdrawnTotal)

	// Stale snapshot: balance moved on, the debit must not apply.
	debited, err = s.Users.DebitAll(ctx, 1, 50)
	require.NoError(t, err)
	require.False(t, debited)
}

func TestUsers_ReferralIDs_Ordered(t *testing.T) {
	s := New(newTestDB(t))
	ctx := context.Background()
	createUser(t, s, 1, 0)

	for i, id := range []int64{10, 11, 12} {
		u := &models.User{
			UserID:       id,
			ReferralCode: string(rune('a' + i)),
			ReferredBy:   ptr(int64(1)),
			Level:        1,
			CreatedAt:    time.Now().Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, s.Users.Create(ctx, u))
	}

	ids, err := s.Users.ReferralIDs(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []int64{10, 11, 12}, ids)

	count, err := s.Users.CountReferrals(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
}

func TestUsers_Aggregates(t *testing.T) {
	s := New(newTestDB(t))
	ctx := context.Background()
	createUser(t, s, 1, 10)
	createUser(t, s, 2, 30)
	createUser(t, s, 3, 20)

	count, err := s.Users.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)

	total, err := s.Users.SumBalances(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 60, total)

	top, err := s.Users.TopByBalance(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.EqualValues(t, 2, top[0].UserID)
	require.EqualValues(t, 3, top[1].UserID)
}

func ptr(v int64) *int64 {
	return &v
}
