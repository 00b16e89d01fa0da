package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

func TestStorage_Posts(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	creator := factory.CreatePost(t, models.RoleCreator, models.PlatformYouTube, 50000, 500, "gaming", "tech")
	sponsorA := factory.CreatePost(t, models.RoleSponsor, models.PlatformYouTube, 20000, 400, "technology")
	sponsorB := factory.CreatePost(t, models.RoleSponsor, models.PlatformTwitch, 1000, 50, "cooking")

	t.Run("find by id and owner", func(t *testing.T) {
		got, err := storage.FindPostByID(ctx, creator.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"gaming", "tech"}, got.Interests)
		assert.InDelta(t, 500.0, got.PricePoint, 1e-9)

		got, err = storage.FindPostByOwnerEmail(ctx, sponsorA.OwnerEmail)
		require.NoError(t, err)
		assert.Equal(t, sponsorA.ID, got.ID)

		_, err = storage.FindPostByID(ctx, 999999)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("list by role newest first", func(t *testing.T) {
		got, err := storage.ListPostsByRole(ctx, models.RoleSponsor, creator.ID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, sponsorB.ID, got[0].ID)
		assert.Equal(t, sponsorA.ID, got[1].ID)
	})

	t.Run("list with filters", func(t *testing.T) {
		minFollowers := int64(10000)
		got, err := storage.ListPosts(ctx, models.PostFilter{
			Role:         models.RoleSponsor,
			MinFollowers: &minFollowers,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, sponsorA.ID, got[0].ID)

		got, err = storage.ListPosts(ctx, models.PostFilter{Interest: "TECH"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("second post for owner conflicts", func(t *testing.T) {
		dup := *creator
		dup.ID = 0
		_, err := storage.InsertPost(ctx, dup)
		assert.ErrorIs(t, err, apperror.ErrConflict)
	})

	t.Run("delete by owner", func(t *testing.T) {
		deleted, err := storage.DeletePostByOwnerEmail(ctx, sponsorB.OwnerEmail)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = storage.DeletePostByOwnerEmail(ctx, sponsorB.OwnerEmail)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestStorage_InsertPost_Concurrent(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	email := "race@example.com"
	uid := NewTestDataFactory(storage).CreateUser(t, email)
	post := models.Post{
		UserID:      uid,
		OwnerEmail:  email,
		Role:        models.RoleCreator,
		Platform:    models.PlatformTikTok,
		Description: "race",
		ContactInfo: email,
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := storage.InsertPost(ctx, post)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, apperror.ErrConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)
}

func TestStorage_Unlocks(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	unlock := models.PaidUnlock{
		RequesterEmail: "viewer@example.com",
		TargetPostID:   7,
		AmountPaid:     100,
		TransactionRef: "cs_1",
		RevealedAt:     time.Now().UTC(),
	}

	exists, err := storage.UnlockExists(ctx, unlock.RequesterEmail, unlock.TargetPostID)
	require.NoError(t, err)
	assert.False(t, exists)

	inserted, err := storage.InsertUnlockIfAbsent(ctx, unlock)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = storage.InsertUnlockIfAbsent(ctx, unlock)
	require.NoError(t, err)
	assert.False(t, inserted)

	exists, err = storage.UnlockExists(ctx, unlock.RequesterEmail, unlock.TargetPostID)
	require.NoError(t, err)
	assert.True(t, exists)

	ids, err := storage.ListUnlockedPostIDs(ctx, unlock.RequesterEmail)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids)

	ids, err = storage.ListUnlockedPostIDs(ctx, "other@example.com")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStorage_Entitlements(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	e := models.PostingEntitlement{UserEmail: "poster@example.com", AmountPaid: 500, TransactionRef: "cs_2", PaidAt: time.Now().UTC()}

	has, err := storage.HasPostingEntitlement(ctx, e.UserEmail)
	require.NoError(t, err)
	assert.False(t, has)

	inserted, err := storage.InsertEntitlementIfAbsent(ctx, e)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = storage.InsertEntitlementIfAbsent(ctx, e)
	require.NoError(t, err)
	assert.False(t, inserted)

	has, err = storage.HasPostingEntitlement(ctx, e.UserEmail)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestStorage_UsersAndTokens(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	now := time.Now().UTC()

	uid, err := storage.CreateUser(ctx, "new@example.com", "hash1")
	require.NoError(t, err)
	assert.NotEmpty(t, uid)

	_, err = storage.CreateUser(ctx, "new@example.com", "hash2")
	assert.ErrorIs(t, err, apperror.ErrConflict)

	reset, err := storage.ResetUnverifiedPassword(ctx, "new@example.com", "hash3")
	require.NoError(t, err)
	assert.True(t, reset)

	require.NoError(t, storage.CreateVerificationToken(ctx, models.VerificationToken{
		Token: "expired", UserEmail: "new@example.com", ExpiresAt: now.Add(-time.Minute),
	}))
	_, err = storage.ConsumeVerificationToken(ctx, "expired", now)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, storage.CreateVerificationToken(ctx, models.VerificationToken{
		Token: "fresh", UserEmail: "new@example.com", ExpiresAt: now.Add(time.Hour),
	}))
	email, err := storage.ConsumeVerificationToken(ctx, "fresh", now)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", email)

	_, err = storage.ConsumeVerificationToken(ctx, "fresh", now)
	assert.ErrorIs(t, err, apperror.ErrNotFound, "token is single-use")

	u, err := storage.GetUserByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.True(t, u.Verified)
	assert.Equal(t, "hash3", u.PasswordHash)
	assert.Equal(t, uid, u.UUID)

	reset, err = storage.ResetUnverifiedPassword(ctx, "new@example.com", "hash4")
	require.NoError(t, err)
	assert.False(t, reset)

	require.NoError(t, storage.SetPaymentCustomerID(ctx, "new@example.com", "cus_1"))
	u, err = storage.GetUser(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "cus_1", u.PaymentCustomerID)

	_, err = storage.GetUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestStorage_DeleteExpiredTokens(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	now := time.Now().UTC()

	NewTestDataFactory(storage).CreateUser(t, "a@example.com")
	NewTestDataFactory(storage).CreateUser(t, "b@example.com")
	require.NoError(t, storage.CreateVerificationToken(ctx, models.VerificationToken{
		Token: "old", UserEmail: "a@example.com", ExpiresAt: now.Add(-time.Hour),
	}))
	require.NoError(t, storage.CreateVerificationToken(ctx, models.VerificationToken{
		Token: "new", UserEmail: "b@example.com", ExpiresAt: now.Add(time.Hour),
	}))

	deleted, err := storage.DeleteExpiredTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestStorage_PaymentSessions(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	session := models.PaymentSession{
		ID:           "cs_test_1",
		UserEmail:    "payer@example.com",
		Purpose:      models.PurposeContactReveal,
		Amount:       100,
		TargetPostID: 12,
	}
	require.NoError(t, storage.CreatePaymentSession(ctx, session))
	assert.ErrorIs(t, storage.CreatePaymentSession(ctx, session), apperror.ErrConflict)

	got, err := storage.GetPaymentSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionPending, got.Status)
	assert.Equal(t, int64(12), got.TargetPostID)
	assert.Nil(t, got.CompletedAt)

	completed, err := storage.CompletePaymentSession(ctx, session.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, completed)

	completed, err = storage.CompletePaymentSession(ctx, session.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, completed)

	payments, err := storage.ListUserPayments(ctx, session.UserEmail)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, session.ID, payments[0].SessionID)

	stale := models.PaymentSession{ID: "cs_test_2", UserEmail: "payer@example.com", Purpose: models.PurposePostingFee, Amount: 500}
	require.NoError(t, storage.CreatePaymentSession(ctx, stale))
	cancelled, err := storage.CancelStalePaymentSessions(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), cancelled)

	got, err = storage.GetPaymentSession(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCancelled, got.Status)
	assert.Equal(t, int64(0), got.TargetPostID)
}

func TestStorage_CompleteCancelledPaymentSession(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	session := models.PaymentSession{ID: "cs_late", UserEmail: "late@example.com", Purpose: models.PurposePostingFee, Amount: 500}
	require.NoError(t, storage.CreatePaymentSession(ctx, session))

	cancelled, err := storage.CancelStalePaymentSessions(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, int64(1), cancelled)

	// оплата, пришедшая после отмены, всё равно завершает сессию
	paidAt := time.Now().UTC().Truncate(time.Microsecond)
	completed, err := storage.CompletePaymentSession(ctx, session.ID, paidAt)
	require.NoError(t, err)
	assert.True(t, completed)

	got, err := storage.GetPaymentSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)

	payments, err := storage.ListUserPayments(ctx, session.UserEmail)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, session.ID, payments[0].SessionID)
	assert.Equal(t, int64(500), payments[0].Amount)

	completed, err = storage.CompletePaymentSession(ctx, session.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, completed)

	cancelled, err = storage.CancelStalePaymentSessions(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(0), cancelled)
}

func TestStorage_ReportsAndDomains(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	r, err := storage.InsertReport(ctx, models.Report{ReportedPostID: 3, Reason: "spam"})
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "pending", r.Status)

	dv := models.DomainVerification{UserEmail: "d@example.com", Domain: "example.com", Code: "code-1"}
	require.NoError(t, storage.UpsertDomainVerification(ctx, dv))
	dv.Code = "code-2"
	require.NoError(t, storage.UpsertDomainVerification(ctx, dv))

	got, err := storage.GetDomainVerification(ctx, dv.UserEmail, dv.Domain)
	require.NoError(t, err)
	assert.Equal(t, "code-2", got.Code)
	assert.False(t, got.Verified)

	require.NoError(t, storage.MarkDomainVerified(ctx, dv.UserEmail, dv.Domain))
	got, err = storage.GetDomainVerification(ctx, dv.UserEmail, dv.Domain)
	require.NoError(t, err)
	assert.True(t, got.Verified)
	assert.NotNil(t, got.VerifiedAt)

	assert.ErrorIs(t, storage.MarkDomainVerified(ctx, dv.UserEmail, "other.com"), apperror.ErrNotFound)
}
