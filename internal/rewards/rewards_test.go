package rewards_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexihop/lexihop/internal/db"
	"github.com/lexihop/lexihop/internal/rewards"
)

func newTestService(t *testing.T) (*rewards.Service, context.Context) {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?cache=shared&mode=rwc"
	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { dbh.Close() })

	svc := rewards.NewService(dbh)
	require.NoError(t, svc.EnsureCatalog(ctx))
	return svc, ctx
}

func TestEnsureCatalogIdempotent(t *testing.T) {
	svc, ctx := newTestService(t)

	items, err := svc.ListItems(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, items)

	require.NoError(t, svc.EnsureCatalog(ctx))
	again, err := svc.ListItems(ctx)
	require.NoError(t, err)
	require.Equal(t, items, again)
}

func TestWalletCreatedOnFirstRead(t *testing.T) {
	svc, ctx := newTestService(t)

	w, err := svc.Wallet(ctx, "child-1")
	require.NoError(t, err)
	require.Equal(t, 0, w.XP)
	require.Equal(t, 0, w.Carrots)
}

func TestAwardPractice(t *testing.T) {
	svc, ctx := newTestService(t)

	w, err := svc.AwardPractice(ctx, "child-1", true)
	require.NoError(t, err)
	require.Equal(t, rewards.XPPerCorrect, w.XP)
	require.Equal(t, rewards.CarrotsPerCorrect, w.Carrots)

	w, err = svc.AwardPractice(ctx, "child-1", false)
	require.NoError(t, err)
	require.Equal(t, rewards.XPPerCorrect+rewards.XPPerAttempt, w.XP)
	require.Equal(t, rewards.CarrotsPerCorrect, w.Carrots, "wrong answers earn no carrots")
}

func TestAwardAssessment(t *testing.T) {
	svc, ctx := newTestService(t)

	w, err := svc.AwardAssessment(ctx, "child-1", 80)
	require.NoError(t, err)
	require.Equal(t, 80, w.XP)
	require.Equal(t, 10, w.Carrots)
}

func TestPurchase(t *testing.T) {
	svc, ctx := newTestService(t)

	// Fund the wallet. Stickers cost 5.
	for i := 0; i < 3; i++ {
		_, err := svc.AwardPractice(ctx, "child-1", true)
		require.NoError(t, err)
	}

	p, w, err := svc.Purchase(ctx, "child-1", "sticker-star")
	require.NoError(t, err)
	require.Equal(t, "sticker-star", p.ItemID)
	require.Equal(t, "shop", p.Source)
	require.Equal(t, 1, w.Carrots)

	inv, err := svc.Inventory(ctx, "child-1")
	require.NoError(t, err)
	require.Len(t, inv, 1)
	require.Equal(t, p.ID, inv[0].ID)
}

func TestPurchaseInsufficientCarrots(t *testing.T) {
	svc, ctx := newTestService(t)

	_, _, err := svc.Purchase(ctx, "child-1", "hat-wizard")
	require.ErrorIs(t, err, rewards.ErrInsufficientCarrots)

	inv, err := svc.Inventory(ctx, "child-1")
	require.NoError(t, err)
	require.Empty(t, inv, "failed purchase must not be recorded")
}

func TestPurchaseUnknownItem(t *testing.T) {
	svc, ctx := newTestService(t)

	_, _, err := svc.Purchase(ctx, "child-1", "no-such-item")
	require.ErrorIs(t, err, rewards.ErrItemNotFound)
}

func TestMysteryBox(t *testing.T) {
	svc, ctx := newTestService(t)

	// Ten correct answers: 20 carrots, enough for one box.
	for i := 0; i < 10; i++ {
		_, err := svc.AwardPractice(ctx, "child-1", true)
		require.NoError(t, err)
	}

	item, w, err := svc.OpenMysteryBox(ctx, "child-1")
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)
	require.Equal(t, 10*rewards.CarrotsPerCorrect-rewards.MysteryBoxCost, w.Carrots,
		"box costs the flat price regardless of the prize's shop cost")

	inv, err := svc.Inventory(ctx, "child-1")
	require.NoError(t, err)
	require.Len(t, inv, 1)
	require.Equal(t, "mystery-box", inv[0].Source)
}

func TestMysteryBoxInsufficientCarrots(t *testing.T) {
	svc, ctx := newTestService(t)

	_, _, err := svc.OpenMysteryBox(ctx, "child-1")
	require.ErrorIs(t, err, rewards.ErrInsufficientCarrots)
}
