package accountrepo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/pr-poehali-dev/yugan-bank-registration/internal/domain"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/randompkg"
)

func testRepo(t *testing.T) *RepoBolt {
	t.Helper()

	path := filepath.Join(t.TempDir(), "accounts.db")

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	repo, err := NewRepoBolt(db)
	require.NoError(t, err)

	return repo
}

func randomAccount() domain.Account {
	return domain.Account{
		Phone: randompkg.Phone(),
		Name:  randompkg.Name(),
		Email: randompkg.Email(),
		Cards: []domain.Card{
			{
				ID:            "card-1",
				Type:          domain.CardTypeVirtual,
				PaymentSystem: domain.PaymentSystemMir,
				Variant:       domain.CardVariantDebit,
				Number:        "•••• •••• •••• 4829",
				FullNumber:    "1234 5678 9012 4829",
				CVV:           randompkg.Digits(3),
				ExpiryDate:    "12/28",
			},
		},
		Transactions: []domain.Transaction{},
		Balance:      1000,
	}
}

func TestGet(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	want := randomAccount()
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Get(ctx, want.Phone)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("repo.Get(%v) returned unexpected diff: %s", want.Phone, diff)
	}

	// Miss
	_, err = repo.Get(ctx, randompkg.Phone())
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestSaveRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	want := randomAccount()
	want.FamilyCode = "AB12CD"
	want.FamilyMembers = []domain.FamilyMember{}
	want.IsPremium = true
	limit := int64(5000)
	want.Cards[0].Limit = &limit
	want.Transactions = []domain.Transaction{
		{ID: "t1", Name: "Продукты", Amount: -2500, Icon: "ShoppingCart", Color: "from-accent to-secondary", Date: "Сегодня, 14:30"},
	}

	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Get(ctx, want.Phone)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip returned unexpected diff: %s", diff)
	}

	// Saving the loaded record again changes nothing.
	require.NoError(t, repo.Save(ctx, got))

	again, err := repo.Get(ctx, want.Phone)
	require.NoError(t, err)

	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("second round trip returned unexpected diff: %s", diff)
	}
}

func TestDelete(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	account := randomAccount()
	require.NoError(t, repo.Save(ctx, account))

	require.NoError(t, repo.Delete(ctx, account.Phone))

	_, err := repo.Get(ctx, account.Phone)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	// Deleting an absent record is a no-op.
	require.NoError(t, repo.Delete(ctx, account.Phone))
}

func TestListSkipsMalformed(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	first := randomAccount()
	second := randomAccount()
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	// Plant a record that does not parse.
	err := repo.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(accountsBucket).Put(accountKey("+70000000000"), []byte("{not json"))
	})
	require.NoError(t, err)

	accounts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
}

func TestPhonesByCode(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	const code = "XYZ789"

	owner := randomAccount()
	owner.FamilyCode = code
	owner.FamilyMembers = []domain.FamilyMember{}
	require.NoError(t, repo.Save(ctx, owner))

	member := randomAccount()
	member.FamilyCode = code
	require.NoError(t, repo.Save(ctx, member))

	phones, err := repo.PhonesByCode(ctx, code)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{owner.Phone, member.Phone}, phones)

	// Leaving the family removes the phone from the index entry.
	member.FamilyCode = ""
	require.NoError(t, repo.Save(ctx, member))

	phones, err = repo.PhonesByCode(ctx, code)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{owner.Phone}, phones)

	// Deleting the owner removes the last entry.
	require.NoError(t, repo.Delete(ctx, owner.Phone))

	phones, err = repo.PhonesByCode(ctx, code)
	require.NoError(t, err)
	require.Empty(t, phones)
}

func TestReconcile(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	const code = "QWE123"

	member := randomAccount()
	member.FamilyCode = code

	gone := randomAccount()

	owner := randomAccount()
	owner.FamilyCode = code
	owner.FamilyMembers = []domain.FamilyMember{
		{Phone: member.Phone, Name: member.Name},
		{Phone: gone.Phone, Name: gone.Name},
	}

	require.NoError(t, repo.Save(ctx, owner))
	require.NoError(t, repo.Save(ctx, member))

	// The second member never joined: its account does not exist.
	require.NoError(t, repo.Reconcile(ctx))

	got, err := repo.Get(ctx, owner.Phone)
	require.NoError(t, err)
	require.Equal(t, []domain.FamilyMember{{Phone: member.Phone, Name: member.Name}}, got.FamilyMembers)

	phones, err := repo.PhonesByCode(ctx, code)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{owner.Phone, member.Phone}, phones)
}
