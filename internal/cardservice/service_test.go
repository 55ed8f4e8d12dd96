package cardservice

import (
	"context"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pr-poehali-dev/yugan-bank-registration/internal/domain"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/randompkg"
)

func testAccount() domain.Account {
	return domain.Account{
		Phone: randompkg.Phone(),
		Name:  randompkg.Name(),
		Cards: []domain.Card{
			{ID: "card-1", Type: domain.CardTypePlastic, PaymentSystem: domain.PaymentSystemVisa, Variant: domain.CardVariantDebit},
		},
	}
}

func TestIssue(t *testing.T) {
	account := testAccount()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	service := New(repo)
	ctx := context.Background()

	// Incomplete selection never touches the repository.
	_, _, err := service.Issue(ctx, account.Phone, "", domain.PaymentSystemMir, domain.CardVariantDebit)
	require.ErrorIs(t, err, domain.ErrInvalidSelection)

	_, _, err = service.Issue(ctx, account.Phone, domain.CardTypeVirtual, "", domain.CardVariantDebit)
	require.ErrorIs(t, err, domain.ErrInvalidSelection)

	_, _, err = service.Issue(ctx, account.Phone, domain.CardTypeVirtual, domain.PaymentSystemMir, "gold")
	require.ErrorIs(t, err, domain.ErrInvalidSelection)

	repo.EXPECT().Get(gomock.Any(), gomock.Eq(account.Phone)).Times(2).Return(account, nil)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Times(2).Return(nil)

	got, card, err := service.Issue(ctx, account.Phone, domain.CardTypeVirtual, domain.PaymentSystemMir, domain.CardVariantChild)
	require.NoError(t, err)

	// Appended last, order preserved.
	require.Len(t, got.Cards, 2)
	require.Equal(t, card, got.Cards[1])
	require.Equal(t, "card-1", got.Cards[0].ID)

	require.Equal(t, domain.CardTypeVirtual, card.Type)
	require.Equal(t, domain.PaymentSystemMir, card.PaymentSystem)
	require.Equal(t, domain.CardVariantChild, card.Variant)
	require.Equal(t, cardExpiry, card.ExpiryDate)
	require.Len(t, card.CVV, 3)
	require.False(t, card.IsBlocked)
	require.Nil(t, card.Limit)

	// "1234 5678 9012 3456" and the mask shares its last four digits.
	require.Len(t, card.FullNumber, 19)
	require.True(t, strings.HasPrefix(card.Number, "•••• •••• •••• "))
	require.Equal(t, card.FullNumber[15:], card.Number[len(card.Number)-4:])

	_, second, err := service.Issue(ctx, account.Phone, domain.CardTypeVirtual, domain.PaymentSystemMir, domain.CardVariantChild)
	require.NoError(t, err)
	require.NotEqual(t, card.ID, second.ID)
}

func TestRename(t *testing.T) {
	account := testAccount()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	service := New(repo)
	ctx := context.Background()

	repo.EXPECT().Get(gomock.Any(), gomock.Eq(account.Phone)).Times(2).Return(account, nil)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Times(1).Return(nil)

	got, err := service.Rename(ctx, account.Phone, "card-1", "Основная")
	require.NoError(t, err)
	require.Equal(t, "Основная", got.Cards[0].CustomName)
	require.Equal(t, "Основная", got.Cards[0].DisplayName())

	_, err = service.Rename(ctx, account.Phone, "card-404", "Основная")
	require.ErrorIs(t, err, domain.ErrCardNotFound)
}

func TestSetLimit(t *testing.T) {
	account := testAccount()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	service := New(repo)
	ctx := context.Background()

	repo.EXPECT().Get(gomock.Any(), gomock.Eq(account.Phone)).Times(2).Return(account, nil)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Times(2).Return(nil)

	limit := int64(10000)

	got, err := service.SetLimit(ctx, account.Phone, "card-1", &limit)
	require.NoError(t, err)
	require.NotNil(t, got.Cards[0].Limit)
	require.Equal(t, limit, *got.Cards[0].Limit)

	// Absence clears the cap.
	got, err = service.SetLimit(ctx, account.Phone, "card-1", nil)
	require.NoError(t, err)
	require.Nil(t, got.Cards[0].Limit)
}

func TestToggleBlock(t *testing.T) {
	account := testAccount()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	service := New(repo)
	ctx := context.Background()

	repo.EXPECT().Get(gomock.Any(), gomock.Eq(account.Phone)).Times(1).Return(account, nil)

	var blocked domain.Account

	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, a domain.Account) error {
			blocked = a
			return nil
		})

	got, err := service.ToggleBlock(ctx, account.Phone, "card-1")
	require.NoError(t, err)
	require.True(t, got.Cards[0].IsBlocked)

	// The second toggle reads the state the first one saved.
	repo.EXPECT().Get(gomock.Any(), gomock.Eq(account.Phone)).Times(1).
		DoAndReturn(func(_ context.Context, _ string) (domain.Account, error) {
			return blocked, nil
		})

	got, err = service.ToggleBlock(ctx, account.Phone, "card-1")
	require.NoError(t, err)
	require.False(t, got.Cards[0].IsBlocked)
}

func TestDelete(t *testing.T) {
	account := testAccount()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	service := New(repo)
	ctx := context.Background()

	repo.EXPECT().Get(gomock.Any(), gomock.Eq(account.Phone)).Times(2).Return(account, nil)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Times(1).Return(nil)

	got, err := service.Delete(ctx, account.Phone, "card-1")
	require.NoError(t, err)
	require.Empty(t, got.Cards)

	_, err = service.Delete(ctx, account.Phone, "card-404")
	require.ErrorIs(t, err, domain.ErrCardNotFound)
}
