// Package transferservice manages business logic layer of transfers.
package transferservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pr-poehali-dev/yugan-bank-registration/internal/domain"
)

const dateLayout = "02.01.2006, 15:04"

// Repo provides data access layer interface needed by transfer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type Repo interface {
	Get(ctx context.Context, phone string) (domain.Account, error)
	Save(ctx context.Context, account domain.Account) error
}

// Service facilitates transfer service layer logic.
type Service struct {
	repo Repo
}

// New returns transfer service struct to manage transfer business logic.
func New(r Repo) *Service {
	return &Service{repo: r}
}

func validParams(arg domain.CreateTransferParams) error {
	if arg.FromCardID == "" || arg.Target == "" || !arg.Type.Valid() {
		return domain.ErrEmptyTransferFields
	}

	if arg.Amount <= 0 {
		return domain.ErrNonPositiveAmount
	}

	return nil
}

// Transfer checks all preconditions before any mutation, then decreases
// the balance, prepends the transaction record and persists the account
// synchronously. The card spending limit is display-only and not
// checked here.
func (s *Service) Transfer(ctx context.Context, phone string, arg domain.CreateTransferParams) (domain.Account, domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	if err := validParams(arg); err != nil {
		l.Info().Err(err).Send()
		return domain.Account{}, domain.Transaction{}, err
	}

	account, err := s.repo.Get(ctx, phone)
	if err != nil {
		return domain.Account{}, domain.Transaction{}, err
	}

	var from *domain.Card

	for i := range account.Cards {
		if account.Cards[i].ID == arg.FromCardID {
			from = &account.Cards[i]
			break
		}
	}

	if from == nil {
		return domain.Account{}, domain.Transaction{}, domain.ErrCardNotFound
	}

	if from.IsBlocked {
		l.Info().Str("card", from.ID).Msg("transfer from blocked card rejected")
		return domain.Account{}, domain.Transaction{}, domain.ErrCardBlocked
	}

	if arg.Amount > account.Balance {
		return domain.Account{}, domain.Transaction{}, domain.ErrInsufficientBalance
	}

	transaction := domain.Transaction{
		ID:     uuid.NewString(),
		Name:   arg.Type.CategoryName(),
		Amount: -arg.Amount,
		Icon:   arg.Type.Icon(),
		Color:  arg.Type.Color(),
		Date:   time.Now().Format(dateLayout),
	}

	account.Balance -= arg.Amount
	account.Transactions = append([]domain.Transaction{transaction}, account.Transactions...)

	if err := s.repo.Save(ctx, account); err != nil {
		return domain.Account{}, domain.Transaction{}, err
	}

	return account, transaction, nil
}
