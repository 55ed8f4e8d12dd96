// Package cardservice manages business logic layer of cards.
package cardservice

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pr-poehali-dev/yugan-bank-registration/internal/domain"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/randompkg"
)

// All issued cards carry the same display expiry.
const cardExpiry = "12/28"

// Repo provides data access layer interface needed by card service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package cardservice
type Repo interface {
	Get(ctx context.Context, phone string) (domain.Account, error)
	Save(ctx context.Context, account domain.Account) error
}

// Service facilitates card service layer logic.
type Service struct {
	repo Repo
}

// New returns card service struct to manage card business logic.
func New(r Repo) *Service {
	return &Service{repo: r}
}

// Issue synthesizes a new card from a completed wizard selection and
// appends it to the account. The number is a cosmetic identifier, not
// checked against any checksum scheme.
func (s *Service) Issue(ctx context.Context, phone string, cardType domain.CardType, system domain.PaymentSystem, variant domain.CardVariant) (domain.Account, domain.Card, error) {
	l := zerolog.Ctx(ctx)

	if !cardType.Valid() || !system.Valid() || !variant.Valid() {
		l.Info().
			Str("type", string(cardType)).
			Str("paymentSystem", string(system)).
			Str("variant", string(variant)).
			Msg("incomplete card selection")

		return domain.Account{}, domain.Card{}, domain.ErrInvalidSelection
	}

	account, err := s.repo.Get(ctx, phone)
	if err != nil {
		return domain.Account{}, domain.Card{}, err
	}

	full := cardNumber()

	card := domain.Card{
		ID:            uuid.NewString(),
		Type:          cardType,
		PaymentSystem: system,
		Variant:       variant,
		Number:        maskedNumber(full),
		FullNumber:    full,
		CVV:           randompkg.Digits(3),
		ExpiryDate:    cardExpiry,
	}

	account.Cards = append(account.Cards, card)

	if err := s.repo.Save(ctx, account); err != nil {
		return domain.Account{}, domain.Card{}, err
	}

	return account, card, nil
}

// Rename sets the user-assigned card label.
func (s *Service) Rename(ctx context.Context, phone, cardID, name string) (domain.Account, error) {
	return s.update(ctx, phone, cardID, func(c *domain.Card) {
		c.CustomName = name
	})
}

// SetLimit sets or clears the spending cap. The cap is display-only and
// not validated against the current balance.
func (s *Service) SetLimit(ctx context.Context, phone, cardID string, limit *int64) (domain.Account, error) {
	return s.update(ctx, phone, cardID, func(c *domain.Card) {
		c.Limit = limit
	})
}

// ToggleBlock flips the blocked flag. Any card can be toggled any
// number of times.
func (s *Service) ToggleBlock(ctx context.Context, phone, cardID string) (domain.Account, error) {
	return s.update(ctx, phone, cardID, func(c *domain.Card) {
		c.IsBlocked = !c.IsBlocked
	})
}

// Delete removes the card from the account. Past transactions are not
// altered.
func (s *Service) Delete(ctx context.Context, phone, cardID string) (domain.Account, error) {
	account, err := s.repo.Get(ctx, phone)
	if err != nil {
		return account, err
	}

	idx := -1

	for i := range account.Cards {
		if account.Cards[i].ID == cardID {
			idx = i
			break
		}
	}

	if idx < 0 {
		return domain.Account{}, domain.ErrCardNotFound
	}

	account.Cards = append(account.Cards[:idx], account.Cards[idx+1:]...)

	if err := s.repo.Save(ctx, account); err != nil {
		return domain.Account{}, err
	}

	return account, nil
}

func (s *Service) update(ctx context.Context, phone, cardID string, apply func(*domain.Card)) (domain.Account, error) {
	account, err := s.repo.Get(ctx, phone)
	if err != nil {
		return account, err
	}

	found := false

	for i := range account.Cards {
		if account.Cards[i].ID == cardID {
			apply(&account.Cards[i])
			found = true

			break
		}
	}

	if !found {
		return domain.Account{}, domain.ErrCardNotFound
	}

	if err := s.repo.Save(ctx, account); err != nil {
		return domain.Account{}, err
	}

	return account, nil
}

func cardNumber() string {
	return randompkg.Digits(4) + " " + randompkg.Digits(4) + " " + randompkg.Digits(4) + " " + randompkg.Digits(4)
}

func maskedNumber(full string) string {
	return "•••• •••• •••• " + full[len(full)-4:]
}
