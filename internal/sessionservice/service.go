// Package sessionservice manages business logic layer of sessions.
package sessionservice

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pr-poehali-dev/yugan-bank-registration/internal/domain"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/configpkg"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/tokenpkg"
)

// Repo provides data access layer interface needed by session service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package sessionservice
type Repo interface {
	Get(ctx context.Context, phone string) (domain.Account, error)
	Save(ctx context.Context, account domain.Account) error
	Delete(ctx context.Context, phone string) error
}

// Service facilitates session service layer logic.
type Service struct {
	repo       Repo
	config     configpkg.Config
	TokenMaker tokenpkg.Maker

	// current is the in-memory snapshot for the presentation layer.
	// Single caller, no locking discipline needed.
	current *domain.Account
}

// New returns session service struct to manage session business logic.
func New(repo Repo, config configpkg.Config, tm tokenpkg.Maker) *Service {
	return &Service{
		repo:       repo,
		config:     config,
		TokenMaker: tm,
	}
}

// Login resolves the phone to the stored account or creates a fresh one
// with zero balance. A stored account is returned verbatim: the
// supplied name never overrides the stored name. The returned access
// token authenticates subsequent operations.
func (s *Service) Login(ctx context.Context, phone, name string) (domain.Account, string, time.Time, error) {
	l := zerolog.Ctx(ctx)

	account, err := s.repo.Get(ctx, phone)
	if err == domain.ErrAccountNotFound {
		account = domain.Account{
			Phone:        phone,
			Name:         name,
			Cards:        []domain.Card{},
			Transactions: []domain.Transaction{},
		}

		if err := s.repo.Save(ctx, account); err != nil {
			return domain.Account{}, "", time.Time{}, err
		}

		l.Info().Str("phone", phone).Msg("created account")
	} else if err != nil {
		return domain.Account{}, "", time.Time{}, err
	}

	token, payload, err := s.TokenMaker.CreateToken(account.Phone, s.config.AccessTokenDuration)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, "", time.Time{}, err
	}

	s.current = &account

	return account, token, payload.ExpiredAt, nil
}

// Account returns the stored account for the given phone.
func (s *Service) Account(ctx context.Context, phone string) (domain.Account, error) {
	return s.repo.Get(ctx, phone)
}

// Current returns the in-memory account snapshot, if any.
func (s *Service) Current() (domain.Account, bool) {
	if s.current == nil {
		return domain.Account{}, false
	}

	return *s.current, true
}

// Logout clears the in-memory snapshot. Persisted data is untouched.
func (s *Service) Logout() {
	s.current = nil
}

// DeleteAccount removes the stored record and logs out. Member entries
// referencing this phone on other accounts are left stale and pruned by
// the repository reconciliation pass at next startup.
func (s *Service) DeleteAccount(ctx context.Context, phone string) error {
	if err := s.repo.Delete(ctx, phone); err != nil {
		return err
	}

	if s.current != nil && s.current.Phone == phone {
		s.Logout()
	}

	return nil
}

// UpdateProfile applies the non-empty params to the account. A phone
// change moves the record: the target phone must be free, and the new
// key is written before the old one is deleted, so a crash in between
// leaves a duplicate rather than a loss.
func (s *Service) UpdateProfile(ctx context.Context, phone string, arg domain.UpdateProfileParams) (domain.Account, error) {
	account, err := s.repo.Get(ctx, phone)
	if err != nil {
		return account, err
	}

	if arg.Phone != "" && arg.Phone != phone {
		_, err := s.repo.Get(ctx, arg.Phone)
		if err == nil {
			return domain.Account{}, domain.ErrPhoneAlreadyRegistered
		}

		if err != domain.ErrAccountNotFound {
			return domain.Account{}, err
		}
	}

	if arg.Name != "" {
		account.Name = arg.Name
	}

	if arg.Email != "" {
		account.Email = arg.Email
	}

	if arg.Phone != "" {
		account.Phone = arg.Phone
	}

	if err := s.repo.Save(ctx, account); err != nil {
		return domain.Account{}, err
	}

	if account.Phone != phone {
		if err := s.repo.Delete(ctx, phone); err != nil {
			return domain.Account{}, err
		}
	}

	s.current = &account

	return account, nil
}

// UpgradePremium sets the one-way premium flag. There is no downgrade.
func (s *Service) UpgradePremium(ctx context.Context, phone string) (domain.Account, error) {
	account, err := s.repo.Get(ctx, phone)
	if err != nil {
		return account, err
	}

	if account.IsPremium {
		return account, nil
	}

	account.IsPremium = true

	if err := s.repo.Save(ctx, account); err != nil {
		return domain.Account{}, err
	}

	return account, nil
}
