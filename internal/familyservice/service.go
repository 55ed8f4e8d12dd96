// Package familyservice manages business logic layer of family linking.
//
// A family is a shared 6-character code: the creating account (the
// owner) also keeps a member list, joined accounts carry only the code.
// The join is a two-record update without a transaction across both
// writes; the repository reconciliation pass at startup is the
// documented recovery for a failure in between.
package familyservice

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pr-poehali-dev/yugan-bank-registration/internal/domain"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/errorspkg"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/randompkg"
)

const (
	codeLength      = 6
	maxCodeAttempts = 5
)

// Repo provides data access layer interface needed by family service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package familyservice
type Repo interface {
	Get(ctx context.Context, phone string) (domain.Account, error)
	Save(ctx context.Context, account domain.Account) error
	PhonesByCode(ctx context.Context, code string) ([]string, error)
}

// Service facilitates family service layer logic.
type Service struct {
	repo Repo
}

// New returns family service struct to manage family business logic.
func New(r Repo) *Service {
	return &Service{repo: r}
}

// Create generates a family code for the account and marks it as the
// owner. Calling it again is a no-op: an existing code is never
// regenerated.
func (s *Service) Create(ctx context.Context, phone string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	account, err := s.repo.Get(ctx, phone)
	if err != nil {
		return account, err
	}

	if account.FamilyCode != "" {
		return account, nil
	}

	var code string

	for attempt := 0; ; attempt++ {
		if attempt == maxCodeAttempts {
			l.Error().Msg("family code generation exhausted attempts")
			return domain.Account{}, errorspkg.ErrInternal
		}

		code = randompkg.Code(codeLength)

		phones, err := s.repo.PhonesByCode(ctx, code)
		if err != nil {
			return domain.Account{}, err
		}

		if len(phones) == 0 {
			break
		}
	}

	account.FamilyCode = code

	if account.FamilyMembers == nil {
		account.FamilyMembers = []domain.FamilyMember{}
	}

	if err := s.repo.Save(ctx, account); err != nil {
		return domain.Account{}, err
	}

	return account, nil
}

// Join links the account into the family identified by the code. The
// owner record is updated first, then the joining account is stamped
// with the code.
func (s *Service) Join(ctx context.Context, phone, code string) (domain.Account, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	account, err := s.repo.Get(ctx, phone)
	if err != nil {
		return account, err
	}

	if account.FamilyCode == code {
		return account, nil
	}

	phones, err := s.repo.PhonesByCode(ctx, code)
	if err != nil {
		return domain.Account{}, err
	}

	if len(phones) == 0 {
		return domain.Account{}, domain.ErrFamilyCodeNotFound
	}

	owner, err := s.owner(ctx, phones)
	if err != nil {
		return domain.Account{}, err
	}

	joined := false

	for _, m := range owner.FamilyMembers {
		if m.Phone == account.Phone {
			joined = true
			break
		}
	}

	if !joined {
		owner.FamilyMembers = append(owner.FamilyMembers, domain.FamilyMember{
			Phone: account.Phone,
			Name:  account.Name,
		})

		if err := s.repo.Save(ctx, owner); err != nil {
			return domain.Account{}, err
		}
	}

	account.FamilyCode = code

	if err := s.repo.Save(ctx, account); err != nil {
		return domain.Account{}, err
	}

	return account, nil
}

// View returns all accounts sharing the caller's family code, the
// caller included, deduplicated by phone.
func (s *Service) View(ctx context.Context, phone string) ([]domain.Account, error) {
	account, err := s.repo.Get(ctx, phone)
	if err != nil {
		return nil, err
	}

	accounts := []domain.Account{account}

	if account.FamilyCode == "" {
		return accounts, nil
	}

	phones, err := s.repo.PhonesByCode(ctx, account.FamilyCode)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{account.Phone: true}

	for _, p := range phones {
		if seen[p] {
			continue
		}

		seen[p] = true

		member, err := s.repo.Get(ctx, p)
		if err == domain.ErrAccountNotFound {
			continue
		}

		if err != nil {
			return nil, err
		}

		accounts = append(accounts, member)
	}

	return accounts, nil
}

// owner resolves the family owner among the accounts carrying the code.
// The owner is the record holding a member list; the first member found
// stands in if the owner record was lost.
func (s *Service) owner(ctx context.Context, phones []string) (domain.Account, error) {
	var fallback *domain.Account

	for _, p := range phones {
		a, err := s.repo.Get(ctx, p)
		if err == domain.ErrAccountNotFound {
			continue
		}

		if err != nil {
			return domain.Account{}, err
		}

		if a.FamilyMembers != nil {
			return a, nil
		}

		if fallback == nil {
			fallback = &a
		}
	}

	if fallback == nil {
		return domain.Account{}, domain.ErrFamilyCodeNotFound
	}

	return *fallback, nil
}
