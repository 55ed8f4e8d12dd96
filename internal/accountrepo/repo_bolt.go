// Package accountrepo manages repository layer of accounts.
//
// Each account is stored as one serialized record under the
// "account:<phone>" key. A secondary bucket maps family codes to the
// phones carrying them so that family lookups avoid full-store scans;
// the index is maintained inside the same write transaction as every
// Save and Delete and rebuilt by Reconcile at startup.
package accountrepo

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"

	"github.com/pr-poehali-dev/yugan-bank-registration/internal/domain"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/errorspkg"
)

const keyPrefix = "account:"

var (
	accountsBucket    = []byte("accounts")
	familyCodesBucket = []byte("family_codes")
)

// RepoBolt facilitates account repository layer logic.
type RepoBolt struct {
	db *bolt.DB
}

// NewRepoBolt returns account RepoBolt with its buckets created.
func NewRepoBolt(db *bolt.DB) (*RepoBolt, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(accountsBucket); err != nil {
			return err
		}

		_, err := tx.CreateBucketIfNotExists(familyCodesBucket)

		return err
	})
	if err != nil {
		return nil, err
	}

	return &RepoBolt{db: db}, nil
}

func accountKey(phone string) []byte {
	return []byte(keyPrefix + phone)
}

// Get returns the account stored for the given phone.
func (r *RepoBolt) Get(ctx context.Context, phone string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	var a domain.Account

	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(accountsBucket).Get(accountKey(phone))
		if v == nil {
			return domain.ErrAccountNotFound
		}

		return json.Unmarshal(v, &a)
	})

	if err != nil {
		if err == domain.ErrAccountNotFound {
			return a, err
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

// Save serializes the account and stores it under its phone key. When
// the phone key changed, removing the stale key is the caller's job.
func (r *RepoBolt) Save(ctx context.Context, account domain.Account) error {
	l := zerolog.Ctx(ctx)

	value, err := json.Marshal(account)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	err = r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(accountsBucket)
		key := accountKey(account.Phone)

		var prevCode string

		if prev := b.Get(key); prev != nil {
			var prevAccount domain.Account
			if err := json.Unmarshal(prev, &prevAccount); err == nil {
				prevCode = prevAccount.FamilyCode
			}
		}

		if err := b.Put(key, value); err != nil {
			return err
		}

		return updateCodeIndex(tx, account.Phone, prevCode, account.FamilyCode)
	})

	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

// Delete removes the record for the given phone. Deleting an absent
// record is a no-op.
func (r *RepoBolt) Delete(ctx context.Context, phone string) error {
	l := zerolog.Ctx(ctx)

	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(accountsBucket)
		key := accountKey(phone)

		v := b.Get(key)
		if v == nil {
			return nil
		}

		var a domain.Account
		if err := json.Unmarshal(v, &a); err == nil && a.FamilyCode != "" {
			if err := updateCodeIndex(tx, phone, a.FamilyCode, ""); err != nil {
				return err
			}
		}

		return b.Delete(key)
	})

	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

// List returns every stored account. Malformed records are skipped.
func (r *RepoBolt) List(ctx context.Context) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	var accounts []domain.Account

	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(accountsBucket).ForEach(func(k, v []byte) error {
			var a domain.Account

			if err := json.Unmarshal(v, &a); err != nil {
				l.Warn().Str("key", string(k)).Err(err).Msg("skipping malformed account record")
				return nil
			}

			accounts = append(accounts, a)

			return nil
		})
	})

	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return accounts, nil
}

// PhonesByCode returns the phones of all accounts carrying the given
// family code, per the secondary index.
func (r *RepoBolt) PhonesByCode(ctx context.Context, code string) ([]string, error) {
	l := zerolog.Ctx(ctx)

	var phones []string

	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(familyCodesBucket).Get([]byte(code))
		if v == nil {
			return nil
		}

		return json.Unmarshal(v, &phones)
	})

	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return phones, nil
}

// Reconcile rebuilds the family code index from the primary bucket and
// prunes member list entries whose accounts are gone or no longer carry
// the owner's code. It is the crash recovery pass for the non-atomic
// family join and profile rename writes and runs at startup.
func (r *RepoBolt) Reconcile(ctx context.Context) error {
	l := zerolog.Ctx(ctx)

	err := r.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(familyCodesBucket); err != nil {
			return err
		}

		fb, err := tx.CreateBucket(familyCodesBucket)
		if err != nil {
			return err
		}

		b := tx.Bucket(accountsBucket)

		codes := map[string][]string{}
		byPhone := map[string]domain.Account{}

		if err := b.ForEach(func(k, v []byte) error {
			var a domain.Account

			if err := json.Unmarshal(v, &a); err != nil {
				l.Warn().Str("key", string(k)).Err(err).Msg("skipping malformed account record")
				return nil
			}

			byPhone[a.Phone] = a

			if a.FamilyCode != "" {
				codes[a.FamilyCode] = append(codes[a.FamilyCode], a.Phone)
			}

			return nil
		}); err != nil {
			return err
		}

		for code, phones := range codes {
			value, err := json.Marshal(phones)
			if err != nil {
				return err
			}

			if err := fb.Put([]byte(code), value); err != nil {
				return err
			}
		}

		for _, owner := range byPhone {
			if owner.FamilyMembers == nil {
				continue
			}

			kept := owner.FamilyMembers[:0]

			for _, m := range owner.FamilyMembers {
				member, ok := byPhone[m.Phone]
				if ok && member.FamilyCode == owner.FamilyCode {
					kept = append(kept, m)
				}
			}

			if len(kept) == len(owner.FamilyMembers) {
				continue
			}

			l.Info().
				Str("owner", owner.Phone).
				Int("pruned", len(owner.FamilyMembers)-len(kept)).
				Msg("pruned stale family members")

			owner.FamilyMembers = kept

			value, err := json.Marshal(owner)
			if err != nil {
				return err
			}

			if err := b.Put(accountKey(owner.Phone), value); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

// updateCodeIndex moves a phone between family code index entries
// within the caller's write transaction.
func updateCodeIndex(tx *bolt.Tx, phone, oldCode, newCode string) error {
	if oldCode == newCode {
		return nil
	}

	fb := tx.Bucket(familyCodesBucket)

	if oldCode != "" {
		var phones []string

		if v := fb.Get([]byte(oldCode)); v != nil {
			if err := json.Unmarshal(v, &phones); err != nil {
				return err
			}
		}

		kept := phones[:0]

		for _, p := range phones {
			if p != phone {
				kept = append(kept, p)
			}
		}

		if len(kept) == 0 {
			if err := fb.Delete([]byte(oldCode)); err != nil {
				return err
			}
		} else {
			value, err := json.Marshal(kept)
			if err != nil {
				return err
			}

			if err := fb.Put([]byte(oldCode), value); err != nil {
				return err
			}
		}
	}

	if newCode != "" {
		var phones []string

		if v := fb.Get([]byte(newCode)); v != nil {
			if err := json.Unmarshal(v, &phones); err != nil {
				return err
			}
		}

		for _, p := range phones {
			if p == phone {
				return nil
			}
		}

		phones = append(phones, phone)

		value, err := json.Marshal(phones)
		if err != nil {
			return err
		}

		if err := fb.Put([]byte(newCode), value); err != nil {
			return err
		}
	}

	return nil
}
