// Package domain provides defenitions of all entities.
package domain

import "errors"

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrPhoneAlreadyRegistered indicates that another account owns the phone.
	ErrPhoneAlreadyRegistered = errors.New("phone already registered")
)

// Account holds the full state owned by one phone number.
type Account struct {
	Phone        string        `json:"phone"`
	Name         string        `json:"name"`
	Email        string        `json:"email,omitempty"`
	Balance      int64         `json:"balance"`
	Cards        []Card        `json:"cards"`
	Transactions []Transaction `json:"transactions"`
	// FamilyCode is set once the account has created or joined a family.
	FamilyCode string `json:"familyCode,omitempty"`
	// FamilyMembers is non-nil only on the account that created the
	// family. Members who joined carry just the shared FamilyCode.
	FamilyMembers []FamilyMember `json:"familyMembers"`
	IsPremium     bool           `json:"isPremium"`
}

// UpdateProfileParams is the input data to update account profile fields.
// Empty fields are left unchanged.
type UpdateProfileParams struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}
