package domain

import "errors"

var (
	// ErrFamilyCodeNotFound indicates that no account carries the given family code.
	ErrFamilyCodeNotFound = errors.New("family code not found")
)

// FamilyMember is one entry of the owner's member list.
type FamilyMember struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}
