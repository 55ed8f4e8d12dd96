package domain

import "errors"

var (
	// ErrInvalidTransfer is the single user-facing transfer error.
	ErrInvalidTransfer = errors.New("invalid transfer")
	// ErrEmptyTransferFields indicates missing transfer fields.
	ErrEmptyTransferFields = errors.New("empty transfer fields")
	// ErrNonPositiveAmount indicates a zero or negative transfer amount.
	ErrNonPositiveAmount = errors.New("non-positive amount")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Transaction holds one immutable balance change record. Icon and Color
// are presentation hints stored with the record.
type Transaction struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Amount int64  `json:"amount"` // negative = debit, positive = credit
	Icon   string `json:"icon"`
	Color  string `json:"color"`
	Date   string `json:"date"`
}

// TransferType selects the transfer category.
type TransferType string

// Constants for all supported transfer types.
const (
	TransferTypeOwn   TransferType = "own"
	TransferTypeCard  TransferType = "card"
	TransferTypePhone TransferType = "phone"
	TransferTypeBank  TransferType = "bank"
)

// Valid returns true if the transfer type is supported.
func (t TransferType) Valid() bool {
	switch t {
	case TransferTypeOwn, TransferTypeCard, TransferTypePhone, TransferTypeBank:
		return true
	}

	return false
}

// CategoryName returns the stored transaction category label.
func (t TransferType) CategoryName() string {
	switch t {
	case TransferTypeOwn:
		return "Между своими счетами"
	case TransferTypeCard:
		return "Перевод по номеру карты"
	case TransferTypePhone:
		return "Перевод по номеру телефона"
	case TransferTypeBank:
		return "Банковский перевод"
	}

	return ""
}

// Icon returns the stored presentation icon name.
func (t TransferType) Icon() string {
	switch t {
	case TransferTypeOwn:
		return "CreditCard"
	case TransferTypeCard:
		return "CreditCard"
	case TransferTypePhone:
		return "Smartphone"
	case TransferTypeBank:
		return "Landmark"
	}

	return ""
}

// Color returns the stored presentation gradient.
func (t TransferType) Color() string {
	switch t {
	case TransferTypeOwn:
		return "from-primary to-secondary"
	case TransferTypeCard:
		return "from-accent to-secondary"
	case TransferTypePhone:
		return "from-secondary to-accent"
	case TransferTypeBank:
		return "from-primary to-accent"
	}

	return ""
}

// CreateTransferParams is the input data for the transfer operation.
type CreateTransferParams struct {
	FromCardID string       `json:"from_card_id"`
	Type       TransferType `json:"type"`
	// Target is the raw destination descriptor: a card number, phone
	// number or routing text depending on Type. Not format validated.
	Target string `json:"target"`
	Amount int64  `json:"amount"` // must be positive
}
