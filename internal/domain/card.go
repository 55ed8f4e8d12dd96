package domain

import "errors"

var (
	// ErrCardNotFound indicates that the card is not found on the account.
	ErrCardNotFound = errors.New("card not found")
	// ErrInvalidSelection indicates an incomplete card issuance selection.
	ErrInvalidSelection = errors.New("invalid card selection")
	// ErrCardBlocked indicates that the operation requires an unblocked card.
	ErrCardBlocked = errors.New("card is blocked")
)

// CardType is the physical form of a card.
type CardType string

// Constants for all supported card types.
const (
	CardTypePlastic CardType = "plastic"
	CardTypeVirtual CardType = "virtual"
)

// Valid returns true if the card type is supported.
func (t CardType) Valid() bool {
	return t == CardTypePlastic || t == CardTypeVirtual
}

// PaymentSystem is the payment network of a card.
type PaymentSystem string

// Constants for all supported payment systems.
const (
	PaymentSystemMastercard PaymentSystem = "mastercard"
	PaymentSystemVisa       PaymentSystem = "visa"
	PaymentSystemMir        PaymentSystem = "mir"
)

// Valid returns true if the payment system is supported.
func (p PaymentSystem) Valid() bool {
	return p == PaymentSystemMastercard || p == PaymentSystemVisa || p == PaymentSystemMir
}

// CardVariant is the product variant of a card.
type CardVariant string

// Constants for all supported card variants.
const (
	CardVariantDebit       CardVariant = "debit"
	CardVariantCredit      CardVariant = "credit"
	CardVariantChild       CardVariant = "child"
	CardVariantYouth       CardVariant = "youth"
	CardVariantSuperCredit CardVariant = "super-credit"
)

// Valid returns true if the card variant is supported.
func (v CardVariant) Valid() bool {
	switch v {
	case CardVariantDebit, CardVariantCredit, CardVariantChild, CardVariantYouth, CardVariantSuperCredit:
		return true
	}

	return false
}

var variantNames = map[CardVariant]string{
	CardVariantDebit:       "Дебетовая карта",
	CardVariantCredit:      "Кредитная карта",
	CardVariantChild:       "Детская карта",
	CardVariantYouth:       "Молодёжная карта",
	CardVariantSuperCredit: "Суперкредитная карта",
}

// Card holds synthetic card data. Type, PaymentSystem and Variant are
// fixed at issuance.
type Card struct {
	ID            string        `json:"id"`
	Type          CardType      `json:"type"`
	PaymentSystem PaymentSystem `json:"paymentSystem"`
	Variant       CardVariant   `json:"variant"`
	// Number is the masked display form, FullNumber the complete
	// 16-digit identifier in four groups of four. Cosmetic only,
	// not a real PAN.
	Number     string `json:"number"`
	FullNumber string `json:"fullNumber"`
	CVV        string `json:"cvv"`
	ExpiryDate string `json:"expiryDate"`
	CustomName string `json:"customName,omitempty"`
	IsBlocked  bool   `json:"isBlocked"`
	// Limit is a spending cap in whole currency units; nil means
	// unlimited. Stored for display, not enforced against transfers.
	Limit *int64 `json:"limit,omitempty"`
}

// DisplayName returns the user-assigned label or the variant default.
func (c Card) DisplayName() string {
	if c.CustomName != "" {
		return c.CustomName
	}

	return variantNames[c.Variant]
}
