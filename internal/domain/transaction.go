package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is an asset bucket transactions are recorded against.
// The set is fixed per deployment; Known reports membership.
type Category string

const (
	CategoryCrypto Category = "Crypto"
	CategoryStock  Category = "Stock"
	CategoryCash   Category = "Cash"
)

// Categories is the configured category set, in display order.
var Categories = []Category{CategoryCrypto, CategoryStock, CategoryCash}

// ParseCategory matches s against the configured set, ignoring case.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Known reports whether c is in the configured category set.
func (c Category) Known() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// Kind is the direction of a transaction.
type Kind string

const (
	KindDeposit  Kind = "deposit"
	KindWithdraw Kind = "withdraw"
)

// ParseKind matches s against the two transaction kinds, ignoring case.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(s) {
	case string(KindDeposit):
		return KindDeposit, true
	case string(KindWithdraw):
		return KindWithdraw, true
	}
	return "", false
}

// Transaction is one recorded deposit or withdrawal.
// Amount is always positive; Kind carries the direction.
type Transaction struct {
	ID       int64           `json:"id" db:"id"`
	Category Category        `json:"category" db:"category"`
	Kind     Kind            `json:"kind" db:"kind"`
	Amount   decimal.Decimal `json:"amount" db:"amount"`
	Date     time.Time       `json:"date" db:"date"`
	Note     string          `json:"note,omitempty" db:"note"`
}

// Valuation is the latest manually asserted market value of a category.
// Overwritten wholesale on update; no history is kept.
type Valuation struct {
	Category Category        `json:"category" db:"category"`
	Value    decimal.Decimal `json:"value" db:"value"`
}

// CategorySums aggregates the transaction log for one category.
type CategorySums struct {
	Category  Category        `json:"category" db:"category"`
	Deposits  decimal.Decimal `json:"deposits" db:"deposits"`
	Withdraws decimal.Decimal `json:"withdraws" db:"withdraws"`
}
