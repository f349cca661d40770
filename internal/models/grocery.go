package models

import "time"

// DateLayout is the calendar date format used for grocery entries.
const DateLayout = "2006-01-02"

// GroceryEntry is a single grocery/budget line. A negative amount is an
// expense, anything else counts as income.
type GroceryEntry struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID   string    `json:"ownerId" gorm:"index;type:varchar(36);not null"`
	Item      string    `json:"item" gorm:"type:varchar(255);not null"`
	Amount    float64   `json:"amount" gorm:"not null"`
	Date      string    `json:"date" gorm:"index;type:varchar(10);not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsExpense reports whether the entry counts against the balance.
func (e GroceryEntry) IsExpense() bool {
	return e.Amount < 0
}

// Summary holds the income/expense/balance tiles of the dashboard.
type Summary struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}
