package services

import (
	"math"

	"grocerytracker/internal/models"
)

// Summarize derives the dashboard tiles from entries. Sums are taken in
// integer cents so the 2 decimal results are exact.
func Summarize(entries []models.GroceryEntry) models.Summary {
	var income, expense int64
	for _, e := range entries {
		if e.IsExpense() {
			expense += toCents(e.Amount)
		} else {
			income += toCents(e.Amount)
		}
	}
	return models.Summary{
		Income:  fromCents(income),
		Expense: fromCents(expense),
		Balance: fromCents(income + expense),
	}
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromCents(cents int64) float64 {
	return float64(cents) / 100
}

func roundCents(amount float64) float64 {
	return fromCents(toCents(amount))
}
