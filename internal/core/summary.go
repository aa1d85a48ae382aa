package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
	Count  int    `json:"count"`
}

// Total sums the amounts of expenses.
func Total(expenses []Expense) Money {
	var total Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}
