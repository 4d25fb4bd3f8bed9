package core

// CategoryTotal is a per-category running total for chart consumption.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// Summary is the dashboard's derived view over a result set.
type Summary struct {
	TotalIncome  float64         `json:"totalIncome"`
	TotalExpense float64         `json:"totalExpense"`
	ByCategory   []CategoryTotal `json:"byCategory"`
}

// Summarize accumulates income/expense totals and per-category totals
// over a result set. It is pure and deterministic: the same input always
// produces the same output, with categories ordered by first appearance.
// Every record contributes to its category total regardless of type.
func Summarize(txs []Transaction) Summary {
	var s Summary
	index := make(map[string]int, len(txs))
	for _, tx := range txs {
		if tx.Type == Income {
			s.TotalIncome += tx.Amount
		} else {
			s.TotalExpense += tx.Amount
		}
		i, seen := index[tx.Category]
		if !seen {
			i = len(s.ByCategory)
			index[tx.Category] = i
			s.ByCategory = append(s.ByCategory, CategoryTotal{Category: tx.Category})
		}
		s.ByCategory[i].Total += tx.Amount
	}
	return s
}
