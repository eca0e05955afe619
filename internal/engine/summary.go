package engine

import "urbanmart-dashboard/internal/models"

// Summarize computes the headline KPIs over items. Every ratio is derived
// from sums so the figures agree with any grouped rollup of the same rows.
func Summarize(items []LineItem) models.Summary {
	var s models.Summary
	perCustomer := make(map[string]int)
	transactions := make(map[string]struct{})

	for _, li := range items {
		s.Revenue += li.LineRevenue()
		s.GrossRevenue += li.GrossRevenue()
		s.Discount += li.DiscountApplied
		s.Cost += li.Cost()
		s.Profit += li.Profit()
		s.Units += li.Quantity
		s.LineItems++

		transactions[li.TransactionID] = struct{}{}
		perCustomer[li.CustomerID]++
	}

	s.Transactions = len(transactions)
	s.Customers = len(perCustomer)

	// A repeat customer has more than one line item, whether or not the
	// lines share a transaction.
	var repeat int
	for _, lines := range perCustomer {
		if lines > 1 {
			repeat++
		}
	}

	s.DiscountRate = percent(s.Discount, s.GrossRevenue)
	s.ProfitMargin = percent(s.Profit, s.Revenue)
	s.AvgOrderValue = ratio(s.Revenue, float64(s.Transactions))
	s.TransactionsPerCustomer = ratio(float64(s.Transactions), float64(s.Customers))
	s.CustomerLifetimeValue = ratio(s.Revenue, float64(s.Customers))
	s.RepeatCustomerRate = percent(float64(repeat), float64(s.Customers))
	return s
}
