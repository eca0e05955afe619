package models

type GroupResult struct {
	Keys                   []string `json:"keys"`
	Label                  string   `json:"label"`
	Revenue                float64  `json:"line_revenue"`
	GrossRevenue           float64  `json:"gross_revenue"`
	Discount               float64  `json:"discount_applied"`
	Cost                   float64  `json:"cost"`
	Profit                 float64  `json:"profit"`
	Quantity               int      `json:"quantity"`
	LineItems              int      `json:"line_items"`
	Transactions           int      `json:"transactions"`
	Customers              int      `json:"customers"`
	MeanRevenue            float64  `json:"mean_line_revenue"`
	ProfitMargin           float64  `json:"profit_margin_pct"`
	DiscountRate           float64  `json:"discount_rate_pct"`
	AvgTransactionValue    float64  `json:"avg_transaction_value"`
	AvgItemsPerTransaction float64  `json:"avg_items_per_transaction"`
}

type BasketResult struct {
	Keys              []string `json:"keys"`
	Label             string   `json:"label"`
	Baskets           int      `json:"baskets"`
	Revenue           float64  `json:"line_revenue"`
	AvgBasketValue    float64  `json:"avg_basket_value"`
	AvgLinesPerBasket float64  `json:"avg_lines_per_basket"`
	AvgUnitsPerBasket float64  `json:"avg_units_per_basket"`
}

type Summary struct {
	Revenue                 float64 `json:"line_revenue"`
	GrossRevenue            float64 `json:"gross_revenue"`
	Discount                float64 `json:"discount_applied"`
	DiscountRate            float64 `json:"discount_rate_pct"`
	Cost                    float64 `json:"cost"`
	Profit                  float64 `json:"profit"`
	ProfitMargin            float64 `json:"profit_margin_pct"`
	LineItems               int     `json:"line_items"`
	Units                   int     `json:"units"`
	Transactions            int     `json:"transactions"`
	Customers               int     `json:"customers"`
	AvgOrderValue           float64 `json:"avg_order_value"`
	TransactionsPerCustomer float64 `json:"transactions_per_customer"`
	CustomerLifetimeValue   float64 `json:"customer_lifetime_value"`
	RepeatCustomerRate      float64 `json:"repeat_customer_rate_pct"`
}

type FilterOptions struct {
	Stores         []string `json:"stores"`
	Channels       []string `json:"channels"`
	Categories     []string `json:"categories"`
	Segments       []string `json:"segments"`
	PaymentMethods []string `json:"payment_methods"`
	MinDate        string   `json:"min_date"`
	MaxDate        string   `json:"max_date"`
	Rows           int      `json:"rows"`
}
