package engine

import (
	"fmt"
	"time"
)

type row struct {
	txn      string
	bill     string
	date     string
	store    string
	customer string
	segment  string
	category string
	product  string
	payment  string
	channel  string
	qty      int
	price    float64
	discount float64
}

func (r row) item() LineItem {
	date, err := time.Parse(time.DateOnly, r.date)
	if err != nil {
		panic(err)
	}
	li := LineItem{
		TransactionID:   r.txn,
		BillID:          r.bill,
		Date:            date,
		StoreLocation:   r.store,
		CustomerID:      r.customer,
		CustomerSegment: r.segment,
		ProductCategory: r.category,
		ProductName:     r.product,
		PaymentMethod:   r.payment,
		Channel:         r.channel,
		Quantity:        r.qty,
		UnitPrice:       r.price,
		DiscountApplied: r.discount,
	}
	return li.derive()
}

func items(rows ...row) []LineItem {
	out := make([]LineItem, len(rows))
	for i, r := range rows {
		out[i] = r.item()
	}
	return out
}

// threeRows is the canonical A/A/B fixture: total revenue 30, A=24, B=6.
func threeRows() []LineItem {
	return items(
		row{txn: "T1", bill: "B1", date: "2025-01-06", store: "A", customer: "C1", segment: "Regular", category: "Grocery", product: "Rice", payment: "Cash", channel: "In-store", qty: 2, price: 10},
		row{txn: "T1", bill: "B1", date: "2025-01-06", store: "A", customer: "C1", segment: "Regular", category: "Snacks", product: "Chips", payment: "Cash", channel: "In-store", qty: 1, price: 5, discount: 1},
		row{txn: "T2", bill: "B2", date: "2025-01-07", store: "B", customer: "C2", segment: "Student", category: "Grocery", product: "Milk", payment: "UPI", channel: "Online", qty: 3, price: 2},
	)
}

// week builds one row per day for seven consecutive days starting on the
// given date, with revenue growing by day.
func week(start string) []LineItem {
	first, err := time.Parse(time.DateOnly, start)
	if err != nil {
		panic(err)
	}
	out := make([]LineItem, 0, 7)
	for i := range 7 {
		d := first.AddDate(0, 0, i)
		out = append(out, row{
			txn:      fmt.Sprintf("T%d", i),
			bill:     fmt.Sprintf("B%d", i),
			date:     d.Format(time.DateOnly),
			store:    "A",
			customer: "C1",
			channel:  "In-store",
			qty:      1,
			price:    float64(i + 1),
		}.item())
	}
	return out
}

func allTime() Criteria {
	return Criteria{
		From: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}
