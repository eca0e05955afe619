package models

// Columns is the exact header a source table must carry.
var Columns = []string{
	"transaction_id",
	"bill_id",
	"date",
	"store_id",
	"store_location",
	"customer_id",
	"customer_segment",
	"product_id",
	"product_category",
	"product_name",
	"quantity",
	"unit_price",
	"payment_method",
	"discount_applied",
	"channel",
}

// RawRecord is one CSV row exactly as read, before any parsing.
type RawRecord struct {
	TransactionID   string
	BillID          string
	Date            string
	StoreID         string
	StoreLocation   string
	CustomerID      string
	CustomerSegment string
	ProductID       string
	ProductCategory string
	ProductName     string
	Quantity        string
	UnitPrice       string
	PaymentMethod   string
	DiscountApplied string
	Channel         string
}

// RecordFromRow maps a row onto a RawRecord using the column positions in index.
func RecordFromRow(row []string, index map[string]int) RawRecord {
	get := func(col string) string {
		if i, ok := index[col]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}
	return RawRecord{
		TransactionID:   get("transaction_id"),
		BillID:          get("bill_id"),
		Date:            get("date"),
		StoreID:         get("store_id"),
		StoreLocation:   get("store_location"),
		CustomerID:      get("customer_id"),
		CustomerSegment: get("customer_segment"),
		ProductID:       get("product_id"),
		ProductCategory: get("product_category"),
		ProductName:     get("product_name"),
		Quantity:        get("quantity"),
		UnitPrice:       get("unit_price"),
		PaymentMethod:   get("payment_method"),
		DiscountApplied: get("discount_applied"),
		Channel:         get("channel"),
	}
}
