package models

import "time"

// Transaction is one retail order line, immutable once loaded.
type Transaction struct {
	OrderID      string
	OrderDate    time.Time
	ShipDate     time.Time
	CustomerID   string
	CustomerName string
	Region       string
	State        string
	City         string
	Segment      string
	Category     string
	SubCategory  string
	Sales        float64

	// Calendar attributes derived once from OrderDate at load time.
	Month   time.Month
	Year    int
	Weekday time.Weekday
	Season  string
}

// Stats describes one loaded dataset.
type Stats struct {
	RowsLoaded        int       `json:"rows_loaded"`
	RowsRejected      int       `json:"rows_rejected"`
	DistinctCustomers int       `json:"distinct_customers"`
	FirstOrderDate    time.Time `json:"first_order_date"`
	LastOrderDate     time.Time `json:"last_order_date"`
	TotalSales        float64   `json:"total_sales"`
}
