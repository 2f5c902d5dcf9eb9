package dataset

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"
)

const validHeader = "Order ID,Order Date,Ship Date,Customer ID,Customer Name,Region,State,City,Segment,Category,Sub-Category,Sales"

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "test*.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}

func newTestLoader() *Loader {
	return NewLoader(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestLoader_Load_ValidData(t *testing.T) {
	csv := validHeader + `
CA-2016-152156,11/8/2016,11/11/2016,CG-12520,"Gute, Claire",South,Kentucky,Henderson,Consumer,Furniture,Bookcases,261.96
CA-2016-152156,11/8/2016,11/11/2016,CG-12520,"Gute, Claire",South,Kentucky,Henderson,Consumer,Furniture,Chairs,731.94
US-2015-108966,10/11/2015,10/18/2015,SO-20335,Sean O'Donnell,South,Florida,Fort Lauderdale,Consumer,Furniture,Tables,957.5775`

	f := createTempCSV(t, csv)

	ds, err := newTestLoader().Load(context.Background(), f)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(ds.Transactions) != 3 {
		t.Fatalf("loaded %d rows, want 3", len(ds.Transactions))
	}

	tx := ds.Transactions[0]
	if tx.CustomerName != "Gute, Claire" {
		t.Errorf("quoted customer name = %q", tx.CustomerName)
	}
	wantDate := time.Date(2016, 11, 8, 0, 0, 0, 0, time.UTC)
	if !tx.OrderDate.Equal(wantDate) {
		t.Errorf("order date = %v, want %v", tx.OrderDate, wantDate)
	}
	if tx.Sales != 261.96 {
		t.Errorf("sales = %v, want 261.96", tx.Sales)
	}

	// Derived calendar fields are filled at load time.
	if tx.Month != time.November || tx.Year != 2016 {
		t.Errorf("derived month/year = %v/%d", tx.Month, tx.Year)
	}
	if tx.Season != "Fall" {
		t.Errorf("derived season = %q, want Fall", tx.Season)
	}
	if tx.Weekday.String() == "" {
		t.Error("derived weekday should be set")
	}

	if ds.Stats.RowsLoaded != 3 || ds.Stats.RowsRejected != 0 {
		t.Errorf("stats = %+v", ds.Stats)
	}
	if ds.Stats.DistinctCustomers != 2 {
		t.Errorf("distinct customers = %d, want 2", ds.Stats.DistinctCustomers)
	}
	if ds.Stats.FirstOrderDate.Year() != 2015 || ds.Stats.LastOrderDate.Year() != 2016 {
		t.Errorf("date range = %v..%v", ds.Stats.FirstOrderDate, ds.Stats.LastOrderDate)
	}
}

func TestLoader_Load_RowDiagnostics(t *testing.T) {
	csv := validHeader + `
CA-1,11/8/2016,11/11/2016,C1,Ann,South,Kentucky,Henderson,Consumer,Furniture,Bookcases,100.00
CA-2,not-a-date,11/11/2016,C2,Bob,South,Kentucky,Henderson,Consumer,Furniture,Chairs,50.00
CA-3,11/9/2016,11/12/2016,C3,Cyd,South,Kentucky,Henderson,Consumer,Furniture,Tables,oops
CA-4,11/9/2016,11/12/2016,C4,Dee`

	f := createTempCSV(t, csv)

	ds, err := newTestLoader().Load(context.Background(), f)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(ds.Transactions) != 1 {
		t.Fatalf("loaded %d rows, want 1 (bad rows excluded)", len(ds.Transactions))
	}
	if len(ds.Diagnostics) != 3 {
		t.Fatalf("got %d diagnostics, want 3", len(ds.Diagnostics))
	}

	columns := make(map[string]bool)
	for _, d := range ds.Diagnostics {
		columns[d.Column] = true
		if d.Line < 2 {
			t.Errorf("diagnostic line %d should point past the header", d.Line)
		}
	}
	if !columns["order_date"] || !columns["sales"] {
		t.Errorf("diagnostic columns = %v, want order_date and sales", columns)
	}
}

func TestLoader_Load_Errors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{
			name: "empty file",
			csv:  "",
		},
		{
			name: "header only",
			csv:  validHeader,
		},
		{
			name: "missing required column",
			csv:  "Order ID,Order Date,Customer ID\nCA-1,11/8/2016,C1",
		},
		{
			name: "all rows invalid",
			csv:  validHeader + "\nCA-1,bad,bad,C1,Ann,South,KY,H,Consumer,Furniture,Bookcases,1.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createTempCSV(t, tt.csv)
			if _, err := newTestLoader().Load(context.Background(), f); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}

func TestLoader_Load_MissingFile(t *testing.T) {
	if _, err := newTestLoader().Load(context.Background(), "does-not-exist.csv"); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestLoader_Load_Cancelled(t *testing.T) {
	f := createTempCSV(t, validHeader+"\nCA-1,11/8/2016,11/11/2016,C1,Ann,South,KY,H,Consumer,Furniture,Bookcases,1.00")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestLoader().Load(ctx, f); err == nil {
		t.Error("Load() should respect context cancellation")
	}
}

func TestNormalizeColumn(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Order ID", "order_id"},
		{"Sub-Category", "sub_category"},
		{"Customer Name", "customer_name"},
		{"  Sales  ", "sales"},
		{"\ufeffOrder ID", "order_id"},
		{"state", "state"},
		{"Ship  Date", "ship_date"},
	}

	for _, tt := range tests {
		if got := NormalizeColumn(tt.in); got != tt.want {
			t.Errorf("NormalizeColumn(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
