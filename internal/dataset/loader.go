package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"sales-insights/internal/analytics"
	"sales-insights/internal/errors"
	"sales-insights/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 10
)

// requiredColumns are the canonical names the input file must carry after
// header normalization. Extra columns are ignored.
var requiredColumns = []string{
	"order_id",
	"order_date",
	"ship_date",
	"customer_id",
	"customer_name",
	"region",
	"state",
	"city",
	"segment",
	"category",
	"sub_category",
	"sales",
}

// Dataset is the cleaned transaction table plus the diagnostics produced
// while loading it. Transactions are immutable once loaded: bad rows never
// make it in, so downstream aggregation never sees a missing value.
type Dataset struct {
	Transactions []models.Transaction
	Diagnostics  []*errors.RowError
	Stats        models.Stats
}

type Loader struct {
	logger *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads and cleans the delimited input file. Rows that fail to parse
// are reported as per-row diagnostics and excluded; a file that yields zero
// valid rows is a fatal input error.
func (l *Loader) Load(ctx context.Context, filename string) (*Dataset, error) {
	start := time.Now()
	l.logger.Info("loading dataset", "filename", filename)

	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.InputWrap(err, "open input file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // short rows become row diagnostics, not a fatal error

	header, err := reader.Read()
	if err != nil {
		return nil, errors.InputWrap(err, "read header row")
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{}

	// Read rows in batches and parse each batch on a bounded worker pool.
	line := 1 // header occupied line 1
	batch := make([]rawRow, 0, batchSize)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.InputWrap(err, "read input file")
		}
		line++
		batch = append(batch, rawRow{line: line, record: record})

		if len(batch) >= batchSize {
			if err := l.parseBatch(ctx, batch, cols, ds); err != nil {
				return nil, err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := l.parseBatch(ctx, batch, cols, ds); err != nil {
			return nil, err
		}
	}

	for _, diag := range ds.Diagnostics {
		errors.LogError(l.logger, diag)
	}

	if len(ds.Transactions) == 0 {
		return nil, errors.Input("no valid records found")
	}

	ds.Stats = computeStats(ds)

	duration := time.Since(start)
	l.logger.Info("dataset loaded",
		"rows", ds.Stats.RowsLoaded,
		"rejected", ds.Stats.RowsRejected,
		"customers", ds.Stats.DistinctCustomers,
		"duration", duration,
		"rate", fmt.Sprintf("%.0f rows/sec", float64(ds.Stats.RowsLoaded)/duration.Seconds()))

	return ds, nil
}

type rawRow struct {
	line   int
	record []string
}

type parsedRow struct {
	tx   models.Transaction
	diag *errors.RowError
}

func (l *Loader) parseBatch(ctx context.Context, batch []rawRow, cols columnIndex, ds *Dataset) error {
	results := make([]parsedRow, len(batch))

	var eg errgroup.Group
	eg.SetLimit(maxWorkers)
	for i, row := range batch {
		i, row := i, row
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = parseRow(row, cols)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, res := range results {
		if res.diag != nil {
			ds.Diagnostics = append(ds.Diagnostics, res.diag)
			continue
		}
		ds.Transactions = append(ds.Transactions, res.tx)
	}
	return nil
}

type columnIndex map[string]int

func indexColumns(header []string) (columnIndex, error) {
	cols := make(columnIndex, len(header))
	for i, name := range header {
		cols[NormalizeColumn(name)] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Input(fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}
	return cols, nil
}

func parseRow(row rawRow, cols columnIndex) parsedRow {
	field := func(name string) (string, bool) {
		idx := cols[name]
		if idx >= len(row.record) {
			return "", false
		}
		return strings.TrimSpace(row.record[idx]), true
	}

	var tx models.Transaction
	for _, name := range requiredColumns {
		value, ok := field(name)
		if !ok {
			return parsedRow{diag: errors.NewRowError(row.line, name, "", fmt.Errorf("insufficient columns"))}
		}

		switch name {
		case "order_id":
			tx.OrderID = value
		case "order_date":
			t, err := analytics.ParseDate(value)
			if err != nil {
				return parsedRow{diag: errors.NewRowError(row.line, name, value, err)}
			}
			tx.OrderDate = t
		case "ship_date":
			t, err := analytics.ParseDate(value)
			if err != nil {
				return parsedRow{diag: errors.NewRowError(row.line, name, value, err)}
			}
			tx.ShipDate = t
		case "customer_id":
			tx.CustomerID = value
		case "customer_name":
			tx.CustomerName = value
		case "region":
			tx.Region = value
		case "state":
			tx.State = value
		case "city":
			tx.City = value
		case "segment":
			tx.Segment = value
		case "category":
			tx.Category = value
		case "sub_category":
			tx.SubCategory = value
		case "sales":
			sales, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return parsedRow{diag: errors.NewRowError(row.line, name, value, err)}
			}
			tx.Sales = sales
		}
	}

	if err := analytics.DeriveCalendar(&tx); err != nil {
		return parsedRow{diag: errors.NewRowError(row.line, "order_date", tx.OrderDate.Format("2006-01-02"), err)}
	}

	return parsedRow{tx: tx}
}

func computeStats(ds *Dataset) models.Stats {
	stats := models.Stats{
		RowsLoaded:   len(ds.Transactions),
		RowsRejected: len(ds.Diagnostics),
	}

	customers := make(map[string]bool)
	for i, tx := range ds.Transactions {
		customers[tx.CustomerID] = true
		stats.TotalSales += tx.Sales
		if i == 0 || tx.OrderDate.Before(stats.FirstOrderDate) {
			stats.FirstOrderDate = tx.OrderDate
		}
		if i == 0 || tx.OrderDate.After(stats.LastOrderDate) {
			stats.LastOrderDate = tx.OrderDate
		}
	}
	stats.DistinctCustomers = len(customers)
	return stats
}
