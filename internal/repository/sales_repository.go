package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/andresuchdata/freshpredict/internal/storage"
	"github.com/rs/zerolog/log"
)

// SalesRepository serves per-product daily sales history.
type SalesRepository interface {
	DailySales(ctx context.Context, productID string) ([]domain.SalesRecord, error)
	Source() string
}

// Opener returns a fresh reader over a sales export.
type Opener func(ctx context.Context) (io.ReadCloser, error)

// CSVSalesRepository reads a sales export with at least the columns date,
// product_id and quantity_sold. The file is parsed on first use; a failed
// load is retried on the next call.
type CSVSalesRepository struct {
	source string
	open   Opener

	mu     sync.Mutex
	loaded bool
	byID   map[string][]domain.SalesRecord
}

func NewCSVSalesRepository(source string, open Opener) *CSVSalesRepository {
	return &CSVSalesRepository{source: source, open: open}
}

// NewFileSalesRepository reads the export from local disk.
func NewFileSalesRepository(path string) *CSVSalesRepository {
	return NewCSVSalesRepository("csv", func(context.Context) (io.ReadCloser, error) {
		return os.Open(path)
	})
}

// NewObjectSalesRepository reads the export from an S3-compatible bucket.
func NewObjectSalesRepository(store storage.ObjectStorage, key string) *CSVSalesRepository {
	return NewCSVSalesRepository("s3", func(ctx context.Context) (io.ReadCloser, error) {
		return store.OpenObject(ctx, key)
	})
}

func (r *CSVSalesRepository) Source() string { return r.source }

// DailySales returns one record per date, ascending. Unknown products yield
// an empty slice.
func (r *CSVSalesRepository) DailySales(ctx context.Context, productID string) ([]domain.SalesRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.loaded {
		byID, err := r.load(ctx)
		if err != nil {
			return nil, err
		}
		r.byID = byID
		r.loaded = true
	}

	records := r.byID[strings.ToUpper(productID)]
	out := make([]domain.SalesRecord, len(records))
	copy(out, records)
	return out, nil
}

// Invalidate drops the parsed export so the next call reloads it.
func (r *CSVSalesRepository) Invalidate() {
	r.mu.Lock()
	r.loaded = false
	r.byID = nil
	r.mu.Unlock()
}

func (r *CSVSalesRepository) load(ctx context.Context) (map[string][]domain.SalesRecord, error) {
	rc, err := r.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open sales history (%s): %w", r.source, err)
	}
	defer rc.Close()

	byID, err := ParseSalesCSV(rc)
	if err != nil {
		return nil, fmt.Errorf("parse sales history (%s): %w", r.source, err)
	}

	log.Info().Str("source", r.source).Int("products", len(byID)).Msg("sales history loaded")
	return byID, nil
}

// ParseSalesCSV groups rows by product and sums quantities per date. Rows
// with an unparseable date or quantity are skipped.
func ParseSalesCSV(rd io.Reader) (map[string][]domain.SalesRecord, error) {
	reader := csv.NewReader(rd)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("sales csv is empty")
		}
		return nil, err
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))] = i
	}
	dateCol, okDate := cols["date"]
	idCol, okID := cols["product_id"]
	qtyCol, okQty := cols["quantity_sold"]
	if !okDate || !okID || !okQty {
		return nil, fmt.Errorf("sales csv requires date, product_id and quantity_sold columns")
	}

	sums := map[string]map[domain.Date]float64{}
	skipped := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) <= max(dateCol, idCol, qtyCol) {
			skipped++
			continue
		}

		date, err := domain.ParseDate(strings.TrimSpace(row[dateCol]))
		if err != nil {
			skipped++
			continue
		}
		qty, err := strconv.ParseFloat(strings.TrimSpace(row[qtyCol]), 64)
		if err != nil {
			skipped++
			continue
		}
		id := strings.ToUpper(strings.TrimSpace(row[idCol]))
		if id == "" {
			skipped++
			continue
		}

		if sums[id] == nil {
			sums[id] = map[domain.Date]float64{}
		}
		sums[id][date] += qty
	}

	if skipped > 0 {
		log.Warn().Int("rows", skipped).Msg("skipped malformed sales rows")
	}

	out := make(map[string][]domain.SalesRecord, len(sums))
	for id, byDate := range sums {
		records := make([]domain.SalesRecord, 0, len(byDate))
		for d, qty := range byDate {
			records = append(records, domain.SalesRecord{Date: d, ProductID: id, Quantity: qty})
		}
		sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
		out[id] = records
	}
	return out, nil
}

var _ SalesRepository = (*CSVSalesRepository)(nil)
