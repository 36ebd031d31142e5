package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/freshpredict/internal/domain"
)

const salesSchema = `
	CREATE TABLE IF NOT EXISTS sales_history (
		sale_date     DATE           NOT NULL,
		product_id    VARCHAR(32)    NOT NULL,
		product_name  VARCHAR(128)   NOT NULL DEFAULT '',
		category      VARCHAR(32)    NOT NULL DEFAULT '',
		quantity_sold NUMERIC(12, 2) NOT NULL,
		updated_at    TIMESTAMPTZ    NOT NULL DEFAULT NOW(),
		PRIMARY KEY (sale_date, product_id)
	);
	CREATE INDEX IF NOT EXISTS idx_sales_history_product ON sales_history (product_id, sale_date);
`

// SalesRow is one generated or imported sales line.
type SalesRow struct {
	Date        domain.Date
	ProductID   string
	ProductName string
	Category    string
	Quantity    float64
}

type salesRepository struct {
	db *DB
}

func NewSalesRepository(db *DB) *salesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) Source() string { return "postgres" }

// EnsureSchema creates the sales table when missing.
func (r *salesRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, salesSchema); err != nil {
		return fmt.Errorf("failed to create sales schema: %w", err)
	}
	return nil
}

type dailySalesRow struct {
	SaleDate time.Time `db:"sale_date"`
	Quantity float64   `db:"quantity_sold"`
}

func (r *salesRepository) DailySales(ctx context.Context, productID string) ([]domain.SalesRecord, error) {
	query := `
		SELECT sale_date, SUM(quantity_sold)::float8 AS quantity_sold
		FROM sales_history
		WHERE product_id = $1
		GROUP BY sale_date
		ORDER BY sale_date
	`

	id := strings.ToUpper(productID)
	var rows []dailySalesRow
	if err := r.db.SelectContext(ctx, &rows, query, id); err != nil {
		return nil, fmt.Errorf("failed to query sales history: %w", err)
	}

	records := make([]domain.SalesRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.SalesRecord{
			Date:      domain.DateOf(row.SaleDate),
			ProductID: id,
			Quantity:  row.Quantity,
		})
	}
	return records, nil
}

// SaveSales upserts rows in a single transaction.
func (r *salesRepository) SaveSales(ctx context.Context, rows []SalesRow) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO sales_history (sale_date, product_id, product_name, category, quantity_sold)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (sale_date, product_id)
			DO UPDATE SET
				product_name = EXCLUDED.product_name,
				category = EXCLUDED.category,
				quantity_sold = EXCLUDED.quantity_sold,
				updated_at = NOW()
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, row := range rows {
			_, err := stmt.ExecContext(ctx,
				row.Date.Time,
				strings.ToUpper(row.ProductID),
				row.ProductName,
				row.Category,
				row.Quantity,
			)
			if err != nil {
				return fmt.Errorf("failed to insert sales row %s/%s: %w", row.ProductID, row.Date, err)
			}
		}
		return nil
	})
}
