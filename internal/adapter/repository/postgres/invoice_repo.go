package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goreporte/internal/domain"
)

const selectPeriodSQL = `
	SELECT COUNT(i.id), COALESCE(SUM(i.monto_total), 0)
	FROM settlement_periods p
	LEFT JOIN invoices i ON i.username = p.username AND i.directorio = p.directorio
	WHERE p.username = $1 AND p.directorio = $2
	GROUP BY p.username, p.directorio
`

const selectInvoicesSQL = `
	SELECT id, monto_total, fecha_transaccion
	FROM invoices
	WHERE username = $1 AND directorio = $2
	ORDER BY position, id
`

// InvoiceRepository serves raw reports straight from PostgreSQL. A period
// row with no invoices yields an empty report; a missing period row yields
// domain.ErrReportNotFound.
type InvoiceRepository struct {
	tx      *TxManager
	retrier *Retrier
}

// NewInvoiceRepository creates a new invoice repository.
func NewInvoiceRepository(pool *pgxpool.Pool, retrier *Retrier) *InvoiceRepository {
	return newInvoiceRepository(newTxManagerWithPool(pool), retrier)
}

func newInvoiceRepository(tx *TxManager, retrier *Retrier) *InvoiceRepository {
	return &InvoiceRepository{tx: tx, retrier: retrier}
}

// FetchReport loads the invoices of a settlement period in one snapshot.
func (r *InvoiceRepository) FetchReport(ctx context.Context, username, directorio string) (*domain.RawReportPayload, error) {
	var payload *domain.RawReportPayload

	err := r.retrier.Retry(ctx, func() error {
		return r.tx.ReadOnly(ctx, func(ctx context.Context, tx pgx.Tx) error {
			p, err := fetchPeriod(ctx, tx, username, directorio)
			if err != nil {
				return err
			}
			payload = p
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return payload, nil
}

const upsertPeriodSQL = `
	INSERT INTO settlement_periods (username, directorio)
	VALUES ($1, $2)
	ON CONFLICT (username, directorio) DO UPDATE SET updated_at = NOW()
`

const deleteInvoicesSQL = `DELETE FROM invoices WHERE username = $1 AND directorio = $2`

const insertInvoiceSQL = `
	INSERT INTO invoices (id, username, directorio, monto_total, fecha_transaccion, position)
	VALUES ($1, $2, $3, $4, $5, $6)
`

// SavePeriod replaces the stored invoices of a settlement period with the
// payload's invoices, keeping their order. Amounts are stored in cents.
func (r *InvoiceRepository) SavePeriod(ctx context.Context, payload *domain.RawReportPayload) error {
	if err := domain.ValidateQuery(payload.Username, payload.Directorio); err != nil {
		return err
	}
	if err := domain.ValidateInvoices(payload.Invoices); err != nil {
		return err
	}

	return r.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsertPeriodSQL, payload.Username, payload.Directorio); err != nil {
			return fmt.Errorf("upsert settlement period: %w", err)
		}
		if _, err := tx.Exec(ctx, deleteInvoicesSQL, payload.Username, payload.Directorio); err != nil {
			return fmt.Errorf("clear invoices: %w", err)
		}
		for i, inv := range payload.Invoices {
			_, err := tx.Exec(ctx, insertInvoiceSQL,
				inv.ID.String(),
				payload.Username,
				payload.Directorio,
				decimalToNumeric(domain.RoundMoney(inv.Amount)),
				inv.Date,
				i,
			)
			if err != nil {
				return fmt.Errorf("insert invoice %s: %w", inv.ID, err)
			}
		}
		return nil
	})
}

func fetchPeriod(ctx context.Context, tx pgx.Tx, username, directorio string) (*domain.RawReportPayload, error) {
	var (
		count int64
		sum   pgtype.Numeric
	)
	err := tx.QueryRow(ctx, selectPeriodSQL, username, directorio).Scan(&count, &sum)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select settlement period: %w", err)
	}

	rows, err := tx.Query(ctx, selectInvoicesSQL, username, directorio)
	if err != nil {
		return nil, fmt.Errorf("select invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0, count)
	for rows.Next() {
		var (
			id     string
			amount pgtype.Numeric
			date   string
		)
		if err := rows.Scan(&id, &amount, &date); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, domain.Invoice{
			ID:     domain.InvoiceID(id),
			Amount: numericToDecimal(amount),
			Date:   date,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}

	total := numericToDecimal(sum)
	return &domain.RawReportPayload{
		Username:     username,
		Directorio:   directorio,
		InvoiceCount: int(count),
		SourceTotal:  &total,
		Invoices:     invoices,
	}, nil
}
