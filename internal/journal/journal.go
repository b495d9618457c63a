package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/StuartGrossman/Consigment-sub002/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"
)

// ErrReceiptNotFound is returned when an order number has no journal entry.
var ErrReceiptNotFound = errors.New("receipt not found")

// Store is the terminal's device-local receipt journal. Every settled sale
// is appended so a receipt can be reprinted after a restart; the backend
// remains the system of record.
type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// Record appends one receipt. The itemized lines travel as a JSON blob;
// the printable header fields get their own columns so reprints can be
// listed without decoding every row.
func (s *Store) Record(ctx context.Context, receipt *domain.Receipt) error {
	lines, err := json.Marshal(receipt.Lines)
	if err != nil {
		return fmt.Errorf("marshal receipt lines: %w", err)
	}

	query := `
		INSERT INTO receipts (
			order_number, transaction_id, total_amount, payment_method,
			processed_by, customer_name, customer_email, customer_phone,
			lines, settled_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		receipt.OrderNumber,
		receipt.TransactionID,
		receipt.TotalAmount,
		string(receipt.PaymentMethod),
		receipt.ProcessedBy,
		receipt.Customer.Name,
		receipt.Customer.Email,
		receipt.Customer.Phone,
		string(lines),
		receipt.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return nil
}

// GetByOrderNumber fetches one receipt for reprinting.
func (s *Store) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Receipt, error) {
	query := `
		SELECT order_number, transaction_id, total_amount, payment_method,
		       processed_by, customer_name, customer_email, customer_phone,
		       lines, settled_at
		FROM receipts
		WHERE order_number = $1
	`

	row := s.db.QueryRowContext(ctx, query, orderNumber)

	var receipt domain.Receipt
	var method string
	var linesJSON string
	err := row.Scan(
		&receipt.OrderNumber,
		&receipt.TransactionID,
		&receipt.TotalAmount,
		&method,
		&receipt.ProcessedBy,
		&receipt.Customer.Name,
		&receipt.Customer.Email,
		&receipt.Customer.Phone,
		&linesJSON,
		&receipt.Timestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan receipt: %w", err)
	}

	receipt.PaymentMethod = domain.PaymentMethod(method)
	if err := json.Unmarshal([]byte(linesJSON), &receipt.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal receipt lines: %w", err)
	}
	return &receipt, nil
}

// ListRecent returns up to limit receipts, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]*domain.Receipt, error) {
	query := `
		SELECT order_number, transaction_id, total_amount, payment_method,
		       processed_by, customer_name, customer_email, customer_phone,
		       lines, settled_at
		FROM receipts
		ORDER BY settled_at DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	var receipts []*domain.Receipt
	for rows.Next() {
		var receipt domain.Receipt
		var method string
		var linesJSON string
		err := rows.Scan(
			&receipt.OrderNumber,
			&receipt.TransactionID,
			&receipt.TotalAmount,
			&method,
			&receipt.ProcessedBy,
			&receipt.Customer.Name,
			&receipt.Customer.Email,
			&receipt.Customer.Phone,
			&linesJSON,
			&receipt.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipt.PaymentMethod = domain.PaymentMethod(method)
		if err := json.Unmarshal([]byte(linesJSON), &receipt.Lines); err != nil {
			return nil, fmt.Errorf("unmarshal receipt lines: %w", err)
		}
		receipts = append(receipts, &receipt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return receipts, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
