package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/dvloznov/portfolio-tracker/internal/domain"
)

// PageSize is the fixed history page size.
const PageSize = 10

const (
	targetKey  = "target_value"
	dateLayout = "2006-01-02"
)

// Store persists the transaction log, per-category valuations and settings
// in a single sqlite database. Writes are serialized by sqlite itself;
// nothing here caches derived data.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the sqlite database at path and applies
// the schema.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// storeErr normalizes unexpected database failures. Taxonomy errors pass
// through untouched so callers can match them.
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// txRow is the raw table shape; amount and date are TEXT in sqlite.
type txRow struct {
	ID       int64  `db:"id"`
	Category string `db:"category"`
	Kind     string `db:"kind"`
	Amount   string `db:"amount"`
	Date     string `db:"date"`
	Note     string `db:"note"`
}

func (r txRow) toDomain() (domain.Transaction, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("parsing amount %q: %w", r.Amount, err)
	}
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("parsing date %q: %w", r.Date, err)
	}
	return domain.Transaction{
		ID:       r.ID,
		Category: domain.Category(r.Category),
		Kind:     domain.Kind(r.Kind),
		Amount:   amount,
		Date:     date,
		Note:     r.Note,
	}, nil
}

// RecordTransaction appends one deposit or withdrawal and returns its id.
// The amount must be strictly positive and the category known.
func (s *Store) RecordTransaction(ctx context.Context, category domain.Category, kind domain.Kind, amount decimal.Decimal, date time.Time, note string) (int64, error) {
	if !amount.IsPositive() {
		return 0, ErrInvalidAmount
	}
	if !category.Known() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (category, kind, amount, date, note) VALUES (?, ?, ?, ?, ?)`,
		string(category), string(kind), amount.String(), date.Format(dateLayout), note,
	)
	if err != nil {
		return 0, storeErr(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr(err)
	}
	return id, nil
}

// EditTransaction replaces the amount of an existing transaction. Category,
// kind and date are never touched by an edit.
func (s *Store) EditTransaction(ctx context.Context, id int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET amount = ? WHERE id = ?`, amount.String(), id)
	if err != nil {
		return storeErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// DeleteTransaction removes a transaction by id. Undo of a just-recorded
// transaction is exactly this operation.
func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return storeErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// ListHistory returns one page of transactions, newest date first, ties
// broken by id descending (newest insertion first). Pages start at 0.
func (s *Store) ListHistory(ctx context.Context, page int) ([]domain.Transaction, error) {
	if page < 0 {
		page = 0
	}

	var rows []txRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, category, kind, amount, date, note FROM transactions
		 ORDER BY date DESC, id DESC LIMIT ? OFFSET ?`,
		PageSize, page*PageSize)
	if err != nil {
		return nil, storeErr(err)
	}

	txs := make([]domain.Transaction, 0, len(rows))
	for _, r := range rows {
		tx, err := r.toDomain()
		if err != nil {
			return nil, storeErr(err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// SumsByCategory aggregates deposits and withdrawals per category over the
// whole log. Categories with no transactions are present with zero sums.
// Amounts are stored as TEXT and summed as decimals so capital stays exact.
func (s *Store) SumsByCategory(ctx context.Context) (map[domain.Category]domain.CategorySums, error) {
	type sumRow struct {
		Category string `db:"category"`
		Kind     string `db:"kind"`
		Amount   string `db:"amount"`
	}

	var rows []sumRow
	err := s.db.SelectContext(ctx, &rows, `SELECT category, kind, amount FROM transactions`)
	if err != nil {
		return nil, storeErr(err)
	}

	sums := make(map[domain.Category]domain.CategorySums, len(domain.Categories))
	for _, c := range domain.Categories {
		sums[c] = domain.CategorySums{Category: c}
	}
	for _, r := range rows {
		cat := domain.Category(r.Category)
		amount, err := decimal.NewFromString(r.Amount)
		if err != nil {
			return nil, storeErr(err)
		}
		entry := sums[cat]
		entry.Category = cat
		switch domain.Kind(r.Kind) {
		case domain.KindDeposit:
			entry.Deposits = entry.Deposits.Add(amount)
		case domain.KindWithdraw:
			entry.Withdraws = entry.Withdraws.Add(amount)
		}
		sums[cat] = entry
	}
	return sums, nil
}

// SetValuation replaces the category's current market value wholesale.
// Zero is a valid value (fully liquidated position); negatives are not.
func (s *Store) SetValuation(ctx context.Context, category domain.Category, value decimal.Decimal) error {
	if !category.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if value.IsNegative() {
		return ErrInvalidAmount
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO valuations (category, value) VALUES (?, ?)`,
		string(category), value.String())
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// Valuations returns the latest asserted value per category. Categories
// never valued are absent from the map.
func (s *Store) Valuations(ctx context.Context) (map[domain.Category]decimal.Decimal, error) {
	type valRow struct {
		Category string `db:"category"`
		Value    string `db:"value"`
	}

	var rows []valRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT category, value FROM valuations`); err != nil {
		return nil, storeErr(err)
	}

	vals := make(map[domain.Category]decimal.Decimal, len(rows))
	for _, r := range rows {
		v, err := decimal.NewFromString(r.Value)
		if err != nil {
			return nil, storeErr(err)
		}
		vals[domain.Category(r.Category)] = v
	}
	return vals, nil
}

// SetTarget replaces the target asset value. Non-positive targets are
// stored as-is; the calculator degrades progress to 0 by policy.
func (s *Store) SetTarget(ctx context.Context, value decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`,
		targetKey, value.String())
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// Target returns the configured target asset value, zero if never set.
func (s *Store) Target(ctx context.Context) (decimal.Decimal, error) {
	var raw string
	err := s.db.GetContext(ctx, &raw, `SELECT value FROM settings WHERE key = ?`, targetKey)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, storeErr(err)
	}

	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, storeErr(err)
	}
	return v, nil
}
