/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements every persistence contract of the system - the club stores,
  the unit of work, and the bank import stores - on one SQLite database.
  In production the same patterns apply to PostgreSQL; only minor SQL
  dialect differences.

INTERFACES IMPLEMENTED:
  club.AthleteStore / PayerStore / PeriodStore / MembershipStore
  club.UnitOfWork (sql.Tx-backed)
  banking.TransactionStore / banking.ImportStore

AGGREGATE PERSISTENCE:
  Athletes are saved whole: Update rewrites the athlete row and replaces its
  payer links and membership rows in the same transaction. Delete cascades
  to both owned collections. Nothing outside AthleteStore writes those
  tables.

KEY TABLES:
  athletes, payers:            Entities with uuid TEXT primary keys
  athlete_payers:              (athlete, payer, role) links, composite PK
  membership_periods:          Fee schedule, natural (year, month) PK
  athlete_memberships:         (athlete, year, month) composite PK
  bank_transactions:           Statement rows, (date, amount, currency) PK
  transaction_imports/details: Import audit trail

DECIMALS:
  Stored as TEXT and re-parsed with shopspring/decimal; equality checks on
  amounts happen in Go, never on the TEXT column, so "2000" and "2000.00"
  compare equal.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.

USAGE:
  store, err := sqlite.New("./data/club.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - club/store.go: Interface definitions
  - club/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/rowclub/membership-engine/banking"
	"github.com/rowclub/membership-engine/club"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// dbtx is the subset of *sql.DB and *sql.Tx the stores need, so the same
// store code serves both direct and transactional access.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Stores returns the club store set bound directly to the database,
// for reads outside a unit of work.
func (s *Store) Stores() club.Stores {
	return storesFor(s.db)
}

// WithTx implements club.UnitOfWork on a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(club.Stores) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(storesFor(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// Transactions returns the bank transaction store.
func (s *Store) Transactions() banking.TransactionStore {
	return &bankTxStore{q: s.db}
}

// Imports returns the bank import store.
func (s *Store) Imports() banking.ImportStore {
	return &importStore{q: s.db}
}

func storesFor(q dbtx) club.Stores {
	return club.Stores{
		Athletes:    &athleteStore{q: q},
		Payers:      &payerStore{q: q},
		Periods:     &periodStore{q: q},
		Memberships: &membershipStore{q: q},
	}
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS athletes (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		second_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL,
		created TEXT NOT NULL,
		last_modified TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_athletes_full_name
		ON athletes(first_name, second_name, last_name);

	CREATE TABLE IF NOT EXISTS payers (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		second_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payers_full_name
		ON payers(first_name, second_name, last_name);

	-- One payer may hold two roles for the same athlete, never one role twice
	CREATE TABLE IF NOT EXISTS athlete_payers (
		athlete_id TEXT NOT NULL REFERENCES athletes(id),
		payer_id TEXT NOT NULL REFERENCES payers(id),
		role TEXT NOT NULL,
		PRIMARY KEY (athlete_id, payer_id, role)
	);

	CREATE INDEX IF NOT EXISTS idx_athlete_payers_payer
		ON athlete_payers(payer_id);

	-- Natural composite key: a period IS its calendar month
	CREATE TABLE IF NOT EXISTS membership_periods (
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		base_fee TEXT NOT NULL,
		PRIMARY KEY (year, month)
	);

	CREATE TABLE IF NOT EXISTS athlete_memberships (
		athlete_id TEXT NOT NULL REFERENCES athletes(id),
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		coefficient TEXT NOT NULL,
		PRIMARY KEY (athlete_id, year, month)
	);

	CREATE INDEX IF NOT EXISTS idx_athlete_memberships_period
		ON athlete_memberships(year, month);

	-- Statement rows, identified by their composite key
	CREATE TABLE IF NOT EXISTS bank_transactions (
		operation_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		currency TEXT NOT NULL,
		payment_date TEXT NOT NULL,
		card_last_digits TEXT,
		status TEXT NOT NULL,
		payment_amount TEXT NOT NULL,
		payment_currency TEXT NOT NULL,
		cashback TEXT,
		category TEXT NOT NULL,
		mcc_code TEXT,
		description TEXT NOT NULL,
		bonus_amount TEXT NOT NULL,
		round_up_amount TEXT NOT NULL,
		amount_with_round TEXT NOT NULL,
		processed INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (operation_date, amount, currency)
	);

	CREATE TABLE IF NOT EXISTS transaction_imports (
		id TEXT PRIMARY KEY,
		file_name TEXT NOT NULL,
		file_hash TEXT NOT NULL UNIQUE,
		import_date TEXT NOT NULL,
		total_rows INTEGER NOT NULL,
		success_count INTEGER NOT NULL DEFAULT 0,
		skipped_count INTEGER NOT NULL DEFAULT 0,
		error_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS transaction_import_details (
		id TEXT PRIMARY KEY,
		import_id TEXT NOT NULL REFERENCES transaction_imports(id),
		row_number INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		raw_data TEXT NOT NULL,
		error_message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_import_details_import
		ON transaction_import_details(import_id, row_number);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ENCODING HELPERS
// =============================================================================

func encodeTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func decodeTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func decodeDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// =============================================================================
// ATHLETE STORE
// =============================================================================

type athleteStore struct{ q dbtx }

const athleteColumns = "id, first_name, second_name, last_name, created, last_modified"

func (s *athleteStore) GetByID(ctx context.Context, id club.AthleteID) (*club.Athlete, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT "+athleteColumns+" FROM athletes WHERE id = ?", string(id))
	return s.scanAthlete(ctx, row, string(id))
}

func (s *athleteStore) GetByFullName(ctx context.Context, first, second, last string) (*club.Athlete, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT "+athleteColumns+" FROM athletes WHERE first_name = ? AND second_name = ? AND last_name = ?",
		first, second, last)
	return s.scanAthlete(ctx, row, first+" "+last)
}

func (s *athleteStore) scanAthlete(ctx context.Context, row *sql.Row, key string) (*club.Athlete, error) {
	var a club.Athlete
	var created string
	var modified sql.NullString
	err := row.Scan(&a.ID, &a.FirstName, &a.SecondName, &a.LastName, &created, &modified)
	if err == sql.ErrNoRows {
		return nil, &club.NotFoundError{Kind: "athlete", Key: key}
	}
	if err != nil {
		return nil, err
	}
	if a.Created, err = decodeTime(created); err != nil {
		return nil, err
	}
	if modified.Valid {
		t, err := decodeTime(modified.String)
		if err != nil {
			return nil, err
		}
		a.LastModified = &t
	}
	if err := s.loadCollections(ctx, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *athleteStore) loadCollections(ctx context.Context, a *club.Athlete) error {
	rows, err := s.q.QueryContext(ctx,
		"SELECT payer_id, role FROM athlete_payers WHERE athlete_id = ?", string(a.ID))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var link club.PayerLink
		if err := rows.Scan(&link.PayerID, &link.Role); err != nil {
			return err
		}
		a.Payers = append(a.Payers, link)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	mrows, err := s.q.QueryContext(ctx,
		"SELECT year, month, coefficient FROM athlete_memberships WHERE athlete_id = ? ORDER BY year, month",
		string(a.ID))
	if err != nil {
		return err
	}
	defer mrows.Close()
	for mrows.Next() {
		var m club.Membership
		var coeff string
		if err := mrows.Scan(&m.Period.Year, &m.Period.Month, &coeff); err != nil {
			return err
		}
		if m.Coefficient, err = decodeDecimal(coeff); err != nil {
			return err
		}
		a.Memberships = append(a.Memberships, m)
	}
	return mrows.Err()
}

func (s *athleteStore) GetAll(ctx context.Context) ([]*club.Athlete, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT id FROM athletes ORDER BY last_name, first_name")
	if err != nil {
		return nil, err
	}
	var ids []club.AthleteID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, club.AthleteID(id))
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	result := make([]*club.Athlete, 0, len(ids))
	for _, id := range ids {
		a, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}

func (s *athleteStore) Add(ctx context.Context, a *club.Athlete) error {
	var modified any
	if a.LastModified != nil {
		modified = encodeTime(*a.LastModified)
	}
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO athletes (id, first_name, second_name, last_name, created, last_modified) VALUES (?, ?, ?, ?, ?, ?)",
		string(a.ID), a.FirstName, a.SecondName, a.LastName, encodeTime(a.Created), modified)
	if err != nil {
		return err
	}
	return s.saveCollections(ctx, a)
}

// Update saves the whole aggregate: the athlete row is rewritten and the
// owned link and membership rows are replaced.
func (s *athleteStore) Update(ctx context.Context, a *club.Athlete) error {
	var modified any
	if a.LastModified != nil {
		modified = encodeTime(*a.LastModified)
	}
	res, err := s.q.ExecContext(ctx,
		"UPDATE athletes SET first_name = ?, second_name = ?, last_name = ?, last_modified = ? WHERE id = ?",
		a.FirstName, a.SecondName, a.LastName, modified, string(a.ID))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &club.NotFoundError{Kind: "athlete", Key: string(a.ID)}
	}
	if err := s.clearCollections(ctx, a.ID); err != nil {
		return err
	}
	return s.saveCollections(ctx, a)
}

func (s *athleteStore) saveCollections(ctx context.Context, a *club.Athlete) error {
	for _, link := range a.Payers {
		if _, err := s.q.ExecContext(ctx,
			"INSERT INTO athlete_payers (athlete_id, payer_id, role) VALUES (?, ?, ?)",
			string(a.ID), string(link.PayerID), string(link.Role)); err != nil {
			return err
		}
	}
	for _, m := range a.Memberships {
		if _, err := s.q.ExecContext(ctx,
			"INSERT INTO athlete_memberships (athlete_id, year, month, coefficient) VALUES (?, ?, ?, ?)",
			string(a.ID), m.Period.Year, m.Period.Month, m.Coefficient.String()); err != nil {
			return err
		}
	}
	return nil
}

func (s *athleteStore) clearCollections(ctx context.Context, id club.AthleteID) error {
	if _, err := s.q.ExecContext(ctx,
		"DELETE FROM athlete_payers WHERE athlete_id = ?", string(id)); err != nil {
		return err
	}
	_, err := s.q.ExecContext(ctx,
		"DELETE FROM athlete_memberships WHERE athlete_id = ?", string(id))
	return err
}

// Delete is a hard removal cascading to the athlete's links and memberships.
func (s *athleteStore) Delete(ctx context.Context, id club.AthleteID) error {
	if err := s.clearCollections(ctx, id); err != nil {
		return err
	}
	_, err := s.q.ExecContext(ctx, "DELETE FROM athletes WHERE id = ?", string(id))
	return err
}

func (s *athleteStore) IsNameUnique(ctx context.Context, first, second, last string) (bool, error) {
	var count int
	err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM athletes WHERE first_name = ? AND second_name = ? AND last_name = ?",
		first, second, last).Scan(&count)
	return count == 0, err
}

func (s *athleteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM athletes").Scan(&count)
	return count, err
}

// =============================================================================
// PAYER STORE
// =============================================================================

type payerStore struct{ q dbtx }

func (s *payerStore) GetByID(ctx context.Context, id club.PayerID) (*club.Payer, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT id, first_name, second_name, last_name FROM payers WHERE id = ?", string(id))
	return scanPayer(row, string(id))
}

func (s *payerStore) GetByFullName(ctx context.Context, first, second, last string) (*club.Payer, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT id, first_name, second_name, last_name FROM payers WHERE first_name = ? AND second_name = ? AND last_name = ?",
		first, second, last)
	return scanPayer(row, first+" "+last)
}

func scanPayer(row *sql.Row, key string) (*club.Payer, error) {
	var p club.Payer
	err := row.Scan(&p.ID, &p.FirstName, &p.SecondName, &p.LastName)
	if err == sql.ErrNoRows {
		return nil, &club.NotFoundError{Kind: "payer", Key: key}
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *payerStore) GetAll(ctx context.Context) ([]*club.Payer, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT id, first_name, second_name, last_name FROM payers ORDER BY last_name, first_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []*club.Payer
	for rows.Next() {
		var p club.Payer
		if err := rows.Scan(&p.ID, &p.FirstName, &p.SecondName, &p.LastName); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	return result, rows.Err()
}

func (s *payerStore) Add(ctx context.Context, p *club.Payer) error {
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO payers (id, first_name, second_name, last_name) VALUES (?, ?, ?, ?)",
		string(p.ID), p.FirstName, p.SecondName, p.LastName)
	return err
}

func (s *payerStore) Update(ctx context.Context, p *club.Payer) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE payers SET first_name = ?, second_name = ?, last_name = ? WHERE id = ?",
		p.FirstName, p.SecondName, p.LastName, string(p.ID))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &club.NotFoundError{Kind: "payer", Key: string(p.ID)}
	}
	return nil
}

// Delete cascades to the payer's athlete links.
func (s *payerStore) Delete(ctx context.Context, id club.PayerID) error {
	if _, err := s.q.ExecContext(ctx,
		"DELETE FROM athlete_payers WHERE payer_id = ?", string(id)); err != nil {
		return err
	}
	_, err := s.q.ExecContext(ctx, "DELETE FROM payers WHERE id = ?", string(id))
	return err
}

// =============================================================================
// PERIOD STORE
// =============================================================================

type periodStore struct{ q dbtx }

func (s *periodStore) GetByYearMonth(ctx context.Context, year, month int) (*club.MembershipPeriod, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT year, month, base_fee FROM membership_periods WHERE year = ? AND month = ?",
		year, month)
	var p club.MembershipPeriod
	var fee string
	err := row.Scan(&p.Year, &p.Month, &fee)
	if err == sql.ErrNoRows {
		key := club.PeriodKey{Year: year, Month: month}
		return nil, &club.NotFoundError{Kind: "period", Key: key.String()}
	}
	if err != nil {
		return nil, err
	}
	if p.BaseFee, err = decodeDecimal(fee); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *periodStore) GetAll(ctx context.Context) ([]*club.MembershipPeriod, error) {
	return s.query(ctx,
		"SELECT year, month, base_fee FROM membership_periods ORDER BY year, month")
}

// GetRange compares at month granularity: (year*12 + month) keeps the
// comparison in one sortable integer.
func (s *periodStore) GetRange(ctx context.Context, from, to club.PeriodKey) ([]*club.MembershipPeriod, error) {
	return s.query(ctx,
		`SELECT year, month, base_fee FROM membership_periods
		 WHERE year * 12 + month >= ? AND year * 12 + month <= ?
		 ORDER BY year, month`,
		from.Year*12+from.Month, to.Year*12+to.Month)
}

func (s *periodStore) query(ctx context.Context, query string, args ...any) ([]*club.MembershipPeriod, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []*club.MembershipPeriod
	for rows.Next() {
		var p club.MembershipPeriod
		var fee string
		if err := rows.Scan(&p.Year, &p.Month, &fee); err != nil {
			return nil, err
		}
		if p.BaseFee, err = decodeDecimal(fee); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	return result, rows.Err()
}

func (s *periodStore) Add(ctx context.Context, p *club.MembershipPeriod) error {
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO membership_periods (year, month, base_fee) VALUES (?, ?, ?)",
		p.Year, p.Month, p.BaseFee.String())
	return err
}

func (s *periodStore) Update(ctx context.Context, p *club.MembershipPeriod) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE membership_periods SET base_fee = ? WHERE year = ? AND month = ?",
		p.BaseFee.String(), p.Year, p.Month)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &club.NotFoundError{Kind: "period", Key: p.Key().String()}
	}
	return nil
}

func (s *periodStore) Delete(ctx context.Context, key club.PeriodKey) error {
	_, err := s.q.ExecContext(ctx,
		"DELETE FROM membership_periods WHERE year = ? AND month = ?", key.Year, key.Month)
	return err
}

// =============================================================================
// MEMBERSHIP QUERIES
// =============================================================================

type membershipStore struct{ q dbtx }

func (s *membershipStore) GetByAthleteID(ctx context.Context, id club.AthleteID) ([]club.Membership, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT year, month, coefficient FROM athlete_memberships WHERE athlete_id = ? ORDER BY year, month",
		string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []club.Membership
	for rows.Next() {
		var m club.Membership
		var coeff string
		if err := rows.Scan(&m.Period.Year, &m.Period.Month, &coeff); err != nil {
			return nil, err
		}
		if m.Coefficient, err = decodeDecimal(coeff); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (s *membershipStore) GetByPeriod(ctx context.Context, key club.PeriodKey) ([]club.AthleteMembershipRow, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT athlete_id, coefficient FROM athlete_memberships WHERE year = ? AND month = ? ORDER BY athlete_id",
		key.Year, key.Month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []club.AthleteMembershipRow
	for rows.Next() {
		var row club.AthleteMembershipRow
		var coeff string
		if err := rows.Scan(&row.AthleteID, &coeff); err != nil {
			return nil, err
		}
		row.Membership.Period = key
		if row.Membership.Coefficient, err = decodeDecimal(coeff); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// =============================================================================
// BANK TRANSACTION STORE
// =============================================================================

type bankTxStore struct{ q dbtx }

// Exists narrows by date and currency in SQL, then compares amounts as
// decimals in Go so formatting differences never defeat the dedup.
func (s *bankTxStore) Exists(ctx context.Context, operationDate time.Time, amount decimal.Decimal, currency string) (bool, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT amount FROM bank_transactions WHERE operation_date = ? AND currency = ?",
		encodeTime(operationDate), currency)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var stored string
		if err := rows.Scan(&stored); err != nil {
			return false, err
		}
		d, err := decodeDecimal(stored)
		if err != nil {
			return false, err
		}
		if d.Equal(amount) {
			return true, nil
		}
	}
	return false, rows.Err()
}

func (s *bankTxStore) Add(ctx context.Context, t *banking.Transaction) error {
	var cashback any
	if t.Cashback != nil {
		cashback = t.Cashback.String()
	}
	processed := 0
	if t.Processed {
		processed = 1
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO bank_transactions (
			operation_date, amount, currency, payment_date, card_last_digits,
			status, payment_amount, payment_currency, cashback, category,
			mcc_code, description, bonus_amount, round_up_amount,
			amount_with_round, processed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		encodeTime(t.OperationDate), t.Amount.String(), t.Currency,
		encodeTime(t.PaymentDate), t.CardLastDigits, t.Status,
		t.PaymentAmount.String(), t.PaymentCurrency, cashback, t.Category,
		t.MCCCode, t.Description, t.BonusAmount.String(),
		t.RoundUpAmount.String(), t.AmountWithRound.String(), processed)
	return err
}

func (s *bankTxStore) GetAll(ctx context.Context) ([]*banking.Transaction, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT operation_date, amount, currency, payment_date, card_last_digits,
			status, payment_amount, payment_currency, cashback, category,
			mcc_code, description, bonus_amount, round_up_amount,
			amount_with_round, processed
		 FROM bank_transactions ORDER BY operation_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*banking.Transaction
	for rows.Next() {
		var t banking.Transaction
		var opDate, payDate, amount, payAmount, bonus, roundUp, withRound string
		var cashback sql.NullString
		var processed int
		if err := rows.Scan(&opDate, &amount, &t.Currency, &payDate,
			&t.CardLastDigits, &t.Status, &payAmount, &t.PaymentCurrency,
			&cashback, &t.Category, &t.MCCCode, &t.Description,
			&bonus, &roundUp, &withRound, &processed); err != nil {
			return nil, err
		}
		if t.OperationDate, err = decodeTime(opDate); err != nil {
			return nil, err
		}
		if t.PaymentDate, err = decodeTime(payDate); err != nil {
			return nil, err
		}
		if t.Amount, err = decodeDecimal(amount); err != nil {
			return nil, err
		}
		if t.PaymentAmount, err = decodeDecimal(payAmount); err != nil {
			return nil, err
		}
		if cashback.Valid {
			cb, err := decodeDecimal(cashback.String)
			if err != nil {
				return nil, err
			}
			t.Cashback = &cb
		}
		if t.BonusAmount, err = decodeDecimal(bonus); err != nil {
			return nil, err
		}
		if t.RoundUpAmount, err = decodeDecimal(roundUp); err != nil {
			return nil, err
		}
		if t.AmountWithRound, err = decodeDecimal(withRound); err != nil {
			return nil, err
		}
		t.Processed = processed != 0
		result = append(result, &t)
	}
	return result, rows.Err()
}

// =============================================================================
// IMPORT STORE
// =============================================================================

type importStore struct{ q dbtx }

const importColumns = "id, file_name, file_hash, import_date, total_rows, success_count, skipped_count, error_count"

func (s *importStore) GetByFileHash(ctx context.Context, hash string) (*banking.Import, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT "+importColumns+" FROM transaction_imports WHERE file_hash = ?", hash)
	return scanImport(row, hash)
}

func scanImport(row *sql.Row, key string) (*banking.Import, error) {
	var i banking.Import
	var importDate string
	err := row.Scan(&i.ID, &i.FileName, &i.FileHash, &importDate,
		&i.TotalRows, &i.SuccessCount, &i.SkippedCount, &i.ErrorCount)
	if err == sql.ErrNoRows {
		return nil, &club.NotFoundError{Kind: "import", Key: key}
	}
	if err != nil {
		return nil, err
	}
	if i.ImportDate, err = decodeTime(importDate); err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *importStore) Add(ctx context.Context, i *banking.Import) error {
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO transaction_imports ("+importColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		i.ID, i.FileName, i.FileHash, encodeTime(i.ImportDate),
		i.TotalRows, i.SuccessCount, i.SkippedCount, i.ErrorCount)
	return err
}

func (s *importStore) Update(ctx context.Context, i *banking.Import) error {
	_, err := s.q.ExecContext(ctx,
		"UPDATE transaction_imports SET success_count = ?, skipped_count = ?, error_count = ? WHERE id = ?",
		i.SuccessCount, i.SkippedCount, i.ErrorCount, i.ID)
	return err
}

func (s *importStore) AddDetail(ctx context.Context, d *banking.ImportDetail) error {
	var errMsg any
	if d.ErrorMessage != "" {
		errMsg = d.ErrorMessage
	}
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO transaction_import_details (id, import_id, row_number, outcome, raw_data, error_message) VALUES (?, ?, ?, ?, ?, ?)",
		d.ID, d.ImportID, d.RowNumber, string(d.Outcome), d.RawData, errMsg)
	return err
}

func (s *importStore) GetAll(ctx context.Context) ([]*banking.Import, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT "+importColumns+" FROM transaction_imports ORDER BY import_date DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []*banking.Import
	for rows.Next() {
		var i banking.Import
		var importDate string
		if err := rows.Scan(&i.ID, &i.FileName, &i.FileHash, &importDate,
			&i.TotalRows, &i.SuccessCount, &i.SkippedCount, &i.ErrorCount); err != nil {
			return nil, err
		}
		if i.ImportDate, err = decodeTime(importDate); err != nil {
			return nil, err
		}
		result = append(result, &i)
	}
	return result, rows.Err()
}

func (s *importStore) GetDetails(ctx context.Context, importID string) ([]*banking.ImportDetail, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT id, import_id, row_number, outcome, raw_data, error_message FROM transaction_import_details WHERE import_id = ? ORDER BY row_number",
		importID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []*banking.ImportDetail
	for rows.Next() {
		var d banking.ImportDetail
		var errMsg sql.NullString
		if err := rows.Scan(&d.ID, &d.ImportID, &d.RowNumber, &d.Outcome, &d.RawData, &errMsg); err != nil {
			return nil, err
		}
		if errMsg.Valid {
			d.ErrorMessage = errMsg.String
		}
		result = append(result, &d)
	}
	return result, rows.Err()
}
