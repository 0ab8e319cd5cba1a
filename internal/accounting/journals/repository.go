package journals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
)

const entryColumns = `e.id, e.entry_number, e.date, e.description, e.reference, e.account_id, e.total_debits, e.total_credits, e.created_at`

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the PostgreSQL journal store.
func NewRepository(pool *pgxpool.Pool) Store {
	return &repository{db: pool}
}

func (r *repository) InsertEntry(ctx context.Context, header JournalEntry, lines []JournalLine) (JournalEntry, error) {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO journal_entries (id, entry_number, date, description, reference, account_id, total_debits, total_credits, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			header.ID, header.EntryNumber, header.Date, header.Description, header.Reference,
			header.AccountID, header.TotalDebits, header.TotalCredits, header.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return shared.Invalid("entry_number", "entry number "+header.EntryNumber+" already exists")
			}
			return err
		}
		batch := &pgx.Batch{}
		for idx, line := range lines {
			batch.Queue(`INSERT INTO journal_lines (id, journal_entry_id, line_no, account_id, description, debit, credit)
VALUES ($1,$2,$3,$4,$5,$6,$7)`, line.ID, header.ID, idx, line.AccountID, line.Description, line.Debit, line.Credit)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return JournalEntry{}, err
	}
	header.Lines = lines
	return header, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (JournalEntry, error) {
	entries, err := r.query(ctx, `WHERE e.id=$1`, id)
	if err != nil {
		return JournalEntry{}, err
	}
	if len(entries) == 0 {
		return JournalEntry{}, shared.NotFound("journal entry", id.String())
	}
	return entries[0], nil
}

func (r *repository) ListByDateRange(ctx context.Context, rng shared.DateRange) ([]JournalEntry, error) {
	return r.query(ctx, `WHERE ($1::timestamptz IS NULL OR e.date >= $1) AND ($2::timestamptz IS NULL OR e.date <= $2)`,
		nullTime(rng.From), nullTime(rng.To))
}

func (r *repository) NextEntryNumber(ctx context.Context) (string, error) {
	var seq int64
	if err := r.db.QueryRow(ctx, `SELECT nextval('journal_entry_seq')`).Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("JE-%06d", seq), nil
}

// query loads entries and their lines with one round trip, lines in posting order.
func (r *repository) query(ctx context.Context, where string, args ...any) ([]JournalEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+entryColumns+`,
	l.id, l.account_id, l.description, l.debit, l.credit
FROM journal_entries e
LEFT JOIN journal_lines l ON l.journal_entry_id = e.id
`+where+`
ORDER BY e.date DESC, e.entry_number DESC, l.line_no ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []JournalEntry
	positions := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			e       JournalEntry
			lineID  *uuid.UUID
			account *uuid.UUID
			memo    *string
			debit   *float64
			credit  *float64
		)
		if err := rows.Scan(&e.ID, &e.EntryNumber, &e.Date, &e.Description, &e.Reference, &e.AccountID,
			&e.TotalDebits, &e.TotalCredits, &e.CreatedAt,
			&lineID, &account, &memo, &debit, &credit); err != nil {
			return nil, err
		}
		pos, ok := positions[e.ID]
		if !ok {
			pos = len(entries)
			positions[e.ID] = pos
			entries = append(entries, e)
		}
		if lineID == nil {
			continue
		}
		entries[pos].Lines = append(entries[pos].Lines, JournalLine{
			ID:             *lineID,
			JournalEntryID: e.ID,
			AccountID:      *account,
			Description:    memo,
			Debit:          *debit,
			Credit:         *credit,
		})
	}
	return entries, rows.Err()
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
