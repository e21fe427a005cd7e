package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/atelier/internal/db"
	"github.com/alexanderramin/atelier/internal/domain"
)

// table maps a kind onto its relational layout.
type table struct {
	name      string
	parentCol string
	textCol   string
}

var tables = map[domain.Kind]table{
	domain.KindClient:     {name: "clients", textCol: "name"},
	domain.KindInstrument: {name: "instruments", parentCol: "clientId", textCol: "name"},
	domain.KindNote:       {name: "notes", parentCol: "instrumentId", textCol: "note"},
}

// SQLiteEntityRepo implements EntityRepo over the clients, instruments and
// notes tables. Cascades run inside one UnitOfWork transaction.
type SQLiteEntityRepo struct {
	db  db.DBTX
	uow db.UnitOfWork
}

// NewSQLiteEntityRepo creates a SQLiteEntityRepo on a migrated database.
func NewSQLiteEntityRepo(conn *sql.DB) *SQLiteEntityRepo {
	return &SQLiteEntityRepo{db: conn, uow: db.NewSQLiteUnitOfWork(conn)}
}

// NewSQLiteEntityRepoWithUoW lets callers supply the transaction runner used
// by the cascades.
func NewSQLiteEntityRepoWithUoW(q db.DBTX, uow db.UnitOfWork) *SQLiteEntityRepo {
	return &SQLiteEntityRepo{db: q, uow: uow}
}

func (r *SQLiteEntityRepo) ListChildren(ctx context.Context, kind domain.Kind, parentID string) ([]*domain.Entity, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	t := tables[kind]

	var (
		rows *sql.Rows
		err  error
	)
	if t.parentCol == "" {
		rows, err = r.db.QueryContext(ctx,
			fmt.Sprintf(`SELECT id, NULL, %s FROM %s ORDER BY id DESC`, t.textCol, t.name))
	} else {
		pid, ok := parseRowID(parentID)
		if !ok {
			return []*domain.Entity{}, nil
		}
		rows, err = r.db.QueryContext(ctx,
			fmt.Sprintf(`SELECT id, %s, %s FROM %s WHERE %s = ? ORDER BY id DESC`, t.parentCol, t.textCol, t.name, t.parentCol),
			pid)
	}
	if err != nil {
		return nil, readErr("listing "+t.name, err)
	}
	defer rows.Close()

	entities := []*domain.Entity{}
	for rows.Next() {
		e, err := scanEntity(kind, rows)
		if err != nil {
			return nil, readErr("scanning "+t.name, err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, readErr("iterating "+t.name, err)
	}
	return entities, nil
}

func (r *SQLiteEntityRepo) GetByID(ctx context.Context, kind domain.Kind, id string) (*domain.Entity, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	return getRow(ctx, r.db, kind, id)
}

func (r *SQLiteEntityRepo) Create(ctx context.Context, kind domain.Kind, parentID, text string) (*domain.Entity, error) {
	if err := validateCreate(kind, parentID, text); err != nil {
		return nil, err
	}
	t := tables[kind]

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?)`, t.name, t.textCol)
	args := []any{text}
	if t.parentCol != "" {
		pid, err := r.checkParent(ctx, kind, parentID)
		if err != nil {
			return nil, err
		}
		query = fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES (?, ?)`, t.name, t.parentCol, t.textCol)
		args = []any{pid, text}
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, writeErr("inserting "+string(kind), err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, writeErr("reading "+string(kind)+" id", err)
	}
	return &domain.Entity{Kind: kind, ID: formatRowID(id), ParentID: parentID, Text: text}, nil
}

// checkParent resolves parentID to the row key of an existing parent.
func (r *SQLiteEntityRepo) checkParent(ctx context.Context, kind domain.Kind, parentID string) (int64, error) {
	parentKind, _ := kind.Parent()
	pid, ok := parseRowID(parentID)
	if !ok {
		return 0, fmt.Errorf("%s %q: %w", parentKind, parentID, domain.ErrParentNotFound)
	}
	exists, err := rowExists(ctx, r.db, tables[parentKind].name, pid)
	if err != nil {
		return 0, readErr("checking "+string(parentKind), err)
	}
	if !exists {
		return 0, fmt.Errorf("%s %q: %w", parentKind, parentID, domain.ErrParentNotFound)
	}
	return pid, nil
}

func (r *SQLiteEntityRepo) Update(ctx context.Context, kind domain.Kind, id, text string) (*domain.Entity, error) {
	if err := validateUpdate(kind, text); err != nil {
		return nil, err
	}
	t := tables[kind]
	rowID, ok := parseRowID(id)
	if !ok {
		return nil, notFound(kind, id)
	}

	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET %s = ? WHERE id = ?`, t.name, t.textCol), text, rowID)
	if err != nil {
		return nil, writeErr("updating "+string(kind), err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, writeErr("updating "+string(kind), err)
	} else if n == 0 {
		return nil, notFound(kind, id)
	}
	return getRow(ctx, r.db, kind, id)
}

func (r *SQLiteEntityRepo) Delete(ctx context.Context, kind domain.Kind, id string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return deleteRow(ctx, r.db, kind, id)
}

// DeleteClientCascade deletes the client's notes, then its instruments, then
// the client, committing once.
func (r *SQLiteEntityRepo) DeleteClientCascade(ctx context.Context, id string) error {
	rowID, ok := parseRowID(id)
	if !ok {
		return notFound(domain.KindClient, id)
	}
	return r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		exists, err := rowExists(ctx, tx, "clients", rowID)
		if err != nil {
			return readErr("checking client", err)
		}
		if !exists {
			return notFound(domain.KindClient, id)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM notes WHERE instrumentId IN (SELECT id FROM instruments WHERE clientId = ?)`, rowID); err != nil {
			return writeErr("deleting client notes", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM instruments WHERE clientId = ?`, rowID); err != nil {
			return writeErr("deleting client instruments", err)
		}
		return deleteRow(ctx, tx, domain.KindClient, id)
	})
}

// DeleteInstrumentCascade deletes the instrument's notes and then the
// instrument, committing once.
func (r *SQLiteEntityRepo) DeleteInstrumentCascade(ctx context.Context, id string) error {
	rowID, ok := parseRowID(id)
	if !ok {
		return notFound(domain.KindInstrument, id)
	}
	return r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		exists, err := rowExists(ctx, tx, "instruments", rowID)
		if err != nil {
			return readErr("checking instrument", err)
		}
		if !exists {
			return notFound(domain.KindInstrument, id)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE instrumentId = ?`, rowID); err != nil {
			return writeErr("deleting instrument notes", err)
		}
		return deleteRow(ctx, tx, domain.KindInstrument, id)
	})
}

func getRow(ctx context.Context, q db.DBTX, kind domain.Kind, id string) (*domain.Entity, error) {
	t := tables[kind]
	rowID, ok := parseRowID(id)
	if !ok {
		return nil, notFound(kind, id)
	}
	parentExpr := "NULL"
	if t.parentCol != "" {
		parentExpr = t.parentCol
	}
	row := q.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, %s, %s FROM %s WHERE id = ?`, parentExpr, t.textCol, t.name), rowID)
	e, err := scanEntity(kind, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(kind, id)
	}
	if err != nil {
		return nil, readErr("getting "+string(kind), err)
	}
	return e, nil
}

func deleteRow(ctx context.Context, q db.DBTX, kind domain.Kind, id string) error {
	rowID, ok := parseRowID(id)
	if !ok {
		return notFound(kind, id)
	}
	res, err := q.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, tables[kind].name), rowID)
	if err != nil {
		return writeErr("deleting "+string(kind), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return writeErr("deleting "+string(kind), err)
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}

func rowExists(ctx context.Context, q db.DBTX, tableName string, id int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, fmt.Sprintf(`SELECT 1 FROM %s WHERE id = ?`, tableName), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(kind domain.Kind, s scanner) (*domain.Entity, error) {
	var (
		id     int64
		parent sql.NullInt64
		text   string
	)
	if err := s.Scan(&id, &parent, &text); err != nil {
		return nil, err
	}
	e := &domain.Entity{Kind: kind, ID: formatRowID(id), Text: text}
	if parent.Valid {
		e.ParentID = formatRowID(parent.Int64)
	}
	return e, nil
}
