// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventlog indexes committed pool events in sqlite for querying.
package eventlog

import (
	"context"
	"database/sql"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/cactus"
	"github.com/cactusfi/cactus/staking"
)

const memPath = ":memory:"

type EventLog struct {
	path          string
	db            *sql.DB
	driverVersion string
}

var _ staking.EventSink = (*EventLog)(nil)

// New creates or opens the event log at path.
func New(path string) (log *EventLog, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if log == nil {
			db.Close()
		}
	}()
	if path == memPath {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventLog{path, db, driverVer}, nil
}

// NewMem creates an event log in RAM.
func NewMem() (*EventLog, error) {
	return New(memPath)
}

func (l *EventLog) Close() error {
	return l.db.Close()
}

func (l *EventLog) Path() string {
	return l.path
}

func (l *EventLog) DriverVersion() string {
	return l.driverVersion
}

// Write appends events in one transaction.
func (l *EventLog) Write(ctx context.Context, events []*staking.Event) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO event(kind, user, amount, principal, reward, time) VALUES(?,?,?,?,?,?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.ExecContext(ctx,
			string(ev.Kind),
			ev.User.Bytes(),
			ev.Amount.String(),
			ev.Principal.String(),
			ev.Reward.String(),
			ev.Time,
		); err != nil {
			return errors.Wrap(err, "insert event")
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metricWritten().Add(int64(len(events)))
	return nil
}

// Filter returns events matching f. A nil f returns all events in ascending order.
func (l *EventLog) Filter(ctx context.Context, f *Filter) ([]*Record, error) {
	if f == nil {
		return l.query(ctx, "SELECT * FROM event ORDER BY seq ASC")
	}
	observeFilter(f)

	var args []any
	stmt := "SELECT * FROM event WHERE 1"
	if f.User != nil {
		args = append(args, f.User.Bytes())
		stmt += " AND user = ?"
	}
	if len(f.Kinds) > 0 {
		stmt += " AND kind IN (" + strings.TrimSuffix(strings.Repeat("?,", len(f.Kinds)), ",") + ")"
		for _, k := range f.Kinds {
			args = append(args, string(k))
		}
	}
	if f.Range != nil {
		args = append(args, f.Range.From)
		stmt += " AND time >= ?"
		if f.Range.To >= f.Range.From {
			args = append(args, f.Range.To)
			stmt += " AND time <= ?"
		}
	}
	if f.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if f.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, f.Options.Offset, f.Options.Limit)
	}
	return l.query(ctx, stmt, args...)
}

func (l *EventLog) query(ctx context.Context, stmt string, args ...any) ([]*Record, error) {
	rows, err := l.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq                      uint64
			kind                     string
			user                     []byte
			value, principal, reward string
			ts                       uint64
		)
		if err := rows.Scan(&seq, &kind, &user, &value, &principal, &reward, &ts); err != nil {
			return nil, err
		}
		rec := &Record{Seq: seq}
		rec.Kind = staking.EventKind(kind)
		rec.User = cactus.BytesToAddress(user)
		rec.Time = ts
		for _, a := range []struct {
			dst *amount.Amount
			src string
		}{{&rec.Amount, value}, {&rec.Principal, principal}, {&rec.Reward, reward}} {
			if *a.dst, err = amount.ParseBaseUnits(a.src); err != nil {
				return nil, errors.Wrapf(err, "event %d", seq)
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of stored events.
func (l *EventLog) Count(ctx context.Context) (n uint64, err error) {
	err = l.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM event").Scan(&n)
	return
}
