package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/docchat/internal/model"
	"github.com/xxxsen/docchat/internal/pkg/dbutil"
	appErr "github.com/xxxsen/docchat/internal/pkg/errors"
)

type SessionRepo struct {
	db     *sql.DB
	driver string
}

func NewSessionRepo(db *sql.DB, driver string) *SessionRepo {
	return &SessionRepo{db: db, driver: driver}
}

func (r *SessionRepo) Create(ctx context.Context, session *model.ChatSession) error {
	data := map[string]interface{}{
		"id":    session.ID,
		"title": session.Title,
		"ctime": session.Ctime,
		"mtime": session.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("chat_sessions", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(r.driver, sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*model.ChatSession, error) {
	sqlStr, args := dbutil.Finalize(r.driver,
		`SELECT id, title, ctime, mtime FROM chat_sessions WHERE id = ?`, []interface{}{id})
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	var s model.ChatSession
	if err := row.Scan(&s.ID, &s.Title, &s.Ctime, &s.Mtime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) List(ctx context.Context) ([]*model.ChatSession, error) {
	sqlStr, args := dbutil.Finalize(r.driver,
		`SELECT id, title, ctime, mtime FROM chat_sessions ORDER BY mtime DESC`, nil)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sessions []*model.ChatSession
	for rows.Next() {
		var s model.ChatSession
		if err := rows.Scan(&s.ID, &s.Title, &s.Ctime, &s.Mtime); err != nil {
			return nil, err
		}
		sessions = append(sessions, &s)
	}
	return sessions, rows.Err()
}

func (r *SessionRepo) Touch(ctx context.Context, id string, mtime int64) error {
	sqlStr, args, err := builder.BuildUpdate("chat_sessions",
		map[string]interface{}{"id": id},
		map[string]interface{}{"mtime": mtime})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(r.driver, sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
