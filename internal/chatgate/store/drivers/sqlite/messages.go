package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/chatgate/internal/chatgate/domain"
)

type messagesRepo struct {
	db *sql.DB
}

func (r *messagesRepo) AppendMessage(ctx context.Context, m domain.Message) error {
	// seq (INTEGER PRIMARY KEY) assigns insertion order; timestamps are
	// informational and do not drive ordering.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, username, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.Username, string(m.Role), m.Content, m.CreatedAt.UTC(),
	)
	return err
}

func (r *messagesRepo) ListMessages(ctx context.Context, username string, limit int) ([]domain.Message, error) {
	var rows *sql.Rows
	var err error
	if limit > 0 {
		// Tail selection: newest `limit` rows, re-ordered oldest first.
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, username, role, content, created_at FROM (
				SELECT seq, id, username, role, content, created_at
				FROM messages WHERE username = ?
				ORDER BY seq DESC LIMIT ?
			) ORDER BY seq ASC`, username, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, username, role, content, created_at
			FROM messages WHERE username = ?
			ORDER BY seq ASC`, username)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		var role string
		if err := rows.Scan(&m.ID, &m.Username, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = domain.MessageRole(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *messagesRepo) ClearMessages(ctx context.Context, username string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE username = ?`, username)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
