package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/docchat/internal/model"
	"github.com/xxxsen/docchat/internal/pkg/dbutil"
	appErr "github.com/xxxsen/docchat/internal/pkg/errors"
)

// TurnRepo is the durable conversation log. Every answered query lands here,
// including degraded and fallback answers.
type TurnRepo struct {
	db     *sql.DB
	driver string
}

func NewTurnRepo(db *sql.DB, driver string) *TurnRepo {
	return &TurnRepo{db: db, driver: driver}
}

func (r *TurnRepo) Create(ctx context.Context, turn *model.ChatTurn) error {
	citations := "[]"
	if len(turn.Citations) > 0 {
		if data, err := json.Marshal(turn.Citations); err == nil {
			citations = string(data)
		}
	}
	data := map[string]interface{}{
		"id":                  turn.ID,
		"session_id":          turn.SessionID,
		"user_message":        turn.UserMessage,
		"assistant_response":  turn.AssistantResponse,
		"retrieval_used":      boolToInt(turn.RetrievalUsed),
		"knowledge_base_used": boolToInt(turn.KnowledgeBaseUsed),
		"fallback_reason":     turn.FallbackReason,
		"citations":           citations,
		"latency_ms":          turn.LatencyMs,
		"ctime":               turn.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("chat_turns", []map[string]interface{}{data})
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

func (r *TurnRepo) ListBySession(ctx context.Context, sessionID string) ([]*model.ChatTurn, error) {
	sqlStr, args := dbutil.Finalize(r.driver, `
		SELECT id, session_id, user_message, assistant_response, retrieval_used,
			knowledge_base_used, fallback_reason, citations, latency_ms, ctime
		FROM chat_turns WHERE session_id = ? ORDER BY ctime ASC`, []interface{}{sessionID})
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTurns(rows)
}

// CountBySessions returns turn counts per session, batched for the session
// list endpoint.
func (r *TurnRepo) CountBySessions(ctx context.Context, sessionIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return counts, nil
	}
	sqlStr, args, err := dbutil.In(r.driver,
		`SELECT session_id, COUNT(*) FROM chat_turns WHERE session_id IN (?) GROUP BY session_id`,
		sessionIDs)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var count int64
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}
	return counts, rows.Err()
}

func (r *TurnRepo) CountOutcomes(ctx context.Context) (*model.OutcomeCounts, error) {
	sqlStr, args := dbutil.Finalize(r.driver, `
		SELECT COUNT(*),
			COALESCE(SUM(retrieval_used), 0),
			COALESCE(SUM(knowledge_base_used), 0),
			COALESCE(SUM(CASE WHEN fallback_reason != '' THEN 1 ELSE 0 END), 0)
		FROM chat_turns`, nil)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	var counts model.OutcomeCounts
	if err := row.Scan(&counts.Total, &counts.RetrievalUsed, &counts.KnowledgeBased, &counts.FallbackAnswers); err != nil {
		return nil, err
	}
	return &counts, nil
}

func (r *TurnRepo) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	sqlStr, args := dbutil.Finalize(r.driver,
		`DELETE FROM chat_turns WHERE ctime < ?`, []interface{}{cutoff})
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanTurns(rows *sql.Rows) ([]*model.ChatTurn, error) {
	var turns []*model.ChatTurn
	for rows.Next() {
		var t model.ChatTurn
		var retrieval, knowledge int
		var citations string
		if err := rows.Scan(&t.ID, &t.SessionID, &t.UserMessage, &t.AssistantResponse,
			&retrieval, &knowledge, &t.FallbackReason, &citations, &t.LatencyMs, &t.Ctime); err != nil {
			return nil, err
		}
		t.RetrievalUsed = retrieval != 0
		t.KnowledgeBaseUsed = knowledge != 0
		_ = json.Unmarshal([]byte(citations), &t.Citations)
		turns = append(turns, &t)
	}
	return turns, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
