package repository

import (
	"context"
	"time"

	"prmhub_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Reaction is a single user reaction on a status history entry.
type Reaction struct {
	ID           uuid.UUID
	EntryID      uuid.UUID
	ReactionType string
	UserID       uuid.UUID
	UserEmail    string
	CreatedAt    time.Time
}

// Comment is a comment on a status history entry, with author email joined in.
type Comment struct {
	ID        uuid.UUID
	EntryID   uuid.UUID
	UserID    uuid.UUID
	UserEmail string
	Body      string
	CreatedAt time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ToggleReaction flips a reaction on or off. Returns true when the reaction
// is now active.
func (r *Repository) ToggleReaction(ctx context.Context, entryID uuid.UUID, reactionType string, userID, orgID uuid.UUID) (bool, error) {
	// Try delete first. A removed row means the toggle turned the reaction off.
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM feed_reactions
		WHERE entry_id = $1 AND reaction_type = $2 AND user_id = $3 AND org_id = $4
	`, entryID, reactionType, userID, orgID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO feed_reactions (id, entry_id, reaction_type, user_id, org_id, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT DO NOTHING
	`, uuid.New(), entryID, reactionType, userID, orgID)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) ListReactionsByEntry(ctx context.Context, entryID uuid.UUID, orgID uuid.UUID) ([]Reaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT fr.id, fr.entry_id, fr.reaction_type, fr.user_id, u.email, fr.created_at
		FROM feed_reactions fr
		JOIN users u ON u.id = fr.user_id
		WHERE fr.entry_id = $1 AND fr.org_id = $2
		ORDER BY fr.created_at
	`, entryID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reaction
	for rows.Next() {
		var re Reaction
		if err := rows.Scan(&re.ID, &re.EntryID, &re.ReactionType, &re.UserID, &re.UserEmail, &re.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, rows.Err()
}

func (r *Repository) CreateComment(ctx context.Context, entryID uuid.UUID, userID, orgID uuid.UUID, body string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO feed_comments (id, entry_id, user_id, org_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`, id, entryID, userID, orgID, body)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *Repository) ListCommentsByEntry(ctx context.Context, entryID uuid.UUID, orgID uuid.UUID) ([]Comment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.entry_id, c.user_id, u.email, c.body, c.created_at
		FROM feed_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.entry_id = $1 AND c.org_id = $2
		ORDER BY c.created_at ASC
	`, entryID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.EntryID, &c.UserID, &c.UserEmail, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteComment removes a comment. Only the author can delete their own
// comment.
func (r *Repository) DeleteComment(ctx context.Context, commentID, userID, orgID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM feed_comments
		WHERE id = $1 AND user_id = $2 AND org_id = $3
	`, commentID, userID, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("comment not found")
	}
	return nil
}
