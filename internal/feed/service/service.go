package service

import (
	"context"
	"strings"

	"prmhub_backend/internal/feed/repository"
	"prmhub_backend/internal/feed/transport"
	"prmhub_backend/platform/apperr"

	"github.com/google/uuid"
)

// Store is the data access needed by feed social operations.
type Store interface {
	ToggleReaction(ctx context.Context, entryID uuid.UUID, reactionType string, userID, orgID uuid.UUID) (bool, error)
	ListReactionsByEntry(ctx context.Context, entryID uuid.UUID, orgID uuid.UUID) ([]repository.Reaction, error)
	CreateComment(ctx context.Context, entryID uuid.UUID, userID, orgID uuid.UUID, body string) (uuid.UUID, error)
	ListCommentsByEntry(ctx context.Context, entryID uuid.UUID, orgID uuid.UUID) ([]repository.Comment, error)
	DeleteComment(ctx context.Context, commentID, userID, orgID uuid.UUID) error
}

type Service struct {
	repo Store
}

func New(repo Store) *Service {
	return &Service{repo: repo}
}

// ToggleReaction toggles a reaction on or off and returns the updated summary.
func (s *Service) ToggleReaction(ctx context.Context, entryID uuid.UUID, reactionType string, userID, orgID uuid.UUID) (transport.ToggleReactionResponse, error) {
	active, err := s.repo.ToggleReaction(ctx, entryID, reactionType, userID, orgID)
	if err != nil {
		return transport.ToggleReactionResponse{}, err
	}

	reactions, err := s.repo.ListReactionsByEntry(ctx, entryID, orgID)
	if err != nil {
		return transport.ToggleReactionResponse{}, err
	}

	return transport.ToggleReactionResponse{
		Active:    active,
		Reactions: buildReactionSummary(reactions, userID),
	}, nil
}

// ListReactions returns the reaction summary for a single entry.
func (s *Service) ListReactions(ctx context.Context, entryID, userID, orgID uuid.UUID) ([]transport.ReactionSummary, error) {
	reactions, err := s.repo.ListReactionsByEntry(ctx, entryID, orgID)
	if err != nil {
		return nil, err
	}
	return buildReactionSummary(reactions, userID), nil
}

// CreateComment creates a comment and returns the full thread.
func (s *Service) CreateComment(ctx context.Context, entryID, userID, orgID uuid.UUID, body string) (transport.CommentListResponse, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return transport.CommentListResponse{}, apperr.Validation("comment body is empty")
	}

	if _, err := s.repo.CreateComment(ctx, entryID, userID, orgID, trimmed); err != nil {
		return transport.CommentListResponse{}, err
	}

	return s.ListComments(ctx, entryID, orgID)
}

// ListComments returns the full comment thread for an entry.
func (s *Service) ListComments(ctx context.Context, entryID, orgID uuid.UUID) (transport.CommentListResponse, error) {
	rows, err := s.repo.ListCommentsByEntry(ctx, entryID, orgID)
	if err != nil {
		return transport.CommentListResponse{}, err
	}

	items := make([]transport.CommentItem, 0, len(rows))
	for _, c := range rows {
		items = append(items, transport.CommentItem{
			ID:        c.ID.String(),
			UserEmail: c.UserEmail,
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
		})
	}
	return transport.CommentListResponse{Items: items}, nil
}

// DeleteComment removes the caller's own comment.
func (s *Service) DeleteComment(ctx context.Context, commentID, userID, orgID uuid.UUID) error {
	return s.repo.DeleteComment(ctx, commentID, userID, orgID)
}

func buildReactionSummary(reactions []repository.Reaction, currentUserID uuid.UUID) []transport.ReactionSummary {
	type bucket struct {
		users []string
		me    bool
	}
	groups := map[string]*bucket{}
	order := []string{}

	for _, r := range reactions {
		b, ok := groups[r.ReactionType]
		if !ok {
			b = &bucket{}
			groups[r.ReactionType] = b
			order = append(order, r.ReactionType)
		}
		b.users = append(b.users, r.UserEmail)
		if r.UserID == currentUserID {
			b.me = true
		}
	}

	out := make([]transport.ReactionSummary, 0, len(order))
	for _, t := range order {
		b := groups[t]
		out = append(out, transport.ReactionSummary{
			Type:  t,
			Count: len(b.users),
			Users: b.users,
			Me:    b.me,
		})
	}
	return out
}
