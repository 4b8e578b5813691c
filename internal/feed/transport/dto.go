package transport

import "time"

type ToggleReactionRequest struct {
	ReactionType string `json:"reactionType" validate:"required,oneof=like celebrate insightful"`
}

type CreateCommentRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

// ReactionSummary groups reactions of one type on an entry.
type ReactionSummary struct {
	Type  string   `json:"type"`
	Count int      `json:"count"`
	Users []string `json:"users"`
	Me    bool     `json:"me"`
}

type ToggleReactionResponse struct {
	Active    bool              `json:"active"`
	Reactions []ReactionSummary `json:"reactions"`
}

type CommentItem struct {
	ID        string    `json:"id"`
	UserEmail string    `json:"userEmail"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type CommentListResponse struct {
	Items []CommentItem `json:"items"`
}
