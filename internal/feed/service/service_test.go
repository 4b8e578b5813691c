package service

import (
	"context"
	"testing"
	"time"

	"prmhub_backend/internal/feed/repository"
	"prmhub_backend/platform/apperr"

	"github.com/google/uuid"
)

type reactionKey struct {
	entryID      uuid.UUID
	reactionType string
	userID       uuid.UUID
}

type fakeStore struct {
	reactions map[reactionKey]repository.Reaction
	comments  []repository.Comment
	emails    map[uuid.UUID]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reactions: make(map[reactionKey]repository.Reaction),
		emails:    make(map[uuid.UUID]string),
	}
}

func (f *fakeStore) email(userID uuid.UUID) string {
	if e, ok := f.emails[userID]; ok {
		return e
	}
	return "user@example.com"
}

func (f *fakeStore) ToggleReaction(_ context.Context, entryID uuid.UUID, reactionType string, userID, _ uuid.UUID) (bool, error) {
	key := reactionKey{entryID: entryID, reactionType: reactionType, userID: userID}
	if _, exists := f.reactions[key]; exists {
		delete(f.reactions, key)
		return false, nil
	}
	f.reactions[key] = repository.Reaction{
		ID:           uuid.New(),
		EntryID:      entryID,
		ReactionType: reactionType,
		UserID:       userID,
		UserEmail:    f.email(userID),
		CreatedAt:    time.Now(),
	}
	return true, nil
}

func (f *fakeStore) ListReactionsByEntry(_ context.Context, entryID uuid.UUID, _ uuid.UUID) ([]repository.Reaction, error) {
	var out []repository.Reaction
	for _, r := range f.reactions {
		if r.EntryID == entryID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateComment(_ context.Context, entryID uuid.UUID, userID, orgID uuid.UUID, body string) (uuid.UUID, error) {
	c := repository.Comment{
		ID:        uuid.New(),
		EntryID:   entryID,
		UserID:    userID,
		UserEmail: f.email(userID),
		Body:      body,
		CreatedAt: time.Now(),
	}
	f.comments = append(f.comments, c)
	return c.ID, nil
}

func (f *fakeStore) ListCommentsByEntry(_ context.Context, entryID uuid.UUID, _ uuid.UUID) ([]repository.Comment, error) {
	var out []repository.Comment
	for _, c := range f.comments {
		if c.EntryID == entryID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteComment(_ context.Context, commentID, userID, _ uuid.UUID) error {
	for i, c := range f.comments {
		if c.ID == commentID && c.UserID == userID {
			f.comments = append(f.comments[:i], f.comments[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("comment not found")
}

func TestToggleReactionOnThenOff(t *testing.T) {
	store := newFakeStore()
	svc := New(store)
	entryID, userID, orgID := uuid.New(), uuid.New(), uuid.New()

	resp, err := svc.ToggleReaction(context.Background(), entryID, "like", userID, orgID)
	if err != nil {
		t.Fatalf("ToggleReaction() error = %v", err)
	}
	if !resp.Active {
		t.Fatal("first toggle should activate the reaction")
	}
	if len(resp.Reactions) != 1 || resp.Reactions[0].Count != 1 || !resp.Reactions[0].Me {
		t.Fatalf("summary = %+v, want one reaction by me", resp.Reactions)
	}

	resp, err = svc.ToggleReaction(context.Background(), entryID, "like", userID, orgID)
	if err != nil {
		t.Fatalf("ToggleReaction() error = %v", err)
	}
	if resp.Active {
		t.Fatal("second toggle should remove the reaction")
	}
	if len(resp.Reactions) != 0 {
		t.Fatalf("summary = %+v, want empty", resp.Reactions)
	}
}

func TestReactionSummaryGroupsByType(t *testing.T) {
	store := newFakeStore()
	svc := New(store)
	entryID, orgID := uuid.New(), uuid.New()
	me, other := uuid.New(), uuid.New()
	store.emails[me] = "me@example.com"
	store.emails[other] = "other@example.com"

	for _, tc := range []struct {
		user uuid.UUID
		typ  string
	}{
		{me, "like"}, {other, "like"}, {other, "celebrate"},
	} {
		if _, err := svc.ToggleReaction(context.Background(), entryID, tc.typ, tc.user, orgID); err != nil {
			t.Fatalf("ToggleReaction() error = %v", err)
		}
	}

	summary, err := svc.ListReactions(context.Background(), entryID, me, orgID)
	if err != nil {
		t.Fatalf("ListReactions() error = %v", err)
	}
	byType := map[string]int{}
	meByType := map[string]bool{}
	for _, s := range summary {
		byType[s.Type] = s.Count
		meByType[s.Type] = s.Me
	}
	if byType["like"] != 2 || byType["celebrate"] != 1 {
		t.Fatalf("counts = %v, want like=2 celebrate=1", byType)
	}
	if !meByType["like"] || meByType["celebrate"] {
		t.Fatalf("me flags = %v, want like=true celebrate=false", meByType)
	}
}

func TestCreateCommentReturnsThread(t *testing.T) {
	store := newFakeStore()
	svc := New(store)
	entryID, userID, orgID := uuid.New(), uuid.New(), uuid.New()

	thread, err := svc.CreateComment(context.Background(), entryID, userID, orgID, "  nice progress  ")
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if len(thread.Items) != 1 {
		t.Fatalf("thread items = %d, want 1", len(thread.Items))
	}
	if thread.Items[0].Body != "nice progress" {
		t.Fatalf("body = %q, want trimmed", thread.Items[0].Body)
	}
}

func TestCreateCommentRejectsEmptyBody(t *testing.T) {
	svc := New(newFakeStore())

	_, err := svc.CreateComment(context.Background(), uuid.New(), uuid.New(), uuid.New(), "   ")
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("error kind = %v, want validation", apperr.GetKind(err))
	}
}

func TestDeleteCommentOnlyByAuthor(t *testing.T) {
	store := newFakeStore()
	svc := New(store)
	entryID, author, orgID := uuid.New(), uuid.New(), uuid.New()

	thread, err := svc.CreateComment(context.Background(), entryID, author, orgID, "hello")
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	commentID := uuid.MustParse(thread.Items[0].ID)

	if err := svc.DeleteComment(context.Background(), commentID, uuid.New(), orgID); apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("delete by stranger error kind = %v, want not found", apperr.GetKind(err))
	}
	if err := svc.DeleteComment(context.Background(), commentID, author, orgID); err != nil {
		t.Fatalf("delete by author error = %v", err)
	}
}
