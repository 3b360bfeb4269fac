package domain

import (
	"context"
	"errors"
	"time"
)

// Group mirrors one WhatsApp group the tenant can broadcast to. GroupID is
// the WhatsApp-side identifier used on schedule rows; ID is ours.
type Group struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name_group"`
	GroupID     string    `json:"id_group"`
	MemberCount int       `json:"total"`
	IsAdmin     bool      `json:"admin"`
	InviteLink  string    `json:"link_invite"`
	Description string    `json:"description"`
	Tags        []Tag     `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Tag labels groups for bulk selection in the composer ("drivers",
// "downtown", ...).
type Tag struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
}

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrTagNotFound   = errors.New("tag not found")

	// ErrDuplicateGroup is returned when the WhatsApp group is already
	// registered for the user.
	ErrDuplicateGroup = errors.New("group already registered")
)

type GroupRepository interface {
	Create(ctx context.Context, group *Group) error
	GetByID(ctx context.Context, userID, id string) (*Group, error)
	ListByUser(ctx context.Context, userID string) ([]Group, error)
	ListByTag(ctx context.Context, userID, tagID string) ([]Group, error)
	Update(ctx context.Context, group *Group) error
	Delete(ctx context.Context, userID, id string) error
	SetTags(ctx context.Context, userID, groupID string, tagIDs []string) error

	CreateTag(ctx context.Context, tag *Tag) error
	ListTags(ctx context.Context, userID string) ([]Tag, error)
	DeleteTag(ctx context.Context, userID, tagID string) error
}
