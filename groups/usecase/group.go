package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/sorogrupos/jobcast/groups/domain"
)

type GroupUsecase struct {
	repo domain.GroupRepository
}

func NewGroupUsecase(repo domain.GroupRepository) *GroupUsecase {
	return &GroupUsecase{repo: repo}
}

func (u *GroupUsecase) Register(ctx context.Context, group *domain.Group) error {
	if err := u.repo.Create(ctx, group); err != nil {
		if err == domain.ErrDuplicateGroup {
			return err
		}
		return fmt.Errorf("failed to register group: %w", err)
	}
	return nil
}

func (u *GroupUsecase) Get(ctx context.Context, userID, id string) (*domain.Group, error) {
	return u.repo.GetByID(ctx, userID, id)
}

// List returns the user's groups, optionally narrowed to one tag and a
// case-insensitive name fragment.
func (u *GroupUsecase) List(ctx context.Context, userID, tagID, name string) ([]domain.Group, error) {
	var (
		groups []domain.Group
		err    error
	)
	if tagID != "" {
		groups, err = u.repo.ListByTag(ctx, userID, tagID)
	} else {
		groups, err = u.repo.ListByUser(ctx, userID)
	}
	if err != nil || name == "" {
		return groups, err
	}

	needle := strings.ToLower(name)
	filtered := groups[:0]
	for _, g := range groups {
		if strings.Contains(strings.ToLower(g.Name), needle) {
			filtered = append(filtered, g)
		}
	}
	return filtered, nil
}

func (u *GroupUsecase) Update(ctx context.Context, group *domain.Group) error {
	return u.repo.Update(ctx, group)
}

func (u *GroupUsecase) Delete(ctx context.Context, userID, id string) error {
	return u.repo.Delete(ctx, userID, id)
}

func (u *GroupUsecase) SetTags(ctx context.Context, userID, groupID string, tagIDs []string) error {
	return u.repo.SetTags(ctx, userID, groupID, tagIDs)
}

func (u *GroupUsecase) CreateTag(ctx context.Context, tag *domain.Tag) error {
	return u.repo.CreateTag(ctx, tag)
}

func (u *GroupUsecase) ListTags(ctx context.Context, userID string) ([]domain.Tag, error) {
	return u.repo.ListTags(ctx, userID)
}

func (u *GroupUsecase) DeleteTag(ctx context.Context, userID, tagID string) error {
	return u.repo.DeleteTag(ctx, userID, tagID)
}
