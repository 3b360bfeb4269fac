package usecase

import (
	"context"
	"testing"

	"github.com/sorogrupos/jobcast/groups/domain"
	"github.com/sorogrupos/jobcast/groups/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupGroupUsecase(t *testing.T) *GroupUsecase {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	repo := repository.NewGroupGormRepository(db)
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewGroupUsecase(repo)
}

func seedGroup(t *testing.T, u *GroupUsecase, name, waID string) *domain.Group {
	t.Helper()
	g := &domain.Group{
		UserID:      "user-1",
		Name:        name,
		GroupID:     waID,
		MemberCount: 120,
		IsAdmin:     true,
	}
	if err := u.Register(context.Background(), g); err != nil {
		t.Fatalf("seed group: %v", err)
	}
	return g
}

func TestRegisterRejectsDuplicateWhatsAppID(t *testing.T) {
	u := setupGroupUsecase(t)
	seedGroup(t, u, "Vagas Centro", "wa-123")

	dup := &domain.Group{UserID: "user-1", Name: "Outro Nome", GroupID: "wa-123"}
	if err := u.Register(context.Background(), dup); err != domain.ErrDuplicateGroup {
		t.Errorf("expected ErrDuplicateGroup, got %v", err)
	}

	// the same WhatsApp group under another tenant is fine
	other := &domain.Group{UserID: "user-2", Name: "Vagas Centro", GroupID: "wa-123"}
	if err := u.Register(context.Background(), other); err != nil {
		t.Errorf("other tenant must be able to register, got %v", err)
	}
}

func TestTagAssignmentAndFilter(t *testing.T) {
	u := setupGroupUsecase(t)
	ctx := context.Background()

	g1 := seedGroup(t, u, "Vagas Centro", "wa-1")
	seedGroup(t, u, "Vagas Zona Norte", "wa-2")

	tag := &domain.Tag{UserID: "user-1", Name: "motoristas", Color: "#00aa55"}
	if err := u.CreateTag(ctx, tag); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	if err := u.SetTags(ctx, "user-1", g1.ID, []string{tag.ID}); err != nil {
		t.Fatalf("SetTags: %v", err)
	}

	tagged, err := u.List(ctx, "user-1", tag.ID, "")
	if err != nil {
		t.Fatalf("List by tag: %v", err)
	}
	if len(tagged) != 1 || tagged[0].ID != g1.ID {
		t.Errorf("expected only %s tagged, got %+v", g1.ID, tagged)
	}

	all, err := u.List(ctx, "user-1", "", "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 groups, got %d", len(all))
	}

	// replacing with an empty set clears the tag
	if err := u.SetTags(ctx, "user-1", g1.ID, nil); err != nil {
		t.Fatalf("SetTags clear: %v", err)
	}
	tagged, err = u.List(ctx, "user-1", tag.ID, "")
	if err != nil {
		t.Fatalf("List by tag: %v", err)
	}
	if len(tagged) != 0 {
		t.Errorf("expected no tagged groups after clear, got %d", len(tagged))
	}
}

func TestListFiltersByNameFragment(t *testing.T) {
	u := setupGroupUsecase(t)
	ctx := context.Background()

	seedGroup(t, u, "Vagas Centro", "wa-1")
	seedGroup(t, u, "Vagas Zona Norte", "wa-2")
	seedGroup(t, u, "Empregos Itu", "wa-3")

	got, err := u.List(ctx, "user-1", "", "vagas")
	if err != nil {
		t.Fatalf("List by name: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 matches for 'vagas', got %d", len(got))
	}

	got, err = u.List(ctx, "user-1", "", "itu")
	if err != nil {
		t.Fatalf("List by name: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Empregos Itu" {
		t.Errorf("expected Empregos Itu, got %+v", got)
	}
}

func TestSetTagsUnknownTag(t *testing.T) {
	u := setupGroupUsecase(t)
	g := seedGroup(t, u, "Vagas Centro", "wa-1")

	err := u.SetTags(context.Background(), "user-1", g.ID, []string{"missing"})
	if err != domain.ErrTagNotFound {
		t.Errorf("expected ErrTagNotFound, got %v", err)
	}
}
