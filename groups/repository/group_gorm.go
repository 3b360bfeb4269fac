package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sorogrupos/jobcast/groups/domain"
	"gorm.io/gorm"
)

type groupModel struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"column:user_id;not null;uniqueIndex:idx_groups_user_wa"`
	Name        string `gorm:"column:name_group;not null"`
	GroupID     string `gorm:"column:id_group;not null;uniqueIndex:idx_groups_user_wa"`
	MemberCount int    `gorm:"column:total;default:0"`
	IsAdmin     bool   `gorm:"column:admin;default:false"`
	InviteLink  string `gorm:"column:link_invite"`
	Description string `gorm:"type:text"`
	Tags        []tagModel `gorm:"many2many:group_tags;"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

func (groupModel) TableName() string {
	return "whatsapp_groups"
}

type tagModel struct {
	ID     string `gorm:"primaryKey"`
	UserID string `gorm:"column:user_id;not null;index"`
	Name   string `gorm:"not null"`
	Color  string
}

func (tagModel) TableName() string {
	return "tags_group"
}

type GroupGormRepository struct {
	db *gorm.DB
}

func NewGroupGormRepository(db *gorm.DB) *GroupGormRepository {
	return &GroupGormRepository{db: db}
}

func (r *GroupGormRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&tagModel{}, &groupModel{})
}

func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func (r *GroupGormRepository) Create(ctx context.Context, group *domain.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	group.CreatedAt = now
	group.UpdatedAt = now

	err := r.db.WithContext(ctx).Omit("Tags").Create(toGroupModel(group)).Error
	if isDuplicateErr(err) {
		return domain.ErrDuplicateGroup
	}
	return err
}

func (r *GroupGormRepository) GetByID(ctx context.Context, userID, id string) (*domain.Group, error) {
	var m groupModel
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("id = ? AND user_id = ?", id, userID).
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}
	g := fromGroupModel(m)
	return &g, nil
}

func (r *GroupGormRepository) ListByUser(ctx context.Context, userID string) ([]domain.Group, error) {
	var models []groupModel
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("user_id = ?", userID).
		Order("name_group ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromGroupModels(models), nil
}

func (r *GroupGormRepository) ListByTag(ctx context.Context, userID, tagID string) ([]domain.Group, error) {
	var models []groupModel
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Joins("JOIN group_tags ON group_tags.group_model_id = whatsapp_groups.id").
		Where("whatsapp_groups.user_id = ? AND group_tags.tag_model_id = ?", userID, tagID).
		Order("name_group ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromGroupModels(models), nil
}

func (r *GroupGormRepository) Update(ctx context.Context, group *domain.Group) error {
	group.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Omit("Tags").
		Where("id = ? AND user_id = ?", group.ID, group.UserID).
		Updates(toGroupModel(group))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

func (r *GroupGormRepository) Delete(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m groupModel
		err := tx.Where("id = ? AND user_id = ?", id, userID).First(&m).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrGroupNotFound
			}
			return err
		}
		if err := tx.Model(&m).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&m).Error
	})
}

func (r *GroupGormRepository) SetTags(ctx context.Context, userID, groupID string, tagIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var g groupModel
		err := tx.Where("id = ? AND user_id = ?", groupID, userID).First(&g).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrGroupNotFound
			}
			return err
		}

		var tags []tagModel
		if len(tagIDs) > 0 {
			if err := tx.Where("user_id = ? AND id IN ?", userID, tagIDs).Find(&tags).Error; err != nil {
				return err
			}
			if len(tags) != len(tagIDs) {
				return domain.ErrTagNotFound
			}
		}
		return tx.Model(&g).Association("Tags").Replace(tags)
	})
}

func (r *GroupGormRepository) CreateTag(ctx context.Context, tag *domain.Tag) error {
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(&tagModel{
		ID:     tag.ID,
		UserID: tag.UserID,
		Name:   tag.Name,
		Color:  tag.Color,
	}).Error
}

func (r *GroupGormRepository) ListTags(ctx context.Context, userID string) ([]domain.Tag, error) {
	var models []tagModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	tags := make([]domain.Tag, 0, len(models))
	for _, m := range models {
		tags = append(tags, fromTagModel(m))
	}
	return tags, nil
}

func (r *GroupGormRepository) DeleteTag(ctx context.Context, userID, tagID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", tagID, userID).Delete(&tagModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrTagNotFound
		}
		return tx.Exec("DELETE FROM group_tags WHERE tag_model_id = ?", tagID).Error
	})
}

func toGroupModel(g *domain.Group) *groupModel {
	return &groupModel{
		ID:          g.ID,
		UserID:      g.UserID,
		Name:        g.Name,
		GroupID:     g.GroupID,
		MemberCount: g.MemberCount,
		IsAdmin:     g.IsAdmin,
		InviteLink:  g.InviteLink,
		Description: g.Description,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func fromGroupModel(m groupModel) domain.Group {
	tags := make([]domain.Tag, 0, len(m.Tags))
	for _, t := range m.Tags {
		tags = append(tags, fromTagModel(t))
	}
	return domain.Group{
		ID:          m.ID,
		UserID:      m.UserID,
		Name:        m.Name,
		GroupID:     m.GroupID,
		MemberCount: m.MemberCount,
		IsAdmin:     m.IsAdmin,
		InviteLink:  m.InviteLink,
		Description: m.Description,
		Tags:        tags,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromGroupModels(models []groupModel) []domain.Group {
	groups := make([]domain.Group, 0, len(models))
	for _, m := range models {
		groups = append(groups, fromGroupModel(m))
	}
	return groups
}

func fromTagModel(m tagModel) domain.Tag {
	return domain.Tag{
		ID:     m.ID,
		UserID: m.UserID,
		Name:   m.Name,
		Color:  m.Color,
	}
}
