package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bloxforge/app/models/project"
	"bloxforge/pkg/database"
)

// ProjectRepository 项目仓库，所有查询都带属主条件
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository 创建仓库实例
func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{
		db: database.DB,
	}
}

// Create 创建项目
func (r *ProjectRepository) Create(ctx context.Context, userID, name, data string) (*project.Project, error) {
	p := &project.Project{
		ID:     uuid.New().String(),
		UserID: userID,
		Name:   name,
		Data:   data,
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID 查询单个项目，限定属主；不属于调用者的项目等同不存在
func (r *ProjectRepository) GetByID(ctx context.Context, userID, projectID string) (*project.Project, error) {
	var p project.Project
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", projectID, userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUser 分页查询用户项目
func (r *ProjectRepository) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]project.Project, int64, error) {
	var projects []project.Project
	var total int64

	query := r.db.WithContext(ctx).Model(&project.Project{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("updated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&projects).Error

	return projects, total, err
}

// Update 更新项目名称/内容，限定属主
func (r *ProjectRepository) Update(ctx context.Context, userID, projectID string, updates map[string]interface{}) (*project.Project, error) {
	result := r.db.WithContext(ctx).Model(&project.Project{}).
		Where("id = ? AND user_id = ?", projectID, userID).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, userID, projectID)
}

// Delete 删除项目（软删除），限定属主
func (r *ProjectRepository) Delete(ctx context.Context, userID, projectID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", projectID, userID).
		Delete(&project.Project{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
