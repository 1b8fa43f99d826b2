package database

import (
	"context"
	"fmt"

	"github.com/example/learnpath/pkg/models"
)

// StudyGroupRepository handles study groups and their members
type StudyGroupRepository struct{}

// NewStudyGroupRepository creates a new repository instance
func NewStudyGroupRepository() *StudyGroupRepository {
	return &StudyGroupRepository{}
}

// Create inserts a group and adds its creator as the first member
func (r *StudyGroupRepository) Create(ctx context.Context, group *models.StudyGroup, creatorID int64) error {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	group.CreatedAt = now()
	var id int64
	err = tx.QueryRowxContext(ctx,
		tx.Rebind("INSERT INTO study_groups (name, description, course_id, created_at) VALUES (?, ?, ?, ?) RETURNING id"),
		group.Name, group.Description, group.CourseID, group.CreatedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to create study group: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		tx.Rebind("INSERT INTO study_group_members (study_group_id, user_id, joined_at) VALUES (?, ?, ?)"),
		id, creatorID, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add study group creator: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit study group: %w", err)
	}
	group.ID = id
	return nil
}

// GetByID returns a study group by ID
func (r *StudyGroupRepository) GetByID(ctx context.Context, id int64) (*models.StudyGroup, error) {
	var group models.StudyGroup
	err := DB.GetContext(ctx, &group,
		DB.Rebind("SELECT id, name, description, course_id, created_at FROM study_groups WHERE id = ?"), id)
	if err != nil {
		return nil, notFound(err, "study group")
	}
	return &group, nil
}

// GetAll returns every study group
func (r *StudyGroupRepository) GetAll(ctx context.Context) ([]models.StudyGroup, error) {
	groups := []models.StudyGroup{}
	if err := DB.SelectContext(ctx, &groups, "SELECT id, name, description, course_id, created_at FROM study_groups ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to get study groups: %w", err)
	}
	return groups, nil
}

// Join adds a user to a group; joining twice is a no-op
func (r *StudyGroupRepository) Join(ctx context.Context, groupID, userID int64) error {
	_, err := DB.ExecContext(ctx, DB.Rebind(`
		INSERT INTO study_group_members (study_group_id, user_id, joined_at)
		VALUES (?, ?, ?)
		ON CONFLICT (study_group_id, user_id) DO NOTHING`),
		groupID, userID, now(),
	)
	if err != nil {
		return fmt.Errorf("failed to join study group: %w", err)
	}
	return nil
}

// Members lists the members of a group in join order
func (r *StudyGroupRepository) Members(ctx context.Context, groupID int64) ([]models.StudyGroupMember, error) {
	members := []models.StudyGroupMember{}
	err := DB.SelectContext(ctx, &members, DB.Rebind(`
		SELECT m.user_id, u.username, m.joined_at
		FROM study_group_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.study_group_id = ?
		ORDER BY m.joined_at, m.user_id`), groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get study group members: %w", err)
	}
	return members, nil
}
