package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/santaman/internal/model"
)

// PostgresMembershipRepo はPostgreSQLを使用した所属関係リポジトリ。
type PostgresMembershipRepo struct {
	db *sql.DB
}

// NewPostgresMembershipRepo はPostgresMembershipRepoを生成する。
func NewPostgresMembershipRepo(db *sql.DB) *PostgresMembershipRepo {
	return &PostgresMembershipRepo{db: db}
}

// Create はユーザーとグループの所属関係を作成する。
// 既に所属している場合はErrDuplicateKeyを返す。
func (r *PostgresMembershipRepo) Create(ctx context.Context, userID, groupID string, role model.Role) (*model.Membership, error) {
	membership := &model.Membership{
		ID:        uuid.NewString(),
		UserID:    userID,
		GroupID:   groupID,
		Role:      role,
		CreatedAt: time.Now(),
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memberships (id, user_id, group_id, role, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		membership.ID, membership.UserID, membership.GroupID, string(membership.Role), membership.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateKey
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert membership: %w", err)
	}

	return membership, nil
}

// Find はユーザーIDとグループIDで所属関係を取得する。見つからない場合はnilを返す。
func (r *PostgresMembershipRepo) Find(ctx context.Context, userID, groupID string) (*model.Membership, error) {
	membership := &model.Membership{}
	var role string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, group_id, role, created_at FROM memberships
		 WHERE user_id = $1 AND group_id = $2`,
		userID, groupID,
	).Scan(&membership.ID, &membership.UserID, &membership.GroupID, &role, &membership.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}
	membership.Role = model.Role(role)

	return membership, nil
}

// ListByGroup はグループの全所属関係を参加日時順で返す。
func (r *PostgresMembershipRepo) ListByGroup(ctx context.Context, groupID string) ([]*model.Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, group_id, role, created_at FROM memberships
		 WHERE group_id = $1 ORDER BY created_at`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []*model.Membership
	for rows.Next() {
		membership := &model.Membership{}
		var role string
		if err := rows.Scan(&membership.ID, &membership.UserID, &membership.GroupID, &role, &membership.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		membership.Role = model.Role(role)
		memberships = append(memberships, membership)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}

	return memberships, nil
}

// Update は所属関係の役割を更新する。
func (r *PostgresMembershipRepo) Update(ctx context.Context, membership *model.Membership) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE memberships SET role = $2 WHERE id = $1`,
		membership.ID, string(membership.Role),
	)
	if err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("membership not found: %s", membership.ID)
	}
	return nil
}

// CountAdmins はグループ内のAdmin数を返す。
func (r *PostgresMembershipRepo) CountAdmins(ctx context.Context, groupID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memberships WHERE group_id = $1 AND role = $2`,
		groupID, string(model.RoleAdmin),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

// compile-time interface check
var _ MembershipRepository = (*PostgresMembershipRepo)(nil)
