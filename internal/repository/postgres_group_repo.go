package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/santaman/internal/model"
)

// PostgresGroupRepo はPostgreSQLを使用したグループリポジトリ。
type PostgresGroupRepo struct {
	db *sql.DB
}

// NewPostgresGroupRepo はPostgresGroupRepoを生成する。
func NewPostgresGroupRepo(db *sql.DB) *PostgresGroupRepo {
	return &PostgresGroupRepo{db: db}
}

// Create は新しいオープン状態のグループを作成し、IDを採番して返す。
// 同名グループが存在する場合はErrDuplicateKeyを返す。
func (r *PostgresGroupRepo) Create(ctx context.Context, name string) (*model.Group, error) {
	group := &model.Group{
		ID:        uuid.NewString(),
		Name:      name,
		IsClosed:  false,
		CreatedAt: time.Now(),
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO groups (id, name, is_closed, created_at) VALUES ($1, $2, $3, $4)`,
		group.ID, group.Name, group.IsClosed, group.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateKey
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert group: %w", err)
	}

	return group, nil
}

// FindByName は指定した名前のグループを取得する。見つからない場合はnilを返す。
func (r *PostgresGroupRepo) FindByName(ctx context.Context, name string) (*model.Group, error) {
	group := &model.Group{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, is_closed, created_at FROM groups WHERE name = $1`,
		name,
	).Scan(&group.ID, &group.Name, &group.IsClosed, &group.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find group by name: %w", err)
	}

	return group, nil
}

// Update はグループの状態を更新する。
func (r *PostgresGroupRepo) Update(ctx context.Context, group *model.Group) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE groups SET name = $2, is_closed = $3 WHERE id = $1`,
		group.ID, group.Name, group.IsClosed,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("group not found: %s", group.ID)
	}
	return nil
}

// Delete は指定IDのグループを削除する。
// 関連するmemberships、assignmentsはCASCADE削除される。
func (r *PostgresGroupRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM groups WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("group not found: %s", id)
	}
	return nil
}

// ListOpen はオープン状態の全グループを作成日時順で返す。
func (r *PostgresGroupRepo) ListOpen(ctx context.Context) ([]*model.Group, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, is_closed, created_at FROM groups
		 WHERE is_closed = false ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list open groups: %w", err)
	}
	defer rows.Close()

	var groups []*model.Group
	for rows.Next() {
		group := &model.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.IsClosed, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, nil
}

// compile-time interface check
var _ GroupRepository = (*PostgresGroupRepo)(nil)
