package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/santaman/internal/model"
)

// PostgresAssignmentRepo はPostgreSQLを使用したサンタ割り当てリポジトリ。
type PostgresAssignmentRepo struct {
	db *sql.DB
}

// NewPostgresAssignmentRepo はPostgresAssignmentRepoを生成する。
func NewPostgresAssignmentRepo(db *sql.DB) *PostgresAssignmentRepo {
	return &PostgresAssignmentRepo{db: db}
}

// CreateAllAndClose は全メンバー分の割り当て行の挿入とグループの
// クローズフラグ更新を単一トランザクションで実行する。
// いずれかが失敗した場合は全体をロールバックし、グループはオープンのまま残る。
func (r *PostgresAssignmentRepo) CreateAllAndClose(ctx context.Context, group *model.Group, assignments []*model.Assignment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 割り当て行を挿入
	for _, a := range assignments {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO assignments (id, group_id, santa_user_id, recipient_user_id, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			a.ID, a.GroupID, a.SantaUserID, a.RecipientUserID, a.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
	}

	// グループをクローズ状態に更新
	result, err := tx.ExecContext(ctx,
		`UPDATE groups SET is_closed = true WHERE id = $1 AND is_closed = false`,
		group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to close group: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	// 他のクローズ処理と競合した場合はロールバックして二重書き込みを防ぐ
	if rowsAffected == 0 {
		return fmt.Errorf("group already closed: %s", group.ID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindRecipient は指定グループでsantaUserIDが担当する受取人ユーザーを返す。
// 割り当てが存在しない場合はnilを返す。
func (r *PostgresAssignmentRepo) FindRecipient(ctx context.Context, groupID, santaUserID string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT u.id, u.name, u.created_at
		 FROM assignments a JOIN users u ON u.id = a.recipient_user_id
		 WHERE a.group_id = $1 AND a.santa_user_id = $2`,
		groupID, santaUserID,
	).Scan(&user.ID, &user.Name, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find recipient: %w", err)
	}

	return user, nil
}

// compile-time interface check
var _ AssignmentRepository = (*PostgresAssignmentRepo)(nil)
