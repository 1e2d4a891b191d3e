// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/santaman/internal/model"
)

// ErrDuplicateKey は自然キーの一意性違反を表す。
// サービス層はこのエラーをConflict系のAPIErrorに変換する。
var ErrDuplicateKey = errors.New("duplicate key")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create は新しいユーザーを作成し、IDを採番して返す。
	// 同名ユーザーが存在する場合はErrDuplicateKeyを返す。
	Create(ctx context.Context, name string) (*model.User, error)

	// FindByName は指定した名前のユーザーを取得する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// GroupRepository はグループデータの永続化インターフェース。
type GroupRepository interface {
	// Create は新しいオープン状態のグループを作成し、IDを採番して返す。
	// 同名グループが存在する場合はErrDuplicateKeyを返す。
	Create(ctx context.Context, name string) (*model.Group, error)

	// FindByName は指定した名前のグループを取得する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.Group, error)

	// Update はグループの状態を更新する。
	Update(ctx context.Context, group *model.Group) error

	// Delete は指定IDのグループを削除する。
	// 関連するmemberships、assignmentsはCASCADE削除される。
	Delete(ctx context.Context, id string) error

	// ListOpen はオープン状態の全グループを返す。
	ListOpen(ctx context.Context) ([]*model.Group, error)
}

// MembershipRepository は所属関係データの永続化インターフェース。
type MembershipRepository interface {
	// Create はユーザーとグループの所属関係を作成する。
	// 既に所属している場合はErrDuplicateKeyを返す。
	Create(ctx context.Context, userID, groupID string, role model.Role) (*model.Membership, error)

	// Find はユーザーIDとグループIDで所属関係を取得する。見つからない場合はnilを返す。
	Find(ctx context.Context, userID, groupID string) (*model.Membership, error)

	// ListByGroup はグループの全所属関係を返す。
	ListByGroup(ctx context.Context, groupID string) ([]*model.Membership, error)

	// Update は所属関係の役割を更新する。
	Update(ctx context.Context, membership *model.Membership) error

	// CountAdmins はグループ内のAdmin数を返す。
	CountAdmins(ctx context.Context, groupID string) (int, error)
}

// AssignmentRepository はサンタ割り当てデータの永続化インターフェース。
type AssignmentRepository interface {
	// CreateAllAndClose は全メンバー分の割り当て行の挿入とグループの
	// クローズフラグ更新を単一トランザクションで実行する。
	// いずれかが失敗した場合は全体をロールバックし、グループはオープンのまま残る。
	CreateAllAndClose(ctx context.Context, group *model.Group, assignments []*model.Assignment) error

	// FindRecipient は指定グループでsantaUserIDが担当する受取人ユーザーを返す。
	// 割り当てが存在しない場合はnilを返す。
	FindRecipient(ctx context.Context, groupID, santaUserID string) (*model.User, error)
}
