// Package authz はグループ操作の認可ルールを定義する。
//
// すべてのルールは (役割, グループ状態) のみを入力とする純粋な判定関数であり、
// ストレージには一切アクセスしない。呼び出し側（サービス層）がエンティティを
// 解決してから判定を行う。
package authz

import "github.com/hitoshi/santaman/internal/model"

// CanManageGroup はグループの管理操作（削除・メンバー一覧・Admin任命）を
// 実行できるかを判定する。Adminのみ許可。
func CanManageGroup(role model.Role) bool {
	return role == model.RoleAdmin
}

// CanJoin はグループに参加できるかを判定する。
// オープン状態のグループのみ参加可能。役割は問わない。
func CanJoin(group *model.Group) bool {
	return !group.IsClosed
}

// CanClose はグループをクローズしてサンタ割り当てを開始できるかを判定する。
// Adminかつグループがオープン状態である必要がある。
func CanClose(role model.Role, group *model.Group) bool {
	return role == model.RoleAdmin && !group.IsClosed
}

// CanDemoteSelf はAdminが自身の権限を返上できるかを判定する。
// 返上後もグループに1人以上のAdminが残る場合のみ許可。
func CanDemoteSelf(role model.Role, adminCount int) bool {
	return role == model.RoleAdmin && adminCount > 1
}

// CanViewRecipient はサンタが自分の受取人を照会できるかを判定する。
// グループがクローズ済みである必要がある。役割は問わない。
func CanViewRecipient(group *model.Group) bool {
	return group.IsClosed
}
