// Package model はドメインモデルを定義する。
package model

import "time"

// Role はグループ内でのメンバーの役割を表す。
type Role string

const (
	// RoleMember は一般メンバー。
	RoleMember Role = "member"
	// RoleAdmin はグループの管理者。グループのライフサイクルと
	// メンバー構成を管理する権限を持つ。
	RoleAdmin Role = "admin"
)

// Membership はユーザーとグループの所属関係を表す。
// (UserID, GroupID) の組はグループごとに一意である。
// メンバーが1人でも存在するグループには常に1人以上のAdminが必要。
type Membership struct {
	ID        string
	UserID    string
	GroupID   string
	Role      Role
	CreatedAt time.Time
}
