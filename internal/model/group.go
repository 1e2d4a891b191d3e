// Package model はドメインモデルを定義する。
package model

import "time"

// Group は1回のギフト交換を運用するグループを表す。
// IsClosedはfalseで始まり、クローズ操作で一度だけtrueになる。
// 一度trueになったら二度とfalseには戻らない。
type Group struct {
	ID        string
	Name      string
	IsClosed  bool
	CreatedAt time.Time
}
