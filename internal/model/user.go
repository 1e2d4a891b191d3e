// Package model はドメインモデルを定義する。
package model

import "time"

// User はギフト交換に参加するユーザーを表す。
// Nameは自然キーであり、登録後は変更されない。
type User struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
