// Package model はドメインモデルを定義する。
package model

import "time"

// Assignment はクローズ済みグループ内のサンタ→受取人の割り当てを表す。
// グループのクローズと同時に全メンバー分が一括で作成され、以後不変。
// クローズ後の不変条件: 各メンバーはサンタとしても受取人としても
// ちょうど1回ずつ現れ、SantaUserID == RecipientUserID の行は存在しない。
type Assignment struct {
	ID              string
	GroupID         string
	SantaUserID     string
	RecipientUserID string
	CreatedAt       time.Time
}
