// Package security はアプリケーションのセキュリティ機能を提供する。
//
// NameSanitizerService は呼び出し元が申告するユーザー名・グループ名を
// ストレージに保存する前にサニタイズし、HTMLタグの混入や
// XSS攻撃などのセキュリティリスクからユーザーを保護する。
// bluemondayのStrictPolicyを使用し、タグと属性を一切許可しない。
package security

import "github.com/microcosm-cc/bluemonday"

// NameSanitizerService は名前のサニタイズ機能のインターフェースを定義する。
// ユーザー登録・グループ作成時に使用される。
type NameSanitizerService interface {
	// Sanitize は名前からHTMLタグと危険な構造をすべて除去して返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// nameSanitizer はNameSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type nameSanitizer struct {
	policy *bluemonday.Policy
}

// NewNameSanitizer はNameSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyはすべてのタグ・属性を除去し、テキストのみを残す。
func NewNameSanitizer() *nameSanitizer {
	return &nameSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は名前からHTMLタグと危険な構造をすべて除去して返す。
func (s *nameSanitizer) Sanitize(raw string) string {
	return s.policy.Sanitize(raw)
}

// compile-time interface check
var _ NameSanitizerService = (*nameSanitizer)(nil)
