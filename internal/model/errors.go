// Package model はドメインモデルを定義する。
package model

import "fmt"

// ErrorKind はエラーの種別を表す。
// トランスポート層はKindをHTTPステータスコードに変換する。
type ErrorKind string

const (
	// KindNotFound は参照されたユーザー・グループ・メンバーが存在しない。
	KindNotFound ErrorKind = "not_found"
	// KindConflict は自然キーの一意性違反（名前の重複、二重参加）。
	KindConflict ErrorKind = "conflict"
	// KindForbidden は操作に必要な役割を持っていない。
	KindForbidden ErrorKind = "forbidden"
	// KindInvalidState は現在のグループ状態では実行できない操作。
	KindInvalidState ErrorKind = "invalid_state"
	// KindPreconditionFailed は構造的な不変条件を破る操作
	// （メンバー不足でのクローズ、最後のAdminの降格）。
	KindPreconditionFailed ErrorKind = "precondition_failed"
	// KindValidation は入力値の検証エラー。
	KindValidation ErrorKind = "validation"
	// KindInternal はストレージ障害などの予期しないエラー。
	KindInternal ErrorKind = "internal"
)

// APIError は統一エラーフォーマットを表す。
// サービス層はKind付きの構造化エラーを返し、
// ユーザー向けのステータスコード整形はトランスポート層だけが行う。
type APIError struct {
	Kind    ErrorKind // エラー種別
	Code    string    // エラーコード
	Message string    // エラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeGroupNotFound      = "GROUP_NOT_FOUND"
	ErrCodeMemberNotFound     = "MEMBER_NOT_FOUND"
	ErrCodeUserNameTaken      = "USER_NAME_TAKEN"
	ErrCodeGroupNameTaken     = "GROUP_NAME_TAKEN"
	ErrCodeAlreadyMember      = "ALREADY_MEMBER"
	ErrCodeNotAdmin           = "NOT_ADMIN"
	ErrCodeGroupClosed        = "GROUP_CLOSED"
	ErrCodeGroupAlreadyClosed = "GROUP_ALREADY_CLOSED"
	ErrCodeAssignmentNotReady = "ASSIGNMENT_NOT_READY"
	ErrCodeNotEnoughMembers   = "NOT_ENOUGH_MEMBERS"
	ErrCodeNotEnoughAdmins    = "NOT_ENOUGH_ADMINS"
	ErrCodeInvalidName        = "INVALID_NAME"
)

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError(name string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Code:    ErrCodeUserNotFound,
		Message: fmt.Sprintf("指定されたユーザーが見つかりません: %s", name),
	}
}

// NewGroupNotFoundError はグループ未検出エラーを生成する。
func NewGroupNotFoundError(name string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Code:    ErrCodeGroupNotFound,
		Message: fmt.Sprintf("指定されたグループが見つかりません: %s", name),
	}
}

// NewMemberNotFoundError はメンバー未検出エラーを生成する。
// userNameのユーザーがgroupNameのグループに所属していない場合に使う。
func NewMemberNotFoundError(userName, groupName string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Code:    ErrCodeMemberNotFound,
		Message: fmt.Sprintf("ユーザー %s はグループ %s のメンバーではありません", userName, groupName),
	}
}

// NewUserNameTakenError はユーザー名重複エラーを生成する。
func NewUserNameTakenError(name string) *APIError {
	return &APIError{
		Kind:    KindConflict,
		Code:    ErrCodeUserNameTaken,
		Message: fmt.Sprintf("同じ名前のユーザーが既に存在します: %s", name),
	}
}

// NewGroupNameTakenError はグループ名重複エラーを生成する。
func NewGroupNameTakenError(name string) *APIError {
	return &APIError{
		Kind:    KindConflict,
		Code:    ErrCodeGroupNameTaken,
		Message: fmt.Sprintf("同じ名前のグループが既に存在します: %s", name),
	}
}

// NewAlreadyMemberError は二重参加エラーを生成する。
func NewAlreadyMemberError(userName, groupName string) *APIError {
	return &APIError{
		Kind:    KindConflict,
		Code:    ErrCodeAlreadyMember,
		Message: fmt.Sprintf("ユーザー %s は既にグループ %s のメンバーです", userName, groupName),
	}
}

// NewNotAdminError は権限不足エラーを生成する。
func NewNotAdminError(userName string) *APIError {
	return &APIError{
		Kind:    KindForbidden,
		Code:    ErrCodeNotAdmin,
		Message: fmt.Sprintf("ユーザー %s にはこの操作を行うAdmin権限がありません", userName),
	}
}

// NewGroupClosedError はクローズ済みグループへの参加エラーを生成する。
func NewGroupClosedError(groupName string) *APIError {
	return &APIError{
		Kind:    KindInvalidState,
		Code:    ErrCodeGroupClosed,
		Message: fmt.Sprintf("グループ %s は既にクローズされています", groupName),
	}
}

// NewGroupAlreadyClosedError は二重クローズエラーを生成する。
func NewGroupAlreadyClosedError(groupName string) *APIError {
	return &APIError{
		Kind:    KindInvalidState,
		Code:    ErrCodeGroupAlreadyClosed,
		Message: fmt.Sprintf("グループ %s は既にクローズ済みのため再度クローズできません", groupName),
	}
}

// NewAssignmentNotReadyError はクローズ前の受取人照会エラーを生成する。
func NewAssignmentNotReadyError(groupName string) *APIError {
	return &APIError{
		Kind:    KindInvalidState,
		Code:    ErrCodeAssignmentNotReady,
		Message: fmt.Sprintf("グループ %s はまだクローズされていないため受取人を照会できません", groupName),
	}
}

// NewNotEnoughMembersError はメンバー不足エラーを生成する。
func NewNotEnoughMembersError(groupName string, count int) *APIError {
	return &APIError{
		Kind:    KindPreconditionFailed,
		Code:    ErrCodeNotEnoughMembers,
		Message: fmt.Sprintf("グループ %s のメンバーは%d人のためクローズできません（2人以上必要）", groupName, count),
	}
}

// NewNotEnoughAdminsError はAdmin不足エラーを生成する。
// 最後のAdminが自身の権限を返上しようとした場合に使う。
func NewNotEnoughAdminsError(groupName string) *APIError {
	return &APIError{
		Kind:    KindPreconditionFailed,
		Code:    ErrCodeNotEnoughAdmins,
		Message: fmt.Sprintf("グループ %s には他にAdminがいないため権限を返上できません", groupName),
	}
}

// NewInvalidNameError は名前の検証エラーを生成する。
func NewInvalidNameError(reason string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Code:    ErrCodeInvalidName,
		Message: fmt.Sprintf("無効な名前です: %s", reason),
	}
}
