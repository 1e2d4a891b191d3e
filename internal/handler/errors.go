// Package handler はHTTPトランスポートアダプタを提供する。
//
// このAPIはリクエストが申告したユーザー名をそのまま操作主体として扱う
// （セッションや認証トークンによる本人確認はない）。ハンドラーはリクエストの
// 解析とレスポンスの整形のみを行い、認可判定はすべてサービス層に委ねる。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/santaman/internal/model"
)

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code    string `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:    apiErr.Code,
		Kind:    string(apiErr.Kind),
		Message: apiErr.Message,
	})
}

// writeInvalidRequestResponse はリクエストボディの解析失敗レスポンスを書き込む。
func writeInvalidRequestResponse(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Kind:    model.KindValidation,
		Code:    "INVALID_REQUEST",
		Message: "リクエストボディの解析に失敗しました。正しいJSON形式でリクエストしてください。",
	})
}

// writeJSONResponse はJSONレスポンスを書き込む。
func writeJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapErrorKindToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Kind:    model.KindInternal,
		Code:    "INTERNAL_ERROR",
		Message: "内部エラーが発生しました。しばらく待ってから再度お試しください。",
	})
}

// mapErrorKindToHTTPStatus はエラー種別からHTTPステータスコードにマッピングする。
func mapErrorKindToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Kind {
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindConflict:
		return http.StatusConflict
	case model.KindForbidden:
		return http.StatusForbidden
	case model.KindInvalidState:
		// クローズ前の受取人照会だけは「まだ早い」を表す425を返す
		if apiErr.Code == model.ErrCodeAssignmentNotReady {
			return http.StatusTooEarly
		}
		return http.StatusConflict
	case model.KindPreconditionFailed:
		return http.StatusPreconditionFailed
	case model.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
