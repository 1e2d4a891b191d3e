package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/santaman/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// RegisterUser は新しいユーザーを登録する。
	RegisterUser(ctx context.Context, name string) (*model.User, error)
}

// UserHandler はユーザー登録のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// registerUserRequest はユーザー登録リクエストのボディ。
type registerUserRequest struct {
	Username string `json:"username"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	Name string `json:"name"`
}

// Register はユーザー登録を処理する。
// POST /api/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	user, err := h.service.RegisterUser(r.Context(), req.Username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, userResponse{Name: user.Name})
}
