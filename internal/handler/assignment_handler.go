package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AssignmentServiceInterface は割り当てハンドラーが必要とするサービスインターフェース。
type AssignmentServiceInterface interface {
	// CloseGroup はグループをクローズし、サンタ割り当てを確定する。
	CloseGroup(ctx context.Context, actorName, groupName string) error
	// GetRecipient はサンタ自身の受取人の名前を返す。
	GetRecipient(ctx context.Context, santaName, groupName string) (string, error)
}

// AssignmentHandler はクローズと受取人照会のHTTPハンドラー。
type AssignmentHandler struct {
	service AssignmentServiceInterface
}

// NewAssignmentHandler はAssignmentHandlerを生成する。
func NewAssignmentHandler(service AssignmentServiceInterface) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
	}
}

// recipientResponse は受取人照会のAPIレスポンス。
type recipientResponse struct {
	Recipient string `json:"recipient"`
}

// Close はグループのクローズを処理する。
// POST /api/groups/{name}/close
func (h *AssignmentHandler) Close(w http.ResponseWriter, r *http.Request) {
	groupName := chi.URLParam(r, "name")

	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	if err := h.service.CloseGroup(r.Context(), req.Username, groupName); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetRecipient は受取人照会を処理する。
// GET /api/groups/{name}/recipient?santa=
func (h *AssignmentHandler) GetRecipient(w http.ResponseWriter, r *http.Request) {
	groupName := chi.URLParam(r, "name")
	santaName := r.URL.Query().Get("santa")

	recipient, err := h.service.GetRecipient(r.Context(), santaName, groupName)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, recipientResponse{Recipient: recipient})
}
