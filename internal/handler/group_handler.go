package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/santaman/internal/model"
)

// GroupServiceInterface はグループハンドラーが必要とするサービスインターフェース。
type GroupServiceInterface interface {
	// CreateGroup はグループを作成し、作成者をAdminとして登録する。
	CreateGroup(ctx context.Context, actorName, groupName string) (*model.Group, error)
	// JoinGroup はユーザーをグループにMemberとして参加させる。
	JoinGroup(ctx context.Context, actorName, groupName string) error
	// DeleteGroup はグループを削除する。Adminのみ実行可能。
	DeleteGroup(ctx context.Context, actorName, groupName string) error
	// ListMembers はグループの全メンバー名を返す。Adminのみ実行可能。
	ListMembers(ctx context.Context, actorName, groupName string) ([]string, error)
	// PromoteAdmin は対象メンバーをAdminに昇格する。Adminのみ実行可能。
	PromoteAdmin(ctx context.Context, actorName, targetName, groupName string) error
	// DemoteSelf は操作主体自身のAdmin権限を返上する。
	DemoteSelf(ctx context.Context, actorName, groupName string) error
	// ListOpenGroups はオープン状態の全グループを返す。
	ListOpenGroups(ctx context.Context) ([]*model.Group, error)
}

// GroupHandler はグループ管理のHTTPハンドラー。
type GroupHandler struct {
	service GroupServiceInterface
}

// NewGroupHandler はGroupHandlerを生成する。
func NewGroupHandler(service GroupServiceInterface) *GroupHandler {
	return &GroupHandler{
		service: service,
	}
}

// actorRequest は操作主体のユーザー名だけを含むリクエストボディ。
type actorRequest struct {
	Username string `json:"username"`
}

// createGroupRequest はグループ作成リクエストのボディ。
type createGroupRequest struct {
	Username  string `json:"username"`
	GroupName string `json:"group_name"`
}

// promoteAdminRequest はAdmin任命リクエストのボディ。
type promoteAdminRequest struct {
	Username string `json:"username"`
	NewAdmin string `json:"new_admin"`
}

// groupResponse はグループ情報のAPIレスポンス。
type groupResponse struct {
	Name     string `json:"name"`
	IsClosed bool   `json:"is_closed"`
}

// groupListResponse はグループ一覧のAPIレスポンス。
type groupListResponse struct {
	Groups []groupResponse `json:"groups"`
}

// memberListResponse はメンバー一覧のAPIレスポンス。
type memberListResponse struct {
	Group   string   `json:"group"`
	Members []string `json:"members"`
}

// Create はグループ作成を処理する。
// POST /api/groups
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	group, err := h.service.CreateGroup(r.Context(), req.Username, req.GroupName)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, groupResponse{
		Name:     group.Name,
		IsClosed: group.IsClosed,
	})
}

// Join はグループ参加を処理する。
// POST /api/groups/{name}/join
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	groupName := chi.URLParam(r, "name")

	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	if err := h.service.JoinGroup(r.Context(), req.Username, groupName); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete はグループ削除を処理する。
// DELETE /api/groups/{name}?username=
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	groupName := chi.URLParam(r, "name")
	actorName := r.URL.Query().Get("username")

	if err := h.service.DeleteGroup(r.Context(), actorName, groupName); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMembers はメンバー一覧の取得を処理する。
// GET /api/groups/{name}/members?username=
func (h *GroupHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	groupName := chi.URLParam(r, "name")
	actorName := r.URL.Query().Get("username")

	members, err := h.service.ListMembers(r.Context(), actorName, groupName)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, memberListResponse{
		Group:   groupName,
		Members: members,
	})
}

// PromoteAdmin はAdmin任命を処理する。
// POST /api/groups/{name}/admins
func (h *GroupHandler) PromoteAdmin(w http.ResponseWriter, r *http.Request) {
	groupName := chi.URLParam(r, "name")

	var req promoteAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	if err := h.service.PromoteAdmin(r.Context(), req.Username, req.NewAdmin, groupName); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DemoteSelf はAdmin権限の返上を処理する。
// POST /api/groups/{name}/admins/revoke
func (h *GroupHandler) DemoteSelf(w http.ResponseWriter, r *http.Request) {
	groupName := chi.URLParam(r, "name")

	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	if err := h.service.DemoteSelf(r.Context(), req.Username, groupName); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListOpen はオープングループ一覧の取得を処理する。認可は不要。
// GET /api/groups
func (h *GroupHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListOpenGroups(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := groupListResponse{Groups: make([]groupResponse, len(groups))}
	for i, g := range groups {
		resp.Groups[i] = groupResponse{Name: g.Name, IsClosed: g.IsClosed}
	}

	writeJSONResponse(w, http.StatusOK, resp)
}
