package group

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/santaman/internal/grouplock"
	"github.com/hitoshi/santaman/internal/model"
	"github.com/hitoshi/santaman/internal/repository"
)

// --- モック ---

type mockUserRepo struct {
	createFn     func(ctx context.Context, name string) (*model.User, error)
	findByNameFn func(ctx context.Context, name string) (*model.User, error)
	findByIDFn   func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, name string) (*model.User, error) {
	return m.createFn(ctx, name)
}
func (m *mockUserRepo) FindByName(ctx context.Context, name string) (*model.User, error) {
	return m.findByNameFn(ctx, name)
}
func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

type mockGroupRepo struct {
	createFn     func(ctx context.Context, name string) (*model.Group, error)
	findByNameFn func(ctx context.Context, name string) (*model.Group, error)
	deleteFn     func(ctx context.Context, id string) error
	listOpenFn   func(ctx context.Context) ([]*model.Group, error)
}

func (m *mockGroupRepo) Create(ctx context.Context, name string) (*model.Group, error) {
	return m.createFn(ctx, name)
}
func (m *mockGroupRepo) FindByName(ctx context.Context, name string) (*model.Group, error) {
	return m.findByNameFn(ctx, name)
}
func (m *mockGroupRepo) Update(ctx context.Context, group *model.Group) error {
	return nil
}
func (m *mockGroupRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}
func (m *mockGroupRepo) ListOpen(ctx context.Context) ([]*model.Group, error) {
	return m.listOpenFn(ctx)
}

type mockMembershipRepo struct {
	createFn      func(ctx context.Context, userID, groupID string, role model.Role) (*model.Membership, error)
	findFn        func(ctx context.Context, userID, groupID string) (*model.Membership, error)
	listByGroupFn func(ctx context.Context, groupID string) ([]*model.Membership, error)
	updateFn      func(ctx context.Context, membership *model.Membership) error
	countAdminsFn func(ctx context.Context, groupID string) (int, error)
}

func (m *mockMembershipRepo) Create(ctx context.Context, userID, groupID string, role model.Role) (*model.Membership, error) {
	return m.createFn(ctx, userID, groupID, role)
}
func (m *mockMembershipRepo) Find(ctx context.Context, userID, groupID string) (*model.Membership, error) {
	return m.findFn(ctx, userID, groupID)
}
func (m *mockMembershipRepo) ListByGroup(ctx context.Context, groupID string) ([]*model.Membership, error) {
	return m.listByGroupFn(ctx, groupID)
}
func (m *mockMembershipRepo) Update(ctx context.Context, membership *model.Membership) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, membership)
	}
	return nil
}
func (m *mockMembershipRepo) CountAdmins(ctx context.Context, groupID string) (int, error) {
	if m.countAdminsFn != nil {
		return m.countAdminsFn(ctx, groupID)
	}
	return 1, nil
}

// --- ヘルパー ---

func assertAPIError(t *testing.T, err error, kind model.ErrorKind, code string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected APIError with code %s, got nil", code)
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Kind != kind {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, kind)
	}
	if apiErr.Code != code {
		t.Errorf("Code = %q, want %q", apiErr.Code, code)
	}
}

func newTestService(userRepo *mockUserRepo, groupRepo *mockGroupRepo, memberRepo *mockMembershipRepo) *Service {
	return NewService(userRepo, groupRepo, memberRepo, nil, grouplock.New(), nil)
}

// --- RegisterUser ---

// TestRegisterUser_Success はユーザー登録の成功を検証する。
func TestRegisterUser_Success(t *testing.T) {
	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, name string) (*model.User, error) {
			return &model.User{ID: "u1", Name: name}, nil
		},
	}
	svc := newTestService(userRepo, &mockGroupRepo{}, &mockMembershipRepo{})

	user, err := svc.RegisterUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Name != "alice" {
		t.Errorf("Name = %q, want %q", user.Name, "alice")
	}
}

// TestRegisterUser_TrimsWhitespace は名前の前後空白が除去されることを検証する。
func TestRegisterUser_TrimsWhitespace(t *testing.T) {
	var created string
	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, name string) (*model.User, error) {
			created = name
			return &model.User{ID: "u1", Name: name}, nil
		},
	}
	svc := newTestService(userRepo, &mockGroupRepo{}, &mockMembershipRepo{})

	if _, err := svc.RegisterUser(context.Background(), "  alice  "); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created != "alice" {
		t.Errorf("created name = %q, want %q", created, "alice")
	}
}

// TestRegisterUser_DuplicateName_ReturnsConflict は同名登録がConflictになることを検証する。
func TestRegisterUser_DuplicateName_ReturnsConflict(t *testing.T) {
	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, name string) (*model.User, error) {
			return nil, repository.ErrDuplicateKey
		},
	}
	svc := newTestService(userRepo, &mockGroupRepo{}, &mockMembershipRepo{})

	_, err := svc.RegisterUser(context.Background(), "alice")
	assertAPIError(t, err, model.KindConflict, model.ErrCodeUserNameTaken)
}

// TestRegisterUser_EmptyName_ReturnsValidationError は空の名前が拒否されることを検証する。
func TestRegisterUser_EmptyName_ReturnsValidationError(t *testing.T) {
	svc := newTestService(&mockUserRepo{}, &mockGroupRepo{}, &mockMembershipRepo{})

	_, err := svc.RegisterUser(context.Background(), "   ")
	assertAPIError(t, err, model.KindValidation, model.ErrCodeInvalidName)
}

// TestRegisterUser_TooLongName_ReturnsValidationError は65文字以上の名前が拒否されることを検証する。
func TestRegisterUser_TooLongName_ReturnsValidationError(t *testing.T) {
	svc := newTestService(&mockUserRepo{}, &mockGroupRepo{}, &mockMembershipRepo{})

	long := make([]byte, maxNameLength+1)
	for i := range long {
		long[i] = 'a'
	}

	_, err := svc.RegisterUser(context.Background(), string(long))
	assertAPIError(t, err, model.KindValidation, model.ErrCodeInvalidName)
}

type fakeSanitizer struct{}

func (fakeSanitizer) Sanitize(raw string) string {
	// タグもどきを全て除去したふりをする
	if raw == "<script>x</script>" {
		return ""
	}
	return raw
}

// TestRegisterUser_SanitizedToEmpty_ReturnsValidationError はサニタイズ後に
// 空になる名前が拒否されることを検証する。
func TestRegisterUser_SanitizedToEmpty_ReturnsValidationError(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockGroupRepo{}, &mockMembershipRepo{}, fakeSanitizer{}, grouplock.New(), nil)

	_, err := svc.RegisterUser(context.Background(), "<script>x</script>")
	assertAPIError(t, err, model.KindValidation, model.ErrCodeInvalidName)
}

// --- CreateGroup ---

// TestCreateGroup_Success はグループ作成と作成者のAdmin登録を検証する。
func TestCreateGroup_Success(t *testing.T) {
	userRepo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return &model.User{ID: "u1", Name: name}, nil
		},
	}
	groupRepo := &mockGroupRepo{
		createFn: func(ctx context.Context, name string) (*model.Group, error) {
			return &model.Group{ID: "g1", Name: name, IsClosed: false}, nil
		},
	}
	var createdRole model.Role
	memberRepo := &mockMembershipRepo{
		createFn: func(ctx context.Context, userID, groupID string, role model.Role) (*model.Membership, error) {
			createdRole = role
			return &model.Membership{ID: "m1", UserID: userID, GroupID: groupID, Role: role}, nil
		},
	}
	svc := newTestService(userRepo, groupRepo, memberRepo)

	group, err := svc.CreateGroup(context.Background(), "alice", "xmas")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if group.Name != "xmas" {
		t.Errorf("Name = %q, want %q", group.Name, "xmas")
	}
	if group.IsClosed {
		t.Error("new group should be open")
	}
	if createdRole != model.RoleAdmin {
		t.Errorf("creator role = %q, want %q", createdRole, model.RoleAdmin)
	}
}

// TestCreateGroup_UnknownActor_ReturnsNotFound は未登録ユーザーによる作成が拒否されることを検証する。
func TestCreateGroup_UnknownActor_ReturnsNotFound(t *testing.T) {
	userRepo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return nil, nil
		},
	}
	svc := newTestService(userRepo, &mockGroupRepo{}, &mockMembershipRepo{})

	_, err := svc.CreateGroup(context.Background(), "ghost", "xmas")
	assertAPIError(t, err, model.KindNotFound, model.ErrCodeUserNotFound)
}

// TestCreateGroup_DuplicateName_ReturnsConflict は同名グループの作成がConflictになることを検証する。
func TestCreateGroup_DuplicateName_ReturnsConflict(t *testing.T) {
	userRepo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return &model.User{ID: "u1", Name: name}, nil
		},
	}
	groupRepo := &mockGroupRepo{
		createFn: func(ctx context.Context, name string) (*model.Group, error) {
			return nil, repository.ErrDuplicateKey
		},
	}
	svc := newTestService(userRepo, groupRepo, &mockMembershipRepo{})

	_, err := svc.CreateGroup(context.Background(), "alice", "xmas")
	assertAPIError(t, err, model.KindConflict, model.ErrCodeGroupNameTaken)
}

// --- JoinGroup ---

// TestJoinGroup_Success は参加者がMemberとして登録されることを検証する。
func TestJoinGroup_Success(t *testing.T) {
	userRepo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return &model.User{ID: "u2", Name: name}, nil
		},
	}
	groupRepo := &mockGroupRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.Group, error) {
			return &model.Group{ID: "g1", Name: name, IsClosed: false}, nil
		},
	}
	var createdRole model.Role
	memberRepo := &mockMembershipRepo{
		createFn: func(ctx context.Context, userID, groupID string, role model.Role) (*model.Membership, error) {
			createdRole = role
			return &model.Membership{ID: "m2", UserID: userID, GroupID: groupID, Role: role}, nil
		},
	}
	svc := newTestService(userRepo, groupRepo, memberRepo)

	if err := svc.JoinGroup(context.Background(), "bob", "xmas"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if createdRole != model.RoleMember {
		t.Errorf("joiner role = %q, want %q", createdRole, model.RoleMember)
	}
}

// TestJoinGroup_ClosedGroup_ReturnsInvalidState はクローズ済みグループへの参加が拒否されることを検証する。
func TestJoinGroup_ClosedGroup_ReturnsInvalidState(t *testing.T) {
	userRepo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return &model.User{ID: "u2", Name: name}, nil
		},
	}
	groupRepo := &mockGroupRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.Group, error) {
			return &model.Group{ID: "g1", Name: name, IsClosed: true}, nil
		},
	}
	svc := newTestService(userRepo, groupRepo, &mockMembershipRepo{})

	err := svc.JoinGroup(context.Background(), "bob", "xmas")
	assertAPIError(t, err, model.KindInvalidState, model.ErrCodeGroupClosed)
}

// TestJoinGroup_AlreadyMember_ReturnsConflict は二重参加がConflictになることを検証する。
func TestJoinGroup_AlreadyMember_ReturnsConflict(t *testing.T) {
	userRepo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return &model.User{ID: "u2", Name: name}, nil
		},
	}
	groupRepo := &mockGroupRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.Group, error) {
			return &model.Group{ID: "g1", Name: name, IsClosed: false}, nil
		},
	}
	memberRepo := &mockMembershipRepo{
		createFn: func(ctx context.Context, userID, groupID string, role model.Role) (*model.Membership, error) {
			return nil, repository.ErrDuplicateKey
		},
	}
	svc := newTestService(userRepo, groupRepo, memberRepo)

	err := svc.JoinGroup(context.Background(), "bob", "xmas")
	assertAPIError(t, err, model.KindConflict, model.ErrCodeAlreadyMember)
}

// TestJoinGroup_UnknownGroup_ReturnsNotFound は存在しないグループへの参加が拒否されることを検証する。
func TestJoinGroup_UnknownGroup_ReturnsNotFound(t *testing.T) {
	userRepo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return &model.User{ID: "u2", Name: name}, nil
		},
	}
	groupRepo := &mockGroupRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.Group, error) {
			return nil, nil
		},
	}
	svc := newTestService(userRepo, groupRepo, &mockMembershipRepo{})

	err := svc.JoinGroup(context.Background(), "bob", "nowhere")
	assertAPIError(t, err, model.KindNotFound, model.ErrCodeGroupNotFound)
}

// --- DeleteGroup ---

// TestDeleteGroup_AsAdmin_Succeeds はAdminによる削除の成功を検証する。
func TestDeleteGroup_AsAdmin_Succeeds(t *testing.T) {
	userRepo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return &model.User{ID: "u1", Name: name}, nil
		},
	}
	deleted := false
	groupRepo := &mockGroupRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.Group, error) {
			return &model.Group{ID: "g1", Name: name}, nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	memberRepo := &mockMembershipRepo{
		findFn: func(ctx context.Context, userID, groupID string) (*model.Membership, error) {
			return &model.Membership{ID: "m1", UserID: userID, GroupID: groupID, Role: model.RoleAdmin}, nil
		},
	}
	svc := newTestService(userRepo, groupRepo, memberRepo)

	if err := svc.DeleteGroup(context.Background(), "alice", "xmas"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !deleted {
		t.Error("expected group delete to be called")
	}
}

// TestDeleteGroup_AsMember_ReturnsForbidden はMemberによる削除が拒否されることを検証する。
func TestDeleteGroup_AsMember_ReturnsForbidden(t *testing.T) {
	userRepo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return &model.User{ID: "u2", Name: name}, nil
		},
	}
	groupRepo := &mockGroupRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.Group, error) {
			return &model.Group{ID: "g1", Name: name}, nil
		},
	}
	memberRepo := &mockMembershipRepo{
		findFn: func(ctx context.Context, userID, groupID string) (*model.Membership, error) {
			return &model.Membership{ID: "m2", UserID: userID, GroupID: groupID, Role: model.RoleMember}, nil
		},
	}
	svc := newTestService(userRepo, groupRepo, memberRepo)

	err := svc.DeleteGroup(context.Background(), "bob", "xmas")
	assertAPIError(t, err, model.KindForbidden, model.ErrCodeNotAdmin)
}

// TestDeleteGroup_NotAMember_ReturnsNotFound は非メンバーによる削除が拒否されることを検証する。
func TestDeleteGroup_NotAMember_ReturnsNotFound(t *testing.T) {
	userRepo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return &model.User{ID: "u3", Name: name}, nil
		},
	}
	groupRepo := &mockGroupRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.Group, error) {
			return &model.Group{ID: "g1", Name: name}, nil
		},
	}
	memberRepo := &mockMembershipRepo{
		findFn: func(ctx context.Context, userID, groupID string) (*model.Membership, error) {
			return nil, nil
		},
	}
	svc := newTestService(userRepo, groupRepo, memberRepo)

	err := svc.DeleteGroup(context.Background(), "carol", "xmas")
	assertAPIError(t, err, model.KindNotFound, model.ErrCodeMemberNotFound)
}

// --- ListMembers ---

// TestListMembers_AsAdmin_ReturnsAllNames はAdminが全メンバー名を取得できることを検証する。
func TestListMembers_AsAdmin_ReturnsAllNames(t *testing.T) {
	users := map[string]*model.User{
		"u1": {ID: "u1", Name: "alice"},
		"u2": {ID: "u2", Name: "bob"},
		"u3": {ID: "u3", Name: "carol"},
	}
	userRepo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return users["u1"], nil
		},
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return users[id], nil
		},
	}
	groupRepo := &mockGroupRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.Group, error) {
			return &model.Group{ID: "g1", Name: name}, nil
		},
	}
	memberRepo := &mockMembershipRepo{
		findFn: func(ctx context.Context, userID, groupID string) (*model.Membership, error) {
			return &model.Membership{ID: "m1", UserID: userID, GroupID: groupID, Role: model.RoleAdmin}, nil
		},
		listByGroupFn: func(ctx context.Context, groupID string) ([]*model.Membership, error) {
			return []*model.Membership{
				{ID: "m1", UserID: "u1", GroupID: groupID, Role: model.RoleAdmin},
				{ID: "m2", UserID: "u2", GroupID: groupID, Role: model.RoleMember},
				{ID: "m3", UserID: "u3", GroupID: groupID, Role: model.RoleMember},
			}, nil
		},
	}
	svc := newTestService(userRepo, groupRepo, memberRepo)

	names, err := svc.ListMembers(context.Background(), "alice", "xmas")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []string{"alice", "bob", "carol"}
	if len(names) != len(want) {
		t.Fatalf("len(names) = %d, want %d", len(names), len(want))
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("names[%d] = %q, want %q", i, names[i], name)
		}
	}
}

// TestListMembers_AsMember_ReturnsForbidden はMemberによる一覧取得が拒否されることを検証する。
func TestListMembers_AsMember_ReturnsForbidden(t *testing.T) {
	userRepo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return &model.User{ID: "u2", Name: name}, nil
		},
	}
	groupRepo := &mockGroupRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.Group, error) {
			return &model.Group{ID: "g1", Name: name}, nil
		},
	}
	memberRepo := &mockMembershipRepo{
		findFn: func(ctx context.Context, userID, groupID string) (*model.Membership, error) {
			return &model.Membership{ID: "m2", UserID: userID, GroupID: groupID, Role: model.RoleMember}, nil
		},
	}
	svc := newTestService(userRepo, groupRepo, memberRepo)

	_, err := svc.ListMembers(context.Background(), "bob", "xmas")
	assertAPIError(t, err, model.KindForbidden, model.ErrCodeNotAdmin)
}

// --- PromoteAdmin ---

// TestPromoteAdmin_Success は対象メンバーがAdminに昇格することを検証する。
func TestPromoteAdmin_Success(t *testing.T) {
	users := map[string]*model.User{
		"alice": {ID: "u1", Name: "alice"},
		"bob":   {ID: "u2", Name: "bob"},
	}
	userRepo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return users[name], nil
		},
	}
	groupRepo := &mockGroupRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.Group, error) {
			return &model.Group{ID: "g1", Name: name}, nil
		},
	}
	var updated *model.Membership
	memberRepo := &mockMembershipRepo{
		findFn: func(ctx context.Context, userID, groupID string) (*model.Membership, error) {
			if userID == "u1" {
				return &model.Membership{ID: "m1", UserID: userID, GroupID: groupID, Role: model.RoleAdmin}, nil
			}
			return &model.Membership{ID: "m2", UserID: userID, GroupID: groupID, Role: model.RoleMember}, nil
		},
		updateFn: func(ctx context.Context, membership *model.Membership) error {
			updated = membership
			return nil
		},
	}
	svc := newTestService(userRepo, groupRepo, memberRepo)

	if err := svc.PromoteAdmin(context.Background(), "alice", "bob", "xmas"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated == nil {
		t.Fatal("expected membership update to be called")
	}
	if updated.UserID != "u2" {
		t.Errorf("updated UserID = %q, want %q", updated.UserID, "u2")
	}
	if updated.Role != model.RoleAdmin {
		t.Errorf("updated Role = %q, want %q", updated.Role, model.RoleAdmin)
	}
}

// TestPromoteAdmin_ByMember_ReturnsForbidden はMemberによる任命が拒否されることを検証する。
func TestPromoteAdmin_ByMember_ReturnsForbidden(t *testing.T) {
	userRepo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return &model.User{ID: "u2", Name: name}, nil
		},
	}
	groupRepo := &mockGroupRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.Group, error) {
			return &model.Group{ID: "g1", Name: name}, nil
		},
	}
	memberRepo := &mockMembershipRepo{
		findFn: func(ctx context.Context, userID, groupID string) (*model.Membership, error) {
			return &model.Membership{ID: "m2", UserID: userID, GroupID: groupID, Role: model.RoleMember}, nil
		},
	}
	svc := newTestService(userRepo, groupRepo, memberRepo)

	err := svc.PromoteAdmin(context.Background(), "bob", "carol", "xmas")
	assertAPIError(t, err, model.KindForbidden, model.ErrCodeNotAdmin)
}

// TestPromoteAdmin_TargetNotMember_ReturnsNotFound は非メンバーの任命が拒否されることを検証する。
func TestPromoteAdmin_TargetNotMember_ReturnsNotFound(t *testing.T) {
	users := map[string]*model.User{
		"alice": {ID: "u1", Name: "alice"},
		"dave":  {ID: "u9", Name: "dave"},
	}
	userRepo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return users[name], nil
		},
	}
	groupRepo := &mockGroupRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.Group, error) {
			return &model.Group{ID: "g1", Name: name}, nil
		},
	}
	memberRepo := &mockMembershipRepo{
		findFn: func(ctx context.Context, userID, groupID string) (*model.Membership, error) {
			if userID == "u1" {
				return &model.Membership{ID: "m1", UserID: userID, GroupID: groupID, Role: model.RoleAdmin}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(userRepo, groupRepo, memberRepo)

	err := svc.PromoteAdmin(context.Background(), "alice", "dave", "xmas")
	assertAPIError(t, err, model.KindNotFound, model.ErrCodeMemberNotFound)
}

// --- DemoteSelf ---

// TestDemoteSelf_WithAnotherAdmin_Succeeds は他にAdminがいる場合の返上成功を検証する。
func TestDemoteSelf_WithAnotherAdmin_Succeeds(t *testing.T) {
	userRepo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return &model.User{ID: "u1", Name: name}, nil
		},
	}
	groupRepo := &mockGroupRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.Group, error) {
			return &model.Group{ID: "g1", Name: name}, nil
		},
	}
	var updated *model.Membership
	memberRepo := &mockMembershipRepo{
		findFn: func(ctx context.Context, userID, groupID string) (*model.Membership, error) {
			return &model.Membership{ID: "m1", UserID: userID, GroupID: groupID, Role: model.RoleAdmin}, nil
		},
		countAdminsFn: func(ctx context.Context, groupID string) (int, error) {
			return 2, nil
		},
		updateFn: func(ctx context.Context, membership *model.Membership) error {
			updated = membership
			return nil
		},
	}
	svc := newTestService(userRepo, groupRepo, memberRepo)

	if err := svc.DemoteSelf(context.Background(), "alice", "xmas"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated == nil {
		t.Fatal("expected membership update to be called")
	}
	if updated.Role != model.RoleMember {
		t.Errorf("updated Role = %q, want %q", updated.Role, model.RoleMember)
	}
}

// TestDemoteSelf_LastAdmin_ReturnsPreconditionFailed は最後のAdminの返上が拒否されることを検証する。
func TestDemoteSelf_LastAdmin_ReturnsPreconditionFailed(t *testing.T) {
	userRepo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return &model.User{ID: "u1", Name: name}, nil
		},
	}
	groupRepo := &mockGroupRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.Group, error) {
			return &model.Group{ID: "g1", Name: name}, nil
		},
	}
	memberRepo := &mockMembershipRepo{
		findFn: func(ctx context.Context, userID, groupID string) (*model.Membership, error) {
			return &model.Membership{ID: "m1", UserID: userID, GroupID: groupID, Role: model.RoleAdmin}, nil
		},
		countAdminsFn: func(ctx context.Context, groupID string) (int, error) {
			return 1, nil
		},
	}
	svc := newTestService(userRepo, groupRepo, memberRepo)

	err := svc.DemoteSelf(context.Background(), "alice", "xmas")
	assertAPIError(t, err, model.KindPreconditionFailed, model.ErrCodeNotEnoughAdmins)
}

// TestDemoteSelf_AsMember_ReturnsForbidden はMemberによる返上が拒否されることを検証する。
func TestDemoteSelf_AsMember_ReturnsForbidden(t *testing.T) {
	userRepo := &mockUserRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.User, error) {
			return &model.User{ID: "u2", Name: name}, nil
		},
	}
	groupRepo := &mockGroupRepo{
		findByNameFn: func(ctx context.Context, name string) (*model.Group, error) {
			return &model.Group{ID: "g1", Name: name}, nil
		},
	}
	memberRepo := &mockMembershipRepo{
		findFn: func(ctx context.Context, userID, groupID string) (*model.Membership, error) {
			return &model.Membership{ID: "m2", UserID: userID, GroupID: groupID, Role: model.RoleMember}, nil
		},
	}
	svc := newTestService(userRepo, groupRepo, memberRepo)

	err := svc.DemoteSelf(context.Background(), "bob", "xmas")
	assertAPIError(t, err, model.KindForbidden, model.ErrCodeNotAdmin)
}

// --- ListOpenGroups ---

// TestListOpenGroups_ReturnsGroups はオープングループの一覧取得を検証する。
func TestListOpenGroups_ReturnsGroups(t *testing.T) {
	groupRepo := &mockGroupRepo{
		listOpenFn: func(ctx context.Context) ([]*model.Group, error) {
			return []*model.Group{
				{ID: "g1", Name: "xmas"},
				{ID: "g2", Name: "office-party"},
			}, nil
		},
	}
	svc := newTestService(&mockUserRepo{}, groupRepo, &mockMembershipRepo{})

	groups, err := svc.ListOpenGroups(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if groups[0].Name != "xmas" || groups[1].Name != "office-party" {
		t.Errorf("unexpected group names: %s, %s", groups[0].Name, groups[1].Name)
	}
}
