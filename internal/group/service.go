// Package group はグループと所属関係のドメインロジックを提供する。
//
// このAPIには認証層がなく、操作主体はリクエストが申告したユーザー名を
// そのまま信用する。認可はグループ内の役割（Member/Admin）とグループ状態
// のみで判定する。
package group

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/santaman/internal/authz"
	"github.com/hitoshi/santaman/internal/grouplock"
	"github.com/hitoshi/santaman/internal/model"
	"github.com/hitoshi/santaman/internal/repository"
)

// maxNameLength はユーザー名・グループ名の最大長（文字数）。
const maxNameLength = 64

// NameSanitizer は名前のサニタイズインターフェース。
type NameSanitizer interface {
	Sanitize(raw string) string
}

// MetricsRecorder は登録・作成のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordUserRegistered()
	RecordGroupCreated()
}

// Service はグループと所属関係のサービス層。
// 同一グループへの状態変更操作はグループ名をキーとしたロックで直列化する。
type Service struct {
	userRepo   repository.UserRepository
	groupRepo  repository.GroupRepository
	memberRepo repository.MembershipRepository
	sanitizer  NameSanitizer
	locks      *grouplock.KeyedMutex
	metrics    MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// sanitizer、metricsはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
	memberRepo repository.MembershipRepository,
	sanitizer NameSanitizer,
	locks *grouplock.KeyedMutex,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		userRepo:   userRepo,
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		sanitizer:  sanitizer,
		locks:      locks,
		metrics:    metrics,
	}
}

// cleanName は名前をトリム・サニタイズし、検証して返す。
func (s *Service) cleanName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if s.sanitizer != nil {
		name = strings.TrimSpace(s.sanitizer.Sanitize(name))
	}
	if name == "" {
		return "", model.NewInvalidNameError("名前が空です")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", model.NewInvalidNameError(fmt.Sprintf("名前は%d文字以内で指定してください", maxNameLength))
	}
	return name, nil
}

// RegisterUser は新しいユーザーを登録する。
// 同名ユーザーが存在する場合はConflictエラーを返す。
func (s *Service) RegisterUser(ctx context.Context, name string) (*model.User, error) {
	name, err := s.cleanName(name)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.Create(ctx, name)
	if errors.Is(err, repository.ErrDuplicateKey) {
		return nil, model.NewUserNameTakenError(name)
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordUserRegistered()
	}

	slog.Info("ユーザーを登録しました", slog.String("user", name))

	return user, nil
}

// CreateGroup は新しいオープン状態のグループを作成し、
// 作成者をAdminとして最初のメンバーに登録する。
func (s *Service) CreateGroup(ctx context.Context, actorName, groupName string) (*model.Group, error) {
	groupName, err := s.cleanName(groupName)
	if err != nil {
		return nil, err
	}

	actor, err := s.userRepo.FindByName(ctx, actorName)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if actor == nil {
		return nil, model.NewUserNotFoundError(actorName)
	}

	unlock := s.locks.Lock(groupName)
	defer unlock()

	group, err := s.groupRepo.Create(ctx, groupName)
	if errors.Is(err, repository.ErrDuplicateKey) {
		return nil, model.NewGroupNameTakenError(groupName)
	}
	if err != nil {
		return nil, fmt.Errorf("グループの作成に失敗しました: %w", err)
	}

	if _, err := s.memberRepo.Create(ctx, actor.ID, group.ID, model.RoleAdmin); err != nil {
		return nil, fmt.Errorf("作成者の所属登録に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordGroupCreated()
	}

	slog.Info("グループを作成しました",
		slog.String("group", groupName),
		slog.String("actor", actorName),
	)

	return group, nil
}

// JoinGroup はユーザーをグループにMemberとして参加させる。
// クローズ済みグループには参加できず、二重参加はConflictエラーになる。
func (s *Service) JoinGroup(ctx context.Context, actorName, groupName string) error {
	unlock := s.locks.Lock(groupName)
	defer unlock()

	actor, err := s.userRepo.FindByName(ctx, actorName)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if actor == nil {
		return model.NewUserNotFoundError(actorName)
	}

	group, err := s.groupRepo.FindByName(ctx, groupName)
	if err != nil {
		return fmt.Errorf("グループの取得に失敗しました: %w", err)
	}
	if group == nil {
		return model.NewGroupNotFoundError(groupName)
	}

	if !authz.CanJoin(group) {
		return model.NewGroupClosedError(groupName)
	}

	if _, err := s.memberRepo.Create(ctx, actor.ID, group.ID, model.RoleMember); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return model.NewAlreadyMemberError(actorName, groupName)
		}
		return fmt.Errorf("所属の登録に失敗しました: %w", err)
	}

	slog.Info("グループに参加しました",
		slog.String("group", groupName),
		slog.String("user", actorName),
	)

	return nil
}

// DeleteGroup はグループを削除する。操作主体はAdminである必要がある。
// 所属関係と割り当てはストレージ側でCASCADE削除される。
// クローズ済みグループの削除も許可されるが、割り当て履歴は失われる。
func (s *Service) DeleteGroup(ctx context.Context, actorName, groupName string) error {
	unlock := s.locks.Lock(groupName)
	defer unlock()

	actor, group, membership, err := s.resolveMember(ctx, actorName, groupName)
	if err != nil {
		return err
	}

	if !authz.CanManageGroup(membership.Role) {
		return model.NewNotAdminError(actorName)
	}

	if group.IsClosed {
		// クローズ済みグループの削除は割り当て履歴の不可逆な消失を伴う
		slog.Warn("クローズ済みグループを削除します",
			slog.String("group", groupName),
			slog.String("actor", actorName),
		)
	}

	if err := s.groupRepo.Delete(ctx, group.ID); err != nil {
		return fmt.Errorf("グループの削除に失敗しました: %w", err)
	}

	slog.Info("グループを削除しました",
		slog.String("group", groupName),
		slog.String("actor", actor.Name),
	)

	return nil
}

// ListMembers はグループの全メンバーのユーザー名を返す。
// 操作主体はAdminである必要がある。
func (s *Service) ListMembers(ctx context.Context, actorName, groupName string) ([]string, error) {
	_, group, membership, err := s.resolveMember(ctx, actorName, groupName)
	if err != nil {
		return nil, err
	}

	if !authz.CanManageGroup(membership.Role) {
		return nil, model.NewNotAdminError(actorName)
	}

	memberships, err := s.memberRepo.ListByGroup(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("メンバー一覧の取得に失敗しました: %w", err)
	}

	names := make([]string, 0, len(memberships))
	for _, m := range memberships {
		user, err := s.userRepo.FindByID(ctx, m.UserID)
		if err != nil {
			return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
		}
		if user == nil {
			return nil, fmt.Errorf("所属関係が存在しないユーザーを参照しています: %s", m.UserID)
		}
		names = append(names, user.Name)
	}

	return names, nil
}

// PromoteAdmin は対象メンバーの役割をAdminに昇格する。
// 操作主体は同じグループのAdminである必要がある。
func (s *Service) PromoteAdmin(ctx context.Context, actorName, targetName, groupName string) error {
	unlock := s.locks.Lock(groupName)
	defer unlock()

	_, group, actorMembership, err := s.resolveMember(ctx, actorName, groupName)
	if err != nil {
		return err
	}

	if !authz.CanManageGroup(actorMembership.Role) {
		return model.NewNotAdminError(actorName)
	}

	target, err := s.userRepo.FindByName(ctx, targetName)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if target == nil {
		return model.NewUserNotFoundError(targetName)
	}

	targetMembership, err := s.memberRepo.Find(ctx, target.ID, group.ID)
	if err != nil {
		return fmt.Errorf("所属関係の取得に失敗しました: %w", err)
	}
	if targetMembership == nil {
		return model.NewMemberNotFoundError(targetName, groupName)
	}

	targetMembership.Role = model.RoleAdmin
	if err := s.memberRepo.Update(ctx, targetMembership); err != nil {
		return fmt.Errorf("役割の更新に失敗しました: %w", err)
	}

	slog.Info("メンバーをAdminに昇格しました",
		slog.String("group", groupName),
		slog.String("actor", actorName),
		slog.String("target", targetName),
	)

	return nil
}

// DemoteSelf は操作主体自身のAdmin権限を返上してMemberに戻す。
// グループに他のAdminが残らない場合は拒否される。
func (s *Service) DemoteSelf(ctx context.Context, actorName, groupName string) error {
	unlock := s.locks.Lock(groupName)
	defer unlock()

	_, group, membership, err := s.resolveMember(ctx, actorName, groupName)
	if err != nil {
		return err
	}

	if membership.Role != model.RoleAdmin {
		return model.NewNotAdminError(actorName)
	}

	adminCount, err := s.memberRepo.CountAdmins(ctx, group.ID)
	if err != nil {
		return fmt.Errorf("Admin数の取得に失敗しました: %w", err)
	}
	if !authz.CanDemoteSelf(membership.Role, adminCount) {
		return model.NewNotEnoughAdminsError(groupName)
	}

	membership.Role = model.RoleMember
	if err := s.memberRepo.Update(ctx, membership); err != nil {
		return fmt.Errorf("役割の更新に失敗しました: %w", err)
	}

	slog.Info("Admin権限を返上しました",
		slog.String("group", groupName),
		slog.String("actor", actorName),
	)

	return nil
}

// ListOpenGroups はオープン状態の全グループを返す。認可は不要（公開情報）。
func (s *Service) ListOpenGroups(ctx context.Context) ([]*model.Group, error) {
	groups, err := s.groupRepo.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("グループ一覧の取得に失敗しました: %w", err)
	}
	return groups, nil
}

// resolveMember は操作主体・グループ・所属関係をまとめて解決する。
// いずれかが存在しない場合はNotFound系のAPIErrorを返す。
func (s *Service) resolveMember(ctx context.Context, actorName, groupName string) (*model.User, *model.Group, *model.Membership, error) {
	actor, err := s.userRepo.FindByName(ctx, actorName)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if actor == nil {
		return nil, nil, nil, model.NewUserNotFoundError(actorName)
	}

	group, err := s.groupRepo.FindByName(ctx, groupName)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("グループの取得に失敗しました: %w", err)
	}
	if group == nil {
		return nil, nil, nil, model.NewGroupNotFoundError(groupName)
	}

	membership, err := s.memberRepo.Find(ctx, actor.ID, group.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("所属関係の取得に失敗しました: %w", err)
	}
	if membership == nil {
		return nil, nil, nil, model.NewMemberNotFoundError(actorName, groupName)
	}

	return actor, group, membership, nil
}
