package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/santaman/internal/authz"
	"github.com/hitoshi/santaman/internal/grouplock"
	"github.com/hitoshi/santaman/internal/model"
	"github.com/hitoshi/santaman/internal/repository"
)

// MetricsRecorder はクローズ処理のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordGroupClosed()
	RecordAssignmentsCreated(count int)
	RecordCloseLatency(duration time.Duration)
}

// Service はグループのクローズとサンタ割り当てのサービス層。
type Service struct {
	userRepo   repository.UserRepository
	groupRepo  repository.GroupRepository
	memberRepo repository.MembershipRepository
	assignRepo repository.AssignmentRepository
	engine     *Engine
	locks      *grouplock.KeyedMutex
	metrics    MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
	memberRepo repository.MembershipRepository,
	assignRepo repository.AssignmentRepository,
	engine *Engine,
	locks *grouplock.KeyedMutex,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		userRepo:   userRepo,
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		assignRepo: assignRepo,
		engine:     engine,
		locks:      locks,
		metrics:    metrics,
	}
}

// CloseGroup はグループをクローズし、全メンバーのサンタ割り当てを確定する。
// 検証順序: 存在確認 → 役割 → グループ状態 → メンバー数。
// 割り当て行の書き込みとクローズフラグの更新は単一トランザクションで行われ、
// 失敗時にはグループはオープンのまま残る。
func (s *Service) CloseGroup(ctx context.Context, actorName, groupName string) error {
	unlock := s.locks.Lock(groupName)
	defer unlock()

	start := time.Now()

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

	membership, err := s.memberRepo.Find(ctx, actor.ID, group.ID)
	if err != nil {
		return fmt.Errorf("所属関係の取得に失敗しました: %w", err)
	}
	if membership == nil {
		return model.NewMemberNotFoundError(actorName, groupName)
	}

	if group.IsClosed {
		return model.NewGroupAlreadyClosedError(groupName)
	}
	if !authz.CanClose(membership.Role, group) {
		return model.NewNotAdminError(actorName)
	}

	members, err := s.memberRepo.ListByGroup(ctx, group.ID)
	if err != nil {
		return fmt.Errorf("メンバー一覧の取得に失敗しました: %w", err)
	}
	if len(members) < 2 {
		return model.NewNotEnoughMembersError(groupName, len(members))
	}

	memberIDs := make([]string, len(members))
	for i, m := range members {
		memberIDs[i] = m.UserID
	}

	pairs := s.engine.Cycle(memberIDs)

	now := time.Now()
	assignments := make([]*model.Assignment, len(pairs))
	for i, p := range pairs {
		assignments[i] = &model.Assignment{
			ID:              uuid.NewString(),
			GroupID:         group.ID,
			SantaUserID:     p.SantaUserID,
			RecipientUserID: p.RecipientUserID,
			CreatedAt:       now,
		}
	}

	if err := s.assignRepo.CreateAllAndClose(ctx, group, assignments); err != nil {
		return fmt.Errorf("割り当ての保存に失敗しました: %w", err)
	}
	group.IsClosed = true

	if s.metrics != nil {
		s.metrics.RecordGroupClosed()
		s.metrics.RecordAssignmentsCreated(len(assignments))
		s.metrics.RecordCloseLatency(time.Since(start))
	}

	slog.Info("グループをクローズしました",
		slog.String("group", groupName),
		slog.String("actor", actorName),
		slog.Int("members", len(members)),
	)

	return nil
}

// GetRecipient はサンタ自身の受取人の名前を返す。
// グループがクローズ済みである必要がある。役割の制限はない。
func (s *Service) GetRecipient(ctx context.Context, santaName, groupName string) (string, error) {
	santa, err := s.userRepo.FindByName(ctx, santaName)
	if err != nil {
		return "", fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if santa == nil {
		return "", model.NewUserNotFoundError(santaName)
	}

	group, err := s.groupRepo.FindByName(ctx, groupName)
	if err != nil {
		return "", fmt.Errorf("グループの取得に失敗しました: %w", err)
	}
	if group == nil {
		return "", model.NewGroupNotFoundError(groupName)
	}

	if !authz.CanViewRecipient(group) {
		return "", model.NewAssignmentNotReadyError(groupName)
	}

	recipient, err := s.assignRepo.FindRecipient(ctx, group.ID, santa.ID)
	if err != nil {
		return "", fmt.Errorf("受取人の取得に失敗しました: %w", err)
	}
	if recipient == nil {
		return "", model.NewMemberNotFoundError(santaName, groupName)
	}

	return recipient.Name, nil
}
