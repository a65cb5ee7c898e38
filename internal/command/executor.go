package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tasuku-app/tasuku/internal/database"
	"github.com/tasuku-app/tasuku/internal/models"
	"github.com/tasuku-app/tasuku/internal/render"
	"github.com/tasuku-app/tasuku/internal/services/ai"
)

const (
	msgCannotUnderstand = "コマンドとして解釈できませんでした"
	msgClassifyFailed   = "内容を理解できませんでした。もう一度お試しください"
	msgStoreFailed      = "タスクの更新に失敗しました"
	msgDashboardFailed  = "ダッシュボードのリンクを発行できませんでした"

	helpText = `使い方:
・そのまま文章を送るとタスクとして登録されます(複数行可)
・「一覧」 タスク一覧を表示
・「2 を 牛乳を買う に修正」 タイトル変更
・「2 を A」 優先度変更(S/A/B/C)
・「1 3 完了」「削除 2」 状態変更(完了/削除/進行中/保留/静観/戻す)
・「ダッシュボード」 ダッシュボードのリンクを表示`
)

// DashboardLinker produces a per-user dashboard URL for the dashboard meta
// command, typically embedding a short-lived access token.
type DashboardLinker func(userID string) (string, error)

// Executor interprets chat messages and runs the resulting commands against
// the task store. One Executor instance is shared across webhook requests;
// it holds no per-message state.
type Executor struct {
	tasks      database.TaskRepositoryInterface
	classifier ai.Classifier
	dashboard  DashboardLinker
	logger     *zap.Logger
}

// NewExecutor creates an executor with explicit dependencies.
func NewExecutor(tasks database.TaskRepositoryInterface, classifier ai.Classifier, dashboard DashboardLinker, logger *zap.Logger) *Executor {
	return &Executor{
		tasks:      tasks,
		classifier: classifier,
		dashboard:  dashboard,
		logger:     logger,
	}
}

// HandleMessage processes one inbound chat message and returns the reply
// texts. Lines are evaluated independently in textual order; the active list
// is re-fetched after every mutating line so later indices never drift.
// Free-text lines are accumulated and classified as one batch at the end,
// and the updated list is rendered once, from the final state.
func (e *Executor) HandleMessage(ctx context.Context, userID, text string) ([]string, error) {
	lines := strings.Split(Normalize(text), "\n")

	active, err := e.fetchActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	var replies []string
	var freeText []string
	mutated := false
	showList := false

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		cmd := Parse(line)
		switch cmd.Kind {
		case KindFreeText:
			freeText = append(freeText, cmd.Raw)

		case KindMalformed:
			replies = append(replies, msgCannotUnderstand)

		case KindMeta:
			switch cmd.Meta {
			case MetaList:
				showList = true
			case MetaHelp:
				replies = append(replies, helpText)
			case MetaDashboard:
				replies = append(replies, e.dashboardReply(userID))
			}

		case KindRename:
			active, replies = e.runRename(ctx, userID, cmd, active, replies, &mutated)

		case KindSetPriority:
			active, replies = e.runSetPriority(ctx, userID, cmd, active, replies, &mutated)

		case KindSetStatus:
			active, replies = e.runSetStatus(ctx, userID, cmd, active, replies, &mutated)
		}
	}

	if len(freeText) > 0 {
		if e.registerBatch(ctx, userID, strings.Join(freeText, "\n")) {
			mutated = true
		} else {
			replies = append(replies, msgClassifyFailed)
		}
	}

	if mutated {
		active, err = e.fetchActive(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	if mutated || showList || len(replies) == 0 {
		replies = append(replies, render.List(active))
	}

	return replies, nil
}

func (e *Executor) runRename(ctx context.Context, userID string, cmd Command, active []*models.Task, replies []string, mutated *bool) ([]*models.Task, []string) {
	task, ok := taskAt(active, cmd.Index)
	if !ok {
		return active, append(replies, notFoundMessage(cmd.Index))
	}
	if cmd.Title == "" {
		return active, append(replies, msgCannotUnderstand)
	}

	if err := e.tasks.UpdateTitle(ctx, userID, task.ID, cmd.Title); err != nil {
		e.logger.Error("rename_failed", zap.String("user_id", userID), zap.Error(err))
		return active, append(replies, msgStoreFailed)
	}

	*mutated = true
	return e.refetch(ctx, userID, active), replies
}

func (e *Executor) runSetPriority(ctx context.Context, userID string, cmd Command, active []*models.Task, replies []string, mutated *bool) ([]*models.Task, []string) {
	task, ok := taskAt(active, cmd.Index)
	if !ok {
		return active, append(replies, notFoundMessage(cmd.Index))
	}

	if err := e.tasks.UpdatePriority(ctx, userID, task.ID, cmd.Priority); err != nil {
		e.logger.Error("reprioritize_failed", zap.String("user_id", userID), zap.Error(err))
		return active, append(replies, msgStoreFailed)
	}

	*mutated = true
	return e.refetch(ctx, userID, active), replies
}

func (e *Executor) runSetStatus(ctx context.Context, userID string, cmd Command, active []*models.Task, replies []string, mutated *bool) ([]*models.Task, []string) {
	// All indices resolve against the same snapshot, so "削除 1 3" targets
	// the tasks at the positions the user was looking at.
	targets := make([]*models.Task, 0, len(cmd.Indices))
	for _, index := range cmd.Indices {
		task, ok := taskAt(active, index)
		if !ok {
			return active, append(replies, notFoundMessage(index))
		}
		targets = append(targets, task)
	}

	for _, task := range targets {
		if err := e.tasks.UpdateStatus(ctx, userID, task.ID, cmd.Status); err != nil {
			e.logger.Error("status_change_failed", zap.String("user_id", userID), zap.Error(err))
			return active, append(replies, msgStoreFailed)
		}
		*mutated = true
	}

	return e.refetch(ctx, userID, active), replies
}

// registerBatch classifies the free-text batch and inserts the proposals.
// Returns false when classification or the insert failed; the user input is
// then reported as not understood, never silently dropped.
func (e *Executor) registerBatch(ctx context.Context, userID, batch string) bool {
	proposals, err := e.classifier.Classify(ctx, batch)
	if err != nil || len(proposals) == 0 {
		e.logger.Warn("classification_failed",
			zap.String("user_id", userID),
			zap.Int("batch_length", len(batch)),
			zap.Error(err),
		)
		return false
	}

	tasks := ProposalTasks(userID, proposals)
	if err := e.tasks.CreateBatch(ctx, tasks); err != nil {
		e.logger.Error("task_insert_failed", zap.String("user_id", userID), zap.Error(err))
		return false
	}

	return true
}

// ProposalTasks materializes classifier proposals as unprocessed tasks.
// Unrecognized priorities are clamped to C so nothing outside the enum is
// ever written.
func ProposalTasks(userID string, proposals []ai.TaskProposal) []*models.Task {
	tasks := make([]*models.Task, 0, len(proposals))
	for _, p := range proposals {
		priority, ok := models.ParsePriority(p.Priority)
		if !ok {
			priority = models.PriorityC
		}
		tasks = append(tasks, &models.Task{
			ID:       uuid.New(),
			UserID:   userID,
			Title:    p.Title,
			Category: p.Category,
			Priority: priority,
			Status:   models.StatusUnprocessed,
		})
	}
	return tasks
}

func (e *Executor) dashboardReply(userID string) string {
	url, err := e.dashboard(userID)
	if err != nil {
		e.logger.Error("dashboard_link_failed", zap.String("user_id", userID), zap.Error(err))
		return msgDashboardFailed
	}
	return url
}

func (e *Executor) fetchActive(ctx context.Context, userID string) ([]*models.Task, error) {
	tasks, err := e.tasks.ListActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tasks: %w", err)
	}
	return render.Sort(tasks), nil
}

// refetch reloads the active list after a write. On failure the previous
// snapshot is kept; later lines in the same message may then see drifted
// indices, matching the last-write-wins looseness of the store.
func (e *Executor) refetch(ctx context.Context, userID string, stale []*models.Task) []*models.Task {
	fresh, err := e.fetchActive(ctx, userID)
	if err != nil {
		e.logger.Warn("refetch_failed", zap.String("user_id", userID), zap.Error(err))
		return stale
	}
	return fresh
}

func taskAt(active []*models.Task, index int) (*models.Task, bool) {
	if index < 1 || index > len(active) {
		return nil, false
	}
	return active[index-1], true
}

func notFoundMessage(index int) string {
	return fmt.Sprintf("%d番のタスクは見つかりません", index)
}
