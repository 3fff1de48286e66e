package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"chrona/internal/models"
	"chrona/internal/store"
)

const uncategorized = "Uncategorized"

type TaskService struct {
	*base
}

func (s *TaskService) List(ctx context.Context, ownerID string, f models.TaskFilter) ([]models.Task, error) {
	tasks, err := s.store.ListTasks(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("invalid status %q", f.Status)
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return nil, invalid("invalid priority %q", f.Priority)
	}
	out := tasks[:0]
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	models.SortTasks(out)
	return out, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, id string) (*models.Task, error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, notFound(err, "task", id)
	}
	if err := s.authorize(ctx, ownerID, t.UserID, "task", id); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseDueDay turns a YYYY-MM-DD filter value into the start of that day in
// the configured zone.
func (s *TaskService) ParseDueDay(value string) (*time.Time, error) {
	d, err := time.ParseInLocation(dayLayout, strings.TrimSpace(value), s.loc)
	if err != nil {
		return nil, invalid("invalid dueDate %q; expected YYYY-MM-DD", value)
	}
	return &d, nil
}

func validMinutes(name string, v *int) error {
	if v != nil && *v < 0 {
		return invalid("%s must be zero or more minutes", name)
	}
	return nil
}

func (s *TaskService) Create(ctx context.Context, ownerID string, in models.TaskInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("Task title is required")
	}
	status := in.Status
	if status == "" {
		status = models.StatusTodo
	}
	if !status.Valid() {
		return nil, invalid("invalid status %q", in.Status)
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, invalid("invalid priority %q", in.Priority)
	}
	if err := validMinutes("estimatedTime", in.EstimatedTime); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(ownerID)
	defer unlock()

	if in.ParentTask != nil {
		if _, err := s.Get(ctx, ownerID, *in.ParentTask); err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
				return nil, invalid("parent task %s not found", *in.ParentTask)
			}
			return nil, err
		}
	}

	now := s.now()
	t := &models.Task{
		ID:            uuid.NewString(),
		UserID:        ownerID,
		Title:         title,
		Description:   in.Description,
		Status:        status,
		Priority:      priority,
		DueDate:       in.DueDate,
		Tags:          pq.StringArray(models.NormalizeTags(in.Tags)),
		Category:      strings.TrimSpace(in.Category),
		EstimatedTime: in.EstimatedTime,
		Notes:         in.Notes,
		ParentTask:    in.ParentTask,
		Subtasks:      pq.StringArray{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if status == models.StatusCompleted {
		t.CompletedAt = &now
	}
	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// apply merges u into t. completedAt follows the status: set to now when the
// update marks the task completed, cleared for any other status.
func (s *TaskService) apply(t *models.Task, u models.TaskUpdate) error {
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return invalid("Task title cannot be empty")
		}
		t.Title = title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Priority != nil {
		if !u.Priority.Valid() {
			return invalid("invalid priority %q", *u.Priority)
		}
		t.Priority = *u.Priority
	}
	if u.DueDate.Set {
		t.DueDate = u.DueDate.Value
	}
	if u.Tags != nil {
		t.Tags = pq.StringArray(models.NormalizeTags(*u.Tags))
	}
	if u.Category != nil {
		t.Category = strings.TrimSpace(*u.Category)
	}
	if u.EstimatedTime.Set {
		if err := validMinutes("estimatedTime", u.EstimatedTime.Value); err != nil {
			return err
		}
		t.EstimatedTime = u.EstimatedTime.Value
	}
	if u.ActualTime.Set {
		if err := validMinutes("actualTime", u.ActualTime.Value); err != nil {
			return err
		}
		t.ActualTime = u.ActualTime.Value
	}
	if u.Notes != nil {
		t.Notes = *u.Notes
	}
	if u.Status != nil {
		if !u.Status.Valid() {
			return invalid("invalid status %q", *u.Status)
		}
		t.Status = *u.Status
		if t.Status == models.StatusCompleted {
			now := s.now()
			t.CompletedAt = &now
		} else {
			t.CompletedAt = nil
		}
	}
	t.UpdatedAt = s.now()
	return nil
}

func (s *TaskService) Update(ctx context.Context, ownerID, id string, u models.TaskUpdate) (*models.Task, error) {
	unlock := s.locks.lock(ownerID)
	defer unlock()

	t, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(t, u); err != nil {
		return nil, err
	}
	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, notFound(err, "task", id)
	}
	return t, nil
}

// BulkUpdate applies one update to every listed task the owner has and
// reports how many changed. Unknown or foreign ids are skipped.
func (s *TaskService) BulkUpdate(ctx context.Context, ownerID string, ids []string, u models.TaskUpdate) (int, error) {
	if len(ids) == 0 {
		return 0, invalid("taskIds must be a non-empty array")
	}
	unlock := s.locks.lock(ownerID)
	defer unlock()

	modified := 0
	for _, id := range ids {
		t, err := s.Get(ctx, ownerID, id)
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
			continue
		}
		if err != nil {
			return modified, err
		}
		if err := s.apply(t, u); err != nil {
			return modified, err
		}
		if err := s.store.UpdateTask(ctx, t); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return modified, fmt.Errorf("update task %s: %w", id, err)
		}
		modified++
	}
	return modified, nil
}

// Delete removes the task and its whole subtask tree, and detaches it from
// its parent. It returns the ids removed.
func (s *TaskService) Delete(ctx context.Context, ownerID, id string) ([]string, error) {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return nil, err
	}
	unlock := s.locks.lock(ownerID)
	defer unlock()

	ids, err := s.store.DeleteTaskTree(ctx, ownerID, id)
	if err != nil {
		return nil, notFound(err, "task", id)
	}
	if len(ids) > 1 {
		s.log.Debug("task subtree deleted", zap.String("task_id", id), zap.Int("count", len(ids)))
	}
	return ids, nil
}

// Stats summarises the owner's tasks as of now.
func (s *TaskService) Stats(ctx context.Context, ownerID string) (*models.TaskStats, error) {
	tasks, err := s.store.ListTasks(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	now := s.now()
	dayStart := s.startOfDay(now)
	dayEnd := dayStart.AddDate(0, 0, 1)

	stats := &models.TaskStats{
		Total:      len(tasks),
		ByStatus:   map[string]int{},
		ByPriority: map[string]int{},
	}
	for _, t := range tasks {
		stats.ByStatus[string(t.Status)]++
		stats.ByPriority[string(t.Priority)]++
		if t.Status == models.StatusCompleted {
			stats.Completed++
		}
		if t.IsOverdue(now) {
			stats.Overdue++
		}
		if t.DueDate != nil && t.Status.Open() && !t.DueDate.Before(dayStart) && t.DueDate.Before(dayEnd) {
			stats.DueToday++
		}
	}
	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(100 * float64(stats.Completed) / float64(stats.Total)))
	}
	return stats, nil
}

// ByCategory groups tasks by category name, uncategorised last.
func (s *TaskService) ByCategory(ctx context.Context, ownerID string) ([]models.CategoryGroup, error) {
	tasks, err := s.store.ListTasks(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	models.SortTasks(tasks)
	groups := map[string][]models.Task{}
	for _, t := range tasks {
		name := t.Category
		if name == "" {
			name = uncategorized
		}
		groups[name] = append(groups[name], t)
	}
	out := make([]models.CategoryGroup, 0, len(groups))
	for name, ts := range groups {
		out = append(out, models.CategoryGroup{Category: name, Tasks: ts})
	}
	slices.SortFunc(out, func(a, b models.CategoryGroup) int {
		if (a.Category == uncategorized) != (b.Category == uncategorized) {
			if a.Category == uncategorized {
				return 1
			}
			return -1
		}
		return strings.Compare(a.Category, b.Category)
	})
	return out, nil
}
