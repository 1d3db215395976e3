// Package mock provides in-memory implementations of the collaborator ports
// required by the action executor. They back the CLI demo and make the module
// runnable without a host system.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hasiripi/insight-engine/internal/actions"
	"github.com/rs/zerolog/log"
)

// TaskDirectory is an in-memory TaskCreator.
type TaskDirectory struct {
	mu    sync.Mutex
	tasks []actions.TaskRecord
}

// NewTaskDirectory creates an empty directory.
func NewTaskDirectory() *TaskDirectory {
	return &TaskDirectory{}
}

// CreateTask stores and returns a new task record.
func (d *TaskDirectory) CreateTask(ctx context.Context, input actions.TaskInput) (actions.TaskRecord, error) {
	if err := ctx.Err(); err != nil {
		return actions.TaskRecord{}, err
	}
	record := actions.TaskRecord{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      "Open",
		DueDate:     input.DueDate,
		Assignee:    input.Assignee,
		CreatedAt:   time.Now(),
	}
	d.mu.Lock()
	d.tasks = append(d.tasks, record)
	d.mu.Unlock()

	log.Debug().Str("taskId", record.ID).Str("title", record.Title).Msg("Mock task created")
	return record, nil
}

// Tasks returns a copy of every created task.
func (d *TaskDirectory) Tasks() []actions.TaskRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]actions.TaskRecord, len(d.tasks))
	copy(out, d.tasks)
	return out
}

// AutomationEngine is an in-memory AutomationRunner that materializes
// createTask commands through a TaskCreator.
type AutomationEngine struct {
	tasks actions.TaskCreator
}

// NewAutomationEngine creates an engine backed by the given task creator.
func NewAutomationEngine(tasks actions.TaskCreator) *AutomationEngine {
	return &AutomationEngine{tasks: tasks}
}

// ExecuteAutomationCommand runs the structured command.
func (a *AutomationEngine) ExecuteAutomationCommand(ctx context.Context, command actions.AutomationCommand) (actions.CommandResult, error) {
	switch command.Type {
	case actions.CommandCreateTask:
		record, err := a.tasks.CreateTask(ctx, actions.TaskInput{
			Title:       command.Title,
			Description: command.Description,
			Priority:    command.Priority,
			DueDate:     command.DueDate,
			Assignee:    command.Assignee,
		})
		if err != nil {
			return actions.CommandResult{}, err
		}
		return actions.CommandResult{OK: true, Message: "Otomasyon komutu çalıştırıldı.", Data: record}, nil
	default:
		return actions.CommandResult{OK: false, Message: fmt.Sprintf("Bilinmeyen komut: %s", command.Type)}, nil
	}
}

// Chatbot is a canned-response ChatbotClient.
type Chatbot struct{}

// RequestChatCompletion echoes a short canned analysis.
func (Chatbot) RequestChatCompletion(ctx context.Context, input actions.ChatCompletionInput) (actions.ChatCompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return actions.ChatCompletionResponse{}, err
	}
	reply := fmt.Sprintf("Analiz tamamlandı: %s", firstLine(input.Prompt))
	metadata := map[string]interface{}{"sources": input.Sources}
	if input.DashboardContext.Insight != nil {
		metadata["insightId"] = input.DashboardContext.Insight.ID
		metadata["severity"] = string(input.DashboardContext.Insight.Severity)
	}
	return actions.ChatCompletionResponse{Reply: reply, Metadata: metadata}, nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

// Ensure the mocks satisfy the ports.
var (
	_ actions.TaskCreator      = (*TaskDirectory)(nil)
	_ actions.AutomationRunner = (*AutomationEngine)(nil)
	_ actions.ChatbotClient    = Chatbot{}
)
