package actions

import (
	"context"
	"time"

	"github.com/hasiripi/insight-engine/internal/models"
)

// TaskInput seeds the host system's task creation endpoint.
type TaskInput struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     time.Time           `json:"dueDate,omitempty"`
	Assignee    string              `json:"assignee,omitempty"`
}

// TaskRecord is the host system's view of a created task.
type TaskRecord struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Priority    models.TaskPriority `json:"priority"`
	Status      string              `json:"status"`
	DueDate     time.Time           `json:"dueDate,omitempty"`
	Assignee    string              `json:"assignee,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// TaskCreator is the task-creation collaborator. CreateTask returns an error
// on failure; the executor propagates it unwrapped in meaning.
type TaskCreator interface {
	CreateTask(ctx context.Context, input TaskInput) (TaskRecord, error)
}

// AutomationCommandType enumerates the automation commands the executor can
// build. Only task creation is reachable from pipeline-built actions today.
type AutomationCommandType string

const CommandCreateTask AutomationCommandType = "createTask"

// AutomationCommand is the structured command handed to the automation
// collaborator.
type AutomationCommand struct {
	Type        AutomationCommandType `json:"type"`
	Raw         string                `json:"raw"`
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Assignee    string                `json:"assignee,omitempty"`
	Priority    models.TaskPriority   `json:"priority"`
	DueDate     time.Time             `json:"dueDate,omitempty"`
}

// CommandResult is the automation collaborator's structured outcome.
type CommandResult struct {
	OK      bool        `json:"ok"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AutomationRunner is the automation collaborator.
type AutomationRunner interface {
	ExecuteAutomationCommand(ctx context.Context, command AutomationCommand) (CommandResult, error)
}

// ChatMessage is one turn of a chatbot conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// DashboardContext carries the insight the chatbot is being asked about.
type DashboardContext struct {
	Insight *models.InsightRecord `json:"insight,omitempty"`
}

// ChatCompletionInput seeds a chatbot completion request.
type ChatCompletionInput struct {
	Prompt           string           `json:"prompt"`
	Sources          []string         `json:"sources"`
	Conversation     []ChatMessage    `json:"conversation"`
	DashboardContext DashboardContext `json:"dashboardContext"`
}

// ChatCompletionResponse is the chatbot collaborator's reply.
type ChatCompletionResponse struct {
	Reply    string                 `json:"reply"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ChatbotClient is the chatbot collaborator. RequestChatCompletion returns an
// error on failure; the executor propagates it.
type ChatbotClient interface {
	RequestChatCompletion(ctx context.Context, input ChatCompletionInput) (ChatCompletionResponse, error)
}
