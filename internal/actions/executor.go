// Package actions dispatches one chosen insight action to the matching
// external collaborator and reports a uniform result. The executor is the
// only part of the pipeline that performs I/O: one outbound call per
// invocation, no internal retry or timeout. Callers own that policy, and
// concurrent invocations for different insights are independent.
package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/hasiripi/insight-engine/internal/metrics"
	"github.com/hasiripi/insight-engine/internal/models"
	"github.com/hasiripi/insight-engine/internal/notifybus"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
)

// Result is the uniform outcome of one action execution. OK false with a nil
// error means the action was rejected locally (invalid command, unsupported
// type); collaborator failures surface as errors instead.
type Result struct {
	OK      bool        `json:"ok"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// User-facing dispatch messages, localized the way the host UI expects them.
const (
	msgTaskCreated        = "Görev oluşturuldu."
	msgNoValidCommand     = "Geçerli otomasyon komutu bulunamadı."
	msgChatbotResponded   = "Chatbot yanıtı oluşturuldu."
	msgNotificationSent   = "Bildirim tetiklendi."
	msgUnsupportedAction  = "Desteklenmeyen insight aksiyonu."
	automationRawCommand  = "/gorev otomatik"
	defaultAutomationTask = "Insight görevi"
)

// Executor wires the four collaborator ports. All fields except the clock
// must be non-nil for the corresponding action type to be dispatchable.
type Executor struct {
	tasks      TaskCreator
	automation AutomationRunner
	chatbot    ChatbotClient
	notifier   notifybus.Publisher
	now        func() time.Time
}

// NewExecutor builds an executor over the given collaborators.
func NewExecutor(tasks TaskCreator, automation AutomationRunner, chatbot ChatbotClient, notifier notifybus.Publisher) *Executor {
	return &Executor{
		tasks:      tasks,
		automation: automation,
		chatbot:    chatbot,
		notifier:   notifier,
		now:        time.Now,
	}
}

// WithClock overrides the executor's clock; intended for tests.
func (e *Executor) WithClock(now func() time.Time) *Executor {
	e.now = now
	return e
}

// Execute dispatches the action against its collaborator. The insight is
// read-only: defaults are taken from it, nothing on it changes.
func (e *Executor) Execute(ctx context.Context, insight models.InsightRecord, action models.InsightActionOption) (Result, error) {
	result, err := e.dispatch(ctx, insight, action)

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
		log.Error().Err(err).
			Str("insightId", insight.ID).
			Str("actionId", action.ID).
			Str("actionType", string(action.Type)).
			Msg("Insight action failed")
	case !result.OK:
		outcome = "rejected"
	}
	metrics.ActionsExecutedTotal.WithLabelValues(string(action.Type), outcome).Inc()
	return result, err
}

func (e *Executor) dispatch(ctx context.Context, insight models.InsightRecord, action models.InsightActionOption) (Result, error) {
	switch action.Type {
	case models.ActionTask:
		return e.executeTask(ctx, insight, action.Task)
	case models.ActionAutomation:
		return e.executeAutomation(ctx, action.Automation)
	case models.ActionChatbot:
		return e.executeChatbot(ctx, insight, action.Chatbot)
	case models.ActionNotification:
		return e.executeNotification(insight, action.Notification), nil
	default:
		return Result{OK: false, Message: msgUnsupportedAction}, nil
	}
}

func (e *Executor) executeTask(ctx context.Context, insight models.InsightRecord, payload *models.TaskActionPayload) (Result, error) {
	if payload == nil {
		payload = &models.TaskActionPayload{}
	}
	input := TaskInput{
		Title:       payload.Title,
		Description: payload.Description,
		Priority:    payload.Priority,
		DueDate:     payload.DueDate,
		Assignee:    payload.Assignee,
	}
	if input.Title == "" {
		input.Title = insight.Title
	}
	if input.Description == "" {
		input.Description = insight.Summary
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}

	record, err := e.tasks.CreateTask(ctx, input)
	if err != nil {
		return Result{}, fmt.Errorf("create task for insight %s: %w", insight.ID, err)
	}
	return Result{OK: true, Message: msgTaskCreated, Data: record}, nil
}

func (e *Executor) executeAutomation(ctx context.Context, payload *models.AutomationActionPayload) (Result, error) {
	command, ok := toAutomationCommand(payload)
	if !ok {
		return Result{OK: false, Message: msgNoValidCommand}, nil
	}
	result, err := e.automation.ExecuteAutomationCommand(ctx, command)
	if err != nil {
		return Result{}, fmt.Errorf("execute automation command: %w", err)
	}
	return Result{OK: result.OK, Message: result.Message, Data: result.Data}, nil
}

func (e *Executor) executeChatbot(ctx context.Context, insight models.InsightRecord, payload *models.ChatbotActionPayload) (Result, error) {
	prompt := ""
	if payload != nil {
		prompt = payload.Prompt
	}
	if prompt == "" {
		prompt = insight.Title + "\n" + insight.Summary
	}

	response, err := e.chatbot.RequestChatCompletion(ctx, ChatCompletionInput{
		Prompt:           prompt,
		Sources:          []string{"datawarehouse", "operations"},
		Conversation:     []ChatMessage{},
		DashboardContext: DashboardContext{Insight: &insight},
	})
	if err != nil {
		return Result{}, fmt.Errorf("chat completion for insight %s: %w", insight.ID, err)
	}
	return Result{OK: true, Message: msgChatbotResponded, Data: response}, nil
}

func (e *Executor) executeNotification(insight models.InsightRecord, payload *models.NotificationActionPayload) Result {
	if payload == nil {
		payload = &models.NotificationActionPayload{}
	}
	message := payload.Message
	if message == "" {
		message = insight.Summary
	}
	metadata := payload.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	event := notifybus.Event{
		ID:        ulid.Make().String(),
		InsightID: insight.ID,
		Message:   message,
		Audience:  payload.Audience,
		Metadata:  metadata,
		CreatedAt: e.now(),
	}
	e.notifier.Publish(event)
	metrics.NotificationsPublishedTotal.Inc()
	return Result{OK: true, Message: msgNotificationSent, Data: event}
}

// toAutomationCommand validates the payload and builds the structured
// command. Only createTask is recognized; anything else is rejected without
// touching the collaborator.
func toAutomationCommand(payload *models.AutomationActionPayload) (AutomationCommand, bool) {
	if payload == nil || AutomationCommandType(payload.Command) != CommandCreateTask {
		return AutomationCommand{}, false
	}
	command := AutomationCommand{
		Type:        CommandCreateTask,
		Raw:         automationRawCommand,
		Title:       payload.Title,
		Description: payload.Description,
		Assignee:    payload.Assignee,
		Priority:    payload.Priority,
		DueDate:     payload.DueDate,
	}
	if command.Title == "" {
		command.Title = defaultAutomationTask
	}
	if command.Priority == "" {
		command.Priority = models.PriorityMedium
	}
	return command, true
}
