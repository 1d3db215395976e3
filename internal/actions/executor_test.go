package actions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hasiripi/insight-engine/internal/models"
	"github.com/hasiripi/insight-engine/internal/notifybus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaskCreator struct {
	input  TaskInput
	record TaskRecord
	err    error
	calls  int
}

func (f *fakeTaskCreator) CreateTask(_ context.Context, input TaskInput) (TaskRecord, error) {
	f.calls++
	f.input = input
	return f.record, f.err
}

type fakeAutomationRunner struct {
	command AutomationCommand
	result  CommandResult
	err     error
	calls   int
}

func (f *fakeAutomationRunner) ExecuteAutomationCommand(_ context.Context, command AutomationCommand) (CommandResult, error) {
	f.calls++
	f.command = command
	return f.result, f.err
}

type fakeChatbot struct {
	input    ChatCompletionInput
	response ChatCompletionResponse
	err      error
	calls    int
}

func (f *fakeChatbot) RequestChatCompletion(_ context.Context, input ChatCompletionInput) (ChatCompletionResponse, error) {
	f.calls++
	f.input = input
	return f.response, f.err
}

type fakeNotifier struct {
	events []notifybus.Event
}

func (f *fakeNotifier) Publish(event notifybus.Event) {
	f.events = append(f.events, event)
}

func testInsight() models.InsightRecord {
	return models.InsightRecord{
		ID:      "finance-f1",
		Title:   "Finans anomalisi · Donanım alımı",
		Summary: "Beklenenden sapma gösteren bir finans kaydı tespit edildi.",
	}
}

func newTestExecutor() (*Executor, *fakeTaskCreator, *fakeAutomationRunner, *fakeChatbot, *fakeNotifier) {
	tasks := &fakeTaskCreator{record: TaskRecord{ID: "t-1", Status: "Open"}}
	automation := &fakeAutomationRunner{result: CommandResult{OK: true, Message: "Görev oluşturuldu."}}
	chatbot := &fakeChatbot{response: ChatCompletionResponse{Reply: "Analiz tamamlandı."}}
	notifier := &fakeNotifier{}
	executor := NewExecutor(tasks, automation, chatbot, notifier)
	return executor, tasks, automation, chatbot, notifier
}

func TestExecuteTaskDefaultsFromInsight(t *testing.T) {
	executor, tasks, _, _, _ := newTestExecutor()
	insight := testInsight()

	result, err := executor.Execute(context.Background(), insight, models.InsightActionOption{
		ID:   "a1",
		Type: models.ActionTask,
		Task: &models.TaskActionPayload{},
	})
	require.NoError(t, err)

	assert.True(t, result.OK)
	assert.Equal(t, "Görev oluşturuldu.", result.Message)
	assert.Equal(t, insight.Title, tasks.input.Title)
	assert.Equal(t, insight.Summary, tasks.input.Description)
	assert.Equal(t, models.PriorityMedium, tasks.input.Priority)
	assert.Equal(t, tasks.record, result.Data)
}

func TestExecuteTaskPayloadWins(t *testing.T) {
	executor, tasks, _, _, _ := newTestExecutor()
	due := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	_, err := executor.Execute(context.Background(), testInsight(), models.InsightActionOption{
		Type: models.ActionTask,
		Task: &models.TaskActionPayload{
			Title:    "Fatura kontrolü",
			Priority: models.PriorityHigh,
			DueDate:  due,
			Assignee: "user-3",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Fatura kontrolü", tasks.input.Title)
	assert.Equal(t, models.PriorityHigh, tasks.input.Priority)
	assert.Equal(t, due, tasks.input.DueDate)
	assert.Equal(t, "user-3", tasks.input.Assignee)
}

func TestExecuteTaskCollaboratorError(t *testing.T) {
	executor, tasks, _, _, _ := newTestExecutor()
	tasks.err = errors.New("upstream down")

	result, err := executor.Execute(context.Background(), testInsight(), models.InsightActionOption{
		Type: models.ActionTask,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, tasks.err)
	assert.Contains(t, err.Error(), "finance-f1")
	assert.False(t, result.OK)
}

func TestExecuteAutomationBuildsCommand(t *testing.T) {
	executor, _, automation, _, _ := newTestExecutor()

	result, err := executor.Execute(context.Background(), testInsight(), models.InsightActionOption{
		Type: models.ActionAutomation,
		Automation: &models.AutomationActionPayload{
			Command: "createTask",
			Title:   "Geciken ödemeyi takibe al",
		},
	})
	require.NoError(t, err)

	assert.True(t, result.OK)
	assert.Equal(t, 1, automation.calls)
	assert.Equal(t, CommandCreateTask, automation.command.Type)
	assert.Equal(t, "/gorev otomatik", automation.command.Raw)
	assert.Equal(t, "Geciken ödemeyi takibe al", automation.command.Title)
	assert.Equal(t, models.PriorityMedium, automation.command.Priority)
}

func TestExecuteAutomationCommandDefaults(t *testing.T) {
	executor, _, automation, _, _ := newTestExecutor()

	_, err := executor.Execute(context.Background(), testInsight(), models.InsightActionOption{
		Type:       models.ActionAutomation,
		Automation: &models.AutomationActionPayload{Command: "createTask"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Insight görevi", automation.command.Title)
}

func TestExecuteAutomationRejectsUnknownCommand(t *testing.T) {
	executor, _, automation, _, _ := newTestExecutor()

	cases := []*models.AutomationActionPayload{
		nil,
		{},
		{Command: "deleteEverything"},
	}
	for _, payload := range cases {
		result, err := executor.Execute(context.Background(), testInsight(), models.InsightActionOption{
			Type:       models.ActionAutomation,
			Automation: payload,
		})
		require.NoError(t, err)
		assert.False(t, result.OK)
		assert.Equal(t, "Geçerli otomasyon komutu bulunamadı.", result.Message)
	}
	// Rejections never reach the collaborator.
	assert.Zero(t, automation.calls)
}

func TestExecuteAutomationCollaboratorError(t *testing.T) {
	executor, _, automation, _, _ := newTestExecutor()
	automation.err = errors.New("runner offline")

	_, err := executor.Execute(context.Background(), testInsight(), models.InsightActionOption{
		Type:       models.ActionAutomation,
		Automation: &models.AutomationActionPayload{Command: "createTask"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, automation.err)
}

func TestExecuteChatbotPromptDefault(t *testing.T) {
	executor, _, _, chatbot, _ := newTestExecutor()
	insight := testInsight()

	result, err := executor.Execute(context.Background(), insight, models.InsightActionOption{
		Type:    models.ActionChatbot,
		Chatbot: &models.ChatbotActionPayload{},
	})
	require.NoError(t, err)

	assert.True(t, result.OK)
	assert.Equal(t, "Chatbot yanıtı oluşturuldu.", result.Message)
	assert.Equal(t, insight.Title+"\n"+insight.Summary, chatbot.input.Prompt)
	assert.Equal(t, []string{"datawarehouse", "operations"}, chatbot.input.Sources)
	require.NotNil(t, chatbot.input.DashboardContext.Insight)
	assert.Equal(t, insight.ID, chatbot.input.DashboardContext.Insight.ID)
	assert.Equal(t, chatbot.response, result.Data)
}

func TestExecuteChatbotExplicitPrompt(t *testing.T) {
	executor, _, _, chatbot, _ := newTestExecutor()

	_, err := executor.Execute(context.Background(), testInsight(), models.InsightActionOption{
		Type:    models.ActionChatbot,
		Chatbot: &models.ChatbotActionPayload{Prompt: "Bu anomaliyi açıkla"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bu anomaliyi açıkla", chatbot.input.Prompt)
}

func TestExecuteNotification(t *testing.T) {
	executor, _, _, _, notifier := newTestExecutor()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	executor.WithClock(func() time.Time { return now })
	insight := testInsight()

	result, err := executor.Execute(context.Background(), insight, models.InsightActionOption{
		Type: models.ActionNotification,
		Notification: &models.NotificationActionPayload{
			Message:  "Churn riski yükseldi.",
			Audience: []string{"user-7"},
		},
	})
	require.NoError(t, err)

	assert.True(t, result.OK)
	assert.Equal(t, "Bildirim tetiklendi.", result.Message)
	require.Len(t, notifier.events, 1)
	event := notifier.events[0]
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, insight.ID, event.InsightID)
	assert.Equal(t, "Churn riski yükseldi.", event.Message)
	assert.Equal(t, []string{"user-7"}, event.Audience)
	assert.Equal(t, now, event.CreatedAt)
}

func TestExecuteNotificationDefaults(t *testing.T) {
	executor, _, _, _, notifier := newTestExecutor()
	insight := testInsight()

	_, err := executor.Execute(context.Background(), insight, models.InsightActionOption{
		Type: models.ActionNotification,
	})
	require.NoError(t, err)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, insight.Summary, notifier.events[0].Message)
	assert.NotNil(t, notifier.events[0].Metadata)
}

func TestExecuteUnsupportedAction(t *testing.T) {
	executor, tasks, automation, chatbot, notifier := newTestExecutor()

	result, err := executor.Execute(context.Background(), testInsight(), models.InsightActionOption{
		Type: models.ActionLink,
		Link: &models.LinkActionPayload{URL: "/finance/f1"},
	})
	require.NoError(t, err)

	assert.False(t, result.OK)
	assert.Equal(t, "Desteklenmeyen insight aksiyonu.", result.Message)
	assert.Zero(t, tasks.calls)
	assert.Zero(t, automation.calls)
	assert.Zero(t, chatbot.calls)
	assert.Empty(t, notifier.events)
}
