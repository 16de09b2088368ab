package ai

import (
	"strings"
)

// DecisionInput is the task snapshot embedded in a decision prompt.
type DecisionInput struct {
	Title        string
	Priority     *string
	DueDate      *string
	CurrentState string
	Allowed      []string
}

// BuildDecisionPrompt asks for exactly one {"nextState","reason"} object.
func BuildDecisionPrompt(in DecisionInput) Prompt {
	var b strings.Builder

	b.WriteString("Allowed nextState values: ")
	b.WriteString(strings.Join(in.Allowed, ", "))
	b.WriteString("\n\n")

	b.WriteString("Task:\n")
	b.WriteString("- title: ")
	b.WriteString(in.Title)
	b.WriteString("\n")

	b.WriteString("- priority: ")
	b.WriteString(orNone(in.Priority))
	b.WriteString("\n")

	b.WriteString("- dueDate: ")
	b.WriteString(orNone(in.DueDate))
	b.WriteString("\n")

	b.WriteString("- currentState: ")
	b.WriteString(in.CurrentState)
	b.WriteString("\n\n")

	b.WriteString("Rules:\n")
	b.WriteString("- If already DONE, keep DONE.\n")
	b.WriteString("- Prefer EXECUTING if priority is high and dueDate is near.\n")
	b.WriteString("- Provide a concise Japanese reason.\n\n")

	b.WriteString("Output format (JSON only, exactly these two fields):\n")
	b.WriteString(`{ "nextState": "EXECUTING", "reason": "理由" }`)

	return Prompt{System: decisionSystemPrompt, User: b.String()}
}

// BuildSubtaskPrompt asks for three subtask titles as a JSON array.
func BuildSubtaskPrompt(title, description string) Prompt {
	var b strings.Builder

	b.WriteString("以下のタスクに対して、実行可能なサブタスクを3つ提案してください。\n\n")
	b.WriteString("タスク名: ")
	b.WriteString(title)
	b.WriteString("\n")

	if d := strings.TrimSpace(description); d != "" {
		b.WriteString("説明: ")
		b.WriteString(d)
		b.WriteString("\n")
	}

	b.WriteString("\nサブタスクは簡潔で具体的にしてください。JSON配列形式で返してください。\n")
	b.WriteString(`例: ["サブタスク1", "サブタスク2", "サブタスク3"]`)

	return Prompt{System: subtaskSystemPrompt, User: b.String()}
}

func orNone(s *string) string {
	if s == nil || *s == "" {
		return "none"
	}
	return *s
}
