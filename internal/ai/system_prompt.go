package ai

const decisionSystemPrompt = `You are a task management AI.
Return ONLY one valid JSON object. No markdown, no code fences, no text outside JSON.`

const subtaskSystemPrompt = `あなたはタスク管理の専門家です。与えられたタスクから、実行可能なサブタスクを3つ提案してください。JSON配列形式で返してください。例: ["サブタスク1", "サブタスク2", "サブタスク3"]`
