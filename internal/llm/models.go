package llm

// ModelInfo describes one selectable model for the UI.
type ModelInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// CuratedModels is the model picker list. OpenRouter exposes hundreds of
// models; the UI shows a curated handful that handle long transcripts
// well.
func CuratedModels() []ModelInfo {
	return []ModelInfo{
		{ID: "anthropic/claude-3.5-sonnet", Name: "Claude 3.5 Sonnet", Provider: "Anthropic"},
		{ID: "anthropic/claude-3.5-haiku", Name: "Claude 3.5 Haiku", Provider: "Anthropic"},
		{ID: "openai/gpt-4o", Name: "GPT-4o", Provider: "OpenAI"},
		{ID: "openai/gpt-4o-mini", Name: "GPT-4o Mini", Provider: "OpenAI"},
		{ID: "google/gemini-flash-1.5", Name: "Gemini Flash 1.5", Provider: "Google"},
		{ID: "google/gemini-pro-1.5", Name: "Gemini Pro 1.5", Provider: "Google"},
		{ID: "meta-llama/llama-3.1-70b-instruct", Name: "Llama 3.1 70B", Provider: "Meta"},
		{ID: "meta-llama/llama-3.1-8b-instruct", Name: "Llama 3.1 8B", Provider: "Meta"},
		{ID: "deepseek/deepseek-chat", Name: "DeepSeek V3", Provider: "DeepSeek"},
		{ID: "mistralai/mistral-large", Name: "Mistral Large", Provider: "Mistral"},
	}
}
