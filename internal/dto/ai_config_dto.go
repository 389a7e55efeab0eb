package dto

type ChatModeResponse struct {
	Mode string `json:"mode"`
}

type SetChatModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=local remote"`
}

type PromptSettingsResponse struct {
	SystemPrompt         string `json:"system_prompt"`
	PreventHallucination string `json:"prevent_hallucination"`
	Citation             string `json:"citation"`
	FormatInstruction    string `json:"format_instruction"`
}
