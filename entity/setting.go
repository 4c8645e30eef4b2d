package entity

// Well-known app_settings keys.
const (
	SettingGeminiAPIKey = "gemini_api_key"
	SettingGroqAPIKey   = "groq_api_key"
	SettingSystemPrompt = "system_prompt"
)

// AppSetting is a runtime-mutable key/value configuration row.
// Last write wins; secret values are masked before reaching any display
// surface and must never be logged raw.
type AppSetting struct {
	Key   string `json:"key" bson:"key"`
	Value string `json:"value" bson:"value"`
}
