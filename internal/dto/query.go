package dto

type AskRequest struct {
	Question  string `json:"question" validate:"required"`
	SessionID string `json:"session_id"`
	Category  string `json:"category"`
	UseMemory *bool  `json:"use_memory"`
}

type AskResponse struct {
	Answer     string   `json:"answer"`
	Category   string   `json:"category,omitempty"`
	Sources    []string `json:"sources"`
	Timestamp  string   `json:"timestamp"`
	MemorySize int      `json:"memory_size"`
}

type CategoryResponse struct {
	Categories []string `json:"categories"`
	Detected   string   `json:"detected,omitempty"`
}
