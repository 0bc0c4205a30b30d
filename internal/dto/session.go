package dto

type ClearMemoryRequest struct {
	SessionID string `json:"session_id"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SessionInfo struct {
	SessionID    string `json:"session_id"`
	Interactions int    `json:"interactions"`
	MaxSize      int    `json:"max_size"`
}

type SessionsResponse struct {
	ActiveSessions int           `json:"active_sessions"`
	Sessions       []SessionInfo `json:"sessions"`
}
