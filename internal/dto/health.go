package dto

type HealthResponse struct {
	Status         string `json:"status"`
	Ollama         string `json:"ollama"`
	Database       string `json:"database"`
	ActiveSessions int    `json:"active_sessions"`
	Timestamp      string `json:"timestamp"`
}

type ServiceInfoResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}
