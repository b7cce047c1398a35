package domain

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// OpsMetrics is the operational snapshot returned by GET /v1/metrics/ops.
type OpsMetrics struct {
	TotalRequests  int64   `json:"totalRequests"`
	ErrorRate      float64 `json:"errorRate"`
	CacheHitRate   float64 `json:"cacheHitRate"`
	RecomputeCount int64   `json:"recomputeCount"`
	Period         string  `json:"period"`
}
