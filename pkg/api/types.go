package api

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// StatsResponse reports tree shape and size
type StatsResponse struct {
	Keys   int `json:"keys"`
	Height int `json:"height"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind string
	Port int
}

// Engine defines the ordered key-value operations the API serves
type Engine interface {
	Put(key, value []byte) error
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	Scan(fn func(key, value []byte) bool) error
	Len() int
	Height() int
}
