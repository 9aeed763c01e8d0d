package types

// Envelope is the uniform body returned by every API endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Message wraps a bare confirmation message used as a data payload.
type Message struct {
	Message string `json:"message"`
}
