package types

// Envelope is the uniform response body for every API endpoint, success or
// failure. Status mirrors the HTTP status code so clients behind proxies that
// rewrite statuses can still branch on it.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Body    any    `json:"body,omitempty"`
	Status  int    `json:"status"`
}

// ErrorBody carries the machine-readable error code and optional details
// inside a failed envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}
