package dto

// ErrorResponse cuerpo de error HTTP. Code es el Kind estable del error de dominio.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// MessageResponse respuesta simple de operaciones sin cuerpo propio.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
