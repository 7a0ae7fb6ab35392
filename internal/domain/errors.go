package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind clasifica un error de forma estable; es lo que ve el cliente en "code".
type Kind string

const (
	// Proveedor (Factus) y transporte
	KindAuthenticationFailed Kind = "AUTHENTICATION_FAILED"
	KindValidationFailed     Kind = "VALIDATION_FAILED"
	KindResourceNotFound     Kind = "RESOURCE_NOT_FOUND"
	KindClientError          Kind = "CLIENT_ERROR"
	KindServerError          Kind = "SERVER_ERROR"
	KindConnectionFailed     Kind = "CONNECTION_FAILED"
	KindTokenUnavailable     Kind = "TOKEN_UNAVAILABLE"

	// Fronteras de tenant
	KindTenantNotFound        Kind = "TENANT_NOT_FOUND"
	KindTenantInactive        Kind = "TENANT_INACTIVE"
	KindCredentialsIncomplete Kind = "CREDENTIALS_INCOMPLETE"
	KindForbidden             Kind = "FORBIDDEN"

	KindInvalidState    Kind = "INVALID_STATE"
	KindDecryptionError Kind = "DECRYPTION_ERROR"

	KindInvalidInput Kind = "INVALID_INPUT"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindInternal     Kind = "INTERNAL"
)

// defaultStatus estado HTTP sugerido por tipo de error.
var defaultStatus = map[Kind]int{
	KindAuthenticationFailed:  http.StatusUnauthorized,
	KindValidationFailed:      http.StatusUnprocessableEntity,
	KindResourceNotFound:      http.StatusNotFound,
	KindClientError:           http.StatusBadRequest,
	KindServerError:           http.StatusBadGateway,
	KindConnectionFailed:      http.StatusGatewayTimeout,
	KindTokenUnavailable:      http.StatusServiceUnavailable,
	KindTenantNotFound:        http.StatusNotFound,
	KindTenantInactive:        http.StatusForbidden,
	KindCredentialsIncomplete: http.StatusPreconditionFailed,
	KindForbidden:             http.StatusForbidden,
	KindInvalidState:          http.StatusConflict,
	KindDecryptionError:       http.StatusInternalServerError,
	KindInvalidInput:          http.StatusBadRequest,
	KindNotFound:              http.StatusNotFound,
	KindConflict:              http.StatusConflict,
	KindInternal:              http.StatusInternalServerError,
}

// Error es el único tipo de error de dominio: un Kind más carga estructurada.
type Error struct {
	Kind    Kind
	Message string
	// Status es el código HTTP del proveedor cuando el error viene de Factus (0 si no aplica).
	Status  int
	Details map[string]any
	Err     error
}

// NewError crea un error del tipo indicado.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf crea un error con mensaje formateado.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is compara por Kind, así errors.Is(err, domain.ErrForbidden) funciona con cualquier instancia.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// WithDetail devuelve una copia con el detalle agregado.
func (e *Error) WithDetail(key string, value any) *Error {
	cp := *e
	cp.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return &cp
}

// WithCause devuelve una copia envolviendo err.
func (e *Error) WithCause(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// WithStatus devuelve una copia con el estado HTTP del proveedor.
func (e *Error) WithStatus(status int) *Error {
	cp := *e
	cp.Status = status
	return &cp
}

// HTTPStatus estado a devolver al cliente del POS.
func (e *Error) HTTPStatus() int {
	if s, ok := defaultStatus[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// KindOf devuelve el Kind del primer *Error de la cadena, o KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// AsError extrae el *Error de la cadena.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Centinelas para errors.Is.
var (
	ErrAuthenticationFailed  = NewError(KindAuthenticationFailed, "credenciales inválidas o sesión expirada")
	ErrValidationFailed      = NewError(KindValidationFailed, "el proveedor rechazó los datos enviados")
	ErrResourceNotFound      = NewError(KindResourceNotFound, "recurso no encontrado en el proveedor")
	ErrClientError           = NewError(KindClientError, "solicitud rechazada por el proveedor")
	ErrServerError           = NewError(KindServerError, "error interno del proveedor")
	ErrConnectionFailed      = NewError(KindConnectionFailed, "no se pudo conectar con el proveedor")
	ErrTokenUnavailable      = NewError(KindTokenUnavailable, "no se pudo obtener token de acceso")
	ErrTenantNotFound        = NewError(KindTenantNotFound, "restaurante no encontrado")
	ErrTenantInactive        = NewError(KindTenantInactive, "restaurante inactivo")
	ErrCredentialsIncomplete = NewError(KindCredentialsIncomplete, "credenciales de Factus incompletas")
	ErrForbidden             = NewError(KindForbidden, "acceso denegado")
	ErrInvalidState          = NewError(KindInvalidState, "estado inválido para la operación")
	ErrDecryption            = NewError(KindDecryptionError, "no se pudo descifrar la credencial")
	ErrInvalidInput          = NewError(KindInvalidInput, "entrada inválida")
	ErrNotFound              = NewError(KindNotFound, "recurso no encontrado")
	ErrConflict              = NewError(KindConflict, "conflicto con el estado actual")
)
