package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/gastro-facturacion/internal/application/dto"
	"github.com/jhoicas/gastro-facturacion/internal/domain"
)

// writeError traduce un error de dominio a dto.ErrorResponse con el estado de su Kind.
// Los errores sin tipo salen como INTERNAL sin exponer el mensaje original.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	return writeErrorStatus(c, log, err, 0)
}

// writeErrorStatus igual que writeError; status > 0 reemplaza el estado del Kind.
func writeErrorStatus(c *fiber.Ctx, log zerolog.Logger, err error, status int) error {
	e, ok := domain.AsError(err)
	if !ok {
		log.Error().Err(err).Str("path", c.Path()).Msg("error no clasificado")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code:    string(domain.KindInternal),
			Message: "error interno",
		})
	}
	if status == 0 {
		status = e.HTTPStatus()
	}
	ev := log.Warn()
	if status >= fiber.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).Str("path", c.Path()).Str("kind", string(e.Kind)).Int("status", status).Msg("request fallido")

	return c.Status(status).JSON(dto.ErrorResponse{
		Code:    string(e.Kind),
		Message: e.Message,
		Details: e.Details,
	})
}

// ErrorHandler manejador global para fiber.Config: errores de Fiber (404 de ruta, body
// demasiado grande) conservan su código; el resto pasa por writeError.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
		}
		return writeError(c, log, err)
	}
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
