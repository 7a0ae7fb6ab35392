package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/gastro-facturacion/internal/application/dto"
)

// TenantService lo implementa *usecase.TenantUseCase.
type TenantService interface {
	Register(ctx context.Context, in dto.RegisterTenantRequest) (*dto.TenantResponse, error)
	Get(ctx context.Context, tenantID string) (*dto.TenantResponse, error)
	UpdateCredentials(ctx context.Context, tenantID string, in dto.FactusCredentialsRequest) (*dto.TenantStatusResponse, error)
	Status(ctx context.Context, tenantID string) (*dto.TenantStatusResponse, error)
}

// TenantHandler alta de restaurantes y credenciales Factus.
type TenantHandler struct {
	uc  TenantService
	log zerolog.Logger
}

// NewTenantHandler construye el handler inyectando el caso de uso.
func NewTenantHandler(uc TenantService, log zerolog.Logger) *TenantHandler {
	return &TenantHandler{uc: uc, log: log}
}

// Register godoc
// @Summary      Registrar restaurante
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.RegisterTenantRequest  true  "Restaurante y credenciales Factus"
// @Success      201   {object}  dto.TenantResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tenants [post]
func (h *TenantHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterTenantRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Register(c.Context(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener restaurante
// @Tags         tenants
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del restaurante"
// @Success      200  {object}  dto.TenantResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tenants/{id} [get]
func (h *TenantHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// UpdateCredentials godoc
// @Summary      Actualizar credenciales Factus (los campos vacíos se conservan)
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                        true  "ID del restaurante"
// @Param        body  body  dto.FactusCredentialsRequest  true  "Credenciales"
// @Success      200   {object}  dto.TenantStatusResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/tenants/{id}/credentials [put]
func (h *TenantHandler) UpdateCredentials(c *fiber.Ctx) error {
	var in dto.FactusCredentialsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateCredentials(c.Context(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Status godoc
// @Summary      Estado de facturación del restaurante
// @Tags         tenants
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del restaurante"
// @Success      200  {object}  dto.TenantStatusResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tenants/{id}/status [get]
func (h *TenantHandler) Status(c *fiber.Ctx) error {
	out, err := h.uc.Status(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
