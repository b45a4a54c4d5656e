package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/service"
)

// ClientHandler handles client-related HTTP requests
type ClientHandler struct {
	clientService *service.ClientService
	debtService   *service.DebtService
	saleService   *service.SaleService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *service.ClientService, debtService *service.DebtService, saleService *service.SaleService) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		debtService:   debtService,
		saleService:   saleService,
	}
}

// ClientRequest represents the create/update client request body
type ClientRequest struct {
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	WhatsApp bool    `json:"whatsapp"`
	Address  *string `json:"address,omitempty"`
}

// parseIDParam reads the :id path parameter
func parseIDParam(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return int32(id), nil
}

// CreateClient handles POST /api/v1/clients
func (h *ClientHandler) CreateClient(c echo.Context) error {
	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	client, err := h.clientService.CreateClient(service.CreateClientInput{
		Name:     req.Name,
		Phone:    req.Phone,
		WhatsApp: req.WhatsApp,
		Address:  req.Address,
	})
	if err != nil {
		if errors.Is(err, domain.ErrClientNameEmpty) || errors.Is(err, domain.ErrClientNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: err.Error()},
			})
		}
		log.Error().Err(err).Msg("Failed to create client")
		return NewInternalError(c, "Failed to create client")
	}

	log.Info().Int32("client_id", client.ID).Str("name", client.Name).Msg("Client created")
	return c.JSON(http.StatusCreated, client)
}

// GetClients handles GET /api/v1/clients
func (h *ClientHandler) GetClients(c echo.Context) error {
	clients, err := h.clientService.GetAllClients()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get clients")
		return NewInternalError(c, "Failed to get clients")
	}
	return c.JSON(http.StatusOK, clients)
}

// GetClient handles GET /api/v1/clients/:id
func (h *ClientHandler) GetClient(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid client ID", nil)
	}

	client, err := h.clientService.GetClient(id)
	if err != nil {
		if errors.Is(err, domain.ErrClientNotFound) {
			return NewNotFoundError(c, "Client not found")
		}
		log.Error().Err(err).Int32("client_id", id).Msg("Failed to get client")
		return NewInternalError(c, "Failed to get client")
	}
	return c.JSON(http.StatusOK, client)
}

// UpdateClient handles PUT /api/v1/clients/:id
func (h *ClientHandler) UpdateClient(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid client ID", nil)
	}

	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	client, err := h.clientService.UpdateClient(id, service.UpdateClientInput{
		Name:     req.Name,
		Phone:    req.Phone,
		WhatsApp: req.WhatsApp,
		Address:  req.Address,
	})
	if err != nil {
		if errors.Is(err, domain.ErrClientNotFound) {
			return NewNotFoundError(c, "Client not found")
		}
		if errors.Is(err, domain.ErrClientNameEmpty) || errors.Is(err, domain.ErrClientNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: err.Error()},
			})
		}
		log.Error().Err(err).Int32("client_id", id).Msg("Failed to update client")
		return NewInternalError(c, "Failed to update client")
	}
	return c.JSON(http.StatusOK, client)
}

// DeleteClient handles DELETE /api/v1/clients/:id
func (h *ClientHandler) DeleteClient(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid client ID", nil)
	}

	if err := h.clientService.DeleteClient(id); err != nil {
		if errors.Is(err, domain.ErrClientNotFound) {
			return NewNotFoundError(c, "Client not found")
		}
		log.Error().Err(err).Int32("client_id", id).Msg("Failed to delete client")
		return NewInternalError(c, "Failed to delete client")
	}

	log.Info().Int32("client_id", id).Msg("Client deleted")
	return c.NoContent(http.StatusNoContent)
}

// GetClientBalance handles GET /api/v1/clients/:id/balance
func (h *ClientHandler) GetClientBalance(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid client ID", nil)
	}

	balance, err := h.clientService.GetClientBalance(id)
	if err != nil {
		if errors.Is(err, domain.ErrClientNotFound) {
			return NewNotFoundError(c, "Client not found")
		}
		log.Error().Err(err).Int32("client_id", id).Msg("Failed to get client balance")
		return NewInternalError(c, "Failed to get client balance")
	}
	return c.JSON(http.StatusOK, balance)
}

// GetClientDebts handles GET /api/v1/clients/:id/debts
func (h *ClientHandler) GetClientDebts(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid client ID", nil)
	}

	debts, err := h.debtService.GetDebtsByClient(id)
	if err != nil {
		if errors.Is(err, domain.ErrClientNotFound) {
			return NewNotFoundError(c, "Client not found")
		}
		log.Error().Err(err).Int32("client_id", id).Msg("Failed to get client debts")
		return NewInternalError(c, "Failed to get client debts")
	}
	return c.JSON(http.StatusOK, debts)
}

// GetClientSales handles GET /api/v1/clients/:id/sales
func (h *ClientHandler) GetClientSales(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid client ID", nil)
	}

	sales, err := h.saleService.GetSalesByClient(id)
	if err != nil {
		if errors.Is(err, domain.ErrClientNotFound) {
			return NewNotFoundError(c, "Client not found")
		}
		log.Error().Err(err).Int32("client_id", id).Msg("Failed to get client sales")
		return NewInternalError(c, "Failed to get client sales")
	}
	return c.JSON(http.StatusOK, sales)
}
