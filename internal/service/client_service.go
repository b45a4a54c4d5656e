package service

import (
	"strings"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// ClientService handles client business logic
type ClientService struct {
	clientRepo     domain.ClientRepository
	debtRepo       domain.DebtRepository
	eventPublisher websocket.EventPublisher
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo domain.ClientRepository, debtRepo domain.DebtRepository) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		debtRepo:   debtRepo,
	}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *ClientService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ClientService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// CreateClientInput contains input for creating a client
type CreateClientInput struct {
	Name     string
	Phone    string
	WhatsApp bool
	Address  *string
}

// CreateClient creates a new client with validation
func (s *ClientService) CreateClient(input CreateClientInput) (*domain.Client, error) {
	client := &domain.Client{
		Name:     strings.TrimSpace(input.Name),
		Phone:    strings.TrimSpace(input.Phone),
		WhatsApp: input.WhatsApp,
		Address:  trimOptional(input.Address),
	}
	if err := client.Validate(); err != nil {
		return nil, err
	}

	created, err := s.clientRepo.Create(client)
	if err != nil {
		return nil, err
	}

	s.publishEvent(websocket.ClientCreated(created))
	return created, nil
}

// GetClient returns a client by ID
func (s *ClientService) GetClient(id int32) (*domain.Client, error) {
	return s.clientRepo.GetByID(id)
}

// GetAllClients returns all active clients
func (s *ClientService) GetAllClients() ([]*domain.Client, error) {
	return s.clientRepo.GetAll()
}

// UpdateClientInput contains input for updating a client
type UpdateClientInput struct {
	Name     string
	Phone    string
	WhatsApp bool
	Address  *string
}

// UpdateClient updates a client's details
func (s *ClientService) UpdateClient(id int32, input UpdateClientInput) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	client.Name = strings.TrimSpace(input.Name)
	client.Phone = strings.TrimSpace(input.Phone)
	client.WhatsApp = input.WhatsApp
	client.Address = trimOptional(input.Address)

	if err := client.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.clientRepo.Update(client)
	if err != nil {
		return nil, err
	}

	s.publishEvent(websocket.ClientUpdated(updated))
	return updated, nil
}

// DeleteClient soft-deletes a client. Debts and sales keep pointing at the
// row, so history stays intact.
func (s *ClientService) DeleteClient(id int32) error {
	client, err := s.clientRepo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.clientRepo.SoftDelete(id); err != nil {
		return err
	}

	s.publishEvent(websocket.ClientDeleted(client))
	return nil
}

// GetClientBalance returns the open amount a client still owes.
func (s *ClientService) GetClientBalance(id int32) (*ClientBalance, error) {
	client, err := s.clientRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	openAmount, err := s.debtRepo.SumOpenAmountByClient(id)
	if err != nil {
		return nil, err
	}

	return &ClientBalance{Client: client, OpenAmount: openAmount}, nil
}

// ClientBalance pairs a client with the total they still owe
type ClientBalance struct {
	Client     *domain.Client  `json:"client"`
	OpenAmount decimal.Decimal `json:"openAmount"`
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
