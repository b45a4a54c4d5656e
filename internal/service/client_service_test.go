package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/testutil"
)

func TestCreateClient(t *testing.T) {
	clientRepo := testutil.NewMockClientRepository()
	svc := NewClientService(clientRepo, testutil.NewMockDebtRepository())
	publisher := testutil.NewMockEventPublisher()
	svc.SetEventPublisher(publisher)

	addr := "  Rua das Flores, 10  "
	client, err := svc.CreateClient(CreateClientInput{
		Name:     "  Maria  ",
		Phone:    "11912345678",
		WhatsApp: true,
		Address:  &addr,
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria", client.Name)
	require.NotNil(t, client.Address)
	assert.Equal(t, "Rua das Flores, 10", *client.Address)

	events := publisher.Published()
	require.Len(t, events, 1)
	assert.Equal(t, "client.created", events[0].Type)
}

func TestCreateClient_NameRequired(t *testing.T) {
	svc := NewClientService(testutil.NewMockClientRepository(), testutil.NewMockDebtRepository())

	_, err := svc.CreateClient(CreateClientInput{Name: "   "})
	assert.Equal(t, domain.ErrClientNameEmpty, err)
}

func TestUpdateClient(t *testing.T) {
	clientRepo := testutil.NewMockClientRepository()
	svc := NewClientService(clientRepo, testutil.NewMockDebtRepository())

	client := newTestClient(clientRepo)

	updated, err := svc.UpdateClient(client.ID, UpdateClientInput{
		Name:     "Maria Silva",
		Phone:    "11987654321",
		WhatsApp: false,
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", updated.Name)
	assert.False(t, updated.WhatsApp)
}

func TestDeleteClient_KeepsHistory(t *testing.T) {
	clientRepo := testutil.NewMockClientRepository()
	svc := NewClientService(clientRepo, testutil.NewMockDebtRepository())

	client := newTestClient(clientRepo)
	require.NoError(t, svc.DeleteClient(client.ID))

	// Row still exists, just hidden from lookups
	assert.NotNil(t, clientRepo.Clients[client.ID].DeletedAt)
	_, err := svc.GetClient(client.ID)
	assert.Equal(t, domain.ErrClientNotFound, err)
}

func TestGetClientBalance(t *testing.T) {
	clientRepo := testutil.NewMockClientRepository()
	debtRepo := testutil.NewMockDebtRepository()
	svc := NewClientService(clientRepo, debtRepo)

	client := newTestClient(clientRepo)
	debtRepo.Create(&domain.Debt{ClientID: client.ID, Amount: decimal.NewFromFloat(120.00)})
	debtRepo.Create(&domain.Debt{ClientID: client.ID, Amount: decimal.NewFromFloat(30.50)})

	balance, err := svc.GetClientBalance(client.ID)
	require.NoError(t, err)
	assert.True(t, balance.OpenAmount.Equal(decimal.NewFromFloat(150.50)))
}
