package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/service"
	"github.com/gestorloja/gestor-backend/internal/testutil"
)

func newClientHandler(clientRepo *testutil.MockClientRepository, debtRepo *testutil.MockDebtRepository) *ClientHandler {
	clientService := service.NewClientService(clientRepo, debtRepo)
	debtService := service.NewDebtService(testutil.NewMockTxBeginner(), debtRepo, clientRepo, testutil.NewMockPaymentRepository())
	saleService := service.NewSaleService(testutil.NewMockTxBeginner(), testutil.NewMockSaleRepository(), debtRepo, clientRepo)
	return NewClientHandler(clientService, debtService, saleService)
}

func seedClient(repo *testutil.MockClientRepository) *domain.Client {
	client := &domain.Client{
		ID:       repo.NextID,
		Name:     "Maria Souza",
		Phone:    "5511912345678",
		WhatsApp: true,
	}
	repo.Clients[client.ID] = client
	repo.NextID++
	return client
}

func TestCreateClient_Success(t *testing.T) {
	e := echo.New()
	clientRepo := testutil.NewMockClientRepository()
	handler := newClientHandler(clientRepo, testutil.NewMockDebtRepository())

	reqBody := `{"name": "Maria Souza", "phone": "(11) 91234-5678", "whatsapp": true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.CreateClient(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	var response domain.Client
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Name != "Maria Souza" {
		t.Errorf("Expected name 'Maria Souza', got %s", response.Name)
	}

	if response.ID == 0 {
		t.Error("Expected assigned ID")
	}
}

func TestCreateClient_MissingName(t *testing.T) {
	e := echo.New()
	handler := newClientHandler(testutil.NewMockClientRepository(), testutil.NewMockDebtRepository())

	reqBody := `{"name": "", "phone": "11912345678"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.CreateClient(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var problemDetails ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problemDetails); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if problemDetails.Type != ErrorTypeValidation {
		t.Errorf("Expected error type %s, got %s", ErrorTypeValidation, problemDetails.Type)
	}

	if len(problemDetails.Errors) != 1 || problemDetails.Errors[0].Field != "name" {
		t.Error("Expected validation error for 'name' field")
	}
}

func TestGetClients_Success(t *testing.T) {
	e := echo.New()
	clientRepo := testutil.NewMockClientRepository()
	seedClient(clientRepo)
	seedClient(clientRepo)
	handler := newClientHandler(clientRepo, testutil.NewMockDebtRepository())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.GetClients(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response []domain.Client
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if len(response) != 2 {
		t.Errorf("Expected 2 clients, got %d", len(response))
	}
}

func TestGetClient_NotFound(t *testing.T) {
	e := echo.New()
	handler := newClientHandler(testutil.NewMockClientRepository(), testutil.NewMockDebtRepository())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients/99", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")

	err := handler.GetClient(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestGetClient_InvalidID(t *testing.T) {
	e := echo.New()
	handler := newClientHandler(testutil.NewMockClientRepository(), testutil.NewMockDebtRepository())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients/abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := handler.GetClient(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestDeleteClient_Success(t *testing.T) {
	e := echo.New()
	clientRepo := testutil.NewMockClientRepository()
	client := seedClient(clientRepo)
	handler := newClientHandler(clientRepo, testutil.NewMockDebtRepository())

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/clients/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := handler.DeleteClient(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	if clientRepo.Clients[client.ID].DeletedAt == nil {
		t.Error("Expected soft-deleted client to keep its row")
	}
}

func TestGetClientBalance_Success(t *testing.T) {
	e := echo.New()
	clientRepo := testutil.NewMockClientRepository()
	debtRepo := testutil.NewMockDebtRepository()
	client := seedClient(clientRepo)

	debtRepo.Debts[1] = &domain.Debt{
		ID:           1,
		ClientID:     client.ID,
		Amount:       decimal.NewFromFloat(150.50),
		InvoiceMonth: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:       domain.DebtStatusOpen,
	}

	handler := newClientHandler(clientRepo, debtRepo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients/1/balance", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := handler.GetClientBalance(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if string(response["openAmount"]) != `"150.5"` {
		t.Errorf("Expected open amount 150.5, got %s", response["openAmount"])
	}
}

func TestGetClientDebts_ClientNotFound(t *testing.T) {
	e := echo.New()
	handler := newClientHandler(testutil.NewMockClientRepository(), testutil.NewMockDebtRepository())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients/7/debts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")

	err := handler.GetClientDebts(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}
