package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/service"
	"github.com/gestorloja/gestor-backend/internal/testutil"
)

func newProductHandler(productRepo *testutil.MockProductRepository, movementRepo *testutil.MockStockMovementRepository) *ProductHandler {
	productService := service.NewProductService(testutil.NewMockTxBeginner(), productRepo, movementRepo)
	imageService := service.NewImageService(nil, productRepo)
	return NewProductHandler(productService, imageService)
}

func seedProduct(repo *testutil.MockProductRepository, quantity int32) *domain.Product {
	product := &domain.Product{
		ID:          repo.NextID,
		Name:        "Camiseta",
		Price:       decimal.NewFromInt(80),
		Quantity:    quantity,
		MinQuantity: 2,
	}
	repo.Products[product.ID] = product
	repo.NextID++
	return product
}

func TestCreateProduct_Success(t *testing.T) {
	e := echo.New()
	productRepo := testutil.NewMockProductRepository()
	handler := newProductHandler(productRepo, testutil.NewMockStockMovementRepository())

	reqBody := `{"name": "Camiseta", "price": "80.00", "quantity": 10, "minQuantity": 2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.CreateProduct(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	var response domain.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Quantity != 10 {
		t.Errorf("Expected quantity 10, got %d", response.Quantity)
	}
}

func TestCreateProduct_InvalidPrice(t *testing.T) {
	e := echo.New()
	handler := newProductHandler(testutil.NewMockProductRepository(), testutil.NewMockStockMovementRepository())

	reqBody := `{"name": "Camiseta", "price": "not-a-number"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.CreateProduct(c)
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

	if len(problemDetails.Errors) != 1 || problemDetails.Errors[0].Field != "price" {
		t.Error("Expected validation error for 'price' field")
	}
}

func TestCreateMovement_Entrada(t *testing.T) {
	e := echo.New()
	productRepo := testutil.NewMockProductRepository()
	movementRepo := testutil.NewMockStockMovementRepository()
	product := seedProduct(productRepo, 5)
	handler := newProductHandler(productRepo, movementRepo)

	reqBody := `{"type": "entrada", "quantity": 3}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/1/movements", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := handler.CreateMovement(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	if productRepo.Products[product.ID].Quantity != 8 {
		t.Errorf("Expected quantity 8, got %d", productRepo.Products[product.ID].Quantity)
	}
}

func TestCreateMovement_InsufficientStock(t *testing.T) {
	e := echo.New()
	productRepo := testutil.NewMockProductRepository()
	movementRepo := testutil.NewMockStockMovementRepository()
	product := seedProduct(productRepo, 2)
	handler := newProductHandler(productRepo, movementRepo)

	reqBody := `{"type": "saida", "quantity": 5}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/1/movements", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := handler.CreateMovement(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}

	if productRepo.Products[product.ID].Quantity != 2 {
		t.Errorf("Expected quantity unchanged at 2, got %d", productRepo.Products[product.ID].Quantity)
	}
}

func TestCreateMovement_BadType(t *testing.T) {
	e := echo.New()
	productRepo := testutil.NewMockProductRepository()
	seedProduct(productRepo, 5)
	handler := newProductHandler(productRepo, testutil.NewMockStockMovementRepository())

	reqBody := `{"type": "transfer", "quantity": 1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/1/movements", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := handler.CreateMovement(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetImageURL_NoImage(t *testing.T) {
	e := echo.New()
	productRepo := testutil.NewMockProductRepository()
	seedProduct(productRepo, 5)
	handler := newProductHandler(productRepo, testutil.NewMockStockMovementRepository())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/1/image-url", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := handler.GetImageURL(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}
