package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/service"
)

// ProductHandler handles product and stock HTTP requests
type ProductHandler struct {
	productService *service.ProductService
	imageService   *service.ImageService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *service.ProductService, imageService *service.ImageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		imageService:   imageService,
	}
}

// ProductRequest represents the create/update product request body
type ProductRequest struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Cost        string `json:"cost,omitempty"`
	Quantity    int32  `json:"quantity,omitempty"`
	MinQuantity int32  `json:"minQuantity,omitempty"`
}

// MovementRequest represents a stock movement request body
type MovementRequest struct {
	Type     string  `json:"type"` // entrada | saida
	Quantity int32   `json:"quantity"`
	Note     *string `json:"note,omitempty"`
}

// parseMoney parses a decimal field. On failure it writes the validation
// response and reports ok=false; the handler must return nil then.
func parseMoney(c echo.Context, field, raw string) (decimal.Decimal, bool) {
	if raw == "" {
		return decimal.Zero, true
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		_ = NewValidationError(c, "Invalid "+field, []ValidationError{
			{Field: field, Message: "Must be a valid decimal number"},
		})
		return decimal.Zero, false
	}
	return value, true
}

// CreateProduct handles POST /api/v1/products
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	price, ok := parseMoney(c, "price", req.Price)
	if !ok {
		return nil
	}
	cost, ok := parseMoney(c, "cost", req.Cost)
	if !ok {
		return nil
	}

	product, err := h.productService.CreateProduct(service.CreateProductInput{
		Name:        req.Name,
		Price:       price,
		Cost:        cost,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
	})
	if err != nil {
		if errors.Is(err, domain.ErrProductNameEmpty) ||
			errors.Is(err, domain.ErrProductNameTooLong) ||
			errors.Is(err, domain.ErrProductPriceInvalid) {
			return NewValidationError(c, err.Error(), nil)
		}
		log.Error().Err(err).Msg("Failed to create product")
		return NewInternalError(c, "Failed to create product")
	}

	log.Info().Int32("product_id", product.ID).Str("name", product.Name).Msg("Product created")
	return c.JSON(http.StatusCreated, product)
}

// GetProducts handles GET /api/v1/products
func (h *ProductHandler) GetProducts(c echo.Context) error {
	products, err := h.productService.GetAllProducts()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get products")
		return NewInternalError(c, "Failed to get products")
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid product ID", nil)
	}

	product, err := h.productService.GetProduct(id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return NewNotFoundError(c, "Product not found")
		}
		log.Error().Err(err).Int32("product_id", id).Msg("Failed to get product")
		return NewInternalError(c, "Failed to get product")
	}
	return c.JSON(http.StatusOK, product)
}

// UpdateProduct handles PUT /api/v1/products/:id
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid product ID", nil)
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	price, ok := parseMoney(c, "price", req.Price)
	if !ok {
		return nil
	}
	cost, ok := parseMoney(c, "cost", req.Cost)
	if !ok {
		return nil
	}

	product, err := h.productService.UpdateProduct(id, service.UpdateProductInput{
		Name:        req.Name,
		Price:       price,
		Cost:        cost,
		MinQuantity: req.MinQuantity,
	})
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return NewNotFoundError(c, "Product not found")
		}
		if errors.Is(err, domain.ErrProductNameEmpty) ||
			errors.Is(err, domain.ErrProductNameTooLong) ||
			errors.Is(err, domain.ErrProductPriceInvalid) {
			return NewValidationError(c, err.Error(), nil)
		}
		log.Error().Err(err).Int32("product_id", id).Msg("Failed to update product")
		return NewInternalError(c, "Failed to update product")
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/:id
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid product ID", nil)
	}

	if err := h.productService.DeleteProduct(id); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return NewNotFoundError(c, "Product not found")
		}
		log.Error().Err(err).Int32("product_id", id).Msg("Failed to delete product")
		return NewInternalError(c, "Failed to delete product")
	}

	log.Info().Int32("product_id", id).Msg("Product deleted")
	return c.NoContent(http.StatusNoContent)
}

// CreateMovement handles POST /api/v1/products/:id/movements
func (h *ProductHandler) CreateMovement(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid product ID", nil)
	}

	var req MovementRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	result, err := h.productService.RegisterMovement(c.Request().Context(), service.RegisterMovementInput{
		ProductID: id,
		Type:      domain.MovementType(req.Type),
		Quantity:  req.Quantity,
		Note:      req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			return NewNotFoundError(c, "Product not found")
		case errors.Is(err, domain.ErrStockInsufficient):
			return NewConflictError(c, "Not enough stock for this movement")
		case errors.Is(err, domain.ErrStockMovementQuantity), errors.Is(err, domain.ErrStockMovementBadType):
			return NewValidationError(c, err.Error(), nil)
		}
		log.Error().Err(err).Int32("product_id", id).Msg("Failed to register stock movement")
		return NewInternalError(c, "Failed to register stock movement")
	}

	log.Info().
		Int32("product_id", id).
		Str("type", string(result.Movement.Type)).
		Int32("quantity", result.Movement.Quantity).
		Msg("Stock movement recorded")
	return c.JSON(http.StatusCreated, result)
}

// GetMovements handles GET /api/v1/products/:id/movements
func (h *ProductHandler) GetMovements(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid product ID", nil)
	}

	movements, err := h.productService.GetMovementsByProduct(id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return NewNotFoundError(c, "Product not found")
		}
		log.Error().Err(err).Int32("product_id", id).Msg("Failed to get stock movements")
		return NewInternalError(c, "Failed to get stock movements")
	}
	return c.JSON(http.StatusOK, movements)
}

// UploadImage handles POST /api/v1/products/:id/image (multipart form, field "image")
func (h *ProductHandler) UploadImage(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid product ID", nil)
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return NewValidationError(c, "Missing image file", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return NewValidationError(c, "Could not read image file", nil)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxImageSize+1))
	if err != nil {
		return NewValidationError(c, "Could not read image file", nil)
	}

	metadata, err := h.imageService.AttachProductImage(c.Request().Context(), id, data, fileHeader.Filename)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			return NewNotFoundError(c, "Product not found")
		case errors.Is(err, service.ErrImageTooLarge),
			errors.Is(err, service.ErrInvalidFormat),
			errors.Is(err, service.ErrImageTooSmall),
			errors.Is(err, service.ErrInvalidImageData):
			return NewValidationError(c, err.Error(), nil)
		case errors.Is(err, service.ErrImageStorageNotConfigured):
			return NewInternalError(c, "Image storage not configured")
		}
		log.Error().Err(err).Int32("product_id", id).Msg("Failed to upload product image")
		return NewInternalError(c, "Failed to upload product image")
	}

	log.Info().Int32("product_id", id).Str("image_id", metadata.ID).Msg("Product image uploaded")
	return c.JSON(http.StatusCreated, metadata)
}

// DeleteImage handles DELETE /api/v1/products/:id/image
func (h *ProductHandler) DeleteImage(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid product ID", nil)
	}

	if err := h.imageService.RemoveProductImage(c.Request().Context(), id); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return NewNotFoundError(c, "Product not found")
		}
		log.Error().Err(err).Int32("product_id", id).Msg("Failed to delete product image")
		return NewInternalError(c, "Failed to delete product image")
	}
	return c.NoContent(http.StatusNoContent)
}

// GetImageURL handles GET /api/v1/products/:id/image-url
func (h *ProductHandler) GetImageURL(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid product ID", nil)
	}

	product, err := h.productService.GetProduct(id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return NewNotFoundError(c, "Product not found")
		}
		log.Error().Err(err).Int32("product_id", id).Msg("Failed to get product")
		return NewInternalError(c, "Failed to get product")
	}
	if product.ImageURL == nil {
		return NewNotFoundError(c, "Product has no image")
	}

	url, err := h.imageService.PresignedURL(c.Request().Context(), *product.ImageURL)
	if err != nil {
		log.Error().Err(err).Int32("product_id", id).Msg("Failed to presign image URL")
		return NewInternalError(c, "Failed to generate image URL")
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
