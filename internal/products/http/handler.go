package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"products-api/internal/products"

	"github.com/gin-gonic/gin"
)

const (
	msgRouteNotFound  = "Route not found"
	msgProductDeleted = "Product deleted successfully"
	greeting          = "Hello World from the Products API"

	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

var errMissingInput = errors.New("validated input missing from request context")

type ProductService interface {
	ListProducts(ctx context.Context, q products.ListQuery) products.ListResult
	CategoryStats(ctx context.Context) map[string]int
	GetProduct(ctx context.Context, id string) (products.Product, error)
	CreateProduct(ctx context.Context, in products.Input) (products.Product, error)
	UpdateProduct(ctx context.Context, id string, in products.Input) (products.Product, error)
	DeleteProduct(ctx context.Context, id string) (products.Product, error)
}

type Handler struct {
	service ProductService
}

func NewHandler(svc ProductService) *Handler {
	return &Handler{service: svc}
}

type errorResponse struct {
	Error     string    `json:"error" example:"Product not found"`
	Details   any       `json:"details,omitempty" swaggertype:"array,string"`
	Timestamp time.Time `json:"timestamp" example:"2026-02-24T12:00:00.000Z"`
}

type listProductsResponse struct {
	Total     int                `json:"total" example:"42"`
	Page      int                `json:"page" example:"1"`
	Limit     int                `json:"limit" example:"5"`
	Data      []products.Product `json:"data"`
	Timestamp time.Time          `json:"timestamp"`
}

type statsResponse struct {
	Stats     map[string]int `json:"stats"`
	Timestamp time.Time      `json:"timestamp"`
}

type productResponse struct {
	Product   products.Product `json:"product"`
	Timestamp time.Time        `json:"timestamp"`
}

type deleteProductResponse struct {
	Message   string           `json:"message" example:"Product deleted successfully"`
	Product   products.Product `json:"product"`
	Timestamp time.Time        `json:"timestamp"`
}

// Root godoc
// @Summary      Greeting
// @Produce      plain
// @Success      200  {string}  string
// @Router       / [get]
func (h *Handler) Root(c *gin.Context) {
	c.String(http.StatusOK, "%s - %s", greeting, RequestTime(c).Format(timestampLayout))
}

// ListProducts godoc
// @Summary      List products with filtering and pagination
// @Tags         products
// @Produce      json
// @Param        category  query     string  false  "Category, case-insensitive exact match"
// @Param        search    query     string  false  "Case-insensitive substring of the name"
// @Param        page      query     int     false  "Page number"     default(1)
// @Param        limit     query     int     false  "Items per page"  default(5)
// @Success      200       {object}  listProductsResponse
// @Router       /api/products [get]
func (h *Handler) ListProducts(c *gin.Context) {
	result := h.service.ListProducts(c.Request.Context(), products.ListQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     parseQueryInt(c.Query("page"), products.DefaultPage),
		Limit:    parseQueryInt(c.Query("limit"), products.DefaultLimit),
	})

	data := result.Items
	if data == nil {
		data = []products.Product{}
	}

	c.JSON(http.StatusOK, listProductsResponse{
		Total:     result.Total,
		Page:      result.Page,
		Limit:     result.Limit,
		Data:      data,
		Timestamp: RequestTime(c),
	})
}

// CategoryStats godoc
// @Summary      Count products per category
// @Tags         products
// @Produce      json
// @Success      200  {object}  statsResponse
// @Router       /api/products/stats/by-category [get]
func (h *Handler) CategoryStats(c *gin.Context) {
	c.JSON(http.StatusOK, statsResponse{
		Stats:     h.service.CategoryStats(c.Request.Context()),
		Timestamp: RequestTime(c),
	})
}

// GetProduct godoc
// @Summary      Get a product by ID
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  productResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/products/{id} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.service.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, productResponse{Product: product, Timestamp: RequestTime(c)})
}

// CreateProduct godoc
// @Summary      Create a new product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        body  body      products.Input  true  "Product data"
// @Success      201   {object}  productResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/products [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	in, ok := validatedInput(c)
	if !ok {
		abortWithError(c, errMissingInput)
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, productResponse{Product: product, Timestamp: RequestTime(c)})
}

// UpdateProduct godoc
// @Summary      Update some or all fields of a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id    path      string          true  "Product ID"
// @Param        body  body      products.Input  true  "Fields to change"
// @Success      200   {object}  productResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/products/{id} [put]
func (h *Handler) UpdateProduct(c *gin.Context) {
	in, ok := validatedInput(c)
	if !ok {
		abortWithError(c, errMissingInput)
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, productResponse{Product: product, Timestamp: RequestTime(c)})
}

// DeleteProduct godoc
// @Summary      Delete a product by ID
// @Description  Responds 200 with the removed record rather than 204.
// @Tags         products
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  deleteProductResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/products/{id} [delete]
func (h *Handler) DeleteProduct(c *gin.Context) {
	product, err := h.service.DeleteProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, deleteProductResponse{
		Message:   msgProductDeleted,
		Product:   product,
		Timestamp: RequestTime(c),
	})
}

func (h *Handler) RouteNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, errorResponse{Error: msgRouteNotFound, Timestamp: RequestTime(c)})
}

// parseQueryInt falls back on missing, non-numeric or non-positive values
// instead of failing the request.
func parseQueryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
