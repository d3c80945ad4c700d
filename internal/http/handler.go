package http

import (
	"net/http"

	"github.com/ecommerce-api/internal/model"
	"github.com/ecommerce-api/internal/service"
	"github.com/gin-gonic/gin"
)

const maxErrorDetail = 200

type Handler struct {
	catalog     *service.CatalogService
	diagnostics *service.Diagnostics
}

func NewHandler(catalog *service.CatalogService, diagnostics *service.Diagnostics) *Handler {
	return &Handler{catalog: catalog, diagnostics: diagnostics}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Root)
	r.GET("/test", h.TestDatabase)

	api := r.Group("/api")
	{
		api.GET("/products", h.ListProducts)
		api.POST("/products", h.CreateProduct)
		api.POST("/orders", h.CreateOrder)
		api.GET("/schema", h.Schema)
	}
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "E-Commerce backend ready"})
}

func (h *Handler) TestDatabase(c *gin.Context) {
	c.JSON(http.StatusOK, h.diagnostics.Report(c.Request.Context()))
}

func (h *Handler) ListProducts(c *gin.Context) {
	var q service.ListProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		validationFailed(c, model.FieldErrors(err, "query"))
		return
	}

	items, err := h.catalog.ListProducts(c.Request.Context(), q)
	if err != nil {
		storeFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) CreateProduct(c *gin.Context) {
	product, errs := bindBody[model.Product](c)
	if errs != nil {
		validationFailed(c, errs)
		return
	}

	id, err := h.catalog.CreateProduct(c.Request.Context(), product)
	if err != nil {
		storeFailed(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	order, errs := bindBody[model.Order](c)
	if errs != nil {
		validationFailed(c, errs)
		return
	}

	id, err := h.catalog.CreateOrder(c.Request.Context(), order)
	if err != nil {
		storeFailed(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) Schema(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"collections": h.catalog.Collections()})
}

// bindBody decodes and validates the JSON body, returning either the record
// or the list of rejected fields.
func bindBody[T any](c *gin.Context) (T, []model.FieldError) {
	var record T
	if err := c.ShouldBindJSON(&record); err != nil {
		return record, model.FieldErrors(err, "body")
	}
	return record, nil
}

func validationFailed(c *gin.Context, errs []model.FieldError) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": errs})
}

func storeFailed(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": service.Truncate(err.Error(), maxErrorDetail)})
}
