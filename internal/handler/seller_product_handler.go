package handler

import (
	"net/http"
	"strconv"

	mw "app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// 出品者用の商品管理API
type SellerProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewSellerProductHandler(uc *usecase.ProductUsecase) *SellerProductHandler {
	return &SellerProductHandler{uc: uc}
}

func (h *SellerProductHandler) RegisterRoutes(seller *echo.Group) {
	seller.POST("/products", h.create)
	seller.PUT("/products/:id", h.update)
	seller.DELETE("/products/:id", h.delete)
}

type sellerProductRequest struct {
	CategoryID  *int64          `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock"`
	IsFeatured  bool            `json:"is_featured"`
	IsActive    bool            `json:"is_active"`
	Colors      []string        `json:"colors"`
}

func (r sellerProductRequest) toInput() usecase.SellerProductInput {
	return usecase.SellerProductInput{
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		IsFeatured:  r.IsFeatured,
		IsActive:    r.IsActive,
		Colors:      r.Colors,
	}
}

func (h *SellerProductHandler) create(c echo.Context) error {
	var req sellerProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	userID, _ := c.Get(mw.CtxUserIDKey).(int64)

	id, err := h.uc.SellerCreateProduct(c.Request().Context(), userID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]int64{"id": id})
}

func (h *SellerProductHandler) update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req sellerProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	userID, _ := c.Get(mw.CtxUserIDKey).(int64)

	if err := h.uc.SellerUpdateProduct(c.Request().Context(), userID, id, req.toInput()); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *SellerProductHandler) delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	userID, _ := c.Get(mw.CtxUserIDKey).(int64)

	if err := h.uc.SellerDeleteProduct(c.Request().Context(), userID, id); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
