package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/checkout", h.checkout)
}

type checkoutAddressRequest struct {
	Country    string `json:"country"`
	Street     string `json:"street"`
	Town       string `json:"town"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

type checkoutRequest struct {
	CartID        string                 `json:"cart_id"`
	CustomerName  string                 `json:"customer_name"`
	CustomerEmail string                 `json:"customer_email"`
	CustomerPhone string                 `json:"customer_phone"`
	Address       checkoutAddressRequest `json:"address"`
	Notes         string                 `json:"notes"`
}

func (h *CheckoutHandler) checkout(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Checkout(c.Request().Context(), usecase.CheckoutInput{
		CartID:        req.CartID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Address: usecase.CheckoutAddressInput{
			Country:    req.Address.Country,
			Street:     req.Address.Street,
			Town:       req.Address.Town,
			State:      req.Address.State,
			PostalCode: req.Address.PostalCode,
		},
		Notes: req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}
