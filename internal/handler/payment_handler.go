package handler

import (
	"io"
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, seller *echo.Group) {
	e.POST("/payments/initialize", h.initialize)
	e.GET("/payments/verify/:reference", h.verify)
	e.POST("/payments/webhook", h.webhook)
	e.POST("/payments/:reference/cancel", h.cancel)

	//出品者のみ
	seller.POST("/payments/transfer-recipient", h.createTransferRecipient)
	seller.GET("/payments/balance", h.checkBalance)
}

type initializePaymentRequest struct {
	OrderID *int64          `json:"order_id"`
	Email   string          `json:"email"`
	Amount  decimal.Decimal `json:"amount"`
}

func (h *PaymentHandler) initialize(c echo.Context) error {
	var req initializePaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.InitializePayment(c.Request().Context(), usecase.InitializePaymentInput{
		OrderID: req.OrderID,
		Email:   req.Email,
		Amount:  req.Amount,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) verify(c echo.Context) error {
	out, err := h.uc.VerifyPayment(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// webhook受け口。
// 署名検証のため、パース前の生のボディをそのままusecaseへ渡す
func (h *PaymentHandler) webhook(c echo.Context) error {
	rawBody, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot read body"})
	}

	signature := c.Request().Header.Get("x-paystack-signature")

	if err := h.uc.HandleWebhook(c.Request().Context(), rawBody, signature); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusOK)
}

func (h *PaymentHandler) cancel(c echo.Context) error {
	out, err := h.uc.CancelPayment(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) createTransferRecipient(c echo.Context) error {
	var req usecase.TransferRecipientInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateTransferRecipient(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *PaymentHandler) checkBalance(c echo.Context) error {
	out, err := h.uc.CheckBalance(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
