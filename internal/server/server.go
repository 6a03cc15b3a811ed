package server

import (
	"app/internal/config"
	"app/internal/handler"
	mw "app/internal/middleware"
	"app/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// 依存済みのhandler一式を受け取ってechoを組み立てる
type Handlers struct {
	Auth          *handler.AuthHandler
	Product       *handler.ProductHandler
	SellerProduct *handler.SellerProductHandler
	Category      *handler.CategoryHandler
	Cart          *handler.CartHandler
	Checkout      *handler.CheckoutHandler
	Payment       *handler.PaymentHandler
	SellerOrder   *handler.SellerOrderHandler
	Newsletter    *handler.NewsletterHandler
}

func New(cfg config.Config, userRepo repository.UserRepository, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	//認証必須グループ
	authed := e.Group("", mw.AuthJWT(cfg), mw.TokenVersionGuard(userRepo))

	//出品者のみのグループ
	seller := e.Group("/seller", mw.AuthJWT(cfg), mw.TokenVersionGuard(userRepo), mw.SellerRoleGuard())

	h.Auth.RegisterRoutes(e, authed)
	h.Product.RegisterRoutes(e)
	h.SellerProduct.RegisterRoutes(seller)
	h.Category.RegisterRoutes(e, seller)
	h.Cart.RegisterRoutes(e)
	h.Checkout.RegisterRoutes(e)
	h.Payment.RegisterRoutes(e, seller)
	h.SellerOrder.RegisterRoutes(seller)
	h.Newsletter.RegisterRoutes(e)

	return e
}
