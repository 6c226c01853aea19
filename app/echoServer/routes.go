package echoServer

import (
	authctrl "librarymanagement/app/echoServer/controller/auth"
	bookctrl "librarymanagement/app/echoServer/controller/book"
	categoryctrl "librarymanagement/app/echoServer/controller/category"
	requestctrl "librarymanagement/app/echoServer/controller/request"
	"librarymanagement/model"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth     *authctrl.Controller
	Book     *bookctrl.Controller
	Category *categoryctrl.Controller
	Request  *requestctrl.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/api")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)
	pub.POST("/auth/refresh", c.Auth.Refresh)

	// Auth
	auth := e.Group("/api")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
	}))
	auth.Use(ExtractClaims())

	auth.POST("/auth/logout", c.Auth.Logout)
	auth.GET("/auth/me", c.Auth.Me)

	// Catalogue reads are open to any authenticated user.
	auth.GET("/books", c.Book.List)
	auth.GET("/books/:id", c.Book.Detail)
	auth.GET("/categories", c.Category.List)
	auth.GET("/categories/:id", c.Category.Detail)

	// Borrower endpoints
	normal := auth.Group("", RequireRole(model.RoleNormalUser))
	normal.GET("/my-requests", c.Request.ListMine)
	normal.GET("/my-requests/:id", c.Request.GetMine)
	normal.POST("/my-requests", c.Request.Create)
	normal.GET("/my-allowance", c.Request.MyAllowance)

	// Librarian endpoints
	super := auth.Group("", RequireRole(model.RoleSuperUser))
	super.GET("/requests", c.Request.ListAll)
	super.GET("/requests/:id", c.Request.Get)
	super.POST("/requests/:id/approve", c.Request.Approve)
	super.POST("/requests/:id/reject", c.Request.Reject)

	super.POST("/books", c.Book.Create)
	super.PUT("/books/:id", c.Book.Update)
	super.DELETE("/books/:id", c.Book.Delete)

	super.POST("/categories", c.Category.Create)
	super.PUT("/categories/:id", c.Category.Update)
	super.DELETE("/categories/:id", c.Category.Delete)
}
