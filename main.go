// Package main library management API.
//
// @title           Library Management API
// @version         1.0
// @description     Library backend (books, categories, borrowing requests, users).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"librarymanagement/app/echoServer"
	authctrl "librarymanagement/app/echoServer/controller/auth"
	bookctrl "librarymanagement/app/echoServer/controller/book"
	categoryctrl "librarymanagement/app/echoServer/controller/category"
	requestctrl "librarymanagement/app/echoServer/controller/request"
	"librarymanagement/app/echoServer/validation"
	"librarymanagement/config"
	bookrepo "librarymanagement/repository/book"
	categoryrepo "librarymanagement/repository/category"
	requestrepo "librarymanagement/repository/request"
	tokenrepo "librarymanagement/repository/token"
	userrepo "librarymanagement/repository/user"
	authsvc "librarymanagement/service/auth"
	booksvc "librarymanagement/service/book"
	categorysvc "librarymanagement/service/category"
	requestsvc "librarymanagement/service/request"
	"librarymanagement/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db, "migrations"); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}
	if cfg.Seed {
		if err := database.Seed(ctx, db); err != nil {
			log.Error("seeding failed", "err", err)
			os.Exit(1)
		}
	}

	// repos
	ur := userrepo.New(db)
	tr := tokenrepo.New(db)
	br := bookrepo.New(db)
	cr := categoryrepo.New(db)
	rr := requestrepo.New(db)

	// services
	as := authsvc.New(ur, tr, cfg.JWTSecret)
	bs := booksvc.New(br)
	cs := categorysvc.New(cr)
	rs := requestsvc.New(db, rr)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	categoryC := &categoryctrl.Controller{Svc: cs, V: v, Log: log}
	requestC := &requestctrl.Controller{Svc: rs, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:     authC,
		Book:     bookC,
		Category: categoryC,
		Request:  requestC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
