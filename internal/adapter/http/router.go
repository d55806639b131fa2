package http

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"innovation-portal/internal/adapter/middleware"
	"innovation-portal/internal/domain/user"
	"innovation-portal/internal/infrastructure/metrics"
	ideaUC "innovation-portal/internal/usecase/idea"
	reviewUC "innovation-portal/internal/usecase/review"
	userUC "innovation-portal/internal/usecase/user"
)

type Deps struct {
	Users   *userUC.Usecase
	Ideas   *ideaUC.Usecase
	Reviews *reviewUC.Usecase

	Tokens   middleware.TokenParser
	UserRepo user.Repository

	// Nil disables the idempotency middleware.
	Redis          *redis.Client
	IdempotencyTTL time.Duration

	MaxBodyMB int
	Log       logrus.FieldLogger
}

// Register installs the global middleware and every route on e.
func Register(e *echo.Echo, d Deps) {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	e.Validator = NewValidator()
	e.Use(echomw.RequestID(), middleware.RequestLog(d.Log), echomw.Recover())
	if d.MaxBodyMB > 0 {
		e.Use(echomw.BodyLimit(fmt.Sprintf("%dM", d.MaxBodyMB)))
	}

	h := NewHandler()
	auth := NewAuthHandler(d.Users, d.Log)
	users := NewUserHandler(d.Users, d.Log)
	ideas := NewIdeaHandler(d.Ideas, d.Log)
	reviews := NewReviewHandler(d.Reviews, d.Log)

	// public
	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.POST("/auth/register", auth.Register)
	e.POST("/auth/login", auth.Login)

	// authenticated; idempotency must run after the actor is known
	mw := []echo.MiddlewareFunc{middleware.Authenticate(d.Tokens, d.UserRepo, d.Log)}
	if d.Redis != nil {
		mw = append(mw, middleware.Idempotency(d.Redis, d.IdempotencyTTL, d.Log))
	}

	e.GET("/me", users.Me, mw...)
	e.GET("/users", users.List, mw...)
	e.GET("/users/:id", users.Get, mw...)
	e.PUT("/users/:id/role", users.UpdateRole, mw...)

	e.POST("/ideas", ideas.SubmitIdea, mw...)
	e.GET("/ideas", ideas.ListIdeas, mw...)
	e.GET("/ideas/:id", ideas.GetIdea, mw...)
	e.POST("/ideas/:id/attachments", ideas.AddAttachments, mw...)
	e.PUT("/ideas/:id/status", ideas.OverrideStatus, mw...)

	e.POST("/ideas/:id/reviews", reviews.RecordReview, mw...)
	e.GET("/ideas/:id/reviews", reviews.ListReviews, mw...)
	e.GET("/ideas/:id/reviews/:reviewId", reviews.GetReview, mw...)
}
