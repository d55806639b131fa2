package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	userUC "innovation-portal/internal/usecase/user"
)

type AuthHandler struct {
	uc  *userUC.Usecase
	log logrus.FieldLogger
}

func NewAuthHandler(uc *userUC.Usecase, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{uc: uc, log: log}
}

type registerReq struct {
	Email          string `json:"email"          validate:"required,email,max=191"`
	Name           string `json:"name"           validate:"max=191"`
	Password       string `json:"password"       validate:"required,min=8,max=72"`
	Department     string `json:"department"     validate:"max=128"`
	LineOfBusiness string `json:"lineOfBusiness" validate:"max=64"`
}

type loginReq struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Register(c.Request().Context(), userUC.RegisterInput(req))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	res, err := h.uc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}
