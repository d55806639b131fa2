package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"innovation-portal/internal/adapter/middleware"
	userUC "innovation-portal/internal/usecase/user"
)

type UserHandler struct {
	uc  *userUC.Usecase
	log logrus.FieldLogger
}

func NewUserHandler(uc *userUC.Usecase, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{uc: uc, log: log}
}

type updateRoleReq struct {
	Role string `json:"role" validate:"required,role"`
}

func (h *UserHandler) Me(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
	}
	dto, err := h.uc.Get(c.Request().Context(), actor, actor.ID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *UserHandler) List(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
	}
	var in userUC.ListInput
	if err := echo.QueryParamsBinder(c).
		String("role", &in.Role).
		String("lob", &in.LineOfBusiness).
		Int("limit", &in.Limit).
		Int("offset", &in.Offset).
		BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameters"})
	}
	out, err := h.uc.List(c.Request().Context(), actor, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) Get(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
	}
	if ok, err := validPathID(c); !ok {
		return err
	}
	dto, err := h.uc.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *UserHandler) UpdateRole(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
	}
	var req updateRoleReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	if ok, err := validPathID(c); !ok {
		return err
	}
	dto, err := h.uc.UpdateRole(c.Request().Context(), actor, c.Param("id"), req.Role)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
