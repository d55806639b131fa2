package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"innovation-portal/internal/adapter/middleware"
	reviewUC "innovation-portal/internal/usecase/review"
)

type ReviewHandler struct {
	uc  *reviewUC.Usecase
	log logrus.FieldLogger
}

func NewReviewHandler(uc *reviewUC.Usecase, log logrus.FieldLogger) *ReviewHandler {
	return &ReviewHandler{uc: uc, log: log}
}

type recordReviewReq struct {
	Stage    string `json:"stage"    validate:"required,stage"`
	Status   string `json:"status"   validate:"required,reviewstatus"`
	Comments string `json:"comments" validate:"max=5000"`
}

func (h *ReviewHandler) RecordReview(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
	}
	var req recordReviewReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	if ok, err := validPathID(c); !ok {
		return err
	}
	dto, err := h.uc.RecordReview(c.Request().Context(), actor, c.Param("id"), reviewUC.RecordInput(req))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ReviewHandler) ListReviews(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
	}
	if ok, err := validPathID(c); !ok {
		return err
	}
	out, err := h.uc.ListReviews(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReviewHandler) GetReview(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
	}
	if ok, err := validPathID(c, "id", "reviewId"); !ok {
		return err
	}
	dto, err := h.uc.GetReview(c.Request().Context(), actor, c.Param("id"), c.Param("reviewId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
