package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"innovation-portal/internal/adapter/middleware"
	"innovation-portal/internal/domain/apperr"
	"innovation-portal/internal/domain/storage"
	ideaUC "innovation-portal/internal/usecase/idea"
)

type IdeaHandler struct {
	uc  *ideaUC.Usecase
	log logrus.FieldLogger
}

func NewIdeaHandler(uc *ideaUC.Usecase, log logrus.FieldLogger) *IdeaHandler {
	return &IdeaHandler{uc: uc, log: log}
}

type submitIdeaReq struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	ExpectedImpact string          `json:"expectedImpact"`
	LineOfBusiness string          `json:"lineOfBusiness"`
	CoApplicants   json.RawMessage `json:"coApplicants"`
}

type overrideStatusReq struct {
	Status string `json:"status" validate:"required,terminalstatus"`
	Reason string `json:"reason" validate:"max=1000"`
}

type partialFailureResp struct {
	Idea  *ideaUC.IdeaDTO `json:"idea"`
	Error string          `json:"error"`
}

// SubmitIdea accepts multipart/form-data (fields plus attachments[]) or a JSON body
// without files.
func (h *IdeaHandler) SubmitIdea(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
	}

	var in ideaUC.SubmitInput
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid multipart body"})
		}
		in.Title = formValue(form, "title")
		in.Description = formValue(form, "description")
		in.ExpectedImpact = formValue(form, "expectedImpact")
		in.LineOfBusiness = formValue(form, "lineOfBusiness")
		co, err := coApplicantsFromForm(form)
		if err != nil {
			return writeError(c, h.log, err)
		}
		in.CoApplicants = co
		in.Attachments = uploadsFromForm(form)
	} else {
		var req submitIdeaReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
		}
		co, err := parseCoApplicants(req.CoApplicants)
		if err != nil {
			return writeError(c, h.log, err)
		}
		in = ideaUC.SubmitInput{
			Title:          req.Title,
			Description:    req.Description,
			ExpectedImpact: req.ExpectedImpact,
			LineOfBusiness: req.LineOfBusiness,
			CoApplicants:   co,
		}
	}

	dto, err := h.uc.SubmitIdea(c.Request().Context(), actor, in)
	if err != nil {
		if dto != nil && apperr.KindOf(err) == apperr.KindPartialFailure {
			return c.JSON(http.StatusMultiStatus, partialFailureResp{Idea: dto, Error: err.Error()})
		}
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *IdeaHandler) ListIdeas(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
	}
	var in ideaUC.ListInput
	if err := echo.QueryParamsBinder(c).
		String("scope", &in.Scope).
		String("lob", &in.LineOfBusiness).
		String("status", &in.Status).
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

func (h *IdeaHandler) GetIdea(c echo.Context) error {
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

func (h *IdeaHandler) AddAttachments(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
	}
	if !isMultipart(c) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "multipart/form-data required"})
	}
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid multipart body"})
	}
	if ok, err := validPathID(c); !ok {
		return err
	}
	out, err := h.uc.AddAttachments(c.Request().Context(), actor, c.Param("id"), uploadsFromForm(form))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *IdeaHandler) OverrideStatus(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
	}
	var req overrideStatusReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	if ok, err := validPathID(c); !ok {
		return err
	}
	dto, err := h.uc.OverrideStatus(c.Request().Context(), actor, c.Param("id"), ideaUC.OverrideInput(req))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// coApplicantsFromForm reads coApplicants either as one JSON array or as repeated fields.
func coApplicantsFromForm(form *multipart.Form) ([]string, error) {
	vals := append(append([]string{}, form.Value["coApplicants"]...), form.Value["coApplicants[]"]...)
	if len(vals) == 1 && strings.HasPrefix(strings.TrimSpace(vals[0]), "[") {
		return parseCoApplicants(json.RawMessage(vals[0]))
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

type coApplicantRef struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// parseCoApplicants accepts an array whose items are strings or {email|name} objects.
func parseCoApplicants(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, apperr.Validation("coApplicants", "must be an array")
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		var s string
		if err := json.Unmarshal(it, &s); err == nil {
			out = append(out, s)
			continue
		}
		var ref coApplicantRef
		if err := json.Unmarshal(it, &ref); err != nil {
			return nil, apperr.Validation("coApplicants", "items must be strings or {email|name} objects")
		}
		if ref.Email != "" {
			out = append(out, ref.Email)
		} else {
			out = append(out, ref.Name)
		}
	}
	return out, nil
}

func uploadsFromForm(form *multipart.Form) []storage.Upload {
	files := append(append([]*multipart.FileHeader{}, form.File["attachments[]"]...), form.File["attachments"]...)
	out := make([]storage.Upload, 0, len(files))
	for _, fh := range files {
		ct := fh.Header.Get(echo.HeaderContentType)
		if ct == "" {
			ct = "application/octet-stream"
		}
		out = append(out, storage.Upload{
			FileName:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
			Open: func() (io.ReadCloser, error) {
				f, err := fh.Open()
				if err != nil {
					return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
				}
				return f, nil
			},
		})
	}
	return out
}
