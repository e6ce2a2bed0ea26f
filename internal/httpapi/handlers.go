package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"dsa-tracker/internal/problems"
	"dsa-tracker/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const WelcomeMessage = "Welcome to the DSA Problem Tracker API!"

// ProblemService is the subset of problems.Service the handlers need.
type ProblemService interface {
	List(ctx context.Context) ([]problems.Problem, error)
	Create(ctx context.Context, req problems.CreateProblemRequest) (problems.Problem, error)
	Get(ctx context.Context, id int) (problems.Problem, error)
	Delete(ctx context.Context, id int) error
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse input, call the service, return JSON.
type Handlers struct {
	Problems ProblemService

	// Health reports backend reachability. Nil means always healthy.
	Health func(ctx context.Context) error
}

func (h Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": WelcomeMessage})
}

func (h Handlers) Healthz(c *gin.Context) {
	if h.Health != nil {
		if err := h.Health(c.Request.Context()); err != nil {
			logger.FromGin(c).Warn("health check failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h Handlers) ListProblems(c *gin.Context) {
	out, err := h.Problems.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// createProblemBody is the wire shape of a create request. Pointers tell an
// absent field apart from an empty string: the former is rejected here, the
// latter is left to the service.
type createProblemBody struct {
	Name       *string `json:"name" binding:"required"`
	URL        *string `json:"url" binding:"required"`
	Difficulty *string `json:"difficulty" binding:"required"`
	Status     *string `json:"status" binding:"required"`
}

func (b createProblemBody) request() problems.CreateProblemRequest {
	return problems.CreateProblemRequest{
		Name:       *b.Name,
		URL:        *b.URL,
		Difficulty: *b.Difficulty,
		Status:     *b.Status,
	}
}

func (h Handlers) CreateProblem(c *gin.Context) {
	var body createProblemBody
	if err := bindCreateBody(c, &body); err != nil {
		writeError(c, err)
		return
	}
	p, err := h.Problems.Create(c.Request.Context(), body.request())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h Handlers) GetProblem(c *gin.Context) {
	id, err := problemID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	p, err := h.Problems.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h Handlers) DeleteProblem(c *gin.Context) {
	id, err := problemID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.Problems.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
}

func (h Handlers) MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"detail": "Method Not Allowed"})
}

const problemIDParam = "problem_id"

func problemID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param(problemIDParam))
	if err != nil {
		return 0, problems.NewValidationError([]string{"path", problemIDParam}, "value is not a valid integer", "type_error.integer")
	}
	return id, nil
}

// bindCreateBody binds the request body and maps binding failures onto
// field-level validation errors. The decoder stops after the first JSON value,
// so the cached raw body is checked for trailing content afterwards.
func bindCreateBody(c *gin.Context, dst *createProblemBody) error {
	err := c.ShouldBindBodyWithJSON(dst)
	if err == nil {
		if raw, ok := c.Get(gin.BodyBytesKey); ok {
			if b, _ := raw.([]byte); !json.Valid(b) {
				return problems.NewValidationError([]string{"body"}, "invalid JSON: unexpected data after top-level value", "value_error.jsondecode")
			}
		}
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &typeErr):
		loc := []string{"body"}
		if typeErr.Field != "" {
			loc = append(loc, typeErr.Field)
		}
		return problems.NewValidationError(loc, "expected "+typeErr.Type.String()+", got "+typeErr.Value, "type_error")
	case errors.As(err, &fieldErrs):
		out := &problems.ValidationError{}
		for _, fe := range fieldErrs {
			out.Fields = append(out.Fields, problems.FieldError{
				Loc:  []string{"body", jsonFieldName(dst, fe.StructField())},
				Msg:  "field required",
				Type: "value_error.missing",
			})
		}
		return out
	case errors.Is(err, io.EOF):
		return problems.NewValidationError([]string{"body"}, "field required", "value_error.missing")
	default:
		return problems.NewValidationError([]string{"body"}, "invalid JSON: "+err.Error(), "value_error.jsondecode")
	}
}

func jsonFieldName(v any, field string) string {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	sf, ok := t.FieldByName(field)
	if !ok {
		return field
	}
	if name, _, _ := strings.Cut(sf.Tag.Get("json"), ","); name != "" && name != "-" {
		return name
	}
	return field
}

func writeError(c *gin.Context, err error) {
	var ve *problems.ValidationError
	switch {
	case errors.As(err, &ve):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": ve.Fields})
	case errors.Is(err, problems.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Problem not found"})
	default:
		_ = c.Error(err)
		logger.FromGin(c).Error("request failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}
