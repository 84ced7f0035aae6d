package handler

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"time"

	"barcontrol/internal/apierror"
	"barcontrol/internal/dto"
	"barcontrol/internal/middleware"
	"barcontrol/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// decimal.Decimal is a struct; expose it as a float so min/gt tags work.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds the JSON body and runs the validator tags.
// On failure it writes the response and returns false.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// paramUUID parses a path parameter, writing a 400 when it is not a UUID.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}

const retryAfterSeconds = "1"

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	if errors.Is(err, service.ErrRetryable) {
		return http.StatusServiceUnavailable
	}
	var de *service.DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError
	}
	switch de.Kind {
	case service.KindInsufficientStock, service.KindCashSessionConflict, service.KindConflict:
		return http.StatusConflict
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindInvalidCredentials:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

// respondError writes the error envelope. Unexpected errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusInternalServerError:
		log.Error().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Err(err).
			Msg("erro inesperado")
		c.JSON(status, apierror.New("Erro interno do servidor"))
	case http.StatusServiceUnavailable:
		log.Warn().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Err(err).
			Msg("conflito de concorrência")
		c.Header("Retry-After", retryAfterSeconds)
		c.JSON(status, apierror.New("Operação concorrente, tente novamente"))
	default:
		c.JSON(status, apierror.New(err.Error()))
	}
}

// Auditor records user actions. *worker.Dispatcher satisfies it.
type Auditor interface {
	Auditar(ctx context.Context, job dto.AuditoriaJob)
}

// auditar records a successful write. A nil auditor is a no-op.
func auditar(c *gin.Context, a Auditor, acao, detalhe string) {
	if a == nil {
		return
	}
	job := dto.AuditoriaJob{
		Usuario:  middleware.GetAtor(c).Username,
		Acao:     acao,
		DataHora: time.Now(),
	}
	if detalhe != "" {
		job.Detalhe = &detalhe
	}
	if ip := c.ClientIP(); ip != "" {
		job.IP = &ip
	}
	a.Auditar(c.Request.Context(), job)
}
