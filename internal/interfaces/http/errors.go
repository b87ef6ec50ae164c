package http

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/estoque-cd/internal/application/dto"
	"github.com/jhoicas/estoque-cd/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Los mensajes usan el nombre JSON del campo.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodifica el cuerpo y aplica las reglas `validate` del DTO.
// Ya escribe la respuesta 400; el llamador sólo retorna.
func parseBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	return true, nil
}

func validationMessage(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err.Error()
	}
	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		// Namespace empieza con el tipo del DTO: SubmitCartRequest.items[0].product_id
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// respondError traduce un error del núcleo a status + ErrorResponse según su Kind.
func respondError(c *fiber.Ctx, err error) error {
	status, body := errorBody(err)
	if status >= fiber.StatusInternalServerError {
		rid, _ := c.Locals("requestid").(string)
		log.Error().Err(err).Str("request_id", rid).Str("method", c.Method()).Str("path", c.Path()).Int("status", status).Msg("error en petición")
	}
	return c.Status(status).JSON(body)
}

func errorBody(err error) (int, dto.ErrorResponse) {
	var de *domain.Error
	if !errors.As(err, &de) {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "TIMEOUT", Message: "la operación no terminó a tiempo"}
		}
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
	}
	code := func(def string) string {
		if de.Code != "" {
			return de.Code
		}
		return def
	}
	switch de.Kind {
	case domain.KindValidation:
		if de.Code == domain.ErrDuplicate.Code {
			return fiber.StatusConflict, dto.ErrorResponse{Code: de.Code, Message: de.Error()}
		}
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: code("VALIDATION"), Message: de.Error()}
	case domain.KindNotFound:
		return fiber.StatusNotFound, dto.ErrorResponse{Code: code("NOT_FOUND"), Message: de.Error()}
	case domain.KindIdentityConflict:
		return fiber.StatusConflict, dto.ErrorResponse{Code: code("IDENTITY_CONFLICT"), Message: de.Error()}
	case domain.KindExceedsPending:
		maxAllowed := de.MaxAllowed
		return fiber.StatusConflict, dto.ErrorResponse{Code: code("EXCEEDS_PENDING"), Message: de.Error(), MaxAllowed: &maxAllowed}
	case domain.KindConcurrencyConflict:
		return fiber.StatusConflict, dto.ErrorResponse{Code: code("CONCURRENCY_CONFLICT"), Message: de.Msg}
	case domain.KindInsufficientStock:
		return fiber.StatusConflict, dto.ErrorResponse{Code: code("INSUFFICIENT_STOCK"), Message: de.Error()}
	case domain.KindUnauthorized:
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: code("UNAUTHORIZED"), Message: de.Msg}
	case domain.KindForbidden:
		return fiber.StatusForbidden, dto.ErrorResponse{Code: code("FORBIDDEN"), Message: de.Msg}
	case domain.KindPersistence:
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: code("PERSISTENCE"), Message: "almacenamiento no disponible, reintente"}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
}
