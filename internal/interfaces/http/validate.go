package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Los errores usan el nombre JSON (o query) del campo.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// validateStruct traduce los errores del validador a *domain.ValidationError.
func validateStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &domain.ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fieldPath(fe.Namespace())] = messageFor(fe)
	}
	return out
}

// fieldPath quita el nombre del struct raíz: "CreateSellRequest.items[0].batches" -> "items[0].batches".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "requerido"
	case "email":
		return "email inválido"
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "min":
		return "mínimo " + fe.Param()
	case "max":
		return "máximo " + fe.Param()
	}
	return "inválido (" + fe.Tag() + ")"
}

// parseBody decodifica JSON y valida. Devuelve la respuesta HTTP ya escrita si falla (handled=true).
func parseBody(c *fiber.Ctx, in any) (handled bool, err error) {
	if err := c.BodyParser(in); err != nil {
		return true, badBody(c)
	}
	if err := validateStruct(in); err != nil {
		return true, respondError(c, err)
	}
	return false, nil
}

// parseQuery decodifica query params y valida.
func parseQuery(c *fiber.Ctx, in any) (handled bool, err error) {
	if err := c.QueryParser(in); err != nil {
		return true, respondError(c, domain.NewValidationError("query", "parámetros inválidos"))
	}
	if err := validateStruct(in); err != nil {
		return true, respondError(c, err)
	}
	return false, nil
}
