package delivery

import (
	"errors"
	"net/http"

	"catalog_service/internal/domain"

	"github.com/gin-gonic/gin"
)

// Client-facing messages. The API speaks Spanish to its users.
const (
	MsgProductNotFound = "Producto no encontrado"
	MsgCreateFailed    = "¡Ha ocurrido un error al intentar guardar un producto, vuelve a intentarlo!"
	MsgInternalError   = "Ha ocurrido un error interno en el servidor, inténtalo más tarde."
	MsgInvalidPrice    = "El formato del precio no es válido"
	MsgInvalidRating   = "La calificación debe ser un número entre 0 y 5"
)

// FieldError reports one invalid request field in a 422 response body.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func detailResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"detail": message})
}

func fieldErrorsResponse(c *gin.Context, errs []FieldError) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": errs})
}

// mapErrorToStatus translates usecase errors into HTTP status codes. Anything
// unrecognized is an internal error; its details stay in the logs, not the
// response body.
func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyImage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
