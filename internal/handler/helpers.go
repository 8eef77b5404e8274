package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"taskmanager/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func init() {
	// Report JSON field names (nameTask, estatus...) instead of Go names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
		}
		c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError renders a service error. Domain errors carry their own status
// and message; anything else is attached to the context for ErrorHandler to
// log and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var e *apierror.Error
	if errors.As(err, &e) && e.Kind != apierror.KindUpstream {
		c.JSON(e.Kind.Status(), apierror.New(e.Msg))
		return
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
}
