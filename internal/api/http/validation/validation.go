package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// DefaultMaxBytes bounds free-text request fields when a tag gives no limit.
const DefaultMaxBytes = 64 * 1024

var once sync.Once

// Register installs the custom rules on gin's default validator. Safe to call
// more than once.
func Register() {
	once.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("maxbytes", validateMaxBytes)
			v.RegisterTagNameFunc(func(f reflect.StructField) string {
				name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
				if name == "-" || name == "" {
					return f.Name
				}
				return name
			})
		}
	})
}

// validateMaxBytes checks byte length, not rune count. Usage: `binding:"maxbytes=1024"`.
func validateMaxBytes(fl validator.FieldLevel) bool {
	limit := DefaultMaxBytes
	if p := fl.Param(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return false
		}
		limit = n
	}
	return len(fl.Field().String()) <= limit
}

// Message turns a binding error into a short client-facing string.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid body"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", field))
		case "maxbytes":
			parts = append(parts, fmt.Sprintf("%s is too large", field))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(parts, "; ")
}
