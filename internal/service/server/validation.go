package server

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// registerValidations adds the validators used in binding tags to gin's engine
func registerValidations() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin binding engine is not a validator.Validate")
			return
		}
		registerErr = v.RegisterValidation("notblank", validators.NotBlank)
	})
	return registerErr
}
