package validator

import (
	"log"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует кастомные теги; ошибка регистрации фатальна
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'notblank': строка не пустая после обрезки пробелов
	mustRegister("notblank", validateNotBlank)
	// 'maxbytes=N': длина строки в байтах не больше N (bcrypt принимает до 72 байт)
	mustRegister("maxbytes", validateMaxBytes)
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateMaxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}
