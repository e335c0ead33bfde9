package validation

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/edvios/backend/internal/app/models"
)

// RegisterRules installs the domain tags on gin's validator engine:
//
//	role       a known models.RoleType
//	appstatus  a known models.ApplicationStatus
func RegisterRules() error {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return Register(engine)
}

// Register installs the domain tags on v
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("role", validRole); err != nil {
		return fmt.Errorf("register role rule: %w", err)
	}
	if err := v.RegisterValidation("appstatus", validApplicationStatus); err != nil {
		return fmt.Errorf("register appstatus rule: %w", err)
	}
	return nil
}

func validRole(fl validator.FieldLevel) bool {
	return models.RoleType(fl.Field().String()).Valid()
}

func validApplicationStatus(fl validator.FieldLevel) bool {
	value := models.ApplicationStatus(fl.Field().String())
	for _, status := range models.AllApplicationStatuses {
		if value == status {
			return true
		}
	}
	return false
}
