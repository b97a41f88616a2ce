package validator

import (
	"log"

	"fanbase_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует все кастомные функции валидации в
// переданном экземпляре валидатора.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Если правило не удалось зарегистрировать, приложение
			// не должно запускаться.
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'is-plan-interval': интервал тарифного плана
	mustRegister("is-plan-interval", validatePlanInterval)

	// 'is-user-role': роль пользователя
	mustRegister("is-user-role", validateUserRole)
}

func validatePlanInterval(fl validator.FieldLevel) bool {
	switch models.PlanInterval(fl.Field().String()) {
	case models.PlanIntervalMonthly, models.PlanIntervalYearly:
		return true
	}
	return false
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case models.UserRoleUser, models.UserRoleCreator, models.UserRoleAdmin:
		return true
	}
	return false
}
