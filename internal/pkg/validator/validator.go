// Package validator wraps the go-playground validator with EN translations.
package validator

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslation "github.com/go-playground/validator/v10/translations/en"

	"github.com/ticketrush/ticketrush/internal/pkg/utils/errors"
)

type Validation struct {
	Tag  string
	Func validator.Func
}

func Validate(ctx context.Context, value any, rules ...Validation) error {
	validate, enTranslator := newValidator(rules...)

	if err := validate.StructCtx(ctx, value); err != nil {
		var validationErrs validator.ValidationErrors
		switch {
		case errors.As(err, &validationErrs):
			return processValidateError(validationErrs, enTranslator)
		default:
			panic(err)
		}
	}

	return nil
}

func newValidator(rules ...Validation) (*validator.Validate, ut.Translator) {
	validate := validator.New()

	// Register default EN translator
	enLocale := en.New()
	enTranslator, found := ut.New(enLocale, enLocale).GetTranslator("en")
	if !found {
		panic(errors.New("en translator was not found"))
	}
	if err := enTranslation.RegisterDefaultTranslations(validate, enTranslator); err != nil {
		panic(errors.PrefixError(err, "translator was not registered"))
	}

	// Register custom validation rules
	for _, rule := range rules {
		if err := validate.RegisterValidation(rule.Tag, rule.Func); err != nil {
			panic(errors.PrefixError(err, "cannot register validation rule"))
		}
	}

	// Use JSON field name in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return validate, enTranslator
}

// processNamespace removes the struct name (first part) from the field namespace.
func processNamespace(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) <= 1 {
		return namespace
	}
	return strings.Join(parts[1:], ".")
}

func processValidateError(errs validator.ValidationErrors, translator ut.Translator) error {
	result := errors.NewMultiError()
	for _, e := range errs {
		result.Append(errors.Errorf(`"%s": %s`, processNamespace(e.Namespace()), strings.TrimSpace(e.Translate(translator))))
	}
	return result.ErrorOrNil()
}
