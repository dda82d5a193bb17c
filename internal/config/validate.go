package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// report keys the way they are written in config.yaml
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ = uni.GetTranslator("en")

	_ = en_translations.RegisterDefaultTranslations(validate, trans)
}

// Validate checks cfg and joins every failure into one error.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	problems := ParseValidationError(err)
	keys := make([]string, 0, len(problems))
	for k := range problems {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, problems[k]))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(parts, "; "))
}

// ParseValidationError maps dotted config keys to readable messages.
func ParseValidationError(err error) map[string]string {
	errMap := make(map[string]string)

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errMap["config"] = err.Error()
		return errMap
	}

	for _, e := range validationErrors {
		ns := e.Namespace()

		// drop the root struct name
		if i := strings.Index(ns, "."); i != -1 {
			ns = ns[i+1:]
		}

		msg := e.Translate(trans)

		if e.Tag() == "oneof" {
			msg = fmt.Sprintf("must be one of [%s]", strings.ReplaceAll(e.Param(), " ", ", "))
		}

		errMap[ns] = msg
	}
	return errMap
}
