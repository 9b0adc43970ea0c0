package kfsession

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"wechatkf-golang/refactor/internal/api"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 错误里的字段名使用 json 标签，与接口参数名一致
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		return name
	})
	_ = v.RegisterValidation("kfaccount", kfAccountValidator)
	return v
}

// kfAccountValidator 校验 "账号前缀@公众号微信号" 格式：恰好一个 @，两侧都不为空。
func kfAccountValidator(fl validator.FieldLevel) bool {
	prefix, service, ok := strings.Cut(fl.Field().String(), "@")
	return ok && prefix != "" && service != "" && !strings.Contains(service, "@")
}

func validateStruct(v any) error {
	return toArgumentError("request", validate.Struct(v))
}

func validateVar(field, value, tag string) error {
	return toArgumentError(field, validate.Var(value, tag))
}

func toArgumentError(field string, err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Field() != "" {
			field = fe.Field()
		}
		return &api.ArgumentError{Field: field, Reason: reason(fe.Tag())}
	}
	return &api.ArgumentError{Field: field, Reason: err.Error()}
}

func reason(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "kfaccount":
		return "must look like prefix@service-id"
	default:
		return "failed " + tag + " check"
	}
}
