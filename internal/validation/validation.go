// Package validation checks user input before it reaches the registry.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/yakoovad/studygroups/internal/model"
)

const (
	TagStudentID  = "student_id"
	TagPersonName = "person_name"
	TagLooseEmail = "loose_email"
	TagSingleLine = "single_line"
)

var (
	studentIDPattern  = regexp.MustCompile(`^[0-9]{10}$`)
	personNamePattern = regexp.MustCompile(`^[A-Za-z\p{Hangul}]+(?: [A-Za-z\p{Hangul}]+)*$`)
	emailPattern      = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)
)

var ErrInvalid = errors.New("invalid input")

// FieldError describes the first rule a field failed.
type FieldError struct {
	Field string
	Tag   string
}

func (e *FieldError) Error() string {
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case TagStudentID:
		return fmt.Sprintf("%s must be a 10-digit student ID", e.Field)
	case TagLooseEmail:
		return fmt.Sprintf("%s must be an email address", e.Field)
	case TagPersonName:
		return fmt.Sprintf("%s must contain only letters", e.Field)
	case TagSingleLine:
		return fmt.Sprintf("%s must not contain line breaks", e.Field)
	default:
		return fmt.Sprintf("%s is invalid (%s)", e.Field, e.Tag)
	}
}

func (e *FieldError) Is(target error) bool {
	return target == ErrInvalid
}

type Rules struct {
	Identifier       model.IdentifierKind
	LettersOnlyNames bool
}

type Validator struct {
	v     *validator.Validate
	rules Rules
}

func New(rules Rules) (*Validator, error) {
	switch rules.Identifier {
	case model.IdentifierStudentID, model.IdentifierEmail:
	default:
		return nil, errors.Errorf("unknown identifier kind %q", rules.Identifier)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	for tag, fn := range map[string]func(string) bool{
		TagStudentID:  IsStudentID,
		TagPersonName: IsPersonName,
		TagLooseEmail: IsEmail,
		TagSingleLine: IsSingleLine,
	} {
		if err := v.RegisterValidation(tag, stringRule(fn)); err != nil {
			return nil, errors.Wrapf(err, "register %s", tag)
		}
	}

	return &Validator{v: v, rules: rules}, nil
}

// Struct runs the validate tags of s.
func (v *Validator) Struct(s any) error {
	return toFieldError(v.v.Struct(s), "")
}

// Member checks a member against the configured identifier and name rules.
func (v *Validator) Member(m *model.Member) error {
	if m == nil {
		return &FieldError{Field: "member", Tag: "required"}
	}

	nameTag := "required"
	if v.rules.LettersOnlyNames {
		nameTag += "," + TagPersonName
	}
	if err := v.v.Var(m.Name, nameTag); err != nil {
		return toFieldError(err, "name")
	}

	idTag := "required," + TagLooseEmail
	if v.rules.Identifier == model.IdentifierStudentID {
		idTag = "required," + TagStudentID
	}
	if err := v.v.Var(m.ID, idTag); err != nil {
		return toFieldError(err, "id")
	}

	return nil
}

// Required rejects an empty value for a named field.
func (v *Validator) Required(field, value string) error {
	return toFieldError(v.v.Var(value, "required"), field)
}

func IsStudentID(s string) bool {
	return studentIDPattern.MatchString(s)
}

func IsPersonName(s string) bool {
	return personNamePattern.MatchString(s)
}

func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func IsSingleLine(s string) bool {
	return !strings.ContainsAny(s, "\r\n")
}

func stringRule(fn func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	}
}

func toFieldError(err error, field string) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(err, "validation failed")
	}

	fe := verrs[0]
	if field == "" {
		field = fe.Field()
	}
	return &FieldError{Field: field, Tag: fe.Tag()}
}
