package openshift

import "fmt"

// ValidateOption configures Validate.
type ValidateOption func(*validateOptions)

type validateOptions struct {
	strictOptions bool
}

// WithStrictOptions makes Validate reject values outside a parameter's valid options.
func WithStrictOptions(strict bool) ValidateOption {
	return func(o *validateOptions) {
		o.strictOptions = strict
	}
}

// Validate checks params against the parameters declared by link. Every
// required parameter must be present and non-nil; a required string parameter
// must also be non-empty. Valid option sets are enforced only with
// WithStrictOptions, otherwise the broker remains the authority.
func Validate(link Link, params *Parameters, opts ...ValidateOption) error {
	var o validateOptions
	for _, opt := range opts {
		opt(&o)
	}

	for _, required := range link.RequiredParams {
		value, ok := params.Get(required.Name)
		if !ok || value == nil || isNilPointer(value) {
			return &Error{
				Kind:    KindRequestValidation,
				Message: fmt.Sprintf("missing required parameter %q for link %q", required.Name, link.Rel),
				Href:    link.Href,
				Cause:   ErrMissingRequiredParameter,
			}
		}

		if required.Type == ParameterTypeString {
			if s, isString := value.(string); isString && s == "" {
				return &Error{
					Kind:    KindRequestValidation,
					Message: fmt.Sprintf("required parameter %q for link %q is empty", required.Name, link.Rel),
					Href:    link.Href,
					Cause:   ErrEmptyRequiredParameter,
				}
			}
		}

		if o.strictOptions {
			if err := checkOption(link, required, value); err != nil {
				return err
			}
		}
	}

	if !o.strictOptions {
		return nil
	}

	for _, optional := range link.OptionalParams {
		value, ok := params.Get(optional.Name)
		if !ok || isAbsent(value) {
			continue
		}

		if err := checkOption(link, optional, value); err != nil {
			return err
		}
	}

	return nil
}

func checkOption(link Link, param LinkParameter, value interface{}) error {
	for _, v := range formatValue(value) {
		if !param.IsValidOption(v) {
			return &Error{
				Kind:    KindRequestValidation,
				Message: fmt.Sprintf("value %q is not a valid option for parameter %q of link %q", v, param.Name, link.Rel),
				Href:    link.Href,
				Cause:   ErrInvalidParameterOption,
			}
		}
	}

	return nil
}
