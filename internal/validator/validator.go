package validator

// Validator bundles the request validators used by the service layer.
type Validator struct {
	business *BusinessValidator
}

func NewValidator() *Validator {
	return &Validator{business: NewBusinessValidator()}
}

func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

// Struct runs struct tag validation on any request shape.
func (v *Validator) Struct(s interface{}) ValidationErrors {
	return v.business.Validate(s)
}
