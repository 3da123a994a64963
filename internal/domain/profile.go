package domain

// Profile is a named sender identity used for a dispatch run.
// It is immutable for the duration of a run.
type Profile struct {
	// Name is the key the profile is stored under.
	Name string `json:"-" yaml:"-"`

	// PhoneNumberID is the provider-assigned sender identity.
	PhoneNumberID string `json:"phone_number_id" yaml:"phone_number_id"`

	// AccessToken authenticates requests to the provider.
	AccessToken string `json:"token" yaml:"token"`

	// Templates is the ordered rotation of template names.
	Templates []string `json:"templates" yaml:"templates"`

	// Namespace is forwarded into the template object when set.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// Validate reports a configuration error if the profile cannot be used to send.
func (p Profile) Validate() error {
	if len(p.Templates) == 0 {
		return ErrNoTemplates
	}
	return nil
}

// TemplateAt returns the template assigned to the recipient at position i.
// The caller must ensure the profile has at least one template.
func (p Profile) TemplateAt(i int) string {
	return p.Templates[i%len(p.Templates)]
}
