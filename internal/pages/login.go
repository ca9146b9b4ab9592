package pages

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/mark3labs/stepwise/internal/condition"
	"github.com/mark3labs/stepwise/internal/lookup"
	"github.com/mark3labs/stepwise/internal/page"
	"github.com/mark3labs/stepwise/internal/shared"
)

// Login field names.
const (
	FieldUsername = "username"
	FieldPassword = "password"
	FieldRole     = "role"
	FieldTerms    = "terms"
)

// Messages shown by the login page.
const (
	MsgCredentialsRequired = "Username and password are required!"
	MsgTermsRequired       = "You must accept the terms and conditions!"
	MsgShortPassword       = "Password is shorter than 8 characters."
)

const minPasswordLen = 8

// Login collects credentials, a role and terms acceptance.
type Login struct {
	pageBase
	username string
	password string
	role     string
	terms    bool
	roles    []lookup.Item
}

// NewLogin creates the login page.
func NewLogin(deps Deps) *Login {
	if deps.Lookups == nil {
		deps.Lookups = lookup.Defaults()
	}
	return &Login{pageBase: pageBase{deps: deps}}
}

// Initialize loads the role list and registers the page conditions.
func (l *Login) Initialize() error {
	roles, err := l.deps.Lookups.List(lookup.Roles)
	if err != nil {
		return fmt.Errorf("login roles: %w", err)
	}
	l.roles = roles
	if len(roles) > 0 {
		l.role = roles[0].Value
	}

	// Values seeded into the context prefill the form.
	if v, ok := shared.Get(l.Shared(), Username); ok {
		l.username = v
	}
	if v, ok := shared.Get(l.Shared(), Role); ok && l.hasRole(v) {
		l.role = v
	}

	l.Conditions.Require(condition.New("credentials", func() bool {
		return strings.TrimSpace(l.username) != "" && l.password != ""
	}, MsgCredentialsRequired))
	l.Conditions.Require(condition.New("terms", func() bool {
		return l.terms
	}, MsgTermsRequired))
	l.Conditions.Advise(condition.New("password-length", func() bool {
		return l.password == "" || len(l.password) >= minPasswordLen
	}, MsgShortPassword))
	return nil
}

// Fields implements page.FieldEditor.
func (l *Login) Fields() []page.Field {
	choices := make([]string, len(l.roles))
	for i, r := range l.roles {
		choices[i] = r.Value
	}
	return []page.Field{
		{Name: FieldUsername, Label: "Username", Kind: page.FieldText},
		{Name: FieldPassword, Label: "Password", Kind: page.FieldSecret},
		{Name: FieldRole, Label: "Role", Kind: page.FieldChoice, Choices: choices},
		{Name: FieldTerms, Label: "I accept the terms and conditions", Kind: page.FieldToggle},
	}
}

// FieldValue implements page.FieldEditor.
func (l *Login) FieldValue(name string) string {
	switch name {
	case FieldUsername:
		return l.username
	case FieldPassword:
		return l.password
	case FieldRole:
		return l.role
	case FieldTerms:
		return strconv.FormatBool(l.terms)
	default:
		return ""
	}
}

// SetField implements page.FieldEditor.
func (l *Login) SetField(name, value string) error {
	switch name {
	case FieldUsername:
		l.username = value
	case FieldPassword:
		l.password = value
	case FieldRole:
		if !l.hasRole(value) {
			return fmt.Errorf("%w: role %q", page.ErrInvalidValue, value)
		}
		l.role = value
	case FieldTerms:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: terms %q", page.ErrInvalidValue, value)
		}
		l.terms = b
	default:
		return fmt.Errorf("%w: %q", page.ErrUnknownField, name)
	}
	return nil
}

func (l *Login) hasRole(v string) bool {
	return slices.ContainsFunc(l.roles, func(it lookup.Item) bool { return it.Value == v })
}

// BeforeNext commits the answers. The password stays on the page.
func (l *Login) BeforeNext() error {
	ctx := l.Shared()
	shared.Set(ctx, Username, strings.TrimSpace(l.username))
	shared.Set(ctx, Role, l.role)
	shared.Set(ctx, TermsAccepted, l.terms)
	return nil
}

// OnCancel drops the typed password.
func (l *Login) OnCancel() error {
	l.password = ""
	return nil
}
