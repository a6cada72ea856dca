package validation

import (
	"net/mail"
	"regexp"
	"strings"
)

const (
	nameMinLen    = 2
	nameMaxLen    = 100
	emailMaxLen   = 254
	messageMinLen = 10
	messageMaxLen = 5000
)

var (
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
	namePattern = regexp.MustCompile(`^[\p{L} '-]+$`)
)

// defaultDisposableDomains lists email domains known to hand out throwaway
// addresses. Overridable via Options.
var defaultDisposableDomains = []string{
	"tempmail.com",
	"mailinator.com",
	"guerrillamail.com",
	"10minutemail.com",
	"throwaway.email",
	"yopmail.com",
	"temp-mail.org",
	"fakeinbox.com",
	"trashmail.com",
	"getnada.com",
}

// Input carries the raw contact-form fields.
type Input struct {
	Name    string
	Email   string
	Message string
}

// FieldErrors accumulates per-field validation messages.
type FieldErrors map[string][]string

// Add appends a message for a field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Empty reports whether no errors were recorded.
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// Options overrides the built-in blocklists; nil slices keep the defaults.
type Options struct {
	DisposableDomains []string
	SpamPatterns      []string
}

// Validator sanitizes and validates contact-form input. All checks are pure
// functions of the input; no I/O happens here.
type Validator struct {
	disposable map[string]struct{}
	spam       []*regexp.Regexp
}

// New builds a Validator from the given options.
func New(opts Options) *Validator {
	domains := opts.DisposableDomains
	if domains == nil {
		domains = defaultDisposableDomains
	}
	disposable := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		disposable[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}
	return &Validator{
		disposable: disposable,
		spam:       compileSpamPatterns(opts.SpamPatterns),
	}
}

// Validate sanitizes all fields and accumulates per-field errors. The
// returned Input holds the normalized values; it is only meaningful when the
// returned FieldErrors is empty.
func (v *Validator) Validate(in Input) (Input, FieldErrors) {
	errs := FieldErrors{}

	out := Input{
		Name:    v.validateName(in.Name, errs),
		Email:   v.validateEmail(in.Email, errs),
		Message: v.validateMessage(in.Message, errs),
	}
	return out, errs
}

func (v *Validator) validateName(raw string, errs FieldErrors) string {
	name := strings.TrimSpace(StripTags(raw))
	if name == "" {
		errs.Add("name", "name is required")
		return name
	}
	if length := len([]rune(name)); length < nameMinLen || length > nameMaxLen {
		errs.Add("name", "name must be between 2 and 100 characters")
		return name
	}
	if !namePattern.MatchString(name) {
		errs.Add("name", "name may only contain letters, spaces, hyphens and apostrophes")
	}
	return name
}

func (v *Validator) validateEmail(raw string, errs FieldErrors) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		errs.Add("email", "email is required")
		return email
	}
	if len(email) > emailMaxLen {
		errs.Add("email", "email must be 254 characters or fewer")
		return email
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		// Reject name-addr forms like "jane <jane@x.com>"; only the bare
		// addr-spec is a valid submission.
		errs.Add("email", "enter a valid email address")
		return email
	}
	if v.isDisposableDomain(addr.Address) {
		errs.Add("email", "disposable email addresses are not allowed")
	}
	return email
}

func (v *Validator) validateMessage(raw string, errs FieldErrors) string {
	message := strings.TrimSpace(StripTags(raw))
	if message == "" {
		errs.Add("message", "message is required")
		return message
	}
	if length := len([]rune(message)); length < messageMinLen || length > messageMaxLen {
		errs.Add("message", "message must be between 10 and 5000 characters")
		return message
	}
	if v.isSpam(message) {
		errs.Add("message", "message contains prohibited content")
	}
	return message
}

func (v *Validator) isDisposableDomain(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	_, blocked := v.disposable[email[at+1:]]
	return blocked
}

// StripTags removes HTML/XML markup from a string.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}
