package validate

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	admissionNoRe = regexp.MustCompile(`^\d{3}/\d{2}$`)
	emailRe       = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phoneRe       = regexp.MustCompile(`^\d{10}$`)
)

// Errors is a field-level validation message list, returned as-is in 400
// responses.
type Errors []string

func (e Errors) Error() string {
	return "validation failed: " + strings.Join(e, "; ")
}

func (e Errors) Messages() []string {
	return e
}

// AdmissionNo reports whether s matches the campus admission-number format
// NNN/NN (e.g. 234/23). Callers are expected to trim first.
func AdmissionNo(s string) bool {
	return admissionNoRe.MatchString(s)
}

func Email(s string) bool {
	return emailRe.MatchString(s)
}

func Phone(s string) bool {
	return phoneRe.MatchString(s)
}

func Password(s string) bool {
	return len(s) >= 6
}

// StudentRegistration validates the registration form and returns the full
// list of problems, one message per field.
func StudentRegistration(admissionNo, name, email, phone, password string) Errors {
	var errs Errors

	if admissionNo == "" {
		errs = append(errs, "Admission number required")
	} else if !AdmissionNo(admissionNo) {
		errs = append(errs, "Admission number must be in format: NNN/NN (e.g., 234/23)")
	}
	if len(strings.TrimSpace(name)) < 2 {
		errs = append(errs, "Valid name required")
	}
	if !Email(email) {
		errs = append(errs, "Valid email required")
	}
	if !Phone(phone) {
		errs = append(errs, "Valid 10-digit phone number required")
	}
	if !Password(password) {
		errs = append(errs, "Password must be at least 6 characters")
	}

	return errs
}

// Required checks presence of required fields; keys are field names used in
// the message.
func Required(fields map[string]string) Errors {
	var errs Errors
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Sprintf("%s is required", name))
		}
	}
	return errs
}
