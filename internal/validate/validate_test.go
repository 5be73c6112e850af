package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdmissionNo(t *testing.T) {
	assert.True(t, AdmissionNo("234/23"))
	assert.True(t, AdmissionNo("001/25"))

	assert.False(t, AdmissionNo("23423"))
	assert.False(t, AdmissionNo("2345/23"))
	assert.False(t, AdmissionNo("234/2"))
	assert.False(t, AdmissionNo(" 234/23"))
	assert.False(t, AdmissionNo(""))
}

func TestEmailAndPhone(t *testing.T) {
	assert.True(t, Email("anita@college.edu"))
	assert.False(t, Email("anita@college"))
	assert.False(t, Email("not an email"))

	assert.True(t, Phone("9876543210"))
	assert.False(t, Phone("987654321"))
	assert.False(t, Phone("98765432100"))
	assert.False(t, Phone("98765abcde"))
}

func TestStudentRegistrationCollectsAllProblems(t *testing.T) {
	errs := StudentRegistration("bad", "A", "nope", "123", "ab")
	assert.Len(t, errs, 5)

	errs = StudentRegistration("234/23", "Anita", "anita@college.edu", "9876543210", "secret123")
	assert.Empty(t, errs)
}

func TestRequired(t *testing.T) {
	errs := Required(map[string]string{"purpose": " ", "return_time": "18:00"})
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0], "purpose")
}
