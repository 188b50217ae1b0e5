package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"lead@college.edu",
		"first.last@example.co.in",
		"a@b.io",
	}
	for _, email := range valid {
		require.True(t, ValidateEmail(email), "expected %q to be valid", email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"no domain@example.com",
		"@example.com",
		"user@",
		"user@nodot",
	}
	for _, email := range invalid {
		require.False(t, ValidateEmail(email), "expected %q to be invalid", email)
	}
}

func TestValidatePhone(t *testing.T) {
	require.True(t, ValidatePhone("9876543210"))

	invalid := []string{
		"",
		"98765",
		"98765432100",
		"98765 4321",
		"+919876543210",
		"abcdefghij",
	}
	for _, phone := range invalid {
		require.False(t, ValidatePhone(phone), "expected %q to be invalid", phone)
	}
}
