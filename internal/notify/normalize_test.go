package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"bare local number gets country code", "9876543210", "+919876543210"},
		{"international passes through", "+919876543210", "+919876543210"},
		{"other international passes through", "+4915123456789", "+4915123456789"},
		{"garbage passes through as fallback", "abc", "abc"},
		{"whitespace is stripped", " 98765 43210 ", "+919876543210"},
		{"landline-looking number passes through", "0123456789", "0123456789"},
		{"empty stays empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.input, "+91"))
		})
	}
}
