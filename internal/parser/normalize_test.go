package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"大小写与标点", "Senior Go/Python Developer!", "senior go python developer"},
		{"数字与符号", "5+ years of C++ & CI/CD", "years of c ci cd"},
		{"多余空白", "  python\t\tjava\n\nsql  ", "python java sql"},
		{"非ASCII字符", "Café résumé 简历", "caf r sum"},
		{"空输入", "", ""},
		{"只有符号", "!!! 123 ???", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeText(tc.input))
		})
	}
}

func TestNormalizeTextIdempotent(t *testing.T) {
	inputs := []string{
		"Experienced Java/Spring developer; 10+ yrs.",
		"  MULTI   space\ttabs\nnewlines ",
		"Ünïcödé — dashes – and “quotes”",
		"",
	}
	for _, in := range inputs {
		once := NormalizeText(in)
		assert.Equal(t, once, NormalizeText(once), "规范化应是幂等的: %q", in)
	}
}
