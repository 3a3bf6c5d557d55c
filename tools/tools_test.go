package tools

import "testing"

func TestNormalizePhoneBR(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"(11) 98765-4321", "5511987654321", true},
		{"+55 11 98765-4321", "5511987654321", true},
		{"011 3333-4444", "551133334444", true},
		{"98765-4321", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := NormalizePhoneBR(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("NormalizePhoneBR(%q) = (%q, %v), want %q", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("NormalizePhoneBR(%q) = %q, want error", tc.in, got)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	if !ValidateEmail("ana.souza@clinica.com.br") {
		t.Fatalf("valid email rejected")
	}
	if ValidateEmail("ana@") {
		t.Fatalf("invalid email accepted")
	}
}

func TestCheckPassword(t *testing.T) {
	if CheckPassword("12345") != "password" {
		t.Fatalf("short password accepted")
	}
	if CheckPassword("123456") != "" {
		t.Fatalf("6-char password rejected")
	}
}
