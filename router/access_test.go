package router

import (
	"testing"

	"psiconecta/models"
)

func TestAccessRules(t *testing.T) {
	cases := []struct {
		name   string
		rule   accessRule
		user   models.User
		denied bool
	}{
		{"active user", accountActive, models.User{Status: models.USER_STATUS_AVAILABLE}, false},
		{"pending user", accountActive, models.User{Status: models.USER_STATUS_PENDING}, true},
		{"blocked user", accountActive, models.User{Status: models.USER_STATUS_BLOCKED}, true},
		{"admin", adminOnly, models.User{Admin: true}, false},
		{"not admin", adminOnly, models.User{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rule(tc.user) != ""; got != tc.denied {
				t.Fatalf("denied = %v, want %v", got, tc.denied)
			}
		})
	}
}
