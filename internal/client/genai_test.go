package client

import (
	"testing"

	"google.golang.org/genai"

	"github.com/223MapAction/Model-deploy/internal/model"
)

func TestChatRole(t *testing.T) {
	tests := []struct {
		in   string
		want genai.Role
	}{
		{model.RoleUser, genai.RoleUser},
		{model.RoleAssistant, genai.RoleModel},
		{"unknown", genai.RoleUser},
	}
	for _, tt := range tests {
		if got := chatRole(tt.in); got != tt.want {
			t.Errorf("chatRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
