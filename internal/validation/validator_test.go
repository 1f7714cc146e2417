package validation

import (
	"strings"
	"testing"

	"github.com/sporthub-api/internal/models"
)

func strPtr(s string) *string { return &s }

func TestCleanComment(t *testing.T) {
	validator := NewValidator(0)

	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{name: "plain text", content: "湖人這場防守真的不一樣", want: "湖人這場防守真的不一樣"},
		{name: "surrounding whitespace trimmed", content: "  great game \n", want: "great game"},
		{name: "markup stripped", content: "<b>MVP</b> <script>alert(1)</script>season", want: "MVP season"},
		{name: "text stays escaped", content: "Tom & Jerry 1 < 2", want: "Tom &amp; Jerry 1 &lt; 2"},
		{name: "escaped markup not decoded", content: "&lt;script&gt;alert(1)&lt;/script&gt;", want: "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{name: "escaped characters count once", content: strings.Repeat("&", MaxContentRunes), want: strings.Repeat("&amp;", MaxContentRunes)},
		{name: "empty", content: "", wantErr: true},
		{name: "whitespace only", content: " \t\n ", wantErr: true},
		{name: "markup only", content: "<img src=x>", wantErr: true},
		{name: "too many characters", content: strings.Repeat("字", MaxContentRunes+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.CleanComment(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("CleanComment(%q) expected error, got %q", tt.content, got)
				}
				ve, ok := AsErrors(err)
				if !ok || len(ve) != 1 || ve[0].Field != "content" {
					t.Errorf("Expected one content error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CleanComment(%q) unexpected error: %v", tt.content, err)
			}
			if got != tt.want {
				t.Errorf("CleanComment(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestSanitizeNeverYieldsMarkup(t *testing.T) {
	validator := NewValidator(0)

	inputs := []string{
		"<b>hi</b>",
		"<script>alert(1)</script>",
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"&amp;lt;img src=x onerror=alert(1)&amp;gt;",
		"<<script>script>alert(1)<</script>/script>",
		"<a href=\"javascript:alert(1)\">x</a>",
	}

	for _, in := range inputs {
		got := validator.Sanitize(in)
		if strings.ContainsAny(got, "<>") {
			t.Errorf("Sanitize(%q) = %q, contains raw markup", in, got)
		}
	}
}

func TestCommentWordBoundary(t *testing.T) {
	validator := NewValidator(0)

	// Exactly 500 words - should pass
	words500 := strings.TrimSpace(strings.Repeat("word ", 500))
	if _, err := validator.CleanComment(words500); err != nil {
		t.Errorf("500 words should be valid, got %v", err)
	}

	// 501 words - should fail
	words501 := strings.TrimSpace(strings.Repeat("word ", 501))
	_, err := validator.CleanComment(words501)
	if err == nil {
		t.Fatal("501 words should fail validation")
	}
	if !strings.Contains(err.Error(), "has 501") {
		t.Errorf("Expected word count in message, got %q", err.Error())
	}
}

func TestCommentCustomWordLimit(t *testing.T) {
	validator := NewValidator(3)

	if _, err := validator.CleanComment("one two three"); err != nil {
		t.Errorf("3 words should be valid, got %v", err)
	}
	if _, err := validator.CleanComment("one two three four"); err == nil {
		t.Error("4 words should fail with a limit of 3")
	}
}

func TestValidateLogin(t *testing.T) {
	validator := NewValidator(0)

	tests := []struct {
		name       string
		req        models.LoginRequest
		wantFields []string
		wantEmail  string
	}{
		{
			name:      "valid login normalises email",
			req:       models.LoginRequest{Email: "  Fan@Example.COM ", Name: "Demo User", Gender: "MALE"},
			wantEmail: "fan@example.com",
		},
		{
			name:       "missing email",
			req:        models.LoginRequest{Name: "Demo User"},
			wantFields: []string{"email"},
		},
		{
			name:       "invalid email",
			req:        models.LoginRequest{Email: "not-an-email"},
			wantFields: []string{"email"},
		},
		{
			name:       "invalid gender",
			req:        models.LoginRequest{Email: "fan@example.com", Gender: "OTHER"},
			wantFields: []string{"gender"},
		},
		{
			name:       "multiple errors",
			req:        models.LoginRequest{Email: "bad", Name: strings.Repeat("n", 65), Gender: "x"},
			wantFields: []string{"email", "name", "gender"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := validator.ValidateLogin(&req)

			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("ValidateLogin() unexpected error: %v", err)
				}
				if req.Email != tt.wantEmail {
					t.Errorf("Email = %q, want %q", req.Email, tt.wantEmail)
				}
				return
			}

			ve, ok := AsErrors(err)
			if !ok {
				t.Fatalf("Expected validation errors, got %v", err)
			}
			if len(ve) != len(tt.wantFields) {
				t.Errorf("ValidateLogin() got %d errors, want %d. Errors: %v", len(ve), len(tt.wantFields), ve)
			}
			for _, wantField := range tt.wantFields {
				found := false
				for _, e := range ve {
					if e.Field == wantField {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("Expected error for field '%s' but not found", wantField)
				}
			}
		})
	}
}

func TestValidateProfile(t *testing.T) {
	validator := NewValidator(0)

	update := &models.ProfileUpdate{
		Name:   strPtr("  <i>張大衛</i> "),
		Avatar: strPtr(" https://cdn.example.com/a.png "),
	}
	if err := validator.ValidateProfile(update); err != nil {
		t.Fatalf("ValidateProfile() unexpected error: %v", err)
	}
	if *update.Name != "張大衛" {
		t.Errorf("Name = %q, want sanitised name", *update.Name)
	}
	if *update.Avatar != "https://cdn.example.com/a.png" {
		t.Errorf("Avatar = %q, want trimmed URL", *update.Avatar)
	}

	// A name that sanitises to nothing is rejected
	err := validator.ValidateProfile(&models.ProfileUpdate{Name: strPtr("<br>")})
	if ve, ok := AsErrors(err); !ok || ve[0].Field != "name" {
		t.Errorf("Expected name error, got %v", err)
	}

	err = validator.ValidateProfile(&models.ProfileUpdate{Avatar: strPtr("not a url")})
	if ve, ok := AsErrors(err); !ok || ve[0].Field != "avatar" {
		t.Errorf("Expected avatar error, got %v", err)
	}

	// Nothing to change is valid
	if err := validator.ValidateProfile(&models.ProfileUpdate{}); err != nil {
		t.Errorf("Empty update should be valid, got %v", err)
	}
}

func TestValidationErrorMessages(t *testing.T) {
	validator := NewValidator(0)

	err := validator.ValidateStruct(&models.LoginRequest{Email: "x", Gender: "OTHER"})
	ve, ok := AsErrors(err)
	if !ok {
		t.Fatalf("Expected validation errors, got %v", err)
	}

	for _, e := range ve {
		if e.Message == "" {
			t.Errorf("Field %s has an empty message", e.Field)
		}
		if e.Field == "gender" && e.Message != "must be one of: MALE, FEMALE" {
			t.Errorf("Unexpected gender message %q", e.Message)
		}
	}
	if !strings.HasPrefix(err.Error(), "validation failed: ") {
		t.Errorf("Unexpected error text %q", err.Error())
	}
}

func TestIsValidUUID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"550e8400-e29b-41d4-a716-446655440000", true},
		{"c-01", false},
		{"", false},
		{"local-2ZxYz", false},
	}
	for _, tt := range tests {
		if got := IsValidUUID(tt.in); got != tt.want {
			t.Errorf("IsValidUUID(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func BenchmarkCleanComment(b *testing.B) {
	validator := NewValidator(0)
	content := "This is a <b>benchmark</b> test comment body about last night's game"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		validator.CleanComment(content)
	}
}
