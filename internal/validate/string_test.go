package validate

import (
	"errors"
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		constraints StringConstraints
		want        string
		wantErr     error
	}{
		{
			name:        "within bounds",
			input:       "Warehouse Show",
			constraints: StringConstraints{MinLength: 1, MaxLength: 200},
			want:        "Warehouse Show",
		},
		{
			name:        "trims before validating",
			input:       "  zine fair  ",
			constraints: StringConstraints{MinLength: 1, MaxLength: 200, TrimSpace: true},
			want:        "zine fair",
		},
		{
			name:        "empty rejected",
			input:       "   ",
			constraints: StringConstraints{MinLength: 1, TrimSpace: true},
			wantErr:     ErrEmpty,
		},
		{
			name:        "empty allowed",
			input:       "",
			constraints: StringConstraints{MaxLength: 10, AllowEmpty: true},
			want:        "",
		},
		{
			name:        "too short",
			input:       "a",
			constraints: StringConstraints{MinLength: 2},
			wantErr:     ErrStringTooShort,
		},
		{
			name:        "too long",
			input:       strings.Repeat("a", 11),
			constraints: StringConstraints{MaxLength: 10},
			wantErr:     ErrStringTooLong,
		},
		{
			name:        "length counts runes not bytes",
			input:       "héllo wörld",
			constraints: StringConstraints{MaxLength: 11},
			want:        "héllo wörld",
		},
		{
			name:        "pattern mismatch",
			input:       "bad handle!",
			constraints: StringConstraints{AllowedPattern: HandlePattern},
			wantErr:     ErrInvalidCharacters,
		},
		{
			name:        "sql keyword rejected",
			input:       "x; DROP TABLE users",
			constraints: StringConstraints{MaxLength: 200, CheckSQLKeywords: true},
			wantErr:     ErrSQLKeyword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := String(tt.input, tt.constraints)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("String() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("String() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestItemName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain name", input: "Vintage Guitar", want: "Vintage Guitar"},
		{name: "trimmed", input: "  Night Market  ", want: "Night Market"},
		{name: "html escaped", input: "<b>Loud</b> Show", want: "&lt;b&gt;Loud&lt;/b&gt; Show"},
		{name: "empty", input: "   ", wantErr: true},
		{name: "over 200 chars", input: strings.Repeat("a", 201), wantErr: true},
		{name: "sql injection attempt", input: "x'; DELETE FROM content_items", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ItemName(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ItemName() succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ItemName() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ItemName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescription(t *testing.T) {
	t.Run("empty is allowed", func(t *testing.T) {
		got, err := Description("")
		if err != nil {
			t.Fatalf("Description() failed: %v", err)
		}
		if got != "" {
			t.Errorf("Description() = %q, want empty", got)
		}
	})

	t.Run("escapes html", func(t *testing.T) {
		got, err := Description(`<script>alert(1)</script>`)
		if err != nil {
			t.Fatalf("Description() failed: %v", err)
		}
		if strings.Contains(got, "<script>") {
			t.Errorf("Description() = %q, script tag not escaped", got)
		}
	})

	t.Run("over 5000 chars rejected", func(t *testing.T) {
		if _, err := Description(strings.Repeat("a", 5001)); err == nil {
			t.Error("Description() succeeded, want error")
		}
	})
}

func TestSanitizeHTML(t *testing.T) {
	got := SanitizeHTML(`<img src=x onerror="steal()">`)
	if strings.ContainsAny(got, "<>\"") {
		t.Errorf("SanitizeHTML() = %q, special characters remain", got)
	}
}

func TestHandlePattern(t *testing.T) {
	valid := []string{"night_owl", "dj-rex", "User42"}
	invalid := []string{"", "bad handle", "a.b", "sören"}

	for _, h := range valid {
		if !HandlePattern.MatchString(h) {
			t.Errorf("HandlePattern rejected %q", h)
		}
	}
	for _, h := range invalid {
		if HandlePattern.MatchString(h) {
			t.Errorf("HandlePattern accepted %q", h)
		}
	}
}
