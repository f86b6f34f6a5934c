package form_data

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	t.Run("decodes delimited percent-encoded pairs", func(t *testing.T) {
		formData, err := Parse([]byte("name=J%C3%B6rgen&role=admin+user&flag"))
		if err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}

		if value, _ := formData.Get("name"); value != "Jörgen" {
			t.Errorf("got %q, expected %q", value, "Jörgen")
		}
		if value, _ := formData.Get("role"); value != "admin user" {
			t.Errorf("got %q, expected %q", value, "admin user")
		}
		if value, ok := formData.Get("flag"); !ok || value != "" {
			t.Errorf("got (%q, %t), expected empty present value", value, ok)
		}
	})

	t.Run("preserves duplicate names in order", func(t *testing.T) {
		formData, err := Parse([]byte("a=1&a=2&b=3&a=3"))
		if err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}

		if diff := cmp.Diff([]string{"1", "2", "3"}, formData.GetAll("a")); diff != "" {
			t.Errorf("values mismatch (-expected +got):\n%s", diff)
		}
	})

	t.Run("fails on malformed percent encoding", func(t *testing.T) {
		if _, err := Parse([]byte("a=%zz")); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestEncode(t *testing.T) {
	formData := New()
	formData.Append("name", "Jörgen")
	formData.Append("role", "admin user")

	encoded := formData.Encode()
	expected := "name=J%C3%B6rgen&role=admin+user"
	if encoded != expected {
		t.Errorf("got %q, expected %q", encoded, expected)
	}

	reparsed, err := Parse([]byte(encoded))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if value, _ := reparsed.Get("role"); value != "admin user" {
		t.Errorf("got %q, expected %q", value, "admin user")
	}
}
