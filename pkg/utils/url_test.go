package utils

import "testing"

func TestFunctionURL(t *testing.T) {
	tests := []struct {
		project string
		name    string
		want    string
		wantErr bool
	}{
		{"https://abc.supabase.co", "import-questionnaire", "https://abc.supabase.co/functions/v1/import-questionnaire", false},
		{"https://abc.supabase.co/", "/import-questionnaire/", "https://abc.supabase.co/functions/v1/import-questionnaire", false},
		{"http://localhost:54321/base", "fn", "http://localhost:54321/base/functions/v1/fn", false},
		{"abc.supabase.co", "fn", "", true},
		{"https://abc.supabase.co", "", "", true},
	}
	for _, tt := range tests {
		got, err := FunctionURL(tt.project, tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("FunctionURL(%q, %q) error = %v, wantErr %v", tt.project, tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("FunctionURL(%q, %q) = %q, want %q", tt.project, tt.name, got, tt.want)
		}
	}
}

func TestHashURL_Stable(t *testing.T) {
	a := HashURL("https://abc.supabase.co/functions/v1/fn")
	b := HashURL("https://abc.supabase.co/functions/v1/fn")
	if a != b {
		t.Fatalf("hash not stable: %s != %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("got hash length %d, want 64", len(a))
	}
	if a == HashURL("https://abc.supabase.co/functions/v1/other") {
		t.Error("different URLs hashed to the same key")
	}
}
