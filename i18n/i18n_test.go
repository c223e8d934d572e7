package i18n

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		lang, accept string
		want         string
	}{
		{"", "", "tr"},
		{"en", "", "en"},
		{"tr", "en-US,en;q=0.9", "tr"},
		{"", "en-GB,en;q=0.8", "en"},
		{"EN", "", "en"},
		{"de", "", "tr"},
		{"de", "en", "en"},
		{"", "de-DE,fr;q=0.5", "tr"},
		{"not a tag!", "", "tr"},
	}
	for _, tt := range tests {
		if got := Match(tt.lang, tt.accept); got != tt.want {
			t.Errorf("Match(%q, %q) = %q, want %q", tt.lang, tt.accept, got, tt.want)
		}
	}
}

func TestDictionariesShareKeys(t *testing.T) {
	load := func(lang string) map[string]map[string]string {
		data, err := Dictionary(lang)
		if err != nil {
			t.Fatal(err)
		}
		var d map[string]map[string]string
		if err := json.Unmarshal(data, &d); err != nil {
			t.Fatalf("%s: %v", lang, err)
		}
		return d
	}
	tr, en := load("tr"), load("en")
	for section, keys := range tr {
		for k := range keys {
			if _, ok := en[section][k]; !ok {
				t.Errorf("en missing %s.%s", section, k)
			}
		}
	}
	for section, keys := range en {
		for k := range keys {
			if _, ok := tr[section][k]; !ok {
				t.Errorf("tr missing %s.%s", section, k)
			}
		}
	}
}

func TestDictionaryUnknown(t *testing.T) {
	if _, err := Dictionary("de"); err == nil {
		t.Error("expected error for unsupported language")
	}
}

func TestLookup(t *testing.T) {
	if v, ok := Lookup("en", "summary.title"); !ok || v != "Summary" {
		t.Errorf("Lookup(en, summary.title) = %q, %v", v, ok)
	}
	if v, ok := Lookup("tr", "reports.verification_heading"); !ok || v != "Doğrulama" {
		t.Errorf("Lookup(tr, reports.verification_heading) = %q, %v", v, ok)
	}
	if _, ok := Lookup("tr", "summary"); ok {
		t.Error("key without a section separator should not resolve")
	}
	if _, ok := Lookup("de", "summary.title"); ok {
		t.Error("unsupported language should not resolve")
	}
}
