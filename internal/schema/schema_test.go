package schema

import "testing"

const personSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": { "type": "string" },
    "age": { "type": "integer", "minimum": 0 }
  }
}`

func TestValidate(t *testing.T) {
	v := New("person.schema.json", []byte(personSchema))

	tests := []struct {
		doc   string
		valid bool
		path  string
	}{
		{`{"name":"ada","age":36}`, true, ""},
		{`{"age":36}`, false, ""},
		{`{"name":"ada","age":-1}`, false, "/age"},
	}
	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			res, err := v.Validate([]byte(tt.doc))
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if res.Valid != tt.valid {
				t.Fatalf("Valid = %v, want %v (%s)", res.Valid, tt.valid, res.Summary())
			}
			if tt.path != "" && res.Issues[0].Path != tt.path {
				t.Errorf("Path = %q, want %q", res.Issues[0].Path, tt.path)
			}
		})
	}
}

func TestValidateBadSchema(t *testing.T) {
	v := New("broken.json", []byte(`{"type": 12`))
	if _, err := v.Validate([]byte(`{}`)); err == nil {
		t.Fatal("expected schema compile error")
	}
}

func TestValidateMalformedDocument(t *testing.T) {
	v := New("person.schema.json", []byte(personSchema))
	if _, err := v.Validate([]byte(`{"name":`)); err == nil {
		t.Fatal("expected decode error")
	}
}
