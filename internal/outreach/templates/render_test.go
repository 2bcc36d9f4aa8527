package templates

import "testing"

func TestRender(t *testing.T) {
	lead := Fields{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Company:   "Analytical Engines",
		Email:     "ada@example.com",
	}

	tests := []struct {
		name     string
		template string
		fields   Fields
		want     string
	}{
		{
			name:     "all tags",
			template: "Hi {{first_name}} {{last_name}} from {{company}} ({{email}})",
			fields:   lead,
			want:     "Hi Ada Lovelace from Analytical Engines (ada@example.com)",
		},
		{
			name:     "empty template",
			template: "",
			fields:   lead,
			want:     "",
		},
		{
			name:     "unknown tags left verbatim",
			template: "Hello {{nickname}}, meet {{first_name}}",
			fields:   lead,
			want:     "Hello {{nickname}}, meet Ada",
		},
		{
			name:     "unset fields become empty",
			template: "Hi {{first_name}}{{last_name}}!",
			fields:   Fields{},
			want:     "Hi !",
		},
		{
			name:     "no tags unchanged",
			template: "plain text",
			fields:   lead,
			want:     "plain text",
		},
		{
			name:     "repeated tag",
			template: "{{company}} and {{company}}",
			fields:   lead,
			want:     "Analytical Engines and Analytical Engines",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.template, tt.fields); got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}
