package recipient

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "mixed separators",
			raw:  "a@x.com, b@x.com; c@x.com\nd@x.com",
			want: []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"},
		},
		{
			name: "empty segments dropped",
			raw:  " , ,a@x.com ,, ",
			want: []string{"a@x.com"},
		},
		{
			name: "empty input",
			raw:  "",
			want: []string{},
		},
		{
			name: "whitespace only",
			raw:  "  \n ; , ",
			want: []string{},
		},
		{
			name: "windows line endings",
			raw:  "a@x.com\r\nb@x.com",
			want: []string{"a@x.com", "b@x.com"},
		},
		{
			name: "duplicates pass through",
			raw:  "a@x.com, a@x.com",
			want: []string{"a@x.com", "a@x.com"},
		},
		{
			name: "single address with padding",
			raw:  "  a@x.com  ",
			want: []string{"a@x.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Parse(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
