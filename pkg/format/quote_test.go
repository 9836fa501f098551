package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeString(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		preferSingle bool
		want         string
	}{
		{"double to single", `"a"`, true, `'a'`},
		{"single to double", `'a'`, false, `"a"`},
		{"keeps quote needing fewer escapes", `"it's"`, true, `"it's"`},
		{"double quotes inside single", `'say "hi"'`, false, `'say "hi"'`},
		{"unescapes the other quote", `"\'"`, true, `"'"`},
		{"escapes the enclosing quote", `"a'b\"c\"d"`, true, `'a\'b"c"d'`},
		{"drops needless escape", `'\d'`, true, `'d'`},
		{"keeps meaningful escapes", `"a\nb\\c\x41"`, true, `'a\nb\\c\x41'`},
		{"empty string", `""`, true, `''`},
		{"not a string", `abc`, true, `abc`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeString(tt.raw, tt.preferSingle))
		})
	}
}
