package descriptor

import "testing"

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr  string
		flags []string
		want  bool
	}{
		{"WIN32", []string{"WIN32", "GUI"}, true},
		{"WIN32", []string{"POSIX"}, false},
		{"WIN32 | POSIX", []string{"POSIX"}, true},
		{"WIN32 || POSIX", []string{"POSIX"}, true},
		{"!NOMM", []string{"WIN32"}, true},
		{"!NOMM", []string{"NOMM"}, false},
		{"AUDIO & !SYS_PORTAUDIO", []string{"AUDIO"}, true},
		{"AUDIO & !SYS_PORTAUDIO", []string{"AUDIO", "SYS_PORTAUDIO"}, false},
		{"AUDIO && GUI", []string{"AUDIO", "GUI"}, true},
		{"", []string{}, true},
		{"", nil, true},
		{"GUI WIN32", []string{"GUI", "WIN32"}, true},
		{"GUI WIN32", []string{"GUI"}, false},
		{"(GUI | WEB) !NOGTK", []string{"WEB"}, true},
		{"(GUI | WEB) !NOGTK", []string{"WEB", "NOGTK"}, false},
		{"!(A | B)", []string{"C"}, true},
		{"!(A | B)", []string{"B"}, false},
		{"A | B & C", []string{"A"}, true},
		{"A | B & C", []string{"B"}, false},
		{"A | B & C", []string{"B", "C"}, true},
	}

	for _, tt := range tests {
		if got := Evaluate(tt.expr, tt.flags); got != tt.want {
			t.Errorf("Evaluate(%q, %v) = %v, want %v", tt.expr, tt.flags, got, tt.want)
		}
	}
}

func TestEvaluate_MalformedDegradesToFalse(t *testing.T) {
	// Unbalanced or nonsense expressions must not panic; identifiers that
	// never appear simply evaluate false.
	exprs := []string{"(((", "&&&", "A &", "| B"}
	for _, expr := range exprs {
		got := Evaluate(expr, []string{"A", "B"})
		_ = got // the only contract is "no panic" plus a boolean result
	}
}

func TestEvaluate_Stateless(t *testing.T) {
	for i := 0; i < 3; i++ {
		if !Evaluate("WIN32 | POSIX", []string{"POSIX"}) {
			t.Fatalf("repeat evaluation %d changed result", i)
		}
	}
}
