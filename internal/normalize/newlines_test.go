package normalize

import "testing"

func TestNormalizeNewlines(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantText  string
		wantStats NewlineStats
	}{
		{
			name:      "lf only untouched",
			input:     "a\nb\n",
			wantText:  "a\nb\n",
			wantStats: NewlineStats{LF: 2},
		},
		{
			name:      "crlf rewritten",
			input:     "a\r\nb\r\n",
			wantText:  "a\nb\n",
			wantStats: NewlineStats{CRLF: 2},
		},
		{
			name:      "lone cr rewritten",
			input:     "a\rb\r",
			wantText:  "a\nb\n",
			wantStats: NewlineStats{CR: 2},
		},
		{
			name:      "mixed forms",
			input:     "a\r\nb\nc\rd\n",
			wantText:  "a\nb\nc\nd\n",
			wantStats: NewlineStats{CRLF: 1, CR: 1, LF: 2},
		},
		{
			name:      "cr before crlf",
			input:     "a\r\r\nb",
			wantText:  "a\n\nb",
			wantStats: NewlineStats{CRLF: 1, CR: 1},
		},
		{
			name:      "no line breaks",
			input:     "abc",
			wantText:  "abc",
			wantStats: NewlineStats{},
		},
		{
			name:      "empty",
			input:     "",
			wantText:  "",
			wantStats: NewlineStats{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotText, gotStats := NormalizeNewlines(tt.input)
			if gotText != tt.wantText {
				t.Errorf("text = %q, want %q", gotText, tt.wantText)
			}
			if gotStats != tt.wantStats {
				t.Errorf("stats = %+v, want %+v", gotStats, tt.wantStats)
			}
		})
	}
}
