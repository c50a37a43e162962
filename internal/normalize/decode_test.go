package normalize

import (
	"reflect"
	"testing"
)

func sniffedAs(charset string, confidence int) Detection {
	return Detection{Charset: charset, Confidence: confidence, Method: MethodSniffed}
}

func TestDecode_UTF8(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		det      Detection
		wantText string
		wantReps []Replacement
	}{
		{
			name:     "valid ascii",
			raw:      []byte("a,b\n"),
			det:      sniffedAs(EncUTF8, 100),
			wantText: "a,b\n",
		},
		{
			name:     "valid multibyte",
			raw:      []byte("caf\xc3\xa9,\xe2\x82\xac\n"),
			det:      sniffedAs(EncUTF8, 90),
			wantText: "café,€\n",
		},
		{
			name:     "invalid byte replaced",
			raw:      []byte("ab\xffcd"),
			det:      sniffedAs(EncUTF8, 90),
			wantText: "ab�cd",
			wantReps: []Replacement{{Offset: 2, Bytes: []byte{0xff}}},
		},
		{
			name:     "truncated sequence replaced per byte",
			raw:      []byte("x\xc3"),
			det:      sniffedAs(EncUTF8, 90),
			wantText: "x�",
			wantReps: []Replacement{{Offset: 1, Bytes: []byte{0xc3}}},
		},
		{
			name:     "bom stripped before decode",
			raw:      []byte("\xef\xbb\xbfabc"),
			det:      Detection{Charset: EncUTF8, Confidence: 100, Method: MethodBOM, BOMLen: 3},
			wantText: "abc",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := Decode(tt.raw, tt.det, DefaultRules())
			if dec.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", dec.Text, tt.wantText)
			}
			if !reflect.DeepEqual(dec.Replacements, tt.wantReps) {
				t.Errorf("Replacements = %v, want %v", dec.Replacements, tt.wantReps)
			}
			if dec.Used != EncUTF8 {
				t.Errorf("Used = %q, want %q", dec.Used, EncUTF8)
			}
			wantFallback := len(tt.wantReps) > 0
			if dec.FallbackUsed != wantFallback {
				t.Errorf("FallbackUsed = %v, want %v", dec.FallbackUsed, wantFallback)
			}
		})
	}
}

func TestDecode_UTF16(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		det      Detection
		wantText string
		wantReps []Replacement
	}{
		{
			name:     "little endian",
			raw:      []byte("a\x00,\x00b\x00"),
			det:      sniffedAs(EncUTF16LE, 100),
			wantText: "a,b",
		},
		{
			name:     "big endian",
			raw:      []byte("\x00a\x00,\x00b"),
			det:      sniffedAs(EncUTF16BE, 100),
			wantText: "a,b",
		},
		{
			name:     "surrogate pair",
			raw:      []byte("\x3d\xd8\x00\xde"),
			det:      sniffedAs(EncUTF16LE, 100),
			wantText: "\U0001F600",
		},
		{
			name:     "unpaired high surrogate",
			raw:      []byte("\x00\xd8a\x00"),
			det:      sniffedAs(EncUTF16LE, 100),
			wantText: "�a",
			wantReps: []Replacement{{Offset: 0, Bytes: []byte{0x00, 0xd8}}},
		},
		{
			name:     "odd trailing byte",
			raw:      []byte("a\x00b"),
			det:      sniffedAs(EncUTF16LE, 100),
			wantText: "a�",
			wantReps: []Replacement{{Offset: 2, Bytes: []byte{0x62}}},
		},
		{
			name:     "bom offsets shift replacements",
			raw:      []byte("\xff\xfea\x00b"),
			det:      Detection{Charset: EncUTF16LE, Confidence: 100, Method: MethodBOM, BOMLen: 2},
			wantText: "a�",
			wantReps: []Replacement{{Offset: 4, Bytes: []byte{0x62}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := Decode(tt.raw, tt.det, DefaultRules())
			if dec.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", dec.Text, tt.wantText)
			}
			if !reflect.DeepEqual(dec.Replacements, tt.wantReps) {
				t.Errorf("Replacements = %v, want %v", dec.Replacements, tt.wantReps)
			}
		})
	}
}

func TestDecode_SingleByte(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		det      Detection
		wantText string
		wantReps int
	}{
		{
			name:     "windows-1252 accents and euro",
			raw:      []byte("caf\xe9 \x80"),
			det:      sniffedAs(EncWindows1252, 80),
			wantText: "café €",
		},
		{
			name:     "windows-1252 undefined byte",
			raw:      []byte("a\x81b"),
			det:      sniffedAs(EncWindows1252, 80),
			wantText: "a�b",
			wantReps: 1,
		},
		{
			name:     "iso-8859-1 defines the full range",
			raw:      []byte("a\x81\xe9"),
			det:      sniffedAs(EncISO88591, 80),
			wantText: "a\u0081é",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := Decode(tt.raw, tt.det, DefaultRules())
			if dec.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", dec.Text, tt.wantText)
			}
			if len(dec.Replacements) != tt.wantReps {
				t.Errorf("len(Replacements) = %d, want %d", len(dec.Replacements), tt.wantReps)
			}
		})
	}
}

func TestDecode_Fallback(t *testing.T) {
	rules := DefaultRules()

	t.Run("low confidence", func(t *testing.T) {
		dec := Decode([]byte("caf\xe9"), sniffedAs(EncISO88591, 10), rules)
		if dec.Used != EncWindows1252 {
			t.Errorf("Used = %q, want %q", dec.Used, EncWindows1252)
		}
		if dec.Method != MethodFallback {
			t.Errorf("Method = %q, want %q", dec.Method, MethodFallback)
		}
		if dec.FallbackReason != fallbackLowConfidence {
			t.Errorf("FallbackReason = %q, want %q", dec.FallbackReason, fallbackLowConfidence)
		}
		if !dec.FallbackUsed {
			t.Error("FallbackUsed = false, want true")
		}
		if dec.Text != "café" {
			t.Errorf("Text = %q, want %q", dec.Text, "café")
		}
	})

	t.Run("unsupported charset", func(t *testing.T) {
		dec := Decode([]byte("abc"), sniffedAs("shift_jis", 95), rules)
		if dec.Used != EncWindows1252 {
			t.Errorf("Used = %q, want %q", dec.Used, EncWindows1252)
		}
		if dec.FallbackReason != fallbackUnsupported {
			t.Errorf("FallbackReason = %q, want %q", dec.FallbackReason, fallbackUnsupported)
		}
		// The detector's verdict is preserved for the report.
		if dec.Detected.Charset != "shift_jis" {
			t.Errorf("Detected.Charset = %q, want %q", dec.Detected.Charset, "shift_jis")
		}
	})

	t.Run("confident supported charset sticks", func(t *testing.T) {
		dec := Decode([]byte("abc"), sniffedAs(EncISO88591, 60), rules)
		if dec.Used != EncISO88591 {
			t.Errorf("Used = %q, want %q", dec.Used, EncISO88591)
		}
		if dec.Method != MethodSniffed {
			t.Errorf("Method = %q, want %q", dec.Method, MethodSniffed)
		}
		if dec.FallbackUsed {
			t.Error("FallbackUsed = true, want false")
		}
	})
}
