package util

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"010-1234-5678": "01012345678",
		"010 1234 5678": "01012345678",
		"01012345678":   "01012345678",
		"":              "",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMaskPhone(t *testing.T) {
	cases := map[string]string{
		"010-1234-5678": "010****5678",
		"01112345678":   "011****5678",
		"0111234567":    "011***4567",
		"1234":          "1234", // 너무 짧으면 마스킹하지 않음
	}
	for in, want := range cases {
		if got := MaskPhone(in); got != want {
			t.Errorf("MaskPhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("가나다라마", 3); got != "가나다..." {
		t.Errorf("TruncateString = %q", got)
	}
	if got := TruncateString("abc", 10); got != "abc" {
		t.Errorf("TruncateString = %q", got)
	}
}
