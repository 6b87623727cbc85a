package analyze

import (
	"testing"

	perr "critiq/internal/platform/errors"
)

func TestDecodeResultPlainJSON(t *testing.T) {
	t.Parallel()

	out, err := decodeResult(`{"score":7,"issues":["unused var"],"security":[],"performance":["n^2 loop"],"suggestions":["add tests"]}`)
	if err != nil {
		t.Fatalf("decodeResult: %v", err)
	}
	if out.Score != 7 {
		t.Fatalf("score = %d, want 7", out.Score)
	}
	if len(out.Issues) != 1 || out.Issues[0] != "unused var" {
		t.Fatalf("issues = %v", out.Issues)
	}
	if out.Security == nil || len(out.Security) != 0 {
		t.Fatalf("security should be empty non-nil, got %v", out.Security)
	}
}

func TestDecodeResultFenced(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\"score\": 9, \"issues\": [], \"security\": [], \"performance\": [], \"suggestions\": []}\n```"
	out, err := decodeResult(raw)
	if err != nil {
		t.Fatalf("decodeResult: %v", err)
	}
	if out.Score != 9 {
		t.Fatalf("score = %d, want 9", out.Score)
	}
}

func TestDecodeResultClampsScore(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int
	}{
		{`{"score":-5}`, 1},
		{`{"score":500}`, 10},
		{`{"score":0}`, 1},
		{`{"score":10}`, 10},
	}
	for _, tc := range cases {
		out, err := decodeResult(tc.in)
		if err != nil {
			t.Fatalf("decodeResult(%s): %v", tc.in, err)
		}
		if out.Score != tc.want {
			t.Fatalf("decodeResult(%s).Score = %d, want %d", tc.in, out.Score, tc.want)
		}
	}
}

func TestDecodeResultRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := decodeResult("I think this code is great!"); !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("want JSON error, got %v", err)
	}
	if _, err := decodeResult(`{"issues":["no score key"]}`); !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("missing score should be a JSON error, got %v", err)
	}
}

func TestNilArraysBecomeEmpty(t *testing.T) {
	t.Parallel()

	out, err := decodeResult(`{"score":5}`)
	if err != nil {
		t.Fatalf("decodeResult: %v", err)
	}
	for name, v := range map[string][]string{
		"issues":      out.Issues,
		"security":    out.Security,
		"performance": out.Performance,
		"suggestions": out.Suggestions,
	} {
		if v == nil {
			t.Fatalf("%s should be non-nil", name)
		}
	}
}
