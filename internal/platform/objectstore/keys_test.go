package objectstore

import "testing"

func TestJobUUID(t *testing.T) {
	cases := map[string]string{
		"ingest/abc.pptx": "abc",
		"abc123.pptx":      "abc123",
		"ingest/abc.pdf":   "abc",
	}
	for in, want := range cases {
		if got := JobUUID(in); got != want {
			t.Errorf("JobUUID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestKeyPatterns(t *testing.T) {
	if got, want := NotesKey(42, 3), "42/notes/slide_3.txt"; got != want {
		t.Errorf("NotesKey = %q, want %q", got, want)
	}
	if got, want := AudioKey("abc", 3), "abc/audio/slide_3.wav"; got != want {
		t.Errorf("AudioKey = %q, want %q", got, want)
	}
	if got, want := OutputKey(42), "42.mp4"; got != want {
		t.Errorf("OutputKey = %q, want %q", got, want)
	}
	if got, want := ImagesPrefix("abc"), "abc/images/"; got != want {
		t.Errorf("ImagesPrefix = %q, want %q", got, want)
	}
}

func TestParseCanonical(t *testing.T) {
	bucket, key, err := parseCanonical("/output/42.mp4")
	if err != nil {
		t.Fatalf("parseCanonical: %v", err)
	}
	if bucket != "output" || key != "42.mp4" {
		t.Errorf("got bucket=%q key=%q", bucket, key)
	}
	if _, _, err := parseCanonical("malformed"); err == nil {
		t.Errorf("expected error for malformed path")
	}
}
