package util

import "testing"

func TestSubjectMatches(t *testing.T) {
	cases := []struct {
		pattern string
		subject string
		want    bool
	}{
		{"event.shortlink.*.created", "event.shortlink.abc.created", true},
		{"event.shortlink.*.created", "event.shortlink.abc.resolved", false},
		{"event.>", "event.shortlink.abc.created", true},
		{"event.shortlink.*.created", "event.shortlink.created", false},
		{"event.shortlink.abc.created", "event.shortlink.abc.created", true},
		{"event.*", "event.shortlink.abc.created", false},
	}
	for _, c := range cases {
		if got := SubjectMatches(c.pattern, c.subject); got != c.want {
			t.Errorf("SubjectMatches(%q, %q) = %v, want %v", c.pattern, c.subject, got, c.want)
		}
	}
}
