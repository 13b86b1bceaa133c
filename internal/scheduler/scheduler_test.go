package scheduler

import (
	"strings"
	"testing"
)

func TestCronSpec(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"04:00", "0 4 * * *"},
		{"04:15", "15 4 * * *"},
		{"23:59", "59 23 * * *"},
		{"00:00", "0 0 * * *"},
	}
	for _, tc := range cases {
		got, err := cronSpec(tc.in)
		if err != nil {
			t.Errorf("cronSpec(%q) returned error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("cronSpec(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCronSpecRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "4", "25:00", "04:61", "04:xx", "04:00:00"} {
		if _, err := cronSpec(in); err == nil {
			t.Errorf("cronSpec(%q) accepted an invalid time", in)
		}
	}
}

func TestTargetedQuery(t *testing.T) {
	q := targetedQuery("technology")
	if !strings.HasPrefix(q, "Trending discussions about ") {
		t.Errorf("query = %q, missing topic framing", q)
	}
	if !strings.HasSuffix(q, " in r/technology") {
		t.Errorf("query = %q, missing subreddit suffix", q)
	}
	if !strings.Contains(q, " and ") {
		t.Errorf("query = %q, want two joined topics", q)
	}
}

func TestTargetedQueryUnknownSubreddit(t *testing.T) {
	if got := targetedQuery("nosuchsub"); got != "Current discussions in r/nosuchsub" {
		t.Errorf("query = %q, want generic fallback", got)
	}
}

func TestSortedSubredditsStable(t *testing.T) {
	a := sortedSubreddits()
	b := sortedSubreddits()
	if len(a) == 0 {
		t.Fatal("no subreddits configured")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("ordering unstable: %v vs %v", a, b)
		}
		if i > 0 && a[i-1] >= a[i] {
			t.Fatalf("not sorted: %v", a)
		}
	}
}
