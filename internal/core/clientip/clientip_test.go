package clientip

import (
	"net/http/httptest"
	"testing"
)

func TestFromForwarded_Table(t *testing.T) {
	tests := []struct {
		name  string
		chain string
		want  string
	}{
		{
			name:  "single public",
			chain: "203.0.113.7",
			want:  "203.0.113.7",
		},
		{
			name:  "private then public",
			chain: "10.0.0.5, 203.0.113.7, 172.16.0.1",
			want:  "203.0.113.7",
		},
		{
			name:  "loopback skipped",
			chain: "127.0.0.1, 198.51.100.2",
			want:  "198.51.100.2",
		},
		{
			name:  "link local skipped",
			chain: "169.254.1.1, 198.51.100.2",
			want:  "198.51.100.2",
		},
		{
			name:  "all private falls back to first",
			chain: "10.0.0.5, 192.168.1.9",
			want:  "10.0.0.5",
		},
		{
			name:  "garbage falls back to first entry",
			chain: "not-an-ip, also-bad",
			want:  "not-an-ip",
		},
		{
			name:  "ipv6 public",
			chain: "2001:db8::1",
			want:  "2001:db8::1",
		},
		{
			name:  "spaces trimmed",
			chain: "  203.0.113.7 , 10.0.0.1",
			want:  "203.0.113.7",
		},
		{
			name:  "empty chain",
			chain: "",
			want:  "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FromForwarded(tc.chain); got != tc.want {
				t.Fatalf("FromForwarded(%q) = %q, want %q", tc.chain, got, tc.want)
			}
		})
	}
}

func TestFromRequest(t *testing.T) {
	t.Run("trusted proxy uses forwarded header", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", nil)
		r.RemoteAddr = "192.0.2.1:1234"
		r.Header.Set("X-Forwarded-For", "10.0.0.1, 203.0.113.7")
		if got := FromRequest(r, true); got != "203.0.113.7" {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("untrusted ignores forwarded header", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", nil)
		r.RemoteAddr = "192.0.2.1:1234"
		r.Header.Set("X-Forwarded-For", "203.0.113.7")
		if got := FromRequest(r, false); got != "192.0.2.1" {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("no header uses peer", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", nil)
		r.RemoteAddr = "192.0.2.1:1234"
		if got := FromRequest(r, true); got != "192.0.2.1" {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("no peer yields sentinel", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", nil)
		r.RemoteAddr = ""
		if got := FromRequest(r, false); got != Unknown {
			t.Fatalf("got %q", got)
		}
	})
}
