package patentverify

import "testing"

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`{"patents": []}`, `{"patents": []}`},
		{"```json\n{\"patents\": []}\n```", `{"patents": []}`},
		{"```\n{\"patents\": []}\n```", `{"patents": []}`},
		{"  {\"patents\": []}  ", `{"patents": []}`},
	}
	for _, c := range cases {
		if got := stripCodeFences(c.in); got != c.want {
			t.Fatalf("stripCodeFences(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}
