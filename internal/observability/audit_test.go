package observability

import "testing"

func TestMaskMobile(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		expect string
	}{
		{name: "standard subscriber number", in: "0771234567", expect: "077*****67"},
		{name: "short value fully masked", in: "077", expect: "***"},
		{name: "empty value fully masked", in: "", expect: "***"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MaskMobile(tc.in); got != tc.expect {
				t.Fatalf("MaskMobile(%q) = %q, want %q", tc.in, got, tc.expect)
			}
		})
	}
}
