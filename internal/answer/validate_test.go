package answer

import "testing"

func TestGrounded(t *testing.T) {
	context := "The contract imposes a penalty of 5% for late delivery of goods."

	cases := []struct {
		name   string
		answer string
		want   bool
	}{
		{"supported answer", "The penalty is 5% for late delivery.", true},
		{"empty answer", "", false},
		{"whitespace answer", "   \n", false},
		{"hedging answer", "It seems the penalty for late delivery could be 5%.", false},
		{"unrelated answer", "Paris is beautiful in spring.", false},
		{"thin overlap", "The 5% figure.", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Grounded(tc.answer, context); got != tc.want {
				t.Errorf("Grounded(%q) = %v, want %v", tc.answer, got, tc.want)
			}
		})
	}
}

func TestIsRefusal(t *testing.T) {
	if !isRefusal(RefusalDocument) {
		t.Error("document refusal sentinel must register as refusal")
	}
	if !isRefusal("NOT MENTIONED in the supplied text") {
		t.Error("refusal check must be case-insensitive")
	}
	if isRefusal("The penalty is 5%.") {
		t.Error("ordinary answers are not refusals")
	}
}
