package idgen

import "testing"

func TestGenerateSecureIDRoundTripsThroughValidation(t *testing.T) {
	for i := 0; i < 50; i++ {
		id, err := GenerateSecureID("skl", DefaultLength)
		if err != nil {
			t.Fatal(err)
		}
		if len(id) != len("skl_")+DefaultLength {
			t.Fatalf("unexpected length for %q", id)
		}
		if !ValidateIDFormat(id, "skl") {
			t.Fatalf("generated id %q fails validation", id)
		}
	}
}

func TestValidateIDFormatRejects(t *testing.T) {
	cases := []string{"", "skl", "skl_", "dst_abc", "skl_ab/c", "skl_a b"}
	for _, c := range cases {
		if ValidateIDFormat(c, "skl") {
			t.Errorf("expected %q to be rejected", c)
		}
	}
}
