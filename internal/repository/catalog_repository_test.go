package repository

import "testing"

func TestRentalCompositeKey(t *testing.T) {
	cases := []struct {
		category, route, carType string
		want                     string
	}{
		{"AIRPORT", "ICN_SEOUL", "VAN", "AIRPORT_ICN_SEOUL_VAN"},
		{"airport", "icn_seoul", "van", "AIRPORT_ICN_SEOUL_VAN"},
		{" airport ", " ICN_SEOUL", "Van ", "AIRPORT_ICN_SEOUL_VAN"},
	}
	for _, c := range cases {
		if got := RentalCompositeKey(c.category, c.route, c.carType); got != c.want {
			t.Errorf("RentalCompositeKey(%q, %q, %q) = %q, want %q",
				c.category, c.route, c.carType, got, c.want)
		}
	}
}
