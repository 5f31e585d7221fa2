package gpuscore

import (
	"strconv"
	"strings"
)

// CompareVersions compares dotted version strings segment by segment,
// returning -1, 0, or 1. Segments compare numerically; a bare segment
// outranks one with a pre-release suffix, so 2.1.0rc1 < 2.1.0. Missing
// trailing segments count as zero, so 2.1 == 2.1.0.
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	for i := 0; i < len(as) || i < len(bs); i++ {
		var sa, sb string
		if i < len(as) {
			sa = as[i]
		}
		if i < len(bs) {
			sb = bs[i]
		}

		na, ra := splitNumeric(sa)
		nb, rb := splitNumeric(sb)
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
		if ra != rb {
			if ra == "" {
				return 1
			}
			if rb == "" {
				return -1
			}
			if ra < rb {
				return -1
			}
			return 1
		}
	}
	return 0
}

// splitNumeric splits a version segment into its leading number and the
// remaining suffix ("0rc1" -> 0, "rc1").
func splitNumeric(s string) (int, string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	n, _ := strconv.Atoi(s[:i])
	return n, s[i:]
}
