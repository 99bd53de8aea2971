package budget

import (
	"fmt"
	"strings"
	"testing"
)

func BenchmarkEstimateCall(b *testing.B) {
	for _, services := range []int{10, 100, 1000} {
		user := strings.Repeat("- Manicure hybrydowy | od 120 zł | 60 min | Trwały efekt\n", services)
		b.Run(fmt.Sprintf("services=%d", services), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = EstimateCall("gpt-4o-mini", "system", user, 0)
			}
		})
	}
}
