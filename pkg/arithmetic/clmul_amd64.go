//go:build amd64 && !purego

package arithmetic

import "golang.org/x/sys/cpu"

// clmul64 is implemented in clmul_amd64.s with PCLMULQDQ.
func clmul64(x, y uint64) (lo, hi uint64)

type pclmulMultiplier struct{}

func (pclmulMultiplier) Name() string { return "pclmulqdq" }

func (pclmulMultiplier) Mul64(x, y uint64) (lo, hi uint64) {
	return clmul64(x, y)
}

func hardwareMultiplier() (CarrylessMultiplier, bool) {
	if cpu.X86.HasPCLMULQDQ {
		return pclmulMultiplier{}, true
	}
	return nil, false
}
