//go:build !amd64 || purego

package arithmetic

func hardwareMultiplier() (CarrylessMultiplier, bool) {
	return nil, false
}
