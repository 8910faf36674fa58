package pkg

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"
)

func TestDefaultParametersValidate(t *testing.T) {
	levels := []SecurityLevel{Security128, Security192, Security256}
	for _, level := range levels {
		t.Run("level-"+strconv.Itoa(int(level)), func(t *testing.T) {
			param, err := DefaultParameters(level)
			require.NoError(t, err)
			require.NoError(t, param.Validate())
			require.Equal(t, level, param.SecurityLevel)
		})
	}
}

func TestParameterSizes(t *testing.T) {
	want := map[string]KeyParameters{
		"bike128": {PublicKeySize: 1541, PrivateKeySize: 3114, CiphertextSize: 1573, SharedKeySize: 16},
		"bike192": {PublicKeySize: 3083, PrivateKeySize: 6198, CiphertextSize: 3115, SharedKeySize: 24},
		"bike256": {PublicKeySize: 5122, PrivateKeySize: 10276, CiphertextSize: 5154, SharedKeySize: 32},
	}
	for name, sizes := range want {
		param, err := GetParameterSet(name)
		require.NoError(t, err)
		if diff := cmp.Diff(sizes, param.KeyParams); diff != "" {
			t.Errorf("%s sizes mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestRegistry(t *testing.T) {
	require.Equal(t, []string{"bike128", "bike192", "bike256"}, ListParameterSets())
	require.Equal(t, "bike128", GetDefaultParameterSet().Name)

	_, err := GetParameterSet("bike512")
	require.ErrorIs(t, err, ErrUnsupportedParameter)
	require.ErrorIs(t, SetDefaultParameterSet("bike512"), ErrUnsupportedParameter)

	require.NoError(t, SetDefaultParameterSet("bike256"))
	t.Cleanup(func() { _ = SetDefaultParameterSet("bike128") })
	require.Equal(t, "bike256", GetDefaultParameterSet().Name)

	pretty.Println(GetDefaultParameterSet())
}

func TestValidateRejects(t *testing.T) {
	base := GetDefaultParameterSet()
	cases := map[string]Parameters{
		"unsupported r": NewParameters("x", Security128, 12347, 142, 134, 256, 5, 3),
		"even half":     NewParameters("x", Security128, 12323, 144, 134, 256, 5, 3),
		"odd l":         NewParameters("x", Security128, 12323, 142, 134, 250, 5, 3),
		"no rounds":     NewParameters("x", Security128, 12323, 142, 134, 256, 0, 3),
		"huge tau":      NewParameters("x", Security128, 12323, 142, 134, 256, 5, 40),
		"t too large":   NewParameters("x", Security128, 12323, 142, 2*12323, 256, 5, 3),
		"short key":     NewParameters("x", Security256, 12323, 142, 134, 128, 5, 3),
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			require.Error(t, p.Validate())
		})
	}
	require.NoError(t, base.Validate())
}

func TestPrimitiveRoot(t *testing.T) {
	for _, r := range []int{3, 5, 11, 13, 19, 29, 37, 53, 59, 61, 67, 83, 101, 12323, 24659, 40973} {
		require.True(t, isPrime(r), "r=%d", r)
		require.True(t, twoIsPrimitive(r), "r=%d", r)
	}
	// 2 has order 3 mod 7 and order 11 mod 23
	for _, r := range []int{7, 17, 23, 31, 41} {
		require.False(t, twoIsPrimitive(r), "r=%d", r)
	}
	require.False(t, isPrime(12321))
	require.Equal(t, []int64{2, 61, 101}, primeFactors(12322))
}

func TestThreshold(t *testing.T) {
	cases := []struct {
		r, weight, want int
	}{
		{12323, 0, 36},
		{12323, 3000, 36},
		{12323, 4000, 41},
		// 36.538 is floored, not rounded
		{12323, 3300, 36},
		{12323, 3372, 37},
		{24659, 0, 52},
		{24659, 8000, 57},
		{40973, 0, 69},
		{40973, 20000, 98},
	}
	for _, c := range cases {
		got, err := Threshold(c.weight, c.r)
		require.NoError(t, err)
		require.Equal(t, c.want, got, "r=%d |s|=%d", c.r, c.weight)
	}
	_, err := Threshold(10, 101)
	require.ErrorIs(t, err, ErrUnsupportedParameter)
}
