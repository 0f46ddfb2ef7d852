package semver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	v, err := Parse("v1.2.3-rc.1+build.7")
	require.NoError(t, err)
	require.Equal(t, 1, v.Major)
	require.Equal(t, 2, v.Minor)
	require.Equal(t, 3, v.Patch)
	require.Equal(t, "rc.1", v.Prerelease)
	require.Equal(t, "build.7", v.Build)
	require.Equal(t, "1.2.3-rc.1+build.7", v.String())

	_, err = Parse("1.2")
	require.Error(t, err)
}

func TestCompare(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.1.0", "1.0.9", 1},
		{"2.0.0", "10.0.0", -1},
		{"1.0.0-alpha", "1.0.0", -1},
		{"1.0.0", "1.0.0-alpha", 1},
		{"1.0.0+a", "1.0.0+b", 0},
	}
	for _, tc := range cases {
		got := MustParse(tc.a).Compare(MustParse(tc.b))
		require.Equal(t, tc.want, got, "%s vs %s", tc.a, tc.b)
	}
}

func TestCompatibleWith(t *testing.T) {
	require.True(t, MustParse("1.4.0").CompatibleWith(MustParse("1.0.0")))
	require.False(t, MustParse("2.0.0").CompatibleWith(MustParse("1.9.9")))
}

func TestVersionJSON(t *testing.T) {
	type doc struct {
		Version Version `json:"version"`
	}
	data, err := json.Marshal(doc{Version: *MustParse("1.0.0")})
	require.NoError(t, err)
	require.JSONEq(t, `{"version":"1.0.0"}`, string(data))

	var decoded doc
	require.NoError(t, json.Unmarshal([]byte(`{"version":"v2.1.0"}`), &decoded))
	require.Equal(t, 2, decoded.Version.Major)

	require.Error(t, json.Unmarshal([]byte(`{"version":"garbage"}`), &decoded))
}
