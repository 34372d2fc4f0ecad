package symalg_test

import (
	"encoding/json"
	"testing"

	"github.com/njchilds90/symalg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// JSON export and import
// ============================================================

func TestToJSON_Shape(t *testing.T) {
	js, err := symalg.ToJSON(symalg.MustBuild("2*x"))
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(js), &m))
	assert.Equal(t, "binary", m["type"])
	assert.Equal(t, "*", m["op"])
	left := m["left"].(map[string]interface{})
	assert.Equal(t, "constant", left["type"])
	assert.Equal(t, "2", left["value"])
	assert.Equal(t, true, left["precise"])
}

func TestFromJSON_RoundTrip(t *testing.T) {
	in := symalg.Add(
		symalg.Mult(symalg.MustBuild("sin(x)^(1/3)"), symalg.NewApproximateConstant(-2.5)),
		symalg.MustBuild("sum(k^2,k,1,n)-5!+diff(x^3,x,2)"),
	)
	js, err := symalg.ToJSON(in)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(js), &m))
	out, err := symalg.FromJSON(m)
	require.NoError(t, err)
	assert.True(t, out.Equals(in), "got %s", out)
}

func TestFromJSON_Errors(t *testing.T) {
	for _, js := range []string{
		`{}`,
		`{"type":"nope"}`,
		`{"type":"variable","name":"Xy"}`,
		`{"type":"binary","op":"%","left":{"type":"variable","name":"x"},"right":{"type":"variable","name":"y"}}`,
		`{"type":"function","name":"foo","arg":{"type":"variable","name":"x"}}`,
		`{"type":"constant","value":"abc","precise":true}`,
	} {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(js), &m))
		_, err := symalg.FromJSON(m)
		assert.ErrorIs(t, err, symalg.ErrMalformed, js)
	}
}
