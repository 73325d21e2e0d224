package lifecycle

import (
	"encoding/json"
	"testing"

	"github.com/ib-77/shellcall/pkg/rop/canon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	t.Parallel()

	req, err := ParseRequest([]string{`{"before":{"db":"x"},"inputs":[1,"two",null],"after":7}`})
	require.NoError(t, err)

	require.Len(t, req.Inputs, 3)
	assert.Equal(t, `{"db":"x"}`, req.Before.String())
	assert.Equal(t, `7`, req.After.String())
	assert.True(t, req.Inputs[2].IsNull())
}

func TestParseRequest_OptionalPhases(t *testing.T) {
	t.Parallel()

	req, err := ParseRequest([]string{`{"inputs":[]}`})
	require.NoError(t, err)
	assert.True(t, req.Before.IsNull())
	assert.True(t, req.After.IsNull())
	assert.Empty(t, req.Inputs)
}

func TestParseRequest_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"no args", nil, ErrArgCount},
		{"two args", []string{`{"inputs":[]}`, `{}`}, ErrArgCount},
		{"not json", []string{`{inputs:`}, ErrNotJSON},
		{"trailing data", []string{`{"inputs":[]} x`}, ErrNotJSON},
		{"array", []string{`[1,2]`}, ErrNotObject},
		{"missing inputs", []string{`{"before":1}`}, ErrInputsNotSequence},
		{"inputs object", []string{`{"inputs":{"a":1}}`}, ErrInputsNotSequence},
		{"inputs null", []string{`{"inputs":null}`}, ErrInputsNotSequence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequest(tt.args)
			require.ErrorIs(t, err, tt.want)

			var invErr *InvocationError
			assert.ErrorAs(t, err, &invErr)
			assert.Contains(t, err.Error(), "invalid invocation")
		})
	}
}

func TestRequest_MarshalJSON(t *testing.T) {
	t.Parallel()

	req := Request{
		Before: canon.String("setup"),
		Inputs: []canon.Value{canon.Int(1), canon.Int(2)},
	}

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.Equal(t, `{"after":null,"before":"setup","inputs":[1,2]}`, string(raw))

	back, err := DecodeRequest(raw)
	require.NoError(t, err)
	assert.True(t, back.Before.Equal(req.Before))
	assert.Len(t, back.Inputs, 2)

	raw, err = json.Marshal(Request{})
	require.NoError(t, err)
	assert.Equal(t, `{"after":null,"before":null,"inputs":[]}`, string(raw))
}
