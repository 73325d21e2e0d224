package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ib-77/shellcall/pkg/config"
	"github.com/ib-77/shellcall/pkg/rop"
	"github.com/ib-77/shellcall/pkg/rop/canon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	coord := New(doubler(&counters{}, nil, nil, 2), config.Config{Workers: 1, Indent: 0}, nil)
	cmd := coord.Command()

	// a nil slice would make cobra fall back to os.Args
	if args == nil {
		args = []string{}
	}

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestCommand_Emits(t *testing.T) {
	t.Parallel()

	out, err := runCommand(t, `{"before":null,"inputs":[1,2,3],"after":null}`)
	require.NoError(t, err)

	assert.Equal(t,
		OutputPrefix+`[{"is_error":false,"value":2},{"error":"bad item","is_error":true},{"is_error":false,"value":6}]`+"\n",
		out)
}

func TestCommand_MalformedWritesNothing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"no args", nil, ErrArgCount},
		{"extra args", []string{`{"inputs":[]}`, "x"}, ErrArgCount},
		{"flag-like", []string{"--help"}, ErrNotJSON},
		{"inputs not a sequence", []string{`{"inputs":"1,2,3"}`}, ErrInputsNotSequence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, tt.args...)
			require.ErrorIs(t, err, tt.want)
			assert.False(t, strings.Contains(out, OutputPrefix))
			assert.Empty(t, out)
		})
	}
}

func TestCommand_ReportsEncodeFailure(t *testing.T) {
	t.Parallel()

	phases := Phases[int, chan int]{
		Process: func(ctx context.Context, _ int, _ canon.Value) (chan int, error) {
			return make(chan int), nil
		},
	}

	cmd := New(phases, config.Default(), nil).Command()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{`{"inputs":[1]}`})

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, canon.ErrUnsupported)
	assert.Empty(t, stdout.String())
}

func TestCommand_AfterSeesAfterInput(t *testing.T) {
	t.Parallel()

	var got canon.Value
	phases := Phases[int, int]{
		Process: func(ctx context.Context, _ int, in canon.Value) (int, error) { return 0, nil },
		After: func(ctx context.Context, before rop.Result[int], in canon.Value) error {
			got = in
			if !before.IsSuccess() {
				return errors.New("before should have succeeded")
			}
			return nil
		},
	}

	cmd := New(phases, config.Default(), nil).Command()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{`{"inputs":[],"after":{"cleanup":true}}`})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, `{"cleanup":true}`, got.String())
}
