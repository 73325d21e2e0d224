package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ib-77/shellcall/pkg/config"
	"github.com/ib-77/shellcall/pkg/rop/canon"
	"github.com/ib-77/shellcall/pkg/rop/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helperEnv = "SHELLCALL_CLI_HELPER"

func TestHelperProcess(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		return
	}

	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}

	phases := lifecycle.Phases[struct{}, int64]{
		Process: func(ctx context.Context, _ struct{}, in canon.Value) (int64, error) {
			n, ok := in.AsInt()
			if !ok {
				return 0, errors.New("not a number")
			}
			return n + 1, nil
		},
	}

	cmd := lifecycle.New(phases, config.Default(), nil).Command()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
	os.Exit(0)
}

func writeRequest(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), err
}

func TestRun_CollectsResultsPerFile(t *testing.T) {
	t.Setenv(helperEnv, "1")
	t.Setenv(config.EnvConfig, "")

	dir := t.TempDir()
	a := writeRequest(t, dir, "a.json", `{"inputs":[1,2]}`)
	b := writeRequest(t, dir, "b.json", `{"inputs":["x"]}`)

	cfgPath := filepath.Join(dir, "shellcall.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("indent: 0\n"), 0o600))

	out, err := execute(t,
		"--config", cfgPath,
		"run",
		"--workers", "2",
		"--harness-arg=-test.run=^TestHelperProcess$",
		"--harness-arg=--",
		os.Args[0], a, b)
	require.NoError(t, err)

	want := `{"` + a + `":[{"is_error":false,"value":2},{"is_error":false,"value":3}],"` +
		b + `":[{"error":"not a number","is_error":true}]}` + "\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestRun_BadRequestFile(t *testing.T) {
	t.Setenv(config.EnvConfig, "")

	dir := t.TempDir()
	bad := writeRequest(t, dir, "bad.json", `{"inputs":7}`)

	out, err := execute(t, "run", os.Args[0], bad)
	require.ErrorIs(t, err, lifecycle.ErrInputsNotSequence)
	assert.Empty(t, out)

	_, err = execute(t, "run", os.Args[0], filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_NeedsBinaryAndRequest(t *testing.T) {
	t.Setenv(config.EnvConfig, "")

	_, err := execute(t, "run", "only-binary")
	assert.Error(t, err)
}

func TestRun_RejectsInvalidWorkers(t *testing.T) {
	t.Setenv(config.EnvConfig, "")

	dir := t.TempDir()
	a := writeRequest(t, dir, "a.json", `{"inputs":[]}`)

	_, err := execute(t, "run", "--workers", "0", os.Args[0], a)
	require.ErrorIs(t, err, config.ErrInvalid)
}
