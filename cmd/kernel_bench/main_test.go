package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/colorfulnotion/kernelbench/kernel"
)

func TestRunLogLevelDefaultsToInfo(t *testing.T) {
	root := newRootCmd()

	run, _, err := root.Find([]string{"run"})
	require.NoError(t, err)
	history, _, err := root.Find([]string{"history"})
	require.NoError(t, err)

	// run defaults to info so the per-size progress lines are visible,
	// history stays quiet at warn. The two commands must hold separate
	// variables or the later registration clobbers the earlier default.
	runLevel := run.Flags().Lookup("log-level")
	require.NotNil(t, runLevel)
	require.Equal(t, "info", runLevel.DefValue)
	require.Equal(t, "info", runLevel.Value.String())

	historyLevel := history.Flags().Lookup("log-level")
	require.NotNil(t, historyLevel)
	require.Equal(t, "warn", historyLevel.DefValue)
	require.Equal(t, "warn", historyLevel.Value.String())

	// Registering history must not have touched run's value.
	require.Equal(t, "info", runLevel.Value.String())
}

func TestRunAndHistoryDBFlagsIndependent(t *testing.T) {
	root := newRootCmd()

	run, _, err := root.Find([]string{"run"})
	require.NoError(t, err)
	history, _, err := root.Find([]string{"history"})
	require.NoError(t, err)

	require.NoError(t, history.Flags().Set("db", "/tmp/runs.db"))
	require.Equal(t, "", run.Flags().Lookup("db").Value.String())
	require.Equal(t, "/tmp/runs.db", history.Flags().Lookup("db").Value.String())
}

func TestSelectBackends(t *testing.T) {
	all, err := selectBackends("", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, kernel.BackendTensorized, all[0].Name())
	require.Equal(t, kernel.BackendOnline, all[1].Name())

	one, err := selectBackends("online", 0)
	require.NoError(t, err)
	require.Len(t, one, 1)
	require.Equal(t, kernel.BackendOnline, one[0].Name())

	// Filter order wins over registry order.
	swapped, err := selectBackends("online, tensorized", 0)
	require.NoError(t, err)
	require.Len(t, swapped, 2)
	require.Equal(t, kernel.BackendOnline, swapped[0].Name())
	require.Equal(t, kernel.BackendTensorized, swapped[1].Name())

	_, err = selectBackends("gpu", 0)
	require.ErrorContains(t, err, "unknown backend")

	_, err = selectBackends(",", 0)
	require.ErrorContains(t, err, "no backends selected")
}

func TestParseSizes(t *testing.T) {
	sizes, err := parseSizes("100, 200,500")
	require.NoError(t, err)
	require.Equal(t, []int{100, 200, 500}, sizes)

	_, err = parseSizes("200,100")
	require.Error(t, err)

	_, err = parseSizes("100,100")
	require.Error(t, err)

	_, err = parseSizes("0")
	require.Error(t, err)

	_, err = parseSizes("abc")
	require.Error(t, err)
}
