package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cashbox/internal/accounts"
	"github.com/cleared-dev/cashbox/internal/config"
)

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	out, err := runCashbox(t, "init", dir, "--name", "Bodega Rosa", "--no-git")
	require.NoError(t, err, out)

	for _, d := range []string{"accounts", "ledger", "logs"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	roster, err := accounts.Load(dir)
	require.NoError(t, err)
	assert.Empty(t, roster.All())
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	out, err := runCashbox(t, "init", dir, "--name", "Bodega Rosa", "--currency", "usd", "--no-git")
	require.NoError(t, err, out)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "Bodega Rosa", cfg.Business.Name)
	assert.Equal(t, "USD", cfg.Currency.Base)
	assert.Equal(t, "100.00", cfg.Cash.InitialFloat)
	assert.True(t, cfg.Git.AutoCommit)
}

func TestInit_DefaultCurrency(t *testing.T) {
	dir := t.TempDir()
	_, err := runCashbox(t, "init", dir, "--name", "Bodega", "--no-git")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "base: PEN")
}

func TestInit_GitRepo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	out, err := runCashbox(t, "init", dir, "--name", "Bodega")
	require.NoError(t, err, out)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git should exist")
	assert.Contains(t, gitLog(t, dir, "%s"), "init: Initialize Bodega")
	assert.Contains(t, gitLog(t, dir, "%an <%ae>"), "Cashbox <cashbox@cleared.dev>")
}

func TestInit_RequiresName(t *testing.T) {
	dir := t.TempDir()
	_, err := runCashbox(t, "init", dir)
	require.Error(t, err, "init without --name should fail")
}

func TestInit_RefusesExistingConfig(t *testing.T) {
	dir := t.TempDir()
	_, err := runCashbox(t, "init", dir, "--name", "Bodega", "--no-git")
	require.NoError(t, err)

	out, err := runCashbox(t, "init", dir, "--name", "Other", "--no-git")
	require.Error(t, err)
	assert.Contains(t, out, "already exists")
}

func TestInit_BadCurrency(t *testing.T) {
	dir := t.TempDir()
	_, err := runCashbox(t, "init", dir, "--name", "Bodega", "--currency", "SOLES", "--no-git")
	require.Error(t, err)
}
