package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/money-manager/txnparse/internal/config"
	"github.com/money-manager/txnparse/internal/merchants"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "txnparse-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "txnparse")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/txnparse")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runTxnparse(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out, err := runTxnparse(t, "init", dir)
	require.NoError(t, err, out)
	return dir
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := initRepo(t)

	expectedDirs := []string{
		"merchants",
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range expectedDirs {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
}

func TestInit_Config(t *testing.T) {
	dir := initRepo(t)

	cfg, err := config.Load(filepath.Join(dir, "txnparse.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default().Thresholds, cfg.Thresholds)
	assert.False(t, cfg.LLM.Enabled)
	assert.NotEmpty(t, cfg.Parser.DebitKeywords)
}

func TestInit_EnableLLM(t *testing.T) {
	dir := t.TempDir()
	_, err := runTxnparse(t, "init", dir, "--llm")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, "txnparse.yaml"))
	require.NoError(t, err)
	assert.True(t, cfg.LLM.Enabled)
}

func TestInit_MerchantCatalog(t *testing.T) {
	dir := initRepo(t)

	svc, err := merchants.Load(dir)
	require.NoError(t, err)
	assert.Len(t, svc.All(), len(merchants.DefaultCatalog()))
}

func TestInit_Gitignore(t *testing.T) {
	dir := initRepo(t)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "logs/")
}

func gitLog(t *testing.T, dir, format string) string {
	t.Helper()
	log := exec.Command("git", "log", "--format="+format, "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	return string(out)
}

func TestInit_GitRepo(t *testing.T) {
	dir := initRepo(t)

	_, err := os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git should exist")

	assert.Contains(t, gitLog(t, dir, "%s"), "init:")
	assert.Contains(t, gitLog(t, dir, "%an <%ae>"), "txnparse <txnparse@localhost>")
}

func TestInit_NoGit(t *testing.T) {
	dir := t.TempDir()
	_, err := runTxnparse(t, "init", dir, "--no-git")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	assert.True(t, os.IsNotExist(err))

	cfg, err := config.Load(filepath.Join(dir, "txnparse.yaml"))
	require.NoError(t, err)
	assert.False(t, cfg.Git.Enabled)
}

func TestInit_RefusesExistingRepo(t *testing.T) {
	dir := initRepo(t)
	out, err := runTxnparse(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, out, "already exists")
}

func TestVersion(t *testing.T) {
	out, err := runTxnparse(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (commit none, built unknown)")
}
