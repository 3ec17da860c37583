package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv points the CLI at a fresh SQLite file and returns a directory for
// test files.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"DB_DRIVER", "DB_URL", "LOG_FORMAT", "IDENTITY_SEED", "EXPORT_JSON_SHAPE", "EXPORT_KEY_COLUMNS"} {
		t.Setenv(name, "")
	}
	t.Setenv("DATABASE_URL", filepath.Join(dir, "etl.db"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("IDENTITY_EMAIL_DOMAIN", "example.com")
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	cmd := NewRootCmd()
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadColumnsThenExport(t *testing.T) {
	dir := setupEnv(t)
	path := writeTestFile(t, dir, "cols.json", `{"id": [1, 2], "score": [1.5, 2.5], "name": ["a", "b"]}`)

	out, _, err := run(t, "load-columns", path, "t")
	require.NoError(t, err)
	assert.Contains(t, out, "t: created with 3 columns")

	out, _, err = run(t, "export", "csv", `SELECT * FROM "t" ORDER BY "id"`)
	require.NoError(t, err)
	assert.Equal(t, "id,score,name\r\n1,1.5,a\r\n2,2.5,b\r\n", out)

	out, _, err = run(t, "export", "json", `SELECT * FROM "t" ORDER BY "id"`, "--shape", "keyed", "--key", "name")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":{"id":1,"score":1.5},"b":{"id":2,"score":2.5}}`, out)
}

func TestExportJSON_KeyColumnsFromConfig(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("EXPORT_KEY_COLUMNS", "user_id,id")
	path := writeTestFile(t, dir, "cols.json", `{"id": [7], "name": ["ann"]}`)

	_, _, err := run(t, "load-columns", path, "t")
	require.NoError(t, err)

	out, _, err := run(t, "export", "json", `SELECT * FROM "t"`, "--shape", "keyed")
	require.NoError(t, err)
	assert.JSONEq(t, `{"7":{"name":"ann"}}`, out)
}

func TestImportCSVWithUnique(t *testing.T) {
	dir := setupEnv(t)
	cols := writeTestFile(t, dir, "cols.json", `{"id": ["1"], "name": ["ann"]}`)
	_, _, err := run(t, "load-columns", cols, "people")
	require.NoError(t, err)

	csvPath := writeTestFile(t, dir, "people.csv", "id,name\n1,ann\n2,bob\n")
	out, _, err := run(t, "import", "csv", csvPath, "people", "--unique", "id")
	require.NoError(t, err)
	assert.Equal(t, "people: 2 rows read, 1 inserted, 1 skipped\n", out)
}

func TestImportJSON(t *testing.T) {
	dir := setupEnv(t)
	cols := writeTestFile(t, dir, "cols.json", `{"id": [], "name": []}`)
	_, _, err := run(t, "load-columns", cols, "people")
	require.NoError(t, err)

	jsonPath := writeTestFile(t, dir, "people.json", `{"a": {"name": "ann", "id": "1"}}`)
	out, _, err := run(t, "import", "json", jsonPath, "people", "--columns", "id,name")
	require.NoError(t, err)
	assert.Equal(t, "people: 1 rows read, 1 inserted\n", out)

	out, _, err = run(t, "export", "csv", `SELECT * FROM "people"`)
	require.NoError(t, err)
	assert.Equal(t, "id,name\r\n1,ann\r\n", out)
}

func TestGenerate(t *testing.T) {
	setupEnv(t)

	out, _, err := run(t, "generate", "--count", "3", "--seed", "11")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "name,id,username,email", lines[0])
	for _, line := range lines[1:] {
		assert.Contains(t, line, "@example.com")
	}

	again, _, err := run(t, "generate", "--count", "3", "--seed", "11")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestGenerateIntoTable(t *testing.T) {
	setupEnv(t)

	out, _, err := run(t, "generate", "--count", "5", "--table", "people")
	require.NoError(t, err)
	assert.Equal(t, "people: 5 people generated\n", out)

	out, _, err = run(t, "export", "csv", `SELECT COUNT(*) AS "n" FROM "people"`)
	require.NoError(t, err)
	assert.Equal(t, "n\r\n5\r\n", out)
}

func TestExportToFile(t *testing.T) {
	dir := setupEnv(t)
	cols := writeTestFile(t, dir, "cols.json", `{"x": [1]}`)
	_, _, err := run(t, "load-columns", cols, "t")
	require.NoError(t, err)

	outPath := filepath.Join(dir, "out.json")
	stdout, _, err := run(t, "export", "json", `SELECT * FROM "t"`, "-o", outPath)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, `[{"x":1}]`, string(data))
}

func TestExecute_PrintsUserMessage(t *testing.T) {
	dir := setupEnv(t)
	var stderr bytes.Buffer

	err := Execute(context.Background(), &stderr, []string{
		"--env-file", "", "import", "csv", filepath.Join(dir, "missing.csv"), "t",
	})
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "File not found (Code: FILE001)")
}

func TestMissingDatabaseURL(t *testing.T) {
	setupEnv(t)
	t.Setenv("DATABASE_URL", "")

	_, _, err := run(t, "export", "csv", "SELECT 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestDBFlagOverridesEnvironment(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("DATABASE_URL", "")

	out, _, err := run(t, "--db", filepath.Join(dir, "flag.db"), "export", "csv", `SELECT 1 AS "one"`)
	require.NoError(t, err)
	assert.Equal(t, "one\r\n1\r\n", out)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, loadEnvFile(filepath.Join(dir, "absent.env"), false))
	assert.Error(t, loadEnvFile(filepath.Join(dir, "absent.env"), true))

	path := writeTestFile(t, dir, "test.env", "ETL_TEST_FROM_DOTENV=yes\n")
	t.Setenv("ETL_TEST_FROM_DOTENV", "no")
	require.NoError(t, loadEnvFile(path, true))
	assert.Equal(t, "yes", os.Getenv("ETL_TEST_FROM_DOTENV"))
}
