package backup

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
	"github.com/SAP-F-2025/skill-tracker/internal/services"
)

// writeConfig points every backend at dir. The local cache outlives each
// command so a later command sees what an earlier one wrote.
func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	cfg := strings.Join([]string{
		"environment: test",
		"log:",
		"  level: error",
		"remote:",
		"  driver: memory",
		"cache:",
		"  driver: leveldb",
		"  path: " + filepath.Join(dir, "cache"),
		"blob:",
		"  driver: filesystem",
		"  root: " + filepath.Join(dir, "blobs"),
		"",
	}, "\n")
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func run(t *testing.T, cfgPath string, stdin string, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "skill-tracker", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().String("config", cfgPath, "config file path")
	root.AddCommand(NewBackupCommand())

	var out bytes.Buffer
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	return out.String(), err
}

func TestImportThenExport(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	data, err := json.Marshal(&models.Dataset{Hospitals: []models.Hospital{{ID: "h1", Name: "Central"}}})
	require.NoError(t, err)
	file := filepath.Join(dir, "in.json")
	raw, err := json.Marshal(services.Backup{Type: services.BackupFull, Data: data})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(file, raw, 0o600))

	_, err = run(t, cfgPath, "", "backup", "import", "--in", file)
	require.NoError(t, err)

	out, err := run(t, cfgPath, "", "backup", "export", "--out", "-")
	require.NoError(t, err)

	var b services.Backup
	require.NoError(t, json.Unmarshal([]byte(out), &b))
	assert.Equal(t, services.BackupFull, b.Type)
	ds, err := models.DecodeDataset(b.Data)
	require.NoError(t, err)
	require.NotNil(t, ds.Hospital("h1"))
	assert.Equal(t, "Central", ds.Hospital("h1").Name)
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)
	out := filepath.Join(dir, "backup.json")

	_, err := run(t, cfgPath, "", "backup", "export", "--out", out)
	require.NoError(t, err)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var b services.Backup
	require.NoError(t, json.Unmarshal(raw, &b))
	assert.Equal(t, services.BackupFull, b.Type)
}

func TestImportRejectsWrongType(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir())

	_, err := run(t, cfgPath, `{"type":"hospital-backup","id":"h1","data":{"id":"h1"}}`, "backup", "import", "--in", "-")
	require.Error(t, err)
	var mismatch *services.BackupMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestImportRequiresInput(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir())

	_, err := run(t, cfgPath, "", "backup", "import")
	assert.Error(t, err)
}
