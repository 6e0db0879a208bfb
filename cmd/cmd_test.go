package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abyblackmouth/XmlCreator40/internal/reporterror"
	"github.com/Abyblackmouth/XmlCreator40/internal/testutil"
	"github.com/Abyblackmouth/XmlCreator40/internal/types"
	"github.com/Abyblackmouth/XmlCreator40/internal/xlsxparser"
	"github.com/Abyblackmouth/XmlCreator40/pkg/utils"
)

const reportName = "informe1.0_ACME_SA_DE_CV_3.xml"

type workspace struct {
	root, input, output, archive, config string
}

// newWorkspace writes a config file whose directories live in a temp dir and
// which logs to the console only.
func newWorkspace(t *testing.T) workspace {
	t.Helper()
	root := t.TempDir()
	ws := workspace{
		root:    root,
		input:   filepath.Join(root, "input"),
		output:  filepath.Join(root, "output"),
		archive: filepath.Join(root, "archive"),
		config:  filepath.Join(root, "config.yaml"),
	}
	content := fmt.Sprintf(`paths:
  input_dir: %q
  output_dir: %q
  upload_dir: %q
  archive_dir: %q
log:
  level: error
  file: ""
batch:
  max_concurrency: 2
  archive_inputs: true
  write_summary: true
`, ws.input, ws.output, filepath.Join(root, "uploads"), ws.archive)
	require.NoError(t, os.WriteFile(ws.config, []byte(content), 0o644))
	return ws
}

// execute runs the root command with args after resetting flag state left
// by previous runs.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile, verbose = "", false
	convertInput, convertOutputDir, convertWarningsLog = "", "", false
	processInputDir, processOutputDir, dryRun = "", "", false
	templateOutput = xlsxparser.TemplateFileName
	initForce = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConvertCommand(t *testing.T) {
	ws := newWorkspace(t)
	input := testutil.ValidWorkbook(t, ws.root)

	out, err := execute(t, "convert", "--config", ws.config, "-i", input, "--warnings-log")
	require.NoError(t, err)

	report := filepath.Join(ws.output, reportName)
	assert.Contains(t, out, report)
	assert.FileExists(t, report)
	assert.Contains(t, out, "validation finding(s)")
	assert.FileExists(t, filepath.Join(ws.output, "informe1.0_ACME_SA_DE_CV_3_warnings.txt"))

	t.Run("explicit output dir", func(t *testing.T) {
		other := filepath.Join(ws.root, "other")
		_, err := execute(t, "convert", "--config", ws.config, "-i", input, "-o", other)
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(other, reportName))
	})
}

func TestConvertCommand_Failure(t *testing.T) {
	ws := newWorkspace(t)

	_, err := execute(t, "convert", "--config", ws.config, "-i", filepath.Join(ws.root, "missing.xlsx"))
	require.Error(t, err)
	assert.ErrorIs(t, err, reporterror.ErrInputNotFound)
	assert.NoDirExists(t, ws.output)
}

func TestProcessCommand(t *testing.T) {
	ws := newWorkspace(t)
	require.NoError(t, os.MkdirAll(ws.input, 0o755))

	testutil.ValidWorkbook(t, ws.input)
	testutil.WriteWorkbook(t, filepath.Join(ws.input, "incompleto.xlsx"),
		testutil.HeaderSheet(testutil.HeaderRow()),
	)

	out, err := execute(t, "process", "--config", ws.config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 file(s) failed")
	assert.Contains(t, out, "✓ datos.xlsx")
	assert.Contains(t, out, "✗ incompleto.xlsx")

	assert.FileExists(t, filepath.Join(ws.output, reportName))
	assert.FileExists(t, filepath.Join(ws.archive, "datos.xlsx"))
	assert.FileExists(t, filepath.Join(ws.input, "incompleto.xlsx"), "failed inputs stay in place")
	assert.NoFileExists(t, filepath.Join(ws.input, "datos.xlsx"))

	summaries, err := filepath.Glob(filepath.Join(ws.output, "processing_summary_*.csv"))
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	entries, err := utils.ReadSummary(summaries[0])
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byFile := map[string]utils.SummaryEntry{}
	for _, e := range entries {
		byFile[e.InputFile] = e
	}
	assert.Equal(t, utils.StatusSuccess, byFile["datos.xlsx"].Status)
	assert.Equal(t, 2, byFile["datos.xlsx"].Operations)
	assert.Equal(t, 1, byFile["datos.xlsx"].CustodyOperations)
	assert.Equal(t, utils.StatusFailed, byFile["incompleto.xlsx"].Status)
	assert.Equal(t, reporterror.KindMissingSheets.String(), byFile["incompleto.xlsx"].ErrorKind)
	assert.Contains(t, byFile["incompleto.xlsx"].ErrorMessage, types.SheetOperations)

	t.Run("inspect summary", func(t *testing.T) {
		out, err := execute(t, "inspect", summaries[0])
		require.NoError(t, err)
		assert.Contains(t, out, "✓ datos.xlsx: "+filepath.Join(ws.output, reportName))
		assert.Contains(t, out, "✗ incompleto.xlsx: "+reporterror.KindMissingSheets.String())
		assert.Contains(t, out, "Errors:          1")
		assert.Contains(t, out, "Operations:      2")
	})
}

func TestProcessCommand_EmptyAndDryRun(t *testing.T) {
	ws := newWorkspace(t)

	out, err := execute(t, "process", "--config", ws.config)
	require.NoError(t, err)
	assert.Contains(t, out, "No workbooks found")

	testutil.ValidWorkbook(t, ws.input)
	out, err = execute(t, "process", "--config", ws.config, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "datos.xlsx")
	assert.FileExists(t, filepath.Join(ws.input, "datos.xlsx"))
	assert.NoFileExists(t, filepath.Join(ws.output, reportName))
}

func TestTemplateAndInspectCommands(t *testing.T) {
	ws := newWorkspace(t)

	templatePath := filepath.Join(ws.root, "plantilla.xlsx")
	out, err := execute(t, "template", "-o", templatePath)
	require.NoError(t, err)
	assert.Contains(t, out, templatePath)
	assert.FileExists(t, templatePath)

	input := testutil.ValidWorkbook(t, ws.root)
	_, err = execute(t, "convert", "--config", ws.config, "-i", input)
	require.NoError(t, err)

	out, err = execute(t, "inspect", filepath.Join(ws.output, reportName))
	require.NoError(t, err)
	assert.Contains(t, out, "Operations:         2")
	assert.Contains(t, out, "Total amount:       150.00")

	_, err = execute(t, "inspect")
	assert.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = execute(t, "init", path)
	assert.Error(t, err, "existing file needs --force")

	_, err = execute(t, "init", path, "--force")
	assert.NoError(t, err)

	_, err = execute(t, "version", "--config", path)
	assert.NoError(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--config", filepath.Join(t.TempDir(), "does-not-matter.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "XmlCreator40")
	assert.Contains(t, out, "Version:    "+Version)
}
