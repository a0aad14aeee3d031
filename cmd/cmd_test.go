package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/receita/core/document"
)

func resetExportFlags() {
	exportText, exportTranscript, exportUppercase, exportMarkdown = "", false, false, false
}

func TestValidateExportFlags(t *testing.T) {
	t.Cleanup(resetExportFlags)

	resetExportFlags()
	assert.NoError(t, validateExportFlags(nil))
	assert.NoError(t, validateExportFlags([]string{"page.html"}))

	exportText = "x"
	assert.Error(t, validateExportFlags([]string{"page.html"}))
	assert.NoError(t, validateExportFlags(nil))

	resetExportFlags()
	exportTranscript = true
	assert.Error(t, validateExportFlags(nil))
	exportUppercase = true
	assert.NoError(t, validateExportFlags([]string{"page.html"}))

	resetExportFlags()
	exportUppercase = true
	assert.Error(t, validateExportFlags([]string{"page.html"}))

	resetExportFlags()
	exportMarkdown = true
	exportText = "x"
	assert.Error(t, validateExportFlags(nil))
}

func TestSnapshotPage_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receita.html")
	require.NoError(t, os.WriteFile(path, []byte(`<html><body><div id="rx"><input value="a"></div></body></html>`), 0o644))

	root, err := snapshotPage(context.Background(), path, "#rx")
	require.NoError(t, err)
	require.Len(t, root.Fields(), 1)
	assert.Equal(t, "a", root.Fields()[0].Value)

	_, err = snapshotPage(context.Background(), path, "#other")
	assert.ErrorIs(t, err, document.ErrNoMatch)

	_, err = snapshotPage(context.Background(), filepath.Join(t.TempDir(), "missing.html"), "body")
	assert.Error(t, err)
}

func TestLoadCatalog(t *testing.T) {
	c, err := loadCatalog("")
	require.NoError(t, err)
	assert.Empty(t, c.Medicines)

	c, err = loadCatalog("../core/catalog/testdata/catalog.yaml")
	require.NoError(t, err)
	assert.Len(t, c.Medicines, 4)
}
