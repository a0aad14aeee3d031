package output

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/receita/core"
)

func TestWriteArtifact_UniqueNames(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "nested", "out"))
	require.NoError(t, err)

	a := core.Artifact{Kind: core.ArtifactText, Data: []byte("%PDF-1.3")}
	p1, err := w.WriteArtifact(a)
	require.NoError(t, err)
	p2, err := w.WriteArtifact(a)
	require.NoError(t, err)

	assert.NotEqual(t, p1, p2)
	assert.Regexp(t, regexp.MustCompile(`text-[0-9a-f-]{36}\.pdf$`), p1)

	data, err := os.ReadFile(p1)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(data))
}

func TestWriteNamed_Sanitizes(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)

	p, err := w.WriteNamed("receita João/oral.md", core.Artifact{Kind: core.ArtifactMarkdown, Data: []byte("# x")})
	require.NoError(t, err)
	assert.Equal(t, "receita_Jo_o_oral.md", filepath.Base(p))
}

func TestWriteNamed_EmptyNameFallsBack(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)

	p, err := w.WriteNamed("  ", core.Artifact{Kind: core.ArtifactSnapshot})
	require.NoError(t, err)
	assert.Regexp(t, `snapshot-.*\.pdf$`, p)
}

func TestArtifactName_DefaultKind(t *testing.T) {
	assert.Regexp(t, `^artifact-`, ArtifactName(""))
}
