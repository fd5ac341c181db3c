package assemble

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/doxyrst/internal/report"
	"github.com/example/doxyrst/internal/rst"
	"github.com/example/doxyrst/internal/symboldb"
)

const actionXML = `<?xml version="1.0" encoding="UTF-8"?>
<doxygen>
<compounddef kind="class" prot="public">
<compoundname>libsemigroups::Action</compoundname>
<briefdescription><para>Acts on stuff.</para></briefdescription>
<sectiondef>
<memberdef kind="function" prot="public">
  <type></type><name>Action</name>
  <definition>libsemigroups::Action::Action</definition>
  <argsstring>()</argsstring>
  <briefdescription><para>Default constructor.</para></briefdescription>
</memberdef>
<memberdef kind="function" prot="public" const="yes">
  <type>size_t</type><name>size</name>
  <definition>size_t libsemigroups::Action::size</definition>
  <argsstring>() const</argsstring>
  <briefdescription><para>Returns the size.</para></briefdescription>
</memberdef>
<memberdef kind="function" prot="public">
  <type>void</type><name>reserve</name>
  <definition>void libsemigroups::Action::reserve</definition>
  <argsstring>(size_t val)</argsstring>
  <param><type>size_t</type><declname>val</declname></param>
</memberdef>
</sectiondef>
</compounddef>
</doxygen>`

const actionYML = `libsemigroups::Action:
  - Constructors:
      - Action()
  - Member functions:
      - - "Prose about the member functions."
      - size() const
      - missing_fn()
`

type fixture struct {
	specPath string
	outDir   string
	asm      *Assembler
	reporter *report.Reporter
	writer   *Writer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	xmlDir := filepath.Join(base, "xml")
	outDir := filepath.Join(base, "out")
	specDir := filepath.Join(base, "yml")
	require.NoError(t, os.MkdirAll(xmlDir, 0o755))
	require.NoError(t, os.MkdirAll(outDir, 0o755))
	require.NoError(t, os.MkdirAll(specDir, 0o755))

	require.NoError(t, os.WriteFile(
		filepath.Join(xmlDir, "classlibsemigroups_1_1_action.xml"), []byte(actionXML), 0o644))
	specPath := filepath.Join(specDir, "action.yml")
	require.NoError(t, os.WriteFile(specPath, []byte(actionYML), 0o644))

	logger := log.New(io.Discard)
	reporter := report.New(logger)
	writer := NewWriter(logger)
	asm := &Assembler{
		DB: symboldb.Open(xmlDir),
		Renderer: &rst.Renderer{
			Project:         "libsemigroups",
			RootNamespace:   "libsemigroups",
			DetailNamespace: "detail::",
		},
		Writer:   writer,
		Reporter: reporter,
		OutDir:   outDir,
		Header:   ".. auto-generated, do not edit.\n",
	}
	return &fixture{specPath: specPath, outDir: outDir, asm: asm, reporter: reporter, writer: writer}
}

func (f *fixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.outDir, name))
	require.NoError(t, err)
	return string(data)
}

func TestProcessFileWritesOverview(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.asm.ProcessFile(f.specPath))

	out := f.read(t, "libsemigroups__action.rst")
	assert.True(t, strings.HasPrefix(out, ".. auto-generated, do not edit.\n"))
	assert.Contains(t, out, "\nAction\n======\n")
	assert.Contains(t, out, ".. doxygenclass:: libsemigroups::Action\n   :project: libsemigroups")
	assert.Contains(t, out, ".. cpp:namespace:: libsemigroups::Action")
	assert.Contains(t, out, "\nConstructors\n------------\n")
	assert.Contains(t, out, ".. list-table::\n   :widths: 50 50\n   :header-rows: 0\n\n")

	// Default constructor: short title, qualified link target.
	assert.Contains(t, out, ":cpp:member:`Action() <Action::Action()>`")
	assert.Contains(t, out, "Default constructor.")

	// Unresolvable members still get a row, with the marker.
	assert.Contains(t, out, ":cpp:member:`missing_fn()`")
	assert.Contains(t, out, "(no documentation found)")

	// Hidden toctree referencing every section's subpage.
	assert.Contains(t, out, ".. toctree::\n   :hidden:\n")
	assert.Contains(t, out, "\n   libsemigroups__action__constructors.rst")
	assert.Contains(t, out, "\n   libsemigroups__action__member_functions.rst")
}

func TestProcessFileWritesSubpages(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.asm.ProcessFile(f.specPath))

	ctors := f.read(t, "libsemigroups__action__constructors.rst")
	assert.Contains(t, ctors, "\nConstructors\n============\n")
	assert.Contains(t, ctors, ".. cpp:namespace:: libsemigroups\n\n")
	assert.Contains(t, ctors, ".. cpp:namespace-pop::\n\n")
	assert.Contains(t, ctors, ".. doxygenfunction:: libsemigroups::Action::Action()\n   :project: libsemigroups")

	members := f.read(t, "libsemigroups__action__member_functions.rst")
	assert.Contains(t, members, "Prose about the member functions.\n\n")
	assert.Contains(t, members, ".. doxygenfunction:: libsemigroups::Action::size() const")
	// The unresolvable member is skipped, not emitted.
	assert.NotContains(t, members, "missing_fn")
}

func TestProcessFileWarnings(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.asm.ProcessFile(f.specPath))

	// One for reserve(size_t) present in doxygen but absent from the yml,
	// one for missing_fn, which has no doxygen output at all.
	assert.Equal(t, 2, f.reporter.Warnings())
}

func TestUndocumentedMemberWarnsOnce(t *testing.T) {
	// missing_fn() is looked up three times: twice while building its
	// overview table row and once for its subpage directive. All three
	// failures share the qualified (name, params) key, so exactly one
	// warning is recorded.
	f := newFixture(t)
	specPath := filepath.Join(filepath.Dir(f.specPath), "missing.yml")
	yml := "libsemigroups::Action:\n  - Member functions:\n      - missing_fn()\n"
	require.NoError(t, os.WriteFile(specPath, []byte(yml), 0o644))

	require.NoError(t, f.asm.ProcessFile(specPath))

	// Action(), size() const and reserve(size_t) are in doxygen but not in
	// missing.yml (three cross-check warnings); the only other warning is
	// the single one for missing_fn.
	assert.Equal(t, 4, f.reporter.Warnings())
}

func TestProcessFileIsIdempotentOnDisk(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.asm.ProcessFile(f.specPath))
	assert.Equal(t, 3, f.writer.Attempted())
	assert.Equal(t, 3, f.writer.Rewritten())

	// A second identical run attempts the same files but rewrites none.
	g := newFixture(t)
	g.outDir = f.outDir
	g.asm.OutDir = f.outDir
	require.NoError(t, g.asm.ProcessFile(g.specPath))
	assert.Equal(t, 3, g.writer.Attempted())
	assert.Equal(t, 0, g.writer.Rewritten())
}

func TestRunRemovesOrphans(t *testing.T) {
	f := newFixture(t)
	orphan := filepath.Join(f.outDir, "left_over.rst")
	require.NoError(t, os.WriteFile(orphan, []byte("old"), 0o644))

	require.NoError(t, f.asm.ProcessFile(f.specPath))
	require.NoError(t, f.writer.CleanOrphans(f.outDir))

	_, err := os.Stat(orphan)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(f.outDir, "libsemigroups__action.rst"))
	assert.NoError(t, err)
}

func TestOverviewSkippedWhenPrimaryUnknown(t *testing.T) {
	f := newFixture(t)
	specPath := filepath.Join(filepath.Dir(f.specPath), "unknown.yml")
	require.NoError(t, os.WriteFile(specPath, []byte("libsemigroups::Unknown:\n  - Things:\n      - foo()\n"), 0o644))

	require.NoError(t, f.asm.ProcessFile(specPath))
	_, err := os.Stat(filepath.Join(f.outDir, "libsemigroups__unknown.rst"))
	assert.True(t, os.IsNotExist(err), "overview must be skipped when the primary symbol has no documentation")
	assert.NotZero(t, f.reporter.Warnings())
}
