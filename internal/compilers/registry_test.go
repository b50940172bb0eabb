package compilers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryLoads(t *testing.T) {
	require.NotNil(t, Default)
	assert.NotEmpty(t, Default.Languages())
}

func TestBaseCompilerInheritance(t *testing.T) {
	data := []byte(`{
		"languages": [{
			"id": "c++",
			"name": "C++",
			"baseCompiler": {"options": "-O2", "intelAsm": "-masm=intel", "supportsBinary": true},
			"compilers": [
				{"id": "gdefault", "name": "gcc"},
				{"id": "clangcustom", "name": "clang", "options": "-O2 -stdlib=libc++"}
			]
		}]
	}`)
	r, err := NewRegistry(data)
	require.NoError(t, err)

	g, ok := r.Lookup("gdefault")
	require.True(t, ok)
	assert.Equal(t, "-O2", g.Options, "inherits base options")
	assert.Equal(t, "-masm=intel", g.IntelAsm)
	assert.True(t, g.SupportsBinary)
	assert.Equal(t, "c++", g.Lang)

	c, ok := r.Lookup("clangcustom")
	require.True(t, ok)
	assert.Equal(t, "-O2 -stdlib=libc++", c.Options, "entry overrides base field by field")
	assert.Equal(t, "-masm=intel", c.IntelAsm, "untouched base fields survive")
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	data := []byte(`{
		"languages": [{
			"id": "c",
			"name": "C",
			"compilers": [{"id": "x", "name": "a"}, {"id": "x", "name": "b"}]
		}]
	}`)
	_, err := NewRegistry(data)
	assert.Error(t, err)
}

func TestCompilersFor(t *testing.T) {
	list := Default.CompilersFor("c++")
	require.NotEmpty(t, list)
	for _, c := range list {
		assert.Equal(t, "c++", c.Lang)
	}
	assert.Nil(t, Default.CompilersFor("cobol"))
}
