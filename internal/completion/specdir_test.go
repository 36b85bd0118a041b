package completion

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecDirLoader_Files(t *testing.T) {
	fsys := fstest.MapFS{
		"containers.yaml":   {Data: []byte("commands: {}\n")},
		"nested/tools.yml":  {Data: []byte("commands: {}\n")},
		"README.md":         {Data: []byte("# not a spec\n")},
		"disabled.yaml.bak": {Data: []byte("commands: {}\n")},
	}

	files, err := NewSpecDirLoader(fsys).Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"containers.yaml", "nested/tools.yml"}, files)
}

func TestSpecDirLoader_Register(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": {Data: []byte(`commands:
  docker:
    - value: run
    - value: build
  kubectl:
    - value: get
`)},
		"b.yaml": {Data: []byte(`commands:
  kubectl:
    - value: apply
      description: Apply a configuration
  noop:
    - description: nothing to complete
`)},
	}

	r := NewRegistry()
	n, err := NewSpecDirLoader(fsys).Register(r)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"docker", "kubectl"}, r.Names())

	chain, _ := r.Lookup("kubectl")
	assert.Equal(t, "-W apply", chain.Spec(), "the later file wins")

	chain, _ = r.Lookup("docker")
	assert.Equal(t, "-W 'run build'", chain.Spec())
}

func TestSpecDirLoader_Errors(t *testing.T) {
	tests := []struct {
		name          string
		fs            fstest.MapFS
		errorContains string
	}{
		{
			name:          "invalid yaml",
			fs:            fstest.MapFS{"bad.yaml": {Data: []byte("commands: [oops\n")}},
			errorContains: "failed to parse bad.yaml",
		},
		{
			name:          "wrong shape",
			fs:            fstest.MapFS{"list.yaml": {Data: []byte("commands:\n  - docker\n")}},
			errorContains: "failed to parse list.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			_, err := NewSpecDirLoader(tt.fs).Register(r)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
			assert.Empty(t, r.Names())
		})
	}
}

func TestSpecDirLoader_Empty(t *testing.T) {
	n, err := NewSpecDirLoader(fstest.MapFS{}).Register(NewRegistry())
	require.NoError(t, err)
	assert.Zero(t, n)
}
