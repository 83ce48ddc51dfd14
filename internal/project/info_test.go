package project

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	t.Run("next with src dir", func(t *testing.T) {
		root := filepath.Join("testdata", "next-src")
		info, err := Detect(root)
		require.NoError(t, err)

		assert.Equal(t, FrameworkNextApp, info.Framework)
		assert.True(t, info.SrcDir)
		assert.True(t, info.TypeScript)
		assert.Equal(t, uint64(4), info.TailwindMajor)
		assert.Equal(t, ManagerPNPM, info.PackageManager)
		require.NotNil(t, info.ManagerVersion)
		assert.Equal(t, "9.1.0", info.ManagerVersion.String())
		assert.True(t, info.HasDependency("react"))
		assert.True(t, info.TailwindV4(nil))
		assert.Equal(t, filepath.Join(root, "tsconfig.json"), info.Paths.File)
	})

	t.Run("vite", func(t *testing.T) {
		info, err := Detect(filepath.Join("testdata", "vite"))
		require.NoError(t, err)

		assert.Equal(t, FrameworkVite, info.Framework)
		assert.False(t, info.SrcDir)
		assert.False(t, info.TypeScript)
		assert.Equal(t, uint64(3), info.TailwindMajor)
		assert.Equal(t, ManagerYarn, info.PackageManager)
		assert.Nil(t, info.ManagerVersion)
		assert.False(t, info.TailwindV4(nil))
		assert.Empty(t, info.Paths.Paths)
		assert.Contains(t, info.String(), "tailwind=v3")
	})

	t.Run("no package.json", func(t *testing.T) {
		_, err := Detect(t.TempDir())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	})
}

func TestMajorOf(t *testing.T) {
	tests := map[string]uint64{
		"":          0,
		"^4.1.0":    4,
		"~3.4":      3,
		">=3.0.0":   3,
		"latest":    4,
		"v4.0.0":    4,
		"workspace": 0,
	}
	for spec, want := range tests {
		assert.Equal(t, want, majorOf(spec), spec)
	}
}
