package gs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/docsmart/internal/models"
)

func TestProfileFor(t *testing.T) {
	low, err := ProfileFor(models.CompressionLow)
	require.NoError(t, err)
	medium, err := ProfileFor(models.CompressionMedium)
	require.NoError(t, err)
	extreme, err := ProfileFor(models.CompressionExtreme)
	require.NoError(t, err)

	assert.Equal(t, "printer", low.Preset)
	assert.Equal(t, "ebook", medium.Preset)
	assert.Equal(t, "screen", extreme.Preset)

	// Quality parameters must fall monotonically with the level.
	assert.Greater(t, low.JPEGQ, medium.JPEGQ)
	assert.Greater(t, medium.JPEGQ, extreme.JPEGQ)
	assert.Greater(t, low.ColorDPI, medium.ColorDPI)
	assert.Greater(t, medium.ColorDPI, extreme.ColorDPI)
	assert.GreaterOrEqual(t, low.MonoDPI, medium.MonoDPI)
	assert.Greater(t, medium.MonoDPI, extreme.MonoDPI)

	_, err = ProfileFor(models.CompressionLevel("ultra"))
	assert.Error(t, err)
}

func TestCompressArgs(t *testing.T) {
	profile, err := ProfileFor(models.CompressionMedium)
	require.NoError(t, err)

	args := CompressArgs(profile, false, "in.pdf", "out.pdf")

	assert.Contains(t, args, "-dPDFSETTINGS=/ebook")
	assert.Contains(t, args, "-dJPEGQ=70")
	assert.Contains(t, args, "-dColorImageResolution=120")
	assert.Contains(t, args, "-dMonoImageResolution=300")
	assert.Contains(t, args, "-sDEVICE=pdfwrite")
	assert.Contains(t, args, "-sOutputFile=out.pdf")
	assert.Equal(t, "in.pdf", args[len(args)-1])
	assert.NotContains(t, args, "-sProcessColorModel=DeviceGray")
}

func TestCompressArgsGrayscale(t *testing.T) {
	profile, err := ProfileFor(models.CompressionExtreme)
	require.NoError(t, err)

	args := CompressArgs(profile, true, "in.pdf", "out.pdf")

	assert.Contains(t, args, "-sProcessColorModel=DeviceGray")
	assert.Contains(t, args, "-sColorConversionStrategy=Gray")
	assert.Contains(t, args, "-dOverrideICC")
}

func TestRenderPNGArgs(t *testing.T) {
	args := RenderPNGArgs("page_%d.png", "in.pdf")

	assert.Contains(t, args, "-sDEVICE=png16m")
	assert.Contains(t, args, "-r150")
	assert.Contains(t, args, "-sOutputFile=page_%d.png")
	assert.Equal(t, "in.pdf", args[len(args)-1])
}
