// -----------------------------------------------------------------------
// Ghostscript compression profiles - quality level to argument mapping
// -----------------------------------------------------------------------

package gs

import (
	"fmt"

	"github.com/ternarybob/docsmart/internal/models"
)

// Profile is a named set of Ghostscript parameters bound to a compression
// level. The parameter values are fixed; changing them breaks
// bit-compatibility with previously produced outputs.
type Profile struct {
	Level    models.CompressionLevel
	Preset   string // -dPDFSETTINGS value without the /prefix
	JPEGQ    int    // DCTEncode quality factor
	ColorDPI int
	GrayDPI  int
	MonoDPI  int
}

var profiles = map[models.CompressionLevel]Profile{
	models.CompressionLow: {
		Level:    models.CompressionLow,
		Preset:   "printer",
		JPEGQ:    100,
		ColorDPI: 300,
		GrayDPI:  300,
		MonoDPI:  300,
	},
	models.CompressionMedium: {
		Level:    models.CompressionMedium,
		Preset:   "ebook",
		JPEGQ:    70,
		ColorDPI: 120,
		GrayDPI:  120,
		MonoDPI:  300,
	},
	models.CompressionExtreme: {
		Level:    models.CompressionExtreme,
		Preset:   "screen",
		JPEGQ:    25,
		ColorDPI: 36,
		GrayDPI:  36,
		MonoDPI:  100,
	},
}

// ProfileFor returns the profile for a compression level.
func ProfileFor(level models.CompressionLevel) (Profile, error) {
	p, ok := profiles[level]
	if !ok {
		return Profile{}, fmt.Errorf("unknown compression level: %s", level)
	}
	return p, nil
}

// commonFlags are applied on every compression invocation regardless of
// level.
var commonFlags = []string{
	"-sDEVICE=pdfwrite",
	"-dCompatibilityLevel=1.4",
	"-dNOPAUSE",
	"-dQUIET",
	"-dBATCH",
	"-dAutoFilterColorImages=false",
	"-dAutoFilterGrayImages=false",
	"-sColorImageFilter=/DCTEncode",
	"-sGrayImageFilter=/DCTEncode",
	"-dDownsampleColorImages=true",
	"-dColorImageDownsampleType=/Bicubic",
	"-dDownsampleGrayImages=true",
	"-dGrayImageDownsampleType=/Bicubic",
	"-dDownsampleMonoImages=true",
	"-dMonoImageDownsampleType=/Subsample",
	"-dDetectDuplicateImages=true",
	"-dCompressFonts=true",
	"-dSubsetFonts=true",
	"-dFastWebView=true",
}

// grayscaleFlags convert all color to DeviceGray when requested.
var grayscaleFlags = []string{
	"-sProcessColorModel=DeviceGray",
	"-sColorConversionStrategy=Gray",
	"-dOverrideICC",
}

// CompressArgs builds the full Ghostscript argument list for compressing
// input to output under the given profile.
func CompressArgs(p Profile, grayscale bool, input, output string) []string {
	args := []string{
		fmt.Sprintf("-dPDFSETTINGS=/%s", p.Preset),
		fmt.Sprintf("-dJPEGQ=%d", p.JPEGQ),
		fmt.Sprintf("-dColorImageResolution=%d", p.ColorDPI),
		fmt.Sprintf("-dGrayImageResolution=%d", p.GrayDPI),
		fmt.Sprintf("-dMonoImageResolution=%d", p.MonoDPI),
	}
	args = append(args, commonFlags...)
	if grayscale {
		args = append(args, grayscaleFlags...)
	}
	args = append(args, fmt.Sprintf("-sOutputFile=%s", output), input)
	return args
}

// RenderPNGArgs builds the argument list for rasterizing every page of a
// PDF into PNG files. The output pattern must contain %d for the page
// number.
func RenderPNGArgs(outputPattern, input string) []string {
	return []string{
		"-sDEVICE=png16m",
		"-r150",
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		fmt.Sprintf("-sOutputFile=%s", outputPattern),
		input,
	}
}
