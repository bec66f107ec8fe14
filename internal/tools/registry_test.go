package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docsmart/internal/common"
	"github.com/ternarybob/docsmart/internal/models"
)

func TestRegistryCoversEveryTool(t *testing.T) {
	registry := NewRegistry(common.NewDefaultConfig(), arbor.NewLogger())

	for _, tool := range models.KnownTools {
		handler, err := registry.Get(tool)
		require.NoError(t, err, string(tool))
		assert.Equal(t, tool, handler.ID())
	}

	_, err := registry.Get(models.ToolID("ocr"))
	assert.Error(t, err)
}

func TestRegistryTimeouts(t *testing.T) {
	registry := NewRegistry(common.NewDefaultConfig(), arbor.NewLogger())

	// Office conversions get the longer budget.
	assert.Equal(t, 10*time.Minute, registry.Timeout(models.ToolPDFToWord))
	assert.Equal(t, 10*time.Minute, registry.Timeout(models.ToolDocxToPDF))
	assert.Equal(t, 5*time.Minute, registry.Timeout(models.ToolMerge))
	assert.Equal(t, 5*time.Minute, registry.Timeout(models.ToolCompress))
}
