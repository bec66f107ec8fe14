// -----------------------------------------------------------------------
// Tool Registry - tool_id to handler dispatch table
// -----------------------------------------------------------------------

package tools

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docsmart/internal/common"
	"github.com/ternarybob/docsmart/internal/interfaces"
	"github.com/ternarybob/docsmart/internal/models"
)

// Registry maps tool ids to handlers and carries their soft timeouts.
type Registry struct {
	handlers map[models.ToolID]interfaces.ToolHandler
	timeouts map[models.ToolID]time.Duration
	logger   arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.ToolRegistry = (*Registry)(nil)

// NewRegistry builds the registry with every handler wired to the
// configured external tool binaries.
func NewRegistry(cfg *common.Config, logger arbor.ILogger) *Registry {
	r := &Registry{
		handlers: make(map[models.ToolID]interfaces.ToolHandler),
		timeouts: make(map[models.ToolID]time.Duration),
		logger:   logger,
	}

	defaultTimeout := cfg.DefaultToolTimeout()
	officeTimeout := cfg.OfficeToolTimeout()

	r.register(&MergeHandler{}, defaultTimeout)
	r.register(&SplitHandler{}, defaultTimeout)
	r.register(&RotateHandler{}, defaultTimeout)
	r.register(&RemoveHandler{}, defaultTimeout)
	r.register(&ImgToPDFHandler{}, defaultTimeout)
	r.register(NewPDFToImgHandler(cfg.Tools.GhostscriptPath), defaultTimeout)
	r.register(NewPDFToWordHandler(cfg.Tools.LibreOfficePath), officeTimeout)
	r.register(NewDocxToPDFHandler(cfg.Tools.LibreOfficePath), officeTimeout)
	r.register(&ProtectHandler{}, defaultTimeout)
	r.register(&UnlockHandler{}, defaultTimeout)
	r.register(&WatermarkHandler{}, defaultTimeout)
	r.register(&PageNumbersHandler{}, defaultTimeout)
	r.register(&RepairHandler{}, defaultTimeout)
	r.register(NewCompressHandler(cfg.Tools.GhostscriptPath), defaultTimeout)
	r.register(&ExtractTextHandler{}, defaultTimeout)

	return r
}

func (r *Registry) register(handler interfaces.ToolHandler, timeout time.Duration) {
	r.handlers[handler.ID()] = handler
	r.timeouts[handler.ID()] = timeout
	r.logger.Debug().
		Str("tool_id", string(handler.ID())).
		Dur("timeout", timeout).
		Msg("Tool handler registered")
}

// Get returns the handler for a tool id.
func (r *Registry) Get(toolID models.ToolID) (interfaces.ToolHandler, error) {
	handler, ok := r.handlers[toolID]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", toolID)
	}
	return handler, nil
}

// Timeout returns the soft deadline for a tool's handler invocation.
func (r *Registry) Timeout(toolID models.ToolID) time.Duration {
	if t, ok := r.timeouts[toolID]; ok {
		return t
	}
	return 5 * time.Minute
}
