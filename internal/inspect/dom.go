package inspect

import (
	"context"
	"fmt"

	"siteguard/internal/domain"
)

// CaptureDOM runs the deep DOM inspection script: UI elements, forms,
// dropdowns, pagination, nav menus, tabs, modals, accordions, breadcrumbs,
// sidebar, and the element count summary.
func CaptureDOM(ctx context.Context, ev Evaluator) (*domain.DOMData, error) {
	var data domain.DOMData
	if err := ev.Evaluate(ctx, domCaptureScript, &data); err != nil {
		return nil, fmt.Errorf("dom capture: %w", err)
	}
	return &data, nil
}
