// Package inspect holds the page inspectors (performance,
// accessibility, security, forms) plus the DOM/UI capture they share.
// Each inspector is a capture function running a page-context script plus a
// pure scoring function. A capture error means the component is absent
// downstream, never a fabricated zero.
package inspect

import "context"

// Evaluator runs a script in page context and unmarshals its JSON result.
// Implemented by the browser package's page session.
type Evaluator interface {
	Evaluate(ctx context.Context, script string, out any) error
}
