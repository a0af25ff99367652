package render

// RenderOptions describe per-render data that renderers can use without
// mutating the facade they were handed.
type RenderOptions struct {
	// Values pre-populates controls using dotted control paths (e.g.
	// "lines.0.qty"). Unknown paths are ignored.
	Values map[string]any
	// Errors surfaces server-side validation feedback keyed by control path,
	// typically the Fields of a MapErrorPayload result.
	Errors map[string][]string
	// FormErrors carries messages that do not belong to a single control.
	FormErrors []string
	// Templates binds template fields of this form to the templates that
	// render them.
	Templates Templates
}
