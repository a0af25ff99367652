// Package field defines the declarative field descriptors consumed by the form
// builder. A descriptor tree mixes layout containers (div, row) with value
// kinds (text, number, date, select, ...) and structural kinds (group,
// groupArray). Kind-specific settings travel in Options, whose concrete type
// is fixed per kind: SelectOptions for select, DateRangeOptions for daterange,
// CustomOptions for custom, TemplateOptions for template and
// GroupArrayOptions for groupArray.
//
// The constructors in this package are sugar over Field literals; a
// descriptor built by hand is treated exactly like one built through Text,
// Row or GroupArray. Clone produces fully independent copies, which the
// builder relies on when it annotates layout classes and when repeat rows are
// materialised from a template.
package field
