package openapi

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/definition"
	"github.com/goliatone/go-formbuilder/pkg/field"
)

const (
	extensionWidget     = "x-formgen-widget"
	extensionOrder      = "x-formgen-order"
	extensionValidators = "x-formgen-validators"
	extensionSpan       = "x-formgen-span"
)

type converter struct {
	*importer
	stack map[*openapi3.Schema]bool
}

// properties converts the properties of an object schema, including those
// merged in through allOf. Properties are ordered by x-formgen-order and then
// by name.
func (c *converter) properties(schema *openapi3.Schema, path string) ([]definition.Node, error) {
	if c.stack[schema] {
		return nil, fmt.Errorf("schema %s: recursive reference", describe(path))
	}
	c.stack[schema] = true
	defer delete(c.stack, schema)

	props := make(map[string]*openapi3.Schema)
	required := make(map[string]bool)
	collectProperties(schema, props, required)

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.SliceStable(names, func(a, b int) bool {
		oa, ob := order(props[names[a]]), order(props[names[b]])
		if oa != ob {
			return oa < ob
		}
		return names[a] < names[b]
	})

	nodes := make([]definition.Node, 0, len(names))
	for _, name := range names {
		node, ok, err := c.property(name, props[name], required[name], field.JoinPath(path, name))
		if err != nil {
			return nil, err
		}
		if ok {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

func collectProperties(schema *openapi3.Schema, props map[string]*openapi3.Schema, required map[string]bool) {
	for _, ref := range schema.AllOf {
		if ref != nil && ref.Value != nil {
			collectProperties(ref.Value, props, required)
		}
	}
	for name, ref := range schema.Properties {
		if ref != nil && ref.Value != nil {
			props[name] = ref.Value
		}
	}
	for _, name := range schema.Required {
		required[name] = true
	}
}

func (c *converter) property(name string, schema *openapi3.Schema, required bool, path string) (definition.Node, bool, error) {
	if schema.ReadOnly {
		return definition.Node{}, false, nil
	}
	node := definition.Node{
		Name:     name,
		Label:    schema.Title,
		Hint:     schema.Description,
		Initial:  schema.Default,
		Span:     intExtension(schema.Extensions, extensionSpan),
		Metadata: formatMetadata(schema),
	}
	if node.Label == "" {
		node.Label = c.labeler(name)
	}

	typ := schemaType(schema)
	switch {
	case typ == "object" || (typ == "" && (len(schema.Properties) > 0 || len(schema.AllOf) > 0)):
		children, err := c.properties(schema, path)
		if err != nil {
			return definition.Node{}, false, err
		}
		node.Kind = string(field.KindGroup)
		node.Children = children
		return node, true, nil
	case typ == "array":
		items := itemSchema(schema)
		if items == nil || !isObject(items) {
			c.logger.Debug("skipping array property without object items", zap.String("path", path))
			return definition.Node{}, false, nil
		}
		children, err := c.properties(items, path)
		if err != nil {
			return definition.Node{}, false, err
		}
		node.Kind = string(field.KindGroupArray)
		node.Children = children
		node.Validators = stringsExtension(schema.Extensions, extensionValidators)
		return node, true, nil
	}

	kind, ok := leafKind(typ, schema)
	if !ok {
		c.logger.Debug("skipping property with unsupported type",
			zap.String("path", path), zap.String("type", typ))
		return definition.Node{}, false, nil
	}
	node.Kind = string(kind)
	if kind == field.KindSelect {
		for _, value := range schema.Enum {
			node.Options = append(node.Options, definition.OptionNode{Label: fmt.Sprint(value), Value: value})
		}
	}
	node.Validators = leafValidators(kind, schema, required)
	return node, true, nil
}

func leafKind(typ string, schema *openapi3.Schema) (field.Kind, bool) {
	if len(schema.Enum) > 0 {
		return field.KindSelect, true
	}
	switch typ {
	case "boolean":
		return field.KindCheckbox, true
	case "integer", "number":
		return field.KindNumber, true
	case "string", "":
	default:
		return "", false
	}

	if widget, ok := schema.Extensions[extensionWidget].(string); ok {
		if kind, known := field.ParseKind(widget); known && (kind.IsInput() || kind == field.KindDate) {
			return kind, true
		}
	}
	switch schema.Format {
	case "date", "date-time":
		return field.KindDate, true
	case "email":
		return field.KindEmail, true
	case "password":
		return field.KindPassword, true
	}
	return field.KindText, true
}

func leafValidators(kind field.Kind, schema *openapi3.Schema, required bool) []string {
	var refs []string
	if required {
		refs = append(refs, "required")
	}
	if kind == field.KindEmail {
		refs = append(refs, "email")
	}
	if schema.MinLength > 0 {
		refs = append(refs, "minLength:"+strconv.FormatUint(schema.MinLength, 10))
	}
	if schema.MaxLength != nil {
		refs = append(refs, "maxLength:"+strconv.FormatUint(*schema.MaxLength, 10))
	}
	if schema.Min != nil {
		refs = append(refs, "min:"+strconv.FormatFloat(*schema.Min, 'f', -1, 64))
	}
	if schema.Max != nil {
		refs = append(refs, "max:"+strconv.FormatFloat(*schema.Max, 'f', -1, 64))
	}
	if schema.Pattern != "" && kind != field.KindSelect {
		refs = append(refs, "pattern:"+schema.Pattern)
	}
	return append(refs, stringsExtension(schema.Extensions, extensionValidators)...)
}

func formatMetadata(schema *openapi3.Schema) map[string]string {
	if schema.Format == "" {
		return nil
	}
	return map[string]string{"format": schema.Format}
}

func schemaType(schema *openapi3.Schema) string {
	if schema == nil || schema.Type == nil {
		return ""
	}
	for _, typ := range schema.Type.Slice() {
		if typ != "null" {
			return typ
		}
	}
	return ""
}

func isObject(schema *openapi3.Schema) bool {
	typ := schemaType(schema)
	return typ == "object" || (typ == "" && (len(schema.Properties) > 0 || len(schema.AllOf) > 0))
}

func itemSchema(schema *openapi3.Schema) *openapi3.Schema {
	if schema.Items == nil {
		return nil
	}
	return schema.Items.Value
}

func order(schema *openapi3.Schema) int {
	if n := intExtension(schema.Extensions, extensionOrder); n != 0 {
		return n
	}
	return 1 << 30
}

func intExtension(ext map[string]any, key string) int {
	switch v := ext[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	default:
		return 0
	}
}

func stringsExtension(ext map[string]any, key string) []string {
	switch v := ext[key].(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, entry := range v {
			if s, ok := entry.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func describe(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}
