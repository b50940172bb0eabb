package state

import (
	"fmt"
	"math"

	"github.com/jacobpanov/compiler-explorer/internal/zb64"
)

// CurrentVersion is the latest wire protocol version. Decoding always
// yields a value of this version; older versions are upgraded in sequence
// by the migration chain below.
const CurrentVersion = 4

// An upgrade is a pure transformation from one historical protocol version
// to the next.
type upgrade struct {
	from  int
	apply func(map[string]any) (map[string]any, error)
}

// upgrades is the ordered migration chain. Migration starts at the
// detected version and applies every remaining step, so a v1 value passes
// through each intermediate shape rather than jumping straight to v4.
var upgrades = []upgrade{
	{from: 1, apply: addFilterOptions},
	{from: 2, apply: wrapCompilerConfig},
	{from: 3, apply: buildLayoutTree},
}

// Migrate upgrades a decoded generic value from any historically-valid
// shape to the current one and denormalizes abbreviated field names. A
// missing, non-integer, or unsupported version is a ProtocolError.
func Migrate(v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &ProtocolError{Reason: "state is not an object"}
	}
	version, ok := intField(m, "version")
	if !ok {
		return nil, &ProtocolError{Reason: "missing or non-integer version field"}
	}
	if version < 1 || version > CurrentVersion {
		return nil, &ProtocolError{Version: version}
	}
	if version < CurrentVersion {
		// Upgrades rewrite top-level fields; work on a copy so the
		// caller's map is left intact.
		clone := make(map[string]any, len(m))
		for k, val := range m {
			clone[k] = val
		}
		m = clone
	}
	for _, u := range upgrades {
		if u.from < version {
			continue
		}
		next, err := u.apply(m)
		if err != nil {
			return nil, err
		}
		m = next
		version = u.from + 1
		m["version"] = version
	}
	return expandKeys(m).(map[string]any), nil
}

// v1 -> v2: attach the empty filter-options field that v1 links predate.
func addFilterOptions(m map[string]any) (map[string]any, error) {
	m["filterAsm"] = map[string]any{}
	return m, nil
}

// v2 -> v3: the single compiler's config moves from top-level fields into
// a one-element compilers sequence.
func wrapCompilerConfig(m map[string]any) (map[string]any, error) {
	config := map[string]any{}
	for _, key := range []string{"source", "sourcez", "options", "compiler"} {
		if val, ok := m[key]; ok {
			config[key] = val
			delete(m, key)
		}
	}
	m["compilers"] = []any{config}
	return m, nil
}

// v3 -> v4: reshape the legacy one-compiler record into the row/content
// tree. The source text may be stored compressed in a sourcez field; the
// colourise flag moves from the shared filters into the editor's options.
func buildLayoutTree(m map[string]any) (map[string]any, error) {
	config := firstCompilerConfig(m)

	source, err := compilerSource(config)
	if err != nil {
		return nil, err
	}

	filters := map[string]any{}
	if fa, ok := m["filterAsm"].(map[string]any); ok {
		for k, v := range fa {
			filters[k] = v
		}
	}
	colourise, _ := filters["colouriseAsm"].(bool)
	delete(filters, "colouriseAsm")

	editor := map[string]any{
		"type":          NodeComponent,
		"componentName": ComponentEditor,
		"componentState": map[string]any{
			"source": source,
			"options": map[string]any{
				"compileOnChange": true,
				"colouriseAsm":    colourise,
			},
		},
	}
	compiler := map[string]any{
		"type":          NodeComponent,
		"componentName": ComponentCompiler,
		"componentState": map[string]any{
			"filters":  filters,
			"options":  stringField(config, "options"),
			"compiler": stringField(config, "compiler"),
		},
	}
	return map[string]any{
		"version": 4,
		"content": []any{
			map[string]any{
				"type":    NodeRow,
				"content": []any{editor, compiler},
			},
		},
	}, nil
}

func firstCompilerConfig(m map[string]any) map[string]any {
	if list, ok := m["compilers"].([]any); ok && len(list) > 0 {
		if config, ok := list[0].(map[string]any); ok {
			return config
		}
	}
	return map[string]any{}
}

func compilerSource(config map[string]any) (string, error) {
	if packed, ok := config["sourcez"].(string); ok && packed != "" {
		source, err := zb64.Decompress(packed)
		if err != nil {
			return "", &DecodeError{Err: fmt.Errorf("compressed source: %w", err)}
		}
		return source, nil
	}
	return stringField(config, "source"), nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// intField reads a field as an integer, accepting the float64 form the
// structured-text and JSON decoders produce for numbers.
func intField(m map[string]any, key string) (int, bool) {
	switch n := m[key].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
