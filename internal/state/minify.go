package state

// abbrevKeys is the ordered table of field names that get shortened to a
// single character before encoding. The abbreviation for a key is its
// index into abbrevChars, so entries must only ever be appended; moving
// one breaks every URL already in the wild. The version field is not in
// the table: migration dispatches on it before expansion runs.
var abbrevKeys = []string{
	"content",
	"type",
	"componentName",
	"componentState",
	"isClosable",
	"reorderEnabled",
	"title",
	"activeItemIndex",
	"width",
	"height",
	"source",
	"options",
	"compiler",
	"filters",
	"lang",
	"compileOnChange",
	"colouriseAsm",
	"id",
}

const abbrevChars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	minifyTable = map[string]string{}
	expandTable = map[string]string{}
)

func init() {
	if len(abbrevKeys) > len(abbrevChars) {
		panic("state: abbreviation table exceeds its alphabet")
	}
	for i, key := range abbrevKeys {
		short := string(abbrevChars[i])
		minifyTable[key] = short
		expandTable[short] = key
	}
}

// minifyKeys rewrites known field names to their one-character forms,
// recursively. Unknown keys and all values pass through unchanged.
func minifyKeys(v any) any {
	return rewriteKeys(v, minifyTable)
}

// expandKeys reverses minifyKeys, restoring full field names. Running it
// over a value that was never minified is a no-op.
func expandKeys(v any) any {
	return rewriteKeys(v, expandTable)
}

func rewriteKeys(v any, table map[string]string) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			if short, ok := table[k]; ok {
				k = short
			}
			out[k] = rewriteKeys(val, table)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = rewriteKeys(item, table)
		}
		return out
	default:
		return v
	}
}
