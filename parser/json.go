package parser

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/PaesslerAG/jsonpath"
)

// jsonTables returns the table of objects selected by path in a JSON export.
//
// Each object is a row, the header is the sorted union of the object keys.
func jsonTables(data []byte, path string) ([]Table, error) {
	var jobj any
	if err := json.Unmarshal(data, &jobj); err != nil {
		return nil, fmt.Errorf("cannot decode json: %w", err)
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	// a path selecting a single object is a single row.
	items, ok := jval.([]any)
	if !ok {
		items = []any{jval}
	}

	var header []string
	objects := make([]map[string]any, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%q selects a %T, want objects", path, item)
		}
		for k := range obj {
			if !slices.Contains(header, k) {
				header = append(header, k)
			}
		}
		objects = append(objects, obj)
	}
	slices.Sort(header)

	rows := [][]string{header}
	for _, obj := range objects {
		row := make([]string, len(header))
		for i, k := range header {
			row[i] = jsonCell(obj[k])
		}
		rows = append(rows, row)
	}
	return []Table{{Page: 1, Rows: rows}}, nil
}

// jsonCell formats a decoded JSON value as a cell.
func jsonCell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		data, _ := json.Marshal(v)
		return string(data)
	}
}
