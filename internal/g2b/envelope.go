// Package g2b provides access to the Korean public-procurement data
// services (data.go.kr BidPublicInfoService / ScsbidInfoService).
//
// The upstream envelopes are awkward: response.body.items may be absent, a
// single object, an object wrapping an "item" key, or a plain list, and
// numeric fields arrive as strings as often as numbers. Items and toFloat
// normalize all of that before any analysis code sees the data.
package g2b

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Items extracts the item list from a decoded response envelope,
// normalizing the three shapes the service produces:
//
//   - items absent or empty  -> nil ("no data", not an error)
//   - items a single object  -> one-element list
//   - items a list           -> the list
//
// An object-shaped items node may wrap the payload in an "item" key, which
// itself may again be a single object or a list.
func Items(envelope map[string]interface{}) []map[string]interface{} {
	if envelope == nil {
		return nil
	}
	response, ok := envelope["response"].(map[string]interface{})
	if !ok {
		return nil
	}
	body, ok := response["body"].(map[string]interface{})
	if !ok {
		return nil
	}

	switch items := body["items"].(type) {
	case []interface{}:
		return objectList(items)
	case map[string]interface{}:
		switch item := items["item"].(type) {
		case []interface{}:
			return objectList(item)
		case map[string]interface{}:
			return []map[string]interface{}{item}
		default:
			// An items object without an item key is itself the payload
			// only when it has content.
			if len(items) > 0 {
				return []map[string]interface{}{items}
			}
			return nil
		}
	default:
		return nil
	}
}

func objectList(raw []interface{}) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// toFloat coerces an envelope field into a float64. Upstream sends numbers
// as JSON numbers, numeric strings, or strings with thousands separators.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// fieldString returns the trimmed string form of an envelope field.
func fieldString(item map[string]interface{}, key string) string {
	v, ok := item[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
