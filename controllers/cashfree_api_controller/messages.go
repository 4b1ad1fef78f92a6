package cashfree_api_controller

import "encoding/json"

// serverMessages encodes messages the way the ERP fills _server_messages:
// a JSON list of JSON objects, itself serialised to a string.
func serverMessages(messages ...string) string {
	items := make([]string, 0, len(messages))
	for _, m := range messages {
		b, _ := json.Marshal(map[string]string{"message": m})
		items = append(items, string(b))
	}
	out, _ := json.Marshal(items)
	return string(out)
}
