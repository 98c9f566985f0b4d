package client

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Records returns the records of an upstream list payload. The upstream
// answers with a bare array, an object wrapping the array under "data" or
// "results", or a single record carrying an id.
func Records(body []byte) []gjson.Result {
	if !gjson.ValidBytes(body) {
		return nil
	}
	root := gjson.ParseBytes(body)
	switch {
	case root.IsArray():
		return root.Array()
	case root.Get("data").IsArray():
		return root.Get("data").Array()
	case root.Get("results").IsArray():
		return root.Get("results").Array()
	case root.IsObject() && root.Get("id").Exists():
		return []gjson.Result{root}
	}
	return nil
}

// RecordID returns the string form of a record's id, or "".
func RecordID(record gjson.Result) string {
	id := record.Get("id")
	if !id.Exists() || id.Type == gjson.Null {
		return ""
	}
	return id.String()
}

// FirstID is the id of the first record in body, or "".
func FirstID(body []byte) string {
	records := Records(body)
	if len(records) == 0 {
		return ""
	}
	return RecordID(records[0])
}

func rawRecords(records []gjson.Result) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(records))
	for _, r := range records {
		out = append(out, json.RawMessage(r.Raw))
	}
	return out
}
