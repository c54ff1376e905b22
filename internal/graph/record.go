// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package graph

import (
	"bytes"
	"encoding/json"

	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// EdgeRecord is one "to" edge with the attributes of both endpoints
// resolved. Subject and Object hold the endpoint display names.
type EdgeRecord struct {
	Subject          string `json:"subject"`
	SubjectType      string `json:"subject_type"`
	SubjectNamespace string `json:"subject_namespace"`
	Predicate        string `json:"predicate"`
	Object           string `json:"object"`
	ObjectType       string `json:"object_type"`
	ObjectNamespace  string `json:"object_namespace"`
}

// recordFields lists the wire fields every record must carry, in the order
// errors report them.
var recordFields = []string{
	"subject",
	"subject_type",
	"subject_namespace",
	"predicate",
	"object",
	"object_type",
	"object_namespace",
}

// DecodeQueryResult parses a query response body of the form
// {"result": [record, ...]}. A null result is an empty list. Any other
// deviation, including a record with a missing or non-string field, is a
// decode failure: attributes are never defaulted.
func DecodeQueryResult(body []byte) ([]EdgeRecord, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, tmerr.Errorf(tmerr.CodeGraphDecodeFailure, "query response is not a JSON object: %w", err)
	}

	raw, ok := envelope["result"]
	if !ok {
		if msg, hasErr := envelope["error"]; hasErr {
			return nil, tmerr.New(tmerr.CodeGraphDecodeFailure, "query response carries an error",
				tmerr.Field("store_error", string(msg)))
		}
		return nil, tmerr.New(tmerr.CodeGraphDecodeFailure, "query response has no result field")
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return []EdgeRecord{}, nil
	}

	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, tmerr.Errorf(tmerr.CodeGraphDecodeFailure, "query result is not an array of objects: %w", err)
	}

	records := make([]EdgeRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := decodeRecord(row)
		if err != nil {
			return nil, tmerr.With(err, tmerr.Field("index", i))
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeRecord(row map[string]json.RawMessage) (EdgeRecord, error) {
	values := make(map[string]string, len(recordFields))
	for _, name := range recordFields {
		raw, ok := row[name]
		if !ok {
			return EdgeRecord{}, tmerr.New(tmerr.CodeGraphDecodeFailure, "record is missing a field", tmerr.Field("field", name))
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return EdgeRecord{}, tmerr.New(tmerr.CodeGraphDecodeFailure, "record field is not a string", tmerr.Field("field", name))
		}
		values[name] = v
	}
	return EdgeRecord{
		Subject:          values["subject"],
		SubjectType:      values["subject_type"],
		SubjectNamespace: values["subject_namespace"],
		Predicate:        values["predicate"],
		Object:           values["object"],
		ObjectType:       values["object_type"],
		ObjectNamespace:  values["object_namespace"],
	}, nil
}
