// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeStoreEntityNotFound     Code = "store.entity.get.not_found"
	CodeStoreDatabaseFailure    Code = "store.database.failure"
	CodeStoreBackendUnsupported Code = "store.backend.unsupported"
	CodeStoreConflict           Code = "store.conflict"
	CodeStoreInvalidInput       Code = "store.invalid_input"

	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigParseInvalidFormat   Code = "config.parse.invalid_format"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"

	CodeGraphNodeEncodeInvalid  Code = "graph.node.encode.invalid_input"
	CodeGraphNodeDecodeInvalid  Code = "graph.node.decode.invalid_input"
	CodeGraphTraversalInvalid   Code = "graph.traversal.validate.invalid"
	CodeGraphLinkInvalid        Code = "graph.link.validate.invalid"
	CodeGraphTransportFailure   Code = "graph.upstream.transport.failure"
	CodeGraphTimeout            Code = "graph.upstream.timeout"
	CodeGraphDecodeFailure      Code = "graph.upstream.decode.failure"
	CodeGraphBackendUnsupported Code = "graph.backend.unsupported"
	CodeGraphConfigInvalid      Code = "graph.config.invalid"

	CodeLineageLinkInvalid Code = "lineage.link.invalid_input"

	CodeServerRequestInvalid  Code = "server.request.invalid"
	CodeServerInternalFailure Code = "server.internal.failure"
	CodeServerEntityNotFound  Code = "server.entity.not_found"
	CodeServerConfigInvalid   Code = "server.config.invalid"
	CodeServerStartFailure    Code = "server.start.failure"
	CodeServerShutdownFailure Code = "server.shutdown.failure"
	CodeServerNotImplemented  Code = "server.method.not_implemented"

	CodeCLIServerNotRunning Code = "cli.server.not_running"
	CodeCLIRequestFailure   Code = "cli.request.failure"
	CodeCLIResponseInvalid  Code = "cli.response.invalid"
	CodeCLISetupFailure     Code = "cli.setup.failure"
	CodeCLIInputInvalid     Code = "cli.input.invalid"

	CodeSecretInvalidInput  Code = "secret.input.invalid"
	CodeSecretNotFound      Code = "secret.key.not_found"
	CodeSecretStoreFailure  Code = "secret.store.failure"
	CodeSecretDeleteFailure Code = "secret.delete.failure"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func FieldValue(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Field is kept as the primary helper for terse callsites.
func Field(key string, value any) Attr {
	return FieldValue(key, value)
}

func FieldNode(value string) Attr {
	return Field("node", value)
}

func FieldNamespace(value string) Attr {
	return Field("namespace", value)
}

func FieldEntityID(value string) Attr {
	return Field("entity_id", value)
}

func FieldBackend(value string) Attr {
	return Field("backend", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

// With adds structured fields to an existing error chain.
func With(err error, fields ...Attr) error {
	if err == nil {
		return nil
	}

	code := CodeOf(err)
	if code == "" {
		code = CodeServerInternalFailure
	}

	return oops.Code(code).With(flatten(fields)...).Wrap(err)
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}

	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}

	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

func IsNotFound(err error) bool {
	return reason(CodeOf(err)) == "not_found"
}

func IsConflict(err error) bool {
	return reason(CodeOf(err)) == "conflict"
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid" || r == "invalid_input" || r == "invalid_value" || r == "invalid_format"
}

func IsTimeout(err error) bool {
	return reason(CodeOf(err)) == "timeout"
}

func IsUpstreamFailure(err error) bool {
	code := CodeOf(err)
	return strings.Contains(string(code), "upstream") && reason(code) == "failure"
}

func HTTPStatus(err error) int {
	switch {
	case HasCode(err, CodeServerNotImplemented):
		return http.StatusNotImplemented
	case IsNotFound(err):
		return http.StatusNotFound
	case IsConflict(err):
		return http.StatusConflict
	case IsInvalidInput(err):
		return http.StatusBadRequest
	case IsTimeout(err):
		return http.StatusGatewayTimeout
	case IsUpstreamFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Join(errs ...error) error {
	return oops.Code(CodeServerInternalFailure).Wrap(stderrors.Join(errs...))
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}
