// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package server

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// apiError maps a coded error onto an HTTP status. Server-side failures are
// logged; client errors are only returned.
func apiError(err error, msg string) error {
	status := tmerr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error(msg,
			slog.String("code", string(tmerr.CodeOf(err))),
			slog.String("error", err.Error()),
		)
	}
	return huma.NewError(status, msg, err)
}
