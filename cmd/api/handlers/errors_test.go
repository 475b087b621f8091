package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"spacetravelling/cmd/api/clients/contentclient"
	"spacetravelling/cmd/api/paginator"
	"spacetravelling/cmd/api/services"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("get post: %w", contentclient.ErrNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("normalize: %w", services.ErrMalformedDocument), http.StatusInternalServerError, "malformed_document"},
		{contentclient.ErrSourceQueryInvalid, http.StatusInternalServerError, "invalid_query"},
		{fmt.Errorf("search: %w", contentclient.ErrSourceUnavailable), http.StatusBadGateway, "source_unavailable"},
		{paginator.ErrLoadInProgress, http.StatusConflict, "load_in_progress"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		status, code := statusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}
