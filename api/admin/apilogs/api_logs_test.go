// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package apilogs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPILogs(t *testing.T) {
	var enabled atomic.Bool
	router := mux.NewRouter()
	New(&enabled).Mount(router, "/admin/apilogs")
	ts := httptest.NewServer(router)
	defer ts.Close()

	read := func(res *http.Response) LogStatus {
		defer res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
		var status LogStatus
		require.NoError(t, json.NewDecoder(res.Body).Decode(&status))
		return status
	}

	res, err := http.Get(ts.URL + "/admin/apilogs")
	require.NoError(t, err)
	assert.False(t, read(res).Enabled)

	res, err = http.Post(ts.URL+"/admin/apilogs", "application/json", strings.NewReader(`{"enabled":true}`))
	require.NoError(t, err)
	assert.True(t, read(res).Enabled)
	assert.True(t, enabled.Load())

	res, err = http.Post(ts.URL+"/admin/apilogs", "application/json", strings.NewReader(`{"enabled":"yes"}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.True(t, enabled.Load())
}
