package handler_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)

	schema, err := jsonschema.NewCompiler().Compile("file://" + filepath.ToSlash(path))
	require.NoError(t, err)
	return schema
}

func fetchJSON(t *testing.T, fixture *gradesFixture, path string, userID uint, role string) interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-Test-User", strconv.FormatUint(uint64(userID), 10))
	req.Header.Set("X-Test-Role", role)

	resp, err := fixture.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload
}

func TestAssignmentReportContract(t *testing.T) {
	fixture := setupGradesApp(t)
	schema := compileSchema(t, "assignment_report.schema.json")

	payload := fetchJSON(t, fixture, fmt.Sprintf("/api/v2/grades/assignments/%d", fixture.assignmentID), 1, "instructor")
	require.NoError(t, schema.Validate(payload))
}

func TestParticipantReportContract(t *testing.T) {
	fixture := setupGradesApp(t)
	schema := compileSchema(t, "participant_report.schema.json")

	payload := fetchJSON(t, fixture, fmt.Sprintf("/api/v2/grades/participants/%d", fixture.alice.ID), 10, "student")
	require.NoError(t, schema.Validate(payload))
}
