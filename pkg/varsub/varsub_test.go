package varsub_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/reqforge/reqforge/pkg/model/mrequest"
	"github.com/reqforge/reqforge/pkg/varsub"

	"github.com/stretchr/testify/require"
)

func TestLongStringReplace(t *testing.T) {
	const totalKeys = 10
	const baseUrl = "https://www.example.com/search?q="

	vars := varsub.Map{}
	testUrl := baseUrl
	expectedUrl := baseUrl
	for i := 0; i < totalKeys; i++ {
		vars[fmt.Sprintf("key_%d", i)] = fmt.Sprintf("val_%d", i)
		testUrl += fmt.Sprintf("{{key_%d}}", i)
		expectedUrl += fmt.Sprintf("val_%d", i)
	}

	got, err := vars.Replace(testUrl)
	require.NoError(t, err)
	require.Equal(t, expectedUrl, got)
}

func TestHostReplace(t *testing.T) {
	vars := varsub.Map{"host": "www.example.com"}

	got, err := vars.Replace("https://{{host}}/search?q=")
	require.NoError(t, err)
	require.Equal(t, "https://www.example.com/search?q=", got)
}

func TestMissingKey(t *testing.T) {
	_, err := varsub.Map{}.Replace("{{missing}}")
	require.Error(t, err)
	require.ErrorIs(t, err, varsub.ErrKeyNotFound)
}

func TestUnclosedBracesPassThrough(t *testing.T) {
	vars := varsub.Map{"a": "1"}

	got, err := vars.Replace("{{a}} and {{broken")
	require.NoError(t, err)
	require.Equal(t, "1 and {{broken", got)
}

func TestFileReferenceReplace(t *testing.T) {
	content := "test file content"
	tempFile, err := os.CreateTemp(t.TempDir(), "varsub-test-*.txt")
	require.NoError(t, err)
	_, err = tempFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tempFile.Close())

	input := fmt.Sprintf("Content from file: {{#file:%s}}", tempFile.Name())
	got, err := varsub.Map{}.Replace(input)
	require.NoError(t, err)
	require.Equal(t, "Content from file: "+content, got)
}

func TestEnvReferenceReplace(t *testing.T) {
	const envKey = "VARSUB_TEST_ENV"
	t.Setenv(envKey, "env-value")

	got, err := varsub.Map{}.Replace(fmt.Sprintf("Value: {{#env:%s}}", envKey))
	require.NoError(t, err)
	require.Equal(t, "Value: env-value", got)
}

func TestEnvReferenceReplaceFromVar(t *testing.T) {
	const envKey = "VARSUB_TEST_ENV_VAR"
	t.Setenv(envKey, "env-value-var")

	vars := varsub.Map{"token": "#env:" + envKey}

	got, err := vars.Replace("Bearer {{token}}")
	require.NoError(t, err)
	require.Equal(t, "Bearer env-value-var", got)
}

func TestEnvReferenceMissing(t *testing.T) {
	const envKey = "VARSUB_TEST_MISSING_ENV"
	_ = os.Unsetenv(envKey)

	_, err := varsub.Map{}.Replace(fmt.Sprintf("{{#env:%s}}", envKey))
	require.Error(t, err)
	require.ErrorIs(t, err, varsub.ErrKeyNotFound)

	vars := varsub.Map{"token": "#env:" + envKey}
	_, err = vars.Replace("{{token}}")
	require.Error(t, err)
	require.ErrorIs(t, err, varsub.ErrKeyNotFound)
}

func TestFromAnyMap(t *testing.T) {
	input := map[string]any{
		"key1": "value1",
		"key2": 42,
		"key3": true,
		"key4": map[string]any{
			"nested": "deep",
		},
		"key5": []any{1, 2, 3},
	}

	got := varsub.FromAnyMap(input)
	require.Equal(t, "value1", got["key1"])
	require.Equal(t, "42", got["key2"])
	require.Equal(t, "true", got["key3"])
	require.Equal(t, "deep", got["key4.nested"])
	require.Equal(t, "1", got["key5[0]"])
	require.Equal(t, "3", got["key5[2]"])
}

func TestMerge(t *testing.T) {
	base := varsub.Map{"a": "1", "b": "2"}
	override := varsub.Map{"b": "replaced", "c": "3"}

	merged := varsub.Merge(base, override)
	require.Equal(t, "1", merged["a"])
	require.Equal(t, "replaced", merged["b"])
	require.Equal(t, "3", merged["c"])
	require.Equal(t, "2", base["b"])
}

func TestApply(t *testing.T) {
	vars := varsub.Map{
		"host":  "api.example.com",
		"token": "secret-token",
		"name":  "ada",
	}

	req := mrequest.Default("https://{{host}}/users", mrequest.MethodPost)
	req.SetHeader("X-Trace", "trace-{{name}}")
	req.Body = mrequest.RawBody(`{"user":"{{name}}"}`, "application/json")
	req.Auth = mrequest.BearerAuth("{{token}}")

	require.NoError(t, varsub.Apply(&req, vars))
	require.Equal(t, "https://api.example.com/users", req.Url)

	value, ok := req.GetHeader("X-Trace")
	require.True(t, ok)
	require.Equal(t, "trace-ada", value)

	body, ok := req.BodyOrNone().(mrequest.BodyRaw)
	require.True(t, ok)
	require.Equal(t, `{"user":"ada"}`, body.Content)

	auth, ok := req.AuthOrNone().(mrequest.AuthBearer)
	require.True(t, ok)
	require.Equal(t, "secret-token", auth.Token)
}

func TestApplyReportsField(t *testing.T) {
	req := mrequest.Default("https://example.com", mrequest.MethodPost)
	req.Body = mrequest.FormBody([]mrequest.FormField{{Key: "user", Value: "{{missing}}"}})

	err := varsub.Apply(&req, varsub.Map{})
	require.Error(t, err)
	require.ErrorIs(t, err, varsub.ErrKeyNotFound)
	require.Contains(t, err.Error(), "form field user")
}
