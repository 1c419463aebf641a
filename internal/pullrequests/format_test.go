package pullrequests_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitutils/internal/pullrequests"
)

func TestRender(testInstance *testing.T) {
	report := pullrequests.Report{
		Range:    "v1.0.0..HEAD",
		Platform: "github",
		Pulls: []pullrequests.PullRequest{
			{Number: 12, Title: "Add feature", URL: "https://github.com/owner/example/pull/12", MergedAt: "2024-05-01T10:00:00Z", Author: "octocat"},
			{Number: 7, Title: "Fix bug", URL: "https://github.com/owner/example/pull/7"},
		},
	}

	testCases := []struct {
		name     string
		format   pullrequests.Format
		expected string
	}{
		{
			name:   "text_hyperlinks",
			format: pullrequests.FormatText,
			expected: "\x1b]8;;https://github.com/owner/example/pull/12\x1b\\#12\x1b]8;;\x1b\\\n" +
				"\x1b]8;;https://github.com/owner/example/pull/7\x1b\\#7\x1b]8;;\x1b\\\n",
		},
		{
			name:     "plain",
			format:   pullrequests.FormatPlain,
			expected: "#12\n#7\n",
		},
		{
			name:   "markdown",
			format: pullrequests.FormatMarkdown,
			expected: "## Merged PRs (v1.0.0..HEAD)\n\n" +
				"- [#12](https://github.com/owner/example/pull/12) Add feature (@octocat)\n" +
				"- [#7](https://github.com/owner/example/pull/7) Fix bug\n",
		},
		{
			name:   "json_omits_unknown_fields",
			format: pullrequests.FormatJSON,
			expected: `{
  "range": "v1.0.0..HEAD",
  "platform": "github",
  "pulls": [
    {
      "number": 12,
      "title": "Add feature",
      "url": "https://github.com/owner/example/pull/12",
      "merged_at": "2024-05-01T10:00:00Z",
      "author": "octocat"
    },
    {
      "number": 7,
      "title": "Fix bug",
      "url": "https://github.com/owner/example/pull/7"
    }
  ]
}
`,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			output := &bytes.Buffer{}
			require.NoError(testInstance, pullrequests.Render(output, report, testCase.format))
			require.Equal(testInstance, testCase.expected, output.String())
		})
	}
}

func TestParseFormat(testInstance *testing.T) {
	for value, expected := range map[string]pullrequests.Format{
		"":         pullrequests.FormatText,
		"TEXT":     pullrequests.FormatText,
		"plain":    pullrequests.FormatPlain,
		" json ":   pullrequests.FormatJSON,
		"markdown": pullrequests.FormatMarkdown,
	} {
		format, parseError := pullrequests.ParseFormat(value)
		require.NoError(testInstance, parseError, value)
		require.Equal(testInstance, expected, format, value)
	}
	_, parseError := pullrequests.ParseFormat("html")
	require.EqualError(testInstance, parseError, `unsupported --format value "html" (expected text, json, markdown, or plain)`)
}
