package message

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igorsal/gh-telegram/internal/models"
)

var (
	testRepo = models.Repository{Name: "hello-world", HTMLURL: "https://github.com/octo/hello-world"}
	testUser = models.User{Login: "octo_cat", HTMLURL: "https://github.com/octo_cat"}
)

func TestPing(t *testing.T) {
	p := &models.PingPayload{Repository: models.Repository{Name: "r", HTMLURL: "https://x"}}

	text, ok := Build(p)

	require.True(t, ok)
	assert.Contains(t, text, "*New webhook for* [r](https://x)")
	assert.Equal(t, "*New webhook for* [r](https://x)", text)
}

func TestCommitComment(t *testing.T) {
	p := &models.CommitCommentPayload{
		Action: "created",
		Comment: models.CommitComment{
			CommitID: "6dcb09b5b57875f334f61aebed695e2e4193db5e",
			Body:     "Looks good.",
			HTMLURL:  "https://github.com/octo/hello-world/commit/6dcb09b#commitcomment-1",
			User:     testUser,
		},
		Repository: testRepo,
	}

	text, ok := Build(p)

	require.True(t, ok)
	assert.Equal(t,
		"*New commit comment for* [hello\\-world 6dcb09b](https://github.com/octo/hello-world/commit/6dcb09b#commitcomment-1)\n"+
			"*by* [octo\\_cat](https://github.com/octo_cat)\n\n"+
			"Looks good\\.",
		text)
}

func TestDiscussion(t *testing.T) {
	p := &models.DiscussionPayload{
		Action: "created",
		Discussion: models.Discussion{
			Number:   7,
			Title:    "Roadmap (2026)",
			Body:     "What's next?",
			HTMLURL:  "https://github.com/octo/hello-world/discussions/7",
			User:     &testUser,
			Category: models.DiscussionCategory{Name: "Q&A"},
		},
		Repository: testRepo,
	}

	text, ok := Build(p)

	require.True(t, ok)
	assert.Equal(t,
		"*New discussion for* [hello\\-world\\#7 \\[Q&A\\] Roadmap \\(2026\\)](https://github.com/octo/hello-world/discussions/7)\n"+
			"*by* [octo\\_cat](https://github.com/octo_cat)\n\n"+
			"What's next?",
		text)
}

func TestDiscussionCommentLinksToComment(t *testing.T) {
	p := &models.DiscussionCommentPayload{
		Action: "created",
		Comment: models.Comment{
			Body:    "+1",
			HTMLURL: "https://github.com/octo/hello-world/discussions/7#discussioncomment-9",
			User:    models.User{Login: "monalisa", HTMLURL: "https://github.com/monalisa"},
		},
		Discussion: models.Discussion{
			Number:   7,
			Title:    "Roadmap",
			HTMLURL:  "https://github.com/octo/hello-world/discussions/7",
			User:     &testUser,
			Category: models.DiscussionCategory{Name: "Ideas"},
		},
		Repository: testRepo,
	}

	text, ok := Build(p)

	require.True(t, ok)
	assert.Equal(t,
		"*New comment for discussion* [hello\\-world\\#7 \\[Ideas\\] Roadmap](https://github.com/octo/hello-world/discussions/7#discussioncomment-9)\n"+
			"*by* [monalisa](https://github.com/monalisa)\n\n"+
			"\\+1",
		text)
}

func TestIssueCommentUsesCommentAuthor(t *testing.T) {
	p := &models.IssueCommentPayload{
		Action: "created",
		Comment: models.Comment{
			Body:    "me too",
			HTMLURL: "https://github.com/octo/hello-world/issues/3#issuecomment-1",
			User:    models.User{Login: "monalisa", HTMLURL: "https://github.com/monalisa"},
		},
		Issue: models.Issue{
			Number:  3,
			Title:   "Crash",
			HTMLURL: "https://github.com/octo/hello-world/issues/3",
			User:    &testUser,
		},
		Repository: testRepo,
	}

	text, ok := Build(p)

	require.True(t, ok)
	assert.Equal(t,
		"*New comment for issue* [hello\\-world\\#3 Crash](https://github.com/octo/hello-world/issues/3)\n"+
			"*by* [monalisa](https://github.com/monalisa)\n\n"+
			"me too",
		text)
}

func TestIssuesOpened(t *testing.T) {
	p := &models.IssuesPayload{
		Action: "opened",
		Issue: models.Issue{
			Number:  12,
			Title:   "Spelling error in the README file",
			Body:    "It looks like you accidently spelled 'commit' with two 't's.",
			HTMLURL: "https://github.com/octo/hello-world/issues/12",
			User:    &testUser,
		},
		Repository: testRepo,
	}

	text, ok := Build(p)

	require.True(t, ok)
	assert.Equal(t,
		"*New issue for* [hello\\-world\\#12 Spelling error in the README file](https://github.com/octo/hello-world/issues/12)\n"+
			"*by* [octo\\_cat](https://github.com/octo_cat)\n\n"+
			"It looks like you accidently spelled 'commit' with two 't's\\.",
		text)
}

func TestPullRequestOpened(t *testing.T) {
	p := &models.PullRequestPayload{
		Action: "opened",
		PullRequest: models.PullRequest{
			Number:  1,
			Title:   "Update the README with new information.",
			Body:    "This is a pretty simple change that we need to pull into main.",
			HTMLURL: "https://github.com/octo/hello-world/pull/1",
			User:    testUser,
		},
		Repository: testRepo,
	}

	text, ok := Build(p)

	require.True(t, ok)
	assert.Equal(t,
		"*New Pull Request for* [hello\\-world Update the README with new information\\.](https://github.com/octo/hello-world/pull/1)\n"+
			"*by* [octo\\_cat](https://github.com/octo_cat)\n\n"+
			"This is a pretty simple change that we need to pull into main\\.",
		text)
}

func TestDeclinedActions(t *testing.T) {
	tests := []struct {
		name  string
		event models.Event
	}{
		{name: "issue closed", event: &models.IssuesPayload{Action: "closed"}},
		{name: "pull request closed", event: &models.PullRequestPayload{Action: "closed"}},
		{name: "pull request synchronize", event: &models.PullRequestPayload{Action: "synchronize"}},
		{name: "discussion edited", event: &models.DiscussionPayload{Action: "edited"}},
		{name: "discussion comment deleted", event: &models.DiscussionCommentPayload{Action: "deleted"}},
		{name: "issue comment edited", event: &models.IssueCommentPayload{Action: "edited"}},
		{name: "nil event", event: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, ok := Build(tt.event)
			assert.False(t, ok)
			assert.Empty(t, text)
		})
	}
}

func TestPush(t *testing.T) {
	p := &models.PushPayload{
		Ref:     "refs/heads/main",
		Compare: "https://github.com/octo/hello-world/compare/aaa...bbb",
		Commits: []models.Commit{
			{
				ID:      "0d1a26e67d8f5eaf1f6ba5c57fc3c7d91ac0fd1c",
				URL:     "https://github.com/octo/hello-world/commit/0d1a26e",
				Message: "Fix typo.",
				Author:  models.CommitAuthor{Name: "Mona Lisa"},
			},
			{
				ID:      "f1b2c3d4e5f60718293a4b5c6d7e8f9012345678",
				URL:     "https://github.com/octo/hello-world/commit/f1b2c3d",
				Message: "Add feature_x",
				Author:  models.CommitAuthor{Name: "octo-cat"},
			},
		},
		Repository: testRepo,
	}

	text, ok := Build(p)
	require.True(t, ok)

	header := "[2 new commit](https://github.com/octo/hello-world/compare/aaa...bbb) *to hello\\-world refs/heads/main*\n\n"
	require.True(t, strings.HasPrefix(text, header))

	body := strings.TrimPrefix(text, header)
	lines := strings.SplitAfter(body, "\n")
	// SplitAfter leaves an empty trailing element after the final newline
	require.Len(t, lines, 3)
	assert.Empty(t, lines[2])

	assert.Equal(t, "[0d1a26e](https://github.com/octo/hello-world/commit/0d1a26e): Fix typo\\. by Mona Lisa\n", lines[0])
	assert.Equal(t, "[f1b2c3d](https://github.com/octo/hello-world/commit/f1b2c3d): Add feature\\_x by octo\\-cat\n", lines[1])
}

func TestPushWithoutCommits(t *testing.T) {
	p := &models.PushPayload{
		Ref:        "refs/heads/gone",
		Compare:    "https://github.com/octo/hello-world/compare/x",
		Repository: testRepo,
	}

	text, ok := Build(p)

	require.True(t, ok)
	assert.Equal(t, "[0 new commit](https://github.com/octo/hello-world/compare/x) *to hello\\-world refs/heads/gone*\n\n", text)
}

func TestLongBodyIsTrimmedAfterEscaping(t *testing.T) {
	p := &models.IssuesPayload{
		Action: "opened",
		Issue: models.Issue{
			Number:  1,
			Title:   "t",
			Body:    strings.Repeat(".", 1500),
			HTMLURL: "https://github.com/octo/hello-world/issues/1",
			User:    &testUser,
		},
		Repository: testRepo,
	}

	text, ok := Build(p)
	require.True(t, ok)

	parts := strings.SplitN(text, "\n\n", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, strings.Repeat(`\.`, 1024)+"...", parts[1])
}

func TestURLsOnlyEscapeParenAndBackslash(t *testing.T) {
	p := &models.PingPayload{Repository: models.Repository{Name: "r", HTMLURL: "https://x.com/a(b)"}}

	text, ok := Build(p)

	require.True(t, ok)
	assert.Equal(t, "*New webhook for* [r](https://x.com/a(b\\))", text)
}
