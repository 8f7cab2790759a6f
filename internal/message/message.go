// Package message renders decoded GitHub events as Telegram MarkdownV2 text.
//
// Every human-authored field goes through markdown.Escape, every link target
// through markdown.EscapeURL, and bodies are capped with markdown.TrimBody
// after escaping.
package message

import (
	"fmt"
	"strings"

	"github.com/igorsal/gh-telegram/internal/models"
	"github.com/igorsal/gh-telegram/pkg/markdown"
)

// Build renders ev. The second return value is false when the event's action
// does not warrant a notification or the event type has no template.
func Build(ev models.Event) (string, bool) {
	if ev == nil || !ev.ShouldNotify() {
		return "", false
	}

	switch e := ev.(type) {
	case *models.PingPayload:
		return Ping(e), true
	case *models.CommitCommentPayload:
		return CommitComment(e), true
	case *models.DiscussionPayload:
		return Discussion(e), true
	case *models.DiscussionCommentPayload:
		return DiscussionComment(e), true
	case *models.IssueCommentPayload:
		return IssueComment(e), true
	case *models.IssuesPayload:
		return Issues(e), true
	case *models.PullRequestPayload:
		return PullRequest(e), true
	case *models.PushPayload:
		return Push(e), true
	default:
		return "", false
	}
}

func Ping(p *models.PingPayload) string {
	return fmt.Sprintf("*New webhook for* [%s](%s)",
		markdown.Escape(p.Repository.Name),
		markdown.EscapeURL(p.Repository.HTMLURL),
	)
}

func CommitComment(p *models.CommitCommentPayload) string {
	title := fmt.Sprintf("%s %s",
		markdown.Escape(p.Repository.Name),
		markdown.ShortSHA(markdown.Escape(p.Comment.CommitID)),
	)
	return withAuthor("New commit comment for", title, p.Comment.HTMLURL, p.Comment.User, p.Comment.Body)
}

func Discussion(p *models.DiscussionPayload) string {
	return withAuthor("New discussion for", discussionTitle(p.Repository, p.Discussion),
		p.Discussion.HTMLURL, userOrEmpty(p.Discussion.User), p.Discussion.Body)
}

func DiscussionComment(p *models.DiscussionCommentPayload) string {
	return withAuthor("New comment for discussion", discussionTitle(p.Repository, p.Discussion),
		p.Comment.HTMLURL, p.Comment.User, p.Comment.Body)
}

func IssueComment(p *models.IssueCommentPayload) string {
	return withAuthor("New comment for issue", issueTitle(p.Repository, p.Issue),
		p.Issue.HTMLURL, p.Comment.User, p.Comment.Body)
}

func Issues(p *models.IssuesPayload) string {
	return withAuthor("New issue for", issueTitle(p.Repository, p.Issue),
		p.Issue.HTMLURL, userOrEmpty(p.Issue.User), p.Issue.Body)
}

func PullRequest(p *models.PullRequestPayload) string {
	title := fmt.Sprintf("%s %s",
		markdown.Escape(p.Repository.Name),
		markdown.Escape(p.PullRequest.Title),
	)
	return withAuthor("New Pull Request for", title, p.PullRequest.HTMLURL, p.PullRequest.User, p.PullRequest.Body)
}

// Push lists every commit on its own newline-terminated line, in payload order.
func Push(p *models.PushPayload) string {
	var lines strings.Builder
	for _, c := range p.Commits {
		lines.WriteString(fmt.Sprintf("[%s](%s): %s by %s\n",
			markdown.ShortSHA(markdown.Escape(c.ID)),
			markdown.EscapeURL(c.URL),
			markdown.Escape(c.Message),
			markdown.Escape(c.Author.Name),
		))
	}

	return fmt.Sprintf("[%d new commit](%s) *to %s %s*\n\n%s",
		len(p.Commits),
		markdown.EscapeURL(p.Compare),
		markdown.Escape(p.Repository.Name),
		markdown.Escape(p.Ref),
		lines.String(),
	)
}

// withAuthor renders the shared layout: a bold headline linking to the
// target, an attribution line, a blank line, and the trimmed body.
// linkText must already be escaped.
func withAuthor(headline, linkText, targetURL string, author models.User, body string) string {
	return fmt.Sprintf("*%s* [%s](%s)\n*by* [%s](%s)\n\n%s",
		headline,
		linkText,
		markdown.EscapeURL(targetURL),
		markdown.Escape(author.Login),
		markdown.EscapeURL(author.HTMLURL),
		markdown.TrimBody(markdown.Escape(body)),
	)
}

func userOrEmpty(u *models.User) models.User {
	if u == nil {
		return models.User{}
	}
	return *u
}

func discussionTitle(repo models.Repository, d models.Discussion) string {
	return fmt.Sprintf(`%s\#%d \[%s\] %s`,
		markdown.Escape(repo.Name),
		d.Number,
		markdown.Escape(d.Category.Name),
		markdown.Escape(d.Title),
	)
}

func issueTitle(repo models.Repository, issue models.Issue) string {
	return fmt.Sprintf(`%s\#%d %s`,
		markdown.Escape(repo.Name),
		issue.Number,
		markdown.Escape(issue.Title),
	)
}
