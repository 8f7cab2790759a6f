package models

// GitHub event names as sent in the X-GitHub-Event header
const (
	EventPing              = "ping"
	EventCommitComment     = "commit_comment"
	EventDiscussion        = "discussion"
	EventDiscussionComment = "discussion_comment"
	EventIssueComment      = "issue_comment"
	EventIssues            = "issues"
	EventPullRequest       = "pull_request"
	EventPush              = "push"
)

// Actions that trigger a notification
const (
	ActionCreated = "created"
	ActionOpened  = "opened"
)

// Event is a decoded webhook payload. Each event type has its own struct.
type Event interface {
	// EventType returns the X-GitHub-Event name the payload belongs to
	EventType() string
	// ShouldNotify reports whether the payload's action warrants a message
	ShouldNotify() bool
}

// Repository represents a GitHub repository
type Repository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name" validate:"required"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url" validate:"required"`
}

// User represents a GitHub user
type User struct {
	ID      int64  `json:"id"`
	Login   string `json:"login" validate:"required"`
	HTMLURL string `json:"html_url" validate:"required"`
}

// Comment represents an issue or discussion comment
type Comment struct {
	ID      int64  `json:"id"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url" validate:"required"`
	User    User   `json:"user"`
}

// CommitComment represents a comment left on a commit
type CommitComment struct {
	ID       int64  `json:"id"`
	CommitID string `json:"commit_id" validate:"required"`
	Body     string `json:"body"`
	HTMLURL  string `json:"html_url" validate:"required"`
	User     User   `json:"user"`
}

// DiscussionCategory represents a discussion category
type DiscussionCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required"`
}

// Discussion represents a GitHub discussion
type Discussion struct {
	ID       int64              `json:"id"`
	Number   int                `json:"number" validate:"required"`
	Title    string             `json:"title" validate:"required"`
	Body     string             `json:"body"`
	HTMLURL  string             `json:"html_url" validate:"required"`
	User     *User              `json:"user"` // required for discussion events only
	Category DiscussionCategory `json:"category"`
}

// Issue represents a GitHub issue
type Issue struct {
	ID      int64  `json:"id"`
	Number  int    `json:"number" validate:"required"`
	Title   string `json:"title" validate:"required"`
	Body    string `json:"body"`
	State   string `json:"state"`
	HTMLURL string `json:"html_url" validate:"required"`
	User    *User  `json:"user"` // required for issues events only
}

// PullRequest represents a GitHub pull request
type PullRequest struct {
	ID      int64  `json:"id"`
	Number  int    `json:"number" validate:"required"`
	Title   string `json:"title" validate:"required"`
	Body    string `json:"body"`
	State   string `json:"state"`
	Merged  bool   `json:"merged"`
	HTMLURL string `json:"html_url" validate:"required"`
	User    User   `json:"user"`
}

// CommitAuthor is the git author of a pushed commit
type CommitAuthor struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Commit is one entry of a push payload's commit list
type Commit struct {
	ID      string       `json:"id" validate:"required"`
	URL     string       `json:"url" validate:"required"`
	Message string       `json:"message"`
	Author  CommitAuthor `json:"author"`
}

// PingPayload is sent when a webhook is created
type PingPayload struct {
	Zen        string     `json:"zen"`
	HookID     int64      `json:"hook_id"`
	Repository Repository `json:"repository"`
	Sender     *User      `json:"sender"`
}

func (p *PingPayload) EventType() string  { return EventPing }
func (p *PingPayload) ShouldNotify() bool { return true }

// CommitCommentPayload is sent when a commit comment is created
type CommitCommentPayload struct {
	Action     string        `json:"action"`
	Comment    CommitComment `json:"comment"`
	Repository Repository    `json:"repository"`
	Sender     *User         `json:"sender"`
}

func (p *CommitCommentPayload) EventType() string  { return EventCommitComment }
func (p *CommitCommentPayload) ShouldNotify() bool { return true }

// DiscussionPayload is sent on discussion activity
type DiscussionPayload struct {
	Action     string     `json:"action"`
	Discussion Discussion `json:"discussion"`
	Repository Repository `json:"repository"`
	Sender     *User      `json:"sender"`
}

func (p *DiscussionPayload) EventType() string  { return EventDiscussion }
func (p *DiscussionPayload) ShouldNotify() bool { return p.Action == ActionCreated }

// DiscussionCommentPayload is sent on discussion comment activity
type DiscussionCommentPayload struct {
	Action     string     `json:"action"`
	Comment    Comment    `json:"comment"`
	Discussion Discussion `json:"discussion"`
	Repository Repository `json:"repository"`
	Sender     *User      `json:"sender"`
}

func (p *DiscussionCommentPayload) EventType() string  { return EventDiscussionComment }
func (p *DiscussionCommentPayload) ShouldNotify() bool { return p.Action == ActionCreated }

// IssueCommentPayload is sent on issue and pull request comment activity
type IssueCommentPayload struct {
	Action     string     `json:"action"`
	Comment    Comment    `json:"comment"`
	Issue      Issue      `json:"issue"`
	Repository Repository `json:"repository"`
	Sender     *User      `json:"sender"`
}

func (p *IssueCommentPayload) EventType() string  { return EventIssueComment }
func (p *IssueCommentPayload) ShouldNotify() bool { return p.Action == ActionCreated }

// IssuesPayload is sent on issue activity
type IssuesPayload struct {
	Action     string     `json:"action"`
	Issue      Issue      `json:"issue"`
	Repository Repository `json:"repository"`
	Sender     *User      `json:"sender"`
}

func (p *IssuesPayload) EventType() string  { return EventIssues }
func (p *IssuesPayload) ShouldNotify() bool { return p.Action == ActionOpened }

// PullRequestPayload is sent on pull request activity
type PullRequestPayload struct {
	Action      string      `json:"action"`
	Number      int         `json:"number"`
	PullRequest PullRequest `json:"pull_request"`
	Repository  Repository  `json:"repository"`
	Sender      *User       `json:"sender"`
}

func (p *PullRequestPayload) EventType() string  { return EventPullRequest }
func (p *PullRequestPayload) ShouldNotify() bool { return p.Action == ActionOpened }

// PushPayload is sent when commits are pushed to a ref
type PushPayload struct {
	Ref        string     `json:"ref" validate:"required"`
	Before     string     `json:"before"`
	After      string     `json:"after"`
	Compare    string     `json:"compare" validate:"required"`
	Commits    []Commit   `json:"commits" validate:"dive"`
	Repository Repository `json:"repository"`
	Sender     *User      `json:"sender"`
}

func (p *PushPayload) EventType() string  { return EventPush }
func (p *PushPayload) ShouldNotify() bool { return true }
