package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/igorsal/gh-telegram/internal/models"
	pkgerrors "github.com/igorsal/gh-telegram/pkg/errors"
)

// ErrUnsupportedEvent is returned for event types without a template
var ErrUnsupportedEvent = errors.New("unsupported event type")

var eventFactories = map[string]func() models.Event{
	models.EventPing:              func() models.Event { return &models.PingPayload{} },
	models.EventCommitComment:     func() models.Event { return &models.CommitCommentPayload{} },
	models.EventDiscussion:        func() models.Event { return &models.DiscussionPayload{} },
	models.EventDiscussionComment: func() models.Event { return &models.DiscussionCommentPayload{} },
	models.EventIssueComment:      func() models.Event { return &models.IssueCommentPayload{} },
	models.EventIssues:            func() models.Event { return &models.IssuesPayload{} },
	models.EventPullRequest:       func() models.Event { return &models.PullRequestPayload{} },
	models.EventPush:              func() models.Event { return &models.PushPayload{} },
}

// SupportedEvent reports whether eventType has a decoder
func SupportedEvent(eventType string) bool {
	_, ok := eventFactories[eventType]
	return ok
}

// Decoder turns raw webhook bodies into typed, validated events
type Decoder struct {
	validator *validator.Validate
}

// NewDecoder creates a decoder whose validation errors name fields by their JSON keys
func NewDecoder() *Decoder {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterStructValidation(requireIssueAuthor, models.IssuesPayload{})
	v.RegisterStructValidation(requireDiscussionAuthor, models.DiscussionPayload{})

	return &Decoder{validator: v}
}

// The issue and discussion authors are only read by the issues and
// discussion templates; comment payloads may omit them.
func requireIssueAuthor(sl validator.StructLevel) {
	p := sl.Current().Interface().(models.IssuesPayload)
	if p.Issue.User == nil {
		sl.ReportError(p.Issue.User, "issue.user", "User", "required", "")
	}
}

func requireDiscussionAuthor(sl validator.StructLevel) {
	p := sl.Current().Interface().(models.DiscussionPayload)
	if p.Discussion.User == nil {
		sl.ReportError(p.Discussion.User, "discussion.user", "User", "required", "")
	}
}

// Decode parses body as the payload for eventType. Required fields are only
// checked when the payload's action warrants a notification, so a declined
// action never fails validation.
func (d *Decoder) Decode(eventType string, body []byte) (models.Event, error) {
	factory, ok := eventFactories[eventType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEvent, eventType)
	}

	event := factory()
	if err := json.Unmarshal(body, event); err != nil {
		return nil, pkgerrors.NewValidationError("invalid JSON payload").
			WithCode("invalid_payload").
			WithContext("event", eventType).
			WithCause(err)
	}

	if !event.ShouldNotify() {
		return event, nil
	}

	if err := d.validator.Struct(event); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, pkgerrors.WrapError(err, "payload validation failed")
		}

		missing := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			missing = append(missing, fieldPath(fe.Namespace()))
		}

		return nil, pkgerrors.NewValidationError(fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", "))).
			WithCode("missing_fields").
			WithContext("event", eventType).
			WithContext("fields", missing).
			WithCause(err)
	}

	return event, nil
}

// fieldPath drops the Go struct name validator puts in front of the JSON path
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}
