package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/anonto42/miniblog-bot/internal/models"
)

// ActionKind enumerates the inline button actions
type ActionKind string

const (
	ActionLike        ActionKind = "like"
	ActionProfile     ActionKind = "profile"
	ActionSubscribe   ActionKind = "sub"
	ActionUnsubscribe ActionKind = "unsub"
	ActionCreatePost  ActionKind = "newpost"
	ActionFeed        ActionKind = "feed"
)

// maxDataLength is Telegram's limit for callback data
const maxDataLength = 64

const separator = ":"

type payloadKind int

const (
	payloadNone payloadKind = iota
	payloadPost
	payloadUser
)

var payloads = map[ActionKind]payloadKind{
	ActionLike:        payloadPost,
	ActionProfile:     payloadUser,
	ActionSubscribe:   payloadUser,
	ActionUnsubscribe: payloadUser,
	ActionCreatePost:  payloadNone,
	ActionFeed:        payloadNone,
}

// Action is a decoded button payload
type Action struct {
	Kind   ActionKind
	PostID string
	UserID int64
}

func LikePost(postID string) Action   { return Action{Kind: ActionLike, PostID: postID} }
func ViewProfile(userID int64) Action { return Action{Kind: ActionProfile, UserID: userID} }
func Subscribe(userID int64) Action   { return Action{Kind: ActionSubscribe, UserID: userID} }
func Unsubscribe(userID int64) Action { return Action{Kind: ActionUnsubscribe, UserID: userID} }
func CreatePost() Action              { return Action{Kind: ActionCreatePost} }
func BackToFeed() Action              { return Action{Kind: ActionFeed} }

// Encode renders the action as "kind" or "kind:payload"
func (a Action) Encode() string {
	switch payloads[a.Kind] {
	case payloadPost:
		return string(a.Kind) + separator + a.PostID
	case payloadUser:
		return string(a.Kind) + separator + strconv.FormatInt(a.UserID, 10)
	}
	return string(a.Kind)
}

// DecodeAction parses button data produced by Encode
func DecodeAction(data string) (Action, error) {
	if data == "" || len(data) > maxDataLength {
		return Action{}, fmt.Errorf("%w: bad length %d", models.ErrInvalidAction, len(data))
	}

	kindStr, payload, hasPayload := strings.Cut(data, separator)
	kind := ActionKind(kindStr)
	expected, ok := payloads[kind]
	if !ok {
		return Action{}, fmt.Errorf("%w: unknown kind %q", models.ErrInvalidAction, kindStr)
	}

	action := Action{Kind: kind}
	switch expected {
	case payloadNone:
		if hasPayload {
			return Action{}, fmt.Errorf("%w: %s takes no payload", models.ErrInvalidAction, kind)
		}
	case payloadPost:
		if payload == "" {
			return Action{}, fmt.Errorf("%w: %s needs a post id", models.ErrInvalidAction, kind)
		}
		action.PostID = payload
	case payloadUser:
		id, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			return Action{}, fmt.Errorf("%w: %s needs a user id: %v", models.ErrInvalidAction, kind, err)
		}
		action.UserID = id
	}
	return action, nil
}
